// Package monitor implements an interactive debugger REPL: register
// and memory inspection, breakpoints, and single-stepping, driven by
// a liner prompt the same way the ambient command console this
// project's build system is modeled on drives its own operator shell.
package monitor

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/peterh/liner"

	"git.rv32.dev/rv32ima/internal/cpu"
	"git.rv32.dev/rv32ima/internal/memory"
)

// Monitor is a breakpoint-aware stepper wrapped around a hart.
type Monitor struct {
	hart *cpu.Hart
	mem  *memory.Memory

	breakpoints map[uint32]bool
}

// New builds a Monitor for hart/mem.
func New(hart *cpu.Hart, mem *memory.Memory) *Monitor {
	return &Monitor{hart: hart, mem: mem, breakpoints: make(map[uint32]bool)}
}

var commandNames = []string{"regs", "mem", "break", "delete", "step", "continue", "quit", "help"}

func completeCommand(line string) []string {
	var matches []string
	for _, name := range commandNames {
		if strings.HasPrefix(name, line) {
			matches = append(matches, name)
		}
	}
	return matches
}

// Run starts the interactive prompt. It returns once the guest
// program exits or the operator quits the monitor explicitly.
func (m *Monitor) Run() {
	line := liner.NewLiner()
	defer line.Close()

	line.SetCtrlCAborts(true)
	line.SetCompleter(completeCommand)

	for {
		if exited, status := m.hart.Exited(); exited {
			fmt.Printf("guest exited with status %d\n", status)
			return
		}

		input, err := line.Prompt("rv32ima> ")
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) {
				return
			}
			fmt.Println("error reading command:", err)
			return
		}
		line.AppendHistory(input)

		quit, err := m.process(input)
		if err != nil {
			fmt.Println("error:", err)
		}
		if quit {
			return
		}
	}
}

func (m *Monitor) process(input string) (quit bool, err error) {
	fields := strings.Fields(input)
	if len(fields) == 0 {
		return false, nil
	}

	switch fields[0] {
	case "quit", "exit":
		return true, nil
	case "help":
		fmt.Println("commands:", strings.Join(commandNames, ", "))
		return false, nil
	case "regs":
		m.printRegs()
		return false, nil
	case "mem":
		return false, m.printMem(fields[1:])
	case "break":
		return false, m.setBreakpoint(fields[1:])
	case "delete":
		return false, m.deleteBreakpoint(fields[1:])
	case "step":
		return false, m.step(fields[1:])
	case "continue":
		m.continueRun()
		return false, nil
	default:
		return false, fmt.Errorf("unknown command %q", fields[0])
	}
}

func (m *Monitor) printRegs() {
	fmt.Printf("pc  = %#010x\n", m.hart.PC)
	for i := 0; i < 32; i += 4 {
		fmt.Printf("x%-2d = %#010x  x%-2d = %#010x  x%-2d = %#010x  x%-2d = %#010x\n",
			i, m.hart.Regs[i], i+1, m.hart.Regs[i+1], i+2, m.hart.Regs[i+2], i+3, m.hart.Regs[i+3])
	}
}

func parseUint32(s string) (uint32, error) {
	v, err := strconv.ParseUint(strings.TrimPrefix(s, "0x"), 16, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid address %q: %w", s, err)
	}
	return uint32(v), nil
}

func (m *Monitor) printMem(args []string) error {
	if len(args) < 1 {
		return errors.New("usage: mem <addr> [length]")
	}
	addr, err := parseUint32(args[0])
	if err != nil {
		return err
	}
	length := uint32(64)
	if len(args) > 1 {
		n, err := strconv.ParseUint(args[1], 10, 32)
		if err != nil {
			return fmt.Errorf("invalid length %q: %w", args[1], err)
		}
		length = uint32(n)
	}
	data, ok := m.mem.Slice(addr, length)
	if !ok {
		return fmt.Errorf("address range [%#x, %#x) is out of bounds", addr, addr+length)
	}
	for i := 0; i < len(data); i += 16 {
		end := i + 16
		if end > len(data) {
			end = len(data)
		}
		fmt.Printf("%#010x: % x\n", addr+uint32(i), data[i:end])
	}
	return nil
}

func (m *Monitor) setBreakpoint(args []string) error {
	if len(args) != 1 {
		return errors.New("usage: break <addr>")
	}
	addr, err := parseUint32(args[0])
	if err != nil {
		return err
	}
	m.breakpoints[addr] = true
	fmt.Printf("breakpoint set at %#010x\n", addr)
	return nil
}

func (m *Monitor) deleteBreakpoint(args []string) error {
	if len(args) != 1 {
		return errors.New("usage: delete <addr>")
	}
	addr, err := parseUint32(args[0])
	if err != nil {
		return err
	}
	delete(m.breakpoints, addr)
	return nil
}

func (m *Monitor) step(args []string) error {
	count := uint64(1)
	if len(args) == 1 {
		n, err := strconv.ParseUint(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid step count %q: %w", args[0], err)
		}
		count = n
	}
	m.hart.Run(count)
	m.printRegs()
	return nil
}

// continueRun runs the hart one instruction at a time so that hitting
// a breakpoint address can stop it, since the hart's own Run loop has
// no concept of breakpoints.
func (m *Monitor) continueRun() {
	for {
		if exited, _ := m.hart.Exited(); exited {
			return
		}
		if m.breakpoints[m.hart.PC] {
			fmt.Printf("breakpoint hit at %#010x\n", m.hart.PC)
			return
		}
		m.hart.Run(1)
	}
}

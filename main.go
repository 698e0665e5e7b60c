// Command rv32ima is a user-mode emulator for a 32-bit RISC-V guest
// built against newlib: it loads an ELF executable, lays out its
// stack and heap, and interprets RV32IMA instructions until the guest
// calls exit.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	getopt "github.com/pborman/getopt/v2"

	"git.rv32.dev/rv32ima/internal/av"
	"git.rv32.dev/rv32ima/internal/bootstrap"
	"git.rv32.dev/rv32ima/internal/cpu"
	"git.rv32.dev/rv32ima/internal/dispatch"
	"git.rv32.dev/rv32ima/internal/elfloader"
	"git.rv32.dev/rv32ima/internal/memory"
	"git.rv32.dev/rv32ima/internal/monitor"
	"git.rv32.dev/rv32ima/internal/profiler"
	"git.rv32.dev/rv32ima/util/logger"
)

const (
	defaultMemoryBytes = 128 * 1024 * 1024
	maxMemoryBytes     = 512 * 1024 * 1024
	runBudget          = 500000
)

func main() {
	optMemory := getopt.Uint64Long("memory", 'm', defaultMemoryBytes, "guest RAM size in bytes")
	optLogFile := getopt.StringLong("log", 'l', "", "log file")
	optDebug := getopt.BoolLong("debug", 'd', "drop into the interactive monitor instead of free-running")
	optProfile := getopt.BoolLong("profile", 'p', "log instructions-per-second once a second")
	optHelp := getopt.BoolLong("help", 'h', "help")
	getopt.Parse()

	if *optHelp {
		getopt.Usage()
		os.Exit(0)
	}

	args := getopt.Args()
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "usage: rv32ima [options] <elf-file> [guest args...]")
		getopt.Usage()
		os.Exit(1)
	}
	elfPath := args[0]
	guestArgs := args

	var logFile *os.File
	if *optLogFile != "" {
		f, err := os.Create(*optLogFile)
		if err != nil {
			fmt.Fprintln(os.Stderr, "rv32ima: creating log file:", err)
			os.Exit(1)
		}
		logFile = f
	}
	programLevel := new(slog.LevelVar)
	programLevel.Set(slog.LevelInfo)
	if *optDebug {
		programLevel.Set(slog.LevelDebug)
	}
	log := slog.New(logger.NewHandler(logFile, &slog.HandlerOptions{Level: programLevel}, *optDebug))
	slog.SetDefault(log)

	memBytes := *optMemory
	if memBytes > maxMemoryBytes {
		memBytes = maxMemoryBytes
	}
	memBytes = (memBytes + memory.PageSize - 1) &^ (memory.PageSize - 1)

	if err := run(elfPath, guestArgs, uint32(memBytes), log, *optDebug, *optProfile); err != nil {
		log.Error(err.Error())
		os.Exit(1)
	}
}

func run(elfPath string, guestArgs []string, memBytes uint32, log *slog.Logger, debug, profile bool) error {
	image, err := elfloader.Load(elfPath)
	if err != nil {
		return fmt.Errorf("loading %s: %w", elfPath, err)
	}

	mem := memory.New(memBytes)
	boot, err := bootstrap.Load(mem, image, guestArgs)
	if err != nil {
		return fmt.Errorf("bootstrapping guest image: %w", err)
	}

	hart := cpu.New(mem, boot.Entry, log)
	hart.SetSP(boot.SP)

	backend := av.NewHeadless()
	hart.OnEcall = dispatch.New(mem, backend, log).Dispatch

	var cancelProfiler context.CancelFunc
	if profile {
		var ctx context.Context
		ctx, cancelProfiler = context.WithCancel(context.Background())
		go profiler.Run(ctx, hart, log)
		defer cancelProfiler()
	}

	if debug {
		monitor.New(hart, mem).Run()
		return nil
	}

	for {
		if exited, _ := hart.Exited(); exited {
			break
		}
		hart.Run(runBudget)
	}

	_, status := hart.Exited()
	if status != 0 {
		os.Exit(int(status))
	}
	return nil
}

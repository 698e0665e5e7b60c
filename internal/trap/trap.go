// Package trap defines the exception kinds a hart can raise while
// executing guest code. The numeric values match the RISC-V
// mcause encoding for the synchronous exception subset this
// emulator supports; they are never exposed to the guest (there is
// no mcause CSR here) but keeping them aligned makes the dump_regs
// style trap log read the same as a real implementation's.
package trap

// Kind identifies why a hart stopped normal instruction dispatch.
type Kind uint32

const (
	InstructionAddressMisaligned Kind = 0
	InstructionAccessFault       Kind = 1
	IllegalInstruction           Kind = 2
	Breakpoint                   Kind = 3
	LoadAddressMisaligned        Kind = 4
	LoadAccessFault              Kind = 5
	StoreAddressMisaligned       Kind = 6
	StoreAccessFault             Kind = 7
	EcallFromUMode               Kind = 8
)

var names = map[Kind]string{
	InstructionAddressMisaligned: "instruction_address_misaligned",
	InstructionAccessFault:       "instruction_access_fault",
	IllegalInstruction:           "illegal_instruction",
	Breakpoint:                   "breakpoint",
	LoadAddressMisaligned:        "load_address_misaligned",
	LoadAccessFault:              "load_access_fault",
	StoreAddressMisaligned:       "store_address_misaligned",
	StoreAccessFault:             "store_access_fault",
	EcallFromUMode:               "ecall_from_umode",
}

func (k Kind) String() string {
	if s, ok := names[k]; ok {
		return s
	}
	return "unknown_exception"
}

// Fatal reports whether a hart hitting this trap terminates the
// emulation (every kind except an ecall, which is serviced and
// resumed by the syscall dispatcher).
func (k Kind) Fatal() bool {
	return k != EcallFromUMode
}

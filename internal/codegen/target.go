package codegen

import (
	"fmt"
	"runtime"
)

// ---------------------------------------------------------------------------
// OS enum
//
// The generated text is identical on every host; the OS only decides how
// the toolchain assembles and links it.
// ---------------------------------------------------------------------------

// OS represents the host operating system.
type OS int

const (
	OS_Linux  OS = iota
	OS_Darwin    // macOS
)

func (o OS) String() string {
	switch o {
	case OS_Linux:
		return "linux"
	case OS_Darwin:
		return "darwin"
	default:
		return "unknown"
	}
}

// ---------------------------------------------------------------------------
// Target: the fixed x86-64 ABI the generator writes against
// ---------------------------------------------------------------------------

// Target holds the register roles, runtime symbols and data labels used by
// the generator.
type Target struct {
	OS OS

	// EntryPoint is the global symbol of the program body.
	EntryPoint string

	// ScanFunc and PrintFunc are the C runtime routines called by read and
	// write statements.
	ScanFunc  string
	PrintFunc string

	// Registers by role.
	ReturnReg    string   // cleared before variadic calls
	BasePointer  string   // saved by the prologue
	ArgRegs      []string // first two call arguments: format string, value/address
	DividendReg  string   // dividend and quotient of idivq
	RemainderReg string   // sign extension and remainder of idivq

	// Scratch is the allocation pool in priority order. It excludes ArgRegs
	// and RemainderReg.
	Scratch []string

	// Labels of the format strings in the data section.
	ReadFormat  string
	WriteFormat string
}

// X86_64 returns the target description for the given host OS.
func X86_64(os OS) *Target {
	return &Target{
		OS:           os,
		EntryPoint:   "_main",
		ScanFunc:     "scanf",
		PrintFunc:    "_printf",
		ReturnReg:    "rax",
		BasePointer:  "rbp",
		ArgRegs:      []string{"rdi", "rsi"},
		DividendReg:  "rax",
		RemainderReg: "rdx",
		Scratch:      []string{"rax", "rcx", "r8", "r9", "r10", "r11"},
		ReadFormat:   "READ",
		WriteFormat:  "WRITE",
	}
}

// HostTarget returns a Target matching the current Go runtime (GOOS/GOARCH).
func HostTarget() (*Target, error) {
	return ResolveTarget(runtime.GOOS, runtime.GOARCH)
}

// ResolveTarget builds a Target from OS/Arch name strings (same names Go uses).
func ResolveTarget(osName, archName string) (*Target, error) {
	var os OS
	switch osName {
	case "linux":
		os = OS_Linux
	case "darwin":
		os = OS_Darwin
	default:
		return nil, fmt.Errorf("unsupported OS: %s", osName)
	}

	switch archName {
	case "amd64", "x86_64":
	default:
		return nil, fmt.Errorf("unsupported architecture: %s", archName)
	}

	return X86_64(os), nil
}

// ---------------------------------------------------------------------------
// Helper queries
// ---------------------------------------------------------------------------

// FileExtAsm returns the assembly file extension.
func (t *Target) FileExtAsm() string { return ".s" }

// FileExtObj returns the object file extension.
func (t *Target) FileExtObj() string { return ".o" }

// FileExtExe returns the executable extension.
func (t *Target) FileExtExe() string { return "" }

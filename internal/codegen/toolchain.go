package codegen

import (
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// ---------------------------------------------------------------------------
// Toolchain: assembler + linker invocation
//
// The generated program calls scanf/printf, so linking goes through the
// system C compiler driver, which adds the C runtime and libc.
// ---------------------------------------------------------------------------

// Toolchain represents the external programs used to assemble and link.
type Toolchain struct {
	Target   *Target
	BuildDir string
	AsmFile  string // path to the assembly file
	ObjFile  string // path to the object file
	ExeFile  string // path to the final executable

	log *slog.Logger
}

// NewToolchain creates a Toolchain for the given target and build directory.
func NewToolchain(target *Target, buildDir, baseName string, logger *slog.Logger) *Toolchain {
	if logger == nil {
		logger = slog.Default()
	}
	return &Toolchain{
		Target:   target,
		BuildDir: buildDir,
		AsmFile:  filepath.Join(buildDir, baseName+target.FileExtAsm()),
		ObjFile:  filepath.Join(buildDir, baseName+target.FileExtObj()),
		ExeFile:  filepath.Join(buildDir, baseName+target.FileExtExe()),
		log:      logger,
	}
}

// WriteAssembly writes the assembly string to the .s file.
func (tc *Toolchain) WriteAssembly(asm string) error {
	return os.WriteFile(tc.AsmFile, []byte(asm), 0644)
}

// Assemble invokes the assembler to produce an object file from the assembly.
func (tc *Toolchain) Assemble() error {
	return tc.runCmd(exec.Command("as", tc.assembleArgs()...), "assemble")
}

// RenameSymbols rewrites the object's symbol table so the entry point and
// runtime calls use the host's C spelling. Only ELF hosts need this.
func (tc *Toolchain) RenameSymbols() error {
	args := tc.renameArgs()
	if len(args) == 0 {
		return nil
	}
	return tc.runCmd(exec.Command("objcopy", args...), "rename symbols")
}

// Link invokes the C compiler driver to produce the final executable.
func (tc *Toolchain) Link() error {
	return tc.runCmd(exec.Command("cc", tc.linkArgs()...), "link")
}

func (tc *Toolchain) assembleArgs() []string {
	switch tc.Target.OS {
	case OS_Darwin:
		return []string{"-arch", "x86_64", "-o", tc.ObjFile, tc.AsmFile}
	default:
		return []string{"--64", "-o", tc.ObjFile, tc.AsmFile}
	}
}

// renameArgs returns the objcopy arguments that strip the Mach-O underscore
// from the entry point and printf. ld cannot alias an undefined shared-libc
// symbol with --defsym, so the object itself is rewritten.
func (tc *Toolchain) renameArgs() []string {
	if tc.Target.OS == OS_Darwin {
		return nil
	}
	return []string{
		"--redefine-sym", tc.Target.EntryPoint + "=" + cName(tc.Target.EntryPoint),
		"--redefine-sym", tc.Target.PrintFunc + "=" + cName(tc.Target.PrintFunc),
		tc.ObjFile,
	}
}

// cName drops the Mach-O leading underscore from sym.
func cName(sym string) string {
	return strings.TrimPrefix(sym, "_")
}

func (tc *Toolchain) linkArgs() []string {
	// The generated text uses Mach-O spelling for _main and _printf but not
	// for scanf. Variables are addressed absolutely, so the executable
	// cannot be position independent.
	switch tc.Target.OS {
	case OS_Darwin:
		return []string{"-arch", "x86_64", "-Wl,-no_pie",
			"-Wl,-alias,_scanf," + tc.Target.ScanFunc,
			"-o", tc.ExeFile, tc.ObjFile}
	default:
		return []string{"-no-pie", "-o", tc.ExeFile, tc.ObjFile}
	}
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func (tc *Toolchain) runCmd(cmd *exec.Cmd, stage string) error {
	tc.log.Debug("toolchain", "stage", stage, "cmd", strings.Join(cmd.Args, " "))

	var stderr strings.Builder
	cmd.Stderr = &stderr
	cmd.Stdout = os.Stdout

	err := cmd.Run()
	if err != nil {
		return fmt.Errorf("%s failed: %v\n%s", stage, err, stderr.String())
	}
	return nil
}

// DetectToolchain checks whether the required external tools are available
// and returns a list of missing tools.
func DetectToolchain(target *Target) []string {
	var missing []string
	if _, err := exec.LookPath("as"); err != nil {
		missing = append(missing, "as (assembler)")
	}
	if _, err := exec.LookPath("cc"); err != nil {
		missing = append(missing, "cc (linker driver)")
	}
	if target.OS != OS_Darwin {
		if _, err := exec.LookPath("objcopy"); err != nil {
			missing = append(missing, "objcopy (symbol renamer)")
		}
	}
	return missing
}

package codegen

import (
	"fmt"
	"iki/internal/ast"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// ---------------------------------------------------------------------------
// Options controls the behaviour of the build pipeline.
// ---------------------------------------------------------------------------

// Options configures the build pipeline.
type Options struct {
	// Target platform. If nil, the host platform is auto-detected.
	Target *Target

	// BuildDir is the directory where all build artifacts are written.
	// Defaults to "./build" relative to the working directory.
	BuildDir string

	// OutputName is the base name for the output files (without extension).
	// Defaults to "output".
	OutputName string

	// AsmOnly stops after emitting the assembly file (skip assemble + link).
	AsmOnly bool

	// SkipLink stops after assembling (produce .o but don't link).
	SkipLink bool

	// Logger receives pipeline and generator diagnostics. Defaults to
	// slog.Default().
	Logger *slog.Logger
}

// DefaultOptions returns sensible defaults (host target, build/ directory).
func DefaultOptions() *Options {
	return &Options{
		BuildDir: "build",
	}
}

// ---------------------------------------------------------------------------
// Result is returned by Build with paths to all produced artifacts.
// ---------------------------------------------------------------------------

type Result struct {
	AsmFile  string   // path to the assembly file
	ObjFile  string   // path to the object file (empty if AsmOnly)
	ExeFile  string   // path to the executable (empty if AsmOnly or SkipLink)
	Warnings []string // non-fatal problems, e.g. a missing assembler
}

// ---------------------------------------------------------------------------
// Build: the public entry point for the full pipeline
//
// Pipeline: AST → Assembly text (generate) → Object (assemble) → Executable (link)
// ---------------------------------------------------------------------------

// Build generates assembly for program, writes it under the build directory
// and, unless told otherwise, assembles and links it.
func Build(program *ast.Program, opts *Options) (*Result, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}

	// --- Resolve target ---
	target := opts.Target
	if target == nil {
		var err error
		target, err = HostTarget()
		if err != nil {
			return nil, fmt.Errorf("cannot detect host target: %w", err)
		}
	}

	// --- Determine output name ---
	outputName := opts.OutputName
	if outputName == "" {
		outputName = "output"
	}
	// Sanitize: replace dots/spaces with underscores.
	outputName = strings.Map(func(r rune) rune {
		if r == '.' || r == ' ' || r == '/' || r == '\\' {
			return '_'
		}
		return r
	}, outputName)

	// --- Create build directory ---
	buildDir := opts.BuildDir
	if buildDir == "" {
		buildDir = "build"
	}
	platformDir := filepath.Join(buildDir, fmt.Sprintf("%s_x86_64", target.OS))
	if err := os.MkdirAll(platformDir, 0755); err != nil {
		return nil, fmt.Errorf("cannot create build directory %s: %w", platformDir, err)
	}

	result := &Result{}

	// --- Step 1: Generate assembly ---
	log.Debug("generating assembly", "os", target.OS.String())
	asmText, err := GenerateWith(program, target, log)
	if err != nil {
		return nil, fmt.Errorf("code generation failed: %w", err)
	}

	// --- Step 2: Write assembly file ---
	tc := NewToolchain(target, platformDir, outputName, log)
	if err := tc.WriteAssembly(asmText); err != nil {
		return nil, fmt.Errorf("cannot write assembly file: %w", err)
	}
	result.AsmFile = tc.AsmFile
	log.Debug("assembly written", "path", result.AsmFile)

	if opts.AsmOnly {
		return result, nil
	}

	// --- Step 3: Assemble ---
	if missing := DetectToolchain(target); len(missing) > 0 {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("missing toolchain components: %s", strings.Join(missing, ", ")),
			fmt.Sprintf("assembly file was written to %s; assemble and link manually", result.AsmFile))
		log.Warn("toolchain incomplete", "missing", missing)
		return result, nil
	}

	log.Debug("assembling")
	if err := tc.Assemble(); err != nil {
		return result, fmt.Errorf("assembly failed: %w", err)
	}
	result.ObjFile = tc.ObjFile

	if opts.SkipLink {
		return result, nil
	}

	// --- Step 4: Link ---
	if err := tc.RenameSymbols(); err != nil {
		return result, fmt.Errorf("symbol renaming failed: %w", err)
	}
	log.Debug("linking")
	if err := tc.Link(); err != nil {
		return result, fmt.Errorf("linking failed: %w", err)
	}
	result.ExeFile = tc.ExeFile
	log.Debug("executable written", "path", result.ExeFile)

	return result, nil
}

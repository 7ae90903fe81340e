package main

import (
	"errors"
	"flag"
	"fmt"
	"iki/internal/ast"
	"iki/internal/codegen"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/tebeka/atexit"
)

const VERSION = "0.1.0"

var (
	outputName = flag.String("o", "", "base name of the output files (default: input file name)")
	buildDir   = flag.String("build", "build", "directory for build artifacts")
	asmOnly    = flag.Bool("S", false, "stop after writing the assembly file")
	skipLink   = flag.Bool("c", false, "assemble but do not link")
	verbose    = flag.Bool("v", false, "log every pipeline step")
	dumpAST    = flag.Bool("dump-ast", false, "dump the loaded AST structure to stderr")
)

func main() {
	start := time.Now()
	atexit.Register(func() {
		slog.Debug("iki exiting", "elapsed", time.Since(start))
	})
	atexit.Exit(run())
}

func run() int {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Iki compiler v%s\nUsage: iki [flags] <program.yaml|program.json>\n", VERSION)
		flag.PrintDefaults()
	}
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	if flag.NArg() != 1 {
		flag.Usage()
		return 1
	}
	filePath := flag.Arg(0)
	slog.Debug("loading program", "path", filePath)

	program, err := ast.LoadFile(filePath)
	if err != nil {
		var loadErr *ast.LoadError
		if errors.As(err, &loadErr) {
			fmt.Fprintf(os.Stderr, "%s: %s\n", filePath, loadErr)
		} else {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		}
		return 1
	}

	if *verbose {
		slog.Debug("loaded program", "ast", "\n"+ast.DebugString(program))
	}
	if *dumpAST {
		spew.Fdump(os.Stderr, program)
	}

	opts := codegen.DefaultOptions()
	opts.BuildDir = *buildDir
	opts.OutputName = *outputName
	if opts.OutputName == "" {
		opts.OutputName = baseName(filePath)
	}
	opts.AsmOnly = *asmOnly
	opts.SkipLink = *skipLink
	opts.Logger = slog.Default()

	result, err := codegen.Build(program, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Codegen error: %s\n", err)
		return 1
	}

	fmt.Println("Build artifacts:")
	if result.AsmFile != "" {
		fmt.Printf("  Assembly: %s\n", result.AsmFile)
	}
	if result.ObjFile != "" {
		fmt.Printf("  Object:   %s\n", result.ObjFile)
	}
	if result.ExeFile != "" {
		fmt.Printf("  Binary:   %s\n", result.ExeFile)
	}

	if len(result.Warnings) > 0 {
		fmt.Println()
		for _, w := range result.Warnings {
			fmt.Printf("  %s\n", w)
		}
	}
	return 0
}

// baseName strips the directory and extension from path.
func baseName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

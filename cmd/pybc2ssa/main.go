// Command pybc2ssa lowers a JSON-encoded Python 3.8 bytecode code object
// into a register/SSA-form control-flow graph and prints the result.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/dr8co/pybc2ssa/pycode"
	"github.com/dr8co/pybc2ssa/tracer"
	"github.com/dr8co/pybc2ssa/translator"
)

const version = "0.1.0"

func printUsage() {
	_, _ = fmt.Fprintf(os.Stderr, `pybc2ssa v%s

USAGE:
    %s -f <code.json> [OPTIONS]

DESCRIPTION:
    pybc2ssa translates a JSON-encoded Python 3.8 bytecode code object into
    a register/SSA-form control-flow graph and prints the resulting object
    tree.

OPTIONS:
    -f, --file <path>       Code object fixture to translate (required)
    -d, --debug             Log each emitted statement as it is produced
    -t, --trace             Launch the interactive step-through tracer
        --no-color          Disable colored tracer output
    -v, --version           Show version information
    -h, --help              Show this help message

EXAMPLES:
    %s -f testdata/fib.json
    %s -f testdata/fib.json -t
`, version, os.Args[0], os.Args[0], os.Args[0])
}

func main() {
	flag.Usage = printUsage

	fileFlag := flag.String("file", "", "code object fixture to translate")
	debugFlag := flag.Bool("debug", false, "log each emitted statement as it is produced")
	traceFlag := flag.Bool("trace", false, "launch the interactive step-through tracer")
	noColorFlag := flag.Bool("no-color", false, "disable colored tracer output")
	versionFlag := flag.Bool("version", false, "show version information")

	flag.StringVar(fileFlag, "f", "", "code object fixture to translate")
	flag.BoolVar(debugFlag, "d", false, "log each emitted statement as it is produced")
	flag.BoolVar(traceFlag, "t", false, "launch the interactive step-through tracer")
	flag.BoolVar(versionFlag, "v", false, "show version information")

	flag.Parse()

	if *versionFlag {
		fmt.Printf("pybc2ssa v%s\n", version)
		return
	}

	if *fileFlag == "" {
		printUsage()
		os.Exit(1)
	}

	obj, err := translateFile(*fileFlag, *debugFlag)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if *traceFlag {
		if err := tracer.Run(obj, tracer.Options{NoColor: *noColorFlag}); err != nil {
			fmt.Fprintln(os.Stderr, "tracer error:", err)
			os.Exit(1)
		}
		return
	}

	fmt.Print(obj.Dump())
}

func translateFile(path string, debug bool) (*translator.Object, error) {
	cleaned := filepath.Clean(path)
	//nolint:gosec // operator-supplied fixture path, not attacker-controlled user input
	data, err := os.ReadFile(cleaned)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", cleaned, err)
	}

	co, err := pycode.DecodeJSON(data)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", cleaned, err)
	}

	if debug {
		slog.SetLogLoggerLevel(slog.LevelDebug)
	}
	logger := slog.Default()
	obj, err := translator.Translate(co, translator.Config{Debug: debug, Logger: logger})
	if err != nil {
		return nil, fmt.Errorf("translating %s: %w", cleaned, err)
	}
	return obj, nil
}

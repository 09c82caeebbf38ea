// Command cesium is the CLI driver for the Cesium compiler core: it wires
// together the lexer (via parser.New), parser, optimizer, and emitter and
// writes the resulting class file to disk. It generalizes the teacher's
// cmd/smog driver (argv dispatch, a REPL, a disassemble subcommand) to
// Cesium's single-pass pipeline — there is no VM here to run anything,
// only to compile and optionally disassemble (spec.md §6).
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/fatih/color"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	flag "github.com/spf13/pflag"

	"github.com/cesium-lang/cesium/internal/classfile"
	"github.com/cesium-lang/cesium/internal/emitter"
	"github.com/cesium-lang/cesium/internal/optimizer"
	"github.com/cesium-lang/cesium/internal/parser"
)

var log = logrus.New()

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "repl":
			runREPL()
			return
		case "disasm":
			if err := runDisasm(os.Args[2:]); err != nil {
				fail(err)
			}
			return
		case "help", "-h", "--help":
			printUsage()
			return
		}
	}
	if err := runCompile(os.Args[1:]); err != nil {
		fail(err)
	}
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, color.RedString(err.Error()))
	os.Exit(1)
}

func printUsage() {
	fmt.Println("cesium - the Cesium language compiler")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  cesium <source-path> <program-name> [flags]   Compile to <program-name>.class")
	fmt.Println("  cesium disasm <source-path> <program-name>    Compile and print disassembly only")
	fmt.Println("  cesium repl                                   Interactively compile statements")
	fmt.Println()
	fmt.Println("Flags:")
	fmt.Println("  -o, --out string     output path (default <program-name>.class)")
	fmt.Println("  -v, --verbose        log each pipeline stage")
	fmt.Println("      --disasm         print a disassembly after compiling")
}

// runCompile implements the CLI contract of spec.md §6: read source, run
// the pipeline, write one class file. Exit code is non-zero on any
// failure; each error prints a single line on stderr.
func runCompile(args []string) error {
	fs := flag.NewFlagSet("cesium", flag.ContinueOnError)
	out := fs.StringP("out", "o", "", "output .class path (default: <program-name>.class)")
	verbose := fs.BoolP("verbose", "v", false, "log each pipeline stage")
	disasm := fs.Bool("disasm", false, "print a disassembly of the emitted class after compiling")
	fs.Usage = printUsage
	if err := fs.Parse(args); err != nil {
		return err
	}

	positional := fs.Args()
	if len(positional) < 2 {
		return errors.New("usage: cesium <source-path> <program-name>")
	}
	sourcePath, programName := positional[0], positional[1]

	if *verbose {
		log.SetLevel(logrus.DebugLevel)
	} else {
		log.SetLevel(logrus.WarnLevel)
	}

	log.WithField("path", sourcePath).Debug("reading source")
	data, err := os.ReadFile(sourcePath)
	if err != nil {
		return errors.Wrapf(err, "reading %s", sourcePath)
	}

	log.Debug("lexing + parsing")
	p, err := parser.New(string(data))
	if err != nil {
		return err
	}
	prog, err := p.Parse()
	if err != nil {
		return err
	}

	log.Debug("optimizing")
	optimized := optimizer.Simplify(prog)

	log.Debug("emitting")
	cf, err := emitter.Emit(optimized, programName)
	if err != nil {
		return err
	}

	outPath := *out
	if outPath == "" {
		outPath = programName + ".class"
	}
	f, err := os.Create(outPath)
	if err != nil {
		return errors.Wrapf(err, "creating %s", outPath)
	}
	defer f.Close()
	if err := cf.Write(f); err != nil {
		return errors.Wrapf(err, "writing %s", outPath)
	}

	log.WithFields(logrus.Fields{"in": sourcePath, "out": outPath}).Info("compiled")
	fmt.Println(color.GreenString("compiled %s -> %s", sourcePath, outPath))

	if *disasm {
		printDisassembly(cf)
	}
	return nil
}

// runDisasm compiles the given source and prints its disassembly instead
// of writing a class file; there is no class-file reader in this module,
// only a writer, so disassembly always runs against a fresh compile.
func runDisasm(args []string) error {
	if len(args) < 2 {
		return errors.New("usage: cesium disasm <source-path> <program-name>")
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return errors.Wrapf(err, "reading %s", args[0])
	}
	p, err := parser.New(string(data))
	if err != nil {
		return err
	}
	prog, err := p.Parse()
	if err != nil {
		return err
	}
	optimized := optimizer.Simplify(prog)
	cf, err := emitter.Emit(optimized, args[1])
	if err != nil {
		return err
	}
	printDisassembly(cf)
	return nil
}

func printDisassembly(cf *classfile.ClassFile) {
	for _, m := range cf.Methods {
		fmt.Printf("method %s%s\n", m.Name, m.Descriptor)
		for _, line := range classfile.Disassemble(m.Code) {
			fmt.Println("  " + line)
		}
	}
}

// runREPL compiles a growing buffer of statements on every line, printing
// the disassembly of the result. There is no runtime in this module, so
// unlike the teacher's REPL (which executes on a persistent VM) this one
// only ever shows what the emitter would produce.
func runREPL() {
	fmt.Println(color.CyanString("cesium repl — compiles on every line, shows disassembly; there is no interpreter"))
	fmt.Println("Type ':quit' to exit.")

	rl, err := readline.New("cesium> ")
	if err != nil {
		fail(err)
		return
	}
	defer rl.Close()

	var buffer strings.Builder
	for {
		line, err := rl.Readline()
		if err != nil {
			break
		}
		if strings.TrimSpace(line) == ":quit" {
			break
		}
		buffer.WriteString(line)
		buffer.WriteString("\n")

		p, err := parser.New(buffer.String())
		if err != nil {
			fmt.Fprintln(os.Stderr, color.RedString(err.Error()))
			continue
		}
		prog, err := p.Parse()
		if err != nil {
			fmt.Fprintln(os.Stderr, color.RedString(err.Error()))
			continue
		}
		optimized := optimizer.Simplify(prog)
		cf, err := emitter.Emit(optimized, "REPLSession")
		if err != nil {
			fmt.Fprintln(os.Stderr, color.RedString(err.Error()))
			continue
		}
		printDisassembly(cf)
	}
}

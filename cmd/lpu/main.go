// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/ezrec/lpu/asm"
	"github.com/ezrec/lpu/bytecode"
	"github.com/ezrec/lpu/config"
	"github.com/ezrec/lpu/io"
	"github.com/ezrec/lpu/isa"
	"github.com/ezrec/lpu/semantic"
	"github.com/ezrec/lpu/translate"
	"github.com/ezrec/lpu/vm"
)

const (
	SOURCE_EXT   = ".aasm" // Assembly source files.
	BYTECODE_EXT = ".lpu"  // Bytecode images.
)

func usage() {
	out := flag.CommandLine.Output()
	fmt.Fprintf(out, "Usage: %v [-config lpu.toml] [-lang tag] [-v] <command> [arguments]\n\n", filepath.Base(os.Args[0]))
	fmt.Fprintf(out, "Commands:\n")
	fmt.Fprintf(out, "  build [-o out.lpu] [-r registers] [-strip] [-D NAME=VALUE] <source%v>\n", SOURCE_EXT)
	fmt.Fprintf(out, "  run [-o output] [-steps N] <program%v|source%v>\n", BYTECODE_EXT, SOURCE_EXT)
	fmt.Fprintf(out, "  dis <program%v>\n\n", BYTECODE_EXT)
	flag.PrintDefaults()
}

func main() {
	var configPath string
	var lang string
	var verbose bool

	flag.StringVar(&configPath, "config", "lpu.toml", "Configuration file")
	flag.StringVar(&lang, "lang", "", "Message language, as a BCP 47 tag (default: host locale)")
	flag.BoolVar(&verbose, "v", false, "Verbose mode")
	flag.Usage = usage

	flag.Parse()

	if len(lang) != 0 {
		err := translate.SetLanguage(lang)
		if err != nil {
			log.Fatalf("%v: %v", lang, err)
		}
	}

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("%v: %v", configPath, err)
	}
	if verbose {
		cfg.Build.Verbose = true
		cfg.Machine.Verbose = true
	}

	command, args := flag.Arg(0), flag.Args()[1:]
	switch command {
	case "build":
		err = doBuild(cfg, args)
	case "run":
		err = doRun(cfg, args)
	case "dis":
		err = doDis(args)
	default:
		log.Fatalf("%v: Unknown command: %v", os.Args[0], command)
	}

	if err != nil {
		log.Fatal(err)
	}
}

// assemble parses a source file.
func assemble(cfg *config.Config, path string, registers int, defines map[string]string) (prog *isa.Program, err error) {
	inf, err := os.Open(path)
	if err != nil {
		return
	}
	defer inf.Close()

	assembler := &asm.Assembler{
		Verbose:   cfg.Build.Verbose,
		Registers: registers,
		Source:    filepath.Base(path),
	}
	for equ, value := range defines {
		assembler.Predefine(equ, value)
	}

	prog, err = assembler.Parse(inf)
	if err != nil {
		err = fmt.Errorf("%v: %w", path, err)
	}
	return
}

// load reads a program, assembling it first if it is a source file.
func load(cfg *config.Config, path string) (prog *isa.Program, err error) {
	if strings.EqualFold(filepath.Ext(path), SOURCE_EXT) {
		return assemble(cfg, path, cfg.Machine.Registers, nil)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return
	}

	prog, err = bytecode.Decode(data)
	if err != nil {
		err = fmt.Errorf("%v: %w", path, err)
	}
	return
}

func doBuild(cfg *config.Config, args []string) (err error) {
	var output string
	var registers int
	var strip bool
	defines := map[string]string{}

	flags := flag.NewFlagSet("build", flag.ExitOnError)
	flags.StringVar(&output, "o", "", "Output file (default: <output dir>/<source>"+BYTECODE_EXT+")")
	flags.IntVar(&registers, "r", cfg.Machine.Registers, "Register file size, 8 or 32")
	flags.BoolVar(&strip, "strip", false, "Omit source lines and labels")
	flags.Func("D", "Predefine an equate, NAME=VALUE", func(text string) error {
		equ, value, ok := strings.Cut(text, "=")
		if !ok || len(equ) == 0 {
			return fmt.Errorf("%v: expected NAME=VALUE", text)
		}
		defines[equ] = value
		return nil
	})
	flags.Parse(args)

	if flags.NArg() != 1 {
		return fmt.Errorf("build: expected one source file, got %v", flags.Args())
	}
	source := flags.Arg(0)

	prog, err := assemble(cfg, source, registers, defines)
	if err != nil {
		return
	}

	if strip {
		prog.Symbols = nil
		prog.Labels = nil
	}

	data, err := bytecode.Encode(prog)
	if err != nil {
		return
	}

	if len(output) == 0 {
		name := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source)) + BYTECODE_EXT
		output = filepath.Join(cfg.Build.Output, name)
	}

	err = os.MkdirAll(filepath.Dir(output), 0o755)
	if err != nil {
		return
	}

	err = os.WriteFile(output, data, 0o644)
	if err != nil {
		return
	}

	if cfg.Build.Verbose {
		err = translate.Fprintln(os.Stderr, "%v: %d instructions, %d constants, %d bytes", output, len(prog.Instructions), len(prog.Constants), len(data))
	}

	return
}

func doRun(cfg *config.Config, args []string) (err error) {
	var output string
	var steps int

	flags := flag.NewFlagSet("run", flag.ExitOnError)
	flags.StringVar(&output, "o", "-", "Program output")
	flags.IntVar(&steps, "steps", cfg.Machine.StepLimit, "Maximum instructions to execute, zero is unlimited")
	flags.Parse(args)

	if flags.NArg() != 1 {
		return fmt.Errorf("run: expected one program, got %v", flags.Args())
	}
	path := flags.Arg(0)

	prog, err := load(cfg, path)
	if err != nil {
		return
	}

	client := &semantic.Client{
		URL:            cfg.Backend.URL,
		TextModel:      cfg.Backend.TextModel,
		EmbeddingModel: cfg.Backend.EmbeddingModel,
		APIKey:         cfg.Backend.APIKey(),
		SystemPrompt:   cfg.Backend.SystemPrompt,
		Temperature:    cfg.Backend.Temperature,
		Timeout:        cfg.Backend.Timeout,
		Verbose:        cfg.Machine.Verbose,
	}

	var adapter semantic.Adapter = client
	if len(cfg.Cache.Path) != 0 {
		var cache *semantic.Cache
		cache, err = semantic.OpenCache(cfg.Cache.Path, client)
		if err != nil {
			return fmt.Errorf("%v: %w", cfg.Cache.Path, err)
		}
		defer cache.Close()
		cache.Verbose = cfg.Machine.Verbose
		adapter = cache
	}

	files, err := io.OpenDir(cfg.Files.Root)
	if err != nil {
		return
	}
	defer files.Close()

	m := vm.NewMachine(prog)
	m.Verbose = cfg.Machine.Verbose
	m.StepLimit = steps
	m.Adapter = adapter
	m.Files = files

	if output == "-" {
		m.Tape.Output = os.Stdout
	} else {
		var ouf *os.File
		ouf, err = os.Create(output)
		if err != nil {
			return
		}
		defer ouf.Close()
		m.Tape.Output = ouf
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err = m.Run(ctx)
	if err != nil {
		err = fmt.Errorf("%v: %w", path, err)
		return
	}

	if cfg.Machine.Verbose {
		err = translate.Fprintln(os.Stderr, "%v: %v after %d steps", path, m.Status(), m.Steps())
	}
	return
}

func doDis(args []string) (err error) {
	flags := flag.NewFlagSet("dis", flag.ExitOnError)
	flags.Parse(args)

	if flags.NArg() != 1 {
		return fmt.Errorf("dis: expected one program, got %v", flags.Args())
	}
	path := flags.Arg(0)

	data, err := os.ReadFile(path)
	if err != nil {
		return
	}

	prog, err := bytecode.Decode(data)
	if err != nil {
		return fmt.Errorf("%v: %w", path, err)
	}

	return prog.Disassemble(os.Stdout)
}

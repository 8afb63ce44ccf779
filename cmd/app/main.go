package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"fexl/internal/evaluator"
	"fexl/internal/lexer"
	"fexl/internal/log"
	"fexl/internal/object"
	"fexl/internal/parser"
	"fexl/internal/repl"
	"fexl/internal/trace"
	"fexl/internal/util"
)

const DefaultRootPath = "."

var (
	// Version is the current version of the fexl binary, set at link time.
	Version   = "dev"
	BuildDate = "unknown"
	Commit    = "unknown"

	help    bool
	version bool

	logLevel string
	logFile  string

	rootPath   string
	configPath string
)

func init() {
	flag.BoolVar(&help, "help", false, "Display help information and exit")
	flag.BoolVar(&help, "h", false, "Display help information and exit")
	flag.BoolVar(&version, "version", false, "Display version information and exit")
	flag.BoolVar(&version, "v", false, "Display version information and exit")

	flag.StringVar(&rootPath, "root", DefaultRootPath, "Set the root directory used to resolve a relative -config path")
	flag.StringVar(&configPath, "config", "", "Path to a TOML config file (default: .fexlrc.toml under -root, if present)")

	flag.StringVar(&logLevel, "log-level", "error", "Log level: debug, info, warn, error")
	flag.StringVar(&logFile, "log-file", "", "Log file path (if not set, logs to stderr)")
}

func main() {
	flag.Parse()

	if version {
		printVersion()
		return
	}
	if help {
		printHelp()
		return
	}

	cfg := util.Configuration{
		Version:   Version,
		BuildDate: BuildDate,
		Commit:    Commit,
		RootPath:  rootPath,
		LogLevel:  logLevel,
		LogFile:   logFile,
	}
	cfg.LoadFile(configPath)
	// The config file's log_level is a default; an explicit -log-level wins.
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "log-level" {
			cfg.LogLevel = logLevel
		}
	})

	cleanup := log.Init(cfg.LogLevel, cfg.LogFile)
	defer cleanup()

	ev := evaluator.New(os.Stdout)
	if cfg.Persistence.DSN != "" {
		ev.Primitives.SetDefaultPersistence(cfg.Persistence.Driver, cfg.Persistence.DSN)
	}
	registerTraceable(ev, cfg.Traceable)

	if filename := flag.Arg(0); filename != "" {
		runFile(ev, filename)
		return
	}

	repl.Start(os.Stdin, os.Stdout, ev)
}

// registerTraceable marks every name in names as traced, looking each up
// first as a global binding and falling back to the primitive bridge.
// A name that resolves to neither is logged at warn level and skipped,
// matching SPEC_FULL §2's note about "a traced name that was never bound".
func registerTraceable(ev *evaluator.Evaluator, names []string) {
	for _, name := range names {
		if v, ok := ev.Global.Lookup(name); ok {
			if c, ok := v.(object.Callable); ok {
				trace.Register(c)
				continue
			}
		}
		if h, ok := ev.Primitives.HostCallable(name); ok {
			trace.Register(h)
			continue
		}
		slog.Warn("traceable name is not bound to a callable", "name", name)
	}
}

func runFile(ev *evaluator.Evaluator, filename string) {
	src, err := os.ReadFile(filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "fexl: %v\n", err)
		os.Exit(1)
	}

	l := lexer.New(string(src))
	p := parser.New(l)
	program := p.ParseProgram()
	if errs := p.Errors(); len(errs) > 0 {
		for _, e := range errs {
			if pe, ok := e.(*parser.ParseError); ok {
				line, col := util.GetLineAndColumn(string(src), pe.Pos)
				fmt.Fprintf(os.Stderr, "fexl: %v\n%s\n", pe, util.GetContextLines(string(src), line, col, pe.Pos))
				continue
			}
			fmt.Fprintf(os.Stderr, "fexl: %v\n", e)
		}
		os.Exit(1)
	}

	result, err := ev.Eval(program, ev.Global)
	if err != nil {
		fmt.Fprintf(os.Stderr, "fexl: %v\n", err)
		os.Exit(1)
	}
	if result != nil {
		fmt.Println(result.Inspect())
	}
}

func printVersion() {
	fmt.Printf("fexl version 'v%s' %s %s\n", Version, BuildDate, Commit)
}

func printHelp() {
	fmt.Printf(`Usage: fexl [options] [filename]

Options:
  -root <path>       Root directory for resolving a relative -config path. Default is '.'
  -config <path>     Path to a TOML config file. Default is '.fexlrc.toml' under -root, if present.
  -help              Display this help information and exit.
  -version           Display version information and exit.
  -log-level <level> Set the log level: debug, info, warn, error. Default is 'error'.
  -log-file <path>   Specify a log file to write logs. Default is stderr.

Details:
This is the fexl interpreter: a tree-walking evaluator for a small
homoiconic expression language.

Examples:
  fexl                        Start the REPL on stdin/stdout
  fexl -log-level=debug       Start the REPL with debug logging enabled
  fexl myfile.fexl            Evaluate the file's toplevel form and print the result

Version Information:
  Version:    %s
  Build Date: %s
  Commit:     %s
`, Version, BuildDate, Commit)
}

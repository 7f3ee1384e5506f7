package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"doc-inspector/config"
	"doc-inspector/inspect"
	"doc-inspector/logger"
)

var version = "0.3"

// Arguments for CLI flags
type Arguments struct {
	Path        string
	JSON        bool
	TUI         bool
	Debug       bool
	ShowHelp    bool
	ShowVersion bool
	Options     config.Options
}

// parseArguments parses command line args. Numeric flags take a byte count.
func parseArguments(args []string) (*Arguments, error) {
	result := &Arguments{Options: config.Default()}

	expectInflate := false
	expectPart := false

	for _, a := range args {
		if expectInflate || expectPart {
			n, err := strconv.ParseInt(a, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid size %q: %w", a, err)
			}
			if expectInflate {
				result.Options.MaxInflateBytes = n
			} else {
				result.Options.MaxPartBytes = n
			}
			expectInflate, expectPart = false, false
			continue
		}
		switch a {
		case "--json":
			result.JSON = true
		case "--tui":
			result.TUI = true
		case "--debug":
			result.Debug = true
		case "--max-inflate":
			expectInflate = true
		case "--max-part":
			expectPart = true
		case "--help", "-h":
			result.ShowHelp = true
		case "--version", "-v":
			result.ShowVersion = true
		default:
			if strings.HasPrefix(a, "-") {
				return nil, fmt.Errorf("unknown flag %s", a)
			}
			if result.Path != "" {
				return nil, errors.New("only one file can be inspected at a time")
			}
			result.Path = a
		}
	}
	if expectInflate || expectPart {
		return nil, errors.New("missing value for size flag")
	}
	if result.JSON && result.TUI {
		return nil, errors.New("--json and --tui are mutually exclusive")
	}
	if err := result.Options.Validate(); err != nil {
		return nil, err
	}
	return result, nil
}

// showUsage (styled)
func showUsage(w io.Writer) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, headerStyle.Render("doc-inspector v"+version))
	fmt.Fprintln(w)

	fmt.Fprintln(w, subHeaderStyle.Render("USAGE"))
	fmt.Fprintln(w, infoStyle.Render(wrapTextWithIndent("  doc-inspector ", "[--json | --tui] [--debug] [--max-inflate N] [--max-part N] <file>", 100)))
	fmt.Fprintln(w)

	fmt.Fprintln(w, subHeaderStyle.Render("FLAGS"))
	fmt.Fprintln(w, infoStyle.Render("  --json            Print the record as JSON"))
	fmt.Fprintln(w, infoStyle.Render("  --tui             Browse the report section by section"))
	fmt.Fprintln(w, infoStyle.Render("  --debug           Log degraded parts to stderr"))
	fmt.Fprintln(w, infoStyle.Render("  --max-inflate N   Cap per decompressed PDF stream, in bytes"))
	fmt.Fprintln(w, infoStyle.Render("  --max-part N      Cap per archive part read, in bytes"))
	fmt.Fprintln(w, infoStyle.Render("  --help, -h        Show help"))
	fmt.Fprintln(w, infoStyle.Render("  --version, -v     Show version"))
	fmt.Fprintln(w)

	fmt.Fprintln(w, subHeaderStyle.Render("SUPPORTED"))
	fmt.Fprintln(w, infoStyle.Render("  "+config.GetSupportedDescription()))
	fmt.Fprintln(w)

	fmt.Fprintln(w, subHeaderStyle.Render("EXAMPLES"))
	fmt.Fprintln(w, infoStyle.Render("  doc-inspector invoice.pdf"))
	fmt.Fprintln(w, infoStyle.Render("  doc-inspector --json report.docx"))
	fmt.Fprintln(w, infoStyle.Render("  doc-inspector --tui --max-part 1048576 budget.xlsm"))
	fmt.Fprintln(w)
}

func showVersion(w io.Writer) {
	fmt.Fprintln(w, successStyle.Render("doc-inspector v"+version))
}

// stderrLogger prints log records as styled "LEVEL msg key=value" lines.
func stderrLogger(w io.Writer) logger.LogFunc {
	return func(level logger.LogLevel, msg string, keyvals ...interface{}) {
		style := infoStyle
		switch level {
		case logger.WarnLevel:
			style = warningStyle
		case logger.ErrorLevel:
			style = errorStyle
		}
		var b strings.Builder
		b.WriteString(msg)
		for i := 0; i+1 < len(keyvals); i += 2 {
			fmt.Fprintf(&b, " %v=%v", keyvals[i], keyvals[i+1])
		}
		fmt.Fprintln(w, style.Render(strings.ToUpper(string(level)))+" "+sanitize(b.String(), false))
	}
}

// Run parses CLI arguments and inspects one file. Returns a process exit code.
func Run() int {
	return run(os.Args[1:], os.Stdout, os.Stderr)
}

func run(argv []string, stdout, stderr io.Writer) int {
	args, err := parseArguments(argv)
	if err != nil {
		fmt.Fprintln(stderr, errorStyle.Render("Error: "+err.Error()))
		return 2
	}
	switch {
	case args.ShowHelp:
		showUsage(stdout)
		return 0
	case args.ShowVersion:
		showVersion(stdout)
		return 0
	case args.Path == "":
		showUsage(stderr)
		return 2
	}

	if args.Debug {
		logger.SetLogger(stderrLogger(stderr))
		defer logger.SetLogger(nil)
	}

	if args.TUI {
		p := tea.NewProgram(newModel(args.Path, args.Options), tea.WithAltScreen())
		if _, err := p.Run(); err != nil {
			fmt.Fprintln(stderr, errorStyle.Render("Error: "+err.Error()))
			return 1
		}
		return 0
	}

	rec, err := inspect.Inspect(args.Path, args.Options)
	if err != nil {
		logger.Error("inspection failed", "file", args.Path, "err", err)
		fmt.Fprintln(stderr, errorStyle.Render("Error: "+sanitize(err.Error(), false)))
		if errors.Is(err, inspect.ErrUnsupported) {
			return 3
		}
		return 1
	}

	if args.JSON {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(rec); err != nil {
			fmt.Fprintln(stderr, errorStyle.Render("Error: "+err.Error()))
			return 1
		}
		return 0
	}
	fmt.Fprint(stdout, renderReport(rec, terminalWidth(stdout)))
	return 0
}

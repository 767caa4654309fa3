package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/peterh/liner"

	lavendish "github.com/lavendeux/lavendish"
)

const (
	appName     = "lavendish"
	historyFile = ".lavendish_history"
	promptMain  = "==> "
	promptCont  = "... "
)

var banner = fmt.Sprintf("Lavendish %s REPL\nCtrl+C cancels input, Ctrl+D exits. Type :quit to exit.", lavendish.Version)

var noColor bool

func red(s string) string {
	if noColor {
		return s
	}
	return "\x1b[31m" + s + "\x1b[0m"
}

func blue(s string) string {
	if noColor {
		return s
	}
	return "\x1b[94m" + s + "\x1b[0m"
}

func main() {
	fs := flag.NewFlagSet(appName, flag.ExitOnError)
	oneLine := fs.String("e", "", "evaluate one line and exit")
	histPath := fs.String("history", "", "history file path (default ~/"+historyFile+")")
	fs.BoolVar(&noColor, "no-color", false, "disable ANSI colors")
	fs.Usage = usage(fs)
	_ = fs.Parse(os.Args[1:])

	ip := lavendish.New()

	if *oneLine != "" {
		os.Exit(evalAndPrint(ip, *oneLine))
	}

	if fs.NArg() > 0 {
		os.Exit(runFile(ip, fs.Arg(0)))
	}

	os.Exit(repl(ip, *histPath))
}

func usage(fs *flag.FlagSet) func() {
	return func() {
		fmt.Fprintf(os.Stderr, `Lavendish %s

Usage:
  %s                   Start the REPL.
  %s <file.lav>        Evaluate a script, printing each statement's value.
  %s -e 'expr'         Evaluate one line and exit.

Flags:
`, lavendish.Version, appName, appName, appName)
		fs.PrintDefaults()
	}
}

// evalAndPrint runs src as a session: statement-level errors are reported
// but do not stop later statements (the embedding application treats each
// clipboard line the same way).
func evalAndPrint(ip *lavendish.Interp, src string) int {
	ret := 0
	for _, res := range ip.EvalSession(src) {
		if res.Err != nil {
			fmt.Fprintln(os.Stderr, red(lavendish.WrapErrorWithSource(res.Err, src).Error()))
			ret = 1
			continue
		}
		fmt.Println(blue(lavendish.FormatValue(res.Value)))
	}
	return ret
}

func runFile(ip *lavendish.Interp, path string) int {
	src, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: cannot read %s: %v\n", appName, path, err)
		return 1
	}
	return evalAndPrint(ip, string(src))
}

func repl(ip *lavendish.Interp, histPath string) int {
	fmt.Println(banner)

	if histPath == "" {
		home, _ := os.UserHomeDir()
		histPath = filepath.Join(home, historyFile)
	}

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigc)
	go func() {
		<-sigc
		ln.Close()
		os.Exit(130)
	}()

	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}

	for {
		code, ok := readByParseProbe(ln, promptMain, promptCont)
		if !ok {
			fmt.Println()
			break
		}

		trimmed := strings.TrimSpace(code)
		if strings.HasPrefix(trimmed, ":") {
			switch strings.ToLower(trimmed) {
			case ":quit":
				return 0
			default:
				fmt.Printf("unknown command. Type :quit to exit.\n")
			}
			continue
		}
		if trimmed == "" {
			continue
		}

		for _, res := range ip.EvalSession(code) {
			if res.Err != nil {
				fmt.Fprintln(os.Stderr, red(lavendish.WrapErrorWithSource(res.Err, code).Error()))
				continue
			}
			fmt.Println(blue(lavendish.FormatValue(res.Value)))
		}
		ln.AppendHistory(strings.ReplaceAll(code, "\n", " "))
	}

	return 0
}

// readByParseProbe keeps prompting for continuation lines while the input
// so far parses as incomplete (an open block, string, or bracket at EOF).
func readByParseProbe(ln *liner.State, prompt, cont string) (string, bool) {
	var b strings.Builder

	for {
		var line string
		var err error
		if b.Len() == 0 {
			line, err = ln.Prompt(prompt)
		} else {
			line, err = ln.Prompt(cont)
		}
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if err != nil {
			return "", true
		}

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		src := b.String()
		_, _, perr := lavendish.ParseProgram(src)
		if perr == nil {
			return src, true
		}
		if lavendish.IsIncomplete(perr) {
			continue
		}
		return src, true
	}
}

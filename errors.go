// errors.go — Lavendish's closed error taxonomy and caret-snippet rendering.
//
// Every failure the evaluator raises is an *Error with one of the closed
// set of Kinds below, a byte Span into the offending source,
// and a message. WrapErrorWithSource turns that into a readable, one- or
// two-line-of-context snippet with a caret under the error column, the
// way a parser or linter reports diagnostics:
//
//	Incomplete at 1:5: unterminated string
//
//	   1 | x = "abc
//	     |     ^
package lavendish

import (
	"fmt"
	"strings"
)

// Kind enumerates the closed error taxonomy.
type Kind int

const (
	SyntaxError Kind = iota
	TypeError
	ArityError
	NameError
	IndexError
	DivisionByZero
	OverflowError
	ValueError
	UserError
	// Incomplete marks a parse error that occurred at EOF while parsing in
	// interactive mode: the REPL should keep reading more input rather
	// than reporting a hard syntax error.
	Incomplete
)

func (k Kind) String() string {
	switch k {
	case SyntaxError:
		return "SyntaxError"
	case TypeError:
		return "TypeError"
	case ArityError:
		return "ArityError"
	case NameError:
		return "NameError"
	case IndexError:
		return "IndexError"
	case DivisionByZero:
		return "DivisionByZero"
	case OverflowError:
		return "OverflowError"
	case ValueError:
		return "ValueError"
	case UserError:
		return "UserError"
	case Incomplete:
		return "Incomplete"
	default:
		return "Error"
	}
}

// Error is the single error type the lexer, parser, and evaluator raise.
type Error struct {
	Kind Kind
	Msg  string
	Span Span
	// Cause optionally wraps an underlying Go error (e.g. from a native
	// builtin that surfaced an OS-level failure).
	Cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Cause }

// IsIncomplete reports whether err is a parse error raised at EOF in
// interactive mode, signalling that the REPL should read another line.
func IsIncomplete(err error) bool {
	e, ok := err.(*Error)
	return ok && e.Kind == Incomplete
}

func newErr(kind Kind, span Span, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Span: span}
}

// WrapErrorWithSource renders err (if it is *Error) as a caret-annotated
// snippet of src. Errors of any other type are returned unchanged.
func WrapErrorWithSource(err error, src string) error {
	e, ok := err.(*Error)
	if !ok {
		return err
	}
	return fmt.Errorf("%s", prettyError(src, e))
}

func byteToLineCol(src string, b int) (line, col int) {
	if b < 0 {
		b = 0
	}
	if b > len(src) {
		b = len(src)
	}
	line = 1 + strings.Count(src[:b], "\n")
	lastNL := strings.LastIndex(src[:b], "\n")
	if lastNL < 0 {
		return line, b + 1
	}
	return line, b - lastNL
}

func prettyError(src string, e *Error) string {
	line, col := byteToLineCol(src, e.Span.Start)
	lines := strings.Split(src, "\n")
	if len(lines) == 0 {
		lines = []string{""}
	}
	if line > len(lines) {
		line = len(lines)
	}
	if line < 1 {
		line = 1
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s at %d:%d: %s\n\n", e.Kind, line, col, e.Msg)
	if line > 1 {
		fmt.Fprintf(&b, "%4d | %s\n", line-1, lines[line-2])
	}
	fmt.Fprintf(&b, "%4d | %s\n", line, lines[line-1])
	pad := col - 1
	if pad < 0 {
		pad = 0
	}
	fmt.Fprintf(&b, "     | %s^\n", strings.Repeat(" ", pad))
	if line < len(lines) {
		fmt.Fprintf(&b, "%4d | %s\n", line+1, lines[line])
	}
	return b.String()
}

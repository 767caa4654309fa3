// printer.go — canonical Value -> string formatting.
//
// Used both by `as string` casts and by decorators, which always yield
// a String. Kept as a small stateless type
// (rather than free functions) so a future host can swap formatting
// policy (e.g. locale-specific currency symbols) without touching callers.
package lavendish

import (
	"fmt"
	"strconv"
	"strings"
)

type Printer struct{}

func (p Printer) Format(v Value) string {
	switch v.Kind {
	case KNil:
		return "nil"
	case KBool:
		if v.Bool {
			return "true"
		}
		return "false"
	case KInt:
		return p.formatInt(v)
	case KFloat:
		return p.formatFloat(v.Float)
	case KFixed:
		return v.Fixed.String()
	case KCurrency:
		return v.Cur.Tag + v.Cur.String()
	case KString:
		return v.Str
	case KArray:
		parts := make([]string, len(v.Arr))
		for i, e := range v.Arr {
			parts[i] = p.quoteIfString(e)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case KObject:
		// Insertion order; the language leaves object order unspecified but
		// the formatter follows iteration order for a stable dump.
		keys := v.Obj.Keys()
		pairs := make([]string, len(keys))
		for i, k := range keys {
			val, _ := v.Obj.Get(k)
			pairs[i] = fmt.Sprintf("%s: %s", p.quoteIfString(k), p.quoteIfString(val))
		}
		return "{" + strings.Join(pairs, ", ") + "}"
	case KRange:
		return p.Format(v.Rng[0]) + ".." + p.Format(v.Rng[1])
	default:
		return ""
	}
}

func (p Printer) quoteIfString(v Value) string {
	if v.Kind == KString {
		return "'" + strings.ReplaceAll(v.Str, "'", "\\'") + "'"
	}
	return p.Format(v)
}

func (p Printer) formatInt(v Value) string {
	if v.Width.signed() {
		return strconv.FormatInt(v.Int, 10)
	}
	return strconv.FormatUint(uint64(v.Int), 10)
}

func (p Printer) formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

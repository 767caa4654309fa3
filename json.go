// json.go — Value <-> JSON bridging for the @json decorator and the
// json_encode/json_decode builtins.
//
// Encoding covers every kind of the value model, though a NaN or infinite
// Float is an error: numeric kinds become JSON
// numbers (Fixed and Currency by their decimal rendering, so scale
// survives as digits), Ranges materialize, and object keys are formatted
// to strings. Decoding produces the narrowest natural kind: i64 when the
// number is written as an integer that fits, Float otherwise (2.0 is a Float).
package lavendish

import (
	"encoding/json"
	"math"
	"strings"
)

func valueToJSON(v Value, limit int) (any, error) {
	switch v.Kind {
	case KNil:
		return nil, nil
	case KBool:
		return v.Bool, nil
	case KInt:
		if v.Width.signed() {
			return v.Int, nil
		}
		return uint64(v.Int), nil
	case KFloat:
		return v.Float, nil
	case KFixed:
		return json.Number(v.Fixed.String()), nil
	case KCurrency:
		return json.Number(v.Cur.String()), nil
	case KString:
		return v.Str, nil
	case KArray:
		out := make([]any, len(v.Arr))
		for i, e := range v.Arr {
			j, err := valueToJSON(e, limit)
			if err != nil {
				return nil, err
			}
			out[i] = j
		}
		return out, nil
	case KObject:
		// encoding/json maps lose order; marshal via an ordered pair list
		// rendered by hand below.
		return v, nil
	case KRange:
		elems, err := rangeToArray(v, Span{}, limit)
		if err != nil {
			return nil, err
		}
		return valueToJSON(VArray(elems), limit)
	}
	return nil, newErr(TypeError, Span{}, "cannot encode %s as JSON", v.Kind)
}

// EncodeJSON renders v as a JSON document, preserving object insertion
// order.
func EncodeJSON(v Value, limit int) (string, error) {
	var b strings.Builder
	if err := encodeJSONInto(&b, v, limit); err != nil {
		return "", err
	}
	return b.String(), nil
}

func encodeJSONInto(b *strings.Builder, v Value, limit int) error {
	if v.Kind == KObject {
		b.WriteByte('{')
		for i, k := range v.Obj.Keys() {
			if i > 0 {
				b.WriteByte(',')
			}
			kb, err := json.Marshal(FormatValue(k))
			if err != nil {
				return err
			}
			b.Write(kb)
			b.WriteByte(':')
			val, _ := v.Obj.Get(k)
			if err := encodeJSONInto(b, val, limit); err != nil {
				return err
			}
		}
		b.WriteByte('}')
		return nil
	}
	if v.Kind == KArray {
		b.WriteByte('[')
		for i, e := range v.Arr {
			if i > 0 {
				b.WriteByte(',')
			}
			if err := encodeJSONInto(b, e, limit); err != nil {
				return err
			}
		}
		b.WriteByte(']')
		return nil
	}
	j, err := valueToJSON(v, limit)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(j)
	if err != nil {
		return err
	}
	b.Write(raw)
	return nil
}

// DecodeJSON parses a JSON document into a Value.
func DecodeJSON(src string) (Value, error) {
	dec := json.NewDecoder(strings.NewReader(src))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return Value{}, newErr(ValueError, Span{}, "malformed JSON: %v", err)
	}
	return jsonToValue(raw)
}

func jsonToValue(raw any) (Value, error) {
	switch x := raw.(type) {
	case nil:
		return VNil(), nil
	case bool:
		return VBool(x), nil
	case json.Number:
		if n, err := x.Int64(); err == nil {
			return VInt(n, W64i), nil
		}
		f, err := x.Float64()
		if err != nil || math.IsInf(f, 0) {
			return Value{}, newErr(ValueError, Span{}, "JSON number %s out of range", x)
		}
		return VFloat(f), nil
	case string:
		return VString(x), nil
	case []any:
		out := make([]Value, len(x))
		for i, e := range x {
			v, err := jsonToValue(e)
			if err != nil {
				return Value{}, err
			}
			out[i] = v
		}
		return VArray(out), nil
	case map[string]any:
		// The document's key order is lost in the Go map; keys come out in
		// map iteration order, which is unspecified.
		m := NewOrderedMap()
		for k, e := range x {
			v, err := jsonToValue(e)
			if err != nil {
				return Value{}, err
			}
			m.Set(VString(k), v)
		}
		return VObject(m), nil
	}
	return Value{}, newErr(ValueError, Span{}, "unsupported JSON value")
}

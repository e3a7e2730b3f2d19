package codec

import (
	"bytes"
	"math"
	"strconv"
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

const indentUnit = "  "

type writer struct {
	buf bytes.Buffer
}

type value func(w *writer, depth int)

type member struct {
	key string
	val value
}

func (w *writer) newline(depth int) {
	w.buf.WriteByte('\n')
	for range depth {
		w.buf.WriteString(indentUnit)
	}
}

func object(members []member) value {
	return func(w *writer, depth int) {
		if len(members) == 0 {
			w.buf.WriteString("{}")
			return
		}
		w.buf.WriteByte('{')
		for i, m := range members {
			if i > 0 {
				w.buf.WriteByte(',')
			}
			w.newline(depth + 1)
			writeString(&w.buf, m.key)
			w.buf.WriteString(": ")
			m.val(w, depth+1)
		}
		w.newline(depth)
		w.buf.WriteByte('}')
	}
}

func array(items []value) value {
	return func(w *writer, depth int) {
		if len(items) == 0 {
			w.buf.WriteString("[]")
			return
		}
		w.buf.WriteByte('[')
		for i, item := range items {
			if i > 0 {
				w.buf.WriteByte(',')
			}
			w.newline(depth + 1)
			item(w, depth+1)
		}
		w.newline(depth)
		w.buf.WriteByte(']')
	}
}

func intValue(v int) value {
	return func(w *writer, _ int) { w.buf.WriteString(strconv.Itoa(v)) }
}

func floatValue(v float64) value {
	return func(w *writer, _ int) { w.buf.WriteString(FormatFloat(v)) }
}

func boolValue(v bool) value {
	return func(w *writer, _ int) { w.buf.WriteString(strconv.FormatBool(v)) }
}

func stringValue(v string) value {
	return func(w *writer, _ int) { writeString(&w.buf, v) }
}

func nullValue(w *writer, _ int) { w.buf.WriteString("null") }

func intList(vs []int) value {
	items := make([]value, len(vs))
	for i, v := range vs {
		items[i] = intValue(v)
	}
	return array(items)
}

// FormatFloat renders v with the shortest digits that round-trip, always
// keeping a fractional part ("4.0") and switching to exponent notation
// below 1e-4 and from 1e16 on. v must be finite; maps never hold NaN or
// infinities.
func FormatFloat(v float64) string {
	if v == 0 {
		if math.Signbit(v) {
			return "-0.0"
		}
		return "0.0"
	}
	if abs := math.Abs(v); abs < 1e-4 || abs >= 1e16 {
		return strconv.FormatFloat(v, 'e', -1, 64)
	}
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsRune(s, '.') {
		s += ".0"
	}
	return s
}

// writeString writes s as a JSON string with every non-ASCII rune escaped.
func writeString(buf *bytes.Buffer, s string) {
	const hex = "0123456789abcdef"
	buf.WriteByte('"')
	for _, r := range s {
		switch {
		case r == '"':
			buf.WriteString(`\"`)
		case r == '\\':
			buf.WriteString(`\\`)
		case r == '\n':
			buf.WriteString(`\n`)
		case r == '\r':
			buf.WriteString(`\r`)
		case r == '\t':
			buf.WriteString(`\t`)
		case r == '\b':
			buf.WriteString(`\b`)
		case r == '\f':
			buf.WriteString(`\f`)
		case r < 0x20 || r == utf8.RuneError:
			writeUnicodeEscape(buf, r, hex)
		case r < utf8.RuneSelf:
			buf.WriteRune(r)
		case r > 0xFFFF:
			hi, lo := utf16.EncodeRune(r)
			writeUnicodeEscape(buf, hi, hex)
			writeUnicodeEscape(buf, lo, hex)
		default:
			writeUnicodeEscape(buf, r, hex)
		}
	}
	buf.WriteByte('"')
}

func writeUnicodeEscape(buf *bytes.Buffer, r rune, hex string) {
	buf.WriteString(`\u`)
	buf.WriteByte(hex[(r>>12)&0xF])
	buf.WriteByte(hex[(r>>8)&0xF])
	buf.WriteByte(hex[(r>>4)&0xF])
	buf.WriteByte(hex[r&0xF])
}

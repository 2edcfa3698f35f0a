// Package langfile reads and writes language files: flat JSON objects mapping
// translation keys to strings. Key order is preserved in both directions and
// output is byte-stable for a given mapping.
package langfile

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"

	"github.com/heartmarshall/mclang/internal/domain"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

var prettyOptions = &pretty.Options{
	Width:    80,
	Prefix:   "",
	Indent:   "  ",
	SortKeys: false,
}

// Decode parses data as a flat object of string values. Duplicate keys keep
// the position of their first occurrence and the value of their last.
// Every failure wraps domain.ErrMalformedSource.
func Decode(data []byte) (*domain.Mapping, error) {
	data = bytes.TrimPrefix(data, utf8BOM)

	if !utf8.Valid(data) {
		return nil, domain.NewMalformedError("", "invalid UTF-8")
	}
	if !gjson.ValidBytes(data) {
		return nil, domain.NewMalformedError("", "invalid JSON")
	}

	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return nil, domain.NewMalformedError("", fmt.Sprintf("top-level value is %s, want object", typeName(root)))
	}

	m := domain.NewMapping(0)
	var err error
	root.ForEach(func(key, value gjson.Result) bool {
		if value.Type != gjson.String {
			err = domain.NewMalformedError(key.String(), fmt.Sprintf("value is %s, want string", typeName(value)))
			return false
		}
		// gjson turns these into U+FFFD without complaint.
		if loneSurrogate(key.Raw) || loneSurrogate(value.Raw) {
			err = domain.NewMalformedError(key.String(), "unpaired surrogate escape")
			return false
		}
		m.Set(key.String(), value.String())
		return true
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

// loneSurrogate reports whether the JSON string literal raw contains a
// \uXXXX surrogate escape that is not part of a high-low pair.
func loneSurrogate(raw string) bool {
	if !strings.Contains(raw, `\u`) {
		return false
	}
	for i := 0; i < len(raw); i++ {
		if raw[i] != '\\' || i+1 >= len(raw) {
			continue
		}
		if raw[i+1] != 'u' {
			i++
			continue
		}
		r, ok := hexEscape(raw, i)
		if !ok {
			return false
		}
		i += 5
		switch {
		case utf16.IsSurrogate(r) && r >= 0xDC00:
			return true
		case utf16.IsSurrogate(r):
			lo, ok := hexEscape(raw, i+1)
			if !ok || lo < 0xDC00 || lo > 0xDFFF {
				return true
			}
			i += 6
		}
	}
	return false
}

// hexEscape decodes the \uXXXX escape starting at raw[i].
func hexEscape(raw string, i int) (rune, bool) {
	if i+6 > len(raw) || raw[i] != '\\' || raw[i+1] != 'u' {
		return 0, false
	}
	n, err := strconv.ParseUint(raw[i+2:i+6], 16, 16)
	if err != nil {
		return 0, false
	}
	return rune(n), true
}

// Encode renders m as an object with two-space indentation and a single
// trailing newline. Non-ASCII text is written as-is; only '"', '\\' and
// control characters are escaped.
func Encode(m *domain.Mapping) []byte {
	if m == nil || m.Len() == 0 {
		return []byte("{}\n")
	}

	compact := make([]byte, 0, 64*m.Len())
	compact = append(compact, '{')
	for i, e := range m.Entries() {
		if i > 0 {
			compact = append(compact, ',')
		}
		compact = appendQuoted(compact, e.Key)
		compact = append(compact, ':')
		compact = appendQuoted(compact, e.Value)
	}
	compact = append(compact, '}')

	out := pretty.PrettyOptions(compact, prettyOptions)
	out = bytes.TrimRight(out, "\n")
	return append(out, '\n')
}

const hexDigits = "0123456789abcdef"

func appendQuoted(dst []byte, s string) []byte {
	dst = append(dst, '"')
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '"':
			dst = append(dst, '\\', '"')
		case c == '\\':
			dst = append(dst, '\\', '\\')
		case c == '\n':
			dst = append(dst, '\\', 'n')
		case c == '\r':
			dst = append(dst, '\\', 'r')
		case c == '\t':
			dst = append(dst, '\\', 't')
		case c == '\b':
			dst = append(dst, '\\', 'b')
		case c == '\f':
			dst = append(dst, '\\', 'f')
		case c < 0x20:
			dst = append(dst, '\\', 'u', '0', '0', hexDigits[c>>4], hexDigits[c&0xF])
		default:
			dst = append(dst, c)
		}
	}
	return append(dst, '"')
}

func typeName(r gjson.Result) string {
	switch {
	case r.IsObject():
		return "object"
	case r.IsArray():
		return "array"
	}
	switch r.Type {
	case gjson.String:
		return "string"
	case gjson.Number:
		return "number"
	case gjson.True, gjson.False:
		return "boolean"
	default:
		return "null"
	}
}

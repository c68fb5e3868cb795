package tabular

import (
	"fmt"
	"strconv"
	"strings"
)

// Encode serializes blocks into the tabular notation. Field values are
// preserved exactly under Decode; whitespace and quoting are not canonical.
func Encode(blocks []Block) string {
	var b strings.Builder
	for _, blk := range blocks {
		fmt.Fprintf(&b, "%s[%d]{%s}:\n", blk.Name, len(blk.Rows), strings.Join(blk.Fields, ","))
		for _, row := range blk.Rows {
			b.WriteString("  ")
			for j, field := range blk.Fields {
				if j > 0 {
					b.WriteByte(',')
				}
				b.WriteString(encodeValue(row[field]))
			}
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func encodeValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case bool:
		return strconv.FormatBool(x)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		s := strconv.FormatFloat(x, 'f', -1, 64)
		// keep a decimal point so the value decodes back as a float
		if !strings.ContainsAny(s, ".eE") {
			s += ".0"
		}
		return s
	case string:
		return encodeString(x)
	default:
		return encodeString(fmt.Sprint(x))
	}
}

func encodeString(s string) string {
	if needsQuoting(s) {
		return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
	}
	return s
}

// needsQuoting reports whether s must be quoted to survive a decode:
// it contains structural characters, has significant edge whitespace,
// or would coerce to a non-string scalar.
func needsQuoting(s string) bool {
	if s == "" {
		return false
	}
	if strings.ContainsAny(s, ",\"\n\r") {
		return true
	}
	if s != strings.TrimSpace(s) {
		return true
	}
	_, isString := coerceScalar(s).(string)
	return !isString
}

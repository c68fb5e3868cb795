package tabular

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var headerRe = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_-]*)\[(\d+)\]\{([^}]*)\}:$`)

// Decode parses a tabular payload. It never fails: malformed lines are
// skipped, arity mismatches are padded or truncated, and every recovery
// is recorded as a warning. LLM chatter around the blocks is ignored.
func Decode(text string) *Document {
	doc := &Document{}

	var cur *Block
	declared := 0

	flush := func() {
		if cur == nil {
			return
		}
		if len(cur.Rows) != declared {
			doc.Warnings = append(doc.Warnings,
				fmt.Sprintf("block %q: declared %d rows, found %d", cur.Name, declared, len(cur.Rows)))
		}
		doc.Blocks = append(doc.Blocks, *cur)
		cur = nil
	}

	for _, raw := range logicalLines(text) {
		line := strings.TrimRight(raw, "\r")
		trimmed := strings.TrimSpace(line)

		if m := headerRe.FindStringSubmatch(trimmed); m != nil {
			flush()
			count, _ := strconv.Atoi(m[2])
			declared = count
			cur = &Block{Name: m[1], Fields: parseFields(m[3])}
			continue
		}

		if trimmed == "" {
			continue
		}
		if cur == nil {
			doc.Warnings = append(doc.Warnings, fmt.Sprintf("ignoring line outside any block: %.60s", trimmed))
			continue
		}
		if len(cur.Fields) == 0 {
			doc.Warnings = append(doc.Warnings, fmt.Sprintf("block %q has no fields, ignoring row", cur.Name))
			continue
		}
		// Once the declared row count is reached, unindented lines are
		// treated as trailing chatter rather than data.
		indented := len(line) > 0 && (line[0] == ' ' || line[0] == '\t')
		if len(cur.Rows) >= declared && !indented {
			doc.Warnings = append(doc.Warnings, fmt.Sprintf("block %q: ignoring extra line: %.60s", cur.Name, trimmed))
			continue
		}

		toks := splitFields(trimmed)
		if len(toks) != len(cur.Fields) {
			doc.Warnings = append(doc.Warnings,
				fmt.Sprintf("block %q: row has %d values for %d fields", cur.Name, len(toks), len(cur.Fields)))
		}
		rec := make(Record, len(cur.Fields))
		for i, field := range cur.Fields {
			if i >= len(toks) {
				rec[field] = ""
				continue
			}
			if toks[i].quoted {
				rec[field] = toks[i].val
			} else {
				rec[field] = coerceScalar(toks[i].val)
			}
		}
		cur.Rows = append(cur.Rows, rec)
	}
	flush()

	return doc
}

// logicalLines splits text into lines, re-joining physical lines that sit
// inside an unterminated quoted value so quoted newlines survive decoding.
func logicalLines(text string) []string {
	physical := strings.Split(text, "\n")
	var lines []string
	pending := ""
	open := false
	for _, l := range physical {
		if open {
			pending += "\n" + l
		} else {
			pending = l
		}
		open = strings.Count(pending, `"`)%2 == 1
		if !open {
			lines = append(lines, pending)
			pending = ""
		}
	}
	if pending != "" {
		lines = append(lines, pending)
	}
	return lines
}

func parseFields(spec string) []string {
	if strings.TrimSpace(spec) == "" {
		return nil
	}
	parts := strings.Split(spec, ",")
	fields := make([]string, 0, len(parts))
	for _, p := range parts {
		if f := strings.TrimSpace(p); f != "" {
			fields = append(fields, f)
		}
	}
	return fields
}

type fieldTok struct {
	val    string
	quoted bool
}

// splitFields splits a row on commas, honoring quoted values with
// doubled-quote escapes. An unterminated quote closes at end of line.
func splitFields(line string) []fieldTok {
	var toks []fieldTok
	var buf strings.Builder
	inQuote := false
	quoted := false
	closedAt := -1 // buf length when the closing quote was seen

	emit := func() {
		val := buf.String()
		if quoted {
			// drop stray whitespace after the closing quote
			if closedAt >= 0 && strings.TrimSpace(val[closedAt:]) == "" {
				val = val[:closedAt]
			}
		} else {
			val = strings.TrimSpace(val)
		}
		toks = append(toks, fieldTok{val: val, quoted: quoted})
		buf.Reset()
		quoted = false
		closedAt = -1
	}

	for i := 0; i < len(line); i++ {
		ch := line[i]
		if inQuote {
			if ch == '"' {
				if i+1 < len(line) && line[i+1] == '"' {
					buf.WriteByte('"')
					i++
				} else {
					inQuote = false
					closedAt = buf.Len()
				}
				continue
			}
			buf.WriteByte(ch)
			continue
		}
		switch ch {
		case '"':
			// stray whitespace before an opening quote is not data
			if strings.TrimSpace(buf.String()) == "" {
				buf.Reset()
			}
			inQuote = true
			quoted = true
		case ',':
			emit()
		default:
			buf.WriteByte(ch)
		}
	}
	emit()
	return toks
}

// coerceScalar maps an unquoted token to its typed value: int, then
// float, then bool, otherwise the string itself.
func coerceScalar(tok string) any {
	switch tok {
	case "true":
		return true
	case "false":
		return false
	}
	if i, err := strconv.Atoi(tok); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(tok, 64); err == nil {
		return f
	}
	return tok
}

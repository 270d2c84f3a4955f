package descriptor

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/golang/glog"
)

// invalidChars matches everything a descriptor line may not contain.
var invalidChars = regexp.MustCompile(`[^0-9a-zA-Z=#"'_.+\- ]`)

// maxListTokens is the number of numeric tokens Encode writes per line.
const maxListTokens = 8

// OpenString returns the contents of source if it names a readable file and
// source itself otherwise.
func OpenString(source string) (string, error) {
	if source == "" || strings.Contains(source, "\n") {
		return source, nil
	}
	info, err := os.Stat(source)
	if err != nil || !info.Mode().IsRegular() {
		return source, nil
	}
	//nolint:gosec // G304: descriptor paths are caller supplied.
	data, err := os.ReadFile(source)
	if err != nil {
		return "", fmt.Errorf("failed to read descriptor file %s: %w", source, err)
	}
	return string(data), nil
}

// Decode parses descriptor text.
func Decode(text string) *Descriptor {
	return DecodeLines(strings.Split(text, "\n"))
}

// DecodeFile reads path and parses its contents.
func DecodeFile(path string) (*Descriptor, error) {
	text, err := OpenString(path)
	if err != nil {
		return nil, err
	}
	return Decode(text), nil
}

// DecodeLines parses descriptor lines. Malformed lines are logged and skipped.
func DecodeLines(lines []string) *Descriptor {
	type rawEntry struct {
		key   string
		value string
	}
	var entries []*rawEntry
	index := make(map[string]*rawEntry)

	var last *rawEntry
	for n, line := range lines {
		line = strings.ReplaceAll(line, "\t", " ")
		line = strings.TrimSpace(invalidChars.ReplaceAllString(line, ""))
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, found := strings.Cut(line, "=")
		if !found {
			// Continuation of a wrapped value.
			if last == nil {
				glog.Warningf("descriptor: line %d has no key and no preceding key, skipping", n+1)
				continue
			}
			last.value = strings.TrimSpace(last.value + " " + line)
			continue
		}

		key = strings.TrimSpace(key)
		if key == "" {
			glog.Warningf("descriptor: line %d has an empty key, skipping", n+1)
			last = nil
			continue
		}
		if e, ok := index[key]; ok {
			e.value = strings.TrimSpace(value)
			last = e
			continue
		}
		last = &rawEntry{key: key, value: strings.TrimSpace(value)}
		entries = append(entries, last)
		index[key] = last
	}

	d := New()
	for _, e := range entries {
		if e.value == "" {
			glog.Warningf("descriptor: key %q has no value, skipping", e.key)
			continue
		}
		d.Set(e.key, parseValue(e.value))
	}
	return d
}

func parseValue(raw string) Value {
	if unquoted, ok := unquote(raw); ok {
		return Text(unquoted)
	}

	tokens := strings.Fields(raw)
	nums := make([]float64, 0, len(tokens))
	for _, tok := range tokens {
		f, ok := parseNumber(tok)
		if !ok {
			strs := make([]string, len(tokens))
			for i, t := range tokens {
				strs[i] = strings.Trim(t, `"'`)
			}
			return Text(strs...)
		}
		nums = append(nums, f)
	}
	return Number(nums...)
}

// unquote reports whether raw is wrapped in one pair of matching quotes.
func unquote(raw string) (string, bool) {
	if len(raw) < 2 {
		return "", false
	}
	q := raw[0]
	if (q != '"' && q != '\'') || raw[len(raw)-1] != q {
		return "", false
	}
	inner := raw[1 : len(raw)-1]
	if strings.IndexByte(inner, q) >= 0 {
		return "", false
	}
	return inner, true
}

// parseNumber accepts decimal and exponent notation but not the textual
// inf/nan spellings strconv also understands.
func parseNumber(tok string) (float64, bool) {
	if !strings.ContainsAny(tok, "0123456789") {
		return 0, false
	}
	f, err := strconv.ParseFloat(tok, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// Encode writes d in the descriptor text format. Long numeric lists wrap onto
// continuation lines.
func Encode(d *Descriptor) string {
	width := 0
	for _, k := range d.keys {
		if len(k) > width {
			width = len(k)
		}
	}

	var b strings.Builder
	for _, k := range d.keys {
		v := d.values[k]
		fmt.Fprintf(&b, "%-*s = ", width, k)
		if !v.IsNumeric() {
			b.WriteString(encodeStrings(v.Strings))
			b.WriteByte('\n')
			continue
		}
		if len(v.Numbers) == 0 {
			b.WriteByte('\n')
			continue
		}
		indent := strings.Repeat(" ", width+3)
		for i := 0; i < len(v.Numbers); i += maxListTokens {
			end := min(i+maxListTokens, len(v.Numbers))
			if i > 0 {
				b.WriteString(indent)
			}
			b.WriteString(Number(v.Numbers[i:end]...).String())
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func encodeStrings(strs []string) string {
	if len(strs) == 1 && strings.ContainsAny(strs[0], " =") {
		return `"` + strs[0] + `"`
	}
	allNumeric := true
	for _, s := range strs {
		if _, ok := parseNumber(s); !ok {
			allNumeric = false
			break
		}
	}
	if !allNumeric {
		return strings.Join(strs, " ")
	}
	quoted := make([]string, len(strs))
	for i, s := range strs {
		quoted[i] = `"` + s + `"`
	}
	return strings.Join(quoted, " ")
}

// Package binding substitutes ${path.to.value} placeholders in label text
// with values from per-row data, so one template string can label many rows.
package binding

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var placeholder = regexp.MustCompile(`\$\{([^}]+)\}`)

// Interpolate replaces ${path} placeholders in text with values looked up in
// data. Placeholders whose path does not resolve are left verbatim, as is the
// whole text when data is nil.
func Interpolate(text string, data map[string]any) string {
	if data == nil || !strings.Contains(text, "${") {
		return text
	}
	return placeholder.ReplaceAllStringFunc(text, func(match string) string {
		path := strings.TrimSpace(match[2 : len(match)-1])
		if path == "" {
			return match
		}
		if val, ok := lookup(data, path); ok {
			return fmt.Sprint(val)
		}
		return match
	})
}

// lookup walks a dotted path through the row's data tree. A segment is a map
// key optionally followed by [i] indexes into nested arrays, e.g.
// "stats.quartiles[1]". Any step that does not fit the data shape fails the
// whole lookup.
func lookup(data map[string]any, path string) (any, bool) {
	var cur any = data
	for _, seg := range strings.Split(path, ".") {
		key := seg
		var idxs []int
		if open := strings.IndexByte(seg, '['); open != -1 {
			var ok bool
			if idxs, ok = parseIndexes(seg[open:]); !ok {
				return nil, false
			}
			key = seg[:open]
		}
		if key != "" {
			m, ok := cur.(map[string]any)
			if !ok {
				return nil, false
			}
			if cur, ok = m[key]; !ok {
				return nil, false
			}
		}
		for _, idx := range idxs {
			arr, ok := cur.([]any)
			if !ok || idx < 0 || idx >= len(arr) {
				return nil, false
			}
			cur = arr[idx]
		}
	}
	return cur, true
}

// parseIndexes decodes a run of [i][j]... suffixes.
func parseIndexes(s string) ([]int, bool) {
	var idxs []int
	for s != "" {
		if s[0] != '[' {
			return nil, false
		}
		end := strings.IndexByte(s, ']')
		if end == -1 {
			return nil, false
		}
		idx, err := strconv.Atoi(s[1:end])
		if err != nil {
			return nil, false
		}
		idxs = append(idxs, idx)
		s = s[end+1:]
	}
	return idxs, true
}

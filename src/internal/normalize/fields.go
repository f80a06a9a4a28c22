package normalize

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"bookshelf/src/internal/bookmeta"
	"bookshelf/src/internal/stringsx"
)

// scalarString renders a JSON scalar as text. Numbers without a fractional
// part print as integers so a year of 1965 stays "1965".
func scalarString(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t), true
	case float64:
		if t == math.Trunc(t) && math.Abs(t) < 1e15 {
			return strconv.FormatInt(int64(t), 10), true
		}
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case int:
		return strconv.Itoa(t), true
	case int64:
		return strconv.FormatInt(t, 10), true
	case json.Number:
		return t.String(), true
	}
	return "", false
}

// stringField returns m[key] as text, or nil when the key is missing, null,
// or not a scalar.
func stringField(m map[string]any, key string) *string {
	s, ok := scalarString(m[key])
	if !ok {
		return nil
	}
	return &s
}

// countField returns m[key] as a non-negative integer, or nil.
func countField(m map[string]any, key string) *int {
	var n int64
	switch t := m[key].(type) {
	case float64:
		if t != math.Trunc(t) || t < 0 || t > math.MaxInt32 {
			return nil
		}
		n = int64(t)
	case int:
		n = int64(t)
	case int64:
		n = t
	case json.Number:
		v, err := t.Int64()
		if err != nil {
			return nil
		}
		n = v
	case string:
		v, err := strconv.ParseInt(strings.TrimSpace(t), 10, 32)
		if err != nil {
			return nil
		}
		n = v
	default:
		return nil
	}
	if n < 0 {
		return nil
	}
	i := int(n)
	return &i
}

// listField returns m[key] as an ordered list of non-empty strings. A single
// string is treated as a comma-delimited list. Missing or null yields nil.
func listField(m map[string]any, key string) []string {
	switch t := m[key].(type) {
	case []any:
		out := make([]string, 0, len(t))
		for _, it := range t {
			if s, ok := scalarString(it); ok && s != "" {
				out = append(out, s)
			}
		}
		return out
	case []string:
		out := make([]string, 0, len(t))
		for _, s := range t {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
		return out
	case string:
		return SplitDelimited(t)
	}
	return nil
}

// objectField returns the nested object at m[key]. Missing or null yields an
// empty map; any other type is a shape error.
func objectField(m map[string]any, key string) (map[string]any, error) {
	v, ok := m[key]
	if !ok || v == nil {
		return map[string]any{}, nil
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%s is %T, want object", key, v)
	}
	return obj, nil
}

func firstOf(list []string) *string {
	if len(list) == 0 {
		return nil
	}
	s := list[0]
	return &s
}

// SplitDelimited splits a comma-delimited string into trimmed, non-empty parts.
func SplitDelimited(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// selectISBNs picks the first identifier whose cleaned length is 10 and the
// first whose cleaned length is 13. Check digits are not verified.
func selectISBNs(ids []string) (isbn10, isbn13 *string) {
	for _, id := range ids {
		c := bookmeta.CleanISBN(id)
		switch len(c) {
		case 10:
			if isbn10 == nil {
				isbn10 = &c
			}
		case 13:
			if isbn13 == nil {
				isbn13 = &c
			}
		}
		if isbn10 != nil && isbn13 != nil {
			break
		}
	}
	return isbn10, isbn13
}

// pickCover prefers the regular thumbnail over the small one. A field that was
// present but blank is kept only when nothing better exists.
func pickCover(thumb, small *string) *string {
	if best := stringsx.FirstNonEmpty(bookmeta.Deref(thumb), bookmeta.Deref(small)); best != "" {
		return &best
	}
	if thumb != nil {
		return thumb
	}
	return small
}

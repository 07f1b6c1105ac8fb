package pocketbase

import (
	"fmt"
	"strconv"
	"strings"
)

// Filter binds params into a PocketBase filter expression. Each {:name}
// placeholder in expr is replaced by the literal form of params[name]:
// strings are single-quoted with embedded quotes escaped, numbers and
// bools are written bare, nil becomes null.
//
//	Filter("sid = {:sid}", map[string]any{"sid": "S1"}) // sid = 'S1'
//
// This mirrors the escaping of the official PocketBase SDKs. expr is
// scanned once, so placeholder text inside a bound value is never bound
// again. Placeholders without a param are left as written.
func Filter(expr string, params map[string]any) string {
	var b strings.Builder
	b.Grow(len(expr))

	for {
		start := strings.Index(expr, "{:")
		if start < 0 {
			break
		}
		end := strings.IndexByte(expr[start:], '}')
		if end < 0 {
			break
		}
		end += start

		b.WriteString(expr[:start])
		if val, ok := params[expr[start+2:end]]; ok {
			b.WriteString(literal(val))
		} else {
			b.WriteString(expr[start : end+1])
		}
		expr = expr[end+1:]
	}

	b.WriteString(expr)
	return b.String()
}

func literal(val any) string {
	switch v := val.(type) {
	case nil:
		return "null"
	case string:
		return "'" + strings.ReplaceAll(v, "'", `\'`) + "'"
	case bool:
		return strconv.FormatBool(v)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return literal(fmt.Sprint(v))
	}
}

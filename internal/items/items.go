// Package items applies the reverse/limit transform used by the process_items tool.
package items

import (
	"math"
	"slices"
)

// Options controls Transform. A nil Limit means no limit.
type Options struct {
	Reverse bool
	Limit   *int
}

// Result is the transformed sequence and its length.
type Result struct {
	Processed []string `json:"processed"`
	Count     int      `json:"count"`
}

// ParseOptions reads options from a loosely typed map. Unknown keys are
// ignored. "reverse" is truthy when it is true, a non-zero number or a
// non-empty string. "limit" is set only when it is a positive integral number.
func ParseOptions(raw map[string]any) Options {
	var opts Options
	if raw == nil {
		return opts
	}
	opts.Reverse = truthy(raw["reverse"])
	if n, ok := positiveInt(raw["limit"]); ok {
		opts.Limit = &n
	}
	return opts
}

// Transform reverses items if requested and then keeps at most Limit of them.
// The input slice is never modified.
func Transform(items []string, opts Options) Result {
	out := slices.Clone(items)
	if out == nil {
		out = []string{}
	}
	if opts.Reverse {
		slices.Reverse(out)
	}
	if opts.Limit != nil && *opts.Limit >= 0 && *opts.Limit < len(out) {
		out = out[:*opts.Limit]
	}
	return Result{Processed: out, Count: len(out)}
}

func truthy(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		return t != ""
	case float64:
		return t != 0
	case int:
		return t != 0
	case int64:
		return t != 0
	case []any:
		return len(t) > 0
	case map[string]any:
		return len(t) > 0
	}
	return false
}

func positiveInt(v any) (int, bool) {
	var f float64
	switch t := v.(type) {
	case int:
		return t, t > 0
	case int64:
		if t <= 0 || t > math.MaxInt32 {
			return 0, false
		}
		return int(t), true
	case float64:
		f = t
	default:
		return 0, false
	}
	if f <= 0 || f != math.Trunc(f) || f > math.MaxInt32 {
		return 0, false
	}
	return int(f), true
}

package items

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(n int) *int { return &n }

func TestTransform(t *testing.T) {
	tests := []struct {
		name  string
		items []string
		opts  Options
		want  []string
	}{
		{"no options", []string{"a", "b", "c"}, Options{}, []string{"a", "b", "c"}},
		{"reverse", []string{"a", "b", "c"}, Options{Reverse: true}, []string{"c", "b", "a"}},
		{"limit", []string{"a", "b", "c"}, Options{Limit: intPtr(2)}, []string{"a", "b"}},
		{"reverse then limit", []string{"a", "b", "c"}, Options{Reverse: true, Limit: intPtr(2)}, []string{"c", "b"}},
		{"limit larger than input", []string{"a", "b"}, Options{Limit: intPtr(10)}, []string{"a", "b"}},
		{"limit zero", []string{"a", "b"}, Options{Limit: intPtr(0)}, []string{}},
		{"empty input", []string{}, Options{Reverse: true, Limit: intPtr(3)}, []string{}},
		{"nil input", nil, Options{}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Transform(tt.items, tt.opts)
			assert.Equal(t, tt.want, got.Processed)
			assert.Equal(t, len(tt.want), got.Count)
		})
	}
}

func TestTransform_DoesNotMutateInput(t *testing.T) {
	in := []string{"a", "b", "c"}
	Transform(in, Options{Reverse: true, Limit: intPtr(1)})
	assert.Equal(t, []string{"a", "b", "c"}, in)
}

func TestParseOptions(t *testing.T) {
	tests := []struct {
		name      string
		raw       map[string]any
		reverse   bool
		wantLimit *int
	}{
		{"nil map", nil, false, nil},
		{"empty map", map[string]any{}, false, nil},
		{"reverse true", map[string]any{"reverse": true}, true, nil},
		{"reverse false", map[string]any{"reverse": false}, false, nil},
		{"reverse non-zero number", map[string]any{"reverse": float64(1)}, true, nil},
		{"reverse zero", map[string]any{"reverse": float64(0)}, false, nil},
		{"reverse non-empty string", map[string]any{"reverse": "yes"}, true, nil},
		{"reverse empty string", map[string]any{"reverse": ""}, false, nil},
		{"reverse non-empty list", map[string]any{"reverse": []any{float64(1)}}, true, nil},
		{"reverse empty list", map[string]any{"reverse": []any{}}, false, nil},
		{"reverse non-empty object", map[string]any{"reverse": map[string]any{"a": true}}, true, nil},
		{"reverse empty object", map[string]any{"reverse": map[string]any{}}, false, nil},
		{"limit from json number", map[string]any{"limit": float64(2)}, false, intPtr(2)},
		{"limit int", map[string]any{"limit": 3}, false, intPtr(3)},
		{"limit zero ignored", map[string]any{"limit": float64(0)}, false, nil},
		{"negative limit ignored", map[string]any{"limit": float64(-1)}, false, nil},
		{"fractional limit ignored", map[string]any{"limit": 1.5}, false, nil},
		{"string limit ignored", map[string]any{"limit": "2"}, false, nil},
		{"unknown keys ignored", map[string]any{"sort": true, "reverse": true}, true, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := ParseOptions(tt.raw)
			assert.Equal(t, tt.reverse, opts.Reverse)
			assert.Equal(t, tt.wantLimit, opts.Limit)
		})
	}
}

func TestResult_JSON(t *testing.T) {
	data, err := json.Marshal(Transform([]string{"a", "b", "c"}, ParseOptions(map[string]any{"reverse": true, "limit": float64(2)})))
	require.NoError(t, err)
	assert.JSONEq(t, `{"processed":["c","b"],"count":2}`, string(data))

	data, err = json.Marshal(Transform(nil, Options{}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"processed":[],"count":0}`, string(data))
}

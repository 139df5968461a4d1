package textparse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSONObject(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
		ok    bool
	}{
		{
			name:  "bare object",
			input: `{"a": 1}`,
			want:  `{"a": 1}`,
			ok:    true,
		},
		{
			name:  "object wrapped in prose",
			input: "Here is the graph you asked for:\n{\"id\": \"root\"}\nLet me know if you need more.",
			want:  `{"id": "root"}`,
			ok:    true,
		},
		{
			name:  "markdown fence",
			input: "```json\n{\"questions\": []}\n```",
			want:  `{"questions": []}`,
			ok:    true,
		},
		{
			name:  "stray closing brace in prose before the object",
			input: "weird } prefix {\"a\": {\"b\": 2}} trailing",
			want:  `{"a": {"b": 2}}`,
			ok:    true,
		},
		{
			name:  "braces inside string values do not break balancing",
			input: `{"desc": "use {placeholders} like {this}", "n": 1}`,
			want:  `{"desc": "use {placeholders} like {this}", "n": 1}`,
			ok:    true,
		},
		{
			name:  "escaped quote inside string",
			input: `{"title": "the \"core\" element {x}"}`,
			want:  `{"title": "the \"core\" element {x}"}`,
			ok:    true,
		},
		{
			name:  "skips invalid candidate and finds later valid object",
			input: `{not json} but {"valid": true}`,
			want:  `{"valid": true}`,
			ok:    true,
		},
		{
			name:  "truncated object",
			input: `{"a": {"b": 1`,
			ok:    false,
		},
		{
			name:  "complete inner object inside truncated outer is recovered",
			input: `{"a": {"b": 1}`,
			want:  `{"b": 1}`,
			ok:    true,
		},
		{
			name:  "no braces at all",
			input: "plain refusal text with no structure",
			ok:    false,
		},
		{
			name:  "empty input",
			input: "",
			ok:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractJSONObject(tt.input)
			require.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

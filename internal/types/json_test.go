package types

import "testing"

func TestCleanJSONFromMarkdown(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain json", `{"a":1}`, `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"bare fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"surrounding whitespace", "  \n{\"a\":1}\n  ", `{"a":1}`},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		if got := CleanJSONFromMarkdown(tt.input); got != tt.want {
			t.Errorf("%s: CleanJSONFromMarkdown(%q) = %q, want %q", tt.name, tt.input, got, tt.want)
		}
	}
}

func TestExtractJSONObject(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"bare object", `{"a":1}`, `{"a":1}`},
		{"leading prose", `Here is the plan: {"a":1}`, `{"a":1}`},
		{"trailing prose", `{"a":1} hope that helps`, `{"a":1}`},
		{"no object", "no braces here", ""},
		{"reversed braces", "} {", ""},
	}

	for _, tt := range tests {
		if got := ExtractJSONObject(tt.input); got != tt.want {
			t.Errorf("%s: ExtractJSONObject(%q) = %q, want %q", tt.name, tt.input, got, tt.want)
		}
	}
}

package sanitize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizer_Clean(t *testing.T) {
	s := New()

	tests := []struct {
		name     string
		input    string
		contains []string
		excludes []string
	}{
		{
			name:  "empty input passes through",
			input: "",
		},
		{
			name:     "plain text untouched",
			input:    "Moisson 2025 à la ferme",
			contains: []string{"Moisson 2025 à la ferme"},
		},
		{
			name:     "script element removed with its content",
			input:    `hello <script>alert("xss")</script> world`,
			contains: []string{"hello", "world"},
			excludes: []string{"<script>", "alert"},
		},
		{
			name:     "event handlers stripped",
			input:    `<img src="x" onerror="steal()">photo`,
			contains: []string{"photo"},
			excludes: []string{"onerror", "steal"},
		},
		{
			name:     "basic formatting survives",
			input:    "<b>important</b> note",
			contains: []string{"<b>important</b>", "note"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := s.Clean(tt.input)
			for _, want := range tt.contains {
				assert.Contains(t, out, want)
			}
			for _, unwanted := range tt.excludes {
				assert.NotContains(t, out, unwanted)
			}
		})
	}
}

func TestSanitizer_Idempotent(t *testing.T) {
	s := New()

	inputs := []string{
		"plain text",
		"a & b < c",
		`hello <script>alert(1)</script>`,
		"<b>bold</b> and <i>italic</i>",
	}

	for _, input := range inputs {
		once := s.Clean(input)
		twice := s.Clean(once)
		assert.Equal(t, once, twice, "sanitizing twice must not change the result for %q", input)
	}
}

func TestSanitizer_CleanTrimmed(t *testing.T) {
	s := New()
	assert.Equal(t, "name", s.CleanTrimmed("  name \n"))
	assert.Equal(t, "", s.CleanTrimmed("   "))
}

package richtext

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSanitizer_Sanitize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "Should keep plain text",
			input:    "What is your name?",
			expected: "What is your name?",
		},
		{
			name:     "Should keep basic formatting",
			input:    "<b>Required</b> question",
			expected: "<b>Required</b> question",
		},
		{
			name:     "Should strip script tags",
			input:    `Hello<script>alert("x")</script>`,
			expected: "Hello",
		},
		{
			name:     "Should strip event handler attributes",
			input:    `<a href="https://example.com" onclick="steal()">link</a>`,
			expected: `<a href="https://example.com" rel="nofollow">link</a>`,
		},
	}

	s := NewSanitizer()
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.expected, s.Sanitize(tc.input))
		})
	}
}

func TestSanitizer_SanitizePtr(t *testing.T) {
	s := NewSanitizer()
	require.Nil(t, s.SanitizePtr(nil))

	in := "  <i>note</i>  "
	out := s.SanitizePtr(&in)
	require.NotNil(t, out)
	require.Equal(t, "<i>note</i>", *out)
}

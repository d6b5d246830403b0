package richtext

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// Sanitizer strips markup that is unsafe to render back to respondents from
// owner-authored text such as form descriptions and field labels.
type Sanitizer struct {
	policy *bluemonday.Policy
}

func NewSanitizer() *Sanitizer {
	return &Sanitizer{policy: bluemonday.UGCPolicy()}
}

func (s *Sanitizer) Sanitize(input string) string {
	return strings.TrimSpace(s.policy.Sanitize(input))
}

// SanitizePtr sanitizes an optional value, keeping nil as nil
func (s *Sanitizer) SanitizePtr(input *string) *string {
	if input == nil {
		return nil
	}
	clean := s.Sanitize(*input)
	return &clean
}

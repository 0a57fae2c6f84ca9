package service

import (
	"fmt"
	"github.com/microcosm-cc/bluemonday"
	"html"
	"strings"
	"sync"
	"unicode/utf8"
)

var (
	textPolicyOnce sync.Once
	textPolicy     *bluemonday.Policy
)

func textSanitizer() *bluemonday.Policy {
	textPolicyOnce.Do(func() {
		textPolicy = bluemonday.StrictPolicy()
	})
	return textPolicy
}

// maxSanitizePasses bounds how many layers of entity encoding are peeled off.
const maxSanitizePasses = 5

// sanitizeText strips all markup from user input and returns plain text.
// Unescaping can turn encoded markup such as &lt;b&gt; into real tags, so the
// text goes through the policy again until it no longer changes. Input that
// is still changing after maxSanitizePasses is kept in its escaped form.
func sanitizeText(raw string) string {
	text := strings.TrimSpace(raw)
	for i := 0; i < maxSanitizePasses; i++ {
		if text == "" {
			return ""
		}
		escaped := textSanitizer().Sanitize(text)
		plain := strings.TrimSpace(html.UnescapeString(escaped))
		if plain == text {
			return plain
		}
		if i == maxSanitizePasses-1 {
			return strings.TrimSpace(escaped)
		}
		text = plain
	}
	return text
}

func checkText(v *ValidationError, field, value string, maxLen int) {
	switch {
	case value == "":
		v.add(field, "this field is required")
	case maxLen > 0 && utf8.RuneCountInString(value) > maxLen:
		v.add(field, fmt.Sprintf("must be at most %d characters", maxLen))
	}
}

package risk

import (
	"regexp"
	"strings"
)

var suspiciousEmailPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^[0-9]+@`),         // all-digit local part
	regexp.MustCompile(`@[^@]*[0-9]{4,}`),  // long digit run in the domain
	regexp.MustCompile(`[^a-zA-Z0-9@._-]`), // unexpected characters
	regexp.MustCompile(`\.\.`),             // consecutive dots
	regexp.MustCompile(`@[^@]*\+`),         // plus tag in the domain
}

// SuspiciousEmail reports whether email matches any known abuse pattern.
func SuspiciousEmail(email string) bool {
	for _, p := range suspiciousEmailPatterns {
		if p.MatchString(email) {
			return true
		}
	}
	return false
}

// ExtractDomain returns the lower-cased domain of email, or "" when email
// has no usable domain part.
func ExtractDomain(email string) string {
	at := strings.LastIndex(email, "@")
	if at < 0 || at == len(email)-1 {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(email[at+1:]))
}

package sanitizer

import (
	"regexp"
	"strings"
)

var (
	dotRegex        = regexp.MustCompile(`\.{2,}`)
	whitespaceRegex = regexp.MustCompile(`\s+`)
	phoneJunkRegex  = regexp.MustCompile(`[^\d+]`)
)

// NormalizeEmail lowercases and trims an address and collapses repeated dots
// in the local part. Input that does not look like an address is only trimmed
// and lowercased.
func NormalizeEmail(email string) string {
	email = strings.ToLower(strings.TrimSpace(email))

	local, domain, ok := strings.Cut(email, "@")
	if !ok || strings.Contains(domain, "@") {
		return email
	}

	local = dotRegex.ReplaceAllString(local, ".")
	local = strings.Trim(local, ".")

	return local + "@" + domain
}

// NormalizePhone strips everything except digits and a single leading plus.
func NormalizePhone(phone string) string {
	phone = strings.TrimSpace(phone)
	plus := strings.HasPrefix(phone, "+")
	digits := strings.ReplaceAll(phoneJunkRegex.ReplaceAllString(phone, ""), "+", "")
	if plus && digits != "" {
		return "+" + digits
	}
	return digits
}

// NormalizeWhitespace collapses runs of whitespace to a single space and trims.
func NormalizeWhitespace(s string) string {
	return strings.TrimSpace(whitespaceRegex.ReplaceAllString(s, " "))
}

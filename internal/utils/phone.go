package utils

import (
	"regexp"
	"strings"
)

var phoneRegex = regexp.MustCompile(`^\+?[1-9]\d{7,14}$`)

// NormalizePhone strips separators and prepends the default country code
// when the number has no international prefix.
func NormalizePhone(phone string) string {
	cleaned := strings.NewReplacer(" ", "", "-", "", "(", "", ")", "").Replace(phone)
	if cleaned == "" {
		return cleaned
	}
	if !strings.HasPrefix(cleaned, "+") {
		cleaned = DefaultCountryCode + cleaned
	}
	return cleaned
}

func IsValidPhone(phone string) bool {
	return phoneRegex.MatchString(NormalizePhone(phone))
}

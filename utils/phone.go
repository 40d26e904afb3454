// utils/phone.go
package utils

import (
	"regexp"
	"strings"
)

var nonDigits = regexp.MustCompile(`[^0-9]`)

// NormalizePhone strips every non-digit character and rewrites the Iranian
// domestic trunk prefix to the country code, so "0912 345-6789" becomes
// "989123456789". Numbers already in international form pass through.
func NormalizePhone(phone string) string {
	phone = nonDigits.ReplaceAllString(phone, "")

	if len(phone) == 11 && strings.HasPrefix(phone, "09") {
		phone = "98" + phone[1:]
	} else if len(phone) == 10 && strings.HasPrefix(phone, "9") {
		phone = "98" + phone
	}

	return phone
}

// ValidatePhone checks that a normalized number looks like a deliverable
// mobile number: 10-14 digits, no leading zero.
func ValidatePhone(phone string) bool {
	normalized := NormalizePhone(phone)
	match, _ := regexp.MatchString(`^[1-9]\d{9,13}$`, normalized)
	return match
}

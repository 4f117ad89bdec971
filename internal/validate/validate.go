package validate

import (
	"regexp"
	"strings"
)

// MaxMessageLen bounds chat message content.
const MaxMessageLen = 1000

var (
	reEmail = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)
	reRoll  = regexp.MustCompile(`^[A-Za-z0-9-]{4,20}$`)
	reQ     = regexp.MustCompile(`^[A-Za-z0-9 _'\-]{1,50}$`)
)

// CampusEmail validates an address and checks it belongs to the
// institutional domain (e.g. "iitp.ac.in").
func CampusEmail(s, domain string) (string, bool) {
	s = strings.TrimSpace(strings.ToLower(s))
	if len(s) == 0 || len(s) > 60 || !reEmail.MatchString(s) {
		return "", false
	}
	return s, strings.HasSuffix(s, "@"+strings.TrimPrefix(domain, "@"))
}

// RollNumber validates a registration number.
func RollNumber(s string) (string, bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	return s, reRoll.MatchString(s)
}

// Name validates a displayable name with a reasonable max length.
func Name(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" || len(s) > 50 {
		return "", false
	}
	return s, true
}

// Q validates a search query: trims, enforces allowed characters and max length.
func Q(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	if len(s) > 50 {
		s = s[:50]
	}
	return s, reQ.MatchString(s)
}

// Title bounds a listing title.
func Title(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" || len(s) > 100 {
		return "", false
	}
	return s, true
}

// Description bounds a listing description.
func Description(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" || len(s) > 1000 {
		return "", false
	}
	return s, true
}

// MessageContent checks a chat message is non-empty and within bound.
func MessageContent(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, s != "" && len(s) <= MaxMessageLen
}

// Price rejects negative prices.
func Price(p float64) bool { return p >= 0 }

// Password enforces a length window plus minimal character classes.
func Password(s string) bool {
	l := len(s)
	if l < 6 || l > 72 {
		return false
	}
	var hasLetter, hasDigit bool
	for _, r := range s {
		switch {
		case 'a' <= r && r <= 'z' || 'A' <= r && r <= 'Z':
			hasLetter = true
		case '0' <= r && r <= '9':
			hasDigit = true
		}
	}
	return hasLetter && hasDigit
}

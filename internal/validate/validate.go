package validate

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"shelfkeeper/internal/domain"
	"shelfkeeper/internal/expiry"
)

const (
	MaxQuantity = 10000
	maxQ        = 50
)

var (
	reEmail   = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)
	reID      = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)
	reBarcode = regexp.MustCompile(`^[0-9A-Za-z-]{1,32}$`)
	reCur     = regexp.MustCompile(`^[A-Za-z]{3}$`)
)

func Email(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if len(s) == 0 || len(s) > 50 {
		return "", false
	}
	return s, reEmail.MatchString(s)
}

// Q validates a search query: any printable text, cut to maxQ runes.
// Markup characters are refused. An empty query is valid and means no search.
func Q(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", true
	}
	if !utf8.ValidString(s) {
		return "", false
	}
	if r := []rune(s); len(r) > maxQ {
		s = strings.TrimSpace(string(r[:maxQ]))
	}
	for _, r := range s {
		if !unicode.IsPrint(r) || strings.ContainsRune("<>", r) {
			return "", false
		}
	}
	return s, true
}

// Quantity checks a unit count is within 1..MaxQuantity.
func Quantity(n int) (int, bool) {
	return n, n >= 1 && n <= MaxQuantity
}

// ID validates a batch identifier.
func ID(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, s != "" && reID.MatchString(s)
}

func Barcode(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, reBarcode.MatchString(s)
}

// Date accepts YYYY-MM-DD.
func Date(s string) (domain.Date, bool) {
	d, err := domain.ParseDate(strings.TrimSpace(s))
	if err != nil {
		return domain.Date{}, false
	}
	return d, true
}

// Category accepts a category name or empty/"All" for no filter.
func Category(s string) (domain.Category, bool) {
	s = strings.TrimSpace(s)
	if s == "" || s == expiry.CategoryAll {
		return "", true
	}
	c := domain.Category(s)
	return c, c.Valid()
}

// Status accepts the statuses a batch can be moved to.
func Status(s string) (domain.BatchStatus, bool) {
	st := domain.BatchStatus(strings.ToLower(strings.TrimSpace(s)))
	return st, st.Valid() && st != domain.StatusActive
}

func Horizon(s string) (expiry.Horizon, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return expiry.HorizonWeek, true
	}
	h := expiry.Horizon(s)
	return h, h.Valid()
}

func Filter(s string) (expiry.UrgencyFilter, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return expiry.FilterAll, true
	}
	f := expiry.UrgencyFilter(s)
	return f, f.Valid()
}

// Name validates a displayable name with a reasonable max length.
func Name(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" || len(s) > 80 {
		return "", false
	}
	return s, true
}

func Currency(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return strings.ToUpper(s), reCur.MatchString(s)
}

// Password enforces a simple length window for login checks.
func Password(s string) bool {
	l := len(s)
	if l < 8 || l > 64 {
		return false
	}
	var hasLower, hasUpper, hasDigit, hasSymbol bool
	for _, r := range s {
		switch {
		case 'a' <= r && r <= 'z':
			hasLower = true
		case 'A' <= r && r <= 'Z':
			hasUpper = true
		case '0' <= r && r <= '9':
			hasDigit = true
		default:
			hasSymbol = true
		}
	}
	return hasLower && hasUpper && hasDigit && hasSymbol
}

package present

import (
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	shortDateLayout = "Jan 2, 2006"
	longDateLayout  = "January 2, 2006"

	visibleTags = 3
)

var (
	printer = message.NewPrinter(language.English)
	upper   = cases.Upper(language.English)
)

// ShortDate formats t for cards. A zero time renders as an empty string.
func ShortDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.In(time.Local).Format(shortDateLayout)
}

// LongDate formats t for the detail header.
func LongDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.In(time.Local).Format(longDateLayout)
}

// Count formats n with thousands separators.
func Count(n int) string {
	return printer.Sprintf("%d", n)
}

// CardTags returns the first three tags uppercased and the number of tags
// left out.
func CardTags(tags []string) ([]string, int) {
	shown := tags
	if len(shown) > visibleTags {
		shown = shown[:visibleTags]
	}

	labels := make([]string, 0, len(shown))
	for _, tag := range shown {
		labels = append(labels, upper.String(tag))
	}
	return labels, len(tags) - len(shown)
}

// Initials takes the first letter of up to two words of the author name.
func Initials(author string) string {
	words := strings.Fields(author)
	if len(words) == 0 {
		return "A"
	}

	var b strings.Builder
	for _, word := range words {
		r, _ := utf8.DecodeRuneInString(word)
		b.WriteRune(r)
		if utf8.RuneCountInString(b.String()) == 2 {
			break
		}
	}
	return b.String()
}

// CategoryLabel is the uppercased category shown in card headers.
func CategoryLabel(category string) string {
	if category == "" {
		return "ARTICLE"
	}
	return upper.String(category)
}

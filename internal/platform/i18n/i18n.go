// Package i18n defines the locales the storefront supports and the
// locale-sensitive formatting shared by API surfaces.
package i18n

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var (
	japanese = language.MustParse("ja-JP")
	english  = language.MustParse("en-US")

	supported = []language.Tag{japanese, english}
	matcher   = language.NewMatcher(supported)
)

// SupportedTags returns the supported language tags, default first.
func SupportedTags() []language.Tag {
	out := make([]language.Tag, len(supported))
	copy(out, supported)
	return out
}

// DefaultTag returns the default language tag.
func DefaultTag() language.Tag {
	return japanese
}

// ParseTag parses value and reports whether it maps to a supported tag.
// Region-less or regional variants ("ja", "en-GB") resolve to the
// supported tag for their base language.
func ParseTag(value string) (language.Tag, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return DefaultTag(), false
	}
	tag, err := language.Parse(value)
	if err != nil {
		return DefaultTag(), false
	}
	base, confidence := tag.Base()
	if confidence == language.No {
		return DefaultTag(), false
	}
	for _, candidate := range supported {
		candidateBase, _ := candidate.Base()
		if candidateBase == base {
			return candidate, true
		}
	}
	return DefaultTag(), false
}

// MatchTags picks the best supported tag for an Accept-Language preference list.
func MatchTags(tags []language.Tag) language.Tag {
	if len(tags) == 0 {
		return DefaultTag()
	}
	_, index, confidence := matcher.Match(tags...)
	if confidence == language.No {
		return DefaultTag()
	}
	return supported[index]
}

// LocaleString renders a tag as the catalog locale identifier ("ja-JP").
func LocaleString(tag language.Tag) string {
	if normalized, ok := ParseTag(tag.String()); ok {
		return normalized.String()
	}
	return DefaultTag().String()
}

// FormatYen renders an amount of yen for display, e.g. "¥4,400".
func FormatYen(tag language.Tag, amount int64) string {
	printer := message.NewPrinter(tag)
	return "¥" + printer.Sprint(number.Decimal(amount))
}

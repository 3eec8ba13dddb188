package i18n

import (
	"testing"

	"golang.org/x/text/language"
)

func TestParseTag(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input  string
		want   string
		wantOK bool
	}{
		{input: "ja-JP", want: "ja-JP", wantOK: true},
		{input: "ja", want: "ja-JP", wantOK: true},
		{input: "en", want: "en-US", wantOK: true},
		{input: "en-GB", want: "en-US", wantOK: true},
		{input: "fr-FR", want: "ja-JP", wantOK: false},
		{input: "", want: "ja-JP", wantOK: false},
		{input: "!!", want: "ja-JP", wantOK: false},
	}
	for _, tc := range tests {
		got, ok := ParseTag(tc.input)
		if ok != tc.wantOK || got.String() != tc.want {
			t.Fatalf("ParseTag(%q) = %s, %t; want %s, %t", tc.input, got, ok, tc.want, tc.wantOK)
		}
	}
}

func TestMatchTags(t *testing.T) {
	t.Parallel()

	tags, _, err := language.ParseAcceptLanguage("fr-CH, en;q=0.8, ja;q=0.5")
	if err != nil {
		t.Fatalf("parse accept language: %v", err)
	}
	if got := MatchTags(tags); got.String() != "en-US" {
		t.Fatalf("MatchTags = %s, want en-US", got)
	}
	if got := MatchTags(nil); got != DefaultTag() {
		t.Fatalf("MatchTags(nil) = %s, want default", got)
	}
}

func TestSupportedTagsReturnsCopy(t *testing.T) {
	t.Parallel()

	tags := SupportedTags()
	tags[0] = language.French
	if SupportedTags()[0] != DefaultTag() {
		t.Fatal("expected SupportedTags to return a copy")
	}
}

func TestLocaleString(t *testing.T) {
	t.Parallel()

	if got := LocaleString(language.English); got != "en-US" {
		t.Fatalf("LocaleString(en) = %q, want en-US", got)
	}
	if got := LocaleString(language.French); got != "ja-JP" {
		t.Fatalf("LocaleString(fr) = %q, want ja-JP", got)
	}
}

func TestFormatYen(t *testing.T) {
	t.Parallel()

	if got := FormatYen(language.MustParse("en-US"), 4400); got != "¥4,400" {
		t.Fatalf("FormatYen = %q, want %q", got, "¥4,400")
	}
	if got := FormatYen(DefaultTag(), 980); got != "¥980" {
		t.Fatalf("FormatYen = %q, want %q", got, "¥980")
	}
}

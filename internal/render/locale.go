package render

import (
	"os"
	"strings"

	"golang.org/x/text/language"

	"taskman/internal/task"
)

// NoDueDate is shown for tasks without a due date.
const NoDueDate = "No due date"

// Short date layouts for the locales we know, indexed like localeTags.
var (
	localeTags = []language.Tag{
		language.AmericanEnglish,
		language.BritishEnglish,
		language.German,
		language.French,
		language.Spanish,
		language.Italian,
		language.Dutch,
		language.Polish,
		language.Russian,
		language.Japanese,
		language.Chinese,
		language.Korean,
	}
	localeLayouts = []string{
		"1/2/2006",
		"02/01/2006",
		"2.1.2006",
		"02/01/2006",
		"2/1/2006",
		"2/1/2006",
		"2-1-2006",
		"2.01.2006",
		"02.01.2006",
		"2006/1/2",
		"2006/1/2",
		"2006. 1. 2.",
	}
	localeMatcher = language.NewMatcher(localeTags)
)

// Locale formats dates the way a user's region writes them.
// The zero Locale formats ISO dates.
type Locale struct {
	tag    language.Tag
	layout string
}

// NewLocale returns the closest known locale to tag. Tags we cannot match
// with at least low confidence fall back to ISO dates.
func NewLocale(tag language.Tag) Locale {
	if tag == language.Und {
		return Locale{}
	}
	_, i, conf := localeMatcher.Match(tag)
	if conf == language.No {
		return Locale{tag: tag}
	}
	return Locale{tag: tag, layout: localeLayouts[i]}
}

// ParseLocale parses a BCP 47 tag or a POSIX locale name such as
// "de_DE.UTF-8". Unparseable names give the ISO locale.
func ParseLocale(name string) Locale {
	name = strings.TrimSpace(name)
	if i := strings.IndexAny(name, ".@"); i >= 0 {
		name = name[:i]
	}
	if name == "" || name == "C" || name == "POSIX" {
		return Locale{}
	}
	tag, err := language.Parse(strings.ReplaceAll(name, "_", "-"))
	if err != nil {
		return Locale{}
	}
	return NewLocale(tag)
}

// LocaleFromEnv reads the locale from LC_ALL, LC_TIME or LANG, in that order.
func LocaleFromEnv() Locale {
	for _, key := range []string{"LC_ALL", "LC_TIME", "LANG"} {
		if v := os.Getenv(key); v != "" {
			return ParseLocale(v)
		}
	}
	return Locale{}
}

// LocaleFromAcceptLanguage picks the locale from an Accept-Language header,
// or returns fallback when the header names nothing usable.
func LocaleFromAcceptLanguage(header string, fallback Locale) Locale {
	tags, _, err := language.ParseAcceptLanguage(header)
	if err != nil || len(tags) == 0 {
		return fallback
	}
	return NewLocale(tags[0])
}

// Tag returns the language tag, language.Und for the ISO locale.
func (l Locale) Tag() language.Tag {
	return l.tag
}

// Layout returns the time layout used for dates.
func (l Locale) Layout() string {
	if l.layout == "" {
		return task.DateLayout
	}
	return l.layout
}

// FormatDueDate returns the due date of t in the locale's layout, or
// NoDueDate. Dates that do not parse are shown as stored.
func (l Locale) FormatDueDate(t task.Task) string {
	if t.DueDateOnly() == "" {
		return NoDueDate
	}
	due, ok := t.Due()
	if !ok {
		return t.DueDateOnly()
	}
	return due.Format(l.Layout())
}

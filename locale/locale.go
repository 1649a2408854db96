// Package locale holds the interface languages supported by campusride and
// the message catalog used for emails and route directions.
package locale

import (
	"errors"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Language is a supported interface language code.
type Language string

const (
	English Language = "en"
	Zulu    Language = "zu"
	Sesotho Language = "st"

	Default = English
)

// ErrUnsupported is returned for language codes outside [Supported].
var ErrUnsupported = errors.New("unsupported language")

var supported = []Language{English, Zulu, Sesotho}

var matcher = language.NewMatcher([]language.Tag{
	language.English,
	language.Zulu,
	language.MustParse("st"),
})

// Supported returns the supported languages, default first.
func Supported() []Language {
	out := make([]Language, len(supported))
	copy(out, supported)
	return out
}

// Parse resolves a BCP 47 code to a supported language. Region and script
// subtags are ignored, so "zu-ZA" parses as [Zulu]. An empty value yields
// [Default].
func Parse(value string) (Language, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return Default, nil
	}
	tag, err := language.Parse(value)
	if err != nil {
		return "", ErrUnsupported
	}
	base, _ := tag.Base()
	lang := Language(base.String())
	if !lang.Valid() {
		return "", ErrUnsupported
	}
	return lang, nil
}

// Match picks the best supported language for an Accept-Language header,
// falling back to [Default].
func Match(acceptLanguage string) Language {
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return Default
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return Default
	}
	return supported[idx]
}

// Valid reports whether l is one of the supported languages.
func (l Language) Valid() bool {
	for _, s := range supported {
		if l == s {
			return true
		}
	}
	return false
}

// Tag returns the x/text tag for l, or English when l is not supported.
func (l Language) Tag() language.Tag {
	switch l {
	case Zulu:
		return language.Zulu
	case Sesotho:
		return sesothoTag
	default:
		return language.English
	}
}

func (l Language) String() string {
	return string(l)
}

// Printer returns a message printer bound to l.
func Printer(l Language) *message.Printer {
	return message.NewPrinter(l.Tag())
}

var sesothoTag = language.MustParse("st")

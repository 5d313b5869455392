package i18n

import (
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Catalog renders messages in the language negotiated for a request.
type Catalog struct {
	builder *catalog.Builder
	matcher language.Matcher
	tags    []language.Tag
}

// New builds a Catalog whose fallback language is defaultLocale.
func New(defaultLocale string) (*Catalog, error) {
	def, err := language.Parse(defaultLocale)
	if err != nil {
		return nil, fmt.Errorf("i18n: parse locale %q: %w", defaultLocale, err)
	}
	base, _ := def.Base()

	var tags []language.Tag
	for tag := range translations {
		if b, _ := tag.Base(); b == base {
			tags = append([]language.Tag{tag}, tags...)
			continue
		}
		tags = append(tags, tag)
	}
	if b, _ := tags[0].Base(); b != base {
		return nil, fmt.Errorf("i18n: unsupported locale %q", defaultLocale)
	}

	builder := catalog.NewBuilder(catalog.Fallback(tags[0]))
	for tag, msgs := range translations {
		for key, text := range msgs {
			if err := builder.SetString(tag, key, text); err != nil {
				return nil, fmt.Errorf("i18n: set %s message: %w", tag, err)
			}
		}
	}

	return &Catalog{
		builder: builder,
		matcher: language.NewMatcher(tags),
		tags:    tags,
	}, nil
}

// Printer returns a printer for the best match of an Accept-Language value.
// Unparseable or unsupported values fall back to the default locale.
func (c *Catalog) Printer(acceptLanguage string) *message.Printer {
	return message.NewPrinter(c.Match(acceptLanguage), message.Catalog(c.builder))
}

// Match resolves an Accept-Language value to one of the supported tags.
func (c *Catalog) Match(acceptLanguage string) language.Tag {
	desired, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(desired) == 0 {
		return c.tags[0]
	}
	_, idx, confidence := c.matcher.Match(desired...)
	if confidence == language.No {
		return c.tags[0]
	}
	return c.tags[idx]
}

// Default returns the fallback language.
func (c *Catalog) Default() language.Tag {
	return c.tags[0]
}

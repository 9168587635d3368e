// Copyright 2026 The Gloss Authors
// SPDX-License-Identifier: MIT

// Package prompt turns a text selection into the messages sent to the
// completion endpoint.
package prompt

import (
	"fmt"

	"github.com/davetashner/gloss/internal/langdetect"
)

// Phase is the position of a request in a conversation.
type Phase int

const (
	// PhaseInitial starts a fresh analysis.
	PhaseInitial Phase = iota
	// PhaseFollowUp continues an existing conversation.
	PhaseFollowUp
)

func (p Phase) String() string {
	if p == PhaseFollowUp {
		return "follow-up"
	}
	return "initial"
}

// Package is a composed completion request.
type Package struct {
	// System is the system message. Empty for follow-ups and custom prompts.
	System string

	// User is the user message.
	User string

	// ResponseLanguage is the language the answer is requested in.
	ResponseLanguage string
}

// Composer builds Packages. The zero value uses the built-in templates.
type Composer struct {
	system map[langdetect.Tag]string
}

// NewComposer returns a Composer whose system templates are replaced by
// overrides where a tag is present. The map is copied.
func NewComposer(overrides map[langdetect.Tag]string) *Composer {
	c := &Composer{system: make(map[langdetect.Tag]string, len(overrides))}
	for tag, s := range overrides {
		c.system[tag] = s
	}
	return c
}

// Compose builds the request for text. For PhaseFollowUp text is the raw
// question. A non-empty custom prompt is used verbatim in place of the
// default templates; the caller embeds the source text in it.
func (c *Composer) Compose(text string, lang langdetect.Tag, phase Phase, custom string) Package {
	pkg := Package{ResponseLanguage: ResponseLanguage}
	switch {
	case phase == PhaseFollowUp:
		pkg.User = text
	case custom != "":
		pkg.User = custom
	default:
		pkg.System = c.systemFor(lang)
		pkg.User = fmt.Sprintf(userTemplate, text)
	}
	return pkg
}

func (c *Composer) systemFor(lang langdetect.Tag) string {
	if c != nil {
		if s, ok := c.system[lang]; ok {
			return s
		}
		if _, known := templates[lang]; !known {
			if s, ok := c.system[langdetect.TagAuto]; ok {
				return s
			}
		}
	}
	return templateFor(lang).system
}

// Compose builds a request with the built-in templates.
func Compose(text string, lang langdetect.Tag, phase Phase, custom string) Package {
	return (*Composer)(nil).Compose(text, lang, phase, custom)
}

// PanelPrompt returns the compact per-language prompt for text. Callers pass
// it to Compose as a custom prompt when they want the shorter answer format.
func PanelPrompt(text string, lang langdetect.Tag) string {
	t := templateFor(lang)
	expert := t.expert
	if expert == "" {
		expert = t.subject
	}
	return fmt.Sprintf(panelTemplate, expert, t.subject, text, t.note)
}

// Title returns the display heading for an analysis in lang.
func Title(lang langdetect.Tag) string {
	return templateFor(lang).title
}

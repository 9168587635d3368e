// Copyright 2026 The Gloss Authors
// SPDX-License-Identifier: MIT

package langdetect

import (
	"slices"
	"strings"
	"unicode"
)

// Tag identifies a detectable language.
type Tag string

// TagAuto is returned when no candidate scores above the acceptance floor.
const TagAuto Tag = "auto"

const (
	TagChinese  Tag = "zh"
	TagEnglish  Tag = "en"
	TagJapanese Tag = "ja"
	TagKorean   Tag = "ko"
	TagRussian  Tag = "ru"
	TagGerman   Tag = "de"
	TagFrench   Tag = "fr"
	TagSpanish  Tag = "es"
	TagArabic   Tag = "ar"
	TagHindi    Tag = "hi"
	TagThai     Tag = "th"
)

// rule describes how one language is scored: which characters count toward
// it, the minimum share of the text they must make up, and the weight
// applied to that share.
type rule struct {
	tag       Tag
	name      string
	match     func(r rune) bool
	threshold float64
	priority  float64
}

// registry is evaluated in this order. Ordering does not affect ranking.
var registry = []rule{
	{TagChinese, "Chinese", inTable(hanTable), 0.25, 1},
	{TagEnglish, "English", isASCIILetter, 0.6, 2},
	{TagJapanese, "Japanese", inTable(kanaTable), 0.2, 1},
	{TagKorean, "Korean", inTable(hangulTable), 0.25, 1},
	{TagRussian, "Russian", inTable(cyrillicTable), 0.3, 1},
	{TagGerman, "German", inSet("äöüßÄÖÜ"), 0.1, 3},
	{TagFrench, "French", inSet("àâäçéèêëïîôöùûüÿ"), 0.1, 3},
	{TagSpanish, "Spanish", inSet("ñáéíóúü"), 0.1, 3},
	{TagArabic, "Arabic", inTable(arabicTable), 0.3, 1},
	{TagHindi, "Hindi", inTable(devanagariTable), 0.3, 1},
	{TagThai, "Thai", inTable(thaiTable), 0.3, 1},
}

var (
	hanTable = &unicode.RangeTable{R16: []unicode.Range16{
		{Lo: 0x3400, Hi: 0x4dbf, Stride: 1},
		{Lo: 0x4e00, Hi: 0x9fff, Stride: 1},
	}}
	kanaTable = &unicode.RangeTable{R16: []unicode.Range16{
		{Lo: 0x3040, Hi: 0x30ff, Stride: 1},
	}}
	hiraganaTable = &unicode.RangeTable{R16: []unicode.Range16{
		{Lo: 0x3040, Hi: 0x309f, Stride: 1},
	}}
	katakanaTable = &unicode.RangeTable{R16: []unicode.Range16{
		{Lo: 0x30a0, Hi: 0x30ff, Stride: 1},
	}}
	kanjiTable = &unicode.RangeTable{R16: []unicode.Range16{
		{Lo: 0x4e00, Hi: 0x9faf, Stride: 1},
	}}
	hangulTable = &unicode.RangeTable{R16: []unicode.Range16{
		{Lo: 0xac00, Hi: 0xd7af, Stride: 1},
	}}
	cyrillicTable = &unicode.RangeTable{R16: []unicode.Range16{
		{Lo: 0x0400, Hi: 0x04ff, Stride: 1},
	}}
	arabicTable = &unicode.RangeTable{R16: []unicode.Range16{
		{Lo: 0x0600, Hi: 0x06ff, Stride: 1},
	}}
	devanagariTable = &unicode.RangeTable{R16: []unicode.Range16{
		{Lo: 0x0900, Hi: 0x097f, Stride: 1},
	}}
	thaiTable = &unicode.RangeTable{R16: []unicode.Range16{
		{Lo: 0x0e00, Hi: 0x0e7f, Stride: 1},
	}}
)

// englishStopWords are short function words whose density distinguishes
// English from other Latin-script text.
var englishStopWords = map[string]bool{
	"the": true, "and": true, "or": true, "but": true, "in": true, "on": true,
	"at": true, "to": true, "for": true, "of": true, "with": true, "by": true,
	"from": true, "up": true, "about": true, "into": true, "through": true,
	"during": true, "before": true, "after": true, "above": true, "below": true,
	"between": true, "among": true, "under": true, "within": true,
	"without": true, "against": true, "upon": true, "throughout": true,
	"despite": true, "towards": true, "beside": true,
	"is": true, "are": true, "was": true, "were": true, "be": true,
	"it": true, "this": true, "that": true, "a": true, "an": true,
	"how": true, "what": true, "you": true, "we": true, "they": true,
}

// japaneseParticles are grammatical particles that rarely appear in Chinese.
var japaneseParticles = []string{"は", "が", "を", "に", "で", "と", "の", "か", "も", "や"}

func inTable(t *unicode.RangeTable) func(rune) bool {
	return func(r rune) bool { return unicode.Is(t, r) }
}

func inSet(chars string) func(rune) bool {
	return func(r rune) bool { return strings.ContainsRune(chars, r) }
}

func isASCIILetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

// Tags returns every detectable language tag in registry order.
func Tags() []Tag {
	out := make([]Tag, 0, len(registry))
	for _, r := range registry {
		out = append(out, r.tag)
	}
	return out
}

// Valid reports whether tag is a registry tag or TagAuto.
func Valid(tag Tag) bool {
	if tag == TagAuto {
		return true
	}
	return slices.ContainsFunc(registry, func(r rule) bool { return r.tag == tag })
}

// Name returns the English display name of tag, or "Auto" for unknown tags.
func Name(tag Tag) string {
	for _, r := range registry {
		if r.tag == tag {
			return r.name
		}
	}
	return "Auto"
}

func lookup(tag Tag) (rule, bool) {
	for _, r := range registry {
		if r.tag == tag {
			return r, true
		}
	}
	return rule{}, false
}

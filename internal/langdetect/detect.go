// Copyright 2026 The Gloss Authors
// SPDX-License-Identifier: MIT

// Package langdetect guesses the language of a text selection from script
// density and a few lexical hints. It favors returning TagAuto over a wild
// guess on short or ambiguous input.
package langdetect

import (
	"math"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// acceptFloor is the raw score a top candidate must exceed to be reported.
const acceptFloor = 0.1

// maxAlternatives caps Result.Alternatives.
const maxAlternatives = 2

// Alternative is a runner-up candidate.
type Alternative struct {
	Language   Tag `json:"language"`
	Confidence int `json:"confidence"`
}

// Result is the outcome of Detect.
type Result struct {
	// Language is the winning tag, or TagAuto.
	Language Tag `json:"language"`

	// Confidence is the top score scaled to 0-100.
	Confidence int `json:"confidence"`

	// Scores holds the raw score of every registry language. Languages that
	// did not pass their threshold score 0.
	Scores map[Tag]float64 `json:"scores"`

	// Alternatives lists up to two runner-up candidates, best first.
	Alternatives []Alternative `json:"alternatives"`
}

// Detect scores text against every registered language.
func Detect(text string) Result {
	clean := strings.TrimSpace(text)
	if clean == "" {
		return Result{Language: TagAuto, Confidence: 0, Scores: map[Tag]float64{}}
	}

	total := float64(utf8.RuneCountInString(clean))
	scores := make(map[Tag]float64, len(registry))
	for _, r := range registry {
		ratio := float64(countFunc(clean, r.match)) / total
		score := 0.0
		if ratio >= r.threshold {
			score = ratio*r.priority + bonus(r.tag, clean)
		}
		scores[r.tag] = score
	}

	ranked := rank(scores)
	if len(ranked) == 0 {
		return Result{Language: TagAuto, Confidence: 0, Scores: scores}
	}

	top := ranked[0]
	res := Result{
		Language:   TagAuto,
		Confidence: percent(scores[top]),
		Scores:     scores,
	}
	if scores[top] > acceptFloor {
		res.Language = top
	}
	for _, tag := range ranked[1:] {
		if len(res.Alternatives) == maxAlternatives {
			break
		}
		res.Alternatives = append(res.Alternatives, Alternative{
			Language:   tag,
			Confidence: percent(scores[tag]),
		})
	}
	return res
}

// bonus returns the lexical correction for languages that have one. It is
// only called once the language has passed its density threshold.
func bonus(tag Tag, text string) float64 {
	switch tag {
	case TagEnglish:
		return stopWordShare(text) * 0.5
	case TagJapanese:
		b := 0.0
		hira := countFunc(text, inTable(hiraganaTable))
		kata := countFunc(text, inTable(katakanaTable))
		kanji := countFunc(text, inTable(kanjiTable))
		if hira > 0 && (kata > 0 || kanji > 0) {
			b += 0.3
		}
		for _, p := range japaneseParticles {
			if strings.Contains(text, p) {
				b += 0.2
				break
			}
		}
		return b
	default:
		return 0
	}
}

// stopWordShare is the fraction of whitespace-separated tokens that are
// English function words once lower-cased and stripped of non-word runes.
func stopWordShare(text string) float64 {
	words := strings.Fields(strings.ToLower(text))
	if len(words) == 0 {
		return 0
	}
	hits := 0
	for _, w := range words {
		if englishStopWords[strings.Map(keepWordRune, w)] {
			hits++
		}
	}
	return float64(hits) / float64(len(words))
}

func keepWordRune(r rune) rune {
	if r == '_' || (r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r))) {
		return r
	}
	return -1
}

// rank returns the tags with a positive score ordered by score, then by
// priority weight, then by tag.
func rank(scores map[Tag]float64) []Tag {
	var out []Tag
	for tag, s := range scores {
		if s > 0 {
			out = append(out, tag)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		si, sj := scores[out[i]], scores[out[j]]
		if si != sj {
			return si > sj
		}
		ri, _ := lookup(out[i])
		rj, _ := lookup(out[j])
		if ri.priority != rj.priority {
			return ri.priority > rj.priority
		}
		return out[i] < out[j]
	})
	return out
}

func countFunc(s string, match func(rune) bool) int {
	n := 0
	for _, r := range s {
		if match(r) {
			n++
		}
	}
	return n
}

func percent(score float64) int {
	return int(math.Round(math.Min(score*100, 100)))
}

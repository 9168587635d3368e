// Copyright 2026 The Gloss Authors
// SPDX-License-Identifier: MIT

package prompt

import (
	"fmt"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/davetashner/gloss/internal/langdetect"
)

// overrideFile is the TOML layout of a prompts file:
//
//	[system]
//	en = "You explain English text to Chinese readers..."
//	auto = "..."
type overrideFile struct {
	System map[string]string `toml:"system"`
}

// LoadOverrides reads system template overrides from a TOML file. Unknown
// language tags and unknown keys are errors.
func LoadOverrides(path string) (map[langdetect.Tag]string, error) {
	var f overrideFile
	md, err := toml.DecodeFile(path, &f)
	if err != nil {
		return nil, fmt.Errorf("prompt: decode %s: %w", path, err)
	}
	if undec := md.Undecoded(); len(undec) > 0 {
		keys := make([]string, 0, len(undec))
		for _, k := range undec {
			keys = append(keys, k.String())
		}
		return nil, fmt.Errorf("prompt: %s: unknown keys: %s", path, strings.Join(keys, ", "))
	}

	out := make(map[langdetect.Tag]string, len(f.System))
	var bad []string
	for k, v := range f.System {
		tag := langdetect.Tag(k)
		if !langdetect.Valid(tag) {
			bad = append(bad, k)
			continue
		}
		if strings.TrimSpace(v) == "" {
			return nil, fmt.Errorf("prompt: %s: empty template for %q", path, k)
		}
		out[tag] = v
	}
	if len(bad) > 0 {
		sort.Strings(bad)
		return nil, fmt.Errorf("prompt: %s: unknown language tags: %s", path, strings.Join(bad, ", "))
	}
	return out, nil
}

// Package prompts loads the prompt contracts sent to the classification and
// summarization capability. Prompts live in JSON files embedded at compile time.
package prompts

import (
	"embed"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// HunterFile holds the prompt contracts used by the hunt pipeline.
const HunterFile = "hunter.json"

//go:embed *.json
var promptFiles embed.FS

// Set is one parsed prompt file, keyed by prompt name.
type Set map[string]string

// Load parses an embedded prompt file.
func Load(filename string) (Set, error) {
	data, err := promptFiles.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read prompt file %s: %w", filename, err)
	}
	var set Set
	if err := json.Unmarshal(data, &set); err != nil {
		return nil, fmt.Errorf("failed to parse prompt file %s: %w", filename, err)
	}
	return set, nil
}

// Lookup returns the template stored under key.
func (s Set) Lookup(key string) (string, error) {
	tmpl, ok := s[key]
	if !ok {
		return "", fmt.Errorf("prompt key %q not found", key)
	}
	return tmpl, nil
}

// Keys returns the prompt names in sorted order.
func (s Set) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

var hunterSet = sync.OnceValues(func() (Set, error) { return Load(HunterFile) })

// Hunter renders a hunter.json prompt with data. Placeholders whose value is
// empty collapse, and the result is trimmed, so an absent audit protocol does
// not leave a dangling blank line. An unknown key panics: the prompt file is
// compiled in.
func Hunter(key string, data map[string]string) string {
	set, err := hunterSet()
	if err != nil {
		panic(err)
	}
	tmpl, err := set.Lookup(key)
	if err != nil {
		panic(fmt.Sprintf("%s: %v", HunterFile, err))
	}
	return strings.TrimSpace(Format(tmpl, data))
}

// Format replaces {{.Key}} placeholders with values from data. Placeholders
// without a value are left in place.
func Format(template string, data map[string]string) string {
	pairs := make([]string, 0, 2*len(data))
	for key, value := range data {
		pairs = append(pairs, "{{."+key+"}}", value)
	}
	return strings.NewReplacer(pairs...).Replace(template)
}

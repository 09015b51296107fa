// Package prompts embeds the Korean prompt templates the pipeline sends to
// the text-generation model. Templates live in recommend.json, keyed by
// prompt name, with {{.Key}} placeholders filled at call time.
package prompts

import (
	"embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
)

//go:embed *.json
var promptFiles embed.FS

// promptSet is one parsed prompt file: key -> template text.
type promptSet map[string]string

var (
	mu    sync.Mutex
	files = make(map[string]promptSet)
)

// Get retrieves a prompt template by filename and key. The filename is
// relative to this package (e.g. "recommend.json"). Files are parsed once
// and cached for the life of the process; the embedded content cannot
// change under us.
func Get(filename, key string) (string, error) {
	set, err := load(filename)
	if err != nil {
		return "", err
	}
	template, ok := set[key]
	if !ok {
		return "", fmt.Errorf("prompt key %q not found in %s", key, filename)
	}
	return template, nil
}

// Format fills {{.Key}} placeholders in a template with values from data.
// Placeholders without a matching entry are left in place, which makes a
// forgotten field visible in the generated prompt instead of silently
// vanishing.
func Format(template string, data map[string]string) string {
	pairs := make([]string, 0, 2*len(data))
	for key, value := range data {
		pairs = append(pairs, "{{."+key+"}}", value)
	}
	return strings.NewReplacer(pairs...).Replace(template)
}

func load(filename string) (promptSet, error) {
	mu.Lock()
	defer mu.Unlock()

	if set, ok := files[filename]; ok {
		return set, nil
	}

	raw, err := promptFiles.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read prompt file %s: %w", filename, err)
	}
	var set promptSet
	if err := json.Unmarshal(raw, &set); err != nil {
		return nil, fmt.Errorf("failed to parse prompt file %s: %w", filename, err)
	}

	files[filename] = set
	return set, nil
}

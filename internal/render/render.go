// Package render expands environment templates in YAML configs.
package render

import (
	"bytes"
	"fmt"
	"os"
	"slices"
	"strings"
	"text/template"
)

// LookupFunc resolves an environment variable.
type LookupFunc func(key string) (string, bool)

// EnvTracker records required environment variables a template could not resolve.
type EnvTracker struct {
	missing map[string]struct{}
}

func (t *EnvTracker) markMissing(key string) {
	if t.missing == nil {
		t.missing = map[string]struct{}{}
	}
	t.missing[key] = struct{}{}
}

// Missing returns the sorted names of required variables that were not set.
func (t *EnvTracker) Missing() []string {
	out := make([]string, 0, len(t.missing))
	for key := range t.missing {
		out = append(out, key)
	}
	slices.Sort(out)
	return out
}


// RenderFile loads and renders a YAML template file against the process environment.
func RenderFile(path string) ([]byte, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return RenderBytes(path, raw)
}

// RenderBytes renders raw against the process environment.
func RenderBytes(name string, raw []byte) ([]byte, error) {
	return Render(name, raw, os.LookupEnv)
}

// Render renders raw with variables resolved by lookup. Variables read with
// env must be set.
func Render(name string, raw []byte, lookup LookupFunc) ([]byte, error) {
	if strings.TrimSpace(name) == "" {
		name = "config"
	}
	tracker := &EnvTracker{}
	tmpl, err := template.New(name).Funcs(FuncMap(lookup, tracker)).Option("missingkey=error").Parse(string(raw))
	if err != nil {
		return nil, fmt.Errorf("parse template: %w", err)
	}

	var buf bytes.Buffer
	execErr := tmpl.Execute(&buf, map[string]any{})
	if missing := tracker.Missing(); len(missing) > 0 {
		return nil, fmt.Errorf("missing env vars: %s", strings.Join(missing, ", "))
	}
	if execErr != nil {
		return nil, fmt.Errorf("render template: %w", execErr)
	}
	return buf.Bytes(), nil
}

package render

import (
	"strconv"
	"strings"
	"text/template"
)

// FuncMap returns the helpers available to config templates.
func FuncMap(lookup LookupFunc, tracker *EnvTracker) template.FuncMap {
	return template.FuncMap{
		"env": func(key string) string {
			value, ok := lookup(key)
			if !ok {
				tracker.markMissing(key)
			}
			return value
		},
		"envOr": func(key, def string) string {
			if value, ok := lookup(key); ok && value != "" {
				return value
			}
			return def
		},
		"envBool": func(key string, def bool) bool {
			value, ok := lookup(key)
			if !ok {
				return def
			}
			parsed, err := strconv.ParseBool(strings.TrimSpace(value))
			if err != nil {
				return def
			}
			return parsed
		},
		"default": func(def, value string) string {
			if value == "" {
				return def
			}
			return value
		},
		"quote": strconv.Quote,
		"lower": strings.ToLower,
		"upper": strings.ToUpper,
	}
}

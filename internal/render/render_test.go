package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lookupFrom(values map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		v, ok := values[key]
		return v, ok
	}
}

func TestRender(t *testing.T) {
	raw := []byte(`transport: {{ envOr "SAPSIM_TRANSPORT" "stdio" }}
company_code: {{ env "COMPANY" | quote }}
stateless: {{ envBool "STATELESS" false }}
lang: {{ envOr "LANG_X" "EN" | lower }}`)

	out, err := Render("test.yaml", raw, lookupFrom(map[string]string{"COMPANY": "2000", "STATELESS": "true"}))

	require.NoError(t, err)
	assert.Equal(t, "transport: stdio\ncompany_code: \"2000\"\nstateless: true\nlang: en", string(out))
}

func TestRender_MissingEnv(t *testing.T) {
	_, err := Render("", []byte(`a: {{ env "B" }} {{ env "A" }}`), lookupFrom(nil))
	assert.EqualError(t, err, "missing env vars: A, B")
}

func TestRender_ParseError(t *testing.T) {
	_, err := Render("bad", []byte(`{{ env `), lookupFrom(nil))
	assert.ErrorContains(t, err, "parse template")
}

func TestEnvTracker_OnlyRequiredAreMissing(t *testing.T) {
	tracker := &EnvTracker{}
	funcs := FuncMap(lookupFrom(map[string]string{"X": "1"}), tracker)
	assert.Equal(t, "d", funcs["envOr"].(func(string, string) string)("Y", "d"))
	assert.Equal(t, "1", funcs["env"].(func(string) string)("X"))
	assert.Empty(t, tracker.Missing())

	funcs["env"].(func(string) string)("Z")
	assert.Equal(t, []string{"Z"}, tracker.Missing())
}

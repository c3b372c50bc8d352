package security

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRedactArguments(t *testing.T) {
	args := map[string]any{
		"customer": "123456",
		"amount":   "1250.75",
		"state": map[string]any{
			"api_token": "abc",
			"history":   []any{map[string]any{"IBAN": "DE00"}, "step"},
		},
	}

	got := RedactArguments(args)

	assert.Equal(t, map[string]any{
		"customer": "123456",
		"amount":   "1250.75",
		"state": map[string]any{
			"api_token": Mask,
			"history":   []any{map[string]any{"IBAN": Mask}, "step"},
		},
	}, got)
	assert.Equal(t, "abc", args["state"].(map[string]any)["api_token"])
	assert.Nil(t, RedactArguments(nil))
}

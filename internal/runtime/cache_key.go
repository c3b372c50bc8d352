package runtime

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/codex-k8s/sapsim-mcp-server/internal/constants"
)

// buildCacheKey derives the replay key of a call. An empty key disables replay.
func buildCacheKey(toolName, correlationID string, providedID bool, args map[string]any, strategy string) (string, error) {
	var key string
	switch strings.ToLower(strings.TrimSpace(strategy)) {
	case constants.CacheKeyStrategyCorrelationID:
		if providedID {
			key = correlationID
		}
	case constants.CacheKeyStrategyArgumentsHash:
		hash, err := hashArguments(args)
		if err != nil {
			return "", err
		}
		key = hash
	case constants.CacheKeyStrategyAuto, "":
		if providedID && correlationID != "" {
			key = correlationID
			break
		}
		hash, err := hashArguments(args)
		if err != nil {
			return "", err
		}
		key = hash
	default:
		return "", fmt.Errorf("unsupported cache key strategy: %s", strategy)
	}
	if strings.TrimSpace(key) == "" {
		return "", nil
	}
	return toolName + ":" + key, nil
}

// hashArguments hashes args without correlation fields. encoding/json sorts
// map keys, so equal maps hash equally.
func hashArguments(args map[string]any) (string, error) {
	filtered := make(map[string]any, len(args))
	for k, v := range args {
		switch k {
		case "correlation_id", "request_id", "state":
			continue
		default:
			filtered[k] = v
		}
	}
	data, err := json.Marshal(filtered)
	if err != nil {
		return "", fmt.Errorf("hash arguments: %w", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

package audit

import (
	"bytes"
	"context"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJournal_AppendOnlyCopies(t *testing.T) {
	j := NewJournal(nil)
	input := map[string]any{"customer_id": "123456"}
	j.Record(context.Background(), Entry{Tool: "fbl5n", Input: input, Output: Output{Status: "success"}})

	input["customer_id"] = "changed"
	entries := j.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "123456", entries[0].Input["customer_id"])

	entries[0].Input["customer_id"] = "mutated"
	entries[0].Tool = "other"
	again := j.Entries()
	assert.Equal(t, "123456", again[0].Input["customer_id"])
	assert.Equal(t, "fbl5n", again[0].Tool)
}

func TestJournal_Concurrent(t *testing.T) {
	j := NewJournal(nil)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			j.Record(context.Background(), Entry{Tool: "cobros"})
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, j.Len())
}

func TestJournal_Logs(t *testing.T) {
	var buf bytes.Buffer
	j := NewJournal(slog.New(slog.NewJSONHandler(&buf, nil)))

	j.Record(context.Background(), Entry{Tool: "cobros", CorrelationID: "c-1", Output: Output{Status: "error"}, ExecutionTime: "0.01s"})
	j.Decide(context.Background(), Decision{Tool: "cobros", Allowed: false, Source: "limits", Reason: "Rate limit exceeded"})

	out := buf.String()
	assert.Contains(t, out, `"msg":"execution"`)
	assert.Contains(t, out, `"correlation_id":"c-1"`)
	assert.Contains(t, out, `"level":"WARN"`)
	assert.Contains(t, out, `"reason":"Rate limit exceeded"`)
}

func TestJournal_Nil(t *testing.T) {
	var j *Journal
	j.Record(context.Background(), Entry{})
	j.Decide(context.Background(), Decision{})
	assert.Nil(t, j.Entries())
	assert.Zero(t, j.Len())
}

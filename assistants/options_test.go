package assistants_test

import (
	"testing"
	"time"

	"github.com/globalguide/travelagent/assistants"
	"github.com/globalguide/travelagent/encoding"
	"github.com/globalguide/travelagent/store"
	"github.com/stretchr/testify/assert"
)

func Test_NewConfig(t *testing.T) {
	cfg := assistants.NewConfig()
	assert.Equal(t, encoding.ModeDefault, cfg.Mode)
	assert.Equal(t, assistants.DefaultMaxMessages, cfg.MaxMessages)
	assert.False(t, cfg.JSONMode)
	assert.Empty(t, cfg.GetCallOptions())

	st := store.NewMemoryStore()
	cfg = assistants.NewConfig(
		assistants.WithMode(encoding.ModeJSON),
		assistants.WithModel("gpt-4o"),
		assistants.WithTemperature(0.2),
		assistants.WithMaxTokens(2048),
		assistants.WithStore(st),
		assistants.WithMaxMessages(10),
		assistants.WithMaxToolCalls(5),
		assistants.WithToolTimeout(3*time.Second),
	)
	assert.True(t, cfg.JSONMode)
	assert.Equal(t, "gpt-4o", cfg.Model)
	assert.Equal(t, st, cfg.Store)
	assert.Equal(t, 10, cfg.MaxMessages)
	assert.Equal(t, 5, cfg.MaxToolCalls)
	assert.Equal(t, 3*time.Second, cfg.ToolTimeout)

	// model, temperature, max tokens and JSON mode
	assert.Len(t, cfg.GetCallOptions(), 4)
}

func Test_ConfigApply(t *testing.T) {
	cfg := assistants.NewConfig(assistants.WithModel("gpt-4o"))

	applied := cfg.Apply(assistants.WithModel("gpt-4o-mini"), assistants.WithSeed(42))
	assert.Equal(t, "gpt-4o-mini", applied.Model)
	assert.Equal(t, 42, applied.Seed)

	// the original config is not modified
	assert.Equal(t, "gpt-4o", cfg.Model)
	assert.Zero(t, cfg.Seed)

	assert.Same(t, cfg, cfg.Apply())
}

func Test_WithMode(t *testing.T) {
	cfg := assistants.NewConfig(assistants.WithMode(encoding.ModePlainText))
	assert.False(t, cfg.JSONMode)

	cfg = assistants.NewConfig(assistants.WithMode(encoding.ModeJSONSchema))
	assert.True(t, cfg.JSONMode)
}

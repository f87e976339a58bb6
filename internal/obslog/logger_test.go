package obslog_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/loomware/agentcore/internal/obslog"
)

func TestLoggerRespectsLevel(t *testing.T) {
	log := obslog.New()
	ctx := log.WithLevel(context.Background(), obslog.LevelWarn)

	// Nothing to assert on stderr output directly; this exercises the code
	// paths without panicking and documents the level-gating contract.
	log.Debug(ctx, "should be suppressed")
	log.Info(ctx, "should be suppressed")
	log.Warn(ctx, "should print")
	log.Error(ctx, "should print")
}

func TestSilentSuppressesEverything(t *testing.T) {
	log := obslog.New()
	ctx := log.Silent(context.Background())
	log.Error(ctx, "should be suppressed at silent level")
}

func TestNoopLogger(t *testing.T) {
	var log obslog.Logger = obslog.Noop{}
	ctx := log.WithLevel(context.Background(), obslog.LevelDebug)
	log.Debug(ctx, "discarded")
	assert.NotNil(t, ctx)
}

package workers

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RaShaimardanov/franky/internal/domain/catalog/entities"
)

type blockingRunner struct {
	calls   atomic.Int32
	stopped atomic.Bool
}

func (r *blockingRunner) Run(ctx context.Context) (entities.Summary, error) {
	r.calls.Add(1)
	<-ctx.Done()
	r.stopped.Store(true)
	return entities.Summary{}, ctx.Err()
}

func TestNewScheduler_InvalidSpec(t *testing.T) {
	_, err := NewScheduler("every day", &blockingRunner{}, zerolog.Nop())
	assert.Error(t, err)
}

func TestScheduler_StopCancelsRun(t *testing.T) {
	runner := &blockingRunner{}
	s, err := NewScheduler("@every 1s", runner, zerolog.Nop())
	require.NoError(t, err)

	go s.runOnce()
	require.Eventually(t, func() bool { return runner.calls.Load() == 1 }, time.Second, 10*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, s.Stop(ctx))

	assert.Eventually(t, runner.stopped.Load, time.Second, 10*time.Millisecond)
}

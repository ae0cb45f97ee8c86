package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/smarttransit/saferoute-backend/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingLoader struct {
	calls atomic.Int32
	err   error
}

func (l *countingLoader) Load(ctx context.Context) error {
	l.calls.Add(1)
	return l.err
}

func TestRefreshService(t *testing.T) {
	t.Run("empty schedule disables the job", func(t *testing.T) {
		loader := &countingLoader{}
		svc := NewRefreshService(loader, testLogger(), "")

		require.NoError(t, svc.Start())
		svc.Stop()
		assert.Equal(t, int32(0), loader.calls.Load())
	})

	t.Run("invalid schedule", func(t *testing.T) {
		svc := NewRefreshService(&countingLoader{}, testLogger(), "every tuesday")
		assert.Error(t, svc.Start())
	})

	t.Run("runs on schedule", func(t *testing.T) {
		loader := &countingLoader{}
		svc := NewRefreshService(loader, testLogger(), "* * * * * *")

		require.NoError(t, svc.Start())
		defer svc.Stop()

		assert.Eventually(t, func() bool {
			return loader.calls.Load() >= 1
		}, 3*time.Second, 50*time.Millisecond)
	})

	t.Run("run now reports load failure", func(t *testing.T) {
		loader := &countingLoader{err: errors.New("upstream down")}
		svc := NewRefreshService(loader, testLogger(), "")

		err := svc.RunNow()
		assert.EqualError(t, err, "upstream down")
		assert.Equal(t, int32(1), loader.calls.Load())
	})

	t.Run("drives a routing service reload", func(t *testing.T) {
		routingSvc, source := setupRoutingServiceTest(duesseldorfNetwork(), config.RoutingConfig{})
		svc := NewRefreshService(routingSvc, testLogger(), "")

		require.NoError(t, svc.RunNow())
		assert.Equal(t, StateReady, routingSvc.State())
		assert.Equal(t, int32(1), source.calls.Load())
	})
}

package poll

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qcloud/internal/domain"
)

func TestUntilStopsWhenDone(t *testing.T) {
	calls := 0
	polls, err := Until(context.Background(), Options{Interval: time.Millisecond}, func(context.Context) (bool, error) {
		calls++
		return calls == 3, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, polls)
	assert.Equal(t, 3, calls)
}

func TestUntilSleepsBeforeFirstCheck(t *testing.T) {
	started := time.Now()
	var firstCheck time.Duration
	_, err := Until(context.Background(), Options{Interval: 20 * time.Millisecond}, func(context.Context) (bool, error) {
		firstCheck = time.Since(started)
		return true, nil
	})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, firstCheck, 20*time.Millisecond)
}

func TestUntilPropagatesCheckError(t *testing.T) {
	boom := domain.E(domain.CodeTransport, "test", "boom", nil)
	polls, err := Until(context.Background(), Options{Interval: time.Millisecond}, func(context.Context) (bool, error) {
		return false, boom
	})
	assert.Equal(t, 1, polls)
	assert.ErrorIs(t, err, boom)
}

func TestUntilCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	_, err := Until(ctx, Options{Interval: time.Millisecond}, func(context.Context) (bool, error) {
		calls++
		if calls == 2 {
			cancel()
		}
		return false, nil
	})
	require.Error(t, err)
	assert.True(t, domain.IsCode(err, domain.CodeCanceled))
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, 2, calls)
}

func TestUntilTimeout(t *testing.T) {
	_, err := Until(context.Background(), Options{Interval: 5 * time.Millisecond, Timeout: 30 * time.Millisecond},
		func(context.Context) (bool, error) { return false, nil })
	require.Error(t, err)
	assert.True(t, domain.IsCode(err, domain.CodeDeadlineExceeded))
}

func TestUntilRequiresCheck(t *testing.T) {
	_, err := Until(context.Background(), Options{}, nil)
	assert.True(t, domain.IsCode(err, domain.CodeConfiguration))
}

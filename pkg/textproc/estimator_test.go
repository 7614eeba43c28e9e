package textproc

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCounter struct {
	n     int
	err   error
	panic bool
	calls int
}

func (f *fakeCounter) CountTokens(_ context.Context, _ string) (int, error) {
	f.calls++
	if f.panic {
		panic("boom")
	}
	return f.n, f.err
}

func TestProviderEstimatorUsesAndCachesProviderCount(t *testing.T) {
	counter := &fakeCounter{n: 42}
	est, err := NewProviderEstimator(counter, 16, nil)
	require.NoError(t, err)

	assert.Equal(t, 42, est.Estimate(context.Background(), "some text"))
	assert.Equal(t, 42, est.Estimate(context.Background(), "some text"))
	assert.Equal(t, 1, counter.calls)
}

func TestProviderEstimatorFallsBack(t *testing.T) {
	text := "twelve chars"

	failing, _ := NewProviderEstimator(&fakeCounter{err: errors.New("timeout")}, 16, nil)
	assert.Equal(t, 3, failing.Estimate(context.Background(), text))

	panicking, _ := NewProviderEstimator(&fakeCounter{panic: true}, 16, nil)
	assert.Equal(t, 3, panicking.Estimate(context.Background(), text))
}

package dataprocessing

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"keksindex/pkg/contracts/domain"
)

type countingSource struct {
	RecordsSource
	calls atomic.Int32
	err   error
}

func (s *countingSource) Records(ctx context.Context) ([][]string, error) {
	s.calls.Add(1)
	if s.err != nil {
		return nil, s.err
	}
	return s.RecordsSource.Records(ctx)
}

func newCountingSource() *countingSource {
	return &countingSource{RecordsSource: RecordsSource{
		Label: "memory",
		Rows: [][]string{
			{"date", "geo_label", "coicop", "value"},
			{"2020m1", "AT", "CP01112", "100"},
			{"bad", "AT", "CP01112", "100"},
		},
	}}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func TestLoaderMemoizes(t *testing.T) {
	src := newCountingSource()
	var reported []domain.StoreDiagnostics
	sink := DiagnosticsSinkFunc(func(_ context.Context, d domain.StoreDiagnostics) {
		reported = append(reported, d)
	})
	loader := NewLoader(src, sink, discardLogger())

	_, ok := loader.Current()
	assert.False(t, ok)

	first, err := loader.Load(context.Background())
	require.NoError(t, err)
	second, err := loader.Load(context.Background())
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, int32(1), src.calls.Load())
	require.Len(t, reported, 1)
	assert.Equal(t, 1, reported[0].DroppedPeriod)
	assert.Equal(t, 1, reported[0].RowsKept)
}

func TestLoaderInvalidate(t *testing.T) {
	src := newCountingSource()
	loader := NewLoader(src, nil, discardLogger())

	first, err := loader.Load(context.Background())
	require.NoError(t, err)

	loader.Invalidate()
	_, ok := loader.Current()
	assert.False(t, ok)

	second, err := loader.Load(context.Background())
	require.NoError(t, err)
	assert.NotSame(t, first, second)
	assert.Equal(t, int32(2), src.calls.Load())

	third, err := loader.Reload(context.Background())
	require.NoError(t, err)
	assert.NotSame(t, second, third)
	assert.Equal(t, int32(3), src.calls.Load())
}

func TestLoaderConcurrentLoad(t *testing.T) {
	src := newCountingSource()
	loader := NewLoader(src, nil, discardLogger())

	var wg sync.WaitGroup
	stores := make([]*SeriesStore, 16)
	for i := range stores {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s, err := loader.Load(context.Background())
			assert.NoError(t, err)
			stores[i] = s
		}(i)
	}
	wg.Wait()

	current, ok := loader.Current()
	require.True(t, ok)
	for _, s := range stores {
		assert.Same(t, current, s)
	}
}

func TestLoaderErrors(t *testing.T) {
	src := newCountingSource()
	src.err = errors.New("disk on fire")
	loader := NewLoader(src, nil, discardLogger())

	_, err := loader.Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk on fire")

	schemaless := &RecordsSource{Label: "bad", Rows: [][]string{{"date", "geo_label", "coicop"}}}
	_, err = NewLoader(schemaless, nil, discardLogger()).Load(context.Background())
	assert.ErrorIs(t, err, ErrNoValueColumn)
}

func TestLoaderBuildSurvivesCancelledCaller(t *testing.T) {
	src := newCountingSource()
	loader := NewLoader(src, nil, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	store, err := loader.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, store.Diagnostics().RowsKept)

	again, err := loader.Load(context.Background())
	require.NoError(t, err)
	assert.Same(t, store, again)
	assert.Equal(t, int32(1), src.calls.Load())
}

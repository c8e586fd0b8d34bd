package framework

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAggregatedError(t *testing.T) {
	var errs AggregatedError
	require.NoError(t, errs.Add(nil).Aggregate())
	e1 := errors.New("e1")
	require.Equal(t, e1, errs.Add(e1).Aggregate())
	errs.Add(errors.New("e2"))
	require.EqualError(t, errs.Aggregate(), "e1; e2")
}

func TestRunnerCancelsOnFailure(t *testing.T) {
	r := NewRunner()
	r.Go(
		NamedRun("waiter", RunFunc(func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		})),
		NamedRun("failer", RunFunc(func(ctx context.Context) error {
			return errors.New("failed")
		})),
	)
	require.EqualError(t, r.Wait(), "failer: failed")
}

func TestRunnerAllSucceed(t *testing.T) {
	r := NewRunner()
	r.Go(RunFunc(func(context.Context) error { return nil }))
	r.Go(RunFunc(func(context.Context) error { return context.Canceled }))
	require.NoError(t, r.Wait())
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

func TestRunWithContextCloser(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	unblock := make(chan struct{})
	closed := 0
	closer := closerFunc(func() error {
		closed++
		close(unblock)
		return nil
	})
	cancel()
	err := RunWithContextCloser(ctx, closer, func() error {
		<-unblock
		return io.EOF
	})
	require.Equal(t, context.Canceled, err)
	require.Equal(t, 1, closed)

	closed = 0
	err = RunWithContextCloser(context.Background(), closerFunc(func() error {
		closed++
		return nil
	}), func() error { return io.EOF })
	require.Equal(t, io.EOF, err)
	require.Equal(t, 1, closed)
}

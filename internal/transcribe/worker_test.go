package transcribe_test

import (
	"context"
	"fmt"
	"github.com/myrjola/casefile/internal/transcribe"
	"github.com/stretchr/testify/require"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type fakeTranscriber struct {
	mu        sync.Mutex
	order     []int
	active    atomic.Int32
	maxActive atomic.Int32
	release   chan struct{}
	progress  []int
	fail      bool
}

func (f *fakeTranscriber) Transcribe(_ context.Context, samples []float32, progress func(int)) (string, error) {
	if n := f.active.Add(1); n > f.maxActive.Load() {
		f.maxActive.Store(n)
	}
	defer f.active.Add(-1)

	f.mu.Lock()
	f.order = append(f.order, len(samples))
	f.mu.Unlock()

	if f.release != nil {
		<-f.release
	}
	for _, p := range f.progress {
		progress(p)
	}
	if f.fail {
		return "", fmt.Errorf("model download stalled")
	}
	return fmt.Sprintf("transcript of %d samples", len(samples)), nil
}

func startWorker(t *testing.T, tr transcribe.Transcriber, queueSize int) *transcribe.Worker {
	t.Helper()
	w := transcribe.NewWorker(tr, queueSize, slog.New(slog.NewTextHandler(io.Discard, nil)))
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return w
}

func collect(t *testing.T, events <-chan transcribe.Event) []transcribe.Event {
	t.Helper()
	var got []transcribe.Event
	timeout := time.After(5 * time.Second)
	for {
		select {
		case e, ok := <-events:
			if !ok {
				return got
			}
			got = append(got, e)
		case <-timeout:
			t.Fatal("event stream did not finish")
			return nil
		}
	}
}

func waitTerminal(t *testing.T, w *transcribe.Worker, id string) transcribe.Job {
	t.Helper()
	var job transcribe.Job
	require.Eventually(t, func() bool {
		var ok bool
		job, ok = w.Job(id)
		return ok && job.Terminal()
	}, 5*time.Second, 10*time.Millisecond)
	return job
}

func TestWorker_Events(t *testing.T) {
	ctx := context.Background()
	tr := &fakeTranscriber{release: make(chan struct{}), progress: []int{10, 50, 50, 30, 90}}
	w := startWorker(t, tr, 4)

	id, err := w.Submit(ctx, make([]float32, 16))
	require.NoError(t, err)
	job, ok := w.Job(id)
	require.True(t, ok)
	require.False(t, job.Terminal())

	events, ok, err := w.Events(ctx, id)
	require.NoError(t, err)
	require.True(t, ok)
	close(tr.release)

	got := collect(t, events)
	require.Equal(t, []transcribe.Event{
		{Kind: transcribe.EventProgress, Percent: 10},
		{Kind: transcribe.EventProgress, Percent: 50},
		{Kind: transcribe.EventProgress, Percent: 90},
		{Kind: transcribe.EventDone, Percent: 100, Transcript: "transcript of 16 samples"},
	}, got)

	job = waitTerminal(t, w, id)
	require.Equal(t, transcribe.StatusDone, job.Status)
	require.Equal(t, "transcript of 16 samples", job.Transcript)

	// Late subscribers fall back to the stored state.
	_, ok, err = w.Events(ctx, id)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestWorker_Failure(t *testing.T) {
	ctx := context.Background()
	w := startWorker(t, &fakeTranscriber{fail: true}, 1)

	id, err := w.Submit(ctx, make([]float32, 8))
	require.NoError(t, err)
	job := waitTerminal(t, w, id)
	require.Equal(t, transcribe.StatusFailed, job.Status)
	require.Contains(t, job.Error, "model download stalled")
}

func TestWorker_Sequential(t *testing.T) {
	ctx := context.Background()
	tr := &fakeTranscriber{release: make(chan struct{})}
	w := startWorker(t, tr, 8)

	var ids []string
	for i := 1; i <= 4; i++ {
		id, err := w.Submit(ctx, make([]float32, i))
		require.NoError(t, err)
		ids = append(ids, id)
	}
	close(tr.release)
	for _, id := range ids {
		require.Equal(t, transcribe.StatusDone, waitTerminal(t, w, id).Status)
	}

	require.Equal(t, []int{1, 2, 3, 4}, tr.order, "jobs run in submission order")
	require.Equal(t, int32(1), tr.maxActive.Load(), "one job at a time")
}

func TestWorker_Submit(t *testing.T) {
	ctx := context.Background()
	tr := &fakeTranscriber{release: make(chan struct{})}
	w := startWorker(t, tr, 1)
	t.Cleanup(func() { close(tr.release) })

	_, err := w.Submit(ctx, nil)
	require.ErrorIs(t, err, transcribe.ErrEmptyAudio)

	// The first job is picked up by the worker and blocks, the second fills the queue.
	first, err := w.Submit(ctx, make([]float32, 1))
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		job, _ := w.Job(first)
		return job.Status == transcribe.StatusProcessing
	}, 5*time.Second, 10*time.Millisecond)
	_, err = w.Submit(ctx, make([]float32, 1))
	require.NoError(t, err)
	require.Equal(t, 1, w.Queued())

	_, err = w.Submit(ctx, make([]float32, 1))
	require.ErrorIs(t, err, transcribe.ErrQueueFull)
}

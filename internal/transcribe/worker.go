package transcribe

import (
	"context"
	"github.com/google/uuid"
	"github.com/myrjola/casefile/internal/broker"
	"github.com/myrjola/casefile/internal/errors"
	"github.com/patrickmn/go-cache"
	"log/slog"
	"sync"
	"time"
)

// Transcriber turns mono SampleRate samples into text, reporting progress in percent.
type Transcriber interface {
	Transcribe(ctx context.Context, samples []float32, progress func(percent int)) (string, error)
}

type EventKind string

const (
	EventProgress EventKind = "progress"
	EventDone     EventKind = "done"
	EventFailed   EventKind = "failed"
)

// Event is one message on a job's ordered event stream. Zero or more progress events are followed by exactly one
// done or failed event.
type Event struct {
	Kind       EventKind
	Percent    int
	Transcript string
	Error      string
}

type Status string

const (
	StatusQueued     Status = "queued"
	StatusProcessing Status = "processing"
	StatusDone       Status = "done"
	StatusFailed     Status = "failed"
)

// Job is the latest known state of a transcription job.
type Job struct {
	ID         string
	Status     Status
	Percent    int
	Transcript string
	Error      string
	Submitted  time.Time
}

// Terminal reports whether the job has finished.
func (j Job) Terminal() bool {
	return j.Status == StatusDone || j.Status == StatusFailed
}

var (
	ErrQueueFull  = errors.NewSentinel("transcription queue is full")
	ErrEmptyAudio = errors.NewSentinel("no audio samples")
)

const (
	// eventBuffer is the per-job event buffer. The last slot is reserved for the terminal event.
	eventBuffer     = 32
	jobRetention    = time.Hour
	cleanupInterval = 10 * time.Minute
)

type job struct {
	id      string
	samples []float32
	events  chan Event
}

// Worker runs transcription jobs one at a time in submission order on a single long-lived goroutine.
// There is no per-job timeout and a job cannot be cancelled once submitted.
type Worker struct {
	transcriber Transcriber
	queue       chan job
	broker      *broker.ChannelBroker[string, Event]
	jobs        *cache.Cache
	logger      *slog.Logger
}

func NewWorker(transcriber Transcriber, queueSize int, logger *slog.Logger) *Worker {
	return &Worker{
		transcriber: transcriber,
		queue:       make(chan job, queueSize),
		broker:      broker.NewChannelBroker[string, Event](),
		jobs:        cache.New(jobRetention, cleanupInterval),
		logger:      logger,
	}
}

// Run processes jobs until ctx is done. It must be running for Submit to return.
func (w *Worker) Run(ctx context.Context) {
	go w.broker.Start()
	defer w.broker.Stop()

	w.logger.LogAttrs(ctx, slog.LevelInfo, "transcription worker started")
	for {
		select {
		case <-ctx.Done():
			w.logger.LogAttrs(ctx, slog.LevelInfo, "transcription worker stopped")
			return
		case j := <-w.queue:
			w.process(ctx, j)
		}
	}
}

// Submit enqueues samples for transcription and returns the job ID.
func (w *Worker) Submit(ctx context.Context, samples []float32) (string, error) {
	if len(samples) == 0 {
		return "", errors.Wrap(ErrEmptyAudio, "submit")
	}
	j := job{
		id:      uuid.NewString(),
		samples: samples,
		events:  make(chan Event, eventBuffer),
	}
	w.jobs.SetDefault(j.id, Job{
		ID:         j.id,
		Status:     StatusQueued,
		Percent:    0,
		Transcript: "",
		Error:      "",
		Submitted:  time.Now(),
	})
	w.broker.Publish(j.id, j.events)

	select {
	case w.queue <- j:
	default:
		close(j.events)
		w.broker.Unpublish(j.id)
		w.jobs.Delete(j.id)
		return "", errors.Wrap(ErrQueueFull, "submit", slog.Int("queue_size", cap(w.queue)))
	}
	w.logger.LogAttrs(ctx, slog.LevelInfo, "transcription job queued",
		slog.String("job_id", j.id), slog.Int("samples", len(samples)))
	return j.id, nil
}

// Queued returns the number of jobs waiting for the worker.
func (w *Worker) Queued() int {
	return len(w.queue)
}

// Job returns the latest state of the job with id.
func (w *Worker) Job(id string) (Job, bool) {
	v, ok := w.jobs.Get(id)
	if !ok {
		return Job{}, false
	}
	j, ok := v.(Job)
	return j, ok
}

// Events returns the event stream of a job. ok is false when the stream is already finished or claimed by another
// subscriber, in which case Job has the latest state.
func (w *Worker) Events(ctx context.Context, id string) (<-chan Event, bool, error) {
	c, ok, err := w.broker.Await(ctx, id)
	if err != nil {
		return nil, false, errors.Wrap(err, "await events", slog.String("job_id", id))
	}
	return c, ok, nil
}

func (w *Worker) update(id string, fn func(j *Job)) {
	j, ok := w.Job(id)
	if !ok {
		return
	}
	fn(&j)
	w.jobs.SetDefault(id, j)
}

func (w *Worker) process(ctx context.Context, j job) {
	logger := w.logger.With(slog.String("job_id", j.id))
	logger.LogAttrs(ctx, slog.LevelInfo, "transcription job started")
	w.update(j.id, func(job *Job) { job.Status = StatusProcessing })
	start := time.Now()

	var (
		mu       sync.Mutex
		finished bool
		last     = -1
	)
	progress := func(percent int) {
		percent = max(0, min(100, percent)) //nolint:mnd // percent
		mu.Lock()
		defer mu.Unlock()
		if finished || percent <= last {
			return
		}
		last = percent
		w.update(j.id, func(job *Job) { job.Percent = percent })
		// Progress is dropped rather than blocking the transcriber when nobody consumes the stream.
		if len(j.events) < cap(j.events)-1 {
			j.events <- Event{Kind: EventProgress, Percent: percent, Transcript: "", Error: ""}
		}
	}

	transcript, err := w.transcriber.Transcribe(ctx, j.samples, progress)

	mu.Lock()
	finished = true
	var terminal Event
	if err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "transcription job failed",
			slog.Duration("duration", time.Since(start)), errors.SlogError(err))
		terminal = Event{Kind: EventFailed, Percent: max(last, 0), Transcript: "", Error: err.Error()}
		w.update(j.id, func(job *Job) {
			job.Status = StatusFailed
			job.Error = err.Error()
		})
	} else {
		logger.LogAttrs(ctx, slog.LevelInfo, "transcription job done",
			slog.Duration("duration", time.Since(start)), slog.Int("chars", len(transcript)))
		terminal = Event{Kind: EventDone, Percent: 100, Transcript: transcript, Error: ""} //nolint:mnd // percent
		w.update(j.id, func(job *Job) {
			job.Status = StatusDone
			job.Percent = 100 //nolint:mnd // percent
			job.Transcript = transcript
		})
	}
	j.events <- terminal
	close(j.events)
	mu.Unlock()

	w.broker.Unpublish(j.id)
}

package store

import (
	"context"
	"sync"
)

// Job is a unit of work submitted to a Lane.
type Job struct {
	run  func(ctx context.Context) error
	err  error
	done chan struct{}
}

// Wait blocks until the job ran (or was skipped) and returns its error.
func (j *Job) Wait(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-j.done:
		return j.err
	}
}

// Lane is a single-lane FIFO job queue: jobs run one at a time, in
// submission order, on the goroutine calling Run. Writes submitted through
// one lane never overlap, so no two writes to the same record are in flight.
//
// The queue is unbounded; Submit never blocks.
type Lane struct {
	mu     sync.Mutex
	jobs   []*Job
	closed bool
	signal chan struct{} // buffered, size 1
}

// NewLane creates an empty lane.
func NewLane() *Lane {
	return &Lane{
		jobs:   make([]*Job, 0, 16),
		signal: make(chan struct{}, 1),
	}
}

// Submit appends a job. Returns false if the lane is closed.
func (l *Lane) Submit(run func(ctx context.Context) error) (*Job, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil, false
	}
	job := &Job{run: run, done: make(chan struct{})}
	l.jobs = append(l.jobs, job)

	select {
	case l.signal <- struct{}{}:
	default:
	}
	return job, true
}

func (l *Lane) next() (*Job, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.jobs) == 0 {
		return nil, false
	}
	job := l.jobs[0]
	l.jobs[0] = nil
	l.jobs = l.jobs[1:]
	return job, true
}

// Run executes jobs until the lane is closed and drained, or ctx is done.
// Jobs still queued when ctx is done complete with ctx.Err().
func (l *Lane) Run(ctx context.Context) {
	for {
		if job, ok := l.next(); ok {
			if err := ctx.Err(); err != nil {
				job.err = err
			} else {
				job.err = job.run(ctx)
			}
			close(job.done)
			continue
		}

		l.mu.Lock()
		closed := l.closed
		l.mu.Unlock()
		if closed {
			return
		}

		select {
		case <-ctx.Done():
			l.drain(ctx.Err())
			return
		case <-l.signal:
		}
	}
}

func (l *Lane) drain(err error) {
	for {
		job, ok := l.next()
		if !ok {
			return
		}
		job.err = err
		close(job.done)
	}
}

// Close stops accepting jobs. Run returns once the queued jobs are done.
func (l *Lane) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return
	}
	l.closed = true
	close(l.signal)
}

// QueuedMap runs fn over items through a fresh lane, in order, and waits for
// all of them. The first error cancels the jobs behind it and is returned.
func QueuedMap[T any](ctx context.Context, items []T, fn func(ctx context.Context, item T) error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lane := NewLane()
	finished := make(chan struct{})
	go func() {
		defer close(finished)
		lane.Run(ctx)
	}()

	jobs := make([]*Job, 0, len(items))
	for _, item := range items {
		item := item
		job, _ := lane.Submit(func(ctx context.Context) error {
			return fn(ctx, item)
		})
		jobs = append(jobs, job)
	}
	lane.Close()

	var firstErr error
	for _, job := range jobs {
		if err := job.Wait(context.Background()); err != nil && firstErr == nil {
			firstErr = err
			cancel()
		}
	}
	<-finished
	return firstErr
}

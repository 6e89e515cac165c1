package commands

import (
	"context"
	stderrors "errors"
	"hash/fnv"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/julianstephens/habitloop/internal/clock"
	"github.com/julianstephens/habitloop/internal/constants"
	"github.com/julianstephens/habitloop/internal/logger"
	"github.com/julianstephens/habitloop/internal/models"
	"github.com/julianstephens/habitloop/internal/observability"
	"github.com/julianstephens/habitloop/internal/preferences"
	"github.com/julianstephens/habitloop/internal/storage"
)

// ErrClosed is returned for commands submitted after Close.
var ErrClosed = stderrors.New("command runner is closed")

const queueSize = 256

type Options struct {
	// Workers is the number of habit lanes. Defaults to
	// constants.DefaultRunnerWorkers.
	Workers int
	Clock   clock.Clock
	Tracer  trace.Tracer
}

// Runner applies commands to a HabitStore and notifies listeners.
//
// Commands touching a single habit run on the lane owning that habit, so
// work on one habit is serialized while different habits proceed in
// parallel. Commands touching several habits or the list order wait for
// every earlier command and block later ones until they finish.
// Notifications are delivered on one coordinator goroutine in submission
// order.
type Runner struct {
	store  *storage.HabitStore
	prefs  preferences.Preferences
	clock  clock.Clock
	tracer trace.Tracer

	submitMu sync.Mutex
	seq      uint64
	closed   bool
	queue    chan *job

	listenersMu sync.RWMutex
	listeners   []Listener

	lanes    []chan *job
	inflight sync.WaitGroup
	results  chan *job

	workers   sync.WaitGroup
	coordDone chan struct{}
	closeOnce sync.Once
}

type job struct {
	seq        uint64
	ctx        context.Context
	cmd        Command
	refreshKey string
	listeners  []Listener
	err        error
	done       chan error
}

func NewRunner(store *storage.HabitStore, prefs preferences.Preferences, opts Options) *Runner {
	if opts.Workers <= 0 {
		opts.Workers = constants.DefaultRunnerWorkers
	}
	if opts.Clock == nil {
		opts.Clock = clock.System{}
	}
	if opts.Tracer == nil {
		opts.Tracer = observability.Tracer
	}

	r := &Runner{
		store:     store,
		prefs:     prefs,
		clock:     opts.Clock,
		tracer:    opts.Tracer,
		queue:     make(chan *job, queueSize),
		lanes:     make([]chan *job, opts.Workers),
		results:   make(chan *job, queueSize),
		coordDone: make(chan struct{}),
	}
	for i := range r.lanes {
		r.lanes[i] = make(chan *job, queueSize)
		r.workers.Add(1)
		go r.work(r.lanes[i])
	}
	r.workers.Add(1)
	go r.dispatch()
	go r.coordinate()
	return r
}

// AddListener registers l. Listeners are compared by identity, so l should
// be a pointer.
func (r *Runner) AddListener(l Listener) {
	r.listenersMu.Lock()
	defer r.listenersMu.Unlock()
	r.listeners = append(r.listeners, l)
}

func (r *Runner) RemoveListener(l Listener) {
	r.listenersMu.Lock()
	defer r.listenersMu.Unlock()
	for i, existing := range r.listeners {
		if existing == l {
			r.listeners = append(r.listeners[:i:i], r.listeners[i+1:]...)
			return
		}
	}
}

func (r *Runner) registered(l Listener) bool {
	r.listenersMu.RLock()
	defer r.listenersMu.RUnlock()
	for _, existing := range r.listeners {
		if existing == l {
			return true
		}
	}
	return false
}

// Execute submits cmd and returns a channel that receives its result once
// the command has been applied and every listener has been notified.
// refreshKey is passed to listeners unchanged.
func (r *Runner) Execute(ctx context.Context, cmd Command, refreshKey string) <-chan error {
	done := make(chan error, 1)

	r.submitMu.Lock()
	defer r.submitMu.Unlock()
	if r.closed {
		done <- ErrClosed
		close(done)
		return done
	}

	r.listenersMu.RLock()
	snapshot := append([]Listener(nil), r.listeners...)
	r.listenersMu.RUnlock()

	j := &job{
		seq:        r.seq,
		ctx:        ctx,
		cmd:        cmd,
		refreshKey: refreshKey,
		listeners:  snapshot,
		done:       done,
	}
	r.seq++
	r.queue <- j
	return done
}

// ExecuteSync runs cmd and waits for it. When ctx ends first the command may
// still complete in the background.
func (r *Runner) ExecuteSync(ctx context.Context, cmd Command, refreshKey string) error {
	select {
	case err := <-r.Execute(ctx, cmd, refreshKey):
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Runner) laneFor(key string) chan *job {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return r.lanes[h.Sum32()%uint32(len(r.lanes))]
}

func (r *Runner) dispatch() {
	defer r.workers.Done()
	for j := range r.queue {
		key := laneKey(j.cmd)
		if key == "" {
			r.inflight.Wait()
			r.run(j)
			continue
		}
		r.inflight.Add(1)
		r.laneFor(key) <- j
	}
	for _, lane := range r.lanes {
		close(lane)
	}
}

func (r *Runner) work(lane <-chan *job) {
	defer r.workers.Done()
	for j := range lane {
		r.run(j)
		r.inflight.Done()
	}
}

func (r *Runner) run(j *job) {
	kind := "unknown"
	if j.cmd != nil {
		kind = j.cmd.Kind()
	}

	ctx, span := r.tracer.Start(j.ctx, "commands.Execute",
		trace.WithAttributes(attribute.String("command.kind", kind)))
	start := time.Now()

	if err := ctx.Err(); err != nil {
		j.err = err
	} else {
		j.err = r.apply(j.cmd)
	}

	result := "ok"
	if j.err != nil {
		result = "error"
		span.RecordError(j.err)
		span.SetStatus(codes.Error, j.err.Error())
		logger.Warn("Command failed", "kind", kind, "error", j.err)
	}
	observability.CommandsExecuted.WithLabelValues(kind, result).Inc()
	observability.CommandDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
	span.End()

	r.results <- j
}

func (r *Runner) coordinate() {
	defer close(r.coordDone)
	pending := make(map[uint64]*job)
	var next uint64
	for j := range r.results {
		pending[j.seq] = j
		for {
			ready, ok := pending[next]
			if !ok {
				break
			}
			delete(pending, next)
			next++
			r.release(ready)
		}
	}
}

func (r *Runner) release(j *job) {
	if j.err == nil {
		for _, l := range j.listeners {
			if !r.registered(l) {
				continue
			}
			l.OnCommandExecuted(j.cmd, j.refreshKey)
			observability.ListenerNotifications.Inc()
		}
	}
	j.done <- j.err
	close(j.done)
}

// RecomputeAll rebuilds the caches of every habit. ctx is checked before
// each habit; a habit is either fully rebuilt or left untouched.
func (r *Runner) RecomputeAll(ctx context.Context, today models.Timestamp) error {
	ctx, span := r.tracer.Start(ctx, "commands.RecomputeAll")
	defer span.End()
	start := time.Now()
	defer func() {
		observability.RecomputeDuration.Observe(time.Since(start).Seconds())
	}()

	habits := r.store.All()
	observability.HabitsTotal.Set(float64(len(habits)))

	var errs []error
	for _, h := range habits {
		if err := ctx.Err(); err != nil {
			span.SetStatus(codes.Error, err.Error())
			return err
		}
		if err := h.Rebuild(today); err != nil {
			logger.Error("Failed to rebuild habit", "habit", h.ID(), "error", err)
			errs = append(errs, err)
		}
	}
	if err := stderrors.Join(errs...); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}

// Close stops accepting commands and waits until every submitted command
// has been applied and its listeners notified.
func (r *Runner) Close() {
	r.closeOnce.Do(func() {
		r.submitMu.Lock()
		r.closed = true
		close(r.queue)
		r.submitMu.Unlock()

		r.workers.Wait()
		close(r.results)
		<-r.coordDone
	})
}

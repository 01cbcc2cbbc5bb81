package metrics

import (
	"fmt"
	"time"

	"github.com/kilianp07/groundsched/core/logger"
	"github.com/kilianp07/groundsched/internal/eventbus"
)

type envelope struct {
	counter *CounterEvent
	search  *SearchEvent
}

// Emitter delivers events to a sink from a background goroutine. Callers
// never wait on the sink and never see its errors: failures are logged at
// warn level. A nil *Emitter discards everything.
type Emitter struct {
	sink      MetricsSink
	namespace string
	log       logger.Logger
	bus       *eventbus.TypedBus[envelope]
	done      chan struct{}
	now       func() time.Time
}

// NewEmitter starts the delivery goroutine. buffer bounds the number of
// pending events; events beyond it are dropped with a warning.
func NewEmitter(sink MetricsSink, namespace string, log logger.Logger, buffer int) *Emitter {
	if sink == nil {
		sink = NopSink{}
	}
	if namespace == "" {
		namespace = DefaultNamespace
	}
	e := &Emitter{
		sink:      sink,
		namespace: namespace,
		log:       logger.OrNop(log),
		bus:       eventbus.NewTyped[envelope](buffer),
		done:      make(chan struct{}),
		now:       time.Now,
	}
	sub := e.bus.Subscribe()
	go e.loop(sub)
	return e
}

func (e *Emitter) loop(sub <-chan envelope) {
	defer close(e.done)
	for env := range sub {
		e.deliver(env)
	}
}

func (e *Emitter) deliver(env envelope) {
	defer func() {
		if r := recover(); r != nil {
			e.log.Warnf("metrics sink panic: %v", r)
		}
	}()
	switch {
	case env.counter != nil:
		if err := e.sink.RecordCounter(*env.counter); err != nil {
			e.log.Warnf("failed to send metric %s: %v", env.counter.Name, err)
		}
	case env.search != nil:
		rec, ok := e.sink.(SearchRecorder)
		if !ok {
			return
		}
		if err := rec.RecordSearch(*env.search); err != nil {
			e.log.Warnf("failed to record search summary: %v", err)
		}
	}
}

// Count emits a counter increment of 1 in the emitter's namespace.
func (e *Emitter) Count(name string, dims map[string]string) {
	if e == nil {
		return
	}
	e.Emit(CounterEvent{Name: name, Value: 1, Unit: UnitCount, Dimensions: dims})
}

// Emit queues ev. Missing namespace, unit and time are filled in.
func (e *Emitter) Emit(ev CounterEvent) {
	if e == nil {
		return
	}
	if ev.Namespace == "" {
		ev.Namespace = e.namespace
	}
	if ev.Unit == "" {
		ev.Unit = UnitCount
	}
	if ev.Time.IsZero() {
		ev.Time = e.now().UTC()
	}
	if !e.bus.Publish(envelope{counter: &ev}) {
		e.log.Warnf("metric %s dropped: emitter busy or closed", ev.Name)
	}
}

// Search queues a search summary.
func (e *Emitter) Search(ev SearchEvent) {
	if e == nil {
		return
	}
	if ev.Time.IsZero() {
		ev.Time = e.now().UTC()
	}
	if !e.bus.Publish(envelope{search: &ev}) {
		e.log.Debugf("search summary dropped")
	}
}

// Close stops accepting events and waits up to timeout for queued ones to be
// delivered.
func (e *Emitter) Close(timeout time.Duration) error {
	if e == nil {
		return nil
	}
	e.bus.Close()
	select {
	case <-e.done:
		return nil
	case <-time.After(timeout):
		return fmt.Errorf("metrics emitter: pending events not flushed after %s", timeout)
	}
}

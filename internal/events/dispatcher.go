package events

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Dispatcher queues events and delivers them to its sinks from a single
// background goroutine, so publishers never wait on network sinks.
type Dispatcher struct {
	sinks   []Sink
	timeout time.Duration
	log     logrus.FieldLogger

	mu        sync.Mutex
	queue     chan Event
	stopChan  chan struct{}
	done      chan struct{}
	isRunning bool
}

func NewDispatcher(log logrus.FieldLogger, bufferSize int, timeout time.Duration, sinks ...Sink) *Dispatcher {
	if bufferSize <= 0 {
		bufferSize = 1
	}
	return &Dispatcher{
		sinks:   sinks,
		timeout: timeout,
		log:     log.WithField("component", "dispatcher"),
		queue:   make(chan Event, bufferSize),
	}
}

func (d *Dispatcher) Start() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.isRunning {
		d.log.Info("Dispatcher is already running.")
		return nil
	}
	d.stopChan = make(chan struct{})
	d.done = make(chan struct{})
	d.isRunning = true
	go d.loop(d.stopChan, d.done)
	d.log.WithField("sinks", len(d.sinks)).Info("Event dispatcher started.")
	return nil
}

func (d *Dispatcher) loop(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	for {
		select {
		case <-stop:
			d.drain()
			return
		case event := <-d.queue:
			d.deliver(event)
		}
	}
}

// drain flushes what was queued before Stop so shutdown does not lose events.
func (d *Dispatcher) drain() {
	for {
		select {
		case event := <-d.queue:
			d.deliver(event)
		default:
			return
		}
	}
}

func (d *Dispatcher) deliver(event Event) {
	for _, sink := range d.sinks {
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		err := sink.Publish(ctx, event)
		cancel()
		if err != nil {
			d.log.WithError(err).WithFields(logrus.Fields{
				"sink":       sink.Name(),
				"event":      event.Type,
				"message_id": event.MessageID,
			}).Warn("Failed to deliver event")
		}
	}
}

// Stop waits for the worker to flush the queue and exit.
func (d *Dispatcher) Stop() error {
	d.mu.Lock()
	if !d.isRunning {
		d.mu.Unlock()
		d.log.Info("Dispatcher is not running.")
		return nil
	}
	close(d.stopChan)
	done := d.done
	d.isRunning = false
	d.mu.Unlock()

	<-done
	d.log.Info("Event dispatcher stopped.")
	return nil
}

func (d *Dispatcher) IsRunning() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.isRunning
}

// Publish enqueues without blocking. When the buffer is full the event is
// dropped and logged.
func (d *Dispatcher) Publish(event Event) {
	select {
	case d.queue <- event:
	default:
		d.log.WithFields(logrus.Fields{
			"event":      event.Type,
			"message_id": event.MessageID,
		}).Warn("Event queue full, dropping event")
	}
}

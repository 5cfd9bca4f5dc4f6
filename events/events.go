package events

import (
	"log"
	"sync"
	"time"
)

// EnrollmentCreated is emitted after settlement provisions a course enrollment.
// Consumed by the enrollment-counter routine instead of mutating the course
// counter inline in the settlement transaction.
type EnrollmentCreated struct {
	EnrollmentID uint
	UserID       uint
	CourseID     uint
}

// PaymentCaptured is emitted after a settlement commits. Triggers the invoice
// build and the payment-success notification.
type PaymentCaptured struct {
	PaymentIntentID uint
	UserID          uint
}

// CourseCompleted is emitted once, on the enrollment's completion edge
type CourseCompleted struct {
	EnrollmentID      uint
	UserID            uint
	CourseID          uint
	CertificateNumber string
	CompletedAt       time.Time
}

// PlanActivated is emitted after a plan purchase captures. The subscription
// grant happens in its handler, outside the settlement transaction.
type PlanActivated struct {
	PaymentIntentID uint
	UserID          uint
	PlanCode        string
}

// UserRegistered triggers the welcome notification
type UserRegistered struct {
	UserID uint
}

// Handler consumes events. Handlers must not block for long; failures are
// theirs to log and never affect the emitting request.
type Handler func(event interface{})

// Dispatcher is a buffered post-commit event queue. Settlement and progress
// code emit into it; side effects (counters, emails, invoices, plan grants)
// run on its goroutine.
type Dispatcher struct {
	ch       chan interface{}
	handlers []Handler
	mu       sync.RWMutex
	done     chan struct{}
	once     sync.Once
}

// NewDispatcher creates a dispatcher with the given queue size
func NewDispatcher(buffer int) *Dispatcher {
	return &Dispatcher{
		ch:   make(chan interface{}, buffer),
		done: make(chan struct{}),
	}
}

// Register adds a handler. Call before Start.
func (d *Dispatcher) Register(h Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers = append(d.handlers, h)
}

// Start begins consuming events on a background goroutine
func (d *Dispatcher) Start() {
	go func() {
		for {
			select {
			case <-d.done:
				return
			case event := <-d.ch:
				d.dispatch(event)
			}
		}
	}()
}

func (d *Dispatcher) dispatch(event interface{}) {
	d.mu.RLock()
	handlers := d.handlers
	d.mu.RUnlock()

	for _, h := range handlers {
		func() {
			defer func() {
				if r := recover(); r != nil {
					log.Printf("[EVENTS] Handler panic for %T: %v", event, r)
				}
			}()
			h(event)
		}()
	}
}

// Emit queues an event. If the queue is full the event is dropped with a log
// line rather than blocking the request that emitted it.
func (d *Dispatcher) Emit(event interface{}) {
	select {
	case d.ch <- event:
	default:
		log.Printf("[EVENTS] Queue full, dropping %T", event)
	}
}

// Close stops the consuming goroutine
func (d *Dispatcher) Close() {
	d.once.Do(func() { close(d.done) })
}

// Bus is the process-wide dispatcher, wired up in main
var Bus = NewDispatcher(256)

// Emit publishes an event on the process-wide bus
func Emit(event interface{}) {
	Bus.Emit(event)
}

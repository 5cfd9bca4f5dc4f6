package events

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcherDeliversInOrder(t *testing.T) {
	d := NewDispatcher(16)
	defer d.Close()

	var mu sync.Mutex
	var got []interface{}
	done := make(chan struct{})

	d.Register(func(event interface{}) {
		mu.Lock()
		got = append(got, event)
		if len(got) == 3 {
			close(done)
		}
		mu.Unlock()
	})
	d.Start()

	d.Emit(EnrollmentCreated{EnrollmentID: 1, UserID: 7, CourseID: 3})
	d.Emit(PaymentCaptured{PaymentIntentID: 2, UserID: 7})
	d.Emit(CourseCompleted{EnrollmentID: 1, CertificateNumber: "CERT-x"})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("events not delivered")
	}

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, got, 3)
	assert.IsType(t, EnrollmentCreated{}, got[0])
	assert.IsType(t, PaymentCaptured{}, got[1])
	assert.IsType(t, CourseCompleted{}, got[2])
}

func TestDispatcherHandlerPanicDoesNotStopDelivery(t *testing.T) {
	d := NewDispatcher(16)
	defer d.Close()

	delivered := make(chan interface{}, 4)

	d.Register(func(event interface{}) {
		panic("handler blew up")
	})
	d.Register(func(event interface{}) {
		delivered <- event
	})
	d.Start()

	d.Emit(UserRegistered{UserID: 1})
	d.Emit(UserRegistered{UserID: 2})

	for i := 0; i < 2; i++ {
		select {
		case <-delivered:
		case <-time.After(2 * time.Second):
			t.Fatal("second handler starved by panicking handler")
		}
	}
}

func TestDispatcherFullQueueDropsInsteadOfBlocking(t *testing.T) {
	d := NewDispatcher(1)
	defer d.Close()
	// Not started: the queue can only hold one event

	finished := make(chan struct{})
	go func() {
		d.Emit(UserRegistered{UserID: 1})
		d.Emit(UserRegistered{UserID: 2}) // must not block
		close(finished)
	}()

	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatal("Emit blocked on a full queue")
	}
}

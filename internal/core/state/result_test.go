package state

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/persome/account-system/internal/core/domain"
)

func drainEvents(t *testing.T, c *Container[counterState], n int) []any {
	t.Helper()
	events := make([]any, 0, n)
	for len(events) < n {
		select {
		case event := <-c.Events():
			events = append(events, event)
		case <-time.After(time.Second):
			t.Fatalf("expected %d events, got %d: %v", n, len(events), events)
		}
	}
	return events
}

func TestHandleResult_Success(t *testing.T) {
	c := newTestContainer(t)

	var got string
	HandleResult(c, "value", nil, func(v string) {
		got = v
	})

	if got != "value" {
		t.Fatalf("onSuccess not invoked with value, got %q", got)
	}
	select {
	case event := <-c.Events():
		t.Fatalf("success must not emit events, got %+v", event)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHandleResult_NetworkError(t *testing.T) {
	c := newTestContainer(t)

	HandleResult(c, 0, context.DeadlineExceeded, func(int) {
		t.Fatalf("onSuccess invoked on failure")
	})

	events := drainEvents(t, c, 1)
	sb, ok := events[0].(Snackbar)
	if !ok || !sb.IsError || sb.Message != MsgNetworkError {
		t.Fatalf("expected network snackbar, got %+v", events[0])
	}
}

// Auth failures show the session-expired message and force navigation back
// to sign-in.
func TestHandleResult_AuthError(t *testing.T) {
	c := newTestContainer(t)

	HandleResult(c, 0, domain.ErrNotAuthenticated, func(int) {
		t.Fatalf("onSuccess invoked on failure")
	})

	events := drainEvents(t, c, 2)
	sb, ok := events[0].(Snackbar)
	if !ok || sb.Message != MsgAuthError {
		t.Fatalf("expected auth snackbar first, got %+v", events[0])
	}
	if _, ok := events[1].(NavigateToSignIn); !ok {
		t.Fatalf("expected NavigateToSignIn second, got %+v", events[1])
	}
}

func TestHandleResult_ValidationShowsCause(t *testing.T) {
	c := newTestContainer(t)

	HandleResult(c, 0, domain.NewFault(domain.FaultValidation, "username taken", nil), func(int) {
		t.Fatalf("onSuccess invoked on failure")
	})

	events := drainEvents(t, c, 1)
	sb, ok := events[0].(Snackbar)
	if !ok || sb.Message != "username taken" {
		t.Fatalf("validation failure should surface its message, got %+v", events[0])
	}
}

func TestHandleResult_GenericError(t *testing.T) {
	c := newTestContainer(t)

	HandleResult(c, 0, errors.New("boom"), func(int) {
		t.Fatalf("onSuccess invoked on failure")
	})

	events := drainEvents(t, c, 1)
	sb, ok := events[0].(Snackbar)
	if !ok || sb.Message != MsgGenericError {
		t.Fatalf("expected generic snackbar, got %+v", events[0])
	}
}

func TestHandleResult_CustomHandler(t *testing.T) {
	c := newTestContainer(t)

	var got string
	HandleResult(c, 0, context.DeadlineExceeded, func(int) {
		t.Fatalf("onSuccess invoked on failure")
	}, ResultOptions{
		Custom: true,
		OnError: func(message string) {
			got = message
		},
	})

	if got != MsgNetworkError {
		t.Fatalf("custom handler got %q", got)
	}
	select {
	case event := <-c.Events():
		t.Fatalf("custom handling must suppress default events, got %+v", event)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHandleResult_DisposedContainerIsQuiet(t *testing.T) {
	c := NewContainer("test", counterState{}, zerolog.Nop())
	c.Dispose()

	// Must not panic even though the event channel is closed.
	HandleResult(c, 0, errors.New("boom"), func(int) {})
}

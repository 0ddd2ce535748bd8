package identity

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/davemorenodev/loungelab-backend/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func TestPublishDeliversInSubscriptionOrder(t *testing.T) {
	broadcaster, err := NewBroadcaster(testLogger())
	if err != nil {
		t.Fatalf("NewBroadcaster: %v", err)
	}

	var order []string
	broadcaster.Subscribe(func(ctx context.Context, transition Transition) {
		order = append(order, "first")
	})
	broadcaster.Subscribe(func(ctx context.Context, transition Transition) {
		order = append(order, "second")
	})

	broadcaster.Publish(context.Background(), Transition{Event: EventSignedOut, CartToken: "tok", At: time.Now()})

	if len(order) != 2 || order[0] != "first" || order[1] != "second" {
		t.Fatalf("unexpected delivery order %v", order)
	}
}

func TestPublishContainsPanickingHandler(t *testing.T) {
	broadcaster, err := NewBroadcaster(testLogger())
	if err != nil {
		t.Fatalf("NewBroadcaster: %v", err)
	}

	delivered := false
	broadcaster.Subscribe(func(ctx context.Context, transition Transition) {
		panic("handler exploded")
	})
	broadcaster.Subscribe(func(ctx context.Context, transition Transition) {
		delivered = true
	})

	userID := uuid.New()
	broadcaster.Publish(context.Background(), Transition{
		Event:     EventSignedIn,
		UserID:    &userID,
		CartToken: "tok",
		At:        time.Now(),
	})

	if !delivered {
		t.Fatal("later subscribers must still run after a panic")
	}
}

func TestTransitionState(t *testing.T) {
	cases := []struct {
		event Event
		want  State
	}{
		{EventSignedIn, StateAuthenticated},
		{EventTokenRefreshed, StateAuthenticated},
		{EventSignedOut, StateGuest},
		{Event("bogus"), StateUnknown},
	}
	for _, tc := range cases {
		got := Transition{Event: tc.event}.State()
		if got != tc.want {
			t.Fatalf("%s: want %s, got %s", tc.event, tc.want, got)
		}
	}
}

package identity

import (
	"time"

	"github.com/google/uuid"
)

// State describes what the backend currently knows about a shopper.
type State string

const (
	// StateUnknown applies before any transition has been observed for a cart token.
	StateUnknown State = "unknown"
	// StateGuest applies to shoppers browsing without an account session.
	StateGuest State = "guest"
	// StateAuthenticated applies once a login or registration has completed.
	StateAuthenticated State = "authenticated"
)

// Event identifies the auth lifecycle change carried by a transition.
type Event string

const (
	EventSignedIn       Event = "signed_in"
	EventSignedOut      Event = "signed_out"
	EventTokenRefreshed Event = "token_refreshed"
)

// Transition is published whenever a shopper's auth state changes. CartToken
// identifies the guest cart the shopper was browsing with, if any.
type Transition struct {
	Event     Event
	UserID    *uuid.UUID
	CartToken string
	At        time.Time
}

// State maps the event to the resulting identity state.
func (t Transition) State() State {
	switch t.Event {
	case EventSignedIn, EventTokenRefreshed:
		return StateAuthenticated
	case EventSignedOut:
		return StateGuest
	default:
		return StateUnknown
	}
}

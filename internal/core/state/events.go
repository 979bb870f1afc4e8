package state

// Base one-shot events any controller may emit. Controllers define additional
// event types of their own; consumers type-switch on the events stream.

// Snackbar asks the view layer to show a transient message.
type Snackbar struct {
	Message    string
	IsError    bool
	ActionText string
}

// NavigateToSignIn forces navigation to the sign-in screen, emitted on
// authentication failures.
type NavigateToSignIn struct{}

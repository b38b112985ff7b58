package tui

import "github.com/narahq/nara-chat/internal/state"

// signInDoneMsg reports the outcome of an async sign-in call.
type signInDoneMsg struct {
	err error
}

// signOutDoneMsg reports the outcome of an async sign-out call.
type signOutDoneMsg struct {
	err error
}

// signUpDoneMsg reports the outcome of an async sign-up call. When the
// identity provider requires email confirmation no session exists yet and
// pendingConfirmation is set.
type signUpDoneMsg struct {
	err                 error
	pendingConfirmation bool
}

type askDoneMsg struct {
	err error
}

type refreshDoneMsg struct {
	err error
}

type selectDoneMsg struct {
	err error
}

type newChatDoneMsg struct {
	err error
}

type deleteDoneMsg struct {
	err error
}

type feedbackDoneMsg struct {
	err error
}

// stateChangedMsg carries a change notification from the state store into
// the Bubble Tea message loop.
type stateChangedMsg struct {
	change state.Change
}

// stateClosedMsg signals that the state store's change stream has ended.
type stateClosedMsg struct{}

type copiedMsg struct{}

type clearStatusMsg struct{}

package usecases

import "errors"

// Sentinel errors returned by the service layer. The HTTP layer maps
// these to status codes.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountDisabled    = errors.New("account disabled")
	ErrUsernameTaken      = errors.New("username already taken")

	ErrUnknownStage      = errors.New("unknown pipeline stage")
	ErrInvalidTransition = errors.New("transition not allowed from current stage")

	ErrUnknownChannel  = errors.New("unknown outreach channel")
	ErrChannelMismatch = errors.New("template channel does not match requested channel")
	ErrNoDestination   = errors.New("lead has no destination for this channel")
	ErrAlreadySent     = errors.New("message already sent")
	ErrNotSendable     = errors.New("message is not in a sendable state")
	ErrSendThrottled   = errors.New("send throttled for this lead")

	ErrNoEvalCases = errors.New("no eval cases match the requested kind")
)

package errors

import "fmt"

var (
	ErrWorkerPanic        = fmt.Errorf("worker panic")
	ErrRetriesExhausted   = fmt.Errorf("retries exhausted")
	ErrEmptyFields        = fmt.Errorf("please fill in all fields")
	ErrPasswordMismatch   = fmt.Errorf("passwords do not match")
	ErrPasswordTooShort   = fmt.Errorf("password must be at least 6 characters")
	ErrEmptyMessage       = fmt.Errorf("message content is empty")
	ErrNotAuthenticated   = fmt.Errorf("not logged in")
	ErrSessionExpired     = fmt.Errorf("session expired")
	ErrSessionNotFound    = fmt.Errorf("no saved session")
	ErrNoSuchConversation = fmt.Errorf("conversation is not open")
	ErrConnectionAck      = fmt.Errorf("server did not acknowledge the connection")
	ErrConnectionClosed   = fmt.Errorf("live connection closed")
	ErrEmptyResponse      = fmt.Errorf("empty response")
)

// Package mail renders and dispatches the service's outbound email.
package mail

import (
	"context"
)

// Message is one digit-code email to one recipient.
type Message struct {
	RecipientName string
	RecipientAddr string
	Code          string
}

// Dispatcher sends digit-code emails. Implementations must be safe for
// concurrent use.
type Dispatcher interface {
	// SendDigitCode renders and delivers a single message.
	SendDigitCode(ctx context.Context, msg Message) error

	// SendDigitCodeBatch delivers each message concurrently. Failures
	// for individual recipients are collected and joined; one bad
	// address never aborts the rest of the batch.
	SendDigitCodeBatch(ctx context.Context, msgs []Message) error
}

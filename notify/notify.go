package notify

import (
	"context"
	"errors"
	"time"

	"github.com/MrEthical07/campusride/locale"
)

// Kind selects the template a code message is rendered with.
type Kind uint8

const (
	KindRegister Kind = iota + 1
	KindReset
	KindDelete
)

func (k Kind) String() string {
	switch k {
	case KindRegister:
		return "register"
	case KindReset:
		return "reset"
	case KindDelete:
		return "delete"
	default:
		return "unknown"
	}
}

var (
	// ErrDeliveryFailed wraps any transport error returned by a Notifier.
	ErrDeliveryFailed = errors.New("notify: delivery failed")
	// ErrQueueFull is returned when the dispatcher cannot accept more work.
	ErrQueueFull = errors.New("notify: queue full")
	// ErrClosed is returned after the dispatcher has been closed.
	ErrClosed = errors.New("notify: dispatcher closed")
	// ErrUnknownKind is returned for a Kind without a template.
	ErrUnknownKind = errors.New("notify: unknown message kind")
)

// Message is one verification code addressed to one recipient.
type Message struct {
	To       string
	Kind     Kind
	Code     string
	Language locale.Language
	TTL      time.Duration
}

// Notifier hands a message to a transport. Send returns once the transport
// has accepted or rejected the message.
type Notifier interface {
	Send(ctx context.Context, msg Message) error
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, msg Message) error

func (f NotifierFunc) Send(ctx context.Context, msg Message) error {
	return f(ctx, msg)
}

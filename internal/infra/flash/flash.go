// Package flash stores one-shot messages that survive a single redirect.
package flash

import "context"

// Flash is the outcome of a mutation shown once on the next page render.
// IsSuccess is omitted on success.
type Flash struct {
	IsSuccess *bool  `json:"isSuccess,omitempty"`
	Message   string `json:"message"`
}

func Success(message string) Flash {
	return Flash{Message: message}
}

func Failure(message string) Flash {
	ok := false
	return Flash{IsSuccess: &ok, Message: message}
}

// Store is written once per redirect and read-and-deleted on the next request.
type Store interface {
	Put(ctx context.Context, key string, f Flash) error
	// Pop returns nil, nil when nothing is stored under key.
	Pop(ctx context.Context, key string) (*Flash, error)
	Ping(ctx context.Context) error
}

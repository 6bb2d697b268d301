package notify

import "errors"

// Sentinel kinds for notification delivery errors.
var (
	ErrQueueFull   = errors.New("notification queue full")
	ErrNoBrokers   = errors.New("kafka publisher requires at least one broker")
	ErrNoTopic     = errors.New("kafka publisher requires a topic")
	ErrNoRecipient = errors.New("notification has no recipient")
)

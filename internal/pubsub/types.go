package pubsub

import "cloud.google.com/go/pubsub"

type client struct {
	client   *pubsub.Client
	teardown func()
}

// EventType represents the type of event/message sent via pubsub.
type EventType string

const (
	// EventApplyRatings asks for a match's rating updates to be recorded.
	EventApplyRatings EventType = "apply-ratings"
	// EventNotifyResult asks for a recorded result to be announced.
	EventNotifyResult EventType = "notify-result"
	// EventNotifyBooking asks for an upcoming booking to be announced.
	EventNotifyBooking EventType = "notify-booking"
)

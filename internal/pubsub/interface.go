package pubsub

// PubSubClient publishes events and decodes their payloads on the consuming side.
type PubSubClient interface {
	SendMessage(topic EventType, data any) error
	ProcessMessage(data []byte, returnValue any) error
}

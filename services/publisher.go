package services

// EventPublisher рассылает уведомления подписчикам события (websocket hub).
type EventPublisher interface {
	Publish(eventID int, msgType string, payload interface{})
}

type noopPublisher struct{}

func (noopPublisher) Publish(int, string, interface{}) {}

func publisherOrNoop(p EventPublisher) EventPublisher {
	if p == nil {
		return noopPublisher{}
	}
	return p
}

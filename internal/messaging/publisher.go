package messaging

import "fmt"

// SubjectChat is the global out-of-character channel.
const SubjectChat = "chat.global"

// SubjectForCharacter returns the delivery subject for one character.
func SubjectForCharacter(charID string) string {
	return fmt.Sprintf("char.%s", charID)
}

// Broker is the publish/subscribe surface the engine depends on. NatsServer
// satisfies it; tests substitute an in-memory recorder.
type Broker interface {
	Publish(subject string, data []byte) error
	Subscribe(subject string, handler func(data []byte)) (func(), error)
}

// CharacterPublisher fans messages out to per-character subjects.
type CharacterPublisher struct {
	broker Broker
}

func NewCharacterPublisher(broker Broker) *CharacterPublisher {
	return &CharacterPublisher{broker: broker}
}

// PublishToCharacter sends data to one character's subject. Delivery is
// fire-and-forget: a character with no live subscription just misses it.
func (p *CharacterPublisher) PublishToCharacter(charID string, data []byte) error {
	return p.broker.Publish(SubjectForCharacter(charID), data)
}

// PublishToCharacters sends data to each target except those excluded.
func (p *CharacterPublisher) PublishToCharacters(targets []string, exclude []string, data []byte) error {
	excludeSet := make(map[string]bool, len(exclude))
	for _, id := range exclude {
		excludeSet[id] = true
	}
	var firstErr error
	for _, charID := range targets {
		if excludeSet[charID] {
			continue
		}
		if err := p.broker.Publish(SubjectForCharacter(charID), data); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// PublishChat sends data to the global chat subject.
func (p *CharacterPublisher) PublishChat(data []byte) error {
	return p.broker.Publish(SubjectChat, data)
}

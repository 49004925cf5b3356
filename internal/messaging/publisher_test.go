package messaging

import (
	"testing"

	"github.com/pixil98/go-testutil"
)

type recordingBroker struct {
	published map[string][]string
}

func newRecordingBroker() *recordingBroker {
	return &recordingBroker{published: make(map[string][]string)}
}

func (b *recordingBroker) Publish(subject string, data []byte) error {
	b.published[subject] = append(b.published[subject], string(data))
	return nil
}

func (b *recordingBroker) Subscribe(subject string, handler func(data []byte)) (func(), error) {
	return func() {}, nil
}

func TestPublishToCharacters(t *testing.T) {
	broker := newRecordingBroker()
	pub := NewCharacterPublisher(broker)

	err := pub.PublishToCharacters([]string{"a", "b", "c"}, []string{"b"}, []byte("hello"))
	if err != nil {
		t.Fatalf("publishing: %v", err)
	}

	testutil.AssertEqual(t, "a", len(broker.published["char.a"]), 1)
	testutil.AssertEqual(t, "b", len(broker.published["char.b"]), 0)
	testutil.AssertEqual(t, "c", len(broker.published["char.c"]), 1)
}

func TestSubjectForCharacter(t *testing.T) {
	testutil.AssertEqual(t, "subject", SubjectForCharacter("abc-123"), "char.abc-123")
}

package messaging

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestPublishRejectsEmptySubject(t *testing.T) {
	n := &NATS{}

	_, err := n.Publish(context.Background(), "", OutgoingMessage{Body: []byte("x")})
	if !errors.Is(err, ErrNATSSubjectRequired) {
		t.Fatalf("Publish() error = %v, want ErrNATSSubjectRequired", err)
	}
}

func TestPublishRejectsDelay(t *testing.T) {
	n := &NATS{}

	_, err := n.Publish(context.Background(), "user_registered", OutgoingMessage{
		Body:  []byte("x"),
		Delay: time.Second,
	})
	if !errors.Is(err, ErrUnsupported) {
		t.Fatalf("Publish() error = %v, want ErrUnsupported", err)
	}
}

func TestPublishHonorsCancelledContext(t *testing.T) {
	n := &NATS{}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := n.Publish(ctx, "user_registered", OutgoingMessage{Body: []byte("x")}); !errors.Is(err, context.Canceled) {
		t.Fatalf("Publish() error = %v, want context.Canceled", err)
	}
}

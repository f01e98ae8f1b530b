package eventbus

import (
	"bytes"
	"context"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

type assigned struct{ to string }
type statusChanged struct{ status string }

func TestPublish_NoMatchingSubscriberLogsWarning(t *testing.T) {
	var buf bytes.Buffer
	log := logrus.New()
	log.SetOutput(&buf)
	log.SetLevel(logrus.WarnLevel)

	bus := NewEventPublisher(log)
	bus.Subscribe(func(e *assigned) {
		t.Error("should not be called")
	})
	bus.Publish(&statusChanged{status: "won"})

	assert.Contains(t, buf.String(), "eventbus.Publish: no matching subscribers")
}

func TestPublish_DispatchesByType(t *testing.T) {
	bus := NewEventPublisher(logrus.New())
	var got []string
	bus.Subscribe(func(ctx context.Context, e *assigned) { got = append(got, "assigned:"+e.to) })
	bus.Subscribe(func(ctx context.Context, e *statusChanged) { got = append(got, "status:"+e.status) })

	bus.Publish(context.Background(), &assigned{to: "Sanjana Pawar"})
	bus.Publish(context.Background(), &statusChanged{status: "won"})

	assert.Equal(t, []string{"assigned:Sanjana Pawar", "status:won"}, got)
}

func TestPublish_PanicDoesNotStopOtherHandlers(t *testing.T) {
	var buf bytes.Buffer
	log := logrus.New()
	log.SetOutput(&buf)

	bus := NewEventPublisher(log)
	called := false
	bus.Subscribe(func(e *assigned) { panic("boom") })
	bus.Subscribe(func(e *assigned) { called = true })

	bus.Publish(&assigned{})
	assert.True(t, called)
	assert.Contains(t, buf.String(), "handler panicked")
}

func TestMatchSignature(t *testing.T) {
	assert.True(t, MatchSignature(func(e *assigned) {}, []any{&assigned{}}))
	assert.False(t, MatchSignature(func(e *assigned) {}, []any{&statusChanged{}}))
	assert.False(t, MatchSignature(func(e *assigned) {}, []any{}))
	assert.True(t, MatchSignature(func(ctx context.Context) {}, []any{context.Background()}))
	assert.False(t, MatchSignature("not a func", nil))
}

func TestSubscribe_RejectsNonFunction(t *testing.T) {
	bus := NewEventPublisher(logrus.New())
	assert.Panics(t, func() { bus.Subscribe("not a func") })
}

package notify

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/internal/logging"
)

type fakePublisher struct {
	topic, key string
	event      any
	err        error
}

func (f *fakePublisher) PublishEvent(_ context.Context, topic, key string, event any) error {
	f.topic, f.key, f.event = topic, key, event
	return f.err
}

func TestKafkaNotifier_Send(t *testing.T) {
	t.Parallel()

	pub := &fakePublisher{}
	n := NewKafkaNotifier(pub)

	msg := Notification{Template: TemplateOrderConfirmation, To: "ada@example.com", Subject: "Order confirmed"}
	require.NoError(t, n.Send(context.Background(), msg))

	assert.Equal(t, "notifications", pub.topic)
	assert.Equal(t, "ada@example.com", pub.key)
	assert.Equal(t, msg, pub.event)
}

func TestKafkaNotifier_Errors(t *testing.T) {
	t.Parallel()

	n := NewKafkaNotifier(&fakePublisher{err: errors.New("timeout")})

	require.Error(t, n.Send(context.Background(), Notification{Template: "x"}))

	err := n.Send(context.Background(), Notification{Template: "x", To: "a@b.c"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timeout")
}

func TestLogNotifier_Send(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	ctx := logging.IntoContext(context.Background(), logging.NewWithWriter("info", &buf))

	require.NoError(t, LogNotifier{}.Send(ctx, Notification{Template: "t", To: "a@b.c", Subject: "hi"}))
	assert.Contains(t, buf.String(), `"to":"a@b.c"`)
}

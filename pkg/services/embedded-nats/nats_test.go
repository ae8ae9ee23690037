package embeddednats

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"neo-overwatch/pkg/shared"
)

func startTestServer(t *testing.T) *EmbeddedNATS {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Port = -1
	cfg.DataDir = t.TempDir()

	en, err := New(cfg, nil)
	require.NoError(t, err)
	require.NoError(t, en.Start())
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = en.Shutdown(ctx)
	})
	require.NoError(t, en.CreateEventStreams())
	return en
}

func TestNewRequiresDataDir(t *testing.T) {
	_, err := New(&Config{Port: -1}, nil)
	assert.Error(t, err)
}

func TestHealthCheck(t *testing.T) {
	en, err := New(&Config{Port: -1, DataDir: t.TempDir()}, nil)
	require.NoError(t, err)
	assert.Error(t, en.HealthCheck(), "not started")

	en = startTestServer(t)
	assert.NoError(t, en.HealthCheck())
	assert.NotEmpty(t, en.ClientURL())
}

func TestPublishEventReachesAuditor(t *testing.T) {
	en := startTestServer(t)

	err := en.PublishEvent(shared.EventTypeLoaded, shared.SubjectEventLoaded, map[string]interface{}{"neos": 3})
	require.NoError(t, err)

	sub, err := en.JetStream().PullSubscribe(shared.SubjectEventsAll, shared.ConsumerEventAuditor,
		nats.Bind(shared.StreamEvents, shared.ConsumerEventAuditor))
	require.NoError(t, err)
	defer sub.Unsubscribe()

	msgs, err := sub.Fetch(1, nats.MaxWait(2*time.Second))
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	require.NoError(t, msgs[0].Ack())

	var event shared.Event
	require.NoError(t, json.Unmarshal(msgs[0].Data, &event))
	assert.NotEmpty(t, event.ID)
	assert.Equal(t, shared.EventTypeLoaded, event.Type)
	assert.Equal(t, shared.SubjectEventLoaded, event.Subject)
	assert.Equal(t, shared.ServiceName, event.Source)
	assert.EqualValues(t, 3, event.Data["neos"])
}

func TestPublishWithDedup(t *testing.T) {
	en := startTestServer(t)

	for range 2 {
		require.NoError(t, en.PublishWithDedup(shared.SubjectEventQueried, []byte(`{}`), "same-id"))
	}

	info, err := en.JetStream().StreamInfo(shared.StreamEvents)
	require.NoError(t, err)
	assert.EqualValues(t, 1, info.State.Msgs)
}

func TestCreateEventStreamsIsIdempotent(t *testing.T) {
	en := startTestServer(t)
	assert.NoError(t, en.CreateEventStreams())
}

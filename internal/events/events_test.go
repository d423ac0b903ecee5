package events

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	name string
	err  error

	mu       sync.Mutex
	received []Event
}

func (s *recordingSink) Name() string { return s.name }

func (s *recordingSink) Publish(_ context.Context, event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.received = append(s.received, event)
	return s.err
}

func (s *recordingSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.received)
}

func newEvent(kind Type, orgID uuid.UUID) Event {
	return Event{Type: kind, OrganizationID: orgID, MessageID: uuid.New(), Title: "t", At: time.Now().UTC()}
}

func TestDispatcher_FansOutToEverySink(t *testing.T) {
	req := require.New(t)
	log, hook := logtest.NewNullLogger()
	ok := &recordingSink{name: "ok"}
	failing := &recordingSink{name: "failing", err: errors.New("unreachable")}
	d := NewDispatcher(log, 10, time.Second, failing, ok)

	req.NoError(d.Start())
	req.True(d.IsRunning())
	d.Publish(newEvent(MessageCreated, uuid.New()))
	d.Publish(newEvent(MessageDeleted, uuid.New()))
	req.NoError(d.Stop())

	req.False(d.IsRunning())
	req.Equal(2, ok.count())
	req.Equal(2, failing.count())
	var warned int
	for _, e := range hook.AllEntries() {
		if e.Message == "Failed to deliver event" {
			warned++
		}
	}
	req.Equal(2, warned)
}

func TestDispatcher_DropsWhenFull(t *testing.T) {
	req := require.New(t)
	log, hook := logtest.NewNullLogger()
	sink := &recordingSink{name: "ok"}
	d := NewDispatcher(log, 1, time.Second, sink)

	// not started, so the single slot fills and the second publish is dropped
	d.Publish(newEvent(MessageCreated, uuid.New()))
	d.Publish(newEvent(MessageCreated, uuid.New()))
	req.Equal("Event queue full, dropping event", hook.LastEntry().Message)

	req.NoError(d.Start())
	req.NoError(d.Stop())
	req.Equal(1, sink.count())
}

func TestDispatcher_StartStopAreIdempotent(t *testing.T) {
	req := require.New(t)
	log, _ := logtest.NewNullLogger()
	d := NewDispatcher(log, 1, time.Second)

	req.NoError(d.Stop())
	req.NoError(d.Start())
	req.NoError(d.Start())
	req.NoError(d.Stop())
	req.NoError(d.Stop())
	req.False(d.IsRunning())
}

func TestWebhookSink(t *testing.T) {
	req := require.New(t)
	var got Event
	var authKey string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authKey = r.Header.Get("x-ins-auth-key")
		_ = json.NewDecoder(r.Body).Decode(&got)
		if got.Type == MessageDeleted {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()
	sink := NewWebhookSink(server.Client(), server.URL, "secret")

	event := newEvent(MessageCreated, uuid.New())
	req.NoError(sink.Publish(context.Background(), event))
	req.Equal("secret", authKey)
	req.Equal(event.MessageID, got.MessageID)

	err := sink.Publish(context.Background(), newEvent(MessageDeleted, uuid.New()))
	req.Error(err)
	req.Contains(err.Error(), "502")
}

func TestHub_BroadcastsToMatchingClients(t *testing.T) {
	req := require.New(t)
	log, _ := logtest.NewNullLogger()
	hub := NewHub(log, []string{"http://allowed.example"})
	server := httptest.NewServer(hub)
	defer server.Close()
	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	orgA, orgB := uuid.New(), uuid.New()

	all, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	req.NoError(err)
	defer all.Close()
	onlyB, _, err := websocket.DefaultDialer.Dial(wsURL+"?organizationId="+orgB.String(), nil)
	req.NoError(err)
	defer onlyB.Close()
	req.Eventually(func() bool { return hub.Clients() == 2 }, 2*time.Second, 10*time.Millisecond)

	eventA := newEvent(MessageCreated, orgA)
	eventB := newEvent(MessageUpdated, orgB)
	req.NoError(hub.Publish(context.Background(), eventA))
	req.NoError(hub.Publish(context.Background(), eventB))

	var first, second Event
	req.NoError(all.SetReadDeadline(time.Now().Add(2 * time.Second)))
	req.NoError(all.ReadJSON(&first))
	req.NoError(all.ReadJSON(&second))
	req.Equal(eventA.MessageID, first.MessageID)
	req.Equal(eventB.MessageID, second.MessageID)

	var filtered Event
	req.NoError(onlyB.SetReadDeadline(time.Now().Add(2 * time.Second)))
	req.NoError(onlyB.ReadJSON(&filtered))
	req.Equal(eventB.MessageID, filtered.MessageID)
}

func TestHub_RejectsForeignOriginAndBadOrganization(t *testing.T) {
	req := require.New(t)
	log, _ := logtest.NewNullLogger()
	hub := NewHub(log, []string{"http://allowed.example"})
	server := httptest.NewServer(hub)
	defer server.Close()
	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")

	header := http.Header{"Origin": {"http://evil.example"}}
	_, resp, err := websocket.DefaultDialer.Dial(wsURL, header)
	req.Error(err)
	req.Equal(http.StatusForbidden, resp.StatusCode)

	_, resp, err = websocket.DefaultDialer.Dial(wsURL+"?organizationId=nope", nil)
	req.Error(err)
	req.Equal(http.StatusBadRequest, resp.StatusCode)

	header = http.Header{"Origin": {"http://allowed.example"}}
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, header)
	req.NoError(err)
	conn.Close()
}

func TestRedisSink(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("Skipping: REDIS_ADDR not set")
	}
	req := require.New(t)
	ctx := context.Background()
	client, err := InitRedis(ctx, addr, os.Getenv("REDIS_PASSWORD"), 0)
	req.NoError(err)
	defer client.Close()

	orgID := uuid.New()
	key := RedisKey(Event{OrganizationID: orgID})
	defer client.Del(ctx, key)
	sink := NewRedisSink(client)

	for i := 0; i < MaxRedisEvents+5; i++ {
		req.NoError(sink.Publish(ctx, newEvent(MessageCreated, orgID)))
	}
	last := newEvent(MessageDeleted, orgID)
	req.NoError(sink.Publish(ctx, last))

	length, err := client.LLen(ctx, key).Result()
	req.NoError(err)
	req.EqualValues(MaxRedisEvents, length)

	raw, err := client.LIndex(ctx, key, 0).Result()
	req.NoError(err)
	var head Event
	req.NoError(json.Unmarshal([]byte(raw), &head))
	req.Equal(last.MessageID, head.MessageID)
}

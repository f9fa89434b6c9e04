package events

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStreamServer(t *testing.T, bus *Bus) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHandler(bus).Register(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

// nextEvent reads one SSE frame, skipping comments.
func nextEvent(t *testing.T, rd *bufio.Reader) (name, data string) {
	t.Helper()
	for {
		line, err := rd.ReadString('\n')
		require.NoError(t, err)
		line = strings.TrimRight(line, "\n")
		switch {
		case line == "":
			if name != "" {
				return name, data
			}
		case strings.HasPrefix(line, "event: "):
			name = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			data = strings.TrimPrefix(line, "data: ")
		}
	}
}

func TestStream_RelaysEventsForOwner(t *testing.T) {
	bus := setupBus(t)
	srv := newStreamServer(t, bus)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/events?topic=projects,profile.avatar&owner=owner-1", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	rd := bufio.NewReader(resp.Body)
	name, _ := nextEvent(t, rd)
	require.Equal(t, "ready", name)

	other := New(TopicProjects, "owner-2", "created")
	require.NoError(t, bus.Publish(ctx, other))
	mine := New(TopicProjects, "owner-1", "deleted")
	mine.ResourceID = "proj-1"
	require.NoError(t, bus.Publish(ctx, mine))

	name, data := nextEvent(t, rd)
	assert.Equal(t, TopicProjects, name)

	var got Event
	require.NoError(t, json.Unmarshal([]byte(data), &got))
	assert.Equal(t, mine.ID, got.ID)
	assert.Equal(t, "proj-1", got.ResourceID)
}

func TestStream_RejectsUnknownTopic(t *testing.T) {
	srv := newStreamServer(t, setupBus(t))

	resp, err := http.Get(srv.URL + "/events?topic=nope")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

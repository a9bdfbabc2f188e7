package web

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RevCBH/planrate/internal/events"
)

func TestServer_RequiresStore(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)
}

func TestServer_StartStop(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	require.NoError(t, srv.Start())
	assert.NotEqual(t, "127.0.0.1:0", srv.Addr(), "ephemeral port resolved")

	resp, err := http.Get("http://" + srv.Addr() + "/")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, srv.Stop(ctx))
	assert.NoError(t, srv.Wait())
}

func TestServer_StreamsArchiveEvents(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	require.NoError(t, srv.Start())

	resp, err := http.Get("http://" + srv.Addr() + "/api/events")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	line, err := reader.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, ": connected\n", line)
	waitForCount(t, srv.hub, 1)

	post, err := http.Post("http://"+srv.Addr()+"/api/submit-feedback", "application/json", strings.NewReader(validSubmission))
	require.NoError(t, err)
	post.Body.Close()
	require.Equal(t, http.StatusOK, post.StatusCode)

	var eventLine, dataLine string
	for eventLine == "" || dataLine == "" {
		l, err := reader.ReadString('\n')
		require.NoError(t, err)
		switch {
		case strings.HasPrefix(l, "event: "):
			eventLine = strings.TrimSpace(strings.TrimPrefix(l, "event: "))
		case strings.HasPrefix(l, "data: "):
			dataLine = strings.TrimPrefix(l, "data: ")
		}
	}
	assert.Equal(t, "dataset.archived", eventLine)

	var wire events.JSONEvent
	require.NoError(t, json.Unmarshal([]byte(dataLine), &wire))
	assert.Equal(t, "3f2a9c1e-0000-4000-8000-000000000000", wire.Session)
}

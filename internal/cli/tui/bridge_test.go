package tui

import (
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RevCBH/planrate/internal/events"
)

type recordingSender struct {
	mu   sync.Mutex
	msgs []tea.Msg
}

func (r *recordingSender) Send(msg tea.Msg) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, msg)
}

func (r *recordingSender) Msgs() []tea.Msg {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]tea.Msg(nil), r.msgs...)
}

func TestBridge_ForwardsSessionEvents(t *testing.T) {
	sender := &recordingSender{}
	handler := NewBridge(sender).Handler()

	handler(events.NewEvent(events.StepRated, "sess-1").WithStep("step-0"))
	handler(events.NewEvent(events.DatasetArchived, "sess-1"))

	msgs := sender.Msgs()
	require.Len(t, msgs, 1)
	msg, ok := msgs[0].(EventMsg)
	require.True(t, ok)
	assert.Equal(t, "step-0", msg.Event.Step)
}

func TestBridge_NilSender(t *testing.T) {
	assert.NotPanics(t, func() {
		NewBridge(nil).Handler()(events.NewEvent(events.PlanRequested, ""))
	})
}

func TestLogWriter_TruncatesAndBounds(t *testing.T) {
	sender := &recordingSender{}
	w := NewLogWriter(sender)

	long := strings.Repeat("é", maxLogLine+20)
	_, err := w.Write([]byte(long + "\n"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	msgs := sender.Msgs()
	require.Len(t, msgs, 1)
	line := msgs[0].(LogMsg).Line
	assert.Equal(t, strings.Repeat("é", maxLogLine)+"...", line)
	assert.NoError(t, w.Close())
}

func TestLogWriter_SplitsLines(t *testing.T) {
	sender := &recordingSender{}
	w := NewLogWriter(sender)

	_, err := w.Write([]byte("first\nsecond\r\n\npartial"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	assert.Eventually(t, func() bool { return len(sender.Msgs()) == 3 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, []tea.Msg{LogMsg{Line: "first"}, LogMsg{Line: "second"}, LogMsg{Line: "partial"}}, sender.Msgs())

	_, err = w.Write([]byte("after close\n"))
	assert.NoError(t, err)
}

package monitor

import (
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/ternarybob/accord/pkg/ir"
)

func TestObserveStatusReflectsCurrentState(t *testing.T) {
	srv := echoServer(func(message any) any {
		tag := message.(*ir.Tag)
		if tag.Name == "increment" {
			return &ir.Tag{Name: "ok", Args: []any{tag.Args[0]}}
		}
		return "stopped"
	})
	m := New(counterContract(), srv, Raise())
	_, v := m.Call(&ir.Tag{Name: "increment", Args: []any{int64(5)}}, time.Second)
	require.Nil(t, v)

	obs := NewObserveServer(m, ObserveOptions{})
	req := httptest.NewRequest("GET", "/status", nil)
	rec := httptest.NewRecorder()
	obs.Handler().ServeHTTP(rec, req)
	require.Equal(t, 200, rec.Code)

	var got statusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Equal(t, "ready", got.State)
	// JSON numbers decode into float64 inside a map[string]any.
	require.Equal(t, float64(5), got.Tracks["total"])
}

func TestObserveHistoryListsCommittedTransitions(t *testing.T) {
	srv := echoServer(func(message any) any {
		return &ir.Tag{Name: "ok", Args: []any{int64(1)}}
	})
	m := New(counterContract(), srv, Raise())
	_, _ = m.Call(&ir.Tag{Name: "increment", Args: []any{int64(1)}}, time.Second)

	obs := NewObserveServer(m, ObserveOptions{})
	req := httptest.NewRequest("GET", "/history", nil)
	rec := httptest.NewRecorder()
	obs.Handler().ServeHTTP(rec, req)
	require.Equal(t, 200, rec.Code)

	var got historyResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got.Entries, 1)
	require.Equal(t, "increment", got.Entries[0].Tag)
}

func TestMonitorObserveReceivesCommitEvent(t *testing.T) {
	srv := echoServer(func(message any) any {
		return &ir.Tag{Name: "ok", Args: []any{int64(1)}}
	})
	m := New(counterContract(), srv, Raise())

	events := make(chan Event, 4)
	unsubscribe := m.Observe(func(e Event) { events <- e })
	defer unsubscribe()

	_, _ = m.Call(&ir.Tag{Name: "increment", Args: []any{int64(1)}}, time.Second)

	var sawCommit bool
	for i := 0; i < 2; i++ {
		select {
		case e := <-events:
			if e.Kind == EventCommit {
				sawCommit = true
			}
		default:
		}
	}
	require.True(t, sawCommit)
}

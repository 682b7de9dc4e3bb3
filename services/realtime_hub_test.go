package services

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"platelens/models"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// wsPair upgrades one connection through an httptest server and returns
// both ends.
func wsPair(t *testing.T) (server *websocket.Conn, client *websocket.Conn) {
	t.Helper()
	upgrader := websocket.Upgrader{}
	accepted := make(chan *websocket.Conn, 1)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		accepted <- conn
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	client, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	select {
	case server = <-accepted:
	case <-time.After(time.Second):
		t.Fatal("server side never accepted")
	}
	return server, client
}

func TestRealtimeHub_Broadcast(t *testing.T) {
	hub := NewRealtimeHub()
	serverConn, clientConn := wsPair(t)

	hub.Register(&WSClient{UserID: 7, Conn: serverConn})

	analysis := &models.NutritionAnalysis{
		Totals: models.Nutrition{CaloriesKcal: 420, Allergens: []string{}},
	}
	hub.BroadcastAnalysis(7, SourceCamera, analysis)

	clientConn.SetReadDeadline(time.Now().Add(time.Second))
	_, msg, err := clientConn.ReadMessage()
	require.NoError(t, err)

	var event struct {
		Kind     string                   `json:"kind"`
		Source   string                   `json:"source"`
		Analysis models.NutritionAnalysis `json:"analysis"`
	}
	require.NoError(t, json.Unmarshal(msg, &event))
	assert.Equal(t, "analysis.completed", event.Kind)
	assert.Equal(t, SourceCamera, event.Source)
	assert.InDelta(t, 420, event.Analysis.Totals.CaloriesKcal, 1e-9)
}

func TestRealtimeHub_TargetsOnlyTheUser(t *testing.T) {
	hub := NewRealtimeHub()
	serverConn, clientConn := wsPair(t)

	hub.Register(&WSClient{UserID: 9, Conn: serverConn})
	hub.BroadcastAnalysis(8, SourceUpload, &models.NutritionAnalysis{})

	clientConn.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	_, _, err := clientConn.ReadMessage()
	assert.Error(t, err, "no message should arrive for another user")
}

func TestRealtimeHub_Unregister(t *testing.T) {
	hub := NewRealtimeHub()
	serverConn, _ := wsPair(t)

	c := &WSClient{UserID: 3, Conn: serverConn}
	hub.Register(c)
	hub.Unregister(c)

	// writing after unregister must not panic or deliver
	hub.BroadcastAnalysis(3, SourceUpload, &models.NutritionAnalysis{})
}

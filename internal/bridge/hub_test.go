// Cadence - Lyric Analysis and Generation Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cadence

package bridge

import (
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"

	"github.com/tomtom215/cadence/internal/events"
)

// startHub runs a hub until the test ends.
func startHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- hub.RunWithContext(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return hub
}

// testClient is a client without a connection; tests read its send channel.
func testClient(hub *Hub, buffer int) *Client {
	return &Client{id: clientIDCounter.Add(1), hub: hub, send: make(chan Message, buffer)}
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func receive(t *testing.T, c *Client) Message {
	t.Helper()
	select {
	case msg, ok := <-c.send:
		if !ok {
			t.Fatal("send channel closed")
		}
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for message")
	}
	return Message{}
}

func TestHubBroadcastsToRegisteredClients(t *testing.T) {
	t.Parallel()

	hub := startHub(t)
	a, b := testClient(hub, 4), testClient(hub, 4)
	hub.Register <- a
	hub.Register <- b
	waitFor(t, "two clients", func() bool { return hub.ClientCount() == 2 })

	ev := events.Event{ID: "e1", Topic: events.TopicNotice, Time: time.Unix(0, 0), Payload: json.RawMessage(`{"message":"分析完成！"}`)}
	if !hub.BroadcastEvent(ev) {
		t.Fatal("BroadcastEvent dropped the message")
	}

	for _, c := range []*Client{a, b} {
		msg := receive(t, c)
		if msg.Type != events.TopicNotice || msg.ID != "e1" || !strings.Contains(string(msg.Data), "分析完成") {
			t.Errorf("client %d got %+v", c.ID(), msg)
		}
	}

	hub.Unregister <- a
	waitFor(t, "one client", func() bool { return hub.ClientCount() == 1 })
	if _, ok := <-a.send; ok {
		t.Error("unregistered client's channel should be closed")
	}
}

func TestHubDropsSlowClients(t *testing.T) {
	t.Parallel()

	hub := startHub(t)
	slow := testClient(hub, 1)
	hub.Register <- slow
	waitFor(t, "client", func() bool { return hub.ClientCount() == 1 })

	hub.Broadcast(Message{Type: "one"})
	hub.Broadcast(Message{Type: "two"})
	waitFor(t, "slow client removal", func() bool { return hub.ClientCount() == 0 })
}

func TestHubShutdownClosesClients(t *testing.T) {
	t.Parallel()

	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- hub.RunWithContext(ctx) }()

	c := testClient(hub, 1)
	hub.Register <- c
	cancel()

	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("RunWithContext() = %v, want context.Canceled", err)
	}
	if _, ok := <-c.send; ok {
		t.Error("client channel should be closed on shutdown")
	}
	if hub.ClientCount() != 0 {
		t.Errorf("ClientCount() = %d after shutdown", hub.ClientCount())
	}
}

func TestMessageFromEvent(t *testing.T) {
	t.Parallel()

	ts := time.Date(2026, 6, 1, 8, 0, 0, 0, time.FixedZone("CST", 8*3600))
	msg := MessageFromEvent(events.Event{ID: "x", Topic: events.TopicHistoryChanged, Time: ts, Payload: json.RawMessage(`{}`)})
	if msg.Time != "2026-06-01T00:00:00Z" {
		t.Errorf("Time = %q, want UTC RFC3339", msg.Time)
	}
	if msg.Type != events.TopicHistoryChanged {
		t.Errorf("Type = %q", msg.Type)
	}
	if got := MessageFromEvent(events.Event{Topic: "t"}).Time; got != "" {
		t.Errorf("zero time rendered as %q", got)
	}
}

func TestWebSocketStream(t *testing.T) {
	t.Parallel()

	hub := startHub(t)
	cfg := testConfig()
	sess := newStubSession(t, cfg)
	srv := httptest.NewServer(NewServer(sess, hub, &cfg.Bridge).Handler())
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer conn.Close()
	waitFor(t, "registration", func() bool { return hub.ClientCount() == 1 })

	readMessage := func() Message {
		t.Helper()
		_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, data, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("ReadMessage() error = %v", err)
		}
		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			t.Fatalf("decode %q: %v", data, err)
		}
		return msg
	}

	if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"ping"}`)); err != nil {
		t.Fatalf("write ping: %v", err)
	}
	if msg := readMessage(); msg.Type != MessageTypePong {
		t.Errorf("reply type = %q, want pong", msg.Type)
	}

	hub.BroadcastEvent(events.Event{ID: "e2", Topic: events.TopicSessionChanged, Payload: json.RawMessage(`{"operation":"analyze","busy":true}`)})
	msg := readMessage()
	if msg.Type != events.TopicSessionChanged || !strings.Contains(string(msg.Data), "analyze") {
		t.Errorf("event message = %+v", msg)
	}
}

func TestWebSocketRejectsForeignOrigin(t *testing.T) {
	t.Parallel()

	hub := startHub(t)
	cfg := testConfig()
	srv := httptest.NewServer(NewServer(newStubSession(t, cfg), hub, &cfg.Bridge).Handler())
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	header := map[string][]string{"Origin": {"http://evil.example"}}
	if conn, _, err := websocket.DefaultDialer.Dial(url, header); err == nil {
		conn.Close()
		t.Fatal("Dial() succeeded for a foreign origin")
	}
}

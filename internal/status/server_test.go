package status

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/keyward/keyward/internal/accesslist"
	"github.com/keyward/keyward/internal/gate"
	"github.com/keyward/keyward/internal/onewire"
	"github.com/keyward/keyward/internal/registry"
)

func newTestServer(t *testing.T, list *accesslist.List, hub *Hub) *httptest.Server {
	t.Helper()
	syncer := registry.NewSyncer(registry.Options{URL: "http://registry.invalid/keys"}, list, nil)
	srv := NewServer("127.0.0.1:0", list, syncer, hub)
	ts := httptest.NewServer(srv.routes())
	t.Cleanup(ts.Close)
	return ts
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t, accesslist.New(), NewHub())

	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
}

func TestStatusEndpoint(t *testing.T) {
	list := accesslist.NewFromIDs([]onewire.TokenID{
		{0x33, 0x00, 0x00, 0x03, 0x92, 0xc6, 0xea},
		{0x01, 0x00, 0x00, 0x13, 0x9b, 0xe2, 0xab},
	})
	ts := newTestServer(t, list, NewHub())

	resp, err := http.Get(ts.URL + "/v1/status")
	if err != nil {
		t.Fatalf("GET /v1/status failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}

	var payload Payload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("failed to decode payload: %v", err)
	}
	if payload.AuthorizedKeys != 2 {
		t.Errorf("AuthorizedKeys = %d, want 2", payload.AuthorizedKeys)
	}
	if payload.Version == "" {
		t.Error("Version should not be empty")
	}
}

func TestStatusRejectsNonGet(t *testing.T) {
	ts := newTestServer(t, accesslist.New(), NewHub())

	for _, path := range []string{"/healthz", "/v1/status"} {
		resp, err := http.Post(ts.URL+path, "text/plain", nil)
		if err != nil {
			t.Fatalf("POST %s failed: %v", path, err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusMethodNotAllowed {
			t.Errorf("POST %s status = %d, want 405", path, resp.StatusCode)
		}
	}
}

func TestEventsFeed(t *testing.T) {
	hub := NewHub()
	ts := newTestServer(t, accesslist.New(), hub)

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/v1/events"
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("failed to dial feed: %v", err)
	}
	defer conn.Close()
	defer resp.Body.Close()

	// Subscription happens inside the handler; wait for it to land
	// before publishing.
	deadline := time.Now().Add(time.Second)
	for hub.Subscribers() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("feed handler never subscribed to the hub")
		}
		time.Sleep(5 * time.Millisecond)
	}

	want := gate.Decision{Token: "33-00000392c6ea", Granted: true, At: time.Now()}
	hub.Publish(want)

	conn.SetReadDeadline(time.Now().Add(time.Second))
	var got gate.Decision
	if err := conn.ReadJSON(&got); err != nil {
		t.Fatalf("failed to read decision from feed: %v", err)
	}
	if got.Token != want.Token || got.Granted != want.Granted {
		t.Errorf("feed delivered %+v, want %+v", got, want)
	}
}

func TestEventsFeedUnsubscribesOnDisconnect(t *testing.T) {
	hub := NewHub()
	ts := newTestServer(t, accesslist.New(), hub)

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/v1/events"
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("failed to dial feed: %v", err)
	}
	defer resp.Body.Close()

	deadline := time.Now().Add(time.Second)
	for hub.Subscribers() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("feed handler never subscribed to the hub")
		}
		time.Sleep(5 * time.Millisecond)
	}

	conn.Close()

	deadline = time.Now().Add(time.Second)
	for hub.Subscribers() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("feed handler kept its subscription after disconnect")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

package websocket

import (
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chainpulse/pkg/contracts/domain"
)

func testClient(hub *Hub) *Client {
	return &Client{
		hub:    hub,
		send:   make(chan []byte, 8),
		id:     "test-client",
		logger: slog.Default(),
	}
}

func TestHub_RegisterAndBroadcast(t *testing.T) {
	hub := NewHub(slog.Default())
	hub.Start()
	defer hub.Stop()

	client := testClient(hub)
	hub.register <- client

	require.Eventually(t, func() bool {
		return hub.ClientCount() == 1
	}, time.Second, 10*time.Millisecond)

	hub.Broadcast([]byte(`{"type":"chain_update"}`))

	select {
	case msg := <-client.send:
		assert.JSONEq(t, `{"type":"chain_update"}`, string(msg))
	case <-time.After(time.Second):
		t.Fatal("broadcast not delivered")
	}
}

func TestHub_Unregister(t *testing.T) {
	hub := NewHub(slog.Default())
	hub.Start()
	defer hub.Stop()

	client := testClient(hub)
	hub.register <- client
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	hub.unregister <- client
	require.Eventually(t, func() bool { return hub.ClientCount() == 0 }, time.Second, 10*time.Millisecond)

	_, open := <-client.send
	assert.False(t, open, "send channel must be closed on unregister")
}

func TestHub_BroadcastChainUpdate(t *testing.T) {
	hub := NewHub(slog.Default())
	hub.Start()
	defer hub.Stop()

	client := testClient(hub)
	hub.register <- client
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	strike := decimal.NewFromInt(100)
	hub.BroadcastChainUpdate(&domain.ChainSnapshot{
		Ticker:       "AAPL",
		Provider:     "static",
		FetchedAt:    time.Now().UTC(),
		Expirations:  []string{"2026-09-18"},
		Contracts:    make([]domain.OptionContract, 3),
		OpenInterest: []domain.StrikeOpenInterest{{Strike: strike, TotalOpenInterest: 80}},
	})

	select {
	case raw := <-client.send:
		var msg Message
		require.NoError(t, json.Unmarshal(raw, &msg))
		assert.Equal(t, TypeChainUpdate, msg.Type)

		data, err := json.Marshal(msg.Data)
		require.NoError(t, err)
		var update ChainUpdate
		require.NoError(t, json.Unmarshal(data, &update))
		assert.Equal(t, "AAPL", update.Ticker)
		assert.Equal(t, 3, update.Contracts)
		require.Len(t, update.OpenInterest, 1)
		assert.Equal(t, int64(80), update.OpenInterest[0].TotalOpenInterest)
	case <-time.After(time.Second):
		t.Fatal("chain update not delivered")
	}
}

func TestHub_BroadcastBeforeStartIsNoop(t *testing.T) {
	hub := NewHub(slog.Default())
	// Must not block or panic with no loop running.
	hub.Broadcast([]byte("ignored"))
	hub.BroadcastChainUpdate(nil)
}

func TestHub_SlowClientEvicted(t *testing.T) {
	hub := NewHub(slog.Default())
	hub.Start()
	defer hub.Stop()

	slow := &Client{hub: hub, send: make(chan []byte), id: "slow", logger: slog.Default()}
	hub.register <- slow
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	// Nobody reads slow.send; the hub must drop the client instead of
	// blocking.
	hub.Broadcast([]byte("one"))

	require.Eventually(t, func() bool { return hub.ClientCount() == 0 }, time.Second, 10*time.Millisecond)
}

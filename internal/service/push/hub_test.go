package push

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPushToOfflineUser(t *testing.T) {
	hub := NewHub("node-1", nil)
	assert.False(t, hub.Push("u-1", []byte("hello")))
}

func TestPushDeliversToOnlineClient(t *testing.T) {
	hub := NewHub("node-1", nil)
	client := &Client{hub: hub, send: make(chan []byte, 1), userID: "u-1"}
	hub.clients["u-1"] = client

	require.True(t, hub.Push("u-1", []byte("hello")))
	assert.Equal(t, []byte("hello"), <-client.send)
}

func TestPushFullBufferDoesNotBlockAfterHubExit(t *testing.T) {
	hub := NewHub("node-1", nil)
	// send 无缓冲且无人读，模拟写缓冲已满；Run 未启动，注销信号也无人收
	client := &Client{hub: hub, send: make(chan []byte), userID: "u-1"}
	hub.clients["u-1"] = client

	done := make(chan bool, 1)
	go func() {
		done <- hub.Push("u-1", []byte("hello"))
	}()

	select {
	case delivered := <-done:
		assert.False(t, delivered)
	case <-time.After(2 * time.Second):
		t.Fatal("Push blocked on a dead hub")
	}
}

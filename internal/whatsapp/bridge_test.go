package whatsapp

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubjects(t *testing.T) {
	assert.Equal(t, "wa.session.start", StartSubject())
	assert.Equal(t, "wa.session.abc123.events", EventSubject("abc123"))
	assert.Equal(t, "wa.send.shop-1", SendSubject("shop-1"))
}

func TestEventDecoding(t *testing.T) {
	raw := `{"type":"qr","sessionId":"s1","shopId":"shop-1","qr":"2@abc"}`
	var ev Event
	require.NoError(t, json.Unmarshal([]byte(raw), &ev))
	assert.Equal(t, EventQR, ev.Type)
	assert.Equal(t, "s1", ev.SessionID)
	assert.Equal(t, "shop-1", ev.ShopID)
	assert.Equal(t, "2@abc", ev.QR)

	raw = `{"type":"connected","sessionId":"s1","shopId":"shop-1","jid":"221770000001@s.whatsapp.net"}`
	require.NoError(t, json.Unmarshal([]byte(raw), &ev))
	assert.Equal(t, EventConnected, ev.Type)
	assert.Equal(t, "221770000001@s.whatsapp.net", ev.JID)
}

func TestBridgeDisconnectedWithoutConn(t *testing.T) {
	var b Bridge
	assert.False(t, b.IsConnected())
}

func TestSessionStream_StopClosesChannel(t *testing.T) {
	stream := newSessionStream()

	require.True(t, stream.deliver(Event{Type: EventQR, SessionID: "s1"}))
	stream.stop()
	assert.False(t, stream.deliver(Event{Type: EventConnected, SessionID: "s1"}))

	ev, open := <-stream.events
	require.True(t, open)
	assert.Equal(t, EventQR, ev.Type)

	_, open = <-stream.events
	assert.False(t, open)

	// A second stop is a no-op.
	stream.stop()
}

func TestSessionStream_DropsWhenReaderBehind(t *testing.T) {
	stream := newSessionStream()

	for i := 0; i < cap(stream.events); i++ {
		require.True(t, stream.deliver(Event{Type: EventQR}))
	}
	assert.False(t, stream.deliver(Event{Type: EventQR}))
}

func TestSessionStream_StopDuringDelivery(t *testing.T) {
	for i := 0; i < 500; i++ {
		stream := newSessionStream()

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 32; j++ {
				stream.deliver(Event{Type: EventQR, SessionID: "s1"})
			}
		}()
		go func() {
			defer wg.Done()
			stream.stop()
		}()
		wg.Wait()
	}
}

package hub

import "testing"

func TestHub_StartsEmpty(t *testing.T) {
	h := New("test")
	if n := h.ClientCount(); n != 0 {
		t.Errorf("Expected 0 clients, got %d", n)
	}
}

func TestHub_BroadcastNeverBlocks(t *testing.T) {
	h := New("test")
	// No Run loop draining: once the queue fills, messages must be
	// dropped instead of stalling the tracking loop.
	for i := 0; i < 1000; i++ {
		h.Broadcast(Message{Type: JSONMessage, Data: []byte("{}")})
	}
}

func TestHub_BroadcastJSONRejectsUnencodable(t *testing.T) {
	h := New("test")
	if err := h.BroadcastJSON(func() {}); err == nil {
		t.Error("Expected an encoding error for a func value")
	}
}

func TestHub_BroadcastJSONEncodes(t *testing.T) {
	h := New("test")
	if err := h.BroadcastJSON(map[string]int{"clients": 0}); err != nil {
		t.Errorf("Expected no error, got %v", err)
	}
}

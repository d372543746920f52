package ipc

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/coder/websocket"
)

// Envelope is the wire format of the diagnostics feed.
// Data is kept as RawMessage so readers can defer deserialization to the concrete type.
type Envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

func NewEnvelope(msgType string, data any) (Envelope, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return Envelope{}, fmt.Errorf("marshal data: %w", err)
	}
	return Envelope{Type: msgType, Data: raw}, nil
}

// Decode unmarshals the payload into v. The server only writes envelopes;
// Decode and ReadEnvelope are the client side of the feed.
func (e Envelope) Decode(v any) error {
	if err := json.Unmarshal(e.Data, v); err != nil {
		return fmt.Errorf("decode %s: %w", e.Type, err)
	}
	return nil
}

const maxFrame = 1 << 20

// ReadEnvelope reads a single JSON envelope from a websocket text frame.
// Feed consumers call it in a loop after dialing /feed.
func ReadEnvelope(ctx context.Context, conn *websocket.Conn) (Envelope, error) {
	typ, payload, err := conn.Read(ctx)
	if err != nil {
		return Envelope{}, fmt.Errorf("read frame: %w", err)
	}
	if typ != websocket.MessageText {
		return Envelope{}, fmt.Errorf("unexpected frame type %v", typ)
	}

	// Guard against corrupted frames or oversized payloads.
	if len(payload) == 0 || len(payload) > maxFrame {
		return Envelope{}, fmt.Errorf("invalid message length: %d", len(payload))
	}

	var env Envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return Envelope{}, fmt.Errorf("unmarshal envelope: %w", err)
	}
	return env, nil
}

func WriteEnvelope(ctx context.Context, conn *websocket.Conn, env Envelope) error {
	payload, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal envelope: %w", err)
	}
	if err := conn.Write(ctx, websocket.MessageText, payload); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	return nil
}

package ipc

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/coder/websocket"
)

// Handler streams the published summary to websocket clients. Each client
// gets a hello frame, then a summary frame whenever the publisher has moved
// on since the last send, checked every Interval.
type Handler struct {
	pub      *Publisher
	hello    HelloMessage
	interval time.Duration
}

func NewHandler(pub *Publisher, hello HelloMessage, interval time.Duration) *Handler {
	if interval <= 0 {
		interval = 250 * time.Millisecond
	}
	return &Handler{pub: pub, hello: hello, interval: interval}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true, // local diagnostics only
	})
	if err != nil {
		slog.Error("failed to accept feed client", "error", err)
		return
	}
	defer conn.CloseNow()

	// The feed is one-way; CloseRead discards client frames and cancels ctx
	// when the client goes away.
	ctx := conn.CloseRead(r.Context())
	remote := r.RemoteAddr

	hello, err := NewEnvelope(TypeHello, h.hello)
	if err != nil {
		slog.Error("failed to build hello", "error", err)
		return
	}
	if err := WriteEnvelope(ctx, conn, hello); err != nil {
		slog.Info("feed client gone", "remote", remote, "error", err)
		return
	}
	slog.Info("feed client connected", "remote", remote)

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	var sent uint64
	for {
		if s, v := h.pub.Latest(); v > sent {
			env, err := NewEnvelope(TypeSummary, s)
			if err != nil {
				slog.Error("failed to build summary", "error", err)
				return
			}
			if err := WriteEnvelope(ctx, conn, env); err != nil {
				if !errors.Is(err, ctx.Err()) {
					slog.Info("feed client gone", "remote", remote, "error", err)
				}
				return
			}
			sent = v
		}

		select {
		case <-ctx.Done():
			conn.Close(websocket.StatusNormalClosure, "")
			return
		case <-ticker.C:
		}
	}
}

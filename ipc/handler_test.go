package ipc

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
)

func dial(t *testing.T, url string) (*websocket.Conn, context.Context) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	t.Cleanup(cancel)
	conn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(url, "http"), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.CloseNow() })
	return conn, ctx
}

func TestHandlerSendsHelloThenSummary(t *testing.T) {
	pub := NewPublisher()
	pub.Publish(SummaryMessage{Frame: 42, Energy: EnergyData{Total: 55}, ActiveEngagements: 3})

	srv := httptest.NewServer(NewHandler(pub, HelloMessage{Engine: "vimy-combat", Seed: 7}, 10*time.Millisecond))
	defer srv.Close()

	conn, ctx := dial(t, srv.URL)

	env, err := ReadEnvelope(ctx, conn)
	if err != nil {
		t.Fatalf("read hello: %v", err)
	}
	if env.Type != TypeHello {
		t.Fatalf("first frame = %q, want %q", env.Type, TypeHello)
	}
	var hello HelloMessage
	if err := env.Decode(&hello); err != nil {
		t.Fatal(err)
	}
	if hello.Seed != 7 || hello.Engine != "vimy-combat" {
		t.Errorf("hello = %+v", hello)
	}

	env, err = ReadEnvelope(ctx, conn)
	if err != nil {
		t.Fatalf("read summary: %v", err)
	}
	var sum SummaryMessage
	if err := env.Decode(&sum); err != nil {
		t.Fatal(err)
	}
	if env.Type != TypeSummary || sum.Frame != 42 || sum.Energy.Total != 55 {
		t.Errorf("summary = %s %+v", env.Type, sum)
	}
}

func TestHandlerSendsOnlyNewSummaries(t *testing.T) {
	pub := NewPublisher()
	srv := httptest.NewServer(NewHandler(pub, HelloMessage{}, 5*time.Millisecond))
	defer srv.Close()

	conn, ctx := dial(t, srv.URL)
	if _, err := ReadEnvelope(ctx, conn); err != nil {
		t.Fatal(err)
	}

	// Nothing published yet, so the next frame must be the one published now.
	time.Sleep(20 * time.Millisecond)
	pub.Publish(SummaryMessage{Frame: 1})
	pub.Publish(SummaryMessage{Frame: 2})

	env, err := ReadEnvelope(ctx, conn)
	if err != nil {
		t.Fatal(err)
	}
	var sum SummaryMessage
	if err := env.Decode(&sum); err != nil {
		t.Fatal(err)
	}
	if sum.Frame == 0 {
		t.Errorf("received unpublished summary %+v", sum)
	}
}

func TestPublisherVersion(t *testing.T) {
	pub := NewPublisher()
	if _, v := pub.Latest(); v != 0 {
		t.Fatalf("fresh publisher version = %d", v)
	}
	pub.Publish(SummaryMessage{Frame: 3})
	s, v := pub.Latest()
	if v != 1 || s.Frame != 3 {
		t.Errorf("Latest = %+v, %d", s, v)
	}
}

func TestNewEnvelopeRejectsUnmarshalable(t *testing.T) {
	if _, err := NewEnvelope(TypeSummary, make(chan int)); err == nil {
		t.Error("expected marshal error")
	}
}

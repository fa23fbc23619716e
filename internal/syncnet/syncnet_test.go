package syncnet

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
)

func TestMotionPacketEncoding(t *testing.T) {
	id := uuid.New()
	p := NewMotionPacket(id, mgl64.Vec3{0.1, -0.5, 2}, true, 0.75)

	data, err := p.Encode()
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	got, err := DecodeMotion(data)
	if err != nil {
		t.Fatalf("DecodeMotion failed: %v", err)
	}
	if got != p {
		t.Errorf("Expected %+v, got %+v", p, got)
	}
	if parsed, err := got.EntityID(); err != nil || parsed != id {
		t.Errorf("Expected entity %s, got %s (%v)", id, parsed, err)
	}

	if _, err := DecodeMotion([]byte{0xc1}); err == nil {
		t.Error("Expected error for malformed data")
	}
}

// TestWebSocketSenderDeliversPackets verifies packets travel through a real
// websocket connection in order.
func TestWebSocketSenderDeliversPackets(t *testing.T) {
	received := make(chan MotionPacket, 4)
	mux := http.NewServeMux()
	mux.HandleFunc("/motion", Handler(func(p MotionPacket) { received <- p }))
	server := httptest.NewServer(mux)
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/motion"
	sender, err := Dial(ctx, wsURL)
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}

	id := uuid.New()
	for i := 0; i < 3; i++ {
		if err := sender.SendMotion(NewMotionPacket(id, mgl64.Vec3{float64(i), 0, 0}, i%2 == 0, 0.25)); err != nil {
			t.Fatalf("SendMotion %d failed: %v", i, err)
		}
	}

	for i := 0; i < 3; i++ {
		select {
		case p := <-received:
			if p.Velocity[0] != float64(i) {
				t.Errorf("Expected packet %d in order, got velocity %v", i, p.Velocity)
			}
			if p.OnGround != (i%2 == 0) {
				t.Errorf("Expected on ground %t, got %t", i%2 == 0, p.OnGround)
			}
		case <-time.After(5 * time.Second):
			t.Fatalf("Timed out waiting for packet %d", i)
		}
	}

	if err := sender.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}
	if err := sender.SendMotion(MotionPacket{}); !errors.Is(err, ErrClosed) {
		t.Errorf("Expected ErrClosed after close, got %v", err)
	}
}

// TestSendMotionReportsDeadlineFailure verifies a connection that can no
// longer take a write deadline fails the send.
func TestSendMotionReportsDeadlineFailure(t *testing.T) {
	server := httptest.NewServer(Handler(func(MotionPacket) {}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	sender, err := Dial(ctx, "ws"+strings.TrimPrefix(server.URL, "http"))
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	if err := sender.conn.NetConn().Close(); err != nil {
		t.Fatalf("Closing the connection failed: %v", err)
	}

	err = sender.SendMotion(NewMotionPacket(uuid.New(), mgl64.Vec3{}, true, 0))
	if !errors.Is(err, net.ErrClosed) {
		t.Fatalf("Expected a closed connection error, got %v", err)
	}
	if !strings.Contains(err.Error(), "write deadline") {
		t.Errorf("Expected the deadline step to fail, got %v", err)
	}
}

func TestRecorder(t *testing.T) {
	var r Recorder
	_ = r.SendMotion(MotionPacket{LimbSwing: 1})
	_ = r.SendMotion(MotionPacket{LimbSwing: 0.5})
	if r.Len() != 2 {
		t.Fatalf("Expected 2 packets, got %d", r.Len())
	}
	packets := r.Packets()
	packets[0].LimbSwing = 9
	if r.Packets()[0].LimbSwing != 1 {
		t.Error("Expected Packets to return a copy")
	}
}

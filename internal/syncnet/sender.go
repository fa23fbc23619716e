package syncnet

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// ErrClosed is returned when sending on a closed sender.
var ErrClosed = errors.New("syncnet: sender closed")

const writeTimeout = 2 * time.Second

// WebSocketSender sends motion packets as binary websocket messages.
type WebSocketSender struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
	closed  bool
}

// Dial connects to a motion endpoint such as ws://host/motion.
func Dial(ctx context.Context, url string) (*WebSocketSender, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("syncnet: dial %s: %w", url, err)
	}
	return &WebSocketSender{conn: conn}, nil
}

// SendMotion writes one packet.
func (s *WebSocketSender) SendMotion(p MotionPacket) error {
	data, err := p.Encode()
	if err != nil {
		return err
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if err := s.conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return fmt.Errorf("syncnet: set write deadline: %w", err)
	}
	if err := s.conn.WriteMessage(websocket.BinaryMessage, data); err != nil {
		return fmt.Errorf("syncnet: write motion: %w", err)
	}
	return nil
}

// Close sends a close frame and releases the connection.
func (s *WebSocketSender) Close() error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	_ = s.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeTimeout))
	return s.conn.Close()
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(_ *http.Request) bool { return true },
}

// Handler accepts motion connections and hands every decoded packet to
// sink. Malformed messages are logged and skipped.
func Handler(sink func(MotionPacket)) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		conn, err := upgrader.Upgrade(writer, request, nil)
		if err != nil {
			log.Printf("syncnet: ws upgrade failed: %v", err)
			return
		}
		defer conn.Close()

		for {
			kind, payload, err := conn.ReadMessage()
			if err != nil {
				return
			}
			if kind != websocket.BinaryMessage {
				continue
			}
			p, err := DecodeMotion(payload)
			if err != nil {
				log.Printf("syncnet: %v", err)
				continue
			}
			sink(p)
		}
	}
}

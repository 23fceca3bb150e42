package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"

	"github.com/coder/websocket"
	"github.com/google/uuid"

	vnet "github.com/peterkuimelis/voidred/internal/net"
)

// connectMessage is the first frame a browser sends on /ws.
type connectMessage struct {
	Type       string `json:"type"`
	Addr       string `json:"addr"`
	Name       string `json:"name"`
	DeckNumber int    `json:"deck_number"`
}

// handleWebSocket proxies one browser to a TCP game host: server messages
// are forwarded verbatim as text frames, and each frame from the browser
// is written as one protocol line.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	wsConn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true, // Allow connections from any origin
	})
	if err != nil {
		s.logger.Warn().Err(err).Msg("websocket accept")
		return
	}
	defer wsConn.CloseNow()

	zl := s.logger.With().Str("conn", uuid.NewString()).Logger()
	ctx := r.Context()

	_, connectData, err := wsConn.Read(ctx)
	if err != nil {
		zl.Debug().Err(err).Msg("websocket read connect")
		return
	}
	var connectMsg connectMessage
	if err := json.Unmarshal(connectData, &connectMsg); err != nil || connectMsg.Type != "connect" {
		wsConn.Close(websocket.StatusPolicyViolation, "expected connect message")
		return
	}
	addr := connectMsg.Addr
	if addr == "" {
		addr = s.gameAddr
	}
	if !s.allowed[addr] {
		zl.Warn().Str("addr", addr).Msg("websocket dial refused")
		s.sendBridgeError(ctx, wsConn, fmt.Sprintf("Game host %s is not allowed", addr))
		wsConn.Close(websocket.StatusPolicyViolation, "host not allowed")
		return
	}

	var d net.Dialer
	tcpConn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		s.sendBridgeError(ctx, wsConn, fmt.Sprintf("Could not connect to game server at %s: %v", addr, err))
		wsConn.Close(websocket.StatusNormalClosure, "connection failed")
		return
	}
	defer tcpConn.Close()
	zl.Info().Str("addr", addr).Msg("bridging browser to game host")

	if err := json.NewEncoder(tcpConn).Encode(vnet.ClientMessage{
		Type:       vnet.MsgJoin,
		Name:       connectMsg.Name,
		DeckNumber: connectMsg.DeckNumber,
	}); err != nil {
		zl.Warn().Err(err).Msg("tcp write join")
		return
	}

	done := make(chan struct{})

	// TCP → WebSocket (server messages to browser)
	go func() {
		defer close(done)
		dec := json.NewDecoder(tcpConn)
		for {
			var msg json.RawMessage
			if err := dec.Decode(&msg); err != nil {
				if !errors.Is(err, io.EOF) && !errors.Is(err, net.ErrClosed) {
					zl.Debug().Err(err).Msg("tcp read")
				}
				return
			}
			if err := wsConn.Write(ctx, websocket.MessageText, msg); err != nil {
				zl.Debug().Err(err).Msg("websocket write")
				return
			}
		}
	}()

	// WebSocket → TCP (browser responses to server). A closed browser
	// closes the TCP side, which ends the pump above.
	go func() {
		defer tcpConn.Close()
		for {
			_, data, err := wsConn.Read(ctx)
			if err != nil {
				return
			}
			data = append(data, '\n')
			if _, err := tcpConn.Write(data); err != nil {
				zl.Debug().Err(err).Msg("tcp write")
				return
			}
		}
	}()

	<-done
	zl.Info().Msg("bridge closed")
	wsConn.Close(websocket.StatusNormalClosure, "game ended")
}

func (s *Server) sendBridgeError(ctx context.Context, wsConn *websocket.Conn, result string) {
	errMsg, _ := json.Marshal(map[string]string{"type": "error", "result": result})
	_ = wsConn.Write(ctx, websocket.MessageText, errMsg)
}

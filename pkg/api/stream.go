package api

import (
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"

	"github.com/mpapenbr/racepace/log"
	"github.com/mpapenbr/racepace/pkg/model"
)

const writeWait = 10 * time.Second

// stream pushes every analysis of the session to the websocket client.
// With initial=true the current analysis of all drivers is sent first.
//
//nolint:funlen,cyclop // by design
func (h *Handler) stream(w http.ResponseWriter, r *http.Request) {
	key, err := sessionKeyParam(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// the upgrader already replied to the client
		h.logger(r).Debug("upgrade failed", log.ErrorField(err))
		return
	}
	defer conn.Close()
	l := h.logger(r).With(log.Int("sessionKey", key))
	l.Debug("stream opened")

	send := func(a *model.SessionAnalysis) error {
		data, err := json.Marshal(a)
		if err != nil {
			return err
		}
		if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
			return err
		}
		return conn.WriteMessage(websocket.TextMessage, data)
	}

	if r.URL.Query().Get("initial") == "true" {
		a, err := h.svc.Analyze(r.Context(), key, nil)
		if err != nil {
			l.Warn("initial analysis failed", log.ErrorField(err))
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseInternalServerErr, err.Error()),
				time.Now().Add(writeWait))
			return
		}
		if err := send(a); err != nil {
			return
		}
	}

	sub := h.svc.Subscribe()
	defer h.svc.Unsubscribe(sub)

	// the client is not expected to send anything, reading detects the close
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(h.pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-closed:
			l.Debug("stream closed by client")
			return
		case <-r.Context().Done():
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil,
				time.Now().Add(writeWait)); err != nil {
				return
			}
		case a, ok := <-sub:
			if !ok {
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutdown"),
					time.Now().Add(writeWait))
				return
			}
			if a.SessionKey != key {
				continue
			}
			if err := send(a); err != nil {
				l.Debug("write failed", log.ErrorField(err))
				return
			}
		}
	}
}

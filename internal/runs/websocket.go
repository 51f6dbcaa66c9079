package runs

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	rerrors "github.com/ziadkadry99/ziprun/internal/errors"
	"github.com/ziadkadry99/ziprun/internal/history"
	"github.com/ziadkadry99/ziprun/internal/logging"
	"github.com/ziadkadry99/ziprun/internal/pipeline"
	"github.com/ziadkadry99/ziprun/internal/preview"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Event types sent over /ws/run.
const (
	EventStage = "stage"
	EventDone  = "done"
	EventError = "error"
)

// event is the outgoing WebSocket message format.
type event struct {
	Type    string          `json:"type"`
	Stage   pipeline.State  `json:"stage,omitempty"`
	Preview *preview.Handle `json:"preview,omitempty"`
	Archive *history.Meta   `json:"archive,omitempty"`
	Kind    string          `json:"kind,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// handleWebSocket reads one binary message holding an archive, streams a
// stage event per pipeline transition and ends with a done or error event.
// The query parameters name and save=true mirror the upload form.
func (s *Service) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Warn("websocket upgrade", "err", err)
		return
	}
	defer conn.Close()
	conn.SetReadLimit(s.maxUpload)

	msgType, data, err := conn.ReadMessage()
	if err != nil {
		if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
			logging.Warn("websocket read", "err", err)
		}
		return
	}
	if msgType != websocket.BinaryMessage {
		s.send(conn, event{Type: EventError, Kind: "internal", Error: "expected a binary message holding the archive"})
		return
	}

	name := r.URL.Query().Get("name")
	done := event{Type: EventDone}
	if r.URL.Query().Get("save") == "true" {
		meta, err := s.Save(r.Context(), history.Upload{Name: name, Data: data})
		if err != nil {
			s.send(conn, event{Type: EventError, Kind: rerrors.KindName(err), Error: err.Error()})
			return
		}
		done.Archive = meta
	}

	h, err := s.Execute(r.Context(), data, name, func(state pipeline.State, _ error) {
		if state != pipeline.StateFailed {
			s.send(conn, event{Type: EventStage, Stage: state})
		}
	})
	if err != nil {
		s.send(conn, event{Type: EventError, Kind: rerrors.KindName(err), Error: err.Error()})
		return
	}
	done.Preview = &h
	s.send(conn, done)

	conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
}

func (s *Service) send(conn *websocket.Conn, ev event) {
	if err := conn.WriteJSON(ev); err != nil {
		logging.Warn("websocket write", "err", err)
	}
}

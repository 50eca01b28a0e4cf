package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"quiz-engine/internal/app"
	"quiz-engine/internal/capture"
	"quiz-engine/internal/domain"
	"quiz-engine/internal/grading"
)

type WSHandler struct {
	service  *app.QuizService
	upgrader websocket.Upgrader
	log      *slog.Logger
}

func NewWSHandler(service *app.QuizService, logger *slog.Logger) *WSHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &WSHandler{
		service: service,
		log:     logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type answerPayload struct {
	Index  int             `json:"index"`
	Answer json.RawMessage `json:"answer"`
}

type capturePayload struct {
	Index int             `json:"index"`
	Event json.RawMessage `json:"event"`
}

type startedPayload struct {
	Session app.Snapshot `json:"session"`
	Quiz    domain.Quiz  `json:"quiz"`
}

type resultPayload struct {
	Result  domain.QuizResult `json:"result"`
	Summary grading.Summary   `json:"summary"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeWS upgrades the request, opens an attempt at ?quizId= and drives it
// from client messages until the socket closes. An unsubmitted attempt is
// discarded on disconnect.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	quizID := r.URL.Query().Get("quizId")
	if quizID == "" {
		http.Error(w, "missing quizId", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("ws upgrade failed", "err", err)
		return
	}
	defer conn.Close()

	ctx := r.Context()
	quiz, err := h.service.Quiz(ctx, quizID)
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}
	started, err := h.service.Start(ctx, quizID)
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}
	sessionID := started.SessionID
	defer h.service.Close(ctx, sessionID)

	updates, cancel, err := h.service.Subscribe(ctx, sessionID)
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}
	defer cancel()

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})

	// single writer: gorilla connections allow one concurrent writer
	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				h.log.Debug("ws write failed", "session_id", sessionID, "err", err)
				return
			}
		}
	}()

	send <- outboundMessage[any]{Type: "started", Payload: startedPayload{Session: started, Quiz: quiz}}

	go func() {
		defer close(updatesDone)
		resultSent := false
		forward := func(msg outboundMessage[any]) bool {
			select {
			case send <- msg:
				return true
			case <-closeSignals:
				return false
			case <-writerDone:
				return false
			}
		}
		for {
			select {
			case update, ok := <-updates:
				if !ok {
					return
				}
				if !forward(outboundMessage[any]{Type: "state", Payload: update}) {
					return
				}
				if update.Phase != app.PhaseSubmitted || resultSent {
					continue
				}
				result, err := h.service.SessionResult(ctx, sessionID)
				if err != nil {
					continue
				}
				resultSent = true
				if !forward(outboundMessage[any]{Type: "result", Payload: resultPayload{Result: result, Summary: grading.Summarize(result)}}) {
					return
				}
			case <-closeSignals:
				return
			case <-writerDone:
				return
			}
		}
	}()

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		if err := h.dispatch(r, sessionID, inbound); err != nil {
			if !enqueue(send, writerDone, outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}}) {
				break
			}
		}
	}

	close(closeSignals)
	<-updatesDone
	close(send)
	<-writerDone
}

// enqueue hands msg to the writer goroutine. It reports false once the writer
// has stopped, so callers never block on a dead connection.
func enqueue(send chan<- outboundMessage[any], writerDone <-chan struct{}, msg outboundMessage[any]) bool {
	select {
	case send <- msg:
		return true
	case <-writerDone:
		return false
	}
}

var errUnsupported = errors.New("unsupported message type")

// dispatch applies one client message. State changes reach the client
// through the session subscription, so only failures are returned.
func (h *WSHandler) dispatch(r *http.Request, sessionID string, msg inboundMessage) error {
	ctx := r.Context()
	switch msg.Type {
	case "answer":
		var payload answerPayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			return errors.New("invalid answer payload")
		}
		answer, err := decodeAnswer(payload.Answer)
		if err != nil {
			return err
		}
		_, err = h.service.Answer(ctx, sessionID, payload.Index, answer)
		return err
	case "capture":
		var payload capturePayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			return errors.New("invalid capture payload")
		}
		ev, err := capture.DecodeEvent(payload.Event)
		if err != nil {
			return err
		}
		_, err = h.service.Capture(ctx, sessionID, payload.Index, ev)
		return err
	case "next":
		_, err := h.service.Next(ctx, sessionID)
		return err
	case "prev":
		_, err := h.service.Prev(ctx, sessionID)
		return err
	case "submit":
		_, err := h.service.Submit(ctx, sessionID)
		return err
	default:
		return errUnsupported
	}
}

// decodeAnswer maps an absent or null answer to "no answer".
func decodeAnswer(raw json.RawMessage) (domain.Answer, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	return domain.UnmarshalAnswer(raw)
}

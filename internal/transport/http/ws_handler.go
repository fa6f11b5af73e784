package http

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"sprint-quiz-service/internal/app"
	"sprint-quiz-service/internal/domain"
)

// WSHandler streams an event's leaderboard and accepts submissions over one socket.
type WSHandler struct {
	service  *app.SubmissionService
	log      *zap.Logger
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.SubmissionService, log *zap.Logger) *WSHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &WSHandler{
		service: service,
		log:     log,
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

type submitPayload struct {
	ActivityID string                     `json:"activityId"`
	Answers    map[string]json.RawMessage `json:"answers"`
}

type submitResult struct {
	ActivityID   string `json:"activityId"`
	Score        int    `json:"score"`
	PerQuestion  any    `json:"perQuestion"`
	Explanations any    `json:"explanations"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// outbox hands messages to the connection writer and reports false once the
// writer has stopped.
type outbox struct {
	send chan<- outboundMessage[any]
	done <-chan struct{}
}

func (o outbox) push(msg outboundMessage[any]) bool {
	select {
	case o.send <- msg:
		return true
	case <-o.done:
		return false
	}
}

// ServeWS upgrades the request and pushes leaderboard snapshots until the
// client disconnects. Teams identified by teamId may also submit answers.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	eventID := r.URL.Query().Get("eventId")
	if eventID == "" {
		http.Error(w, "missing eventId", http.StatusBadRequest)
		return
	}
	teamID := r.URL.Query().Get("teamId")
	viewer := domain.RoleTeam
	if domain.Role(r.Header.Get(headerRole)) == domain.RoleAdmin {
		viewer = domain.RoleAdmin
	}

	updates, cancel, err := h.service.Subscribe(r.Context(), eventID, viewer)
	if err != nil {
		status := statusFor(err)
		http.Error(w, http.StatusText(status), status)
		return
	}
	defer cancel()

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("ws upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	log := h.log.With(zap.String("event_id", eventID), zap.String("team_id", teamID))
	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})
	out := outbox{send: send, done: writerDone}

	// Single writer; gorilla connections allow one concurrent writer.
	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Debug("ws write error", zap.Error(err))
				return
			}
		}
	}()

	go func() {
		defer close(updatesDone)
		for {
			select {
			case update, ok := <-updates:
				if !ok {
					return
				}
				select {
				case send <- outboundMessage[any]{Type: "leaderboard", Payload: update}:
				case <-closeSignals:
					return
				case <-writerDone:
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
		var reply outboundMessage[any]
		switch inbound.Type {
		case "submit":
			reply = h.handleSubmit(r, teamID, inbound.Payload)
		default:
			reply = outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "unsupported message type"}}
		}
		if !out.push(reply) {
			log.Debug("ws writer stopped, closing reader")
			break
		}
	}

	close(closeSignals)
	<-updatesDone
	close(send)
	<-writerDone
}

func (h *WSHandler) handleSubmit(r *http.Request, teamID string, raw json.RawMessage) outboundMessage[any] {
	var payload submitPayload
	if err := json.Unmarshal(raw, &payload); err != nil || payload.Answers == nil {
		return outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "invalid submit payload"}}
	}
	result, err := h.service.Submit(r.Context(), teamID, payload.ActivityID, payload.Answers)
	if err != nil {
		return outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}}
	}
	return outboundMessage[any]{Type: "submitResult", Payload: submitResult{
		ActivityID:   payload.ActivityID,
		Score:        result.Total,
		PerQuestion:  result.PerQuestion,
		Explanations: result.Explanations,
	}}
}

// Package ws streams pipeline progress of one analysis over a websocket.
package ws

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/mark47B/opspilot/internal/domain/usecase"
	"github.com/mark47B/opspilot/internal/infra/transport/rest/gen"
	"github.com/mark47B/opspilot/internal/infra/transport/rest/handlers"
)

const (
	writeWait    = 10 * time.Second
	pongWait     = 60 * time.Second
	pingEvery    = (pongWait * 9) / 10
	requestWait  = 30 * time.Second
	outboundSize = 32
)

const (
	TypeStep   = "step"
	TypeResult = "result"
	TypeError  = "error"
)

type Message struct {
	Type    string                       `json:"type"`
	State   string                       `json:"state,omitempty"`
	Outcome string                       `json:"outcome,omitempty"`
	Result  *gen.AnalyzeWorkflowResponse `json:"result,omitempty"`
	Code    string                       `json:"code,omitempty"`
	Message string                       `json:"message,omitempty"`
}

type Handler struct {
	service  usecase.AnalysisUseCase
	upgrader websocket.Upgrader
	logger   *zap.Logger
}

func NewHandler(service usecase.AnalysisUseCase, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		service: service,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(_ *http.Request) bool {
				return true
			},
		},
		logger: logger,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// первое сообщение клиента это запрос на анализ
	var body gen.AnalyzeWorkflowRequest
	_ = conn.SetReadDeadline(time.Now().Add(requestWait))
	if err := conn.ReadJSON(&body); err != nil {
		h.writeFinal(conn, Message{Type: TypeError, Code: string(gen.INVALIDREQUEST), Message: "invalid request message"})
		return
	}

	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	go func() {
		// drain control frames; a read error means the client is gone
		for {
			if _, _, err := conn.NextReader(); err != nil {
				cancel()
				return
			}
		}
	}()

	writeCh := make(chan Message, outboundSize)
	writerDone := make(chan struct{})
	go h.writeLoop(ctx, conn, writeCh, writerDone)

	ctx = usecase.WithObserver(ctx, func(ev usecase.StepEvent) {
		push(ctx, writeCh, Message{Type: TypeStep, State: ev.State, Outcome: ev.Outcome})
	})

	res, err := h.service.AnalyzeWorkflow(ctx, handlers.RequestFromBody(body))
	final := Message{Type: TypeResult}
	switch {
	case err == nil:
		resp := handlers.ToAnalyzeResponse(res)
		final.Result = &resp
	case errors.Is(err, usecase.ErrValidation):
		final = Message{Type: TypeError, Code: string(gen.INVALIDREQUEST), Message: err.Error()}
	default:
		h.logger.Error("websocket analysis failed", zap.Error(err))
		final = Message{Type: TypeError, Code: string(gen.INTERNAL), Message: "internal error"}
	}

	close(writeCh)
	<-writerDone
	h.writeFinal(conn, final)
}

func (h *Handler) writeLoop(ctx context.Context, conn *websocket.Conn, writeCh <-chan Message, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(pingEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-writeCh:
			if !ok {
				return
			}
			if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := conn.WriteJSON(msg); err != nil {
				h.logger.Debug("websocket write failed", zap.Error(err))
				return
			}
		case <-ticker.C:
			if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (h *Handler) writeFinal(conn *websocket.Conn, msg Message) {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(msg); err != nil {
		return
	}
	_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

func push(ctx context.Context, ch chan<- Message, msg Message) {
	select {
	case ch <- msg:
	case <-ctx.Done():
	}
}

package handler

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/wyclub/member-system/internal/core/domain"
)

// EventDispatcher is the interface the handler uses to enqueue events.
type EventDispatcher interface {
	Enqueue(ev domain.AuthEvent)
	EnqueueBatch(events []domain.AuthEvent)
}

// EventHandler ingests session lifecycle events delivered by the identity
// provider's webhook.
type EventHandler struct {
	dispatcher EventDispatcher
}

// NewEventHandler creates an EventHandler backed by the given dispatcher.
func NewEventHandler(dispatcher EventDispatcher) *EventHandler {
	return &EventHandler{dispatcher: dispatcher}
}

// Receive handles POST /v1/auth/events — enqueues a single event, returns 202.
//
// @Summary      Ingest a single session event
// @Tags         events
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      authEventRequest  true  "Session event"
// @Success      202   {object}  acceptedResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/auth/events [post]
func (h *EventHandler) Receive(c echo.Context) error {
	var req authEventRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	h.dispatcher.Enqueue(toAuthEvent(req))
	return c.JSON(http.StatusAccepted, acceptedResponse{Message: "event accepted"})
}

// ReceiveBatch handles POST /v1/auth/events/batch — enqueues a batch, returns 202.
//
// @Summary      Ingest a batch of session events
// @Tags         events
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      []authEventRequest  true  "Array of session events"
// @Success      202   {object}  acceptedResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/auth/events/batch [post]
func (h *EventHandler) ReceiveBatch(c echo.Context) error {
	var reqs []authEventRequest
	if err := c.Bind(&reqs); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if len(reqs) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "batch cannot be empty")
	}

	events := make([]domain.AuthEvent, 0, len(reqs))
	for i, req := range reqs {
		if err := c.Validate(&req); err != nil {
			return echo.NewHTTPError(http.StatusUnprocessableEntity,
				fmt.Sprintf("event[%d]: %s", i, err.Error()))
		}
		events = append(events, toAuthEvent(req))
	}

	h.dispatcher.EnqueueBatch(events)
	return c.JSON(http.StatusAccepted, acceptedResponse{
		Message: "events accepted",
		Count:   len(events),
	})
}

// toAuthEvent maps the webhook payload to the domain event.
func toAuthEvent(r authEventRequest) domain.AuthEvent {
	ev := domain.AuthEvent{
		Type:   domain.AuthEventType(r.Type),
		UserID: r.UserID,
	}
	if r.Session != nil {
		ev.Session = &domain.Session{
			UserID:         r.Session.UserID,
			Email:          r.Session.Email,
			Name:           r.Session.Name,
			EmailConfirmed: r.Session.EmailConfirmed,
		}
	}
	return ev
}

package handler

import (
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/wyclub/member-system/internal/core/domain"
)

type recordingDispatcher struct {
	events []domain.AuthEvent
}

func (d *recordingDispatcher) Enqueue(ev domain.AuthEvent) {
	d.events = append(d.events, ev)
}

func (d *recordingDispatcher) EnqueueBatch(events []domain.AuthEvent) {
	d.events = append(d.events, events...)
}

func TestReceive_SignedInEvent(t *testing.T) {
	dispatcher := &recordingDispatcher{}
	h := NewEventHandler(dispatcher)

	c, rec := jsonContext(t, http.MethodPost, "/v1/auth/events",
		`{"type":"SIGNED_IN","session":{"user_id":"usr_1","email":"a@b.test","email_confirmed":true}}`)

	if err := h.Receive(c); err != nil {
		t.Fatalf("Receive returned error: %v", err)
	}
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", rec.Code)
	}
	if len(dispatcher.events) != 1 {
		t.Fatalf("expected 1 enqueued event, got %d", len(dispatcher.events))
	}

	ev := dispatcher.events[0]
	if ev.Type != domain.EventSignedIn || ev.Session == nil || ev.Session.UserID != "usr_1" {
		t.Fatalf("unexpected event %+v", ev)
	}
}

func TestReceive_SignedOutWithoutSession(t *testing.T) {
	dispatcher := &recordingDispatcher{}
	h := NewEventHandler(dispatcher)

	c, _ := jsonContext(t, http.MethodPost, "/v1/auth/events",
		`{"type":"SIGNED_OUT","user_id":"usr_1"}`)

	if err := h.Receive(c); err != nil {
		t.Fatalf("Receive returned error: %v", err)
	}
	if len(dispatcher.events) != 1 || dispatcher.events[0].UserID != "usr_1" {
		t.Fatalf("unexpected events %+v", dispatcher.events)
	}
}

func TestReceive_UnknownTypeRejected(t *testing.T) {
	h := NewEventHandler(&recordingDispatcher{})

	c, _ := jsonContext(t, http.MethodPost, "/v1/auth/events",
		`{"type":"PASSWORD_RECOVERY","user_id":"usr_1"}`)

	err := h.Receive(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %v", err)
	}
}

func TestReceiveBatch_PreservesOrder(t *testing.T) {
	dispatcher := &recordingDispatcher{}
	h := NewEventHandler(dispatcher)

	c, rec := jsonContext(t, http.MethodPost, "/v1/auth/events/batch",
		`[{"type":"TOKEN_REFRESHED","session":{"user_id":"usr_1","email":"a@b.test","email_confirmed":true}},
		  {"type":"SIGNED_OUT","user_id":"usr_1"}]`)

	if err := h.ReceiveBatch(c); err != nil {
		t.Fatalf("ReceiveBatch returned error: %v", err)
	}
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", rec.Code)
	}
	if len(dispatcher.events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(dispatcher.events))
	}
	if dispatcher.events[0].Type != domain.EventTokenRefreshed || dispatcher.events[1].Type != domain.EventSignedOut {
		t.Fatalf("batch order not preserved: %+v", dispatcher.events)
	}
}

func TestReceiveBatch_EmptyRejected(t *testing.T) {
	h := NewEventHandler(&recordingDispatcher{})

	c, _ := jsonContext(t, http.MethodPost, "/v1/auth/events/batch", `[]`)

	err := h.ReceiveBatch(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}

package senders

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fiffu/guardwatch/config"
	"github.com/fiffu/guardwatch/lib/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newRelaySender(relayURL string) *relaySender {
	cfg := &config.Config{}
	cfg.Relay.BaseURL = relayURL
	cfg.Relay.TimeoutSecs = 5
	return &relaySender{base{zap.NewNop(), cfg, http.DefaultTransport}}
}

func TestSendAlertPayloadShape(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/sendNotification", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	phone := "555-0001"
	payload := &models.AlertPayload{
		Title:       "guardwatch alert",
		Body:        "Alex Tan needs help",
		FullName:    "Alex Tan",
		Email:       "alex@x.com",
		PhoneNumber: phone,
		Location:    &models.LatLng{Latitude: 1.29, Longitude: 103.85},
	}

	body, err := newRelaySender(srv.URL).SendAlert(context.Background(), "tok-123", payload)
	require.NoError(t, err)
	assert.Equal(t, "ok", body)

	assert.Equal(t, map[string]any{
		"token":              "tok-123",
		"title":              "guardwatch alert",
		"body":               "Alex Tan needs help",
		"fullName":           "Alex Tan",
		"email":              "alex@x.com",
		"phoneNumber":        "555-0001",
		"lastKnownLatitude":  1.29,
		"lastKnownLongitude": 103.85,
	}, got)
}

func TestSendAlertOmitsAbsentOptionals(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
	}))
	defer srv.Close()

	payload := &models.AlertPayload{Title: "guardwatch alert", Body: "a needs help", FullName: "a", Email: "a@x.com"}
	_, err := newRelaySender(srv.URL).SendAlert(context.Background(), "tok", payload)
	require.NoError(t, err)

	assert.Nil(t, got["phoneNumber"])
	assert.Nil(t, got["lastKnownLatitude"])
	assert.Nil(t, got["lastKnownLongitude"])
}

func TestSendAlertNonSuccessStatusIsAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "relay exploded", http.StatusInternalServerError)
	}))
	defer srv.Close()

	payload := &models.AlertPayload{Title: "guardwatch alert", Body: "a needs help", FullName: "a", Email: "a@x.com"}
	_, err := newRelaySender(srv.URL).SendAlert(context.Background(), "tok", payload)
	assert.Error(t, err)
}

func TestSendEnrollmentUnsupportedOnRelay(t *testing.T) {
	_, err := newRelaySender("http://relay.invalid").SendEnrollment(context.Background(), "tok", "Sam", "Alex")
	assert.Error(t, err)
}

package senders

import (
	"context"
	"errors"
	"time"

	"github.com/carlmjohnson/requests"
	"github.com/fiffu/guardwatch/lib/models"
)

// relaySender posts alerts to the push-delivery relay. A single attempt per
// call; any non-2xx status or transport failure is an error.
type relaySender struct {
	base
}

type relayRequest struct {
	Token              string   `json:"token"`
	Title              string   `json:"title"`
	Body               string   `json:"body"`
	FullName           string   `json:"fullName"`
	Email              string   `json:"email"`
	PhoneNumber        *string  `json:"phoneNumber"`
	LastKnownLatitude  *float64 `json:"lastKnownLatitude"`
	LastKnownLongitude *float64 `json:"lastKnownLongitude"`
}

func (s *relaySender) SendAlert(ctx context.Context, target string, payload *models.AlertPayload) (string, error) {
	req := relayRequest{
		Token:    target,
		Title:    payload.Title,
		Body:     payload.Body,
		FullName: payload.FullName,
		Email:    payload.Email,
	}
	if payload.PhoneNumber != "" {
		req.PhoneNumber = &payload.PhoneNumber
	}
	if payload.Location != nil {
		req.LastKnownLatitude = &payload.Location.Latitude
		req.LastKnownLongitude = &payload.Location.Longitude
	}

	timeout := time.Duration(s.cfg.Relay.TimeoutSecs) * time.Second
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var body string
	err := requests.URL(s.cfg.Relay.BaseURL).
		Path("/api/sendNotification").
		Transport(s.transport).
		BodyJSON(&req).
		ToString(&body).
		Fetch(ctx)
	return body, err
}

func (s *relaySender) SendEnrollment(ctx context.Context, target, guardianName, ownerName string) (string, error) {
	return "", errors.New("enrollment notices are not supported by the push relay")
}

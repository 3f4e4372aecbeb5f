package senders

import (
	"context"
	"net/http"

	"github.com/fiffu/guardwatch/config"
	"github.com/fiffu/guardwatch/lib/models"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Sender interface {
	// SendAlert delivers one alert payload to one resolved target
	// (a delivery token for push, an address for email).
	SendAlert(ctx context.Context, target string, payload *models.AlertPayload) (string, error)
	// SendEnrollment notifies a newly enrolled guardian.
	SendEnrollment(ctx context.Context, target, guardianName, ownerName string) (string, error)
}

type Registry map[string]Sender

func NewSenderRegistry(lc fx.Lifecycle, log *zap.Logger, cfg *config.Config, transport http.RoundTripper) Registry {
	base := base{log, cfg, transport}
	return map[string]Sender{
		"push":  &relaySender{base},
		"email": &mailgunSender{base},
	}
}

type base struct {
	log       *zap.Logger
	cfg       *config.Config
	transport http.RoundTripper
}

// Package listener runs the always-on trigger loop: it consumes detection
// events from the hotword engine and fans each one out as a help alert.
package listener

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/fiffu/guardwatch/lib"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type DetectionEvent struct {
	KeywordIndex int
	At           time.Time
}

// Detector supplies the stream of hotword detections. The stream closes
// when the underlying engine exits.
type Detector interface {
	Start(ctx context.Context) (<-chan DetectionEvent, error)
	Stop()
}

type Listener struct {
	log      *zap.Logger
	svc      *lib.Service
	detector Detector

	// mu guards cancel/stopped and is held for each in-flight fan-out.
	mu      *sync.Mutex
	cancel  context.CancelFunc
	stopped bool
}

func NewListener(lc fx.Lifecycle, log *zap.Logger, svc *lib.Service, detector Detector) *Listener {
	var mu sync.Mutex
	listener := &Listener{log: log, svc: svc, detector: detector, mu: &mu}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go listener.Start()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Sugar().Info("Trying to stop listener")
			listener.Stop()
			return nil
		},
	})

	return listener
}

func (l *Listener) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	l.mu.Lock()
	l.cancel = cancel
	if l.stopped {
		// Shutdown won the race against this start; bail out immediately.
		cancel()
	}
	l.mu.Unlock()

	events, err := l.detector.Start(ctx)
	if err != nil {
		// The process stays up for the API surface even when the engine
		// cannot run; triggers then arrive only via POST /api/alerts/trigger.
		l.log.Sugar().Errorw("Detector failed to start, hotword listening disabled", "err", err)
		return
	}
	l.log.Sugar().Info("Listening for hotword detections")

	for {
		select {
		case <-ctx.Done():
			// handleDetection holds mu, so a shutdown waits for the
			// in-flight fan-out before this branch can run.
			l.log.Sugar().Info("Listener stopped")
			return

		case event, ok := <-events:
			if !ok {
				l.log.Sugar().Warn("Detection stream closed")
				return
			}
			l.handleDetection(ctx, event)
		}
	}
}

func (l *Listener) Stop() {
	l.detector.Stop()

	l.mu.Lock()
	defer l.mu.Unlock()
	l.stopped = true
	if l.cancel != nil {
		l.cancel()
	}
}

func (l *Listener) handleDetection(ctx context.Context, event DetectionEvent) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.log.Sugar().Infow("Hotword detected, triggering help alert", "keyword_index", event.KeywordIndex)

	outcome, err := l.svc.TriggerAlert(ctx, "voice")
	switch {
	case err == nil:
		l.log.Sugar().Infof("Help alert sent: %s", outcome)

	case errors.Is(err, lib.ErrNotAuthenticated):
		l.log.Sugar().Error("Help alert skipped: user not logged in")

	case errors.Is(err, lib.ErrNoGuardians):
		l.log.Sugar().Error("You have no guardians to alert. Please add guardians in settings.")

	case errors.Is(err, lib.ErrAllDispatchesFailed):
		l.log.Sugar().Error("Help alert failed to send. Check connection and guardian setup.")

	default:
		l.log.Sugar().Errorw("A critical error occurred while sending alerts", "err", err)
	}
}

package main

import (
	"net/http"
	"os"
	"time"

	"github.com/fiffu/guardwatch/app"
	"github.com/fiffu/guardwatch/config"
	"github.com/fiffu/guardwatch/lib"
	"github.com/fiffu/guardwatch/lib/listener"
	"github.com/fiffu/guardwatch/senders"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func NewLogger() (*zap.Logger, error) {
	switch os.Getenv("ENVIRONMENT") {
	default:
		return zap.NewDevelopment()

	case "production":
		logCfg := zap.NewProductionConfig()
		logCfg.EncoderConfig.EncodeTime = func(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
			t = t.UTC()
			zapcore.ISO8601TimeEncoder(t, enc)
		}
		return logCfg.Build()
	}
}

func main() {
	fx.New(
		fx.Provide(config.NewConfig),
		fx.Provide(NewLogger),

		fx.Provide(app.NewTransport),
		fx.Provide(app.NewDatabase),
		fx.Provide(app.NewLocalState),
		fx.Provide(app.NewSessionStore),
		fx.Provide(app.NewAuth),
		fx.Provide(app.NewTokenSource),
		fx.Provide(app.NewLocator),

		fx.Provide(senders.NewSenderRegistry),

		fx.Provide(lib.NewService),
		fx.Provide(listener.NewHotwordDetector),
		fx.Provide(listener.NewListener),
		fx.Provide(app.NewAPI),

		fx.Invoke(func(*http.Server) {}),
		fx.Invoke(func(*listener.Listener) {}),
	).Run()
}

package lib

import (
	"github.com/fiffu/guardwatch/config"
	"github.com/fiffu/guardwatch/lib/localstate"
	"github.com/fiffu/guardwatch/senders"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service struct {
	cfg     *config.Config
	log     *zap.Logger
	db      *gorm.DB
	senders senders.Registry

	*profiles
	*guardians
	*tokenResolver
	*history
	*alertTrigger
}

func NewService(
	lc fx.Lifecycle,
	cfg *config.Config,
	log *zap.Logger,
	db *gorm.DB,
	reg senders.Registry,
	state *localstate.Store,
	auth Auth,
	source TokenSource,
	locator Locator,
) *Service {
	hist := &history{cfg, log, db, state}
	resolver := &tokenResolver{log, db, source}
	return &Service{
		cfg, log, db, reg,
		&profiles{log, db},
		&guardians{cfg, log, db, reg},
		resolver,
		hist,
		&alertTrigger{cfg, log, db, reg, auth, locator, resolver, hist},
	}
}

package app

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"strings"

	"github.com/carlmjohnson/requests"
	"github.com/fiffu/guardwatch/config"
	"github.com/fiffu/guardwatch/lib"
	"github.com/fiffu/guardwatch/lib/localstate"
	"github.com/fiffu/guardwatch/lib/models"
	"go.uber.org/fx"
)

const sessionNamespace = "session"

func NewLocalState(lc fx.Lifecycle, cfg *config.Config) (*localstate.Store, error) {
	return localstate.New(cfg.StateDir)
}

// SessionStore holds the identity this installation acts for. Provisioned
// through the API, read by the alert flow as the auth collaborator.
type SessionStore struct {
	state *localstate.Store
}

func NewSessionStore(state *localstate.Store) *SessionStore {
	return &SessionStore{state}
}

func NewAuth(sessions *SessionStore) lib.Auth {
	return sessions
}

func (s *SessionStore) CurrentIdentity(ctx context.Context) (*lib.Identity, error) {
	blob, err := s.state.Get(sessionNamespace)
	if err != nil {
		return nil, err
	}
	if len(blob) == 0 {
		return nil, lib.ErrNotAuthenticated
	}

	identity := &lib.Identity{}
	if err := json.Unmarshal(blob, identity); err != nil || identity.Email == "" {
		return nil, lib.ErrNotAuthenticated
	}
	return identity, nil
}

func (s *SessionStore) Save(identity *lib.Identity) error {
	blob, err := json.Marshal(identity)
	if err != nil {
		return err
	}
	return s.state.Put(sessionNamespace, blob)
}

func (s *SessionStore) Clear() error {
	return s.state.Delete(sessionNamespace)
}

// fileTokenSource re-reads the messaging daemon's token file on every call,
// so a rotated token is picked up without any cache invalidation.
type fileTokenSource struct {
	path string
}

func NewTokenSource(cfg *config.Config) lib.TokenSource {
	return &fileTokenSource{cfg.Messaging.TokenPath}
}

func (t *fileTokenSource) FreshToken(ctx context.Context) (string, error) {
	if t.path == "" {
		return "", errors.New("MESSAGING_TOKEN_PATH envvar must be populated")
	}
	blob, err := os.ReadFile(t.path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(blob)), nil
}

// httpLocator asks the companion location agent for a single fix. The
// caller bounds the wait via context.
type httpLocator struct {
	endpoint  string
	transport http.RoundTripper
}

func NewLocator(cfg *config.Config, transport http.RoundTripper) lib.Locator {
	return &httpLocator{cfg.Locator.Endpoint, transport}
}

func (l *httpLocator) Locate(ctx context.Context) (*models.LatLng, error) {
	if l.endpoint == "" {
		return nil, errors.New("LOCATOR_ENDPOINT envvar must be populated")
	}

	location := &models.LatLng{}
	err := requests.URL(l.endpoint).
		Transport(l.transport).
		ToJSON(location).
		Fetch(ctx)
	if err != nil {
		return nil, err
	}
	return location, nil
}

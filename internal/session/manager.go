package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"github.com/skybi/posctl/internal/posapi"
	"github.com/skybi/posctl/internal/storage"
	"golang.org/x/oauth2"
)

var validate = validator.New()

type credentials struct {
	Username string `validate:"required"`
	Password string `validate:"required"`
}

// Authenticator defines the backend calls the session lifecycle relies on
type Authenticator interface {
	// Session asks the backend whether the current access token is still authenticated
	Session(ctx context.Context) (posapi.SessionInfo, error)

	// Login exchanges a username/password pair for an access/refresh token pair and the user record
	Login(ctx context.Context, username, password string) (*posapi.LoginResult, error)

	// Logout terminates the session on the backend
	Logout(ctx context.Context) error
}

// Manager owns the process-wide session.
// It is constructed once at startup, restored from Storage and then shared by reference; Verify, Login and Logout
// are the only operations mutating it.
type Manager struct {
	Storage storage.Driver
	Auth    Authenticator

	// opMtx serializes the mutating operations; mtx guards current only, so the transport layer can still read
	// the access token while a mutating operation waits for the backend
	opMtx   sync.Mutex
	mtx     sync.RWMutex
	current Session

	now func() time.Time
}

var _ oauth2.TokenSource = (*Manager)(nil)

// Restore loads the persisted session keys into memory.
// The restored session is inactive until Verify succeeded.
func (manager *Manager) Restore(ctx context.Context) error {
	manager.opMtx.Lock()
	defer manager.opMtx.Unlock()

	restored := Session{}
	var err error
	if restored.AccessToken, _, err = manager.Storage.Get(ctx, storage.KeyAccessToken); err != nil {
		return fmt.Errorf("could not read the access token: %w", err)
	}
	if restored.RefreshToken, _, err = manager.Storage.Get(ctx, storage.KeyRefreshToken); err != nil {
		return fmt.Errorf("could not read the refresh token: %w", err)
	}
	rawUser, ok, err := manager.Storage.Get(ctx, storage.KeyUser)
	if err != nil {
		return fmt.Errorf("could not read the user record: %w", err)
	}
	if ok {
		user, err := decodeUserRecord(rawUser)
		if err != nil {
			log.Warn().Err(err).Msg("ignoring unreadable persisted user record")
		} else {
			restored.User = user
		}
	}

	manager.replace(restored)
	return nil
}

// Snapshot returns a copy of the current session
func (manager *Manager) Snapshot() Session {
	manager.mtx.RLock()
	defer manager.mtx.RUnlock()
	cpy := manager.current
	cpy.User = cpy.User.Clone()
	return cpy
}

// Active returns whether the session is currently active
func (manager *Manager) Active() bool {
	manager.mtx.RLock()
	defer manager.mtx.RUnlock()
	return manager.current.Active
}

// User returns a copy of the current user record; nil if none is known
func (manager *Manager) User() UserRecord {
	manager.mtx.RLock()
	defer manager.mtx.RUnlock()
	return manager.current.User.Clone()
}

// Token implements oauth2.TokenSource.
// It returns nil without an error if no access token is present.
func (manager *Manager) Token() (*oauth2.Token, error) {
	manager.mtx.RLock()
	defer manager.mtx.RUnlock()
	if manager.current.AccessToken == "" {
		return nil, nil
	}
	token := &oauth2.Token{
		AccessToken:  manager.current.AccessToken,
		TokenType:    "Bearer",
		RefreshToken: manager.current.RefreshToken,
	}
	if expiry, ok := accessTokenExpiry(token.AccessToken); ok {
		token.Expiry = expiry
	}
	return token, nil
}

// Verify reconciles the local session with the backend's view of the persisted access token.
// Without a token the session becomes inactive and no request is sent. A rejected or failing verification
// terminates the session (see Logout) instead of being returned; only a cancelled context is reported.
func (manager *Manager) Verify(ctx context.Context) error {
	manager.opMtx.Lock()
	defer manager.opMtx.Unlock()

	current := manager.Snapshot()
	if current.AccessToken == "" {
		manager.setActive(false)
		return nil
	}

	if expiry, ok := accessTokenExpiry(current.AccessToken); ok && !expiry.After(manager.clock()) {
		log.Warn().Time("expiry", expiry).Msg("the persisted access token is expired")
		manager.terminate(ctx)
		return nil
	}

	info, err := manager.Auth.Session(ctx)
	if err == nil && !info.Authenticated() {
		err = errors.New("backend reports the session as unauthenticated")
	}
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		log.Warn().Err(err).Msg("the persisted access token is invalid or expired")
		manager.terminate(ctx)
		return nil
	}

	user := current.User.merge(info, posapi.FieldAuthenticated)
	if raw, err := json.Marshal(user); err != nil {
		log.Warn().Err(err).Msg("could not encode the verified user record")
	} else if err := manager.Storage.Set(ctx, map[storage.Key]string{storage.KeyUser: string(raw)}); err != nil {
		log.Warn().Err(err).Msg("could not persist the verified user record")
	}

	manager.mtx.Lock()
	manager.current.User = user
	manager.current.Active = true
	manager.mtx.Unlock()
	return nil
}

// Login exchanges the given credentials for a new session.
// The persisted keys and the in-memory session are only touched once the backend response has been validated, so a
// failed login leaves the previous state untouched.
func (manager *Manager) Login(ctx context.Context, username, password string) error {
	if err := validate.Struct(&credentials{Username: username, Password: password}); err != nil {
		return ErrMissingCredentials
	}

	manager.opMtx.Lock()
	defer manager.opMtx.Unlock()

	result, err := manager.Auth.Login(ctx, username, password)
	if err != nil {
		if errors.Is(err, posapi.ErrUnauthorized) || errors.Is(err, posapi.ErrBadRequest) {
			return fmt.Errorf("%w: %v", ErrInvalidCredentials, err)
		}
		return fmt.Errorf("login request failed: %w", err)
	}
	if result == nil || result.Access == "" || result.Refresh == "" || result.User == nil {
		return ErrMalformedResponse
	}

	user := UserRecord(result.User).Clone()
	rawUser, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("could not encode the user record: %w", err)
	}
	err = manager.Storage.Set(ctx, map[storage.Key]string{
		storage.KeyAccessToken:  result.Access,
		storage.KeyRefreshToken: result.Refresh,
		storage.KeyUser:         string(rawUser),
	})
	if err != nil {
		return fmt.Errorf("could not persist the session: %w", err)
	}

	manager.replace(Session{
		AccessToken:  result.Access,
		RefreshToken: result.Refresh,
		User:         user,
		Active:       true,
	})
	log.Debug().Str("username", user.Username()).Msg("logged in")
	return nil
}

// Logout terminates the session.
// The backend is notified on a best-effort basis; the local session is always cleared and no error is observable.
func (manager *Manager) Logout(ctx context.Context) {
	manager.opMtx.Lock()
	defer manager.opMtx.Unlock()
	manager.terminate(ctx)
}

// terminate expects opMtx to be held
func (manager *Manager) terminate(ctx context.Context) {
	if err := manager.Auth.Logout(ctx); err != nil {
		log.Error().Err(err).Msg("could not log out at the backend; clearing the local session anyway")
	}

	// The local clear must succeed even if the caller's context is already done
	if err := manager.Storage.Remove(context.WithoutCancel(ctx), storage.SessionKeys...); err != nil {
		log.Error().Err(err).Msg("could not remove the persisted session")
	}
	manager.replace(Session{})
}

func (manager *Manager) replace(session Session) {
	manager.mtx.Lock()
	defer manager.mtx.Unlock()
	manager.current = session
}

func (manager *Manager) setActive(active bool) {
	manager.mtx.Lock()
	defer manager.mtx.Unlock()
	manager.current.Active = active
}

func (manager *Manager) clock() time.Time {
	if manager.now != nil {
		return manager.now()
	}
	return time.Now()
}

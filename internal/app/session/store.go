// Package session owns the authenticated identity of the client. Nothing else
// writes it; readers get copies and may subscribe to changes.
package session

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/Neeharika2/code-assessor/internal/common"
	"github.com/Neeharika2/code-assessor/internal/common/security"
	"github.com/Neeharika2/code-assessor/internal/domain/model"
	"github.com/Neeharika2/code-assessor/internal/domain/repository"
	"go.uber.org/zap"
)

// Persister keeps a session across process restarts.
type Persister interface {
	// Load returns nil, nil when nothing is stored.
	Load(ctx context.Context) (*model.Session, error)
	Save(ctx context.Context, sess *model.Session) error
	Clear(ctx context.Context) error
}

type Store struct {
	users   repository.UserRepository
	persist Persister
	logger  *zap.Logger
	now     func() time.Time

	mu      sync.RWMutex
	current *model.Session
	subs    map[int]func(*model.Session)
	nextSub int
}

func NewStore(users repository.UserRepository, persist Persister, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		users:   users,
		persist: persist,
		logger:  logger,
		now:     time.Now,
		subs:    make(map[int]func(*model.Session)),
	}
}

// Open restores the persisted session, dropping it if its token has expired.
func (s *Store) Open(ctx context.Context) error {
	if s.persist == nil {
		return nil
	}
	sess, err := s.persist.Load(ctx)
	if err != nil {
		return fmt.Errorf("restore session: %w", err)
	}
	if sess == nil || sess.Token == "" {
		return nil
	}
	if security.TokenExpired(sess.Token, s.now()) {
		s.logger.Info("stored session expired", zap.String("username", sess.User.Username))
		if err := s.persist.Clear(ctx); err != nil {
			s.logger.Warn("could not clear expired session", zap.Error(err))
		}
		return nil
	}
	s.set(sess)
	return nil
}

func (s *Store) Login(ctx context.Context, creds model.Credentials) (*model.Session, error) {
	creds.Username = strings.TrimSpace(creds.Username)
	if creds.Username == "" || creds.Password == "" {
		return nil, fmt.Errorf("username and password are required: %w", common.ErrValidation)
	}
	sess, err := s.users.Login(ctx, creds)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	return s.adopt(ctx, sess)
}

// Register creates the account and leaves the caller logged in. When the
// server answers with a bare acknowledgement the store logs in with the same
// credentials.
func (s *Store) Register(ctx context.Context, profile model.Profile) (*model.Session, error) {
	profile.Username = strings.TrimSpace(profile.Username)
	profile.Email = strings.TrimSpace(profile.Email)
	if profile.Username == "" || profile.Email == "" || profile.Password == "" {
		return nil, fmt.Errorf("username, email and password are required: %w", common.ErrValidation)
	}
	switch profile.Role {
	case "":
		profile.Role = model.RoleStudent
	case model.RoleStudent, model.RoleAdmin:
	default:
		return nil, fmt.Errorf("unknown role %q: %w", profile.Role, common.ErrValidation)
	}

	sess, err := s.users.Register(ctx, profile)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	if sess == nil {
		return s.Login(ctx, model.Credentials{Username: profile.Username, Password: profile.Password})
	}
	return s.adopt(ctx, sess)
}

func (s *Store) adopt(ctx context.Context, sess *model.Session) (*model.Session, error) {
	s.set(sess)
	s.logger.Info("logged in", zap.String("username", sess.User.Username), zap.String("role", string(sess.User.Role)))
	out := *sess
	if s.persist != nil {
		if err := s.persist.Save(ctx, sess); err != nil {
			return &out, fmt.Errorf("logged in but could not save session: %w", err)
		}
	}
	return &out, nil
}

func (s *Store) Logout(ctx context.Context) error {
	s.set(nil)
	if s.persist != nil {
		if err := s.persist.Clear(ctx); err != nil {
			return fmt.Errorf("clear session: %w", err)
		}
	}
	return nil
}

// ForceLogout drops the session after the server rejected its token.
func (s *Store) ForceLogout(reason error) {
	if s.Current() == nil {
		return
	}
	s.logger.Warn("session rejected by server, logging out", zap.Error(reason))
	s.set(nil)
	if s.persist != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.persist.Clear(ctx); err != nil {
			s.logger.Warn("could not clear session", zap.Error(err))
		}
	}
}

// Unauthorized lets the store act as the API client's authenticator.
func (s *Store) Unauthorized(err error) { s.ForceLogout(err) }

// Current returns a copy of the session, or nil when logged out.
func (s *Store) Current() *model.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil
	}
	out := *s.current
	return &out
}

func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return ""
	}
	return s.current.Token
}

// Subscribe registers fn for every session change and returns its
// cancellation.
func (s *Store) Subscribe(fn func(*model.Session)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
		})
	}
}

func (s *Store) set(sess *model.Session) {
	var snapshot *model.Session
	if sess != nil {
		cp := *sess
		snapshot = &cp
	}

	s.mu.Lock()
	s.current = snapshot
	subs := make([]func(*model.Session), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		var view *model.Session
		if snapshot != nil {
			cp := *snapshot
			view = &cp
		}
		fn(view)
	}
}

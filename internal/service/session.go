package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/telehealth-core/internal/authorize"
	"github.com/iliyamo/telehealth-core/internal/model"
)

// Coordinator holds one session: who is acting, in which role, and with
// whom they are talking.  Calls on a Coordinator are serialized.
type Coordinator struct {
	mu      sync.Mutex
	dir     *Directory
	policy  *authorize.Policy
	session model.Session
	bound   bool
	now     func() time.Time
}

func NewCoordinator(dir *Directory, policy *authorize.Policy) *Coordinator {
	return &Coordinator{dir: dir, policy: policy, now: time.Now}
}

// Establish binds identity and role to the session.
func (c *Coordinator) Establish(identity string, role model.Role) (model.Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.bound {
		return model.Session{}, ErrAlreadyBound
	}
	if strings.TrimSpace(identity) == "" || !role.Valid() {
		return model.Session{}, ErrInvalidInput
	}
	c.session = model.Session{
		ID:       uuid.NewString(),
		Identity: identity,
		Role:     role,
		ChatMode: model.ChatModeWeb,
		BoundAt:  c.now().UTC(),
	}
	c.bound = true
	return c.session, nil
}

// SetChatPeer selects peer as the conversation partner.  The peer must be
// logged in and its role must be one the session's role may talk to.  On
// any failure the session is left as it was.
func (c *Coordinator) SetChatPeer(ctx context.Context, peer string) (model.Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.bound {
		return model.Session{}, ErrNotBound
	}
	acc, err := c.dir.Lookup(ctx, peer)
	if err != nil {
		return model.Session{}, err
	}
	if !acc.IsLoggedIn || acc.Username == c.session.Identity || !c.policy.CanChat(c.session.Role, acc.Role) {
		return model.Session{}, ErrUnauthorizedPeer
	}
	c.session.ChatPeer = acc.Username
	return c.session, nil
}

// SetChatMode switches between web chat and video.
func (c *Coordinator) SetChatMode(mode model.ChatMode) (model.Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.bound {
		return model.Session{}, ErrNotBound
	}
	if !mode.Valid() {
		return model.Session{}, ErrInvalidInput
	}
	c.session.ChatMode = mode
	return c.session, nil
}

// Teardown unbinds the session and logs its identity out.  The session is
// cleared even when the logout write fails; that error is returned.
func (c *Coordinator) Teardown(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	identity, ok := c.unbind()
	if !ok {
		return nil
	}
	return c.dir.Logout(ctx, identity)
}

// Detach unbinds the session without touching presence.
func (c *Coordinator) Detach() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.unbind()
}

func (c *Coordinator) unbind() (string, bool) {
	if !c.bound {
		return "", false
	}
	identity := c.session.Identity
	c.session = model.Session{}
	c.bound = false
	return identity, true
}

// Current returns the bound session.
func (c *Coordinator) Current() (model.Session, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session, c.bound
}

// Sessions maps session ids to coordinators for transports that address
// sessions by id, such as the JWT-authenticated HTTP API.  An identity may
// hold several sessions; it stays present until the last one closes.
type Sessions struct {
	mu     sync.RWMutex
	byID   map[string]*Coordinator
	open   map[string]int // identity -> open sessions
	dir    *Directory
	policy *authorize.Policy
}

func NewSessions(dir *Directory, policy *authorize.Policy) *Sessions {
	return &Sessions{
		byID:   make(map[string]*Coordinator),
		open:   make(map[string]int),
		dir:    dir,
		policy: policy,
	}
}

// Open establishes a new session for identity.
func (s *Sessions) Open(identity string, role model.Role) (*Coordinator, model.Session, error) {
	c := NewCoordinator(s.dir, s.policy)
	sess, err := c.Establish(identity, role)
	if err != nil {
		return nil, model.Session{}, err
	}
	s.mu.Lock()
	s.byID[sess.ID] = c
	s.open[sess.Identity]++
	s.mu.Unlock()
	return c, sess, nil
}

// Get returns the coordinator for id or ErrNotBound.
func (s *Sessions) Get(id string) (*Coordinator, error) {
	s.mu.RLock()
	c, ok := s.byID[id]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotBound
	}
	return c, nil
}

// Close forgets the session.  Closing the last session of an identity
// also logs it out.  Unknown ids are ignored.
func (s *Sessions) Close(ctx context.Context, id string) error {
	s.mu.Lock()
	c, ok := s.byID[id]
	if !ok {
		s.mu.Unlock()
		return nil
	}
	delete(s.byID, id)
	last := true
	if sess, bound := c.Current(); bound {
		if s.open[sess.Identity]--; s.open[sess.Identity] > 0 {
			last = false
		} else {
			delete(s.open, sess.Identity)
		}
	}
	s.mu.Unlock()

	if !last {
		c.Detach()
		return nil
	}
	return c.Teardown(ctx)
}

// Len reports the number of open sessions.
func (s *Sessions) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}

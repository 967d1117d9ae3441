// Package client is a Go client of the todosome API holding the session state
// of one user: anonymous, waiting for email verification, verified or logged in.
package client

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"todosome/internal/domain/models"
)

type State int

const (
	StateAnonymous State = iota
	StatePendingVerification
	StateVerified
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateAnonymous:
		return "anonymous"
	case StatePendingVerification:
		return "pending_verification"
	case StateVerified:
		return "verified"
	case StateAuthenticated:
		return "authenticated"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Session is the client-side belief about being authenticated.
// Resume it on start, Logout tears it down.
type Session struct {
	api   *API
	store TokenStore

	mu          sync.RWMutex
	state       State
	token       string
	email       string
	subscribers map[int]func(State)
	nextSubID   int
}

// NewSession creates session talking to baseURL, base transport may be nil
func NewSession(baseURL string, store TokenStore, base http.RoundTripper) *Session {
	s := &Session{
		store:       store,
		subscribers: make(map[int]func(State)),
	}
	s.api = NewAPI(baseURL, &http.Client{Transport: &BearerTransport{Source: s, Base: base}})
	return s
}

// Token implements TokenSource
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Email returns address of the last signup or login
func (s *Session) Email() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.email
}

// API gives access to typed calls, requests carry current token
func (s *Session) API() *API {
	return s.api
}

// Subscribe registers fn called after every state change, returns unsubscribe
func (s *Session) Subscribe(fn func(State)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subscribers, id)
	}
}

// setState must be called without lock held, subscribers run synchronously
func (s *Session) setState(state State, token string, email string) {
	s.mu.Lock()
	changed := s.state != state
	s.state = state
	s.token = token
	if email != "" {
		s.email = email
	}
	subs := make([]func(State), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	if !changed {
		return
	}
	for _, fn := range subs {
		fn(state)
	}
}

// Resume restores session from token store, no server call is made.
// Stale token is detected by the first protected call.
func (s *Session) Resume() error {
	token, err := s.store.Load()
	if err != nil {
		return fmt.Errorf("client.Resume: %w", err)
	}
	if token == "" {
		return nil
	}
	s.setState(StateAuthenticated, token, "")
	return nil
}

func (s *Session) Signup(ctx context.Context, email string, password string) error {
	if err := s.api.Signup(ctx, email, password); err != nil {
		return err
	}
	s.setState(StatePendingVerification, "", email)
	return nil
}

func (s *Session) Verify(ctx context.Context, token string) error {
	if err := s.api.Verify(ctx, token); err != nil {
		return err
	}
	s.setState(StateVerified, s.Token(), "")
	return nil
}

// Login stores issued token and moves session to Authenticated
func (s *Session) Login(ctx context.Context, email string, password string) error {
	res, err := s.api.Login(ctx, email, password)
	if err != nil {
		return err
	}
	if err = s.store.Save(res.Token); err != nil {
		return fmt.Errorf("client.Login: %w", err)
	}
	s.setState(StateAuthenticated, res.Token, res.Email)
	return nil
}

// Logout clears stored token, server is not contacted
func (s *Session) Logout() error {
	if err := s.store.Clear(); err != nil {
		return fmt.Errorf("client.Logout: %w", err)
	}
	if s.State() == StateAuthenticated {
		s.setState(StateVerified, "", "")
		return nil
	}
	s.setState(s.State(), "", "")
	return nil
}

func (s *Session) Profile(ctx context.Context) (models.Profile, error) {
	profile, err := s.api.Profile(ctx)
	if err != nil {
		return models.Profile{}, s.checkUnauthorized(err)
	}
	s.mu.Lock()
	s.email = profile.Email
	s.mu.Unlock()
	return profile, nil
}

// checkUnauthorized drops stale token when server rejects it
func (s *Session) checkUnauthorized(err error) error {
	if !isUnauthorized(err) {
		return err
	}
	if clearErr := s.store.Clear(); clearErr != nil {
		return fmt.Errorf("%w (clearing token: %v)", err, clearErr)
	}
	s.setState(StateVerified, "", "")
	return err
}

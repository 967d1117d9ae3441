package auth_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"todosome/internal/services/access"
	"todosome/internal/services/auth"
	"todosome/internal/services/verification"
	"todosome/internal/storage"
	"todosome/internal/storage/memory"

	tokens "todosome/internal/lib/jwt"
)

const (
	passDefaultLength = 16
	tokenTTL          = time.Hour
	jwtSecret         = "test-secret"
)

// fakeMailer remembers delivered tokens by address
type fakeMailer struct {
	mu     sync.Mutex
	calls  int
	tokens map[string]string
	err    error
}

func (m *fakeMailer) SendVerificationMail(_ context.Context, emailTo string, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return m.err
	}
	m.tokens[emailTo] = token
	return nil
}

func (m *fakeMailer) token(email string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tokens[email]
}

type Suite struct {
	*testing.T
	Auth   *auth.Auth
	Access *access.Access
	Store  *memory.Storage
	Mailer *fakeMailer
}

func newSuite(t *testing.T) (context.Context, *Suite) {
	t.Helper()
	t.Parallel()

	ctx, cancelCtx := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancelCtx)

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := memory.New()
	mailer := &fakeMailer{tokens: make(map[string]string)}
	tokenProvider, err := tokens.New(jwtSecret, tokenTTL)
	require.NoError(t, err)

	verify := verification.New(log, store, store)
	return ctx, &Suite{
		T:      t,
		Auth:   auth.New(log, store, store, store, verify, mailer, tokenProvider, time.Second),
		Access: access.New(log, tokenProvider),
		Store:  store,
		Mailer: mailer,
	}
}

func randomCredentials() (string, string) {
	return gofakeit.Email(), gofakeit.Password(true, true, true, true, false, passDefaultLength)
}

func TestRegisterLogin_LoginBeforeVerify(t *testing.T) {
	ctx, st := newSuite(t)
	email, pass := randomCredentials()

	user, err := st.Auth.RegisterNewUser(ctx, email, pass)
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.False(t, user.IsEmailVerified)
	assert.Equal(t, 1, st.Mailer.calls)

	_, err = st.Auth.Login(ctx, email, pass)
	require.ErrorIs(t, err, storage.ErrUserNotConfirmedEmail)
}

func TestRegisterLogin_HappyPath(t *testing.T) {
	ctx, st := newSuite(t)
	email, pass := randomCredentials()

	user, err := st.Auth.RegisterNewUser(ctx, email, pass)
	require.NoError(t, err)

	token := st.Mailer.token(email)
	require.NotEmpty(t, token)
	verified, err := st.Auth.VerifyEmail(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, verified.ID)

	loginTime := time.Now()
	res, err := st.Auth.Login(ctx, email, pass)
	require.NoError(t, err)
	require.NotEmpty(t, res.Token)
	assert.Equal(t, user.ID, res.User.ID)
	assert.Equal(t, email, res.User.Email)

	userID, err := st.Access.Authorize(ctx, res.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, userID)

	tokenParsed, err := jwt.ParseWithClaims(
		res.Token,
		&jwt.RegisteredClaims{},
		func(token *jwt.Token) (interface{}, error) {
			return []byte(jwtSecret), nil
		})
	require.NoError(t, err)
	claims, ok := tokenParsed.Claims.(*jwt.RegisteredClaims)
	require.True(t, ok)
	assert.Equal(t, user.ID, claims.Subject)

	const deltaSeconds = 1
	assert.InDelta(t, loginTime.Add(tokenTTL).Unix(), claims.ExpiresAt.Unix(), deltaSeconds)
	assert.Equal(t, claims.ExpiresAt.Unix(), res.ExpiresAt.Unix())

	profile, err := st.Auth.Profile(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, email, profile.Email)
}

func TestVerifyEmail_Twice(t *testing.T) {
	ctx, st := newSuite(t)
	email, pass := randomCredentials()

	_, err := st.Auth.RegisterNewUser(ctx, email, pass)
	require.NoError(t, err)
	token := st.Mailer.token(email)

	_, err = st.Auth.VerifyEmail(ctx, token)
	require.NoError(t, err)
	_, err = st.Auth.VerifyEmail(ctx, token)
	require.ErrorIs(t, err, storage.ErrTokenInvalid)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	ctx, st := newSuite(t)
	email, pass := randomCredentials()

	first, err := st.Auth.RegisterNewUser(ctx, email, pass)
	require.NoError(t, err)

	_, err = st.Auth.RegisterNewUser(ctx, email, gofakeit.Password(true, true, true, true, false, passDefaultLength))
	require.ErrorIs(t, err, storage.ErrUserExists)
	assert.Equal(t, 1, st.Mailer.calls)

	// nothing changed: same user, same token, same password
	stored, err := st.Store.User(ctx, email)
	require.NoError(t, err)
	assert.Equal(t, first.ID, stored.ID)
	assert.Equal(t, st.Mailer.token(email), stored.VerificationToken)

	_, err = st.Auth.VerifyEmail(ctx, st.Mailer.token(email))
	require.NoError(t, err)
	_, err = st.Auth.Login(ctx, email, pass)
	require.NoError(t, err)
}

func TestRegister_DeliveryFailedRollsBack(t *testing.T) {
	ctx, st := newSuite(t)
	email, pass := randomCredentials()
	st.Mailer.err = errors.New("smtp is down")

	_, err := st.Auth.RegisterNewUser(ctx, email, pass)
	require.ErrorIs(t, err, storage.ErrDeliveryFailed)
	assert.Equal(t, 1, st.Mailer.calls)

	_, err = st.Store.User(ctx, email)
	require.ErrorIs(t, err, storage.ErrUserNotFound)

	// address can be used again
	st.Mailer.err = nil
	_, err = st.Auth.RegisterNewUser(ctx, email, pass)
	require.NoError(t, err)
}

func TestLogin_FailCases(t *testing.T) {
	ctx, st := newSuite(t)
	email, pass := randomCredentials()

	_, err := st.Auth.RegisterNewUser(ctx, email, pass)
	require.NoError(t, err)
	_, err = st.Auth.VerifyEmail(ctx, st.Mailer.token(email))
	require.NoError(t, err)

	tests := []struct {
		name     string
		email    string
		password string
	}{
		{
			name:     "Wrong password",
			email:    email,
			password: gofakeit.Password(true, true, true, true, false, passDefaultLength),
		},
		{
			name:     "Nonexistent email",
			email:    gofakeit.Email(),
			password: pass,
		},
		{
			name:     "Empty password",
			email:    email,
			password: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := st.Auth.Login(ctx, tt.email, tt.password)
			require.ErrorIs(t, err, storage.ErrInvalidCredentials)
			assert.NotErrorIs(t, err, storage.ErrUserNotFound)
		})
	}
}

func TestLogin_UnverifiedWrongPassword(t *testing.T) {
	ctx, st := newSuite(t)
	email, pass := randomCredentials()

	_, err := st.Auth.RegisterNewUser(ctx, email, pass)
	require.NoError(t, err)

	_, err = st.Auth.Login(ctx, email, pass+"x")
	require.ErrorIs(t, err, storage.ErrInvalidCredentials)
}

func TestProfile_UserNotFound(t *testing.T) {
	ctx, st := newSuite(t)

	_, err := st.Auth.Profile(ctx, gofakeit.UUID())
	require.ErrorIs(t, err, storage.ErrUserNotFound)
}

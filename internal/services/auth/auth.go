package auth

import (
	"context"
	"errors"
	"fmt"
	"golang.org/x/crypto/bcrypt"
	"log/slog"
	"strings"
	"time"
	"todosome/internal/domain/models"
	"todosome/internal/lib/utilities"
	"todosome/internal/services/auth/interfaces"
	"todosome/internal/storage"
)

type Auth struct {
	log             *slog.Logger
	usrStorage      interfaces.UserStorage
	usrProvider     interfaces.UserProvider
	profileProvider interfaces.ProfileProvider
	verification    interfaces.VerificationFlow
	mailer          interfaces.Mailer
	tokenProvider   interfaces.TokenProvider
	mailTimeout     time.Duration
}

// LoginResult is returned to client after successful login
type LoginResult struct {
	User      models.Profile
	Token     string
	ExpiresAt time.Time
}

// New returns a new instance of the Auth service
func New(
	log *slog.Logger,
	userStorage interfaces.UserStorage,
	userProvider interfaces.UserProvider,
	profileProvider interfaces.ProfileProvider,
	verification interfaces.VerificationFlow,
	mailer interfaces.Mailer,
	tokenProvider interfaces.TokenProvider,
	mailTimeout time.Duration,
) *Auth {
	return &Auth{
		log:             log,
		usrStorage:      userStorage,
		usrProvider:     userProvider,
		profileProvider: profileProvider,
		verification:    verification,
		mailer:          mailer,
		tokenProvider:   tokenProvider,
		mailTimeout:     mailTimeout,
	}
}

// dummyHash is compared against when user doesn't exist, so both login failures take the same time.
// Built at package init, the first unknown-email login must not pay for hash generation.
var dummyHash = mustDummyHash()

func mustDummyHash() []byte {
	hash, err := bcrypt.GenerateFromPassword([]byte("todosome-dummy-password"), bcrypt.DefaultCost)
	if err != nil {
		panic(err)
	}
	return hash
}

// RegisterNewUser saves unverified user and sends him verification mail
//
// If email is taken, returns storage.ErrUserExists and changes nothing.
// If mail can't be delivered, created user is removed and storage.ErrDeliveryFailed returned.
func (a *Auth) RegisterNewUser(
	ctx context.Context,
	email string,
	password string,
) (models.User, error) {
	const op = "auth.RegisterNewUser"
	email = strings.TrimSpace(email)
	log := a.log.With(
		slog.String("op", op),
		slog.String("email-provider", utilities.EmailProvider(email)),
	)

	log.Info("registering user")
	// generating password's hash
	passHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Error("failed to generate password's hash", slog.String("error", err.Error()))
		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}
	token, err := a.verification.Issue()
	if err != nil {
		log.Error("failed to issue verification token", slog.String("error", err.Error()))
		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}
	// save user, uniqueness of email is checked by storage
	user, err := a.usrStorage.SaveUser(ctx, email, passHash, token)
	if err != nil {
		if errors.Is(err, storage.ErrUserExists) {
			log.Info("user already registered")
			return models.User{}, fmt.Errorf("%s: %w", op, storage.ErrUserExists)
		}
		log.Error("failed to save user", slog.String("error", err.Error()))
		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}
	log = log.With(slog.String("user_id", user.ID))

	mailCtx, cancel := context.WithTimeout(ctx, a.mailTimeout)
	defer cancel()
	if err = a.mailer.SendVerificationMail(mailCtx, user.Email, token); err != nil {
		log.Error("failed to send verification mail, rolling back", slog.String("error", err.Error()))
		// rollback must survive cancelled request
		if delErr := a.usrStorage.DeleteUser(context.WithoutCancel(ctx), user.ID); delErr != nil {
			log.Error("failed to delete user", slog.String("error", delErr.Error()))
		}
		return models.User{}, fmt.Errorf("%s: %w", op, storage.ErrDeliveryFailed)
	}

	log.Info("successfully registered user")
	return user, nil
}

// VerifyEmail redeems verification token and confirms user's email
func (a *Auth) VerifyEmail(ctx context.Context, token string) (models.User, error) {
	const op = "auth.VerifyEmail"

	user, err := a.verification.Redeem(ctx, token)
	if err != nil {
		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}
	return user, nil
}

// Login checks if user with given credentials exists in system
//
// Unknown email and wrong password both return storage.ErrInvalidCredentials.
// Correct password of unverified user returns storage.ErrUserNotConfirmedEmail.
func (a *Auth) Login(
	ctx context.Context,
	email string,
	password string,
) (LoginResult, error) {
	const op = "auth.Login"
	email = strings.TrimSpace(email)
	logger := a.log.With(
		slog.String("op", op),
		slog.String("email-provider", utilities.EmailProvider(email)),
	)

	logger.Info("attempting to login user")

	user, err := a.usrProvider.User(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
			logger.Info("invalid credentials")
			return LoginResult{}, fmt.Errorf("%s: %w", op, storage.ErrInvalidCredentials)
		}
		logger.Error("failed to get user", slog.String("error", err.Error()))
		return LoginResult{}, fmt.Errorf("%s: %w", op, err)
	}
	if err = bcrypt.CompareHashAndPassword(user.PassHash, []byte(password)); err != nil {
		logger.Info("invalid credentials")
		return LoginResult{}, fmt.Errorf("%s: %w", op, storage.ErrInvalidCredentials)
	}
	if !user.IsEmailVerified {
		logger.Info("email is not verified")
		return LoginResult{}, fmt.Errorf("%s: %w", op, storage.ErrUserNotConfirmedEmail)
	}

	token, expiresAt, err := a.tokenProvider.NewAccessToken(user.ID)
	if err != nil {
		logger.Error("failed to generate token", slog.String("error", err.Error()))
		return LoginResult{}, fmt.Errorf("%s: %w", op, err)
	}

	logger.Info("user logged in successfully", slog.String("user_id", user.ID))
	return LoginResult{User: user.Profile(), Token: token, ExpiresAt: expiresAt}, nil
}

// Profile returns public data of authenticated user
func (a *Auth) Profile(ctx context.Context, userID string) (models.Profile, error) {
	const op = "auth.Profile"

	profile, err := a.profileProvider.Profile(ctx, userID)
	if err != nil {
		if !errors.Is(err, storage.ErrUserNotFound) {
			a.log.Error("failed to get profile", slog.String("op", op), slog.String("error", err.Error()))
		}
		return models.Profile{}, fmt.Errorf("%s: %w", op, err)
	}
	return profile, nil
}

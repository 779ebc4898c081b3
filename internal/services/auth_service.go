// Package services – AuthService
//
// AuthService registers accounts and exchanges credentials for bearer
// tokens. Login writes nothing; registration creates the user and its
// profile atomically and invalidates the cached user directory.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/text/unicode/norm"
	"gorm.io/gorm"

	"github.com/tbourn/go-direct-chat/internal/auth"
	"github.com/tbourn/go-direct-chat/internal/domain"
	"github.com/tbourn/go-direct-chat/internal/repo"
)

// AuthService implements registration and login.
type AuthService struct {
	DB        *gorm.DB
	Passwords *auth.PasswordHasher
	Tokens    *auth.TokenManager

	// Users is the optional directory cache to invalidate on registration.
	Users UserDirectory

	StoreTimeout time.Duration
}

// RegisterInput carries a validated registration request.
type RegisterInput struct {
	Username string
	Password string
	FullName string
	// AboutMe is optional; nil stores domain.DefaultAboutMe.
	AboutMe *string
}

// Session is the result of a successful login.
type Session struct {
	Token     string
	ExpiresAt time.Time
	User      *domain.User
}

// Register creates a user with its profile. A taken username yields
// ErrUsernameTaken, whether detected up front or by the unique index when two
// registrations race.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	ctx, span := otel.Tracer("services/AuthService").Start(ctx, "Register")
	defer span.End()

	username := norm.NFC.String(in.Username)
	if strings.TrimSpace(username) == "" || in.Password == "" {
		registrations.WithLabelValues("invalid").Inc()
		return nil, fmt.Errorf("%w: username and password are required", ErrValidation)
	}
	fullName := cleanText(in.FullName)
	if fullName == "" {
		registrations.WithLabelValues("invalid").Inc()
		return nil, fmt.Errorf("%w: full name is required", ErrValidation)
	}
	aboutMe := domain.DefaultAboutMe
	if in.AboutMe != nil {
		if aboutMe = cleanText(*in.AboutMe); aboutMe == "" {
			registrations.WithLabelValues("invalid").Inc()
			return nil, fmt.Errorf("%w: about me must not be blank", ErrValidation)
		}
	}

	hash, err := s.Passwords.Hash(in.Password)
	if err != nil {
		registrations.WithLabelValues("invalid").Inc()
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	sctx, cancel := storeCtx(ctx, s.StoreTimeout)
	defer cancel()

	if _, err := repo.GetUserByUsername(sctx, s.DB, username); err == nil {
		registrations.WithLabelValues("conflict").Inc()
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, repo.ErrNotFound) {
		registrations.WithLabelValues("error").Inc()
		return nil, storeErr(err)
	}

	u, err := repo.CreateUserWithProfile(sctx, s.DB, username, hash, domain.Profile{
		FullName: fullName,
		AboutMe:  aboutMe,
	})
	if errors.Is(err, repo.ErrDuplicate) {
		registrations.WithLabelValues("conflict").Inc()
		return nil, ErrUsernameTaken
	}
	if err != nil {
		registrations.WithLabelValues("error").Inc()
		return nil, storeErr(err)
	}
	registrations.WithLabelValues("success").Inc()
	span.SetAttributes(attribute.Int64("user.id", int64(u.ID)))

	invalidateDirectory(ctx, s.Users)
	return u, nil
}

// Authenticate verifies credentials and issues a token. An unknown username
// and a wrong password both return ErrInvalidCredentials after comparable
// bcrypt work.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (*Session, error) {
	ctx, span := otel.Tracer("services/AuthService").Start(ctx, "Authenticate")
	defer span.End()

	username = norm.NFC.String(username)
	if username == "" || password == "" {
		loginAttempts.WithLabelValues("invalid").Inc()
		return nil, fmt.Errorf("%w: username and password are required", ErrValidation)
	}

	sctx, cancel := storeCtx(ctx, s.StoreTimeout)
	defer cancel()

	u, err := repo.GetUserByUsername(sctx, s.DB, username)
	if errors.Is(err, repo.ErrNotFound) {
		s.Passwords.Burn(password)
		loginAttempts.WithLabelValues("invalid").Inc()
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		loginAttempts.WithLabelValues("error").Inc()
		return nil, storeErr(err)
	}

	if err := s.Passwords.Verify(u.PasswordHash, password); err != nil {
		if errors.Is(err, auth.ErrUnknownScheme) {
			log.Warn().Uint("user_id", u.ID).Msg("stored password hash has an unknown scheme")
		}
		loginAttempts.WithLabelValues("invalid").Inc()
		return nil, ErrInvalidCredentials
	}

	token, exp, err := s.Tokens.Issue(auth.Identity{UserID: u.ID, Username: u.Username})
	if err != nil {
		loginAttempts.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("issue token: %w", err)
	}
	loginAttempts.WithLabelValues("success").Inc()
	span.SetAttributes(attribute.Int64("user.id", int64(u.ID)))
	span.AddEvent("token issued")

	return &Session{Token: token, ExpiresAt: exp, User: u}, nil
}

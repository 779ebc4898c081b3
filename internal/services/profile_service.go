package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/tbourn/go-direct-chat/internal/domain"
	"github.com/tbourn/go-direct-chat/internal/repo"
)

// ProfileService edits the caller's own profile. The username is not part of
// the profile and never changes.
type ProfileService struct {
	DB           *gorm.DB
	Users        UserDirectory
	StoreTimeout time.Duration
}

// ProfileInput carries optional changes; nil fields are kept.
type ProfileInput struct {
	FullName *string
	AboutMe  *string
	Avatar   *string
}

// UpdateProfile applies in to userID's profile and returns the result.
func (s *ProfileService) UpdateProfile(ctx context.Context, userID uint, in ProfileInput) (*domain.Profile, error) {
	ctx, span := otel.Tracer("services/ProfileService").Start(ctx, "UpdateProfile",
		trace.WithAttributes(attribute.Int64("user.id", int64(userID))))
	defer span.End()

	var upd repo.ProfileUpdate
	if in.FullName != nil {
		v := cleanText(*in.FullName)
		if v == "" {
			return nil, fmt.Errorf("%w: full name must not be blank", ErrValidation)
		}
		upd.FullName = &v
	}
	if in.AboutMe != nil {
		v := cleanText(*in.AboutMe)
		if v == "" {
			return nil, fmt.Errorf("%w: about me must not be blank", ErrValidation)
		}
		upd.AboutMe = &v
	}
	if in.Avatar != nil {
		v := cleanText(*in.Avatar)
		upd.Avatar = &v
	}

	sctx, cancel := storeCtx(ctx, s.StoreTimeout)
	defer cancel()

	p, err := repo.UpdateProfile(sctx, s.DB, userID, upd)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, storeErr(err)
	}
	invalidateDirectory(ctx, s.Users)
	return p, nil
}

// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for users and
// their profiles (the credential store).
//
// Error semantics:
//   - Missing rows return ErrNotFound.
//   - Unique violations (username) return ErrDuplicate.
//   - Other DB errors are propagated unchanged.
package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/tbourn/go-direct-chat/internal/domain"
)

// CreateUserWithProfile inserts a user and its profile in one transaction, so
// a user without a profile is never observable. When db is already a
// transaction, GORM nests it with a savepoint.
func CreateUserWithProfile(ctx context.Context, db *gorm.DB, username, passwordHash string, profile domain.Profile) (*domain.User, error) {
	u := &domain.User{Username: username, PasswordHash: passwordHash}
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(u).Error; err != nil {
			return dupOr(err)
		}
		profile.ID = 0
		profile.UserID = u.ID
		if err := tx.Create(&profile).Error; err != nil {
			return dupOr(err)
		}
		u.Profile = &profile
		return nil
	})
	if err != nil {
		return nil, err
	}
	return u, nil
}

// GetUserByUsername returns the user with exactly this username (with
// profile). Collations that fold case are re-checked here so the match is
// always case-sensitive.
func GetUserByUsername(ctx context.Context, db *gorm.DB, username string) (*domain.User, error) {
	var u domain.User
	err := db.WithContext(ctx).
		Preload("Profile").
		Where("username = ?", username).
		First(&u).Error
	if err != nil {
		return nil, err
	}
	if u.Username != username {
		return nil, ErrNotFound
	}
	return &u, nil
}

// UserExists reports whether a user with id exists.
func UserExists(ctx context.Context, db *gorm.DB, id uint) (bool, error) {
	var n int64
	err := db.WithContext(ctx).Model(&domain.User{}).Where("id = ?", id).Count(&n).Error
	return n > 0, err
}

// ListUsers returns all users with profiles ordered by username. A non-zero
// excludeID omits that user.
func ListUsers(ctx context.Context, db *gorm.DB, excludeID uint) ([]domain.User, error) {
	q := db.WithContext(ctx).Preload("Profile").Order("username ASC, id ASC")
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	out := []domain.User{}
	err := q.Find(&out).Error
	return out, err
}

// ProfileUpdate carries optional profile changes; nil fields are left alone.
type ProfileUpdate struct {
	FullName *string
	AboutMe  *string
	Avatar   *string
}

// UpdateProfile applies the non-nil fields of upd to the user's profile and
// returns the stored result. It returns ErrNotFound when the user has no
// profile.
func UpdateProfile(ctx context.Context, db *gorm.DB, userID uint, upd ProfileUpdate) (*domain.Profile, error) {
	var p domain.Profile
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).First(&p).Error; err != nil {
			return err
		}
		changes := map[string]any{}
		if upd.FullName != nil {
			changes["full_name"] = *upd.FullName
		}
		if upd.AboutMe != nil {
			changes["about_me"] = *upd.AboutMe
		}
		if upd.Avatar != nil {
			changes["avatar"] = *upd.Avatar
		}
		if len(changes) == 0 {
			return nil
		}
		if err := tx.Model(&p).Updates(changes).Error; err != nil {
			return err
		}
		return tx.First(&p, p.ID).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

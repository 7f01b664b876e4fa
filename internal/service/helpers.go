package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/postpilot/postpilot-api/internal/apperrors"
	"github.com/postpilot/postpilot-api/internal/models"
	"github.com/postpilot/postpilot-api/internal/repository"
	"github.com/postpilot/postpilot-api/pkg/utils"
)

// Facebook long-lived user tokens last about 60 days when expires_in is omitted.
const defaultLongLivedTTL = 60 * 24 * time.Hour

func GetExpiresAt(expiresIn int64) time.Time {
	if expiresIn <= 0 {
		return time.Now().Add(defaultLongLivedTTL)
	}
	return time.Now().Add(time.Duration(expiresIn) * time.Second)
}

func requireUser(userID string) error {
	if userID == "" {
		return apperrors.ErrNotAuthenticated
	}
	return nil
}

func requireProfile(ctx context.Context, profiles repository.ProfileRepository, userID string) (*models.BusinessProfile, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	profile, err := profiles.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, apperrors.NotFound("Business profile")
	}
	return profile, nil
}

// requireOwnedItem loads the ownership chain of a calendar item and checks it belongs to userID.
func requireOwnedItem(ctx context.Context, calendars repository.CalendarRepository, userID, itemID string) (*models.CalendarItemOwner, error) {
	owner, err := calendars.GetItemOwner(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if owner == nil {
		return nil, apperrors.NotFound("Calendar item")
	}
	if owner.UserID != userID {
		return nil, apperrors.Ownership("calendar item")
	}
	return owner, nil
}

func notFoundAs(err error, resource string) error {
	if errors.Is(err, apperrors.ErrNotFound) {
		return apperrors.NotFound(resource)
	}
	return err
}

func decryptStoredToken(secret, sealed string) (string, error) {
	token, err := utils.Decrypt(sealed, utils.DeriveKey(secret))
	if err != nil {
		return "", fmt.Errorf("stored Instagram token could not be read, please reconnect: %w", err)
	}
	return token, nil
}

package repository

import (
	"context"
	"time"

	"github.com/Gosee6432/MindCounselorHub-sub001/internal/model"
)

// SupervisorRepository persists supervisor profiles.
type SupervisorRepository interface {
	// List returns the profiles matching f (already normalized) and the
	// total number of matches.
	List(ctx context.Context, f model.SupervisorFilter) (*PageResult[model.Supervisor], error)

	FindByID(ctx context.Context, id string) (*model.Supervisor, error)

	FindByUserID(ctx context.Context, userID string) (*model.Supervisor, error)

	// Update writes the editable profile fields of s.
	Update(ctx context.Context, s *model.Supervisor) (*model.Supervisor, error)

	// SetPhotoKey stores key and returns the previous key.
	SetPhotoKey(ctx context.Context, userID, key string, now time.Time) (string, error)

	// SetCredentialKey stores key and returns the previous key.
	SetCredentialKey(ctx context.Context, userID, key string, now time.Time) (string, error)

	// TransitionStatus moves the profile and its user from one status to
	// another in one transaction. ErrStaleState if the profile is not in from.
	TransitionStatus(ctx context.Context, id string, from, to model.AccountStatus, reason string, now time.Time) error

	// FilterOptions returns the distinct regions, certifications and
	// specialties among approved profiles.
	FilterOptions(ctx context.Context) (*model.FilterOptions, error)
}

package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/Gosee6432/MindCounselorHub-sub001/internal/database"
	"github.com/Gosee6432/MindCounselorHub-sub001/internal/logging"
	"github.com/Gosee6432/MindCounselorHub-sub001/internal/model"
	"github.com/Gosee6432/MindCounselorHub-sub001/internal/repository"
	"github.com/Gosee6432/MindCounselorHub-sub001/internal/storage"
	"github.com/Gosee6432/MindCounselorHub-sub001/internal/validation"
)

// PresignExpiry is the lifetime of photo and credential URLs in responses.
const PresignExpiry = time.Hour

// SupervisorListResult is the service-level DTO for paginated profiles.
type SupervisorListResult struct {
	Items  []model.Supervisor `json:"data"`
	Total  int                `json:"total"`
	Limit  int                `json:"limit"`
	Offset int                `json:"offset"`
}

// UpdateProfileInput carries the editable profile fields. Omitted fields
// are left unchanged.
type UpdateProfileInput struct {
	Name             *string       `json:"name" validate:"omitnil,min=1,max=50"`
	Gender           *model.Gender `json:"gender" validate:"omitnil,oneof=male female"`
	BirthYear        *int          `json:"birth_year" validate:"omitnil,min=1900,max=2100"`
	Certification    *string       `json:"certification" validate:"omitnil,min=1,max=100"`
	Association      *string       `json:"association" validate:"omitnil,max=100"`
	Region           *string       `json:"region" validate:"omitnil,min=1,max=50"`
	OnlineAvailable  *bool         `json:"online_available"`
	OfflineAvailable *bool         `json:"offline_available"`
	NationalProgram  *bool         `json:"national_program"`
	SupervisionTypes []string      `json:"supervision_types" validate:"omitnil,dive,oneof=individual group"`
	TargetGroups     []string      `json:"target_groups" validate:"omitnil,dive,oneof=child adolescent adult couple family elderly"`
	Specialties      []string      `json:"specialties" validate:"omitnil,max=20,dive,required,max=30"`
	Approaches       []string      `json:"approaches" validate:"omitnil,max=20,dive,required,max=30"`
	ExperienceYears  *int          `json:"experience_years" validate:"omitnil,min=0,max=80"`
	FeePerSession    *int          `json:"fee_per_session" validate:"omitnil,min=0"`
	Introduction     *string       `json:"introduction" validate:"omitnil,max=2000"`
	ContactEmail     *string       `json:"contact_email" validate:"omitnil,eq=|email"`
	KakaoID          *string       `json:"kakao_id" validate:"omitnil,max=50"`
}

func (in UpdateProfileInput) patch() model.SupervisorPatch {
	return model.SupervisorPatch{
		Name:             in.Name,
		Gender:           in.Gender,
		BirthYear:        in.BirthYear,
		Certification:    in.Certification,
		Association:      in.Association,
		Region:           in.Region,
		OnlineAvailable:  in.OnlineAvailable,
		OfflineAvailable: in.OfflineAvailable,
		NationalProgram:  in.NationalProgram,
		SupervisionTypes: in.SupervisionTypes,
		TargetGroups:     in.TargetGroups,
		Specialties:      in.Specialties,
		Approaches:       in.Approaches,
		ExperienceYears:  in.ExperienceYears,
		FeePerSession:    in.FeePerSession,
		Introduction:     in.Introduction,
		ContactEmail:     in.ContactEmail,
		KakaoID:          in.KakaoID,
	}
}

// Upload is a file received from a client.
type Upload struct {
	Reader      io.Reader
	Filename    string
	ContentType string
	Size        int64
}

// SupervisorService defines the supervisor profile use cases.
type SupervisorService interface {
	// List returns approved profiles matching f.
	List(ctx context.Context, f model.SupervisorFilter) (*SupervisorListResult, error)

	// Get returns an approved profile by ID.
	Get(ctx context.Context, id string) (*model.Supervisor, error)

	// FilterOptions returns the values available to each search facet.
	FilterOptions(ctx context.Context) (*model.FilterOptions, error)

	// GetMine returns the caller's own profile in any status.
	GetMine(ctx context.Context, userID string) (*model.Supervisor, error)

	// UpdateMine applies in to the caller's profile.
	UpdateMine(ctx context.Context, userID string, in UpdateProfileInput) (*model.Supervisor, error)

	// UploadPhoto replaces the caller's profile photo.
	UploadPhoto(ctx context.Context, userID string, f Upload) (*model.Supervisor, error)

	// UploadCredential replaces the caller's credential document.
	UploadCredential(ctx context.Context, userID string, f Upload) error
}

type supervisorService struct {
	repo     repository.SupervisorRepository
	store    storage.Storage
	validate *validation.Validator
	log      *zap.Logger
	now      func() time.Time
}

// NewSupervisorService constructs a new SupervisorService.
func NewSupervisorService(repo repository.SupervisorRepository, store storage.Storage, v *validation.Validator, logger *zap.Logger) SupervisorService {
	if v == nil {
		v = validation.New()
	}
	return &supervisorService{
		repo:     repo,
		store:    store,
		validate: v,
		log:      logging.OrNop(logger).With(zap.String("component", "supervisor")),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *supervisorService) List(ctx context.Context, f model.SupervisorFilter) (*SupervisorListResult, error) {
	f = f.Normalize()
	f.Status = model.StatusApproved

	res, err := database.WithReadRetry(ctx, func(ctx context.Context) (*repository.PageResult[model.Supervisor], error) {
		return s.repo.List(ctx, f)
	})
	if err != nil {
		return nil, err
	}
	for i := range res.Items {
		attachURLs(ctx, s.store, s.log, &res.Items[i], false)
	}
	s.log.Debug("supervisor_list",
		zap.Bool("filtered", !f.IsZero()),
		zap.Int("total", res.Total),
		zap.String("sort", f.Sort),
	)
	return &SupervisorListResult{Items: res.Items, Total: res.Total, Limit: f.Limit, Offset: f.Offset}, nil
}

func (s *supervisorService) Get(ctx context.Context, id string) (*model.Supervisor, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	sp, err := database.WithReadRetry(ctx, func(ctx context.Context) (*model.Supervisor, error) {
		return s.repo.FindByID(ctx, id)
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if sp.Status != model.StatusApproved {
		return nil, ErrNotFound
	}
	attachURLs(ctx, s.store, s.log, sp, false)
	return sp, nil
}

func (s *supervisorService) FilterOptions(ctx context.Context) (*model.FilterOptions, error) {
	return database.WithReadRetry(ctx, s.repo.FilterOptions)
}

func (s *supervisorService) GetMine(ctx context.Context, userID string) (*model.Supervisor, error) {
	sp, err := s.mine(ctx, userID)
	if err != nil {
		return nil, err
	}
	attachURLs(ctx, s.store, s.log, sp, true)
	return sp, nil
}

func (s *supervisorService) mine(ctx context.Context, userID string) (*model.Supervisor, error) {
	if userID == "" {
		return nil, ErrIDRequired
	}
	sp, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return sp, nil
}

func (s *supervisorService) UpdateMine(ctx context.Context, userID string, in UpdateProfileInput) (*model.Supervisor, error) {
	validation.TrimStrings(&in)
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}

	sp, err := s.mine(ctx, userID)
	if err != nil {
		return nil, err
	}
	in.patch().Apply(sp)
	sp.UpdatedAt = s.now()

	updated, err := s.repo.Update(ctx, sp)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update profile: %w", err)
	}
	attachURLs(ctx, s.store, s.log, updated, true)
	return updated, nil
}

func (s *supervisorService) UploadPhoto(ctx context.Context, userID string, f Upload) (*model.Supervisor, error) {
	sp, err := s.mine(ctx, userID)
	if err != nil {
		return nil, err
	}
	key, err := s.replaceObject(ctx, userID, storage.KindPhoto, f, s.repo.SetPhotoKey)
	if err != nil {
		return nil, err
	}
	sp.PhotoKey = key
	sp.UpdatedAt = s.now()
	attachURLs(ctx, s.store, s.log, sp, true)
	return sp, nil
}

func (s *supervisorService) UploadCredential(ctx context.Context, userID string, f Upload) error {
	if _, err := s.mine(ctx, userID); err != nil {
		return err
	}
	_, err := s.replaceObject(ctx, userID, storage.KindCredential, f, s.repo.SetCredentialKey)
	return err
}

type keySetter func(ctx context.Context, userID, key string, now time.Time) (string, error)

// replaceObject stores the upload under a fresh key, points the profile at
// it and then removes the previous object. If the profile update fails the
// new object is removed instead.
func (s *supervisorService) replaceObject(ctx context.Context, userID string, kind storage.Kind, f Upload, set keySetter) (string, error) {
	if f.Reader == nil {
		return "", ErrReaderNil
	}
	contentType, body, err := storage.DetectContentType(f.Reader)
	if err != nil {
		return "", err
	}
	ext, err := storage.CheckUpload(kind, contentType, f.Size)
	if err != nil {
		s.log.Info("upload_rejected",
			zap.String("kind", string(kind)),
			zap.String("declared_type", f.ContentType),
			zap.String("detected_type", contentType),
			zap.Error(err),
		)
		return "", err
	}
	key := storage.SupervisorObjectKey(userID, kind, ext)

	if _, err := s.store.Put(ctx, key, body, storage.PutOptions{
		Size:        f.Size,
		ContentType: contentType,
		Filename:    f.Filename,
	}); err != nil {
		return "", fmt.Errorf("upload to storage: %w", err)
	}

	prev, err := set(ctx, userID, key, s.now())
	if err != nil {
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			return "", fmt.Errorf("db save failed: %v; rollback delete failed: %v", err, delErr)
		}
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("db save failed: %w", err)
	}

	if prev != "" && prev != key {
		if err := s.store.Delete(ctx, prev); err != nil {
			s.log.Warn("previous_object_delete_failed", zap.String("key", prev), zap.Error(err))
		}
	}
	s.log.Info("object_replaced", zap.String("user_id", userID), zap.String("kind", string(kind)))
	return key, nil
}

// attachURLs fills the presigned URLs of sp. Credential URLs are only
// attached when withCredential is set. Presign failures leave the URL empty.
func attachURLs(ctx context.Context, store storage.Storage, log *zap.Logger, sp *model.Supervisor, withCredential bool) {
	if sp.PhotoKey != "" {
		u, err := store.PresignGet(ctx, sp.PhotoKey, PresignExpiry)
		if err != nil {
			log.Warn("presign_failed", zap.String("key", sp.PhotoKey), zap.Error(err))
		}
		sp.PhotoURL = u
	}
	if withCredential && sp.CredentialKey != "" {
		u, err := store.PresignGet(ctx, sp.CredentialKey, PresignExpiry)
		if err != nil {
			log.Warn("presign_failed", zap.String("key", sp.CredentialKey), zap.Error(err))
		}
		sp.CredentialURL = u
	}
}

package service

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/Gosee6432/MindCounselorHub-sub001/internal/logging"
	"github.com/Gosee6432/MindCounselorHub-sub001/internal/model"
	"github.com/Gosee6432/MindCounselorHub-sub001/internal/repository"
	"github.com/Gosee6432/MindCounselorHub-sub001/internal/storage"
	"github.com/Gosee6432/MindCounselorHub-sub001/internal/validation"
)

type RejectInput struct {
	Reason string `json:"reason" validate:"required,max=500"`
}

// AdminService defines the supervisor approval queue.
type AdminService interface {
	// ListSupervisors returns profiles in status, pending when empty, with
	// presigned credential URLs.
	ListSupervisors(ctx context.Context, status model.AccountStatus, limit, offset int) (*SupervisorListResult, error)

	Approve(ctx context.Context, id string) (*model.Supervisor, error)

	Reject(ctx context.Context, id string, in RejectInput) (*model.Supervisor, error)

	// CredentialDocument opens the credential document of a profile. The
	// caller closes the reader.
	CredentialDocument(ctx context.Context, id string) (io.ReadCloser, storage.ObjectInfo, error)
}

type adminService struct {
	repo     repository.SupervisorRepository
	store    storage.Storage
	validate *validation.Validator
	log      *zap.Logger
	now      func() time.Time
}

// NewAdminService constructs a new AdminService.
func NewAdminService(repo repository.SupervisorRepository, store storage.Storage, v *validation.Validator, logger *zap.Logger) AdminService {
	if v == nil {
		v = validation.New()
	}
	return &adminService{
		repo:     repo,
		store:    store,
		validate: v,
		log:      logging.OrNop(logger).With(zap.String("component", "admin")),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *adminService) ListSupervisors(ctx context.Context, status model.AccountStatus, limit, offset int) (*SupervisorListResult, error) {
	if status == "" {
		status = model.StatusPending
	}
	if !status.Valid() {
		return nil, ErrInvalidFilter
	}

	f := model.SupervisorFilter{Status: status, Limit: limit, Offset: offset}.Normalize()
	res, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, err
	}
	for i := range res.Items {
		attachURLs(ctx, s.store, s.log, &res.Items[i], true)
	}
	return &SupervisorListResult{Items: res.Items, Total: res.Total, Limit: f.Limit, Offset: f.Offset}, nil
}

func (s *adminService) Approve(ctx context.Context, id string) (*model.Supervisor, error) {
	return s.transition(ctx, id, model.StatusApproved, "")
}

func (s *adminService) Reject(ctx context.Context, id string, in RejectInput) (*model.Supervisor, error) {
	validation.TrimStrings(&in)
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}
	return s.transition(ctx, id, model.StatusRejected, in.Reason)
}

// transition moves a pending profile to status and returns it reloaded.
func (s *adminService) transition(ctx context.Context, id string, to model.AccountStatus, reason string) (*model.Supervisor, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	if err := s.repo.TransitionStatus(ctx, id, model.StatusPending, to, reason, s.now()); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrNotFound
		case errors.Is(err, repository.ErrStaleState):
			return nil, ErrInvalidStatusTransition
		}
		return nil, err
	}
	s.log.Info("supervisor_status_changed", zap.String("supervisor_id", id), zap.String("status", string(to)))

	sp, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	attachURLs(ctx, s.store, s.log, sp, true)
	return sp, nil
}

func (s *adminService) CredentialDocument(ctx context.Context, id string) (io.ReadCloser, storage.ObjectInfo, error) {
	if id == "" {
		return nil, storage.ObjectInfo{}, ErrIDRequired
	}
	sp, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ObjectInfo{}, ErrNotFound
		}
		return nil, storage.ObjectInfo{}, err
	}
	if sp.CredentialKey == "" {
		return nil, storage.ObjectInfo{}, ErrNotFound
	}
	rc, info, err := s.store.Get(ctx, sp.CredentialKey)
	if errors.Is(err, storage.ErrObjectNotFound) {
		s.log.Warn("credential_object_missing", zap.String("supervisor_id", id), zap.String("key", sp.CredentialKey))
		return nil, storage.ObjectInfo{}, ErrNotFound
	}
	return rc, info, err
}

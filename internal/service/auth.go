package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Gosee6432/MindCounselorHub-sub001/internal/auth"
	"github.com/Gosee6432/MindCounselorHub-sub001/internal/logging"
	"github.com/Gosee6432/MindCounselorHub-sub001/internal/mail"
	"github.com/Gosee6432/MindCounselorHub-sub001/internal/model"
	"github.com/Gosee6432/MindCounselorHub-sub001/internal/repository"
	"github.com/Gosee6432/MindCounselorHub-sub001/internal/validation"
)

// RegisterInput is the sign-up form. The profile fields are required only
// when Role is supervisor.
type RegisterInput struct {
	Role            model.Role `json:"role" validate:"required,oneof=trainee supervisor"`
	Email           string     `json:"email" validate:"required,email"`
	Password        string     `json:"password" validate:"required,min=8,maxbytes=72"`
	PasswordConfirm string     `json:"password_confirm" validate:"required,eqfield=Password"`
	Name            string     `json:"name" validate:"required,max=50"`
	Phone           string     `json:"phone" validate:"max=20"`

	Gender           model.Gender `json:"gender" validate:"required_if=Role supervisor,omitempty,oneof=male female"`
	BirthYear        int          `json:"birth_year" validate:"omitempty,min=1900,max=2100"`
	Certification    string       `json:"certification" validate:"required_if=Role supervisor,max=100"`
	Association      string       `json:"association" validate:"max=100"`
	Region           string       `json:"region" validate:"required_if=Role supervisor,max=50"`
	OnlineAvailable  bool         `json:"online_available"`
	OfflineAvailable bool         `json:"offline_available"`
	NationalProgram  bool         `json:"national_program"`
	SupervisionTypes []string     `json:"supervision_types" validate:"dive,oneof=individual group"`
	TargetGroups     []string     `json:"target_groups" validate:"dive,oneof=child adolescent adult couple family elderly"`
	Specialties      []string     `json:"specialties" validate:"max=20,dive,required,max=30"`
	Approaches       []string     `json:"approaches" validate:"max=20,dive,required,max=30"`
	ExperienceYears  int          `json:"experience_years" validate:"min=0,max=80"`
	FeePerSession    int          `json:"fee_per_session" validate:"min=0"`
	Introduction     string       `json:"introduction" validate:"max=2000"`
	ContactEmail     string       `json:"contact_email" validate:"omitempty,email"`
	KakaoID          string       `json:"kakao_id" validate:"max=50"`
}

// RegisterResult is returned on sign-up. Supervisors get a short-lived
// token that only allows uploading their credential document.
type RegisterResult struct {
	User                 *model.User `json:"user"`
	PendingApproval      bool        `json:"pending_approval"`
	UploadToken          string      `json:"upload_token,omitempty"`
	UploadTokenExpiresAt *time.Time  `json:"upload_token_expires_at,omitempty"`
}

// LoginInput is the sign-in form.
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResult carries the access token and the signed-in user.
type LoginResult struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
	User      *model.User `json:"user"`
}

type ForgotPasswordInput struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordInput struct {
	Token           string `json:"token" validate:"required"`
	Password        string `json:"password" validate:"required,min=8,maxbytes=72"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
}

type ChangePasswordInput struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	Password        string `json:"password" validate:"required,min=8,maxbytes=72"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
}

type CreateAdminInput struct {
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name" validate:"required,max=50"`
	Password string `json:"password" validate:"required,min=8,maxbytes=72"`
}

// AuthService defines the account use cases.
type AuthService interface {
	// Register creates a trainee (approved) or a supervisor (pending, with profile).
	Register(ctx context.Context, in RegisterInput) (*RegisterResult, error)

	// Login authenticates any approved account.
	Login(ctx context.Context, in LoginInput) (*LoginResult, error)

	// AdminLogin authenticates admin accounts only.
	AdminLogin(ctx context.Context, in LoginInput) (*LoginResult, error)

	// ForgotPassword mails a reset link if the account exists. It reports
	// success either way.
	ForgotPassword(ctx context.Context, in ForgotPasswordInput) error

	// ResetPassword redeems a reset token.
	ResetPassword(ctx context.Context, in ResetPasswordInput) error

	ChangePassword(ctx context.Context, userID string, in ChangePasswordInput) error

	Me(ctx context.Context, userID string) (*model.User, error)

	// CreateAdmin provisions an admin account.
	CreateAdmin(ctx context.Context, in CreateAdminInput) (*model.User, error)
}

// AuthDeps are the collaborators of the auth service. Logger, Metrics and
// Now are optional.
type AuthDeps struct {
	Users     repository.UserRepository
	Resets    repository.PasswordResetRepository
	Hasher    auth.Hasher
	Tokens    *auth.TokenIssuer
	Mailer    mail.Mailer
	Validator *validation.Validator
	Logger    *zap.Logger
	Metrics   *AuthMetrics
	Now       func() time.Time

	UploadTTL    time.Duration
	ResetTTL     time.Duration
	MailFrom     string
	ResetURLBase string
}

type authService struct {
	AuthDeps
	log *zap.Logger

	// dummyHash is compared against on unknown emails so both login
	// branches pay the hashing cost.
	dummyOnce sync.Once
	dummyHash string
}

// NewAuthService constructs a new AuthService.
func NewAuthService(d AuthDeps) AuthService {
	if d.Now == nil {
		d.Now = func() time.Time { return time.Now().UTC() }
	}
	if d.Validator == nil {
		d.Validator = validation.New()
	}
	return &authService{AuthDeps: d, log: logging.OrNop(d.Logger).With(zap.String("component", "auth"))}
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func (s *authService) Register(ctx context.Context, in RegisterInput) (*RegisterResult, error) {
	validation.TrimStrings(&in)
	in.Email = normalizeEmail(in.Email)
	if err := s.Validator.Struct(in); err != nil {
		return nil, err
	}

	hash, err := s.Hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	now := s.Now()
	u := &model.User{
		ID:           uuid.NewString(),
		Email:        in.Email,
		Name:         in.Name,
		Phone:        in.Phone,
		Role:         in.Role,
		Status:       model.InitialStatus(in.Role),
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	var profile *model.Supervisor
	if in.Role == model.RoleSupervisor {
		profile = &model.Supervisor{
			ID:               uuid.NewString(),
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
			Status:           u.Status,
			CreatedAt:        now,
			UpdatedAt:        now,
		}
	}

	created, err := s.Users.Create(ctx, u, profile)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	s.Metrics.registration(string(created.Role))
	s.log.Info("user_registered", zap.String("user_id", created.ID), zap.String("role", string(created.Role)))

	res := &RegisterResult{User: created, PendingApproval: created.Status == model.StatusPending}
	if created.Role == model.RoleSupervisor {
		tok, exp, err := s.Tokens.IssueScoped(created.ID, created.Role, auth.ScopeCredential, s.UploadTTL)
		if err != nil {
			return nil, err
		}
		res.UploadToken = tok
		res.UploadTokenExpiresAt = &exp
	}
	return res, nil
}

func (s *authService) unknownUserHash() string {
	s.dummyOnce.Do(func() {
		h, err := s.Hasher.Hash(uuid.NewString())
		if err != nil {
			s.log.Warn("dummy_hash_failed", zap.Error(err))
		}
		s.dummyHash = h
	})
	return s.dummyHash
}

// authenticate checks the credentials and the approval status.
func (s *authService) authenticate(ctx context.Context, in LoginInput) (*model.User, error) {
	validation.TrimStrings(&in)
	in.Email = normalizeEmail(in.Email)
	if err := s.Validator.Struct(in); err != nil {
		return nil, err
	}

	u, err := s.Users.FindByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			_ = s.Hasher.Compare(s.unknownUserHash(), in.Password)
			s.Metrics.login(loginInvalid)
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := s.Hasher.Compare(u.PasswordHash, in.Password); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			s.Metrics.login(loginInvalid)
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	switch u.Status {
	case model.StatusPending:
		s.Metrics.login(loginPending)
		return nil, ErrApprovalPending
	case model.StatusRejected:
		s.Metrics.login(loginRejected)
		return nil, ErrAccountRejected
	}
	return u, nil
}

func (s *authService) issue(ctx context.Context, u *model.User) (*LoginResult, error) {
	now := s.Now()
	if err := s.Users.TouchLogin(ctx, u.ID, now); err != nil {
		s.log.Warn("touch_login_failed", zap.String("user_id", u.ID), zap.Error(err))
	} else {
		u.LastLoginAt = &now
	}

	tok, exp, err := s.Tokens.Issue(u)
	if err != nil {
		return nil, err
	}
	s.Metrics.login(loginSuccess)
	return &LoginResult{Token: tok, ExpiresAt: exp, User: u}, nil
}

func (s *authService) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	u, err := s.authenticate(ctx, in)
	if err != nil {
		return nil, err
	}
	return s.issue(ctx, u)
}

func (s *authService) AdminLogin(ctx context.Context, in LoginInput) (*LoginResult, error) {
	u, err := s.authenticate(ctx, in)
	if err != nil {
		return nil, err
	}
	if u.Role != model.RoleAdmin {
		s.Metrics.login(loginNotAdmin)
		return nil, ErrNotAdmin
	}
	return s.issue(ctx, u)
}

func (s *authService) ForgotPassword(ctx context.Context, in ForgotPasswordInput) error {
	in.Email = normalizeEmail(in.Email)
	if err := s.Validator.Struct(in); err != nil {
		return err
	}
	s.Metrics.resetRequest()

	u, err := s.Users.FindByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.log.Debug("password_reset_unknown_email")
			return nil
		}
		return err
	}

	token, hash, err := auth.NewResetToken()
	if err != nil {
		return err
	}
	now := s.Now()
	if err := s.Resets.Create(ctx, &model.PasswordReset{
		ID:        uuid.NewString(),
		UserID:    u.ID,
		TokenHash: hash,
		ExpiresAt: now.Add(s.ResetTTL),
		CreatedAt: now,
	}); err != nil {
		return fmt.Errorf("store reset token: %w", err)
	}

	link, err := mail.ResetLink(s.ResetURLBase, token)
	if err != nil {
		return err
	}
	msg, err := mail.NewResetMessage(s.MailFrom, u.Email, mail.ResetMail{
		Name:     u.Name,
		Link:     link,
		ValidFor: formatValidity(s.ResetTTL),
	})
	if err != nil {
		return err
	}
	// The response must not depend on whether the account exists.
	if err := s.Mailer.Send(ctx, msg); err != nil {
		s.log.Error("password_reset_mail_failed", zap.String("user_id", u.ID), zap.Error(err))
		return nil
	}
	s.log.Info("password_reset_requested", zap.String("user_id", u.ID))
	return nil
}

// formatValidity renders d in Korean, e.g. "1시간" or "30분".
func formatValidity(d time.Duration) string {
	if d >= time.Hour && d%time.Hour == 0 {
		return fmt.Sprintf("%d시간", int(d/time.Hour))
	}
	return fmt.Sprintf("%d분", int(d/time.Minute))
}

func (s *authService) ResetPassword(ctx context.Context, in ResetPasswordInput) error {
	in.Token = strings.TrimSpace(in.Token)
	if err := s.Validator.Struct(in); err != nil {
		return err
	}

	hash, err := s.Hasher.Hash(in.Password)
	if err != nil {
		return err
	}
	userID, err := s.Resets.Consume(ctx, auth.HashResetToken(in.Token), hash, s.Now())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrInvalidResetToken
		}
		return err
	}
	s.log.Info("password_reset_completed", zap.String("user_id", userID))
	return nil
}

func (s *authService) ChangePassword(ctx context.Context, userID string, in ChangePasswordInput) error {
	if err := s.Validator.Struct(in); err != nil {
		return err
	}

	u, err := s.Users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	if err := s.Hasher.Compare(u.PasswordHash, in.CurrentPassword); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			return ErrInvalidCredentials
		}
		return err
	}

	hash, err := s.Hasher.Hash(in.Password)
	if err != nil {
		return err
	}
	if err := s.Users.UpdatePassword(ctx, userID, hash, s.Now()); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

func (s *authService) Me(ctx context.Context, userID string) (*model.User, error) {
	if userID == "" {
		return nil, ErrIDRequired
	}
	u, err := s.Users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return u, nil
}

func (s *authService) CreateAdmin(ctx context.Context, in CreateAdminInput) (*model.User, error) {
	validation.TrimStrings(&in)
	in.Email = normalizeEmail(in.Email)
	if err := s.Validator.Struct(in); err != nil {
		return nil, err
	}

	hash, err := s.Hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}
	now := s.Now()
	created, err := s.Users.Create(ctx, &model.User{
		ID:           uuid.NewString(),
		Email:        in.Email,
		Name:         in.Name,
		Role:         model.RoleAdmin,
		Status:       model.InitialStatus(model.RoleAdmin),
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create admin: %w", err)
	}
	s.log.Info("admin_created", zap.String("user_id", created.ID))
	return created, nil
}

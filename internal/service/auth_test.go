package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Gosee6432/MindCounselorHub-sub001/internal/auth"
	"github.com/Gosee6432/MindCounselorHub-sub001/internal/mail"
	mailMocks "github.com/Gosee6432/MindCounselorHub-sub001/internal/mail/mocks"
	"github.com/Gosee6432/MindCounselorHub-sub001/internal/model"
	"github.com/Gosee6432/MindCounselorHub-sub001/internal/repository"
	repoMocks "github.com/Gosee6432/MindCounselorHub-sub001/internal/repository/mocks"
	"github.com/Gosee6432/MindCounselorHub-sub001/internal/validation"
)

// plainHasher keeps tests fast; bcrypt is covered in the auth package.
type plainHasher struct{}

func (plainHasher) Hash(pw string) (string, error) { return "hashed:" + pw, nil }

func (plainHasher) Compare(hash, pw string) error {
	if hash != "hashed:"+pw {
		return auth.ErrPasswordMismatch
	}
	return nil
}

// countingHasher records Compare calls.
type countingHasher struct {
	plainHasher
	compares int
}

func (h *countingHasher) Compare(hash, pw string) error {
	h.compares++
	return h.plainHasher.Compare(hash, pw)
}

var fixedNow = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

type authFixture struct {
	users   *repoMocks.MockUserRepository
	resets  *repoMocks.MockPasswordResetRepository
	mailer  *mailMocks.MockMailer
	tokens  *auth.TokenIssuer
	metrics *AuthMetrics
	svc     AuthService
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	metrics, err := NewAuthMetrics(prometheus.NewRegistry())
	require.NoError(t, err)

	f := &authFixture{
		users:   new(repoMocks.MockUserRepository),
		resets:  new(repoMocks.MockPasswordResetRepository),
		mailer:  new(mailMocks.MockMailer),
		tokens:  auth.NewTokenIssuer("0123456789abcdef0123456789abcdef", "mentorhub", time.Hour).WithClock(func() time.Time { return fixedNow }),
		metrics: metrics,
	}
	f.svc = NewAuthService(AuthDeps{
		Users:        f.users,
		Resets:       f.resets,
		Hasher:       plainHasher{},
		Tokens:       f.tokens,
		Mailer:       f.mailer,
		Metrics:      metrics,
		Now:          func() time.Time { return fixedNow },
		UploadTTL:    24 * time.Hour,
		ResetTTL:     time.Hour,
		MailFrom:     "no-reply@example.com",
		ResetURLBase: "https://app.example.com/reset-password",
	})
	return f
}

func validSupervisorInput() RegisterInput {
	return RegisterInput{
		Role:             model.RoleSupervisor,
		Email:            " Kim@Example.com ",
		Password:         "password123",
		PasswordConfirm:  "password123",
		Name:             "김상담",
		Gender:           model.GenderFemale,
		Certification:    "상담심리사 1급",
		Region:           "서울",
		SupervisionTypes: []string{"individual"},
		TargetGroups:     []string{"adult"},
	}
}

func TestAuthService_Register_Validation(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(in *RegisterInput)
		wantCode string
	}{
		{
			name:     "empty name",
			mutate:   func(in *RegisterInput) { in.Name = "   " },
			wantCode: validation.CodeFieldRequired,
		},
		{
			name:     "bad email",
			mutate:   func(in *RegisterInput) { in.Email = "not-an-email" },
			wantCode: validation.CodeInvalidEmail,
		},
		{
			name: "short password",
			mutate: func(in *RegisterInput) {
				in.Password = "short"
				in.PasswordConfirm = "short"
			},
			wantCode: validation.CodePasswordTooShort,
		},
		{
			name:     "confirmation mismatch",
			mutate:   func(in *RegisterInput) { in.PasswordConfirm = "password124" },
			wantCode: validation.CodePasswordMismatch,
		},
		{
			name:     "supervisor without certification",
			mutate:   func(in *RegisterInput) { in.Certification = "" },
			wantCode: validation.CodeFieldRequired,
		},
		{
			name:     "unknown role",
			mutate:   func(in *RegisterInput) { in.Role = "admin" },
			wantCode: validation.CodeInvalidValue,
		},
		{
			name:     "unknown target group",
			mutate:   func(in *RegisterInput) { in.TargetGroups = []string{"pets"} },
			wantCode: validation.CodeInvalidValue,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAuthFixture(t)
			in := validSupervisorInput()
			tt.mutate(&in)

			res, err := f.svc.Register(context.Background(), in)

			assert.Nil(t, res)
			var verr *validation.Error
			require.True(t, errors.As(err, &verr), "want validation error, got %v", err)
			assert.Equal(t, tt.wantCode, verr.Code)
			f.users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestAuthService_Register_PasswordOverBcryptLimit(t *testing.T) {
	f := newAuthFixture(t)
	in := validSupervisorInput()
	in.Password = strings.Repeat("비", 30)
	in.PasswordConfirm = in.Password

	svc := NewAuthService(AuthDeps{
		Users:   f.users,
		Resets:  f.resets,
		Hasher:  auth.NewBcryptHasher(4),
		Tokens:  f.tokens,
		Mailer:  f.mailer,
		Metrics: f.metrics,
		Now:     func() time.Time { return fixedNow },
	})

	res, err := svc.Register(context.Background(), in)

	assert.Nil(t, res)
	var verr *validation.Error
	require.True(t, errors.As(err, &verr), "want validation error, got %v", err)
	assert.Equal(t, validation.CodePasswordTooLong, verr.Code)
	assert.Contains(t, verr.Fields, "password")
	f.users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
}

func TestAuthService_Register_Trainee(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	in := RegisterInput{
		Role:            model.RoleTrainee,
		Email:           "Lee@Example.com",
		Password:        "password123",
		PasswordConfirm: "password123",
		Name:            "이수련",
	}

	f.users.On("Create", ctx, mock.MatchedBy(func(u *model.User) bool {
		return u.Email == "lee@example.com" &&
			u.Status == model.StatusApproved &&
			u.PasswordHash == "hashed:password123"
	}), (*model.Supervisor)(nil)).Return(&model.User{ID: "u-1", Role: model.RoleTrainee, Status: model.StatusApproved}, nil)

	res, err := f.svc.Register(ctx, in)

	require.NoError(t, err)
	assert.False(t, res.PendingApproval)
	assert.Empty(t, res.UploadToken)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.registrations.WithLabelValues("trainee")))
	f.users.AssertExpectations(t)
}

func TestAuthService_Register_Supervisor(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	f.users.On("Create", ctx,
		mock.MatchedBy(func(u *model.User) bool {
			return u.Email == "kim@example.com" && u.Status == model.StatusPending && u.Role == model.RoleSupervisor
		}),
		mock.MatchedBy(func(p *model.Supervisor) bool {
			return p != nil && p.Status == model.StatusPending && p.Certification == "상담심리사 1급" && p.Region == "서울"
		}),
	).Return(&model.User{ID: "u-2", Role: model.RoleSupervisor, Status: model.StatusPending}, nil)

	res, err := f.svc.Register(ctx, validSupervisorInput())

	require.NoError(t, err)
	assert.True(t, res.PendingApproval)
	require.NotEmpty(t, res.UploadToken)
	require.NotNil(t, res.UploadTokenExpiresAt)
	assert.Equal(t, fixedNow.Add(24*time.Hour), *res.UploadTokenExpiresAt)

	claims, err := f.tokens.Parse(res.UploadToken)
	require.NoError(t, err)
	assert.Equal(t, auth.ScopeCredential, claims.Scope)
	assert.Equal(t, "u-2", claims.UserID())
}

func TestAuthService_Register_EmailTaken(t *testing.T) {
	f := newAuthFixture(t)
	f.users.On("Create", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, repository.ErrDuplicate)

	_, err := f.svc.Register(context.Background(), validSupervisorInput())

	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()
	user := func(role model.Role, status model.AccountStatus) *model.User {
		return &model.User{ID: "u-1", Email: "kim@example.com", Role: role, Status: status, PasswordHash: "hashed:password123"}
	}

	tests := []struct {
		name       string
		in         LoginInput
		setupMocks func(users *repoMocks.MockUserRepository)
		wantErr    error
		wantResult string
	}{
		{
			name: "success",
			in:   LoginInput{Email: "KIM@example.com", Password: "password123"},
			setupMocks: func(users *repoMocks.MockUserRepository) {
				users.On("FindByEmail", ctx, "kim@example.com").Return(user(model.RoleTrainee, model.StatusApproved), nil)
				users.On("TouchLogin", ctx, "u-1", fixedNow).Return(nil)
			},
			wantResult: loginSuccess,
		},
		{
			name: "unknown email",
			in:   LoginInput{Email: "none@example.com", Password: "password123"},
			setupMocks: func(users *repoMocks.MockUserRepository) {
				users.On("FindByEmail", ctx, "none@example.com").Return(nil, sql.ErrNoRows)
			},
			wantErr:    ErrInvalidCredentials,
			wantResult: loginInvalid,
		},
		{
			name: "wrong password",
			in:   LoginInput{Email: "kim@example.com", Password: "wrong-password"},
			setupMocks: func(users *repoMocks.MockUserRepository) {
				users.On("FindByEmail", ctx, "kim@example.com").Return(user(model.RoleTrainee, model.StatusApproved), nil)
			},
			wantErr:    ErrInvalidCredentials,
			wantResult: loginInvalid,
		},
		{
			name: "pending supervisor",
			in:   LoginInput{Email: "kim@example.com", Password: "password123"},
			setupMocks: func(users *repoMocks.MockUserRepository) {
				users.On("FindByEmail", ctx, "kim@example.com").Return(user(model.RoleSupervisor, model.StatusPending), nil)
			},
			wantErr:    ErrApprovalPending,
			wantResult: loginPending,
		},
		{
			name: "rejected supervisor",
			in:   LoginInput{Email: "kim@example.com", Password: "password123"},
			setupMocks: func(users *repoMocks.MockUserRepository) {
				users.On("FindByEmail", ctx, "kim@example.com").Return(user(model.RoleSupervisor, model.StatusRejected), nil)
			},
			wantErr:    ErrAccountRejected,
			wantResult: loginRejected,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAuthFixture(t)
			tt.setupMocks(f.users)

			res, err := f.svc.Login(ctx, tt.in)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, res)
			} else {
				require.NoError(t, err)
				assert.NotEmpty(t, res.Token)
				assert.Equal(t, fixedNow.Add(time.Hour), res.ExpiresAt)
				require.NotNil(t, res.User.LastLoginAt)
			}
			assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.logins.WithLabelValues(tt.wantResult)))
			f.users.AssertExpectations(t)
		})
	}
}

func TestAuthService_Login_UnknownEmailStillHashes(t *testing.T) {
	f := newAuthFixture(t)
	hasher := &countingHasher{}
	svc := NewAuthService(AuthDeps{
		Users:   f.users,
		Resets:  f.resets,
		Hasher:  hasher,
		Tokens:  f.tokens,
		Metrics: f.metrics,
		Now:     func() time.Time { return fixedNow },
	})
	f.users.On("FindByEmail", mock.Anything, "ghost@example.com").Return(nil, sql.ErrNoRows)

	for i := 0; i < 2; i++ {
		_, err := svc.Login(context.Background(), LoginInput{Email: "ghost@example.com", Password: "password123"})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	}
	assert.Equal(t, 2, hasher.compares)
}

func TestAuthService_AdminLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("non-admin refused", func(t *testing.T) {
		f := newAuthFixture(t)
		f.users.On("FindByEmail", ctx, "kim@example.com").
			Return(&model.User{ID: "u-1", Role: model.RoleTrainee, Status: model.StatusApproved, PasswordHash: "hashed:password123"}, nil)

		_, err := f.svc.AdminLogin(ctx, LoginInput{Email: "kim@example.com", Password: "password123"})

		assert.ErrorIs(t, err, ErrNotAdmin)
		f.users.AssertNotCalled(t, "TouchLogin", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("admin accepted", func(t *testing.T) {
		f := newAuthFixture(t)
		f.users.On("FindByEmail", ctx, "admin@example.com").
			Return(&model.User{ID: "a-1", Role: model.RoleAdmin, Status: model.StatusApproved, PasswordHash: "hashed:password123"}, nil)
		f.users.On("TouchLogin", ctx, "a-1", fixedNow).Return(nil)

		res, err := f.svc.AdminLogin(ctx, LoginInput{Email: "admin@example.com", Password: "password123"})

		require.NoError(t, err)
		claims, err := f.tokens.Parse(res.Token)
		require.NoError(t, err)
		assert.Equal(t, model.RoleAdmin, claims.Role)
		assert.Empty(t, claims.Scope)
	})
}

func TestAuthService_ForgotPassword(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown email sends nothing", func(t *testing.T) {
		f := newAuthFixture(t)
		f.users.On("FindByEmail", ctx, "none@example.com").Return(nil, sql.ErrNoRows)

		err := f.svc.ForgotPassword(ctx, ForgotPasswordInput{Email: "None@Example.com"})

		assert.NoError(t, err)
		f.resets.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		f.mailer.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
		assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.resetRequests))
	})

	t.Run("known email stores hash and mails token", func(t *testing.T) {
		f := newAuthFixture(t)
		f.users.On("FindByEmail", ctx, "kim@example.com").
			Return(&model.User{ID: "u-1", Email: "kim@example.com", Name: "김상담"}, nil)

		var stored *model.PasswordReset
		f.resets.On("Create", ctx, mock.AnythingOfType("*model.PasswordReset")).
			Run(func(args mock.Arguments) { stored = args.Get(1).(*model.PasswordReset) }).
			Return(nil)

		var sent mail.Message
		f.mailer.On("Send", ctx, mock.AnythingOfType("mail.Message")).
			Run(func(args mock.Arguments) { sent = args.Get(1).(mail.Message) }).
			Return(nil)

		require.NoError(t, f.svc.ForgotPassword(ctx, ForgotPasswordInput{Email: "kim@example.com"}))

		require.NotNil(t, stored)
		assert.Equal(t, "u-1", stored.UserID)
		assert.Equal(t, fixedNow.Add(time.Hour), stored.ExpiresAt)
		assert.Equal(t, "kim@example.com", sent.To)
		assert.Contains(t, sent.Text, "1시간")

		i := strings.Index(sent.Text, "token=")
		require.Positive(t, i)
		token := strings.Fields(sent.Text[i+len("token="):])[0]
		assert.Equal(t, stored.TokenHash, auth.HashResetToken(token))
		assert.NotContains(t, sent.Text, stored.TokenHash)
	})

	t.Run("mail failure is not reported", func(t *testing.T) {
		f := newAuthFixture(t)
		f.users.On("FindByEmail", ctx, "kim@example.com").Return(&model.User{ID: "u-1", Email: "kim@example.com"}, nil)
		f.resets.On("Create", ctx, mock.Anything).Return(nil)
		f.mailer.On("Send", ctx, mock.Anything).Return(errors.New("smtp down"))

		assert.NoError(t, f.svc.ForgotPassword(ctx, ForgotPasswordInput{Email: "kim@example.com"}))
	})
}

func TestAuthService_ResetPassword(t *testing.T) {
	ctx := context.Background()

	t.Run("consumes token", func(t *testing.T) {
		f := newAuthFixture(t)
		f.resets.On("Consume", ctx, auth.HashResetToken("tok"), "hashed:newpassword", fixedNow).Return("u-1", nil)

		err := f.svc.ResetPassword(ctx, ResetPasswordInput{Token: " tok ", Password: "newpassword", PasswordConfirm: "newpassword"})

		assert.NoError(t, err)
		f.resets.AssertExpectations(t)
	})

	t.Run("used or expired token", func(t *testing.T) {
		f := newAuthFixture(t)
		f.resets.On("Consume", ctx, mock.Anything, mock.Anything, mock.Anything).Return("", sql.ErrNoRows)

		err := f.svc.ResetPassword(ctx, ResetPasswordInput{Token: "tok", Password: "newpassword", PasswordConfirm: "newpassword"})

		assert.ErrorIs(t, err, ErrInvalidResetToken)
	})

	t.Run("mismatch never reaches repository", func(t *testing.T) {
		f := newAuthFixture(t)

		err := f.svc.ResetPassword(ctx, ResetPasswordInput{Token: "tok", Password: "newpassword", PasswordConfirm: "other"})

		var verr *validation.Error
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, validation.CodePasswordMismatch, verr.Code)
		f.resets.AssertNotCalled(t, "Consume", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestAuthService_ChangePassword(t *testing.T) {
	ctx := context.Background()
	in := ChangePasswordInput{CurrentPassword: "password123", Password: "newpassword", PasswordConfirm: "newpassword"}

	t.Run("wrong current password", func(t *testing.T) {
		f := newAuthFixture(t)
		f.users.On("FindByID", ctx, "u-1").Return(&model.User{ID: "u-1", PasswordHash: "hashed:other"}, nil)

		assert.ErrorIs(t, f.svc.ChangePassword(ctx, "u-1", in), ErrInvalidCredentials)
		f.users.AssertNotCalled(t, "UpdatePassword", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("success", func(t *testing.T) {
		f := newAuthFixture(t)
		f.users.On("FindByID", ctx, "u-1").Return(&model.User{ID: "u-1", PasswordHash: "hashed:password123"}, nil)
		f.users.On("UpdatePassword", ctx, "u-1", "hashed:newpassword", fixedNow).Return(nil)

		assert.NoError(t, f.svc.ChangePassword(ctx, "u-1", in))
		f.users.AssertExpectations(t)
	})
}

func TestAuthService_Me(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	f.users.On("FindByID", ctx, "gone").Return(nil, sql.ErrNoRows)

	_, err := f.svc.Me(ctx, "gone")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.svc.Me(ctx, "")
	assert.ErrorIs(t, err, ErrIDRequired)
}

func TestAuthService_CreateAdmin(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	f.users.On("Create", ctx, mock.MatchedBy(func(u *model.User) bool {
		return u.Role == model.RoleAdmin && u.Status == model.StatusApproved && u.Email == "admin@example.com"
	}), (*model.Supervisor)(nil)).Return(&model.User{ID: "a-1", Role: model.RoleAdmin}, nil)

	u, err := f.svc.CreateAdmin(ctx, CreateAdminInput{Email: "Admin@Example.com", Name: "관리자", Password: "password123"})

	require.NoError(t, err)
	assert.Equal(t, "a-1", u.ID)
}

func TestFormatValidity(t *testing.T) {
	assert.Equal(t, "1시간", formatValidity(time.Hour))
	assert.Equal(t, "30분", formatValidity(30*time.Minute))
	assert.Equal(t, "90분", formatValidity(90*time.Minute))
}

package service

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Gosee6432/MindCounselorHub-sub001/internal/database"
	"github.com/Gosee6432/MindCounselorHub-sub001/internal/model"
	"github.com/Gosee6432/MindCounselorHub-sub001/internal/repository"
	repoMocks "github.com/Gosee6432/MindCounselorHub-sub001/internal/repository/mocks"
	"github.com/Gosee6432/MindCounselorHub-sub001/internal/storage"
	storeMocks "github.com/Gosee6432/MindCounselorHub-sub001/internal/storage/mocks"
	"github.com/Gosee6432/MindCounselorHub-sub001/internal/validation"
)

func init() {
	database.ReadRetryDelay = 0
}

func newSupervisorFixture() (*repoMocks.MockSupervisorRepository, *storeMocks.MockStorage, SupervisorService) {
	mRepo := new(repoMocks.MockSupervisorRepository)
	mStore := new(storeMocks.MockStorage)
	return mRepo, mStore, NewSupervisorService(mRepo, mStore, nil, nil)
}

func TestSupervisorService_List(t *testing.T) {
	ctx := context.Background()

	t.Run("pins approved status and presigns photos", func(t *testing.T) {
		mRepo, mStore, svc := newSupervisorFixture()

		mRepo.On("List", ctx, mock.MatchedBy(func(f model.SupervisorFilter) bool {
			return f.Status == model.StatusApproved && f.Region == "서울" && f.Gender == "" && f.Limit == model.DefaultPageLimit
		})).Return(&repository.PageResult[model.Supervisor]{
			Items: []model.Supervisor{
				{ID: "sp-1", PhotoKey: "supervisors/u-1/photo/a.jpg", CredentialKey: "supervisors/u-1/credentials/c.pdf"},
				{ID: "sp-2"},
			},
			Total: 2,
		}, nil)
		mStore.On("PresignGet", ctx, "supervisors/u-1/photo/a.jpg", PresignExpiry).Return("https://minio/photo", nil)

		res, err := svc.List(ctx, model.SupervisorFilter{Region: " 서울 ", Gender: "all", Status: model.StatusPending})

		require.NoError(t, err)
		assert.Equal(t, 2, res.Total)
		assert.Equal(t, "https://minio/photo", res.Items[0].PhotoURL)
		assert.Empty(t, res.Items[0].CredentialURL)
		assert.Empty(t, res.Items[1].PhotoURL)
		mStore.AssertNumberOfCalls(t, "PresignGet", 1)
	})

	t.Run("retries once on bad connection", func(t *testing.T) {
		mRepo, _, svc := newSupervisorFixture()

		mRepo.On("List", ctx, mock.Anything).Return(nil, driver.ErrBadConn).Once()
		mRepo.On("List", ctx, mock.Anything).Return(&repository.PageResult[model.Supervisor]{Items: []model.Supervisor{}}, nil).Once()

		res, err := svc.List(ctx, model.SupervisorFilter{})

		require.NoError(t, err)
		assert.Equal(t, 0, res.Total)
		mRepo.AssertNumberOfCalls(t, "List", 2)
	})

	t.Run("does not retry other errors", func(t *testing.T) {
		mRepo, _, svc := newSupervisorFixture()
		mRepo.On("List", ctx, mock.Anything).Return(nil, errors.New("syntax error"))

		_, err := svc.List(ctx, model.SupervisorFilter{})

		assert.EqualError(t, err, "syntax error")
		mRepo.AssertNumberOfCalls(t, "List", 1)
	})
}

func TestSupervisorService_Get(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		setup   func(m *repoMocks.MockSupervisorRepository)
		wantErr error
	}{
		{
			name: "approved",
			setup: func(m *repoMocks.MockSupervisorRepository) {
				m.On("FindByID", ctx, "sp-1").Return(&model.Supervisor{ID: "sp-1", Status: model.StatusApproved}, nil)
			},
		},
		{
			name: "pending is hidden",
			setup: func(m *repoMocks.MockSupervisorRepository) {
				m.On("FindByID", ctx, "sp-1").Return(&model.Supervisor{ID: "sp-1", Status: model.StatusPending}, nil)
			},
			wantErr: ErrNotFound,
		},
		{
			name: "missing",
			setup: func(m *repoMocks.MockSupervisorRepository) {
				m.On("FindByID", ctx, "sp-1").Return(nil, sql.ErrNoRows)
			},
			wantErr: ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mRepo, _, svc := newSupervisorFixture()
			tt.setup(mRepo)

			got, err := svc.Get(ctx, "sp-1")

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "sp-1", got.ID)
		})
	}
}

func TestSupervisorService_GetMine(t *testing.T) {
	ctx := context.Background()

	t.Run("pending profile with credential link", func(t *testing.T) {
		mRepo, mStore, svc := newSupervisorFixture()
		mRepo.On("FindByUserID", ctx, "u-1").Return(&model.Supervisor{
			ID: "sp-1", UserID: "u-1", Status: model.StatusPending, CredentialKey: "supervisors/u-1/credentials/c.pdf",
		}, nil)
		mStore.On("PresignGet", ctx, "supervisors/u-1/credentials/c.pdf", PresignExpiry).Return("https://minio/c", nil)

		got, err := svc.GetMine(ctx, "u-1")

		require.NoError(t, err)
		assert.Equal(t, model.StatusPending, got.Status)
		assert.Equal(t, "https://minio/c", got.CredentialURL)
		mStore.AssertExpectations(t)
	})

	t.Run("no profile", func(t *testing.T) {
		mRepo, _, svc := newSupervisorFixture()
		mRepo.On("FindByUserID", ctx, "u-2").Return(nil, sql.ErrNoRows)

		_, err := svc.GetMine(ctx, "u-2")

		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("missing user id", func(t *testing.T) {
		_, _, svc := newSupervisorFixture()

		_, err := svc.GetMine(ctx, "")

		assert.ErrorIs(t, err, ErrIDRequired)
	})
}

func TestSupervisorService_UpdateMine(t *testing.T) {
	ctx := context.Background()

	t.Run("applies only set fields", func(t *testing.T) {
		mRepo, _, svc := newSupervisorFixture()
		region := " 부산 "
		fee := 70000

		mRepo.On("FindByUserID", ctx, "u-1").
			Return(&model.Supervisor{ID: "sp-1", UserID: "u-1", Name: "김상담", Region: "서울", FeePerSession: 50000}, nil)
		mRepo.On("Update", ctx, mock.MatchedBy(func(s *model.Supervisor) bool {
			return s.Name == "김상담" && s.Region == "부산" && s.FeePerSession == 70000 && !s.UpdatedAt.IsZero()
		})).Return(&model.Supervisor{ID: "sp-1", Region: "부산"}, nil)

		got, err := svc.UpdateMine(ctx, "u-1", UpdateProfileInput{Region: &region, FeePerSession: &fee})

		require.NoError(t, err)
		assert.Equal(t, "부산", got.Region)
		mRepo.AssertExpectations(t)
	})

	t.Run("invalid gender", func(t *testing.T) {
		mRepo, _, svc := newSupervisorFixture()
		g := model.Gender("other")

		_, err := svc.UpdateMine(ctx, "u-1", UpdateProfileInput{Gender: &g})

		var verr *validation.Error
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "gender", firstKey(verr.Fields))
		mRepo.AssertNotCalled(t, "FindByUserID", mock.Anything, mock.Anything)
	})

	t.Run("empty contact email clears it", func(t *testing.T) {
		mRepo, _, svc := newSupervisorFixture()
		empty := ""

		mRepo.On("FindByUserID", ctx, "u-1").Return(&model.Supervisor{ID: "sp-1", ContactEmail: "old@example.com"}, nil)
		mRepo.On("Update", ctx, mock.MatchedBy(func(s *model.Supervisor) bool { return s.ContactEmail == "" })).
			Return(&model.Supervisor{ID: "sp-1"}, nil)

		_, err := svc.UpdateMine(ctx, "u-1", UpdateProfileInput{ContactEmail: &empty})

		require.NoError(t, err)
	})

	t.Run("no profile", func(t *testing.T) {
		mRepo, _, svc := newSupervisorFixture()
		mRepo.On("FindByUserID", ctx, "u-9").Return(nil, sql.ErrNoRows)

		_, err := svc.UpdateMine(ctx, "u-9", UpdateProfileInput{})

		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func firstKey(m map[string]string) string {
	for k := range m {
		return k
	}
	return ""
}

// Leading bytes of each format, enough for content detection.
const (
	pngHead  = "\x89PNG\r\n\x1a\n"
	jpegHead = "\xff\xd8\xff\xe0"
	webpHead = "RIFF\x24\x00\x00\x00WEBPVP8 "
	pdfHead  = "%PDF-1.7\n"
)

func TestSupervisorService_UploadPhoto(t *testing.T) {
	ctx := context.Background()
	profile := func() *model.Supervisor { return &model.Supervisor{ID: "sp-1", UserID: "u-1"} }

	tests := []struct {
		name       string
		upload     func() Upload
		setupMocks func(mRepo *repoMocks.MockSupervisorRepository, mStore *storeMocks.MockStorage)
		wantErr    error
		wantErrMsg string
	}{
		{
			name: "happy path deletes previous photo",
			upload: func() Upload {
				return Upload{Reader: strings.NewReader(pngHead), Filename: "me.png", ContentType: "image/png", Size: int64(len(pngHead))}
			},
			setupMocks: func(mRepo *repoMocks.MockSupervisorRepository, mStore *storeMocks.MockStorage) {
				isNewKey := mock.MatchedBy(func(key string) bool {
					return strings.HasPrefix(key, "supervisors/u-1/photo/") && strings.HasSuffix(key, ".png")
				})
				mRepo.On("FindByUserID", ctx, "u-1").Return(profile(), nil)
				mStore.On("Put", ctx, isNewKey, mock.Anything, storage.PutOptions{
					Size:        int64(len(pngHead)),
					ContentType: "image/png",
					Filename:    "me.png",
				}).Return(storage.ObjectInfo{}, nil)
				mRepo.On("SetPhotoKey", ctx, "u-1", isNewKey, mock.Anything).Return("supervisors/u-1/photo/old.jpg", nil)
				mStore.On("Delete", ctx, "supervisors/u-1/photo/old.jpg").Return(nil)
				mStore.On("PresignGet", ctx, isNewKey, PresignExpiry).Return("https://minio/new", nil)
			},
		},
		{
			name: "rejects pdf",
			upload: func() Upload {
				return Upload{Reader: strings.NewReader(pdfHead), ContentType: "application/pdf", Size: int64(len(pdfHead))}
			},
			setupMocks: func(mRepo *repoMocks.MockSupervisorRepository, mStore *storeMocks.MockStorage) {
				mRepo.On("FindByUserID", ctx, "u-1").Return(profile(), nil)
			},
			wantErr: storage.ErrUnsupportedType,
		},
		{
			name: "rejects text declared as png",
			upload: func() Upload {
				return Upload{Reader: strings.NewReader("<script>alert(1)</script>"), Filename: "me.png", ContentType: "image/png", Size: 25}
			},
			setupMocks: func(mRepo *repoMocks.MockSupervisorRepository, mStore *storeMocks.MockStorage) {
				mRepo.On("FindByUserID", ctx, "u-1").Return(profile(), nil)
			},
			wantErr: storage.ErrUnsupportedType,
		},
		{
			name: "stores detected type over declared one",
			upload: func() Upload {
				return Upload{Reader: strings.NewReader(jpegHead), Filename: "me.png", ContentType: "image/png", Size: int64(len(jpegHead))}
			},
			setupMocks: func(mRepo *repoMocks.MockSupervisorRepository, mStore *storeMocks.MockStorage) {
				isJPEGKey := mock.MatchedBy(func(key string) bool {
					return strings.HasPrefix(key, "supervisors/u-1/photo/") && strings.HasSuffix(key, ".jpg")
				})
				mRepo.On("FindByUserID", ctx, "u-1").Return(profile(), nil)
				mStore.On("Put", ctx, isJPEGKey, mock.Anything, storage.PutOptions{
					Size:        int64(len(jpegHead)),
					ContentType: "image/jpeg",
					Filename:    "me.png",
				}).Return(storage.ObjectInfo{}, nil)
				mRepo.On("SetPhotoKey", ctx, "u-1", isJPEGKey, mock.Anything).Return("", nil)
				mStore.On("PresignGet", ctx, isJPEGKey, PresignExpiry).Return("https://minio/new", nil)
			},
		},
		{
			name: "rejects oversized image",
			upload: func() Upload {
				return Upload{Reader: strings.NewReader(jpegHead), ContentType: "image/jpeg", Size: 6 << 20}
			},
			setupMocks: func(mRepo *repoMocks.MockSupervisorRepository, mStore *storeMocks.MockStorage) {
				mRepo.On("FindByUserID", ctx, "u-1").Return(profile(), nil)
			},
			wantErr: storage.ErrTooLarge,
		},
		{
			name: "db failure removes new object",
			upload: func() Upload {
				return Upload{Reader: strings.NewReader(jpegHead), ContentType: "image/jpeg", Size: int64(len(jpegHead))}
			},
			setupMocks: func(mRepo *repoMocks.MockSupervisorRepository, mStore *storeMocks.MockStorage) {
				mRepo.On("FindByUserID", ctx, "u-1").Return(profile(), nil)
				mStore.On("Put", ctx, mock.Anything, mock.Anything, mock.Anything).Return(storage.ObjectInfo{}, nil)
				mRepo.On("SetPhotoKey", ctx, "u-1", mock.Anything, mock.Anything).Return("", errors.New("db fail"))
				mStore.On("Delete", ctx, mock.MatchedBy(func(key string) bool {
					return strings.HasPrefix(key, "supervisors/u-1/photo/")
				})).Return(nil)
			},
			wantErrMsg: "db save failed: db fail",
		},
		{
			name: "storage failure",
			upload: func() Upload {
				return Upload{Reader: strings.NewReader(webpHead), ContentType: "image/webp", Size: int64(len(webpHead))}
			},
			setupMocks: func(mRepo *repoMocks.MockSupervisorRepository, mStore *storeMocks.MockStorage) {
				mRepo.On("FindByUserID", ctx, "u-1").Return(profile(), nil)
				mStore.On("Put", ctx, mock.Anything, mock.Anything, mock.Anything).Return(storage.ObjectInfo{}, errors.New("storage fail"))
			},
			wantErrMsg: "upload to storage: storage fail",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mRepo, mStore, svc := newSupervisorFixture()
			tt.setupMocks(mRepo, mStore)

			got, err := svc.UploadPhoto(ctx, "u-1", tt.upload())

			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.wantErrMsg != "":
				assert.EqualError(t, err, tt.wantErrMsg)
			default:
				require.NoError(t, err)
				assert.Equal(t, "https://minio/new", got.PhotoURL)
			}
			mRepo.AssertExpectations(t)
			mStore.AssertExpectations(t)
		})
	}
}

func TestSupervisorService_UploadCredential(t *testing.T) {
	ctx := context.Background()
	mRepo, mStore, svc := newSupervisorFixture()

	mRepo.On("FindByUserID", ctx, "u-1").Return(&model.Supervisor{ID: "sp-1", UserID: "u-1", Status: model.StatusPending}, nil)
	mStore.On("Put", ctx, mock.MatchedBy(func(key string) bool {
		return strings.HasPrefix(key, "supervisors/u-1/credentials/") && strings.HasSuffix(key, ".pdf")
	}), mock.Anything, mock.Anything).Return(storage.ObjectInfo{}, nil)
	mRepo.On("SetCredentialKey", ctx, "u-1", mock.Anything, mock.Anything).Return("", nil)

	err := svc.UploadCredential(ctx, "u-1", Upload{Reader: strings.NewReader(pdfHead), ContentType: "application/pdf", Size: int64(len(pdfHead))})

	require.NoError(t, err)
	mStore.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestSupervisorService_FilterOptions(t *testing.T) {
	ctx := context.Background()
	mRepo, _, svc := newSupervisorFixture()
	opts := &model.FilterOptions{Regions: []string{"서울"}}
	mRepo.On("FilterOptions", ctx).Return(opts, nil)

	got, err := svc.FilterOptions(ctx)

	require.NoError(t, err)
	assert.Same(t, opts, got)
}

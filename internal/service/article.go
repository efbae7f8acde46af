package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Gosee6432/MindCounselorHub-sub001/internal/database"
	"github.com/Gosee6432/MindCounselorHub-sub001/internal/logging"
	"github.com/Gosee6432/MindCounselorHub-sub001/internal/model"
	"github.com/Gosee6432/MindCounselorHub-sub001/internal/repository"
	"github.com/Gosee6432/MindCounselorHub-sub001/internal/validation"
)

// ArticleListResult is one page of articles plus the per-category badge
// counts of the search-filtered set.
type ArticleListResult struct {
	Items      []model.PsychologyArticle    `json:"data"`
	Total      int                          `json:"total"`
	Categories []model.ArticleCategoryCount `json:"categories"`
	AllCount   int                          `json:"all_count"`
	Limit      int                          `json:"limit"`
	Offset     int                          `json:"offset"`
}

type CreateArticleInput struct {
	Title        string     `json:"title" validate:"required,max=200" yaml:"title"`
	Summary      string     `json:"summary" validate:"max=1000" yaml:"summary"`
	Content      string     `json:"content" validate:"required" yaml:"content"`
	Category     string     `json:"category" validate:"required,max=50" yaml:"category"`
	Author       string     `json:"author" validate:"max=100" yaml:"author"`
	SourceURL    string     `json:"source_url" validate:"omitempty,url" yaml:"source_url"`
	ThumbnailURL string     `json:"thumbnail_url" validate:"omitempty,url" yaml:"thumbnail_url"`
	Tags         []string   `json:"tags" validate:"max=20,dive,required,max=30" yaml:"tags"`
	PublishedAt  *time.Time `json:"published_at" yaml:"published_at"`
}

// SeedResult reports what a seed run changed.
type SeedResult struct {
	Inserted int
	Updated  int
}

// ArticleService defines the psychology article use cases.
type ArticleService interface {
	List(ctx context.Context, q model.ArticleQuery) (*ArticleListResult, error)

	Get(ctx context.Context, id string) (*model.PsychologyArticle, error)

	Create(ctx context.Context, in CreateArticleInput) (*model.PsychologyArticle, error)

	Delete(ctx context.Context, id string) error

	// Seed upserts articles by title. Invalid entries abort the run before
	// anything is written.
	Seed(ctx context.Context, in []CreateArticleInput) (SeedResult, error)
}

type articleService struct {
	repo     repository.ArticleRepository
	validate *validation.Validator
	log      *zap.Logger
	now      func() time.Time
}

// NewArticleService constructs a new ArticleService.
func NewArticleService(repo repository.ArticleRepository, v *validation.Validator, logger *zap.Logger) ArticleService {
	if v == nil {
		v = validation.New()
	}
	return &articleService{
		repo:     repo,
		validate: v,
		log:      logging.OrNop(logger).With(zap.String("component", "article")),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// List runs the page query and the category count query concurrently. Both
// use the same search term, so the count of the selected category always
// equals Total and AllCount is the sum of all counts.
func (s *articleService) List(ctx context.Context, q model.ArticleQuery) (*ArticleListResult, error) {
	q = q.Normalize()

	var (
		page   *repository.PageResult[model.PsychologyArticle]
		counts []model.ArticleCategoryCount
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		page, err = database.WithReadRetry(gctx, func(ctx context.Context) (*repository.PageResult[model.PsychologyArticle], error) {
			return s.repo.List(ctx, q)
		})
		return err
	})
	g.Go(func() error {
		var err error
		counts, err = database.WithReadRetry(gctx, func(ctx context.Context) ([]model.ArticleCategoryCount, error) {
			return s.repo.CategoryCounts(ctx, q.Search)
		})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	all := 0
	for _, c := range counts {
		all += c.Count
	}
	return &ArticleListResult{
		Items:      page.Items,
		Total:      page.Total,
		Categories: counts,
		AllCount:   all,
		Limit:      q.Limit,
		Offset:     q.Offset,
	}, nil
}

func (s *articleService) Get(ctx context.Context, id string) (*model.PsychologyArticle, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	a, err := database.WithReadRetry(ctx, func(ctx context.Context) (*model.PsychologyArticle, error) {
		return s.repo.FindByID(ctx, id)
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return a, nil
}

func (s *articleService) build(in CreateArticleInput) (*model.PsychologyArticle, error) {
	validation.TrimStrings(&in)
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}
	now := s.now()
	published := now
	if in.PublishedAt != nil && !in.PublishedAt.IsZero() {
		published = in.PublishedAt.UTC()
	}
	tags := in.Tags
	if tags == nil {
		tags = []string{}
	}
	return &model.PsychologyArticle{
		ID:           uuid.NewString(),
		Title:        in.Title,
		Summary:      in.Summary,
		Content:      in.Content,
		Category:     in.Category,
		Author:       in.Author,
		SourceURL:    in.SourceURL,
		ThumbnailURL: in.ThumbnailURL,
		Tags:         tags,
		PublishedAt:  published,
		CreatedAt:    now,
	}, nil
}

func (s *articleService) Create(ctx context.Context, in CreateArticleInput) (*model.PsychologyArticle, error) {
	a, err := s.build(in)
	if err != nil {
		return nil, err
	}
	created, err := s.repo.Create(ctx, a)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrArticleExists
		}
		return nil, fmt.Errorf("create article: %w", err)
	}
	s.log.Info("article_created", zap.String("article_id", created.ID), zap.String("category", created.Category))
	return created, nil
}

func (s *articleService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return ErrIDRequired
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	s.log.Info("article_deleted", zap.String("article_id", id))
	return nil
}

func (s *articleService) Seed(ctx context.Context, in []CreateArticleInput) (SeedResult, error) {
	articles := make([]*model.PsychologyArticle, 0, len(in))
	for i, item := range in {
		a, err := s.build(item)
		if err != nil {
			return SeedResult{}, fmt.Errorf("article %d (%q): %w", i, item.Title, err)
		}
		articles = append(articles, a)
	}

	var res SeedResult
	for i, a := range articles {
		// Entries without a date keep the one from their first seeding.
		keep := in[i].PublishedAt == nil || in[i].PublishedAt.IsZero()
		inserted, err := s.repo.Upsert(ctx, a, keep)
		if err != nil {
			return res, fmt.Errorf("upsert %q: %w", a.Title, err)
		}
		if inserted {
			res.Inserted++
		} else {
			res.Updated++
		}
	}
	s.log.Info("articles_seeded", zap.Int("inserted", res.Inserted), zap.Int("updated", res.Updated))
	return res, nil
}

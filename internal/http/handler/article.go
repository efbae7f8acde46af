package handler

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/Gosee6432/MindCounselorHub-sub001/internal/model"
	"github.com/Gosee6432/MindCounselorHub-sub001/internal/service"
)

// ListArticles returns psychology articles with per-category counts.
// @Summary List articles
// @Tags articles
// @Produce json
// @Param category query string false "category, all for every category"
// @Param search query string false "free text (alias q)"
// @Param limit query int false "page size"
// @Param offset query int false "offset"
// @Success 200 {object} service.ArticleListResult
// @Router /api/psychology/articles [get]
func ListArticles(svc service.ArticleService, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, offset, ok, err := page(c)
		if !ok {
			return err
		}
		q := model.ArticleQuery{
			Category: c.Query("category"),
			Search:   c.Query("search", c.Query("q")),
			Limit:    limit,
			Offset:   offset,
		}
		res, err := svc.List(c.UserContext(), q)
		if err != nil {
			return writeServiceError(c, log, err)
		}
		return c.JSON(res)
	}
}

// GetArticle returns one article.
// @Summary Get article
// @Tags articles
// @Produce json
// @Param id path string true "article id"
// @Success 200 {object} model.PsychologyArticle
// @Failure 404 {object} errorPayload
// @Router /api/psychology/articles/{id} [get]
func GetArticle(svc service.ArticleService, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok, err := pathID(c)
		if !ok {
			return err
		}
		a, err := svc.Get(c.UserContext(), id)
		if err != nil {
			return writeServiceError(c, log, err)
		}
		return c.JSON(a)
	}
}

// CreateArticle publishes an article.
// @Summary Create article
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.CreateArticleInput true "article"
// @Success 201 {object} model.PsychologyArticle
// @Failure 409 {object} errorPayload
// @Router /api/admin/psychology/articles [post]
func CreateArticle(svc service.ArticleService, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in service.CreateArticleInput
		if ok, err := bindBody(c, &in); !ok {
			return err
		}
		a, err := svc.Create(c.UserContext(), in)
		if err != nil {
			return writeServiceError(c, log, err)
		}
		return c.Status(fiber.StatusCreated).JSON(a)
	}
}

// DeleteArticle removes an article.
// @Summary Delete article
// @Tags admin
// @Security BearerAuth
// @Param id path string true "article id"
// @Success 204
// @Failure 404 {object} errorPayload
// @Router /api/admin/psychology/articles/{id} [delete]
func DeleteArticle(svc service.ArticleService, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok, err := pathID(c)
		if !ok {
			return err
		}
		if err := svc.Delete(c.UserContext(), id); err != nil {
			return writeServiceError(c, log, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

package handler

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/Gosee6432/MindCounselorHub-sub001/internal/model"
	"github.com/Gosee6432/MindCounselorHub-sub001/internal/service"
)

// CreateReport files a report against a supervisor profile.
// @Summary Report a supervisor
// @Tags reports
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "profile id"
// @Param body body service.CreateReportInput true "reason and details"
// @Success 201 {object} model.Report
// @Failure 404 {object} errorPayload
// @Failure 409 {object} errorPayload
// @Router /api/supervisors/{id}/reports [post]
func CreateReport(svc service.ReportService, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok, err := pathID(c)
		if !ok {
			return err
		}
		var in service.CreateReportInput
		if ok, err := bindBody(c, &in); !ok {
			return err
		}
		r, err := svc.Create(c.UserContext(), userID(c), id, in)
		if err != nil {
			return writeServiceError(c, log, err)
		}
		return c.Status(fiber.StatusCreated).JSON(r)
	}
}

// ListReports returns reports for moderation.
// @Summary List reports
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param status query string false "open|resolved|dismissed"
// @Param limit query int false "page size"
// @Param offset query int false "offset"
// @Success 200 {object} service.ReportListResult
// @Router /api/admin/reports [get]
func ListReports(svc service.ReportService, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, offset, ok, err := page(c)
		if !ok {
			return err
		}
		res, err := svc.List(c.UserContext(), model.ReportStatus(c.Query("status")), limit, offset)
		if err != nil {
			return writeServiceError(c, log, err)
		}
		return c.JSON(res)
	}
}

// ResolveReport closes an open report as resolved or dismissed.
// @Summary Resolve report
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "report id"
// @Param body body service.ResolveReportInput true "outcome"
// @Success 200 {object} model.Report
// @Failure 409 {object} errorPayload
// @Router /api/admin/reports/{id} [patch]
func ResolveReport(svc service.ReportService, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok, err := pathID(c)
		if !ok {
			return err
		}
		var in service.ResolveReportInput
		if ok, err := bindBody(c, &in); !ok {
			return err
		}
		r, err := svc.Resolve(c.UserContext(), id, in)
		if err != nil {
			return writeServiceError(c, log, err)
		}
		return c.JSON(r)
	}
}

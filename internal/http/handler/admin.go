package handler

import (
	"fmt"
	"path"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/Gosee6432/MindCounselorHub-sub001/internal/model"
	"github.com/Gosee6432/MindCounselorHub-sub001/internal/service"
)

// AdminListSupervisors returns the approval queue.
// @Summary Approval queue
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param status query string false "pending (default)|approved|rejected"
// @Param limit query int false "page size"
// @Param offset query int false "offset"
// @Success 200 {object} service.SupervisorListResult
// @Router /api/admin/supervisors [get]
func AdminListSupervisors(svc service.AdminService, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, offset, ok, err := page(c)
		if !ok {
			return err
		}
		res, err := svc.ListSupervisors(c.UserContext(), model.AccountStatus(c.Query("status")), limit, offset)
		if err != nil {
			return writeServiceError(c, log, err)
		}
		return c.JSON(res)
	}
}

// ApproveSupervisor approves a pending profile.
// @Summary Approve supervisor
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "profile id"
// @Success 200 {object} model.Supervisor
// @Failure 409 {object} errorPayload
// @Router /api/admin/supervisors/{id}/approve [post]
func ApproveSupervisor(svc service.AdminService, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok, err := pathID(c)
		if !ok {
			return err
		}
		sp, err := svc.Approve(c.UserContext(), id)
		if err != nil {
			return writeServiceError(c, log, err)
		}
		return c.JSON(sp)
	}
}

// RejectSupervisor rejects a pending profile with a reason.
// @Summary Reject supervisor
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "profile id"
// @Param body body service.RejectInput true "reason"
// @Success 200 {object} model.Supervisor
// @Failure 409 {object} errorPayload
// @Router /api/admin/supervisors/{id}/reject [post]
func RejectSupervisor(svc service.AdminService, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok, err := pathID(c)
		if !ok {
			return err
		}
		var in service.RejectInput
		if ok, err := bindBody(c, &in); !ok {
			return err
		}
		sp, err := svc.Reject(c.UserContext(), id, in)
		if err != nil {
			return writeServiceError(c, log, err)
		}
		return c.JSON(sp)
	}
}

// DownloadCredential streams a profile's credential document.
// @Summary Download credential document
// @Tags admin
// @Produce octet-stream
// @Security BearerAuth
// @Param id path string true "profile id"
// @Success 200 {file} binary
// @Failure 404 {object} errorPayload
// @Router /api/admin/supervisors/{id}/credential [get]
func DownloadCredential(svc service.AdminService, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok, err := pathID(c)
		if !ok {
			return err
		}
		rc, info, err := svc.CredentialDocument(c.UserContext(), id)
		if err != nil {
			return writeServiceError(c, log, err)
		}

		ct := info.ContentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		c.Set(fiber.HeaderContentType, ct)
		c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", path.Base(info.Key)))
		c.Set(fiber.HeaderCacheControl, "no-store")

		size := int(info.Size)
		if size <= 0 {
			size = -1
		}
		// fasthttp closes rc once the body is written.
		return c.SendStream(rc, size)
	}
}

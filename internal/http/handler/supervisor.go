package handler

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/Gosee6432/MindCounselorHub-sub001/internal/model"
	"github.com/Gosee6432/MindCounselorHub-sub001/internal/service"
)

// parseSupervisorFilter reads the search facets from the query string.
// "q" is accepted as an alias of "search". Malformed numbers and booleans
// are rejected; normalisation is left to the service.
func parseSupervisorFilter(c *fiber.Ctx) (model.SupervisorFilter, error) {
	f, err := queryFilter(c)
	if err != nil {
		return f, err
	}
	return defaultSupervisorFilter.Merge(f), nil
}

// defaultSupervisorFilter is the listing before any facet is chosen.
var defaultSupervisorFilter = model.SupervisorFilter{Sort: model.SortRecent, Limit: model.DefaultPageLimit}

// queryFilter reads the facets present in the query string. Absent facets
// stay empty so Merge leaves the defaults alone.
func queryFilter(c *fiber.Ctx) (model.SupervisorFilter, error) {
	f := model.SupervisorFilter{
		Search:          c.Query("search", c.Query("q")),
		Gender:          c.Query("gender"),
		Region:          c.Query("region"),
		Certification:   c.Query("certification"),
		TargetGroup:     c.Query("target_group"),
		SupervisionType: c.Query("supervision_type"),
		Specialty:       c.Query("specialty"),
		Sort:            c.Query("sort"),
	}

	var err error
	if f.NationalProgram, err = queryBool(c, "national_program"); err != nil {
		return f, err
	}
	if f.OnlineAvailable, err = queryBool(c, "online"); err != nil {
		return f, err
	}
	if f.OfflineAvailable, err = queryBool(c, "offline"); err != nil {
		return f, err
	}
	for key, dst := range map[string]*int{"max_fee": &f.MaxFee, "limit": &f.Limit, "offset": &f.Offset} {
		if *dst, err = queryInt(c, key); err != nil {
			return f, fmt.Errorf("%s: %w", key, err)
		}
	}
	return f, nil
}

// queryBool parses true/false/1/0. Empty and "all" mean no constraint.
func queryBool(c *fiber.Ctx, key string) (*bool, error) {
	v := strings.ToLower(strings.TrimSpace(c.Query(key)))
	switch v {
	case "", "all":
		return nil, nil
	case "true", "1":
		b := true
		return &b, nil
	case "false", "0":
		b := false
		return &b, nil
	}
	return nil, fmt.Errorf("%s: %w", key, strconv.ErrSyntax)
}

// ListSupervisors searches approved supervisor profiles.
// @Summary List supervisors
// @Tags supervisors
// @Produce json
// @Param search query string false "free text (alias q)"
// @Param gender query string false "male|female"
// @Param region query string false "region"
// @Param certification query string false "certification"
// @Param target_group query string false "target group"
// @Param supervision_type query string false "individual|group"
// @Param specialty query string false "specialty"
// @Param national_program query bool false "national program participation"
// @Param online query bool false "online sessions"
// @Param offline query bool false "offline sessions"
// @Param max_fee query int false "maximum fee per session"
// @Param sort query string false "recent|experience|fee_asc|fee_desc|name"
// @Param limit query int false "page size"
// @Param offset query int false "offset"
// @Success 200 {object} service.SupervisorListResult
// @Failure 400 {object} errorPayload
// @Router /api/supervisors [get]
func ListSupervisors(svc service.SupervisorService, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		f, err := parseSupervisorFilter(c)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_FILTER", msgInvalidFilter)
		}
		res, err := svc.List(c.UserContext(), f)
		if err != nil {
			return writeServiceError(c, log, err)
		}
		return c.JSON(res)
	}
}

// GetSupervisor returns one approved profile.
// @Summary Get supervisor
// @Tags supervisors
// @Produce json
// @Param id path string true "profile id"
// @Success 200 {object} model.Supervisor
// @Failure 400 {object} errorPayload
// @Failure 404 {object} errorPayload
// @Router /api/supervisors/{id} [get]
func GetSupervisor(svc service.SupervisorService, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok, err := pathID(c)
		if !ok {
			return err
		}
		sp, err := svc.Get(c.UserContext(), id)
		if err != nil {
			return writeServiceError(c, log, err)
		}
		return c.JSON(sp)
	}
}

// SupervisorFilterOptions lists the values available to each search facet.
// @Summary Filter options
// @Tags supervisors
// @Produce json
// @Success 200 {object} model.FilterOptions
// @Router /api/supervisors/filters [get]
func SupervisorFilterOptions(svc service.SupervisorService, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		opts, err := svc.FilterOptions(c.UserContext())
		if err != nil {
			return writeServiceError(c, log, err)
		}
		return c.JSON(opts)
	}
}

// GetMyProfile returns the signed-in supervisor's own profile.
// @Summary My profile
// @Tags supervisors
// @Produce json
// @Security BearerAuth
// @Success 200 {object} model.Supervisor
// @Router /api/supervisors/me [get]
func GetMyProfile(svc service.SupervisorService, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sp, err := svc.GetMine(c.UserContext(), userID(c))
		if err != nil {
			return writeServiceError(c, log, err)
		}
		return c.JSON(sp)
	}
}

// UpdateMyProfile applies a partial update to the caller's profile.
// @Summary Update my profile
// @Tags supervisors
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.UpdateProfileInput true "fields to change"
// @Success 200 {object} model.Supervisor
// @Failure 400 {object} errorPayload
// @Router /api/supervisors/me [put]
func UpdateMyProfile(svc service.SupervisorService, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in service.UpdateProfileInput
		if ok, err := bindBody(c, &in); !ok {
			return err
		}
		sp, err := svc.UpdateMine(c.UserContext(), userID(c), in)
		if err != nil {
			return writeServiceError(c, log, err)
		}
		return c.JSON(sp)
	}
}

// UploadMyPhoto replaces the profile photo (multipart field "file").
// @Summary Upload profile photo
// @Tags supervisors
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "jpeg, png or webp, up to 5MB"
// @Success 200 {object} model.Supervisor
// @Failure 400 {object} errorPayload
// @Failure 413 {object} errorPayload
// @Failure 415 {object} errorPayload
// @Router /api/supervisors/me/photo [post]
func UploadMyPhoto(svc service.SupervisorService, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		up, closeFn, ok, err := uploadFromForm(c)
		if !ok {
			return err
		}
		defer closeFn()

		sp, err := svc.UploadPhoto(c.UserContext(), userID(c), up)
		if err != nil {
			return writeServiceError(c, log, err)
		}
		return c.JSON(sp)
	}
}

// UploadMyCredential stores the credential document (multipart field
// "file"). Pending supervisors call it with their upload token.
// @Summary Upload credential document
// @Tags supervisors
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "pdf, jpeg or png, up to 10MB"
// @Success 200 {object} messageResponse
// @Failure 400 {object} errorPayload
// @Failure 413 {object} errorPayload
// @Failure 415 {object} errorPayload
// @Router /api/supervisors/me/credential [post]
func UploadMyCredential(svc service.SupervisorService, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		up, closeFn, ok, err := uploadFromForm(c)
		if !ok {
			return err
		}
		defer closeFn()

		if err := svc.UploadCredential(c.UserContext(), userID(c), up); err != nil {
			return writeServiceError(c, log, err)
		}
		return c.JSON(messageResponse{Message: "자격 증빙 서류가 제출되었습니다."})
	}
}

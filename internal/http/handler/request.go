package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/Gosee6432/MindCounselorHub-sub001/internal/http/middleware"
	"github.com/Gosee6432/MindCounselorHub-sub001/internal/service"
)

// bindBody decodes the request body into dst. On failure it writes a 400
// and returns false.
func bindBody(c *fiber.Ctx, dst any) (bool, error) {
	if err := c.BodyParser(dst); err != nil {
		return false, writeError(c, fiber.StatusBadRequest, "INVALID_BODY", msgInvalidBody)
	}
	return true, nil
}

// pathID returns the :id parameter if it is a UUID. Otherwise it writes a
// 400 and returns false.
func pathID(c *fiber.Ctx) (string, bool, error) {
	id := c.Params("id")
	if _, err := uuid.Parse(id); err != nil {
		return "", false, writeError(c, fiber.StatusBadRequest, "INVALID_ID", msgInvalidID)
	}
	return id, true, nil
}

// page reads limit and offset. Missing values are zero and left for the
// service to default.
func page(c *fiber.Ctx) (limit, offset int, ok bool, err error) {
	limit, perr := queryInt(c, "limit")
	if perr != nil {
		return 0, 0, false, writeError(c, fiber.StatusBadRequest, "INVALID_LIMIT", msgBadRequest)
	}
	offset, perr = queryInt(c, "offset")
	if perr != nil {
		return 0, 0, false, writeError(c, fiber.StatusBadRequest, "INVALID_OFFSET", msgBadRequest)
	}
	return limit, offset, true, nil
}

func queryInt(c *fiber.Ctx, key string) (int, error) {
	v := c.Query(key)
	if v == "" {
		return 0, nil
	}
	return strconv.Atoi(v)
}

// userID returns the subject of the verified token.
func userID(c *fiber.Ctx) string {
	if claims := middleware.Claims(c); claims != nil {
		return claims.UserID()
	}
	return ""
}

// uploadFromForm opens the multipart field "file". The caller closes the
// returned closer when ok is true.
func uploadFromForm(c *fiber.Ctx) (service.Upload, func() error, bool, error) {
	fh, err := c.FormFile("file")
	if err != nil {
		return service.Upload{}, nil, false, writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", msgFileRequired)
	}
	f, err := fh.Open()
	if err != nil {
		return service.Upload{}, nil, false, writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", msgFileRequired)
	}

	ct := fh.Header.Get(fiber.HeaderContentType)
	if ct == "" {
		ct = "application/octet-stream"
	}
	return service.Upload{
		Reader:      f,
		Filename:    fh.Filename,
		ContentType: ct,
		Size:        fh.Size,
	}, f.Close, true, nil
}

type messageResponse struct {
	Message string `json:"message"`
}

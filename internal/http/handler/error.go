package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/Gosee6432/MindCounselorHub-sub001/internal/http/middleware"
	"github.com/Gosee6432/MindCounselorHub-sub001/internal/logging"
	"github.com/Gosee6432/MindCounselorHub-sub001/internal/service"
	"github.com/Gosee6432/MindCounselorHub-sub001/internal/storage"
	"github.com/Gosee6432/MindCounselorHub-sub001/internal/validation"
)

// errorPayload defines the standardized error response body.
type errorPayload struct {
	RequestID string        `json:"request_id"`
	Error     errorEnvelope `json:"error"`
}

type errorEnvelope struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// Messages shown to users. The approval-pending text is matched by clients
// on "승인 대기".
const (
	msgBadRequest        = "잘못된 요청입니다."
	msgInvalidBody       = "요청 형식이 올바르지 않습니다."
	msgInvalidID         = "잘못된 ID 형식입니다."
	msgNotFound          = "요청한 정보를 찾을 수 없습니다."
	msgMethodNotAllowed  = "허용되지 않는 요청 방식입니다."
	msgUnauthorized      = "로그인이 필요합니다."
	msgForbidden         = "접근 권한이 없습니다."
	msgRateLimited       = "요청이 너무 많습니다. 잠시 후 다시 시도해 주세요."
	msgInternal          = "일시적인 오류가 발생했습니다. 잠시 후 다시 시도해 주세요."
	msgUnavailable       = "서비스를 일시적으로 사용할 수 없습니다."
	msgEmailTaken        = "이미 가입된 이메일입니다."
	msgInvalidLogin      = "이메일 또는 비밀번호가 올바르지 않습니다."
	msgApprovalPending   = "관리자 승인 대기 중인 계정입니다."
	msgAccountRejected   = "가입이 거절된 계정입니다. 관리자에게 문의해 주세요."
	msgNotAdmin          = "관리자 계정이 아닙니다."
	msgInvalidResetToken = "유효하지 않거나 만료된 재설정 링크입니다."
	msgReportExists      = "이미 접수된 신고가 처리 중입니다."
	msgReportClosed      = "이미 처리된 신고입니다."
	msgSelfReport        = "본인 프로필은 신고할 수 없습니다."
	msgInvalidTransition = "대기 중인 프로필만 승인하거나 거절할 수 있습니다."
	msgArticleExists     = "같은 제목의 글이 이미 있습니다."
	msgInvalidFilter     = "검색 조건이 올바르지 않습니다."
	msgFileRequired      = "파일을 첨부해 주세요."
	msgUnsupportedFile   = "지원하지 않는 파일 형식입니다."
	msgFileTooLarge      = "파일 크기가 너무 큽니다."
)

// requestIDFromCtx extracts request_id previously stored by middleware.RequestID.
func requestIDFromCtx(c *fiber.Ctx) string {
	if s, ok := c.Locals(middleware.RequestIDLocalKey).(string); ok {
		return s
	}
	return ""
}

// writeError writes a standardized JSON error response without leaking internal errors.
//
// Parameters:
// - status: HTTP status code to return
// - code: machine-readable short error code (e.g., "INVALID_ID", "NOT_FOUND", "INTERNAL_ERROR")
// - message: human-readable safe message (no internal details)
func writeError(c *fiber.Ctx, status int, code, message string) error {
	return writeErrorFields(c, status, code, message, nil)
}

func writeErrorFields(c *fiber.Ctx, status int, code, message string, fields map[string]string) error {
	res := errorPayload{
		RequestID: requestIDFromCtx(c),
		Error: errorEnvelope{
			Code:    code,
			Message: message,
			Fields:  fields,
		},
	}
	return c.Status(status).JSON(res)
}

// serviceErrors maps domain errors to status, code and message.
var serviceErrors = []struct {
	err     error
	status  int
	code    string
	message string
}{
	{service.ErrIDRequired, fiber.StatusBadRequest, "INVALID_ID", msgInvalidID},
	{service.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND", msgNotFound},
	{service.ErrEmailTaken, fiber.StatusConflict, "EMAIL_TAKEN", msgEmailTaken},
	{service.ErrInvalidCredentials, fiber.StatusUnauthorized, "INVALID_CREDENTIALS", msgInvalidLogin},
	{service.ErrApprovalPending, fiber.StatusForbidden, "APPROVAL_PENDING", msgApprovalPending},
	{service.ErrAccountRejected, fiber.StatusForbidden, "ACCOUNT_REJECTED", msgAccountRejected},
	{service.ErrNotAdmin, fiber.StatusForbidden, "NOT_ADMIN", msgNotAdmin},
	{service.ErrInvalidResetToken, fiber.StatusBadRequest, "INVALID_RESET_TOKEN", msgInvalidResetToken},
	{service.ErrReportExists, fiber.StatusConflict, "REPORT_EXISTS", msgReportExists},
	{service.ErrReportClosed, fiber.StatusConflict, "REPORT_CLOSED", msgReportClosed},
	{service.ErrSelfReport, fiber.StatusBadRequest, "SELF_REPORT", msgSelfReport},
	{service.ErrInvalidStatusTransition, fiber.StatusConflict, "INVALID_STATUS_TRANSITION", msgInvalidTransition},
	{service.ErrArticleExists, fiber.StatusConflict, "ARTICLE_EXISTS", msgArticleExists},
	{service.ErrInvalidFilter, fiber.StatusBadRequest, "INVALID_FILTER", msgInvalidFilter},
	{service.ErrReaderNil, fiber.StatusBadRequest, "FILE_REQUIRED", msgFileRequired},
	{storage.ErrUnsupportedType, fiber.StatusUnsupportedMediaType, "UNSUPPORTED_FILE_TYPE", msgUnsupportedFile},
	{storage.ErrTooLarge, fiber.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", msgFileTooLarge},
}

// writeServiceError translates an error returned by a service. Unknown
// errors become a 500 and are logged with the request ID.
func writeServiceError(c *fiber.Ctx, log *zap.Logger, err error) error {
	var verr *validation.Error
	if errors.As(err, &verr) {
		return writeErrorFields(c, fiber.StatusBadRequest, verr.Code, verr.Message, verr.Fields)
	}
	for _, m := range serviceErrors {
		if errors.Is(err, m.err) {
			return writeError(c, m.status, m.code, m.message)
		}
	}

	logging.OrNop(log).Error("request_failed",
		zap.String("request_id", requestIDFromCtx(c)),
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
		zap.Error(err),
	)
	return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", msgInternal)
}

// ErrorHandler returns a Fiber global error handler that standardizes error responses.
func ErrorHandler(logger *zap.Logger) fiber.ErrorHandler {
	log := logging.OrNop(logger).With(zap.String("component", "http"))

	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		var fe *fiber.Error
		if errors.As(err, &fe) {
			status = fe.Code
		}

		switch status {
		case fiber.StatusBadRequest:
			return writeError(c, status, "BAD_REQUEST", msgBadRequest)
		case fiber.StatusUnauthorized:
			return writeError(c, status, "UNAUTHORIZED", msgUnauthorized)
		case fiber.StatusForbidden:
			return writeError(c, status, "FORBIDDEN", msgForbidden)
		case fiber.StatusNotFound:
			return writeError(c, status, "NOT_FOUND", msgNotFound)
		case fiber.StatusMethodNotAllowed:
			return writeError(c, status, "METHOD_NOT_ALLOWED", msgMethodNotAllowed)
		case fiber.StatusRequestEntityTooLarge:
			return writeError(c, status, "FILE_TOO_LARGE", msgFileTooLarge)
		case fiber.StatusTooManyRequests:
			return writeError(c, status, "RATE_LIMITED", msgRateLimited)
		default:
			log.Error("unhandled_error",
				zap.String("request_id", requestIDFromCtx(c)),
				zap.String("path", c.Path()),
				zap.Error(err),
			)
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", msgInternal)
		}
	}
}

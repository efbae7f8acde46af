package service

import "errors"

// Domain errors returned by the services. Handlers map them to HTTP status
// codes and client-facing messages.
var (
	ErrIDRequired              = errors.New("id is required")
	ErrNotFound                = errors.New("not found")
	ErrEmailTaken              = errors.New("email already registered")
	ErrInvalidCredentials      = errors.New("invalid email or password")
	ErrApprovalPending         = errors.New("account awaiting admin approval")
	ErrAccountRejected         = errors.New("account rejected")
	ErrNotAdmin                = errors.New("account is not an admin")
	ErrInvalidResetToken       = errors.New("invalid or expired reset token")
	ErrReportExists            = errors.New("open report already exists")
	ErrReportClosed            = errors.New("report already closed")
	ErrSelfReport              = errors.New("cannot report own profile")
	ErrInvalidStatusTransition = errors.New("invalid status transition")
	ErrArticleExists           = errors.New("article title already exists")
	ErrInvalidFilter           = errors.New("invalid filter")
	ErrReaderNil               = errors.New("reader is nil")
)

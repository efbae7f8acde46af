package handler

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/Gosee6432/MindCounselorHub-sub001/internal/service"
)

const (
	msgRegistered        = "회원가입이 완료되었습니다."
	msgRegisteredPending = "회원가입이 완료되었습니다. 관리자 승인 후 로그인할 수 있습니다."
	msgResetMailSent     = "입력하신 이메일로 비밀번호 재설정 안내를 보냈습니다."
	msgPasswordReset     = "비밀번호가 재설정되었습니다."
	msgPasswordChanged   = "비밀번호가 변경되었습니다."
)

type registerResponse struct {
	*service.RegisterResult
	Message string `json:"message"`
}

// Register creates a trainee or supervisor account.
// @Summary Register
// @Tags auth
// @Accept json
// @Produce json
// @Param body body service.RegisterInput true "registration form"
// @Success 201 {object} registerResponse
// @Failure 400 {object} errorPayload
// @Failure 409 {object} errorPayload
// @Router /api/auth/register [post]
func Register(svc service.AuthService, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in service.RegisterInput
		if ok, err := bindBody(c, &in); !ok {
			return err
		}
		res, err := svc.Register(c.UserContext(), in)
		if err != nil {
			return writeServiceError(c, log, err)
		}
		msg := msgRegistered
		if res.PendingApproval {
			msg = msgRegisteredPending
		}
		return c.Status(fiber.StatusCreated).JSON(registerResponse{RegisterResult: res, Message: msg})
	}
}

// Login signs in an approved trainee or supervisor.
// @Summary Login
// @Tags auth
// @Accept json
// @Produce json
// @Param body body service.LoginInput true "credentials"
// @Success 200 {object} service.LoginResult
// @Failure 401 {object} errorPayload
// @Failure 403 {object} errorPayload
// @Router /api/auth/login [post]
func Login(svc service.AuthService, log *zap.Logger) fiber.Handler {
	return loginWith(svc.Login, log)
}

// AdminLogin signs in an admin account.
// @Summary Admin login
// @Tags auth
// @Accept json
// @Produce json
// @Param body body service.LoginInput true "credentials"
// @Success 200 {object} service.LoginResult
// @Failure 401 {object} errorPayload
// @Failure 403 {object} errorPayload
// @Router /api/auth/admin/login [post]
func AdminLogin(svc service.AuthService, log *zap.Logger) fiber.Handler {
	return loginWith(svc.AdminLogin, log)
}

type loginFunc func(ctx context.Context, in service.LoginInput) (*service.LoginResult, error)

func loginWith(login loginFunc, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in service.LoginInput
		if ok, err := bindBody(c, &in); !ok {
			return err
		}
		res, err := login(c.UserContext(), in)
		if err != nil {
			return writeServiceError(c, log, err)
		}
		return c.JSON(res)
	}
}

// ForgotPassword starts a password reset. The answer is the same whether or
// not the account exists.
// @Summary Request password reset
// @Tags auth
// @Accept json
// @Produce json
// @Param body body service.ForgotPasswordInput true "email"
// @Success 202 {object} messageResponse
// @Failure 400 {object} errorPayload
// @Router /api/auth/forgot-password [post]
func ForgotPassword(svc service.AuthService, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in service.ForgotPasswordInput
		if ok, err := bindBody(c, &in); !ok {
			return err
		}
		if err := svc.ForgotPassword(c.UserContext(), in); err != nil {
			return writeServiceError(c, log, err)
		}
		return c.Status(fiber.StatusAccepted).JSON(messageResponse{Message: msgResetMailSent})
	}
}

// ResetPassword sets a new password with a reset token.
// @Summary Reset password
// @Tags auth
// @Accept json
// @Produce json
// @Param body body service.ResetPasswordInput true "token and new password"
// @Success 200 {object} messageResponse
// @Failure 400 {object} errorPayload
// @Router /api/auth/reset-password [post]
func ResetPassword(svc service.AuthService, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in service.ResetPasswordInput
		if ok, err := bindBody(c, &in); !ok {
			return err
		}
		if err := svc.ResetPassword(c.UserContext(), in); err != nil {
			return writeServiceError(c, log, err)
		}
		return c.JSON(messageResponse{Message: msgPasswordReset})
	}
}

// Me returns the signed-in user.
// @Summary Current user
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} model.User
// @Failure 401 {object} errorPayload
// @Router /api/auth/me [get]
func Me(svc service.AuthService, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		u, err := svc.Me(c.UserContext(), userID(c))
		if err != nil {
			return writeServiceError(c, log, err)
		}
		return c.JSON(u)
	}
}

// ChangePassword replaces the password of the signed-in user.
// @Summary Change password
// @Tags auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.ChangePasswordInput true "current and new password"
// @Success 200 {object} messageResponse
// @Failure 400 {object} errorPayload
// @Failure 401 {object} errorPayload
// @Router /api/auth/change-password [post]
func ChangePassword(svc service.AuthService, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in service.ChangePasswordInput
		if ok, err := bindBody(c, &in); !ok {
			return err
		}
		if err := svc.ChangePassword(c.UserContext(), userID(c), in); err != nil {
			return writeServiceError(c, log, err)
		}
		return c.JSON(messageResponse{Message: msgPasswordChanged})
	}
}

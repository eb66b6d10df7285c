// Package usecase exposes the auth wrapper. Each method delegates to the
// configured AuthService and returns an outcome.Outcome.
package usecase

import (
	"context"
	"time"

	"firebase-kit/internal/auth/domain/model"
	"firebase-kit/internal/auth/domain/repository"
	apperrors "firebase-kit/internal/shared/errors"
	"firebase-kit/internal/shared/eventbus"
	"firebase-kit/internal/shared/logger"
	"firebase-kit/internal/shared/outcome"
)

const eventSource = "auth"

// Action link modes understood by ApplyActionCode
const (
	ModeVerifyEmail   = "verifyEmail"
	ModeResetPassword = "resetPassword"
)

var errUnsupported = apperrors.NewValidationError("operation not supported by the auth backend").WithCause(apperrors.ErrInvalidInput)

// AuthUsecase wraps an AuthService
type AuthUsecase struct {
	svc repository.AuthService
	log logger.Logger
	bus eventbus.Publisher
}

// NewAuthUsecase creates a new instance of AuthUsecase.
func NewAuthUsecase(svc repository.AuthService, log logger.Logger, bus eventbus.Publisher) *AuthUsecase {
	if log == nil {
		log = logger.NopLogger{}
	}
	if bus == nil {
		bus = eventbus.NopPublisher{}
	}
	return &AuthUsecase{svc: svc, log: log.WithComponent("auth"), bus: bus}
}

// SupportsSignIn reports whether the backend checks passwords itself
func (uc *AuthUsecase) SupportsSignIn() bool {
	_, ok := uc.svc.(repository.PasswordAuthenticator)
	return ok
}

func (uc *AuthUsecase) CreateUser(ctx context.Context, user *model.UserToCreate) outcome.Outcome[*model.User] {
	const op = "auth.create_user"
	return outcome.Capture(op, func() (*model.User, error) {
		created, err := uc.svc.CreateUser(ctx, user)
		if err != nil {
			uc.logFor(ctx, op).Errorf("Failed to create user: %v", err)
			return nil, err
		}
		uc.logFor(ctx, op).WithFields(map[string]interface{}{"uid": created.UID}).Info("User created")
		uc.publish(ctx, eventbus.EventTypeUserCreated, created.UID)
		return created, nil
	})
}

func (uc *AuthUsecase) GetUser(ctx context.Context, uid string) outcome.Outcome[*model.User] {
	return outcome.Capture("auth.get_user", func() (*model.User, error) {
		return uc.svc.GetUser(ctx, uid)
	})
}

func (uc *AuthUsecase) GetUserByEmail(ctx context.Context, email string) outcome.Outcome[*model.User] {
	return outcome.Capture("auth.get_user_by_email", func() (*model.User, error) {
		return uc.svc.GetUserByEmail(ctx, email)
	})
}

func (uc *AuthUsecase) UpdateUser(ctx context.Context, uid string, update *model.UserToUpdate) outcome.Outcome[*model.User] {
	const op = "auth.update_user"
	return outcome.Capture(op, func() (*model.User, error) {
		updated, err := uc.svc.UpdateUser(ctx, uid, update)
		if err != nil {
			uc.logFor(ctx, op).Errorf("Failed to update user %s: %v", uid, err)
			return nil, err
		}
		uc.publish(ctx, eventbus.EventTypeUserUpdated, uid)
		return updated, nil
	})
}

func (uc *AuthUsecase) DeleteUser(ctx context.Context, uid string) outcome.Outcome[outcome.None] {
	const op = "auth.delete_user"
	return outcome.CaptureNone(op, func() error {
		if err := uc.svc.DeleteUser(ctx, uid); err != nil {
			uc.logFor(ctx, op).Errorf("Failed to delete user %s: %v", uid, err)
			return err
		}
		uc.publish(ctx, eventbus.EventTypeUserDeleted, uid)
		return nil
	})
}

func (uc *AuthUsecase) ListUsers(ctx context.Context, pageSize int, pageToken string) outcome.Outcome[*model.UserPage] {
	return outcome.Capture("auth.list_users", func() (*model.UserPage, error) {
		return uc.svc.ListUsers(ctx, pageSize, pageToken)
	})
}

func (uc *AuthUsecase) EmailVerificationLink(ctx context.Context, email string) outcome.Outcome[string] {
	return outcome.Capture("auth.email_verification_link", func() (string, error) {
		return uc.svc.EmailVerificationLink(ctx, email)
	})
}

func (uc *AuthUsecase) PasswordResetLink(ctx context.Context, email string) outcome.Outcome[string] {
	return outcome.Capture("auth.password_reset_link", func() (string, error) {
		return uc.svc.PasswordResetLink(ctx, email)
	})
}

func (uc *AuthUsecase) CreateSessionCookie(ctx context.Context, idToken string, expiresIn time.Duration) outcome.Outcome[string] {
	return outcome.Capture("auth.create_session_cookie", func() (string, error) {
		return uc.svc.CreateSessionCookie(ctx, idToken, expiresIn)
	})
}

func (uc *AuthUsecase) VerifySessionCookie(ctx context.Context, cookie string) outcome.Outcome[*model.Token] {
	return outcome.Capture("auth.verify_session_cookie", func() (*model.Token, error) {
		return uc.svc.VerifySessionCookie(ctx, cookie)
	})
}

func (uc *AuthUsecase) VerifyIDToken(ctx context.Context, idToken string) outcome.Outcome[*model.Token] {
	return outcome.Capture("auth.verify_id_token", func() (*model.Token, error) {
		return uc.svc.VerifyIDToken(ctx, idToken)
	})
}

func (uc *AuthUsecase) CustomToken(ctx context.Context, uid string, claims map[string]interface{}) outcome.Outcome[string] {
	return outcome.Capture("auth.custom_token", func() (string, error) {
		return uc.svc.CustomToken(ctx, uid, claims)
	})
}

// SignIn checks an email and password. Only backends implementing
// repository.PasswordAuthenticator support it.
func (uc *AuthUsecase) SignIn(ctx context.Context, email, password string) outcome.Outcome[*model.SignInResult] {
	const op = "auth.sign_in"
	return outcome.Capture(op, func() (*model.SignInResult, error) {
		authenticator, ok := uc.svc.(repository.PasswordAuthenticator)
		if !ok {
			return nil, errUnsupported
		}
		result, err := authenticator.SignIn(ctx, email, password)
		if err != nil {
			uc.logFor(ctx, op).Warnf("Sign-in rejected: %v", err)
			return nil, err
		}
		return result, nil
	})
}

// ApplyActionCode redeems the oobCode of an action link. newPassword is only
// read in ModeResetPassword.
func (uc *AuthUsecase) ApplyActionCode(ctx context.Context, mode, code, newPassword string) outcome.Outcome[*model.User] {
	const op = "auth.apply_action_code"
	return outcome.Capture(op, func() (*model.User, error) {
		handler, ok := uc.svc.(repository.ActionCodeHandler)
		if !ok {
			return nil, errUnsupported
		}

		var (
			user *model.User
			err  error
		)
		switch mode {
		case ModeVerifyEmail:
			user, err = handler.ApplyEmailVerification(ctx, code)
		case ModeResetPassword:
			user, err = handler.ConfirmPasswordReset(ctx, code, newPassword)
		default:
			return nil, apperrors.NewValidationError("unknown action mode: " + mode).WithCause(apperrors.ErrInvalidInput)
		}
		if err != nil {
			return nil, err
		}
		uc.publish(ctx, eventbus.EventTypeUserUpdated, user.UID)
		return user, nil
	})
}

func (uc *AuthUsecase) logFor(ctx context.Context, op string) logger.Logger {
	return uc.log.WithContext(ctx).WithFields(map[string]interface{}{"operation": op})
}

func (uc *AuthUsecase) publish(ctx context.Context, eventType, uid string) {
	event := eventbus.NewEvent(eventType, eventSource, "users/"+uid, map[string]any{"uid": uid})
	if err := uc.bus.Publish(ctx, event); err != nil {
		uc.log.WithContext(ctx).Warnf("Failed to publish %s for %s: %v", eventType, uid, err)
	}
}

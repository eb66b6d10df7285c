// Package local is a self-hosted AuthService: users live in a
// UserRepository, passwords are bcrypt hashes and every credential is a JWT
// signed by the TokenService.
package local

import (
	"context"
	"errors"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"firebase-kit/internal/auth/adapter/security"
	"firebase-kit/internal/auth/config"
	"firebase-kit/internal/auth/domain/model"
	"firebase-kit/internal/auth/domain/repository"
	apperrors "firebase-kit/internal/shared/errors"
	"firebase-kit/internal/shared/logger"
)

const (
	uidLength       = 28
	defaultPageSize = 1000
	maxPageSize     = 1000
	customTokenTTL  = time.Hour

	// Session cookies live between five minutes and two weeks
	minSessionTTL = 5 * time.Minute
	maxSessionTTL = 14 * 24 * time.Hour

	modeVerifyEmail   = "verifyEmail"
	modeResetPassword = "resetPassword"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

var (
	ErrInvalidEmailFormat = apperrors.NewValidationError("invalid email format").WithCause(apperrors.ErrInvalidInput)
	ErrUserDisabled       = apperrors.NewAuthenticationError("user account is disabled").WithCause(apperrors.ErrInvalidCredentials)
)

// Service implements repository.AuthService, repository.PasswordAuthenticator
// and repository.ActionCodeHandler.
type Service struct {
	users  repository.UserRepository
	tokens repository.TokenService
	cfg    *config.Config
	log    logger.Logger
	now    func() time.Time

	// redeemMu serialises action code redemption within the process
	redeemMu sync.Mutex
}

// NewService creates a local auth service
func NewService(users repository.UserRepository, tokens repository.TokenService, cfg *config.Config, log logger.Logger) *Service {
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Service{
		users:  users,
		tokens: tokens,
		cfg:    cfg,
		log:    log.WithComponent("auth.local"),
		now:    time.Now,
	}
}

func newUID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:uidLength]
}

func validateEmail(email string) error {
	if email != "" && !emailRegex.MatchString(email) {
		return ErrInvalidEmailFormat
	}
	return nil
}

func (s *Service) CreateUser(ctx context.Context, req *model.UserToCreate) (*model.User, error) {
	if req == nil {
		return nil, apperrors.NewValidationError("user cannot be nil").WithCause(apperrors.ErrInvalidInput)
	}
	if err := validateEmail(req.Email); err != nil {
		return nil, err
	}

	user := &model.User{
		UID:           req.UID,
		Email:         strings.ToLower(req.Email),
		EmailVerified: req.EmailVerified,
		DisplayName:   req.DisplayName,
		PhoneNumber:   req.PhoneNumber,
		PhotoURL:      req.PhotoURL,
		Disabled:      req.Disabled,
	}
	if user.UID == "" {
		user.UID = newUID()
	}
	if req.Password != "" {
		hash, err := security.HashPassword(req.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
	}

	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	s.log.WithFields(map[string]interface{}{"uid": user.UID}).Info("User created")
	return user, nil
}

func (s *Service) GetUser(ctx context.Context, uid string) (*model.User, error) {
	return s.users.GetUserByID(ctx, uid)
}

func (s *Service) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return s.users.GetUserByEmail(ctx, strings.ToLower(email))
}

func (s *Service) UpdateUser(ctx context.Context, uid string, update *model.UserToUpdate) (*model.User, error) {
	if update.IsEmpty() {
		return nil, apperrors.NewValidationError("update changes nothing").WithCause(apperrors.ErrInvalidInput)
	}
	user, err := s.users.GetUserByID(ctx, uid)
	if err != nil {
		return nil, err
	}

	if update.Email != nil {
		if err := validateEmail(*update.Email); err != nil {
			return nil, err
		}
		user.Email = strings.ToLower(*update.Email)
	}
	if update.Password != nil {
		hash, err := security.HashPassword(*update.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
	}
	if update.EmailVerified != nil {
		user.EmailVerified = *update.EmailVerified
	}
	if update.DisplayName != nil {
		user.DisplayName = *update.DisplayName
	}
	if update.PhoneNumber != nil {
		user.PhoneNumber = *update.PhoneNumber
	}
	if update.PhotoURL != nil {
		user.PhotoURL = *update.PhotoURL
	}
	if update.Disabled != nil {
		user.Disabled = *update.Disabled
	}
	if update.CustomClaims != nil {
		user.CustomClaims = update.CustomClaims
	}

	if err := s.users.UpdateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *Service) DeleteUser(ctx context.Context, uid string) error {
	return s.users.DeleteUser(ctx, uid)
}

// ListUsers pages through users ordered by uid. The page token is the uid of
// the last user on the previous page.
func (s *Service) ListUsers(ctx context.Context, pageSize int, pageToken string) (*model.UserPage, error) {
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		return nil, apperrors.NewValidationError("page size must not exceed 1000").WithCause(apperrors.ErrInvalidInput)
	}

	users, err := s.users.ListUsers(ctx, pageToken, pageSize+1)
	if err != nil {
		return nil, err
	}

	page := &model.UserPage{Users: users}
	if len(users) > pageSize {
		page.Users = users[:pageSize]
		page.NextPageToken = page.Users[pageSize-1].UID
	}
	return page, nil
}

func (s *Service) EmailVerificationLink(ctx context.Context, email string) (string, error) {
	return s.actionLink(ctx, email, repository.TokenKindVerifyEmail, modeVerifyEmail)
}

func (s *Service) PasswordResetLink(ctx context.Context, email string) (string, error) {
	return s.actionLink(ctx, email, repository.TokenKindResetPassword, modeResetPassword)
}

func (s *Service) actionLink(ctx context.Context, email string, kind repository.TokenKind, mode string) (string, error) {
	user, err := s.GetUserByEmail(ctx, email)
	if err != nil {
		return "", err
	}
	code, err := s.tokens.GenerateToken(ctx, kind, repository.TokenSubject{UserID: user.UID, Email: user.Email}, s.cfg.ActionTokenTTL)
	if err != nil {
		return "", err
	}

	query := url.Values{}
	query.Set("mode", mode)
	query.Set("oobCode", code)
	return s.cfg.ActionLinkBaseURL + "?" + query.Encode(), nil
}

// ApplyEmailVerification marks the user named by a verify-email code verified.
func (s *Service) ApplyEmailVerification(ctx context.Context, code string) (*model.User, error) {
	s.redeemMu.Lock()
	defer s.redeemMu.Unlock()

	user, err := s.redeem(ctx, repository.TokenKindVerifyEmail, code)
	if err != nil {
		return nil, err
	}
	user.EmailVerified = true
	if err := s.users.UpdateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// ConfirmPasswordReset sets a new password for the user named by a reset code.
func (s *Service) ConfirmPasswordReset(ctx context.Context, code, newPassword string) (*model.User, error) {
	s.redeemMu.Lock()
	defer s.redeemMu.Unlock()

	user, err := s.redeem(ctx, repository.TokenKindResetPassword, code)
	if err != nil {
		return nil, err
	}
	hash, err := security.HashPassword(newPassword)
	if err != nil {
		return nil, err
	}
	user.PasswordHash = hash
	if err := s.users.UpdateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// redeem validates an action code, loads its user and marks the code used on
// the returned user; the caller persists it. A code issued before the email
// changed, or one already redeemed, no longer applies.
func (s *Service) redeem(ctx context.Context, kind repository.TokenKind, code string) (*model.User, error) {
	claims, err := s.tokens.ValidateToken(ctx, kind, code)
	if err != nil {
		return nil, err
	}
	if claims.ID == "" || claims.ExpiresAt == nil {
		return nil, security.ErrTokenInvalid
	}
	user, err := s.users.GetUserByID(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	if user.Email != claims.Email {
		return nil, security.ErrTokenInvalid
	}
	if _, used := user.UsedActionCodes[claims.ID]; used {
		return nil, security.ErrTokenInvalid
	}

	now := s.now()
	for id, expires := range user.UsedActionCodes {
		if expires.Before(now) {
			delete(user.UsedActionCodes, id)
		}
	}
	if user.UsedActionCodes == nil {
		user.UsedActionCodes = make(map[string]time.Time)
	}
	user.UsedActionCodes[claims.ID] = claims.ExpiresAt.Time.UTC()
	return user, nil
}

// SignIn checks a password and issues an id token carrying the user's custom
// claims.
func (s *Service) SignIn(ctx context.Context, email, password string) (*model.SignInResult, error) {
	user, err := s.GetUserByEmail(ctx, email)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, err
	}
	if user.Disabled {
		return nil, ErrUserDisabled
	}
	if err := security.CheckPassword(user.PasswordHash, password); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	idToken, err := s.tokens.GenerateToken(ctx, repository.TokenKindID, subjectOf(user), s.cfg.IDTokenTTL)
	if err != nil {
		return nil, err
	}

	user.LastSignInAt = now
	if err := s.users.UpdateUser(ctx, user); err != nil {
		s.log.Warnf("Failed to record sign-in for %s: %v", user.UID, err)
	}
	return &model.SignInResult{User: user, IDToken: idToken, ExpiresAt: now.Add(s.cfg.IDTokenTTL)}, nil
}

// CreateSessionCookie exchanges a valid id token for a longer lived session
// token. expiresIn <= 0 uses the configured session TTL.
func (s *Service) CreateSessionCookie(ctx context.Context, idToken string, expiresIn time.Duration) (string, error) {
	if expiresIn <= 0 {
		expiresIn = s.cfg.SessionTTL
	}
	if expiresIn < minSessionTTL || expiresIn > maxSessionTTL {
		return "", apperrors.NewValidationError("session duration must be between 5 minutes and 14 days").WithCause(apperrors.ErrInvalidInput)
	}

	token, err := s.verify(ctx, repository.TokenKindID, idToken)
	if err != nil {
		return "", err
	}
	return s.tokens.GenerateToken(ctx, repository.TokenKindSession, repository.TokenSubject{
		UserID: token.UID,
		Email:  token.Email,
		Extra:  token.Claims,
	}, expiresIn)
}

func (s *Service) VerifySessionCookie(ctx context.Context, cookie string) (*model.Token, error) {
	return s.verify(ctx, repository.TokenKindSession, cookie)
}

func (s *Service) VerifyIDToken(ctx context.Context, idToken string) (*model.Token, error) {
	return s.verify(ctx, repository.TokenKindID, idToken)
}

// verify validates a token and checks that its user still exists and is
// enabled.
func (s *Service) verify(ctx context.Context, kind repository.TokenKind, raw string) (*model.Token, error) {
	claims, err := s.tokens.ValidateToken(ctx, kind, raw)
	if err != nil {
		return nil, err
	}
	user, err := s.users.GetUserByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, security.ErrTokenInvalid
		}
		return nil, err
	}
	if user.Disabled {
		return nil, ErrUserDisabled
	}

	token := &model.Token{
		UID:    claims.UserID,
		Email:  claims.Email,
		Issuer: claims.Issuer,
		Claims: claims.Extra,
	}
	if claims.IssuedAt != nil {
		token.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		token.ExpiresAt = claims.ExpiresAt.Time
	}
	return token, nil
}

// CustomToken signs a short lived token for uid. The user does not need to
// exist yet.
func (s *Service) CustomToken(ctx context.Context, uid string, claims map[string]interface{}) (string, error) {
	if uid == "" {
		return "", apperrors.NewValidationError("uid is required").WithCause(apperrors.ErrInvalidInput)
	}
	return s.tokens.GenerateToken(ctx, repository.TokenKindCustom, repository.TokenSubject{UserID: uid, Extra: claims}, customTokenTTL)
}

func subjectOf(u *model.User) repository.TokenSubject {
	return repository.TokenSubject{UserID: u.UID, Email: u.Email, Extra: u.CustomClaims}
}

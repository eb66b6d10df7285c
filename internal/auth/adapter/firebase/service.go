// Package firebase backs the auth wrapper with the Firebase Admin SDK.
package firebase

import (
	"context"
	"fmt"
	"time"

	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/iterator"

	"firebase-kit/internal/auth/domain/model"
	apperrors "firebase-kit/internal/shared/errors"
)

// Client is the subset of *auth.Client the service calls
type Client interface {
	CreateUser(ctx context.Context, user *auth.UserToCreate) (*auth.UserRecord, error)
	GetUser(ctx context.Context, uid string) (*auth.UserRecord, error)
	GetUserByEmail(ctx context.Context, email string) (*auth.UserRecord, error)
	UpdateUser(ctx context.Context, uid string, user *auth.UserToUpdate) (*auth.UserRecord, error)
	DeleteUser(ctx context.Context, uid string) error
	Users(ctx context.Context, nextPageToken string) *auth.UserIterator
	EmailVerificationLink(ctx context.Context, email string) (string, error)
	PasswordResetLink(ctx context.Context, email string) (string, error)
	SessionCookie(ctx context.Context, idToken string, expiresIn time.Duration) (string, error)
	VerifySessionCookieAndCheckRevoked(ctx context.Context, sessionCookie string) (*auth.Token, error)
	VerifyIDTokenAndCheckRevoked(ctx context.Context, idToken string) (*auth.Token, error)
	CustomTokenWithClaims(ctx context.Context, uid string, devClaims map[string]interface{}) (string, error)
}

// pageFunc fetches one page of exported users
type pageFunc func(ctx context.Context, pageSize int, pageToken string) ([]*auth.ExportedUserRecord, string, error)

// Service implements repository.AuthService on a Firebase project. Revoked
// tokens and sessions are rejected on verification.
type Service struct {
	client   Client
	nextPage pageFunc
}

// NewService wraps client
func NewService(client Client) *Service {
	s := &Service{client: client}
	s.nextPage = s.pageUsers
	return s
}

func (s *Service) pageUsers(ctx context.Context, pageSize int, pageToken string) ([]*auth.ExportedUserRecord, string, error) {
	var users []*auth.ExportedUserRecord
	pager := iterator.NewPager(s.client.Users(ctx, ""), pageSize, pageToken)
	next, err := pager.NextPage(&users)
	return users, next, err
}

func (s *Service) CreateUser(ctx context.Context, req *model.UserToCreate) (*model.User, error) {
	if req == nil {
		return nil, apperrors.NewValidationError("user cannot be nil").WithCause(apperrors.ErrInvalidInput)
	}
	params := (&auth.UserToCreate{}).EmailVerified(req.EmailVerified).Disabled(req.Disabled)
	if req.UID != "" {
		params = params.UID(req.UID)
	}
	if req.Email != "" {
		params = params.Email(req.Email)
	}
	if req.Password != "" {
		params = params.Password(req.Password)
	}
	if req.DisplayName != "" {
		params = params.DisplayName(req.DisplayName)
	}
	if req.PhoneNumber != "" {
		params = params.PhoneNumber(req.PhoneNumber)
	}
	if req.PhotoURL != "" {
		params = params.PhotoURL(req.PhotoURL)
	}

	rec, err := s.client.CreateUser(ctx, params)
	if err != nil {
		return nil, mapError(err)
	}
	return toUser(rec), nil
}

func (s *Service) GetUser(ctx context.Context, uid string) (*model.User, error) {
	rec, err := s.client.GetUser(ctx, uid)
	if err != nil {
		return nil, mapError(err)
	}
	return toUser(rec), nil
}

func (s *Service) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	rec, err := s.client.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, mapError(err)
	}
	return toUser(rec), nil
}

func (s *Service) UpdateUser(ctx context.Context, uid string, update *model.UserToUpdate) (*model.User, error) {
	if update.IsEmpty() {
		return nil, apperrors.NewValidationError("update changes nothing").WithCause(apperrors.ErrInvalidInput)
	}
	params := &auth.UserToUpdate{}
	if update.Email != nil {
		params = params.Email(*update.Email)
	}
	if update.Password != nil {
		params = params.Password(*update.Password)
	}
	if update.EmailVerified != nil {
		params = params.EmailVerified(*update.EmailVerified)
	}
	if update.DisplayName != nil {
		params = params.DisplayName(*update.DisplayName)
	}
	if update.PhoneNumber != nil {
		params = params.PhoneNumber(*update.PhoneNumber)
	}
	if update.PhotoURL != nil {
		params = params.PhotoURL(*update.PhotoURL)
	}
	if update.Disabled != nil {
		params = params.Disabled(*update.Disabled)
	}
	if update.CustomClaims != nil {
		params = params.CustomClaims(update.CustomClaims)
	}

	rec, err := s.client.UpdateUser(ctx, uid, params)
	if err != nil {
		return nil, mapError(err)
	}
	return toUser(rec), nil
}

func (s *Service) DeleteUser(ctx context.Context, uid string) error {
	return mapError(s.client.DeleteUser(ctx, uid))
}

func (s *Service) ListUsers(ctx context.Context, pageSize int, pageToken string) (*model.UserPage, error) {
	if pageSize <= 0 {
		pageSize = 1000
	}
	records, next, err := s.nextPage(ctx, pageSize, pageToken)
	if err != nil {
		return nil, mapError(err)
	}

	page := &model.UserPage{Users: make([]*model.User, 0, len(records)), NextPageToken: next}
	for _, rec := range records {
		page.Users = append(page.Users, toUser(rec.UserRecord))
	}
	return page, nil
}

func (s *Service) EmailVerificationLink(ctx context.Context, email string) (string, error) {
	link, err := s.client.EmailVerificationLink(ctx, email)
	return link, mapError(err)
}

func (s *Service) PasswordResetLink(ctx context.Context, email string) (string, error) {
	link, err := s.client.PasswordResetLink(ctx, email)
	return link, mapError(err)
}

func (s *Service) CreateSessionCookie(ctx context.Context, idToken string, expiresIn time.Duration) (string, error) {
	cookie, err := s.client.SessionCookie(ctx, idToken, expiresIn)
	return cookie, mapError(err)
}

func (s *Service) VerifySessionCookie(ctx context.Context, cookie string) (*model.Token, error) {
	token, err := s.client.VerifySessionCookieAndCheckRevoked(ctx, cookie)
	if err != nil {
		return nil, mapError(err)
	}
	return toToken(token), nil
}

func (s *Service) VerifyIDToken(ctx context.Context, idToken string) (*model.Token, error) {
	token, err := s.client.VerifyIDTokenAndCheckRevoked(ctx, idToken)
	if err != nil {
		return nil, mapError(err)
	}
	return toToken(token), nil
}

func (s *Service) CustomToken(ctx context.Context, uid string, claims map[string]interface{}) (string, error) {
	token, err := s.client.CustomTokenWithClaims(ctx, uid, claims)
	return token, mapError(err)
}

func toUser(rec *auth.UserRecord) *model.User {
	if rec == nil {
		return nil
	}
	u := &model.User{
		CustomClaims:  rec.CustomClaims,
		Disabled:      rec.Disabled,
		EmailVerified: rec.EmailVerified,
	}
	if rec.UserInfo != nil {
		u.UID = rec.UID
		u.Email = rec.Email
		u.DisplayName = rec.DisplayName
		u.PhoneNumber = rec.PhoneNumber
		u.PhotoURL = rec.PhotoURL
	}
	if rec.UserMetadata != nil {
		u.CreatedAt = fromMillis(rec.UserMetadata.CreationTimestamp)
		u.LastSignInAt = fromMillis(rec.UserMetadata.LastLogInTimestamp)
	}
	return u
}

func toToken(t *auth.Token) *model.Token {
	token := &model.Token{
		UID:       t.UID,
		Issuer:    t.Issuer,
		IssuedAt:  time.Unix(t.IssuedAt, 0).UTC(),
		ExpiresAt: time.Unix(t.Expires, 0).UTC(),
		Claims:    t.Claims,
	}
	if email, ok := t.Claims["email"].(string); ok {
		token.Email = email
	}
	return token
}

func fromMillis(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}

// mapError folds Admin SDK error codes into the shared error taxonomy
func mapError(err error) error {
	switch {
	case err == nil:
		return nil
	case auth.IsUserNotFound(err):
		return fmt.Errorf("%w: %v", apperrors.ErrUserNotFound, err)
	case auth.IsEmailAlreadyExists(err), auth.IsUIDAlreadyExists(err), auth.IsPhoneNumberAlreadyExists(err):
		return apperrors.NewConflictError(err.Error()).WithCause(apperrors.ErrConflict)
	case auth.IsIDTokenExpired(err), auth.IsSessionCookieExpired(err):
		return fmt.Errorf("%w: %v", apperrors.ErrTokenExpired, err)
	case auth.IsIDTokenInvalid(err), auth.IsSessionCookieInvalid(err),
		auth.IsIDTokenRevoked(err), auth.IsSessionCookieRevoked(err):
		return fmt.Errorf("%w: %v", apperrors.ErrInvalidToken, err)
	default:
		return err
	}
}

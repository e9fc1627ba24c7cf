package application

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/suraksha-api/internal/domain/entity"
	repo "github.com/oksasatya/suraksha-api/internal/domain/repository"
	"github.com/oksasatya/suraksha-api/pkg/helpers"
	"github.com/oksasatya/suraksha-api/pkg/validation"
)

var usernameStrip = regexp.MustCompile(`[^\p{L}\p{N}_-]+`)

// AuthService covers registration, login, password reset and email verification.
type AuthService struct {
	Repo         repo.UserRepository
	Sessions     repo.SessionStore
	Resets       repo.ResetTokenStore
	JWT          *helpers.JWTManager
	Verification *VerificationSender
	Mailer       Mailer
	ResetURL     string
	Policy       FailurePolicy
	Audit        *Auditor
	Directory    *Directory
	Logger       *logrus.Logger
}

func NewAuthService(r repo.UserRepository, sessions repo.SessionStore, resets repo.ResetTokenStore, jwt *helpers.JWTManager, verification *VerificationSender, mailer Mailer, resetURL string, policy FailurePolicy, logger *logrus.Logger) *AuthService {
	return &AuthService{
		Repo:         r,
		Sessions:     sessions,
		Resets:       resets,
		JWT:          jwt,
		Verification: verification,
		Mailer:       mailer,
		ResetURL:     resetURL,
		Policy:       policy,
		Logger:       logger,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

type RegisterInput struct {
	Username             string `json:"username" validate:"omitempty,alphadash,min=3,max=255"`
	Firstname            string `json:"firstname" validate:"omitempty,alphadash,max=255"`
	Lastname             string `json:"lastname" validate:"omitempty,alphadash,max=255"`
	Email                string `json:"email" validate:"required,email,max=255"`
	Password             string `json:"password" validate:"required,pwd"`
	PasswordConfirmation string `json:"password_confirmation" validate:"omitempty,eqfield=Password"`
}

// Register creates an unverified account and mails a verification link.
// A failed verification mail does not fail the registration.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*entity.User, error) {
	in.Email = normalizeEmail(in.Email)
	in.Username = strings.TrimSpace(in.Username)
	if details := validation.Struct(in); details != nil {
		return nil, Validation(invalidDataMessage, details)
	}

	if existing, err := s.Repo.GetByEmail(ctx, in.Email); err == nil && existing != nil {
		return nil, Validation("The email has already been taken.", map[string]string{"email": "has already been taken"})
	} else if err != nil && !errors.Is(err, repo.ErrNotFound) {
		return nil, err
	}

	username := in.Username
	if username == "" {
		generated, err := s.generateUsername(ctx, in.Email)
		if err != nil {
			return nil, err
		}
		username = generated
	} else if taken, err := s.Repo.ExistsByUsername(ctx, username); err != nil {
		return nil, err
	} else if taken {
		return nil, Validation("The username has already been taken.", map[string]string{"username": "has already been taken"})
	}

	hash, err := helpers.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	u := &entity.User{
		Username:  username,
		Email:     in.Email,
		Password:  hash,
		Firstname: in.Firstname,
		Lastname:  in.Lastname,
	}
	if err := s.Repo.Create(ctx, u); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, Validation("The email has already been taken.", map[string]string{"email": "has already been taken"})
		}
		return nil, err
	}

	if err := s.Verification.Send(ctx, u); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID).Warn("verification email after registration not sent")
	}
	s.Directory.Sync(ctx, u)
	s.Audit.Record(ctx, u.ID, u.Email, entity.AuditRegister, nil)
	return u, nil
}

// generateUsername derives a handle from the email local part plus two digits
func (s *AuthService) generateUsername(ctx context.Context, email string) (string, error) {
	base := usernameStrip.ReplaceAllString(strings.SplitN(email, "@", 2)[0], "")
	if len(base) < 3 {
		base = "user"
	}
	if len(base) > 240 {
		base = base[:240]
	}
	for i := 0; i < 5; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(100))
		if err != nil {
			return "", err
		}
		candidate := fmt.Sprintf("%s%02d", base, n.Int64())
		taken, err := s.Repo.ExistsByUsername(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
	}
	return fmt.Sprintf("%s%d", base, time.Now().UnixNano()%1_000_000), nil
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8"`
}

type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      *entity.User
}

// Login verifies the credentials and starts a new session, revoking the
// tokens of the previous one.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	in.Email = normalizeEmail(in.Email)
	if details := validation.Struct(in); details != nil {
		return nil, Validation(invalidDataMessage, details)
	}
	u, err := s.Repo.GetByEmail(ctx, in.Email)
	if errors.Is(err, repo.ErrNotFound) || (err == nil && u == nil) {
		return nil, Unauthenticated("You don't have an account with us", ErrNoAccount)
	}
	if err != nil {
		return nil, err
	}
	if !helpers.CompareHashAndPassword(u.Password, in.Password) {
		return nil, Unauthenticated("The provided credentials are incorrect.", ErrInvalidCredentials)
	}
	s.rehash(ctx, u, in.Password)

	sid, err := s.Sessions.Start(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	token, exp, err := s.JWT.GenerateAccessToken(u.ID, sid)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Error("generate access token failed")
		}
		return nil, err
	}
	s.Audit.Record(ctx, u.ID, u.Email, entity.AuditLogin, nil)
	return &LoginResult{Token: token, ExpiresAt: exp, User: u}, nil
}

// rehash upgrades a hash made with an outdated cost; failures only log.
func (s *AuthService) rehash(ctx context.Context, u *entity.User, plain string) {
	if !helpers.PasswordNeedsRehash(u.Password) {
		return
	}
	hash, err := helpers.HashPassword(plain)
	if err == nil {
		err = s.Repo.UpdatePassword(ctx, u.ID, hash)
	}
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Warn("password rehash failed")
		}
		return
	}
	u.Password = hash
}

type ForgotPasswordInput struct {
	Email string `json:"email" validate:"required,email"`
}

// ForgotPassword mails a reset link when the account exists. Unknown
// addresses succeed silently so accounts cannot be enumerated.
func (s *AuthService) ForgotPassword(ctx context.Context, in ForgotPasswordInput) error {
	in.Email = normalizeEmail(in.Email)
	if details := validation.Struct(in); details != nil {
		return Validation(invalidDataMessage, details)
	}
	u, err := s.Repo.GetByEmail(ctx, in.Email)
	if errors.Is(err, repo.ErrNotFound) || (err == nil && u == nil) {
		if s.Logger != nil {
			s.Logger.WithField("email", in.Email).Info("password reset requested for unknown email")
		}
		return nil
	}
	if err != nil {
		return err
	}

	tok, err := s.Resets.Issue(ctx, u.ID)
	if err != nil {
		return err
	}
	link := s.ResetURL + "?token=" + url.QueryEscape(tok) + "&email=" + url.QueryEscape(u.Email)

	sendErr := ErrMailUnavailable
	if s.Mailer != nil {
		sendErr = s.Mailer.SendPasswordReset(ctx, u, link)
	}
	if sendErr != nil {
		if s.Policy.Handle("password reset email not sent", sendErr, logrus.Fields{"user_id": u.ID}) {
			return ServiceFailure("Password reset email not sent", sendErr)
		}
		return sendErr
	}
	return nil
}

type ResetPasswordInput struct {
	Token                string `json:"token" validate:"required"`
	Email                string `json:"email" validate:"required,email"`
	Password             string `json:"password" validate:"required,pwd"`
	PasswordConfirmation string `json:"password_confirmation" validate:"required,eqfield=Password"`
}

// ResetPassword consumes a reset token, stores the new hash and revokes
// existing sessions.
func (s *AuthService) ResetPassword(ctx context.Context, in ResetPasswordInput) error {
	in.Email = normalizeEmail(in.Email)
	if details := validation.Struct(in); details != nil {
		return Validation(invalidDataMessage, details)
	}
	invalid := Validation("This password reset token is invalid.", map[string]string{"email": "This password reset token is invalid."})

	uid, err := s.Resets.Lookup(ctx, in.Token)
	if errors.Is(err, repo.ErrTokenNotFound) {
		return invalid
	}
	if err != nil {
		return err
	}
	u, err := s.Repo.GetByID(ctx, uid)
	if errors.Is(err, repo.ErrNotFound) || (err == nil && u == nil) {
		return invalid
	}
	if err != nil {
		return err
	}
	if !strings.EqualFold(u.Email, in.Email) {
		return invalid
	}

	hash, err := helpers.HashPassword(in.Password)
	if err != nil {
		return err
	}
	claimed, err := s.Resets.Consume(ctx, in.Token)
	if errors.Is(err, repo.ErrTokenNotFound) || (err == nil && claimed != u.ID) {
		return invalid
	}
	if err != nil {
		return err
	}
	if err := s.Repo.UpdatePassword(ctx, u.ID, hash); err != nil {
		return err
	}
	if err := s.Sessions.Revoke(ctx, u.ID); err != nil {
		return err
	}
	s.Audit.Record(ctx, u.ID, u.Email, entity.AuditPasswordReset, nil)
	return nil
}

// VerifyEmail marks the address verified. The link signature is checked by
// the transport; here hash must match the account email. Verifying twice is
// a no-op.
func (s *AuthService) VerifyEmail(ctx context.Context, userID, hash string) error {
	u, err := s.Repo.GetByID(ctx, userID)
	if errors.Is(err, repo.ErrNotFound) || (err == nil && u == nil) {
		return NotFound("User not found", ErrUserNotFound)
	}
	if err != nil {
		return err
	}
	if !hmac.Equal([]byte(EmailHash(u.Email)), []byte(hash)) {
		return Forbidden("Invalid verification link.", ErrInvalidVerification)
	}
	if u.HasVerifiedEmail() {
		return nil
	}
	now := time.Now()
	if err := s.Repo.MarkEmailVerified(ctx, u.ID, now); err != nil {
		return err
	}
	u.EmailVerifiedAt = &now
	s.Directory.Sync(ctx, u)
	s.Audit.Record(ctx, u.ID, u.Email, entity.AuditEmailVerified, nil)
	return nil
}

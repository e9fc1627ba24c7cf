package application

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/suraksha-api/internal/domain/entity"
	repo "github.com/oksasatya/suraksha-api/internal/domain/repository"
	"github.com/oksasatya/suraksha-api/pkg/helpers"
	"github.com/oksasatya/suraksha-api/pkg/validation"
)

const invalidDataMessage = "The given data was invalid."

// UserService implements the profile operations of the authenticated user.
type UserService struct {
	Repo         repo.UserRepository
	Sessions     repo.SessionStore
	Uploader     *AvatarUploader
	Remover      *AvatarRemover
	Verification *VerificationSender
	Policy       FailurePolicy
	Audit        *Auditor
	Directory    *Directory
	Logger       *logrus.Logger
	AvatarFolder string
}

func NewUserService(r repo.UserRepository, sessions repo.SessionStore, uploader *AvatarUploader, remover *AvatarRemover, verification *VerificationSender, policy FailurePolicy, logger *logrus.Logger, avatarFolder string) *UserService {
	return &UserService{
		Repo:         r,
		Sessions:     sessions,
		Uploader:     uploader,
		Remover:      remover,
		Verification: verification,
		Policy:       policy,
		Logger:       logger,
		AvatarFolder: avatarFolder,
	}
}

func (s *UserService) load(ctx context.Context, userID string) (*entity.User, error) {
	u, err := s.Repo.GetByID(ctx, userID)
	if errors.Is(err, repo.ErrNotFound) || (err == nil && u == nil) {
		return nil, NotFound("User not found", ErrUserNotFound)
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

// GetProfile returns the current user unchanged.
func (s *UserService) GetProfile(ctx context.Context, userID string) (*entity.User, error) {
	return s.load(ctx, userID)
}

type UpdateProfileInput struct {
	Firstname string `json:"firstname" validate:"required,alphadash,max=255"`
	Lastname  string `json:"lastname" validate:"required,alphadash,max=255"`
}

func (s *UserService) UpdateProfile(ctx context.Context, userID string, in UpdateProfileInput) (*entity.User, error) {
	if details := validation.Struct(in); details != nil {
		return nil, Validation(invalidDataMessage, details)
	}
	u, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	u.Firstname = in.Firstname
	u.Lastname = in.Lastname
	if err := s.Repo.UpdateProfile(ctx, u); err != nil {
		return nil, err
	}
	s.Directory.Sync(ctx, u)
	return u, nil
}

type ChangePasswordInput struct {
	CurrentPassword      string `json:"current_password" validate:"required"`
	Password             string `json:"password" validate:"required,pwd"`
	PasswordConfirmation string `json:"password_confirmation" validate:"required,eqfield=Password"`
}

// ChangePassword verifies the current password before storing the new hash.
// Sessions are left untouched.
func (s *UserService) ChangePassword(ctx context.Context, userID string, in ChangePasswordInput) (*entity.User, error) {
	if details := validation.Struct(in); details != nil {
		return nil, Validation(invalidDataMessage, details)
	}
	u, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !helpers.CompareHashAndPassword(u.Password, in.CurrentPassword) {
		return nil, Forbidden("The provided password does not match your current password.", ErrCurrentPasswordMismatch)
	}
	hash, err := helpers.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	if err := s.Repo.UpdatePassword(ctx, u.ID, hash); err != nil {
		return nil, err
	}
	u.Password = hash
	s.Audit.Record(ctx, u.ID, u.Email, entity.AuditPasswordChange, nil)
	return u, nil
}

// ResendVerification dispatches a fresh verification link. Dispatch
// failures follow the failure policy.
func (s *UserService) ResendVerification(ctx context.Context, userID string) error {
	u, err := s.load(ctx, userID)
	if err != nil {
		return err
	}
	if err := s.Verification.Send(ctx, u); err != nil {
		if s.Policy.Handle("verification email not sent", err, logrus.Fields{"user_id": u.ID}) {
			return ServiceFailure("Verification email not sent", err)
		}
		return err
	}
	return nil
}

// ReplaceAvatar uploads the new file, persists its location and only then
// removes the previous avatar. Expiring URLs are never persisted; the
// object path is stored and resolved on read.
func (s *UserService) ReplaceAvatar(ctx context.Context, userID string, f UploadedFile) (string, error) {
	u, err := s.load(ctx, userID)
	if err != nil {
		return "", err
	}
	previous := u.ProfileImage

	stored, err := s.Uploader.Save(ctx, f, s.AvatarFolder)
	if err != nil {
		return "", ServiceFailure("Profile image could not be uploaded", err)
	}
	location, ref := stored.Location, stored.Reference
	if err := s.Repo.UpdateProfileImage(ctx, u.ID, &ref); err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithFields(logrus.Fields{"user_id": u.ID, "location": ref}).Error("persist avatar failed; uploaded object left behind")
		}
		return "", ServiceFailure("Profile image could not be saved", err)
	}
	u.ProfileImage = &ref

	if previous != nil && *previous != "" {
		s.Remover.Remove(ctx, *previous, s.AvatarFolder)
	}
	s.Directory.Sync(ctx, u)
	s.Audit.Record(ctx, u.ID, u.Email, entity.AuditAvatarReplace, map[string]any{"location": ref})
	return location, nil
}

type DeleteAccountInput struct {
	Password string `json:"password" validate:"required,min=8"`
}

// DeleteAccount confirms the password, revokes every session and marks the
// account deleted.
func (s *UserService) DeleteAccount(ctx context.Context, userID string, in DeleteAccountInput) error {
	if details := validation.Struct(in); details != nil {
		return Validation(invalidDataMessage, details)
	}
	u, err := s.load(ctx, userID)
	if err != nil {
		return err
	}
	if !helpers.CompareHashAndPassword(u.Password, in.Password) {
		return Forbidden("Password is incorrect!", ErrInvalidCredentials)
	}
	if err := s.Sessions.Revoke(ctx, u.ID); err != nil {
		return err
	}
	if err := s.Repo.SoftDelete(ctx, u.ID, time.Now()); err != nil {
		return err
	}
	s.Directory.Drop(ctx, u.ID)
	s.Audit.Record(ctx, u.ID, u.Email, entity.AuditAccountDelete, nil)
	return nil
}

// Logout revokes every active session of the user.
func (s *UserService) Logout(ctx context.Context, userID string) error {
	if err := s.Sessions.Revoke(ctx, userID); err != nil {
		return err
	}
	s.Audit.Record(ctx, userID, "", entity.AuditLogout, nil)
	return nil
}

package application

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/suraksha-api/internal/domain/entity"
	"github.com/oksasatya/suraksha-api/internal/testutils"
	"github.com/oksasatya/suraksha-api/pkg/helpers"
)

func TestUserService_GetProfile(t *testing.T) {
	f := newFixture(t, true)
	svc := f.userService()

	u, err := svc.GetProfile(context.Background(), f.user.ID)
	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", u.Email)

	_, err = svc.GetProfile(context.Background(), "missing")
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestUserService_UpdateProfile(t *testing.T) {
	f := newFixture(t, true)
	svc := f.userService()

	u, err := svc.UpdateProfile(context.Background(), f.user.ID, UpdateProfileInput{Firstname: "Mary-Jane", Lastname: "Watson"})
	require.NoError(t, err)
	assert.Equal(t, "Mary-Jane", u.Firstname)
	assert.Equal(t, "Watson", f.repo.Get(f.user.ID).Lastname)
	assert.Equal(t, "Mary-Jane", f.index.Docs[f.user.ID].Firstname)

	_, err = svc.UpdateProfile(context.Background(), f.user.ID, UpdateProfileInput{Firstname: "Mary Jane", Lastname: ""})
	require.Error(t, err)
	var ae *Error
	require.True(t, errors.As(err, &ae))
	assert.Equal(t, KindValidation, ae.Kind)
	assert.Contains(t, ae.Details, "firstname")
	assert.Contains(t, ae.Details, "lastname")
}

func TestUserService_ChangePassword(t *testing.T) {
	f := newFixture(t, true)
	svc := f.userService()
	oldHash := f.user.Password

	_, err := svc.ChangePassword(context.Background(), f.user.ID, ChangePasswordInput{
		CurrentPassword:      "wrong-password",
		Password:             "N3wPassword!",
		PasswordConfirmation: "N3wPassword!",
	})
	require.Error(t, err)
	assert.Equal(t, KindAuthorization, KindOf(err))
	assert.Equal(t, "The provided password does not match your current password.", err.(*Error).Message)
	assert.Equal(t, oldHash, f.repo.Get(f.user.ID).Password)

	_, err = svc.ChangePassword(context.Background(), f.user.ID, ChangePasswordInput{
		CurrentPassword:      testPassword,
		Password:             "N3wPassword!",
		PasswordConfirmation: "N3wPassword!",
	})
	require.NoError(t, err)
	assert.True(t, helpers.CompareHashAndPassword(f.repo.Get(f.user.ID).Password, "N3wPassword!"))
	assert.Equal(t, []string{entity.AuditPasswordChange}, f.audit.Actions())
}

func TestUserService_ChangePasswordConfirmationMismatch(t *testing.T) {
	f := newFixture(t, true)

	_, err := f.userService().ChangePassword(context.Background(), f.user.ID, ChangePasswordInput{
		CurrentPassword:      testPassword,
		Password:             "N3wPassword!",
		PasswordConfirmation: "Different1!",
	})
	assert.Equal(t, KindValidation, KindOf(err))
}

func TestUserService_ResendVerification(t *testing.T) {
	f := newFixture(t, true)

	require.NoError(t, f.userService().ResendVerification(context.Background(), f.user.ID))
	require.Len(t, f.mailer.Sent, 1)
	sent := f.mailer.Sent[0]
	assert.Equal(t, "verify", sent.Kind)
	assert.Contains(t, sent.Link, "http://api.test/api/email/verify/"+f.user.ID+"/"+EmailHash(f.user.Email))
	assert.Contains(t, sent.Link, "signature=")
}

func TestUserService_ResendVerificationFailure(t *testing.T) {
	mailErr := errors.New("queue down")

	t.Run("suppressed", func(t *testing.T) {
		f := newFixture(t, true)
		f.mailer.Err = mailErr

		err := f.userService().ResendVerification(context.Background(), f.user.ID)
		assert.Equal(t, KindService, KindOf(err))
		assert.Equal(t, "Verification email not sent", err.(*Error).Message)
		require.NotNil(t, f.hook.LastEntry())
	})

	t.Run("propagated", func(t *testing.T) {
		f := newFixture(t, false)
		f.mailer.Err = mailErr

		err := f.userService().ResendVerification(context.Background(), f.user.ID)
		assert.Same(t, mailErr, err)
		assert.Equal(t, KindUnknown, KindOf(err))
	})
}

func TestUserService_ReplaceAvatar(t *testing.T) {
	f := newFixture(t, true)
	previous := testCDN + "/profile-avatars/old1.png"
	f.user.ProfileImage = &previous
	f.repo = testutils.NewUserRepo(f.user)
	f.gw.Objects["profile-avatars/old1.png"] = []byte("old")
	svc := f.userService()

	location, err := svc.ReplaceAvatar(context.Background(), f.user.ID, pngFile("new"))
	require.NoError(t, err)

	stored := f.repo.Get(f.user.ID).ProfileImage
	require.NotNil(t, stored)
	assert.Equal(t, location, *stored)
	assert.False(t, f.gw.Has("profile-avatars/old1.png"))

	require.Len(t, f.gw.Ops, 2)
	assert.Regexp(t, `^put:profile-avatars/`, f.gw.Ops[0])
	assert.Equal(t, "delete:profile-avatars/old1.png", f.gw.Ops[1])
	assert.Equal(t, []string{entity.AuditAvatarReplace}, f.audit.Actions())
}

func TestUserService_ReplaceAvatarStoresPathForExpiringURLs(t *testing.T) {
	f := newFixture(t, true)
	f.gw.Signed = true
	previous := "profile-avatars/old1.png"
	f.user.ProfileImage = &previous
	f.repo = testutils.NewUserRepo(f.user)
	f.gw.Objects[previous] = []byte("old")

	location, err := f.userService().ReplaceAvatar(context.Background(), f.user.ID, pngFile("new"))
	require.NoError(t, err)
	assert.Contains(t, location, "X-Goog-Signature=")

	stored := f.repo.Get(f.user.ID).ProfileImage
	require.NotNil(t, stored)
	assert.Regexp(t, `^profile-avatars/[a-z0-9]{4}1700000000\.png$`, *stored)
	assert.True(t, strings.HasPrefix(location, testCDN+"/"+*stored+"?"))
	assert.True(t, f.gw.Has(*stored))
	assert.False(t, f.gw.Has(previous))
}

func TestUserService_ReplaceAvatarNestedFolder(t *testing.T) {
	f := newFixture(t, true)
	previous := testCDN + "/uploads/avatars/old1.png"
	f.user.ProfileImage = &previous
	f.repo = testutils.NewUserRepo(f.user)
	f.gw.Objects["uploads/avatars/old1.png"] = []byte("old")
	svc := f.userService()
	svc.AvatarFolder = "uploads/avatars"

	location, err := svc.ReplaceAvatar(context.Background(), f.user.ID, pngFile("new"))
	require.NoError(t, err)
	assert.Regexp(t, `^https://cdn\.test/bucket/uploads/avatars/[a-z0-9]{4}1700000000\.png$`, location)
	assert.False(t, f.gw.Has("uploads/avatars/old1.png"))
	assert.Equal(t, []string{"uploads/avatars/old1.png"}, f.gw.Deleted)
}

func TestUserService_ReplaceAvatarWithoutPrevious(t *testing.T) {
	f := newFixture(t, true)

	_, err := f.userService().ReplaceAvatar(context.Background(), f.user.ID, pngFile("new"))
	require.NoError(t, err)
	assert.Empty(t, f.gw.Deleted)
}

func TestUserService_ReplaceAvatarKeepsOldOnPersistFailure(t *testing.T) {
	f := newFixture(t, true)
	previous := testCDN + "/profile-avatars/old1.png"
	f.user.ProfileImage = &previous
	f.repo = testutils.NewUserRepo(f.user)
	f.gw.Objects["profile-avatars/old1.png"] = []byte("old")

	svc := f.userService()
	svc.Repo = &testutils.FailingUserRepo{UserRepo: f.repo, FailOn: "UpdateProfileImage"}

	_, err := svc.ReplaceAvatar(context.Background(), f.user.ID, pngFile("new"))
	assert.Equal(t, KindService, KindOf(err))
	assert.True(t, f.gw.Has("profile-avatars/old1.png"))
	assert.Empty(t, f.gw.Deleted)
	assert.Equal(t, previous, *f.repo.Get(f.user.ID).ProfileImage)
}

func TestUserService_ReplaceAvatarUploadFailure(t *testing.T) {
	f := newFixture(t, true)
	f.gw.PutErr = errors.New("bucket gone")

	_, err := f.userService().ReplaceAvatar(context.Background(), f.user.ID, pngFile("new"))
	assert.Equal(t, KindService, KindOf(err))
	assert.Nil(t, f.repo.Get(f.user.ID).ProfileImage)
}

func TestUserService_DeleteAccount(t *testing.T) {
	f := newFixture(t, true)
	svc := f.userService()
	ctx := context.Background()
	sid, err := f.sessions.Start(ctx, f.user.ID)
	require.NoError(t, err)

	err = svc.DeleteAccount(ctx, f.user.ID, DeleteAccountInput{Password: "wrong-password"})
	assert.Equal(t, KindAuthorization, KindOf(err))
	assert.Equal(t, "Password is incorrect!", err.(*Error).Message)
	active, _ := f.sessions.Active(ctx, f.user.ID, sid)
	assert.True(t, active)

	require.NoError(t, svc.DeleteAccount(ctx, f.user.ID, DeleteAccountInput{Password: testPassword}))
	active, _ = f.sessions.Active(ctx, f.user.ID, sid)
	assert.False(t, active)
	assert.NotNil(t, f.repo.Get(f.user.ID).DeletedAt)
	assert.Equal(t, []string{f.user.ID}, f.index.Removed)

	_, err = svc.GetProfile(ctx, f.user.ID)
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestUserService_Logout(t *testing.T) {
	f := newFixture(t, true)
	ctx := WithRequestMeta(context.Background(), RequestMeta{IP: "10.0.0.7", UserAgent: "curl/8"})
	sid, err := f.sessions.Start(ctx, f.user.ID)
	require.NoError(t, err)

	require.NoError(t, f.userService().Logout(ctx, f.user.ID))
	active, _ := f.sessions.Active(ctx, f.user.ID, sid)
	assert.False(t, active)

	require.Len(t, f.audit.Logs, 1)
	assert.Equal(t, entity.AuditLogout, f.audit.Logs[0].Action)
	assert.Equal(t, "10.0.0.7", f.audit.Logs[0].IP)
	assert.Equal(t, "curl/8", f.audit.Logs[0].UserAgent)
}

func TestAuditor_FailureIsLogged(t *testing.T) {
	f := newFixture(t, true)
	f.audit.Err = errors.New("db down")

	NewAuditor(f.audit, f.logger).Record(context.Background(), f.user.ID, f.user.Email, entity.AuditLogin, nil)
	require.NotNil(t, f.hook.LastEntry())
	assert.Equal(t, "audit insert failed", f.hook.LastEntry().Message)

	var nilAuditor *Auditor
	assert.NotPanics(t, func() { nilAuditor.Record(context.Background(), "", "", entity.AuditLogin, nil) })
}

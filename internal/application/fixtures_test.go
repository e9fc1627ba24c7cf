package application

import (
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/suraksha-api/internal/domain/entity"
	"github.com/oksasatya/suraksha-api/internal/testutils"
	"github.com/oksasatya/suraksha-api/pkg/helpers"
)

const (
	testFolder   = "profile-avatars"
	testCDN      = "https://cdn.test/bucket"
	testPassword = "Str0ngPass!"
)

var fixedNow = time.Unix(1700000000, 0)

type fixture struct {
	user     *entity.User
	repo     *testutils.UserRepo
	gw       *testutils.Gateway
	sessions *testutils.Sessions
	resets   *testutils.Resets
	mailer   *testutils.Mailer
	audit    *testutils.AuditRepo
	index    *testutils.Indexer
	logger   *logrus.Logger
	hook     *test.Hook
	policy   FailurePolicy
	jwt      *helpers.JWTManager
	signer   *helpers.URLSigner
}

func newFixture(t *testing.T, suppress bool) *fixture {
	t.Helper()
	hash, err := helpers.HashPassword(testPassword)
	require.NoError(t, err)

	u := &entity.User{
		ID:        "11111111-1111-1111-1111-111111111111",
		Username:  "jane",
		Email:     "jane@example.com",
		Password:  hash,
		Firstname: "Jane",
		Lastname:  "Doe",
	}
	logger, hook := test.NewNullLogger()
	return &fixture{
		user:     u,
		repo:     testutils.NewUserRepo(u),
		gw:       testutils.NewGateway(testCDN),
		sessions: testutils.NewSessions(),
		resets:   testutils.NewResets(),
		mailer:   &testutils.Mailer{},
		audit:    &testutils.AuditRepo{},
		index:    testutils.NewIndexer(),
		logger:   logger,
		hook:     hook,
		policy:   FailurePolicy{Suppress: suppress, Logger: logger},
		jwt:      helpers.NewJWTManager("test-secret", time.Hour),
		signer:   helpers.NewURLSigner("http://api.test", "signing-key"),
	}
}

func (f *fixture) uploader(keepExt bool) *AvatarUploader {
	up := NewAvatarUploader(f.gw, keepExt, f.policy)
	up.now = func() time.Time { return fixedNow }
	return up
}

func (f *fixture) verification() *VerificationSender {
	return NewVerificationSender(f.mailer, f.signer, time.Hour)
}

func (f *fixture) userService() *UserService {
	svc := NewUserService(f.repo, f.sessions, f.uploader(true), NewAvatarRemover(f.gw, f.logger), f.verification(), f.policy, f.logger, testFolder)
	svc.Audit = NewAuditor(f.audit, f.logger)
	svc.Directory = NewDirectory(f.index, f.logger)
	return svc
}

func (f *fixture) authService() *AuthService {
	svc := NewAuthService(f.repo, f.sessions, f.resets, f.jwt, f.verification(), f.mailer, "http://app.test/reset-password", f.policy, f.logger)
	svc.Audit = NewAuditor(f.audit, f.logger)
	svc.Directory = NewDirectory(f.index, f.logger)
	return svc
}

package router

import (
	"github.com/oksasatya/suraksha-api/internal/application"
	"github.com/oksasatya/suraksha-api/internal/container"
	repo "github.com/oksasatya/suraksha-api/internal/domain/repository"
	pginfra "github.com/oksasatya/suraksha-api/internal/infrastructure/postgres"
	"github.com/oksasatya/suraksha-api/internal/infrastructure/session"
	handlers "github.com/oksasatya/suraksha-api/internal/interface/http"
	"github.com/oksasatya/suraksha-api/internal/interface/middleware"
	"github.com/oksasatya/suraksha-api/internal/router/modules"
)

type moduleDeps struct {
	Sessions   repo.SessionStore
	Auth       *handlers.AuthHandler
	Users      *handlers.UserHandler
	Newsletter *handlers.NewsletterHandler
}

func buildDeps() moduleDeps {
	cfg := container.GetConfig()
	logger := container.GetLogger()
	rdb := container.GetRedis()
	store := container.GetStorage()

	policy := application.FailurePolicy{Suppress: cfg.SuppressDownstreamErrors, Logger: logger}
	users := pginfra.NewUserRepository(container.GetPGPool())
	audit := application.NewAuditor(pginfra.NewAuditRepository(container.GetPGPool()), logger)
	directory := application.NewDirectory(container.GetIndexer(), logger)
	sessions := session.NewRedisSessionStore(rdb, cfg.AccessTTL)
	resets := session.NewRedisResetTokenStore(rdb, cfg.ResetTokenTTL)
	verification := application.NewVerificationSender(container.GetMailer(), container.GetSigner(), cfg.VerifyLinkTTL)

	userSvc := application.NewUserService(
		users,
		sessions,
		application.NewAvatarUploader(store, cfg.AvatarKeepExtension(), policy),
		application.NewAvatarRemover(store, logger),
		verification,
		policy,
		logger,
		cfg.AvatarFolder,
	)
	userSvc.Audit = audit
	userSvc.Directory = directory

	authSvc := application.NewAuthService(
		users,
		sessions,
		resets,
		container.GetJWT(),
		verification,
		container.GetMailer(),
		cfg.ResetPasswordURL,
		policy,
		logger,
	)
	authSvc.Audit = audit
	authSvc.Directory = directory

	newsletterSvc := application.NewNewsletterService(container.GetNewsletterList(), policy, logger)

	res := handlers.Serializer{Store: store, Logger: logger}
	errs := handlers.NewErrors(policy)

	return moduleDeps{
		Sessions:   sessions,
		Auth:       handlers.NewAuthHandler(authSvc, userSvc, res, errs),
		Users:      handlers.NewUserHandler(userSvc, res, errs, cfg.AvatarMaxBytes),
		Newsletter: handlers.NewNewsletterHandler(newsletterSvc, errs),
	}
}

// InitModules initializes all application modules and registers them with the router registry
// This function should be called once during application startup to wire up all modules
func InitModules(r *Registry) {
	cfg := container.GetConfig()
	deps := buildDeps()
	limits := modules.Limits{
		Redis: container.GetRedis(),
		Allow: middleware.BypassPrivate(cfg.RateLimitBypassPrivate),
	}

	r.Add(modules.NewAuthModule(deps.Auth, deps.Sessions, container.GetJWT(), container.GetSigner(), limits))
	r.Add(modules.NewUserModule(deps.Users, deps.Sessions, container.GetJWT(), limits))
	r.Add(modules.NewNewsletterModule(deps.Newsletter))
	if cfg.DebugMetricsEnabled {
		r.Add(modules.NewDebugModule(limits))
	}
}

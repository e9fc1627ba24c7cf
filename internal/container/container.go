package container

import (
	gcs "cloud.google.com/go/storage"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/suraksha-api/config"
	"github.com/oksasatya/suraksha-api/internal/application"
	"github.com/oksasatya/suraksha-api/internal/domain/storage"
	"github.com/oksasatya/suraksha-api/pkg/helpers"
	"github.com/oksasatya/suraksha-api/pkg/mailer"
)

// app-level container to share constructed components across packages
// Router can auto-wire modules from these singletons. Optional backends
// (queue, search, mailing list) stay nil when not configured.

var (
	cfg         *config.Config
	logger      *logrus.Logger
	pgPool      *pgxpool.Pool
	redisClient *redis.Client
	gcsClient   *gcs.Client
	gateway     storage.Gateway

	jwtManager *helpers.JWTManager
	signer     *helpers.URLSigner

	mailgunClient  *mailer.Mailgun
	rabbitPub      *helpers.RabbitPublisher
	esClient       *elasticsearch.Client
	accountMailer  application.Mailer
	userIndexer    application.UserIndexer
	newsletterList application.NewsletterList
)

func SetConfig(c *config.Config)              { cfg = c }
func GetConfig() *config.Config               { return cfg }
func SetLogger(l *logrus.Logger)              { logger = l }
func GetLogger() *logrus.Logger               { return logger }
func SetPGPool(p *pgxpool.Pool)               { pgPool = p }
func GetPGPool() *pgxpool.Pool                { return pgPool }
func SetRedis(r *redis.Client)                { redisClient = r }
func GetRedis() *redis.Client                 { return redisClient }
func SetGCS(s *gcs.Client)                    { gcsClient = s }
func GetGCS() *gcs.Client                     { return gcsClient }
func SetStorage(g storage.Gateway)            { gateway = g }
func GetStorage() storage.Gateway             { return gateway }
func SetJWT(m *helpers.JWTManager)            { jwtManager = m }
func SetSigner(s *helpers.URLSigner)          { signer = s }
func SetMailgun(m *mailer.Mailgun)            { mailgunClient = m }
func GetMailgun() *mailer.Mailgun             { return mailgunClient }
func SetRabbitPub(p *helpers.RabbitPublisher) { rabbitPub = p }
func GetRabbitPub() *helpers.RabbitPublisher  { return rabbitPub }
func SetES(c *elasticsearch.Client)           { esClient = c }
func GetES() *elasticsearch.Client            { return esClient }

// GetJWT falls back to a manager built from the loaded config.
func GetJWT() *helpers.JWTManager {
	if jwtManager == nil && cfg != nil {
		jwtManager = helpers.NewJWTManager(cfg.JWTAccessSecret, cfg.AccessTTL)
	}
	return jwtManager
}

// GetSigner falls back to a signer keyed from the loaded config.
func GetSigner() *helpers.URLSigner {
	if signer == nil && cfg != nil {
		signer = helpers.NewURLSigner(cfg.AppURL, cfg.SigningKey)
	}
	return signer
}

// Optional backends; set only when configured.

func SetMailer(m application.Mailer)                 { accountMailer = m }
func GetMailer() application.Mailer                  { return accountMailer }
func SetIndexer(i application.UserIndexer)           { userIndexer = i }
func GetIndexer() application.UserIndexer            { return userIndexer }
func SetNewsletterList(l application.NewsletterList) { newsletterList = l }
func GetNewsletterList() application.NewsletterList  { return newsletterList }

package bootstrap

import (
	"context"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/obraplan/obraplan/internal/config"
	"github.com/obraplan/obraplan/internal/infra/blob"
	"github.com/obraplan/obraplan/internal/infra/cache"
	"github.com/obraplan/obraplan/internal/infra/db"
	"github.com/obraplan/obraplan/internal/infra/logger"
	"github.com/obraplan/obraplan/internal/infra/oauth"
	"github.com/obraplan/obraplan/internal/infra/queue"
	"github.com/obraplan/obraplan/internal/jobs"
	"github.com/obraplan/obraplan/internal/modules/handler"
	"github.com/obraplan/obraplan/internal/modules/model"
	"github.com/obraplan/obraplan/internal/modules/repo"
	"github.com/obraplan/obraplan/internal/modules/service"
	"github.com/obraplan/obraplan/internal/pkg/tokens"
)

func BuildContainer() *do.Injector {
	inj := do.New()

	// config
	do.Provide(inj, func(i *do.Injector) (*config.Config, error) {
		return config.Load()
	})

	// logger
	do.Provide(inj, func(i *do.Injector) (*zap.Logger, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return logger.New(cfg.Log.Level)
	})

	// DB
	do.Provide(inj, func(i *do.Injector) (*gorm.DB, error) {
		cfg := do.MustInvoke[*config.Config](i)
		d, err := db.New(cfg)
		if err != nil {
			return nil, err
		}
		// [optional] auto migrate
		if cfg.Database.AutoMigrate {
			_ = d.AutoMigrate(
				&model.User{},
				&model.Product{},
				&model.ProductStep{},
				&model.Project{},
				&model.ProjectStepSchedule{},
				&model.PasswordResetToken{},
			)
		}
		return d, nil
	})

	// Redis
	do.Provide(inj, func(i *do.Injector) (*redis.Client, error) {
		cfg := do.MustInvoke[*config.Config](i)
		rdb := cache.New(cfg)
		return rdb, nil
	})

	// RabbitMQ Connection
	do.Provide(inj, func(i *do.Injector) (*amqp.Connection, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return amqp.Dial(cfg.RabbitMQ.URL)
	})

	// Mail queue publisher
	do.Provide(inj, func(i *do.Injector) (*queue.Publisher, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return queue.NewPublisher(
			do.MustInvoke[*amqp.Connection](i),
			cfg.RabbitMQ.MailQueue,
			do.MustInvoke[*zap.Logger](i),
		)
	})

	// S3
	do.Provide(inj, func(i *do.Injector) (*blob.S3Deps, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return blob.NewS3(context.Background(), cfg)
	})
	// get presign expire duration
	do.Provide(inj, func(i *do.Injector) (func() time.Duration, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return func() time.Duration {
			if cfg.S3.PresignExpireSec <= 0 {
				return 15 * time.Minute
			}
			return time.Duration(cfg.S3.PresignExpireSec) * time.Second
		}, nil
	})

	// Token issuer
	do.Provide(inj, func(i *do.Injector) (*tokens.Issuer, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return tokens.NewIssuer(
			cfg.Auth.AccessSecret,
			cfg.Auth.RefreshSecret,
			time.Duration(cfg.Auth.AccessExpireMin)*time.Minute,
			time.Duration(cfg.Auth.RefreshExpireHour)*time.Hour,
		), nil
	})

	// Google OAuth
	do.Provide(inj, func(i *do.Injector) (*oauth.Google, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return oauth.NewGoogle(context.Background(), cfg)
	})

	// Repo
	do.Provide(inj, func(i *do.Injector) (repo.UserRepo, error) {
		return repo.NewUserRepo(do.MustInvoke[*gorm.DB](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (repo.ProductRepo, error) {
		return repo.NewProductRepo(do.MustInvoke[*gorm.DB](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (repo.ProjectRepo, error) {
		return repo.NewProjectRepo(do.MustInvoke[*gorm.DB](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (repo.ResetTokenRepo, error) {
		return repo.NewResetTokenRepo(do.MustInvoke[*gorm.DB](i)), nil
	})

	// Service
	do.Provide(inj, func(i *do.Injector) (service.UserService, error) {
		return service.NewUserService(
			do.MustInvoke[repo.UserRepo](i),
			do.MustInvoke[*blob.S3Deps](i),
			do.MustInvoke[func() time.Duration](i),
		), nil
	})
	do.Provide(inj, func(i *do.Injector) (service.ProductService, error) {
		return service.NewProductService(do.MustInvoke[repo.ProductRepo](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (service.ProjectService, error) {
		return service.NewProjectService(
			do.MustInvoke[repo.ProjectRepo](i),
			do.MustInvoke[repo.ProductRepo](i),
		), nil
	})
	do.Provide(inj, func(i *do.Injector) (service.AuthService, error) {
		return service.NewAuthService(
			do.MustInvoke[service.UserService](i),
			do.MustInvoke[*tokens.Issuer](i),
			do.MustInvoke[*redis.Client](i),
			do.MustInvoke[repo.ResetTokenRepo](i),
			do.MustInvoke[*queue.Publisher](i),
			do.MustInvoke[*oauth.Google](i),
			do.MustInvoke[*config.Config](i),
			do.MustInvoke[*zap.Logger](i),
		), nil
	})

	// Jobs
	do.Provide(inj, func(i *do.Injector) (*jobs.Cleanup, error) {
		return jobs.NewCleanup(
			do.MustInvoke[*config.Config](i),
			do.MustInvoke[repo.ResetTokenRepo](i),
			do.MustInvoke[*zap.Logger](i),
		)
	})

	// Handler
	do.Provide(inj, func(i *do.Injector) (*handler.AuthHandler, error) {
		return handler.NewAuthHandler(do.MustInvoke[service.AuthService](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (*handler.UserHandler, error) {
		return handler.NewUserHandler(do.MustInvoke[service.UserService](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (*handler.ProductHandler, error) {
		return handler.NewProductHandler(do.MustInvoke[service.ProductService](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (*handler.ProjectHandler, error) {
		return handler.NewProjectHandler(do.MustInvoke[service.ProjectService](i)), nil
	})

	return inj
}

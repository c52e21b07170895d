package router

import (
	"github.com/videotube/videotube-api/internal/application"
	"github.com/videotube/videotube-api/internal/container"
	pginfra "github.com/videotube/videotube-api/internal/infrastructure/postgres"
	handlers "github.com/videotube/videotube-api/internal/interface/http"
	"github.com/videotube/videotube-api/internal/router/modules"
)

// InitModules builds repositories, services and handlers from the container
// singletons and registers all feature modules. Called once during startup.
func InitModules(r *Registry) {
	cfg := container.GetConfig()
	pool := container.GetPGPool()

	users := pginfra.NewUserRepository(pool)
	subs := pginfra.NewSubscriptionRepository(pool)
	videos := pginfra.NewVideoRepository(pool)

	userSvc := application.NewUserService(
		users,
		container.GetJWT(),
		container.GetUploader(),
		container.GetLogger(),
		container.GetRabbitPub(),
		container.GetES(),
		cfg.ESChannelsIndex,
		cfg.MailSendEnabled,
	)
	channelSvc := application.NewChannelService(
		users,
		subs,
		videos,
		container.GetRedis(),
		container.GetES(),
		cfg.ESChannelsIndex,
		container.GetLogger(),
	)

	userHandler := handlers.NewUserHandler(userSvc, container.GetLogger(), cfg.CookieDomain, cfg.CookieSecure())
	channelHandler := handlers.NewChannelHandler(channelSvc, container.GetLogger())

	r.Add(modules.NewUserModule(userHandler, users))
	r.Add(modules.NewChannelModule(channelHandler, users))
	r.Add(modules.NewDebugModule())
}

//go:build wireinject
// +build wireinject

package di

import (
	"github.com/google/wire"

	"pawstogether/internal/adoption"
	"pawstogether/internal/chat/handler"
	"pawstogether/internal/chat/repository"
	"pawstogether/internal/chat/service"
	"pawstogether/internal/config"
	"pawstogether/internal/feed"
	"pawstogether/internal/media"
	"pawstogether/internal/user"
	"pawstogether/internal/ws"
)

// InitializeChatService wires the chat stack: Mongo fan-out repository,
// MySQL-backed display-name resolution, HTTP handler and websocket surface.
func InitializeChatService() (*ChatApp, func(), error) {
	wire.Build(
		config.Load,
		ProvideMongoConnection,
		ProvideMySQLConnection,
		user.NewUserRepository,
		user.NewRatingRepository,
		user.NewUserService,
		ProvideChatNameResolver,
		repository.NewChatRepository,
		service.NewChatService,
		handler.NewChatHandler,
		ws.NewChatWebSocketHandler,
		wire.Struct(new(ChatApp), "*"),
	)
	return &ChatApp{}, nil, nil
}

// InitializeFeedService wires the feed stack: posts repository, GridFS media
// uploads and display-name resolution.
func InitializeFeedService() (*FeedApp, func(), error) {
	wire.Build(
		config.Load,
		ProvideMongoConnection,
		ProvideMySQLConnection,
		user.NewUserRepository,
		user.NewRatingRepository,
		user.NewUserService,
		ProvideFeedNameResolver,
		ProvideAdoptionNameResolver,
		ProvideMediaStorage,
		ProvidePosts,
		ProvideFeedMediaUploader,
		feed.NewFeedService,
		ProvideFeedUsecase,
		feed.NewFeedHandlers,
		ProvidePets,
		ProvideAdoptionMediaUploader,
		adoption.NewAdoptionService,
		ProvideAdoptionUsecase,
		adoption.NewAdoptionHandlers,
		wire.Struct(new(FeedApp), "*"),
	)
	return &FeedApp{}, nil, nil
}

// InitializeUserService wires accounts, auth and ratings.
func InitializeUserService() (*UserApp, func(), error) {
	wire.Build(
		config.Load,
		ProvideMySQLConnection,
		user.NewUserRepository,
		user.NewRatingRepository,
		user.NewUserService,
		user.NewUserHandlers,
		wire.Struct(new(UserApp), "*"),
	)
	return &UserApp{}, nil, nil
}

// InitializeMediaServer wires the GridFS download surface.
func InitializeMediaServer() (*MediaApp, func(), error) {
	wire.Build(
		config.Load,
		ProvideMongoConnection,
		ProvideMediaStorage,
		media.NewHTTPServer,
		wire.Struct(new(MediaApp), "*"),
	)
	return &MediaApp{}, nil, nil
}

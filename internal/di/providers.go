package di

import (
	"context"
	"log"
	"time"

	"gorm.io/gorm"

	"pawstogether/internal/adoption"
	"pawstogether/internal/chat/handler"
	"pawstogether/internal/chat/service"
	"pawstogether/internal/config"
	"pawstogether/internal/dbmongo"
	"pawstogether/internal/dbmysql"
	"pawstogether/internal/feed"
	"pawstogether/internal/media"
	"pawstogether/internal/user"
	"pawstogether/internal/ws"
)

type ChatApp struct {
	Config   *config.Config
	Mongo    *dbmongo.MongoClient
	DB       *gorm.DB
	Service  service.ChatService
	Handler  *handler.ChatHandler
	WS       *ws.ChatWebSocketHandler
	UserSvc  user.UserService
}

type FeedApp struct {
	Config           *config.Config
	Mongo            *dbmongo.MongoClient
	DB               *gorm.DB
	FeedHandlers     *feed.FeedHandlers
	AdoptionHandlers *adoption.AdoptionHandlers
}

type UserApp struct {
	Config   *config.Config
	DB       *gorm.DB
	Service  user.UserService
	Handlers *user.UserHandlers
}

type MediaApp struct {
	Config *config.Config
	Mongo  *dbmongo.MongoClient
	Server *media.HTTPServer
}

// ProvideMongoConnection opens the document store; the cleanup disconnects
// with a short grace period.
func ProvideMongoConnection(cfg *config.Config) (*dbmongo.MongoClient, func(), error) {
	mc, err := dbmongo.NewMongoConnection(cfg)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := mc.Close(ctx); err != nil {
			log.Printf("mongo disconnect failed: %v", err)
		}
	}
	return mc, cleanup, nil
}

func ProvideMySQLConnection(cfg *config.Config) (*gorm.DB, error) {
	return dbmysql.NewMySQL(cfg)
}

func ProvideMediaStorage(cfg *config.Config, mc *dbmongo.MongoClient) *dbmongo.MediaStorage {
	return dbmongo.NewMediaStorage(mc, cfg.Media.BaseURL)
}

// The user service backs every display-name lookup; these adapters satisfy
// each consumer's local interface.
func ProvideChatNameResolver(svc user.UserService) service.NameResolver { return svc }
func ProvideFeedNameResolver(svc user.UserService) feed.NameResolver    { return svc }
func ProvideAdoptionNameResolver(svc user.UserService) adoption.NameResolver {
	return svc
}

func ProvidePosts(mc *dbmongo.MongoClient) feed.Posts {
	return feed.NewFeedRepository(mc)
}

func ProvideFeedMediaUploader(ms *dbmongo.MediaStorage) feed.MediaUploader {
	return ms
}

func ProvideFeedUsecase(svc *feed.FeedService) feed.FeedUsecase {
	return svc
}

func ProvidePets(mc *dbmongo.MongoClient) adoption.Pets {
	return adoption.NewAdoptionRepository(mc)
}

func ProvideAdoptionMediaUploader(ms *dbmongo.MediaStorage) adoption.MediaUploader {
	return ms
}

func ProvideAdoptionUsecase(svc *adoption.AdoptionService) adoption.AdoptionUsecase {
	return svc
}

package dependency

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/coursehive/course-auction/internal/auction"
	"github.com/coursehive/course-auction/internal/cache"
	"github.com/coursehive/course-auction/internal/certificate"
	"github.com/coursehive/course-auction/internal/db"
	"github.com/coursehive/course-auction/internal/handlers"
	"github.com/coursehive/course-auction/internal/repository"
	"github.com/coursehive/course-auction/internal/service"
	"github.com/coursehive/course-auction/internal/token"
)

// Dependencies holds all the initialized instances required by the application.
type Dependencies struct {
	Services       *service.Services
	Db             *db.DB
	Cache          cache.Cacher
	Engine         *auction.Engine
	AccountHandler *handlers.AccountHandler
	AuctionHandler *handlers.AuctionHandler
	TokenHandler   *handlers.TokenHandler
	CourseHandler  *handlers.CourseHandler
}

// NewDependencies connects to DB and redis, builds the settlement engine and
// wires up all services and handlers.
func NewDependencies(ctx context.Context, dbDsn string) (*Dependencies, error) {

	database, err := db.NewDB(ctx, dbDsn)
	if err != nil {
		slog.Error("[DB] connection failed -> ", "error", err.Error())
		return nil, err
	}

	userRepo := repository.NewUserrepo(database)
	auctionRepo := repository.NewAuctionrepo(database)

	redisCache, err := cache.NewRedisClient(ctx)
	if err != nil {
		slog.Error("[Cache] failed to initialize ->", "error", err.Error())
		return nil, err
	}

	if err := redisCache.Ping(ctx); err != nil {
		slog.Error("[Cache] Unable to ping ->", "error", err.Error())
	} else {
		slog.Info("[Cache] connected")
	}

	// The token ledger, certificate registry and settlement engine are
	// in-process; Postgres only journals what the engine decides.
	tokenLedger := token.NewMemLedger()
	registry := certificate.NewMemRegistry()
	vaultAccount := uuid.New()
	vault := auction.NewVault(tokenLedger, vaultAccount)
	engine := auction.NewEngine(auction.NewLedger(), vault, registry)

	services, err := service.NewServices(userRepo, auctionRepo, redisCache, engine, tokenLedger, registry, vaultAccount)
	if err != nil {
		slog.Error("[Service] failed to initialize -> ", "error", err.Error())
		return nil, err
	}

	accountHandler, err := handlers.NewAccountHandler(services.AuthService)
	if err != nil {
		slog.Error("[Account Handler] failed to initialize -> ", "error", err.Error())
		return nil, err
	}

	auctionHandler, err := handlers.NewAuctionHandler(services.AuctionService)
	if err != nil {
		slog.Error("[Auction Handler] failed to initialize -> ", "error", err.Error())
		return nil, err
	}

	tokenHandler, err := handlers.NewTokenHandler(services.TokenService)
	if err != nil {
		slog.Error("[Token Handler] failed to initialize -> ", "error", err.Error())
		return nil, err
	}

	courseHandler, err := handlers.NewCourseHandler(services.CourseService)
	if err != nil {
		slog.Error("[Course Handler] failed to initialize -> ", "error", err.Error())
		return nil, err
	}

	return &Dependencies{
		Services:       services,
		Db:             database,
		Cache:          redisCache,
		Engine:         engine,
		AccountHandler: accountHandler,
		AuctionHandler: auctionHandler,
		TokenHandler:   tokenHandler,
		CourseHandler:  courseHandler,
	}, nil
}

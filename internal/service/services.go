package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/coursehive/course-auction/internal/auction"
	"github.com/coursehive/course-auction/internal/cache"
	"github.com/coursehive/course-auction/internal/certificate"
	"github.com/coursehive/course-auction/internal/model"
	"github.com/coursehive/course-auction/internal/repository"
	"github.com/coursehive/course-auction/internal/token"
)

// AccountStore is the persistence surface the auth service needs.
type AccountStore interface {
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	CreateUser(ctx context.Context, email, username, password string) (uuid.UUID, error)
}

// AuctionJournal is the durable history surface behind the auction service.
type AuctionJournal interface {
	InsertAuction(ctx context.Context, a *auction.Auction) error
	UpdateHighBid(ctx context.Context, auctionID uuid.UUID, hb auction.HighBid) error
	UpdateStatus(ctx context.Context, auctionID uuid.UUID, status auction.Status) error
	InsertBid(ctx context.Context, rec repository.BidRecord) error
	ListBids(ctx context.Context, auctionID uuid.UUID) ([]repository.BidRecord, error)
}

type Services struct {
	AuthService    AuthServicer
	AuctionService AuctionServicer
	TokenService   TokenServicer
	CourseService  CourseServicer
}

func NewServices(
	accounts AccountStore,
	journal AuctionJournal,
	c cache.Cacher,
	engine *auction.Engine,
	ledger *token.MemLedger,
	registry *certificate.MemRegistry,
	vaultAccount uuid.UUID,
) (*Services, error) {
	authService, err := NewAuthService(accounts)
	if err != nil {
		return nil, err
	}

	return &Services{
		AuthService:    authService,
		AuctionService: NewAuctionService(engine, journal, c),
		TokenService:   NewTokenService(ledger, vaultAccount),
		CourseService:  NewCourseService(registry),
	}, nil
}

package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	authmw "github.com/coursehive/course-auction/internal/middleware"
)

func (s *Server) RegisterRoutes(mux *chi.Mux) {
	mux.Get("/api/v1/health", healthCheck)

	mux.Route("/api/v1/auth", func(r chi.Router) {
		r.Post("/register", s.Deps.AccountHandler.RegisterAccount)
		r.Post("/login", s.Deps.AccountHandler.LoginAccount)
		r.Post("/refresh", s.Deps.AccountHandler.RefreshToken)
		r.Post("/logout", s.Deps.AccountHandler.LogoutAccount)
	})

	mux.Route("/api/v1", func(r chi.Router) {
		// public reads
		r.Get("/auctions", s.Deps.AuctionHandler.ListAuctions)
		r.Get("/auctions/{auctionId}", s.Deps.AuctionHandler.GetAuction)
		r.Get("/auctions/{auctionId}/bids", s.Deps.AuctionHandler.BidHistory)
		r.Get("/courses/{courseId}/owner", s.Deps.CourseHandler.CourseOwner)

		// everything below requires a valid access token
		r.Group(func(r chi.Router) {
			r.Use(authmw.AuthMiddleware(s.Deps.Services.AuthService))

			r.Get("/users/me", s.Deps.AccountHandler.Profile)

			r.Post("/courses", s.Deps.CourseHandler.CreateCourse)

			r.Post("/auctions", s.Deps.AuctionHandler.CreateAuction)
			r.Post("/auctions/{auctionId}/bids", s.Deps.AuctionHandler.PlaceBid)
			r.Post("/auctions/{auctionId}/finalize", s.Deps.AuctionHandler.FinalizeAuction)
			r.Post("/auctions/{auctionId}/withdraw", s.Deps.AuctionHandler.Withdraw)

			r.Post("/tokens/approve", s.Deps.TokenHandler.Approve)
			r.Get("/tokens/balance", s.Deps.TokenHandler.Balance)
			r.Post("/tokens/faucet", s.Deps.TokenHandler.Faucet)
		})
	})
}

func healthCheck(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{
		"message": "ok",
		"time":    time.Now().Format(time.RFC3339),
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	json.NewEncoder(w).Encode(resp)
}

package routes

import (
	"github.com/courtside/badminton-league/handlers"
	"github.com/courtside/badminton-league/middleware"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"
)

// SetupRoutes wires every HTTP endpoint onto the router. Read endpoints are
// public; mutations require a Bearer token, except the scoring endpoints
// which also accept a tournament scorer PIN from anonymous callers.
func SetupRoutes(
	router *chi.Mux,
	jwtSecret []byte,
	authHandler *handlers.AuthHandler,
	tournamentHandler *handlers.TournamentHandler,
	teamHandler *handlers.TeamHandler,
	playerHandler *handlers.PlayerHandler,
	matchHandler *handlers.MatchHandler,
	standingsHandler *handlers.StandingsHandler,
	walletHandler *handlers.WalletHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders: []string{"Link"},
		MaxAge:         300,
	}))

	authenticate := middleware.Authenticate(jwtSecret)
	authenticateOptional := middleware.AuthenticateOptional(jwtSecret)

	router.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	router.Post("/auth/signup", authHandler.RegisterHandler)
	router.Post("/auth/signin", authHandler.LoginHandler)

	router.Route("/tournaments", func(r chi.Router) {
		r.Get("/", tournamentHandler.ListHandler)
		r.Get("/{tournamentID}", tournamentHandler.GetHandler)
		r.Get("/{tournamentID}/standings", standingsHandler.GetStandingsHandler)
		r.Get("/{tournamentID}/teams", teamHandler.ListHandler)
		r.Get("/{tournamentID}/players", playerHandler.ListPoolHandler)
		r.Get("/{tournamentID}/matches", matchHandler.ListMatchesHandler)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)

			r.Post("/", tournamentHandler.CreateHandler)
			r.Patch("/{tournamentID}/lock", tournamentHandler.SetLockedHandler)
			r.Put("/{tournamentID}/scorer-pin", tournamentHandler.SetScorerPINHandler)
			r.Put("/{tournamentID}/criteria", tournamentHandler.SetCriteriaHandler)
			r.Patch("/{tournamentID}/status", tournamentHandler.UpdateStatusHandler)

			r.Post("/{tournamentID}/teams", teamHandler.CreateHandler)
			r.Post("/{tournamentID}/players", playerHandler.AddToPoolHandler)
			r.Post("/{tournamentID}/schedule", matchHandler.GenerateScheduleHandler)
		})
	})

	router.Route("/teams", func(r chi.Router) {
		r.Get("/{teamID}", teamHandler.GetHandler)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)

			r.Delete("/{teamID}", teamHandler.DeleteHandler)
			r.Post("/{teamID}/members", teamHandler.AddMemberHandler)
			r.Delete("/{teamID}/members/{playerID}", teamHandler.RemoveMemberHandler)
			r.Put("/{teamID}/logo", teamHandler.UploadLogoHandler)
		})
	})

	router.With(authenticate).Delete("/players/{playerID}", playerHandler.RemoveFromPoolHandler)

	router.Route("/matches", func(r chi.Router) {
		r.Get("/{matchID}", matchHandler.GetMatchHandler)

		r.Group(func(r chi.Router) {
			r.Use(authenticateOptional)

			r.Post("/{matchID}/start", matchHandler.StartMatchHandler)
			r.Put("/{matchID}/score", matchHandler.UpdateScoreHandler)
			r.Post("/{matchID}/finalize", matchHandler.FinalizeHandler)
		})
	})

	router.With(authenticate).Get("/me/wallet", walletHandler.GetMyWalletHandler)

	router.Get("/ws/tournaments/{tournamentID}", webSocketHandler.ServeWs)
}

package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/malaebhub/malaeb-server/handlers"
	"github.com/malaebhub/malaeb-server/middleware"
)

// SetupRoutes wires the HTTP surface. Every business route requires an
// authenticated caller; the token subject is the acting user.
func SetupRoutes(
	router *chi.Mux,
	jwtSecret string,
	userHandler *handlers.UserHandler,
	teamHandler *handlers.TeamHandler,
	matchHandler *handlers.MatchHandler,
	tournamentHandler *handlers.TournamentHandler,
	notificationHandler *handlers.NotificationHandler,
) {
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	router.Group(func(r chi.Router) {
		r.Use(middleware.Authenticate(jwtSecret))

		r.Route("/users", func(r chi.Router) {
			r.Post("/", userHandler.Create)
			r.Patch("/me", userHandler.Update)
			r.Put("/me/account-type", userHandler.ChangeAccountType)
			r.Post("/me/avatar", userHandler.UploadAvatar)
		})

		r.Route("/teams", func(r chi.Router) {
			r.Post("/", teamHandler.Create)
			r.Patch("/{teamID}", teamHandler.Update)
			r.Post("/{teamID}/logo", teamHandler.UploadLogo)
			r.Post("/{teamID}/change-coach", teamHandler.ChangeCoach)
			r.Post("/{teamID}/leave", teamHandler.Leave)
		})

		r.Route("/matches", func(r chi.Router) {
			r.Post("/{matchID}", matchHandler.Update)
			r.Post("/{matchID}/cancel", matchHandler.Cancel)
		})

		r.Route("/tournaments", func(r chi.Router) {
			r.Post("/{tournamentID}/leave-team", tournamentHandler.LeaveTeam)
			r.Post("/{tournamentID}/leave-referee", tournamentHandler.LeaveReferee)
			r.Delete("/{tournamentID}", tournamentHandler.Remove)
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", notificationHandler.List)
			r.Post("/{notificationID}/respond", notificationHandler.Respond)
		})
	})
}

package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/Dosada05/scoreboard/docs"
	"github.com/Dosada05/scoreboard/handlers"
	"github.com/Dosada05/scoreboard/middleware"
)

// SetupRoutes mounts the API on router. Reads are public; every mutation
// goes through Authenticate and RequireAdmin.
func SetupRoutes(
	router *chi.Mux,
	jwtSecret string,
	allowedOrigins []string,
	authHandler *handlers.AuthHandler,
	matchHandler *handlers.MatchHandler,
	playerHandler *handlers.PlayerHandler,
	slideHandler *handlers.SlideHandler,
	dashboardHandler *handlers.DashboardHandler,
	preferenceHandler *handlers.PreferenceHandler,
	transferHandler *handlers.TransferHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Location", "Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// websocket соединения живут дольше любого таймаута запроса
	router.Get("/ws", webSocketHandler.ServeWs)

	router.Group(func(r chi.Router) {
		r.Use(chiMiddleware.Timeout(30 * time.Second))

		r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ok"))
		})
		r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

		r.Post("/auth/login", authHandler.Login)
		r.Get("/home", dashboardHandler.Home)

		r.Get("/matches", matchHandler.ListMatches)
		r.Get("/matches/{matchID}", matchHandler.GetMatch)
		r.Get("/standings", playerHandler.Standings)
		r.Get("/standings/groups", playerHandler.GroupStandings)
		r.Get("/teams/{teamName}", playerHandler.GetTeam)
		r.Get("/players", playerHandler.ListPlayers)
		r.Get("/players/{playerName}", playerHandler.GetPlayer)
		r.Get("/slides", slideHandler.ListSlides)

		r.Get("/preferences/{clientID}", preferenceHandler.GetPreferences)
		r.Put("/preferences/{clientID}", preferenceHandler.SavePreferences)
		r.Delete("/preferences/{clientID}", preferenceHandler.ResetPreferences)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(jwtSecret))
			r.Get("/auth/me", authHandler.Me)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAdmin)

				r.Post("/matches", matchHandler.CreateMatch)
				r.Put("/matches/{matchID}", matchHandler.UpdateMatch)
				r.Delete("/matches/{matchID}", matchHandler.DeleteMatch)
				r.Post("/matches/{matchID}/live", matchHandler.GoLive)
				r.Post("/matches/{matchID}/stop", matchHandler.Stop)
				r.Post("/matches/{matchID}/complete", matchHandler.Complete)
				r.Post("/matches/{matchID}/score", matchHandler.ToggleScore)
				r.Post("/matches/{matchID}/teams/{side}/photo", matchHandler.UploadTeamPhoto)
				r.Post("/groups/{group}/fixtures", matchHandler.GenerateFixtures)
				r.Post("/players/{playerName}/photo", playerHandler.UploadPlayerPhoto)

				r.Post("/slides", slideHandler.CreateSlide)
				r.Put("/slides/order", slideHandler.ReorderSlides)
				r.Put("/slides/{slideID}", slideHandler.UpdateSlide)
				r.Delete("/slides/{slideID}", slideHandler.DeleteSlide)
				r.Post("/slides/{slideID}/image", slideHandler.UploadSlideImage)

				r.Get("/export", transferHandler.Export)
				r.Post("/import", transferHandler.Import)
			})
		})
	})
}

package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"linguahub/internal/app"
	"linguahub/internal/domain"
	"linguahub/internal/identity"
)

// Server owns the HTTP surface: the REST API, the websocket endpoint
// and the operational routes.
type Server struct {
	chat          *app.ChatService
	notifications *app.NotificationService
	tests         *app.TestService
	doubts        *app.DoubtService
	progress      *app.ProgressService
	ws            *WSHandler
	verifier      identity.Verifier
	limiter       *RateLimiter
}

func NewServer(
	chat *app.ChatService,
	notifications *app.NotificationService,
	tests *app.TestService,
	doubts *app.DoubtService,
	progress *app.ProgressService,
	ws *WSHandler,
	verifier identity.Verifier,
	limiter *RateLimiter,
) *Server {
	return &Server{
		chat:          chat,
		notifications: notifications,
		tests:         tests,
		doubts:        doubts,
		progress:      progress,
		ws:            ws,
		verifier:      verifier,
		limiter:       limiter,
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Use(Metrics)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	// The websocket handshake authenticates on its own so it can reject
	// before upgrading.
	r.Get("/ws", s.ws.ServeWS)

	r.Route("/api", func(r chi.Router) {
		r.Use(Authenticate(s.verifier))
		if s.limiter != nil {
			r.Use(s.limiter.Middleware)
		}

		r.Route("/chat", func(r chi.Router) {
			r.Get("/peers", s.handleListPeers)
			r.Get("/history/{peerID}", s.handleHistory)
			r.Post("/send", s.handleSendMessage)
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", s.handleListNotifications)
			r.Patch("/{id}/read", s.handleMarkNotificationRead)
			r.Delete("/clear", s.handleClearNotifications)
		})

		r.Route("/tests", func(r chi.Router) {
			r.Get("/", s.handleListLiveTests)
			r.Get("/{id}", s.handleGetTest)

			r.Group(func(r chi.Router) {
				r.Use(RequireRole(domain.RoleTutor))
				r.Post("/", s.handleCreateTest)
				r.Get("/mine", s.handleListMyTests)
				r.Patch("/{id}/live", s.handleSetTestLive)
				r.Delete("/{id}", s.handleDeleteTest)
				r.Get("/{id}/submissions", s.handleListSubmissions)
				r.Post("/generate", s.handleGenerateQuestions)
			})

			r.Group(func(r chi.Router) {
				r.Use(RequireRole(domain.RoleLearner))
				r.Post("/{id}/submit", s.handleSubmitTest)
				r.Get("/completed/mine", s.handleCompletedTests)
			})
		})

		r.With(RequireRole(domain.RoleTutor)).
			Post("/submissions/{id}/comment", s.handleCommentSubmission)

		r.Route("/doubts", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(RequireRole(domain.RoleLearner))
				r.Post("/tutor", s.handleAskTutor)
				r.Post("/ai", s.handleAskAI)
				r.Get("/mine", s.handleMyDoubts)
			})
			r.Group(func(r chi.Router) {
				r.Use(RequireRole(domain.RoleTutor))
				r.Get("/inbox", s.handleDoubtInbox)
				r.Post("/{id}/answer", s.handleAnswerDoubt)
			})
		})

		r.With(RequireRole(domain.RoleLearner)).
			Get("/progress/heatmap", s.handleHeatmap)
	})

	return r
}

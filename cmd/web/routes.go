package main

import (
	"context"
	"net/http"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/markbates/goth/gothic"
	"github.com/pickemparty/pickem-app/internal/awards"
	"github.com/pickemparty/pickem-app/internal/db"
	"github.com/pickemparty/pickem-app/internal/httputil"
	"github.com/pickemparty/pickem-app/internal/hub"
	"github.com/pickemparty/pickem-app/internal/middleware"
	"github.com/pickemparty/pickem-app/internal/service"
	"github.com/pickemparty/pickem-app/internal/store"
	"github.com/pickemparty/pickem-app/internal/ws"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func newRouter(sessionManager *scs.SessionManager, rooms *hub.Hub) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(sessionManager.LoadAndSave)
	r.Use(middleware.LoadAuthenticatedUser(sessionManager, store.NewUserStore(db.GetDB())))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Get("/auth/{provider}", func(w http.ResponseWriter, r *http.Request) {
		provider := chi.URLParam(r, "provider")
		r = r.WithContext(context.WithValue(r.Context(), "provider", provider))

		gothic.BeginAuthHandler(w, r)
	})

	r.Get("/auth/{provider}/callback", func(w http.ResponseWriter, r *http.Request) {
		provider := chi.URLParam(r, "provider")
		r = r.WithContext(context.WithValue(r.Context(), "provider", provider))

		gothUser, err := gothic.CompleteUserAuth(w, r)
		if err != nil {
			httputil.BadRequest(w, "Authentication failure", err)
			return
		}

		dbConn := db.GetDB()
		userService := service.NewUserService(dbConn, store.NewUserStore(dbConn))
		user, err := userService.FindOrCreateUserByProvider(r.Context(), gothUser)
		if err != nil {
			httputil.InternalServerError(w, "Failed to find or create user", err)
			return
		}

		sessionManager.Put(r.Context(), "userID", user.ID.String())

		http.Redirect(w, r, "/", http.StatusFound)
	})

	r.Post("/auth/guest", func(w http.ResponseWriter, r *http.Request) {
		dbConn := db.GetDB()
		userService := service.NewUserService(dbConn, store.NewUserStore(dbConn))

		user, err := userService.EnsureGuestUser(r.Context())
		if err != nil {
			httputil.InternalServerError(w, "Failed to login as guest", err)
			return
		}

		sessionManager.Put(r.Context(), "userID", user.ID.String())
		w.WriteHeader(http.StatusNoContent)
	})

	r.Post("/logout", func(w http.ResponseWriter, r *http.Request) {
		sessionManager.Destroy(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)

		r.Get("/games", func(w http.ResponseWriter, r *http.Request) {
			dbConn := db.GetDB()
			gameService := service.NewGameService(dbConn, store.NewGameStore(dbConn), store.NewCategoryStore(dbConn), store.NewPickStore(dbConn))

			userID, _ := middleware.GetUserIDFromContext(r.Context())
			games, err := gameService.GetGamesForUser(r.Context(), userID)
			if err != nil {
				httputil.InternalServerError(w, "Failed to list games", err)
				return
			}
			httputil.WriteJSON(w, http.StatusOK, games)
		})

		r.Get("/access-codes/{code}", func(w http.ResponseWriter, r *http.Request) {
			dbConn := db.GetDB()
			gameService := service.NewGameService(dbConn, store.NewGameStore(dbConn), store.NewCategoryStore(dbConn), store.NewPickStore(dbConn))

			userID, _ := middleware.GetUserIDFromContext(r.Context())
			resolution, err := gameService.ResolveAccessCode(r.Context(), chi.URLParam(r, "code"), userID)
			if err != nil {
				httputil.DomainError(w, "Failed to resolve access code", err)
				return
			}
			httputil.WriteJSON(w, http.StatusOK, resolution)
		})

		r.Get("/games/{id}", func(w http.ResponseWriter, r *http.Request) {
			dbConn := db.GetDB()
			gameService := service.NewGameService(dbConn, store.NewGameStore(dbConn), store.NewCategoryStore(dbConn), store.NewPickStore(dbConn))

			gameID, err := uuid.Parse(chi.URLParam(r, "id"))
			if err != nil {
				httputil.BadRequest(w, "Invalid game ID", err)
				return
			}
			userID, _ := middleware.GetUserIDFromContext(r.Context())
			data, err := gameService.GetGameData(r.Context(), gameID, userID)
			if err != nil {
				httputil.DomainError(w, "Failed to load game", err)
				return
			}
			httputil.WriteJSON(w, http.StatusOK, data)
		})

		r.Post("/games/{id}/join", func(w http.ResponseWriter, r *http.Request) {
			dbConn := db.GetDB()
			gameService := service.NewGameService(dbConn, store.NewGameStore(dbConn), store.NewCategoryStore(dbConn), store.NewPickStore(dbConn))

			gameID, err := uuid.Parse(chi.URLParam(r, "id"))
			if err != nil {
				httputil.BadRequest(w, "Invalid game ID", err)
				return
			}
			userID, _ := middleware.GetUserIDFromContext(r.Context())
			if err := gameService.JoinGame(r.Context(), userID, gameID); err != nil {
				httputil.DomainError(w, "Failed to join game", err)
				return
			}
			w.WriteHeader(http.StatusNoContent)
		})

		r.Post("/games/{id}/picks", func(w http.ResponseWriter, r *http.Request) {
			dbConn := db.GetDB()
			pickService := service.NewPickService(dbConn, store.NewGameStore(dbConn), store.NewCategoryStore(dbConn), store.NewPickStore(dbConn))

			gameID, err := uuid.Parse(chi.URLParam(r, "id"))
			if err != nil {
				httputil.BadRequest(w, "Invalid game ID", err)
				return
			}
			var body struct {
				CategoryID   uuid.UUID `json:"category_id"`
				NominationID uuid.UUID `json:"nomination_id"`
			}
			if err := httputil.DecodeJSON(r, &body); err != nil {
				httputil.BadRequest(w, "Invalid request body", err)
				return
			}
			userID, _ := middleware.GetUserIDFromContext(r.Context())
			pick, err := pickService.SubmitPick(r.Context(), userID, gameID, body.CategoryID, body.NominationID, time.Now().UTC())
			if err != nil {
				httputil.DomainError(w, "Failed to submit pick", err)
				return
			}
			httputil.WriteJSON(w, http.StatusOK, pick)
		})

		r.Get("/games/{id}/picks", func(w http.ResponseWriter, r *http.Request) {
			dbConn := db.GetDB()
			pickService := service.NewPickService(dbConn, store.NewGameStore(dbConn), store.NewCategoryStore(dbConn), store.NewPickStore(dbConn))

			gameID, err := uuid.Parse(chi.URLParam(r, "id"))
			if err != nil {
				httputil.BadRequest(w, "Invalid game ID", err)
				return
			}
			userID, _ := middleware.GetUserIDFromContext(r.Context())
			picks, err := pickService.GetPicksForUser(r.Context(), gameID, userID)
			if err != nil {
				httputil.InternalServerError(w, "Failed to list picks", err)
				return
			}
			httputil.WriteJSON(w, http.StatusOK, picks)
		})

		r.Get("/games/{id}/leaderboard", func(w http.ResponseWriter, r *http.Request) {
			dbConn := db.GetDB()
			leaderboardService := service.NewLeaderboardService(dbConn, store.NewGameStore(dbConn), store.NewCategoryStore(dbConn), store.NewPickStore(dbConn))

			gameID, err := uuid.Parse(chi.URLParam(r, "id"))
			if err != nil {
				httputil.BadRequest(w, "Invalid game ID", err)
				return
			}
			userID, _ := middleware.GetUserIDFromContext(r.Context())
			players, err := leaderboardService.ForGame(r.Context(), gameID, userID)
			if err != nil {
				httputil.DomainError(w, "Failed to build leaderboard", err)
				return
			}
			httputil.WriteJSON(w, http.StatusOK, players)
		})

		r.Get("/ws/games/{gameID}", func(w http.ResponseWriter, r *http.Request) {
			dbConn := db.GetDB()
			leaderboardService := service.NewLeaderboardService(dbConn, store.NewGameStore(dbConn), store.NewCategoryStore(dbConn), store.NewPickStore(dbConn))
			ws.Handler(rooms, store.NewGameStore(dbConn), leaderboardService)(w, r)
		})
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Use(middleware.RequireAdmin)

		r.Post("/games", func(w http.ResponseWriter, r *http.Request) {
			dbConn := db.GetDB()
			gameService := service.NewGameService(dbConn, store.NewGameStore(dbConn), store.NewCategoryStore(dbConn), store.NewPickStore(dbConn))

			var body struct {
				EventID     uuid.UUID  `json:"event_id"`
				Name        string     `json:"name"`
				PicksLockAt *time.Time `json:"picks_lock_at"`
			}
			if err := httputil.DecodeJSON(r, &body); err != nil {
				httputil.BadRequest(w, "Invalid request body", err)
				return
			}
			game, err := gameService.CreateGame(r.Context(), body.EventID, body.Name, body.PicksLockAt)
			if err != nil {
				httputil.InternalServerError(w, "Failed to create game", err)
				return
			}
			httputil.WriteJSON(w, http.StatusCreated, game)
		})

		r.Post("/games/{id}/status", func(w http.ResponseWriter, r *http.Request) {
			dbConn := db.GetDB()
			gameService := service.NewGameService(dbConn, store.NewGameStore(dbConn), store.NewCategoryStore(dbConn), store.NewPickStore(dbConn))

			gameID, err := uuid.Parse(chi.URLParam(r, "id"))
			if err != nil {
				httputil.BadRequest(w, "Invalid game ID", err)
				return
			}
			var body struct {
				Status awards.GameStatus `json:"status"`
			}
			if err := httputil.DecodeJSON(r, &body); err != nil {
				httputil.BadRequest(w, "Invalid request body", err)
				return
			}
			if err := gameService.TransitionStatus(r.Context(), gameID, body.Status); err != nil {
				httputil.DomainError(w, "Failed to transition game", err)
				return
			}
			w.WriteHeader(http.StatusNoContent)
		})

		r.Post("/categories/{id}/winner", func(w http.ResponseWriter, r *http.Request) {
			dbConn := db.GetDB()
			leaderboardService := service.NewLeaderboardService(dbConn, store.NewGameStore(dbConn), store.NewCategoryStore(dbConn), store.NewPickStore(dbConn))
			revealService := service.NewRevealService(dbConn, store.NewCategoryStore(dbConn), store.NewGameStore(dbConn), leaderboardService, rooms)

			categoryID, err := uuid.Parse(chi.URLParam(r, "id"))
			if err != nil {
				httputil.BadRequest(w, "Invalid category ID", err)
				return
			}
			var body struct {
				NominationID uuid.UUID `json:"nomination_id"`
			}
			if err := httputil.DecodeJSON(r, &body); err != nil {
				httputil.BadRequest(w, "Invalid request body", err)
				return
			}
			if err := revealService.MarkWinner(r.Context(), categoryID, body.NominationID); err != nil {
				httputil.DomainError(w, "Failed to mark winner", err)
				return
			}
			w.WriteHeader(http.StatusNoContent)
		})

		r.Delete("/categories/{id}/winner", func(w http.ResponseWriter, r *http.Request) {
			dbConn := db.GetDB()
			leaderboardService := service.NewLeaderboardService(dbConn, store.NewGameStore(dbConn), store.NewCategoryStore(dbConn), store.NewPickStore(dbConn))
			revealService := service.NewRevealService(dbConn, store.NewCategoryStore(dbConn), store.NewGameStore(dbConn), leaderboardService, rooms)

			categoryID, err := uuid.Parse(chi.URLParam(r, "id"))
			if err != nil {
				httputil.BadRequest(w, "Invalid category ID", err)
				return
			}
			if err := revealService.ClearWinner(r.Context(), categoryID); err != nil {
				httputil.DomainError(w, "Failed to clear winner", err)
				return
			}
			w.WriteHeader(http.StatusNoContent)
		})
	})

	return r
}

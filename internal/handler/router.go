/*
Package handler provides the HTTP handlers and routing setup for the meeting assistant.

This file defines the main Router, applying middleware for request ids, logging, panic
recovery and CORS, and rate limiting meeting creation per client IP, before delegating
requests to the meeting, Jira, GitHub and admin handlers.
*/
package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"golang.org/x/time/rate"

	"meetassist/internal/pkg/errs"
	"meetassist/internal/pkg/limiter"
	"meetassist/internal/pkg/logx"
	"meetassist/internal/pkg/metrics"
	"meetassist/internal/pkg/resp"
)

// Router sets up the main HTTP routing table (chi.Router) for the application.
// ctx bounds background work started for the router, such as limiter cleanup.
func Router(ctx context.Context, deps *AppDeps) http.Handler {
	createLimiter := limiter.NewIPRateLimiter(ctx, rate.Limit(deps.Config.MeetingCreateRate), deps.Config.MeetingCreateBurst)

	r := chi.NewRouter()

	corsAllowedOrigins := []string{}
	if deps.Config.IsDevelopment() {
		corsAllowedOrigins = []string{"*"}
	} else if len(deps.Config.AllowedOrigins) > 0 {
		corsAllowedOrigins = deps.Config.AllowedOrigins
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   corsAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{},
		AllowCredentials: true,
		MaxAge:           300,
	})
	r.Use(c.Handler)

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logx.RequestLogger())
	r.Use(middleware.Recoverer)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		resp.RespondError(w, r, errs.NewError(errs.ErrRouteNotFound))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		resp.RespondError(w, r, errs.NewError(errs.ErrMethodNotAllowed))
	})

	r.Get("/health", HandleHealth(deps))
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.With(createLimiter.Middleware).Post("/user/{userId}/generate_meeting", HandleGenerateMeeting(deps))

	r.Route("/meeting/{meetingId}", func(m chi.Router) {
		m.Get("/user", HandleGetMeetingUser(deps))

		m.Route("/api/jira", func(jira chi.Router) {
			jira.Get("/getIssues", HandleGetIssues(deps))
			jira.Get("/getIssue", HandleGetIssue(deps))
			jira.Post("/createIssue", HandleCreateIssue(deps))
			jira.Put("/editIssue", HandleEditIssue(deps))
			jira.Get("/getIssueTransitions", HandleGetIssueTransitions(deps))
			jira.Post("/transitionIssue", HandleTransitionIssue(deps))
		})

		m.Route("/api/github", func(gh chi.Router) {
			gh.Get("/getIssues", HandleGitHubIssues)
			gh.Get("/getPullRequests", HandleGitHubPullRequests)
		})
	})

	r.Post("/save_db", HandleSaveDB(deps))
	r.Post("/ping", HandlePing)

	return r
}

// File: internal/app/router.go
package app

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/iyunix/go-counselor/internal/middleware"
)

// NewRouter registers the page, form and JSON routes.
func NewRouter(a *Application) *mux.Router {
	r := mux.NewRouter()

	r.Use(middleware.RecoverPanic(a.Logger))
	r.Use(middleware.LoggingMiddleware(a.Logger))

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	}).Methods("GET")

	// --- Page ---
	r.HandleFunc("/", a.PageHandler.ShowChatPage).Methods("GET")
	ui := r.PathPrefix("/ui").Subrouter()
	ui.HandleFunc("/user", a.PageHandler.SwitchUser).Methods("POST")
	ui.HandleFunc("/sessions", a.PageHandler.CreateSession).Methods("POST")
	ui.HandleFunc("/sessions/{id}/select", a.PageHandler.SelectSession).Methods("POST")
	ui.HandleFunc("/sessions/{id}/delete", a.PageHandler.DeleteSession).Methods("POST")
	ui.Handle("/messages", limited(a, a.PageHandler.SendMessage)).Methods("POST")

	// --- JSON API ---
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/state", a.ChatHandler.GetState).Methods("GET")
	api.HandleFunc("/user", a.ChatHandler.SwitchUser).Methods("POST")
	api.HandleFunc("/sessions", a.ChatHandler.CreateSession).Methods("POST")
	api.HandleFunc("/sessions/{id}/select", a.ChatHandler.SelectSession).Methods("POST")
	api.HandleFunc("/sessions/{id}", a.ChatHandler.DeleteSession).Methods("DELETE")
	api.Handle("/messages", limited(a, a.ChatHandler.SendMessage)).Methods("POST")
	api.HandleFunc("/log", a.LogHandler.LogFrontendEvent).Methods("POST")

	return r
}

// limited applies the per-client message budget shared by the page and the API.
func limited(a *Application, h http.HandlerFunc) http.Handler {
	return middleware.RateLimitMiddleware(a.MessageLimit, "messages", a.Logger)(h)
}

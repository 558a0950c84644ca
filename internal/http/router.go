package http

import (
	"net/http"

	"github.com/gorilla/mux"
)

type RouterConfig struct {
	Identity *IdentityHandler
	Profile  *ProfileHandler
	Meetings *MeetingHandler
	Feed     *FeedHandler

	// Authenticate wraps every route except account provisioning and token
	// issuance.
	Authenticate func(http.Handler) http.Handler
	// Middleware wraps the whole router, outermost first.
	Middleware []func(http.Handler) http.Handler
}

func NewRouter(cfg RouterConfig) http.Handler {
	router := mux.NewRouter()

	if cfg.Identity != nil {
		router.HandleFunc("/users", cfg.Identity.CreateUser).Methods(http.MethodPost)
		router.HandleFunc("/tokens", cfg.Identity.IssueToken).Methods(http.MethodPost)
	}

	authed := router.PathPrefix("/").Subrouter()
	if cfg.Authenticate != nil {
		authed.Use(mux.MiddlewareFunc(cfg.Authenticate))
	}

	if cfg.Profile != nil {
		authed.HandleFunc("/profile", cfg.Profile.Get).Methods(http.MethodGet)
		authed.HandleFunc("/profile", cfg.Profile.Update).Methods(http.MethodPut)
	}

	if cfg.Meetings != nil {
		authed.HandleFunc("/meetings", cfg.Meetings.Create).Methods(http.MethodPost)
		authed.HandleFunc("/meetings/join", cfg.Meetings.Join).Methods(http.MethodPost)
		authed.HandleFunc("/meetings/{id}", cfg.Meetings.Get).Methods(http.MethodGet)
		authed.HandleFunc("/meetings/{id}", cfg.Meetings.Update).Methods(http.MethodPut)
		authed.HandleFunc("/meetings/{id}", cfg.Meetings.Delete).Methods(http.MethodDelete)
		authed.HandleFunc("/meetings/{id}/guests", cfg.Meetings.AddGuest).Methods(http.MethodPost)
		authed.HandleFunc("/meetings/{id}/recommendations", cfg.Meetings.Recommendations).Methods(http.MethodGet)
		authed.HandleFunc("/meetings/{id}/slot", cfg.Meetings.ConfirmSlot).Methods(http.MethodPost)
		authed.HandleFunc("/meetings/{id}/calendar.ics", cfg.Meetings.Calendar).Methods(http.MethodGet)
	}

	if cfg.Feed != nil {
		authed.HandleFunc("/feed", cfg.Feed.Stream).Methods(http.MethodGet)
	}

	var handler http.Handler = router
	for i := len(cfg.Middleware) - 1; i >= 0; i-- {
		if cfg.Middleware[i] != nil {
			handler = cfg.Middleware[i](handler)
		}
	}
	return handler
}

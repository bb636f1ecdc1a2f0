package handlers

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/kimhsiao/addressbook/internal/logging"
)

// Pinger reports whether the database is reachable.
type Pinger interface {
	Acquire(ctx context.Context) (*sql.DB, error)
}

// Routes groups the handlers mounted by NewRouter.
type Routes struct {
	Health   Pinger
	Contacts *ContactHandler
	Stats    *StatsHandler
	Transfer *TransferHandler
	Settings *SettingsHandler
}

// NewRouter registers every API route.
func NewRouter(routes Routes) *mux.Router {
	router := mux.NewRouter()
	router.Use(requestLogger)
	router.MethodNotAllowedHandler = http.HandlerFunc(methodNotAllowed)

	router.HandleFunc("/api/health", health(routes.Health)).Methods(http.MethodGet)

	router.HandleFunc("/api/contacts", routes.Contacts.ListContacts).Methods(http.MethodGet)
	router.HandleFunc("/api/contacts", routes.Contacts.CreateContact).Methods(http.MethodPost)
	router.HandleFunc("/api/contacts/recent", routes.Contacts.RecentContacts).Methods(http.MethodGet)
	router.HandleFunc("/api/contacts/range", routes.Contacts.ContactsInRange).Methods(http.MethodGet)
	router.HandleFunc("/api/contacts/delete", routes.Contacts.DeleteContacts).Methods(http.MethodPost)
	router.HandleFunc("/api/contacts/{id:[0-9]+}", routes.Contacts.GetContact).Methods(http.MethodGet)
	router.HandleFunc("/api/contacts/{id:[0-9]+}", routes.Contacts.UpdateContact).Methods(http.MethodPut)
	router.HandleFunc("/api/contacts/{id:[0-9]+}", routes.Contacts.DeleteContact).Methods(http.MethodDelete)
	router.HandleFunc("/api/contacts/{id:[0-9]+}/duplicate", routes.Contacts.DuplicateContact).Methods(http.MethodPost)

	router.HandleFunc("/api/stats", routes.Stats.Statistics).Methods(http.MethodGet)
	router.HandleFunc("/api/stats/ages", routes.Stats.AgeAnalysis).Methods(http.MethodGet)

	router.HandleFunc("/api/export", routes.Transfer.Export).Methods(http.MethodGet)
	router.HandleFunc("/api/import", routes.Transfer.Import).Methods(http.MethodPost)
	router.HandleFunc("/api/print", routes.Transfer.Print).Methods(http.MethodGet)
	router.HandleFunc("/api/backup", routes.Transfer.Backup).Methods(http.MethodPost)

	router.HandleFunc("/api/settings/theme", routes.Settings.GetTheme).Methods(http.MethodGet)
	router.HandleFunc("/api/settings/theme", routes.Settings.SaveTheme).Methods(http.MethodPut)

	return router
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	respondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
}

func health(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if db != nil {
			if _, err := db.Acquire(r.Context()); err != nil {
				logging.Warn("health check failed", map[string]interface{}{"error": err.Error()})
				respondWithJSON(w, http.StatusServiceUnavailable, map[string]string{
					"status":  "unavailable",
					"service": "addressbook-desktop",
				})
				return
			}
		}
		respondWithJSON(w, http.StatusOK, map[string]string{
			"status":  "ok",
			"service": "addressbook-desktop",
		})
	}
}

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logging.Debug("http request", map[string]interface{}{
			"method":      r.Method,
			"path":        r.URL.Path,
			"status":      rec.status,
			"duration_ms": time.Since(start).Milliseconds(),
		})
	})
}

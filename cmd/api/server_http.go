package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/webchecker/backend/internal/auth"
	config "github.com/webchecker/backend/internal/config/api"
	"github.com/webchecker/backend/internal/domain/outbox"
	"github.com/webchecker/backend/internal/obs"
	pg "github.com/webchecker/backend/internal/repository/postgres"
	apiauth "github.com/webchecker/backend/internal/services/api/auth"
	checksvc "github.com/webchecker/backend/internal/services/api/check"
	"github.com/webchecker/backend/internal/services/api/httpx"
	incidentsvc "github.com/webchecker/backend/internal/services/api/incident"
	sitesvc "github.com/webchecker/backend/internal/services/api/site"
)

func buildHTTPServer(cfg *config.Config, logger *zap.Logger, db *pg.DB) *http.Server {
	verifier := auth.NewVerifier([]byte(cfg.Auth.JWTSecret))

	var (
		ob outbox.Repository
		tx pg.Transactor
	)
	if cfg.Kafka.Enable {
		ob = pg.NewOutboxRepo(db)
		tx = pg.NewTransactor(db, logger)
	}

	siteH := sitesvc.NewHandler(sitesvc.New(pg.NewSiteRepo(db)), logger)
	checkH := checksvc.NewHandler(checksvc.New(pg.NewCheckRepo(db), ob, tx, logger, nil), logger)
	incidentH := incidentsvc.NewHandler(incidentsvc.New(pg.NewIncidentRepo(db), ob, tx, logger, nil), logger)

	r := mux.NewRouter()

	api := r.PathPrefix("/api").Subrouter()
	api.Use(obs.HTTPMetrics, apiauth.Middleware(verifier, logger))

	siteH.Register(api)
	checkH.Register(api)
	incidentH.Register(api)

	worker := api.PathPrefix("/worker").Subrouter()
	checkH.RegisterWorker(worker)
	incidentH.RegisterWorker(worker)

	r.Handle("/metrics", obs.MetricsHandler())
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		hctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
		defer cancel()
		if err := db.Pool.Ping(hctx); err != nil {
			http.Error(w, "unhealthy: db", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	handler := httpx.CORS(cfg.Server.CORSOrigins)(r)
	handler = obs.HTTPHandler(handler, "api")

	return &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           handler,
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}
}

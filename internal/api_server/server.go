package apiserver

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dataservice/chat2query/internal/client"
	"github.com/dataservice/chat2query/internal/config"
	handlers "github.com/dataservice/chat2query/internal/handlers/v1"
	"github.com/dataservice/chat2query/internal/service"
	"github.com/dataservice/chat2query/internal/store"
	"github.com/dataservice/chat2query/pkg/log"
	"github.com/dataservice/chat2query/pkg/metrics"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

const (
	gracefulShutdownTimeout = 5 * time.Second
)

type Server struct {
	cfg      *config.Config
	store    store.Store
	listener net.Listener
	registry prometheus.Registerer
}

// New returns a new instance of a chat2query api server. The request
// metrics are registered on registry.
func New(
	cfg *config.Config,
	store store.Store,
	listener net.Listener,
	registry prometheus.Registerer,
) *Server {
	return &Server{
		cfg:      cfg,
		store:    store,
		listener: listener,
		registry: registry,
	}
}

// Chat2QueryService is the default connection built from the environment.
func Chat2QueryService(cfg *config.Config) client.Service {
	return client.Service{
		Server: cfg.Chat2Query.BaseUrl,
		Credentials: client.Credentials{
			PublicKey:  cfg.Chat2Query.PublicKey,
			PrivateKey: cfg.Chat2Query.PrivateKey,
		},
		ClusterID: cfg.Chat2Query.ClusterID,
		Database:  cfg.Chat2Query.Database,
	}
}

// PollOptions bounds the wait loop of every ask and data summary call.
func PollOptions(cfg *config.Config) []client.PollOption {
	return []client.PollOption{
		client.WithInterval(cfg.Chat2Query.PollInterval),
		client.WithMaxAttempts(cfg.Chat2Query.PollMaxAttempts),
		client.WithTimeout(cfg.Chat2Query.PollTimeout),
	}
}

func (s *Server) dataAPI() service.DataAPI {
	if s.cfg.DataAPI.BaseUrl == "" {
		return nil
	}
	return client.NewDataAPI(client.DataAPIService{
		Server: s.cfg.DataAPI.BaseUrl,
		Credentials: client.Credentials{
			PublicKey:  s.cfg.DataAPI.PublicKey,
			PrivateKey: s.cfg.DataAPI.PrivateKey,
		},
	}, &http.Client{})
}

// Handler builds the router serving /health and /api/v1.
func (s *Server) Handler() http.Handler {
	router := chi.NewRouter()

	metricMiddleware := metrics.NewMiddleware("api_server")
	metricMiddleware.MustRegister(s.registry)

	router.Use(
		metricMiddleware.Handler,
		cors.Handler(cors.Options{
			AllowedOrigins:   s.cfg.Service.AllowedOrigins,
			AllowedMethods:   []string{"GET", "PUT", "POST", "DELETE", "HEAD", "OPTIONS"},
			AllowedHeaders:   []string{"*"},
			AllowCredentials: true,
			MaxAge:           300,
		}),
		chiMiddleware.RequestID,
		log.Logger(zap.L(), "router"),
		chiMiddleware.Recoverer,
	)

	httpClient := &http.Client{}
	newClient := func(svc client.Service) service.Chat2Query {
		return client.NewChat2Query(svc, client.WithHTTPClient(httpClient))
	}

	h := handlers.NewServiceHandler(
		service.NewAskService(Chat2QueryService(s.cfg), newClient, PollOptions(s.cfg)...),
		service.NewTodoService(s.store),
		service.NewDashboardService(s.dataAPI()),
	)

	router.Get("/health", handlers.Health)
	router.Route("/api/v1", h.RegisterRoutes)

	return router
}

func (s *Server) Run(ctx context.Context) error {
	zap.S().Named("api_server").Info("Initializing API server")

	srv := http.Server{Addr: s.cfg.Service.Address, Handler: s.Handler()}

	go func() {
		<-ctx.Done()
		zap.S().Named("api_server").Infof("Shutdown signal received: %s", ctx.Err())
		ctxTimeout, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
		defer cancel()

		srv.SetKeepAlivesEnabled(false)
		_ = srv.Shutdown(ctxTimeout)
		zap.S().Named("api_server").Info("api server terminated")
	}()

	zap.S().Named("api_server").Infof("Listening on %s...", s.listener.Addr().String())
	if err := srv.Serve(s.listener); err != nil && !errors.Is(err, net.ErrClosed) && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"

	"github.com/tastemap/catalog-api/internal/cache"
	"github.com/tastemap/catalog-api/internal/catalog/application"
	"github.com/tastemap/catalog-api/internal/catalog/domain"
	"github.com/tastemap/catalog-api/internal/config"
	mongodoc "github.com/tastemap/catalog-api/internal/infrastructure/mongo"
	"github.com/tastemap/catalog-api/internal/interfaces/http/common"
	"github.com/tastemap/catalog-api/internal/interfaces/http/public"
	"github.com/tastemap/catalog-api/internal/metrics"
)

// Server owns the HTTP lifecycle and wires repositories, the catalog service
// and the handlers together. It is the composition root; no domain logic
// lives here.
type Server struct {
	cfg     *config.Config
	logger  *zap.Logger
	client  *mongo.Client
	users   *mongodoc.UserRepository
	catalog application.CatalogService
}

// New assembles the full dependency graph. When a Redis address is
// configured the store repository is wrapped with the aggregate cache.
func New(cfg *config.Config, client *mongo.Client, logger *zap.Logger) *Server {
	db := client.Database(cfg.MongoDatabase)

	var stores application.StoreRepository = mongodoc.NewStoreRepository(db, cfg.StoreCollection, cfg.ReviewCollection)
	var reviews application.ReviewRepository = mongodoc.NewReviewRepository(db, cfg.ReviewCollection)
	if cfg.RedisAddr != "" {
		redisClient := cache.NewClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		aggregates := cache.New(redisClient, cfg.CacheTTL)
		stores = cache.NewStoreRepository(stores, aggregates, logger, cfg.TopLimit)
		reviews = cache.NewReviewRepository(reviews, aggregates, logger)
	}

	users := mongodoc.NewUserRepository(db, cfg.UserCollection)

	limits := application.Limits{
		PageSize:        cfg.PageSize,
		NearMaxDistance: cfg.NearMaxDistanceMeters,
		NearLimit:       cfg.NearLimit,
		SearchLimit:     cfg.SearchLimit,
		TopLimit:        cfg.TopLimit,
	}

	return &Server{
		cfg:     cfg,
		logger:  logger,
		client:  client,
		users:   users,
		catalog: application.NewCatalogService(stores, reviews, users, limits),
	}
}

// Run creates the indexes, mounts the routes and serves until the process is
// signalled to stop.
func (s *Server) Run() error {
	indexCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := mongodoc.EnsureIndexes(indexCtx, s.client.Database(s.cfg.MongoDatabase), s.cfg.StoreCollection, s.cfg.ReviewCollection); err != nil {
		return errors.Wrap(err, "ensure indexes")
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(s.requestLogger)
	router.Use(middleware.Recoverer)
	router.Use(withCORS(s.cfg.AllowedOrigins))
	router.Use(metrics.Middleware)

	router.Get("/healthz", s.healthHandler())
	router.Method(http.MethodGet, "/metrics", metrics.Handler())

	publicHandler := public.NewHandler(public.Config{
		Logger:  s.logger,
		Catalog: s.catalog,
	})
	publicHandler.Register(router, s.authMiddleware)

	httpServer := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", zap.String("addr", s.cfg.Addr))
		errChan <- httpServer.ListenAndServe()
	}()

	return s.waitForShutdown(httpServer, errChan)
}

// requestLogger logs one line per request with the route, status and latency.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		s.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("requestId", middleware.GetReqID(r.Context())),
		)
	})
}

// withCORS applies the allow-list based CORS headers. A lone "*" allows every
// origin.
func withCORS(origins []string) func(http.Handler) http.Handler {
	allowed := make(map[string]struct{})
	allowAll := false
	for _, origin := range origins {
		origin = strings.TrimSpace(origin)
		if origin == "" {
			continue
		}
		if origin == "*" {
			allowAll = true
			continue
		}
		allowed[origin] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := strings.TrimSpace(r.Header.Get("Origin"))
			if origin == "" || (!allowAll && !originAllowed(origin, allowed)) {
				if r.Method == http.MethodOptions {
					w.WriteHeader(http.StatusNoContent)
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Add("Vary", "Origin")
			w.Header().Set("Access-Control-Allow-Methods", "GET,POST,PATCH,OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Authorization,Content-Type")
			w.Header().Set("Access-Control-Max-Age", "300")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func originAllowed(origin string, allowed map[string]struct{}) bool {
	if len(allowed) == 0 {
		return true
	}
	_, ok := allowed[origin]
	return ok
}

// healthHandler reports infrastructure reachability, not domain state.
func (s *Server) healthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		if err := s.client.Ping(ctx, readpref.Primary()); err != nil {
			common.WriteJSON(s.logger, w, http.StatusServiceUnavailable, map[string]string{
				"status": "degraded",
				"error":  err.Error(),
			})
			return
		}

		common.WriteJSON(s.logger, w, http.StatusOK, map[string]string{
			"status": "ok",
			"time":   time.Now().Format(time.RFC3339),
		})
	}
}

type authClaims struct {
	jwt.RegisteredClaims
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

// authMiddleware verifies the bearer token and stores the principal into the
// request context. The resolved identity is also upserted so ownership and
// heart operations always find a user document.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := strings.TrimSpace(r.Header.Get("Authorization"))
		if authHeader == "" {
			common.WriteJSON(s.logger, w, http.StatusUnauthorized, map[string]string{"error": "missing Authorization header"})
			return
		}

		const bearerPrefix = "Bearer "
		if !strings.HasPrefix(authHeader, bearerPrefix) {
			common.WriteJSON(s.logger, w, http.StatusUnauthorized, map[string]string{"error": "a Bearer token is required"})
			return
		}

		tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, bearerPrefix))
		if tokenString == "" {
			common.WriteJSON(s.logger, w, http.StatusUnauthorized, map[string]string{"error": "empty access token"})
			return
		}

		claims, err := s.parseAuthToken(tokenString)
		if err != nil {
			common.WriteJSON(s.logger, w, http.StatusUnauthorized, map[string]string{"error": err.Error()})
			return
		}

		user := common.AuthenticatedUser{
			ID:    claims.Subject,
			Name:  claims.Name,
			Email: claims.Email,
		}
		s.provisionUser(r.Context(), user)

		ctx := common.ContextWithUser(r.Context(), user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// parseAuthToken verifies the HS256 signature and the issuer/audience claims.
func (s *Server) parseAuthToken(tokenString string) (*authClaims, error) {
	claims := &authClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %s", token.Method.Alg())
		}
		return []byte(s.cfg.JWTSecret), nil
	}, jwt.WithLeeway(30*time.Second))
	if err != nil || !token.Valid {
		return nil, errors.New("invalid access token")
	}

	if claims.Subject == "" {
		return nil, errors.New("token has no subject")
	}
	if s.cfg.JWTIssuer != "" && claims.Issuer != s.cfg.JWTIssuer {
		return nil, errors.New("invalid access token")
	}
	if s.cfg.JWTAudience != "" && !contains(claims.Audience, s.cfg.JWTAudience) {
		return nil, errors.New("invalid access token")
	}
	return claims, nil
}

// provisionUser records the authenticated identity. Failures are logged and
// ignored; the request itself is still served.
func (s *Server) provisionUser(ctx context.Context, user common.AuthenticatedUser) {
	upsertCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	err := s.users.Upsert(upsertCtx, domain.User{ID: user.ID, Name: user.Name, Email: user.Email})
	if err != nil {
		s.logger.Warn("user provisioning failed", zap.String("user", user.ID), zap.Error(err))
	}
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}

// waitForShutdown blocks until the listener fails or a stop signal arrives,
// then drains in-flight requests and disconnects from MongoDB.
func (s *Server) waitForShutdown(httpServer *http.Server, errChan <-chan error) error {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "http server")
		}
	case sig := <-sigChan:
		s.logger.Info("shutting down", zap.String("signal", sig.String()))
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(ctx); err != nil {
			s.logger.Error("graceful shutdown failed", zap.Error(err))
		}
	}

	disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.client.Disconnect(disconnectCtx); err != nil {
		s.logger.Error("mongodb disconnect failed", zap.Error(err))
	}
	return nil
}

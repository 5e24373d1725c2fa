package server

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"soundscore/cache"
	"soundscore/config"
	"soundscore/core/auth"
	"soundscore/core/catalog"
	"soundscore/core/list"
	"soundscore/core/rating"
	"soundscore/core/social"
	"soundscore/db"
	"soundscore/logger"
	"soundscore/repository"
)

// Start initializes and starts the HTTP server.
func Start() {
	cfg := config.Load()

	logger.InitLogger(logger.Config{
		Level:      logger.LogLevel(cfg.LogLevel),
		OutputPath: cfg.LogOutput,
	})

	server := &http.Server{
		Addr:         cfg.ListenAddr,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	if err := db.ConnectDB(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.DB.Close()

	if err := db.ConnectRedis(cfg); err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer db.CloseRedis()

	if err := db.InitDB(); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	if err := db.ConnectGormDB(cfg); err != nil {
		log.Fatalf("Failed to connect GORM: %v", err)
	}
	defer db.CloseGormDB()

	if err := db.MigrateListModels(); err != nil {
		log.Fatalf("Failed to migrate list models: %v", err)
	}

	auth.Configure(cfg.JWTSecret, cfg.JWTTTL)

	userRepo := repository.NewMySQLUserRepository(db.DB)
	ratingRepo := repository.NewMySQLRatingRepository(db.DB)
	friendRepo := repository.NewMySQLFriendRepository(db.DB)
	listRepo := repository.NewGormListRepository(db.GormDB)

	catalogClient := catalog.New(cfg.CatalogBaseURL, cfg.CatalogTimeout)
	aggCache := cache.NewAggregateCache(db.RedisClient, cfg.AggregateCacheTTL)

	ledger := rating.NewLedger(ratingRepo, aggCache, catalogClient)
	listStore := list.NewStore(listRepo, catalogClient)
	socialSvc := social.NewService(friendRepo, userRepo)

	apiHandler := NewAPIHandler(userRepo, ledger, listStore, socialSvc, catalogClient)

	router := mux.NewRouter()

	router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Catalog-Token")
			w.Header().Set("Access-Control-Max-Age", "86400")

			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	})

	// Auth endpoints
	router.HandleFunc("/api/auth/register", apiHandler.RegisterHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/auth/login", apiHandler.LoginHandler).Methods(http.MethodPost)

	// User endpoints
	router.HandleFunc("/api/users/{id}", apiHandler.AuthMiddleware(apiHandler.GetUserHandler)).Methods(http.MethodGet)

	// Rating endpoints
	router.HandleFunc("/api/ratings", apiHandler.AuthMiddleware(apiHandler.SubmitRatingHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/ratings/album/{albumId}", apiHandler.AuthMiddleware(apiHandler.GetAlbumRatingsHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/ratings/user/{userId}", apiHandler.AuthMiddleware(apiHandler.GetUserRatingsHandler)).Methods(http.MethodGet)

	// Album search
	router.HandleFunc("/api/albums/search", apiHandler.AuthMiddleware(apiHandler.SearchAlbumsHandler)).Methods(http.MethodGet)

	// List endpoints
	router.HandleFunc("/api/lists", apiHandler.AuthMiddleware(apiHandler.CreateListHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/lists", apiHandler.AuthMiddleware(apiHandler.GetListsHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/lists/{id}", apiHandler.AuthMiddleware(apiHandler.GetListHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/lists/{id}", apiHandler.AuthMiddleware(apiHandler.UpdateListHandler)).Methods(http.MethodPatch)
	router.HandleFunc("/api/lists/{id}", apiHandler.AuthMiddleware(apiHandler.DeleteListHandler)).Methods(http.MethodDelete)
	router.HandleFunc("/api/lists/{id}/like", apiHandler.AuthMiddleware(apiHandler.ToggleLikeHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/lists/{id}/comments", apiHandler.AuthMiddleware(apiHandler.AddCommentHandler)).Methods(http.MethodPost)

	// Friend endpoints
	router.HandleFunc("/api/friends", apiHandler.AuthMiddleware(apiHandler.GetFriendsHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/friends/search", apiHandler.AuthMiddleware(apiHandler.SearchUsersHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/friends/requests", apiHandler.AuthMiddleware(apiHandler.SendFriendRequestHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/friends/requests/{id}/accept", apiHandler.AuthMiddleware(apiHandler.AcceptFriendRequestHandler)).Methods(http.MethodPut)
	router.HandleFunc("/api/friends/requests/{id}/decline", apiHandler.AuthMiddleware(apiHandler.DeclineFriendRequestHandler)).Methods(http.MethodPut)

	server.Handler = router

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Server starting on %s...", cfg.ListenAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-stop
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}

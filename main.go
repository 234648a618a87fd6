package main

import (
	"context"
	"os"
	_ "time/tzdata"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"google.golang.org/api/option"

	"github.com/gjc-app/board-sync/pkg/auth"
	"github.com/gjc-app/board-sync/pkg/config"
	"github.com/gjc-app/board-sync/pkg/logger"

	"github.com/gjc-app/board-sync/repos/blobstore"
	"github.com/gjc-app/board-sync/repos/docstore"

	"github.com/gjc-app/board-sync/services/attachments"
	"github.com/gjc-app/board-sync/services/board"
	"github.com/gjc-app/board-sync/services/channels"
	"github.com/gjc-app/board-sync/services/identity"
	"github.com/gjc-app/board-sync/services/profile"
	"github.com/gjc-app/board-sync/services/session"
	"github.com/gjc-app/board-sync/services/stats"
)

func main() {
	ctx := context.Background()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		bootLog := logger.Component("main")
		bootLog.Fatal().Err(err).Msg("failed to load config")
	}

	logger.Configure(logger.Config{Level: cfg.Logging.Level, Pretty: cfg.Logging.Pretty})
	log := logger.Component("main")

	var docs docstore.Store
	var blobs blobstore.Store

	switch cfg.Store.Driver {
	case config.StoreFirestore:
		var opts []option.ClientOption
		if cfg.Firebase.CredentialsJSON != "" {
			opts = append(opts, option.WithCredentialsJSON([]byte(cfg.Firebase.CredentialsJSON)))
		}

		firestoreClient, err := firestore.NewClient(ctx, cfg.Firebase.ProjectID, opts...)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create Firestore client")
		}
		defer firestoreClient.Close()

		firebaseApp, err := firebase.NewApp(ctx, &firebase.Config{
			ProjectID:     cfg.Firebase.ProjectID,
			StorageBucket: cfg.Firebase.StorageBucket,
		}, opts...)
		if err != nil {
			log.Fatal().Err(err).Msg("error initializing app")
		}

		bucket, err := blobstore.NewFirebase(ctx, firebaseApp, cfg.Firebase.StorageBucket)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to open storage bucket")
		}
		docs = docstore.NewFirestore(firestoreClient)
		blobs = bucket
	default:
		log.Warn().Msg("using in-memory stores, data is lost on restart")
		docs = docstore.NewMemory()
		blobs = blobstore.NewMemory("local")
	}

	sessions := session.NewCache(cfg.SessionTTL())
	bootstrapper := identity.NewBootstrapper(docs, sessions, cfg.Server.CookieName)
	uploader := attachments.NewUploader(blobs)
	profileStore := profile.NewStore(docs, uploader, sessions)
	gateway := board.NewGateway(docs, uploader, cfg.Location())

	supervisor := channels.NewSupervisor(ctx, docs)
	defer supervisor.Shutdown()
	boardViews := board.NewBoard(supervisor, docs)
	defer boardViews.Close()
	statsService := stats.NewStatsService(boardViews)

	corsConfig := cors.DefaultConfig()
	if len(cfg.Server.CorsHosts) > 0 {
		corsConfig.AllowOrigins = cfg.Server.CorsHosts
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowCredentials = len(cfg.Server.CorsHosts) > 0
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Access-Control-Allow-Origin"}

	router := gin.Default()
	router.Use(cors.New(corsConfig))

	identityMiddleware := auth.IdentityMiddleware(bootstrapper, cfg.Server.SecureCookie)

	profileRouter := router.Group("/profile/v1")
	profileRouter.Use(identityMiddleware)

	boardRouter := router.Group("/board/v1")
	boardRouter.Use(identityMiddleware)

	streamRouter := router.Group("/stream/v1")
	streamRouter.Use(identityMiddleware)

	statsRouter := router.Group("/stats/v1")

	profile.NewHTTPHandler(profile.HTTPOptions{
		Service: profileStore,
		Router:  profileRouter,
	})

	board.NewHTTPHandler(board.HTTPOptions{
		Service: gateway,
		Views:   boardViews,
		Router:  boardRouter,
	})

	channels.NewHTTPHandler(channels.HTTPOptions{
		Service: boardViews,
		Router:  streamRouter,
	})

	stats.NewHTTPHandler(stats.HTTPOptions{
		Service: statsService,
		Router:  statsRouter,
	})

	log.Info().Str("port", cfg.Server.Port).Str("store", cfg.Store.Driver).Msg("starting server")
	if err := router.Run(":" + cfg.Server.Port); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

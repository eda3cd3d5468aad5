package main

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"tttserver/database"    //PostgreSQLとRedisの初期化
	"tttserver/game"        //盤面・AI・着手裁定のゲームロジック
	"tttserver/handlers"    //HTTPリクエストの処理
	"tttserver/middlewares" //認証とレートリミット
	"tttserver/migrations"  //テーブルのマイグレーション
	"tttserver/realtime"    //WebSocket接続と通知配信
	"tttserver/utils"       //ロガーの初期化とCronジョブ(放置ゲームの定期クリーンナップ)

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/gorilla/websocket"
	"github.com/joho/godotenv"
	"gorm.io/gorm"
)

func main() {
	// .envがあれば環境変数に読み込む（無くてもよい）
	godotenv.Load()

	var logger *zap.Logger
	var err error
	logger, err = utils.InitLogger() // ロガーの初期化
	if err != nil {
		panic(err) // 失敗した場合はプログラム停止
	}
	defer logger.Sync() // ロガーのクリーンアップ

	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
	}

	// 非同期でPostgreSQLとRedisの初期化
	var db *gorm.DB
	var rdb *redis.Client
	done := make(chan bool)

	go func() {
		config, err := database.LoadConfig("config.json")
		if err != nil {
			logger.Fatal("設定ファイルの読み込みに失敗しました", zap.Error(err))
		}
		db, err = database.InitPostgreSQL(config, logger)
		if err != nil {
			logger.Fatal("PostgreSQLの初期化に失敗しました", zap.Error(err))
		}
		done <- true
	}()

	go func() {
		rdb, err = database.InitRedis(logger)
		if err != nil {
			logger.Fatal("Failed to initialize Redis", zap.Error(err))
		}
		done <- true
	}()

	// 2つの初期化が完了するのを待つ
	<-done
	<-done

	// テーブルのマイグレーション
	if err := migrations.AutoMigrateDB(db); err != nil {
		logger.Fatal("マイグレーションに失敗しました", zap.Error(err))
	}

	// クーロンスケジューラのセットアップと呼び出し
	go utils.CronCleaner(db, logger)

	// 各コンポーネントを一度だけ構築し、必要とする箇所に明示的に渡す
	registry := realtime.NewRegistry(logger)
	directory := realtime.NewObserverDirectory(rdb, logger)
	dispatcher := realtime.NewDispatcher(registry, directory, logger)
	gameService := game.NewService(db, logger)

	router := gin.New()
	router.Use(gin.Recovery(), utils.RequestLogger(logger))

	//CORS（Cross-Origin Resource Sharing）ポリシーを設定
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "http://localhost:8080"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	authRequired := middlewares.AuthRequired(db, logger)
	moveLimiter := middlewares.RateLimit(rdb, "move", 10, time.Minute)
	createLimiter := middlewares.RateLimit(rdb, "create_game", 10, time.Minute)

	//各HTTPリクエストのルーティング
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})
	router.POST("/api/auth/register", func(c *gin.Context) {
		handlers.Register(c, db, rdb, logger)
	})
	router.POST("/api/auth/login", func(c *gin.Context) {
		handlers.Login(c, db, rdb, logger)
	})
	router.GET("/api/auth/me", authRequired, func(c *gin.Context) {
		handlers.Me(c, db, logger)
	})

	router.GET("/api/games", authRequired, func(c *gin.Context) {
		handlers.ListGames(c, gameService, rdb, logger)
	})
	router.POST("/api/games", authRequired, createLimiter, func(c *gin.Context) {
		handlers.CreateGame(c, gameService, dispatcher, rdb, logger)
	})
	router.GET("/api/games/:id", authRequired, func(c *gin.Context) {
		handlers.GetGame(c, gameService, logger)
	})
	router.POST("/api/games/:id/join", authRequired, func(c *gin.Context) {
		handlers.JoinGame(c, gameService, dispatcher, rdb, logger)
	})
	router.POST("/api/games/:id/observe", authRequired, func(c *gin.Context) {
		handlers.ObserveGame(c, gameService, directory, logger)
	})
	router.POST("/api/games/:id/move", authRequired, moveLimiter, func(c *gin.Context) {
		handlers.MakeMove(c, gameService, dispatcher, rdb, logger)
	})

	router.GET("/api/leaderboard", authRequired, func(c *gin.Context) {
		handlers.Leaderboard(c, gameService, logger)
	})
	router.GET("/api/leaderboard/me", authRequired, func(c *gin.Context) {
		handlers.MyStats(c, gameService, logger)
	})
	router.GET("/api/leaderboard/user/:id", authRequired, func(c *gin.Context) {
		handlers.UserStats(c, gameService, logger)
	})

	router.GET("/ws", func(c *gin.Context) {
		realtime.HandleConnections(c, registry, directory, dispatcher, logger, upgrader)
	})

	// テスト時はHTTPサーバーとして運用。デフォルトポートは ":8080"
	router.Run()
}

package mockapi

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nao1215/tourism/pkg/middleware"
)

// Config はサーバーの設定。
type Config struct {
	// Port はリッスンポート。
	Port string
	// JWTSecret はトークン署名用の秘密鍵。
	JWTSecret string
	// TokenTTL は発行するトークンの有効期間。0の場合は24時間。
	TokenTTL time.Duration
	// AllowedOrigins はCORSで許可するオリジン。
	AllowedOrigins []string
	// DBPath はSQLiteファイルのパス。":memory:" の場合はインメモリDB。
	DBPath string
	// AccessLog がtrueの場合はリクエストログを出力する。
	AccessLog bool
}

// Server は開発用バックエンドのHTTPサーバー。
type Server struct {
	// router はGinのHTTPルーター。
	router *gin.Engine
	// port はサーバーのリッスンポート。
	port string
	// db はSQLiteデータベース接続。
	db *sql.DB
	// store はクエリ実行オブジェクト。
	store *store
	// jwtSecret はJWT署名用の秘密鍵。
	jwtSecret string
	// tokenTTL は発行するトークンの有効期間。
	tokenTTL time.Duration
}

// NewServer は新しいサーバーを生成する。
func NewServer(ctx context.Context, cfg Config) (*Server, error) {
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWTシークレットが設定されていません")
	}
	dbPath := cfg.DBPath
	if dbPath == "" {
		dbPath = ":memory:"
	}

	sqlDB, err := openDB(ctx, dbPath)
	if err != nil {
		return nil, err
	}

	router := gin.New()
	router.Use(middleware.Tracing(nil))
	router.Use(middleware.Recovery())
	if cfg.AccessLog {
		router.Use(gin.Logger())
	}
	router.Use(middleware.CORS(cfg.AllowedOrigins))

	s := &Server{
		router:    router,
		port:      cfg.Port,
		db:        sqlDB,
		store:     &store{db: sqlDB},
		jwtSecret: cfg.JWTSecret,
		tokenTTL:  cfg.TokenTTL,
	}
	s.setupRoutes()

	return s, nil
}

// Handler はルーターをhttp.Handlerとして返す。
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run はHTTPサーバーを起動する。
func (s *Server) Run() error {
	return s.router.Run(fmt.Sprintf(":%s", s.port))
}

// Close はデータベース接続を閉じる。
func (s *Server) Close() error {
	return s.db.Close()
}

// setupRoutes はAPIルーティングを設定する。
func (s *Server) setupRoutes() {
	auth := middleware.JWTAuth(s.jwtSecret)

	// 公開サイト向けAPI（code=200）
	api := s.router.Group("/api")
	{
		api.POST("/auth/login", s.handleLogin())
		api.POST("/auth/register", s.handleRegister())
		api.POST("/auth/logout", auth, s.handleLogout())
		api.GET("/auth/me", auth, s.handleProfile())

		api.GET("/user/profile", auth, s.handleProfile())
		api.PUT("/user/profile", auth, s.handleUpdateProfile())

		api.GET("/attractions", s.handleListAttractions())
		api.GET("/attractions/hot", s.handleHotAttractions())
		api.GET("/attractions/:id", s.handleGetAttraction())
		api.POST("/attractions/:id/like", auth, s.handleCountAttraction("like_count", "点赞成功"))
		api.POST("/attractions/:id/collect", auth, s.handleCountAttraction("collection_count", "收藏成功"))

		// 旅行記はcode=0を成功とする
		api.GET("/notes", s.handleListNotes())
		api.GET("/notes/:id", s.handleGetNote())
	}

	// 管理画面向けAPI
	s.router.POST("/admin/login", s.handleAdminLogin())
	admin := s.router.Group("/admin")
	admin.Use(auth, middleware.RequireAdmin())
	{
		admin.GET("/dashboard", s.handleDashboard())
		admin.GET("/attractions", s.handleListAttractions())
		admin.GET("/attractions/:id", s.handleGetAttraction())
		admin.POST("/attractions", s.handleCreateAttraction())
		admin.PUT("/attractions/:id", s.handleUpdateAttraction())
		admin.DELETE("/attractions/:id", s.handleDeleteAttraction())
	}

	// ヘルスチェック（エンベロープ無し）
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "mockapi"})
	})
}

// pathID はURLパラメータidを正の整数として取得する。
func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// pageQuery はクエリパラメータpageとper_pageを取得する。
func pageQuery(c *gin.Context) (int, int) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	perPage, err := strconv.Atoi(c.DefaultQuery("per_page", "10"))
	if err != nil || perPage < 1 {
		perPage = 10
	}
	if perPage > 100 {
		perPage = 100
	}
	return page, perPage
}

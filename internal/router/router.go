package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/itrun-git/itrun-back/internal/authz"
	"github.com/itrun-git/itrun-back/internal/config"
	"github.com/itrun-git/itrun-back/internal/handler"
	"github.com/itrun-git/itrun-back/internal/metrics"
	"github.com/itrun-git/itrun-back/internal/middleware"
	"github.com/itrun-git/itrun-back/internal/ordering"
	"github.com/itrun-git/itrun-back/internal/repository"
	"github.com/itrun-git/itrun-back/internal/response"
	"github.com/itrun-git/itrun-back/internal/service"
	"github.com/itrun-git/itrun-back/internal/validation"
)

const serviceName = "itrun-api"

// Config holds router configuration
type Config struct {
	DB             *gorm.DB
	Logger         *zap.Logger
	JWTSecret      string
	BasePath       string
	AllowedOrigins []string
	Metrics        *metrics.Metrics
	// Gatherer backs /metrics; defaults to the global prometheus registry
	Gatherer    prometheus.Gatherer
	Engine      *ordering.Engine
	S3Client    service.S3Client
	Invites     *service.InviteTokens
	MaxFileSize int64
	RateLimit   config.RateLimitConfig
	Tracing     bool
}

// Setup sets up the router with all routes
func Setup(cfg Config) *gin.Engine {
	if err := validation.Register(); err != nil {
		cfg.Logger.Error("Failed to register validators", zap.Error(err))
	}

	r := gin.New()

	r.Use(middleware.Recovery(cfg.Logger))
	if cfg.Tracing {
		r.Use(otelgin.Middleware(serviceName))
	}
	r.Use(middleware.CORS(cfg.AllowedOrigins))
	if cfg.Metrics != nil {
		r.Use(middleware.Metrics(cfg.Metrics))
	}

	gatherer := cfg.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	metricsHandler := gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	healthHandler := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": serviceName})
	}
	readyHandler := func(c *gin.Context) {
		if !databaseReady(cfg.DB) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready", "service": serviceName})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready", "service": serviceName})
	}

	r.NoRoute(func(c *gin.Context) {
		response.SendError(c, http.StatusNotFound, response.ErrCodeNotFound, "route not found")
	})

	r.GET("/metrics", metricsHandler)
	r.GET("/health", healthHandler)
	r.GET("/ready", readyHandler)

	api := r.Group(cfg.BasePath)
	if cfg.BasePath != "" && cfg.BasePath != "/" {
		api.GET("/metrics", metricsHandler)
		api.GET("/health", healthHandler)
		api.GET("/ready", readyHandler)
	}
	api.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Repositories
	hierarchy := repository.NewHierarchyRepository(cfg.DB)
	workspaceRepo := repository.NewWorkspaceRepository(cfg.DB)
	boardRepo := repository.NewBoardRepository(cfg.DB)
	columnRepo := repository.NewColumnRepository(cfg.DB)
	cardRepo := repository.NewCardRepository(cfg.DB)
	labelRepo := repository.NewLabelRepository(cfg.DB)
	activityRepo := repository.NewActivityRepository(cfg.DB)
	commentRepo := repository.NewCommentRepository(cfg.DB)
	attachmentRepo := repository.NewAttachmentRepository(cfg.DB)
	fileDeletionRepo := repository.NewFileDeletionRepository(cfg.DB)

	// Services
	gate := authz.NewGate(hierarchy, hierarchy)
	workspaceService := service.NewWorkspaceService(gate, workspaceRepo, fileDeletionRepo, cfg.S3Client, cfg.Invites, cfg.Metrics, cfg.Logger)
	boardService := service.NewBoardService(gate, boardRepo, workspaceRepo, columnRepo, cardRepo, labelRepo, activityRepo, fileDeletionRepo, cfg.S3Client, cfg.Metrics, cfg.Logger)
	columnService := service.NewColumnService(gate, cfg.Engine, columnRepo, cardRepo, activityRepo, fileDeletionRepo, cfg.S3Client, cfg.Logger)
	cardService := service.NewCardService(gate, cfg.Engine, cardRepo, boardRepo, labelRepo, activityRepo, fileDeletionRepo, cfg.S3Client, cfg.Metrics, cfg.Logger)
	cardFileService := service.NewCardFileService(gate, attachmentRepo, cardRepo, fileDeletionRepo, cfg.S3Client, cfg.MaxFileSize, cfg.Logger)
	commentService := service.NewCommentService(gate, commentRepo)
	labelService := service.NewLabelService(gate, labelRepo)

	// Handlers
	workspaceHandler := handler.NewWorkspaceHandler(workspaceService)
	boardHandler := handler.NewBoardHandler(boardService)
	columnHandler := handler.NewColumnHandler(columnService)
	cardHandler := handler.NewCardHandler(cardService)
	cardFileHandler := handler.NewCardFileHandler(cardFileService)
	commentHandler := handler.NewCommentHandler(commentService)
	labelHandler := handler.NewLabelHandler(labelService)

	protected := api.Group("")
	protected.Use(middleware.Auth(cfg.JWTSecret))
	if cfg.RateLimit.Enabled {
		protected.Use(middleware.RateLimit(cfg.RateLimit.RPS, cfg.RateLimit.Burst))
	}

	// ============================================================
	// Workspace routes
	// ============================================================
	workspaces := protected.Group("/workspaces")
	{
		workspaces.POST("", workspaceHandler.CreateWorkspace)
		workspaces.GET("/own", workspaceHandler.ListOwnWorkspaces)
		workspaces.GET("/guest", workspaceHandler.ListGuestWorkspaces)
		workspaces.POST("/join", workspaceHandler.JoinWorkspace)
		workspaces.GET("/:workspaceId", workspaceHandler.GetWorkspace)
		workspaces.DELETE("/:workspaceId", workspaceHandler.DeleteWorkspace)
		workspaces.PATCH("/:workspaceId/name", workspaceHandler.UpdateName)
		workspaces.PATCH("/:workspaceId/visibility", workspaceHandler.UpdateVisibility)
		workspaces.PUT("/:workspaceId/image", workspaceHandler.UpdateImage)
		workspaces.GET("/:workspaceId/invite-link", workspaceHandler.GenerateInviteLink)
		workspaces.GET("/:workspaceId/members", workspaceHandler.ListMembers)
		workspaces.PATCH("/:workspaceId/members/:userId/role", workspaceHandler.UpdateMemberRole)
		workspaces.DELETE("/:workspaceId/members/:userId", workspaceHandler.RemoveMember)
		workspaces.DELETE("/:workspaceId/leave", workspaceHandler.Leave)

		workspaces.POST("/:workspaceId/boards", boardHandler.CreateBoard)
		workspaces.GET("/:workspaceId/boards", boardHandler.ListBoards)
	}

	// ============================================================
	// Board routes
	// ============================================================
	boards := protected.Group("/boards")
	{
		boards.GET("/favorites", boardHandler.ListFavorites)
		boards.GET("/recent", boardHandler.ListRecent)
		boards.GET("/:boardId", boardHandler.GetBoard)
		boards.PATCH("/:boardId", boardHandler.UpdateBoard)
		boards.PUT("/:boardId/image", boardHandler.UpdateImage)
		boards.DELETE("/:boardId", boardHandler.DeleteBoard)
		boards.POST("/:boardId/favorite", boardHandler.AddFavorite)
		boards.DELETE("/:boardId/favorite", boardHandler.RemoveFavorite)
		boards.GET("/:boardId/view", boardHandler.GetView)
		boards.GET("/:boardId/activity", boardHandler.ListActivity)
		boards.GET("/:boardId/members", boardHandler.ListMembers)
		boards.POST("/:boardId/members", boardHandler.AddMember)
		boards.PATCH("/:boardId/members/:userId/role", boardHandler.UpdateMemberRole)
		boards.DELETE("/:boardId/members/:userId", boardHandler.RemoveMember)
		boards.DELETE("/:boardId/leave", boardHandler.Leave)

		boards.POST("/:boardId/labels", labelHandler.CreateLabel)
		boards.GET("/:boardId/labels", labelHandler.ListLabels)
		boards.GET("/:boardId/labels/:labelId", labelHandler.GetLabel)
		boards.PATCH("/:boardId/labels/:labelId", labelHandler.UpdateLabel)
		boards.DELETE("/:boardId/labels/:labelId", labelHandler.DeleteLabel)
	}

	// ============================================================
	// Column routes
	// ============================================================
	columns := protected.Group("/workspaces/:workspaceId/boards/:boardId/columns")
	{
		columns.POST("", columnHandler.CreateColumn)
		columns.GET("", columnHandler.ListColumns)
		columns.PATCH("/:columnId", columnHandler.RenameColumn)
		columns.DELETE("/:columnId", columnHandler.DeleteColumn)
		columns.POST("/:columnId/move", columnHandler.MoveColumn)
		columns.POST("/:columnId/copy", columnHandler.CopyColumn)
		columns.PATCH("/:columnId/move-all/:targetColumnId", columnHandler.MoveAllCards)
	}

	// ============================================================
	// Card routes
	// ============================================================
	cards := columns.Group("/:columnId/cards")
	{
		cards.POST("", cardHandler.CreateCard)
		cards.GET("", cardHandler.ListCards)
		cards.GET("/:cardId", cardHandler.GetCard)
		cards.PATCH("/:cardId", cardHandler.UpdateCard)
		cards.DELETE("/:cardId", cardHandler.DeleteCard)
		cards.POST("/:cardId/move", cardHandler.MoveCard)
		cards.PATCH("/:cardId/complete", cardHandler.CompleteCard)
		cards.PATCH("/:cardId/uncomplete", cardHandler.UncompleteCard)
		cards.PATCH("/:cardId/deadline", cardHandler.SetDeadline)
		cards.GET("/:cardId/members", cardHandler.ListMembers)
		cards.POST("/:cardId/members/:userId", cardHandler.AddMember)
		cards.DELETE("/:cardId/members/:userId", cardHandler.RemoveMember)
		cards.POST("/:cardId/subscribe", cardHandler.Subscribe)
		cards.POST("/:cardId/unsubscribe", cardHandler.Unsubscribe)
		cards.GET("/:cardId/labels", cardHandler.ListLabels)
		cards.POST("/:cardId/labels/:labelId", cardHandler.ToggleLabel)

		cards.POST("/:cardId/attachments", cardFileHandler.UploadAttachment)
		cards.GET("/:cardId/attachments", cardFileHandler.ListAttachments)
		cards.GET("/:cardId/attachments/count", cardFileHandler.CountAttachments)
		cards.GET("/:cardId/attachments/:attachmentId/download", cardFileHandler.DownloadAttachment)
		cards.DELETE("/:cardId/attachments/:attachmentId", cardFileHandler.DeleteAttachment)
		cards.PUT("/:cardId/cover", cardFileHandler.UploadCover)
		cards.DELETE("/:cardId/cover", cardFileHandler.DeleteCover)

		cards.POST("/:cardId/comments", commentHandler.AddComment)
		cards.GET("/:cardId/comments", commentHandler.ListComments)
		cards.DELETE("/:cardId/comments/:commentId", commentHandler.DeleteComment)
	}

	return r
}

func databaseReady(db *gorm.DB) bool {
	if db == nil {
		return false
	}
	sqlDB, err := db.DB()
	if err != nil {
		return false
	}
	return sqlDB.Ping() == nil
}

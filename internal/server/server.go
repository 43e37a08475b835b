package server

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"time"

	"anoa.com/studyhub/internal/config"
	"anoa.com/studyhub/internal/middleware"
	"anoa.com/studyhub/pkg/storage"
	appValidator "anoa.com/studyhub/pkg/validator"

	blogHttp "anoa.com/studyhub/internal/modules/blog/delivery/http"
	blogRepo "anoa.com/studyhub/internal/modules/blog/repository"
	blogService "anoa.com/studyhub/internal/modules/blog/service"

	commentHttp "anoa.com/studyhub/internal/modules/comment/delivery/http"
	commentRepo "anoa.com/studyhub/internal/modules/comment/repository"
	commentService "anoa.com/studyhub/internal/modules/comment/service"

	noteHttp "anoa.com/studyhub/internal/modules/note/delivery/http"
	noteRepo "anoa.com/studyhub/internal/modules/note/repository"
	noteService "anoa.com/studyhub/internal/modules/note/service"

	notiHttp "anoa.com/studyhub/internal/modules/notification/delivery/http"
	notifRepo "anoa.com/studyhub/internal/modules/notification/repository"
	notifService "anoa.com/studyhub/internal/modules/notification/service"

	problemHttp "anoa.com/studyhub/internal/modules/problem/delivery/http"
	problemRepo "anoa.com/studyhub/internal/modules/problem/repository"
	problemService "anoa.com/studyhub/internal/modules/problem/service"

	reactionHttp "anoa.com/studyhub/internal/modules/reaction/delivery/http"
	reactionRepo "anoa.com/studyhub/internal/modules/reaction/repository"
	reactionService "anoa.com/studyhub/internal/modules/reaction/service"

	resourceHttp "anoa.com/studyhub/internal/modules/resource/delivery/http"
	resourceRepo "anoa.com/studyhub/internal/modules/resource/repository"
	resourceService "anoa.com/studyhub/internal/modules/resource/service"

	searchHttp "anoa.com/studyhub/internal/modules/search/delivery/http"
	searchService "anoa.com/studyhub/internal/modules/search/service"

	statHttp "anoa.com/studyhub/internal/modules/stat/delivery/http"
	statService "anoa.com/studyhub/internal/modules/stat/service"

	studyRoomHttp "anoa.com/studyhub/internal/modules/studyroom/delivery/http"
	studyRoomRepo "anoa.com/studyhub/internal/modules/studyroom/repository"
	studyRoomService "anoa.com/studyhub/internal/modules/studyroom/service"

	topicHttp "anoa.com/studyhub/internal/modules/topic/delivery/http"
	topicRepo "anoa.com/studyhub/internal/modules/topic/repository"
	topicService "anoa.com/studyhub/internal/modules/topic/service"

	uploadHttp "anoa.com/studyhub/internal/modules/upload/delivery/http"
	uploadService "anoa.com/studyhub/internal/modules/upload/service"

	userHttp "anoa.com/studyhub/internal/modules/user/delivery/http"
	userRepo "anoa.com/studyhub/internal/modules/user/repository"
	userService "anoa.com/studyhub/internal/modules/user/service"

	viewService "anoa.com/studyhub/internal/modules/view/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/meilisearch/meilisearch-go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Deps are the connections built by main. Redis, Meili and Storage may be
// nil; the features that need them degrade to 503 or no-ops.
type Deps struct {
	Config  *config.Config
	DB      *gorm.DB
	Redis   *redis.Client
	Meili   meilisearch.ServiceManager
	Storage storage.FileStorage
	Log     *zap.Logger
}

type Server struct {
	engine *gin.Engine
	http   *http.Server
	log    *zap.Logger
}

func NewServer(deps Deps) *Server {
	cfg := deps.Config
	db := deps.DB
	log := deps.Log

	userRepository := userRepo.NewUserRepository(db)
	userSvc := userService.NewUserService(userRepository, log)
	userHandler := userHttp.NewUserHandler(userSvc)

	searchSvc := searchService.NewSearchService(deps.Meili, log)
	searchHandler := searchHttp.NewSearchHandler(searchSvc)

	viewSvc := viewService.NewViewService(deps.Redis, cfg.ViewDedupeWindow, log)

	topicSvc := topicService.NewTopicService(topicRepo.NewTopicRepository(db))
	topicHandler := topicHttp.NewTopicHandler(topicSvc)

	blogSvc := blogService.NewBlogService(blogRepo.NewBlogRepository(db), topicSvc, viewSvc, searchSvc, deps.Storage, log)
	blogHandler := blogHttp.NewBlogHandler(blogSvc)

	noteSvc := noteService.NewNoteService(noteRepo.NewNoteRepository(db), topicSvc, searchSvc)
	noteHandler := noteHttp.NewNoteHandler(noteSvc)

	problemSvc := problemService.NewProblemService(problemRepo.NewProblemRepository(db), topicSvc, searchSvc,
		problemService.Options{ExclusiveOptimal: cfg.ExclusiveOptimalSolution}, log)
	problemHandler := problemHttp.NewProblemHandler(problemSvc)

	resourceSvc := resourceService.NewResourceService(resourceRepo.NewResourceRepository(db), viewSvc, searchSvc, log)
	resourceHandler := resourceHttp.NewResourceHandler(resourceSvc)

	notificationSvc := notifService.NewNotificationService(notifRepo.NewNotificationRepository(db), deps.Redis, log)
	notificationHandler := notiHttp.NewNotificationHandler(notificationSvc, deps.Redis, originAllowed(cfg.AllowedOrigins), log)

	commentSvc := commentService.NewCommentService(commentRepo.NewCommentRepository(db), resourceSvc, notificationSvc, deps.Redis,
		commentService.Options{AnonCooldown: cfg.AnonCommentCooldown}, log)
	commentHandler := commentHttp.NewCommentHandler(commentSvc)

	reactionSvc := reactionService.NewReactionService(reactionRepo.NewReactionRepository(db))
	reactionHandler := reactionHttp.NewReactionHandler(reactionSvc)

	studyRoomSvc := studyRoomService.NewStudyRoomService(studyRoomRepo.NewStudyRoomRepository(db), userRepository, notificationSvc, log)
	studyRoomHandler := studyRoomHttp.NewStudyRoomHandler(studyRoomSvc)

	uploadSvc := uploadService.NewUploadService(deps.Storage, uploadService.Options{
		Folder:   cfg.CloudinaryUploadFolder,
		MaxBytes: cfg.UploadMaxBytes,
	}, log)
	uploadHandler := uploadHttp.NewUploadHandler(uploadSvc)

	statSvc := statService.NewStatService(statService.Sources{
		Users:     userSvc.CountUsers,
		Blogs:     blogSvc.CountPublished,
		Notes:     noteSvc.CountNotes,
		Problems:  problemSvc.CountProblems,
		Resources: resourceSvc.CountResources,
	})
	statHandler := statHttp.NewStatHandler(statSvc)

	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		if err := appValidator.RegisterCustom(v); err != nil {
			log.Error("failed to register custom validators", zap.Error(err))
		}
	}

	router := gin.New()
	router.HandleMethodNotAllowed = true

	setupCORS(router, cfg.AllowedOrigins)

	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(log, "/healthz"))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	authMiddleware := middleware.NewAuthMiddleware(userSvc, cfg.IdentityJWTSecret, cfg.IdentityIssuer)

	api := router.Group("/api")

	// Public reads; the caller may be anonymous.
	public := api.Group("")
	public.Use(authMiddleware.OptionalAuth())
	{
		public.GET("/topics", topicHandler.ListTopics)
		public.GET("/topics/:slug", topicHandler.GetTopic)

		public.GET("/blogs", blogHandler.ListBlogs)
		public.GET("/blogs/:id", blogHandler.GetBlog)

		public.GET("/notes", noteHandler.ListNotes)
		public.GET("/notes/:id", noteHandler.GetNote)

		public.GET("/problems", problemHandler.ListProblems)
		public.GET("/problems/:id", problemHandler.GetProblem)

		public.GET("/resources", resourceHandler.ListResources)
		public.GET("/resources/:id", resourceHandler.GetResource)
		public.POST("/resources/:id/download", resourceHandler.Download)
		public.GET("/resources/:id/comments", commentHandler.ListComments)
		public.POST("/resources/:id/comments", commentHandler.CreateComment)

		public.GET("/search", searchHandler.Search)
		public.GET("/stats", statHandler.GetStats)
	}

	protected := api.Group("")
	protected.Use(authMiddleware.RequireAuth())
	{
		protected.GET("/me", userHandler.GetMe)

		protected.POST("/blogs", blogHandler.CreateBlog)
		protected.PUT("/blogs/:id", blogHandler.UpdateBlog)
		protected.PATCH("/blogs/:id", blogHandler.UpdateBlog)
		protected.DELETE("/blogs/:id", blogHandler.DeleteBlog)

		protected.POST("/notes", noteHandler.CreateNote)
		protected.PUT("/notes/:id", noteHandler.UpdateNote)
		protected.PATCH("/notes/:id", noteHandler.UpdateNote)
		protected.DELETE("/notes/:id", noteHandler.DeleteNote)

		protected.POST("/resources/:id/ratings", resourceHandler.Rate)

		protected.PUT("/comments/:id", commentHandler.UpdateComment)
		protected.DELETE("/comments/:id", commentHandler.DeleteComment)
		protected.POST("/comments/:id/reactions", reactionHandler.ToggleReaction)

		rooms := protected.Group("/study-rooms")
		{
			rooms.POST("", studyRoomHandler.CreateRoom)
			rooms.GET("", studyRoomHandler.ListMyRooms)
			rooms.POST("/join", studyRoomHandler.JoinRoom)
			rooms.GET("/invitations", studyRoomHandler.ListInvitations)
			rooms.POST("/invitations/:id/respond", studyRoomHandler.RespondInvitation)
			rooms.GET("/:id", studyRoomHandler.GetRoom)
			rooms.DELETE("/:id", studyRoomHandler.DeleteRoom)
			rooms.DELETE("/:id/members/me", studyRoomHandler.LeaveRoom)
			rooms.POST("/:id/invitations", studyRoomHandler.Invite)
		}

		protected.GET("/notifications", notificationHandler.GetNotifications)
		protected.GET("/notifications/unread-count", notificationHandler.UnreadCount)
		protected.PUT("/notifications/:id/read", notificationHandler.MarkAsRead)
		protected.PUT("/notifications/read-all", notificationHandler.MarkAllAsRead)
		protected.GET("/notifications/ws", notificationHandler.HandleWebSocket)

		protected.POST("/upload", uploadHandler.Upload)

		adminGroup := protected.Group("/admin")
		adminGroup.Use(authMiddleware.RequireAdmin())
		{
			adminGroup.GET("/users", userHandler.ListUsers)
			adminGroup.PUT("/users/:id/role", userHandler.UpdateRole)

			adminGroup.POST("/topics", topicHandler.CreateTopic)
			adminGroup.PUT("/topics/:id", topicHandler.UpdateTopic)
			adminGroup.DELETE("/topics/:id", topicHandler.DeleteTopic)
			adminGroup.POST("/topics/:id/subtopics", topicHandler.CreateSubTopic)
			adminGroup.PUT("/subtopics/:id", topicHandler.UpdateSubTopic)
			adminGroup.DELETE("/subtopics/:id", topicHandler.DeleteSubTopic)

			adminGroup.POST("/problems", problemHandler.CreateProblem)
			adminGroup.PUT("/problems/:id", problemHandler.UpdateProblem)
			adminGroup.DELETE("/problems/:id", problemHandler.DeleteProblem)
			adminGroup.POST("/leetcode/bulk-import", problemHandler.BulkImport)

			adminGroup.POST("/resources", resourceHandler.CreateResource)
			adminGroup.PUT("/resources/:id", resourceHandler.UpdateResource)
			adminGroup.DELETE("/resources/:id", resourceHandler.DeleteResource)
		}
	}

	return &Server{
		engine: router,
		log:    log,
	}
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves on addr until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context, addr string) error {
	s.http = &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("http server listening", zap.String("addr", addr))
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	s.log.Info("shutting down http server")
	return s.http.Shutdown(shutdownCtx)
}

func setupCORS(router *gin.Engine, origins []string) {
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", "Retry-After", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
}

// originAllowed gates websocket upgrades with the same list as CORS. Requests
// without an Origin header are not browsers and pass.
func originAllowed(origins []string) func(string) bool {
	return func(origin string) bool {
		return origin == "" || slices.Contains(origins, origin) || slices.Contains(origins, "*")
	}
}

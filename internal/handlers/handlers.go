package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"panchayat/internal/config"
	"panchayat/internal/middleware"
	"panchayat/internal/models"
	"panchayat/internal/service"
)

type (
	NewsService        = service.ContentService[models.News, *models.News]
	EventService       = service.ContentService[models.Event, *models.Event]
	GalleryService     = service.ContentService[models.GalleryItem, *models.GalleryItem]
	DocumentService    = service.ContentService[models.Document, *models.Document]
	MeetingService     = service.ContentService[models.Meeting, *models.Meeting]
	MemberService      = service.ContentService[models.Member, *models.Member]
	ServiceTypeService = service.ContentService[models.ServiceType, *models.ServiceType]
)

// Services groups everything the HTTP layer calls into.
type Services struct {
	Auth            *service.AuthService
	Polls           *service.PollService
	News            *NewsService
	Events          *EventService
	Gallery         *GalleryService
	Documents       *DocumentService
	Meetings        *MeetingService
	Members         *MemberService
	ServiceTypes    *ServiceTypeService
	ServiceRequests *service.ServiceRequestService
}

type HandlerSet struct {
	log    zerolog.Logger
	cfg    *config.AppConfig
	guard  middleware.Authenticator
	svc    Services
	checks []HealthCheck
}

func NewHandlerSet(log zerolog.Logger, cfg *config.AppConfig, guard middleware.Authenticator, svc Services, checks ...HealthCheck) HandlerSet {
	registerValidators()

	return HandlerSet{
		log:    log,
		cfg:    cfg,
		guard:  guard,
		svc:    svc,
		checks: checks,
	}
}

func (h HandlerSet) Register(router *gin.RouterGroup) {
	router.GET("/healthz", h.Health)

	authed := middleware.Auth(h.guard)
	adminOnly := middleware.RequireRoles(models.UserRoleAdmin)

	v1 := router.Group("/v1")
	{
		auth := v1.Group("/auth")
		auth.POST("/register", h.RegisterUser)
		auth.POST("/login", h.Login)
		auth.POST("/forgot-password", h.ForgotPassword)
		auth.GET("/reset-password/:token", h.ValidateResetToken)
		auth.POST("/reset-password/:token", h.ResetPassword)

		protected := v1.Group("/auth", authed)
		protected.GET("/me", h.Me)
		protected.PUT("/profile", h.UpdateProfile)
		protected.PUT("/password", h.ChangePassword)
	}

	users := v1.Group("/users", authed, adminOnly)
	users.GET("", h.ListUsers)
	users.PUT("/:id/role", h.SetUserRole)

	polls := v1.Group("/polls", authed)
	polls.GET("", h.ListPolls)
	polls.GET("/:id", h.GetPoll)
	polls.GET("/:id/results", h.PollResults)
	polls.GET("/:id/my-vote", h.MyVote)
	polls.POST("/:id/vote", h.Vote)
	polls.POST("", adminOnly, h.CreatePoll)
	polls.PUT("/:id", adminOnly, h.UpdatePoll)
	polls.DELETE("/:id", adminOnly, h.DeletePoll)

	editors := []gin.HandlerFunc{authed, adminOnly}
	registerContent(v1.Group("/news"), h.svc.News, filterParams{"category": "category"}, editors)
	registerContent(v1.Group("/events"), h.svc.Events, filterParams{"category": "category"}, editors)
	registerContent(v1.Group("/gallery"), h.svc.Gallery, filterParams{"category": "category"}, editors)
	registerContent(v1.Group("/documents"), h.svc.Documents, filterParams{"category": "category", "fileType": "file_type"}, editors)
	registerContent(v1.Group("/meetings"), h.svc.Meetings, nil, editors)
	registerContent(v1.Group("/members"), h.svc.Members, filterParams{"ward": "ward", "designation": "designation"}, editors)
	registerContent(v1.Group("/service-types"), h.svc.ServiceTypes, nil, editors)

	requests := v1.Group("/service-requests", authed)
	requests.POST("", h.SubmitServiceRequest)
	requests.GET("/mine", h.MyServiceRequests)
	reviewers := middleware.RequireRoles(models.UserRoleAdmin, models.UserRoleSarpanch)
	requests.GET("", reviewers, h.ListServiceRequests)
	requests.PUT("/:id/status", reviewers, h.UpdateServiceRequestStatus)
}

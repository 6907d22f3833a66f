package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"leadflow/internal/interfaces"
	"leadflow/internal/usecases"
)

// Deps bundles everything the route tree needs. CRUD endpoints talk to the
// stores directly; anything with behavior goes through a service.
type Deps struct {
	Auth         *usecases.AuthUsecase
	Companies    interfaces.CompanyStore
	Leads        interfaces.LeadStore
	Profiles     interfaces.ProfileStore
	Templates    interfaces.TemplateStore
	Interactions interfaces.InteractionStore
	Messages     interfaces.MessageStore
	Users        interfaces.UserStore
	EvalCases    interfaces.EvalStore

	Scoring   *usecases.ScoringService
	Outreach  *usecases.OutreachService
	Pipeline  *usecases.PipelineService
	Eval      *usecases.EvalService
	Dashboard *usecases.DashboardUsecase
	Search    interfaces.LeadSearcher

	Log *slog.Logger
}

type Handler struct {
	companies    interfaces.CompanyStore
	leads        interfaces.LeadStore
	profiles     interfaces.ProfileStore
	templates    interfaces.TemplateStore
	interactions interfaces.InteractionStore
	messages     interfaces.MessageStore
	evalCases    interfaces.EvalStore

	scoring   *usecases.ScoringService
	outreach  *usecases.OutreachService
	pipeline  *usecases.PipelineService
	eval      *usecases.EvalService
	dashboard *usecases.DashboardUsecase
	search    interfaces.LeadSearcher

	log *slog.Logger
}

func NewHandler(d Deps) *Handler {
	return &Handler{
		companies:    d.Companies,
		leads:        d.Leads,
		profiles:     d.Profiles,
		templates:    d.Templates,
		interactions: d.Interactions,
		messages:     d.Messages,
		evalCases:    d.EvalCases,
		scoring:      d.Scoring,
		outreach:     d.Outreach,
		pipeline:     d.Pipeline,
		eval:         d.Eval,
		dashboard:    d.Dashboard,
		search:       d.Search,
		log:          d.Log.With("component", "http"),
	}
}

func SetupRoutes(r *gin.Engine, d Deps, middleware *Middleware) {
	h := NewHandler(d)
	adminHandler := NewAdminHandler(d.Users, d.Dashboard, d.Log)

	r.Use(SecurityHeaders())
	r.Use(RequestSizeLimiter(1 << 20)) // 1MB max request size
	r.Use(RequestID())
	r.Use(RequestLogger(d.Log))
	r.Use(middleware.CORSMiddleware())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Public Auth Routes
	authGroup := r.Group("/api/auth")
	{
		authGroup.POST("/login", func(c *gin.Context) {
			var loginReq struct {
				Username string `json:"username" binding:"required"`
				Password string `json:"password" binding:"required"`
			}
			if err := c.ShouldBindJSON(&loginReq); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
				return
			}
			token, user, err := d.Auth.Login(c.Request.Context(), loginReq.Username, loginReq.Password)
			if err != nil {
				switch {
				case errors.Is(err, usecases.ErrInvalidCredentials):
					c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
				case errors.Is(err, usecases.ErrAccountDisabled):
					c.JSON(http.StatusForbidden, gin.H{"error": "account disabled"})
				default:
					respondError(c, h.log, err)
				}
				return
			}
			c.JSON(http.StatusOK, gin.H{"token": token, "user": user})
		})

		authGroup.POST("/register", func(c *gin.Context) {
			var regReq struct {
				Username string `json:"username" binding:"required"`
				Password string `json:"password" binding:"required,min=8"`
			}
			if err := c.ShouldBindJSON(&regReq); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid username or password (min 8 chars)"})
				return
			}
			if !ValidUsername(regReq.Username) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "username must be 3-64 chars, alphanumeric with _ or -"})
				return
			}
			user, err := d.Auth.Register(c.Request.Context(), regReq.Username, regReq.Password)
			if err != nil {
				if errors.Is(err, usecases.ErrUsernameTaken) {
					c.JSON(http.StatusConflict, gin.H{"error": "username already taken"})
					return
				}
				respondError(c, h.log, err)
				return
			}
			c.JSON(http.StatusCreated, gin.H{"status": "registered", "user": user})
		})
	}

	// Protected Routes
	api := r.Group("/api")
	api.Use(middleware.AuthRequired())
	api.Use(middleware.RateLimitPerUser(5, 10))
	{
		api.GET("/dashboard/stats", h.GetDashboardStats)

		// Company Routes
		api.GET("/companies", h.ListCompanies)
		api.POST("/companies", h.CreateCompany)
		api.GET("/companies/:id", h.GetCompany)
		api.PUT("/companies/:id", h.UpdateCompany)
		api.DELETE("/companies/:id", h.DeleteCompany)

		// Lead Routes
		api.GET("/leads", h.ListLeads)
		api.POST("/leads", h.CreateLead)
		api.GET("/leads/:id", h.GetLead)
		api.PUT("/leads/:id", h.UpdateLead)
		api.DELETE("/leads/:id", h.DeleteLead)
		api.POST("/leads/:id/transition", h.TransitionLead)
		api.POST("/leads/:id/score", h.ScoreLead)
		api.POST("/leads/:id/outreach", h.DraftOutreach)
		api.GET("/leads/:id/interactions", h.ListInteractions)
		api.POST("/leads/:id/interactions", h.CreateInteraction)
		api.GET("/leads/:id/messages", h.ListLeadMessages)

		// Message Routes
		api.POST("/messages/:id/send", h.SendMessage)

		// Scoring Profile Routes
		api.GET("/scoring-profiles", h.ListProfiles)
		api.POST("/scoring-profiles", h.CreateProfile)
		api.GET("/scoring-profiles/:id", h.GetProfile)
		api.PUT("/scoring-profiles/:id", h.UpdateProfile)
		api.DELETE("/scoring-profiles/:id", h.DeleteProfile)

		// Template Routes
		api.GET("/templates", h.ListTemplates)
		api.POST("/templates", h.CreateTemplate)
		api.GET("/templates/:id", h.GetTemplate)
		api.PUT("/templates/:id", h.UpdateTemplate)
		api.DELETE("/templates/:id", h.DeleteTemplate)

		// Search + Pipeline
		api.GET("/search", h.Search)
		api.GET("/pipeline/board", h.GetPipelineBoard)
		api.GET("/pipeline/stages", h.GetPipelineStages)

		// Eval Routes
		api.GET("/eval/cases", h.ListEvalCases)
		api.POST("/eval/cases", h.CreateEvalCase)
		api.GET("/eval/cases/:id", h.GetEvalCase)
		api.DELETE("/eval/cases/:id", h.DeleteEvalCase)
		api.POST("/eval/runs", h.StartEvalRun)
		api.GET("/eval/runs", h.ListEvalRuns)
		api.GET("/eval/runs/:id", h.GetEvalRun)
	}

	// Admin-only Routes
	admin := r.Group("/api/admin")
	admin.Use(middleware.AuthRequired())
	admin.Use(middleware.AdminRequired())
	{
		admin.GET("/stats", adminHandler.GetStats)
		admin.GET("/users", adminHandler.GetAllUsers)
		admin.PUT("/users/:id/status", adminHandler.UpdateUserStatus)
	}
}

// pathID parses the numeric :id segment, responding 400 itself on garbage.
func pathID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

// queryInt reads an integer query param, falling back to def on absence or
// garbage.
func queryInt(c *gin.Context, name string, def int) int {
	raw := c.Query(name)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}

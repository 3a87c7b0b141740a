package main

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/factory_backend/middlewares"
	"github.com/mmdatafocus/factory_backend/models"
)

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type changePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=6"`
}

// POST /login is the only route outside the /api group.
func loginHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req loginRequest
		if !bindJSON(c, &req) {
			return
		}
		info, err := models.Login(c.Request.Context(), strings.TrimSpace(req.Username), req.Password)
		if err != nil {
			_ = c.Error(err)
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, info)
	}
}

func registerAccountRoutes(g *gin.RouterGroup) {
	g.POST("/logout", func(c *gin.Context) {
		ok, err := models.Logout(c.Request.Context())
		if err != nil {
			respondInputError(c, "logout", nil, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": ok})
	})

	g.POST("/change-password", func(c *gin.Context) {
		var req changePasswordRequest
		if !bindJSON(c, &req) {
			return
		}
		user, err := models.ChangePassword(c.Request.Context(), req.OldPassword, req.NewPassword)
		if err != nil {
			respondInputError(c, "changePassword", nil, err)
			return
		}
		c.JSON(http.StatusOK, user)
	})

	g.GET("/business", func(c *gin.Context) {
		s, ok := currentSession(c)
		if !ok {
			return
		}
		business, err := models.GetBusiness(s.ctx)
		if err != nil {
			respondError(c, "getBusiness", s.businessId, err)
			return
		}
		c.JSON(http.StatusOK, business)
	})

	admin := g.Group("", middlewares.RequireAdmin())
	admin.POST("/users", func(c *gin.Context) {
		s, ok := currentSession(c)
		if !ok {
			return
		}
		var input models.NewUser
		if !bindJSON(c, &input) {
			return
		}
		// admins only create users in their own business
		input.BusinessId = s.businessId
		user, err := models.CreateUser(s.ctx, &input)
		if err != nil {
			respondInputError(c, "createUser", input.Username, err)
			return
		}
		c.JSON(http.StatusCreated, user)
	})

	registerOutboxRoutes(g, admin)
}

type requeueRequest struct {
	Ids []int `json:"ids"`
}

// registerOutboxRoutes exposes the ledger outbox so stuck rows can be inspected and requeued.
func registerOutboxRoutes(g *gin.RouterGroup, admin *gin.RouterGroup) {
	g.GET("/ledger-outbox", func(c *gin.Context) {
		s, ok := currentSession(c)
		if !ok {
			return
		}
		var status *string
		if raw := strings.ToUpper(strings.TrimSpace(c.Query("status"))); raw != "" {
			status = &raw
		}
		limit, _ := strconv.Atoi(c.Query("limit"))
		records, err := models.GetLedgerOutboxRecords(s.ctx, status, limit)
		if err != nil {
			respondError(c, "listLedgerOutbox", status, err)
			return
		}
		c.JSON(http.StatusOK, records)
	})

	admin.POST("/ledger-outbox/requeue", func(c *gin.Context) {
		s, ok := currentSession(c)
		if !ok {
			return
		}
		var req requeueRequest
		if c.Request.ContentLength > 0 && !bindJSON(c, &req) {
			return
		}
		n, err := models.RequeueDeadLedgerRecords(s.ctx, s.businessId, req.Ids)
		if err != nil {
			respondError(c, "requeueLedgerOutbox", req, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"requeued": n})
	})
}

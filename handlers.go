package main

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/factory_backend/inventory"
	"github.com/mmdatafocus/factory_backend/models"
	"github.com/mmdatafocus/factory_backend/utils"
)

var (
	dataContext inventory.DataContext = models.NewGormDataContext()
	idIssuer    inventory.IdIssuer    = inventory.UUIDIssuer{}
)

type session struct {
	ctx        context.Context
	businessId string
	username   string
}

// currentSession reads the identity RequireUser put on the request.
func currentSession(c *gin.Context) (session, bool) {
	ctx := c.Request.Context()
	businessId, _ := utils.GetBusinessIdFromContext(ctx)
	username, _ := utils.GetUsernameFromContext(ctx)
	if businessId == "" || username == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return session{}, false
	}
	return session{ctx: ctx, businessId: businessId, username: username}, true
}

func paramId(c *gin.Context, name string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		respondBadRequest(c, "invalid "+name)
		return 0, false
	}
	return id, true
}

// queryInt returns nil when the parameter is absent.
func queryInt(c *gin.Context, name string) (*int, bool) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		respondBadRequest(c, "invalid "+name)
		return nil, false
	}
	return &v, true
}

func queryBool(c *gin.Context, name string) bool {
	v, _ := strconv.ParseBool(strings.TrimSpace(c.Query(name)))
	return v
}

func loadSnapshot(c *gin.Context, s session, funcName string) (*models.Snapshot, bool) {
	snapshot, err := models.LoadSnapshot(s.ctx)
	if err != nil {
		respondError(c, funcName, s.businessId, err)
		return nil, false
	}
	return snapshot, true
}

// withUserLock runs fn while holding the per-user lock of lockType.
// A second submission while the first is running gets ErrorBusy.
func withUserLock(s session, lockType string, funcName string, fn func() error) error {
	lock, err := utils.ObtainUserLock(s.ctx, s.businessId, s.username, lockType, "server", funcName)
	if err != nil {
		return err
	}
	defer func() { _ = lock.Release(context.Background()) }()
	return fn()
}

// generic delete for every collection the data context knows
func deleteEntityHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		s, ok := currentSession(c)
		if !ok {
			return
		}
		id, ok := paramId(c, "id")
		if !ok {
			return
		}
		collection := c.Param("collection")
		if err := dataContext.DeleteEntity(s.ctx, collection, id); err != nil {
			respondError(c, "deleteEntityHandler", gin.H{"collection": collection, "id": id}, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

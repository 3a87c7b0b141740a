package main

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/factory_backend/config"
	"github.com/mmdatafocus/factory_backend/inventory"
	"github.com/mmdatafocus/factory_backend/models"
	"github.com/mmdatafocus/factory_backend/utils"
)

type stockResponse struct {
	Position *inventory.StockPosition  `json:"position,omitempty"`
	Types    []inventory.StockPosition `json:"types,omitempty"`
	Batches  []inventory.StockPosition `json:"batches,omitempty"`
}

// GET /stock?supplier_id=&original_type_id=&batch_number=
// With supplier and type the single position is returned, otherwise every position.
func getStockHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		s, ok := currentSession(c)
		if !ok {
			return
		}
		supplierId, ok := queryInt(c, "supplier_id")
		if !ok {
			return
		}
		typeId, ok := queryInt(c, "original_type_id")
		if !ok {
			return
		}
		snapshot, ok := loadSnapshot(c, s, "getStockHandler")
		if !ok {
			return
		}
		if supplierId != nil && typeId != nil {
			key := inventory.StockKey{SupplierId: *supplierId, OriginalTypeId: *typeId}
			if batch := strings.TrimSpace(c.Query("batch_number")); batch != "" {
				key.BatchNumber = &batch
			}
			pos := inventory.Aggregate(snapshot, key)
			c.JSON(http.StatusOK, stockResponse{Position: &pos})
			return
		}
		idx := inventory.BuildStockIndex(snapshot)
		c.JSON(http.StatusOK, stockResponse{Types: idx.Types(), Batches: idx.Batches()})
	}
}

func planOpeningHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		s, ok := currentSession(c)
		if !ok {
			return
		}
		var req inventory.OpeningRequest
		if !bindJSON(c, &req) {
			return
		}
		snapshot, ok := loadSnapshot(c, s, "planOpeningHandler")
		if !ok {
			return
		}
		plan, err := inventory.PlanOpening(snapshot, req)
		if err != nil {
			respondError(c, "planOpeningHandler", req, err)
			return
		}
		c.JSON(http.StatusOK, plan)
	}
}

// postOpeningHandler answers 409 with the plan when the request exceeds the
// available stock and was not confirmed.
func postOpeningHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		s, ok := currentSession(c)
		if !ok {
			return
		}
		var req inventory.OpeningRequest
		if !bindJSON(c, &req) {
			return
		}
		req.Strict = config.StrictOpeningStock()
		snapshot, ok := loadSnapshot(c, s, "postOpeningHandler")
		if !ok {
			return
		}
		opening, err := inventory.PostOpening(s.ctx, snapshot, dataContext, req)
		if err != nil {
			respondError(c, "postOpeningHandler", req, err)
			return
		}
		c.JSON(http.StatusCreated, opening)
	}
}

func deleteOpeningHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		s, ok := currentSession(c)
		if !ok {
			return
		}
		id, ok := paramId(c, "id")
		if !ok {
			return
		}
		if err := inventory.DeleteOpening(s.ctx, dataContext, id); err != nil {
			respondError(c, "deleteOpeningHandler", id, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func listOpeningsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		s, ok := currentSession(c)
		if !ok {
			return
		}
		supplierId, ok := queryInt(c, "supplier_id")
		if !ok {
			return
		}
		openings, err := models.GetOriginalOpenings(s.ctx, supplierId)
		if err != nil {
			respondError(c, "listOpeningsHandler", supplierId, err)
			return
		}
		c.JSON(http.StatusOK, openings)
	}
}

func sellableBatchesHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		s, ok := currentSession(c)
		if !ok {
			return
		}
		supplierId, ok := queryInt(c, "supplier_id")
		if !ok {
			return
		}
		snapshot, ok := loadSnapshot(c, s, "sellableBatchesHandler")
		if !ok {
			return
		}
		batches := inventory.SellableBatches(snapshot, utils.DereferencePtr(supplierId))
		if batches == nil {
			batches = []inventory.SellableBatch{}
		}
		c.JSON(http.StatusOK, batches)
	}
}

func directSaleHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		s, ok := currentSession(c)
		if !ok {
			return
		}
		var req inventory.DirectSaleRequest
		if !bindJSON(c, &req) {
			return
		}
		var invoice *models.SalesInvoice
		err := withUserLock(s, "direct_sale", "directSaleHandler", func() error {
			// snapshot is loaded under the lock
			snapshot, err := models.LoadSnapshot(s.ctx)
			if err != nil {
				return err
			}
			invoice, err = inventory.RecordDirectSale(s.ctx, snapshot, dataContext, idIssuer, req)
			return err
		})
		if err != nil {
			respondError(c, "directSaleHandler", req, err)
			return
		}
		c.JSON(http.StatusCreated, invoice)
	}
}

/* production session */

func newProductionSession(ctx context.Context) (*inventory.ProductionSession, error) {
	return inventory.NewProductionSession(), nil
}

func registerProductionRoutes(g *gin.RouterGroup) {
	type ps = inventory.ProductionSession

	g.GET("/production-session", draftAction("getProductionSession", http.StatusOK, newProductionSession,
		func(c *gin.Context, s session, draft *ps) (any, error) { return nil, nil }))
	g.DELETE("/production-session", discardDraftHandler[ps]())

	g.POST("/production-session/production", draftAction("addProduction", http.StatusCreated, newProductionSession,
		func(c *gin.Context, s session, draft *ps) (any, error) {
			var line inventory.ProductionLine
			if !bindJSON(c, &line) {
				return nil, errResponded
			}
			snapshot, err := snapshotFor(s)
			if err != nil {
				return nil, err
			}
			if _, err := draft.AddProduction(snapshot, line); err != nil {
				return nil, err
			}
			return nil, nil
		}))

	g.POST("/production-session/rebaling", draftAction("addRebaling", http.StatusCreated, newProductionSession,
		func(c *gin.Context, s session, draft *ps) (any, error) {
			var req inventory.RebalingRequest
			if !bindJSON(c, &req) {
				return nil, errResponded
			}
			snapshot, err := snapshotFor(s)
			if err != nil {
				return nil, err
			}
			summary, err := draft.AddRebaling(idIssuer, snapshot, req)
			if err != nil {
				return nil, err
			}
			return gin.H{"session": draft, "summary": summary}, nil
		}))

	g.POST("/production-session/finalize", finalizeProductionHandler())

	g.GET("/production-entries", func(c *gin.Context) {
		s, ok := currentSession(c)
		if !ok {
			return
		}
		itemId, ok := queryInt(c, "item_id")
		if !ok {
			return
		}
		entries, err := models.GetProductionEntries(s.ctx, itemId)
		if err != nil {
			respondError(c, "getProductionEntries", itemId, err)
			return
		}
		c.JSON(http.StatusOK, entries)
	})
}

// finalizeProductionHandler saves the session and drops the draft; the next
// session seeds its serials from the updated items.
func finalizeProductionHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		s, ok := currentSession(c)
		if !ok {
			return
		}
		var saved []models.ProductionEntry
		err := withUserLock(s, "finalize", "finalizeProductionHandler", func() error {
			draft, err := retrieveProductionSession(s)
			if err != nil {
				return err
			}
			if saved, err = draft.Finalize(s.ctx, dataContext); err != nil {
				return err
			}
			if err := discardProductionSession(s); err != nil {
				config.LogError(config.GetLogger(), "server", "finalizeProductionHandler", "discard saved session", s.username, err)
			}
			return nil
		})
		if err != nil {
			respondError(c, "finalizeProductionHandler", s.username, err)
			return
		}
		c.JSON(http.StatusCreated, saved)
	}
}

func retrieveProductionSession(s session) (*inventory.ProductionSession, error) {
	draft, err := utils.RetrieveDraft[inventory.ProductionSession](s.businessId, s.username)
	if err != nil {
		return nil, err
	}
	if draft == nil {
		return inventory.NewProductionSession(), nil
	}
	return draft, nil
}

func discardProductionSession(s session) error {
	return utils.RemoveDraft[inventory.ProductionSession](s.businessId, s.username)
}

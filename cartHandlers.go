package main

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/factory_backend/config"
	"github.com/mmdatafocus/factory_backend/inventory"
	"github.com/mmdatafocus/factory_backend/models"
	"github.com/mmdatafocus/factory_backend/utils"
	"github.com/sirupsen/logrus"
)

// errResponded tells draftAction that the step already wrote its response.
var errResponded = errors.New("response written")

// draftAction loads the user's draft of T (or starts one), applies step and stores
// the draft only when step succeeds, so a failed step leaves the saved draft as it was.
// A nil result responds with the draft itself.
func draftAction[T any](funcName string, status int, newDraft func(ctx context.Context) (*T, error), step func(c *gin.Context, s session, draft *T) (any, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, ok := currentSession(c)
		if !ok {
			return
		}
		draft, err := loadDraft(s, newDraft)
		if err != nil {
			respondError(c, funcName, s.username, err)
			return
		}
		result, err := step(c, s, draft)
		if errors.Is(err, errResponded) {
			return
		}
		if err != nil {
			respondError(c, funcName, s.username, err)
			return
		}
		if err := utils.StoreDraft(s.businessId, s.username, draft); err != nil {
			respondError(c, funcName, s.username, err)
			return
		}
		if result == nil {
			result = draft
		}
		c.JSON(status, result)
	}
}

func loadDraft[T any](s session, newDraft func(ctx context.Context) (*T, error)) (*T, error) {
	draft, err := utils.RetrieveDraft[T](s.businessId, s.username)
	if err != nil {
		return nil, err
	}
	if draft == nil {
		return newDraft(s.ctx)
	}
	return draft, nil
}

// finalizeDraftHandler saves the user's draft of T while holding the finalize
// lock. The draft is read and written back under the same lock, so a second
// submission sees the emptied cart.
func finalizeDraftHandler[T any, R any](funcName string, newDraft func(ctx context.Context) (*T, error), finalize func(s session, draft *T) (R, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, ok := currentSession(c)
		if !ok {
			return
		}
		saved, err := finalizeUnderLock(
			func(fn func() error) error { return withUserLock(s, "finalize", funcName, fn) },
			func() (*T, error) { return loadDraft(s, newDraft) },
			draftWriter[T]{
				store:  func(draft *T) error { return utils.StoreDraft(s.businessId, s.username, draft) },
				remove: func() error { return utils.RemoveDraft[T](s.businessId, s.username) },
				logError: func(context string, err error) {
					config.LogError(config.GetLogger(), "server", funcName, context, s.username, err)
				},
			},
			func(draft *T) (R, error) { return finalize(s, draft) },
		)
		if err != nil {
			respondError(c, funcName, s.username, err)
			return
		}
		c.JSON(http.StatusCreated, saved)
	}
}

type draftWriter[T any] struct {
	store    func(draft *T) error
	remove   func() error
	logError func(context string, err error)
}

// finalizeUnderLock loads, finalizes and writes back the draft inside lock.
// Once the record is saved the call succeeds: a failed write of the emptied
// draft falls back to removing it, and both failures are only logged.
func finalizeUnderLock[T any, R any](lock func(fn func() error) error, load func() (*T, error), w draftWriter[T], finalize func(draft *T) (R, error)) (R, error) {
	var saved R
	err := lock(func() error {
		draft, err := load()
		if err != nil {
			return err
		}
		if saved, err = finalize(draft); err != nil {
			return err
		}
		if err := w.store(draft); err != nil {
			w.logError("store finalized draft", err)
			if err := w.remove(); err != nil {
				w.logError("remove finalized draft", err)
			}
		}
		return nil
	})
	return saved, err
}

func discardDraftHandler[T any]() gin.HandlerFunc {
	return func(c *gin.Context) {
		s, ok := currentSession(c)
		if !ok {
			return
		}
		if err := utils.RemoveDraft[T](s.businessId, s.username); err != nil {
			respondError(c, "discardDraftHandler", s.username, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func snapshotFor(s session) (*models.Snapshot, error) {
	return models.LoadSnapshot(s.ctx)
}

/* purchase cart */

type purchaseHeaderRequest struct {
	inventory.CartHeader
	BatchNumber string `json:"batch_number"`
}

type cartPreview[T any] struct {
	Cart    any `json:"cart"`
	Preview T   `json:"preview"`
}

func newPurchaseCart(ctx context.Context) (*inventory.PurchaseCart, error) {
	next, err := models.NextBatchNumber(ctx)
	if err != nil {
		return nil, err
	}
	return inventory.NewPurchaseCart(next), nil
}

func registerPurchaseCartRoutes(g *gin.RouterGroup) {
	type cart = inventory.PurchaseCart
	ok := http.StatusOK

	g.GET("/purchase-cart", draftAction("getPurchaseCart", ok, newPurchaseCart,
		func(c *gin.Context, s session, draft *cart) (any, error) { return nil, nil }))
	g.DELETE("/purchase-cart", discardDraftHandler[cart]())

	g.PUT("/purchase-cart/header", draftAction("setPurchaseCartHeader", ok, newPurchaseCart,
		func(c *gin.Context, s session, draft *cart) (any, error) {
			var req purchaseHeaderRequest
			if !bindJSON(c, &req) {
				return nil, errResponded
			}
			snapshot, err := snapshotFor(s)
			if err != nil {
				return nil, err
			}
			return nil, draft.SetHeader(snapshot, req.CartHeader, req.BatchNumber)
		}))

	g.POST("/purchase-cart/lines", draftAction("addPurchaseCartLine", http.StatusCreated, newPurchaseCart,
		func(c *gin.Context, s session, draft *cart) (any, error) {
			var in inventory.NewCartLine
			if !bindJSON(c, &in) {
				return nil, errResponded
			}
			snapshot, err := snapshotFor(s)
			if err != nil {
				return nil, err
			}
			if _, err := draft.AddLine(idIssuer, snapshot, in); err != nil {
				return nil, err
			}
			return nil, nil
		}))

	g.DELETE("/purchase-cart/lines/:id", draftAction("removePurchaseCartLine", ok, newPurchaseCart,
		func(c *gin.Context, s session, draft *cart) (any, error) {
			return nil, draft.RemoveLine(c.Param("id"))
		}))

	g.POST("/purchase-cart/costs", draftAction("addPurchaseCartCost", http.StatusCreated, newPurchaseCart,
		func(c *gin.Context, s session, draft *cart) (any, error) {
			var in inventory.NewAdditionalCost
			if !bindJSON(c, &in) {
				return nil, errResponded
			}
			snapshot, err := snapshotFor(s)
			if err != nil {
				return nil, err
			}
			if _, err := draft.AddAdditionalCost(idIssuer, snapshot, in); err != nil {
				return nil, err
			}
			return nil, nil
		}))

	g.DELETE("/purchase-cart/costs/:id", draftAction("removePurchaseCartCost", ok, newPurchaseCart,
		func(c *gin.Context, s session, draft *cart) (any, error) {
			return nil, draft.RemoveAdditionalCost(c.Param("id"))
		}))

	g.POST("/purchase-cart/review", draftAction("reviewPurchaseCart", ok, newPurchaseCart,
		func(c *gin.Context, s session, draft *cart) (any, error) {
			snapshot, err := snapshotFor(s)
			if err != nil {
				return nil, err
			}
			if err := draft.Review(snapshot); err != nil {
				return nil, err
			}
			return cartPreview[models.Purchase]{Cart: draft, Preview: draft.Build()}, nil
		}))

	g.POST("/purchase-cart/print", draftAction("printPurchaseCart", ok, newPurchaseCart,
		func(c *gin.Context, s session, draft *cart) (any, error) {
			draft.MarkPrinted()
			return cartPreview[models.Purchase]{Cart: draft, Preview: draft.Build()}, nil
		}))

	g.POST("/purchase-cart/finalize", finalizeDraftHandler("finalizePurchaseCart", newPurchaseCart,
		func(s session, draft *cart) (*models.Purchase, error) {
			warnIfNotPrinted(s, draft.Printed, "purchase")
			return draft.Finalize(s.ctx, dataContext)
		}))
}

/* bundle cart */

func newBundleCart(ctx context.Context) (*inventory.BundleCart, error) {
	return inventory.NewBundleCart(), nil
}

func registerBundleCartRoutes(g *gin.RouterGroup) {
	type cart = inventory.BundleCart
	ok := http.StatusOK

	g.GET("/bundle-cart", draftAction("getBundleCart", ok, newBundleCart,
		func(c *gin.Context, s session, draft *cart) (any, error) { return nil, nil }))
	g.DELETE("/bundle-cart", discardDraftHandler[cart]())

	g.PUT("/bundle-cart/header", draftAction("setBundleCartHeader", ok, newBundleCart,
		func(c *gin.Context, s session, draft *cart) (any, error) {
			var header inventory.CartHeader
			if !bindJSON(c, &header) {
				return nil, errResponded
			}
			snapshot, err := snapshotFor(s)
			if err != nil {
				return nil, err
			}
			return nil, draft.SetHeader(snapshot, header)
		}))

	g.POST("/bundle-cart/lines", draftAction("addBundleCartLine", http.StatusCreated, newBundleCart,
		func(c *gin.Context, s session, draft *cart) (any, error) {
			var in inventory.NewBundleLine
			if !bindJSON(c, &in) {
				return nil, errResponded
			}
			snapshot, err := snapshotFor(s)
			if err != nil {
				return nil, err
			}
			if _, err := draft.AddLine(idIssuer, snapshot, in); err != nil {
				return nil, err
			}
			return nil, nil
		}))

	g.DELETE("/bundle-cart/lines/:id", draftAction("removeBundleCartLine", ok, newBundleCart,
		func(c *gin.Context, s session, draft *cart) (any, error) {
			return nil, draft.RemoveLine(c.Param("id"))
		}))

	g.POST("/bundle-cart/costs", draftAction("addBundleCartCost", http.StatusCreated, newBundleCart,
		func(c *gin.Context, s session, draft *cart) (any, error) {
			var in inventory.NewAdditionalCost
			if !bindJSON(c, &in) {
				return nil, errResponded
			}
			snapshot, err := snapshotFor(s)
			if err != nil {
				return nil, err
			}
			if _, err := draft.AddAdditionalCost(idIssuer, snapshot, in); err != nil {
				return nil, err
			}
			return nil, nil
		}))

	g.DELETE("/bundle-cart/costs/:id", draftAction("removeBundleCartCost", ok, newBundleCart,
		func(c *gin.Context, s session, draft *cart) (any, error) {
			return nil, draft.RemoveAdditionalCost(c.Param("id"))
		}))

	g.POST("/bundle-cart/review", draftAction("reviewBundleCart", ok, newBundleCart,
		func(c *gin.Context, s session, draft *cart) (any, error) {
			snapshot, err := snapshotFor(s)
			if err != nil {
				return nil, err
			}
			if err := draft.Review(snapshot); err != nil {
				return nil, err
			}
			return cartPreview[models.BundlePurchase]{Cart: draft, Preview: draft.Build()}, nil
		}))

	g.POST("/bundle-cart/print", draftAction("printBundleCart", ok, newBundleCart,
		func(c *gin.Context, s session, draft *cart) (any, error) {
			draft.MarkPrinted()
			return cartPreview[models.BundlePurchase]{Cart: draft, Preview: draft.Build()}, nil
		}))

	g.POST("/bundle-cart/finalize", finalizeDraftHandler("finalizeBundleCart", newBundleCart,
		func(s session, draft *cart) (*models.BundlePurchase, error) {
			warnIfNotPrinted(s, draft.Printed, "bundle")
			return draft.Finalize(s.ctx, dataContext)
		}))
}

// the print gate is advisory: saving goes ahead, the skip is logged
func warnIfNotPrinted(s session, printed bool, cart string) {
	if printed || !config.RequirePrintBeforeSave() {
		return
	}
	config.GetLogger().WithFields(logrus.Fields{
		"field":       "finalizeCart",
		"cart":        cart,
		"business_id": s.businessId,
		"username":    s.username,
	}).Warn("cart saved without printing the review sheet")
}

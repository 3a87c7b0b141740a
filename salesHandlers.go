package main

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/factory_backend/inventory"
	"github.com/mmdatafocus/factory_backend/models"
)

func registerSalesRoutes(g *gin.RouterGroup) {
	g.GET("/sales-invoices", listSalesInvoicesHandler())
	g.POST("/sales-invoices", createSalesInvoiceHandler())
	g.GET("/sales-invoices/:id", func(c *gin.Context) {
		s, ok := currentSession(c)
		if !ok {
			return
		}
		id, ok := paramId(c, "id")
		if !ok {
			return
		}
		invoice, err := models.GetSalesInvoice(s.ctx, id)
		if err != nil {
			respondError(c, "getSalesInvoice", id, err)
			return
		}
		c.JSON(http.StatusOK, invoice)
	})
	g.PUT("/sales-invoices/:id", updateSalesInvoiceHandler())
	g.POST("/sales-invoices/:id/post", func(c *gin.Context) {
		s, ok := currentSession(c)
		if !ok {
			return
		}
		id, ok := paramId(c, "id")
		if !ok {
			return
		}
		invoice, err := models.PostSalesInvoice(s.ctx, id)
		if err != nil {
			respondError(c, "postSalesInvoice", id, err)
			return
		}
		c.JSON(http.StatusOK, invoice)
	})

	g.GET("/ongoing-orders", listOngoingOrdersHandler())
	g.POST("/ongoing-orders", createOngoingOrderHandler())
	g.GET("/ongoing-orders/:id", func(c *gin.Context) {
		s, ok := currentSession(c)
		if !ok {
			return
		}
		id, ok := paramId(c, "id")
		if !ok {
			return
		}
		order, err := models.GetOngoingOrder(s.ctx, id)
		if err != nil {
			respondError(c, "getOngoingOrder", id, err)
			return
		}
		c.JSON(http.StatusOK, order)
	})
	g.GET("/ongoing-orders/:id/shipment", openShipmentHandler())
	g.POST("/ongoing-orders/:id/shipments", confirmShipmentHandler())
}

func listSalesInvoicesHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		s, ok := currentSession(c)
		if !ok {
			return
		}
		customerId, ok := queryInt(c, "customer_id")
		if !ok {
			return
		}
		var status *models.SalesInvoiceStatus
		if raw := strings.TrimSpace(c.Query("status")); raw != "" {
			st := models.SalesInvoiceStatus(raw)
			if st != models.SalesInvoiceStatusPosted && st != models.SalesInvoiceStatusUnposted {
				respondBadRequest(c, "invalid status")
				return
			}
			status = &st
		}
		invoices, err := models.GetSalesInvoices(s.ctx, customerId, status)
		if err != nil {
			respondError(c, "listSalesInvoicesHandler", customerId, err)
			return
		}
		c.JSON(http.StatusOK, invoices)
	}
}

func createSalesInvoiceHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		s, ok := currentSession(c)
		if !ok {
			return
		}
		var req inventory.NewSalesInvoice
		if !bindJSON(c, &req) {
			return
		}
		snapshot, ok := loadSnapshot(c, s, "createSalesInvoiceHandler")
		if !ok {
			return
		}
		invoice, err := inventory.CreateSalesInvoice(s.ctx, snapshot, dataContext, req)
		if err != nil {
			respondError(c, "createSalesInvoiceHandler", req, err)
			return
		}
		c.JSON(http.StatusCreated, invoice)
	}
}

func updateSalesInvoiceHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		s, ok := currentSession(c)
		if !ok {
			return
		}
		id, ok := paramId(c, "id")
		if !ok {
			return
		}
		var req inventory.NewSalesInvoice
		if !bindJSON(c, &req) {
			return
		}
		snapshot, ok := loadSnapshot(c, s, "updateSalesInvoiceHandler")
		if !ok {
			return
		}
		invoice, err := inventory.UpdateSalesInvoice(s.ctx, snapshot, dataContext, id, req)
		if err != nil {
			respondError(c, "updateSalesInvoiceHandler", req, err)
			return
		}
		c.JSON(http.StatusOK, invoice)
	}
}

func listOngoingOrdersHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		s, ok := currentSession(c)
		if !ok {
			return
		}
		var status *models.OngoingOrderStatus
		if raw := strings.TrimSpace(c.Query("status")); raw != "" {
			st := models.OngoingOrderStatus(raw)
			switch st {
			case models.OngoingOrderStatusActive, models.OngoingOrderStatusPartiallyShipped, models.OngoingOrderStatusCompleted:
			default:
				respondBadRequest(c, "invalid status")
				return
			}
			status = &st
		}
		orders, err := models.GetOngoingOrders(s.ctx, status)
		if err != nil {
			respondError(c, "listOngoingOrdersHandler", status, err)
			return
		}
		c.JSON(http.StatusOK, orders)
	}
}

func createOngoingOrderHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		s, ok := currentSession(c)
		if !ok {
			return
		}
		var req inventory.NewOngoingOrder
		if !bindJSON(c, &req) {
			return
		}
		snapshot, ok := loadSnapshot(c, s, "createOngoingOrderHandler")
		if !ok {
			return
		}
		order, err := inventory.CreateOngoingOrder(s.ctx, snapshot, dataContext, req)
		if err != nil {
			respondError(c, "createOngoingOrderHandler", req, err)
			return
		}
		c.JSON(http.StatusCreated, order)
	}
}

type shipmentView struct {
	Order *models.OngoingOrder     `json:"order"`
	Lines []inventory.ShipmentLine `json:"lines"`
}

// openShipmentHandler proposes the outstanding quantity of every line.
func openShipmentHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		s, ok := currentSession(c)
		if !ok {
			return
		}
		id, ok := paramId(c, "id")
		if !ok {
			return
		}
		order, err := models.GetOngoingOrder(s.ctx, id)
		if err != nil {
			respondError(c, "openShipmentHandler", id, err)
			return
		}
		c.JSON(http.StatusOK, shipmentView{Order: order, Lines: inventory.OpenShipment(*order)})
	}
}

type shipmentRequest struct {
	Items []models.ShipmentItem `json:"items" binding:"required"`
}

func confirmShipmentHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		s, ok := currentSession(c)
		if !ok {
			return
		}
		id, ok := paramId(c, "id")
		if !ok {
			return
		}
		var req shipmentRequest
		if !bindJSON(c, &req) {
			return
		}
		var shipped []models.ShipmentItem
		err := withUserLock(s, "shipment", "confirmShipmentHandler", func() error {
			order, err := models.GetOngoingOrder(s.ctx, id)
			if err != nil {
				return err
			}
			shipped, err = inventory.ConfirmShipment(s.ctx, dataContext, *order, req.Items)
			return err
		})
		if err != nil {
			respondError(c, "confirmShipmentHandler", req, err)
			return
		}
		order, err := models.GetOngoingOrder(s.ctx, id)
		if err != nil {
			respondError(c, "confirmShipmentHandler", id, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"order": order, "shipped": shipped})
	}
}

/* purchase records */

func registerPurchaseRoutes(g *gin.RouterGroup) {
	g.GET("/purchases", func(c *gin.Context) {
		s, ok := currentSession(c)
		if !ok {
			return
		}
		supplierId, ok := queryInt(c, "supplier_id")
		if !ok {
			return
		}
		var batch *string
		if raw := strings.TrimSpace(c.Query("batch_number")); raw != "" {
			batch = &raw
		}
		purchases, err := models.GetPurchases(s.ctx, supplierId, batch)
		if err != nil {
			respondError(c, "listPurchases", supplierId, err)
			return
		}
		c.JSON(http.StatusOK, purchases)
	})
	g.GET("/purchases/:id", func(c *gin.Context) {
		s, ok := currentSession(c)
		if !ok {
			return
		}
		id, ok := paramId(c, "id")
		if !ok {
			return
		}
		purchase, err := models.GetPurchase(s.ctx, id)
		if err != nil {
			respondError(c, "getPurchase", id, err)
			return
		}
		c.JSON(http.StatusOK, purchase)
	})
	g.POST("/purchases/:id/documents", documentUploadHandler("purchases"))

	g.GET("/bundle-purchases", func(c *gin.Context) {
		s, ok := currentSession(c)
		if !ok {
			return
		}
		bundles, err := models.GetBundlePurchases(s.ctx)
		if err != nil {
			respondError(c, "listBundlePurchases", s.businessId, err)
			return
		}
		c.JSON(http.StatusOK, bundles)
	})
	g.GET("/bundle-purchases/:id", func(c *gin.Context) {
		s, ok := currentSession(c)
		if !ok {
			return
		}
		id, ok := paramId(c, "id")
		if !ok {
			return
		}
		bundle, err := models.GetBundlePurchase(s.ctx, id)
		if err != nil {
			respondError(c, "getBundlePurchase", id, err)
			return
		}
		c.JSON(http.StatusOK, bundle)
	})
	g.POST("/bundle-purchases/:id/documents", documentUploadHandler("bundle_purchases"))
}

package main

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/factory_backend/models/reports"
	"github.com/mmdatafocus/factory_backend/utils"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func registerReportRoutes(g *gin.RouterGroup) {
	g.GET("/reports/stock-valuation", stockValuationHandler(false))
	g.GET("/reports/stock-valuation.xlsx", stockValuationHandler(true))
	g.GET("/reports/direct-sale-batches", directSaleBatchesHandler(false))
	g.GET("/reports/direct-sale-batches.xlsx", directSaleBatchesHandler(true))
}

// GET /reports/stock-valuation?by_batch=&supplier_id=
func stockValuationHandler(asExcel bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, ok := currentSession(c)
		if !ok {
			return
		}
		supplierId, ok := queryInt(c, "supplier_id")
		if !ok {
			return
		}
		report, err := reports.GetStockValuationReport(s.ctx, queryBool(c, "by_batch"), utils.DereferencePtr(supplierId))
		if err != nil {
			respondError(c, "stockValuationHandler", supplierId, err)
			return
		}
		if !asExcel {
			c.JSON(http.StatusOK, report)
			return
		}
		writeExcelResponse(c, "stock_valuation", reports.StockValuationHeadings, report.ExcelRows())
	}
}

// GET /reports/direct-sale-batches?supplier_id=&include_exhausted=
func directSaleBatchesHandler(asExcel bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, ok := currentSession(c)
		if !ok {
			return
		}
		supplierId, ok := queryInt(c, "supplier_id")
		if !ok {
			return
		}
		report, err := reports.GetDirectSaleBatchReport(s.ctx, utils.DereferencePtr(supplierId), queryBool(c, "include_exhausted"))
		if err != nil {
			respondError(c, "directSaleBatchesHandler", supplierId, err)
			return
		}
		if !asExcel {
			c.JSON(http.StatusOK, report)
			return
		}
		writeExcelResponse(c, "direct_sale_batches", reports.DirectSaleBatchHeadings, report.ExcelRows())
	}
}

func writeExcelResponse(c *gin.Context, name string, headings []string, rows []reports.ExcelExporter) {
	var buf bytes.Buffer
	if err := reports.WriteExcel(&buf, headings, rows); err != nil {
		respondError(c, "writeExcelResponse", name, err)
		return
	}
	filename := fmt.Sprintf("%s_%s.xlsx", name, time.Now().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

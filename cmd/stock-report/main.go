// stock-report writes the stock valuation of one business to an .xlsx file.
//
// Usage:
//
//	go run ./cmd/stock-report --business-id <uuid> [--by-batch] [--supplier-id 3] [--out stock.xlsx]
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mmdatafocus/factory_backend/config"
	"github.com/mmdatafocus/factory_backend/models/reports"
	"github.com/mmdatafocus/factory_backend/utils"
)

func main() {
	businessID := flag.String("business-id", "", "Required: business id (uuid)")
	byBatch := flag.Bool("by-batch", false, "One row per supplier, type and batch")
	supplierID := flag.Int("supplier-id", 0, "Optional: only this supplier")
	out := flag.String("out", "", "Output file (default stock_valuation_<date>.xlsx)")
	flag.Parse()

	if strings.TrimSpace(*businessID) == "" {
		fmt.Fprintln(os.Stderr, "--business-id is required")
		os.Exit(1)
	}
	filename := *out
	if filename == "" {
		filename = fmt.Sprintf("stock_valuation_%s.xlsx", time.Now().Format("20060102"))
	}

	config.ConnectDatabaseWithRetry()
	if config.GetDB() == nil {
		fmt.Fprintln(os.Stderr, "database not initialized")
		os.Exit(1)
	}
	ctx := utils.SetBusinessIdInContext(context.Background(), *businessID)

	report, err := reports.GetStockValuationReport(ctx, *byBatch, *supplierID)
	if err != nil {
		config.LogError(config.GetLogger(), "stock-report", "main", "GetStockValuationReport", *businessID, err)
		os.Exit(1)
	}
	if err := reports.SaveExcel(filename, reports.StockValuationHeadings, report.ExcelRows()); err != nil {
		config.LogError(config.GetLogger(), "stock-report", "main", "SaveExcel", filename, err)
		os.Exit(1)
	}
	fmt.Printf("wrote %d rows to %s (total %s kg, value %s)\n",
		len(report.Rows), filename, report.TotalWeight.StringFixed(2), report.TotalValue.StringFixed(2))
}

// outbox-replay moves DEAD ledger outbox rows back to PENDING so the dispatcher
// publishes them again.
//
// Usage:
//
//	go run ./cmd/outbox-replay [--business-id <uuid>] [--ids 12,13]
//
// Without --business-id every tenant is requeued.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/mmdatafocus/factory_backend/config"
	"github.com/mmdatafocus/factory_backend/models"
	"github.com/sirupsen/logrus"
)

func main() {
	businessID := flag.String("business-id", "", "Optional: only this business")
	idsFlag := flag.String("ids", "", "Optional: comma separated outbox ids")
	flag.Parse()

	var ids []int
	for _, raw := range strings.Split(*idsFlag, ",") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		id, err := strconv.Atoi(raw)
		if err != nil || id <= 0 {
			fmt.Fprintf(os.Stderr, "invalid id %q\n", raw)
			os.Exit(1)
		}
		ids = append(ids, id)
	}

	config.ConnectDatabaseWithRetry()
	if config.GetDB() == nil {
		fmt.Fprintln(os.Stderr, "database not initialized")
		os.Exit(1)
	}

	n, err := models.RequeueDeadLedgerRecords(context.Background(), strings.TrimSpace(*businessID), ids)
	if err != nil {
		config.LogError(config.GetLogger(), "outbox-replay", "main", "RequeueDeadLedgerRecords", ids, err)
		os.Exit(1)
	}
	config.GetLogger().WithFields(logrus.Fields{
		"field":       "outbox-replay",
		"business_id": *businessID,
		"requeued":    n,
	}).Info("dead ledger rows requeued")
}

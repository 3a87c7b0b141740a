package models

import (
	"context"
	"time"

	"github.com/mmdatafocus/factory_backend/config"
	"github.com/mmdatafocus/factory_backend/utils"
)

// Outbox publish statuses for LedgerOutboxRecord.PublishStatus.
const (
	OutboxPublishStatusPending    = "PENDING"
	OutboxPublishStatusProcessing = "PROCESSING"
	OutboxPublishStatusSent       = "SENT"
	OutboxPublishStatusFailed     = "FAILED"
	OutboxPublishStatusDead       = "DEAD"
)

type LedgerOutboxRecord struct {
	ID                  int                 `gorm:"primary_key;index:idx_outbox_dispatch,priority:3" json:"id"`
	BusinessId          string              `gorm:"size:64;not null;index" json:"business_id"`
	TransactionDateTime time.Time           `gorm:"index;not null" json:"transaction_date_time"`
	ReferenceId         int                 `gorm:"index" json:"reference_id"`
	ReferenceType       LedgerReferenceType `gorm:"type:enum('PU','BP','OO','PR','SI','DS','SH')" json:"reference_type"`
	Action              LedgerAction        `gorm:"type:enum('C','U','D')" json:"action"`
	OldObj              []byte              `gorm:"type:blob" json:"old_obj"`
	NewObj              []byte              `gorm:"type:blob" json:"new_obj"`
	PublishStatus       string              `gorm:"size:20;index;not null;default:'PENDING';index:idx_outbox_dispatch,priority:1" json:"publish_status"` // PENDING|PROCESSING|SENT|FAILED|DEAD
	PublishedAt         *time.Time          `gorm:"index" json:"published_at"`
	PubSubMessageId     *string             `gorm:"size:255" json:"pubsub_message_id"`
	PublishAttempts     int                 `gorm:"not null;default:0" json:"publish_attempts"`
	NextAttemptAt       *time.Time          `gorm:"index;index:idx_outbox_dispatch,priority:2" json:"next_attempt_at"`
	LockedAt            *time.Time          `gorm:"index" json:"locked_at"`
	LockedBy            *string             `gorm:"size:100" json:"locked_by"`
	LastPublishError    *string             `gorm:"type:text" json:"last_publish_error"`
	CorrelationId       string              `gorm:"size:64;index" json:"correlation_id"`
	CreatedAt           time.Time           `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt           time.Time           `gorm:"autoUpdateTime" json:"updated_at"`
}

func ConvertToLedgerMessage(record LedgerOutboxRecord) config.LedgerMessage {
	return config.LedgerMessage{
		ID:                  record.ID,
		BusinessId:          record.BusinessId,
		TransactionDateTime: record.TransactionDateTime,
		ReferenceId:         record.ReferenceId,
		ReferenceType:       string(record.ReferenceType),
		Action:              string(record.Action),
		OldObj:              record.OldObj,
		NewObj:              record.NewObj,
		CorrelationId:       record.CorrelationId,
	}
}

// GetLedgerOutboxRecords lists the latest outbox rows of the business, optionally by status.
func GetLedgerOutboxRecords(ctx context.Context, status *string, limit int) ([]*LedgerOutboxRecord, error) {
	businessId, err := businessIdFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	dbCtx := config.GetDB().WithContext(ctx).Where("business_id = ?", businessId)
	if status != nil && *status != "" {
		dbCtx = dbCtx.Where("publish_status = ?", *status)
	}
	var results []*LedgerOutboxRecord
	if err := dbCtx.Order("id DESC").Limit(limit).Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// RequeueDeadLedgerRecords moves DEAD rows back to PENDING with a fresh attempt budget.
// An empty businessId requeues across all tenants (ops tool).
func RequeueDeadLedgerRecords(ctx context.Context, businessId string, ids []int) (int64, error) {
	db := config.GetDB().WithContext(utils.SetSkipTenantScopeInContext(ctx, businessId == ""))
	q := db.Model(&LedgerOutboxRecord{}).Where("publish_status = ?", OutboxPublishStatusDead)
	if businessId != "" {
		q = q.Where("business_id = ?", businessId)
	}
	if len(ids) > 0 {
		q = q.Where("id IN ?", ids)
	}
	res := q.Updates(map[string]interface{}{
		"publish_status":     OutboxPublishStatusPending,
		"publish_attempts":   0,
		"next_attempt_at":    nil,
		"locked_at":          nil,
		"locked_by":          nil,
		"last_publish_error": nil,
	})
	return res.RowsAffected, res.Error
}

package models

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/mmdatafocus/factory_backend/utils"
	"gorm.io/gorm"
)

var ErrBusinessIdRequired = errors.New("business id is required")

func businessIdFromContext(ctx context.Context) (string, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return "", ErrBusinessIdRequired
	}
	return businessId, nil
}

// PublishToLedger is the transactional outbox write: the record is created inside the
// caller's transaction and published to Pub/Sub by the dispatcher after commit.
func PublishToLedger(ctx context.Context, tx *gorm.DB, businessId string, transactionDateTime time.Time, refId int, refType LedgerReferenceType, obj interface{}, oldObj interface{}, action LedgerAction) error {
	var objInByte []byte
	var oldObjInByte []byte
	var err error

	if action == LedgerActionCreate || action == LedgerActionUpdate {
		objInByte, err = json.Marshal(obj)
		if err != nil {
			return err
		}
	}
	if action == LedgerActionUpdate || action == LedgerActionDelete {
		oldObjInByte, err = json.Marshal(oldObj)
		if err != nil {
			return err
		}
	}

	record := LedgerOutboxRecord{
		BusinessId:          businessId,
		TransactionDateTime: transactionDateTime,
		ReferenceId:         refId,
		ReferenceType:       refType,
		Action:              action,
		NewObj:              objInByte,
		OldObj:              oldObjInByte,
		PublishStatus:       OutboxPublishStatusPending,
		CorrelationId:       correlationIdFromContextOrNew(ctx),
	}
	return tx.WithContext(ctx).Create(&record).Error
}

func correlationIdFromContextOrNew(ctx context.Context) string {
	if ctx != nil {
		if v, ok := utils.GetCorrelationIdFromContext(ctx); ok && v != "" {
			return v
		}
	}
	return uuid.NewString()
}

// rollbackOnPanic is deferred right after db.Begin().
func rollbackOnPanic(tx *gorm.DB) {
	if r := recover(); r != nil {
		_ = tx.Rollback().Error
		panic(r)
	}
}

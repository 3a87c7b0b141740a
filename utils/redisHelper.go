package utils

import (
	"context"
	"os"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/mmdatafocus/factory_backend/config"
)

var mutex sync.Mutex

// DRAFT_HOUR_LIFESPAN bounds how long an untouched cart or session survives, 72h by default.
func GetDraftLifespan() time.Duration {
	lifespan, err := strconv.Atoi(os.Getenv("DRAFT_HOUR_LIFESPAN"))
	if err != nil || lifespan <= 0 {
		lifespan = 72
	}
	return time.Duration(lifespan) * time.Hour
}

/* generic functions */

func GetTypeName[T any]() string {
	var v T
	return reflect.TypeOf(v).Name()
}

/* Drafts */

func draftKey[T any](businessId string, username string) string {
	return GetTypeName[T]() + ":Draft:" + businessId + ":" + username
}

// StoreDraft keeps the user's unsaved draft of type T.
func StoreDraft[T any](businessId string, username string, draft *T) error {
	return config.SetRedisObject(draftKey[T](businessId, username), draft, GetDraftLifespan())
}

// RetrieveDraft returns nil when the user has no draft of type T.
func RetrieveDraft[T any](businessId string, username string) (*T, error) {
	var result T
	exists, err := config.GetRedisObject(draftKey[T](businessId, username), &result)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, nil
	}
	return &result, nil
}

func RemoveDraft[T any](businessId string, username string) error {
	return config.RemoveRedisKey(draftKey[T](businessId, username))
}

/* Sequences */

// GetSequence returns the next sequence_no for T, seeding the redis counter from the db max.
func GetSequence[T any](ctx context.Context, businessId string) (int64, error) {
	var model T
	mutex.Lock()
	defer mutex.Unlock()
	cacheKey := businessId + "-" + strings.ToLower(GetTypeName[T]()) + "_seq"
	var seqNo int64
	var err error
	db := config.GetDB()

	for {
		seqNo, err = config.GetRedisCounter(ctx, cacheKey)
		if err != nil {
			return 0, err
		}
		// counter was missing, seed from db
		if seqNo <= 1 {
			var dbSeq *int64
			if err := db.WithContext(ctx).Model(&model).Select("max(sequence_no)").
				Where("business_id = ?", businessId).
				Scan(&dbSeq).Error; err != nil {
				return 0, err
			}
			if dbSeq == nil {
				seqNo = 0
			} else {
				seqNo = *dbSeq
			}
			seqNo++
			if err := config.SetRedisObject(cacheKey, &seqNo, 0); err != nil {
				return 0, err
			}
		}
		// skip numbers already taken in db
		err = ValidateUnique[T](ctx, businessId, "sequence_no", seqNo, 0)
		if err == nil {
			break
		}
	}
	return seqNo, nil
}

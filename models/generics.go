package models

import (
	"context"

	"github.com/mmdatafocus/factory_backend/config"
	"github.com/mmdatafocus/factory_backend/utils"
)

// GetResource fetches one row of the current business (may return RecordNotFound).
func GetResource[T any](ctx context.Context, id int, associations ...string) (*T, error) {
	businessId, err := businessIdFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return utils.FetchModel[T](ctx, businessId, id, associations...)
}

// ListResources lists every row of the current business ordered by id.
func ListResources[T any](ctx context.Context, associations ...string) ([]*T, error) {
	businessId, err := businessIdFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return utils.FetchAllModels[T](ctx, businessId, associations...)
}

func ToggleActiveModel[T any](ctx context.Context, id int, isActive bool) (*T, error) {
	businessId, err := businessIdFromContext(ctx)
	if err != nil {
		return nil, err
	}
	result, err := utils.FetchModel[T](ctx, businessId, id)
	if err != nil {
		return nil, err
	}
	if err := config.GetDB().WithContext(ctx).Model(result).Update("is_active", isActive).Error; err != nil {
		return nil, err
	}
	return result, nil
}

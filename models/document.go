package models

import (
	"context"
	"errors"
	"time"

	"github.com/mmdatafocus/factory_backend/config"
	"github.com/mmdatafocus/factory_backend/utils"
	"gorm.io/gorm"
)

// Document is an uploaded file (bill of lading, packing list, photo) attached to a record.
type Document struct {
	ID            int       `gorm:"primary_key" json:"id"`
	BusinessId    string    `gorm:"index;not null" json:"business_id"`
	DocumentUrl   string    `json:"document_url"`
	ObjectKey     string    `gorm:"size:255" json:"object_key"`
	ThumbnailUrl  string    `json:"thumbnail_url"`
	MimeType      string    `gorm:"size:100" json:"mime_type"`
	ReferenceType string    `gorm:"size:50;index:idx_document_ref,priority:1" json:"reference_type"`
	ReferenceID   int       `gorm:"index:idx_document_ref,priority:2" json:"reference_id"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
}

type NewDocument struct {
	DocumentUrl   string
	ObjectKey     string
	ThumbnailUrl  string
	MimeType      string
	ReferenceType string
	ReferenceID   int
}

// CreateDocument attaches an uploaded object to a purchase or bundle purchase.
func CreateDocument(ctx context.Context, input *NewDocument) (*Document, error) {
	businessId, err := businessIdFromContext(ctx)
	if err != nil {
		return nil, err
	}
	switch input.ReferenceType {
	case "purchases":
		err = utils.ValidateResourceId[Purchase](ctx, businessId, input.ReferenceID)
	case "bundle_purchases":
		err = utils.ValidateResourceId[BundlePurchase](ctx, businessId, input.ReferenceID)
	default:
		err = errors.New("documents can only be attached to purchases")
	}
	if err != nil {
		return nil, err
	}
	doc := Document{
		BusinessId:    businessId,
		DocumentUrl:   input.DocumentUrl,
		ObjectKey:     input.ObjectKey,
		ThumbnailUrl:  input.ThumbnailUrl,
		MimeType:      input.MimeType,
		ReferenceType: input.ReferenceType,
		ReferenceID:   input.ReferenceID,
	}
	if err := config.GetDB().WithContext(ctx).Create(&doc).Error; err != nil {
		return nil, err
	}
	return &doc, nil
}

// deleteDocuments removes the rows and the stored objects; storage failures are logged only.
func deleteDocuments(ctx context.Context, tx *gorm.DB, documents []*Document) error {
	for _, d := range documents {
		if err := tx.Delete(d).Error; err != nil {
			return err
		}
		if d.ObjectKey != "" {
			if err := utils.DeleteObjectFromGCS(ctx, d.ObjectKey); err != nil {
				config.LogError(config.GetLogger(), "Document", "deleteDocuments", "delete object", d.ObjectKey, err)
			}
		}
	}
	return nil
}

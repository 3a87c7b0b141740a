package main

import (
	"context"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/factory_backend/models"
)

// masterResource binds one master data collection to its create/update functions.
type masterResource[T any, In any] struct {
	path       string
	collection string
	create     func(ctx context.Context, input *In) (*T, error)
	update     func(ctx context.Context, id int, input *In) (*T, error)
	toggleable bool
}

func registerMaster[T any, In any](g *gin.RouterGroup, r masterResource[T, In]) {
	g.GET(r.path, func(c *gin.Context) {
		s, ok := currentSession(c)
		if !ok {
			return
		}
		results, err := models.ListResources[T](s.ctx)
		if err != nil {
			respondError(c, "list:"+r.collection, s.businessId, err)
			return
		}
		if results == nil {
			results = []*T{}
		}
		c.JSON(http.StatusOK, results)
	})

	g.GET(r.path+"/:id", func(c *gin.Context) {
		s, ok := currentSession(c)
		if !ok {
			return
		}
		id, ok := paramId(c, "id")
		if !ok {
			return
		}
		result, err := models.GetResource[T](s.ctx, id)
		if err != nil {
			respondError(c, "get:"+r.collection, id, err)
			return
		}
		c.JSON(http.StatusOK, result)
	})

	g.POST(r.path, func(c *gin.Context) {
		s, ok := currentSession(c)
		if !ok {
			return
		}
		var input In
		if !bindJSON(c, &input) {
			return
		}
		result, err := r.create(s.ctx, &input)
		if err != nil {
			respondInputError(c, "create:"+r.collection, input, err)
			return
		}
		c.JSON(http.StatusCreated, result)
	})

	g.PUT(r.path+"/:id", func(c *gin.Context) {
		s, ok := currentSession(c)
		if !ok {
			return
		}
		id, ok := paramId(c, "id")
		if !ok {
			return
		}
		var input In
		if !bindJSON(c, &input) {
			return
		}
		result, err := r.update(s.ctx, id, &input)
		if err != nil {
			respondInputError(c, "update:"+r.collection, input, err)
			return
		}
		c.JSON(http.StatusOK, result)
	})

	g.DELETE(r.path+"/:id", func(c *gin.Context) {
		c.Params = append(c.Params, gin.Param{Key: "collection", Value: r.collection})
		deleteEntityHandler()(c)
	})

	if r.toggleable {
		g.PATCH(r.path+"/:id/active", func(c *gin.Context) {
			s, ok := currentSession(c)
			if !ok {
				return
			}
			id, ok := paramId(c, "id")
			if !ok {
				return
			}
			var req struct {
				IsActive *bool `json:"is_active" binding:"required"`
			}
			if !bindJSON(c, &req) {
				return
			}
			result, err := models.ToggleActiveModel[T](s.ctx, id, *req.IsActive)
			if err != nil {
				respondError(c, "toggle:"+r.collection, id, err)
				return
			}
			c.JSON(http.StatusOK, result)
		})
	}
}

func registerMasterDataRoutes(g *gin.RouterGroup) {
	registerMaster(g, masterResource[models.Partner, models.NewPartner]{
		path: "/partners", collection: "partners",
		create: models.CreatePartner, update: models.UpdatePartner, toggleable: true,
	})
	registerMaster(g, masterResource[models.Item, models.NewItem]{
		path: "/items", collection: "items",
		create: models.CreateItem, update: models.UpdateItem, toggleable: true,
	})
	registerMaster(g, masterResource[models.OriginalType, models.NewOriginalType]{
		path: "/original-types", collection: "original_types",
		create: models.CreateOriginalType, update: models.UpdateOriginalType,
	})
	registerMaster(g, masterResource[models.OriginalProduct, models.NewOriginalProduct]{
		path: "/original-products", collection: "original_products",
		create: models.CreateOriginalProduct, update: models.UpdateOriginalProduct,
	})
	registerMaster(g, masterResource[models.Currency, models.NewCurrency]{
		path: "/currencies", collection: "currencies",
		create: models.CreateCurrency, update: models.UpdateCurrency, toggleable: true,
	})
	registerMaster(g, masterResource[models.Division, models.NewDivision]{
		path: "/divisions", collection: "divisions",
		create: models.CreateDivision, update: models.UpdateDivision,
	})
	registerMaster(g, masterResource[models.SubDivision, models.NewSubDivision]{
		path: "/sub-divisions", collection: "sub_divisions",
		create: models.CreateSubDivision, update: models.UpdateSubDivision,
	})
	registerMaster(g, masterResource[models.Account, models.NewAccount]{
		path: "/accounts", collection: "accounts",
		create: models.CreateAccount, update: models.UpdateAccount, toggleable: true,
	})

	g.POST("/items/import", importItemsHandler())
}

// importItemsHandler creates items from an uploaded .xlsx sheet.
// Bad rows are reported per row and do not stop the rest.
func importItemsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		s, ok := currentSession(c)
		if !ok {
			return
		}
		fileHeader, err := c.FormFile("file")
		if err != nil {
			respondBadRequest(c, "file is required")
			return
		}
		if !strings.EqualFold(filepath.Ext(fileHeader.Filename), ".xlsx") {
			respondBadRequest(c, "only .xlsx files are supported")
			return
		}
		if fileHeader.Size > maxUploadSizeBytes {
			respondBadRequest(c, errFileTooLarge.Error())
			return
		}
		file, err := fileHeader.Open()
		if err != nil {
			respondBadRequest(c, "invalid file")
			return
		}
		defer file.Close()

		result, err := models.ImportItemsFromXlsx(s.ctx, file)
		if err != nil {
			respondInputError(c, "importItemsHandler", fileHeader.Filename, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

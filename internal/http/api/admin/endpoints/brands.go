package endpoints

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/postflow-app/postflow/internal/db"
	"github.com/postflow-app/postflow/internal/http/api"
	"github.com/postflow-app/postflow/internal/http/api/admin/packets"
	"github.com/postflow-app/postflow/internal/model"
	"github.com/postflow-app/postflow/internal/storage"
)

// BrandModule mounts brand CRUD and brand document uploads.
func BrandModule(store db.Store, files storage.Storage) api.Module {
	ctl := &brandController{store: store, files: files}
	return api.ModuleFunc(func(c *api.Controller) {
		c.POST("/brands", ctl.create)
		c.GET("/brands", ctl.list)
		c.GET("/brands/:id", ctl.get)
		c.PUT("/brands/:id", ctl.update)
		c.DELETE("/brands/:id", ctl.delete)
		c.POST("/brands/:id/documents", ctl.uploadDocument)
		c.GET("/brands/:id/documents", ctl.listDocuments)
	})
}

type brandController struct {
	store db.Store
	files storage.Storage
}

// owned loads a brand and hides it (404) from anyone but its creator.
func (b *brandController) owned(id int, user *model.User) (model.Brand, *api.APIError) {
	brand, err := b.store.GetBrandByID(id)
	if err != nil || brand.CreatedBy != user.ID {
		return model.Brand{}, &api.APIError{Code: http.StatusNotFound, Message: "brand not found"}
	}
	return brand, nil
}

func (b *brandController) create(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	var request packets.BrandRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	brand, err := b.store.CreateBrand(model.Brand{
		Name:           request.Name,
		Sector:         request.Sector,
		Description:    request.Description,
		TargetAudience: request.TargetAudience,
		ToneOfVoice:    request.ToneOfVoice,
		BrandValues:    request.BrandValues,
		StyleGuide:     request.StyleGuide,
		WebsiteURL:     request.WebsiteURL,
		CreatedBy:      user.ID,
	})
	if err != nil {
		log.Error().Err(err).Msg("could not create brand")
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not create brand"}
	}
	return brand, nil
}

func (b *brandController) list(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	brands, err := b.store.ListBrands(user.ID)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not list brands"}
	}
	return brands, nil
}

func (b *brandController) get(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	id, ok := paramInt(ctx, "id")
	if !ok {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "invalid brand id"}
	}
	brand, apiErr := b.owned(id, user)
	if apiErr != nil {
		return nil, apiErr
	}
	return brand, nil
}

func (b *brandController) update(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	id, ok := paramInt(ctx, "id")
	if !ok {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "invalid brand id"}
	}
	brand, apiErr := b.owned(id, user)
	if apiErr != nil {
		return nil, apiErr
	}

	var request packets.BrandRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	brand.Name = request.Name
	brand.Sector = request.Sector
	brand.Description = request.Description
	brand.TargetAudience = request.TargetAudience
	brand.ToneOfVoice = request.ToneOfVoice
	brand.BrandValues = request.BrandValues
	brand.StyleGuide = request.StyleGuide
	brand.WebsiteURL = request.WebsiteURL

	if err := b.store.UpdateBrand(brand); err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not update brand"}
	}

	updated, err := b.store.GetBrandByID(id)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not fetch updated brand"}
	}
	return updated, nil
}

func (b *brandController) delete(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	id, ok := paramInt(ctx, "id")
	if !ok {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "invalid brand id"}
	}
	if _, apiErr := b.owned(id, user); apiErr != nil {
		return nil, apiErr
	}
	if err := b.store.DeleteBrand(id); err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not delete brand"}
	}
	return gin.H{"deleted": id}, nil
}

// POST /brands/:id/documents expects a multipart form with a "file" field.
func (b *brandController) uploadDocument(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	id, ok := paramInt(ctx, "id")
	if !ok {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "invalid brand id"}
	}
	if _, apiErr := b.owned(id, user); apiErr != nil {
		return nil, apiErr
	}

	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "missing file"}
	}

	url, err := b.files.SaveFile(fileHeader, fileHeader.Filename)
	if err != nil {
		log.Error().Err(err).Int("brand_id", id).Msg("could not store document")
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not store document"}
	}

	doc, err := b.store.CreateBrandDocument(id, fileHeader.Filename, url)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not save document"}
	}
	return doc, nil
}

func (b *brandController) listDocuments(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	id, ok := paramInt(ctx, "id")
	if !ok {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "invalid brand id"}
	}
	if _, apiErr := b.owned(id, user); apiErr != nil {
		return nil, apiErr
	}
	docs, err := b.store.ListBrandDocuments(id)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not list documents"}
	}
	return docs, nil
}

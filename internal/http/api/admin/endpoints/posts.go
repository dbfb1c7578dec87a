package endpoints

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/postflow-app/postflow/internal/db"
	"github.com/postflow-app/postflow/internal/http/api"
	"github.com/postflow-app/postflow/internal/http/api/admin/packets"
	"github.com/postflow-app/postflow/internal/model"
)

// PostModule mounts calendar entry endpoints. Posts are normally created by
// generation; manual create exists for one-off entries.
func PostModule(store db.Store) api.Module {
	ctl := &postController{store: store}
	return api.ModuleFunc(func(c *api.Controller) {
		c.GET("/posts/project/:projectID", ctl.listByProject)
		c.POST("/posts/project/:projectID", ctl.create)
		c.PUT("/posts/:id", ctl.update)
		c.DELETE("/posts/:id", ctl.delete)
	})
}

type postController struct {
	store db.Store
}

func (p *postController) listByProject(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	projectID, ok := paramInt(ctx, "projectID")
	if !ok {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "invalid project id"}
	}
	if _, apiErr := ownedProject(p.store, projectID, user); apiErr != nil {
		return nil, apiErr
	}
	posts, err := p.store.ListPostsByProject(projectID)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not list posts"}
	}
	return posts, nil
}

func (p *postController) create(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	projectID, ok := paramInt(ctx, "projectID")
	if !ok {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "invalid project id"}
	}
	if _, apiErr := ownedProject(p.store, projectID, user); apiErr != nil {
		return nil, apiErr
	}

	post, apiErr := p.fromRequest(ctx)
	if apiErr != nil {
		return nil, apiErr
	}
	post.PublicationStatus = model.PostStatusScheduled

	if err := p.store.CreatePosts(projectID, []model.Post{post}); err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not create post"}
	}

	posts, err := p.store.ListPostsByProject(projectID)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not list posts"}
	}
	return posts, nil
}

func (p *postController) update(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	id, ok := paramInt(ctx, "id")
	if !ok {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "invalid post id"}
	}
	existing, apiErr := p.ownedPost(id, user)
	if apiErr != nil {
		return nil, apiErr
	}

	post, apiErr := p.fromRequest(ctx)
	if apiErr != nil {
		return nil, apiErr
	}
	post.ID = existing.ID
	post.ProjectID = existing.ProjectID
	post.PublicationStatus = existing.PublicationStatus

	if err := p.store.UpdatePost(post); err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not update post"}
	}

	updated, err := p.store.GetPostByID(id)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not fetch updated post"}
	}
	return updated, nil
}

func (p *postController) delete(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	id, ok := paramInt(ctx, "id")
	if !ok {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "invalid post id"}
	}
	if _, apiErr := p.ownedPost(id, user); apiErr != nil {
		return nil, apiErr
	}
	if err := p.store.DeletePost(id); err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not delete post"}
	}
	return gin.H{"deleted": id}, nil
}

func (p *postController) ownedPost(id int, user *model.User) (model.Post, *api.APIError) {
	post, err := p.store.GetPostByID(id)
	if err != nil {
		return model.Post{}, &api.APIError{Code: http.StatusNotFound, Message: "post not found"}
	}
	if _, apiErr := ownedProject(p.store, post.ProjectID, user); apiErr != nil {
		return model.Post{}, &api.APIError{Code: http.StatusNotFound, Message: "post not found"}
	}
	return post, nil
}

func (p *postController) fromRequest(ctx *gin.Context) (model.Post, *api.APIError) {
	var request packets.PostRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return model.Post{}, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}
	date, err := parseDate(request.ScheduledDate)
	if err != nil {
		return model.Post{}, &api.APIError{Code: http.StatusBadRequest, Message: "invalid scheduled_date, want YYYY-MM-DD"}
	}

	tags := request.Hashtags
	if tags == nil {
		tags = []string{}
	}
	contentType := request.ContentType
	if contentType == "" {
		contentType = "post"
	}

	return model.Post{
		Platform:         request.Platform,
		ScheduledDate:    date,
		ScheduledTime:    request.ScheduledTime,
		Content:          request.Content,
		Hashtags:         jsonText(tags),
		ContentType:      contentType,
		PostType:         request.PostType,
		Pillar:           request.Pillar,
		VisualSuggestion: request.VisualSuggestion,
		CTA:              request.CTA,
	}, nil
}

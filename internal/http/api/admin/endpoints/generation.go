package endpoints

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/postflow-app/postflow/internal/db"
	"github.com/postflow-app/postflow/internal/generation"
	"github.com/postflow-app/postflow/internal/http/api"
	"github.com/postflow-app/postflow/internal/http/api/admin/packets"
	"github.com/postflow-app/postflow/internal/model"
)

// GenerationModule mounts the calendar generation trigger, the polled status
// endpoint, the regeneration overlap check and single-post regeneration.
func GenerationModule(store db.Store, manager *generation.Manager, tracker generation.ProgressStore, refiner generation.PostRefiner) api.Module {
	ctl := &generationController{store: store, manager: manager, tracker: tracker, refiner: refiner}
	return api.ModuleFunc(func(c *api.Controller) {
		c.POST("/generation/calendar/:projectID", ctl.start)
		c.GET("/generation/status/:projectID", ctl.status)
		c.POST("/generation/check-overlap/:projectID", ctl.checkOverlap)
		c.POST("/generation/regenerate-post/:postID", ctl.regeneratePost)
	})
}

type generationController struct {
	store   db.Store
	manager *generation.Manager
	tracker generation.ProgressStore
	refiner generation.PostRefiner
}

// start is fire-and-forget: the worker is spawned and the request returns at
// once; clients follow up by polling status.
func (g *generationController) start(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	projectID, ok := paramInt(ctx, "projectID")
	if !ok {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "invalid project id"}
	}
	project, apiErr := ownedProject(g.store, projectID, user)
	if apiErr != nil {
		return nil, apiErr
	}

	if err := g.manager.Start(projectID); err != nil {
		if errors.Is(err, generation.ErrAlreadyRunning) {
			return nil, &api.APIError{Code: http.StatusConflict, Message: "generation already running"}
		}
		log.Error().Err(err).Int("project_id", projectID).Msg("could not start generation")
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not start generation"}
	}

	return packets.GenerationStartResponse{
		Status:         model.ProjectStatusGenerating,
		PersonasStatus: generation.PersonasStatus(project),
	}, nil
}

// status reports batch progress while a worker runs. Without a tracker entry
// (process restart, expired entry) it falls back to an estimate derived from
// the window so pollers always get a total.
func (g *generationController) status(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	projectID, ok := paramInt(ctx, "projectID")
	if !ok {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "invalid project id"}
	}
	project, apiErr := ownedProject(g.store, projectID, user)
	if apiErr != nil {
		return nil, apiErr
	}

	postCount, err := g.store.CountPostsByProject(projectID)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not count posts"}
	}

	resp := packets.GenerationStatusResponse{
		Status:    project.Status,
		PostCount: postCount,
	}
	window := generation.Window{Start: project.StartDate, End: project.EndDate}

	switch project.Status {
	case model.ProjectStatusGenerating:
		if p, ok := g.tracker.Get(ctx.Request.Context(), projectID); ok {
			resp.CurrentBatch = p.CurrentBatch
			resp.TotalBatches = p.TotalBatches
			resp.Percent = p.Percent
		} else {
			resp.TotalBatches = generation.TotalBatches(window)
		}
	case model.ProjectStatusReview, model.ProjectStatusApproved, model.ProjectStatusPublished:
		total := generation.TotalBatches(window)
		resp.CurrentBatch = total
		resp.TotalBatches = total
		resp.Percent = 100
		// stale tracker entries from a finished run must not leak into the
		// next one; only clear when one exists so idle polls stay read-only
		if _, ok := g.tracker.Get(ctx.Request.Context(), projectID); ok {
			g.tracker.Clear(ctx.Request.Context(), projectID)
		}
	}

	return resp, nil
}

// checkOverlap previews a regeneration: which existing posts fall inside the
// proposed window (and would be replaced) versus outside it (and are kept).
func (g *generationController) checkOverlap(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	projectID, ok := paramInt(ctx, "projectID")
	if !ok {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "invalid project id"}
	}
	project, apiErr := ownedProject(g.store, projectID, user)
	if apiErr != nil {
		return nil, apiErr
	}

	var request packets.CheckOverlapRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}
	start, err := parseDate(request.StartDate)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "invalid start_date, want YYYY-MM-DD"}
	}
	end, err := parseDate(request.EndDate)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "invalid end_date, want YYYY-MM-DD"}
	}
	if end.Before(start) {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "end_date before start_date"}
	}

	byPlatform, err := g.store.CountPostsInWindowByPlatform(projectID, start, end)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not check overlap"}
	}
	kept, err := g.store.CountPostsOutsideWindow(projectID, start, end)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not check overlap"}
	}

	overlapping := 0
	for _, n := range byPlatform {
		overlapping += n
	}

	return packets.CheckOverlapResponse{
		HasOverlap:            overlapping > 0,
		OverlappingCount:      overlapping,
		OverlappingByPlatform: byPlatform,
		KeptCount:             kept,
		DateRange: packets.DateRange{
			StartDate: start.Format(dateLayout),
			EndDate:   end.Format(dateLayout),
		},
		CurrentProjectDates: packets.DateRange{
			StartDate: project.StartDate.Format(dateLayout),
			EndDate:   project.EndDate.Format(dateLayout),
		},
	}, nil
}

// regeneratePost rewrites a single post in place, optionally steered by a
// user prompt. Fields the model leaves empty keep their current value.
func (g *generationController) regeneratePost(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	postID, ok := paramInt(ctx, "postID")
	if !ok {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "invalid post id"}
	}
	post, err := g.store.GetPostByID(postID)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusNotFound, Message: "post not found"}
	}
	project, apiErr := ownedProject(g.store, post.ProjectID, user)
	if apiErr != nil {
		return nil, &api.APIError{Code: http.StatusNotFound, Message: "post not found"}
	}
	brand, err := g.store.GetBrandByID(project.BrandID)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not load brand"}
	}

	var request packets.RegeneratePostRequest
	_ = ctx.ShouldBindJSON(&request) // body optional

	refined, err := g.refiner.RegeneratePost(ctx.Request.Context(), generation.RefineRequest{
		Content:      post.Content,
		Platform:     post.Platform,
		Pillar:       post.Pillar,
		Instructions: request.UserPrompt,
		Brand:        brandContext(brand),
	})
	if err != nil {
		log.Error().Err(err).Int("post_id", postID).Msg("post regeneration failed")
		return nil, &api.APIError{Code: http.StatusBadGateway, Message: "post regeneration failed"}
	}

	if refined.Content != "" {
		post.Content = refined.Content
	}
	if len(refined.Hashtags) > 0 {
		post.Hashtags = jsonText(refined.Hashtags)
	}
	if refined.VisualSuggestion != "" {
		post.VisualSuggestion = refined.VisualSuggestion
	}
	if refined.CTA != "" {
		post.CTA = refined.CTA
	}

	if err := g.store.UpdatePost(post); err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not update post"}
	}

	updated, err := g.store.GetPostByID(postID)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not fetch updated post"}
	}
	return updated, nil
}

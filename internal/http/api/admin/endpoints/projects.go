package endpoints

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx/types"
	"github.com/rs/zerolog/log"

	"github.com/postflow-app/postflow/internal/db"
	"github.com/postflow-app/postflow/internal/generation"
	"github.com/postflow-app/postflow/internal/http/api"
	"github.com/postflow-app/postflow/internal/http/api/admin/packets"
	"github.com/postflow-app/postflow/internal/model"
)

// ProjectModule mounts project CRUD and the buyer persona workflow.
func ProjectModule(store db.Store, analyzer generation.PersonaAnalyzer) api.Module {
	ctl := &projectController{store: store, analyzer: analyzer}
	return api.ModuleFunc(func(c *api.Controller) {
		c.POST("/projects", ctl.create)
		c.GET("/projects", ctl.list)
		c.GET("/projects/:id", ctl.get)
		c.PUT("/projects/:id", ctl.update)
		c.DELETE("/projects/:id", ctl.delete)
		c.POST("/projects/:id/personas/generate", ctl.generatePersonas)
		c.GET("/projects/:id/personas", ctl.getPersonas)
		c.POST("/projects/:id/personas/confirm", ctl.confirmPersonas)
		c.POST("/projects/:id/personas/add", ctl.addPersona)
		c.POST("/projects/:id/personas/regenerate/:index", ctl.regeneratePersona)
		c.DELETE("/projects/:id/personas/:index", ctl.deletePersona)
	})
}

type projectController struct {
	store    db.Store
	analyzer generation.PersonaAnalyzer
}

// ownedProject resolves a project through its brand's creator; anything the
// caller does not own reads as 404.
func ownedProject(store db.Store, id int, user *model.User) (model.Project, *api.APIError) {
	project, err := store.GetProjectByID(id)
	if err != nil {
		return model.Project{}, &api.APIError{Code: http.StatusNotFound, Message: "project not found"}
	}
	brand, err := store.GetBrandByID(project.BrandID)
	if err != nil || brand.CreatedBy != user.ID {
		return model.Project{}, &api.APIError{Code: http.StatusNotFound, Message: "project not found"}
	}
	return project, nil
}

func jsonText(v any) types.JSONText {
	out, err := json.Marshal(v)
	if err != nil {
		return types.JSONText("null")
	}
	return types.JSONText(out)
}

func (p *projectController) fromRequest(request packets.ProjectRequest) (model.Project, *api.APIError) {
	start, err := parseDate(request.StartDate)
	if err != nil {
		return model.Project{}, &api.APIError{Code: http.StatusBadRequest, Message: "invalid start_date, want YYYY-MM-DD"}
	}
	end, err := parseDate(request.EndDate)
	if err != nil {
		return model.Project{}, &api.APIError{Code: http.StatusBadRequest, Message: "invalid end_date, want YYYY-MM-DD"}
	}
	if end.Before(start) {
		return model.Project{}, &api.APIError{Code: http.StatusBadRequest, Message: "end_date before start_date"}
	}

	ppw := request.PostsPerWeek
	if ppw == nil {
		ppw = map[string]int{}
	}
	themes := request.Themes
	if themes == nil {
		themes = []string{}
	}

	return model.Project{
		BrandID:      request.BrandID,
		Name:         request.Name,
		Brief:        request.Brief,
		StartDate:    start,
		EndDate:      end,
		Platforms:    jsonText(request.Platforms),
		PostsPerWeek: jsonText(ppw),
		Themes:       jsonText(themes),
	}, nil
}

func (p *projectController) create(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	var request packets.ProjectRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	brand, err := p.store.GetBrandByID(request.BrandID)
	if err != nil || brand.CreatedBy != user.ID {
		return nil, &api.APIError{Code: http.StatusNotFound, Message: "brand not found"}
	}

	project, apiErr := p.fromRequest(request)
	if apiErr != nil {
		return nil, apiErr
	}
	project.Status = model.ProjectStatusDraft
	project.CreatedBy = user.ID

	created, err := p.store.CreateProject(project)
	if err != nil {
		log.Error().Err(err).Msg("could not create project")
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not create project"}
	}
	return created, nil
}

// GET /projects?brand_id=N
func (p *projectController) list(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	brandID, err := strconv.Atoi(ctx.Query("brand_id"))
	if err != nil || brandID <= 0 {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "missing or invalid brand_id"}
	}

	brand, err := p.store.GetBrandByID(brandID)
	if err != nil || brand.CreatedBy != user.ID {
		return nil, &api.APIError{Code: http.StatusNotFound, Message: "brand not found"}
	}

	projects, err := p.store.ListProjects(brandID)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not list projects"}
	}
	return projects, nil
}

func (p *projectController) get(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	id, ok := paramInt(ctx, "id")
	if !ok {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "invalid project id"}
	}
	project, apiErr := ownedProject(p.store, id, user)
	if apiErr != nil {
		return nil, apiErr
	}
	return project, nil
}

func (p *projectController) update(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	id, ok := paramInt(ctx, "id")
	if !ok {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "invalid project id"}
	}
	existing, apiErr := ownedProject(p.store, id, user)
	if apiErr != nil {
		return nil, apiErr
	}
	if existing.Status == model.ProjectStatusGenerating {
		return nil, &api.APIError{Code: http.StatusConflict, Message: "project is generating"}
	}

	var request packets.ProjectRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}
	if request.BrandID != existing.BrandID {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "brand_id cannot change"}
	}

	project, apiErr := p.fromRequest(request)
	if apiErr != nil {
		return nil, apiErr
	}
	project.ID = existing.ID
	project.Status = existing.Status
	project.BuyerPersonas = existing.BuyerPersonas
	project.CreatedBy = existing.CreatedBy

	if err := p.store.UpdateProject(project); err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not update project"}
	}

	updated, err := p.store.GetProjectByID(id)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not fetch updated project"}
	}
	return updated, nil
}

func (p *projectController) delete(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	id, ok := paramInt(ctx, "id")
	if !ok {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "invalid project id"}
	}
	if _, apiErr := ownedProject(p.store, id, user); apiErr != nil {
		return nil, apiErr
	}
	if err := p.store.DeleteProject(id); err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not delete project"}
	}
	return gin.H{"deleted": id}, nil
}

// POST /projects/:id/personas/generate runs persona analysis synchronously
// and persists the result unconfirmed.
func (p *projectController) generatePersonas(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	id, ok := paramInt(ctx, "id")
	if !ok {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "invalid project id"}
	}
	project, apiErr := ownedProject(p.store, id, user)
	if apiErr != nil {
		return nil, apiErr
	}

	var request packets.GeneratePersonasRequest
	_ = ctx.ShouldBindJSON(&request) // body optional

	brand, err := p.store.GetBrandByID(project.BrandID)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not load brand"}
	}

	analysis, err := p.analyzer.AnalyzePersonas(ctx.Request.Context(), generation.PersonaRequest{
		Brand:      brandContext(brand),
		Platforms:  project.PlatformList(),
		Objectives: request.Objectives,
		URLContext: request.URLContext,
	})
	if err != nil {
		log.Error().Err(err).Int("project_id", id).Msg("persona analysis failed")
		return nil, &api.APIError{Code: http.StatusBadGateway, Message: "persona analysis failed"}
	}

	if err := p.store.UpdateProjectPersonas(id, analysis.ToJSON()); err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not save personas"}
	}

	return packets.PersonasResponse{PersonasStatus: "generated", Analysis: analysis}, nil
}

func (p *projectController) getPersonas(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	id, ok := paramInt(ctx, "id")
	if !ok {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "invalid project id"}
	}
	project, apiErr := ownedProject(p.store, id, user)
	if apiErr != nil {
		return nil, apiErr
	}
	return packets.PersonasResponse{
		PersonasStatus: generation.PersonasStatus(project),
		Analysis:       generation.AnalysisFromJSON(project.BuyerPersonas),
	}, nil
}

// POST /projects/:id/personas/confirm freezes the analysis, optionally with
// user edits, so calendar generation uses it as-is.
func (p *projectController) confirmPersonas(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	id, ok := paramInt(ctx, "id")
	if !ok {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "invalid project id"}
	}
	project, apiErr := ownedProject(p.store, id, user)
	if apiErr != nil {
		return nil, apiErr
	}

	analysis := generation.AnalysisFromJSON(project.BuyerPersonas)

	var request packets.ConfirmPersonasRequest
	_ = ctx.ShouldBindJSON(&request) // body optional
	if len(request.Personas) > 0 {
		analysis.Personas = request.Personas
	}
	if len(request.Strategy) > 0 {
		analysis.Strategy = request.Strategy
	}
	if len(request.RecommendedPostsPerWeek) > 0 {
		analysis.RecommendedPostsPerWeek = request.RecommendedPostsPerWeek
	}

	if len(analysis.Strategy) == 0 {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "no personas to confirm"}
	}

	analysis.Confirmed = true
	analysis.ConfirmedAt = time.Now().UTC().Format(time.RFC3339)

	if err := p.store.UpdateProjectPersonas(id, analysis.ToJSON()); err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not save personas"}
	}

	return packets.PersonasResponse{PersonasStatus: "confirmed", Analysis: analysis}, nil
}

// addPersona appends one newly generated persona to the stored analysis and
// drops the confirmation, so the user reviews the set again.
func (p *projectController) addPersona(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	id, ok := paramInt(ctx, "id")
	if !ok {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "invalid project id"}
	}
	project, apiErr := ownedProject(p.store, id, user)
	if apiErr != nil {
		return nil, apiErr
	}

	var request packets.SinglePersonaRequest
	_ = ctx.ShouldBindJSON(&request) // body optional

	analysis := generation.AnalysisFromJSON(project.BuyerPersonas)

	persona, apiErr := p.singlePersona(ctx, project, addInstructions(analysis.Personas, request.Description))
	if apiErr != nil {
		return nil, apiErr
	}

	analysis.Personas = append(analysis.Personas, persona)
	analysis.Confirmed = false
	analysis.ConfirmedAt = ""

	if err := p.store.UpdateProjectPersonas(id, analysis.ToJSON()); err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not save personas"}
	}

	return gin.H{"persona": persona, "total_personas": len(analysis.Personas)}, nil
}

// deletePersona removes the persona at a zero-based index and drops the
// confirmation. No analyzer call is involved.
func (p *projectController) deletePersona(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	id, ok := paramInt(ctx, "id")
	if !ok {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "invalid project id"}
	}
	project, apiErr := ownedProject(p.store, id, user)
	if apiErr != nil {
		return nil, apiErr
	}

	analysis := generation.AnalysisFromJSON(project.BuyerPersonas)
	index, ok := personaIndex(ctx, analysis)
	if !ok {
		return nil, &api.APIError{Code: http.StatusNotFound, Message: "persona not found"}
	}

	deleted := analysis.Personas[index]
	analysis.Personas = append(analysis.Personas[:index], analysis.Personas[index+1:]...)
	analysis.Confirmed = false
	analysis.ConfirmedAt = ""

	if err := p.store.UpdateProjectPersonas(id, analysis.ToJSON()); err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not save personas"}
	}

	return gin.H{"deleted": deleted.Name, "remaining_personas": len(analysis.Personas)}, nil
}

// regeneratePersona replaces the persona at a zero-based index with a freshly
// generated one, distinct from the rest of the set.
func (p *projectController) regeneratePersona(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	id, ok := paramInt(ctx, "id")
	if !ok {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "invalid project id"}
	}
	project, apiErr := ownedProject(p.store, id, user)
	if apiErr != nil {
		return nil, apiErr
	}

	analysis := generation.AnalysisFromJSON(project.BuyerPersonas)
	index, ok := personaIndex(ctx, analysis)
	if !ok {
		return nil, &api.APIError{Code: http.StatusNotFound, Message: "persona not found"}
	}

	var request packets.SinglePersonaRequest
	_ = ctx.ShouldBindJSON(&request) // body optional

	old := analysis.Personas[index]
	persona, apiErr := p.singlePersona(ctx, project, regenerateInstructions(analysis.Personas, index, request.Description))
	if apiErr != nil {
		return nil, apiErr
	}

	analysis.Personas[index] = persona
	analysis.Confirmed = false
	analysis.ConfirmedAt = ""

	if err := p.store.UpdateProjectPersonas(id, analysis.ToJSON()); err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not save personas"}
	}

	return gin.H{"old_persona": old, "new_persona": persona}, nil
}

// singlePersona runs the analyzer with narrowing instructions and returns the
// first persona of the result.
func (p *projectController) singlePersona(ctx *gin.Context, project model.Project, instructions string) (generation.Persona, *api.APIError) {
	brand, err := p.store.GetBrandByID(project.BrandID)
	if err != nil {
		return generation.Persona{}, &api.APIError{Code: http.StatusInternalServerError, Message: "could not load brand"}
	}

	analysis, err := p.analyzer.AnalyzePersonas(ctx.Request.Context(), generation.PersonaRequest{
		Brand:        brandContext(brand),
		Platforms:    project.PlatformList(),
		Instructions: instructions,
	})
	if err != nil || len(analysis.Personas) == 0 {
		log.Error().Err(err).Int("project_id", project.ID).Msg("persona analysis failed")
		return generation.Persona{}, &api.APIError{Code: http.StatusBadGateway, Message: "persona analysis failed"}
	}
	return analysis.Personas[0], nil
}

// personaIndex parses the zero-based :index param and bounds-checks it
// against the stored personas.
func personaIndex(ctx *gin.Context, analysis generation.PersonaAnalysis) (int, bool) {
	index, err := strconv.Atoi(ctx.Param("index"))
	if err != nil || index < 0 || index >= len(analysis.Personas) {
		return 0, false
	}
	return index, true
}

func addInstructions(existing []generation.Persona, description string) string {
	var sb strings.Builder
	sb.WriteString("Generate exactly one new buyer persona, distinct from the existing ones")
	if names := personaNames(existing); names != "" {
		fmt.Fprintf(&sb, " (%s)", names)
	}
	sb.WriteString(".")
	if description != "" {
		fmt.Fprintf(&sb, " The persona should match this description: %s", description)
	}
	return sb.String()
}

func regenerateInstructions(personas []generation.Persona, index int, description string) string {
	others := make([]generation.Persona, 0, len(personas)-1)
	others = append(others, personas[:index]...)
	others = append(others, personas[index+1:]...)

	var sb strings.Builder
	fmt.Fprintf(&sb, "Generate exactly one buyer persona to replace %q", personas[index].Name)
	if names := personaNames(others); names != "" {
		fmt.Fprintf(&sb, ", distinct from the remaining ones (%s)", names)
	}
	sb.WriteString(".")
	if description != "" {
		fmt.Fprintf(&sb, " The persona should match this description: %s", description)
	}
	return sb.String()
}

func personaNames(personas []generation.Persona) string {
	names := make([]string, 0, len(personas))
	for _, p := range personas {
		names = append(names, p.Name)
	}
	return strings.Join(names, ", ")
}

func brandContext(brand model.Brand) generation.BrandContext {
	return generation.BrandContext{
		Name:        brand.Name,
		Sector:      derefOr(brand.Sector),
		Description: derefOr(brand.Description),
		ToneOfVoice: derefOr(brand.ToneOfVoice),
		Values:      derefOr(brand.BrandValues),
		StyleGuide:  derefOr(brand.StyleGuide),
	}
}

func derefOr(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

package db

import (
	"github.com/jmoiron/sqlx/types"
	"github.com/rs/zerolog/log"

	"github.com/postflow-app/postflow/internal/model"
)

const projectColumns = `
	id, brand_id, name, brief, status, start_date, end_date,
	platforms, posts_per_week, themes, buyer_personas,
	created_by, created_at, updated_at`

func (s *pgStore) CreateProject(p model.Project) (model.Project, error) {
	var out model.Project
	const q = `
	INSERT INTO projects
	  (brand_id, name, brief, status, start_date, end_date, platforms, posts_per_week, themes, buyer_personas, created_by, created_at, updated_at)
	VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,now(),now())
	RETURNING ` + projectColumns + `;`
	err := s.db.Get(&out, q,
		p.BrandID, p.Name, p.Brief, p.Status, p.StartDate, p.EndDate,
		p.Platforms, p.PostsPerWeek, p.Themes, p.BuyerPersonas, p.CreatedBy)
	if err != nil {
		log.Error().Err(err).Msg("CreateProject failed")
		return model.Project{}, err
	}
	return out, nil
}

func (s *pgStore) GetProjectByID(id int) (model.Project, error) {
	var p model.Project
	err := s.db.Get(&p, `SELECT `+projectColumns+` FROM projects WHERE id = $1;`, id)
	if err != nil {
		return model.Project{}, err
	}
	return p, nil
}

func (s *pgStore) ListProjects(brandID int) ([]model.Project, error) {
	var out []model.Project
	const q = `SELECT ` + projectColumns + ` FROM projects WHERE brand_id = $1 ORDER BY id;`
	if err := s.db.Select(&out, q, brandID); err != nil {
		log.Error().Err(err).Int("brand_id", brandID).Msg("ListProjects failed")
		return nil, err
	}
	return out, nil
}

func (s *pgStore) UpdateProject(p model.Project) error {
	const q = `
	UPDATE projects
	   SET name = $1, brief = $2, start_date = $3, end_date = $4,
	       platforms = $5, posts_per_week = $6, themes = $7,
	       updated_at = now()
	 WHERE id = $8;`
	_, err := s.db.Exec(q,
		p.Name, p.Brief, p.StartDate, p.EndDate,
		p.Platforms, p.PostsPerWeek, p.Themes, p.ID)
	if err != nil {
		log.Error().Err(err).Int("project_id", p.ID).Msg("UpdateProject failed")
	}
	return err
}

func (s *pgStore) DeleteProject(id int) error {
	_, err := s.db.Exec(`DELETE FROM projects WHERE id = $1;`, id)
	if err != nil {
		log.Error().Err(err).Int("project_id", id).Msg("DeleteProject failed")
	}
	return err
}

func (s *pgStore) SetProjectStatus(id int, status string) error {
	_, err := s.db.Exec(`UPDATE projects SET status = $1, updated_at = now() WHERE id = $2;`, status, id)
	if err != nil {
		log.Error().Err(err).Int("project_id", id).Str("status", status).Msg("SetProjectStatus failed")
	}
	return err
}

func (s *pgStore) UpdateProjectPersonas(id int, personas types.JSONText) error {
	_, err := s.db.Exec(`UPDATE projects SET buyer_personas = $1, updated_at = now() WHERE id = $2;`, personas, id)
	if err != nil {
		log.Error().Err(err).Int("project_id", id).Msg("UpdateProjectPersonas failed")
	}
	return err
}

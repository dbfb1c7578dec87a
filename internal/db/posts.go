package db

import (
	"time"

	"github.com/rs/zerolog/log"

	"github.com/postflow-app/postflow/internal/model"
)

const postColumns = `
	id, project_id, platform, scheduled_date, scheduled_time, content, hashtags,
	content_type, post_type, pillar, visual_suggestion, cta, publication_status,
	created_at, updated_at`

// inserts the redistributed calendar in one transaction so a failed run
// never leaves a half-written window behind.
func (s *pgStore) CreatePosts(projectID int, posts []model.Post) error {
	if len(posts) == 0 {
		return nil
	}
	tx, err := s.db.Beginx()
	if err != nil {
		log.Error().Err(err).Msg("CreatePosts begin failed")
		return err
	}
	const q = `
	INSERT INTO posts
	  (project_id, platform, scheduled_date, scheduled_time, content, hashtags,
	   content_type, post_type, pillar, visual_suggestion, cta, publication_status,
	   created_at, updated_at)
	VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,now(),now());`
	for _, p := range posts {
		status := p.PublicationStatus
		if status == "" {
			status = model.PostStatusScheduled
		}
		if _, err := tx.Exec(q,
			projectID, p.Platform, p.ScheduledDate, p.ScheduledTime, p.Content, p.Hashtags,
			p.ContentType, p.PostType, p.Pillar, p.VisualSuggestion, p.CTA, status); err != nil {
			_ = tx.Rollback()
			log.Error().Err(err).Int("project_id", projectID).Msg("CreatePosts insert failed")
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		log.Error().Err(err).Int("project_id", projectID).Msg("CreatePosts commit failed")
		return err
	}
	return nil
}

func (s *pgStore) ListPostsByProject(projectID int) ([]model.Post, error) {
	var out []model.Post
	const q = `
	SELECT ` + postColumns + `
	  FROM posts
	 WHERE project_id = $1
	 ORDER BY scheduled_date, scheduled_time, id;`
	if err := s.db.Select(&out, q, projectID); err != nil {
		log.Error().Err(err).Int("project_id", projectID).Msg("ListPostsByProject failed")
		return nil, err
	}
	return out, nil
}

func (s *pgStore) GetPostByID(id int) (model.Post, error) {
	var p model.Post
	err := s.db.Get(&p, `SELECT `+postColumns+` FROM posts WHERE id = $1;`, id)
	if err != nil {
		return model.Post{}, err
	}
	return p, nil
}

func (s *pgStore) UpdatePost(p model.Post) error {
	const q = `
	UPDATE posts
	   SET platform = $1, scheduled_date = $2, scheduled_time = $3, content = $4,
	       hashtags = $5, content_type = $6, post_type = $7, pillar = $8,
	       visual_suggestion = $9, cta = $10, updated_at = now()
	 WHERE id = $11;`
	_, err := s.db.Exec(q,
		p.Platform, p.ScheduledDate, p.ScheduledTime, p.Content,
		p.Hashtags, p.ContentType, p.PostType, p.Pillar,
		p.VisualSuggestion, p.CTA, p.ID)
	if err != nil {
		log.Error().Err(err).Int("post_id", p.ID).Msg("UpdatePost failed")
	}
	return err
}

func (s *pgStore) DeletePost(id int) error {
	_, err := s.db.Exec(`DELETE FROM posts WHERE id = $1;`, id)
	if err != nil {
		log.Error().Err(err).Int("post_id", id).Msg("DeletePost failed")
	}
	return err
}

// removes only posts scheduled inside [start, end]; history outside the
// window survives regeneration.
func (s *pgStore) DeletePostsInWindow(projectID int, start, end time.Time) (int64, error) {
	res, err := s.db.Exec(`
	DELETE FROM posts
	 WHERE project_id = $1
	   AND scheduled_date >= $2
	   AND scheduled_date <= $3;`, projectID, start, end)
	if err != nil {
		log.Error().Err(err).Int("project_id", projectID).Msg("DeletePostsInWindow failed")
		return 0, err
	}
	deleted, _ := res.RowsAffected()
	return deleted, nil
}

func (s *pgStore) CountPostsByProject(projectID int) (int, error) {
	var n int
	err := s.db.Get(&n, `SELECT count(*) FROM posts WHERE project_id = $1;`, projectID)
	if err != nil {
		log.Error().Err(err).Int("project_id", projectID).Msg("CountPostsByProject failed")
		return 0, err
	}
	return n, nil
}

func (s *pgStore) CountPostsInWindowByPlatform(projectID int, start, end time.Time) (map[string]int, error) {
	rows := []struct {
		Platform string `db:"platform"`
		Count    int    `db:"count"`
	}{}
	const q = `
	SELECT platform, count(*) AS count
	  FROM posts
	 WHERE project_id = $1
	   AND scheduled_date >= $2
	   AND scheduled_date <= $3
	 GROUP BY platform;`
	if err := s.db.Select(&rows, q, projectID, start, end); err != nil {
		log.Error().Err(err).Int("project_id", projectID).Msg("CountPostsInWindowByPlatform failed")
		return nil, err
	}
	out := make(map[string]int, len(rows))
	for _, r := range rows {
		out[r.Platform] = r.Count
	}
	return out, nil
}

func (s *pgStore) CountPostsOutsideWindow(projectID int, start, end time.Time) (int, error) {
	var n int
	const q = `
	SELECT count(*)
	  FROM posts
	 WHERE project_id = $1
	   AND (scheduled_date < $2 OR scheduled_date > $3);`
	if err := s.db.Get(&n, q, projectID, start, end); err != nil {
		log.Error().Err(err).Int("project_id", projectID).Msg("CountPostsOutsideWindow failed")
		return 0, err
	}
	return n, nil
}

// finds posts due at the given date and HH:MM, ignoring seconds if present.
func (s *pgStore) ListDuePosts(date time.Time, hhmm string) ([]model.Post, error) {
	var out []model.Post
	const q = `
	SELECT ` + postColumns + `
	  FROM posts
	 WHERE scheduled_date = $1
	   AND substring(scheduled_time, 1, 5) = $2
	   AND publication_status IN ($3, $4)
	 ORDER BY id;`
	if err := s.db.Select(&out, q, date, hhmm, model.PostStatusScheduled, model.PostStatusPending); err != nil {
		log.Error().Err(err).Msg("ListDuePosts failed")
		return nil, err
	}
	return out, nil
}

func (s *pgStore) SetPostPublicationStatus(id int, status string) error {
	_, err := s.db.Exec(`UPDATE posts SET publication_status = $1, updated_at = now() WHERE id = $2;`, status, id)
	if err != nil {
		log.Error().Err(err).Int("post_id", id).Str("status", status).Msg("SetPostPublicationStatus failed")
	}
	return err
}

package db

import (
	"github.com/rs/zerolog/log"

	"github.com/postflow-app/postflow/internal/model"
)

func (s *pgStore) CreateBrand(b model.Brand) (model.Brand, error) {
	var out model.Brand
	const q = `
	INSERT INTO brands
	  (name, sector, description, target_audience, tone_of_voice, brand_values, style_guide, website_url, created_by, created_at, updated_at)
	VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,now(),now())
	RETURNING id, name, sector, description, target_audience, tone_of_voice, brand_values, style_guide, website_url, created_by, created_at, updated_at;`
	err := s.db.Get(&out, q,
		b.Name, b.Sector, b.Description, b.TargetAudience, b.ToneOfVoice,
		b.BrandValues, b.StyleGuide, b.WebsiteURL, b.CreatedBy)
	if err != nil {
		log.Error().Err(err).Msg("CreateBrand failed")
		return model.Brand{}, err
	}
	return out, nil
}

func (s *pgStore) GetBrandByID(id int) (model.Brand, error) {
	var b model.Brand
	const q = `
	SELECT id, name, sector, description, target_audience, tone_of_voice, brand_values, style_guide, website_url, created_by, created_at, updated_at
	  FROM brands
	 WHERE id = $1;`
	if err := s.db.Get(&b, q, id); err != nil {
		return model.Brand{}, err
	}
	return b, nil
}

func (s *pgStore) ListBrands(ownerID int) ([]model.Brand, error) {
	var out []model.Brand
	const q = `
	SELECT id, name, sector, description, target_audience, tone_of_voice, brand_values, style_guide, website_url, created_by, created_at, updated_at
	  FROM brands
	 WHERE created_by = $1
	 ORDER BY id;`
	if err := s.db.Select(&out, q, ownerID); err != nil {
		log.Error().Err(err).Msg("ListBrands failed")
		return nil, err
	}
	return out, nil
}

func (s *pgStore) UpdateBrand(b model.Brand) error {
	const q = `
	UPDATE brands
	   SET name = $1, sector = $2, description = $3, target_audience = $4,
	       tone_of_voice = $5, brand_values = $6, style_guide = $7, website_url = $8,
	       updated_at = now()
	 WHERE id = $9;`
	_, err := s.db.Exec(q,
		b.Name, b.Sector, b.Description, b.TargetAudience, b.ToneOfVoice,
		b.BrandValues, b.StyleGuide, b.WebsiteURL, b.ID)
	if err != nil {
		log.Error().Err(err).Int("brand_id", b.ID).Msg("UpdateBrand failed")
	}
	return err
}

func (s *pgStore) DeleteBrand(id int) error {
	_, err := s.db.Exec(`DELETE FROM brands WHERE id = $1;`, id)
	if err != nil {
		log.Error().Err(err).Int("brand_id", id).Msg("DeleteBrand failed")
	}
	return err
}

func (s *pgStore) CreateBrandDocument(brandID int, filename, url string) (model.BrandDocument, error) {
	var d model.BrandDocument
	const q = `
	INSERT INTO brand_documents (brand_id, filename, url, created_at)
	VALUES ($1,$2,$3,now())
	RETURNING id, brand_id, filename, url, created_at;`
	if err := s.db.Get(&d, q, brandID, filename, url); err != nil {
		log.Error().Err(err).Int("brand_id", brandID).Msg("CreateBrandDocument failed")
		return model.BrandDocument{}, err
	}
	return d, nil
}

func (s *pgStore) ListBrandDocuments(brandID int) ([]model.BrandDocument, error) {
	var out []model.BrandDocument
	const q = `
	SELECT id, brand_id, filename, url, created_at
	  FROM brand_documents
	 WHERE brand_id = $1
	 ORDER BY id;`
	if err := s.db.Select(&out, q, brandID); err != nil {
		log.Error().Err(err).Int("brand_id", brandID).Msg("ListBrandDocuments failed")
		return nil, err
	}
	return out, nil
}

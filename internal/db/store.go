// exposes a Store interface that is passed to API controllers and the
// generation worker, so both can be tested against a fake.
package db

import (
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"

	"github.com/postflow-app/postflow/internal/model"
)

type Store interface {
	// user functions
	CreateUser(email, hashedPassword string, name *string) (int, error)
	GetUserByEmail(email string) (*model.User, error)
	GetUserByID(id int) (*model.User, error)
	UpdateUserProfile(id int, email string, name *string) error

	// brand functions
	CreateBrand(b model.Brand) (model.Brand, error)
	GetBrandByID(id int) (model.Brand, error)
	ListBrands(ownerID int) ([]model.Brand, error)
	UpdateBrand(b model.Brand) error
	DeleteBrand(id int) error
	CreateBrandDocument(brandID int, filename, url string) (model.BrandDocument, error)
	ListBrandDocuments(brandID int) ([]model.BrandDocument, error)

	// project functions
	CreateProject(p model.Project) (model.Project, error)
	GetProjectByID(id int) (model.Project, error)
	ListProjects(brandID int) ([]model.Project, error)
	UpdateProject(p model.Project) error
	DeleteProject(id int) error
	SetProjectStatus(id int, status string) error
	UpdateProjectPersonas(id int, personas types.JSONText) error

	// post functions
	CreatePosts(projectID int, posts []model.Post) error
	ListPostsByProject(projectID int) ([]model.Post, error)
	GetPostByID(id int) (model.Post, error)
	UpdatePost(p model.Post) error
	DeletePost(id int) error
	DeletePostsInWindow(projectID int, start, end time.Time) (int64, error)
	CountPostsByProject(projectID int) (int, error)
	CountPostsInWindowByPlatform(projectID int, start, end time.Time) (map[string]int, error)
	CountPostsOutsideWindow(projectID int, start, end time.Time) (int, error)
	ListDuePosts(date time.Time, hhmm string) ([]model.Post, error)
	SetPostPublicationStatus(id int, status string) error
}

type pgStore struct {
	db *sqlx.DB
}

// compile-time check that pgStore implements Store
var _ Store = (*pgStore)(nil)

func NewStore(database *sqlx.DB) Store {
	return &pgStore{db: database}
}

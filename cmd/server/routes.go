package main

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/postflow-app/postflow/internal/db"
	"github.com/postflow-app/postflow/internal/generation"
	"github.com/postflow-app/postflow/internal/http/api"
	adminapi "github.com/postflow-app/postflow/internal/http/api/admin/endpoints"
	authapi "github.com/postflow-app/postflow/internal/http/api/admin/auth/endpoints"
	"github.com/postflow-app/postflow/internal/storage"
)

// RegisterRoutes sets up all application routes
func RegisterRoutes(
	r *gin.Engine,
	env Environment,
	store db.Store,
	storageSystem storage.Storage,
	manager *generation.Manager,
	tracker generation.ProgressStore,
	analyzer generation.PersonaAnalyzer,
	refiner generation.PostRefiner,
) {
	// CORS
	r.Use(cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool { return true },
		AllowMethods: []string{
			"GET",
			"POST",
			"PUT",
			"PATCH",
			"DELETE",
			"OPTIONS",
			"HEAD",
		},
		AllowHeaders: []string{
			"Origin",
			"Content-Type",
			"Authorization",
			"Accept",
		},
		ExposeHeaders: []string{
			"Content-Length",
		},
		AllowCredentials: false,
	}))

	api.MountGroup(r, api.GroupConfig{
		Prefix: "/api/admin",
		Auth:   false,
	},
		authapi.AuthPublicModule(env.SecretKey, store),
	)

	api.MountGroup(r, api.GroupConfig{
		Prefix:    "/api/admin",
		Auth:      true,
		SecretKey: env.SecretKey,
		Store:     store,
	},
		authapi.AuthSessionModule(env.SecretKey, store),
		adminapi.BrandModule(store, storageSystem),
		adminapi.ProjectModule(store, analyzer),
		adminapi.PostModule(store),
		adminapi.GenerationModule(store, manager, tracker, refiner),
	)

	// Static content
	if !env.UseSpaces {
		r.Static("/uploads", "./uploads")
	}
}

package main

import (
	"context"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"

	"github.com/quillside/backend/internal/config"
	"github.com/quillside/backend/internal/handlers"
	appMiddleware "github.com/quillside/backend/internal/middleware"
	"github.com/quillside/backend/internal/services"
	"github.com/quillside/backend/internal/store"
	"github.com/quillside/backend/internal/store/memstore"
)

func main() {
	// Best effort; production supplies real env vars.
	_ = godotenv.Load()

	cfg := config.Load()

	var st store.Store
	if cfg.MongoURI != "" {
		mongoStore, err := store.NewMongoStore(context.Background(), cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			log.Fatalf("Failed to connect to MongoDB: %v", err)
		}
		defer mongoStore.Close(context.Background())
		st = mongoStore
		log.Printf("[server] connected to MongoDB database %q", cfg.MongoDB)
	} else {
		// No MONGO_URI means local development against the in-memory store.
		st = memstore.New()
		log.Printf("[server] MONGO_URI not set, using in-memory store")
	}

	propagator := services.NewPropagator(st)
	accountService := services.NewAccountService(st)
	blogService := services.NewBlogService(st, propagator)
	reportService := services.NewReportService(st)
	moderationService := services.NewModerationService(st, propagator)

	accountHandler := handlers.NewAccountHandler(accountService, cfg.JWTSecret, cfg.JWTExpiration)
	blogHandler := handlers.NewBlogHandler(blogService, accountService)
	reportHandler := handlers.NewReportHandler(reportService)
	moderationHandler := handlers.NewModerationHandler(moderationService)

	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	r.Route("/api", func(r chi.Router) {
		// Public routes
		r.Post("/accounts/register", accountHandler.Register)
		r.Post("/accounts/login", accountHandler.Login)

		r.Get("/posts", blogHandler.RecentPosts)
		r.Get("/posts/{postId}", blogHandler.GetPost)
		r.Get("/posts/{postId}/comments", blogHandler.ListComments)
		r.Get("/blogs", blogHandler.ListBlogs)
		r.Get("/blogs/{blogName}", blogHandler.GetBlog)
		r.Get("/blogs/{blogName}/posts", blogHandler.ListBlogPosts)
		r.Get("/users/{username}", accountHandler.GetUser)

		// Authenticated routes
		r.Group(func(r chi.Router) {
			r.Use(appMiddleware.JWTAuth(cfg.JWTSecret))

			r.Route("/accounts", func(r chi.Router) {
				r.Get("/me", accountHandler.Me)
				r.Put("/profile", accountHandler.UpdateProfile)
				r.Put("/settings", accountHandler.UpdateSettings)
				r.Put("/password", accountHandler.ChangePassword)
			})

			r.Route("/my/blogs", func(r chi.Router) {
				r.Get("/", blogHandler.ListOwnBlogs)
				r.Post("/", blogHandler.CreateBlog)

				r.Route("/{blogId}", func(r chi.Router) {
					r.Put("/", blogHandler.UpdateBlog)
					r.Delete("/", blogHandler.DeleteBlog)
					r.Get("/posts", blogHandler.ListOwnPosts)
					r.Post("/posts", blogHandler.CreatePost)
				})
			})
			r.Delete("/posts/{postId}", blogHandler.DeletePost)
			r.Post("/posts/{postId}/comments", blogHandler.CreateComment)
			r.Delete("/comments/{commentId}", blogHandler.DeleteComment)

			r.Post("/reports", reportHandler.FileReport)

			// Moderator console
			r.Group(func(r chi.Router) {
				r.Use(appMiddleware.RequireModerator)

				r.Get("/reports", reportHandler.ListReports)
				r.Get("/reports/{reportId}", reportHandler.GetReport)

				r.Route("/moderation", func(r chi.Router) {
					r.Get("/content/{contentType}/{contentId}", moderationHandler.GetContent)
					r.Post("/content", moderationHandler.ModerateContent)
					r.Get("/users", moderationHandler.ListUsers)
					r.Post("/users/{userId}", moderationHandler.ModerateUser)
				})
			})
		})
	})

	log.Printf("[server] Quillside API listening on %s", cfg.ServerAddress)
	if err := http.ListenAndServe(cfg.ServerAddress, r); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}

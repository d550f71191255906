package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/shalteor/kitchenhub/internal/logging"
	"github.com/shalteor/kitchenhub/internal/session"
)

const maxFormBytes = 1 << 20

// NewRouter creates a new HTTP router with all routes configured
func (s *Server) NewRouter() *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logging.RequestLogger(s.logger))
	r.Use(middleware.Recoverer)

	if len(s.allowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   s.allowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type", session.CSRFHeader},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	r.Get("/healthz", s.Healthz)

	r.Group(func(r chi.Router) {
		r.Use(limitBody)
		r.Use(s.sessions.Middleware)
		r.Use(session.CSRF)

		// Public pages
		r.Get("/", s.Home)
		r.Get("/about/", s.About)
		r.Get("/register/", s.RegisterForm)
		r.Post("/register/", s.Register)
		r.Get("/login/", s.LoginForm)
		r.Post("/login/", s.Login)
		r.Get("/logout/", s.Logout)
		r.Get("/contact/", s.ContactForm)
		r.Post("/contact/", s.Contact)

		r.Get("/recipes/", s.ListRecipes)
		r.Get("/recipe/{id:[0-9]+}/", s.GetRecipe)
		r.Get("/search", s.SearchRecipes)

		// Logged-in only
		r.Group(func(r chi.Router) {
			r.Use(s.sessions.RequireLogin)

			r.Get("/create/", s.CreateRecipeForm)
			r.Post("/create/", s.CreateRecipe)
			r.Get("/update/{id:[0-9]+}/", s.UpdateRecipeForm)
			r.Post("/update/{id:[0-9]+}/", s.UpdateRecipe)
			r.Post("/delete/{id:[0-9]+}", s.DeleteRecipe)

			r.Route("/shopping", func(r chi.Router) {
				r.Get("/", s.ShoppingList)
				r.Post("/add", s.AddShoppingItem)
				r.Post("/update/{id:[0-9]+}", s.ToggleShoppingItem)
				r.Post("/edit/{id:[0-9]+}", s.EditShoppingItem)
				r.Post("/delete/{id:[0-9]+}", s.DeleteShoppingItem)
				r.Post("/complete_all", s.CompleteAllShoppingItems)
				r.Post("/clear_completed", s.ClearCompletedShoppingItems)
				r.Post("/quick_add/{name}", s.QuickAddShoppingItem)
			})
		})
	})

	return r
}

func limitBody(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Body != nil {
			r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
		}
		next.ServeHTTP(w, r)
	})
}

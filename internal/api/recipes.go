package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/shalteor/kitchenhub/internal/models"
	"github.com/shalteor/kitchenhub/internal/service"
	"github.com/shalteor/kitchenhub/internal/session"
)

// blank ingredient rows offered below the existing ones
const spareIngredientRows = 3

type sortOption struct {
	Value models.RecipeOrder
	Label string
}

var sortOptions = []sortOption{
	{models.OrderByName, "Name (A-Z)"},
	{models.OrderByNameDesc, "Name (Z-A)"},
	{models.OrderByNewest, "Newest first"},
	{models.OrderByRating, "Highest rated"},
}

type recipeListPage struct {
	Recipes []models.Recipe
	Sort    models.RecipeOrder
	Options []sortOption
}

type recipePage struct {
	Recipe      models.Recipe
	Ingredients []models.Ingredient
	CanModify   bool
}

type recipeFormPage struct {
	ID          int64
	Form        service.RecipeInput
	Suggestions []models.Ingredient
}

type searchPage struct {
	Query   string
	Recipes []models.Recipe
}

// ListRecipes handles GET /recipes/
func (s *Server) ListRecipes(w http.ResponseWriter, r *http.Request) {
	order := models.ParseRecipeOrder(r.URL.Query().Get("sort"))

	recipes, err := s.svc.ListRecipes(r.Context(), order, 0)
	if err != nil {
		s.serverError(w, r, err)
		return
	}

	s.render(w, r, http.StatusOK, "recipes.html", "Our Recipes", recipeListPage{
		Recipes: recipes,
		Sort:    order,
		Options: sortOptions,
	})
}

// GetRecipe handles GET /recipe/{id}/
func (s *Server) GetRecipe(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		http.NotFound(w, r)
		return
	}

	detail, err := s.svc.GetRecipe(r.Context(), id)
	if errors.Is(err, service.ErrNotFound) {
		s.flashError(r, err)
		s.redirect(w, r, "/recipes/")
		return
	}
	if err != nil {
		s.serverError(w, r, err)
		return
	}

	s.render(w, r, http.StatusOK, "recipe.html", detail.Recipe.Name, recipePage{
		Recipe:      detail.Recipe,
		Ingredients: detail.Ingredients,
		CanModify:   s.svc.CanModify(detail.Recipe, currentSession(r).UserID),
	})
}

// SearchRecipes handles GET /search
func (s *Server) SearchRecipes(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))

	recipes, err := s.svc.SearchRecipes(r.Context(), query)
	if err != nil {
		s.serverError(w, r, err)
		return
	}

	s.render(w, r, http.StatusOK, "search.html", "Search", searchPage{Query: query, Recipes: recipes})
}

// CreateRecipeForm handles GET /create/
func (s *Server) CreateRecipeForm(w http.ResponseWriter, r *http.Request) {
	s.renderRecipeForm(w, r, "create.html", "Add a Recipe", 0, service.RecipeInput{})
}

// CreateRecipe handles POST /create/
func (s *Server) CreateRecipe(w http.ResponseWriter, r *http.Request) {
	if !parseForm(w, r) {
		return
	}

	in := parseRecipeForm(r)
	if _, err := s.svc.CreateRecipe(r.Context(), in, currentSession(r).UserID); err != nil {
		s.flashError(r, err)
		s.renderRecipeForm(w, r, "create.html", "Add a Recipe", 0, in)
		return
	}

	s.flash(r, session.FlashSuccess, fmt.Sprintf("Recipe %q created successfully!", strings.TrimSpace(in.Name)))
	s.redirect(w, r, "/recipes/")
}

// UpdateRecipeForm handles GET /update/{id}/
func (s *Server) UpdateRecipeForm(w http.ResponseWriter, r *http.Request) {
	detail, ok := s.loadRecipeForEdit(w, r)
	if !ok {
		return
	}

	rec := detail.Recipe
	in := service.RecipeInput{
		Name:        rec.Name,
		Description: rec.Description,
		Method:      rec.Method,
		CookTime:    rec.CookTime,
		PrepTime:    rec.PrepTime,
		Portion:     rec.Portion,
		Poster:      rec.Poster,
		Cuisine:     rec.Cuisine,
		Review:      rec.Review,
		Ingredients: detail.Ingredients,
	}
	if rec.Rating != nil {
		in.Rating = strconv.Itoa(*rec.Rating)
	}

	s.renderRecipeForm(w, r, "update.html", "Update Recipe", rec.ID, in)
}

// UpdateRecipe handles POST /update/{id}/
func (s *Server) UpdateRecipe(w http.ResponseWriter, r *http.Request) {
	detail, ok := s.loadRecipeForEdit(w, r)
	if !ok {
		return
	}
	id := detail.Recipe.ID

	if !parseForm(w, r) {
		return
	}

	in := parseRecipeForm(r)
	err := s.svc.UpdateRecipe(r.Context(), id, in, currentSession(r).UserID)
	switch {
	case errors.Is(err, service.ErrValidation):
		s.flashError(r, err)
		s.renderRecipeForm(w, r, "update.html", "Update Recipe", id, in)
		return
	case err != nil:
		s.flashError(r, err)
		s.redirect(w, r, recipeURL(id))
		return
	}

	s.flash(r, session.FlashSuccess, "Recipe updated successfully!")
	s.redirect(w, r, recipeURL(id))
}

// DeleteRecipe handles POST /delete/{id}
func (s *Server) DeleteRecipe(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		http.NotFound(w, r)
		return
	}

	if err := s.svc.DeleteRecipe(r.Context(), id, currentSession(r).UserID); err != nil {
		s.flashError(r, err)
		if errors.Is(err, service.ErrForbidden) {
			s.redirect(w, r, recipeURL(id))
			return
		}
		s.redirect(w, r, "/recipes/")
		return
	}

	s.flash(r, session.FlashSuccess, "Recipe deleted successfully!")
	s.redirect(w, r, "/recipes/")
}

// loadRecipeForEdit looks the recipe up before an edit, redirecting to the
// listing when it is gone.
func (s *Server) loadRecipeForEdit(w http.ResponseWriter, r *http.Request) (*service.RecipeDetail, bool) {
	id, ok := pathID(r)
	if !ok {
		http.NotFound(w, r)
		return nil, false
	}

	detail, err := s.svc.GetRecipe(r.Context(), id)
	if errors.Is(err, service.ErrNotFound) {
		s.flash(r, session.FlashWarning, "Recipe not found!")
		s.redirect(w, r, "/recipes/")
		return nil, false
	}
	if err != nil {
		s.serverError(w, r, err)
		return nil, false
	}
	return detail, true
}

func (s *Server) renderRecipeForm(w http.ResponseWriter, r *http.Request, page, title string, id int64, in service.RecipeInput) {
	suggestions, err := s.svc.ListIngredients(r.Context())
	if err != nil {
		s.serverError(w, r, err)
		return
	}

	rows := make([]models.Ingredient, 0, len(in.Ingredients)+spareIngredientRows)
	rows = append(rows, in.Ingredients...)
	for i := 0; i < spareIngredientRows; i++ {
		rows = append(rows, models.Ingredient{})
	}
	in.Ingredients = rows

	s.render(w, r, http.StatusOK, page, title, recipeFormPage{ID: id, Form: in, Suggestions: suggestions})
}

// parseRecipeForm reads the recipe fields. Ingredients arrive as parallel
// ingredient_name/ingredient_amount lists; rows without a name are dropped.
func parseRecipeForm(r *http.Request) service.RecipeInput {
	in := service.RecipeInput{
		Name:        r.PostForm.Get("name"),
		Description: r.PostForm.Get("description"),
		Method:      r.PostForm.Get("method"),
		CookTime:    r.PostForm.Get("cook_time"),
		PrepTime:    r.PostForm.Get("prep_time"),
		Portion:     r.PostForm.Get("portion"),
		Poster:      r.PostForm.Get("poster"),
		Cuisine:     r.PostForm.Get("cuisine"),
		Rating:      r.PostForm.Get("rating"),
		Review:      r.PostForm.Get("review"),
	}

	names := r.PostForm["ingredient_name"]
	amounts := r.PostForm["ingredient_amount"]
	for i, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		var amount string
		if i < len(amounts) {
			amount = strings.TrimSpace(amounts[i])
		}
		in.Ingredients = append(in.Ingredients, models.Ingredient{Name: name, Amount: amount})
	}
	return in
}

func recipeURL(id int64) string {
	return fmt.Sprintf("/recipe/%d/", id)
}

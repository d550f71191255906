package service

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/shalteor/kitchenhub/internal/db"
	"github.com/shalteor/kitchenhub/internal/models"
)

// RecipeInput is a recipe form as submitted
type RecipeInput struct {
	Name        string
	Description string
	Method      string
	CookTime    string
	PrepTime    string
	Portion     string
	Poster      string
	Cuisine     string
	Rating      string
	Review      string
	Ingredients []models.Ingredient
}

// RecipeDetail is a recipe with its ingredient list
type RecipeDetail struct {
	Recipe        models.Recipe
	Ingredients   []models.Ingredient
	IngredientIDs []int64
}

// ParseRating turns form input into a rating. Anything that is not an
// integer yields nil rather than an error.
func ParseRating(s string) *int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return nil
	}
	return &n
}

func (in RecipeInput) fields() (models.RecipeFields, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return models.RecipeFields{}, validationError("Recipe name is required!")
	}
	if tooLong(name) {
		return models.RecipeFields{}, nameTooLong("Recipe name")
	}
	return models.RecipeFields{
		Name:        name,
		Description: strings.TrimSpace(in.Description),
		Method:      strings.TrimSpace(in.Method),
		CookTime:    strings.TrimSpace(in.CookTime),
		PrepTime:    strings.TrimSpace(in.PrepTime),
		Portion:     strings.TrimSpace(in.Portion),
		Poster:      strings.TrimSpace(in.Poster),
		Cuisine:     strings.TrimSpace(in.Cuisine),
		Rating:      ParseRating(in.Rating),
		Review:      strings.TrimSpace(in.Review),
	}, nil
}

// ListRecipes returns recipes in the given order. limit <= 0 returns all.
func (s *Service) ListRecipes(ctx context.Context, order models.RecipeOrder, limit int) ([]models.Recipe, error) {
	recipes, err := s.db.ListRecipes(ctx, order, limit)
	if err != nil {
		return nil, storeError("list recipes", err)
	}
	return recipes, nil
}

// GetRecipe returns a recipe with its ingredients
func (s *Service) GetRecipe(ctx context.Context, id int64) (*RecipeDetail, error) {
	recipe, err := s.db.GetRecipe(ctx, id)
	if errors.Is(err, db.ErrRecipeNotFound) {
		return nil, notFoundError("Requested recipe not found!")
	}
	if err != nil {
		return nil, storeError("get recipe", err)
	}

	ingredients, err := s.db.GetRecipeIngredients(ctx, id)
	if err != nil {
		return nil, storeError("get recipe ingredients", err)
	}

	ids := make([]int64, len(ingredients))
	for i, ing := range ingredients {
		ids[i] = ing.ID
	}

	return &RecipeDetail{Recipe: *recipe, Ingredients: ingredients, IngredientIDs: ids}, nil
}

// CreateRecipe stores a new recipe owned by userID (0 for none)
func (s *Service) CreateRecipe(ctx context.Context, in RecipeInput, userID int64) (int64, error) {
	fields, err := in.fields()
	if err != nil {
		return 0, err
	}

	var owner *int64
	if userID != 0 {
		owner = &userID
	}

	id, err := s.db.CreateRecipe(ctx, owner, fields, in.Ingredients)
	if err != nil {
		return 0, storeError("create recipe", err)
	}

	s.logger.Info("recipe created", zap.Int64("recipe_id", id), zap.Int64("user_id", userID))
	return id, nil
}

// UpdateRecipe overwrites a recipe. Last writer wins.
func (s *Service) UpdateRecipe(ctx context.Context, id int64, in RecipeInput, userID int64) error {
	fields, err := in.fields()
	if err != nil {
		return err
	}

	if err := s.authorize(ctx, id, userID); err != nil {
		return err
	}

	if err := s.db.UpdateRecipe(ctx, id, fields, in.Ingredients); err != nil {
		return storeError("update recipe", err)
	}
	return nil
}

// DeleteRecipe removes a recipe and its ingredient links
func (s *Service) DeleteRecipe(ctx context.Context, id int64, userID int64) error {
	if err := s.authorize(ctx, id, userID); err != nil {
		return err
	}

	err := s.db.DeleteRecipe(ctx, id)
	if errors.Is(err, db.ErrRecipeNotFound) {
		return notFoundError("Recipe not found!")
	}
	if err != nil {
		return storeError("delete recipe", err)
	}

	s.logger.Info("recipe deleted", zap.Int64("recipe_id", id), zap.Int64("user_id", userID))
	return nil
}

// CanModify reports whether userID may change recipe under the current
// ownership policy.
func (s *Service) CanModify(recipe models.Recipe, userID int64) bool {
	if userID == 0 {
		return false
	}
	if !s.enforceOwnership || recipe.UserID == nil {
		return true
	}
	return *recipe.UserID == userID
}

func (s *Service) authorize(ctx context.Context, id, userID int64) error {
	if !s.enforceOwnership {
		return nil
	}

	recipe, err := s.db.GetRecipe(ctx, id)
	if errors.Is(err, db.ErrRecipeNotFound) {
		return notFoundError("Recipe not found!")
	}
	if err != nil {
		return storeError("get recipe", err)
	}

	if !s.CanModify(*recipe, userID) {
		return &Error{Kind: ErrForbidden, Message: "Only the recipe's author can change it."}
	}
	return nil
}

// SearchRecipes matches query against recipe text. A blank query finds
// nothing.
func (s *Service) SearchRecipes(ctx context.Context, query string) ([]models.Recipe, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []models.Recipe{}, nil
	}

	recipes, err := s.db.SearchRecipes(ctx, query)
	if err != nil {
		return nil, storeError("search recipes", err)
	}
	return recipes, nil
}

// ListIngredients returns every known ingredient
func (s *Service) ListIngredients(ctx context.Context) ([]models.Ingredient, error) {
	ingredients, err := s.db.ListIngredients(ctx)
	if err != nil {
		return nil, storeError("list ingredients", err)
	}
	return ingredients, nil
}

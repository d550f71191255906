package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/shalteor/kitchenhub/internal/models"
)

const recipeColumns = `id, name, description, method, cook_time, prep_time, portion,
	poster, cuisine, rating, review, user_id, created_at, updated_at`

// orderClauses is the only source of ORDER BY text for recipe queries.
var orderClauses = map[models.RecipeOrder]string{
	models.OrderByName:     "name COLLATE NOCASE ASC, id ASC",
	models.OrderByNameDesc: "name COLLATE NOCASE DESC, id DESC",
	models.OrderByNewest:   "created_at DESC, id DESC",
	models.OrderByRating:   "rating IS NULL, rating DESC, name COLLATE NOCASE ASC",
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecipe(row rowScanner) (*models.Recipe, error) {
	recipe := &models.Recipe{}
	var rating, userID sql.NullInt64

	err := row.Scan(
		&recipe.ID,
		&recipe.Name,
		&recipe.Description,
		&recipe.Method,
		&recipe.CookTime,
		&recipe.PrepTime,
		&recipe.Portion,
		&recipe.Poster,
		&recipe.Cuisine,
		&rating,
		&recipe.Review,
		&userID,
		&recipe.CreatedAt,
		&recipe.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if rating.Valid {
		r := int(rating.Int64)
		recipe.Rating = &r
	}
	if userID.Valid {
		id := userID.Int64
		recipe.UserID = &id
	}
	return recipe, nil
}

func (db *DB) queryRecipes(ctx context.Context, query string, args ...any) ([]models.Recipe, error) {
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list recipes: %w", err)
	}
	defer rows.Close()

	recipes := []models.Recipe{}
	for rows.Next() {
		recipe, err := scanRecipe(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan recipe: %w", err)
		}
		recipes = append(recipes, *recipe)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate recipes: %w", err)
	}
	return recipes, nil
}

// ListRecipes returns every recipe in the given order. A limit of zero or
// less returns all rows.
func (db *DB) ListRecipes(ctx context.Context, order models.RecipeOrder, limit int) ([]models.Recipe, error) {
	clause, ok := orderClauses[order]
	if !ok {
		clause = orderClauses[models.OrderByName]
	}

	query := `SELECT ` + recipeColumns + ` FROM recipes ORDER BY ` + clause
	if limit > 0 {
		return db.queryRecipes(ctx, query+` LIMIT ?`, limit)
	}
	return db.queryRecipes(ctx, query)
}

// SearchRecipes matches term as a case-insensitive substring of the name,
// description or cuisine.
func (db *DB) SearchRecipes(ctx context.Context, term string) ([]models.Recipe, error) {
	pattern := "%" + escapeLike(term) + "%"
	query := `SELECT ` + recipeColumns + ` FROM recipes
		WHERE name LIKE ? ESCAPE '\' OR description LIKE ? ESCAPE '\' OR cuisine LIKE ? ESCAPE '\'
		ORDER BY ` + orderClauses[models.OrderByName]
	return db.queryRecipes(ctx, query, pattern, pattern, pattern)
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// GetRecipe retrieves a recipe by ID
func (db *DB) GetRecipe(ctx context.Context, id int64) (*models.Recipe, error) {
	query := `SELECT ` + recipeColumns + ` FROM recipes WHERE id = ?`

	recipe, err := scanRecipe(db.conn.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, ErrRecipeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get recipe: %w", err)
	}
	return recipe, nil
}

// GetRecipeIngredients returns the ingredients linked to a recipe in the
// order they were entered.
func (db *DB) GetRecipeIngredients(ctx context.Context, recipeID int64) ([]models.Ingredient, error) {
	query := `
		SELECT ingredients.id, ingredients.name, recipe_ingredients.amount
		FROM ingredients
		JOIN recipe_ingredients ON ingredients.id = recipe_ingredients.ingredient_id
		WHERE recipe_ingredients.recipe_id = ?
		ORDER BY recipe_ingredients.position, ingredients.name
	`

	rows, err := db.conn.QueryContext(ctx, query, recipeID)
	if err != nil {
		return nil, fmt.Errorf("failed to get recipe ingredients: %w", err)
	}
	defer rows.Close()

	ingredients := []models.Ingredient{}
	for rows.Next() {
		var ing models.Ingredient
		if err := rows.Scan(&ing.ID, &ing.Name, &ing.Amount); err != nil {
			return nil, fmt.Errorf("failed to scan ingredient: %w", err)
		}
		ingredients = append(ingredients, ing)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate ingredients: %w", err)
	}
	return ingredients, nil
}

// ListIngredients returns every known ingredient name
func (db *DB) ListIngredients(ctx context.Context) ([]models.Ingredient, error) {
	rows, err := db.conn.QueryContext(ctx, `SELECT id, name FROM ingredients ORDER BY name COLLATE NOCASE`)
	if err != nil {
		return nil, fmt.Errorf("failed to list ingredients: %w", err)
	}
	defer rows.Close()

	ingredients := []models.Ingredient{}
	for rows.Next() {
		var ing models.Ingredient
		if err := rows.Scan(&ing.ID, &ing.Name); err != nil {
			return nil, fmt.Errorf("failed to scan ingredient: %w", err)
		}
		ingredients = append(ingredients, ing)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate ingredients: %w", err)
	}
	return ingredients, nil
}

// CreateRecipe inserts a recipe together with its ingredient links
func (db *DB) CreateRecipe(ctx context.Context, userID *int64, fields models.RecipeFields, ingredients []models.Ingredient) (int64, error) {
	query := `
		INSERT INTO recipes (
			name, description, method, cook_time, prep_time, portion,
			poster, cuisine, rating, review, user_id, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	var id int64
	err := db.withTx(ctx, func(tx *sql.Tx) error {
		now := time.Now().UTC()
		result, err := tx.ExecContext(ctx, query,
			fields.Name,
			fields.Description,
			fields.Method,
			fields.CookTime,
			fields.PrepTime,
			fields.Portion,
			fields.Poster,
			fields.Cuisine,
			nullInt(fields.Rating),
			fields.Review,
			nullInt64(userID),
			now,
			now,
		)
		if err != nil {
			return fmt.Errorf("failed to create recipe: %w", err)
		}

		id, err = result.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get last insert id: %w", err)
		}

		return replaceIngredients(ctx, tx, id, ingredients)
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// UpdateRecipe overwrites every mutable field and replaces the ingredient
// list. An unknown id is not an error.
func (db *DB) UpdateRecipe(ctx context.Context, id int64, fields models.RecipeFields, ingredients []models.Ingredient) error {
	query := `
		UPDATE recipes
		SET name = ?, description = ?, method = ?, cook_time = ?, prep_time = ?,
		    portion = ?, poster = ?, cuisine = ?, rating = ?, review = ?, updated_at = ?
		WHERE id = ?
	`

	return db.withTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, query,
			fields.Name,
			fields.Description,
			fields.Method,
			fields.CookTime,
			fields.PrepTime,
			fields.Portion,
			fields.Poster,
			fields.Cuisine,
			nullInt(fields.Rating),
			fields.Review,
			time.Now().UTC(),
			id,
		)
		if err != nil {
			return fmt.Errorf("failed to update recipe: %w", err)
		}

		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rowsAffected == 0 {
			return nil
		}

		return replaceIngredients(ctx, tx, id, ingredients)
	})
}

func replaceIngredients(ctx context.Context, tx *sql.Tx, recipeID int64, ingredients []models.Ingredient) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM recipe_ingredients WHERE recipe_id = ?`, recipeID); err != nil {
		return fmt.Errorf("failed to clear recipe ingredients: %w", err)
	}

	for i, ing := range ingredients {
		name := strings.TrimSpace(ing.Name)
		if name == "" {
			continue
		}

		var ingredientID int64
		err := tx.QueryRowContext(ctx, `
			INSERT INTO ingredients (name) VALUES (?)
			ON CONFLICT(name) DO UPDATE SET name = ingredients.name
			RETURNING id
		`, name).Scan(&ingredientID)
		if err != nil {
			return fmt.Errorf("failed to upsert ingredient %q: %w", name, err)
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO recipe_ingredients (recipe_id, ingredient_id, amount, position)
			VALUES (?, ?, ?, ?)
			ON CONFLICT(recipe_id, ingredient_id) DO UPDATE SET amount = excluded.amount
		`, recipeID, ingredientID, strings.TrimSpace(ing.Amount), i)
		if err != nil {
			return fmt.Errorf("failed to link ingredient %q: %w", name, err)
		}
	}
	return nil
}

// DeleteRecipe removes a recipe and its ingredient links atomically
func (db *DB) DeleteRecipe(ctx context.Context, id int64) error {
	return db.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM recipe_ingredients WHERE recipe_id = ?`, id); err != nil {
			return fmt.Errorf("failed to delete recipe ingredients: %w", err)
		}

		result, err := tx.ExecContext(ctx, `DELETE FROM recipes WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("failed to delete recipe: %w", err)
		}

		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}

		if rowsAffected == 0 {
			return ErrRecipeNotFound
		}
		return nil
	})
}

// CountRecipeIngredientLinks reports how many links reference a recipe
func (db *DB) CountRecipeIngredientLinks(ctx context.Context, recipeID int64) (int, error) {
	var n int
	err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM recipe_ingredients WHERE recipe_id = ?`, recipeID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count recipe ingredients: %w", err)
	}
	return n, nil
}

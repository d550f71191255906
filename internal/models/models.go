package models

import "time"

// User represents a registered account
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Recipe represents a recipe row. Rating is nil when unset.
type Recipe struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Method      string    `json:"method"`
	CookTime    string    `json:"cookTime"`
	PrepTime    string    `json:"prepTime"`
	Portion     string    `json:"portion"`
	Poster      string    `json:"poster"`
	Cuisine     string    `json:"cuisine"`
	Rating      *int      `json:"rating,omitempty"`
	Review      string    `json:"review"`
	UserID      *int64    `json:"userId,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// RecipeFields holds the mutable recipe columns
type RecipeFields struct {
	Name        string
	Description string
	Method      string
	CookTime    string
	PrepTime    string
	Portion     string
	Poster      string
	Cuisine     string
	Rating      *int
	Review      string
}

// Ingredient is an ingredient as linked to one recipe. Amount lives on the
// recipe_ingredients link, not on the ingredient itself.
type Ingredient struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Amount string `json:"amount"`
}

// RecipeOrder enumerates the supported orderings for recipe listings
type RecipeOrder string

const (
	OrderByName     RecipeOrder = "name"
	OrderByNameDesc RecipeOrder = "name_desc"
	OrderByNewest   RecipeOrder = "newest"
	OrderByRating   RecipeOrder = "rating"
)

// ParseRecipeOrder maps a query value onto the allow-list, falling back to
// name ordering for anything unknown.
func ParseRecipeOrder(s string) RecipeOrder {
	switch RecipeOrder(s) {
	case OrderByName, OrderByNameDesc, OrderByNewest, OrderByRating:
		return RecipeOrder(s)
	default:
		return OrderByName
	}
}

// ShoppingItem represents one entry on the shopping list
type ShoppingItem struct {
	ID        int64     `json:"id"`
	Item      string    `json:"item"`
	Quantity  string    `json:"quantity"`
	Category  string    `json:"category"`
	Completed bool      `json:"completed"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ShoppingStats summarises list progress
type ShoppingStats struct {
	Total      int `json:"total"`
	Completed  int `json:"completed"`
	Remaining  int `json:"remaining"`
	Percentage int `json:"percentage"`
}

// ContactMessage is a submitted contact form
type ContactMessage struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Subject    string    `json:"subject"`
	Body       string    `json:"body"`
	ReceivedAt time.Time `json:"receivedAt"`
}

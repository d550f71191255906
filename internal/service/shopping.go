package service

import (
	"context"
	"errors"
	"math"
	"sort"
	"strings"

	"github.com/shalteor/kitchenhub/internal/db"
	"github.com/shalteor/kitchenhub/internal/models"
)

const (
	defaultQuantity = "1 item"
	defaultCategory = "other"
)

type quickItem struct {
	Name     string
	Category string
	Quantity string
}

var quickItems = map[string]quickItem{
	"milk":     {"Milk", "dairy", "1 liter"},
	"bread":    {"Bread", "grains", "1 loaf"},
	"eggs":     {"Eggs", "dairy", "6 pieces"},
	"bananas":  {"Bananas", "fruits", "4 pieces"},
	"potatoes": {"Potatoes", "vegetables", "5 pieces"},
}

var sampleItems = []models.ShoppingItem{
	{Item: "Rice", Quantity: "3 cups", Category: "grains"},
	{Item: "Tomatoes", Quantity: "4 pieces", Category: "vegetables", Completed: true},
	{Item: "Onions", Quantity: "2 pieces", Category: "vegetables"},
	{Item: "Chicken", Quantity: "1 kg", Category: "meat"},
	{Item: "Olive Oil", Quantity: "1 bottle", Category: "other", Completed: true},
}

// ShoppingList is the list with its progress figures
type ShoppingList struct {
	Items []models.ShoppingItem
	Stats models.ShoppingStats
}

// ComputeStats derives totals and the rounded completion percentage
func ComputeStats(items []models.ShoppingItem) models.ShoppingStats {
	stats := models.ShoppingStats{Total: len(items)}
	for _, item := range items {
		if item.Completed {
			stats.Completed++
		}
	}
	stats.Remaining = stats.Total - stats.Completed
	if stats.Total > 0 {
		stats.Percentage = int(math.RoundToEven(100 * float64(stats.Completed) / float64(stats.Total)))
	}
	return stats
}

// QuickAddKeys lists the quick-add shortcuts in a stable order
func QuickAddKeys() []string {
	keys := make([]string, 0, len(quickItems))
	for k := range quickItems {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func orDefault(s, fallback string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return fallback
	}
	return s
}

// ListItems returns the list and its statistics
func (s *Service) ListItems(ctx context.Context) (*ShoppingList, error) {
	items, err := s.db.ListShoppingItems(ctx)
	if err != nil {
		return nil, storeError("list shopping items", err)
	}
	return &ShoppingList{Items: items, Stats: ComputeStats(items)}, nil
}

// AddItem puts a new open item on the list
func (s *Service) AddItem(ctx context.Context, name, quantity, category string) (*models.ShoppingItem, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, validationError("Item name is required!")
	}
	if tooLong(name) {
		return nil, nameTooLong("Item name")
	}

	item := &models.ShoppingItem{
		Item:     name,
		Quantity: orDefault(quantity, defaultQuantity),
		Category: orDefault(category, defaultCategory),
	}
	if err := s.db.AddShoppingItem(ctx, item); err != nil {
		return nil, storeError("add shopping item", err)
	}
	return item, nil
}

// ToggleItem flips an item's completion and returns its name and new state
func (s *Service) ToggleItem(ctx context.Context, id int64) (string, bool, error) {
	name, completed, err := s.db.ToggleShoppingItem(ctx, id)
	if errors.Is(err, db.ErrItemNotFound) {
		return "", false, notFoundError("Item not found!")
	}
	if err != nil {
		return "", false, storeError("toggle shopping item", err)
	}
	return name, completed, nil
}

// EditItem overwrites an item and returns the name it had before
func (s *Service) EditItem(ctx context.Context, id int64, name, quantity, category string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", validationError("Item name is required!")
	}
	if tooLong(name) {
		return "", nameTooLong("Item name")
	}

	previous, err := s.db.EditShoppingItem(ctx, id, name,
		orDefault(quantity, defaultQuantity),
		orDefault(category, defaultCategory),
	)
	if errors.Is(err, db.ErrItemNotFound) {
		return "", notFoundError("Item not found!")
	}
	if err != nil {
		return "", storeError("edit shopping item", err)
	}
	return previous, nil
}

// DeleteItem removes an item and returns its name
func (s *Service) DeleteItem(ctx context.Context, id int64) (string, error) {
	name, err := s.db.DeleteShoppingItem(ctx, id)
	if errors.Is(err, db.ErrItemNotFound) {
		return "", notFoundError("Item not found!")
	}
	if err != nil {
		return "", storeError("delete shopping item", err)
	}
	return name, nil
}

// CompleteAll marks every open item done and returns how many changed
func (s *Service) CompleteAll(ctx context.Context) (int64, error) {
	n, err := s.db.CompleteAllShoppingItems(ctx)
	if err != nil {
		return 0, storeError("complete shopping items", err)
	}
	return n, nil
}

// ClearCompleted deletes done items and returns how many went
func (s *Service) ClearCompleted(ctx context.Context) (int64, error) {
	n, err := s.db.ClearCompletedShoppingItems(ctx)
	if err != nil {
		return 0, storeError("clear shopping items", err)
	}
	return n, nil
}

// QuickAdd adds one of the fixed common groceries
func (s *Service) QuickAdd(ctx context.Context, key string) (*models.ShoppingItem, error) {
	q, ok := quickItems[strings.ToLower(strings.TrimSpace(key))]
	if !ok {
		return nil, validationError("Invalid quick add item!")
	}

	item := &models.ShoppingItem{Item: q.Name, Quantity: q.Quantity, Category: q.Category}
	if err := s.db.AddShoppingItem(ctx, item); err != nil {
		return nil, storeError("quick add shopping item", err)
	}
	return item, nil
}

// SeedShoppingItems fills an empty list with sample items and returns how
// many were added.
func (s *Service) SeedShoppingItems(ctx context.Context) (int, error) {
	n, err := s.db.CountShoppingItems(ctx)
	if err != nil {
		return 0, storeError("count shopping items", err)
	}
	if n > 0 {
		return 0, nil
	}

	for _, sample := range sampleItems {
		item := sample
		if err := s.db.AddShoppingItem(ctx, &item); err != nil {
			return 0, storeError("seed shopping items", err)
		}
	}
	return len(sampleItems), nil
}

package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/shalteor/kitchenhub/internal/models"
	"github.com/shalteor/kitchenhub/internal/service"
	"github.com/shalteor/kitchenhub/internal/session"
)

const shoppingURL = "/shopping/"

var shoppingCategories = []string{"grains", "vegetables", "fruits", "dairy", "meat", "other"}

type shoppingPage struct {
	Items      []models.ShoppingItem
	Stats      models.ShoppingStats
	QuickAdd   []string
	Categories []string
}

// ShoppingList handles GET /shopping/
func (s *Server) ShoppingList(w http.ResponseWriter, r *http.Request) {
	list, err := s.svc.ListItems(r.Context())
	if err != nil {
		s.serverError(w, r, err)
		return
	}

	s.render(w, r, http.StatusOK, "shopping.html", "Shopping List", shoppingPage{
		Items:      list.Items,
		Stats:      list.Stats,
		QuickAdd:   service.QuickAddKeys(),
		Categories: shoppingCategories,
	})
}

// AddShoppingItem handles POST /shopping/add
func (s *Server) AddShoppingItem(w http.ResponseWriter, r *http.Request) {
	if !parseForm(w, r) {
		return
	}

	item, err := s.svc.AddItem(r.Context(),
		r.PostForm.Get("item_name"),
		r.PostForm.Get("item_quantity"),
		r.PostForm.Get("item_category"),
	)
	if err != nil {
		s.flashError(r, err)
	} else {
		s.flash(r, session.FlashSuccess, fmt.Sprintf("%q added to shopping list!", item.Item))
	}
	s.redirect(w, r, shoppingURL)
}

// ToggleShoppingItem handles POST /shopping/update/{id}
func (s *Server) ToggleShoppingItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		http.NotFound(w, r)
		return
	}

	name, completed, err := s.svc.ToggleItem(r.Context(), id)
	if err != nil {
		s.flashError(r, err)
	} else {
		status := "marked as not completed"
		if completed {
			status = "marked as completed"
		}
		s.flash(r, session.FlashInfo, fmt.Sprintf("%q %s!", name, status))
	}
	s.redirect(w, r, shoppingURL)
}

// EditShoppingItem handles POST /shopping/edit/{id}
func (s *Server) EditShoppingItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	if !parseForm(w, r) {
		return
	}

	name := strings.TrimSpace(r.PostForm.Get("item_name"))
	previous, err := s.svc.EditItem(r.Context(), id, name,
		r.PostForm.Get("item_quantity"),
		r.PostForm.Get("item_category"),
	)
	if err != nil {
		s.flashError(r, err)
	} else {
		s.flash(r, session.FlashInfo, fmt.Sprintf("Updated %q to %q!", previous, name))
	}
	s.redirect(w, r, shoppingURL)
}

// DeleteShoppingItem handles POST /shopping/delete/{id}
func (s *Server) DeleteShoppingItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		http.NotFound(w, r)
		return
	}

	name, err := s.svc.DeleteItem(r.Context(), id)
	if err != nil {
		s.flashError(r, err)
	} else {
		s.flash(r, session.FlashWarning, fmt.Sprintf("%q removed from shopping list!", name))
	}
	s.redirect(w, r, shoppingURL)
}

// CompleteAllShoppingItems handles POST /shopping/complete_all
func (s *Server) CompleteAllShoppingItems(w http.ResponseWriter, r *http.Request) {
	n, err := s.svc.CompleteAll(r.Context())
	switch {
	case err != nil:
		s.flashError(r, err)
	case n == 0:
		s.flash(r, session.FlashInfo, "All items are already completed!")
	default:
		s.flash(r, session.FlashSuccess, fmt.Sprintf("%d items marked as completed!", n))
	}
	s.redirect(w, r, shoppingURL)
}

// ClearCompletedShoppingItems handles POST /shopping/clear_completed
func (s *Server) ClearCompletedShoppingItems(w http.ResponseWriter, r *http.Request) {
	n, err := s.svc.ClearCompleted(r.Context())
	switch {
	case err != nil:
		s.flashError(r, err)
	case n == 0:
		s.flash(r, session.FlashInfo, "No completed items to clear!")
	default:
		s.flash(r, session.FlashInfo, fmt.Sprintf("%d completed items cleared!", n))
	}
	s.redirect(w, r, shoppingURL)
}

// QuickAddShoppingItem handles POST /shopping/quick_add/{name}
func (s *Server) QuickAddShoppingItem(w http.ResponseWriter, r *http.Request) {
	item, err := s.svc.QuickAdd(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		s.flashError(r, err)
	} else {
		s.flash(r, session.FlashSuccess, fmt.Sprintf("%s added to shopping list!", item.Item))
	}
	s.redirect(w, r, shoppingURL)
}

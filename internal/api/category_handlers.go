package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/example/bookshop-event-driven/internal/domain/category"
	"github.com/example/bookshop-event-driven/internal/query"
)

// CategoryHandlers handles category-related HTTP requests
type CategoryHandlers struct {
	categoryService *category.Service
	queryHandler    *query.Handler
}

// NewCategoryHandlers creates a new CategoryHandlers instance
func NewCategoryHandlers(categoryService *category.Service, queryHandler *query.Handler) *CategoryHandlers {
	return &CategoryHandlers{
		categoryService: categoryService,
		queryHandler:    queryHandler,
	}
}

// CreateCategoryRequest represents the request body for creating a category
type CreateCategoryRequest struct {
	Name        string `json:"name"`
	Slug        string `json:"slug,omitempty"`
	Description string `json:"description,omitempty"`
	ParentID    string `json:"parent_id,omitempty"`
	SortOrder   int    `json:"sort_order,omitempty"`
}

// CategoryResponse represents a category in API responses
type CategoryResponse struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	Slug        string             `json:"slug"`
	Description string             `json:"description"`
	ParentID    string             `json:"parent_id,omitempty"`
	SortOrder   int                `json:"sort_order"`
	Children    []CategoryResponse `json:"children,omitempty"`
}

// ListCategories returns all active categories as a tree
func (h *CategoryHandlers) ListCategories(w http.ResponseWriter, r *http.Request) {
	allCategories := h.queryHandler.ListCategories()

	categoryMap := make(map[string]*CategoryResponse)
	var rootCategories []CategoryResponse

	for _, cat := range allCategories {
		categoryMap[cat.ID] = &CategoryResponse{
			ID:          cat.ID,
			Name:        cat.Name,
			Slug:        cat.Slug,
			Description: cat.Description,
			ParentID:    cat.ParentID,
			SortOrder:   cat.SortOrder,
			Children:    []CategoryResponse{},
		}
	}

	for _, cat := range allCategories {
		if cat.ParentID == "" {
			rootCategories = append(rootCategories, *categoryMap[cat.ID])
		} else if parent, exists := categoryMap[cat.ParentID]; exists {
			parent.Children = append(parent.Children, *categoryMap[cat.ID])
		}
	}

	respondJSON(w, http.StatusOK, rootCategories)
}

// GetCategory returns a single category by id
func (h *CategoryHandlers) GetCategory(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/categories/")

	cat, exists := h.queryHandler.GetCategory(id)
	if !exists {
		respondJSONError(w, "Category not found", http.StatusNotFound)
		return
	}

	respondJSON(w, http.StatusOK, CategoryResponse{
		ID:          cat.ID,
		Name:        cat.Name,
		Slug:        cat.Slug,
		Description: cat.Description,
		ParentID:    cat.ParentID,
		SortOrder:   cat.SortOrder,
	})
}

// CreateCategory creates a new category (admin only)
func (h *CategoryHandlers) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req CreateCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	cat, err := h.categoryService.Create(r.Context(), req.Name, req.Slug, req.Description, req.ParentID, req.SortOrder)
	if err != nil {
		respondJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	respondJSON(w, http.StatusCreated, CategoryResponse{
		ID:          cat.ID,
		Name:        cat.Name,
		Slug:        cat.Slug,
		Description: cat.Description,
		ParentID:    cat.ParentID,
		SortOrder:   cat.SortOrder,
	})
}

// UpdateCategory updates an existing category (admin only)
func (h *CategoryHandlers) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	categoryID := strings.TrimPrefix(r.URL.Path, "/categories/")

	var req CreateCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	err := h.categoryService.Update(r.Context(), categoryID, req.Name, req.Slug, req.Description, req.ParentID, req.SortOrder)
	if err != nil {
		if err == category.ErrCategoryNotFound {
			respondJSONError(w, "Category not found", http.StatusNotFound)
			return
		}
		respondJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "Category updated"})
}

// DeleteCategory deletes a category (admin only)
func (h *CategoryHandlers) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	categoryID := strings.TrimPrefix(r.URL.Path, "/categories/")

	err := h.categoryService.Delete(r.Context(), categoryID)
	if err != nil {
		if err == category.ErrCategoryNotFound {
			respondJSONError(w, "Category not found", http.StatusNotFound)
			return
		}
		respondJSONError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "Category deleted"})
}

// GetBooksByCategory returns books linked to a category
func (h *CategoryHandlers) GetBooksByCategory(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/books/category/")

	if _, exists := h.queryHandler.GetCategory(id); !exists {
		respondJSONError(w, "Category not found", http.StatusNotFound)
		return
	}

	books := h.queryHandler.ListBooks()
	matched := make([]*query.BookReadModel, 0)
	for _, b := range books {
		for _, cid := range b.CategoryIDs {
			if cid == id {
				matched = append(matched, b)
				break
			}
		}
	}
	respondJSON(w, http.StatusOK, matched)
}

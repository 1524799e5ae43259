package dto

import "github.com/SscSPs/club_ledger/internal/core/domain"

// CreateCategoryRequest defines the data needed to add a category to a fiscal year.
type CreateCategoryRequest struct {
	Name string              `json:"name" binding:"required,notblank,max=50"`
	Type domain.CategoryType `json:"type" binding:"required,oneof=income expense"`
}

// RenameCategoryRequest defines the new name of a category.
type RenameCategoryRequest struct {
	Name string `json:"name" binding:"required,notblank,max=50"`
}

// ListCategoriesParams defines query parameters for listing categories.
type ListCategoriesParams struct {
	Type *domain.CategoryType `form:"type" binding:"omitempty,oneof=income expense"`
}

// CategoryResponse defines the data returned for a category.
type CategoryResponse struct {
	CategoryID   string              `json:"categoryID"`
	Name         string              `json:"name"`
	Type         domain.CategoryType `json:"type"`
	SortOrder    int                 `json:"sortOrder"`
	FiscalYearID string              `json:"fiscalYearID"`
}

// ToCategoryResponse converts a domain.Category to its response DTO.
func ToCategoryResponse(c *domain.Category) CategoryResponse {
	return CategoryResponse{
		CategoryID:   c.CategoryID,
		Name:         c.Name,
		Type:         c.Type,
		SortOrder:    c.SortOrder,
		FiscalYearID: c.FiscalYearID,
	}
}

// ToListCategoryResponse converts a slice of categories.
func ToListCategoryResponse(categories []domain.Category) []CategoryResponse {
	res := make([]CategoryResponse, len(categories))
	for i, c := range categories {
		res[i] = ToCategoryResponse(&c)
	}
	return res
}

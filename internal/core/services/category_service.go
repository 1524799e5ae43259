package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/SscSPs/club_ledger/internal/apperrors"
	"github.com/SscSPs/club_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/club_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/club_ledger/internal/core/ports/services"
	"github.com/SscSPs/club_ledger/internal/dto"
	"github.com/google/uuid"
)

type categoryService struct {
	BaseService
	categoryRepo   portsrepo.CategoryRepositoryFacade
	fiscalYearRepo portsrepo.FiscalYearReader
}

// NewCategoryService creates the category service.
func NewCategoryService(categoryRepo portsrepo.CategoryRepositoryFacade, fiscalYearRepo portsrepo.FiscalYearReader) portssvc.CategorySvcFacade {
	return &categoryService{categoryRepo: categoryRepo, fiscalYearRepo: fiscalYearRepo}
}

var _ portssvc.CategorySvcFacade = (*categoryService)(nil)

func (s *categoryService) ListCategories(ctx context.Context, fiscalYearID string, categoryType *domain.CategoryType) ([]domain.Category, error) {
	if categoryType != nil && !categoryType.IsValid() {
		return nil, fmt.Errorf("%w: unknown category type %q", apperrors.ErrValidation, *categoryType)
	}
	if _, err := s.fiscalYearRepo.FindFiscalYearByID(ctx, fiscalYearID); err != nil {
		return nil, err
	}
	return s.categoryRepo.ListCategories(ctx, fiscalYearID, categoryType)
}

func (s *categoryService) CreateCategory(ctx context.Context, fiscalYearID string, req dto.CreateCategoryRequest, userID string) (*domain.Category, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", apperrors.ErrValidation)
	}
	if !req.Type.IsValid() {
		return nil, fmt.Errorf("%w: unknown category type %q", apperrors.ErrValidation, req.Type)
	}
	if _, err := s.fiscalYearRepo.FindFiscalYearByID(ctx, fiscalYearID); err != nil {
		return nil, err
	}

	now := domain.Now()
	category := domain.Category{
		CategoryID:   uuid.NewString(),
		Name:         name,
		Type:         req.Type,
		FiscalYearID: fiscalYearID,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	saved, err := s.categoryRepo.SaveCategory(ctx, category)
	if err != nil {
		s.LogError(ctx, err, "Failed to create category", slog.String("fiscal_year_id", fiscalYearID), slog.String("name", name))
		return nil, err
	}
	return saved, nil
}

func (s *categoryService) RenameCategory(ctx context.Context, fiscalYearID string, categoryID string, req dto.RenameCategoryRequest, userID string) (*domain.Category, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", apperrors.ErrValidation)
	}
	category, err := s.findInYear(ctx, fiscalYearID, categoryID)
	if err != nil {
		return nil, err
	}

	now := domain.Now()
	if err := s.categoryRepo.RenameCategory(ctx, categoryID, name, userID, now); err != nil {
		s.LogError(ctx, err, "Failed to rename category", slog.String("category_id", categoryID))
		return nil, err
	}
	category.Name = name
	category.LastUpdatedAt = now
	category.LastUpdatedBy = userID
	return category, nil
}

// DeleteCategory leaves existing transactions alone; they keep the category name as text.
func (s *categoryService) DeleteCategory(ctx context.Context, fiscalYearID string, categoryID string) error {
	if _, err := s.findInYear(ctx, fiscalYearID, categoryID); err != nil {
		return err
	}
	return s.categoryRepo.DeleteCategory(ctx, categoryID)
}

func (s *categoryService) findInYear(ctx context.Context, fiscalYearID, categoryID string) (*domain.Category, error) {
	category, err := s.categoryRepo.FindCategoryByID(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	if category.FiscalYearID != fiscalYearID {
		return nil, fmt.Errorf("%w: category %s not in fiscal year %s", apperrors.ErrNotFound, categoryID, fiscalYearID)
	}
	return category, nil
}

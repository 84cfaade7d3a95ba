package service

import (
	"context"

	"foodhub/internal/domain"
)

type Repository interface {
	FindByIDs(ctx context.Context, ids []int) ([]domain.Product, error)
}

type ProductService struct {
	repo Repository
}

func NewService(repo Repository) *ProductService {
	return &ProductService{repo: repo}
}

// GetProductsByIDs splits ids into the orderable products and the ids that
// are unknown or not orderable. Duplicates in ids are looked up once.
func (s *ProductService) GetProductsByIDs(ctx context.Context, ids []int) ([]domain.Product, []int, error) {
	unique := make([]int, 0, len(ids))
	seen := make(map[int]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			unique = append(unique, id)
		}
	}

	found, err := s.repo.FindByIDs(ctx, unique)
	if err != nil {
		return nil, nil, err
	}

	foundSet := make(map[int]struct{}, len(found))
	for _, p := range found {
		foundSet[p.ID] = struct{}{}
	}

	var notFoundIDs []int
	for _, id := range unique {
		if _, ok := foundSet[id]; !ok {
			notFoundIDs = append(notFoundIDs, id)
		}
	}

	return found, notFoundIDs, nil
}

package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"foodhub/internal/domain"
)

type mockRepository struct {
	FindByIDsFunc func(ctx context.Context, ids []int) ([]domain.Product, error)
}

func (m *mockRepository) FindByIDs(ctx context.Context, ids []int) ([]domain.Product, error) {
	return m.FindByIDsFunc(ctx, ids)
}

func TestGetProductsByIDs_SplitsFoundAndMissing(t *testing.T) {
	var queried []int
	repo := &mockRepository{
		FindByIDsFunc: func(ctx context.Context, ids []int) ([]domain.Product, error) {
			queried = ids
			return []domain.Product{{ID: 1, Name: "Pide"}, {ID: 3, Name: "Ayran"}}, nil
		},
	}

	found, missing, err := NewService(repo).GetProductsByIDs(context.Background(), []int{1, 2, 3, 1, 4})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3, 4}, queried)
	assert.Len(t, found, 2)
	assert.Equal(t, []int{2, 4}, missing)
}

func TestGetProductsByIDs_AllFound(t *testing.T) {
	repo := &mockRepository{
		FindByIDsFunc: func(ctx context.Context, ids []int) ([]domain.Product, error) {
			return []domain.Product{{ID: 5}}, nil
		},
	}

	found, missing, err := NewService(repo).GetProductsByIDs(context.Background(), []int{5})
	require.NoError(t, err)
	assert.Len(t, found, 1)
	assert.Nil(t, missing)
}

func TestGetProductsByIDs_RepositoryError(t *testing.T) {
	repo := &mockRepository{
		FindByIDsFunc: func(ctx context.Context, ids []int) ([]domain.Product, error) {
			return nil, errors.New("connection refused")
		},
	}

	_, _, err := NewService(repo).GetProductsByIDs(context.Background(), []int{1})
	assert.Error(t, err)
}

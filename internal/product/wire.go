package product

import (
	"database/sql"

	"foodhub/internal/product/repository"
	"foodhub/internal/product/service"
)

// NewModule builds the read-only catalog lookup that order creation uses to
// check referenced products.
func NewModule(db *sql.DB) *service.ProductService {
	repo := repository.NewMySQLRepository(db)
	return service.NewService(repo)
}

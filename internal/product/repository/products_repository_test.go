package repository

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"foodhub/internal/testutil"
)

// Unit Tests

func TestNewMySQLRepository(t *testing.T) {
	db := &sql.DB{}
	repo := NewMySQLRepository(db)

	assert.NotNil(t, repo)
	assert.Equal(t, db, repo.db)
}

func TestRepository_FindByIDs_EmptyList(t *testing.T) {
	repo := NewMySQLRepository(&sql.DB{})

	products, err := repo.FindByIDs(context.Background(), []int{})
	require.NoError(t, err)
	assert.Nil(t, products)
}

// Integration Tests

func TestRepository_FindByIDs_Success(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	repo := NewMySQLRepository(db)

	res, err := db.Exec(`INSERT INTO Product (name, category, price) VALUES ('Adana Dürüm', 'Dürüm', 140.00)`)
	require.NoError(t, err)
	first, _ := res.LastInsertId()
	res, err = db.Exec(`INSERT INTO Product (name, category, price) VALUES ('Künefe', 'Tatlı', 95.50)`)
	require.NoError(t, err)
	second, _ := res.LastInsertId()

	products, err := repo.FindByIDs(context.Background(), []int{int(second), int(first)})
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, int(first), products[0].ID)
	assert.Equal(t, "Adana Dürüm", products[0].Name)
	assert.Equal(t, "Dürüm", products[0].Category)
	assert.Equal(t, "95.5", products[1].Price.String())
	assert.True(t, products[1].IsActive)
}

func TestRepository_FindByIDs_SkipsDeletedAndInactive(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	repo := NewMySQLRepository(db)

	res, err := db.Exec(`INSERT INTO Product (name, price) VALUES ('Mercimek Çorbası', 60.00)`)
	require.NoError(t, err)
	active, _ := res.LastInsertId()
	res, err = db.Exec(`INSERT INTO Product (name, price, isDeleted) VALUES ('Eski Menü', 10.00, 1)`)
	require.NoError(t, err)
	deleted, _ := res.LastInsertId()
	res, err = db.Exec(`INSERT INTO Product (name, price, isActive) VALUES ('Sezonluk', 10.00, 0)`)
	require.NoError(t, err)
	inactive, _ := res.LastInsertId()

	products, err := repo.FindByIDs(context.Background(), []int{int(active), int(deleted), int(inactive), 999999})
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, int(active), products[0].ID)
}

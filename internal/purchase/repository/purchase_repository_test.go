package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bodega/internal/domain"
	apperrors "bodega/internal/errors"
	"bodega/internal/testutil"
)

func TestNewMySQLPurchaseRepository(t *testing.T) {
	db := &sql.DB{}
	repo := NewMySQLPurchaseRepository(db)

	assert.NotNil(t, repo)
	assert.Equal(t, db, repo.db)
}

func insertUser(t *testing.T, db *sql.DB, name, email string) int {
	t.Helper()
	result, err := db.Exec(
		"INSERT INTO users (name, email, password_hash, role) VALUES (?, ?, ?, ?)",
		name, email, "hash", "cliente")
	require.NoError(t, err)
	id, err := result.LastInsertId()
	require.NoError(t, err)
	return int(id)
}

func insertProduct(t *testing.T, db *sql.DB, lotNumber string) int {
	t.Helper()
	result, err := db.Exec(
		"INSERT INTO products (lot_number, name, unit_price, available_quantity, entry_date) VALUES (?, ?, ?, ?, ?)",
		lotNumber, "Mouse", "99.99", 50, "2025-11-05")
	require.NoError(t, err)
	id, err := result.LastInsertId()
	require.NoError(t, err)
	return int(id)
}

// insertPurchase writes one header and one line in a transaction, the
// same shape the checkout commit produces.
func insertPurchase(t *testing.T, db *sql.DB, userID, productID int, purchasedAt time.Time) int {
	t.Helper()
	repo := NewMySQLPurchaseRepository(db)
	lineRepo := NewMySQLPurchaseLineRepository(db)
	ctx := context.Background()

	tx, err := db.BeginTx(ctx, nil)
	require.NoError(t, err)

	purchaseID, err := repo.Insert(ctx, tx, userID, decimal.RequireFromString("199.98"), purchasedAt)
	require.NoError(t, err)

	_, err = lineRepo.Insert(ctx, tx, domain.PurchaseLine{
		PurchaseID: purchaseID,
		ProductID:  productID,
		Quantity:   2,
		UnitPrice:  decimal.RequireFromString("99.99"),
		Subtotal:   decimal.RequireFromString("199.98"),
	})
	require.NoError(t, err)

	require.NoError(t, tx.Commit())
	return purchaseID
}

func TestFindByID_LoadsLinesWithProductSnapshot_Integration(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	userID := insertUser(t, db, "Maria Garcia", "maria@test.com")
	productID := insertProduct(t, db, "LOT-T-001")
	purchaseID := insertPurchase(t, db, userID, productID, time.Date(2025, 11, 20, 10, 0, 0, 0, time.UTC))

	repo := NewMySQLPurchaseRepository(db)

	purchase, err := repo.FindByID(context.Background(), purchaseID)

	require.NoError(t, err)
	assert.Equal(t, userID, purchase.UserID)
	assert.True(t, purchase.Total.Equal(decimal.RequireFromString("199.98")))
	require.Len(t, purchase.Lines, 1)
	assert.Equal(t, "Mouse", purchase.Lines[0].ProductName)
	assert.Equal(t, "LOT-T-001", purchase.Lines[0].LotNumber)
	assert.Equal(t, 2, purchase.Lines[0].Quantity)
}

func TestFindByID_NotFound_Integration(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	repo := NewMySQLPurchaseRepository(db)

	_, err := repo.FindByID(context.Background(), 999999)

	require.Error(t, err)
	_, ok := apperrors.IsNotFoundError(err)
	assert.True(t, ok)
}

func TestFindByUser_NewestFirst_Integration(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	userID := insertUser(t, db, "Maria Garcia", "maria@test.com")
	otherID := insertUser(t, db, "Carlos Lopez", "carlos@test.com")
	productID := insertProduct(t, db, "LOT-T-001")

	older := insertPurchase(t, db, userID, productID, time.Date(2025, 11, 18, 9, 0, 0, 0, time.UTC))
	newer := insertPurchase(t, db, userID, productID, time.Date(2025, 11, 20, 9, 0, 0, 0, time.UTC))
	insertPurchase(t, db, otherID, productID, time.Date(2025, 11, 19, 9, 0, 0, 0, time.UTC))

	repo := NewMySQLPurchaseRepository(db)

	purchases, err := repo.FindByUser(context.Background(), userID)

	require.NoError(t, err)
	require.Len(t, purchases, 2, "only the requesting user's purchases")
	assert.Equal(t, newer, purchases[0].ID)
	assert.Equal(t, older, purchases[1].ID)
	require.Len(t, purchases[0].Lines, 1)
}

func TestFindByIDWithCustomer_Integration(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	userID := insertUser(t, db, "Maria Garcia", "maria@test.com")
	productID := insertProduct(t, db, "LOT-T-001")
	purchaseID := insertPurchase(t, db, userID, productID, time.Date(2025, 11, 20, 10, 0, 0, 0, time.UTC))

	repo := NewMySQLPurchaseRepository(db)

	pwc, err := repo.FindByIDWithCustomer(context.Background(), purchaseID)

	require.NoError(t, err)
	assert.Equal(t, "Maria Garcia", pwc.Customer.Name)
	assert.Equal(t, "maria@test.com", pwc.Customer.Email)
	require.Len(t, pwc.Lines, 1)
	assert.True(t, pwc.Total.Equal(pwc.LinesTotal()))
}

func TestFindAllWithCustomer_Integration(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	mariaID := insertUser(t, db, "Maria Garcia", "maria@test.com")
	carlosID := insertUser(t, db, "Carlos Lopez", "carlos@test.com")
	productID := insertProduct(t, db, "LOT-T-001")

	insertPurchase(t, db, mariaID, productID, time.Date(2025, 11, 18, 9, 0, 0, 0, time.UTC))
	newest := insertPurchase(t, db, carlosID, productID, time.Date(2025, 11, 20, 9, 0, 0, 0, time.UTC))

	repo := NewMySQLPurchaseRepository(db)

	purchases, err := repo.FindAllWithCustomer(context.Background())

	require.NoError(t, err)
	require.Len(t, purchases, 2)
	assert.Equal(t, newest, purchases[0].ID)
	assert.Equal(t, "Carlos Lopez", purchases[0].Customer.Name)
	assert.Equal(t, "Maria Garcia", purchases[1].Customer.Name)
}

package testutil

import (
	"database/sql"
	"fmt"
	"testing"

	_ "github.com/go-sql-driver/mysql"
)

// SetupTestDB opens the local test database. It expects a MySQL
// instance on localhost:3306 with a database named 'bodega_test'.
func SetupTestDB(t *testing.T) *sql.DB {
	dsn := "root:@tcp(localhost:3306)/bodega_test?parseTime=true"
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	err = db.Ping()
	if err != nil {
		t.Skipf("test database not available: %v", err)
	}

	return db
}

// CleanupTestDB removes all rows and closes the connection. Children
// first so foreign keys do not block the deletes.
func CleanupTestDB(t *testing.T, db *sql.DB) {
	if db == nil {
		return
	}

	tables := []string{"purchase_lines", "purchases", "products", "users"}
	for _, table := range tables {
		_, err := db.Exec(fmt.Sprintf("DELETE FROM %s", table))
		if err != nil {
			t.Logf("failed to clean table %s: %v", table, err)
		}
	}

	db.Close()
}

// SetupTestTables creates the schema used by the tests.
func SetupTestTables(t *testing.T, db *sql.DB) {
	createUsersTable := `
	CREATE TABLE IF NOT EXISTS users (
		id INT NOT NULL AUTO_INCREMENT PRIMARY KEY,
		name VARCHAR(100) NOT NULL,
		email VARCHAR(100) NOT NULL UNIQUE,
		password_hash VARCHAR(255) NOT NULL,
		role ENUM('admin', 'cliente') NOT NULL DEFAULT 'cliente',
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
	)`

	createProductsTable := `
	CREATE TABLE IF NOT EXISTS products (
		id INT NOT NULL AUTO_INCREMENT PRIMARY KEY,
		lot_number VARCHAR(50) NOT NULL UNIQUE,
		name VARCHAR(150) NOT NULL,
		unit_price DECIMAL(10,2) NOT NULL,
		available_quantity INT NOT NULL DEFAULT 0,
		entry_date DATE NOT NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		CONSTRAINT chk_available_quantity CHECK (available_quantity >= 0)
	)`

	createPurchasesTable := `
	CREATE TABLE IF NOT EXISTS purchases (
		id INT NOT NULL AUTO_INCREMENT PRIMARY KEY,
		user_id INT NOT NULL,
		purchased_at DATETIME NOT NULL,
		total DECIMAL(10,2) NOT NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		FOREIGN KEY (user_id) REFERENCES users(id),
		INDEX idx_user_purchased (user_id, purchased_at)
	)`

	createPurchaseLinesTable := `
	CREATE TABLE IF NOT EXISTS purchase_lines (
		id INT NOT NULL AUTO_INCREMENT PRIMARY KEY,
		purchase_id INT NOT NULL,
		product_id INT NOT NULL,
		quantity INT NOT NULL,
		unit_price DECIMAL(10,2) NOT NULL,
		subtotal DECIMAL(10,2) NOT NULL,
		FOREIGN KEY (purchase_id) REFERENCES purchases(id),
		FOREIGN KEY (product_id) REFERENCES products(id),
		INDEX idx_purchase (purchase_id)
	)`

	tables := []struct {
		name  string
		query string
	}{
		{"users", createUsersTable},
		{"products", createProductsTable},
		{"purchases", createPurchasesTable},
		{"purchase_lines", createPurchaseLinesTable},
	}

	for _, tbl := range tables {
		_, err := db.Exec(tbl.query)
		if err != nil {
			t.Logf("failed to create table %s: %v", tbl.name, err)
		}
	}
}

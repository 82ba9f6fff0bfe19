package testutil

import (
	"database/sql"
	"fmt"
	"os"
	"testing"

	_ "github.com/go-sql-driver/mysql"
)

const defaultTestDSN = "root:@tcp(localhost:3306)/tracking_test?parseTime=true&clientFoundRows=true"

// SetupTestDB opens the integration database named by TEST_MYSQL_DSN, falling
// back to a local tracking_test schema. The test is skipped when MySQL is not
// reachable.
func SetupTestDB(t *testing.T) *sql.DB {
	dsn := os.Getenv("TEST_MYSQL_DSN")
	if dsn == "" {
		dsn = defaultTestDSN
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("test database not available: %v", err)
	}

	return db
}

// CleanupTestDB empties every tracking table and closes db.
func CleanupTestDB(t *testing.T, db *sql.DB) {
	if db == nil {
		return
	}

	tables := []string{"Notifications", "UserWaitList", "OrderCheckpoints", "TrackedOrders", "Orders"}
	for _, table := range tables {
		_, err := db.Exec(fmt.Sprintf("DELETE FROM %s", table))
		if err != nil {
			t.Logf("failed to clean table %s: %v", table, err)
		}
	}

	db.Close()
}

// SetupTestTables creates the schema the repositories expect.
func SetupTestTables(t *testing.T, db *sql.DB) {
	createOrdersTable := `
	CREATE TABLE IF NOT EXISTS Orders (
		id INT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		buyerId INT UNSIGNED NOT NULL,
		orderDate DATETIME(6) NOT NULL DEFAULT CURRENT_TIMESTAMP(6),
		INDEX idx_buyer (buyerId)
	)`

	createTrackedOrdersTable := `
	CREATE TABLE IF NOT EXISTS TrackedOrders (
		id INT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		orderId INT UNSIGNED NOT NULL,
		currentStatus VARCHAR(32) NOT NULL,
		estimatedDeliveryDate DATE NOT NULL,
		deliveryAddress VARCHAR(255) NOT NULL,
		createdAt DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updatedAt DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		UNIQUE KEY uq_order (orderId)
	)`

	createOrderCheckpointsTable := `
	CREATE TABLE IF NOT EXISTS OrderCheckpoints (
		id INT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		trackedOrderId INT UNSIGNED NOT NULL,
		timestamp DATETIME(6) NOT NULL,
		location VARCHAR(255),
		description TEXT NOT NULL,
		status VARCHAR(32) NOT NULL,
		FOREIGN KEY (trackedOrderId) REFERENCES TrackedOrders(id) ON DELETE CASCADE,
		INDEX idx_tracked_order_time (trackedOrderId, timestamp)
	)`

	createUserWaitListTable := `
	CREATE TABLE IF NOT EXISTS UserWaitList (
		id INT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		userId INT UNSIGNED NOT NULL,
		productId INT UNSIGNED NOT NULL,
		positionInQueue INT NOT NULL,
		joinedAt DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		INDEX idx_product_position (productId, positionInQueue)
	)`

	createNotificationsTable := `
	CREATE TABLE IF NOT EXISTS Notifications (
		id INT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		recipientId INT UNSIGNED NOT NULL,
		category VARCHAR(64) NOT NULL,
		productId INT UNSIGNED,
		orderId INT UNSIGNED,
		content TEXT NOT NULL,
		timestamp DATETIME(6) NOT NULL,
		isRead TINYINT(1) NOT NULL DEFAULT 0,
		INDEX idx_recipient (recipientId)
	)`

	tables := []struct {
		name  string
		query string
	}{
		{"Orders", createOrdersTable},
		{"TrackedOrders", createTrackedOrdersTable},
		{"OrderCheckpoints", createOrderCheckpointsTable},
		{"UserWaitList", createUserWaitListTable},
		{"Notifications", createNotificationsTable},
	}

	for _, tbl := range tables {
		_, err := db.Exec(tbl.query)
		if err != nil {
			t.Logf("failed to create table %s: %v", tbl.name, err)
		}
	}
}

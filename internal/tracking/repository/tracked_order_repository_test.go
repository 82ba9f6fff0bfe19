package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"palantir/internal/domain"
	"palantir/internal/errors"
	"palantir/internal/testutil"
)

// Unit Tests

func TestNewMySQLTrackedOrderRepository(t *testing.T) {
	db := &sql.DB{}
	repo := NewMySQLTrackedOrderRepository(db)

	assert.NotNil(t, repo)
	assert.Equal(t, db, repo.db)
}

// Integration Tests

func insertTrackedOrder(t *testing.T, db *sql.DB, repo *MySQLTrackedOrderRepository, orderID uint) uint {
	t.Helper()

	tx, err := db.BeginTx(context.Background(), nil)
	require.NoError(t, err)

	id, err := repo.Insert(context.Background(), tx, domain.TrackedOrder{
		OrderID:               orderID,
		CurrentStatus:         domain.OrderStatusProcessing,
		EstimatedDeliveryDate: time.Date(2024, 1, 17, 0, 0, 0, 0, time.UTC),
		DeliveryAddress:       "221B Baker Street",
	})
	require.NoError(t, err)
	require.NoError(t, tx.Commit())

	return id
}

func TestTrackedOrderRepository_InsertAndFind(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	repo := NewMySQLTrackedOrderRepository(db)
	id := insertTrackedOrder(t, db, repo, 10)

	order, err := repo.FindByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, id, order.ID)
	assert.Equal(t, uint(10), order.OrderID)
	assert.Equal(t, domain.OrderStatusProcessing, order.CurrentStatus)
	assert.Equal(t, "221B Baker Street", order.DeliveryAddress)
	assert.Equal(t, "2024-01-17", order.EstimatedDeliveryDate.Format("2006-01-02"))

	byOrder, err := repo.FindByOrderID(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, id, byOrder.ID)
}

func TestTrackedOrderRepository_Insert_DuplicateOrder(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	repo := NewMySQLTrackedOrderRepository(db)
	insertTrackedOrder(t, db, repo, 11)

	tx, err := db.BeginTx(context.Background(), nil)
	require.NoError(t, err)
	defer tx.Rollback()

	_, err = repo.Insert(context.Background(), tx, domain.TrackedOrder{
		OrderID:               11,
		CurrentStatus:         domain.OrderStatusProcessing,
		EstimatedDeliveryDate: time.Now(),
		DeliveryAddress:       "elsewhere",
	})

	_, ok := errors.IsConflictError(err)
	assert.True(t, ok)
}

func TestTrackedOrderRepository_FindByID_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	repo := NewMySQLTrackedOrderRepository(db)

	order, err := repo.FindByID(context.Background(), 9999)
	assert.Nil(t, order)

	nfe, ok := errors.IsNotFoundError(err)
	assert.True(t, ok)
	assert.NotNil(t, nfe)
}

func TestTrackedOrderRepository_UpdateStatus(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	repo := NewMySQLTrackedOrderRepository(db)
	id := insertTrackedOrder(t, db, repo, 12)

	tx, err := db.BeginTx(context.Background(), nil)
	require.NoError(t, err)

	locked, err := repo.FindByIDForUpdate(context.Background(), tx, id)
	require.NoError(t, err)
	assert.Equal(t, id, locked.ID)

	require.NoError(t, repo.UpdateStatus(context.Background(), tx, id, domain.OrderStatusShipped))
	require.NoError(t, tx.Commit())

	order, err := repo.FindByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusShipped, order.CurrentStatus)
}

func TestTrackedOrderRepository_UpdateStatus_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	repo := NewMySQLTrackedOrderRepository(db)

	tx, err := db.BeginTx(context.Background(), nil)
	require.NoError(t, err)
	defer tx.Rollback()

	err = repo.UpdateStatus(context.Background(), tx, 9999, domain.OrderStatusShipped)

	_, ok := errors.IsNotFoundError(err)
	assert.True(t, ok)
}

func TestTrackedOrderRepository_UpdateEstimatedDeliveryDate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	repo := NewMySQLTrackedOrderRepository(db)
	id := insertTrackedOrder(t, db, repo, 13)

	tx, err := db.BeginTx(context.Background(), nil)
	require.NoError(t, err)
	require.NoError(t, repo.UpdateEstimatedDeliveryDate(context.Background(), tx, id, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)))
	require.NoError(t, tx.Commit())

	order, err := repo.FindByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "2024-02-01", order.EstimatedDeliveryDate.Format("2006-01-02"))
	assert.Equal(t, domain.OrderStatusProcessing, order.CurrentStatus)
}

func TestTrackedOrderRepository_Delete_CascadesCheckpoints(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	repo := NewMySQLTrackedOrderRepository(db)
	checkpoints := NewMySQLCheckpointRepository(db)
	id := insertTrackedOrder(t, db, repo, 14)

	tx, err := db.BeginTx(context.Background(), nil)
	require.NoError(t, err)
	_, err = checkpoints.Insert(context.Background(), tx, domain.OrderCheckpoint{
		TrackedOrderID: id,
		Timestamp:      time.Now().UTC(),
		Description:    "Order received",
		Status:         domain.OrderStatusProcessing,
	})
	require.NoError(t, err)
	require.NoError(t, repo.Delete(context.Background(), tx, id))
	require.NoError(t, tx.Commit())

	_, err = repo.FindByID(context.Background(), id)
	_, ok := errors.IsNotFoundError(err)
	assert.True(t, ok)

	remaining, err := checkpoints.FindAllByTrackedOrderID(context.Background(), id)
	require.NoError(t, err)
	assert.Empty(t, remaining)
}

func TestTrackedOrderRepository_UpdateStatus_SameValue(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	repo := NewMySQLTrackedOrderRepository(db)
	id := insertTrackedOrder(t, db, repo, 15)

	tx, err := db.BeginTx(context.Background(), nil)
	require.NoError(t, err)
	defer tx.Rollback()

	assert.NoError(t, repo.UpdateStatus(context.Background(), tx, id, domain.OrderStatusProcessing))
}

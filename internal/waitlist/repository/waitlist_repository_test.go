package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"palantir/internal/domain"
	"palantir/internal/testutil"
)

func TestNewMySQLWaitlistRepository(t *testing.T) {
	db := &sql.DB{}
	repo := NewMySQLWaitlistRepository(db)

	assert.NotNil(t, repo)
	assert.Equal(t, db, repo.db)
}

func TestWaitlistRepository_OrderedByPosition(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	_, err := db.Exec(`INSERT INTO UserWaitList (userId, productId, positionInQueue) VALUES (30, 5, 3), (10, 5, 1), (20, 5, 2), (99, 6, 1)`)
	require.NoError(t, err)

	repo := NewMySQLWaitlistRepository(db)
	entries, err := repo.GetUsersInWaitlist(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, uint(10), entries[0].UserID)
	assert.Equal(t, uint(20), entries[1].UserID)
	assert.Equal(t, uint(30), entries[2].UserID)
}

func TestNotificationRepository_AddAndFind(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	repo := NewMySQLNotificationRepository(db)
	productID := uint(5)
	at := time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC)

	id, err := repo.AddNotification(context.Background(), domain.Notification{
		RecipientID: 10,
		Category:    domain.NotificationCategoryProductAvailable,
		ProductID:   &productID,
		Content:     "You're FIRST in line! Product restocking on Jan 10.",
		Timestamp:   at,
	})
	require.NoError(t, err)
	assert.NotZero(t, id)

	found, err := repo.FindByRecipient(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, domain.NotificationCategoryProductAvailable, found[0].Category)
	require.NotNil(t, found[0].ProductID)
	assert.Equal(t, productID, *found[0].ProductID)
	assert.Nil(t, found[0].OrderID)
	assert.True(t, found[0].Timestamp.Equal(at))
	assert.False(t, found[0].IsRead)
}

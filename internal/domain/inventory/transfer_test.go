package inventory

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pos/backend/internal/domain/shared"
)

func createTestTransfer(t *testing.T) *StockTransfer {
	t.Helper()
	transfer, err := NewStockTransfer(uuid.New(), uuid.New(), uuid.New(), uuid.New(), 30, "")
	require.NoError(t, err)
	return transfer
}

func TestNewStockTransfer(t *testing.T) {
	productID := uuid.New()
	fromStore := uuid.New()
	toStore := uuid.New()
	requester := uuid.New()

	t.Run("creates pending transfer", func(t *testing.T) {
		transfer, err := NewStockTransfer(productID, fromStore, toStore, requester, 30, "restock branch")

		require.NoError(t, err)
		assert.Equal(t, TransferStatusPending, transfer.Status)
		assert.Equal(t, int64(30), transfer.Quantity)
		assert.Nil(t, transfer.DecidedBy)
		assert.Nil(t, transfer.DecidedAt)

		events := transfer.GetDomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, EventTypeTransferRequested, events[0].EventType())
	})

	t.Run("rejects same source and destination", func(t *testing.T) {
		transfer, err := NewStockTransfer(productID, fromStore, fromStore, requester, 30, "")

		require.Error(t, err)
		assert.Nil(t, transfer)
		assert.Contains(t, err.Error(), "must differ")
	})

	t.Run("rejects non-positive quantity", func(t *testing.T) {
		_, err := NewStockTransfer(productID, fromStore, toStore, requester, 0, "")
		assert.Error(t, err)

		_, err = NewStockTransfer(productID, fromStore, toStore, requester, -5, "")
		assert.Error(t, err)
	})
}

func TestStockTransfer_Approve(t *testing.T) {
	t.Run("approves pending transfer", func(t *testing.T) {
		transfer := createTestTransfer(t)
		approver := uuid.New()

		err := transfer.Approve(approver)

		require.NoError(t, err)
		assert.Equal(t, TransferStatusApproved, transfer.Status)
		require.NotNil(t, transfer.DecidedBy)
		assert.Equal(t, approver, *transfer.DecidedBy)
		assert.NotNil(t, transfer.DecidedAt)
	})

	t.Run("fails when already approved", func(t *testing.T) {
		transfer := createTestTransfer(t)
		require.NoError(t, transfer.Approve(uuid.New()))

		err := transfer.Approve(uuid.New())

		assert.ErrorIs(t, err, shared.ErrTransferNotPending)
	})

	t.Run("fails when already rejected", func(t *testing.T) {
		transfer := createTestTransfer(t)
		require.NoError(t, transfer.Reject(uuid.New(), "no capacity"))

		err := transfer.Approve(uuid.New())

		assert.ErrorIs(t, err, shared.ErrTransferNotPending)
	})
}

func TestStockTransfer_Reject(t *testing.T) {
	t.Run("rejects pending transfer with reason", func(t *testing.T) {
		transfer := createTestTransfer(t)
		decider := uuid.New()

		err := transfer.Reject(decider, "no capacity")

		require.NoError(t, err)
		assert.Equal(t, TransferStatusRejected, transfer.Status)
		assert.Equal(t, "no capacity", transfer.Notes)
		require.NotNil(t, transfer.DecidedBy)
		assert.Equal(t, decider, *transfer.DecidedBy)
	})

	t.Run("fails when already decided", func(t *testing.T) {
		transfer := createTestTransfer(t)
		require.NoError(t, transfer.Reject(uuid.New(), ""))

		err := transfer.Reject(uuid.New(), "")

		assert.ErrorIs(t, err, shared.ErrTransferNotPending)
	})
}

func TestTransferStatus_IsTerminal(t *testing.T) {
	assert.False(t, TransferStatusPending.IsTerminal())
	assert.True(t, TransferStatusApproved.IsTerminal())
	assert.True(t, TransferStatusRejected.IsTerminal())
}

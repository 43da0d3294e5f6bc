package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/pos/backend/internal/domain/sales"
	"github.com/pos/backend/internal/domain/shared"
)

func transactionColumns() []string {
	return []string{
		"id", "created_at", "updated_at", "version",
		"transaction_number", "type", "store_id", "cashier_id", "original_transaction_id",
		"subtotal", "vat_rate", "vat_amount", "total",
		"commission_rate", "commission_amount",
		"payment_method", "customer_name", "customer_phone",
	}
}

func TestGormTransactionRepository_FindByNumber(t *testing.T) {
	t.Run("finds transaction with items", func(t *testing.T) {
		gormDB, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormTransactionRepository(gormDB)

		txnID := uuid.New()
		storeID := uuid.New()
		cashierID := uuid.New()
		now := time.Now()

		rows := sqlmock.NewRows(transactionColumns()).AddRow(
			txnID, now, now, 1,
			"TXN-20260115-A1B2C3D4", "sale", storeID, cashierID, nil,
			decimal.RequireFromString("1000.00"), decimal.RequireFromString("16.00"),
			decimal.RequireFromString("160.00"), decimal.RequireFromString("1160.00"),
			decimal.RequireFromString("5.00"), decimal.RequireFromString("58.00"),
			"cash", "", "",
		)

		mock.ExpectQuery(`SELECT \* FROM "transactions" WHERE transaction_number = \$1`).
			WithArgs("TXN-20260115-A1B2C3D4", 1).
			WillReturnRows(rows)

		itemRows := sqlmock.NewRows([]string{
			"id", "transaction_id", "product_id", "product_name",
			"quantity", "unit_price", "line_total",
		}).AddRow(
			uuid.New(), txnID, uuid.New(), "Engine Oil 5L",
			int64(2), decimal.RequireFromString("500.00"), decimal.RequireFromString("1000.00"),
		)
		mock.ExpectQuery(`SELECT \* FROM "transaction_items" WHERE "transaction_items"."transaction_id" = \$1`).
			WithArgs(txnID).
			WillReturnRows(itemRows)

		txn, err := repo.FindByNumber(context.Background(), "TXN-20260115-A1B2C3D4")

		assert.NoError(t, err)
		require.NotNil(t, txn)
		assert.Equal(t, "TXN-20260115-A1B2C3D4", txn.TransactionNumber)
		assert.True(t, txn.Total.Equal(decimal.RequireFromString("1160.00")))
		require.Len(t, txn.Items, 1)
		assert.Equal(t, int64(2), txn.Items[0].Quantity)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns ErrNotFound for unknown number", func(t *testing.T) {
		gormDB, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormTransactionRepository(gormDB)

		mock.ExpectQuery(`SELECT \* FROM "transactions" WHERE transaction_number = \$1`).
			WithArgs("TXN-20260115-FFFFFFFF", 1).
			WillReturnError(gorm.ErrRecordNotFound)

		txn, err := repo.FindByNumber(context.Background(), "TXN-20260115-FFFFFFFF")

		assert.Nil(t, txn)
		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormTransactionRepository_FindReturnsForSale(t *testing.T) {
	t.Run("returns empty slice when sale has no returns", func(t *testing.T) {
		gormDB, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormTransactionRepository(gormDB)

		originalID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "transactions" WHERE original_transaction_id = \$1 AND type = \$2`).
			WithArgs(originalID, string(sales.TransactionTypeReturn)).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		txns, err := repo.FindReturnsForSale(context.Background(), originalID)

		require.NoError(t, err)
		assert.Empty(t, txns)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormTransactionRepository_Save(t *testing.T) {
	t.Run("translates duplicate number to ErrDuplicateTransactionID", func(t *testing.T) {
		gormDB, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormTransactionRepository(gormDB)

		txn, err := sales.NewSale(
			uuid.New(), uuid.New(),
			[]sales.SaleLine{{
				ProductID:   uuid.New(),
				ProductName: "Brake Pads",
				Quantity:    1,
				UnitPrice:   decimal.RequireFromString("500.00"),
			}},
			decimal.RequireFromString("16.00"),
			decimal.RequireFromString("5.00"),
			sales.PaymentMethodCash,
		)
		require.NoError(t, err)

		mock.ExpectExec(`UPDATE "transactions" SET`).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(`INSERT INTO "transactions"`).
			WillReturnError(gorm.ErrDuplicatedKey)

		err = repo.Save(context.Background(), txn)

		assert.ErrorIs(t, err, shared.ErrDuplicateTransactionID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormTransactionRepository_DailySummary(t *testing.T) {
	t.Run("aggregates one day for one store", func(t *testing.T) {
		gormDB, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormTransactionRepository(gormDB)

		storeID := uuid.New()
		day := time.Date(2026, 1, 15, 13, 45, 0, 0, time.UTC)

		rows := sqlmock.NewRows([]string{
			"sale_count", "return_count", "gross_total", "vat_total", "commission_total",
		}).AddRow(
			int64(4), int64(1),
			decimal.RequireFromString("3480.00"),
			decimal.RequireFromString("480.00"),
			decimal.RequireFromString("145.00"),
		)

		mock.ExpectQuery(`SELECT COUNT\(\*\) FILTER`).
			WillReturnRows(rows)

		summary, err := repo.DailySummary(context.Background(), storeID, day)

		assert.NoError(t, err)
		require.NotNil(t, summary)
		assert.Equal(t, int64(4), summary.SaleCount)
		assert.Equal(t, int64(1), summary.ReturnCount)
		assert.True(t, summary.GrossTotal.Equal(decimal.RequireFromString("3480.00")))
		assert.Equal(t, time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC), summary.Date)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

package sales

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestSale(t *testing.T, lines []SaleLine) *Transaction {
	t.Helper()
	txn, err := NewSale(uuid.New(), uuid.New(), lines,
		decimal.NewFromFloat(16.00), decimal.NewFromFloat(5.00), PaymentMethodCash)
	require.NoError(t, err)
	return txn
}

func TestNewSale(t *testing.T) {
	storeID := uuid.New()
	cashierID := uuid.New()

	t.Run("computes VAT and commission", func(t *testing.T) {
		lines := []SaleLine{
			{ProductID: uuid.New(), ProductName: "Laptop", Quantity: 2, UnitPrice: decimal.NewFromFloat(500.00)},
		}

		txn, err := NewSale(storeID, cashierID, lines,
			decimal.NewFromFloat(16.00), decimal.NewFromFloat(5.00), PaymentMethodCash)

		require.NoError(t, err)
		assert.Equal(t, TransactionTypeSale, txn.Type)
		assert.True(t, txn.Subtotal.Equal(decimal.NewFromFloat(1000.00)), "subtotal: %s", txn.Subtotal)
		assert.True(t, txn.VATAmount.Equal(decimal.NewFromFloat(160.00)), "vat: %s", txn.VATAmount)
		assert.True(t, txn.Total.Equal(decimal.NewFromFloat(1160.00)), "total: %s", txn.Total)
		assert.True(t, txn.CommissionAmount.Equal(decimal.NewFromFloat(58.00)), "commission: %s", txn.CommissionAmount)
	})

	t.Run("sums multiple lines before applying VAT", func(t *testing.T) {
		lines := []SaleLine{
			{ProductID: uuid.New(), ProductName: "Mouse", Quantity: 3, UnitPrice: decimal.NewFromFloat(19.99)},
			{ProductID: uuid.New(), ProductName: "Keyboard", Quantity: 1, UnitPrice: decimal.NewFromFloat(45.50)},
		}

		txn := createTestSale(t, lines)

		assert.True(t, txn.Subtotal.Equal(decimal.NewFromFloat(105.47)), "subtotal: %s", txn.Subtotal)
		assert.True(t, txn.Total.Equal(txn.Subtotal.Add(txn.VATAmount)))
		require.Len(t, txn.Items, 2)
		assert.True(t, txn.Items[0].LineTotal.Equal(decimal.NewFromFloat(59.97)))
	})

	t.Run("total always equals subtotal plus VAT", func(t *testing.T) {
		lines := []SaleLine{
			{ProductID: uuid.New(), ProductName: "Cable", Quantity: 7, UnitPrice: decimal.NewFromFloat(3.33)},
		}

		txn := createTestSale(t, lines)

		assert.True(t, txn.Total.Equal(txn.Subtotal.Add(txn.VATAmount)))
	})

	t.Run("raises sale completed event", func(t *testing.T) {
		txn := createTestSale(t, []SaleLine{
			{ProductID: uuid.New(), ProductName: "Laptop", Quantity: 1, UnitPrice: decimal.NewFromFloat(100)},
		})

		events := txn.GetDomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, EventTypeSaleCompleted, events[0].EventType())
	})

	t.Run("rejects empty sale", func(t *testing.T) {
		_, err := NewSale(storeID, cashierID, nil,
			decimal.NewFromFloat(16.00), decimal.NewFromFloat(5.00), PaymentMethodCash)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "at least one item")
	})

	t.Run("rejects zero quantity line", func(t *testing.T) {
		lines := []SaleLine{
			{ProductID: uuid.New(), ProductName: "Laptop", Quantity: 0, UnitPrice: decimal.NewFromFloat(100)},
		}

		_, err := NewSale(storeID, cashierID, lines,
			decimal.NewFromFloat(16.00), decimal.NewFromFloat(5.00), PaymentMethodCash)

		assert.Error(t, err)
	})

	t.Run("rejects unknown payment method", func(t *testing.T) {
		lines := []SaleLine{
			{ProductID: uuid.New(), ProductName: "Laptop", Quantity: 1, UnitPrice: decimal.NewFromFloat(100)},
		}

		_, err := NewSale(storeID, cashierID, lines,
			decimal.NewFromFloat(16.00), decimal.NewFromFloat(5.00), PaymentMethod("cheque"))

		assert.Error(t, err)
	})
}

func fullReturnLines(txn *Transaction) []ReturnLine {
	lines := make([]ReturnLine, 0, len(txn.Items))
	for _, item := range txn.Items {
		lines = append(lines, ReturnLine{ProductID: item.ProductID, Quantity: item.Quantity})
	}
	return lines
}

func TestNewReturn(t *testing.T) {
	t.Run("negates amounts and zeroes commission", func(t *testing.T) {
		original := createTestSale(t, []SaleLine{
			{ProductID: uuid.New(), ProductName: "Laptop", Quantity: 2, UnitPrice: decimal.NewFromFloat(500.00)},
		})
		cashierID := uuid.New()

		ret, err := NewReturn(original, cashierID, fullReturnLines(original), "damaged on arrival")

		require.NoError(t, err)
		assert.Equal(t, TransactionTypeReturn, ret.Type)
		assert.True(t, ret.Subtotal.Equal(decimal.NewFromFloat(-1000.00)))
		assert.True(t, ret.VATAmount.Equal(decimal.NewFromFloat(-160.00)))
		assert.True(t, ret.Total.Equal(decimal.NewFromFloat(-1160.00)))
		assert.True(t, ret.CommissionAmount.IsZero())
		assert.Equal(t, "damaged on arrival", ret.Reason)
		require.NotNil(t, ret.OriginalTransactionID)
		assert.Equal(t, original.ID, *ret.OriginalTransactionID)

		require.Len(t, ret.Items, 1)
		assert.Equal(t, int64(2), ret.Items[0].Quantity)
		assert.True(t, ret.Items[0].LineTotal.Equal(decimal.NewFromFloat(1000.00)))
	})

	t.Run("prices a partial return from the original lines", func(t *testing.T) {
		laptopID := uuid.New()
		mouseID := uuid.New()
		original := createTestSale(t, []SaleLine{
			{ProductID: laptopID, ProductName: "Laptop", Quantity: 3, UnitPrice: decimal.NewFromFloat(500.00)},
			{ProductID: mouseID, ProductName: "Mouse", Quantity: 2, UnitPrice: decimal.NewFromFloat(19.99)},
		})

		ret, err := NewReturn(original, uuid.New(), []ReturnLine{
			{ProductID: laptopID, Quantity: 1},
		}, "")

		require.NoError(t, err)
		require.Len(t, ret.Items, 1)
		assert.Equal(t, laptopID, ret.Items[0].ProductID)
		assert.Equal(t, int64(1), ret.Items[0].Quantity)
		assert.True(t, ret.Subtotal.Equal(decimal.NewFromFloat(-500.00)), "subtotal: %s", ret.Subtotal)
		assert.True(t, ret.VATAmount.Equal(decimal.NewFromFloat(-80.00)), "vat: %s", ret.VATAmount)
		assert.True(t, ret.Total.Equal(decimal.NewFromFloat(-580.00)), "total: %s", ret.Total)
	})

	t.Run("preserves the identity invariant on negated amounts", func(t *testing.T) {
		original := createTestSale(t, []SaleLine{
			{ProductID: uuid.New(), ProductName: "Cable", Quantity: 7, UnitPrice: decimal.NewFromFloat(3.33)},
		})

		ret, err := NewReturn(original, uuid.New(), fullReturnLines(original), "")

		require.NoError(t, err)
		assert.True(t, ret.Total.Equal(ret.Subtotal.Add(ret.VATAmount)))
	})

	t.Run("rejects quantity above the original line", func(t *testing.T) {
		productID := uuid.New()
		original := createTestSale(t, []SaleLine{
			{ProductID: productID, ProductName: "Laptop", Quantity: 2, UnitPrice: decimal.NewFromFloat(500.00)},
		})

		_, err := NewReturn(original, uuid.New(), []ReturnLine{
			{ProductID: productID, Quantity: 3},
		}, "")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "the sale only had 2")
	})

	t.Run("rejects product not in the original sale", func(t *testing.T) {
		original := createTestSale(t, []SaleLine{
			{ProductID: uuid.New(), ProductName: "Laptop", Quantity: 1, UnitPrice: decimal.NewFromFloat(100)},
		})

		_, err := NewReturn(original, uuid.New(), []ReturnLine{
			{ProductID: uuid.New(), Quantity: 1},
		}, "")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "not part of the original sale")
	})

	t.Run("rejects empty line list", func(t *testing.T) {
		original := createTestSale(t, []SaleLine{
			{ProductID: uuid.New(), ProductName: "Laptop", Quantity: 1, UnitPrice: decimal.NewFromFloat(100)},
		})

		_, err := NewReturn(original, uuid.New(), nil, "")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "at least one item")
	})

	t.Run("rejects returning a return", func(t *testing.T) {
		original := createTestSale(t, []SaleLine{
			{ProductID: uuid.New(), ProductName: "Laptop", Quantity: 1, UnitPrice: decimal.NewFromFloat(100)},
		})
		ret, err := NewReturn(original, uuid.New(), fullReturnLines(original), "")
		require.NoError(t, err)

		_, err = NewReturn(ret, uuid.New(), fullReturnLines(ret), "")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "Only sale transactions")
	})
}

func TestGenerateTransactionNumber(t *testing.T) {
	number := GenerateTransactionNumber()

	assert.True(t, strings.HasPrefix(number, "TXN-"+time.Now().Format("20060102")+"-"), number)
	assert.Len(t, number, len("TXN-20060102-")+8)

	suffix := number[len(number)-8:]
	assert.Equal(t, strings.ToUpper(suffix), suffix)

	// collisions across a small sample would indicate a broken generator
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		n := GenerateTransactionNumber()
		assert.False(t, seen[n])
		seen[n] = true
	}
}

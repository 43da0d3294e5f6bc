package notification

import (
	"context"

	"github.com/google/uuid"
)

// LowStockAlert is the payload for a low-stock notification
type LowStockAlert struct {
	ProductID    uuid.UUID
	ProductName  string
	StoreID      uuid.UUID
	StoreName    string
	Quantity     int64
	ReorderLevel int64
}

// TransferAlert is the payload for a transfer-requested notification
type TransferAlert struct {
	TransferID    uuid.UUID
	ProductName   string
	FromStoreName string
	ToStoreName   string
	Quantity      int64
	RequestedBy   string
}

// Notifier delivers alerts to managers. Implementations must not block the
// caller's transaction; delivery is best effort.
type Notifier interface {
	NotifyLowStock(ctx context.Context, recipients []string, alert LowStockAlert) error
	NotifyTransferRequested(ctx context.Context, recipients []string, alert TransferAlert) error
}

package repositories_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/duka/app/models"
	"github.com/shashiranjanraj/duka/pkg/storage"
)

func tempDisk(t *testing.T) *storage.LocalDisk {
	t.Helper()
	disk, err := storage.NewLocal(t.TempDir(), "http://localhost/storage")
	require.NoError(t, err)
	return disk
}

func sampleOrder(n int) models.Order {
	return models.Order{
		ID:           fmt.Sprintf("ORD-20260101120000-%08d", n),
		CustomerName: "Achieng",
		Email:        "achieng@example.com",
		Phone:        "0712345678",
		Address:      "Kisumu",
		Items: []models.CartLine{
			{ProductID: "1", Name: "Sneaker", UnitPrice: decimal.RequireFromString("19.99"), Quantity: 3},
			{ProductID: "2", Name: "Bag", UnitPrice: decimal.RequireFromString("1500"), Quantity: 1},
		},
		Total:     decimal.RequireFromString("1559.97"),
		CreatedAt: time.Date(2026, 1, 1, 12, 0, n, 0, time.UTC),
	}
}

var bg = context.Background()

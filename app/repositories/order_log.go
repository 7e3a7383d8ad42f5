package repositories

import (
	"context"
	"fmt"

	"github.com/shashiranjanraj/duka/app/models"
	"github.com/shashiranjanraj/duka/config"
	"github.com/shashiranjanraj/duka/pkg/database"
	"github.com/shashiranjanraj/duka/pkg/storage"
)

// OrderLog is the durable, append-only record of placed orders.
// Append must be safe for concurrent use and must never drop or overwrite
// another caller's order.
type OrderLog interface {
	Append(ctx context.Context, order models.Order) error
	All(ctx context.Context) ([]models.Order, error)
	Driver() string
	Close(ctx context.Context) error
}

// ConnectOrderLog opens the driver selected by ORDER_LOG_DRIVER. The file
// driver writes to disk.
func ConnectOrderLog(ctx context.Context, disk storage.Disk) (OrderLog, error) {
	switch config.OrderLogDriver() {
	case "sql":
		db, err := database.Connect()
		if err != nil {
			return nil, err
		}
		return NewSQLOrderLog(db)
	case "mongo":
		return NewMongoOrderLog(ctx, config.MongoURI(), config.MongoDatabase())
	case "file":
		return NewFileOrderLog(disk, config.OrderLogPath()), nil
	default:
		return nil, fmt.Errorf("order log: unknown driver %q", config.OrderLogDriver())
	}
}

package migrations

import (
	"gorm.io/gorm"

	"github.com/shashiranjanraj/duka/app/repositories"
	"github.com/shashiranjanraj/duka/pkg/migration"
)

func init() {
	migration.Register("20260101000000_create_orders_table", &CreateOrdersTable{})
	migration.Register("20260101000001_create_order_items_table", &CreateOrderItemsTable{})
}

type CreateOrdersTable struct{}

func (m *CreateOrdersTable) Up(db *gorm.DB) error {
	return db.AutoMigrate(&repositories.OrderRecord{})
}

func (m *CreateOrdersTable) Down(db *gorm.DB) error {
	return db.Migrator().DropTable(&repositories.OrderRecord{})
}

type CreateOrderItemsTable struct{}

func (m *CreateOrderItemsTable) Up(db *gorm.DB) error {
	return db.AutoMigrate(&repositories.OrderItemRecord{})
}

func (m *CreateOrderItemsTable) Down(db *gorm.DB) error {
	return db.Migrator().DropTable(&repositories.OrderItemRecord{})
}

package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/shashiranjanraj/duka/app/models"
	"github.com/shashiranjanraj/duka/pkg/metrics"
)

// OrderRecord is the orders table row. Money columns hold the decimal's
// string form so no driver rounds them.
type OrderRecord struct {
	ID           string            `gorm:"primaryKey;size:64"`
	CustomerName string            `gorm:"size:255;not null"`
	Email        string            `gorm:"size:255"`
	Phone        string            `gorm:"size:32;not null"`
	MpesaPhone   string            `gorm:"size:32"`
	Address      string            `gorm:"type:text"`
	Notes        string            `gorm:"type:text"`
	Total        string            `gorm:"size:64;not null"`
	CreatedAt    time.Time         `gorm:"index"`
	Items        []OrderItemRecord `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

func (OrderRecord) TableName() string { return "orders" }

// OrderItemRecord is one snapshotted cart line of an order.
type OrderItemRecord struct {
	ID        uint   `gorm:"primaryKey;autoIncrement"`
	OrderID   string `gorm:"size:64;index;not null"`
	Position  int    `gorm:"not null"`
	ProductID string `gorm:"size:64;not null"`
	Name      string `gorm:"size:255"`
	UnitPrice string `gorm:"size:64;not null"`
	Image     string `gorm:"type:text"`
	Category  string `gorm:"size:255"`
	Quantity  int    `gorm:"not null"`
}

func (OrderItemRecord) TableName() string { return "order_items" }

// SQLOrderLog stores orders through gorm. Each Append is one INSERT
// transaction, so concurrent appends never overwrite each other.
type SQLOrderLog struct {
	db *gorm.DB
}

// NewSQLOrderLog expects the orders and order_items tables to exist; run
// the migrations first.
func NewSQLOrderLog(db *gorm.DB) (*SQLOrderLog, error) {
	if db == nil {
		return nil, fmt.Errorf("order log: nil database")
	}
	return &SQLOrderLog{db: db}, nil
}

func (l *SQLOrderLog) Driver() string { return "sql" }

func (l *SQLOrderLog) Append(ctx context.Context, order models.Order) error {
	defer metrics.ObserveOrderLog(l.Driver(), "append", time.Now())

	rec := toOrderRecord(order)
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&rec).Error
	})
	if err != nil {
		return fmt.Errorf("order log: insert %s: %w", order.ID, err)
	}
	return nil
}

// All returns orders oldest first.
func (l *SQLOrderLog) All(ctx context.Context) ([]models.Order, error) {
	defer metrics.ObserveOrderLog(l.Driver(), "list", time.Now())

	var recs []OrderRecord
	err := l.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position asc") }).
		Order("created_at asc").Order("id asc").
		Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("order log: list: %w", err)
	}

	orders := make([]models.Order, 0, len(recs))
	for _, rec := range recs {
		o, err := rec.toModel()
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, nil
}

// Close is a no-op; the connection belongs to pkg/database.
func (l *SQLOrderLog) Close(context.Context) error { return nil }

func toOrderRecord(o models.Order) OrderRecord {
	rec := OrderRecord{
		ID:           o.ID,
		CustomerName: o.CustomerName,
		Email:        o.Email,
		Phone:        o.Phone,
		MpesaPhone:   o.MpesaPhone,
		Address:      o.Address,
		Notes:        o.Notes,
		Total:        o.Total.String(),
		CreatedAt:    o.CreatedAt,
		Items:        make([]OrderItemRecord, 0, len(o.Items)),
	}
	for i, line := range o.Items {
		rec.Items = append(rec.Items, OrderItemRecord{
			OrderID:   o.ID,
			Position:  i,
			ProductID: line.ProductID,
			Name:      line.Name,
			UnitPrice: line.UnitPrice.String(),
			Image:     line.Image,
			Category:  line.Category,
			Quantity:  line.Quantity,
		})
	}
	return rec
}

func (rec OrderRecord) toModel() (models.Order, error) {
	total, err := decimal.NewFromString(rec.Total)
	if err != nil {
		return models.Order{}, fmt.Errorf("order log: order %s total: %w", rec.ID, err)
	}

	o := models.Order{
		ID:           rec.ID,
		CustomerName: rec.CustomerName,
		Email:        rec.Email,
		Phone:        rec.Phone,
		MpesaPhone:   rec.MpesaPhone,
		Address:      rec.Address,
		Notes:        rec.Notes,
		Total:        total,
		CreatedAt:    rec.CreatedAt,
		Items:        make([]models.CartLine, 0, len(rec.Items)),
	}
	for _, it := range rec.Items {
		price, err := decimal.NewFromString(it.UnitPrice)
		if err != nil {
			return models.Order{}, fmt.Errorf("order log: order %s item %s price: %w", rec.ID, it.ProductID, err)
		}
		o.Items = append(o.Items, models.CartLine{
			ProductID: it.ProductID,
			Name:      it.Name,
			UnitPrice: price,
			Image:     it.Image,
			Category:  it.Category,
			Quantity:  it.Quantity,
		})
	}
	return o, nil
}

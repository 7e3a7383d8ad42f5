package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/shashiranjanraj/duka/app/models"
	"github.com/shashiranjanraj/duka/pkg/metrics"
)

const ordersCollection = "orders"

type orderDocument struct {
	ID           string               `bson:"_id"`
	CustomerName string               `bson:"customer_name"`
	Email        string               `bson:"email"`
	Phone        string               `bson:"phone"`
	MpesaPhone   string               `bson:"mpesa_phone,omitempty"`
	Address      string               `bson:"address"`
	Notes        string               `bson:"notes,omitempty"`
	Items        []orderItemDocument  `bson:"items"`
	Total        primitive.Decimal128 `bson:"total"`
	CreatedAt    time.Time            `bson:"created_at"`
}

type orderItemDocument struct {
	ProductID string               `bson:"id"`
	Name      string               `bson:"name"`
	UnitPrice primitive.Decimal128 `bson:"price"`
	Image     string               `bson:"image,omitempty"`
	Category  string               `bson:"category,omitempty"`
	Quantity  int                  `bson:"quantity"`
}

// MongoOrderLog writes one document per order with InsertOne, which is
// atomic per document.
type MongoOrderLog struct {
	client *mongo.Client
	col    *mongo.Collection
}

// NewMongoOrderLog connects to uri and pings the server before returning.
// The caller must eventually call Close.
func NewMongoOrderLog(ctx context.Context, uri, database string) (*MongoOrderLog, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	opts := options.Client().ApplyURI(uri).
		SetConnectTimeout(5 * time.Second).
		SetServerSelectionTimeout(5 * time.Second).
		SetMaxPoolSize(10)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("order log: mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("order log: mongo ping: %w", err)
	}

	col := client.Database(database).Collection(ordersCollection)
	_, _ = col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}},
	})

	return &MongoOrderLog{client: client, col: col}, nil
}

func (l *MongoOrderLog) Driver() string { return "mongo" }

func (l *MongoOrderLog) Append(ctx context.Context, order models.Order) error {
	defer metrics.ObserveOrderLog(l.Driver(), "append", time.Now())

	doc, err := toOrderDocument(order)
	if err != nil {
		return err
	}
	if _, err := l.col.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("order log: insert %s: %w", order.ID, err)
	}
	return nil
}

// All returns orders oldest first.
func (l *MongoOrderLog) All(ctx context.Context) ([]models.Order, error) {
	defer metrics.ObserveOrderLog(l.Driver(), "list", time.Now())

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := l.col.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("order log: find: %w", err)
	}

	var docs []orderDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("order log: decode: %w", err)
	}

	orders := make([]models.Order, 0, len(docs))
	for _, d := range docs {
		o, err := d.toModel()
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, nil
}

func (l *MongoOrderLog) Close(ctx context.Context) error {
	return l.client.Disconnect(ctx)
}

func toDecimal128(d decimal.Decimal) (primitive.Decimal128, error) {
	v, err := primitive.ParseDecimal128(d.String())
	if err != nil {
		return primitive.Decimal128{}, fmt.Errorf("order log: decimal %s: %w", d, err)
	}
	return v, nil
}

func fromDecimal128(v primitive.Decimal128) (decimal.Decimal, error) {
	return decimal.NewFromString(v.String())
}

func toOrderDocument(o models.Order) (orderDocument, error) {
	total, err := toDecimal128(o.Total)
	if err != nil {
		return orderDocument{}, err
	}

	doc := orderDocument{
		ID:           o.ID,
		CustomerName: o.CustomerName,
		Email:        o.Email,
		Phone:        o.Phone,
		MpesaPhone:   o.MpesaPhone,
		Address:      o.Address,
		Notes:        o.Notes,
		Total:        total,
		CreatedAt:    o.CreatedAt.UTC(),
		Items:        make([]orderItemDocument, 0, len(o.Items)),
	}
	for _, line := range o.Items {
		price, err := toDecimal128(line.UnitPrice)
		if err != nil {
			return orderDocument{}, err
		}
		doc.Items = append(doc.Items, orderItemDocument{
			ProductID: line.ProductID,
			Name:      line.Name,
			UnitPrice: price,
			Image:     line.Image,
			Category:  line.Category,
			Quantity:  line.Quantity,
		})
	}
	return doc, nil
}

func (d orderDocument) toModel() (models.Order, error) {
	total, err := fromDecimal128(d.Total)
	if err != nil {
		return models.Order{}, fmt.Errorf("order log: order %s total: %w", d.ID, err)
	}

	o := models.Order{
		ID:           d.ID,
		CustomerName: d.CustomerName,
		Email:        d.Email,
		Phone:        d.Phone,
		MpesaPhone:   d.MpesaPhone,
		Address:      d.Address,
		Notes:        d.Notes,
		Total:        total,
		CreatedAt:    d.CreatedAt,
		Items:        make([]models.CartLine, 0, len(d.Items)),
	}
	for _, it := range d.Items {
		price, err := fromDecimal128(it.UnitPrice)
		if err != nil {
			return models.Order{}, fmt.Errorf("order log: order %s item %s price: %w", d.ID, it.ProductID, err)
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

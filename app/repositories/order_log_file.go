package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shashiranjanraj/duka/app/models"
	"github.com/shashiranjanraj/duka/pkg/metrics"
	"github.com/shashiranjanraj/duka/pkg/storage"
	"github.com/shashiranjanraj/duka/pkg/workerpool"
)

// FileOrderLog keeps every order in one JSON array document on a storage
// disk. All reads and writes of the document run on a single worker, so
// concurrent checkouts never lose each other's appends.
type FileOrderLog struct {
	disk   storage.Disk
	path   string
	writer *workerpool.Pool
}

func NewFileOrderLog(disk storage.Disk, path string) *FileOrderLog {
	return &FileOrderLog{disk: disk, path: path, writer: workerpool.New(1)}
}

func (l *FileOrderLog) Driver() string { return "file" }

// Append reads the array, adds order at the end and writes it back. A
// missing or blank document starts a fresh array. A corrupt document is
// never rewritten: Append returns ErrCorruptLog and leaves it as found.
func (l *FileOrderLog) Append(ctx context.Context, order models.Order) error {
	defer metrics.ObserveOrderLog(l.Driver(), "append", time.Now())
	return l.writer.Do(ctx, func() error {
		orders, err := l.read(ctx)
		if err != nil {
			return err
		}
		orders = append(orders, order)

		raw, err := json.MarshalIndent(orders, "", "  ")
		if err != nil {
			return fmt.Errorf("order log: encode: %w", err)
		}
		if err := l.disk.Put(ctx, l.path, raw); err != nil {
			return fmt.Errorf("order log: write: %w", err)
		}
		return nil
	})
}

// All returns orders oldest first.
func (l *FileOrderLog) All(ctx context.Context) ([]models.Order, error) {
	defer metrics.ObserveOrderLog(l.Driver(), "list", time.Now())
	var orders []models.Order
	err := l.writer.Do(ctx, func() error {
		var err error
		orders, err = l.read(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return orders, nil
}

func (l *FileOrderLog) Close(context.Context) error {
	l.writer.Shutdown()
	return nil
}

func (l *FileOrderLog) read(ctx context.Context) ([]models.Order, error) {
	raw, err := l.disk.Get(ctx, l.path)
	if errors.Is(err, storage.ErrNotExist) {
		return []models.Order{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("order log: read: %w", err)
	}
	if strings.TrimSpace(string(raw)) == "" {
		return []models.Order{}, nil
	}

	var orders []models.Order
	if err := json.Unmarshal(raw, &orders); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorruptLog, l.path, err)
	}
	return orders, nil
}

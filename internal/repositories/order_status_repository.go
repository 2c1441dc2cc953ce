package repositories

import (
	"context"
	"strings"

	"pvb-admin/internal/entities"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type OrderStatusRepositoryInterface interface {
	List(ctx context.Context) ([]entities.OrderStatus, error)
	// FindOrCreateInTx returns the status called name, inserting it when missing.
	FindOrCreateInTx(ctx context.Context, tx pgx.Tx, name string) (*entities.OrderStatus, error)
}

type OrderStatusRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewOrderStatusRepository(storage *pgxpool.Pool, logger *zap.Logger) OrderStatusRepositoryInterface {
	return &OrderStatusRepository{storage: storage, logger: logger}
}

func (r *OrderStatusRepository) List(ctx context.Context) ([]entities.OrderStatus, error) {
	rows, err := r.storage.Query(ctx, `SELECT id, name FROM order_statuses ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	statuses := make([]entities.OrderStatus, 0)
	for rows.Next() {
		var s entities.OrderStatus
		if err := rows.Scan(&s.ID, &s.Name); err != nil {
			return nil, err
		}
		statuses = append(statuses, s)
	}
	return statuses, rows.Err()
}

func (r *OrderStatusRepository) FindOrCreateInTx(ctx context.Context, tx pgx.Tx, name string) (*entities.OrderStatus, error) {
	var s entities.OrderStatus
	err := tx.QueryRow(ctx,
		`INSERT INTO order_statuses (name) VALUES ($1)
		 ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		 RETURNING id, name`,
		strings.TrimSpace(name),
	).Scan(&s.ID, &s.Name)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

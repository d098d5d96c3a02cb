package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/breno/product-api/internal/core/domain"
	"github.com/breno/product-api/internal/core/ports"
)

var _ ports.ProductRepository = (*ProductRepository)(nil)

// ProductRepository stores products in tb_products.
type ProductRepository struct {
	db *sql.DB
}

func NewProductRepository(db *sql.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

func (r *ProductRepository) Create(ctx context.Context, p *domain.Product) (*domain.Product, error) {
	const op = "postgres.ProductRepository.Create"

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO tb_products (id_product, name, value) VALUES ($1, $2, $3)`,
		p.ID, p.Name, p.Value,
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	created := *p
	return &created, nil
}

func (r *ProductRepository) FindByID(ctx context.Context, id string) (*domain.Product, error) {
	const op = "postgres.ProductRepository.FindByID"

	var p domain.Product
	err := r.db.QueryRowContext(ctx,
		`SELECT id_product, name, value FROM tb_products WHERE id_product = $1`, id,
	).Scan(&p.ID, &p.Name, &p.Value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, domain.ErrProductNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &p, nil
}

func (r *ProductRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	const op = "postgres.ProductRepository.ExistsByName"

	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM tb_products WHERE name = $1)`, name,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	return exists, nil
}

func (r *ProductRepository) List(ctx context.Context) ([]*domain.Product, error) {
	const op = "postgres.ProductRepository.List"

	rows, err := r.db.QueryContext(ctx,
		`SELECT id_product, name, value FROM tb_products ORDER BY name, id_product`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var products []*domain.Product
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Value); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		products = append(products, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return products, nil
}

func (r *ProductRepository) Update(ctx context.Context, p *domain.Product) (*domain.Product, error) {
	const op = "postgres.ProductRepository.Update"

	res, err := r.db.ExecContext(ctx,
		`UPDATE tb_products SET name = $2, value = $3 WHERE id_product = $1`,
		p.ID, p.Name, p.Value,
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := expectOneRow(res); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	updated := *p
	return &updated, nil
}

func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	const op = "postgres.ProductRepository.Delete"

	res, err := r.db.ExecContext(ctx, `DELETE FROM tb_products WHERE id_product = $1`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := expectOneRow(res); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}

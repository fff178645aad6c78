package products

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-retail/meridian/internal/masterdata/shared"
	"github.com/meridian-retail/meridian/internal/platform/db"
)

type Repository interface {
	List(ctx context.Context, filters shared.ListFilters) ([]Product, int, error)
	Get(ctx context.Context, id int64) (Product, error)
	Create(ctx context.Context, product Product) (Product, error)
	Update(ctx context.Context, id int64, product Product) error
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool}
}

const productColumns = `id, company_id, category_id, supplier_id, sku, name, description, unit_price, tax_rate, is_active, created_at, updated_at`

func (r *repository) List(ctx context.Context, filters shared.ListFilters) ([]Product, int, error) {
	filters.Normalize()

	where := ` WHERE 1=1`
	args := []any{}
	if filters.CompanyID != nil {
		args = append(args, *filters.CompanyID)
		where += ` AND company_id = $` + strconv.Itoa(len(args))
	}
	if filters.CategoryID != nil {
		args = append(args, *filters.CategoryID)
		where += ` AND category_id = $` + strconv.Itoa(len(args))
	}
	if filters.SupplierID != nil {
		args = append(args, *filters.SupplierID)
		where += ` AND supplier_id = $` + strconv.Itoa(len(args))
	}
	if filters.Search != "" {
		args = append(args, "%"+filters.Search+"%")
		n := strconv.Itoa(len(args))
		where += ` AND (name ILIKE $` + n + ` OR sku ILIKE $` + n + `)`
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM products`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, filters.Limit, (filters.Page-1)*filters.Limit)
	query := `SELECT ` + productColumns + ` FROM products` + where +
		` ORDER BY ` + sortOrder(filters.SortBy, filters.SortDir) +
		` LIMIT $` + strconv.Itoa(len(args)-1) + ` OFFSET $` + strconv.Itoa(len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, err
		}
		products = append(products, p)
	}
	return products, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Product, error) {
	row := r.db.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Product{}, shared.ErrNotFound
		}
		return Product{}, err
	}
	return p, nil
}

func (r *repository) Create(ctx context.Context, product Product) (Product, error) {
	now := time.Now()
	err := r.db.QueryRow(ctx, `INSERT INTO products (company_id, category_id, supplier_id, sku, name, description, unit_price, tax_rate, is_active, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10) RETURNING id`,
		product.CompanyID, product.CategoryID, product.SupplierID, product.SKU, product.Name,
		product.Description, product.UnitPrice, product.TaxRate, product.IsActive, now).
		Scan(&product.ID)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return Product{}, shared.ErrDuplicate
		}
		return Product{}, err
	}
	product.CreatedAt = now
	product.UpdatedAt = now
	return product, nil
}

func (r *repository) Update(ctx context.Context, id int64, product Product) error {
	tag, err := r.db.Exec(ctx, `UPDATE products SET category_id = $1, supplier_id = $2, sku = $3, name = $4, description = $5, unit_price = $6, tax_rate = $7, is_active = $8, updated_at = $9 WHERE id = $10`,
		product.CategoryID, product.SupplierID, product.SKU, product.Name, product.Description,
		product.UnitPrice, product.TaxRate, product.IsActive, time.Now(), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func scanProduct(row pgx.Row) (Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.CompanyID, &p.CategoryID, &p.SupplierID, &p.SKU, &p.Name,
		&p.Description, &p.UnitPrice, &p.TaxRate, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func sortOrder(sortBy, sortDir string) string {
	dir := "ASC"
	if sortDir == shared.SortDesc {
		dir = "DESC"
	}
	switch sortBy {
	case "sku":
		return "sku " + dir
	case "unit_price":
		return "unit_price " + dir
	case "created_at":
		return "created_at " + dir
	default:
		return "name " + dir
	}
}

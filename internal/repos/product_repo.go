package repos

import (
	"context"
	"database/sql"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"applestore/internal/domain"
)

// productRow mirrors the products table. Columns come from Column via the
// mapper installed by OpenDB.
type productRow struct {
	ID                 int64
	Name               string
	Description        string
	Category           string
	Price              float64
	PriceARS           int64
	OriginalPrice      *float64
	OriginalPriceARS   *int64
	DiscountPercentage *float64
	Stock              int
	LowStockThreshold  int
	LastStockAlert     *string
	IsNew              bool
	IsFeatured         bool
	IsOnSale           bool
	Condition          string
	Color              string
	Colors             StringList
	StorageCapacity    string
	BatteryPercentage  *int
	HasAppleWarranty   bool
	Image              string
	Images             StringList
	CreatedAt          string
	UpdatedAt          string
}

var productFields = []Field{
	FieldID, FieldName, FieldDescription, FieldCategory, FieldPrice, FieldPriceARS,
	FieldOriginalPrice, FieldOriginalPriceARS, FieldDiscountPercentage,
	FieldStock, FieldLowStockThreshold, FieldLastStockAlert,
	FieldIsNew, FieldIsFeatured, FieldIsOnSale,
	FieldCondition, FieldColor, FieldColors, FieldStorageCapacity, FieldBatteryPercentage,
	FieldHasAppleWarranty, FieldImage, FieldImages, FieldCreatedAt, FieldUpdatedAt,
}

var (
	productColumns = strings.Join(Columns(productFields...), ", ")

	insertProductSQL = func() string {
		cols := Columns(productFields[1:]...)
		return fmt.Sprintf("INSERT INTO products (%s) VALUES (:%s) RETURNING %s",
			strings.Join(cols, ", "), strings.Join(cols, ", :"), productColumns)
	}()

	updateProductSQL = func() string {
		sets := make([]string, 0, len(productFields))
		for _, f := range productFields {
			if f == FieldID || f == FieldCreatedAt {
				continue
			}
			c := Column(f)
			sets = append(sets, c+" = :"+c)
		}
		return fmt.Sprintf("UPDATE products SET %s WHERE %s = :%s RETURNING %s",
			strings.Join(sets, ", "), Column(FieldID), Column(FieldID), productColumns)
	}()
)

type ProductRepo struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewProductRepo(db *sqlx.DB) *ProductRepo { return &ProductRepo{db: db, now: time.Now} }

// List returns every product ordered by id.
func (r *ProductRepo) List(ctx context.Context) ([]domain.Product, error) {
	var rows []productRow
	if err := r.db.SelectContext(ctx, &rows, `SELECT `+productColumns+` FROM products ORDER BY id`); err != nil {
		return nil, err
	}
	out := make([]domain.Product, 0, len(rows))
	for _, row := range rows {
		out = append(out, toDomainProduct(row))
	}
	return out, nil
}

// Get returns sql.ErrNoRows when the id does not exist.
func (r *ProductRepo) Get(ctx context.Context, id int64) (domain.Product, error) {
	var row productRow
	err := r.db.GetContext(ctx, &row, r.db.Rebind(`SELECT `+productColumns+` FROM products WHERE id = ?`), id)
	if err != nil {
		return domain.Product{}, err
	}
	return toDomainProduct(row), nil
}

// Create inserts p (its id is ignored) and returns the stored row.
func (r *ProductRepo) Create(ctx context.Context, p domain.Product) (domain.Product, error) {
	now := r.now()
	p.CreatedAt, p.UpdatedAt = now, now
	if p.LowStockThreshold <= 0 {
		p.LowStockThreshold = domain.DefaultLowStockThreshold
	}
	if p.Condition == "" {
		p.Condition = domain.ConditionNew
	}
	row, err := r.namedRow(ctx, insertProductSQL, toProductRow(p))
	if err != nil {
		return domain.Product{}, err
	}
	return toDomainProduct(row), nil
}

// Update replaces every column but created_at.
func (r *ProductRepo) Update(ctx context.Context, p domain.Product) (domain.Product, error) {
	p.UpdatedAt = r.now()
	if p.LowStockThreshold <= 0 {
		p.LowStockThreshold = domain.DefaultLowStockThreshold
	}
	row, err := r.namedRow(ctx, updateProductSQL, toProductRow(p))
	if err != nil {
		return domain.Product{}, err
	}
	return toDomainProduct(row), nil
}

// Patch is a partial update keyed by field.
type Patch map[Field]any

// Fields lists the patched fields in a stable order.
func (p Patch) Fields() []Field {
	out := make([]Field, 0, len(p))
	for f := range p {
		out = append(out, f)
	}
	slices.Sort(out)
	return out
}

// Patch updates only the given fields and stamps updated_at.
func (r *ProductRepo) Patch(ctx context.Context, id int64, patch Patch) (domain.Product, error) {
	fields := patch.Fields()
	sets := make([]string, 0, len(fields)+1)
	args := make([]any, 0, len(fields)+2)
	for _, f := range fields {
		if f == FieldID || f == FieldCreatedAt || f == FieldUpdatedAt {
			continue
		}
		sets = append(sets, Column(f)+" = ?")
		args = append(args, dbValue(patch[f]))
	}
	sets = append(sets, Column(FieldUpdatedAt)+" = ?")
	args = append(args, formatTime(r.now()), id)

	q := fmt.Sprintf("UPDATE products SET %s WHERE id = ? RETURNING %s", strings.Join(sets, ", "), productColumns)
	var row productRow
	if err := r.db.QueryRowxContext(ctx, r.db.Rebind(q), args...).StructScan(&row); err != nil {
		return domain.Product{}, err
	}
	return toDomainProduct(row), nil
}

// Delete returns sql.ErrNoRows when nothing was deleted.
func (r *ProductRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM products WHERE id = ?`), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *ProductRepo) namedRow(ctx context.Context, query string, arg productRow) (productRow, error) {
	rows, err := sqlx.NamedQueryContext(ctx, r.db, query, arg)
	if err != nil {
		return productRow{}, err
	}
	defer rows.Close()
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return productRow{}, err
		}
		return productRow{}, sql.ErrNoRows
	}
	var out productRow
	if err := rows.StructScan(&out); err != nil {
		return productRow{}, err
	}
	return out, nil
}

// dbValue converts domain values into what the drivers store.
func dbValue(v any) any {
	switch x := v.(type) {
	case time.Time:
		return formatTime(x)
	case *time.Time:
		return formatTimePtr(x)
	case []string:
		return StringList(x)
	case domain.Condition:
		return string(x)
	}
	return v
}

func toProductRow(p domain.Product) productRow {
	return productRow{
		ID:                 p.ID,
		Name:               p.Name,
		Description:        p.Description,
		Category:           p.Category,
		Price:              p.Price,
		PriceARS:           p.PriceARS,
		OriginalPrice:      p.OriginalPrice,
		OriginalPriceARS:   p.OriginalPriceARS,
		DiscountPercentage: p.DiscountPercentage,
		Stock:              p.Stock,
		LowStockThreshold:  p.LowStockThreshold,
		LastStockAlert:     formatTimePtr(p.LastStockAlert),
		IsNew:              p.IsNew,
		IsFeatured:         p.IsFeatured,
		IsOnSale:           p.IsOnSale,
		Condition:          string(p.Condition),
		Color:              p.Color,
		Colors:             StringList(p.Colors),
		StorageCapacity:    p.StorageCapacity,
		BatteryPercentage:  p.BatteryPercentage,
		HasAppleWarranty:   p.HasAppleWarranty,
		Image:              p.Image,
		Images:             StringList(p.Images),
		CreatedAt:          formatTime(p.CreatedAt),
		UpdatedAt:          formatTime(p.UpdatedAt),
	}
}

func toDomainProduct(r productRow) domain.Product {
	return domain.Product{
		ID:                 r.ID,
		Name:               r.Name,
		Description:        r.Description,
		Category:           r.Category,
		Price:              r.Price,
		PriceARS:           r.PriceARS,
		OriginalPrice:      r.OriginalPrice,
		OriginalPriceARS:   r.OriginalPriceARS,
		DiscountPercentage: r.DiscountPercentage,
		Stock:              r.Stock,
		LowStockThreshold:  r.LowStockThreshold,
		LastStockAlert:     parseTimePtr(r.LastStockAlert),
		IsNew:              r.IsNew,
		IsFeatured:         r.IsFeatured,
		IsOnSale:           r.IsOnSale,
		Condition:          domain.Condition(r.Condition),
		Color:              r.Color,
		Colors:             []string(r.Colors),
		StorageCapacity:    r.StorageCapacity,
		BatteryPercentage:  r.BatteryPercentage,
		HasAppleWarranty:   r.HasAppleWarranty,
		Image:              r.Image,
		Images:             []string(r.Images),
		CreatedAt:          parseTime(r.CreatedAt),
		UpdatedAt:          parseTime(r.UpdatedAt),
	}
}

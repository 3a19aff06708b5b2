package repos

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"applestore/internal/domain"
)

type configRow struct {
	ID                     int64
	StoreName              string
	StoreDescription       string
	WhatsappNumber         string
	DollarRateOfficial     float64
	DollarRateBlue         float64
	DollarRateMargin       float64
	LastDollarUpdate       *string
	ShowFeaturedProducts   bool
	ShowFinancingOptions   bool
	ShowSaleSection        bool
	ShowRefurbishedSection bool
	SectionsOrder          SectionList
	FinancingOptions       FinancingJSON
	CreatedAt              string
	UpdatedAt              string
}

var configFields = []Field{
	FieldID, FieldStoreName, FieldStoreDescription, FieldWhatsappNumber,
	FieldDollarRateOfficial, FieldDollarRateBlue, FieldDollarRateMargin, FieldLastDollarUpdate,
	FieldShowFeaturedProducts, FieldShowFinancingOptions, FieldShowSaleSection, FieldShowRefurbishedSection,
	FieldSectionsOrder, FieldFinancingOptions, FieldCreatedAt, FieldUpdatedAt,
}

var (
	configColumns = strings.Join(Columns(configFields...), ", ")

	insertConfigSQL = func() string {
		cols := Columns(configFields[1:]...)
		return fmt.Sprintf("INSERT INTO config (%s) VALUES (:%s)",
			strings.Join(cols, ", "), strings.Join(cols, ", :"))
	}()

	updateConfigSQL = func() string {
		sets := make([]string, 0, len(configFields))
		for _, f := range configFields {
			if f == FieldID || f == FieldCreatedAt {
				continue
			}
			c := Column(f)
			sets = append(sets, c+" = :"+c)
		}
		return fmt.Sprintf("UPDATE config SET %s WHERE id = :id", strings.Join(sets, ", "))
	}()
)

// ConfigRepo stores the singleton store configuration.
type ConfigRepo struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewConfigRepo(db *sqlx.DB) *ConfigRepo { return &ConfigRepo{db: db, now: time.Now} }

// Get returns nil without error when no configuration was ever saved.
func (r *ConfigRepo) Get(ctx context.Context) (*domain.StoreConfig, error) {
	row, err := getConfigRow(ctx, r.db)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	cfg := toDomainConfig(row)
	return &cfg, nil
}

// Save upserts the singleton and returns the stored record.
func (r *ConfigRepo) Save(ctx context.Context, cfg domain.StoreConfig) (domain.StoreConfig, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return domain.StoreConfig{}, err
	}
	defer tx.Rollback()

	now := r.now()
	existing, err := getConfigRow(ctx, tx)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		cfg.CreatedAt, cfg.UpdatedAt = now, now
		if _, err := tx.NamedExecContext(ctx, insertConfigSQL, toConfigRow(cfg)); err != nil {
			return domain.StoreConfig{}, err
		}
	case err != nil:
		return domain.StoreConfig{}, err
	default:
		cfg.ID = existing.ID
		cfg.CreatedAt = parseTime(existing.CreatedAt)
		cfg.UpdatedAt = now
		if _, err := tx.NamedExecContext(ctx, updateConfigSQL, toConfigRow(cfg)); err != nil {
			return domain.StoreConfig{}, err
		}
	}

	saved, err := getConfigRow(ctx, tx)
	if err != nil {
		return domain.StoreConfig{}, err
	}
	if err := tx.Commit(); err != nil {
		return domain.StoreConfig{}, err
	}
	return toDomainConfig(saved), nil
}

func getConfigRow(ctx context.Context, q sqlx.QueryerContext) (configRow, error) {
	var row configRow
	err := sqlx.GetContext(ctx, q, &row, `SELECT `+configColumns+` FROM config ORDER BY id LIMIT 1`)
	return row, err
}

func toConfigRow(c domain.StoreConfig) configRow {
	order := c.SectionsOrder
	if order == nil {
		order = []domain.Section{}
	}
	return configRow{
		ID:                     c.ID,
		StoreName:              c.StoreName,
		StoreDescription:       c.StoreDescription,
		WhatsappNumber:         c.WhatsappNumber,
		DollarRateOfficial:     c.DollarRateOfficial,
		DollarRateBlue:         c.DollarRateBlue,
		DollarRateMargin:       c.DollarRateMargin,
		LastDollarUpdate:       formatTimePtr(c.LastDollarUpdate),
		ShowFeaturedProducts:   c.ShowFeaturedProducts,
		ShowFinancingOptions:   c.ShowFinancingOptions,
		ShowSaleSection:        c.ShowSaleSection,
		ShowRefurbishedSection: c.ShowRefurbishedSection,
		SectionsOrder:          SectionList(order),
		FinancingOptions:       FinancingJSON(c.FinancingOptions),
		CreatedAt:              formatTime(c.CreatedAt),
		UpdatedAt:              formatTime(c.UpdatedAt),
	}
}

func toDomainConfig(r configRow) domain.StoreConfig {
	return domain.StoreConfig{
		ID:                     r.ID,
		StoreName:              r.StoreName,
		StoreDescription:       r.StoreDescription,
		WhatsappNumber:         r.WhatsappNumber,
		DollarRateOfficial:     r.DollarRateOfficial,
		DollarRateBlue:         r.DollarRateBlue,
		DollarRateMargin:       r.DollarRateMargin,
		LastDollarUpdate:       parseTimePtr(r.LastDollarUpdate),
		ShowFeaturedProducts:   r.ShowFeaturedProducts,
		ShowFinancingOptions:   r.ShowFinancingOptions,
		ShowSaleSection:        r.ShowSaleSection,
		ShowRefurbishedSection: r.ShowRefurbishedSection,
		SectionsOrder:          []domain.Section(r.SectionsOrder),
		FinancingOptions:       domain.FinancingOptions(r.FinancingOptions),
		CreatedAt:              parseTime(r.CreatedAt),
		UpdatedAt:              parseTime(r.UpdatedAt),
	}
}

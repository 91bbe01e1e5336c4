package pgdb

import (
	"context"
	"errors"

	"github.com/craftlink/go-backend/internal/usecase"
	"github.com/craftlink/go-backend/pkg/e"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jimlawless/whereami"
)

// PricingRepo читает правила ценообразования и рыночную статистику из PostgreSQL.
type PricingRepo struct {
	pool *pgxpool.Pool
}

func NewPricingRepo(pool *pgxpool.Pool) *PricingRepo {
	return &PricingRepo{pool: pool}
}

// GetRules возвращает актуальные правила ценообразования и средние цены по категориям.
func (p *PricingRepo) GetRules(ctx context.Context) (*usecase.PricingRules, error) {
	query := `
		SELECT hourly_rate, margin_pct
		FROM pricing_rules
		ORDER BY id DESC
		LIMIT 1`

	rules := &usecase.PricingRules{NationalAvgPrice: make(map[string]int64)}
	err := p.pool.QueryRow(ctx, query).Scan(&rules.HourlyRate, &rules.MarginPct)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, e.Wrap(whereami.WhereAmI(), pgx.ErrNoRows)
		}

		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	avgQuery := `
		SELECT category, ROUND(AVG(price))::bigint
		FROM products
		WHERE NOT is_archived
		GROUP BY category`

	rows, err := p.pool.Query(ctx, avgQuery)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			category string
			avg      int64
		)
		if err := rows.Scan(&category, &avg); err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}

		rules.NationalAvgPrice[category] = avg
	}
	if err := rows.Err(); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return rules, nil
}

// GetCategoryPriceStats возвращает количество и среднюю цену неархивных товаров категории.
func (p *PricingRepo) GetCategoryPriceStats(ctx context.Context, category string) (*usecase.CategoryPriceStats, error) {
	query := `
		SELECT COUNT(*), COALESCE(ROUND(AVG(price)), 0)::bigint
		FROM products
		WHERE category = $1 AND NOT is_archived`

	var stats usecase.CategoryPriceStats
	if err := p.pool.QueryRow(ctx, query, category).Scan(&stats.Count, &stats.AvgPrice); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return &stats, nil
}

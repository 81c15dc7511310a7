package reports

import (
	"context"
	"time"

	"golang.org/x/sync/singleflight"
)

const topProductLimit = 5

// Service builds the report aggregates, caching them in Redis and collapsing
// concurrent identical loads through singleflight.
type Service struct {
	repo  Repository
	cache *Cache
	loc   *time.Location
	group singleflight.Group
	now   func() time.Time
}

// NewService wires a Repository with a Cache helper. loc fixes the store's
// day boundary; nil means the host zone.
func NewService(repo Repository, cache *Cache, loc *time.Location) *Service {
	if loc == nil {
		loc = time.Local
	}
	return &Service{repo: repo, cache: cache, loc: loc, now: time.Now}
}

// dayStart returns midnight of t's calendar day in the store's zone.
func (s *Service) dayStart(t time.Time) time.Time {
	t = t.In(s.loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, s.loc)
}

// Dashboard returns today's aggregate, cached per version and day.
func (s *Service) Dashboard(ctx context.Context) (Dashboard, error) {
	day := s.now().In(s.loc).Format("2006-01-02")
	key, err := s.cache.BuildKey(ctx, "reports", "dashboard", day)
	if err != nil {
		return Dashboard{}, err
	}

	result, err, _ := s.group.Do(key, func() (interface{}, error) {
		var d Dashboard
		err := s.cache.FetchJSON(ctx, key, &d, func(ctx context.Context) (interface{}, error) {
			return s.buildDashboard(ctx)
		})
		return d, err
	})
	if err != nil {
		return Dashboard{}, err
	}
	return result.(Dashboard), nil
}

func (s *Service) buildDashboard(ctx context.Context) (Dashboard, error) {
	now := s.now()
	today := s.dayStart(now)
	weekStart := today.AddDate(0, 0, -6)

	stats, err := s.repo.DayStats(ctx, today, today.AddDate(0, 0, 1))
	if err != nil {
		return Dashboard{}, err
	}
	series, err := s.repo.RevenueSeries(ctx, weekStart, today.AddDate(0, 0, 1))
	if err != nil {
		return Dashboard{}, err
	}
	top, err := s.repo.TopProducts(ctx, weekStart, today.AddDate(0, 0, 1), topProductLimit)
	if err != nil {
		return Dashboard{}, err
	}
	customers, err := s.repo.ActiveCustomers(ctx)
	if err != nil {
		return Dashboard{}, err
	}
	debt, err := s.repo.OutstandingDebt(ctx)
	if err != nil {
		return Dashboard{}, err
	}
	lowStock, err := s.repo.LowStock(ctx)
	if err != nil {
		return Dashboard{}, err
	}

	return Dashboard{
		TodayRevenue:      stats.Revenue,
		TodayTransactions: stats.Transactions,
		TodayItemsSold:    stats.ItemsSold,
		ActiveCustomers:   customers,
		OutstandingDebt:   debt,
		WeeklySeries:      series,
		TopProducts:       top,
		LowStock:          lowStock,
		GeneratedAt:       now,
	}, nil
}

// SalesReport returns the per-day breakdown for [start, end], inclusive.
func (s *Service) SalesReport(ctx context.Context, start, end time.Time) (SalesReport, error) {
	startKey := start.Format("2006-01-02")
	endKey := end.Format("2006-01-02")
	key, err := s.cache.BuildKey(ctx, "reports", "sales", startKey, endKey)
	if err != nil {
		return SalesReport{}, err
	}

	result, err, _ := s.group.Do(key, func() (interface{}, error) {
		var report SalesReport
		err := s.cache.FetchJSON(ctx, key, &report, func(ctx context.Context) (interface{}, error) {
			return s.buildSalesReport(ctx, start, end)
		})
		return report, err
	})
	if err != nil {
		return SalesReport{}, err
	}
	return result.(SalesReport), nil
}

func (s *Service) buildSalesReport(ctx context.Context, start, end time.Time) (SalesReport, error) {
	rangeEnd := end.AddDate(0, 0, 1)
	rows, err := s.repo.DailyRows(ctx, start, rangeEnd)
	if err != nil {
		return SalesReport{}, err
	}
	top, err := s.repo.TopProducts(ctx, start, rangeEnd, topProductLimit)
	if err != nil {
		return SalesReport{}, err
	}

	report := SalesReport{
		Start:       start.Format("2006-01-02"),
		End:         end.Format("2006-01-02"),
		Rows:        rows,
		TopProducts: top,
		GeneratedAt: s.now(),
	}
	for _, row := range rows {
		report.TotalRevenue += row.Revenue
		report.TotalProfit += row.Profit
		report.TotalTransactions += row.Transactions
	}
	return report, nil
}

// Invalidate bumps the cache version; called after every sale commit.
func (s *Service) Invalidate(ctx context.Context) error {
	return s.cache.Bump(ctx)
}

// Warmup precomputes today's dashboard into the cache.
func (s *Service) Warmup(ctx context.Context) error {
	_, err := s.Dashboard(ctx)
	return err
}

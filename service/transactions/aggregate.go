package transactions

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/findash/findash-server/cmd/models"
	"gorm.io/gorm"
)

// savingsRate is the fixed heuristic applied to the balance.
const savingsRate = 0.2

const trailingWeeks = 8

// Stats summarizes the whole transaction collection.
type Stats struct {
	TotalRevenue      float64 `json:"totalRevenue"`
	TotalExpenses     float64 `json:"totalExpenses"`
	PendingRevenue    float64 `json:"pendingRevenue"`
	PendingExpenses   float64 `json:"pendingExpenses"`
	TotalTransactions int64   `json:"totalTransactions"`
	Balance           float64 `json:"balance"`
	Savings           float64 `json:"savings"`
}

// ChartPoint is one aggregation bucket. The label key is "month" for every
// period, matching the wire format the dashboard chart expects.
type ChartPoint struct {
	Label    string  `json:"month"`
	Income   float64 `json:"income"`
	Expenses float64 `json:"expenses"`
}

func sumAmount(db *gorm.DB, category, status string) (float64, error) {
	var total float64
	err := db.Model(&models.Transaction{}).
		Where("category = ? AND status = ?", category, status).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total).Error
	return total, err
}

// ComputeStats sums Paid amounts by category, tracks Pending separately, and
// derives balance and the savings estimate.
func ComputeStats(db *gorm.DB) (*Stats, error) {
	stats := &Stats{}
	var err error

	if stats.TotalRevenue, err = sumAmount(db, models.CategoryRevenue, models.StatusPaid); err != nil {
		return nil, err
	}
	if stats.TotalExpenses, err = sumAmount(db, models.CategoryExpense, models.StatusPaid); err != nil {
		return nil, err
	}
	if stats.PendingRevenue, err = sumAmount(db, models.CategoryRevenue, models.StatusPending); err != nil {
		return nil, err
	}
	if stats.PendingExpenses, err = sumAmount(db, models.CategoryExpense, models.StatusPending); err != nil {
		return nil, err
	}
	if err = db.Model(&models.Transaction{}).Count(&stats.TotalTransactions).Error; err != nil {
		return nil, err
	}

	stats.Balance = stats.TotalRevenue - stats.TotalExpenses
	stats.Savings = stats.Balance * savingsRate

	return stats, nil
}

type bucketTotals struct {
	income   float64
	expenses float64
}

func (b *bucketTotals) add(category string, amount float64) {
	if category == models.CategoryRevenue {
		b.income += amount
	} else {
		b.expenses += amount
	}
}

// paidRow is the projection the chart aggregation needs.
type paidRow struct {
	Date     time.Time
	Amount   float64
	Category string
}

func fetchPaidRows(db *gorm.DB, since time.Time) ([]paidRow, error) {
	query := db.Model(&models.Transaction{}).Where("status = ?", models.StatusPaid)
	if !since.IsZero() {
		query = query.Where("date >= ?", since)
	}
	var rows []paidRow
	if err := query.Select("date, amount, category").Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

var monthLabels = [12]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

// ChartSeries buckets Paid transactions by the requested calendar unit and
// category. now anchors the weekly trailing window.
func ChartSeries(db *gorm.DB, period string, now time.Time) ([]ChartPoint, error) {
	switch period {
	case "weekly":
		return weeklySeries(db, now)
	case "yearly":
		return yearlySeries(db)
	case "monthly":
		return monthlySeries(db)
	default:
		return nil, fmt.Errorf("unknown period %q", period)
	}
}

// monthlySeries always returns exactly 12 points, one per calendar month,
// zero-filled where no Paid data exists.
func monthlySeries(db *gorm.DB) ([]ChartPoint, error) {
	rows, err := fetchPaidRows(db, time.Time{})
	if err != nil {
		return nil, err
	}

	var buckets [12]bucketTotals
	for _, row := range rows {
		buckets[int(row.Date.Month())-1].add(row.Category, row.Amount)
	}

	points := make([]ChartPoint, 0, 12)
	for i, label := range monthLabels {
		points = append(points, ChartPoint{
			Label:    label,
			Income:   buckets[i].income,
			Expenses: buckets[i].expenses,
		})
	}
	return points, nil
}

// weeklySeries considers only the trailing eight weeks and returns only
// buckets with data, chronological, truncated to the most recent eight.
func weeklySeries(db *gorm.DB, now time.Time) ([]ChartPoint, error) {
	since := now.Add(-trailingWeeks * 7 * 24 * time.Hour)
	rows, err := fetchPaidRows(db, since)
	if err != nil {
		return nil, err
	}

	type weekKey struct {
		year int
		week int
	}
	buckets := make(map[weekKey]*bucketTotals)
	for _, row := range rows {
		year, week := row.Date.ISOWeek()
		key := weekKey{year: year, week: week}
		if buckets[key] == nil {
			buckets[key] = &bucketTotals{}
		}
		buckets[key].add(row.Category, row.Amount)
	}

	keys := make([]weekKey, 0, len(buckets))
	for key := range buckets {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].year != keys[j].year {
			return keys[i].year < keys[j].year
		}
		return keys[i].week < keys[j].week
	})
	if len(keys) > trailingWeeks {
		keys = keys[len(keys)-trailingWeeks:]
	}

	points := make([]ChartPoint, 0, len(keys))
	for _, key := range keys {
		points = append(points, ChartPoint{
			Label:    fmt.Sprintf("Week %d", key.week),
			Income:   buckets[key].income,
			Expenses: buckets[key].expenses,
		})
	}
	return points, nil
}

// yearlySeries returns one point per year present in the data, chronological,
// unbounded in count.
func yearlySeries(db *gorm.DB) ([]ChartPoint, error) {
	rows, err := fetchPaidRows(db, time.Time{})
	if err != nil {
		return nil, err
	}

	buckets := make(map[int]*bucketTotals)
	for _, row := range rows {
		year := row.Date.Year()
		if buckets[year] == nil {
			buckets[year] = &bucketTotals{}
		}
		buckets[year].add(row.Category, row.Amount)
	}

	years := make([]int, 0, len(buckets))
	for year := range buckets {
		years = append(years, year)
	}
	sort.Ints(years)

	points := make([]ChartPoint, 0, len(years))
	for _, year := range years {
		points = append(points, ChartPoint{
			Label:    strconv.Itoa(year),
			Income:   buckets[year].income,
			Expenses: buckets[year].expenses,
		})
	}
	return points, nil
}

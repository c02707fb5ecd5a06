package transactions

import (
	"testing"
	"time"

	"github.com/findash/findash-server/cmd/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
)

type AggregateTestSuite struct {
	suite.Suite
	db *gorm.DB
}

func (suite *AggregateTestSuite) SetupTest() {
	suite.db = newTestDB(suite.T())
}

func (suite *AggregateTestSuite) TestStatsSplitPaidByCategoryAndTrackPending() {
	t := suite.T()
	day := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

	mustCreate(t, suite.db, day, 1000, models.CategoryRevenue, models.StatusPaid, "acct_a")
	mustCreate(t, suite.db, day, 500, models.CategoryRevenue, models.StatusPaid, "acct_b")
	mustCreate(t, suite.db, day, 400, models.CategoryExpense, models.StatusPaid, "acct_c")
	mustCreate(t, suite.db, day, 250, models.CategoryRevenue, models.StatusPending, "acct_d")
	mustCreate(t, suite.db, day, 125, models.CategoryExpense, models.StatusPending, "acct_e")

	stats, err := ComputeStats(suite.db)
	require.NoError(t, err)

	assert.Equal(t, 1500.0, stats.TotalRevenue)
	assert.Equal(t, 400.0, stats.TotalExpenses)
	assert.Equal(t, 250.0, stats.PendingRevenue)
	assert.Equal(t, 125.0, stats.PendingExpenses)
	assert.Equal(t, int64(5), stats.TotalTransactions)
	assert.Equal(t, 1100.0, stats.Balance)
}

func (suite *AggregateTestSuite) TestSavingsIsFixedShareOfBalance() {
	t := suite.T()
	day := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

	mustCreate(t, suite.db, day, 2000, models.CategoryRevenue, models.StatusPaid, "acct_a")
	mustCreate(t, suite.db, day, 750, models.CategoryExpense, models.StatusPaid, "acct_b")

	stats, err := ComputeStats(suite.db)
	require.NoError(t, err)
	assert.InDelta(t, 0.2*(stats.TotalRevenue-stats.TotalExpenses), stats.Savings, 1e-9)
}

func (suite *AggregateTestSuite) TestStatsOnEmptyStore() {
	t := suite.T()

	stats, err := ComputeStats(suite.db)
	require.NoError(t, err)
	assert.Equal(t, 0.0, stats.TotalRevenue)
	assert.Equal(t, 0.0, stats.Balance)
	assert.Equal(t, 0.0, stats.Savings)
	assert.Equal(t, int64(0), stats.TotalTransactions)
}

func (suite *AggregateTestSuite) TestMonthlySeriesIsFixedLengthAndZeroFilled() {
	t := suite.T()

	mustCreate(t, suite.db, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), 100, models.CategoryRevenue, models.StatusPaid, "acct_a")
	mustCreate(t, suite.db, time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC), 40, models.CategoryExpense, models.StatusPaid, "acct_b")
	mustCreate(t, suite.db, time.Date(2024, 7, 4, 0, 0, 0, 0, time.UTC), 300, models.CategoryRevenue, models.StatusPaid, "acct_c")
	// Pending rows never reach the chart.
	mustCreate(t, suite.db, time.Date(2024, 7, 5, 0, 0, 0, 0, time.UTC), 999, models.CategoryRevenue, models.StatusPending, "acct_d")

	points, err := ChartSeries(suite.db, "monthly", time.Now())
	require.NoError(t, err)
	require.Len(t, points, 12)

	labels := make([]string, 0, 12)
	for _, p := range points {
		labels = append(labels, p.Label)
	}
	assert.Equal(t, []string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}, labels)

	assert.Equal(t, 100.0, points[0].Income)
	assert.Equal(t, 40.0, points[0].Expenses)
	assert.Equal(t, 300.0, points[6].Income)
	assert.Equal(t, 0.0, points[1].Income, "months without data are zero-filled")
	assert.Equal(t, 0.0, points[1].Expenses)
}

func (suite *AggregateTestSuite) TestWeeklySeriesKeepsTrailingWindowOnly() {
	t := suite.T()
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

	mustCreate(t, suite.db, now.AddDate(0, 0, -3), 100, models.CategoryRevenue, models.StatusPaid, "acct_a")
	mustCreate(t, suite.db, now.AddDate(0, 0, -17), 200, models.CategoryExpense, models.StatusPaid, "acct_b")
	// Outside the trailing eight weeks.
	mustCreate(t, suite.db, now.AddDate(0, 0, -120), 999, models.CategoryRevenue, models.StatusPaid, "acct_c")

	points, err := ChartSeries(suite.db, "weekly", now)
	require.NoError(t, err)
	require.Len(t, points, 2, "only weeks with in-window data appear")

	// Chronological: the older week first.
	assert.Equal(t, 200.0, points[0].Expenses)
	assert.Equal(t, 100.0, points[1].Income)
	assert.Contains(t, points[0].Label, "Week ")
}

func (suite *AggregateTestSuite) TestWeeklySeriesTruncatesToEightBuckets() {
	t := suite.T()
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

	// One row in each of the trailing nine weeks; the window cut plus the
	// bucket cap leave at most eight.
	for week := 0; week < 9; week++ {
		mustCreate(t, suite.db, now.AddDate(0, 0, -7*week), 10, models.CategoryRevenue, models.StatusPaid, "acct_a")
	}

	points, err := ChartSeries(suite.db, "weekly", now)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(points), 8)
}

func (suite *AggregateTestSuite) TestYearlySeriesIsChronologicalAndUnbounded() {
	t := suite.T()

	mustCreate(t, suite.db, time.Date(2022, 5, 1, 0, 0, 0, 0, time.UTC), 300, models.CategoryRevenue, models.StatusPaid, "acct_a")
	mustCreate(t, suite.db, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), 100, models.CategoryRevenue, models.StatusPaid, "acct_b")
	mustCreate(t, suite.db, time.Date(2023, 5, 1, 0, 0, 0, 0, time.UTC), 50, models.CategoryExpense, models.StatusPaid, "acct_c")

	points, err := ChartSeries(suite.db, "yearly", time.Now())
	require.NoError(t, err)
	require.Len(t, points, 3)

	assert.Equal(t, "2022", points[0].Label)
	assert.Equal(t, "2023", points[1].Label)
	assert.Equal(t, "2024", points[2].Label)
	assert.Equal(t, 300.0, points[0].Income)
	assert.Equal(t, 50.0, points[1].Expenses)
}

func (suite *AggregateTestSuite) TestUnknownPeriodIsRejected() {
	_, err := ChartSeries(suite.db, "daily", time.Now())
	assert.Error(suite.T(), err)
}

func TestAggregateTestSuite(t *testing.T) {
	suite.Run(t, new(AggregateTestSuite))
}

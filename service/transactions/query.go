package transactions

import (
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/findash/findash-server/cmd/models"
	"gorm.io/gorm"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// ListParams describes a transaction list request: filters, search text,
// sort and page window.
type ListParams struct {
	Page      int
	Limit     int
	Search    string
	Category  string
	Status    string
	SortBy    string
	SortOrder string
	DateFrom  string
	DateTo    string
}

// PaginationMeta contains pagination metadata for a result page.
type PaginationMeta struct {
	CurrentPage  int   `json:"currentPage"`
	TotalPages   int   `json:"totalPages"`
	TotalItems   int64 `json:"totalItems"`
	ItemsPerPage int   `json:"itemsPerPage"`
	HasNext      bool  `json:"hasNext"`
	HasPrev      bool  `json:"hasPrev"`
}

// sortColumns whitelists the fields a caller may sort by.
var sortColumns = map[string]string{
	"id":         "id",
	"date":       "date",
	"amount":     "amount",
	"category":   "category",
	"status":     "status",
	"user_id":    "user_id",
	"created_at": "created_at",
}

// ParseListParams extracts list parameters from the request query string,
// applying defaults and the page-size cap.
func ParseListParams(r *http.Request) ListParams {
	query := r.URL.Query()

	params := ListParams{
		Page:      1,
		Limit:     defaultPageSize,
		Search:    strings.TrimSpace(query.Get("search")),
		Category:  query.Get("category"),
		Status:    query.Get("status"),
		SortBy:    query.Get("sortBy"),
		SortOrder: query.Get("sortOrder"),
		DateFrom:  query.Get("dateFrom"),
		DateTo:    query.Get("dateTo"),
	}

	if page, err := strconv.Atoi(query.Get("page")); err == nil && page >= 1 {
		params.Page = page
	}
	if limit, err := strconv.Atoi(query.Get("limit")); err == nil && limit >= 1 {
		if limit > maxPageSize {
			limit = maxPageSize
		}
		params.Limit = limit
	}

	if _, ok := sortColumns[params.SortBy]; !ok {
		params.SortBy = "date"
	}
	if params.SortOrder != "asc" {
		params.SortOrder = "desc"
	}

	return params
}

const dateLayout = "2006-01-02"

// startOfDay truncates t to midnight in its location.
func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// searchClause is one OR-branch of the free-text search interpretation.
type searchClause struct {
	expr string
	args []interface{}
}

// likeEscaper neutralizes LIKE metacharacters so the search term is matched
// as a literal substring.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// buildSearchClauses interprets the search term through an ordered chain of
// typed parsers. Each parser that accepts the term contributes an independent
// clause; parse failures are silently skipped.
func buildSearchClauses(term string) []searchClause {
	pattern := "%" + likeEscaper.Replace(strings.ToLower(term)) + "%"
	clauses := []searchClause{
		{expr: `LOWER(category) LIKE ? ESCAPE '\'`, args: []interface{}{pattern}},
		{expr: `LOWER(status) LIKE ? ESCAPE '\'`, args: []interface{}{pattern}},
		{expr: `LOWER(user_id) LIKE ? ESCAPE '\'`, args: []interface{}{pattern}},
	}

	// Positive number: exact amount plus the range [n, n*10] so a truncated
	// entry like "150" still finds 1500 but not 15000.
	if amount, err := strconv.ParseFloat(term, 64); err == nil && amount > 0 {
		clauses = append(clauses,
			searchClause{expr: "amount = ?", args: []interface{}{amount}},
			searchClause{expr: "(amount >= ? AND amount <= ?)", args: []interface{}{amount, amount * 10}},
		)
	}

	// Positive integer: transaction identifier.
	if id, err := strconv.Atoi(term); err == nil && id > 0 {
		clauses = append(clauses, searchClause{expr: "id = ?", args: []interface{}{id}})
	}

	// Calendar date: that full day.
	if day, ok := parseSearchDate(term); ok {
		start := startOfDay(day)
		clauses = append(clauses, searchClause{
			expr: "(date >= ? AND date < ?)",
			args: []interface{}{start, start.AddDate(0, 0, 1)},
		})
	}

	// Exactly four digits: that whole year.
	if year, ok := parseSearchYear(term); ok {
		start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
		clauses = append(clauses, searchClause{
			expr: "(date >= ? AND date < ?)",
			args: []interface{}{start, start.AddDate(1, 0, 0)},
		})
	}

	return clauses
}

func parseSearchDate(term string) (time.Time, bool) {
	if !strings.ContainsAny(term, "-/") {
		return time.Time{}, false
	}
	for _, layout := range []string{"2006-01-02", "2006/01/02"} {
		if t, err := time.Parse(layout, term); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func parseSearchYear(term string) (int, bool) {
	if len(term) != 4 {
		return 0, false
	}
	year, err := strconv.Atoi(term)
	if err != nil || year <= 0 {
		return 0, false
	}
	return year, true
}

// buildFilterQuery translates the active filters into a store query. Filters
// are conjunctive; the search OR-group never bypasses an explicit date range.
func buildFilterQuery(db *gorm.DB, params ListParams) *gorm.DB {
	query := db.Model(&models.Transaction{})

	if params.Category != "" && params.Category != "all" {
		query = query.Where("category = ?", params.Category)
	}
	if params.Status != "" && params.Status != "all" {
		query = query.Where("status = ?", params.Status)
	}

	if params.DateFrom != "" {
		if from, err := time.Parse(dateLayout, params.DateFrom); err == nil {
			query = query.Where("date >= ?", startOfDay(from))
		}
	}
	if params.DateTo != "" {
		if to, err := time.Parse(dateLayout, params.DateTo); err == nil {
			query = query.Where("date < ?", startOfDay(to).AddDate(0, 0, 1))
		}
	}

	if params.Search != "" {
		clauses := buildSearchClauses(params.Search)
		exprs := make([]string, 0, len(clauses))
		var args []interface{}
		for _, c := range clauses {
			exprs = append(exprs, c.expr)
			args = append(args, c.args...)
		}
		query = query.Where("("+strings.Join(exprs, " OR ")+")", args...)
	}

	return query
}

// ListTransactions runs the filter query and returns one page of rows plus
// pagination metadata. No matches is an empty page, not an error.
func ListTransactions(db *gorm.DB, params ListParams) ([]models.Transaction, *PaginationMeta, error) {
	query := buildFilterQuery(db, params)

	var totalItems int64
	if err := query.Count(&totalItems).Error; err != nil {
		return nil, nil, err
	}

	order := sortColumns[params.SortBy] + " " + params.SortOrder
	offset := (params.Page - 1) * params.Limit

	transactions := make([]models.Transaction, 0, params.Limit)
	if err := query.Order(order).Limit(params.Limit).Offset(offset).Find(&transactions).Error; err != nil {
		return nil, nil, err
	}

	totalPages := int(math.Ceil(float64(totalItems) / float64(params.Limit)))
	meta := &PaginationMeta{
		CurrentPage:  params.Page,
		TotalPages:   totalPages,
		TotalItems:   totalItems,
		ItemsPerPage: params.Limit,
		HasNext:      params.Page < totalPages,
		HasPrev:      params.Page > 1,
	}

	return transactions, meta, nil
}

package models

import (
	"time"
)

const (
	CategoryRevenue = "Revenue"
	CategoryExpense = "Expense"

	StatusPaid    = "Paid"
	StatusPending = "Pending"
)

// DefaultUserProfile is used when a transaction is created without a profile image.
const DefaultUserProfile = "https://thispersondoesnotexist.com/"

// ValidCategory reports whether category is one of the allowed values.
func ValidCategory(category string) bool {
	return category == CategoryRevenue || category == CategoryExpense
}

// ValidStatus reports whether status is one of the allowed values.
func ValidStatus(status string) bool {
	return status == StatusPaid || status == StatusPending
}

// Transaction is a single ledger entry. The identifier is assigned by the
// store's sequence, so concurrent creates never collide.
type Transaction struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Date        time.Time `gorm:"column:date;not null;index" json:"date"`
	Amount      float64   `gorm:"column:amount;not null" json:"amount"`
	Category    string    `gorm:"column:category;size:20;not null" json:"category"`
	Status      string    `gorm:"column:status;size:20;not null" json:"status"`
	UserID      string    `gorm:"column:user_id;size:100;not null" json:"user_id"`
	UserProfile string    `gorm:"column:user_profile;size:500" json:"user_profile"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

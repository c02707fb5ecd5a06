package transactions

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/findash/findash-server/cmd/models"
	"gorm.io/gorm"
)

// LoadSeedData reads the bundled transaction dataset from path.
func LoadSeedData(path string) ([]models.Transaction, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed data: %w", err)
	}

	var transactions []models.Transaction
	if err := json.Unmarshal(raw, &transactions); err != nil {
		return nil, fmt.Errorf("parse seed data: %w", err)
	}
	return transactions, nil
}

// ReplaceAllTransactions clears the collection and inserts the given rows in
// a single store transaction, so a failed seed leaves the old data intact.
func ReplaceAllTransactions(db *gorm.DB, transactions []models.Transaction) (int, error) {
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&models.Transaction{}).Error; err != nil {
			return err
		}
		if len(transactions) == 0 {
			return nil
		}
		if err := tx.Create(&transactions).Error; err != nil {
			return err
		}
		// Seed rows carry explicit ids, and on Postgres an explicit-id
		// insert does not advance the serial sequence. Resync it so the
		// next create does not collide with a seeded id.
		if tx.Dialector.Name() == "postgres" {
			return tx.Exec(
				"SELECT setval(pg_get_serial_sequence('transactions','id'), COALESCE(MAX(id), 1)) FROM transactions",
			).Error
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(transactions), nil
}

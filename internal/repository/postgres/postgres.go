// Package postgres implements the domain repositories on GORM.
//
// Collections keep the in-memory ordering rules: a created row takes a
// position below the current minimum so it lists first, and seeded rows are
// appended after the current maximum. Identifier derivation runs under a
// table lock so concurrent creates cannot mint the same id.
package postgres

import (
	"errors"
	"fmt"
	"strings"

	"github.com/eyualpha/HealthLink/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds an ILIKE pattern for a literal substring match.
func containsPattern(search string) string {
	return "%" + likeEscaper.Replace(search) + "%"
}

func lockTable(tx *gorm.DB, table string) error {
	return tx.Exec(fmt.Sprintf("LOCK TABLE %s IN SHARE ROW EXCLUSIVE MODE", table)).Error
}

// nextIdentity returns the next sequential id and a head position. Must run
// inside a transaction holding the table lock.
func nextIdentity(tx *gorm.DB, table, prefix string) (string, int64, error) {
	var ids []string
	if err := tx.Table(table).Where("id LIKE ?", prefix+"%").Pluck("id", &ids).Error; err != nil {
		return "", 0, fmt.Errorf("reading %s ids: %w", table, err)
	}

	var head int64
	if err := tx.Table(table).Select("COALESCE(MIN(position), 0)").Scan(&head).Error; err != nil {
		return "", 0, fmt.Errorf("reading %s head position: %w", table, err)
	}

	return domain.NextID(prefix, ids), head - 1, nil
}

func tailPosition(tx *gorm.DB, table string) (int64, error) {
	var tail int64
	if err := tx.Table(table).Select("COALESCE(MAX(position), 0)").Scan(&tail).Error; err != nil {
		return 0, fmt.Errorf("reading %s tail position: %w", table, err)
	}
	return tail, nil
}

func forUpdate(tx *gorm.DB) *gorm.DB {
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

// notFound maps gorm's missing-row error onto a domain sentinel.
func notFound(err, sentinel error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sentinel
	}
	return err
}

// seedRows inserts items after the current tail, skipping ids already present.
func seedRows[T any](tx *gorm.DB, table string, items []*T, id func(*T) string, setPosition func(*T, int64)) (int, error) {
	if err := lockTable(tx, table); err != nil {
		return 0, err
	}
	tail, err := tailPosition(tx, table)
	if err != nil {
		return 0, err
	}

	added := 0
	for _, item := range items {
		var n int64
		if err := tx.Table(table).Where("id = ?", id(item)).Count(&n).Error; err != nil {
			return added, err
		}
		if n > 0 {
			continue
		}
		tail++
		setPosition(item, tail)
		if err := tx.Create(item).Error; err != nil {
			return added, fmt.Errorf("seeding %s %s: %w", table, id(item), err)
		}
		added++
	}
	return added, nil
}

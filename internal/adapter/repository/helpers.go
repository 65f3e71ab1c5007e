package repository

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/chiwei-platform/lifecycle-tracker/internal/domain"
)

func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key")
}

// unavailable marks a read failure as transient so callers can retry.
func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, domain.ErrUnavailable, err)
}

// matchQuery adds a case-insensitive substring match of q over columns.
func matchQuery(db *gorm.DB, q string, columns ...string) *gorm.DB {
	q = strings.TrimSpace(q)
	if q == "" {
		return db
	}
	like := "%" + strings.ToLower(q) + "%"
	clauses := make([]string, 0, len(columns))
	args := make([]any, 0, len(columns))
	for _, c := range columns {
		clauses = append(clauses, "LOWER("+c+") LIKE ?")
		args = append(args, like)
	}
	return db.Where("("+strings.Join(clauses, " OR ")+")", args...)
}

func dateOf(t time.Time) domain.Date {
	if t.IsZero() {
		return domain.Date{}
	}
	return domain.DateOf(t)
}

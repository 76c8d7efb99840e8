package services

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Sentinel errors surfaced by the workflow services. Handlers translate them
// into the public error taxonomy.
var (
	// ErrAlreadyRegistered signals a duplicate registration attempt for an
	// account number that already completed the workflow.
	ErrAlreadyRegistered = errors.New("registration: account already registered")

	// ErrTokenInvalid covers tokens that are unknown, expired, or consumed.
	// The cases are deliberately indistinguishable to callers.
	ErrTokenInvalid = errors.New("registration: invalid or expired token")

	// ErrShareholderNotFound signals that no registry row exists for the
	// requested account number.
	ErrShareholderNotFound = errors.New("registration: shareholder not found")
)

// isUniqueConstraintError detects database uniqueness violations across the
// supported vendors. The unique indexes on registered_users.acno and
// verification_tokens.acno are the authoritative duplicate guards; this maps
// their violations back into workflow errors.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr != nil && pgErr.Code == "23505" {
		return true
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) && myErr != nil && myErr.Number == 1062 {
		return true
	}

	lower := strings.ToLower(err.Error())
	return strings.Contains(lower, "unique") ||
		strings.Contains(lower, "duplicate") ||
		strings.Contains(lower, "constraint")
}

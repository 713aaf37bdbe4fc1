package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jhoicas/tienda-api/internal/domain"
)

const (
	codeUniqueViolation      = "23505"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
)

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

func isUniqueViolation(err error) bool {
	return pgCode(err) == codeUniqueViolation
}

// asConflict traduce fallas de serialización y deadlocks a domain.ErrConflict; el resto pasa igual.
func asConflict(err error) error {
	switch pgCode(err) {
	case codeSerializationFailure, codeDeadlockDetected:
		return fmt.Errorf("%w: %v", domain.ErrConflict, err)
	}
	return err
}

// nullable convierte "" en NULL para columnas opcionales.
func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/tienda-api/internal/domain"
)

func TestIsUniqueViolation(t *testing.T) {
	wrapped := fmt.Errorf("insert product: %w", &pgconn.PgError{Code: codeUniqueViolation})
	assert.True(t, isUniqueViolation(wrapped))
	assert.False(t, isUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, isUniqueViolation(errors.New("23505 en el texto no cuenta")))
}

func TestAsConflict(t *testing.T) {
	for _, code := range []string{codeSerializationFailure, codeDeadlockDetected} {
		err := asConflict(fmt.Errorf("update stock: %w", &pgconn.PgError{Code: code}))
		assert.ErrorIs(t, err, domain.ErrConflict, code)
	}

	other := &pgconn.PgError{Code: "23503"}
	assert.Same(t, error(other), asConflict(other))
	assert.ErrorIs(t, asConflict(domain.ErrInsufficientStock), domain.ErrInsufficientStock)
}

func TestNullable(t *testing.T) {
	assert.Nil(t, nullable(""))
	s := nullable("7701234567890")
	if assert.NotNil(t, s) {
		assert.Equal(t, "7701234567890", deref(s))
	}
	assert.Equal(t, "", deref(nil))
}

package entity

import (
	"strings"
	"time"

	"github.com/jhoicas/tienda-api/internal/domain"
)

// Category agrupa productos de un tenant; el nombre no puede quedar vacío.
type Category struct {
	ID        string
	TenantID  string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewCategory valida y construye una categoría del tenant.
func NewCategory(id, tenantID, name string, now time.Time) (*Category, error) {
	name = strings.TrimSpace(name)
	if id == "" || tenantID == "" || name == "" {
		return nil, domain.ErrInvalidInput
	}
	return &Category{ID: id, TenantID: tenantID, Name: name, CreatedAt: now, UpdatedAt: now}, nil
}

// BelongsTo indica si la categoría es del tenant dado.
func (c *Category) BelongsTo(tenantID string) bool {
	return c.TenantID == tenantID
}

package dto

// MaxPageLimit tope de elementos por página.
const MaxPageLimit = 100

// PageRequest paginación por limit/offset de los listados.
type PageRequest struct {
	Limit  int `query:"limit" validate:"min=0,max=100"`
	Offset int `query:"offset" validate:"min=0"`
}

// DefaultPage normaliza la página: limit 20 si no viene, recortado a MaxPageLimit; offset ≥ 0.
func (p *PageRequest) DefaultPage() {
	switch {
	case p.Limit <= 0:
		p.Limit = 20
	case p.Limit > MaxPageLimit:
		p.Limit = MaxPageLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
}

// NewPageResponse describe la página devuelta; Count es la cantidad de elementos incluidos.
func NewPageResponse(p PageRequest, count int) PageResponse {
	return PageResponse{Limit: p.Limit, Offset: p.Offset, Count: count}
}

type PageResponse struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
	Count  int `json:"count"`
}

// ErrorResponse cuerpo de error HTTP. Field indica el campo que falló la validación.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

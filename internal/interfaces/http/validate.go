package http

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// bodyValidator parsea el JSON y aplica las reglas `validate` del DTO.
type bodyValidator struct {
	v *validator.Validate
}

func newBodyValidator() *bodyValidator {
	return &bodyValidator{v: validator.New()}
}

// parse devuelve una respuesta ya escrita (y ok=false) si el cuerpo es inválido.
func (b *bodyValidator) parse(c *fiber.Ctx, out interface{}) (bool, error) {
	if err := c.BodyParser(out); err != nil {
		return false, invalidBody(c)
	}
	if err := b.v.Struct(out); err != nil {
		return false, validationError(c, err)
	}
	return true, nil
}

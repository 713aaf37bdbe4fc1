package http

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/tienda-api/internal/application/dto"
	"github.com/jhoicas/tienda-api/internal/domain"
	"github.com/jhoicas/tienda-api/pkg/logger"
)

type errorMapping struct {
	target error
	status int
	code   string
}

// El orden importa: ErrInsufficientStock antes que cualquier error genérico.
var errorMappings = []errorMapping{
	{domain.ErrEmptySale, fiber.StatusBadRequest, "EMPTY_SALE"},
	{domain.ErrInvalidDiscount, fiber.StatusBadRequest, "INVALID_DISCOUNT"},
	{domain.ErrNoOpAdjustment, fiber.StatusBadRequest, "NOOP_ADJUSTMENT"},
	{domain.ErrInvalidInput, fiber.StatusBadRequest, "VALIDATION"},
	{domain.ErrUnauthorized, fiber.StatusUnauthorized, "UNAUTHORIZED"},
	{domain.ErrForbidden, fiber.StatusForbidden, "FORBIDDEN"},
	{domain.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND"},
	{domain.ErrInsufficientStock, fiber.StatusConflict, "INSUFFICIENT_STOCK"},
	{domain.ErrProductInactive, fiber.StatusConflict, "PRODUCT_INACTIVE"},
	{domain.ErrDuplicate, fiber.StatusConflict, "DUPLICATE"},
	{domain.ErrConflict, fiber.StatusConflict, "CONFLICT"},
}

// writeError traduce un error de dominio a dto.ErrorResponse. Los no reconocidos son 500.
func writeError(c *fiber.Ctx, log *logger.Logger, err error) error {
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			return c.Status(m.status).JSON(dto.ErrorResponse{Code: m.code, Message: err.Error()})
		}
	}
	log.Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).Msg("error interno")
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "error interno"})
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
}

func invalidBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
}

// validationError responde 400 con el primer campo inválido.
func validationError(c *fiber.Ctx, err error) error {
	resp := dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		resp.Field = fe.Namespace()
		resp.Message = "campo '" + fe.Namespace() + "' no cumple la regla '" + fe.Tag() + "'"
	}
	return c.Status(fiber.StatusBadRequest).JSON(resp)
}

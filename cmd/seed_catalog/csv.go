package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/tienda-api/internal/application/dto"
)

// Columnas esperadas, en este orden:
// sku;nombre;codigo_barras;precio;costo;stock_inicial;stock_minimo
var header = []string{"sku", "nombre", "codigo_barras", "precio", "costo", "stock_inicial", "stock_minimo"}

// readCatalog lee el CSV (separador ';'). Los exportes de hojas de cálculo en Windows vienen en
// ISO-8859-1: con latin1=true se decodifican a UTF-8.
func readCatalog(r io.Reader, latin1 bool) ([]dto.CreateProductRequest, error) {
	if latin1 {
		r = transform.NewReader(r, charmap.ISO8859_1.NewDecoder())
	}
	cr := csv.NewReader(r)
	cr.Comma = ';'
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = len(header)

	first, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("leer encabezado: %w", err)
	}
	for i, h := range header {
		if !strings.EqualFold(strings.TrimSpace(first[i]), h) {
			return nil, fmt.Errorf("columna %d: se esperaba %q, llegó %q", i+1, h, first[i])
		}
	}

	var out []dto.CreateProductRequest
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("línea %d: %w", line, err)
		}
		req, err := parseRecord(rec)
		if err != nil {
			return nil, fmt.Errorf("línea %d: %w", line, err)
		}
		out = append(out, req)
	}
}

func parseRecord(rec []string) (dto.CreateProductRequest, error) {
	for i := range rec {
		rec[i] = strings.TrimSpace(rec[i])
	}
	req := dto.CreateProductRequest{SKU: rec[0], Name: rec[1], Barcode: rec[2]}
	if req.SKU == "" || req.Name == "" {
		return req, errors.New("sku y nombre son obligatorios")
	}
	price, err := parseMoney(rec[3])
	if err != nil {
		return req, fmt.Errorf("precio: %w", err)
	}
	req.Price = price
	if rec[4] != "" {
		cost, err := parseMoney(rec[4])
		if err != nil {
			return req, fmt.Errorf("costo: %w", err)
		}
		req.CostPrice = &cost
	}
	if req.InitialStock, err = parseCount(rec[5]); err != nil {
		return req, fmt.Errorf("stock_inicial: %w", err)
	}
	if req.MinStockLevel, err = parseCount(rec[6]); err != nil {
		return req, fmt.Errorf("stock_minimo: %w", err)
	}
	return req, nil
}

// parseMoney acepta coma decimal ("1500,50").
func parseMoney(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.ReplaceAll(s, ",", "."))
	if err != nil {
		return decimal.Zero, err
	}
	if d.IsNegative() {
		return decimal.Zero, errors.New("no puede ser negativo")
	}
	return d, nil
}

func parseCount(s string) (int64, error) {
	if s == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, errors.New("no puede ser negativo")
	}
	return n, nil
}

// Package pdf genera el comprobante de venta en PDF.
//
// Layout (ancho A4, una columna):
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Nombre de la tienda  │  N° Venta + Fecha + Pago     │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Cant | Producto | P.Unit | Desc. | Total            │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTALES: Subtotal / Descuento / TOTAL                      │
//	│  FOOTER: QR con el número de venta                          │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/jhoicas/tienda-api/internal/application/dto"
	"github.com/jhoicas/tienda-api/internal/application/sales"
)

var _ sales.ReceiptGenerator = (*MarotoReceiptGenerator)(nil)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 110, Blue: 60}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

// MarotoReceiptGenerator implementa sales.ReceiptGenerator usando Maroto v2.
type MarotoReceiptGenerator struct {
	printer *message.Printer
}

// NewMarotoReceiptGenerator construye el generador. Los montos se formatean según lang.
func NewMarotoReceiptGenerator(lang language.Tag) *MarotoReceiptGenerator {
	return &MarotoReceiptGenerator{printer: message.NewPrinter(lang)}
}

// GenerateSaleReceipt genera el PDF y devuelve sus bytes.
func (g *MarotoReceiptGenerator) GenerateSaleReceipt(_ context.Context, storeName string, sale *dto.SaleResponse) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Comprobante "+sale.SaleNumber, true).
		WithAuthor(storeName, true).
		Build()

	m := maroto.New(cfg)
	m.AddRows(g.headerRow(storeName, sale))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(tableHeaderRow())
	m.AddRows(g.itemRows(sale.Items)...)
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(g.totalsRow(sale))
	m.AddRows(line.NewRow(3))
	m.AddRows(footerRow(sale))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func (g *MarotoReceiptGenerator) headerRow(storeName string, sale *dto.SaleResponse) core.Row {
	return row.New(18).Add(
		col.New(7).Add(
			text.New(storeName, props.Text{Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1}),
			text.New("Cajero: "+sale.CashierID, props.Text{Size: 8, Top: 9, Color: colorGray}),
		),
		col.New(5).Add(
			text.New("COMPROBANTE DE VENTA", props.Text{Style: fontstyle.Bold, Size: 8, Align: align.Right, Color: colorPrimary, Top: 1}),
			text.New(sale.SaleNumber, props.Text{Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 6}),
			text.New(fmt.Sprintf("Fecha: %s   |   Pago: %s", sale.CreatedAt.Format("02/01/2006 15:04"), sale.PaymentMethod),
				props.Text{Size: 8, Align: align.Right, Top: 13, Color: colorGray}),
		),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{Style: fontstyle.Bold, Size: 8, Align: a, Top: 2, Left: 1, Right: 1}))
	}
	return row.New(8).Add(
		h("Cant.", 1, align.Center),
		h("Producto", 5, align.Left),
		h("Precio Unit.", 2, align.Right),
		h("Desc.", 2, align.Right),
		h("Total", 2, align.Right),
	)
}

func (g *MarotoReceiptGenerator) itemRows(items []dto.SaleItemResponse) []core.Row {
	rows := make([]core.Row, 0, len(items))
	for _, it := range items {
		rows = append(rows, row.New(7).Add(
			col.New(1).Add(text.New(fmt.Sprintf("%d", it.Quantity), props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(5).Add(text.New(it.ProductName, props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(2).Add(text.New(g.money(it.UnitPrice), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(2).Add(text.New(g.money(it.DiscountAmount), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(2).Add(text.New(g.money(it.LineTotal), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
		))
	}
	return rows
}

func (g *MarotoReceiptGenerator) totalsRow(sale *dto.SaleResponse) core.Row {
	label := func(s string, top float64, bold bool) core.Component {
		p := props.Text{Size: 9, Align: align.Right, Right: 2, Top: top}
		if bold {
			p.Style = fontstyle.Bold
			p.Color = colorPrimary
		}
		return text.New(s, p)
	}
	return row.New(20).Add(
		col.New(6),
		col.New(3).Add(
			label("Subtotal:", 1, false),
			label("Descuento:", 6, false),
			label("TOTAL:", 12, true),
		),
		col.New(3).Add(
			label(g.money(sale.TotalAmount), 1, false),
			label("-"+g.money(sale.DiscountAmount), 6, false),
			label(g.money(sale.FinalAmount), 12, true),
		),
	)
}

func footerRow(sale *dto.SaleResponse) core.Row {
	return row.New(35).Add(
		col.New(3).Add(code.NewQr(sale.SaleNumber, props.Rect{Percent: 95, Center: true})),
		col.New(9).Add(
			text.New("Gracias por su compra.", props.Text{Style: fontstyle.Bold, Size: 10, Top: 6, Left: 3, Color: colorPrimary}),
			text.New("Presente este código para cambios o devoluciones.", props.Text{Size: 8, Top: 14, Left: 3, Color: colorGray}),
		),
	)
}

// money formatea con separadores del idioma configurado y dos decimales.
func (g *MarotoReceiptGenerator) money(d decimal.Decimal) string {
	return "$" + g.printer.Sprint(number.Decimal(d.Round(2).InexactFloat64(), number.Scale(2)))
}

// Package pdf genera el reporte de sugerencias de reorden.
//
// Layout de la página A4:
//
//	┌──────────────────────────────────────────────────────────────┐
//	│  HEADER: título + fecha de generación                        │
//	│  TABLA: Artículo | Stock | Vel./día | P. reorden | Sugerido | Cobertura │
//	│  FOOTER: total de artículos y unidades sugeridas              │
//	└──────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"time"

	maroto "github.com/johnfercher/maroto/v2"
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
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/jhoicas/stock-alerts/internal/application/dto"
	"github.com/jhoicas/stock-alerts/internal/application/inventory"
)

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorDanger  = &props.Color{Red: 176, Green: 32, Blue: 32}
)

var _ inventory.ReportGenerator = (*ReorderReportGenerator)(nil)

// ReorderReportGenerator implementa inventory.ReportGenerator usando Maroto v2.
type ReorderReportGenerator struct {
	title   string
	now     func() time.Time
	printer *message.Printer
}

// NewReorderReportGenerator construye el generador. title aparece en el encabezado (nombre de la app).
func NewReorderReportGenerator(title string) *ReorderReportGenerator {
	if title == "" {
		title = "Inventario"
	}
	return &ReorderReportGenerator{
		title:   title,
		now:     time.Now,
		printer: message.NewPrinter(language.Spanish),
	}
}

// GenerateReorderReport genera el PDF y devuelve sus bytes. Las filas respetan el orden recibido.
func (g *ReorderReportGenerator) GenerateReorderReport(_ context.Context, suggestions []dto.ReorderSuggestionDTO) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Sugerencias de reorden", true).
		WithAuthor(g.title, true).
		Build()

	m := maroto.New(cfg)
	m.AddRows(g.headerRow())
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(tableHeaderRow())

	total := 0
	for _, s := range suggestions {
		m.AddRows(g.detailRow(s))
		total += s.SuggestedReorderQuantity
	}
	if len(suggestions) == 0 {
		m.AddRows(row.New(10).Add(col.New(12).Add(text.New("Ningún artículo requiere reorden.", props.Text{
			Size: 9, Top: 3, Align: align.Center, Color: colorGray,
		}))))
	}

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(g.footerRow(len(suggestions), total))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

func (g *ReorderReportGenerator) headerRow() core.Row {
	return row.New(16).Add(
		col.New(8).Add(
			text.New(g.title, props.Text{Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1}),
			text.New("Sugerencias de reorden", props.Text{Size: 9, Top: 9, Color: colorGray}),
		),
		col.New(4).Add(
			text.New("Generado: "+g.now().Format("02/01/2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 3, Color: colorGray,
			}),
		),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a, Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Artículo", 4, align.Left),
		h("Stock", 1, align.Right),
		h("Vel./día", 2, align.Right),
		h("P. reorden", 2, align.Right),
		h("Sugerido", 2, align.Right),
		h("Cob.", 1, align.Right),
	)
}

func (g *ReorderReportGenerator) detailRow(s dto.ReorderSuggestionDTO) core.Row {
	cell := func(v string, size int, a align.Type, c *props.Color) core.Col {
		return col.New(size).Add(text.New(v, props.Text{Size: 8, Align: a, Top: 1, Left: 1, Right: 1, Color: c}))
	}
	var stockColor *props.Color
	if s.CurrentStock == 0 {
		stockColor = colorDanger
	}
	coverage, _ := s.CoverageRatio.Float64()
	velocity, _ := s.DailyVelocity.Float64()
	return row.New(7).Add(
		cell(s.ItemName, 4, align.Left, nil),
		cell(g.printer.Sprintf("%d", s.CurrentStock), 1, align.Right, stockColor),
		cell(g.printer.Sprintf("%.2f", velocity), 2, align.Right, nil),
		cell(g.printer.Sprintf("%d", s.ReorderPoint), 2, align.Right, nil),
		cell(g.printer.Sprintf("%d", s.SuggestedReorderQuantity), 2, align.Right, nil),
		cell(g.printer.Sprintf("%.0f%%", coverage*100), 1, align.Right, nil),
	)
}

func (g *ReorderReportGenerator) footerRow(items, units int) core.Row {
	return row.New(10).Add(
		col.New(12).Add(text.New(
			g.printer.Sprintf("%d artículos · %d unidades sugeridas", items, units),
			props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Top: 3},
		)),
	)
}

// Package charts renders the dashboard charts as PNG images with gonum/plot.
package charts

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"math"
	"sort"
	"strings"
	"time"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"keksindex/internal/recipes"
	"keksindex/pkg/contracts/domain"
)

// ErrUnknownKind is returned by ParseKind for unsupported chart names.
var ErrUnknownKind = errors.New("unknown chart kind")

// Kind names one of the dashboard charts.
type Kind string

const (
	KindProportions Kind = "proportions"
	KindIngredients Kind = "ingredients"
	KindComposite   Kind = "composite"
)

// ParseKind validates a chart name.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case KindProportions, KindIngredients, KindComposite:
		return k, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
}

// EmptyNotice is the title suffix of a chart with no data.
const EmptyNotice = "keine Daten"

// Default image size in pixels.
const (
	DefaultWidth  = 900
	DefaultHeight = 500
)

// Options controls the rendered image.
type Options struct {
	Width  int // pixels
	Height int // pixels
	// Bounds fixes the y range so line charts of one dashboard share an axis.
	Bounds *domain.Bounds
}

func (o Options) size() (vg.Length, vg.Length) {
	w, h := o.Width, o.Height
	if w <= 0 {
		w = DefaultWidth
	}
	if h <= 0 {
		h = DefaultHeight
	}
	// vgimg renders at 96 dpi
	return vg.Length(w) * vg.Inch / 96, vg.Length(h) * vg.Inch / 96
}

// Proportions renders the quantity share of every recipe line as a coloured bar.
func Proportions(w io.Writer, r domain.Recipe, opts Options) error {
	p := newPlot(fmt.Sprintf("%s: Zutatenanteile", r.Name), "Zutat", "Anteil (%)")

	props := recipes.Proportions(r)
	labels := make([]string, len(props))
	for i, prop := range props {
		labels[i] = prop.Ingredient

		bars, err := plotter.NewBarChart(plotter.Values{prop.Share * 100}, vg.Points(20))
		if err != nil {
			return fmt.Errorf("failed to build bar for %s: %w", prop.Ingredient, err)
		}
		bars.XMin = float64(i)
		bars.Color = parseHex(prop.Color)
		bars.LineStyle.Width = vg.Length(0)
		p.Add(bars)
	}

	if len(props) > 0 {
		p.NominalX(labels...)
		p.X.Tick.Label.Rotation = math.Pi / 6
		p.X.Tick.Label.XAlign = draw.XRight
		p.X.Tick.Label.YAlign = draw.YCenter
	}
	p.Y.Min = 0

	return save(w, p, opts)
}

// Ingredients renders one line per ingredient, coloured like the proportion chart.
func Ingredients(w io.Writer, r domain.Recipe, region string, points []domain.IngredientPoint, opts Options) error {
	p := newPlot(title(r.Name, region, "Preisindizes der Zutaten", len(points) == 0), "Monat", "Index (2015 = 100)")
	p.X.Tick.Marker = plot.TimeTicks{Format: "2006-01"}

	byIngredient := make(map[string]plotter.XYs)
	var order []string
	for _, pt := range points {
		if _, ok := byIngredient[pt.Ingredient]; !ok {
			order = append(order, pt.Ingredient)
		}
		byIngredient[pt.Ingredient] = append(byIngredient[pt.Ingredient], plotter.XY{X: unix(pt.Date), Y: pt.Value})
	}

	colors := recipes.ColorMap(r)
	for _, name := range order {
		xys := byIngredient[name]
		sort.SliceStable(xys, func(i, j int) bool { return xys[i].X < xys[j].X })

		line, err := plotter.NewLine(xys)
		if err != nil {
			return fmt.Errorf("failed to build line for %s: %w", name, err)
		}
		line.Color = parseHex(colors[name])
		line.Width = vg.Points(1.5)
		p.Add(line)
		p.Legend.Add(name, line)
	}
	p.Legend.Top = true

	applyBounds(p, opts.Bounds)
	return save(w, p, opts)
}

// Composite renders the weighted recipe index as a single line.
func Composite(w io.Writer, recipeName, region string, points []domain.CompositePoint, opts Options) error {
	p := newPlot(title(recipeName, region, "Rezeptindex", len(points) == 0), "Monat", "Index (2015 = 100)")
	p.X.Tick.Marker = plot.TimeTicks{Format: "2006-01"}

	if len(points) > 0 {
		xys := make(plotter.XYs, len(points))
		for i, pt := range points {
			xys[i] = plotter.XY{X: unix(pt.Date), Y: pt.Value}
		}
		line, err := plotter.NewLine(xys)
		if err != nil {
			return fmt.Errorf("failed to build recipe index line: %w", err)
		}
		line.Color = parseHex(recipes.CompositeColor)
		line.Width = vg.Points(2.5)
		p.Add(line)
	}

	applyBounds(p, opts.Bounds)
	return save(w, p, opts)
}

func newPlot(titleText, x, y string) *plot.Plot {
	p := plot.New()
	p.Title.Text = titleText
	p.Title.TextStyle.Font.Size = vg.Points(14)
	p.X.Label.Text = x
	p.Y.Label.Text = y
	p.Add(plotter.NewGrid())
	return p
}

func title(recipe, region, what string, empty bool) string {
	t := fmt.Sprintf("%s: %s (%s)", recipe, what, region)
	if empty {
		t += " - " + EmptyNotice
	}
	return t
}

func applyBounds(p *plot.Plot, b *domain.Bounds) {
	if b == nil || b.Max < b.Min {
		return
	}
	pad := (b.Max - b.Min) * 0.05
	if pad == 0 {
		pad = 1
	}
	p.Y.Min = b.Min - pad
	p.Y.Max = b.Max + pad
}

func save(w io.Writer, p *plot.Plot, opts Options) error {
	width, height := opts.size()
	wt, err := p.WriterTo(width, height, "png")
	if err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write chart: %w", err)
	}
	return nil
}

func unix(t time.Time) float64 {
	return float64(t.Unix())
}

// parseHex converts #rrggbb to a colour; malformed input yields black.
func parseHex(s string) color.Color {
	var r, g, b uint8
	if _, err := fmt.Sscanf(s, "#%02x%02x%02x", &r, &g, &b); err != nil {
		return color.Black
	}
	return color.RGBA{R: r, G: g, B: b, A: 255}
}

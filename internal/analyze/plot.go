package analyze

import (
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// RenderScatter writes a log-log predicted-vs-actual scatter with a y=x
// reference line to path (format chosen by extension, typically .png).
// Non-positive points cannot appear on log axes and are dropped from the
// drawing only; the statistics in Report still include them.
func RenderScatter(rep Report, path string) error {
	var xys plotter.XYs
	minV, maxV := 0.0, 0.0
	for _, pt := range rep.Points {
		if pt.Predicted <= 0 || pt.Actual <= 0 {
			continue
		}
		xys = append(xys, plotter.XY{X: pt.Predicted, Y: pt.Actual})
		if minV == 0 || pt.Predicted < minV {
			minV = pt.Predicted
		}
		if pt.Actual < minV {
			minV = pt.Actual
		}
		if pt.Predicted > maxV {
			maxV = pt.Predicted
		}
		if pt.Actual > maxV {
			maxV = pt.Actual
		}
	}
	if len(xys) == 0 {
		return fmt.Errorf("no positive points to plot")
	}

	p := plot.New()
	p.Title.Text = "Predicted vs Actual Evictions Caused (Log Scale)"
	p.X.Label.Text = "Predicted Evictions (Ê)"
	p.Y.Label.Text = "Actual Evictions (E)"
	p.X.Scale = plot.LogScale{}
	p.Y.Scale = plot.LogScale{}
	p.X.Tick.Marker = plot.LogTicks{Prec: -1}
	p.Y.Tick.Marker = plot.LogTicks{Prec: -1}

	scatter, err := plotter.NewScatter(xys)
	if err != nil {
		return fmt.Errorf("build scatter: %w", err)
	}
	scatter.GlyphStyle.Radius = vg.Points(2)
	scatter.GlyphStyle.Color = color.RGBA{R: 70, G: 130, B: 180, A: 128}

	ident, err := plotter.NewLine(plotter.XYs{
		{X: minV, Y: minV},
		{X: maxV, Y: maxV},
	})
	if err != nil {
		return fmt.Errorf("build reference line: %w", err)
	}
	ident.LineStyle.Width = vg.Points(1.5)
	ident.LineStyle.Color = color.RGBA{R: 200, A: 255}

	p.Add(scatter, ident)
	p.Legend.Add("data", scatter)
	p.Legend.Add("y = x", ident)
	p.Legend.Top = false

	if err := p.Save(8*vg.Inch, 8*vg.Inch, path); err != nil {
		return fmt.Errorf("save plot: %w", err)
	}
	return nil
}

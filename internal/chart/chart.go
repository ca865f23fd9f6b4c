package chart

import (
	"fmt"
	"io"
	"iter"
	"math"
	"strconv"

	"blackqueen/internal/game"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// Format selects the image encoding.
type Format string

const (
	PNG Format = "png"
	SVG Format = "svg"
)

// ParseFormat accepts "png" or "svg".
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case PNG, SVG:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported chart format %q", s)
	}
}

// ContentType is the MIME type of the encoded image.
func (f Format) ContentType() string {
	if f == SVG {
		return "image/svg+xml"
	}
	return "image/png"
}

func (f Format) provider() chart.RendererProvider {
	if f == SVG {
		return chart.SVG
	}
	return chart.PNG
}

// Palette colours the charts. Values are hex strings without the leading '#'.
type Palette struct {
	Background string
	Text       string
	Grid       string
	Series     []string // Cycled per player
}

// DefaultPalette is a felt-table theme.
var DefaultPalette = Palette{
	Background: "f7f5ef",
	Text:       "1f2a24",
	Grid:       "c9c3b4",
	Series: []string{
		"1b5e20", "b71c1c", "0d47a1", "f9a825", "4a148c",
		"006064", "e65100", "3e2723", "880e4f", "33691e",
	},
}

// Renderer draws score charts at a fixed size.
type Renderer struct {
	Width   int
	Height  int
	Palette Palette
}

// NewRenderer returns a renderer using DefaultPalette.
func NewRenderer(width, height int) Renderer {
	return Renderer{Width: width, Height: height, Palette: DefaultPalette}
}

func (r Renderer) color(hex string) drawing.Color {
	return drawing.ColorFromHex(hex)
}

func (r Renderer) seriesColor(i int) drawing.Color {
	if len(r.Palette.Series) == 0 {
		return r.color(r.Palette.Text)
	}
	return r.color(r.Palette.Series[i%len(r.Palette.Series)])
}

// Totals draws one bar per player, in standings order.
func (r Renderer) Totals(w io.Writer, standings []game.Standing, f Format) error {
	if len(standings) == 0 {
		return r.placeholder(w, f, "Total Points", "No players yet")
	}

	bars := make([]chart.Value, len(standings))
	values := make([]float64, len(standings))
	for i, s := range standings {
		c := r.seriesColor(i)
		values[i] = float64(s.Total)
		bars[i] = chart.Value{
			Label: s.Player,
			Value: float64(s.Total),
			Style: chart.Style{FillColor: c, StrokeColor: c},
		}
	}
	lo, hi := paddedRange(values)

	graph := chart.BarChart{
		Title:      "Total Points",
		TitleStyle: chart.Style{FontColor: r.color(r.Palette.Text)},
		Width:      r.Width,
		Height:     r.Height,
		BarWidth:   40,
		BarSpacing: 20,
		Background: chart.Style{
			FillColor: r.color(r.Palette.Background),
			Padding:   chart.Box{Top: 40, Left: 20, Right: 20, Bottom: 20},
		},
		Canvas: chart.Style{
			FillColor: r.color(r.Palette.Background),
		},
		XAxis: chart.Style{
			FontColor: r.color(r.Palette.Text),
		},
		YAxis: chart.YAxis{
			Style: chart.Style{
				FontColor: r.color(r.Palette.Text),
			},
			ValueFormatter: intFormatter,
			Range:          &chart.ContinuousRange{Min: lo, Max: hi},
		},
		UseBaseValue: true,
		BaseValue:    0,
		Bars:         bars,
	}
	return graph.Render(f.provider(), w)
}

// History draws each player's running total per round. Every line starts at
// round 0 with 0 points.
func (r Renderer) History(w io.Writer, histories iter.Seq2[string, iter.Seq2[int, int]], f Format) error {
	var (
		series []chart.Series
		all    []float64
		rounds int
	)
	for name, hist := range histories {
		xs := []float64{0}
		ys := []float64{0}
		for round, total := range hist {
			xs = append(xs, float64(round))
			ys = append(ys, float64(total))
			rounds = max(rounds, round)
		}
		all = append(all, ys...)

		c := r.seriesColor(len(series))
		series = append(series, chart.ContinuousSeries{
			Name:    name,
			XValues: xs,
			YValues: ys,
			Style: chart.Style{
				StrokeColor: c,
				StrokeWidth: 2,
				DotColor:    c,
				DotWidth:    4,
			},
		})
	}
	if rounds == 0 {
		return r.placeholder(w, f, "Score Progression", "No rounds yet")
	}

	lo, hi := paddedRange(all)
	graph := chart.Chart{
		Title:      "Score Progression",
		TitleStyle: chart.Style{FontColor: r.color(r.Palette.Text)},
		Width:      r.Width,
		Height:     r.Height,
		Background: chart.Style{
			FillColor: r.color(r.Palette.Background),
			Padding:   chart.Box{Top: 40, Left: 20, Right: 20, Bottom: 20},
		},
		Canvas: chart.Style{
			FillColor: r.color(r.Palette.Background),
		},
		XAxis: chart.XAxis{
			Name:           "Round",
			NameStyle:      chart.Style{FontColor: r.color(r.Palette.Text)},
			Style:          chart.Style{FontColor: r.color(r.Palette.Text)},
			ValueFormatter: intFormatter,
			Range:          &chart.ContinuousRange{Min: 0, Max: float64(rounds)},
			Ticks:          roundTicks(rounds),
		},
		YAxis: chart.YAxis{
			Name:           "Total Points",
			NameStyle:      chart.Style{FontColor: r.color(r.Palette.Text)},
			Style:          chart.Style{FontColor: r.color(r.Palette.Text)},
			ValueFormatter: intFormatter,
			Range:          &chart.ContinuousRange{Min: lo, Max: hi},
			GridMajorStyle: chart.Style{StrokeColor: r.color(r.Palette.Grid), StrokeWidth: 1},
		},
		Series: series,
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}
	return graph.Render(f.provider(), w)
}

// placeholder renders a blank canvas with a centred message.
func (r Renderer) placeholder(w io.Writer, f Format, title, msg string) error {
	bg := r.color(r.Palette.Background)
	graph := chart.Chart{
		Title:      title,
		TitleStyle: chart.Style{FontColor: r.color(r.Palette.Text)},
		Width:      r.Width,
		Height:     r.Height,
		Background: chart.Style{FillColor: bg},
		Canvas:     chart.Style{FillColor: bg},
		XAxis: chart.XAxis{
			Style: chart.Style{Hidden: true},
			Range: &chart.ContinuousRange{Min: 0, Max: 1},
		},
		YAxis: chart.YAxis{
			Style: chart.Style{Hidden: true},
			Range: &chart.ContinuousRange{Min: -1, Max: 1},
		},
		// go-chart refuses to render without a series; draw an invisible one.
		Series: []chart.Series{chart.ContinuousSeries{
			XValues: []float64{0, 1},
			YValues: []float64{0, 0},
			Style:   chart.Style{StrokeColor: bg, StrokeWidth: 1},
		}},
		Elements: []chart.Renderable{
			func(rn chart.Renderer, cb chart.Box, defaults chart.Style) {
				rn.SetFont(defaults.Font)
				rn.SetFontColor(r.color(r.Palette.Text))
				rn.SetFontSize(14.0)
				tb := rn.MeasureText(msg)
				x := (r.Width - tb.Width()) / 2
				y := (r.Height + tb.Height()) / 2
				rn.Text(msg, x, y)
			},
		},
	}
	return graph.Render(f.provider(), w)
}

// paddedRange spans values and zero, with some headroom so bars and lines
// never touch the frame.
func paddedRange(values []float64) (float64, float64) {
	lo, hi := 0.0, 0.0
	for _, v := range values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if lo == hi {
		return -100, 100
	}
	pad := (hi - lo) * 0.1
	if lo < 0 {
		lo -= pad
	}
	hi += pad
	return lo, hi
}

func roundTicks(rounds int) []chart.Tick {
	step := 1
	for rounds/step > 20 {
		step *= 2
	}
	ticks := make([]chart.Tick, 0, rounds/step+1)
	for i := 0; i <= rounds; i += step {
		ticks = append(ticks, chart.Tick{Value: float64(i), Label: strconv.Itoa(i)})
	}
	return ticks
}

func intFormatter(v interface{}) string {
	if f, ok := v.(float64); ok {
		return strconv.Itoa(int(math.Round(f)))
	}
	return ""
}

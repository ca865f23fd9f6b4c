package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"blackqueen/internal/chart"
	"blackqueen/internal/config"
	"blackqueen/internal/export"
	"blackqueen/internal/game"
	"blackqueen/internal/scoresheet"

	"github.com/urfave/cli/v2"
)

func newTallyCommand() *cli.Command {
	return &cli.Command{
		Name:      "tally",
		Usage:     "score a game recorded in a YAML score sheet",
		ArgsUsage: "SHEET.yaml",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "xlsx", Usage: "also write the score table to this workbook"},
			&cli.StringFlag{Name: "totals-chart", Usage: "write the totals bar chart to this .png or .svg file"},
			&cli.StringFlag{Name: "history-chart", Usage: "write the cumulative history chart to this .png or .svg file"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return cli.Exit("expected exactly one score sheet", 2)
			}
			chartCfg, err := config.LoadChart()
			if err != nil {
				return err
			}
			var charts []chartOutput
			for _, kind := range []string{"totals", "history"} {
				path := c.String(kind + "-chart")
				if path == "" {
					continue
				}
				format, err := chartFormat(path)
				if err != nil {
					return err
				}
				charts = append(charts, chartOutput{kind: kind, path: path, format: format})
			}

			s, err := tally(c.Args().First())
			if err != nil {
				return err
			}
			if err := printTable(c.App.Writer, s); err != nil {
				return err
			}

			if path := c.String("xlsx"); path != "" {
				if err := writeFile(path, func(w io.Writer) error { return export.WriteXLSX(w, s) }); err != nil {
					return err
				}
			}
			renderer := chart.NewRenderer(chartCfg.Width, chartCfg.Height)
			for _, out := range charts {
				if err := writeFile(out.path, func(w io.Writer) error {
					if out.kind == "totals" {
						return renderer.Totals(w, s.Summary().Standings, out.format)
					}
					return renderer.History(w, s.Histories(), out.format)
				}); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

type chartOutput struct {
	kind   string // totals|history
	path   string
	format chart.Format
}

// tally replays the sheet at path into a fresh session.
func tally(path string) (*game.Session, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheet, err := scoresheet.Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	s := game.NewSession(nil)
	if err := sheet.Replay(s); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

func printTable(out io.Writer, s *game.Session) error {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
	roster := s.Roster()

	fmt.Fprintf(tw, "Round\t%s\t\n", strings.Join(roster, "\t"))
	for _, rec := range s.Table() {
		cells := make([]string, len(roster))
		for i, name := range roster {
			if d := rec.Delta(name); d != 0 {
				cells[i] = fmt.Sprintf("%+d", d)
			} else {
				cells[i] = "0"
			}
		}
		fmt.Fprintf(tw, "%d\t%s\t\n", rec.Round, strings.Join(cells, "\t"))
	}
	fmt.Fprintln(tw, "\t")

	summary := s.Summary()
	fmt.Fprintln(tw, "Player\tTotal Points\t")
	for _, st := range summary.Standings {
		fmt.Fprintf(tw, "%s\t%d\t\n", st.Player, st.Total)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if summary.Rounds > 0 {
		fmt.Fprintf(out, "\nCurrent Leader: %s\n", summary.Leader)
	}
	return nil
}

func chartFormat(path string) (chart.Format, error) {
	i := strings.LastIndexByte(path, '.')
	if i < 0 {
		return "", fmt.Errorf("%s: missing .png or .svg extension", path)
	}
	return chart.ParseFormat(path[i+1:])
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

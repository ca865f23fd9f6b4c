package export

import (
	"fmt"
	"io"
	"strings"

	"blackqueen/internal/game"

	"github.com/xuri/excelize/v2"
)

const (
	RoundsSheet = "Rounds"
	TotalsSheet = "Totals"
)

// WriteXLSX writes the score table and the standings of s as an Excel workbook.
func WriteXLSX(w io.Writer, s *game.Session) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), RoundsSheet); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}
	if err := writeRounds(f, s); err != nil {
		return err
	}

	if _, err := f.NewSheet(TotalsSheet); err != nil {
		return fmt.Errorf("failed to create %s sheet: %w", TotalsSheet, err)
	}
	if err := writeTotals(f, s.Summary()); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func writeRounds(f *excelize.File, s *game.Session) error {
	roster := s.Roster()

	header := []interface{}{"Round"}
	for _, name := range roster {
		header = append(header, name)
	}
	header = append(header, "Bidder", "Teammates", "Decks", "Bid", "Result")
	if err := setRow(f, RoundsSheet, 1, header); err != nil {
		return err
	}

	for i, rec := range s.Table() {
		row := []interface{}{rec.Round}
		for _, name := range roster {
			row = append(row, rec.Delta(name))
		}
		row = append(row,
			rec.Team.Bidder,
			strings.Join(rec.Team.Teammates, ", "),
			int(rec.DeckCount),
			rec.Bid,
			string(rec.Outcome),
		)
		if err := setRow(f, RoundsSheet, i+2, row); err != nil {
			return err
		}
	}
	return f.SetPanes(RoundsSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

func writeTotals(f *excelize.File, summary game.Summary) error {
	if err := setRow(f, TotalsSheet, 1, []interface{}{"Player", "Total Points"}); err != nil {
		return err
	}
	for i, st := range summary.Standings {
		if err := setRow(f, TotalsSheet, i+2, []interface{}{st.Player, st.Total}); err != nil {
			return err
		}
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, cells []interface{}) error {
	axis, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, axis, &cells); err != nil {
		return fmt.Errorf("failed to write %s row %d: %w", sheet, row, err)
	}
	return nil
}

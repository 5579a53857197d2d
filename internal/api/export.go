package api

import (
	"log"
	"net/http"
	"strings"

	"github.com/meur/wakfudex/internal/catalog"
	"github.com/xuri/excelize/v2"
)

const exportSheet = "Sublimations"

var exportHeader = []interface{}{
	"name", "category", "rarity", "colors", "level", "min_level", "max_level", "step",
	"description", "source", "effect", "link",
}

// handleExport writes the current filtered view, at the visitor's levels, as a spreadsheet
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	if s.catalog == nil {
		http.Error(w, s.loadError().Error(), http.StatusServiceUnavailable)
		return
	}

	f := catalog.ParseFilter(r.URL.Query())
	cards := s.catalog.Cards(f, s.visitorLevels(r), s.refs)

	book, err := s.exportBook(exportSheet, cards)
	if err != nil {
		log.Printf("Warning: export: %v", err)
		http.Error(w, "Failed to build spreadsheet", http.StatusInternalServerError)
		return
	}
	defer book.Close()

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="sublimations.xlsx"`)
	if err := book.Write(w); err != nil {
		log.Printf("Warning: export write: %v", err)
	}
}

// exportBook builds the workbook; on error the partial book is closed and nil returned
func (s *Server) exportBook(sheet string, cards []catalog.Card) (*excelize.File, error) {
	book := excelize.NewFile()
	if err := s.writeExport(book, sheet, cards); err != nil {
		book.Close()
		return nil, err
	}
	return book, nil
}

func (s *Server) writeExport(book *excelize.File, sheet string, cards []catalog.Card) error {
	if err := book.SetSheetName("Sheet1", sheet); err != nil {
		return err
	}
	// StreamWriter keeps memory flat for the whole catalog
	sw, err := book.NewStreamWriter(sheet)
	if err != nil {
		return err
	}
	if err := sw.SetRow("A1", exportHeader); err != nil {
		return err
	}

	for i, card := range cards {
		rec, _ := s.catalog.Lookup(card.Name)

		rarities := make([]string, 0, len(card.Rarities))
		for _, rb := range card.Rarities {
			rarities = append(rarities, string(rb.Tag))
		}
		colors := make([]string, 0, len(card.Colors))
		for _, cb := range card.Colors {
			colors = append(colors, string(cb.Tag))
		}
		var level interface{}
		if card.Level != nil {
			level = card.Level.Value
		}
		source := ""
		if card.Source != nil {
			source = card.Source.Name
		}

		row := []interface{}{
			card.Name, card.Category, strings.Join(rarities, " / "), strings.Join(colors, ", "),
			level, rec.MinLevel, rec.MaxLevel, rec.Step,
			card.Description, source, card.Effect, card.Link,
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := sw.SetRow(cell, row); err != nil {
			return err
		}
	}
	return sw.Flush()
}

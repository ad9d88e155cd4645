package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/yumyai/snpseek/logger"
	"github.com/yumyai/snpseek/pkg/model"
)

const (
	SheetName   = "Genotype Data"
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	DefaultReferenceLabel = "Japonica Nipponbare"
)

// ErrMissingVarietyMetadata is returned when a matrix row has no variety
// record to label it with.
var ErrMissingVarietyMetadata = errors.New("variety metadata missing")

var fixedHeaders = []any{"Variety Name", "IRIS ID", "Accession", "Subpopulation", "Data Set", "Mismatch"}

// Searcher runs one page of a genotype search.
type Searcher interface {
	Search(ctx context.Context, mode model.Mode, c model.SearchCriteria) (*model.Result, error)
}

// GenotypeExporter renders every page of a search into one spreadsheet.
type GenotypeExporter struct {
	searcher       Searcher
	referenceLabel string
}

func NewGenotypeExporter(s Searcher, referenceLabel string) *GenotypeExporter {
	if referenceLabel == "" {
		referenceLabel = DefaultReferenceLabel
	}
	return &GenotypeExporter{searcher: s, referenceLabel: referenceLabel}
}

// Bytes renders the export into memory.
func (x *GenotypeExporter) Bytes(ctx context.Context, mode model.Mode, c model.SearchCriteria, varietyIDs []string) ([]byte, error) {
	var buf bytes.Buffer
	if err := x.Render(ctx, &buf, mode, c, varietyIDs); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Render writes the workbook to w. With varietyIDs only those varieties are
// exported in a single page, otherwise every page of c is.
func (x *GenotypeExporter) Render(ctx context.Context, w io.Writer, mode model.Mode, c model.SearchCriteria, varietyIDs []string) error {
	c.VarietyIDs = varietyIDs
	first, err := x.searcher.Search(ctx, mode, c.ForPage(0))
	if err != nil {
		return fmt.Errorf("export first page: %w", err)
	}

	ref := model.SparseRow{}
	if first.ReferenceRow != nil {
		ref = *first.ReferenceRow
	}
	pages := 1
	if len(varietyIDs) == 0 && first.TotalPages != nil {
		pages = *first.TotalPages
	}

	f := excelize.NewFile()
	defer f.Close()
	sheet, err := newSheetWriter(f, ref)
	if err != nil {
		return err
	}
	if err := sheet.header(); err != nil {
		return err
	}
	if err := sheet.referenceRow(x.referenceLabel); err != nil {
		return err
	}

	rows := 0
	for page := 0; page < pages; page++ {
		res := first
		if page > 0 {
			if res, err = x.searcher.Search(ctx, mode, c.ForPage(page)); err != nil {
				return fmt.Errorf("export page %d: %w", page, err)
			}
		}
		for _, id := range res.Matrix.IDs {
			rec, ok := res.Varieties[id]
			if !ok {
				return fmt.Errorf("%w: %s", ErrMissingVarietyMetadata, id)
			}
			if err := sheet.varietyRow(rec, res.Matrix.Row(id)); err != nil {
				return err
			}
			rows++
		}
	}

	if err := sheet.sw.Flush(); err != nil {
		return fmt.Errorf("flush sheet: %w", err)
	}
	logger.Debug("Rendered genotype export",
		zap.Stringer("mode", mode),
		zap.Int("pages", pages),
		zap.Int("rows", rows),
		zap.Int("positions", len(ref)),
	)
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

type sheetWriter struct {
	sw       *excelize.StreamWriter
	ref      model.SparseRow
	mismatch int
	next     int
}

func newSheetWriter(f *excelize.File, ref model.SparseRow) (*sheetWriter, error) {
	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return nil, fmt.Errorf("name sheet: %w", err)
	}
	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Color: "FF0000"}})
	if err != nil {
		return nil, fmt.Errorf("mismatch style: %w", err)
	}
	sw, err := f.NewStreamWriter(SheetName)
	if err != nil {
		return nil, fmt.Errorf("stream writer: %w", err)
	}
	if err := sw.SetColWidth(1, 1, 24); err != nil {
		return nil, err
	}
	return &sheetWriter{sw: sw, ref: ref, mismatch: style, next: 1}, nil
}

func (s *sheetWriter) write(values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, s.next)
	if err != nil {
		return err
	}
	if err := s.sw.SetRow(cell, values); err != nil {
		return fmt.Errorf("write row %d: %w", s.next, err)
	}
	s.next++
	return nil
}

func (s *sheetWriter) header() error {
	values := append([]any{}, fixedHeaders...)
	for _, p := range s.ref {
		values = append(values, p.Key)
	}
	return s.write(values)
}

func (s *sheetWriter) referenceRow(label string) error {
	values := make([]any, len(fixedHeaders), len(fixedHeaders)+len(s.ref))
	values[0] = label
	for _, p := range s.ref {
		values = append(values, p.Call)
	}
	return s.write(values)
}

func (s *sheetWriter) varietyRow(rec model.VarietyRecord, row model.SparseRow) error {
	calls := row.Map()
	values := []any{rec.Name, rec.IrisID, rec.Accession, rec.Subpopulation, rec.VarietySet, nil}

	var total float64
	for _, p := range s.ref {
		call := calls[p.Key]
		score, scored := model.CallMismatch(call, p.Call)
		if !scored {
			values = append(values, "")
			continue
		}
		total += score
		if score > 0 {
			values = append(values, excelize.Cell{Value: call, StyleID: s.mismatch})
		} else {
			values = append(values, call)
		}
	}
	values[5] = total
	return s.write(values)
}

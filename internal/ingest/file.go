package ingest

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/cinedata/moviedash/internal/dataset"
)

// FileAdapter parses an uploaded CSV or XLSX file into a row-set.
// Within-batch exact duplicates are dropped here, before the append sink
// ever sees the batch; rows already stored are never deduplicated against.
type FileAdapter struct {
	filename string
	r        io.Reader
}

func NewFileAdapter(filename string, r io.Reader) *FileAdapter {
	return &FileAdapter{filename: filename, r: r}
}

func (a *FileAdapter) Name() string { return "file" }

func (a *FileAdapter) Produce(ctx context.Context) (dataset.RowSet, error) {
	var rs dataset.RowSet
	var err error

	switch ext := strings.ToLower(path.Ext(a.filename)); ext {
	case ".csv":
		rs, err = readCSV(a.r)
	case ".xlsx":
		rs, err = readXLSX(a.r)
	default:
		return dataset.RowSet{}, &ParseError{Filename: a.filename, Err: fmt.Errorf("unsupported extension %q", ext)}
	}
	if err != nil {
		return dataset.RowSet{}, &ParseError{Filename: a.filename, Err: err}
	}
	return rs.Dedupe(), nil
}

// readCSV parses header-row CSV into a row-set of string cells. Short rows
// pad missing cells with nil; long rows are rejected as malformed.
func readCSV(r io.Reader) (dataset.RowSet, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return dataset.RowSet{}, fmt.Errorf("read header: %w", err)
	}
	if len(header) == 0 {
		return dataset.RowSet{}, fmt.Errorf("empty header row")
	}

	rs := dataset.RowSet{Columns: header}
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return dataset.RowSet{}, fmt.Errorf("read row: %w", err)
		}
		if len(rec) > len(header) {
			return dataset.RowSet{}, fmt.Errorf("row has %d columns, header has %d", len(rec), len(header))
		}
		row := make(dataset.Record, len(header))
		for i, col := range header {
			if i < len(rec) {
				row[col] = rec[i]
			} else {
				row[col] = nil
			}
		}
		rs.Records = append(rs.Records, row)
	}
	return rs, nil
}

func readXLSX(r io.Reader) (dataset.RowSet, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return dataset.RowSet{}, fmt.Errorf("open workbook: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return dataset.RowSet{}, fmt.Errorf("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return dataset.RowSet{}, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 || len(rows[0]) == 0 {
		return dataset.RowSet{}, fmt.Errorf("sheet %q has no header row", sheets[0])
	}

	header := rows[0]
	rs := dataset.RowSet{Columns: header}
	for _, rec := range rows[1:] {
		row := make(dataset.Record, len(header))
		for i, col := range header {
			if i < len(rec) {
				row[col] = rec[i]
			} else {
				row[col] = nil
			}
		}
		rs.Records = append(rs.Records, row)
	}
	return rs, nil
}

// Package spreadsheet converts products and ingredients to and from single-sheet
// Excel workbooks.
package spreadsheet

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/xuri/excelize/v2"
)

const (
	MIMEXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	MIMEXLS  = "application/vnd.ms-excel"

	ProductsFilename    = "products.xlsx"
	IngredientsFilename = "ingredients.xlsx"
)

var (
	// ErrUnsupportedType is returned for files that are not Excel workbooks. It is
	// raised before any byte of the file is parsed.
	ErrUnsupportedType = errors.New("spreadsheet: unsupported file type")
	// ErrUnreadable is returned when the workbook cannot be parsed.
	ErrUnreadable = errors.New("spreadsheet: unreadable workbook")
)

// CheckContentType accepts the xlsx and xls media types. Parameters are ignored.
func CheckContentType(contentType string) error {
	mediaType, _, err := mime.ParseMediaType(strings.TrimSpace(contentType))
	if err != nil {
		return fmt.Errorf("%w: %q", ErrUnsupportedType, contentType)
	}
	switch mediaType {
	case MIMEXLSX, MIMEXLS:
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedType, mediaType)
	}
}

// DetectContentType sniffs the media type from the file content.
func DetectContentType(data []byte) string {
	return mimetype.Detect(data).String()
}

// ResolveContentType returns declared unless it is missing or generic, in which case
// the content is sniffed.
func ResolveContentType(declared string, data []byte) string {
	mediaType, _, err := mime.ParseMediaType(strings.TrimSpace(declared))
	if err != nil || mediaType == "" || mediaType == "application/octet-stream" {
		return DetectContentType(data)
	}
	return declared
}

// Row is one data row of a sheet, keyed by the header cell of each column.
type Row struct {
	// Number is the 1-based row number in the sheet; the header is row 1.
	Number int
	Values map[string]string
}

// Get returns the value under the first matching header. Headers compare without
// case or surrounding spaces.
func (r Row) Get(headers ...string) string {
	for _, header := range headers {
		if value, ok := r.Values[normalizeHeader(header)]; ok {
			return strings.TrimSpace(value)
		}
	}
	return ""
}

func normalizeHeader(header string) string {
	return strings.ToLower(strings.Join(strings.Fields(header), " "))
}

// ReadRows parses the first sheet of a workbook. The first row holds the headers;
// blank rows are skipped. An empty sheet yields no rows and no error.
func ReadRows(r io.Reader) ([]Row, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil
	}

	cells, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}
	if len(cells) == 0 {
		return nil, nil
	}

	headers := make([]string, len(cells[0]))
	for i, header := range cells[0] {
		headers[i] = normalizeHeader(header)
	}

	rows := make([]Row, 0, len(cells)-1)
	for i, line := range cells[1:] {
		values := make(map[string]string, len(headers))
		blank := true
		for col, header := range headers {
			if header == "" || col >= len(line) {
				continue
			}
			if strings.TrimSpace(line[col]) != "" {
				blank = false
			}
			values[header] = line[col]
		}
		if blank {
			continue
		}
		rows = append(rows, Row{Number: i + 2, Values: values})
	}
	return rows, nil
}

// writeSheet writes a single-sheet workbook with a header row.
func writeSheet(w io.Writer, sheet string, headers []string, records [][]any) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return fmt.Errorf("spreadsheet: name sheet: %w", err)
	}

	header := make([]any, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("spreadsheet: write header: %w", err)
	}

	for i, record := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("spreadsheet: locate row %d: %w", i+2, err)
		}
		record := record
		if err := f.SetSheetRow(sheet, cell, &record); err != nil {
			return fmt.Errorf("spreadsheet: write row %d: %w", i+2, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("spreadsheet: write workbook: %w", err)
	}
	return nil
}

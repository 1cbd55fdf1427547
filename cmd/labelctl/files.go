package main

import (
	"bytes"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"text/tabwriter"

	"winelabel/internal/client"
	"winelabel/internal/dto"
	"winelabel/internal/entities"
	"winelabel/internal/spreadsheet"
)

const maxSpreadsheetSize = 10 << 20

// readFile loads a local file and resolves its media type from the extension,
// sniffing the content when the extension is unknown.
func readFile(path string, limit int64) ([]byte, string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, "", err
	}
	if info.Size() > limit {
		return nil, "", fmt.Errorf("%s is larger than %d bytes", path, limit)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", err
	}
	return data, spreadsheet.ResolveContentType(mime.TypeByExtension(filepath.Ext(path)), data), nil
}

// workbookUpload prepares a spreadsheet for the import endpoints. Files that are not
// Excel workbooks are refused before anything is sent.
func workbookUpload(path string) (client.Upload, error) {
	data, contentType, err := readFile(path, maxSpreadsheetSize)
	if err != nil {
		return client.Upload{}, err
	}
	if err := spreadsheet.CheckContentType(contentType); err != nil {
		return client.Upload{}, err
	}
	return client.Upload{
		Filename:    filepath.Base(path),
		ContentType: contentType,
		Data:        bytes.NewReader(data),
	}, nil
}

// writeWorkbook creates path and hands it to export.
func writeWorkbook(path string, export func(io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return export(f)
}

func printImportResult(w io.Writer, result dto.ImportResult) {
	total := result.Created + len(result.Failures)
	fmt.Fprintf(w, "Imported %d of %d rows.\n", result.Created, total)
	printFailures(w, result.Failures)
}

func printImportReport(w io.Writer, report entities.ImportReport) {
	fmt.Fprintf(w, "Imported %d of %d rows.\n", report.Created, report.Total)
	printFailures(w, report.Failures)
}

func printFailures(w io.Writer, failures []dto.ImportFailure) {
	for _, failure := range failures {
		fmt.Fprintf(w, "  row %d: %s\n", failure.Row, failure.Error)
	}
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
}

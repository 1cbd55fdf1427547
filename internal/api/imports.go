package api

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"

	"gorm.io/gorm"

	"winelabel/internal/dto"
	applog "winelabel/internal/log"
	"winelabel/internal/spreadsheet"
)

// readUpload checks the multipart "file" field and parses its first sheet. The media
// type is checked before the workbook is opened.
func (a *API) readUpload(w http.ResponseWriter, r *http.Request) ([]spreadsheet.Row, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		applog.Debug(r.Context(), "invalid multipart upload", "error", err)
		writeJSONError(w, http.StatusBadRequest, "expected a multipart upload with a file field")
		return nil, false
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "missing file field")
		return nil, false
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		fail(w, r, err, "unable to read upload")
		return nil, false
	}

	contentType := spreadsheet.ResolveContentType(header.Header.Get("Content-Type"), data)
	if err := spreadsheet.CheckContentType(contentType); err != nil {
		applog.Debug(r.Context(), "rejected upload", "filename", header.Filename, "content_type", contentType)
		writeJSONError(w, http.StatusBadRequest, "please upload an Excel file (.xlsx or .xls)")
		return nil, false
	}

	rows, err := spreadsheet.ReadRows(bytes.NewReader(data))
	if err != nil {
		if errors.Is(err, spreadsheet.ErrUnreadable) {
			writeJSONError(w, http.StatusBadRequest, "the workbook could not be read")
			return nil, false
		}
		fail(w, r, err, "unable to read workbook")
		return nil, false
	}
	return rows, true
}

func (a *API) importProducts(w http.ResponseWriter, r *http.Request) {
	rows, ok := a.readUpload(w, r)
	if !ok {
		return
	}

	ctx := r.Context()
	userID := userIDFrom(ctx)
	inputs, rowErrs := spreadsheet.ProductInputs(rows, a.validator)
	result := dto.ImportResult{Failures: spreadsheet.Failures(rowErrs)}

	for _, row := range inputs {
		err := a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			_, err := insertProduct(tx, userID, row.Input)
			return err
		})
		if err != nil {
			result.Failures = append(result.Failures, dto.ImportFailure{Row: row.Row, Error: err.Error()})
			continue
		}
		result.Created++
	}

	finishImport(w, r, "products", result)
}

func (a *API) importIngredients(w http.ResponseWriter, r *http.Request) {
	rows, ok := a.readUpload(w, r)
	if !ok {
		return
	}

	ctx := r.Context()
	inputs, rowErrs := spreadsheet.IngredientInputs(rows, a.validator)
	result := dto.ImportResult{Failures: spreadsheet.Failures(rowErrs)}

	for _, row := range inputs {
		if _, err := insertIngredient(a.db.WithContext(ctx), row.Input); err != nil {
			result.Failures = append(result.Failures, dto.ImportFailure{Row: row.Row, Error: err.Error()})
			continue
		}
		result.Created++
	}

	finishImport(w, r, "ingredients", result)
}

func finishImport(w http.ResponseWriter, r *http.Request, entity string, result dto.ImportResult) {
	sort.Slice(result.Failures, func(i, j int) bool { return result.Failures[i].Row < result.Failures[j].Row })
	applog.Info(r.Context(), fmt.Sprintf("%s imported", entity), "created", result.Created, "failed", len(result.Failures))
	writeJSON(w, http.StatusOK, result)
}

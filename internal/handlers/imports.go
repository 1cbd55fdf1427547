package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"

	"winelabel/internal/entities"
	applog "winelabel/internal/log"
	"winelabel/internal/notify"
	"winelabel/internal/spreadsheet"
	"winelabel/internal/techsheet"
	"winelabel/internal/views/pages"
)

const (
	maxSpreadsheetSize = 10 << 20
	techSheetPath      = ingredientsPath + "/techsheet"
)

func productImportPage(summary *pages.ImportSummary) pages.ImportData {
	return pages.ImportData{
		Entity:   "products",
		Action:   productsPath + "/import",
		BackPath: productsPath,
		Columns:  spreadsheet.ProductColumns,
		Summary:  summary,
	}
}

func ingredientImportPage(summary *pages.ImportSummary) pages.ImportData {
	return pages.ImportData{
		Entity:        "ingredients",
		Action:        ingredientsPath + "/import",
		BackPath:      ingredientsPath,
		Columns:       spreadsheet.IngredientColumns,
		TechSheetPath: techSheetPath,
		Summary:       summary,
	}
}

func (h *Handlers) ProductImport(w http.ResponseWriter, r *http.Request) {
	h.renderImport(w, r, "products", productImportPage(nil), nil)
}

func (h *Handlers) IngredientImport(w http.ResponseWriter, r *http.Request) {
	h.renderImport(w, r, "ingredients", ingredientImportPage(nil), nil)
}

// ImportProducts reads an uploaded workbook and creates a product per valid row.
func (h *Handlers) ImportProducts(w http.ResponseWriter, r *http.Request) {
	rows, flash := h.readSpreadsheet(r)
	if flash != nil {
		h.renderImport(w, r, "products", productImportPage(nil), flash)
		return
	}

	valid, rowErrs := spreadsheet.ProductInputs(rows, h.validator)
	ctx, products := h.products(r)
	report := products.Import(ctx, valid)
	report.Merge(spreadsheet.Failures(rowErrs)...)
	if report.Created > 0 {
		h.forgetAppellationList(r)
	}
	h.finishImport(w, r, "products", productImportPage, report)
}

// ImportIngredients reads an uploaded workbook and creates an ingredient per valid row.
func (h *Handlers) ImportIngredients(w http.ResponseWriter, r *http.Request) {
	rows, flash := h.readSpreadsheet(r)
	if flash != nil {
		h.renderImport(w, r, "ingredients", ingredientImportPage(nil), flash)
		return
	}

	valid, rowErrs := spreadsheet.IngredientInputs(rows, h.validator)
	ctx, ingredients := h.ingredients(r)
	report := ingredients.Import(ctx, valid)
	report.Merge(spreadsheet.Failures(rowErrs)...)
	h.finishImport(w, r, "ingredients", ingredientImportPage, report)
}

// ImportTechSheet extracts the additives declared in a supplier PDF and creates them
// as ingredients.
func (h *Handlers) ImportTechSheet(w http.ResponseWriter, r *http.Request) {
	data, declared, err := readUpload(r, techsheet.MaxUploadSize)
	if err != nil {
		applog.Debug(r.Context(), "tech sheet upload rejected", "error", err)
		flash := notify.ImportFailed()
		h.renderImport(w, r, "ingredients", ingredientImportPage(nil), &flash)
		return
	}

	contentType := spreadsheet.ResolveContentType(declared, data)
	text, err := techsheet.ExtractText(data, contentType)
	if err != nil {
		flash := notify.ImportFailed()
		if errors.Is(err, techsheet.ErrUnsupportedType) {
			flash = notify.Notification{
				Title:       "Invalid file type",
				Description: "Please upload a PDF technical sheet.",
				Variant:     notify.VariantDestructive,
			}
		}
		applog.Debug(r.Context(), "tech sheet unreadable", "contentType", contentType, "error", err)
		h.renderImport(w, r, "ingredients", ingredientImportPage(nil), &flash)
		return
	}

	ctx, ingredients := h.ingredients(r)
	report := ingredients.Import(ctx, techsheet.Parse(text))
	h.finishImport(w, r, "ingredients", ingredientImportPage, report)
}

// readSpreadsheet returns the rows of the uploaded workbook, or the notification to
// show. The media type is checked before the workbook is parsed.
func (h *Handlers) readSpreadsheet(r *http.Request) ([]spreadsheet.Row, *notify.Notification) {
	data, declared, err := readUpload(r, maxSpreadsheetSize)
	if err != nil {
		applog.Debug(r.Context(), "spreadsheet upload rejected", "error", err)
		flash := notify.ImportFailed()
		return nil, &flash
	}

	contentType := spreadsheet.ResolveContentType(declared, data)
	if err := spreadsheet.CheckContentType(contentType); err != nil {
		applog.Debug(r.Context(), "unsupported spreadsheet type", "contentType", contentType)
		flash := notify.UnsupportedFile()
		return nil, &flash
	}

	rows, err := spreadsheet.ReadRows(bytes.NewReader(data))
	if err != nil {
		applog.Error(r.Context(), "failed to read spreadsheet", "error", err)
		flash := notify.ImportFailed()
		return nil, &flash
	}
	return rows, nil
}

// readUpload returns the content and declared media type of the "file" form field.
func readUpload(r *http.Request, limit int64) ([]byte, string, error) {
	if err := r.ParseMultipartForm(limit); err != nil {
		return nil, "", fmt.Errorf("parse upload: %w", err)
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, "", fmt.Errorf("read upload: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, limit+1))
	if err != nil {
		return nil, "", fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > limit {
		return nil, "", fmt.Errorf("upload exceeds %d bytes", limit)
	}
	return data, header.Header.Get("Content-Type"), nil
}

func (h *Handlers) finishImport(w http.ResponseWriter, r *http.Request, section string, page func(*pages.ImportSummary) pages.ImportData, report entities.ImportReport) {
	applog.Info(r.Context(), "import finished",
		"entity", report.Entity,
		"total", report.Total,
		"created", report.Created,
		"failed", report.Failed(),
	)
	flash := notify.Import(report)
	summary := &pages.ImportSummary{Total: report.Total, Created: report.Created, Failures: report.Failures}
	h.renderImport(w, r, section, page(summary), &flash)
}

func (h *Handlers) renderImport(w http.ResponseWriter, r *http.Request, section string, data pages.ImportData, flash *notify.Notification) {
	h.render(w, r, view{title: "Import " + data.Entity, section: section, content: pages.Import(data), flash: flash})
}

// forgetAppellationList drops the cached appellations; imported products may create
// them by name.
func (h *Handlers) forgetAppellationList(r *http.Request) {
	_, appellations := h.appellations(r)
	appellations.Forget()
}

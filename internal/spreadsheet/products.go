package spreadsheet

import (
	"io"

	"winelabel/internal/dto"
	"winelabel/internal/validation"
	"winelabel/models"
)

// ProductColumns is the fixed column order of a product export.
var ProductColumns = []string{
	"Name", "Brand", "SKU", "EAN", "Net Volume", "Alcohol", "Vintage",
	"Type", "Sugar Content", "Country", "Appellation",
}

// ExportProducts writes one "Products" sheet with a row per product.
func ExportProducts(w io.Writer, products []models.Product) error {
	records := make([][]any, 0, len(products))
	for _, p := range products {
		appellation := ""
		if p.Appellation != nil {
			appellation = p.Appellation.Name
		}
		records = append(records, []any{
			p.Name, p.Brand, p.SKUCode, p.EANGTIN, p.NetVolume, p.Alcohol, p.Vintage,
			p.Type, p.SugarContent, p.CountryOfOrigin, appellation,
		})
	}
	return writeSheet(w, "Products", ProductColumns, records)
}

// ProductInputs maps rows to create inputs. Enumerated values are matched without
// case. Rows that fail validation are returned as RowErrors instead.
func ProductInputs(rows []Row, v *validation.Validator) ([]dto.ImportRow[dto.ProductInput], []RowError) {
	result := make([]dto.ImportRow[dto.ProductInput], 0, len(rows))
	for _, row := range rows {
		input := dto.ProductInput{
			Name:            row.Get("Name", "Product Name"),
			Brand:           row.Get("Brand"),
			SKUCode:         row.Get("SKU", "SKU Code"),
			EANGTIN:         row.Get("EAN", "EAN/GTIN", "GTIN"),
			NetVolume:       row.Get("Net Volume"),
			Alcohol:         row.Get("Alcohol", "Alcohol %"),
			Vintage:         row.Get("Vintage"),
			Type:            canonicalOr(models.CanonicalProductType, row.Get("Type")),
			SugarContent:    canonicalOr(models.CanonicalSugarContent, row.Get("Sugar Content")),
			CountryOfOrigin: row.Get("Country", "Country of Origin"),
			Appellation:     row.Get("Appellation"),
		}
		result = append(result, dto.ImportRow[dto.ProductInput]{Row: row.Number, Input: input})
	}
	return partition(result, v)
}

func canonicalOr(match func(string) (string, bool), value string) string {
	if canonical, ok := match(value); ok {
		return canonical
	}
	return value
}

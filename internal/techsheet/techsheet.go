// Package techsheet reads supplier technical sheets and extracts the additives they
// declare as ingredient candidates.
package techsheet

import (
	"bytes"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/ledongthuc/pdf"

	"winelabel/internal/dto"
	"winelabel/models"
)

const MaxUploadSize = 5 << 20 // 5 MiB

var ErrUnsupportedType = errors.New("techsheet: unsupported document type")

var eNumberPattern = regexp.MustCompile(`(?i)\bE[\s-]?(\d{3,4})([a-z]?)(\s?\([iv]+\))?\b`)

// ExtractText returns the plain text of a PDF or text document.
func ExtractText(data []byte, contentType string) (string, error) {
	lower := strings.ToLower(contentType)
	switch {
	case strings.Contains(lower, "pdf"):
		return extractTextFromPDF(data)
	case strings.HasPrefix(lower, "text/"):
		return string(data), nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedType, contentType)
	}
}

func extractTextFromPDF(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("techsheet: open pdf: %w", err)
	}
	var builder strings.Builder
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("techsheet: read page %d: %w", i, err)
		}
		builder.WriteString(text)
		builder.WriteString("\n")
	}
	return builder.String(), nil
}

// Parse scans text line by line and returns one candidate per line that declares an
// E-number, keyed by its 1-based line number. Repeated E-numbers are kept once.
func Parse(text string) []dto.ImportRow[dto.IngredientInput] {
	var rows []dto.ImportRow[dto.IngredientInput]
	seen := map[string]struct{}{}

	for i, line := range strings.Split(text, "\n") {
		match := eNumberPattern.FindStringSubmatchIndex(line)
		if match == nil {
			continue
		}
		code := "E" + line[match[2]:match[3]] + strings.ToLower(line[match[4]:match[5]])
		if match[6] >= 0 {
			code += strings.ToLower(strings.TrimSpace(line[match[6]:match[7]]))
		}
		name := cleanName(line[:match[0]] + " " + line[match[1]:])
		if name == "" {
			continue
		}
		if _, ok := seen[code]; ok {
			continue
		}
		seen[code] = struct{}{}

		rows = append(rows, dto.ImportRow[dto.IngredientInput]{
			Row: i + 1,
			Input: dto.IngredientInput{
				Name:      name,
				Category:  Category(code, name),
				ENumber:   code,
				Allergens: Allergens(name),
			},
		})
	}
	return rows
}

func cleanName(s string) string {
	s = strings.NewReplacer("()", " ", "( )", " ", "\t", " ").Replace(s)
	s = strings.Join(strings.Fields(s), " ")
	s = strings.Trim(s, " -–:;,.()•*")
	return s
}

type categoryRange struct {
	from, to int
	category string
}

var categoryRanges = []categoryRange{
	{100, 199, "Colorant"},
	{200, 269, "Preservative"},
	{270, 270, "Acidifier"},
	{271, 299, "Preservative"},
	{300, 321, "Antioxidant"},
	{322, 322, "Emulsifier"},
	{325, 385, "Acidifier"},
	{400, 499, "Stabilizer"},
	{500, 599, "Acidifier"},
	{620, 640, "Flavoring"},
}

var finingKeywords = []string{"bentonite", "gelatin", "albumin", "casein", "isinglass", "pvpp", "chitosan", "fining"}

// Category infers the ingredient category from the E-number and name.
func Category(code, name string) string {
	lowerName := strings.ToLower(name)
	for _, keyword := range finingKeywords {
		if strings.Contains(lowerName, keyword) {
			return "Fining Agent"
		}
	}

	digits := strings.TrimLeft(strings.ToUpper(code), "E")
	end := 0
	for end < len(digits) && digits[end] >= '0' && digits[end] <= '9' {
		end++
	}
	number, err := strconv.Atoi(digits[:end])
	if err != nil {
		return models.DefaultIngredientCategory
	}
	for _, r := range categoryRanges {
		if number >= r.from && number <= r.to {
			return r.category
		}
	}
	return models.DefaultIngredientCategory
}

var allergenKeywords = map[string][]string{
	"sulfites": {"sulfite", "sulphite", "sulfur dioxide", "sulphur dioxide", "metabisulfite", "metabisulphite", "bisulfite", "bisulphite"},
	"eggs":     {"egg", "albumin", "lysozyme", "ovalbumin"},
	"milk":     {"milk", "casein", "lactose", "whey"},
	"fish":     {"fish", "isinglass"},
	"gluten":   {"gluten", "wheat", "barley"},
	"soy":      {"soy", "soja"},
	"nuts":     {"almond", "hazelnut", "walnut"},
}

// Allergens infers allergen tags from an ingredient name.
func Allergens(name string) []string {
	lower := strings.ToLower(name)
	var found []string
	for allergen, keywords := range allergenKeywords {
		for _, keyword := range keywords {
			if strings.Contains(lower, keyword) {
				found = append(found, allergen)
				break
			}
		}
	}
	normalized, _ := models.NormalizeAllergens(found)
	return normalized
}

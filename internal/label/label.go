// Package label projects a product label for the public, unauthenticated view and
// builds the links printed on bottles.
package label

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"winelabel/internal/dto"
)

// Missing is shown for nutrition values that were not declared.
const Missing = "-"

// View is a label ready for rendering.
type View struct {
	ID          string
	Heading     string
	Name        string
	Appellation string
	ImageURL    string
	// Style lists type, sugar content, volume and alcohol, skipping blanks.
	Style          []string
	Nutrition      []NutritionRow
	Warnings       []Warning
	Certifications []string
	Facts          []Fact
	Ingredients    []Ingredient
	Allergens      []string
}

type NutritionRow struct {
	Label    string
	Values   []string
	Indented bool
}

type Warning struct {
	Code string
	Text string
}

// Fact is a labelled line of the operator/origin summary.
type Fact struct {
	Label string
	Value string
}

type Ingredient struct {
	Name     string
	ENumber  string
	Allergen bool
}

// Build projects a fetched label. All nutrition, warning and certification values
// come from the product's own sub-records.
func Build(l dto.Label) View {
	view := View{
		ID:       l.ID,
		Heading:  strings.TrimSpace("WINE " + l.Vintage),
		Name:     strings.ToLower(l.Name),
		ImageURL: l.ImageURL,
	}
	if l.Appellation != nil {
		view.Appellation = l.Appellation.Name
	}

	alcohol := strings.TrimSpace(l.Alcohol)
	if alcohol != "" && !strings.Contains(alcohol, "%") {
		alcohol += "% vol"
	}
	for _, part := range []string{l.Type, l.SugarContent, l.NetVolume, alcohol} {
		if part = strings.TrimSpace(part); part != "" {
			view.Style = append(view.Style, part)
		}
	}

	view.Nutrition = nutritionRows(l)
	view.Warnings = warnings(l)
	view.Certifications = certifications(l)
	view.Facts = facts(l)

	seen := map[string]struct{}{}
	for _, ing := range l.Ingredients {
		item := Ingredient{Name: ing.Name, ENumber: ing.ENumber, Allergen: len(ing.Allergens) > 0}
		view.Ingredients = append(view.Ingredients, item)
		for _, allergen := range ing.Allergens {
			allergen = strings.ToLower(allergen)
			if _, ok := seen[allergen]; ok {
				continue
			}
			seen[allergen] = struct{}{}
			view.Allergens = append(view.Allergens, allergen)
		}
	}
	return view
}

func nutritionRows(l dto.Label) []NutritionRow {
	n := l.Nutrition
	value := func(get func() *float64, unit string) string {
		if n == nil {
			return Missing
		}
		return formatAmount(get(), unit)
	}
	return []NutritionRow{
		{Label: "Energy", Values: []string{
			value(func() *float64 { return n.EnergyKJ }, "kJ"),
			value(func() *float64 { return n.EnergyKcal }, "kcal"),
		}},
		{Label: "Fat", Values: []string{value(func() *float64 { return n.Fat }, "g")}},
		{Label: "of which Saturates", Values: []string{value(func() *float64 { return n.Saturates }, "g")}, Indented: true},
		{Label: "Carbohydrate", Values: []string{value(func() *float64 { return n.Carbohydrate }, "g")}},
		{Label: "of which Sugars", Values: []string{value(func() *float64 { return n.Sugars }, "g")}, Indented: true},
		{Label: "Protein", Values: []string{value(func() *float64 { return n.Protein }, "g")}},
		{Label: "Salt", Values: []string{value(func() *float64 { return n.Salt }, "g")}},
	}
}

func formatAmount(v *float64, unit string) string {
	if v == nil {
		return Missing
	}
	return strconv.FormatFloat(*v, 'f', -1, 64) + " " + unit
}

func warnings(l dto.Label) []Warning {
	c := l.Consumption
	if c == nil {
		return nil
	}
	var result []Warning
	if c.Age {
		result = append(result, Warning{Code: "18", Text: "Not for persons under the age of 18"})
	}
	if c.Pregnancy {
		result = append(result, Warning{Code: "pregnancy", Text: "Do not drink during pregnancy"})
	}
	if c.Driving {
		result = append(result, Warning{Code: "driving", Text: "Do not drink and drive"})
	}
	return result
}

func certifications(l dto.Label) []string {
	c := l.Certifications
	if c == nil {
		return nil
	}
	var marks []string
	if c.Organic {
		marks = append(marks, "BIO")
	}
	if c.Vegan {
		marks = append(marks, "VEGAN")
	}
	if c.Vegetarian {
		marks = append(marks, "VEGETARIAN")
	}
	return marks
}

func facts(l dto.Label) []Fact {
	var result []Fact
	add := func(label, value string) {
		if value = strings.TrimSpace(value); value != "" {
			result = append(result, Fact{Label: label, Value: value})
		}
	}
	if o := l.Operator; o != nil {
		role := o.Type
		if role == "" {
			role = "Operator"
		}
		add(role, strings.Join(nonEmpty(o.Name, o.Address), ", "))
		add("Information", o.AdditionalInformation)
	} else {
		add("Producer", l.Brand)
	}
	add("Country", l.CountryOfOrigin)
	return result
}

func nonEmpty(values ...string) []string {
	result := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			result = append(result, v)
		}
	}
	return result
}

// PublicLink returns the unauthenticated label URL for a product.
func PublicLink(baseURL, productID string) string {
	return strings.TrimRight(baseURL, "/") + "/l/" + url.PathEscape(productID)
}

// ShortLink returns the public short URL for a product short code.
func ShortLink(baseURL, code string) string {
	return strings.TrimRight(baseURL, "/") + "/s/" + url.PathEscape(code)
}

// QRCodeURL returns the image URL of a QR code service rendering link.
func QRCodeURL(service, link string, size int) string {
	if size <= 0 {
		size = 200
	}
	query := url.Values{}
	query.Set("size", fmt.Sprintf("%dx%d", size, size))
	query.Set("data", link)

	separator := "?"
	if strings.Contains(service, "?") {
		separator = "&"
	}
	return service + separator + query.Encode()
}

// Package notify turns operation outcomes into the messages shown to users.
package notify

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"winelabel/internal/entities"
	"winelabel/internal/validation"
)

type Variant string

const (
	VariantDefault     Variant = "default"
	VariantDestructive Variant = "destructive"
)

// Notification is a title and description pair rendered as a flash message.
type Notification struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Variant     Variant `json:"variant"`
}

func (n Notification) Destructive() bool { return n.Variant == VariantDestructive }

var pastTense = map[entities.Action]string{
	entities.ActionCreate:    "created",
	entities.ActionUpdate:    "updated",
	entities.ActionDelete:    "deleted",
	entities.ActionDuplicate: "duplicated",
}

// Mutation maps a mutation result. Failures never expose the underlying error,
// except for validation errors which name the offending fields.
func Mutation(result entities.MutationResult) Notification {
	entity := string(result.Entity)
	if result.OK() {
		verb := pastTense[result.Action]
		return Notification{
			Title:       fmt.Sprintf("%s %s", entity, verb),
			Description: fmt.Sprintf("%s has been successfully %s.", entity, verb),
			Variant:     VariantDefault,
		}
	}

	var verr *validation.Error
	if errors.As(result.Err, &verr) {
		return Validation(verr)
	}
	return Notification{
		Title:       "Error",
		Description: fmt.Sprintf("Failed to %s %s. Please try again.", result.Action, strings.ToLower(entity)),
		Variant:     VariantDestructive,
	}
}

// Validation lists the invalid fields.
func Validation(err *validation.Error) Notification {
	fields := make([]string, 0, len(err.Fields))
	for field := range err.Fields {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return Notification{
		Title:       "Invalid input",
		Description: "Please check: " + strings.Join(fields, ", ") + ".",
		Variant:     VariantDestructive,
	}
}

func PasswordMismatch() Notification {
	return Notification{
		Title:       "Error",
		Description: "Passwords do not match.",
		Variant:     VariantDestructive,
	}
}

func LoginFailed() Notification {
	return Notification{
		Title:       "Login failed",
		Description: "Invalid email or password.",
		Variant:     VariantDestructive,
	}
}

func RegistrationFailed() Notification {
	return Notification{
		Title:       "Error",
		Description: "Failed to create account. Please try again.",
		Variant:     VariantDestructive,
	}
}

func UnsupportedFile() Notification {
	return Notification{
		Title:       "Invalid file type",
		Description: "Please upload an Excel file (.xlsx or .xls).",
		Variant:     VariantDestructive,
	}
}

func ImportFailed() Notification {
	return Notification{
		Title:       "Import failed",
		Description: "The file could not be read. Please check the file and try again.",
		Variant:     VariantDestructive,
	}
}

// Import summarises a finished import batch.
func Import(report entities.ImportReport) Notification {
	noun := strings.ToLower(string(report.Entity)) + "s"
	if report.Total == 0 {
		return Notification{
			Title:       "Import complete",
			Description: fmt.Sprintf("No %s found in the file.", noun),
			Variant:     VariantDefault,
		}
	}
	n := Notification{
		Title:       "Import complete",
		Description: fmt.Sprintf("Imported %d of %d %s.", report.Created, report.Total, noun),
		Variant:     VariantDefault,
	}
	if failed := report.Failed(); failed > 0 {
		rows := "rows"
		if failed == 1 {
			rows = "row"
		}
		n.Description += fmt.Sprintf(" %d %s failed.", failed, rows)
		if report.Created == 0 {
			n.Title = "Import failed"
			n.Variant = VariantDestructive
		}
	}
	return n
}

func Exported(entity entities.Entity, filename string) Notification {
	return Notification{
		Title:       "Export successful",
		Description: fmt.Sprintf("%ss exported to %s.", entity, filename),
		Variant:     VariantDefault,
	}
}

func LinkCopied() Notification {
	return Notification{
		Title:       "QR URL copied",
		Description: "The product label URL has been copied to clipboard",
		Variant:     VariantDefault,
	}
}

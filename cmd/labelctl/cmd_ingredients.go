package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"winelabel/internal/cache"
	"winelabel/internal/entities"
	"winelabel/internal/spreadsheet"
	"winelabel/internal/techsheet"
	"winelabel/internal/validation"
)

var (
	ingredientsOutput string
	techSheetDryRun   bool
)

// ingredientsCmd groups ingredient operations
var ingredientsCmd = &cobra.Command{
	Use:   "ingredients",
	Short: "List, export and import ingredients",
}

var ingredientsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List ingredients",
	Args:  cobra.NoArgs,
	RunE:  runIngredientsList,
}

var ingredientsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export ingredients to an Excel workbook",
	Args:  cobra.NoArgs,
	RunE:  runIngredientsExport,
}

var ingredientsImportCmd = &cobra.Command{
	Use:   "import <file.xlsx>",
	Short: "Import ingredients from an Excel workbook",
	Args:  cobra.ExactArgs(1),
	RunE:  runIngredientsImport,
}

var ingredientsTechSheetCmd = &cobra.Command{
	Use:   "techsheet <file.pdf>",
	Short: "Create ingredients from a supplier technical sheet",
	Long: `Extract the additives declared in a PDF or plain text technical sheet and
create one ingredient per E-number. The category and allergens are inferred from
the E-number and the name.

With --dry-run the extracted additives are printed and nothing is created.`,
	Args: cobra.ExactArgs(1),
	RunE: runIngredientsTechSheet,
}

func init() {
	ingredientsExportCmd.Flags().StringVarP(&ingredientsOutput, "output", "o", spreadsheet.IngredientsFilename, "Workbook to write")
	ingredientsTechSheetCmd.Flags().BoolVar(&techSheetDryRun, "dry-run", false, "Print the extracted additives without creating them")
}

func runIngredientsList(cmd *cobra.Command, args []string) error {
	c, ctx, err := authorize(cmd)
	if err != nil {
		return err
	}
	ingredients, err := c.ListIngredients(ctx)
	if err != nil {
		return fmt.Errorf("list ingredients: %w", err)
	}

	tw := newTable(cmd.OutOrStdout())
	fmt.Fprintln(tw, "ID\tE-NUMBER\tNAME\tCATEGORY\tALLERGENS")
	for _, i := range ingredients {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", i.ID, i.ENumber, i.Name, i.Category, strings.Join(i.Allergens, ", "))
	}
	return tw.Flush()
}

func runIngredientsExport(cmd *cobra.Command, args []string) error {
	c, ctx, err := authorize(cmd)
	if err != nil {
		return err
	}
	ingredients, err := c.ListIngredients(ctx)
	if err != nil {
		return fmt.Errorf("list ingredients: %w", err)
	}
	err = writeWorkbook(ingredientsOutput, func(w io.Writer) error {
		return spreadsheet.ExportIngredients(w, ingredients)
	})
	if err != nil {
		return fmt.Errorf("export ingredients: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Exported %d ingredients to %s\n", len(ingredients), ingredientsOutput)
	return nil
}

func runIngredientsImport(cmd *cobra.Command, args []string) error {
	upload, err := workbookUpload(args[0])
	if err != nil {
		return err
	}
	c, ctx, err := authorize(cmd)
	if err != nil {
		return err
	}
	result, err := c.ImportIngredients(ctx, upload)
	if err != nil {
		return fmt.Errorf("import ingredients: %w", err)
	}
	printImportResult(cmd.OutOrStdout(), result)
	return nil
}

func runIngredientsTechSheet(cmd *cobra.Command, args []string) error {
	data, contentType, err := readFile(args[0], techsheet.MaxUploadSize)
	if err != nil {
		return err
	}
	text, err := techsheet.ExtractText(data, contentType)
	if err != nil {
		return err
	}
	rows := techsheet.Parse(text)
	out := cmd.OutOrStdout()
	if len(rows) == 0 {
		fmt.Fprintln(out, "No additives found.")
		return nil
	}

	if techSheetDryRun {
		tw := newTable(out)
		fmt.Fprintln(tw, "E-NUMBER\tNAME\tCATEGORY\tALLERGENS")
		for _, row := range rows {
			in := row.Input
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", in.ENumber, in.Name, in.Category, strings.Join(in.Allergens, ", "))
		}
		return tw.Flush()
	}

	c, ctx, err := authorize(cmd)
	if err != nil {
		return err
	}
	report := entities.NewIngredients(c, cache.Nop{}, validation.New()).Import(ctx, rows)
	printImportReport(out, report)
	return nil
}

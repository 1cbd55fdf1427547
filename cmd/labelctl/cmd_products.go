package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"winelabel/internal/spreadsheet"
)

var productsOutput string

// productsCmd groups product operations
var productsCmd = &cobra.Command{
	Use:   "products",
	Short: "List, export and import products",
}

var productsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List your products",
	Args:  cobra.NoArgs,
	RunE:  runProductsList,
}

var productsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export your products to an Excel workbook",
	Args:  cobra.NoArgs,
	RunE:  runProductsExport,
}

var productsImportCmd = &cobra.Command{
	Use:   "import <file.xlsx>",
	Short: "Import products from an Excel workbook",
	Long: `Upload a workbook to the backend. Each row becomes a product; rows that fail
validation are reported by row number and the others are still created.`,
	Args: cobra.ExactArgs(1),
	RunE: runProductsImport,
}

func init() {
	productsExportCmd.Flags().StringVarP(&productsOutput, "output", "o", spreadsheet.ProductsFilename, "Workbook to write")
}

func runProductsList(cmd *cobra.Command, args []string) error {
	c, ctx, err := authorize(cmd)
	if err != nil {
		return err
	}
	products, err := c.ListProducts(ctx)
	if err != nil {
		return fmt.Errorf("list products: %w", err)
	}

	tw := newTable(cmd.OutOrStdout())
	fmt.Fprintln(tw, "ID\tSKU\tNAME\tTYPE\tSHORT CODE")
	for _, p := range products {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", p.ID, p.SKUCode, p.Name, p.Type, p.ShortCode)
	}
	return tw.Flush()
}

func runProductsExport(cmd *cobra.Command, args []string) error {
	c, ctx, err := authorize(cmd)
	if err != nil {
		return err
	}
	products, err := c.ListProducts(ctx)
	if err != nil {
		return fmt.Errorf("list products: %w", err)
	}
	err = writeWorkbook(productsOutput, func(w io.Writer) error {
		return spreadsheet.ExportProducts(w, products)
	})
	if err != nil {
		return fmt.Errorf("export products: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Exported %d products to %s\n", len(products), productsOutput)
	return nil
}

func runProductsImport(cmd *cobra.Command, args []string) error {
	upload, err := workbookUpload(args[0])
	if err != nil {
		return err
	}
	c, ctx, err := authorize(cmd)
	if err != nil {
		return err
	}
	result, err := c.ImportProducts(ctx, upload)
	if err != nil {
		return fmt.Errorf("import products: %w", err)
	}
	printImportResult(cmd.OutOrStdout(), result)
	return nil
}

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"winelabel/internal/label"
)

// labelCmd prints the public label of a product
var labelCmd = &cobra.Command{
	Use:   "label <product-id>",
	Short: "Print the public label and links of a product",
	Long: `Fetch the public label of a product and print it with its public link, its
short link and the QR code image URL. No sign in is needed.`,
	Args: cobra.ExactArgs(1),
	RunE: runLabel,
}

func runLabel(cmd *cobra.Command, args []string) error {
	c, err := newClient()
	if err != nil {
		return err
	}
	l, err := c.GetLabel(commandContext(cmd), args[0])
	if err != nil {
		return fmt.Errorf("fetch label: %w", err)
	}
	view := label.Build(l)

	out := cmd.OutOrStdout()
	if view.Heading != "" {
		fmt.Fprintln(out, view.Heading)
	}
	fmt.Fprintln(out, view.Name)
	if view.Appellation != "" {
		fmt.Fprintln(out, view.Appellation)
	}
	if len(view.Style) > 0 {
		fmt.Fprintln(out, strings.Join(view.Style, " · "))
	}

	if len(view.Ingredients) > 0 {
		names := make([]string, 0, len(view.Ingredients))
		for _, i := range view.Ingredients {
			name := i.Name
			if i.Allergen {
				name = strings.ToUpper(name)
			}
			if i.ENumber != "" {
				name += " (" + i.ENumber + ")"
			}
			names = append(names, name)
		}
		fmt.Fprintf(out, "\nIngredients: %s\n", strings.Join(names, ", "))
	}
	if len(view.Allergens) > 0 {
		fmt.Fprintf(out, "Contains: %s\n", strings.Join(view.Allergens, ", "))
	}
	for _, w := range view.Warnings {
		fmt.Fprintf(out, "Warning: %s\n", w.Text)
	}

	tw := newTable(out)
	fmt.Fprintln(tw)
	public := label.PublicLink(labelCfg.PublicBaseURL, view.ID)
	fmt.Fprintf(tw, "Public link:\t%s\n", public)
	if l.ShortCode != "" {
		fmt.Fprintf(tw, "Short link:\t%s\n", label.ShortLink(labelCfg.PublicBaseURL, l.ShortCode))
	}
	if labelCfg.QRService != "" {
		fmt.Fprintf(tw, "QR code:\t%s\n", label.QRCodeURL(labelCfg.QRService, public, labelCfg.QRSize))
	}
	return tw.Flush()
}

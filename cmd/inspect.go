package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kamusis/novagen/internal/catalog"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <Component>",
	Short: "Show a catalog component and all of its variants",
	Long: `Display a catalog component's description, category, tags and the source
of every variant. Only the first variant takes part in merging.

Without an argument, list every component in catalog order.

Example:
  novagen inspect Checkbox`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}

func runInspect(_ *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	cat, err := loadCatalog(cfg)
	if err != nil {
		return err
	}

	if len(args) == 0 {
		for _, e := range cat.Entries() {
			fmt.Fprintf(stdout, "%-14s %s\n", e.Name, e.Description)
		}
		return nil
	}

	e, err := cat.Lookup(args[0])
	if err != nil {
		if s := closeNames(cat, args[0]); len(s) > 0 {
			return fmt.Errorf("%w\n  did you mean: %s", err, strings.Join(s, ", "))
		}
		return err
	}
	printEntry(stdout, e)
	return nil
}

func printEntry(w io.Writer, e catalog.Entry) {
	fmt.Fprintf(w, "\n%s\n%s\n", e.Name, strings.Repeat("─", len(e.Name)))
	fmt.Fprintf(w, "  Description: %s\n", strings.TrimSpace(e.Description))
	if e.Category != "" {
		fmt.Fprintf(w, "  Category:    %s\n", e.Category)
	}
	if len(e.Tags) > 0 {
		fmt.Fprintf(w, "  Tags:        %s\n", strings.Join(e.Tags, ", "))
	}
	for i, v := range e.Variants {
		label := fmt.Sprintf("Variant %d", i+1)
		if i == 0 {
			label += " (merged)"
		}
		fmt.Fprintf(w, "\n  %s:\n", label)
		for _, line := range strings.Split(strings.TrimRight(v.Code, "\n"), "\n") {
			fmt.Fprintf(w, "    %s\n", line)
		}
	}
}

// closeNames returns catalog names that match arg case-insensitively or
// contain it.
func closeNames(cat *catalog.Catalog, arg string) []string {
	needle := strings.ToLower(strings.TrimSpace(arg))
	if needle == "" {
		return nil
	}
	var out []string
	for _, n := range cat.Names() {
		if strings.Contains(strings.ToLower(n), needle) {
			out = append(out, n)
		}
	}
	return out
}

package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kamusis/novagen/internal/assembler"
	"github.com/kamusis/novagen/internal/merge"
)

var (
	flagMergeExport   string
	flagMergeStrategy string
	flagMergeQuery    string
)

var mergeCmd = &cobra.Command{
	Use:   "merge <Component...>",
	Short: "Merge the first variants of named components",
	Long: `Merge the first variant of each named catalog component, bypassing
retrieval and the cache.

Strategies:
  template    consolidated imports, bodies stacked in the merge template
  layout      bodies arranged in a form, profile or generic layout
  generative  the configured generative model, falling back to fallback_strategy

Example:
  novagen merge Input Checkbox Button --export LoginForm --strategy layout`,
	Args: cobra.MinimumNArgs(1),
	RunE: runMerge,
}

func init() {
	mergeCmd.Flags().StringVar(&flagMergeExport, "export", "", "Export function name (default derived from --query, else Generated)")
	mergeCmd.Flags().StringVar(&flagMergeStrategy, "strategy", "", "template, layout or generative (default merge_strategy)")
	mergeCmd.Flags().StringVar(&flagMergeQuery, "query", "", "Request text passed to the generative model")
	rootCmd.AddCommand(mergeCmd)
}

func runMerge(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	defer s.Close()

	snippets, err := s.comps.Catalog.Snippets(args)
	if err != nil {
		return err
	}
	export := mergeExportName(flagMergeExport, flagMergeQuery)

	strategy := flagMergeStrategy
	if strategy == "" {
		strategy = s.cfg.MergeStrategy
	}
	if strings.EqualFold(strings.TrimSpace(strategy), "generative") {
		query := flagMergeQuery
		if query == "" {
			query = strings.Join(args, " ")
		}
		res := s.comps.Generative.Merge(cmd.Context(), snippets, query, export)
		if res.Fallback {
			printWarn("", fmt.Sprintf("generative merge unavailable, used %s: %v", s.cfg.FallbackStrategy, res.Err))
		}
		return writeCode(res.Code)
	}

	st, err := merge.ParseStrategy(strategy)
	if err != nil {
		return err
	}
	return writeCode(s.comps.Merger.Merge(st, snippets, export))
}

// mergeExportName prefers an explicit name, then one derived from query.
func mergeExportName(explicit, query string) string {
	if n := strings.TrimSpace(explicit); n != "" {
		return n
	}
	if strings.TrimSpace(query) != "" {
		return assembler.ExportName(query)
	}
	return merge.DefaultExportName
}

func writeCode(code string) error {
	if !strings.HasSuffix(code, "\n") {
		code += "\n"
	}
	_, err := fmt.Fprint(stdout, code)
	return err
}

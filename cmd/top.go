package cmd

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kamusis/novagen/internal/search"
)

var (
	flagTopK      int
	flagTopScores bool
)

var topCmd = &cobra.Command{
	Use:   "top <query...>",
	Short: "Show the components a request would merge",
	Long: `Rank the catalog against the request and print the top-K component names.
Without --scores the list is padded from common_components and then catalog
order, exactly as build selects them.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runTop,
}

func init() {
	topCmd.Flags().IntVarP(&flagTopK, "k", "k", 0, "Number of components (default top_k from config)")
	topCmd.Flags().BoolVar(&flagTopScores, "scores", false, "Print relevance scores of every positive match")
	rootCmd.AddCommand(topCmd)
}

func runTop(_ *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	cat, err := loadCatalog(cfg)
	if err != nil {
		return err
	}
	k := flagTopK
	if k <= 0 {
		k = cfg.TopK
	}

	r := search.NewRetriever(cat, cfg.CommonComponents)
	query := strings.Join(args, " ")
	if flagTopScores {
		printScores(stdout, r.Rank(query), k)
		return nil
	}
	for i, name := range r.TopComponents(query, k) {
		fmt.Fprintf(stdout, "%d. %s\n", i+1, name)
	}
	return nil
}

// printScores prints at most k ranked candidates with their score breakdown.
func printScores(w io.Writer, ranked []search.ScoredCandidate, k int) {
	if len(ranked) == 0 {
		fmt.Fprintln(w, "no component scored above zero")
		return
	}
	if k > 0 && len(ranked) > k {
		ranked = ranked[:k]
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for i, c := range ranked {
		fmt.Fprintf(tw, "%d.\t%s\t%.0f\t%s\n", i+1, c.Entry.Name, c.Score, c.Why)
	}
	_ = tw.Flush()
}

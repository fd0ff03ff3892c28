package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/kamusis/novagen/internal/catalog"
	"github.com/kamusis/novagen/internal/config"
	"github.com/kamusis/novagen/internal/embeddings"
	"github.com/kamusis/novagen/internal/search"
	searchindex "github.com/kamusis/novagen/internal/search/index"
)

var (
	flagSuggestIndex    bool
	flagSuggestKeyword  bool
	flagSuggestSemantic bool
	flagSuggestK        int
	flagSuggestMinScore float64
	flagSuggestDebug    bool
	flagSuggestForce    bool
)

var suggestCmd = &cobra.Command{
	Use:   "suggest <query...>",
	Short: "Suggest components by semantic similarity",
	Long: `Embed the request and rank catalog components by cosine similarity against
a local index. Falls back to keyword scoring when no index or embeddings
provider is available.

Build the index first:
  novagen suggest --index`,
	Args: cobra.ArbitraryArgs,
	RunE: runSuggest,
}

func init() {
	suggestCmd.Flags().BoolVar(&flagSuggestIndex, "index", false, "Build/update the local semantic index (index_path)")
	suggestCmd.Flags().BoolVar(&flagSuggestKeyword, "keyword", false, "Force keyword scoring only")
	suggestCmd.Flags().BoolVar(&flagSuggestSemantic, "semantic", false, "Force semantic suggestions only (error if unavailable)")
	suggestCmd.Flags().IntVarP(&flagSuggestK, "k", "k", 5, "Number of suggestions to show")
	suggestCmd.Flags().Float64Var(&flagSuggestMinScore, "min-score", 0, "Minimum cosine similarity to include (semantic only)")
	suggestCmd.Flags().BoolVar(&flagSuggestDebug, "debug", false, "Print why semantic suggestions were unavailable")
	suggestCmd.Flags().BoolVar(&flagSuggestForce, "force", false, "Re-embed every component when indexing")
	rootCmd.AddCommand(suggestCmd)
}

func runSuggest(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	cat, err := loadCatalog(cfg)
	if err != nil {
		return err
	}

	if flagSuggestIndex {
		return runSuggestIndex(cmd.Context(), cfg, cat)
	}
	if len(args) == 0 {
		return cmd.Help()
	}
	query := strings.Join(args, " ")

	if flagSuggestKeyword {
		printSuggestions(stdout, query, keywordSuggestions(cat, query, flagSuggestK))
		return nil
	}

	res, err := semanticSuggestions(cmd.Context(), cfg, cat, query)
	if err != nil {
		if flagSuggestSemantic {
			return err
		}
		if flagSuggestDebug {
			printInfo("", fmt.Sprintf("semantic suggestions unavailable, falling back to keyword: %v", err))
		}
		res = keywordSuggestions(cat, query, flagSuggestK)
	}
	printSuggestions(stdout, query, res)
	return nil
}

// keywordSuggestions ranks with the relevance scorer; Score carries the raw
// keyword score.
func keywordSuggestions(cat *catalog.Catalog, query string, k int) []searchindex.Suggestion {
	ranked := search.NewRetriever(cat, nil).Rank(query)
	if k > 0 && len(ranked) > k {
		ranked = ranked[:k]
	}
	out := make([]searchindex.Suggestion, 0, len(ranked))
	for _, c := range ranked {
		out = append(out, searchindex.Suggestion{
			Name:        c.Entry.Name,
			Score:       c.Score,
			Description: c.Entry.Description,
			Category:    c.Entry.Category,
			Tags:        c.Entry.Tags,
		})
	}
	return out
}

func semanticSuggestions(ctx context.Context, cfg *config.Config, cat *catalog.Catalog, query string) ([]searchindex.Suggestion, error) {
	idx, err := searchindex.LoadCurrent(cfg.IndexPath, cat)
	if errors.Is(err, searchindex.ErrStale) {
		printWarn("", "semantic index was built from a different catalog; run 'novagen suggest --index'")
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("no semantic index at %s: %w", cfg.IndexPath, err)
	}

	embCfg, err := embeddings.LoadConfig(cfg)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	prov, err := embeddings.NewFromConfig(ctx, embCfg)
	if err != nil {
		return nil, err
	}

	res, err := idx.Suggest(ctx, prov, query, len(idx.Entries))
	if err != nil {
		return nil, err
	}
	kept := res[:0]
	for _, r := range res {
		if flagSuggestMinScore > 0 && r.Score < flagSuggestMinScore {
			continue
		}
		kept = append(kept, r)
	}
	if len(kept) == 0 {
		return nil, fmt.Errorf("no semantic suggestions above min score %.3f", flagSuggestMinScore)
	}
	if flagSuggestK > 0 && len(kept) > flagSuggestK {
		kept = kept[:flagSuggestK]
	}
	return kept, nil
}

func printSuggestions(w io.Writer, query string, res []searchindex.Suggestion) {
	fmt.Fprintf(w, "\nnovagen suggest %q\n\n", query)
	fmt.Fprintf(w, "Suggestions (%d found):\n", len(res))
	if len(res) == 0 {
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for i, r := range res {
		label := r.Name
		if r.Category != "" {
			label += " (" + r.Category + ")"
		}
		fmt.Fprintf(tw, "  %d.\t[%.3f]\t%s\n", i+1, r.Score, label)
		fmt.Fprintf(tw, "  - %s\n", strings.TrimSpace(r.Description))
	}
	_ = tw.Flush()
}

func runSuggestIndex(ctx context.Context, cfg *config.Config, cat *catalog.Catalog) error {
	embCfg, err := embeddings.LoadConfig(cfg)
	if err != nil {
		return err
	}
	prov, err := embeddings.NewFromConfig(ctx, embCfg)
	if err != nil {
		return err
	}
	if prov.ModelID() == "" {
		return errors.New("embeddings provider is not configured")
	}

	home, err := config.HomeDir()
	if err != nil {
		return err
	}
	tmpBase := filepath.Join(home, "tmp")
	if err := os.MkdirAll(tmpBase, 0o755); err != nil {
		return fmt.Errorf("cannot create temp dir %s: %w", tmpBase, err)
	}
	tmpDir, err := os.MkdirTemp(tmpBase, "suggest-index-*")
	if err != nil {
		return fmt.Errorf("cannot create temp index dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	// Seed the temp dir with the current index so unchanged entries are reused.
	if !flagSuggestForce {
		if err := copyIndex(cfg.IndexPath, tmpDir); err != nil && flagSuggestDebug {
			printInfo("", fmt.Sprintf("no previous index reused: %v", err))
		}
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Minute)
	defer cancel()

	printInfo("", fmt.Sprintf("building semantic index of %d components using %s", cat.Len(), prov.ModelID()))
	if _, err := searchindex.Build(ctx, prov, cat, searchindex.BuildOptions{
		OutDir:    tmpDir,
		Force:     flagSuggestForce,
		Normalize: true,
	}); err != nil {
		return fmt.Errorf("index build failed: %w", err)
	}

	if err := searchindex.AtomicSwap(tmpDir, cfg.IndexPath); err != nil {
		return fmt.Errorf("cannot install index: %w", err)
	}
	printOK("", fmt.Sprintf("semantic index written: %s", cfg.IndexPath))
	return nil
}

// copyIndex copies the files of the index at src into dst.
func copyIndex(src, dst string) error {
	if _, err := searchindex.Load(src); err != nil {
		return err
	}
	entries, err := os.ReadDir(src)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		b, err := os.ReadFile(filepath.Join(src, e.Name()))
		if err != nil {
			return err
		}
		if err := os.WriteFile(filepath.Join(dst, e.Name()), b, 0o644); err != nil {
			return err
		}
	}
	return nil
}

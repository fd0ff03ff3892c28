package cmd

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kamusis/novagen/internal/cache"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect cached components",
}

var cacheListCmd = &cobra.Command{
	Use:   "list",
	Short: "List cached queries in insertion order",
	Args:  cobra.NoArgs,
	RunE:  runCacheList,
}

var cacheShowCmd = &cobra.Command{
	Use:   "show <query...>",
	Short: "Print the most recent cached component for a query",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runCacheShow,
}

func init() {
	cacheCmd.AddCommand(cacheListCmd, cacheShowCmd)
	rootCmd.AddCommand(cacheCmd)
}

func openCache() (cache.Store, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return nil, err
	}
	store, err := cache.Open(cfg.CacheBackend, cfg.CachePath, logger.Named("cache"))
	if err != nil {
		return nil, fmt.Errorf("cannot open cache %s: %w", cfg.CachePath, err)
	}
	return store, nil
}

func runCacheList(cmd *cobra.Command, _ []string) error {
	store, err := openCache()
	if err != nil {
		return err
	}
	defer store.Close()

	recs, err := store.Records(cmd.Context())
	if err != nil {
		return err
	}
	printRecords(stdout, recs)
	return nil
}

func printRecords(w io.Writer, recs []cache.Record) {
	fmt.Fprintf(w, "Cached components (%d records):\n", len(recs))
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for i, r := range recs {
		fmt.Fprintf(tw, "  %d.\t%s\t%s\n", i+1, r.Query, strings.Join(r.Components, ", "))
	}
	_ = tw.Flush()
}

func runCacheShow(cmd *cobra.Command, args []string) error {
	store, err := openCache()
	if err != nil {
		return err
	}
	defer store.Close()

	query := strings.Join(args, " ")
	rec, ok := store.Lookup(cmd.Context(), query)
	if !ok {
		printMiss("", fmt.Sprintf("no cached component for %q", cache.NormalizeQuery(query)))
		return nil
	}
	fmt.Fprintf(stdout, "// components: %s\n", strings.Join(rec.Components, ", "))
	return writeCode(rec.Code)
}

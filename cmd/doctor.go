package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kamusis/novagen/internal/assembler"
	"github.com/kamusis/novagen/internal/cache"
	"github.com/kamusis/novagen/internal/config"
	"github.com/kamusis/novagen/internal/embeddings"
	"github.com/kamusis/novagen/internal/merge"
	searchindex "github.com/kamusis/novagen/internal/search/index"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check config, catalog, cache and generative setup",
	Long: `Check that novagen's config, catalog, merge template and cache load, and
report whether generative merging and semantic suggestions are available.
Run this command when something seems wrong.`,
	Args: cobra.NoArgs,
	RunE: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

func runDoctor(cmd *cobra.Command, _ []string) error {
	allOK := true
	failD := func(format string, args ...any) {
		printErr("", fmt.Sprintf(format, args...))
		allOK = false
	}

	printSection("novagen doctor")
	fmt.Fprintln(stdout)

	// ── Check 1: config ───────────────────────────────────────────────────────
	printGroup("config")
	cfg, err := loadConfig()
	if err != nil {
		failD("%v", err)
		return fmt.Errorf("doctor found problems")
	}
	if flagConfig != "" {
		printOK("", fmt.Sprintf("loaded %s", flagConfig))
	} else if p, _ := config.ConfigPath(); fileExists(p) {
		printOK("", fmt.Sprintf("loaded %s", p))
	} else {
		printWarn("", "no config file, using defaults; run 'novagen init'")
	}
	fmt.Fprintln(stdout)

	// ── Check 2: catalog ──────────────────────────────────────────────────────
	printGroup("catalog")
	cat, err := loadCatalog(cfg)
	if err != nil {
		failD("%v", err)
	} else {
		src := cfg.CatalogPath
		if src == "" {
			src = "embedded"
		}
		printOK("", fmt.Sprintf("%d components (%s)", cat.Len(), src))
		for _, name := range cfg.CommonComponents {
			if !cat.Has(name) {
				printWarn(name, "common component is not in the catalog")
			}
		}
	}
	fmt.Fprintln(stdout)

	// ── Check 3: merge template ───────────────────────────────────────────────
	printGroup("merge")
	if _, err := merge.New(cfg.DesignSystemModule, cfg.TemplatePath); err != nil {
		failD("%v", err)
	} else {
		tpl := cfg.TemplatePath
		if tpl == "" {
			tpl = "built-in"
		}
		printOK("", fmt.Sprintf("template %s, direct %s, fallback %s", tpl, cfg.MergeStrategy, cfg.FallbackStrategy))
	}
	fmt.Fprintln(stdout)

	// ── Check 4: cache ────────────────────────────────────────────────────────
	printGroup("cache")
	checkCache(cmd.Context(), cfg, failD)
	fmt.Fprintln(stdout)

	// ── Check 5: generative merging ──────────────────────────────────────────
	printGroup("generative")
	ai, err := config.ResolveAI(cfg)
	if err != nil {
		failD("cannot resolve generative settings: %v", err)
	} else {
		st := assembler.AISetup(ai)
		switch {
		case !st.Enabled:
			printSkip("", "disabled (USE_AI_MERGING is not true)")
		case !st.HasKey:
			printWarn("", fmt.Sprintf("no API key for %s; merges use the %s strategy", st.Provider, cfg.FallbackStrategy))
		default:
			printOK("", fmt.Sprintf("%s / %s ready", st.Provider, st.Model))
		}
	}
	fmt.Fprintln(stdout)

	// ── Check 6: semantic suggestions ────────────────────────────────────────
	printGroup("suggest")
	if embCfg, err := embeddings.LoadConfig(cfg); err != nil {
		printWarn("", fmt.Sprintf("embeddings config: %v", err))
	} else if embCfg.APIKey == "" {
		printSkip("", fmt.Sprintf("no API key for %s embeddings; suggest uses keyword scoring", embCfg.Provider))
	} else {
		printOK("", fmt.Sprintf("embeddings provider %s", embCfg.Provider))
	}
	if idx, err := searchindex.Load(cfg.IndexPath); err != nil {
		printMiss("", fmt.Sprintf("no semantic index at %s; run 'novagen suggest --index'", cfg.IndexPath))
	} else if cat != nil && searchindex.Stale(idx, cat) {
		printWarn("", fmt.Sprintf("index at %s is stale; run 'novagen suggest --index'", cfg.IndexPath))
	} else {
		printOK("", fmt.Sprintf("index %s (%d entries, %s)", cfg.IndexPath, len(idx.Entries), idx.Manifest.ModelID))
	}

	if !allOK {
		return fmt.Errorf("doctor found problems")
	}
	fmt.Fprintln(stdout)
	printOK("", "all checks passed")
	return nil
}

func checkCache(ctx context.Context, cfg *config.Config, failD func(string, ...any)) {
	if !fileExists(cfg.CachePath) {
		printSkip("", fmt.Sprintf("%s cache not created yet: %s", cfg.CacheBackend, cfg.CachePath))
		return
	}
	store, err := cache.Open(cfg.CacheBackend, cfg.CachePath, nil)
	if err != nil {
		failD("cannot open cache: %v", err)
		return
	}
	defer store.Close()
	recs, err := store.Records(ctx)
	if err != nil {
		printWarn("", fmt.Sprintf("cache unreadable, lookups will miss: %v", err))
		return
	}
	printOK("", fmt.Sprintf("%s cache %s (%d records)", cfg.CacheBackend, cfg.CachePath, len(recs)))
}

func fileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}

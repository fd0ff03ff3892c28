package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kamusis/novagen/internal/assembler"
)

var (
	flagBuildComponents bool
	flagBuildJSON       bool
)

var buildCmd = &cobra.Command{
	Use:   "build <query...>",
	Short: "Build one merged component for a free-text request",
	Long: `Pick the top components for the request, merge their first variants and
print the resulting component. A cached result for the same request is returned
as-is.

Example:
  novagen build login form
  novagen build --json user profile card`,
	Args: cobra.MinimumNArgs(1),
	RunE: runBuild,
}

func init() {
	buildCmd.Flags().BoolVar(&flagBuildComponents, "components", false, "Also print the selected component names")
	buildCmd.Flags().BoolVar(&flagBuildJSON, "json", false, "Print {code, components, source} as JSON")
	rootCmd.AddCommand(buildCmd)
}

func runBuild(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	defer s.Close()

	res, err := s.comps.Pipeline.BuildSnippet(cmd.Context(), strings.Join(args, " "))
	if err != nil {
		return err
	}
	return writeBuildResult(stdout, res, flagBuildJSON, flagBuildComponents)
}

type buildOutput struct {
	Code       string   `json:"code"`
	Components []string `json:"components"`
	Source     string   `json:"source"`
}

func writeBuildResult(w io.Writer, res assembler.Result, asJSON, withComponents bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(buildOutput{
			Code:       res.Code,
			Components: nonNil(res.Components),
			Source:     string(res.Source),
		})
	}
	if withComponents {
		fmt.Fprintf(w, "// components: %s (%s)\n", strings.Join(res.Components, ", "), res.Source)
	}
	if !strings.HasSuffix(res.Code, "\n") {
		res.Code += "\n"
	}
	_, err := io.WriteString(w, res.Code)
	return err
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

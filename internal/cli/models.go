package cli

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/mgpai22/subko/internal/translate"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List selectable translation models",
	Long: `List the models subko accepts without --model-override.

Examples:
  subko models
  subko models --provider anthropic`,
	Args: cobra.NoArgs,
	RunE: runModels,
}

func init() {
	rootCmd.AddCommand(modelsCmd)

	modelsCmd.Flags().
		String("provider", "", "Only list models of this provider (openai, anthropic, gemini)")
}

func runModels(cmd *cobra.Command, args []string) error {
	providerStr, _ := cmd.Flags().GetString("provider")
	provider := translate.Provider(providerStr)
	if provider != "" && !translate.IsProvider(provider) {
		return fmt.Errorf("unknown provider %q: use openai, anthropic, or gemini", providerStr)
	}

	fmt.Fprintln(cmd.OutOrStdout(), modelsTable(translate.Models(provider)))
	return nil
}

func modelsTable(models []translate.Model) string {
	tw := newTable("Provider", "Model", "Default", "Description")
	for _, m := range models {
		def := ""
		if m.Default {
			def = "yes"
		}
		tw.AppendRow(table.Row{m.Provider, m.ID, def, m.Description})
	}
	return tw.Render()
}

// rounded table with headers printed as written
func newTable(headers ...string) table.Writer {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.Style().Format.Header = text.FormatDefault

	header := make(table.Row, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	tw.AppendHeader(header)
	return tw
}

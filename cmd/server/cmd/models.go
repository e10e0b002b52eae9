package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List the models offered by an OpenAI-compatible endpoint",
	Long: `List model IDs from GET {url}/models.

When --key is omitted the stored custom API key is used.

Example:
  hanzi models --url https://api.openai.com/v1 --key sk-...`,
	Args: cobra.NoArgs,
	RunE: runModels,
}

func init() {
	rootCmd.AddCommand(modelsCmd)
	modelsCmd.Flags().String("url", "", "API base URL")
	modelsCmd.Flags().String("key", "", "API key (defaults to the stored key)")
}

func runModels(cmd *cobra.Command, args []string) error {
	url, _ := cmd.Flags().GetString("url")
	key, _ := cmd.Flags().GetString("key")

	app, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer app.Close()

	ids, err := app.ModelCatalog.ListModels(cmd.Context(), url, key)
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no models reported")
		return nil
	}
	for _, id := range ids {
		fmt.Fprintln(cmd.OutOrStdout(), id)
	}
	return nil
}

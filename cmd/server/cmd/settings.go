package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	settingsusecase "hanzi_backend/internal/feature/settings/usecase"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show or change the recognition backend settings",
	Long: `Without flags the stored settings are printed with the API key masked.

Example:
  hanzi settings
  hanzi settings --use-custom --url https://api.openai.com/v1 --key sk-... --model gpt-4o
  hanzi settings --use-custom=false`,
	Args: cobra.NoArgs,
	RunE: runSettings,
}

func init() {
	rootCmd.AddCommand(settingsCmd)
	settingsCmd.Flags().Bool("use-custom", false, "use the custom OpenAI-compatible endpoint")
	settingsCmd.Flags().String("url", "", "custom API base URL")
	settingsCmd.Flags().String("key", "", "custom API key")
	settingsCmd.Flags().String("model", "", "custom model ID")
}

func runSettings(cmd *cobra.Command, args []string) error {
	app, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer app.Close()

	ctx := cmd.Context()
	s, err := app.Settings.Get(ctx)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.NFlag() > 0 {
		p := settingsusecase.Patch{UseCustomAPI: s.UseCustomAPI, APIURL: s.APIURL, Model: s.Model}
		if flags.Changed("use-custom") {
			p.UseCustomAPI, _ = flags.GetBool("use-custom")
		}
		if flags.Changed("url") {
			p.APIURL, _ = flags.GetString("url")
		}
		if flags.Changed("model") {
			p.Model, _ = flags.GetString("model")
		}
		if flags.Changed("key") {
			k, _ := flags.GetString("key")
			p.APIKey = &k
		}
		if s, err = app.Settings.Update(ctx, p); err != nil {
			return err
		}
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "use custom api: %t\n", s.UseCustomAPI)
	fmt.Fprintf(w, "api url:        %s\n", s.APIURL)
	fmt.Fprintf(w, "api key:        %s\n", s.MaskedKey())
	fmt.Fprintf(w, "model:          %s\n", s.Model)
	return nil
}

package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	jwtmw "hanzi_backend/internal/platform/jwt"
)

var tokenCmd = &cobra.Command{
	Use:   "token <device-name>",
	Short: "Issue a bearer token for a client device",
	Long: `Sign a token with HANZI_SERVER_JWT_SECRET for a browser or device client.

Example:
  hanzi token kitchen-tablet --ttl 720h`,
	Args: cobra.ExactArgs(1),
	RunE: runToken,
}

func init() {
	rootCmd.AddCommand(tokenCmd)
	tokenCmd.Flags().Duration("ttl", 30*24*time.Hour, "token lifetime (0 never expires)")
}

func runToken(cmd *cobra.Command, args []string) error {
	ttl, _ := cmd.Flags().GetDuration("ttl")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Server.JWTSecret == "" {
		return errors.New("HANZI_SERVER_JWT_SECRET is not set")
	}

	token, err := jwtmw.NewGenerator(cfg.Server.JWTSecret, ttl).GenerateToken(args[0])
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), token)
	return nil
}

package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/mind-links/contractor-backend-go/internal/pkg/jwt"
)

var tokenFlags struct {
	userID    string
	email     string
	companyID string
	ttl       time.Duration
	secret    string
}

var rootCmd = &cobra.Command{
	Use:   "devtoken",
	Short: "Issue an access token for calling the API locally",
	Long: `devtoken signs an access token with JWT_SECRET_KEY so the wizard and
invitation endpoints can be exercised without a login service.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		secret := tokenFlags.secret
		if secret == "" {
			secret = os.Getenv("JWT_SECRET_KEY")
		}
		if secret == "" {
			return errors.New("JWT_SECRET_KEY is not set; pass --secret or add it to .env")
		}

		token, expiresAt, err := jwt.NewJWTService(secret, tokenFlags.ttl).
			GenerateAccessToken(tokenFlags.userID, tokenFlags.email, tokenFlags.companyID)
		if err != nil {
			return fmt.Errorf("failed to sign token: %w", err)
		}

		fmt.Fprintln(cmd.OutOrStdout(), token)
		fmt.Fprintf(cmd.ErrOrStderr(), "expires at %s\n", time.Unix(expiresAt, 0).Format(time.RFC3339))
		return nil
	},
}

func init() {
	rootCmd.Flags().StringVarP(&tokenFlags.userID, "user", "u", "dev-user", "user_id claim")
	rootCmd.Flags().StringVarP(&tokenFlags.email, "email", "e", "dev@mind-links.io", "email claim")
	rootCmd.Flags().StringVarP(&tokenFlags.companyID, "company", "c", "dev-company", "company_id claim")
	rootCmd.Flags().DurationVar(&tokenFlags.ttl, "ttl", time.Hour, "token lifetime")
	rootCmd.Flags().StringVar(&tokenFlags.secret, "secret", "", "signing secret (default: JWT_SECRET_KEY)")
}

func main() {
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

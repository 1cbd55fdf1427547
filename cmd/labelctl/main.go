// Command labelctl manages wine products and ingredients through the backend API.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"winelabel/internal/client"
	"winelabel/internal/config"
	applog "winelabel/internal/log"
)

const tokenEnv = "WINELABEL_TOKEN"

var (
	// Global flags
	apiURL   string
	token    string
	email    string
	password string
	timeout  time.Duration

	// Resolved from the environment before each command runs.
	labelCfg config.LabelConfig

	loadConfigFunc = func() (config.Config, error) {
		if err := config.LoadEnvFiles(); err != nil {
			return config.Config{}, err
		}
		return config.Load()
	}
)

var errNoCredentials = errors.New("not signed in: pass --token, set " + tokenEnv + ", or give --email and --password")

var rootCmd = &cobra.Command{
	Use:   "labelctl",
	Short: "Manage wine labels from the terminal",
	Long: `labelctl talks to the winelabel backend API.

It exports and imports products and ingredients as Excel workbooks, extracts
additives from supplier technical sheets and prints the public label of a product.

Authenticate once with 'labelctl login' and export the printed token as
` + tokenEnv + `, or pass --email and --password to any command.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadSettings,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURL, "api", "", "Backend API base URL (default: WINELABEL_API_URL or API_URL)")
	rootCmd.PersistentFlags().StringVar(&token, "token", os.Getenv(tokenEnv), "Bearer token (or set "+tokenEnv+" env)")
	rootCmd.PersistentFlags().StringVar(&email, "email", "", "Sign in with this email when no token is set")
	rootCmd.PersistentFlags().StringVar(&password, "password", "", "Password for --email")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 0, "Request timeout (default: API_TIMEOUT)")

	productsCmd.AddCommand(productsListCmd, productsExportCmd, productsImportCmd)
	ingredientsCmd.AddCommand(ingredientsListCmd, ingredientsExportCmd, ingredientsImportCmd, ingredientsTechSheetCmd)
	rootCmd.AddCommand(loginCmd, productsCmd, ingredientsCmd, labelCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadSettings fills the flags left empty from the environment configuration.
func loadSettings(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfigFunc()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	if err := applog.Configure(os.Stderr, cfg.Log.Format, cfg.Log.Level); err != nil {
		return err
	}
	if apiURL == "" {
		apiURL = cfg.API.BaseURL
	}
	if timeout == 0 {
		timeout = cfg.API.Timeout
	}
	labelCfg = cfg.Label
	return nil
}

func newClient() (*client.Client, error) {
	return client.New(client.Config{BaseURL: apiURL, Timeout: timeout})
}

// authorize returns a client and a context carrying the bearer token. When no token
// is set it signs in with --email and --password first.
func authorize(cmd *cobra.Command) (*client.Client, context.Context, error) {
	ctx := commandContext(cmd)
	c, err := newClient()
	if err != nil {
		return nil, nil, err
	}
	if token == "" {
		if email == "" || password == "" {
			return nil, nil, errNoCredentials
		}
		resp, err := c.Login(ctx, email, password)
		if err != nil {
			return nil, nil, fmt.Errorf("sign in: %w", err)
		}
		token = resp.Token
		applog.Debug(ctx, "signed in", "email", email)
	}
	return c, client.WithToken(ctx, token), nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

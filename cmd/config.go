package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/khrees2412/linkfolio/internal/app"
	"github.com/khrees2412/linkfolio/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect configuration",
}

var showConfigCmd = &cobra.Command{
	Use:   "show",
	Short: "Display the resolved configuration with secrets redacted",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := app.GetAppFromContext(cmd.Context()).Config.Redacted()

		fmt.Println(titleStyle.Render("Configuration"))
		fmt.Printf("%s %s\n", labelStyle.Render("Source:"), cfg.Source)
		fmt.Printf("%s %s\n", labelStyle.Render("Database:"), cfg.Database.DSN())
		fmt.Printf("%s %s\n", labelStyle.Render("Profile Email:"), orUnset(cfg.ProfileEmail))

		fmt.Printf("\n%s\n", labelStyle.Render("Authentication"))
		fmt.Printf("  Method: %s\n", authMethodLabel(cfg.Auth))
		fmt.Printf("  Cookie: %s\n", configured(cfg.Auth.Cookie != ""))
		fmt.Printf("  Credentials: %s\n", configured(cfg.Auth.Email != "" && cfg.Auth.Password != ""))
		fmt.Printf("  API Token: %s\n", configured(cfg.API.AccessToken != ""))

		fmt.Printf("\n%s\n", labelStyle.Render("Scraper"))
		fmt.Printf("  Headless: %t\n", cfg.Scraper.Headless)
		fmt.Printf("  Page Load Timeout: %s\n", cfg.Scraper.PageLoadTimeout)
		fmt.Printf("  Action Delay: %s\n", cfg.Scraper.ActionDelay)
		fmt.Printf("  Scroll Delay: %s\n", cfg.Scraper.ScrollDelay)
		fmt.Printf("  Max Retries: %d\n", cfg.Scraper.MaxRetries)

		if err := app.GetAppFromContext(cmd.Context()).Config.Validate(); err != nil {
			fmt.Printf("\n%s %v\n", labelStyle.Render("Validation:"), err)
		} else {
			fmt.Printf("\n%s ok\n", labelStyle.Render("Validation:"))
		}
	},
}

func authMethodLabel(a config.AuthConfig) string {
	if !a.Configured() {
		return "not configured"
	}
	return string(a.Method())
}

func configured(ok bool) string {
	if ok {
		return "✓ configured"
	}
	return "✗ not configured"
}

func orUnset(s string) string {
	if s == "" {
		return "(unset)"
	}
	return s
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(showConfigCmd)
}

package cmd

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/khrees2412/linkfolio/internal/app"
	"github.com/khrees2412/linkfolio/internal/apperror"
	"github.com/khrees2412/linkfolio/internal/config"
	"github.com/khrees2412/linkfolio/internal/importer"
	"github.com/khrees2412/linkfolio/internal/source"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("12")).
			MarginTop(1).
			MarginBottom(1)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10")).
			Bold(true)

	summaryStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("12")).
			Padding(0, 2)
)

var importCmd = &cobra.Command{
	Use:   "import <profile>",
	Short: "Import a LinkedIn profile into the portfolio database",
	Long: `Import fetches the given profile, maps it to portfolio records, and
writes them in one transaction. The profile argument is a profile URL
or a public identifier (the part after /in/).`,
	Args: cobra.ExactArgs(1),
	Example: `  linkfolio import ada-lovelace
  linkfolio import https://www.linkedin.com/in/ada-lovelace
  linkfolio import ada-lovelace --email ada@example.com
  linkfolio import ada-lovelace --source api`,
	RunE: func(cmd *cobra.Command, args []string) error {
		application := app.GetAppFromContext(cmd.Context())
		cfg := application.Config

		// The scraper source cannot recover an email from the page, so
		// validation insists one is configured; the flag satisfies it.
		emailOverride, _ := cmd.Flags().GetString("email")
		if emailOverride != "" {
			cfg.ProfileEmail = emailOverride
		}

		if err := cfg.Validate(); err != nil {
			return err
		}

		src, err := newSource(cfg, application)
		if err != nil {
			return err
		}
		defer src.Close()

		repo, err := application.Repository(cmd.Context())
		if err != nil {
			return err
		}

		im := importer.New(src, repo, application.Log)
		summary, err := im.Run(cmd.Context(), args[0], cfg.ProfileEmail)
		if err != nil {
			return err
		}

		printSummary(summary)
		return nil
	},
}

// newSource builds the configured profile source.
func newSource(cfg *config.Config, application *app.App) (importer.Source, error) {
	switch cfg.Source {
	case config.SourceScraper:
		return source.NewScraper(cfg.Auth, cfg.Scraper, application.Log)
	case config.SourceAPI:
		return source.NewAPI(cfg.API, application.Log)
	default:
		return nil, apperror.NewConfig(fmt.Sprintf("unknown profile source %q", cfg.Source))
	}
}

func printSummary(s *importer.Summary) {
	body := fmt.Sprintf("%s %s <%s>\n%s %d\n%s %d\n%s %s\n%s %s",
		labelStyle.Render("Imported:"), s.Name, s.Email,
		labelStyle.Render("Projects:"), s.ProjectsImported,
		labelStyle.Render("Technologies:"), s.TechnologiesLinked,
		labelStyle.Render("User ID:"), s.UserID,
		labelStyle.Render("Elapsed:"), s.Elapsed.Round(time.Millisecond).String(),
	)
	fmt.Println(titleStyle.Render("Import Complete"))
	fmt.Println(summaryStyle.Render(body))
}

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().String("email", "", "Portfolio account email (overrides the profile's email)")
	// Flag defaults mirror the config defaults; environment variables
	// still win over an unchanged flag.
	importCmd.Flags().String("source", config.SourceScraper, "Profile source: scraper or api")
	importCmd.Flags().Bool("headless", true, "Run the browser headless")
	importCmd.Flags().Duration("timeout", 30*time.Second, "Page load timeout for the scraper")

	viper.BindPFlag("source", importCmd.Flags().Lookup("source"))
	viper.BindPFlag("scraper.headless", importCmd.Flags().Lookup("headless"))
	viper.BindPFlag("scraper.page_load_timeout", importCmd.Flags().Lookup("timeout"))
}

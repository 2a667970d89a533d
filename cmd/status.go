package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/khrees2412/linkfolio/internal/app"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show portfolio database contents",
	Long:  "Connects to the portfolio database and reports what has been imported.",
	Example: `  linkfolio status
  linkfolio status --email ada@example.com`,
	RunE: func(cmd *cobra.Command, args []string) error {
		application := app.GetAppFromContext(cmd.Context())

		repo, err := application.Repository(cmd.Context())
		if err != nil {
			return err
		}

		stats, err := repo.Stats(cmd.Context())
		if err != nil {
			return err
		}

		fmt.Println(titleStyle.Render("Portfolio Database"))
		fmt.Printf("%s %d\n", labelStyle.Render("Users:"), stats.Users)
		fmt.Printf("%s %d\n", labelStyle.Render("Projects:"), stats.Projects)
		fmt.Printf("%s %d\n", labelStyle.Render("Technology Links:"), stats.Technologies)

		email, _ := cmd.Flags().GetString("email")
		if email == "" {
			return nil
		}

		slugs, err := repo.ProjectSlugs(cmd.Context(), email)
		if err != nil {
			return err
		}
		fmt.Printf("\n%s\n", labelStyle.Render(fmt.Sprintf("Projects for %s (%d)", email, len(slugs))))
		if len(slugs) == 0 {
			fmt.Println("  (none imported yet)")
		}
		for _, slug := range slugs {
			fmt.Printf("  • %s\n", slug)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)

	statusCmd.Flags().String("email", "", "List project slugs for this portfolio account")
}

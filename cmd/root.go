package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/khrees2412/linkfolio/internal/app"
	"github.com/khrees2412/linkfolio/internal/apperror"
)

var rootCmd = &cobra.Command{
	Use:   "linkfolio",
	Short: "Import LinkedIn profiles into a portfolio database",
	Long: `Linkfolio extracts a person's professional profile from LinkedIn and
imports it into a portfolio website database: positions, certifications,
publications and volunteer work become portfolio projects, tagged with
the profile's top skills.`,
	Version:       "0.1.0",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		application, err := app.NewApp(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to initialize app: %w", err)
		}
		cmd.SetContext(app.SetAppInContext(cmd.Context(), application))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if application := app.GetAppFromContext(cmd.Context()); application != nil {
			application.Close()
		}
	},
}

// Execute runs the root command
func Execute() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rootCmd.SetContext(ctx)

	if err := rootCmd.Execute(); err != nil {
		if stage := apperror.Stage(err); stage != "unknown" {
			fmt.Fprintf(os.Stderr, "%s error: %v\n", stage, err)
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")
	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

package main

import (
	"fmt"
	"os"
	"time"

	"marketing-assistant-be/internal/config"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	cfg     *config.Config
	timeout time.Duration
	noColor bool
	printer = &Printer{}
)

var rootCmd = &cobra.Command{
	Use:   "diagnose",
	Short: "Check providers, database, scraper and the chat pipeline",
	Long: `diagnose runs live checks against the collaborators configured in .env.

Example usage:
  diagnose providers           # One completion and one embedding
  diagnose db                  # Ping Postgres and check the vector extension
  diagnose scrape example.com  # Scrape one page through SCRAPER_ENDPOINT
  diagnose chat "write a tagline for a bakery"`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if noColor {
			color.NoColor = true
		}
		cfg = config.Load()
	},
}

func init() {
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 2*time.Minute, "timeout for each check")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
}

// Printer writes check results to stdout.
type Printer struct{}

func (p *Printer) Header(format string, args ...interface{}) {
	color.New(color.FgCyan, color.Bold).Printf("\n== "+format+" ==\n", args...)
}

func (p *Printer) OK(format string, args ...interface{}) {
	fmt.Printf("%s %s\n", color.GreenString("✓"), fmt.Sprintf(format, args...))
}

func (p *Printer) Warn(format string, args ...interface{}) {
	fmt.Printf("%s %s\n", color.YellowString("!"), fmt.Sprintf(format, args...))
}

func (p *Printer) Fail(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "%s %s\n", color.RedString("✗"), fmt.Sprintf(format, args...))
}

func (p *Printer) Detail(label, value string) {
	fmt.Printf("  %s %s\n", color.New(color.Faint).Sprint(label+":"), value)
}

package cli

import (
	"errors"

	"github.com/spf13/cobra"
)

var errUnhealthy = errors.New("one or more required services are not ready")

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Report the readiness of process-wide services",
	Long: `Builds the configured vector store, embedding service and LLM, pings
each once and reports whether it is ready, failed or disabled. Exits
non-zero when a required service is not ready.`,
	Args: cobra.NoArgs,
	RunE: runHealth,
}

func init() {
	rootCmd.AddCommand(healthCmd)
}

func runHealth(cmd *cobra.Command, _ []string) error {
	if healthService == nil {
		return errNotConfigured("health service")
	}

	components := healthService.Status()
	healthy := healthService.Healthy()
	status := "healthy"
	if !healthy {
		status = "degraded"
	}

	out := map[string]any{"status": status, "components": components}
	if err := render(cmd, out, func(p *printer) {
		for _, c := range components {
			line := "  " + c.Name + ": " + string(c.State)
			switch {
			case c.Ready():
				p.Println(line)
			case c.Error != "":
				p.Failure("%s (%s)", line, c.Error)
			default:
				p.Muted("%s", line)
			}
		}
		p.Println()
		p.Printf("Status: %s\n", status)
	}); err != nil {
		return err
	}

	if !healthy {
		return errUnhealthy
	}
	return nil
}

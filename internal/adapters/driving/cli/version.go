package cli

import (
	"runtime"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version and build information",
	RunE: func(cmd *cobra.Command, _ []string) error {
		info := map[string]string{
			"version":  version,
			"go":       runtime.Version(),
			"platform": runtime.GOOS + "/" + runtime.GOARCH,
		}
		return render(cmd, info, func(p *printer) {
			p.Printf("ragent version %s (%s, %s)\n", version, info["go"], info["platform"])
		})
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

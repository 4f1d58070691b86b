package main

import (
	"github.com/spf13/cobra"
)

type rootFlags struct {
	configPath string
	logLevel   string
	jsonOutput bool
	yamlOutput bool
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:   "madpkg",
		Short: "Madpkg manages versioned application packages in chunked database or filesystem storage",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return configureLogging(flags.logLevel)
		},
	}

	cmd.Version = version
	cmd.PersistentFlags().StringVar(&flags.configPath, "config", "", "path to TOML config file")
	cmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	cmd.PersistentFlags().BoolVar(&flags.jsonOutput, "json", false, "output JSON")
	cmd.PersistentFlags().BoolVar(&flags.yamlOutput, "yaml", false, "output YAML")

	cmd.AddCommand(
		newUploadCmd(flags),
		newDownloadCmd(flags),
		newDeleteCmd(flags),
		newInfoCmd(flags),
	)

	return cmd
}

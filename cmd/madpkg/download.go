package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/SpielerNogard/MAD/internal/apk"
	"github.com/SpielerNogard/MAD/internal/config"
	"github.com/SpielerNogard/MAD/internal/storage"
)

func newDownloadCmd(flags *rootFlags) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "download <usage> <arch>",
		Short: "Write the current package payload for a slot to a file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			usage, err := apk.ParseType(args[0])
			if err != nil {
				return err
			}
			arch, err := apk.ParseArch(args[1])
			if err != nil {
				return err
			}

			return withStorage(flags, func(cfg config.Config, st storage.APKStorage) error {
				payload, info, err := st.GetFile(cmd.Context(), usage, arch)
				if err != nil {
					return err
				}

				target := output
				if target == "" {
					target = info.Filename
				}
				if err := os.WriteFile(target, payload, 0o644); err != nil {
					return err
				}
				return writePlain("wrote %s (%d bytes, version %s)\n", target, len(payload), info.Version)
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "destination path (default: stored filename)")
	return cmd
}

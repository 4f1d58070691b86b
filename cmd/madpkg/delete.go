package main

import (
	"github.com/spf13/cobra"

	"github.com/SpielerNogard/MAD/internal/apk"
	"github.com/SpielerNogard/MAD/internal/config"
	"github.com/SpielerNogard/MAD/internal/storage"
)

func newDeleteCmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <usage> <arch>",
		Short: "Remove the stored package for a slot",
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
				if _, err := st.DeleteFile(cmd.Context(), usage, arch); err != nil {
					return err
				}
				return writePlain("deleted %s/%s\n", usage, arch)
			})
		},
	}
	return cmd
}

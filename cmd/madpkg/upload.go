package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/SpielerNogard/MAD/internal/apk"
	"github.com/SpielerNogard/MAD/internal/config"
	"github.com/SpielerNogard/MAD/internal/storage"
)

func newUploadCmd(flags *rootFlags) *cobra.Command {
	var mimetype string

	cmd := &cobra.Command{
		Use:   "upload <usage> <arch> <version> <file>",
		Short: "Store a package version, replacing any previous one for the slot",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			usage, err := apk.ParseType(args[0])
			if err != nil {
				return err
			}
			arch, err := apk.ParseArch(args[1])
			if err != nil {
				return err
			}
			version := args[2]

			file, err := os.Open(args[3])
			if err != nil {
				return err
			}
			defer file.Close()

			return withStorage(flags, func(cfg config.Config, st storage.APKStorage) error {
				if !st.SaveFile(cmd.Context(), usage, arch, version, mimetype, file, false) {
					return fmt.Errorf("upload of %s/%s %s failed, see log for details", usage, arch, version)
				}
				return writePlain("stored %s/%s version %s\n", usage, arch, version)
			})
		},
	}

	cmd.Flags().StringVar(&mimetype, "mimetype", apk.MimetypeAPK, "content type of the uploaded file")
	return cmd
}

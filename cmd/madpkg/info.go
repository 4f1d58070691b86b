package main

import (
	"github.com/spf13/cobra"

	"github.com/SpielerNogard/MAD/internal/apk"
	"github.com/SpielerNogard/MAD/internal/config"
	"github.com/SpielerNogard/MAD/internal/storage"
)

type slotInfo struct {
	Arch string `json:"arch" yaml:"arch"`
	apk.PackageInfo
}

type usageInfo struct {
	Usage string     `json:"usage" yaml:"usage"`
	Slots []slotInfo `json:"slots" yaml:"slots"`
}

func newInfoCmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "info [usage]",
		Short: "Show the currently stored package versions",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			usages := apk.Types()
			if len(args) == 1 {
				usage, err := apk.ParseType(args[0])
				if err != nil {
					return err
				}
				usages = []apk.APKType{usage}
			}

			return withStorage(flags, func(cfg config.Config, st storage.APKStorage) error {
				report := []usageInfo{}
				for _, usage := range usages {
					set, err := st.GetPackageSet(cmd.Context(), usage)
					if err != nil {
						return err
					}
					entry := usageInfo{Usage: usage.String(), Slots: []slotInfo{}}
					for _, arch := range apk.Archs() {
						if info, ok := set[arch]; ok {
							entry.Slots = append(entry.Slots, slotInfo{Arch: arch.String(), PackageInfo: info})
						}
					}
					report = append(report, entry)
				}

				switch {
				case flags.jsonOutput:
					return writeJSON(report)
				case flags.yamlOutput:
					return writeYAML(report)
				default:
					_ = writePlain("storage_type: %s\n", st.StorageType())
					for _, entry := range report {
						_ = writePlain("%s:\n", entry.Usage)
						if len(entry.Slots) == 0 {
							_ = writePlain("  (no packages stored)\n")
							continue
						}
						for _, slot := range entry.Slots {
							_ = writePlain("  %s: version %s, %d bytes, %s\n", slot.Arch, slot.Version, slot.Size, slot.Filename)
						}
					}
					return nil
				}
			})
		},
	}
	return cmd
}

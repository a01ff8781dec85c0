package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/nvandessel/simselect/internal/backup"
	"github.com/nvandessel/simselect/internal/ux"
	"github.com/spf13/cobra"
)

func newBackupListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List backup generations with metadata",
		Long: `List every generation under the backup directory, oldest first, with its
creation time, document count and size.

Examples:
  simselect backup list
  simselect backup list --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(cmd)
			if err != nil {
				return err
			}
			defer e.Close()

			mgr := e.engine.Backups()
			gens, err := mgr.ListGenerations()
			if err != nil {
				return fmt.Errorf("failed to list generations: %w", err)
			}

			infos := make([]backup.Info, 0, len(gens))
			for _, g := range gens {
				info, err := mgr.Describe(g)
				if err != nil {
					return err
				}
				infos = append(infos, info)
			}

			if e.jsonOut {
				return writeJSON(cmd, map[string]any{
					"generations": infos,
					"total_count": len(infos),
					"max_count":   e.cfg.Backup.MaxGenerations,
					"directory":   mgr.Root(),
				})
			}

			if len(infos) == 0 {
				e.out.Muted(fmt.Sprintf("No backups found in %s", mgr.Root()))
				return nil
			}

			e.out.Title(fmt.Sprintf("Backups in %s (%d of %d kept):", mgr.Root(), len(infos), e.cfg.Backup.MaxGenerations))
			var totalSize int64
			for _, info := range infos {
				totalSize += info.TotalSize
				e.out.Item(ux.IconBullet, fmt.Sprintf("%4d", info.ID), describeInfo(info))
			}
			e.out.Info(fmt.Sprintf("Total: %d generation(s), %s", len(infos), humanize.Bytes(uint64(totalSize))))
			return nil
		},
	}
}

func describeInfo(info backup.Info) string {
	note := fmt.Sprintf("%d document(s), %s", info.DocumentCount, humanize.Bytes(uint64(info.TotalSize)))
	if !info.HasManifest {
		return note + ", no manifest"
	}
	note = fmt.Sprintf("%s, %s", humanize.Time(info.CreatedAt), note)
	if info.Target != "" {
		note += ", target " + info.Target
	} else if info.Reason != "" {
		note += ", " + info.Reason
	}
	return note
}

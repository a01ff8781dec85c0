package main

import (
	"errors"
	"fmt"

	"github.com/nvandessel/simselect/internal/backup"
	"github.com/nvandessel/simselect/internal/selector"
	"github.com/nvandessel/simselect/internal/ux"
	"github.com/spf13/cobra"
)

func newBackupVerifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify <id>",
		Short: "Verify a generation against its manifest checksums",
		Long: `Recompute the SHA-256 checksum of every document in a generation and compare
it with the manifest written when the generation was created.

Examples:
  simselect backup verify 12
  simselect backup verify 12 --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseGenerationID(args[0])
			if err != nil {
				return err
			}

			e, err := newEnv(cmd)
			if err != nil {
				return err
			}
			defer e.Close()

			mgr := e.engine.Backups()
			gen, err := mgr.Get(id)
			if err != nil {
				if errors.Is(err, backup.ErrGenerationNotFound) {
					return &selector.Error{Kind: selector.KindGenerationNotFound, Err: err}
				}
				return err
			}

			result, err := mgr.Verify(gen)
			if errors.Is(err, backup.ErrNoManifest) {
				if e.jsonOut {
					return writeJSON(cmd, map[string]any{"id": id, "valid": nil, "manifest": false})
				}
				e.out.Warning(fmt.Sprintf("Generation %d has no manifest and cannot be verified", id))
				return nil
			}
			if err != nil {
				return fmt.Errorf("verification failed: %w", err)
			}

			if e.jsonOut {
				if err := writeJSON(cmd, map[string]any{"id": id, "valid": result.OK(), "manifest": true, "documents": result.Documents}); err != nil {
					return err
				}
			} else {
				for _, d := range result.Documents {
					switch d.Status {
					case backup.VerifyOK:
						e.out.Item(ux.IconSuccess, d.Name, "")
					case backup.VerifyMissing:
						e.out.Item(ux.IconError, d.Name, "missing")
					default:
						e.out.Item(ux.IconError, d.Name, d.Detail)
					}
				}
				if result.OK() {
					e.out.Success(fmt.Sprintf("Generation %d is intact", id))
				}
			}

			if !result.OK() {
				return fmt.Errorf("generation %d failed verification", id)
			}
			return nil
		},
	}
}

package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/evcraddock/medicall/internal/client"
	"github.com/evcraddock/medicall/internal/doctor"
)

func newSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed <roster.json>",
		Short: "Load an initial roster into an empty server",
		Long:  "Load a JSON array of doctors into the server. Nothing is written when the server already holds doctors.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading roster: %w", err)
			}
			var doctors []doctor.Doctor
			if err := json.Unmarshal(data, &doctors); err != nil {
				return fmt.Errorf("parsing roster: %w", err)
			}

			res, err := newAPIClient().Seed(doctors)
			if err != nil {
				return err
			}
			if isJSON() {
				return printJSON(res)
			}
			if !res.Seeded {
				fmt.Fprintf(cmd.OutOrStdout(), "Server already has %d doctors, nothing seeded.\n", res.Count)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d doctors.\n", res.Count)
			return nil
		},
	}
}

func newExportCmd() *cobra.Command {
	var (
		q   client.Query
		dir string
	)

	cmd := &cobra.Command{
		Use:       "export <visits|procedures|timeoff>",
		Short:     "Download a CSV report",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"visits", "procedures", "timeoff"},
		RunE: func(cmd *cobra.Command, args []string) error {
			q.Executive = resolveExecutive(q.Executive)
			return download(cmd, dir, func(f *os.File) (string, error) {
				return newAPIClient().Export(args[0], q, f)
			})
		},
	}

	addPeriodFlags(cmd, &q)
	cmd.Flags().StringVarP(&dir, "out", "o", ".", "output directory")
	return cmd
}

func newBackupCmd() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Download a full JSON backup",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return download(cmd, dir, func(f *os.File) (string, error) {
				return newAPIClient().Backup(f)
			})
		},
	}

	cmd.Flags().StringVarP(&dir, "out", "o", ".", "output directory")
	return cmd
}

// download writes a server download into dir under the name the server
// suggests.
func download(cmd *cobra.Command, dir string, fetch func(*os.File) (string, error)) error {
	tmp, err := os.CreateTemp(dir, ".medicall-*")
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	name, err := fetch(tmp)
	if cerr := tmp.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("closing output file: %w", cerr)
	}
	if err != nil {
		return err
	}
	if name == "" {
		name = "medicall-download"
	}

	path := filepath.Join(dir, filepath.Base(name))
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("saving %s: %w", path, err)
	}

	if isJSON() {
		return printJSON(map[string]string{"file": path})
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Saved %s\n", path)
	return nil
}

func newRestoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "restore <backup.json>",
		Short: "Restore a JSON backup",
		Long:  "Upload a backup. Every record in it is written; records not in the backup are kept.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("opening backup: %w", err)
			}
			defer func() { _ = f.Close() }()

			res, err := newAPIClient().Restore(f)
			if err != nil {
				return err
			}
			if isJSON() {
				return printJSON(res)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Restored %d doctors, %d procedures, %d absences.\n", res.Doctors, res.Procedures, res.TimeOff)
			return nil
		},
	}
}

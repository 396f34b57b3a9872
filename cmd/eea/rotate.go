package main

import (
	"fmt"
	"log/slog"
	"maps"
	"slices"

	"github.com/absfs/eea"
	"github.com/spf13/cobra"
)

func newRotateCmd(a *app) *cobra.Command {
	var (
		from          string
		to            string
		toPasswordEnv string
		dryRun        bool
	)

	cmd := &cobra.Command{
		Use:   "rotate path --from old.keys --to new.keys",
		Short: "Re-encrypt .eea files with a different keys file",
		Long: `Re-encrypt every .eea file below path, replacing the keys of the --from
keys file with those of the --to keys file. No plaintext is written.

The --to keys file is first unlocked with the --from password. You are
only asked for a second password when that fails.

Examples:
  eea rotate ~/Documents --from old.keys --to new.keys
  eea rotate ~/Documents --from old.keys --to new.keys --dry-run`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.keyStore()
			if err != nil {
				return err
			}
			for _, name := range []string{from, to} {
				if !store.Exists(name) {
					return fmt.Errorf("keys file %q not found in %s", name, store.Dir())
				}
			}
			if from == to {
				return fmt.Errorf("--from and --to name the same keys file %q", from)
			}

			var fromKey eea.KeyProvider
			if a.passwordEnv != "" {
				fromKey = eea.NewEnvKeyProvider(a.passwordEnv)
			} else {
				fromKey, err = a.promptProvider("Current keys password: ", false)
				if err != nil {
					return err
				}
			}
			oldKeys, err := store.Load(from, fromKey)
			if err != nil {
				return err
			}

			var candidates []eea.KeyProvider
			if toPasswordEnv != "" {
				candidates = append(candidates, eea.NewEnvKeyProvider(toPasswordEnv))
			}
			candidates = append(candidates, fromKey)
			toKey, err := eea.NewMultiKeyProvider(candidates...)
			if err != nil {
				return err
			}
			newKeys, err := store.Load(to, toKey)
			if err != nil && eea.IsAuthenticationError(err) && toPasswordEnv == "" {
				a.logger.Debug("keys passwords differ", slog.String("from", from), slog.String("to", to))
				var prompted eea.KeyProvider
				prompted, err = a.promptProvider("New keys password: ", false)
				if err != nil {
					return err
				}
				newKeys, err = store.Load(to, prompted)
			}
			if err != nil {
				return err
			}

			report, err := eea.RotateFiles(a.fs, args[0], oldKeys, newKeys, eea.KeyRotationOptions{
				DryRun: dryRun,
				Logger: a.logger,
			})
			if report == nil {
				return err
			}
			for _, name := range slices.Sorted(maps.Keys(report.Failed)) {
				fmt.Fprintf(a.errOut, "%s: %v\n", name, report.Failed[name])
			}
			if dryRun {
				for _, name := range report.Rotated {
					fmt.Fprintln(a.out, name)
				}
				fmt.Fprintf(a.out, "rotate: %d files would be rotated\n", len(report.Rotated))
				return nil
			}
			fmt.Fprintf(a.out, "rotate: %d rotated, %d failed\n", len(report.Rotated), len(report.Failed))
			return err
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "keys file the files are encrypted with")
	cmd.Flags().StringVar(&to, "to", "", "keys file to re-encrypt the files with")
	cmd.Flags().StringVar(&toPasswordEnv, "to-password-env", "", "read the --to keys file password from this environment variable")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "list the files that would be rotated without changing them")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

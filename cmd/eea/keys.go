package main

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/absfs/eea"
	"github.com/spf13/cobra"
)

func newKeysCmd(a *app) *cobra.Command {
	keysCmd := &cobra.Command{
		Use:   "keys",
		Short: "Manage keys files",
	}
	keysCmd.AddCommand(
		newKeysGenerateCmd(a),
		newKeysListCmd(a),
		newKeysViewCmd(a),
		newKeysDeleteCmd(a),
		newKeysPasswdCmd(a),
	)
	return keysCmd
}

func (a *app) keyStore() (*eea.KeyStore, error) {
	return eea.NewKeyStore(a.fs, a.cfg.KeysDir)
}

func nameArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

func (a *app) printKeys(keys eea.KeySet) {
	for i, k := range keys {
		fmt.Fprintf(a.out, "%d: %s\n", i+1, k)
	}
}

func newKeysGenerateCmd(a *app) *cobra.Command {
	var (
		bits  int
		count int
		force bool
	)

	cmd := &cobra.Command{
		Use:   "generate [name.keys]",
		Short: "Generate a new keys file",
		Long: `Generate a set of random keys and save them protected by a password.

Examples:
  # Three 512-bit keys in keys.keys
  eea keys generate

  # Five 1024-bit keys in work.keys
  eea keys generate work.keys --bits 1024 --count 5`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("bits") {
				bits = a.cfg.KeyBits
			}
			if !cmd.Flags().Changed("count") {
				count = a.cfg.NumKeys
			}

			store, err := a.keyStore()
			if err != nil {
				return err
			}
			name := nameArg(args)
			if store.Exists(name) && !force {
				return fmt.Errorf("keys file %q already exists (use --force to replace it)", name)
			}

			keys, err := eea.GenerateKeys(bits, count)
			if err != nil {
				return err
			}
			provider, err := a.keyProvider(true)
			if err != nil {
				return err
			}
			path, err := store.Save(name, keys, provider)
			if err != nil {
				return err
			}

			a.printKeys(keys)
			a.logger.Info("keys file saved", slog.String("path", path), slog.Int("keys", len(keys)), slog.Int("bits", bits))
			return nil
		},
	}

	cmd.Flags().IntVar(&bits, "bits", eea.DefaultKeyBits, "key size in bits (multiple of 256)")
	cmd.Flags().IntVar(&count, "count", eea.DefaultNumKeys, "number of keys")
	cmd.Flags().BoolVar(&force, "force", false, "replace an existing keys file")
	return cmd
}

func newKeysListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List keys files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.keyStore()
			if err != nil {
				return err
			}
			names, err := store.List()
			if err != nil {
				return err
			}
			if len(names) == 0 {
				fmt.Fprintf(a.out, "No keys files in %s\n", store.Dir())
				return nil
			}
			for _, name := range names {
				fmt.Fprintln(a.out, name)
			}
			return nil
		},
	}
}

func newKeysViewCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "view [name.keys]",
		Short: "Print the keys stored in a keys file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			keys, err := a.loadKeys(nameArg(args))
			if err != nil {
				return err
			}
			a.printKeys(keys)
			return nil
		},
	}
}

func newKeysDeleteCmd(a *app) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete name.keys",
		Short: "Delete a keys file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.keyStore()
			if err != nil {
				return err
			}
			name := args[0]
			if !store.Exists(name) {
				return fmt.Errorf("keys file %q does not exist", name)
			}

			if !yes {
				answer, err := a.readLine(fmt.Sprintf("Are you sure you want to delete '%s'? (y/n) (default: n): ", name))
				if err != nil {
					return err
				}
				if !strings.EqualFold(strings.TrimSpace(answer), "y") {
					fmt.Fprintln(a.out, "Deletion aborted.")
					return nil
				}
			}

			if err := store.Delete(name); err != nil {
				return err
			}
			fmt.Fprintln(a.out, "Keys file was deleted successfully")
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}

func newKeysPasswdCmd(a *app) *cobra.Command {
	var newPasswordEnv string

	cmd := &cobra.Command{
		Use:   "passwd [name.keys]",
		Short: "Change the password of a keys file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.keyStore()
			if err != nil {
				return err
			}

			var oldKey eea.KeyProvider
			if a.passwordEnv != "" {
				oldKey = eea.NewEnvKeyProvider(a.passwordEnv)
			} else {
				oldKey, err = a.promptProvider("Current password: ", false)
				if err != nil {
					return err
				}
			}

			var newKey eea.KeyProvider
			if newPasswordEnv != "" {
				newKey = eea.NewEnvKeyProvider(newPasswordEnv)
			} else {
				newKey, err = a.promptProvider("New password: ", true)
				if err != nil {
					return err
				}
			}

			name := nameArg(args)
			if err := store.ChangePassword(name, oldKey, newKey); err != nil {
				return err
			}
			fmt.Fprintln(a.out, "Password changed")
			return nil
		},
	}

	cmd.Flags().StringVar(&newPasswordEnv, "new-password-env", "", "read the new password from this environment variable")
	return cmd
}

// loadKeys unlocks a keys file from the configured keys directory
func (a *app) loadKeys(name string) (eea.KeySet, error) {
	store, err := a.keyStore()
	if err != nil {
		return nil, err
	}
	if !store.Exists(name) {
		if name == "" {
			name = eea.DefaultKeysFile
		}
		return nil, fmt.Errorf("keys file %q not found in %s (create one with 'eea keys generate' or use --ghost)", name, store.Dir())
	}
	provider, err := a.keyProvider(false)
	if err != nil {
		return nil, err
	}
	return store.Load(name, provider)
}

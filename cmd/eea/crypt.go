package main

import (
	"fmt"
	"log/slog"

	"github.com/absfs/eea"
	"github.com/spf13/cobra"
)

// keyFlags selects the keys used by encrypt, decrypt and text
type keyFlags struct {
	keysFile string
	ghost    bool
	manual   []string
}

func (f *keyFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.keysFile, "keys", "k", "", "keys file in the keys directory (default keys.keys)")
	cmd.Flags().BoolVar(&f.ghost, "ghost", false, "use one-time keys instead of a keys file")
	cmd.Flags().StringArrayVar(&f.manual, "key", nil, "hex key to use instead of a keys file (repeatable)")
	cmd.MarkFlagsMutuallyExclusive("keys", "ghost")
	cmd.MarkFlagsMutuallyExclusive("keys", "key")
}

// resolveKeys returns manually entered keys, fresh ghost keys (encrypt
// only) or the keys of a keys file
func (a *app) resolveKeys(f *keyFlags, mode eea.Mode) (eea.KeySet, error) {
	if len(f.manual) > 0 {
		return eea.ParseKeySet(f.manual)
	}
	if f.ghost {
		if mode == eea.ModeDecrypt {
			return nil, fmt.Errorf("ghost mode decryption needs the keys: pass them with --key")
		}
		keys, err := eea.GenerateKeys(a.cfg.KeyBits, a.cfg.NumKeys)
		if err != nil {
			return nil, err
		}
		fmt.Fprintln(a.out, "Encrypted with the following keys:")
		a.printKeys(keys)
		return keys, nil
	}
	return a.loadKeys(f.keysFile)
}

// resolveEngine resolves the keys and binds them to a cipher engine
func (a *app) resolveEngine(f *keyFlags, mode eea.Mode) (*eea.ChainEngine, error) {
	keys, err := a.resolveKeys(f, mode)
	if err != nil {
		return nil, err
	}
	return eea.NewChainEngine(keys)
}

func newEncryptCmd(a *app) *cobra.Command {
	return newCryptCmd(a, eea.ModeEncrypt, &cobra.Command{
		Use:   "encrypt path...",
		Short: "Encrypt files or directories",
		Long: `Encrypt files or whole directories. Every file is written next to the
original with the .eea extension.

Examples:
  # Encrypt a file with the default keys file
  eea encrypt notes.txt

  # Encrypt a directory with four workers and keep the originals
  eea encrypt ~/Documents --threads 4 --overwrite=false

  # Encrypt with one-time keys
  eea encrypt secret.pdf --ghost`,
	})
}

func newDecryptCmd(a *app) *cobra.Command {
	return newCryptCmd(a, eea.ModeDecrypt, &cobra.Command{
		Use:   "decrypt path...",
		Short: "Decrypt .eea files or directories",
		Long: `Decrypt .eea files or whole directories. Files without the .eea
extension are skipped.

Examples:
  eea decrypt notes.txt.eea
  eea decrypt ~/Documents --threads 4 --keys work.keys`,
	})
}

func newCryptCmd(a *app, mode eea.Mode, cmd *cobra.Command) *cobra.Command {
	var (
		keys      keyFlags
		overwrite bool
		threads   int
	)

	cmd.Args = cobra.MinimumNArgs(1)
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		if !cmd.Flags().Changed("overwrite") {
			overwrite = a.cfg.Overwrite
		}
		if !cmd.Flags().Changed("threads") {
			threads = a.cfg.Threads
		}

		var files []string
		for _, arg := range args {
			found, err := eea.CollectFiles(a.fs, arg)
			if err != nil {
				return err
			}
			files = append(files, found...)
		}
		if len(files) == 0 {
			fmt.Fprintln(a.out, "No files found")
			return nil
		}

		ks, err := a.resolveKeys(&keys, mode)
		if err != nil {
			return err
		}

		p, err := eea.NewProcessor(a.fs, eea.WithLogger(a.logger))
		if err != nil {
			return err
		}
		results, err := p.Process(cmd.Context(), files, ks, overwrite, threads, mode)
		report := eea.Summarize(results)
		for _, r := range results {
			if r.Err != nil {
				fmt.Fprintf(a.errOut, "%s: %v\n", r.Path, r.Err)
			}
		}
		fmt.Fprintf(a.out, "%s: %d succeeded, %d failed, %d skipped\n", mode, report.Succeeded, report.Failed, report.Skipped)
		a.logger.Debug("batch report", slog.String("batch_id", report.ID.String()), slog.Int("total", report.Total))

		if err != nil {
			return err
		}
		if report.Failed > 0 {
			return fmt.Errorf("%d of %d files failed", report.Failed, report.Total)
		}
		return nil
	}

	keys.register(cmd)
	cmd.Flags().BoolVar(&overwrite, "overwrite", true, "remove the source file after success")
	cmd.Flags().IntVarP(&threads, "threads", "t", 1, "number of worker threads")
	return cmd
}

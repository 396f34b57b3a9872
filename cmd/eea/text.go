package main

import (
	"fmt"
	"strings"

	"github.com/absfs/eea"
	"github.com/spf13/cobra"
)

func newTextCmd(a *app) *cobra.Command {
	textCmd := &cobra.Command{
		Use:   "text",
		Short: "Encrypt or decrypt text",
	}
	textCmd.AddCommand(newTextEncryptCmd(a), newTextDecryptCmd(a))
	return textCmd
}

// textArg joins the arguments or reads one line from stdin
func (a *app) textArg(args []string, prompt string) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	return a.readLine(prompt)
}

func newTextEncryptCmd(a *app) *cobra.Command {
	var keys keyFlags

	cmd := &cobra.Command{
		Use:   "encrypt [text...]",
		Short: "Encrypt text and print it as base64",
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := a.resolveEngine(&keys, eea.ModeEncrypt)
			if err != nil {
				return err
			}
			text, err := a.textArg(args, "Text: ")
			if err != nil {
				return err
			}
			encoded, err := eea.EncodeText([]byte(text), engine)
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, encoded)
			return nil
		},
	}
	keys.register(cmd)
	return cmd
}

func newTextDecryptCmd(a *app) *cobra.Command {
	var keys keyFlags

	cmd := &cobra.Command{
		Use:   "decrypt [base64]",
		Short: "Decrypt base64 text produced by text encrypt",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := a.resolveEngine(&keys, eea.ModeDecrypt)
			if err != nil {
				return err
			}
			text, err := a.textArg(args, "Encrypted text: ")
			if err != nil {
				return err
			}
			plaintext, err := eea.DecodeText(text, engine)
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, string(plaintext))
			return nil
		},
	}
	keys.register(cmd)
	return cmd
}

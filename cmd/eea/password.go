package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/absfs/eea"
	"golang.org/x/term"
)

// readLine prints prompt and reads one line from stdin without the line
// ending. A final line without newline is accepted.
func (a *app) readLine(prompt string) (string, error) {
	if prompt != "" {
		fmt.Fprint(a.errOut, prompt)
	}
	line, err := a.in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// readPassword reads a password without echo when stdin is a terminal
func (a *app) readPassword(prompt string) ([]byte, error) {
	if a.inFile != nil && term.IsTerminal(int(a.inFile.Fd())) {
		fmt.Fprint(a.errOut, prompt)
		pw, err := term.ReadPassword(int(a.inFile.Fd()))
		fmt.Fprintln(a.errOut)
		if err != nil {
			return nil, fmt.Errorf("failed to read password: %w", err)
		}
		return pw, nil
	}

	line, err := a.readLine(prompt)
	if err != nil {
		return nil, fmt.Errorf("failed to read password: %w", err)
	}
	return []byte(line), nil
}

// keyProvider returns the provider protecting keys files. New passwords
// are asked for twice.
func (a *app) keyProvider(confirm bool) (eea.KeyProvider, error) {
	if a.passwordEnv != "" {
		return eea.NewEnvKeyProvider(a.passwordEnv), nil
	}
	return a.promptProvider("Password: ", confirm)
}

// promptProvider asks for a password. Empty input is refused at the
// prompt even though the vault itself accepts an empty password.
func (a *app) promptProvider(prompt string, confirm bool) (eea.KeyProvider, error) {
	pw, err := a.readPassword(prompt)
	if err != nil {
		return nil, err
	}
	if len(pw) == 0 {
		return nil, eea.ErrEmptyPassword
	}
	if !confirm {
		return eea.NewPasswordKeyProvider(pw), nil
	}

	again, err := a.readPassword("Confirm password: ")
	if err != nil {
		return nil, err
	}
	if err := eea.ConfirmPassword(pw, again); err != nil {
		return nil, err
	}
	return eea.NewPasswordKeyProvider(pw), nil
}

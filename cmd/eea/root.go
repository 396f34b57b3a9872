package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/absfs/absfs"
	"github.com/absfs/eea"
	"github.com/absfs/osfs"
	"github.com/spf13/cobra"
)

const version = "1.0.0"

// app carries the state shared by every command of one invocation
type app struct {
	fs     absfs.FileSystem
	in     *bufio.Reader
	inFile *os.File // set when stdin may be a terminal
	out    io.Writer
	errOut io.Writer
	exeDir string

	cfg    eea.Config
	logger *slog.Logger

	// Global flags
	configPath  string
	verbose     bool
	passwordEnv string
}

func newApp(fsys absfs.FileSystem, stdin io.Reader, stdout, stderr io.Writer) *app {
	a := &app{
		fs:     fsys,
		in:     bufio.NewReader(stdin),
		out:    stdout,
		errOut: stderr,
		cfg:    eea.DefaultConfig(),
		logger: slog.New(slog.NewTextHandler(stderr, nil)),
	}
	if f, ok := stdin.(*os.File); ok {
		a.inFile = f
	}
	return a
}

// setup loads the configuration and installs the logger
func (a *app) setup() error {
	cfg, err := loadConfig(a.fs, a.configPath, a.exeDir, a.logger)
	if err != nil {
		return err
	}
	a.cfg = cfg

	level := parseLevel(cfg.LogLevel)
	if a.verbose {
		level = slog.LevelDebug
	}
	a.logger = slog.New(slog.NewTextHandler(a.errOut, &slog.HandlerOptions{Level: level}))
	return nil
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func newRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "eea",
		Short: "Elite Encryption Algorithm file encryption tool",
		Long: `eea encrypts and decrypts files and directories with sets of hex keys
kept in password protected keys files.

Commands:
  keys       Generate, list, view, delete and re-protect keys files
  encrypt    Encrypt files or directories
  decrypt    Decrypt .eea files or directories
  text       Encrypt or decrypt a line of text
  rotate     Re-encrypt .eea files with a different keys file`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
	}

	rootCmd.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (default: eea.conf next to the executable)")
	rootCmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&a.passwordEnv, "password-env", "", "read the keys file password from this environment variable")

	rootCmd.AddCommand(
		newKeysCmd(a),
		newEncryptCmd(a),
		newDecryptCmd(a),
		newTextCmd(a),
		newRotateCmd(a),
	)
	return rootCmd
}

// Execute builds the command tree for the host filesystem and runs it
func Execute() {
	fs, err := osfs.NewFS()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	a := newApp(fs, os.Stdin, os.Stdout, os.Stderr)
	if exe, err := os.Executable(); err == nil {
		a.exeDir = filepath.Dir(exe)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(a).ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

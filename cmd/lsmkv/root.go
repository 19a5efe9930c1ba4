package main

import (
	"fmt"
	"os"

	"lsmkv/pkg/config"
	"lsmkv/pkg/db"
	"lsmkv/pkg/reference"
	"lsmkv/pkg/store"

	"github.com/spf13/cobra"
)

const (
	engineLSM    = "lsm"
	engineMemory = "memory"
)

const oneShotNote = "Each one-shot command opens the store and closes it again. Closing always flushes,\n" +
	"so every invocation adds a segment file, an empty one for get, scan and stats.\n" +
	"Use \"lsmkv shell\" to run many reads against one open store."

type overrides struct {
	dir       string
	threshold int64
}

var (
	configPath string
	engineName string
	flagValues overrides

	cfg config.Config
)

var rootCmd = &cobra.Command{
	Use:           "lsmkv",
	Short:         "embedded LSM key-value store",
	Long:          "lsmkv stores ordered key-value pairs in a memtable flushed to immutable sorted segment files.\n\n" + oneShotNote,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = initConfig(configPath, flagValues)
		if err != nil {
			return err
		}
		initLogger(&cfg, cmd.ErrOrStderr())
		return nil
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configPath, "config", "config.yaml", "path to the YAML config")
	flags.StringVar(&flagValues.dir, "dir", "", "data directory (overrides storage.path)")
	flags.Int64Var(&flagValues.threshold, "threshold", 0, "flush threshold in bytes (overrides storage.flush_threshold)")
	flags.StringVar(&engineName, "engine", engineLSM, "storage engine: lsm or memory")
}

// openDAO opens the engine selected by --engine.
func openDAO() (db.DAO, error) {
	switch engineName {
	case engineLSM:
		s, err := store.New(cfg.Storage.Options())
		if err != nil {
			return nil, fmt.Errorf("failed to open store: %w", err)
		}
		return s, nil
	case engineMemory:
		return reference.New(), nil
	default:
		return nil, fmt.Errorf("unknown engine %q", engineName)
	}
}

// withDAO opens the engine, runs fn and closes the engine again.
func withDAO(fn func(db.DAO) error) (err error) {
	dao, err := openDAO()
	if err != nil {
		return err
	}
	defer func() {
		if cerr := dao.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close store: %w", cerr)
		}
	}()
	return fn(dao)
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

package main

import (
	"lsmkv/pkg/db"

	"github.com/spf13/cobra"
)

var scanLimit int

func init() {
	scanCmd.Flags().IntVar(&scanLimit, "limit", 0, "maximum number of records (0 = no limit)")
	rootCmd.AddCommand(scanCmd)
}

var scanCmd = &cobra.Command{
	Use:   "scan [from]",
	Short: "list records in key order",
	Long:  "list live records with key >= from in ascending key order.\n\n" + oneShotNote,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var from string
		if len(args) == 1 {
			from = args[0]
		}
		return withDAO(func(dao db.DAO) error {
			s := &session{dao: dao, out: cmd.OutOrStdout()}
			return s.scan(from, scanLimit)
		})
	},
}

package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"lsmkv/pkg/db"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(shellCmd)
}

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "interactive shell",
	Long:  "open the store once and run commands against it until exit",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDAO(func(dao db.DAO) error {
			rl, err := readline.NewEx(&readline.Config{
				Prompt:          "lsmkv> ",
				HistoryFile:     filepath.Join(os.TempDir(), "lsmkv.history"),
				InterruptPrompt: "^C",
				EOFPrompt:       "exit",
				AutoComplete:    completer{},
			})
			if err != nil {
				return fmt.Errorf("failed to start shell: %w", err)
			}
			defer rl.Close()

			runShell(&session{dao: dao, out: rl.Stdout()}, rl)
			return nil
		})
	},
}

// runShell reads lines until exit or EOF. Command errors are printed and the
// loop goes on.
func runShell(s *session, rl *readline.Instance) {
	printUsage(s.out)
	for {
		line, err := rl.Readline()
		if err != nil {
			// Ctrl+D / Ctrl+C
			fmt.Fprintln(s.out)
			return
		}

		quit, err := s.exec(line)
		if err != nil {
			fmt.Fprintln(s.out, "error:", err)
		}
		if quit {
			fmt.Fprintln(s.out, "Bye!")
			return
		}
	}
}

var errUsage = errors.New("wrong number of arguments")

// exec runs one shell line. quit reports whether the shell should stop.
func (s *session) exec(line string) (quit bool, err error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return false, nil
	}

	cmd, rest := splitCmdRest(line)
	switch strings.ToLower(cmd) {
	case "put", "set":
		key, value := splitCmdRest(rest)
		if key == "" {
			return false, fmt.Errorf("put <key> <value>: %w", errUsage)
		}
		return false, s.put(key, value)
	case "get":
		if rest == "" || strings.ContainsAny(rest, " \t") {
			return false, fmt.Errorf("get <key>: %w", errUsage)
		}
		return false, s.get(rest)
	case "del", "rm":
		if rest == "" || strings.ContainsAny(rest, " \t") {
			return false, fmt.Errorf("del <key>: %w", errUsage)
		}
		return false, s.del(rest)
	case "scan":
		args := strings.Fields(rest)
		if len(args) > 2 {
			return false, fmt.Errorf("scan [from] [limit]: %w", errUsage)
		}
		var (
			from  string
			limit int
		)
		if len(args) > 0 {
			from = args[0]
		}
		if len(args) > 1 {
			if limit, err = strconv.Atoi(args[1]); err != nil {
				return false, fmt.Errorf("scan limit %q: %w", args[1], err)
			}
		}
		return false, s.scan(from, limit)
	case "flush":
		return false, s.flush()
	case "stats":
		return false, s.stats()
	case "help":
		printUsage(s.out)
		return false, nil
	case "exit", "quit":
		return true, nil
	default:
		return false, fmt.Errorf("unknown command %q", cmd)
	}
}

// splitCmdRest extracts the first token and the rest of the line (raw).
func splitCmdRest(line string) (cmd, rest string) {
	for i, r := range line {
		if r == ' ' || r == '\t' {
			return line[:i], strings.TrimSpace(line[i+1:])
		}
	}
	return line, ""
}

func printUsage(w io.Writer) {
	fmt.Fprint(w, `commands:
  put <key> <value>     store a value
  get <key>             print a value
  del <key>             delete a key
  scan [from] [limit]   list records in key order
  flush                 write the memtable to a new segment
  stats                 print store statistics
  exit                  leave the shell
`)
}

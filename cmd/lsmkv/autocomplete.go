package main

import "strings"

var allCommands = []string{
	"put", "get", "del", "scan", "flush", "stats", "help", "exit",
}

// completer implements readline.AutoCompleter for command names.
type completer struct{}

// Do returns the suffixes that complete the command under the cursor.
func (completer) Do(line []rune, pos int) ([][]rune, int) {
	if pos < 0 || pos > len(line) {
		pos = len(line)
	}
	prefix := string(line[:pos])
	if strings.ContainsAny(prefix, " \t") {
		return nil, 0
	}
	return matchSuffixes(allCommands, prefix), len([]rune(prefix))
}

func matchSuffixes(options []string, prefix string) [][]rune {
	lpre := strings.ToLower(prefix)
	var out [][]rune
	for _, o := range options {
		if strings.HasPrefix(o, lpre) {
			out = append(out, []rune(o[len(lpre):]))
		}
	}
	return out
}

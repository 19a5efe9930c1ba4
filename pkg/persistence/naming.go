package persistence

import (
	"fmt"
	"strconv"
	"strings"
)

// Naming describes segment file names of the form <prefix>_<serial>.<ext>.
type Naming struct {
	Prefix string
	Ext    string
}

func DefaultNaming() Naming {
	return Naming{Prefix: "sstable", Ext: "sst"}
}

func (n Naming) FileName(serial uint64) string {
	return fmt.Sprintf("%s_%d.%s", n.Prefix, serial, n.Ext)
}

// Parse extracts the serial number from a segment file name. The second
// result is false for names that do not follow the convention.
func (n Naming) Parse(name string) (uint64, bool) {
	rest, ok := strings.CutPrefix(name, n.Prefix+"_")
	if !ok {
		return 0, false
	}
	digits, ok := strings.CutSuffix(rest, "."+n.Ext)
	if !ok || digits == "" {
		return 0, false
	}
	for _, c := range digits {
		if c < '0' || c > '9' {
			return 0, false
		}
	}
	serial, err := strconv.ParseUint(digits, 10, 64)
	if err != nil {
		return 0, false
	}
	return serial, true
}

// Package pathutil handles raw-data folder conventions: cycler type
// detection, channel folder discovery, and capacity hints embedded in
// folder names.
package pathutil

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// CyclerType identifies the charge/discharge instrument family.
type CyclerType string

const (
	CyclerToyo CyclerType = "TOYO"
	CyclerPNE  CyclerType = "PNE"
)

// capacityPattern matches a capacity token like "1689mAh" or "4-5mAh"
// (the dash form encodes a decimal point in folder names).
var capacityPattern = regexp.MustCompile(`(\d+([\-.]\d+)?)mAh`)

// bracketPattern extracts the channel number from names like "M02Ch073[073]".
var bracketPattern = regexp.MustCompile(`\[([^\]]+)\]`)

// DetectCyclerType infers the instrument family from folder layout:
// a Pattern subdirectory means PNE, otherwise Toyo.
func DetectCyclerType(path string) CyclerType {
	info, err := os.Stat(filepath.Join(path, "Pattern"))
	if err == nil && info.IsDir() {
		return CyclerPNE
	}
	return CyclerToyo
}

// ValidateDir fails when the path is missing or not a directory.
func ValidateDir(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("path does not exist: %s", path)
	}
	if !info.IsDir() {
		return fmt.Errorf("path is not a directory: %s", path)
	}
	return nil
}

// ChannelFolders lists the per-channel data folders under a raw-data path.
// Toyo channels are bare numbers and sort numerically; PNE channel names
// sort lexically. The Pattern folder is never a channel.
func ChannelFolders(path string, cyclerType CyclerType) ([]string, error) {
	if err := ValidateDir(path); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("read dir %s: %w", path, err)
	}

	var folders []string
	for _, e := range entries {
		if !e.IsDir() || e.Name() == "Pattern" {
			continue
		}
		if cyclerType == CyclerToyo && !isDigits(e.Name()) {
			continue
		}
		folders = append(folders, e.Name())
	}

	if cyclerType == CyclerToyo {
		sort.Slice(folders, func(i, j int) bool {
			a, _ := strconv.Atoi(folders[i])
			b, _ := strconv.Atoi(folders[j])
			return a < b
		})
	} else {
		sort.Strings(folders)
	}
	return folders, nil
}

// CapacityFromName extracts a battery capacity hint (mAh) from a path,
// returning 0 when the path carries no capacity token.
func CapacityFromName(path string) float64 {
	// Dots in folder names are separators, not decimal points; the naming
	// convention spells a decimal capacity with a dash ("4-5mAh" is 4.5).
	cleaned := strings.NewReplacer(".", " ", "_", " ", "@", " ", "(", " ", ")", " ").Replace(path)
	m := capacityPattern.FindStringSubmatch(cleaned)
	if m == nil {
		return 0
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(m[1], "-", "."), 64)
	if err != nil {
		return 0
	}
	return v
}

// BracketToken returns the text inside the first bracket pair, or the
// input unchanged when there is none.
func BracketToken(name string) string {
	m := bracketPattern.FindStringSubmatch(name)
	if m == nil {
		return name
	}
	return m[1]
}

// ExpandCycleList turns a cycle selection string like "1-5 10 15" into
// the explicit list [1 2 3 4 5 10 15].
func ExpandCycleList(input string) ([]int, error) {
	var out []int
	for _, part := range strings.Fields(input) {
		if start, end, ok := strings.Cut(part, "-"); ok {
			s, err := strconv.Atoi(start)
			if err != nil {
				return nil, fmt.Errorf("bad cycle range %q: %w", part, err)
			}
			e, err := strconv.Atoi(end)
			if err != nil {
				return nil, fmt.Errorf("bad cycle range %q: %w", part, err)
			}
			for i := s; i <= e; i++ {
				out = append(out, i)
			}
			continue
		}
		v, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("bad cycle number %q: %w", part, err)
		}
		out = append(out, v)
	}
	return out, nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

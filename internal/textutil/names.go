package textutil

import (
	"strconv"
	"strings"
)

// ConvertedPrefix is prepended to every suggested output name.
const ConvertedPrefix = "converted_"

// BaseName drops the final extension of name. Names without a dot, or whose
// only dot is the leading character, are returned unchanged.
func BaseName(name string) string {
	idx := strings.LastIndex(name, ".")
	if idx <= 0 {
		return name
	}
	return name[:idx]
}

// ConvertedName derives the suggested file name for a converted output:
// converted_<base>.<ext>, where base is the original name without its final
// extension.
func ConvertedName(original, ext string) string {
	ext = strings.TrimPrefix(strings.TrimSpace(ext), ".")
	return ConvertedPrefix + BaseName(original) + "." + ext
}

// NameSet hands out names that are unique within one set, appending _2, _3
// and so on before the extension when a name repeats.
type NameSet struct {
	seen map[string]int
}

// NewNameSet returns an empty name set.
func NewNameSet() *NameSet {
	return &NameSet{seen: make(map[string]int)}
}

// Claim returns name, or a suffixed variant when name was already claimed.
func (s *NameSet) Claim(name string) string {
	if s.seen == nil {
		s.seen = make(map[string]int)
	}
	candidate := name
	for {
		count := s.seen[candidate]
		if count == 0 {
			s.seen[candidate] = 1
			return candidate
		}
		s.seen[name]++
		candidate = suffixed(name, s.seen[name])
	}
}

func suffixed(name string, n int) string {
	base := BaseName(name)
	ext := strings.TrimPrefix(name, base)
	return base + "_" + strconv.Itoa(n) + ext
}

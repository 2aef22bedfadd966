package player

import (
	"embed"
	"fmt"
	"path"
	"sort"
	"strings"
)

//go:embed champions/*.s
var champions embed.FS

// DefaultChampions are given to new players in turn; the fourth and every
// later player get the last one.
var DefaultChampions = []string{"sweepmaster", "kappa", "helltrain", "justin_bee"}

// Builtin returns the source of a built-in champion.
func Builtin(name string) (string, error) {
	b, err := champions.ReadFile(path.Join("champions", name+".s"))
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrUnknownBuiltin, name)
	}
	return string(b), nil
}

// BuiltinNames lists the embedded champions.
func BuiltinNames() []string {
	entries, _ := champions.ReadDir("champions")
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), ".s"))
	}
	sort.Strings(names)
	return names
}

func defaultChampion(playerCount int) string {
	return DefaultChampions[min(playerCount, len(DefaultChampions)-1)]
}

package scenario

import (
	"fmt"
	"sort"
	"sync"
)

var (
	regMu    sync.Mutex
	registry = map[string]Scenario{}
)

// Register adds a scenario to the suite's global registry. Scenario packages
// call it from init; the binary runs whatever got registered. Duplicate
// names panic because they hide one of the two flows.
func Register(sc Scenario) {
	if sc.Name == "" || sc.Run == nil {
		panic("scenario: Register requires a name and a body")
	}
	regMu.Lock()
	defer regMu.Unlock()
	if _, dup := registry[sc.Name]; dup {
		panic(fmt.Sprintf("scenario: duplicate registration of %q", sc.Name))
	}
	registry[sc.Name] = sc
}

// Registered returns all registered scenarios, sorted by name so suite
// order is stable.
func Registered() []Scenario {
	regMu.Lock()
	defer regMu.Unlock()
	out := make([]Scenario, 0, len(registry))
	for _, sc := range registry {
		out = append(out, sc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

package gateway

import (
	"math"
	"sort"
)

type rankKey struct {
	healthy     bool
	successRate float64
	avgResponse float64
	samples     int64
}

// latency treats gateways without samples as slowest
func (k rankKey) latency() float64 {
	if k.samples == 0 {
		return math.Inf(1)
	}
	return k.avgResponse
}

type candidate struct {
	id         ID
	preference int
	key        rankKey
}

// rank orders candidates by health, preferred gateway, success rate (desc),
// average response time (asc) and finally static preference
func rank(cands []candidate, preferred ID) []ID {
	sort.SliceStable(cands, func(i, j int) bool {
		a, b := cands[i], cands[j]
		if a.key.healthy != b.key.healthy {
			return a.key.healthy
		}
		if preferred != "" && (a.id == preferred) != (b.id == preferred) {
			return a.id == preferred
		}
		if a.key.successRate != b.key.successRate {
			return a.key.successRate > b.key.successRate
		}
		if la, lb := a.key.latency(), b.key.latency(); la != lb {
			return la < lb
		}
		return a.preference < b.preference
	})
	ids := make([]ID, len(cands))
	for i, c := range cands {
		ids[i] = c.id
	}
	return ids
}

// preferenceOf returns the static preference of a gateway, lower wins.
// Explicit preferences come first, then the built-in order, then registration order.
func preferenceOf(explicit int, id ID, index int) int {
	if explicit > 0 {
		return explicit
	}
	for i, known := range DefaultPreference {
		if known == id {
			return 1000 + i
		}
	}
	return 2000 + index
}

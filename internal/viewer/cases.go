package viewer

import (
	"errors"
	"fmt"
	"math/rand"
	"time"
)

// ErrCaseIndex is returned for an index outside the assignment.
var ErrCaseIndex = errors.New("case index out of range")

// CaseID formats case n (1-based) with prefix.
func CaseID(prefix string, n int) string {
	return fmt.Sprintf("%s%03d", prefix, n)
}

// Assign returns the cases shown to one evaluator: pinned first, then
// assigned-1 others in random order. A zero seed uses the clock.
func Assign(prefix string, count, assigned int, pinned string, seed int64) ([]string, error) {
	if count < 1 {
		return nil, fmt.Errorf("case count %d must be positive", count)
	}
	if assigned < 1 || assigned > count {
		return nil, fmt.Errorf("assigned cases %d must be within 1..%d", assigned, count)
	}

	all := make([]string, 0, count)
	found := pinned == ""
	for n := 1; n <= count; n++ {
		id := CaseID(prefix, n)
		if id == pinned {
			found = true
			continue
		}
		all = append(all, id)
	}
	if !found {
		return nil, fmt.Errorf("pinned case %q not in %s001..%s", pinned, prefix, CaseID(prefix, count))
	}

	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))
	rng.Shuffle(len(all), func(i, j int) { all[i], all[j] = all[j], all[i] })

	out := make([]string, 0, assigned)
	if pinned != "" {
		out = append(out, pinned)
	}
	for _, id := range all {
		if len(out) == assigned {
			break
		}
		out = append(out, id)
	}
	return out, nil
}

// File: pkg/multi/mirror/strategy.go
package mirror

import (
	"fmt"
	"strings"
)

// StrategyKind decides how many backends must accept a write for it to count as successful
type StrategyKind int

const (
	KindAllOrFail StrategyKind = iota
	KindAtLeastOne
	KindQuorum
)

func (k StrategyKind) String() string {
	switch k {
	case KindAllOrFail:
		return "all_or_fail"
	case KindAtLeastOne:
		return "at_least_one"
	case KindQuorum:
		return "quorum"
	default:
		return fmt.Sprintf("StrategyKind(%d)", int(k))
	}
}

func ParseStrategyKind(s string) (StrategyKind, error) {
	switch strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), "-", "_")) {
	case "all_or_fail", "all":
		return KindAllOrFail, nil
	case "at_least_one", "any":
		return KindAtLeastOne, nil
	case "quorum", "majority":
		return KindQuorum, nil
	default:
		return 0, fmt.Errorf("unknown write strategy %q (expected all_or_fail, at_least_one or quorum)", s)
	}
}

// WriteStrategy pairs the success criterion with whether partial writes are rolled back on failure
type WriteStrategy struct {
	Kind     StrategyKind
	Rollback bool
}

func AllOrFail(rollback bool) WriteStrategy {
	return WriteStrategy{Kind: KindAllOrFail, Rollback: rollback}
}

func AtLeastOne(rollback bool) WriteStrategy {
	return WriteStrategy{Kind: KindAtLeastOne, Rollback: rollback}
}

func Quorum(rollback bool) WriteStrategy {
	return WriteStrategy{Kind: KindQuorum, Rollback: rollback}
}

// Required returns the number of successful backends needed out of n
func (s WriteStrategy) Required(n int) int {
	switch s.Kind {
	case KindAtLeastOne:
		return 1
	case KindQuorum:
		return n/2 + 1
	default:
		return n
	}
}

func (s WriteStrategy) String() string {
	if s.Rollback {
		return s.Kind.String() + "+rollback"
	}
	return s.Kind.String()
}

// ReturnPolicy decides when a write unblocks the caller relative to backend completion.
// It is orthogonal to WriteStrategy, which decides what counts as success
type ReturnPolicy int

const (
	// Wait for every backend, then evaluate
	WaitAll ReturnPolicy = iota
	// Return once the threshold is met and finish the remaining backends in the background
	Optimistic
	// Stop as soon as the outcome is decided, either way
	FastFail
)

func (p ReturnPolicy) String() string {
	switch p {
	case WaitAll:
		return "wait_all"
	case Optimistic:
		return "optimistic"
	case FastFail:
		return "fast_fail"
	default:
		return fmt.Sprintf("ReturnPolicy(%d)", int(p))
	}
}

func ParseReturnPolicy(s string) (ReturnPolicy, error) {
	switch strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), "-", "_")) {
	case "", "wait_all":
		return WaitAll, nil
	case "optimistic":
		return Optimistic, nil
	case "fast_fail":
		return FastFail, nil
	default:
		return 0, fmt.Errorf("unknown return policy %q (expected wait_all, optimistic or fast_fail)", s)
	}
}

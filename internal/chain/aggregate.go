package chain

import (
	"sort"

	"chainpulse/pkg/contracts/domain"
)

// OpenInterestByStrike sums open interest per strike across every expiration
// and both contract sides.
//
// A nil open interest counts as 0 for summation only; the normalized rows
// keep their nulls. Grouping uses exact decimal comparison so "100" and
// "100.0" land in the same bucket and float rounding can never split a
// strike. Strikes whose total is exactly 0 are excluded. The result is
// sorted strictly ascending by strike with no duplicates.
func OpenInterestByStrike(contracts []domain.OptionContract) []domain.StrikeOpenInterest {
	agg := make([]domain.StrikeOpenInterest, 0, len(contracts))
	for _, c := range contracts {
		if c.Strike == nil {
			// No grouping key. Rows with an uncoercible strike stay in the
			// normalized table but cannot participate in the aggregate.
			continue
		}
		var oi int64
		if c.OpenInterest != nil {
			oi = *c.OpenInterest
		}
		i := sort.Search(len(agg), func(i int) bool {
			return agg[i].Strike.Cmp(*c.Strike) >= 0
		})
		if i < len(agg) && agg[i].Strike.Equal(*c.Strike) {
			agg[i].TotalOpenInterest += oi
			continue
		}
		agg = append(agg, domain.StrikeOpenInterest{})
		copy(agg[i+1:], agg[i:])
		agg[i] = domain.StrikeOpenInterest{Strike: *c.Strike, TotalOpenInterest: oi}
	}

	out := make([]domain.StrikeOpenInterest, 0, len(agg))
	for _, a := range agg {
		if a.TotalOpenInterest != 0 {
			out = append(out, a)
		}
	}
	return out
}

// FilterByExpiration returns the contracts expiring on the given canonical
// date, sorted by (strike ascending, call before put). The ordering is part
// of the contract with the display layer, which renders it without
// re-sorting.
func FilterByExpiration(contracts []domain.OptionContract, expiration string) []domain.OptionContract {
	out := make([]domain.OptionContract, 0)
	for _, c := range contracts {
		if c.Expiration == expiration {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		switch {
		case a.Strike == nil && b.Strike == nil:
			return typeRank(a.OptionType) < typeRank(b.OptionType)
		case a.Strike == nil:
			return true
		case b.Strike == nil:
			return false
		}
		if cmp := a.Strike.Cmp(*b.Strike); cmp != 0 {
			return cmp < 0
		}
		return typeRank(a.OptionType) < typeRank(b.OptionType)
	})
	return out
}

func typeRank(t domain.OptionType) int {
	switch t {
	case domain.OptionTypeCall:
		return 0
	case domain.OptionTypePut:
		return 1
	default:
		return 2
	}
}

// Expirations returns the distinct expiration dates present, sorted
// ascending. The canonical YYYY-MM-DD form makes lexical order date order.
func Expirations(contracts []domain.OptionContract) []string {
	seen := make(map[string]struct{}, len(contracts))
	out := make([]string, 0)
	for _, c := range contracts {
		if c.Expiration == "" {
			continue
		}
		if _, ok := seen[c.Expiration]; ok {
			continue
		}
		seen[c.Expiration] = struct{}{}
		out = append(out, c.Expiration)
	}
	sort.Strings(out)
	return out
}

// Package ledger aggregates (account, amount) lists into per-account totals.
// It is an estimation/reporting tool for settlement and refund math, not a
// source of truth for solvency: amounts saturate at zero and nothing here can
// fail.
package ledger

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Op selects the fold used when entries for the same key collide.
type Op int

const (
	Add Op = iota
	Subtract
)

// Entry is one (account, amount) pair, optionally tagged with an asset so the
// same account can carry independent totals per asset.
type Entry struct {
	Account string          `json:"account"`
	Asset   string          `json:"asset,omitempty"`
	Amount  decimal.Decimal `json:"amount"`
}

type key struct {
	account string
	asset   string
}

// Merge groups a list by (account, asset) and folds duplicate entries with op.
// Subtraction floors at zero; negative balances are never represented. Within
// one list, duplicates under Subtract fold left to right in input order, so
// callers composing two lists should concatenate the minuend first (see
// SubtractLists).
func Merge(list []Entry, op Op) []Entry {
	totals := make(map[key]decimal.Decimal, len(list))
	order := make([]key, 0, len(list))
	for _, e := range list {
		k := key{account: e.Account, asset: e.Asset}
		existing, ok := totals[k]
		if !ok {
			totals[k] = e.Amount
			order = append(order, k)
			continue
		}
		switch op {
		case Subtract:
			next := existing.Sub(e.Amount)
			if next.IsNegative() {
				next = decimal.Zero
			}
			totals[k] = next
		default:
			totals[k] = existing.Add(e.Amount)
		}
	}
	out := make([]Entry, 0, len(order))
	for _, k := range order {
		out = append(out, Entry{Account: k.account, Asset: k.asset, Amount: totals[k]})
	}
	return out
}

// SumLists concatenates two lists and merges with Add.
func SumLists(a, b []Entry) []Entry {
	combined := make([]Entry, 0, len(a)+len(b))
	combined = append(combined, a...)
	combined = append(combined, b...)
	return Merge(combined, Add)
}

// SubtractLists subtracts b from a per (account, asset). Keys in b that do not
// appear in a have nothing to subtract from and are dropped, not zero-extended.
func SubtractLists(a, b []Entry) []Entry {
	present := make(map[key]struct{}, len(a))
	for _, e := range a {
		present[key{account: e.Account, asset: e.Asset}] = struct{}{}
	}
	combined := make([]Entry, 0, len(a)+len(b))
	combined = append(combined, Merge(a, Add)...)
	for _, e := range b {
		if _, ok := present[key{account: e.Account, asset: e.Asset}]; ok {
			combined = append(combined, e)
		}
	}
	return Merge(combined, Subtract)
}

// Accounts returns the deduplicated, sorted set of accounts in a list.
func Accounts(list []Entry) []string {
	seen := make(map[string]struct{}, len(list))
	out := make([]string, 0, len(list))
	for _, e := range list {
		if _, ok := seen[e.Account]; ok {
			continue
		}
		seen[e.Account] = struct{}{}
		out = append(out, e.Account)
	}
	sort.Strings(out)
	return out
}

// Total sums every amount in a list, ignoring keys.
func Total(list []Entry) decimal.Decimal {
	total := decimal.Zero
	for _, e := range list {
		total = total.Add(e.Amount)
	}
	return total
}

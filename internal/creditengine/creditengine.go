// Package creditengine implements the admission check every worker runs
// before it is allowed to submit a payload to the chain: compute the cost of
// the payload in credit units, then verify the owning account (and, per
// selection policy, its parent user) can cover every submission already
// in flight plus this one.
package creditengine

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/availproject/turbo-gateway/internal/hotstate"
	"github.com/availproject/turbo-gateway/internal/ledgerstore"
)

// Kind distinguishes the ways an admission check can fail, so callers
// (internal/worker, internal/intake) can map each to the right response.
type Kind int

const (
	KindNone Kind = iota
	KindInsufficientAccountCredits
	KindInsufficientFallbackCredits
	KindInsufficientTotalCredits
	KindInvalidCreditSelection
	KindCumulativeOverflow
)

// Error reports why an admission check failed.
type Error struct {
	Kind Kind
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

func newErr(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Engine runs the cost calculation and the cumulative gate against hotstate.
type Engine struct {
	hot *hotstate.Store
}

func New(hot *hotstate.Store) *Engine {
	return &Engine{hot: hot}
}

// oneKiB is the reference payload size the chain's fee schedule is quoted
// against; see CalculateCost.
const oneKiB = 1024

// CalculateCost converts a chain fee quote for this payload's size into
// credit units using the reference-fee ratio:
//
//	cost = fee(1 KiB) / fee(payloadLen) * payloadLen
//
// Both fees come from the same endpoint in the same call, so network
// fee-schedule drift cancels out of the ratio; only the payload's relative
// size matters.
func CalculateCost(oneKiBFee, payloadFee decimal.Decimal, payloadLen int) (decimal.Decimal, error) {
	if payloadFee.IsZero() {
		return decimal.Zero, fmt.Errorf("payload fee quote is zero")
	}
	return oneKiBFee.Div(payloadFee).Mul(decimal.NewFromInt(int64(payloadLen))), nil
}

// Admit runs the full gate described in spec.md §4.4: push this submission's
// cost onto the cumulative in-flight list, then decide admission from the
// list contents rather than a single point-in-time balance read, so that N
// submissions queued back-to-back cannot all pass a check that only one of
// them could actually afford.
func (e *Engine) Admit(ctx context.Context, account *ledgerstore.AppAccount, user *ledgerstore.User, submissionID string, cost decimal.Decimal) error {
	key := hotstate.CumulativeGateKey(user.UserID, account.CreditBalance.String(), user.GlobalCreditBalance.String())

	if _, err := e.hot.RPushInFlight(ctx, key, submissionID, cost.String()); err != nil {
		return fmt.Errorf("admit: %w", err)
	}

	members, err := e.hot.LRangeInFlight(ctx, key)
	if err != nil {
		return fmt.Errorf("admit: %w", err)
	}

	cumulative, err := sumMembers(members)
	if err != nil {
		return fmt.Errorf("admit: %w", err)
	}

	return decide(account.CreditSelection, cost, cumulative, account.CreditBalance, user.GlobalCreditBalance)
}

// decide is the pure policy switch Admit runs once the cumulative in-flight
// total has been read back from hotstate. Split out from Admit so the three
// selection policies' boundary cases can be table-tested without a Redis
// round trip.
func decide(selection ledgerstore.CreditSelection, cost, cumulative, accountBalance, userBalance decimal.Decimal) error {
	switch selection {
	case ledgerstore.SelectionStrictAccount:
		// Point check: a single submission larger than the account can ever
		// afford is rejected immediately regardless of what else is queued.
		if cost.GreaterThan(accountBalance) {
			return newErr(KindInsufficientAccountCredits, "submission cost %s exceeds account balance %s", cost, accountBalance)
		}
		// Cumulative check uses >=, not >: a queue whose running total
		// exactly equals the account balance is treated as exhausted,
		// because the balance must still cover every submission still
		// ahead of this one in the broadcast channel, not just this one in
		// isolation. Preserved exactly as the original credit gate computes
		// it; do not "fix" the off-by-one against SelectionAccountSpill.
		if cumulative.GreaterThanOrEqual(accountBalance) {
			return newErr(KindInsufficientAccountCredits, "cumulative in-flight %s reaches account balance %s", cumulative, accountBalance)
		}
		return nil

	case ledgerstore.SelectionStrictUser:
		if cost.GreaterThan(userBalance) {
			return newErr(KindInsufficientFallbackCredits, "submission cost %s exceeds user balance %s", cost, userBalance)
		}
		if cumulative.GreaterThanOrEqual(userBalance) {
			return newErr(KindInsufficientFallbackCredits, "cumulative in-flight %s reaches user balance %s", cumulative, userBalance)
		}
		return nil

	case ledgerstore.SelectionAccountSpill:
		total := accountBalance.Add(userBalance)
		if cost.GreaterThan(total) {
			return newErr(KindInsufficientTotalCredits, "submission cost %s exceeds combined balance %s", cost, total)
		}
		// Here the comparison after combining both buckets is strict: a
		// running total exactly equal to the combined balance still admits,
		// since the spill at finalization debits the account first and only
		// reaches into the user bucket for the remainder. This is the
		// mirror image of the strict-account case above and the two are
		// intentionally asymmetric.
		remaining := total.Sub(cumulative)
		if remaining.LessThan(decimal.Zero) {
			return newErr(KindInsufficientTotalCredits, "cumulative in-flight %s exceeds combined balance %s", cumulative, total)
		}
		return nil

	default:
		return newErr(KindInvalidCreditSelection, "unknown credit selection policy %d", selection)
	}
}

// Release is a deliberate no-op, kept only so a caller reads as an explicit
// decision rather than a missing call. The cumulative gate key embeds the
// balances it was computed against (hotstate.CumulativeGateKey), so it is
// never reused once a submission changes those balances at finalization —
// the next Admit call naturally lands on a fresh key. Explicitly pruning a
// submission's member here would race finalization against still-in-flight
// siblings reading the same key and is not required for correctness; the
// key ages out on its own via the TTL set in RPushInFlight. Neither
// internal/worker nor internal/reconciler call this on the normal
// submission path; see DESIGN.md Open Question #1.
func (e *Engine) Release(ctx context.Context, account *ledgerstore.AppAccount, user *ledgerstore.User, submissionID string, cost decimal.Decimal) error {
	return nil
}

func sumMembers(members []string) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, m := range members {
		idx := lastColon(m)
		if idx < 0 {
			return decimal.Zero, newErr(KindCumulativeOverflow, "malformed in-flight member %q", m)
		}
		cost, err := decimal.NewFromString(m[idx+1:])
		if err != nil {
			return decimal.Zero, newErr(KindCumulativeOverflow, "malformed in-flight cost in %q: %v", m, err)
		}
		sum = sum.Add(cost)
	}
	return sum, nil
}

func lastColon(s string) int {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == ':' {
			return i
		}
	}
	return -1
}

package creditengine

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/availproject/turbo-gateway/internal/ledgerstore"
)

func TestCalculateCost(t *testing.T) {
	cases := []struct {
		name       string
		oneKiBFee  string
		payloadFee string
		payloadLen int
		want       string
		wantErr    bool
	}{
		{"equal fee ratio", "100", "100", 1024, "1024", false},
		{"half size half fee", "100", "50", 512, "1024", false},
		{"zero payload fee", "100", "0", 10, "", true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			oneKiB := decimal.RequireFromString(tc.oneKiBFee)
			payloadFee := decimal.RequireFromString(tc.payloadFee)

			got, err := CalculateCost(oneKiB, payloadFee, tc.payloadLen)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, got.Equal(decimal.RequireFromString(tc.want)), "got %s want %s", got, tc.want)
		})
	}
}

func TestSumMembers(t *testing.T) {
	members := []string{"sub-a:10.5", "sub-b:4.5", "sub-c:0"}
	sum, err := sumMembers(members)
	require.NoError(t, err)
	assert.True(t, sum.Equal(decimal.RequireFromString("15")))
}

func TestSumMembersMalformed(t *testing.T) {
	_, err := sumMembers([]string{"no-colon-here"})
	require.Error(t, err)

	ce, ok := err.(*Error)
	require.True(t, ok)
	assert.Equal(t, KindCumulativeOverflow, ce.Kind)
}

// d is a terser decimal.RequireFromString for the table below.
func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// TestDecide_SelectionPolicies transcribes the S1-S6 boundary scenarios for
// all three credit-selection policies: a single submission whose cost alone
// exceeds its bucket, a cumulative total that exactly reaches the bucket
// (admitted under SelectionAccountSpill's strict "<", rejected under the
// other two policies' ">="), and the unknown-policy fallthrough.
func TestDecide_SelectionPolicies(t *testing.T) {
	cases := []struct {
		name       string
		scenario   string
		selection  ledgerstore.CreditSelection
		cost       decimal.Decimal
		cumulative decimal.Decimal
		account    decimal.Decimal
		user       decimal.Decimal
		wantKind   Kind
	}{
		{
			name:       "strict account admits under balance",
			scenario:   "S1",
			selection:  ledgerstore.SelectionStrictAccount,
			cost:       d("10"),
			cumulative: d("10"),
			account:    d("100"),
			user:       d("0"),
			wantKind:   KindNone,
		},
		{
			name:       "strict account point check rejects oversized single submission",
			scenario:   "S2",
			selection:  ledgerstore.SelectionStrictAccount,
			cost:       d("150"),
			cumulative: d("150"),
			account:    d("100"),
			user:       d("0"),
			wantKind:   KindInsufficientAccountCredits,
		},
		{
			name:       "strict account rejects when cumulative exactly reaches balance",
			scenario:   "S3",
			selection:  ledgerstore.SelectionStrictAccount,
			cost:       d("40"),
			cumulative: d("100"),
			account:    d("100"),
			user:       d("0"),
			wantKind:   KindInsufficientAccountCredits,
		},
		{
			name:       "strict user admits under balance",
			scenario:   "S1",
			selection:  ledgerstore.SelectionStrictUser,
			cost:       d("10"),
			cumulative: d("10"),
			account:    d("0"),
			user:       d("100"),
			wantKind:   KindNone,
		},
		{
			name:       "strict user rejects when cumulative exactly reaches balance",
			scenario:   "S3",
			selection:  ledgerstore.SelectionStrictUser,
			cost:       d("40"),
			cumulative: d("100"),
			account:    d("0"),
			user:       d("100"),
			wantKind:   KindInsufficientFallbackCredits,
		},
		{
			name:       "account spill admits when cumulative exactly reaches combined balance",
			scenario:   "S4",
			selection:  ledgerstore.SelectionAccountSpill,
			cost:       d("40"),
			cumulative: d("100"),
			account:    d("60"),
			user:       d("40"),
			wantKind:   KindNone,
		},
		{
			name:       "account spill rejects when cumulative exceeds combined balance",
			scenario:   "S5",
			selection:  ledgerstore.SelectionAccountSpill,
			cost:       d("40"),
			cumulative: d("101"),
			account:    d("60"),
			user:       d("40"),
			wantKind:   KindInsufficientTotalCredits,
		},
		{
			name:       "account spill point check rejects single submission over combined total",
			scenario:   "S5",
			selection:  ledgerstore.SelectionAccountSpill,
			cost:       d("150"),
			cumulative: d("150"),
			account:    d("60"),
			user:       d("40"),
			wantKind:   KindInsufficientTotalCredits,
		},
		{
			name:       "unknown policy is rejected as invalid",
			scenario:   "S6",
			selection:  ledgerstore.CreditSelection(99),
			cost:       d("1"),
			cumulative: d("1"),
			account:    d("100"),
			user:       d("100"),
			wantKind:   KindInvalidCreditSelection,
		},
	}

	for _, tc := range cases {
		t.Run(tc.scenario+"/"+tc.name, func(t *testing.T) {
			err := decide(tc.selection, tc.cost, tc.cumulative, tc.account, tc.user)
			if tc.wantKind == KindNone {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			ce, ok := err.(*Error)
			require.True(t, ok)
			assert.Equal(t, tc.wantKind, ce.Kind)
		})
	}
}

// TestDecide_PolicyAsymmetryIsIntentional pins the documented asymmetry
// between SelectionStrictAccount/SelectionStrictUser (">=" on the cumulative
// check) and SelectionAccountSpill (strict "<" on the remaining-after-spill
// check): the identical cumulative-equals-balance input is rejected under
// the first two and admitted under the third. A change that "fixes" this to
// be symmetric should fail this test.
func TestDecide_PolicyAsymmetryIsIntentional(t *testing.T) {
	cost := d("10")
	cumulative := d("100")
	account := d("100")
	user := d("0")

	err := decide(ledgerstore.SelectionStrictAccount, cost, cumulative, account, user)
	require.Error(t, err)

	err = decide(ledgerstore.SelectionAccountSpill, cost, cumulative, account, user)
	require.NoError(t, err)
}

// TestRelease_IsNoOp pins Release's documented no-op behavior: the
// cumulative gate key embeds the balances it was computed against, so
// nothing needs to be pruned at submission completion (DESIGN.md Open
// Question #1).
func TestRelease_IsNoOp(t *testing.T) {
	e := New(nil)
	account := &ledgerstore.AppAccount{CreditBalance: d("100")}
	user := &ledgerstore.User{GlobalCreditBalance: d("50")}
	err := e.Release(context.Background(), account, user, "sub-1", d("10"))
	require.NoError(t, err)
}

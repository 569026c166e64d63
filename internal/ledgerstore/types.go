// Package ledgerstore is the durable source of truth for Turbo Gateway.
//
// It owns five tables: users, app_accounts, submissions, api_keys, and
// credit_requests. PostgreSQL is always authoritative; internal/hotstate is
// advisory and only ever relaxes admission checks, never overrides a
// ledgerstore write.
package ledgerstore

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

// CreditSelection chooses which balance bucket(s) pay for a submission.
type CreditSelection int32

const (
	SelectionStrictAccount CreditSelection = 0
	SelectionStrictUser    CreditSelection = 1
	SelectionAccountSpill  CreditSelection = 2
)

// User is the top-level tenant. global_credit_balance funds every app
// account under it once selection policy 1 or 2 is in play.
type User struct {
	UserID                 string
	GlobalCreditBalance     decimal.Decimal
	GlobalCreditUsed        decimal.Decimal
	AllocatedCreditBalance  decimal.Decimal
}

// AppAccount is a sub-account under a User with its own isolated credit bucket.
type AppAccount struct {
	AppAccountID    string
	UserID          string
	ChainAppID      int32
	ChainAppName    string
	CreditBalance   decimal.Decimal
	CreditUsed      decimal.Decimal
	CreditSelection CreditSelection
}

// SubmissionState is derived, never stored directly.
type SubmissionState string

const (
	StatePending   SubmissionState = "Pending"
	StateFinalized SubmissionState = "Finalized"
	StateError     SubmissionState = "Error"
)

// Submission is a single customer payload moving through the pipeline.
type Submission struct {
	SubmissionID    string
	AppAccountID    string
	UserID          string
	AmountData      string
	Payload         []byte // nil once Finalized
	BlockNumber     sql.NullInt64
	BlockHash       sql.NullString
	TxHash          sql.NullString
	DataHash        sql.NullString
	ExtrinsicIndex  sql.NullInt64
	ToAddress       sql.NullString
	Fees            decimal.NullDecimal
	ConvertedFees   decimal.NullDecimal
	Error           sql.NullString
	RetryCount      int32
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// State derives the submission's lifecycle state from its columns, per
// spec.md's Pending/Finalized/Error predicate — never stored directly.
func (s *Submission) State() SubmissionState {
	switch {
	case s.Error.Valid:
		return StateError
	case s.BlockHash.Valid:
		return StateFinalized
	default:
		return StatePending
	}
}

// APIKey binds a hashed API key to the user it authenticates.
type APIKey struct {
	KeyHash string
	UserID  string
}

// CreditRequest is a pending top-up, owned by the out-of-core deposit
// pipeline; the core only ever inserts the initial row.
type CreditRequest struct {
	RequestID string
	UserID    string
	Status    string
	CreatedAt time.Time
}

// Inclusion carries the on-chain result of a successful submit, written back
// by internal/worker and internal/reconciler at finalization.
type Inclusion struct {
	BlockNumber    int64
	BlockHash      string
	TxHash         string
	DataHash       string
	ExtrinsicIndex int64
	ChainFee       decimal.Decimal
}

package ledgerstore

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSubmissionState_Pending(t *testing.T) {
	sub := Submission{}
	assert.Equal(t, StatePending, sub.State())
}

func TestSubmissionState_Finalized(t *testing.T) {
	sub := Submission{BlockHash: sql.NullString{String: "0xabc", Valid: true}}
	assert.Equal(t, StateFinalized, sub.State())
}

func TestSubmissionState_Error(t *testing.T) {
	sub := Submission{Error: sql.NullString{String: "submit_failed", Valid: true}}
	assert.Equal(t, StateError, sub.State())
}

// Error takes precedence even if a block hash is also set, because State()
// checks the error column before block_hash.
func TestSubmissionState_ErrorTakesPrecedenceOverBlockHash(t *testing.T) {
	sub := Submission{
		BlockHash: sql.NullString{String: "0xabc", Valid: true},
		Error:     sql.NullString{String: "submit_failed", Valid: true},
	}
	assert.Equal(t, StateError, sub.State())
}

func TestStore_Integration_SkipWithoutPostgres(t *testing.T) {
	t.Skip("requires a live PostgreSQL instance; exercised in the integration environment")
}

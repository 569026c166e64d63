package ledgerstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Store wraps the PostgreSQL connection pool. One Store is created at
// process startup and shared by every worker, the reconciler, and intake.
type Store struct {
	db  *sql.DB
	log zerolog.Logger
}

// Open connects to PostgreSQL and tunes the connection pool for the
// gateway's access pattern: many short transactional writes from workers,
// occasional bulk scans from the reconciler.
func Open(postgresURL string, logger zerolog.Logger) (*Store, error) {
	db, err := sql.Open("postgres", postgresURL)
	if err != nil {
		return nil, fmt.Errorf("postgres connection failed: %w", err)
	}

	db.SetMaxOpenConns(50)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(1 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("postgres ping failed: %w", err)
	}

	logger.Info().Msg("ledgerstore connected")
	return &Store{db: db, log: logger.With().Str("component", "ledgerstore").Logger()}, nil
}

// DB exposes the raw pool for the admin CLI and migration runner.
func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) Close() error { return s.db.Close() }

// InsertSubmission persists the Pending row. Intake must see this commit
// before it returns the submission id to the caller.
func (s *Store) InsertSubmission(ctx context.Context, sub *Submission) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO submissions (
			submission_id, app_account_id, user_id, amount_data, payload,
			retry_count, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, 0, NOW(), NOW())
	`, sub.SubmissionID, sub.AppAccountID, sub.UserID, sub.AmountData, sub.Payload)
	if err != nil {
		return fmt.Errorf("insert submission: %w", err)
	}
	return nil
}

// GetSubmission reads a submission by id. Used by the re-entry guard, the
// retrieval endpoints, and the reconciler's per-candidate refresh.
func (s *Store) GetSubmission(ctx context.Context, submissionID string) (*Submission, error) {
	var sub Submission
	err := s.db.QueryRowContext(ctx, `
		SELECT submission_id, app_account_id, user_id, amount_data, payload,
		       block_number, block_hash, tx_hash, data_hash, extrinsic_index,
		       to_address, fees, converted_fees, error, retry_count,
		       created_at, updated_at
		FROM submissions WHERE submission_id = $1
	`, submissionID).Scan(
		&sub.SubmissionID, &sub.AppAccountID, &sub.UserID, &sub.AmountData, &sub.Payload,
		&sub.BlockNumber, &sub.BlockHash, &sub.TxHash, &sub.DataHash, &sub.ExtrinsicIndex,
		&sub.ToAddress, &sub.Fees, &sub.ConvertedFees, &sub.Error, &sub.RetryCount,
		&sub.CreatedAt, &sub.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get submission: %w", err)
	}
	return &sub, nil
}

// FinalizeParams carries everything the finalization transaction needs.
type FinalizeParams struct {
	SubmissionID  string
	AppAccountID  string
	Inclusion     Inclusion
	ToAddress     string
	Cost          decimal.Decimal // converted credit-units charged
}

// Finalize commits the include-success path in one transaction: the
// submission row moves to Finalized (payload cleared, error cleared, chain
// fields set) and the account/user balances are debited per the account's
// credit selection: SelectionStrictUser charges the user only; the other
// policies debit the account first and spill any remainder onto the user
// (spec.md §4.4 step 5 / §4.7). Terminal: never called twice for
// the same row because the worker's re-entry guard (GetSubmission + State())
// runs first.
func (s *Store) Finalize(ctx context.Context, p FinalizeParams) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin finalize tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		UPDATE submissions SET
			payload = NULL,
			error = NULL,
			block_number = $1, block_hash = $2, tx_hash = $3,
			data_hash = $4, extrinsic_index = $5, to_address = $6,
			fees = $7, converted_fees = $8,
			updated_at = NOW()
		WHERE submission_id = $9
	`, p.Inclusion.BlockNumber, p.Inclusion.BlockHash, p.Inclusion.TxHash,
		p.Inclusion.DataHash, p.Inclusion.ExtrinsicIndex, p.ToAddress,
		p.Inclusion.ChainFee, p.Cost, p.SubmissionID)
	if err != nil {
		return fmt.Errorf("finalize submission row: %w", err)
	}

	var accountBalance decimal.Decimal
	var userID string
	var selection CreditSelection
	err = tx.QueryRowContext(ctx, `
		SELECT credit_balance, user_id, credit_selection FROM app_accounts WHERE app_account_id = $1 FOR UPDATE
	`, p.AppAccountID).Scan(&accountBalance, &userID, &selection)
	if err != nil {
		return fmt.Errorf("lock app_account: %w", err)
	}

	accountDebit := p.Cost
	spill := decimal.Zero
	if selection == SelectionStrictUser {
		accountDebit = decimal.Zero
		spill = p.Cost
	} else if p.Cost.GreaterThan(accountBalance) {
		accountDebit = accountBalance
		spill = p.Cost.Sub(accountBalance)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE app_accounts SET
			credit_balance = credit_balance - $1,
			credit_used = credit_used + $1
		WHERE app_account_id = $2
	`, accountDebit, p.AppAccountID)
	if err != nil {
		return fmt.Errorf("debit app_account: %w", err)
	}

	if spill.GreaterThan(decimal.Zero) {
		_, err = tx.ExecContext(ctx, `
			UPDATE users SET
				global_credit_balance = global_credit_balance - $1,
				global_credit_used = global_credit_used + $1
			WHERE user_id = $2
		`, spill, userID)
		if err != nil {
			return fmt.Errorf("spill debit user: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit finalize tx: %w", err)
	}
	return nil
}

// SetError records a transient or terminal failure. payload is left intact
// so the reconciler can retry (transient kinds) or so the row remains
// inspectable (terminal kinds); the taxonomy lives in internal/worker.
func (s *Store) SetError(ctx context.Context, submissionID, errKind string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE submissions SET error = $1, updated_at = NOW()
		WHERE submission_id = $2
	`, errKind, submissionID)
	if err != nil {
		return fmt.Errorf("set submission error: %w", err)
	}
	return nil
}

// IncrementRetryCount performs the atomic "claim this candidate" update the
// reconciler relies on. The retry-count bound is part of the WHERE clause,
// not a separate check, so a row already at the cap (claimed by a concurrent
// reconciler pass, or exhausted on a previous tick) updates zero rows instead
// of racing a read-then-write. claimed=false means skip this candidate.
func (s *Store) IncrementRetryCount(ctx context.Context, submissionID string, maxRetries int32) (newCount int32, claimed bool, err error) {
	row := s.db.QueryRowContext(ctx, `
		UPDATE submissions SET retry_count = retry_count + 1, updated_at = NOW()
		WHERE submission_id = $1 AND retry_count < $2
		RETURNING retry_count
	`, submissionID, maxRetries)
	if scanErr := row.Scan(&newCount); scanErr != nil {
		if scanErr == sql.ErrNoRows {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("increment retry count: %w", scanErr)
	}
	return newCount, true, nil
}

// ReconcileCandidate is a row selected by GetReconcileCandidates, joined with
// its owning account and user for the credit gate.
type ReconcileCandidate struct {
	Submission Submission
	Account    AppAccount
	User       User
}

// GetReconcileCandidates implements spec.md §4.6's query: error rows, or
// payload-bearing rows older than 15 minutes, below the retry cap, newest
// first, bounded to batchSize.
func (s *Store) GetReconcileCandidates(ctx context.Context, maxRetries int32, batchSize int) ([]ReconcileCandidate, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT
			s.submission_id, s.app_account_id, s.user_id, s.amount_data, s.payload,
			s.block_number, s.block_hash, s.tx_hash, s.data_hash, s.extrinsic_index,
			s.to_address, s.fees, s.converted_fees, s.error, s.retry_count,
			s.created_at, s.updated_at,
			a.app_account_id, a.user_id, a.chain_app_id, a.chain_app_name,
			a.credit_balance, a.credit_used, a.credit_selection,
			u.user_id, u.global_credit_balance, u.global_credit_used, u.allocated_credit_balance
		FROM submissions s
		JOIN app_accounts a ON a.app_account_id = s.app_account_id
		JOIN users u ON u.user_id = s.user_id
		WHERE (s.error IS NOT NULL
			OR (s.payload IS NOT NULL AND s.created_at < NOW() - INTERVAL '15 minutes'))
			AND s.retry_count < $1
		ORDER BY s.created_at DESC
		LIMIT $2
	`, maxRetries, batchSize)
	if err != nil {
		return nil, fmt.Errorf("query reconcile candidates: %w", err)
	}
	defer rows.Close()

	var out []ReconcileCandidate
	for rows.Next() {
		var c ReconcileCandidate
		if err := rows.Scan(
			&c.Submission.SubmissionID, &c.Submission.AppAccountID, &c.Submission.UserID,
			&c.Submission.AmountData, &c.Submission.Payload,
			&c.Submission.BlockNumber, &c.Submission.BlockHash, &c.Submission.TxHash,
			&c.Submission.DataHash, &c.Submission.ExtrinsicIndex, &c.Submission.ToAddress,
			&c.Submission.Fees, &c.Submission.ConvertedFees, &c.Submission.Error,
			&c.Submission.RetryCount, &c.Submission.CreatedAt, &c.Submission.UpdatedAt,
			&c.Account.AppAccountID, &c.Account.UserID, &c.Account.ChainAppID, &c.Account.ChainAppName,
			&c.Account.CreditBalance, &c.Account.CreditUsed, &c.Account.CreditSelection,
			&c.User.UserID, &c.User.GlobalCreditBalance, &c.User.GlobalCreditUsed, &c.User.AllocatedCreditBalance,
		); err != nil {
			s.log.Warn().Err(err).Msg("skipping malformed reconcile candidate row")
			continue
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// GetAccountWithUser is the single-row join the credit gate reads before
// every submission attempt.
func (s *Store) GetAccountWithUser(ctx context.Context, appAccountID string) (*AppAccount, *User, error) {
	var a AppAccount
	var u User
	err := s.db.QueryRowContext(ctx, `
		SELECT a.app_account_id, a.user_id, a.chain_app_id, a.chain_app_name,
		       a.credit_balance, a.credit_used, a.credit_selection,
		       u.user_id, u.global_credit_balance, u.global_credit_used, u.allocated_credit_balance
		FROM app_accounts a JOIN users u ON u.user_id = a.user_id
		WHERE a.app_account_id = $1
	`, appAccountID).Scan(
		&a.AppAccountID, &a.UserID, &a.ChainAppID, &a.ChainAppName,
		&a.CreditBalance, &a.CreditUsed, &a.CreditSelection,
		&u.UserID, &u.GlobalCreditBalance, &u.GlobalCreditUsed, &u.AllocatedCreditBalance,
	)
	if err != nil {
		return nil, nil, fmt.Errorf("get account with user: %w", err)
	}
	return &a, &u, nil
}

// DeleteAppAccount returns the account's credit_used to the parent user's
// global_credit_balance before removing the row, per spec.md §3's AppAccount
// lifecycle invariant.
func (s *Store) DeleteAppAccount(ctx context.Context, appAccountID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete app_account tx: %w", err)
	}
	defer tx.Rollback()

	var userID string
	var creditUsed decimal.Decimal
	err = tx.QueryRowContext(ctx, `
		SELECT user_id, credit_used FROM app_accounts WHERE app_account_id = $1 FOR UPDATE
	`, appAccountID).Scan(&userID, &creditUsed)
	if err != nil {
		return fmt.Errorf("lock app_account for delete: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE users SET global_credit_balance = global_credit_balance + $1 WHERE user_id = $2
	`, creditUsed, userID); err != nil {
		return fmt.Errorf("return credit_used to user: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM app_accounts WHERE app_account_id = $1`, appAccountID); err != nil {
		return fmt.Errorf("delete app_account: %w", err)
	}

	return tx.Commit()
}

// InsertAPIKey binds a hashed API key to a user.
func (s *Store) InsertAPIKey(ctx context.Context, key APIKey) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO api_keys (key_hash, user_id, created_at) VALUES ($1, $2, NOW())
	`, key.KeyHash, key.UserID)
	if err != nil {
		return fmt.Errorf("insert api key: %w", err)
	}
	return nil
}

// DeleteAPIKey revokes a hashed API key.
func (s *Store) DeleteAPIKey(ctx context.Context, keyHash string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM api_keys WHERE key_hash = $1`, keyHash)
	if err != nil {
		return fmt.Errorf("delete api key: %w", err)
	}
	return nil
}

// ReadAPIKey resolves a hashed API key to its owning user. The hot-state
// cache is consulted first by internal/auth; this is the fallback-on-miss path.
func (s *Store) ReadAPIKey(ctx context.Context, keyHash string) (string, error) {
	var userID string
	err := s.db.QueryRowContext(ctx, `SELECT user_id FROM api_keys WHERE key_hash = $1`, keyHash).Scan(&userID)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read api key: %w", err)
	}
	return userID, nil
}

// ReadUsers lists users with a limit, for the admin CLI.
func (s *Store) ReadUsers(ctx context.Context, limit int) ([]User, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT user_id, global_credit_balance, global_credit_used, allocated_credit_balance
		FROM users ORDER BY user_id LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("read users: %w", err)
	}
	defer rows.Close()

	var out []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.UserID, &u.GlobalCreditBalance, &u.GlobalCreditUsed, &u.AllocatedCreditBalance); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// InsertCreditRequest records a pending top-up row. The deposit pipeline
// (out of core scope) owns every subsequent mutation of this row.
func (s *Store) InsertCreditRequest(ctx context.Context, cr CreditRequest) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO credit_requests (request_id, user_id, status, created_at)
		VALUES ($1, $2, $3, NOW())
	`, cr.RequestID, cr.UserID, cr.Status)
	if err != nil {
		return fmt.Errorf("insert credit request: %w", err)
	}
	return nil
}

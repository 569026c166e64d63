// Package worker implements the per-submission pipeline: admission check,
// bounded chain submit, and write-back. Each Worker owns exactly one chain
// signer and therefore one nonce stream, and reports its liveness to
// internal/supervisor over a heartbeat channel so a hung worker can be
// respawned instead of silently stalling its thread affinity forever.
package worker

import (
	"context"
	"errors"
	"time"

	"github.com/centrifuge/go-substrate-rpc-client/v4/signature"
	"github.com/rs/zerolog"

	"github.com/availproject/turbo-gateway/internal/chainclient"
	"github.com/availproject/turbo-gateway/internal/creditengine"
	"github.com/availproject/turbo-gateway/internal/dispatch"
	"github.com/availproject/turbo-gateway/internal/hotstate"
	"github.com/availproject/turbo-gateway/internal/ledgerstore"
	"github.com/availproject/turbo-gateway/internal/metrics"
)

// submitTimeout bounds how long a single chain submission is allowed to run
// before the worker gives up and records a transient error for the
// reconciler to retry later.
const submitTimeout = 120 * time.Second

// interMessagePause throttles a worker after every message it processes,
// whether or not the submission succeeded, so a burst of traffic on one thread affinity can't monopolize its
// signer's nonce stream or the chain endpoint's rate limit.
const interMessagePause = 500 * time.Millisecond

// Heartbeat is sent after every message a worker finishes, successfully or
// not, and on a fixed 120s tick while the worker waits for messages, so the
// supervisor can tell a quiet-but-alive worker apart from a hung one.
type Heartbeat struct {
	WorkerIndex int
	At          time.Time
}

// Worker pulls messages addressed to its thread affinity off a shared
// broadcast channel and runs them through the submission pipeline.
type Worker struct {
	Index       int
	Count       int
	Signer      signature.KeyringPair
	store       *ledgerstore.Store
	hot         *hotstate.Store
	credit      *creditengine.Engine
	chain       *chainclient.Client
	nonce       uint32
	log         zerolog.Logger
	heartbeatCh chan<- Heartbeat
}

// New builds a Worker and discovers its starting nonce from chain state.
// Every later submission advances nonce locally; no other goroutine is ever
// allowed to touch this signer's nonce.
func New(index, count int, signer signature.KeyringPair, store *ledgerstore.Store, hot *hotstate.Store, credit *creditengine.Engine, chain *chainclient.Client, heartbeatCh chan<- Heartbeat, logger zerolog.Logger) (*Worker, error) {
	startNonce, err := chain.NextNonce(signer)
	if err != nil {
		return nil, err
	}

	return &Worker{
		Index:       index,
		Count:       count,
		Signer:      signer,
		store:       store,
		hot:         hot,
		credit:      credit,
		chain:       chain,
		nonce:       startNonce,
		log:         logger.With().Int("worker_index", index).Logger(),
		heartbeatCh: heartbeatCh,
	}, nil
}

// Run drains sub until ctx is cancelled, filtering for messages that belong
// to this worker's thread affinity and running each through Process.
func (w *Worker) Run(ctx context.Context, sub <-chan dispatch.Message) {
	w.log.Info().Msg("worker started")
	// Idle heartbeat, well inside the supervisor's 300s respawn threshold.
	ticker := time.NewTicker(120 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("worker stopping")
			return
		case <-ticker.C:
			w.emitHeartbeat()
		case msg, ok := <-sub:
			if !ok {
				return
			}
			if !dispatch.BelongsToThread(msg, w.Index, w.Count) {
				continue
			}

			w.process(ctx, msg)
			w.emitHeartbeat()
			time.Sleep(interMessagePause)
		}
	}
}

func (w *Worker) emitHeartbeat() {
	select {
	case w.heartbeatCh <- Heartbeat{WorkerIndex: w.Index, At: time.Now()}:
	default:
		w.log.Warn().Msg("heartbeat channel full, supervisor may be behind")
	}
}

// process runs one message through the full pipeline: re-entry guard,
// account/user lookup, admission check, bounded chain submit, and
// write-back. Every exit path other than a successful Finalize leaves the
// submission's payload column intact so internal/reconciler can retry it.
func (w *Worker) process(ctx context.Context, msg dispatch.Message) {
	log := w.log.With().Str("submission_id", msg.SubmissionID).Logger()

	existing, err := w.store.GetSubmission(ctx, msg.SubmissionID)
	if err != nil {
		log.Error().Err(err).Msg("re-entry guard lookup failed")
		return
	}
	if existing != nil && existing.State() != ledgerstore.StatePending {
		log.Debug().Str("state", string(existing.State())).Msg("submission already terminal, skipping")
		return
	}

	account, user, err := w.store.GetAccountWithUser(ctx, msg.AppAccountID)
	if err != nil {
		log.Error().Err(err).Msg("account lookup failed")
		_ = w.store.SetError(ctx, msg.SubmissionID, "db_unavailable")
		return
	}

	oneKiBFee, err := w.chain.EstimateFee(ctx, w.Signer, 1024, msg.ChainAppID)
	if err != nil {
		log.Error().Err(err).Msg("fee estimate failed")
		_ = w.store.SetError(ctx, msg.SubmissionID, "rpc_transport")
		return
	}
	payloadFee, err := w.chain.EstimateFee(ctx, w.Signer, len(msg.Payload), msg.ChainAppID)
	if err != nil {
		log.Error().Err(err).Msg("fee estimate failed")
		_ = w.store.SetError(ctx, msg.SubmissionID, "rpc_transport")
		return
	}

	cost, err := creditengine.CalculateCost(oneKiBFee, payloadFee, len(msg.Payload))
	if err != nil {
		log.Error().Err(err).Msg("cost calculation failed")
		_ = w.store.SetError(ctx, msg.SubmissionID, "rpc_decode")
		return
	}

	if err := w.credit.Admit(ctx, account, user, msg.SubmissionID, cost); err != nil {
		var ce *creditengine.Error
		kind := "insufficient_credits"
		if errors.As(err, &ce) {
			kind = creditKindLabel(ce.Kind)
		}
		log.Warn().Err(err).Msg("admission check rejected submission")
		_ = w.store.SetError(ctx, msg.SubmissionID, kind)
		metrics.AdmissionRejections.WithLabelValues(kind).Inc()
		return
	}

	submitStart := time.Now()
	submitCtx, cancel := context.WithTimeout(ctx, submitTimeout)
	inclusion, err := w.chain.Submit(submitCtx, w.Signer, msg.Payload, w.nonce, msg.ChainAppID)
	cancel()

	if err != nil {
		kind := submitErrLabel(err)
		metrics.ChainSubmitDuration.WithLabelValues("failure").Observe(time.Since(submitStart).Seconds())
		log.Error().Err(err).Str("error_kind", kind).Msg("chain submit failed")
		_ = w.store.SetError(ctx, msg.SubmissionID, kind)
		metrics.SubmissionsErrored.WithLabelValues(kind).Inc()
		return
	}
	metrics.ChainSubmitDuration.WithLabelValues("success").Observe(time.Since(submitStart).Seconds())

	w.nonce++

	finalizeErr := w.store.Finalize(ctx, ledgerstore.FinalizeParams{
		SubmissionID: msg.SubmissionID,
		AppAccountID: msg.AppAccountID,
		Inclusion:    *inclusion,
		ToAddress:    w.Signer.Address,
		Cost:         cost,
	})
	if finalizeErr != nil {
		log.Error().Err(finalizeErr).Msg("finalize write-back failed")
		_ = w.store.SetError(ctx, msg.SubmissionID, "db_unavailable")
		metrics.SubmissionsErrored.WithLabelValues("db_unavailable").Inc()
		return
	}

	metrics.SubmissionsFinalized.WithLabelValues(msg.AppAccountID).Inc()
	log.Info().Str("block_hash", inclusion.BlockHash).Msg("submission finalized")
}

// submitErrLabel maps a chainclient.Submit failure onto the stable taxonomy
// written to submission.error. Falls back to rpc_transport for an error that
// didn't come from chainclient as a *chainclient.SubmitError (e.g. a context
// cancellation surfaced some other way).
func submitErrLabel(err error) string {
	var se *chainclient.SubmitError
	if errors.As(err, &se) {
		return se.Label()
	}
	return "rpc_transport"
}

func creditKindLabel(k creditengine.Kind) string {
	switch k {
	case creditengine.KindInsufficientAccountCredits:
		return "insufficient_account_credits"
	case creditengine.KindInsufficientFallbackCredits:
		return "insufficient_fallback_credits"
	case creditengine.KindInsufficientTotalCredits:
		return "insufficient_total_credits"
	case creditengine.KindInvalidCreditSelection:
		return "invalid_credit_selection"
	case creditengine.KindCumulativeOverflow:
		return "cumulative_overflow"
	default:
		return "insufficient_credits"
	}
}

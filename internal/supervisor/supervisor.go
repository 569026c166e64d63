// Package supervisor owns the worker pool's lifecycle: it spawns one worker
// per configured signer, tracks each worker's last heartbeat, and respawns
// any worker that goes quiet for longer than the configured grace period.
package supervisor

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/availproject/turbo-gateway/internal/chainclient"
	"github.com/availproject/turbo-gateway/internal/creditengine"
	"github.com/availproject/turbo-gateway/internal/dispatch"
	"github.com/availproject/turbo-gateway/internal/hotstate"
	"github.com/availproject/turbo-gateway/internal/ledgerstore"
	"github.com/availproject/turbo-gateway/internal/metrics"
	"github.com/availproject/turbo-gateway/internal/signerpool"
	"github.com/availproject/turbo-gateway/internal/worker"
)

// checkInterval is how often the supervisor scans for silent workers.
const checkInterval = 120 * time.Second

// respawnThreshold is how long a worker can go without a heartbeat before
// the supervisor considers it hung and restarts it on a fresh goroutine.
const respawnThreshold = 300 * time.Second

// Supervisor spawns and watches the worker pool.
type Supervisor struct {
	signers  *signerpool.Pool
	store    *ledgerstore.Store
	hot      *hotstate.Store
	credit   *creditengine.Engine
	chain    *chainclient.Client
	channel  *dispatch.Channel
	log      zerolog.Logger

	mu        sync.Mutex
	lastBeat  map[int]time.Time
	cancelFns map[int]context.CancelFunc
}

func New(signers *signerpool.Pool, store *ledgerstore.Store, hot *hotstate.Store, credit *creditengine.Engine, chain *chainclient.Client, channel *dispatch.Channel, logger zerolog.Logger) *Supervisor {
	return &Supervisor{
		signers:   signers,
		store:     store,
		hot:       hot,
		credit:    credit,
		chain:     chain,
		channel:   channel,
		log:       logger.With().Str("component", "supervisor").Logger(),
		lastBeat:  make(map[int]time.Time),
		cancelFns: make(map[int]context.CancelFunc),
	}
}

// Run spawns every worker and blocks, periodically checking for silent
// workers, until ctx is cancelled.
func (s *Supervisor) Run(ctx context.Context) error {
	workerCount := s.signers.Size()
	// Buffered to at least 3x the worker count so a brief scheduling delay
	// in the supervisor's drain loop never back-pressures a worker's
	// emitHeartbeat send.
	heartbeatCh := make(chan worker.Heartbeat, workerCount*3)

	for i := 0; i < workerCount; i++ {
		s.spawn(ctx, i, workerCount, heartbeatCh)
	}

	ticker := time.NewTicker(checkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case hb := <-heartbeatCh:
			s.mu.Lock()
			s.lastBeat[hb.WorkerIndex] = hb.At
			s.mu.Unlock()
		case <-ticker.C:
			s.respawnSilentWorkers(ctx, workerCount, heartbeatCh)
		}
	}
}

func (s *Supervisor) spawn(ctx context.Context, index, count int, heartbeatCh chan worker.Heartbeat) {
	workerCtx, cancel := context.WithCancel(ctx)

	s.mu.Lock()
	s.cancelFns[index] = cancel
	s.lastBeat[index] = time.Now()
	s.mu.Unlock()

	sub := s.channel.Subscribe()
	signer := s.signers.SignerFor(index)

	w, err := worker.New(index, count, signer, s.store, s.hot, s.credit, s.chain, heartbeatCh, s.log)
	if err != nil {
		s.log.Error().Err(err).Int("worker_index", index).Msg("failed to start worker, will retry next respawn check")
		cancel()
		return
	}

	go w.Run(workerCtx, sub)
}

func (s *Supervisor) respawnSilentWorkers(ctx context.Context, count int, heartbeatCh chan worker.Heartbeat) {
	now := time.Now()

	var stale []int
	s.mu.Lock()
	for i := 0; i < count; i++ {
		if now.Sub(s.lastBeat[i]) > respawnThreshold {
			stale = append(stale, i)
		}
	}
	s.mu.Unlock()

	for _, idx := range stale {
		s.log.Warn().Int("worker_index", idx).Msg("worker silent past threshold, respawning")
		metrics.WorkerRespawns.WithLabelValues(indexLabel(idx)).Inc()

		s.mu.Lock()
		if cancel, ok := s.cancelFns[idx]; ok {
			cancel()
		}
		s.mu.Unlock()

		s.spawn(ctx, idx, count, heartbeatCh)
	}
}

func indexLabel(idx int) string { return strconv.Itoa(idx) }

// Package scanner keeps the wallet in sync with the chain in the background:
// it refreshes the balance and looks up the status of recent transfers
package scanner

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/greenstamp/greenstamp-wallet/internal/logging"
	"github.com/greenstamp/greenstamp-wallet/internal/manager"
	"github.com/greenstamp/greenstamp-wallet/internal/wallet"
)

// statusLookback bounds how many history entries are checked per cycle
const statusLookback = 20

// Syncer is the part of the manager the scanner drives
type Syncer interface {
	UpdateEduBalance(ctx context.Context, w wallet.Wallet) wallet.Wallet
	TransactionStatus(ctx context.Context, hash string) (string, error)
}

// Source loads the wallet to sync at the start of every cycle
type Source func(ctx context.Context) (wallet.Wallet, error)

// Result is the outcome of one sync cycle
type Result struct {
	Wallet   wallet.Wallet
	Statuses map[string]string // hash -> status of recent transfers
	SyncedAt time.Time
}

// Pending returns the hashes still waiting for a receipt
func (r Result) Pending() []string {
	var pending []string
	for _, tx := range r.Wallet.Transactions {
		if r.Statuses[tx.Hash] == manager.TransactionStatusPending {
			pending = append(pending, tx.Hash)
		}
	}
	return pending
}

// Scanner handles the sync loop
type Scanner struct {
	syncer   Syncer
	source   Source
	interval time.Duration
	logger   zerolog.Logger

	progressCallback func(Result)

	last   Result
	lastMu sync.RWMutex

	// Scanning control
	scanning bool
	stopChan chan struct{}
	doneChan chan struct{}
	scanMu   sync.Mutex
}

// NewScanner creates a scanner syncing the wallet returned by source every interval
func NewScanner(syncer Syncer, source Source, interval time.Duration) *Scanner {
	return &Scanner{
		syncer:   syncer,
		source:   source,
		interval: interval,
		logger:   logging.L.With().Str("component", "scanner").Logger(),
	}
}

// SetProgressCallback is called after every successful cycle
func (s *Scanner) SetProgressCallback(fn func(Result)) {
	s.scanMu.Lock()
	defer s.scanMu.Unlock()
	s.progressCallback = fn
}

// Last returns the result of the latest successful cycle
func (s *Scanner) Last() Result {
	s.lastMu.RLock()
	defer s.lastMu.RUnlock()
	return s.last
}

// SyncOnce runs a single cycle. Balance failures are absorbed by the
// manager, status lookups that fail are left out of the result.
func (s *Scanner) SyncOnce(ctx context.Context) (Result, error) {
	w, err := s.source(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("failed to load wallet: %w", err)
	}

	w = s.syncer.UpdateEduBalance(ctx, w)

	statuses := map[string]string{}
	checked := 0
	for _, tx := range w.Transactions {
		if tx.Hash == "" {
			continue
		}
		if checked == statusLookback {
			break
		}
		checked++

		status, err := s.syncer.TransactionStatus(ctx, tx.Hash)
		if err != nil {
			s.logger.Debug().Err(err).Str("txid", tx.Hash).Msg("status lookup failed")
			continue
		}
		statuses[tx.Hash] = status
	}

	res := Result{Wallet: w, Statuses: statuses, SyncedAt: time.Now()}

	s.lastMu.Lock()
	s.last = res
	s.lastMu.Unlock()

	s.logger.Debug().
		Str("address", w.Address).
		Float64("edu_balance", w.EduBalance).
		Int("checked", len(statuses)).
		Int("pending", len(res.Pending())).
		Msg("sync cycle finished")

	return res, nil
}

// Start begins the sync loop in a goroutine
func (s *Scanner) Start(ctx context.Context) error {
	s.scanMu.Lock()
	defer s.scanMu.Unlock()

	if s.scanning {
		s.logger.Warn().Msg("scanning already in progress, ignoring start request")
		return fmt.Errorf("scanning already in progress")
	}

	s.scanning = true
	s.stopChan = make(chan struct{})
	s.doneChan = make(chan struct{})
	stopChan, doneChan := s.stopChan, s.doneChan
	callback := s.progressCallback

	s.logger.Info().Dur("interval", s.interval).Msg("starting scanner")

	go func() {
		defer func() {
			s.scanMu.Lock()
			s.scanning = false
			s.scanMu.Unlock()
			close(doneChan)
			s.logger.Info().Msg("scanner stopped")
		}()

		loopCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		go func() {
			select {
			case <-stopChan:
				cancel()
			case <-loopCtx.Done():
			}
		}()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			res, err := s.SyncOnce(loopCtx)
			if err != nil {
				s.logger.Error().Err(err).Msg("error during scanning")
			} else if callback != nil {
				callback(res)
			}

			select {
			case <-loopCtx.Done():
				return
			case <-ticker.C:
			}
		}
	}()

	return nil
}

// StopSync signals the loop to stop and waits for it to finish
func (s *Scanner) StopSync() {
	s.scanMu.Lock()
	if !s.scanning {
		s.scanMu.Unlock()
		s.logger.Debug().Msg("scanner not running, nothing to stop")
		return
	}

	s.logger.Info().Msg("stopping scanner synchronously")
	select {
	case <-s.stopChan:
	default:
		close(s.stopChan)
	}
	doneChan := s.doneChan
	s.scanMu.Unlock()

	<-doneChan
}

// IsScanning reports whether the loop is running
func (s *Scanner) IsScanning() bool {
	s.scanMu.Lock()
	defer s.scanMu.Unlock()
	return s.scanning
}

package workers

import (
	"context"
	"log"
	"time"

	"lemon-club-service/services"
	"lemon-club-service/store"
)

// LedgerSyncWorker keeps the service's view of the ledger warm: it checks the
// service wallet balance (so an underfunded wallet is noticed before a user's
// mint fails) and refreshes the cached name/symbol of every owned mint.
type LedgerSyncWorker struct {
	State      *store.State
	Ledger     services.LedgerClient
	Wallet     string
	MinBalance int64
}

func NewLedgerSyncWorker(state *store.State, ledger services.LedgerClient, wallet string, minBalance int64) *LedgerSyncWorker {
	return &LedgerSyncWorker{
		State:      state,
		Ledger:     ledger,
		Wallet:     wallet,
		MinBalance: minBalance,
	}
}

// PollLedger runs the sync loop until ctx is cancelled.
func PollLedger(ctx context.Context, w *LedgerSyncWorker, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("[LedgerSync] Stopping ledger sync worker")
			return
		case <-ticker.C:
			w.syncOnce(ctx)
		}
	}
}

func (w *LedgerSyncWorker) syncOnce(ctx context.Context) {
	if w.Wallet != "" {
		balance, err := w.Ledger.GetBalance(ctx, w.Wallet)
		if err != nil {
			log.Printf("[LedgerSync] Balance check failed: %v", err)
		} else if balance < w.MinBalance {
			log.Printf("[LedgerSync] ⚠️ Service wallet %s below mint threshold: %d < %d lamports",
				w.Wallet, balance, w.MinBalance)
		}
	}

	w.State.RLock()
	var mints []string
	for _, u := range w.State.Users {
		for _, n := range u.NFTs {
			mints = append(mints, n.MintAddress)
		}
	}
	w.State.RUnlock()

	refreshed := 0
	for _, mint := range mints {
		if ctx.Err() != nil {
			return
		}
		if _, err := w.Ledger.FindByReference(ctx, mint); err != nil {
			log.Printf("[LedgerSync] Lookup failed for %s: %v", mint, err)
			continue
		}
		refreshed++
	}
	if refreshed > 0 {
		log.Printf("[LedgerSync] Refreshed %d token records", refreshed)
	}
}

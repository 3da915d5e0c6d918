// AngelaMos | 2026
// memory_test.go

package wallet

import (
	"context"
	"sort"
	"sync"
	"time"
)

type completionKey struct {
	userID int64
	taskID int64
}

type memoryState struct {
	wallets     map[int64]Wallet
	completions map[completionKey]time.Time
	withdrawals []Withdrawal
}

func (s memoryState) clone() memoryState {
	out := memoryState{
		wallets:     make(map[int64]Wallet, len(s.wallets)),
		completions: make(map[completionKey]time.Time, len(s.completions)),
		withdrawals: append([]Withdrawal(nil), s.withdrawals...),
	}
	for k, v := range s.wallets {
		out.wallets[k] = v
	}
	for k, v := range s.completions {
		out.completions[k] = v
	}
	return out
}

// memoryRepo restores its snapshot when a transaction returns an error.
type memoryRepo struct {
	mu       sync.Mutex
	state    memoryState
	saveErr  error
	seq      int
	sequence map[completionKey]int
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		state: memoryState{
			wallets:     map[int64]Wallet{},
			completions: map[completionKey]time.Time{},
		},
		sequence: map[completionKey]int{},
	}
}

type memoryTx struct {
	m *memoryRepo
}

func (m *memoryRepo) InTx(ctx context.Context, fn func(repo Repository) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	snapshot := m.state.clone()
	if err := fn(memoryTx{m: m}); err != nil {
		m.state = snapshot
		return err
	}
	return nil
}

func (m *memoryRepo) locked(fn func(tx memoryTx)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	fn(memoryTx{m: m})
}

func (m *memoryRepo) Get(ctx context.Context, userID int64) (w *Wallet, err error) {
	m.locked(func(tx memoryTx) { w, err = tx.Get(ctx, userID) })
	return w, err
}

func (m *memoryRepo) GetForUpdate(ctx context.Context, userID int64) (w *Wallet, err error) {
	return m.Get(ctx, userID)
}

func (m *memoryRepo) Save(ctx context.Context, w *Wallet) (err error) {
	m.locked(func(tx memoryTx) { err = tx.Save(ctx, w) })
	return err
}

func (m *memoryRepo) InsertCompletion(ctx context.Context, userID, taskID int64) (ok bool, err error) {
	m.locked(func(tx memoryTx) { ok, err = tx.InsertCompletion(ctx, userID, taskID) })
	return ok, err
}

func (m *memoryRepo) DeleteCompletion(ctx context.Context, userID, taskID int64) (ok bool, err error) {
	m.locked(func(tx memoryTx) { ok, err = tx.DeleteCompletion(ctx, userID, taskID) })
	return ok, err
}

func (m *memoryRepo) ListCompleted(ctx context.Context, userID int64) (ids []int64, err error) {
	m.locked(func(tx memoryTx) { ids, err = tx.ListCompleted(ctx, userID) })
	return ids, err
}

func (m *memoryRepo) CreateWithdrawal(ctx context.Context, wd *Withdrawal) (err error) {
	m.locked(func(tx memoryTx) { err = tx.CreateWithdrawal(ctx, wd) })
	return err
}

func (m *memoryRepo) ListWithdrawals(ctx context.Context, userID int64) (list []Withdrawal, err error) {
	m.locked(func(tx memoryTx) { list, err = tx.ListWithdrawals(ctx, userID) })
	return list, err
}

func (m *memoryRepo) wallet(userID int64) Wallet {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.wallets[userID]
}

func (m *memoryRepo) seed(w Wallet) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.wallets[w.UserID] = w
}

func (tx memoryTx) InTx(ctx context.Context, fn func(repo Repository) error) error {
	return fn(tx)
}

func (tx memoryTx) Get(_ context.Context, userID int64) (*Wallet, error) {
	w, ok := tx.m.state.wallets[userID]
	if !ok {
		w = *NewWallet(userID)
		tx.m.state.wallets[userID] = w
	}
	return &w, nil
}

func (tx memoryTx) GetForUpdate(ctx context.Context, userID int64) (*Wallet, error) {
	return tx.Get(ctx, userID)
}

func (tx memoryTx) Save(_ context.Context, w *Wallet) error {
	if tx.m.saveErr != nil {
		return tx.m.saveErr
	}
	tx.m.state.wallets[w.UserID] = *w
	return nil
}

func (tx memoryTx) InsertCompletion(_ context.Context, userID, taskID int64) (bool, error) {
	key := completionKey{userID: userID, taskID: taskID}
	if _, ok := tx.m.state.completions[key]; ok {
		return false, nil
	}
	tx.m.seq++
	tx.m.sequence[key] = tx.m.seq
	tx.m.state.completions[key] = time.Now()
	return true, nil
}

func (tx memoryTx) DeleteCompletion(_ context.Context, userID, taskID int64) (bool, error) {
	key := completionKey{userID: userID, taskID: taskID}
	if _, ok := tx.m.state.completions[key]; !ok {
		return false, nil
	}
	delete(tx.m.state.completions, key)
	return true, nil
}

func (tx memoryTx) ListCompleted(_ context.Context, userID int64) ([]int64, error) {
	keys := []completionKey{}
	for k := range tx.m.state.completions {
		if k.userID == userID {
			keys = append(keys, k)
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		return tx.m.sequence[keys[i]] < tx.m.sequence[keys[j]]
	})

	ids := make([]int64, 0, len(keys))
	for _, k := range keys {
		ids = append(ids, k.taskID)
	}
	return ids, nil
}

func (tx memoryTx) CreateWithdrawal(_ context.Context, wd *Withdrawal) error {
	wd.CreatedAt = time.Now()
	tx.m.state.withdrawals = append(tx.m.state.withdrawals, *wd)
	return nil
}

func (tx memoryTx) ListWithdrawals(_ context.Context, userID int64) ([]Withdrawal, error) {
	out := []Withdrawal{}
	for i := len(tx.m.state.withdrawals) - 1; i >= 0; i-- {
		if tx.m.state.withdrawals[i].UserID == userID {
			out = append(out, tx.m.state.withdrawals[i])
		}
	}
	return out, nil
}

// Package memory provides in-memory implementations of the repository
// interfaces. They mirror the mongodb package's atomicity guarantees under a
// mutex and back the service tests, which must not need a live database.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/goldspin/casino-backend/internal/models"
	"github.com/goldspin/casino-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Store holds all in-memory state and hands out repository views over it
type Store struct {
	mu sync.Mutex

	pools       map[primitive.ObjectID]*models.JackpotPool
	tickets     []*models.JackpotTicket
	pending     []*models.PendingTicket
	counts      map[countKey]*models.PlayerTicketCount
	draws       map[primitive.ObjectID]*models.JackpotDraw
	winners     map[primitive.ObjectID]*models.JackpotWinner
	wallet      map[string]*models.WalletTransaction // keyed by reference
	users       map[primitive.ObjectID]*models.User
	blacklist   map[primitive.ObjectID]*models.BlacklistEntry
	adminUsers  map[string]*models.AdminUser // keyed by email
}

type countKey struct {
	pool primitive.ObjectID
	user primitive.ObjectID
	draw int64
}

// NewStore creates an empty Store
func NewStore() *Store {
	return &Store{
		pools:      make(map[primitive.ObjectID]*models.JackpotPool),
		counts:     make(map[countKey]*models.PlayerTicketCount),
		draws:      make(map[primitive.ObjectID]*models.JackpotDraw),
		winners:    make(map[primitive.ObjectID]*models.JackpotWinner),
		wallet:     make(map[string]*models.WalletTransaction),
		users:      make(map[primitive.ObjectID]*models.User),
		blacklist:  make(map[primitive.ObjectID]*models.BlacklistEntry),
		adminUsers: make(map[string]*models.AdminUser),
	}
}

// Repository accessors. Each returns the Store itself behind the narrow
// interface so tests share one consistent state.

func (s *Store) Pools() repositories.PoolRepository                 { return (*poolRepo)(s) }
func (s *Store) Tickets() repositories.TicketRepository             { return (*ticketRepo)(s) }
func (s *Store) PendingTickets() repositories.PendingTicketRepository { return (*pendingRepo)(s) }
func (s *Store) TicketCounts() repositories.TicketCountRepository   { return (*countRepo)(s) }
func (s *Store) Draws() repositories.DrawRepository                 { return (*drawRepo)(s) }
func (s *Store) Winners() repositories.WinnerRepository             { return (*winnerRepo)(s) }
func (s *Store) Wallet() repositories.WalletRepository              { return (*walletRepo)(s) }
func (s *Store) Users() repositories.UserRepository                 { return (*userRepo)(s) }
func (s *Store) Blacklist() repositories.BlacklistRepository        { return (*blacklistRepo)(s) }
func (s *Store) AdminUsers() repositories.AdminUserRepository       { return (*adminRepo)(s) }

// --- PoolRepository ---

type poolRepo Store

func (r *poolRepo) Create(_ context.Context, pool *models.JackpotPool) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	if pool.ID.IsZero() {
		pool.ID = primitive.NewObjectID()
	}
	pool.CreatedAt = time.Now()
	pool.UpdatedAt = time.Now()
	cp := *pool
	s.pools[pool.ID] = &cp
	return nil
}

func (r *poolRepo) FindByID(_ context.Context, id primitive.ObjectID) (*models.JackpotPool, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	pool, ok := s.pools[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *pool
	return &cp, nil
}

func (r *poolRepo) FindAll(_ context.Context) ([]*models.JackpotPool, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	pools := make([]*models.JackpotPool, 0, len(s.pools))
	for _, p := range s.pools {
		cp := *p
		pools = append(pools, &cp)
	}
	sort.Slice(pools, func(i, j int) bool { return pools[i].CreatedAt.Before(pools[j].CreatedAt) })
	return pools, nil
}

func (r *poolRepo) FindByStatus(_ context.Context, status models.PoolStatus) ([]*models.JackpotPool, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	var pools []*models.JackpotPool
	for _, p := range s.pools {
		if p.Status == status {
			cp := *p
			pools = append(pools, &cp)
		}
	}
	if pools == nil {
		pools = []*models.JackpotPool{}
	}
	return pools, nil
}

func (r *poolRepo) UpdateTiers(_ context.Context, id primitive.ObjectID, tiers []models.PrizeTier) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	pool, ok := s.pools[id]
	if !ok {
		return repositories.ErrNotFound
	}
	pool.Tiers = append([]models.PrizeTier(nil), tiers...)
	pool.UpdatedAt = time.Now()
	return nil
}

func (r *poolRepo) TransitionStatus(_ context.Context, id primitive.ObjectID, from, to models.PoolStatus) (*models.JackpotPool, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	pool, ok := s.pools[id]
	if !ok || pool.Status != from {
		return nil, repositories.ErrStatusConflict
	}
	pool.Status = to
	if to == models.PoolStatusDrawing {
		pool.DrawStartedAt = time.Now()
	} else {
		pool.DrawStartedAt = time.Time{}
	}
	pool.UpdatedAt = time.Now()
	cp := *pool
	return &cp, nil
}

func (r *poolRepo) ReserveTickets(_ context.Context, id primitive.ObjectID, count int64) (*models.JackpotPool, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	pool, ok := s.pools[id]
	if !ok || pool.Status != models.PoolStatusActive {
		return nil, repositories.ErrPoolNotActive
	}
	pool.TicketCounter += count
	pool.UpdatedAt = time.Now()
	cp := *pool
	return &cp, nil
}

func (r *poolRepo) AddContribution(_ context.Context, id primitive.ObjectID, amount int64) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	pool, ok := s.pools[id]
	if !ok || (pool.Status != models.PoolStatusActive && pool.Status != models.PoolStatusDrawing) {
		return repositories.ErrPoolNotActive
	}
	pool.CurrentAmount += amount
	pool.UpdatedAt = time.Now()
	return nil
}

func (r *poolRepo) CompleteDraw(_ context.Context, id primitive.ObjectID, distributedAmount, seedAmount int64, nextDrawAt time.Time) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	pool, ok := s.pools[id]
	if !ok || pool.Status != models.PoolStatusDrawing {
		return repositories.ErrStatusConflict
	}
	pool.CurrentAmount += seedAmount - distributedAmount
	pool.DrawNumber++
	pool.TicketCounter = 0
	pool.Status = models.PoolStatusActive
	pool.NextDrawAt = nextDrawAt
	pool.DrawStartedAt = time.Time{}
	pool.UpdatedAt = time.Now()
	return nil
}

func (r *poolRepo) FindDue(_ context.Context, now time.Time) ([]*models.JackpotPool, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	pools := []*models.JackpotPool{}
	for _, p := range s.pools {
		if p.Status == models.PoolStatusActive && !p.NextDrawAt.After(now) {
			cp := *p
			pools = append(pools, &cp)
		}
	}
	return pools, nil
}

func (r *poolRepo) FindStuckDrawing(_ context.Context, cutoff time.Time) ([]*models.JackpotPool, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	pools := []*models.JackpotPool{}
	for _, p := range s.pools {
		if p.Status == models.PoolStatusDrawing && !p.DrawStartedAt.IsZero() && p.DrawStartedAt.Before(cutoff) {
			cp := *p
			pools = append(pools, &cp)
		}
	}
	return pools, nil
}

// --- TicketRepository ---

type ticketRepo Store

func (r *ticketRepo) CreateMany(_ context.Context, tickets []*models.JackpotTicket) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for _, t := range tickets {
		if t.ID.IsZero() {
			t.ID = primitive.NewObjectID()
		}
		if t.EarnedAt.IsZero() {
			t.EarnedAt = now
		}
		cp := *t
		s.tickets = append(s.tickets, &cp)
	}
	return nil
}

func (r *ticketRepo) CountEligible(_ context.Context, poolID primitive.ObjectID, drawNumber int64) (int64, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, t := range s.tickets {
		if t.PoolID == poolID && t.DrawNumber == drawNumber && t.DrawEligible {
			n++
		}
	}
	return n, nil
}

func (r *ticketRepo) CountEligibleByUser(_ context.Context, poolID primitive.ObjectID, drawNumber int64, userID primitive.ObjectID) (int64, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, t := range s.tickets {
		if t.PoolID == poolID && t.DrawNumber == drawNumber && t.UserID == userID && t.DrawEligible {
			n++
		}
	}
	return n, nil
}

func (r *ticketRepo) FindByNumber(_ context.Context, poolID primitive.ObjectID, drawNumber, ticketNumber int64) (*models.JackpotTicket, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.tickets {
		if t.PoolID == poolID && t.DrawNumber == drawNumber && t.TicketNumber == ticketNumber {
			cp := *t
			return &cp, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *ticketRepo) CountsByUser(_ context.Context, poolID primitive.ObjectID, drawNumber int64) (map[primitive.ObjectID]int64, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	counts := make(map[primitive.ObjectID]int64)
	for _, t := range s.tickets {
		if t.PoolID == poolID && t.DrawNumber == drawNumber && t.DrawEligible {
			counts[t.UserID]++
		}
	}
	return counts, nil
}

func (r *ticketRepo) FindByUser(_ context.Context, poolID, userID primitive.ObjectID, page, limit int) ([]*models.JackpotTicket, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	tickets := []*models.JackpotTicket{}
	for _, t := range s.tickets {
		if t.PoolID == poolID && t.UserID == userID {
			cp := *t
			tickets = append(tickets, &cp)
		}
	}
	sort.Slice(tickets, func(i, j int) bool { return tickets[i].EarnedAt.After(tickets[j].EarnedAt) })
	return paginate(tickets, page, limit), nil
}

// --- PendingTicketRepository ---

type pendingRepo Store

func (r *pendingRepo) Enqueue(_ context.Context, pending *models.PendingTicket) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	if pending.ID.IsZero() {
		pending.ID = primitive.NewObjectID()
	}
	if pending.QueuedAt.IsZero() {
		pending.QueuedAt = time.Now()
	}
	cp := *pending
	s.pending = append(s.pending, &cp)
	return nil
}

func (r *pendingRepo) Drain(_ context.Context, poolID primitive.ObjectID) ([]*models.PendingTicket, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	drained := []*models.PendingTicket{}
	var kept []*models.PendingTicket
	for _, p := range s.pending {
		if p.PoolID == poolID {
			cp := *p
			drained = append(drained, &cp)
		} else {
			kept = append(kept, p)
		}
	}
	s.pending = kept
	sort.Slice(drained, func(i, j int) bool { return drained[i].QueuedAt.Before(drained[j].QueuedAt) })
	return drained, nil
}

// --- TicketCountRepository ---

type countRepo Store

func (r *countRepo) Increment(_ context.Context, poolID, userID primitive.ObjectID, drawNumber, delta int64, at time.Time) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	key := countKey{pool: poolID, user: userID, draw: drawNumber}
	count, ok := s.counts[key]
	if !ok {
		count = &models.PlayerTicketCount{
			ID:         primitive.NewObjectID(),
			PoolID:     poolID,
			UserID:     userID,
			DrawNumber: drawNumber,
		}
		s.counts[key] = count
	}
	count.TotalTickets += delta
	count.LastTicketAt = at
	return nil
}

func (r *countRepo) Find(_ context.Context, poolID, userID primitive.ObjectID, drawNumber int64) (*models.PlayerTicketCount, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	count, ok := s.counts[countKey{pool: poolID, user: userID, draw: drawNumber}]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *count
	return &cp, nil
}

func (r *countRepo) Set(_ context.Context, poolID, userID primitive.ObjectID, drawNumber, total int64) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	key := countKey{pool: poolID, user: userID, draw: drawNumber}
	count, ok := s.counts[key]
	if !ok {
		count = &models.PlayerTicketCount{
			ID:         primitive.NewObjectID(),
			PoolID:     poolID,
			UserID:     userID,
			DrawNumber: drawNumber,
		}
		s.counts[key] = count
	}
	count.TotalTickets = total
	return nil
}

func (r *countRepo) FindByPoolCycle(_ context.Context, poolID primitive.ObjectID, drawNumber int64) ([]*models.PlayerTicketCount, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	counts := []*models.PlayerTicketCount{}
	for _, c := range s.counts {
		if c.PoolID == poolID && c.DrawNumber == drawNumber {
			cp := *c
			counts = append(counts, &cp)
		}
	}
	return counts, nil
}

// --- DrawRepository ---

type drawRepo Store

func (r *drawRepo) Create(_ context.Context, draw *models.JackpotDraw) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	if draw.ID.IsZero() {
		draw.ID = primitive.NewObjectID()
	}
	draw.CreatedAt = time.Now()
	cp := *draw
	s.draws[draw.ID] = &cp
	return nil
}

func (r *drawRepo) FindByID(_ context.Context, id primitive.ObjectID) (*models.JackpotDraw, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	draw, ok := s.draws[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *draw
	return &cp, nil
}

func (r *drawRepo) FindByPool(_ context.Context, poolID primitive.ObjectID, page, limit int) ([]*models.JackpotDraw, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	draws := []*models.JackpotDraw{}
	for _, d := range s.draws {
		if d.PoolID == poolID {
			cp := *d
			draws = append(draws, &cp)
		}
	}
	sort.Slice(draws, func(i, j int) bool { return draws[i].DrawnAt.After(draws[j].DrawnAt) })
	return paginate(draws, page, limit), nil
}

func (r *drawRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.draws, id)
	return nil
}

func (r *drawRepo) FindLatestByPool(ctx context.Context, poolID primitive.ObjectID) (*models.JackpotDraw, error) {
	draws, err := r.FindByPool(ctx, poolID, 1, 1)
	if err != nil {
		return nil, err
	}
	if len(draws) == 0 {
		return nil, repositories.ErrNotFound
	}
	return draws[0], nil
}

// --- WinnerRepository ---

type winnerRepo Store

func (r *winnerRepo) CreateMany(_ context.Context, winners []*models.JackpotWinner) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for _, w := range winners {
		if w.ID.IsZero() {
			w.ID = primitive.NewObjectID()
		}
		w.CreatedAt = now
		w.UpdatedAt = now
		cp := *w
		s.winners[w.ID] = &cp
	}
	return nil
}

func (r *winnerRepo) FindByID(_ context.Context, id primitive.ObjectID) (*models.JackpotWinner, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	winner, ok := s.winners[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *winner
	return &cp, nil
}

func (r *winnerRepo) FindByDrawID(_ context.Context, drawID primitive.ObjectID) ([]*models.JackpotWinner, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	winners := []*models.JackpotWinner{}
	for _, w := range s.winners {
		if w.DrawID == drawID {
			cp := *w
			winners = append(winners, &cp)
		}
	}
	sort.Slice(winners, func(i, j int) bool {
		if winners[i].TierOrder != winners[j].TierOrder {
			return winners[i].TierOrder < winners[j].TierOrder
		}
		return winners[i].WinningTicketNumber < winners[j].WinningTicketNumber
	})
	return winners, nil
}

func (r *winnerRepo) FindByUserID(_ context.Context, userID primitive.ObjectID, page, limit int) ([]*models.JackpotWinner, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	winners := []*models.JackpotWinner{}
	for _, w := range s.winners {
		if w.UserID == userID {
			cp := *w
			winners = append(winners, &cp)
		}
	}
	sort.Slice(winners, func(i, j int) bool { return winners[i].CreatedAt.After(winners[j].CreatedAt) })
	return paginate(winners, page, limit), nil
}

func (r *winnerRepo) ClaimCredit(_ context.Context, id primitive.ObjectID, transactionID string) (bool, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	winner, ok := s.winners[id]
	if !ok {
		return false, repositories.ErrNotFound
	}
	if winner.PrizeCredited {
		return false, nil
	}
	winner.PrizeCredited = true
	winner.CreditedTransactionID = transactionID
	winner.UpdatedAt = time.Now()
	return true, nil
}

func (r *winnerRepo) DeleteByDrawID(_ context.Context, drawID primitive.ObjectID) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, w := range s.winners {
		if w.DrawID == drawID {
			delete(s.winners, id)
		}
	}
	return nil
}

func (r *winnerRepo) MarkNotified(_ context.Context, id primitive.ObjectID, at time.Time) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	winner, ok := s.winners[id]
	if !ok {
		return repositories.ErrNotFound
	}
	winner.NotifiedAt = at
	winner.UpdatedAt = time.Now()
	return nil
}

// --- WalletRepository ---

type walletRepo Store

func (r *walletRepo) CreateIfAbsent(_ context.Context, tx *models.WalletTransaction) (*models.WalletTransaction, bool, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.wallet[tx.Reference]; ok {
		cp := *existing
		return &cp, false, nil
	}
	if tx.ID.IsZero() {
		tx.ID = primitive.NewObjectID()
	}
	tx.CreatedAt = time.Now()
	cp := *tx
	s.wallet[tx.Reference] = &cp
	return tx, true, nil
}

func (r *walletRepo) FindByReference(_ context.Context, reference string) (*models.WalletTransaction, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	tx, ok := s.wallet[reference]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *tx
	return &cp, nil
}

func (r *walletRepo) FindByUser(_ context.Context, userID primitive.ObjectID, page, limit int) ([]*models.WalletTransaction, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	txs := []*models.WalletTransaction{}
	for _, tx := range s.wallet {
		if tx.UserID == userID {
			cp := *tx
			txs = append(txs, &cp)
		}
	}
	sort.Slice(txs, func(i, j int) bool { return txs[i].CreatedAt.After(txs[j].CreatedAt) })
	return paginate(txs, page, limit), nil
}

// --- UserRepository ---

type userRepo Store

func (r *userRepo) Create(_ context.Context, user *models.User) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	user.CreatedAt = time.Now()
	user.UpdatedAt = time.Now()
	cp := *user
	s.users[user.ID] = &cp
	return nil
}

func (r *userRepo) FindByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *user
	return &cp, nil
}

func (r *userRepo) IncrementBalance(_ context.Context, id primitive.ObjectID, delta int64) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return repositories.ErrNotFound
	}
	user.Balance += delta
	user.UpdatedAt = time.Now()
	return nil
}

// --- BlacklistRepository ---

type blacklistRepo Store

func (r *blacklistRepo) IsBlacklisted(_ context.Context, userID primitive.ObjectID) (bool, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.blacklist[userID]
	return ok, nil
}

func (r *blacklistRepo) Add(_ context.Context, entry *models.BlacklistEntry) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	if entry.ID.IsZero() {
		entry.ID = primitive.NewObjectID()
	}
	entry.CreatedAt = time.Now()
	cp := *entry
	s.blacklist[entry.UserID] = &cp
	return nil
}

func (r *blacklistRepo) Remove(_ context.Context, userID primitive.ObjectID) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.blacklist, userID)
	return nil
}

func (r *blacklistRepo) FindAll(_ context.Context) ([]*models.BlacklistEntry, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	entries := []*models.BlacklistEntry{}
	for _, e := range s.blacklist {
		cp := *e
		entries = append(entries, &cp)
	}
	return entries, nil
}

// --- AdminUserRepository ---

type adminRepo Store

func (r *adminRepo) Create(_ context.Context, adminUser *models.AdminUser) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	if adminUser.ID.IsZero() {
		adminUser.ID = primitive.NewObjectID()
	}
	adminUser.CreatedAt = time.Now()
	adminUser.UpdatedAt = time.Now()
	cp := *adminUser
	s.adminUsers[adminUser.Email] = &cp
	return nil
}

func (r *adminRepo) FindByEmail(_ context.Context, email string) (*models.AdminUser, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	adminUser, ok := s.adminUsers[email]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *adminUser
	return &cp, nil
}

func paginate[T any](items []T, page, limit int) []T {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 50
	}
	start := (page - 1) * limit
	if start >= len(items) {
		return []T{}
	}
	end := start + limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

package service

import (
	"sync"
	"time"

	"github.com/propscore/leadscore/backend/model"
)

// Ledger is the append-only in-memory store of scored leads. It is the only
// shared mutable state in the process; appends and snapshots are serialized
// through a single mutex so an id is never observable before its record.
// Contents do not survive a restart.
type Ledger struct {
	mu     sync.RWMutex
	leads  []model.ScoredLead
	nextID int
}

func NewLedger() *Ledger {
	return &Ledger{nextID: 1}
}

// Append assigns the next lead id and stores the fully scored record.
// Ids start at 1 and are strictly increasing with no gaps or reuse.
func (l *Ledger) Append(lead model.LeadInput, initialScore, rerankedScore float64) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	id := l.nextID
	l.nextID++

	l.leads = append(l.leads, model.ScoredLead{
		LeadID:        id,
		Lead:          lead,
		InitialScore:  initialScore,
		RerankedScore: rerankedScore,
		CreatedAt:     time.Now(),
	})

	return id
}

// List returns a point-in-time copy of the ledger in arrival order.
// Later appends never alter a returned snapshot.
func (l *Ledger) List() []model.ScoredLead {
	l.mu.RLock()
	defer l.mu.RUnlock()

	snapshot := make([]model.ScoredLead, len(l.leads))
	copy(snapshot, l.leads)
	return snapshot
}

// Count returns the number of scored leads.
func (l *Ledger) Count() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.leads)
}

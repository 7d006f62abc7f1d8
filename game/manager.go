// bingo/game/manager.go
package game

import (
	"math/rand"
	"sync"

	"bingo/models"
)

// Manager owns one session controller per player. Sessions are created on
// first access and live until the process exits; restarts rebuild them from
// the persistence collaborator via Adopt.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Controller
	pool     []models.Task
	rng      *rand.Rand
}

// NewManager creates a session manager drawing boards from pool. The
// randomness source is shared by all generated boards and is injectable for
// deterministic tests.
func NewManager(pool []models.Task, rng *rand.Rand) *Manager {
	return &Manager{
		sessions: make(map[string]*Controller),
		pool:     pool,
		rng:      rng,
	}
}

// Get returns the live session for a user, if any.
func (m *Manager) Get(userID string) (*Controller, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.sessions[userID]
	return c, ok
}

// Create generates a fresh session for user. An existing session is returned
// unchanged; generating a new board for the same user would be a new game,
// which is an explicit Remove followed by Create.
func (m *Manager) Create(user models.User) (*Controller, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.sessions[user.ID]; ok {
		return c, nil
	}
	c, err := NewController(m.pool, user, m.rng)
	if err != nil {
		return nil, err
	}
	m.sessions[user.ID] = c
	return c, nil
}

// Adopt rebuilds a session from a persisted board layout and submission
// history, replacing nothing if the user already has a live session.
func (m *Manager) Adopt(user models.User, board Board, history []models.Submission) *Controller {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.sessions[user.ID]; ok {
		return c
	}
	c := Restore(board, user, history)
	m.sessions[user.ID] = c
	return c
}

// Remove tears down a user's session.
func (m *Manager) Remove(userID string) {
	m.mu.Lock()
	delete(m.sessions, userID)
	m.mu.Unlock()
}

// Queue returns a moderation queue spanning every live session.
func (m *Manager) Queue() ModerationQueue {
	m.mu.Lock()
	defer m.mu.Unlock()
	controllers := make([]*Controller, 0, len(m.sessions))
	for _, c := range m.sessions {
		controllers = append(controllers, c)
	}
	return NewModerationQueue(controllers...)
}

// Decide routes a moderation decision to the owning session's controller.
func (m *Manager) Decide(taskID int, userID string, decision models.Status) error {
	c, ok := m.Get(userID)
	if !ok {
		return ErrNotFound
	}
	return c.Decide(taskID, userID, decision)
}

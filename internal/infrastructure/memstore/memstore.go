// Package memstore holds in-process implementations of the repository
// interfaces. They back the extension-side deployment, where state lives in
// local storage rather than Postgres, and double as fixtures in tests. All
// stores are safe for concurrent use.
package memstore

import (
	"context"
	"fmt"
	"sync"
	"time"

	"optimo-ai/internal/domain/models"
	"optimo-ai/internal/domain/repositories"
)

type UserStore struct {
	mu    sync.Mutex
	users map[string]*models.User
}

func NewUserStore() *UserStore {
	return &UserStore{users: make(map[string]*models.User)}
}

func (s *UserStore) GetOrCreate(_ context.Context, userID string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if user, ok := s.users[userID]; ok {
		return cloneUser(user), nil
	}

	now := time.Now()
	user := &models.User{
		UserID:             userID,
		SubscriptionStatus: models.StatusFreemium,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	s.users[userID] = user
	return cloneUser(user), nil
}

func (s *UserStore) Get(_ context.Context, userID string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[userID]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", userID, repositories.ErrNotFound)
	}
	return cloneUser(user), nil
}

func (s *UserStore) GetByPaddleSubscriptionID(_ context.Context, subscriptionID string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, user := range s.users {
		if user.PaddleSubscriptionID != nil && *user.PaddleSubscriptionID == subscriptionID {
			return cloneUser(user), nil
		}
	}
	return nil, fmt.Errorf("paddle subscription %s: %w", subscriptionID, repositories.ErrNotFound)
}

func (s *UserStore) UpdateSubscription(_ context.Context, userID string, status models.SubscriptionStatus,
	paddleSubscriptionID, paddleCustomerID *string, trialEndsAt *time.Time) error {

	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[userID]
	if !ok {
		user = &models.User{UserID: userID, CreatedAt: time.Now()}
		s.users[userID] = user
	}
	user.SubscriptionStatus = status
	user.PaddleSubscriptionID = paddleSubscriptionID
	user.PaddleCustomerID = paddleCustomerID
	user.UnlimitedTrialEndsAt = trialEndsAt
	user.UpdatedAt = time.Now()
	return nil
}

func cloneUser(u *models.User) *models.User {
	clone := *u
	return &clone
}

// UsageStore serializes increments behind one mutex, which is the ledger
// exclusion requirement for a process-local deployment.
type UsageStore struct {
	mu     sync.Mutex
	counts map[string]int
}

func NewUsageStore() *UsageStore {
	return &UsageStore{counts: make(map[string]int)}
}

func usageStoreKey(userID, day string) string {
	return userID + "|" + day
}

func (s *UsageStore) IncrementIfUnderLimit(_ context.Context, userID, day string, limit int) (int, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := usageStoreKey(userID, day)
	if limit >= 0 && s.counts[key] >= limit {
		return 0, false, nil
	}
	s.counts[key]++
	return s.counts[key], true, nil
}

func (s *UsageStore) CountFor(_ context.Context, userID, day string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.counts[usageStoreKey(userID, day)], nil
}

type HistoryStore struct {
	mu      sync.Mutex
	nextID  int64
	entries map[string][]*models.HistoryEntry
}

func NewHistoryStore() *HistoryStore {
	return &HistoryStore{entries: make(map[string][]*models.HistoryEntry)}
}

func (s *HistoryStore) Append(_ context.Context, entry *models.HistoryEntry, retain int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	entry.ID = s.nextID
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	log := append([]*models.HistoryEntry{entry}, s.entries[entry.UserID]...)
	if retain >= 0 && len(log) > retain {
		log = log[:retain]
	}
	s.entries[entry.UserID] = log
	return nil
}

func (s *HistoryStore) List(_ context.Context, userID string, limit int) ([]*models.HistoryEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	log := s.entries[userID]
	if limit >= 0 && len(log) > limit {
		log = log[:limit]
	}

	out := make([]*models.HistoryEntry, len(log))
	copy(out, log)
	return out, nil
}

type TemplateStore struct {
	mu        sync.Mutex
	nextID    int64
	templates map[string][]*models.PromptTemplate
}

func NewTemplateStore() *TemplateStore {
	return &TemplateStore{templates: make(map[string][]*models.PromptTemplate)}
}

func (s *TemplateStore) Create(_ context.Context, tpl *models.PromptTemplate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	tpl.ID = s.nextID
	now := time.Now()
	tpl.CreatedAt = now
	tpl.UpdatedAt = now
	s.templates[tpl.UserID] = append(s.templates[tpl.UserID], tpl)
	return nil
}

func (s *TemplateStore) List(_ context.Context, userID string) ([]*models.PromptTemplate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*models.PromptTemplate, len(s.templates[userID]))
	copy(out, s.templates[userID])
	return out, nil
}

func (s *TemplateStore) Update(_ context.Context, tpl *models.PromptTemplate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, existing := range s.templates[tpl.UserID] {
		if existing.ID == tpl.ID {
			tpl.CreatedAt = existing.CreatedAt
			tpl.UpdatedAt = time.Now()
			s.templates[tpl.UserID][i] = tpl
			return nil
		}
	}
	return fmt.Errorf("template %d: %w", tpl.ID, repositories.ErrNotFound)
}

func (s *TemplateStore) Delete(_ context.Context, userID string, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, existing := range s.templates[userID] {
		if existing.ID == id {
			s.templates[userID] = append(s.templates[userID][:i], s.templates[userID][i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("template %d: %w", id, repositories.ErrNotFound)
}

type KeyStore struct {
	mu     sync.Mutex
	nextID int64
	keys   map[string][]*models.APIKey
}

func NewKeyStore() *KeyStore {
	return &KeyStore{keys: make(map[string][]*models.APIKey)}
}

func (s *KeyStore) Save(_ context.Context, key *models.APIKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.keys[key.UserID] {
		if existing.Provider == key.Provider {
			existing.IsActive = false
		}
	}

	s.nextID++
	key.ID = s.nextID
	key.IsActive = true
	if key.CreatedAt.IsZero() {
		key.CreatedAt = time.Now()
	}
	// Newest first, matching the SQL ordering.
	s.keys[key.UserID] = append([]*models.APIKey{key}, s.keys[key.UserID]...)
	return nil
}

func (s *KeyStore) ActiveKey(_ context.Context, userID string) (*models.APIKey, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, key := range s.keys[userID] {
		if key.IsActive {
			return key, nil
		}
	}
	return nil, fmt.Errorf("active key for user %s: %w", userID, repositories.ErrNotFound)
}

func (s *KeyStore) ActiveKeys(_ context.Context, userID string) ([]*models.APIKey, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var active []*models.APIKey
	for _, key := range s.keys[userID] {
		if key.IsActive {
			active = append(active, key)
		}
	}
	return active, nil
}

func (s *KeyStore) SetStatus(_ context.Context, id int64, status models.KeyStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, keys := range s.keys {
		for _, key := range keys {
			if key.ID == id {
				key.Status = status
				return nil
			}
		}
	}
	return fmt.Errorf("API key %d: %w", id, repositories.ErrNotFound)
}

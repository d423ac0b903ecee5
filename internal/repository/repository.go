package repository

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"orgmessages/internal/models"
	"orgmessages/internal/service"
)

type entry struct {
	msg models.Message
	seq uint64
}

// MemoryStore keeps messages in a process-local map. A single mutex covers
// every read and write, including the read half of update and delete.
type MemoryStore struct {
	mu       sync.Mutex
	messages map[uuid.UUID]entry
	seq      uint64
	now      func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		messages: make(map[uuid.UUID]entry),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

var _ service.MessageStore = (*MemoryStore)(nil)

func (s *MemoryStore) GetByID(orgID, id uuid.UUID) (models.Message, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.messages[id]
	if !ok || e.msg.OrganizationID != orgID {
		return models.Message{}, false
	}
	return e.msg, true
}

// GetAllByOrganization returns the organization's messages, newest first.
func (s *MemoryStore) GetAllByOrganization(orgID uuid.UUID) []models.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	matched := make([]entry, 0)
	for _, e := range s.messages {
		if e.msg.OrganizationID == orgID {
			matched = append(matched, e)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].msg.CreatedAt.Equal(matched[j].msg.CreatedAt) {
			return matched[i].msg.CreatedAt.After(matched[j].msg.CreatedAt)
		}
		return matched[i].seq > matched[j].seq
	})
	results := make([]models.Message, 0, len(matched))
	for _, e := range matched {
		results = append(results, e.msg)
	}
	return results
}

// GetByTitle matches titles case-insensitively. The uniqueness rule in the
// service is case-sensitive and does not go through here.
func (s *MemoryStore) GetByTitle(orgID uuid.UUID, title string) (models.Message, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var (
		found models.Message
		seq   uint64
		ok    bool
	)
	for _, e := range s.messages {
		if e.msg.OrganizationID != orgID || !strings.EqualFold(e.msg.Title, title) {
			continue
		}
		// map order is random; the oldest insert wins so the answer is stable
		if !ok || e.seq < seq {
			found, seq, ok = e.msg, e.seq, true
		}
	}
	return found, ok
}

func (s *MemoryStore) Create(msg models.Message) models.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	msg.ID = uuid.New()
	msg.CreatedAt = now
	msg.UpdatedAt = now
	s.seq++
	s.messages[msg.ID] = entry{msg: msg, seq: s.seq}
	return msg
}

// Update replaces the stored record wholesale. The creation order is kept so
// listing stays stable across updates.
func (s *MemoryStore) Update(msg models.Message) (models.Message, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.messages[msg.ID]
	if !ok {
		return models.Message{}, false
	}
	msg.UpdatedAt = s.now()
	if msg.UpdatedAt.Before(msg.CreatedAt) {
		msg.UpdatedAt = msg.CreatedAt
	}
	s.messages[msg.ID] = entry{msg: msg, seq: e.seq}
	return msg, true
}

func (s *MemoryStore) Delete(orgID, id uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.messages[id]
	if !ok || e.msg.OrganizationID != orgID {
		return false
	}
	delete(s.messages, id)
	return true
}

func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.messages)
}

package repository

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"orgmessages/internal/models"
)

// fixedClock hands out strictly increasing instants one second apart.
func fixedClock(start time.Time) func() time.Time {
	var mu sync.Mutex
	current := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		current = current.Add(time.Second)
		return current
	}
}

func newTestStore() *MemoryStore {
	s := NewMemoryStore()
	s.now = fixedClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	return s
}

func TestCreate_AssignsIDAndTimestamps(t *testing.T) {
	req := require.New(t)
	s := newTestStore()
	orgID := uuid.New()
	callerID := uuid.New()
	stale := time.Date(1999, 1, 1, 0, 0, 0, 0, time.UTC)

	stored := s.Create(models.Message{ID: callerID, OrganizationID: orgID, Title: "Hello", CreatedAt: stale, UpdatedAt: stale, IsActive: true})

	req.NotEqual(callerID, stored.ID)
	req.NotEqual(uuid.Nil, stored.ID)
	req.NotEqual(stale, stored.CreatedAt)
	req.Equal(stored.CreatedAt, stored.UpdatedAt)
	got, ok := s.GetByID(orgID, stored.ID)
	req.True(ok)
	req.Equal(stored, got)
}

func TestGetByID_IsScopedToOrganization(t *testing.T) {
	req := require.New(t)
	s := newTestStore()
	orgID := uuid.New()
	stored := s.Create(models.Message{OrganizationID: orgID, Title: "Scoped"})

	_, ok := s.GetByID(uuid.New(), stored.ID)
	req.False(ok)
	_, ok = s.GetByID(orgID, uuid.New())
	req.False(ok)
}

func TestGetAllByOrganization_NewestFirst(t *testing.T) {
	req := require.New(t)
	s := newTestStore()
	orgID := uuid.New()
	for i := 0; i < 4; i++ {
		s.Create(models.Message{OrganizationID: orgID, Title: fmt.Sprintf("m%d", i)})
	}
	s.Create(models.Message{OrganizationID: uuid.New(), Title: "other"})

	all := s.GetAllByOrganization(orgID)

	req.Len(all, 4)
	req.Equal([]string{"m3", "m2", "m1", "m0"}, titles(all))
}

func TestGetAllByOrganization_TiesKeepInsertionOrder(t *testing.T) {
	req := require.New(t)
	s := NewMemoryStore()
	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return at }
	orgID := uuid.New()
	for i := 0; i < 3; i++ {
		s.Create(models.Message{OrganizationID: orgID, Title: fmt.Sprintf("m%d", i)})
	}

	req.Equal([]string{"m2", "m1", "m0"}, titles(s.GetAllByOrganization(orgID)))
}

func TestGetAllByOrganization_EmptyIsNotNil(t *testing.T) {
	req := require.New(t)
	s := newTestStore()

	all := s.GetAllByOrganization(uuid.New())

	req.NotNil(all)
	req.Empty(all)
}

func TestGetByTitle_CaseInsensitive(t *testing.T) {
	req := require.New(t)
	s := newTestStore()
	orgID := uuid.New()
	first := s.Create(models.Message{OrganizationID: orgID, Title: "Release Notes"})
	s.Create(models.Message{OrganizationID: orgID, Title: "release notes"})

	found, ok := s.GetByTitle(orgID, "RELEASE notes")
	req.True(ok)
	req.Equal(first.ID, found.ID)

	_, ok = s.GetByTitle(uuid.New(), "Release Notes")
	req.False(ok)
	_, ok = s.GetByTitle(orgID, "Release")
	req.False(ok)
}

func TestUpdate_ReplacesWholesale(t *testing.T) {
	req := require.New(t)
	s := newTestStore()
	orgID := uuid.New()
	stored := s.Create(models.Message{OrganizationID: orgID, Title: "Before", Content: "before", IsActive: true})

	replacement := stored
	replacement.Title = "After"
	replacement.Content = ""
	updated, ok := s.Update(replacement)

	req.True(ok)
	req.Equal("After", updated.Title)
	req.Empty(updated.Content)
	req.True(updated.UpdatedAt.After(stored.UpdatedAt))
	req.Equal(stored.CreatedAt, updated.CreatedAt)
	got, _ := s.GetByID(orgID, stored.ID)
	req.Equal(updated, got)
}

func TestUpdate_UnknownID(t *testing.T) {
	req := require.New(t)
	s := newTestStore()

	_, ok := s.Update(models.Message{ID: uuid.New(), OrganizationID: uuid.New(), Title: "ghost"})

	req.False(ok)
	req.Zero(s.Len())
}

func TestDelete(t *testing.T) {
	req := require.New(t)
	s := newTestStore()
	orgID := uuid.New()
	stored := s.Create(models.Message{OrganizationID: orgID, Title: "Doomed"})

	req.False(s.Delete(uuid.New(), stored.ID), "foreign organization must not delete")
	req.Equal(1, s.Len())
	req.True(s.Delete(orgID, stored.ID))
	req.False(s.Delete(orgID, stored.ID))
	req.Zero(s.Len())
}

func TestReturnedRecordsDoNotAliasStore(t *testing.T) {
	req := require.New(t)
	s := newTestStore()
	orgID := uuid.New()
	stored := s.Create(models.Message{OrganizationID: orgID, Title: "Original"})

	all := s.GetAllByOrganization(orgID)
	all[0].Title = "Mutated"

	got, _ := s.GetByID(orgID, stored.ID)
	req.Equal("Original", got.Title)
}

func TestConcurrentAccess(t *testing.T) {
	req := require.New(t)
	s := NewMemoryStore()
	orgID := uuid.New()

	const workers = 16
	const perWorker = 50
	var wg sync.WaitGroup
	ids := make(chan uuid.UUID, workers*perWorker)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				m := s.Create(models.Message{OrganizationID: orgID, Title: fmt.Sprintf("w%d-%d", w, i)})
				ids <- m.ID
				m.Content = "touched"
				_, ok := s.Update(m)
				if !ok {
					t.Errorf("update of %s failed", m.ID)
				}
				_ = s.GetAllByOrganization(orgID)
			}
		}(w)
	}
	wg.Wait()
	close(ids)

	req.Equal(workers*perWorker, s.Len())
	req.Len(s.GetAllByOrganization(orgID), workers*perWorker)

	var deleted int
	var mu sync.Mutex
	var dwg sync.WaitGroup
	for id := range ids {
		id := id
		// two deleters race for each id; exactly one wins
		for k := 0; k < 2; k++ {
			dwg.Add(1)
			go func() {
				defer dwg.Done()
				if s.Delete(orgID, id) {
					mu.Lock()
					deleted++
					mu.Unlock()
				}
			}()
		}
	}
	dwg.Wait()

	req.Equal(workers*perWorker, deleted)
	req.Zero(s.Len())
}

func titles(messages []models.Message) []string {
	out := make([]string, 0, len(messages))
	for _, m := range messages {
		out = append(out, m.Title)
	}
	return out
}

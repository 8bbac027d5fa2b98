package repo

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/clopst/laravel-api-starter/internal/listquery"
	"github.com/clopst/laravel-api-starter/internal/models"
	"github.com/google/uuid"
)

// MemoryUserStore is an in-memory UserStore used by tests. It mirrors the
// Postgres repo's semantics: case-insensitive email uniqueness, OR search
// across name/email/username, allow-listed sorting with an id tie-break, and
// offset slicing.
type MemoryUserStore struct {
	mu        sync.RWMutex
	users     map[string]models.User
	employees map[string]models.Employee
}

func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{
		users:     make(map[string]models.User),
		employees: make(map[string]models.Employee),
	}
}

// PutEmployee registers an employee profile for the projection join.
func (s *MemoryUserStore) PutEmployee(employee models.Employee) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if employee.ID == "" {
		employee.ID = uuid.NewString()
	}
	s.employees[employee.UserID] = employee
}

func (s *MemoryUserStore) Create(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if strings.EqualFold(existing.Email, user.Email) {
			return ErrDuplicateEmail
		}
	}

	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	s.users[user.ID] = *user
	return nil
}

func (s *MemoryUserStore) GetByID(_ context.Context, id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &user, nil
}

func (s *MemoryUserStore) GetByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, user := range s.users {
		if strings.EqualFold(user.Email, email) {
			user := user
			return &user, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryUserStore) Update(_ context.Context, id string, patch UserPatch) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}

	if patch.Email != nil {
		for otherID, other := range s.users {
			if otherID != id && strings.EqualFold(other.Email, *patch.Email) {
				return nil, ErrDuplicateEmail
			}
		}
		user.Email = *patch.Email
	}
	if patch.Name != nil {
		user.Name = *patch.Name
	}
	if patch.Username != nil {
		user.Username = patch.Username
	}
	if !patch.Empty() {
		user.UpdatedAt = time.Now()
	}

	s.users[id] = user
	return &user, nil
}

func (s *MemoryUserStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[id]; !ok {
		return ErrNotFound
	}
	delete(s.users, id)
	return nil
}

func (s *MemoryUserStore) SetPassword(_ context.Context, id, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return ErrNotFound
	}
	user.PasswordHash = passwordHash
	user.UpdatedAt = time.Now()
	s.users[id] = user
	return nil
}

func (s *MemoryUserStore) EmailTaken(_ context.Context, email, excludeID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for id, user := range s.users {
		if id != excludeID && strings.EqualFold(user.Email, email) {
			return true, nil
		}
	}
	return false, nil
}

func (s *MemoryUserStore) List(_ context.Context, params listquery.Params) ([]models.User, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	filtered := []models.User{}
	term := strings.ToLower(params.Search)
	for _, user := range s.users {
		if term != "" && !matchesSearch(user, term) {
			continue
		}
		if params.WithEmployee {
			if employee, ok := s.employees[user.ID]; ok {
				employee := employee
				user.Employee = &employee
			}
		}
		filtered = append(filtered, user)
	}

	total := len(filtered)
	desc := params.SortOrder == "desc"
	sort.SliceStable(filtered, func(i, j int) bool {
		cmp := compareUsers(filtered[i], filtered[j], params.SortKey)
		if desc {
			cmp = -cmp
		}
		if cmp != 0 {
			return cmp < 0
		}
		return filtered[i].ID < filtered[j].ID
	})

	if !params.Paginate {
		return filtered, total, nil
	}

	start := params.Offset()
	if start >= total {
		return []models.User{}, total, nil
	}
	end := start + params.PerPage
	if end > total {
		end = total
	}
	return filtered[start:end], total, nil
}

func matchesSearch(user models.User, term string) bool {
	if strings.Contains(strings.ToLower(user.Name), term) {
		return true
	}
	if strings.Contains(strings.ToLower(user.Email), term) {
		return true
	}
	if user.Username != nil && strings.Contains(strings.ToLower(*user.Username), term) {
		return true
	}
	return false
}

func compareUsers(a, b models.User, key string) int {
	switch key {
	case "name":
		return strings.Compare(a.Name, b.Name)
	case "email":
		return strings.Compare(a.Email, b.Email)
	case "username":
		return compareNullableString(a.Username, b.Username)
	case "created_at":
		return a.CreatedAt.Compare(b.CreatedAt)
	case "updated_at":
		return a.UpdatedAt.Compare(b.UpdatedAt)
	default:
		return strings.Compare(a.ID, b.ID)
	}
}

// Nulls sort last in ascending order, matching Postgres defaults.
func compareNullableString(a, b *string) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	default:
		return strings.Compare(*a, *b)
	}
}

// MemoryTokenStore is an in-memory TokenStore used by tests.
type MemoryTokenStore struct {
	mu     sync.RWMutex
	tokens map[string]models.Token
}

func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{tokens: make(map[string]models.Token)}
}

func (s *MemoryTokenStore) Create(_ context.Context, token *models.Token) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	token.CreatedAt = time.Now()
	s.tokens[token.ID] = *token
	return nil
}

func (s *MemoryTokenStore) Get(_ context.Context, id string) (*models.Token, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	token, ok := s.tokens[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &token, nil
}

func (s *MemoryTokenStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.tokens, id)
	return nil
}

package memory

import (
	"context"
	"strings"
	"sync"

	domuser "example.com/category-admin/internal/domain/user"
)

// UserRepository holds the configured admin accounts. Emails are matched
// case-insensitively.
type UserRepository struct {
	mu      sync.RWMutex
	byEmail map[string]*domuser.User
	nextID  int64
}

func NewUserRepository(users ...*domuser.User) *UserRepository {
	r := &UserRepository{byEmail: make(map[string]*domuser.User)}
	for _, u := range users {
		r.Add(u)
	}
	return r
}

// Add stores a copy of u, assigning an id when it has none.
func (r *UserRepository) Add(u *domuser.User) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cloned := *u
	cloned.Email = normalizeEmail(cloned.Email)
	if cloned.ID == 0 {
		r.nextID++
		cloned.ID = r.nextID
	} else if cloned.ID > r.nextID {
		r.nextID = cloned.ID
	}
	r.byEmail[cloned.Email] = &cloned
}

func (r *UserRepository) GetByEmail(_ context.Context, email string) (*domuser.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.byEmail[normalizeEmail(email)]
	if !ok {
		return nil, domuser.ErrUserNotFound
	}
	cloned := *u
	return &cloned, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

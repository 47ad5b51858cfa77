package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/acentrik/hr-portal/models"
)

// MemoryStore is an in-process implementation of all repository contracts,
// used by the test suite. A single mutex serializes every operation, which
// also satisfies the per-account lost-update guard of UpdateAttempts.
type MemoryStore struct {
	mu       sync.Mutex
	users    map[uint]*models.User
	tokens   map[uint]*models.PasswordResetToken
	letters  map[uint]*models.OfferLetter
	sessions map[uint]*models.UserSession
	nextID   uint
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:    make(map[uint]*models.User),
		tokens:   make(map[uint]*models.PasswordResetToken),
		letters:  make(map[uint]*models.OfferLetter),
		sessions: make(map[uint]*models.UserSession),
	}
}

func (s *MemoryStore) id() uint {
	s.nextID++
	return s.nextID
}

func copyUser(u *models.User) *models.User {
	c := *u
	c.PasswordHistory = append([]models.PasswordHistoryEntry(nil), u.PasswordHistory...)
	return &c
}

// Users returns the MemoryStore as a UserRepository.
func (s *MemoryStore) Users() UserRepository { return (*memoryUsers)(s) }

// Tokens returns the MemoryStore as a ResetTokenRepository.
func (s *MemoryStore) Tokens() ResetTokenRepository { return (*memoryTokens)(s) }

// Letters returns the MemoryStore as an OfferLetterRepository.
func (s *MemoryStore) Letters() OfferLetterRepository { return (*memoryLetters)(s) }

// Sessions returns the MemoryStore as a SessionRepository.
func (s *MemoryStore) Sessions() SessionRepository { return (*memorySessions)(s) }

type memoryUsers MemoryStore

func (s *memoryUsers) Create(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == user.Username {
			return ErrDuplicate
		}
	}
	user.ID = (*MemoryStore)(s).id()
	user.CreatedAt = time.Now()
	s.users[user.ID] = copyUser(user)
	return nil
}

func (s *memoryUsers) Save(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[user.ID]; !ok {
		return ErrNotFound
	}
	user.UpdatedAt = time.Now()
	// The map copy replaces the history wholesale, so evicted entries are
	// already gone; consume the list like the gorm implementation does.
	user.EvictedHistory = nil
	s.users[user.ID] = copyUser(user)
	return nil
}

func (s *memoryUsers) FindByUsername(_ context.Context, username string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == username {
			return copyUser(u), nil
		}
	}
	return nil, ErrNotFound
}

func (s *memoryUsers) FindByID(_ context.Context, id uint) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[id]; ok {
		return copyUser(u), nil
	}
	return nil, ErrNotFound
}

func (s *memoryUsers) FindAll(_ context.Context) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	users := make([]models.User, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, *copyUser(u))
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

func (s *memoryUsers) Delete(_ context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return ErrNotFound
	}
	delete(s.users, id)
	return nil
}

func (s *memoryUsers) UpdateAttempts(_ context.Context, username string, fn func(*models.User) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, u := range s.users {
		if u.Username == username {
			c := copyUser(u)
			err := fn(c)
			s.users[id] = c
			return err
		}
	}
	return ErrNotFound
}

type memoryTokens MemoryStore

func (s *memoryTokens) Create(_ context.Context, token *models.PasswordResetToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	token.ID = (*MemoryStore)(s).id()
	token.CreatedAt = time.Now()
	c := *token
	s.tokens[token.ID] = &c
	return nil
}

func (s *memoryTokens) FindByToken(_ context.Context, token string) (*models.PasswordResetToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.tokens {
		if t.Token == token {
			c := *t
			return &c, nil
		}
	}
	return nil, ErrNotFound
}

func (s *memoryTokens) DeleteByUser(_ context.Context, userID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, t := range s.tokens {
		if t.UserID == userID {
			delete(s.tokens, id)
		}
	}
	return nil
}

func (s *memoryTokens) DeleteExpired(_ context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var removed int64
	for id, t := range s.tokens {
		if t.ExpiryDate.Before(cutoff) {
			delete(s.tokens, id)
			removed++
		}
	}
	return removed, nil
}

type memoryLetters MemoryStore

func (s *memoryLetters) Create(_ context.Context, letter *models.OfferLetter) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	letter.ID = (*MemoryStore)(s).id()
	if letter.CreatedAt.IsZero() {
		letter.CreatedAt = time.Now()
	}
	c := *letter
	c.Content = append([]byte(nil), letter.Content...)
	s.letters[letter.ID] = &c
	return nil
}

func (s *memoryLetters) FindByID(_ context.Context, id uint) (*models.OfferLetter, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if l, ok := s.letters[id]; ok {
		c := *l
		return &c, nil
	}
	return nil, ErrNotFound
}

func (s *memoryLetters) FindByUser(_ context.Context, userID uint) ([]models.OfferLetter, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var letters []models.OfferLetter
	for _, l := range s.letters {
		if l.UserID == userID {
			letters = append(letters, *l)
		}
	}
	sort.Slice(letters, func(i, j int) bool {
		return letters[i].CreatedAt.After(letters[j].CreatedAt)
	})
	return letters, nil
}

func (s *memoryLetters) FindLatestByUser(ctx context.Context, userID uint) (*models.OfferLetter, error) {
	letters, err := s.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(letters) == 0 {
		return nil, ErrNotFound
	}
	return &letters[0], nil
}

func (s *memoryLetters) Delete(_ context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.letters[id]; !ok {
		return ErrNotFound
	}
	delete(s.letters, id)
	return nil
}

func (s *memoryLetters) DeleteByUser(_ context.Context, userID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, l := range s.letters {
		if l.UserID == userID {
			delete(s.letters, id)
		}
	}
	return nil
}

type memorySessions MemoryStore

func (s *memorySessions) Create(_ context.Context, session *models.UserSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	session.ID = (*MemoryStore)(s).id()
	session.CreatedAt = time.Now()
	c := *session
	s.sessions[session.ID] = &c
	return nil
}

func (s *memorySessions) FindActiveByToken(_ context.Context, token string) (*models.UserSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sess := range s.sessions {
		if sess.SessionToken == token && sess.IsActive && sess.ExpiresAt.After(time.Now()) {
			c := *sess
			return &c, nil
		}
	}
	return nil, ErrNotFound
}

func (s *memorySessions) Touch(_ context.Context, id uint, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[id]; ok {
		sess.LastActivity = at
		return nil
	}
	return ErrNotFound
}

func (s *memorySessions) Deactivate(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sess := range s.sessions {
		if sess.SessionToken == token && sess.IsActive {
			sess.IsActive = false
			sess.ExpiresAt = time.Now()
			return nil
		}
	}
	return ErrNotFound
}

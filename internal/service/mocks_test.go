package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/gauravnainwal518/note-app/internal/auth"
	apperrors "github.com/gauravnainwal518/note-app/internal/errors"
	"github.com/gauravnainwal518/note-app/internal/model"
	"github.com/gauravnainwal518/note-app/internal/repository"
)

// MockUserRepository is a mock implementation of UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	if args.Error(0) == nil && user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	return args.Error(0)
}

func (m *MockUserRepository) UpdateProfile(ctx context.Context, id uuid.UUID, changes repository.ProfileChanges) error {
	args := m.Called(ctx, id, changes)
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByGoogleSubject(ctx context.Context, subject string) (*model.User, error) {
	args := m.Called(ctx, subject)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) SetOTP(ctx context.Context, id uuid.UUID, code string, expiresAt time.Time) error {
	args := m.Called(ctx, id, code, expiresAt)
	return args.Error(0)
}

func (m *MockUserRepository) ConsumeOTP(ctx context.Context, id uuid.UUID, code string) (bool, error) {
	args := m.Called(ctx, id, code)
	return args.Bool(0), args.Error(1)
}

// MockNoteRepository is a mock implementation of NoteRepository.
type MockNoteRepository struct {
	mock.Mock
}

func (m *MockNoteRepository) Create(ctx context.Context, note *model.Note) error {
	args := m.Called(ctx, note)
	if args.Error(0) == nil && note.ID == uuid.Nil {
		note.ID = uuid.New()
	}
	return args.Error(0)
}

func (m *MockNoteRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]model.Note, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Note), args.Error(1)
}

func (m *MockNoteRepository) DeleteByOwner(ctx context.Context, ownerID, noteID uuid.UUID) error {
	args := m.Called(ctx, ownerID, noteID)
	return args.Error(0)
}

// MockMailer is a mock implementation of mail.Mailer.
type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) Send(ctx context.Context, to, subject, body string) error {
	args := m.Called(ctx, to, subject, body)
	return args.Error(0)
}

// MockIdentityVerifier is a mock implementation of auth.IdentityVerifier.
type MockIdentityVerifier struct {
	mock.Mock
}

func (m *MockIdentityVerifier) Verify(ctx context.Context, assertion string) (*auth.FederatedIdentity, error) {
	args := m.Called(ctx, assertion)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.FederatedIdentity), args.Error(1)
}

// memUserRepository is an in-memory UserRepository for multi-step flows.
type memUserRepository struct {
	mu    sync.Mutex
	users map[uuid.UUID]model.User
}

func newMemUserRepository() *memUserRepository {
	return &memUserRepository{users: map[uuid.UUID]model.User{}}
}

func (r *memUserRepository) Create(_ context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return repository.ErrDuplicate
		}
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	user.CreatedAt = time.Now()
	r.users[user.ID] = *user
	return nil
}

func (r *memUserRepository) UpdateProfile(_ context.Context, id uuid.UUID, changes repository.ProfileChanges) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return apperrors.ErrUserNotFound
	}
	if changes.Name != nil {
		u.Name = *changes.Name
	}
	if changes.GoogleSubjectID != nil {
		subject := *changes.GoogleSubjectID
		u.GoogleSubjectID = &subject
	}
	r.users[id] = u
	return nil
}

func (r *memUserRepository) find(match func(model.User) bool) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if match(u) {
			found := u
			return &found, nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

func (r *memUserRepository) FindByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	return r.find(func(u model.User) bool { return u.ID == id })
}

func (r *memUserRepository) FindByEmail(_ context.Context, email string) (*model.User, error) {
	return r.find(func(u model.User) bool { return u.Email == email })
}

func (r *memUserRepository) FindByGoogleSubject(_ context.Context, subject string) (*model.User, error) {
	return r.find(func(u model.User) bool { return u.GoogleSubjectID != nil && *u.GoogleSubjectID == subject })
}

func (r *memUserRepository) SetOTP(_ context.Context, id uuid.UUID, code string, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return apperrors.ErrUserNotFound
	}
	u.OTPCode, u.OTPExpiresAt = &code, &expiresAt
	r.users[id] = u
	return nil
}

func (r *memUserRepository) ConsumeOTP(_ context.Context, id uuid.UUID, code string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok || u.OTPCode == nil || *u.OTPCode != code {
		return false, nil
	}
	u.OTPCode, u.OTPExpiresAt = nil, nil
	r.users[id] = u
	return true, nil
}

func (r *memUserRepository) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.users)
}

// memNoteRepository is an in-memory NoteRepository.
type memNoteRepository struct {
	mu    sync.Mutex
	notes []model.Note
}

func newMemNoteRepository() *memNoteRepository {
	return &memNoteRepository{}
}

func (r *memNoteRepository) Create(_ context.Context, note *model.Note) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if note.ID == uuid.Nil {
		note.ID = uuid.New()
	}
	note.CreatedAt = time.Now()
	r.notes = append(r.notes, *note)
	return nil
}

func (r *memNoteRepository) ListByOwner(_ context.Context, ownerID uuid.UUID) ([]model.Note, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []model.Note{}
	for _, n := range r.notes {
		if n.OwnerID == ownerID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (r *memNoteRepository) DeleteByOwner(_ context.Context, ownerID, noteID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, n := range r.notes {
		if n.ID == noteID && n.OwnerID == ownerID {
			r.notes = append(r.notes[:i], r.notes[i+1:]...)
			return nil
		}
	}
	return apperrors.ErrNoteNotFound
}

// inbox records mailed codes by recipient.
type inbox struct {
	mu   sync.Mutex
	last map[string]string
}

func newInbox() *inbox {
	return &inbox{last: map[string]string{}}
}

func (i *inbox) Send(_ context.Context, to, subject, body string) error {
	if subject != otpMailSubject {
		return fmt.Errorf("unexpected subject %q", subject)
	}
	i.mu.Lock()
	defer i.mu.Unlock()
	i.last[to] = strings.TrimPrefix(body, "Your OTP is ")
	return nil
}

func (i *inbox) code(to string) string {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.last[to]
}

// clock is a settable time source.
type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

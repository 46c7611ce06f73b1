package service

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/jerseyhub/gallery-system/internal/core/domain"
)

// ---------------------------------------------------------------------------
// In-memory stub repositories shared by the service tests
// ---------------------------------------------------------------------------

type stubUserRepo struct {
	mu        sync.Mutex
	users     map[string]*domain.User
	nextID    int
	creditErr error // if set, CreditPoints returns this error
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Handle == user.Handle {
			return nil, domain.ErrUserExists
		}
	}
	copy := cloneUser(user)
	r.nextID++
	copy.ID = fmt.Sprintf("user_%d", r.nextID)
	r.users[copy.ID] = cloneUser(copy)
	return copy, nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) FindByHandle(_ context.Context, handle string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Handle == handle {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) EnsureAdmin(ctx context.Context, user *domain.User) (*domain.User, error) {
	if existing, err := r.FindByHandle(ctx, user.Handle); err == nil {
		return existing, nil
	}
	return r.Create(ctx, user)
}

func (r *stubUserRepo) DebitPoints(_ context.Context, id string, amount domain.Points) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	if u.Role == domain.RoleAdmin {
		return cloneUser(u), nil
	}
	if u.Points < amount {
		return nil, domain.ErrInsufficientPoints
	}
	u.Points -= amount
	return cloneUser(u), nil
}

func (r *stubUserRepo) CreditPoints(_ context.Context, id string, amount domain.Points) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.creditErr != nil {
		return nil, r.creditErr
	}
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	u.Points += amount
	return cloneUser(u), nil
}

func (r *stubUserRepo) SetBanned(_ context.Context, id string, banned bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.IsBanned = banned
	return nil
}

func (r *stubUserRepo) List(_ context.Context) ([]*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, cloneUser(u))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// count reports the number of stored users.
func (r *stubUserRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.users)
}

type stubDesignRepo struct {
	mu        sync.Mutex
	designs   map[string]*domain.Design
	nextID    int
	deleteErr error // if set, Delete returns this error
}

func newStubDesignRepo() *stubDesignRepo {
	return &stubDesignRepo{designs: make(map[string]*domain.Design)}
}

func (r *stubDesignRepo) Create(_ context.Context, d *domain.Design) (*domain.Design, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *d
	r.nextID++
	clone.ID = fmt.Sprintf("design_%d", r.nextID)
	r.designs[clone.ID] = &clone
	out := clone
	return &out, nil
}

func (r *stubDesignRepo) FindByID(_ context.Context, id string) (*domain.Design, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.designs[id]
	if !ok {
		return nil, domain.ErrDesignNotFound
	}
	clone := *d
	return &clone, nil
}

func (r *stubDesignRepo) List(_ context.Context) ([]domain.Design, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Design, 0, len(r.designs))
	for _, d := range r.designs {
		out = append(out, *d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *stubDesignRepo) ListPending(ctx context.Context) ([]domain.Design, error) {
	all, _ := r.List(ctx)
	out := make([]domain.Design, 0, len(all))
	for _, d := range all {
		if d.Status == domain.StatusPending {
			out = append(out, d)
		}
	}
	return out, nil
}

func (r *stubDesignRepo) SetStatus(_ context.Context, id string, from, to domain.DesignStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.designs[id]
	if !ok {
		return domain.ErrDesignNotFound
	}
	if d.Status != from {
		return domain.ErrInvalidTransition
	}
	d.Status = to
	return nil
}

func (r *stubDesignRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.deleteErr != nil {
		return r.deleteErr
	}
	if _, ok := r.designs[id]; !ok {
		return domain.ErrDesignNotFound
	}
	delete(r.designs, id)
	return nil
}

type stubRequestRepo struct {
	mu        sync.Mutex
	requests  map[string]*domain.DeleteRequest
	nextID    int
	deleteErr error // if set, Delete returns this error
}

func newStubRequestRepo() *stubRequestRepo {
	return &stubRequestRepo{requests: make(map[string]*domain.DeleteRequest)}
}

func (r *stubRequestRepo) Create(_ context.Context, req *domain.DeleteRequest) (*domain.DeleteRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *req
	r.nextID++
	clone.ID = fmt.Sprintf("request_%d", r.nextID)
	r.requests[clone.ID] = &clone
	out := clone
	return &out, nil
}

func (r *stubRequestRepo) FindByID(_ context.Context, id string) (*domain.DeleteRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.requests[id]
	if !ok {
		return nil, domain.ErrRequestNotFound
	}
	clone := *req
	return &clone, nil
}

func (r *stubRequestRepo) List(_ context.Context) ([]domain.DeleteRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.DeleteRequest, 0, len(r.requests))
	for _, req := range r.requests {
		out = append(out, *req)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *stubRequestRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.deleteErr != nil {
		return r.deleteErr
	}
	if _, ok := r.requests[id]; !ok {
		return domain.ErrRequestNotFound
	}
	delete(r.requests, id)
	return nil
}

// stubLocker tracks in-flight (user, design) pairs.
type stubLocker struct {
	mu       sync.Mutex
	held     map[string]bool
	acquires int
}

func newStubLocker() *stubLocker {
	return &stubLocker{held: make(map[string]bool)}
}

func (l *stubLocker) key(userID, designID string) string { return userID + ":" + designID }

func (l *stubLocker) Acquire(_ context.Context, userID, designID string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	k := l.key(userID, designID)
	if l.held[k] {
		return false, nil
	}
	l.held[k] = true
	l.acquires++
	return true, nil
}

func (l *stubLocker) Release(_ context.Context, userID, designID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.held, l.key(userID, designID))
}

// stubSink collects enqueued activity events synchronously.
type stubSink struct {
	mu     sync.Mutex
	events []domain.ActivityEvent
}

func (s *stubSink) Enqueue(event domain.ActivityEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
}

func (s *stubSink) byAction(action string) []domain.ActivityEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []domain.ActivityEvent{}
	for _, e := range s.events {
		if e.Action == action {
			out = append(out, e)
		}
	}
	return out
}

// stubTranscoder returns a fixed encoding without touching image bytes.
type stubTranscoder struct {
	err error
}

func (t *stubTranscoder) Transcode(raw []byte, maxWidth, quality int) (string, error) {
	if t.err != nil {
		return "", t.err
	}
	return fmt.Sprintf("data:image/jpeg;base64,stub-%d", len(raw)), nil
}

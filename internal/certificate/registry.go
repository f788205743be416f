package certificate

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
)

var (
	ErrCourseNotFound  = errors.New("certificate: course not found")
	ErrCourseExists    = errors.New("certificate: course already registered")
	ErrAlreadyAssigned = errors.New("certificate: certificate already assigned")
)

// Registry tracks non-fungible course-access certificates. The settlement
// engine only ever assigns a certificate and queries its owner.
type Registry interface {
	Assign(ctx context.Context, courseID int64, owner uuid.UUID) error
	OwnerOf(ctx context.Context, courseID int64) (uuid.UUID, error)
}

// MemRegistry is an in-process Registry. A course must be registered before
// its certificate can be assigned; an unassigned certificate has owner
// uuid.Nil.
type MemRegistry struct {
	mu     sync.Mutex
	owners map[int64]uuid.UUID
}

func NewMemRegistry() *MemRegistry {
	return &MemRegistry{owners: make(map[int64]uuid.UUID)}
}

// CreateCourse registers a course with an unassigned certificate.
func (r *MemRegistry) CreateCourse(ctx context.Context, courseID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.owners[courseID]; ok {
		return ErrCourseExists
	}
	r.owners[courseID] = uuid.Nil
	return nil
}

func (r *MemRegistry) Assign(ctx context.Context, courseID int64, owner uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.owners[courseID]
	if !ok {
		return ErrCourseNotFound
	}
	if current != uuid.Nil {
		return ErrAlreadyAssigned
	}
	r.owners[courseID] = owner
	return nil
}

func (r *MemRegistry) OwnerOf(ctx context.Context, courseID int64) (uuid.UUID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	owner, ok := r.owners[courseID]
	if !ok {
		return uuid.Nil, ErrCourseNotFound
	}
	return owner, nil
}

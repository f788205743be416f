package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/coursehive/course-auction/internal/certificate"
)

type CourseServicer interface {
	CreateCourse(ctx context.Context, courseID int64) error
	CourseOwner(ctx context.Context, courseID int64) (uuid.UUID, error)
}

// CourseService registers courses in the certificate registry so they can be
// auctioned, and answers ownership queries.
type CourseService struct {
	registry *certificate.MemRegistry
}

func NewCourseService(registry *certificate.MemRegistry) *CourseService {
	return &CourseService{
		registry: registry,
	}
}

func (cs *CourseService) CreateCourse(ctx context.Context, courseID int64) error {
	return cs.registry.CreateCourse(ctx, courseID)
}

func (cs *CourseService) CourseOwner(ctx context.Context, courseID int64) (uuid.UUID, error) {
	return cs.registry.OwnerOf(ctx, courseID)
}

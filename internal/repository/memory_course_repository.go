package repository

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/Prasad22V/coursebundler-server/internal/domain"
)

// MemoryCourseRepository is an in-memory CourseRepository for tests
type MemoryCourseRepository struct {
	mu      sync.RWMutex
	courses map[bson.ObjectID]*domain.Course
}

// NewMemoryCourseRepository creates an empty in-memory course repository
func NewMemoryCourseRepository() *MemoryCourseRepository {
	return &MemoryCourseRepository{courses: make(map[bson.ObjectID]*domain.Course)}
}

func copyCourse(c *domain.Course) *domain.Course {
	cp := *c
	cp.Lectures = append([]domain.Lecture(nil), c.Lectures...)
	return &cp
}

// Create inserts a course
func (r *MemoryCourseRepository) Create(ctx context.Context, course *domain.Course) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if course.ID.IsZero() {
		course.ID = bson.NewObjectID()
	}
	now := time.Now()
	course.CreatedAt = now
	course.UpdatedAt = now
	r.courses[course.ID] = copyCourse(course)
	return nil
}

// GetByID returns the course or (nil, nil)
func (r *MemoryCourseRepository) GetByID(ctx context.Context, id bson.ObjectID) (*domain.Course, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if c, ok := r.courses[id]; ok {
		return copyCourse(c), nil
	}
	return nil, nil
}

// Update replaces the stored course wholesale
func (r *MemoryCourseRepository) Update(ctx context.Context, course *domain.Course) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.courses[course.ID]; !ok {
		return domain.E(domain.KindNotFound, "Course not found")
	}
	course.UpdatedAt = time.Now()
	r.courses[course.ID] = copyCourse(course)
	return nil
}

// Delete removes the course
func (r *MemoryCourseRepository) Delete(ctx context.Context, id bson.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.courses[id]; !ok {
		return domain.E(domain.KindNotFound, "Course not found")
	}
	delete(r.courses, id)
	return nil
}

// List returns matching courses with lectures stripped
func (r *MemoryCourseRepository) List(ctx context.Context, keyword, category string) ([]*domain.Course, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var courses []*domain.Course
	for _, c := range r.courses {
		if keyword != "" && !strings.Contains(strings.ToLower(c.Title), strings.ToLower(keyword)) {
			continue
		}
		if category != "" && !strings.Contains(strings.ToLower(c.Category), strings.ToLower(category)) {
			continue
		}
		cp := copyCourse(c)
		cp.Lectures = nil
		courses = append(courses, cp)
	}
	return courses, nil
}

// TotalViews sums views across all courses
func (r *MemoryCourseRepository) TotalViews(ctx context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var total int64
	for _, c := range r.courses {
		total += c.Views
	}
	return total, nil
}

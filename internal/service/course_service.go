package service

import (
	"context"
	"io"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/Prasad22V/coursebundler-server/internal/domain"
	"github.com/Prasad22V/coursebundler-server/internal/media"
	"github.com/Prasad22V/coursebundler-server/internal/repository"
)

// CourseService defines course and lecture operations
type CourseService interface {
	List(ctx context.Context, keyword, category string) ([]*domain.Course, error)
	Create(ctx context.Context, title, description, category, createdBy string, poster io.Reader) (*domain.Course, error)
	// GetLectures returns the lecture list and counts the read as a view
	GetLectures(ctx context.Context, courseID bson.ObjectID) ([]domain.Lecture, error)
	AddLecture(ctx context.Context, courseID bson.ObjectID, title, description string, video io.Reader) error
	DeleteCourse(ctx context.Context, courseID bson.ObjectID) error
	DeleteLecture(ctx context.Context, courseID, lectureID bson.ObjectID) error
}

type courseService struct {
	courses repository.CourseRepository
	storage media.Storage
}

// NewCourseService creates a CourseService
func NewCourseService(courses repository.CourseRepository, storage media.Storage) CourseService {
	return &courseService{courses: courses, storage: storage}
}

func (s *courseService) load(ctx context.Context, courseID bson.ObjectID) (*domain.Course, error) {
	course, err := s.courses.GetByID(ctx, courseID)
	if err != nil {
		return nil, domain.Wrap(domain.KindInternal, "Failed to load course", err)
	}
	if course == nil {
		return nil, domain.E(domain.KindNotFound, "Course not found")
	}
	return course, nil
}

func (s *courseService) List(ctx context.Context, keyword, category string) ([]*domain.Course, error) {
	courses, err := s.courses.List(ctx, keyword, category)
	if err != nil {
		return nil, domain.Wrap(domain.KindInternal, "Failed to list courses", err)
	}
	return courses, nil
}

func (s *courseService) Create(ctx context.Context, title, description, category, createdBy string, poster io.Reader) (*domain.Course, error) {
	asset, err := s.storage.Upload(ctx, poster, media.ResourceImage)
	if err != nil {
		return nil, domain.Wrap(domain.KindInternal, "Failed to upload poster", err)
	}

	course := &domain.Course{
		Title:       title,
		Description: description,
		Category:    category,
		CreatedBy:   createdBy,
		Poster:      domain.Avatar{PublicID: asset.PublicID, URL: asset.URL},
	}
	if err := s.courses.Create(ctx, course); err != nil {
		return nil, domain.Wrap(domain.KindInternal, "Failed to create course", err)
	}
	return course, nil
}

func (s *courseService) GetLectures(ctx context.Context, courseID bson.ObjectID) ([]domain.Lecture, error) {
	course, err := s.load(ctx, courseID)
	if err != nil {
		return nil, err
	}

	course.Views++
	if err := s.courses.Update(ctx, course); err != nil {
		return nil, err
	}
	return course.Lectures, nil
}

func (s *courseService) AddLecture(ctx context.Context, courseID bson.ObjectID, title, description string, video io.Reader) error {
	course, err := s.load(ctx, courseID)
	if err != nil {
		return err
	}

	asset, err := s.storage.Upload(ctx, video, media.ResourceVideo)
	if err != nil {
		return domain.Wrap(domain.KindInternal, "Failed to upload lecture video", err)
	}

	course.Lectures = append(course.Lectures, domain.Lecture{
		ID:          bson.NewObjectID(),
		Title:       title,
		Description: description,
		Video:       domain.Video{PublicID: asset.PublicID, URL: asset.URL},
	})
	course.RecountVideos()
	return s.courses.Update(ctx, course)
}

func (s *courseService) DeleteCourse(ctx context.Context, courseID bson.ObjectID) error {
	course, err := s.load(ctx, courseID)
	if err != nil {
		return err
	}

	if err := s.storage.Destroy(ctx, course.Poster.PublicID, media.ResourceImage); err != nil {
		return domain.Wrap(domain.KindInternal, "Failed to remove poster", err)
	}
	for _, lecture := range course.Lectures {
		if err := s.storage.Destroy(ctx, lecture.Video.PublicID, media.ResourceVideo); err != nil {
			return domain.Wrap(domain.KindInternal, "Failed to remove lecture video", err)
		}
	}
	return s.courses.Delete(ctx, courseID)
}

// DeleteLecture removes a lecture by id. An unknown lecture id leaves the
// list unchanged but the derived count is still recomputed.
func (s *courseService) DeleteLecture(ctx context.Context, courseID, lectureID bson.ObjectID) error {
	course, err := s.load(ctx, courseID)
	if err != nil {
		return err
	}

	filtered := course.Lectures[:0]
	for _, lecture := range course.Lectures {
		if lecture.ID == lectureID {
			if err := s.storage.Destroy(ctx, lecture.Video.PublicID, media.ResourceVideo); err != nil {
				return domain.Wrap(domain.KindInternal, "Failed to remove lecture video", err)
			}
			continue
		}
		filtered = append(filtered, lecture)
	}
	course.Lectures = filtered
	course.RecountVideos()
	return s.courses.Update(ctx, course)
}

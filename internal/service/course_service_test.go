package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/Prasad22V/coursebundler-server/internal/domain"
	"github.com/Prasad22V/coursebundler-server/internal/media"
	"github.com/Prasad22V/coursebundler-server/internal/repository"
)

type courseFixture struct {
	courses *repository.MemoryCourseRepository
	storage *media.MemoryStorage
	service CourseService
}

func newCourseFixture(t *testing.T) *courseFixture {
	t.Helper()
	f := &courseFixture{
		courses: repository.NewMemoryCourseRepository(),
		storage: media.NewMemoryStorage(),
	}
	f.service = NewCourseService(f.courses, f.storage)
	return f
}

func (f *courseFixture) createCourse(t *testing.T, title, category string) *domain.Course {
	t.Helper()
	course, err := f.service.Create(context.Background(), title, "A description longer than the minimum", category, "Tester", strings.NewReader("poster-bytes"))
	require.NoError(t, err)
	return course
}

func TestCreateCourse(t *testing.T) {
	f := newCourseFixture(t)
	course := f.createCourse(t, "Go in Depth", "backend")

	assert.False(t, course.ID.IsZero())
	assert.Zero(t, course.Views)
	assert.Zero(t, course.NumOfVideos)
	assert.True(t, f.storage.Has(course.Poster.PublicID))
}

func TestListCourses(t *testing.T) {
	f := newCourseFixture(t)
	f.createCourse(t, "Go in Depth", "backend")
	f.createCourse(t, "React Basics", "frontend")

	t.Run("unfiltered", func(t *testing.T) {
		courses, err := f.service.List(context.Background(), "", "")
		require.NoError(t, err)
		assert.Len(t, courses, 2)
	})

	t.Run("keyword filter", func(t *testing.T) {
		courses, err := f.service.List(context.Background(), "react", "")
		require.NoError(t, err)
		require.Len(t, courses, 1)
		assert.Equal(t, "React Basics", courses[0].Title)
	})

	t.Run("category filter", func(t *testing.T) {
		courses, err := f.service.List(context.Background(), "", "backend")
		require.NoError(t, err)
		require.Len(t, courses, 1)
		assert.Equal(t, "Go in Depth", courses[0].Title)
	})

	t.Run("listing never exposes lecture content", func(t *testing.T) {
		require.NoError(t, f.service.AddLecture(context.Background(), f.createCourse(t, "With Video", "backend").ID, "Intro", "First lecture", strings.NewReader("mp4")))
		courses, err := f.service.List(context.Background(), "with video", "")
		require.NoError(t, err)
		require.Len(t, courses, 1)
		assert.Empty(t, courses[0].Lectures)
		assert.Equal(t, 1, courses[0].NumOfVideos)
	})
}

func TestGetLectures(t *testing.T) {
	f := newCourseFixture(t)
	course := f.createCourse(t, "Go in Depth", "backend")
	require.NoError(t, f.service.AddLecture(context.Background(), course.ID, "Intro", "First lecture", strings.NewReader("mp4")))

	t.Run("each read counts a view", func(t *testing.T) {
		lectures, err := f.service.GetLectures(context.Background(), course.ID)
		require.NoError(t, err)
		assert.Len(t, lectures, 1)

		_, err = f.service.GetLectures(context.Background(), course.ID)
		require.NoError(t, err)

		stored, err := f.courses.GetByID(context.Background(), course.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(2), stored.Views)
	})

	t.Run("unknown course", func(t *testing.T) {
		_, err := f.service.GetLectures(context.Background(), bson.NewObjectID())
		assert.Equal(t, domain.KindNotFound, domain.KindOf(err))
	})
}

func TestLectures(t *testing.T) {
	t.Run("add keeps the video count in step", func(t *testing.T) {
		f := newCourseFixture(t)
		course := f.createCourse(t, "Go in Depth", "backend")

		require.NoError(t, f.service.AddLecture(context.Background(), course.ID, "Intro", "First", strings.NewReader("a")))
		require.NoError(t, f.service.AddLecture(context.Background(), course.ID, "Types", "Second", strings.NewReader("b")))

		stored, err := f.courses.GetByID(context.Background(), course.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, stored.NumOfVideos)
		assert.Len(t, stored.Lectures, 2)
	})

	t.Run("delete removes the lecture and its video", func(t *testing.T) {
		f := newCourseFixture(t)
		course := f.createCourse(t, "Go in Depth", "backend")
		require.NoError(t, f.service.AddLecture(context.Background(), course.ID, "Intro", "First", strings.NewReader("a")))
		require.NoError(t, f.service.AddLecture(context.Background(), course.ID, "Types", "Second", strings.NewReader("b")))

		stored, err := f.courses.GetByID(context.Background(), course.ID)
		require.NoError(t, err)
		victim := stored.Lectures[0]

		require.NoError(t, f.service.DeleteLecture(context.Background(), course.ID, victim.ID))

		stored, err = f.courses.GetByID(context.Background(), course.ID)
		require.NoError(t, err)
		require.Len(t, stored.Lectures, 1)
		assert.Equal(t, 1, stored.NumOfVideos)
		assert.NotEqual(t, victim.ID, stored.Lectures[0].ID)
		assert.False(t, f.storage.Has(victim.Video.PublicID))
	})

	t.Run("deleting an unknown lecture id is a no-op", func(t *testing.T) {
		f := newCourseFixture(t)
		course := f.createCourse(t, "Go in Depth", "backend")
		require.NoError(t, f.service.AddLecture(context.Background(), course.ID, "Intro", "First", strings.NewReader("a")))

		require.NoError(t, f.service.DeleteLecture(context.Background(), course.ID, bson.NewObjectID()))

		stored, err := f.courses.GetByID(context.Background(), course.ID)
		require.NoError(t, err)
		assert.Len(t, stored.Lectures, 1)
		assert.Equal(t, 1, stored.NumOfVideos)
	})
}

func TestDeleteCourse(t *testing.T) {
	f := newCourseFixture(t)
	course := f.createCourse(t, "Go in Depth", "backend")
	require.NoError(t, f.service.AddLecture(context.Background(), course.ID, "Intro", "First", strings.NewReader("a")))

	stored, err := f.courses.GetByID(context.Background(), course.ID)
	require.NoError(t, err)

	require.NoError(t, f.service.DeleteCourse(context.Background(), course.ID))

	gone, err := f.courses.GetByID(context.Background(), course.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)
	assert.False(t, f.storage.Has(stored.Poster.PublicID))
	assert.False(t, f.storage.Has(stored.Lectures[0].Video.PublicID))
}

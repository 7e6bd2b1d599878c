package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/Prasad22V/coursebundler-server/internal/domain"
)

// MongoCourseRepository implements CourseRepository backed by MongoDB
type MongoCourseRepository struct {
	coll *mongo.Collection
}

// NewMongoCourseRepository creates a Mongo-backed course repository
func NewMongoCourseRepository(db *mongo.Database) *MongoCourseRepository {
	return &MongoCourseRepository{coll: db.Collection(coursesCollection)}
}

// Create inserts a course
func (r *MongoCourseRepository) Create(ctx context.Context, course *domain.Course) error {
	if course.ID.IsZero() {
		course.ID = bson.NewObjectID()
	}
	now := time.Now()
	course.CreatedAt = now
	course.UpdatedAt = now

	if _, err := r.coll.InsertOne(ctx, course); err != nil {
		return fmt.Errorf("failed to create course: %w", err)
	}
	return nil
}

// GetByID returns the course or (nil, nil) when absent
func (r *MongoCourseRepository) GetByID(ctx context.Context, id bson.ObjectID) (*domain.Course, error) {
	var course domain.Course
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&course)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find course: %w", err)
	}
	return &course, nil
}

// Update replaces the whole document (last write wins, as with users)
func (r *MongoCourseRepository) Update(ctx context.Context, course *domain.Course) error {
	course.UpdatedAt = time.Now()
	result, err := r.coll.ReplaceOne(ctx, bson.M{"_id": course.ID}, course)
	if err != nil {
		return fmt.Errorf("failed to update course: %w", err)
	}
	if result.MatchedCount == 0 {
		return domain.E(domain.KindNotFound, "Course not found")
	}
	return nil
}

// Delete removes the course document
func (r *MongoCourseRepository) Delete(ctx context.Context, id bson.ObjectID) error {
	result, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete course: %w", err)
	}
	if result.DeletedCount == 0 {
		return domain.E(domain.KindNotFound, "Course not found")
	}
	return nil
}

// List returns courses matching the filters, lectures excluded
func (r *MongoCourseRepository) List(ctx context.Context, keyword, category string) ([]*domain.Course, error) {
	filter := bson.M{
		"title":    bson.M{"$regex": keyword, "$options": "i"},
		"category": bson.M{"$regex": category, "$options": "i"},
	}
	opts := options.Find().SetProjection(bson.M{"lectures": 0})

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}
	defer cursor.Close(ctx)

	var courses []*domain.Course
	if err := cursor.All(ctx, &courses); err != nil {
		return nil, fmt.Errorf("failed to decode courses: %w", err)
	}
	return courses, nil
}

// TotalViews sums views across all courses
func (r *MongoCourseRepository) TotalViews(ctx context.Context) (int64, error) {
	cursor, err := r.coll.Aggregate(ctx, mongo.Pipeline{
		bson.D{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: nil},
			{Key: "views", Value: bson.D{{Key: "$sum", Value: "$views"}}},
		}}},
	})
	if err != nil {
		return 0, fmt.Errorf("failed to sum course views: %w", err)
	}
	defer cursor.Close(ctx)

	var results []struct {
		Views int64 `bson:"views"`
	}
	if err := cursor.All(ctx, &results); err != nil {
		return 0, fmt.Errorf("failed to decode view sum: %w", err)
	}
	if len(results) == 0 {
		return 0, nil
	}
	return results[0].Views, nil
}

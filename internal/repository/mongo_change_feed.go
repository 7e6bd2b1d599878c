package repository

import (
	"context"
	"fmt"
	"sync"

	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/Prasad22V/coursebundler-server/pkg/logger"
)

// MongoChangeFeed tails the change streams of the users and courses
// collections and forwards {collection, operation} notifications. This is the
// storage layer's own feed, so it also captures out-of-band writes that never
// pass through this process.
type MongoChangeFeed struct {
	db  *mongo.Database
	ch  chan Event
	log *logger.Logger
}

// NewMongoChangeFeed creates a change feed over the watched collections
func NewMongoChangeFeed(db *mongo.Database) *MongoChangeFeed {
	return &MongoChangeFeed{
		db:  db,
		ch:  make(chan Event, 64),
		log: logger.Get(),
	}
}

// Events returns the notification channel
func (f *MongoChangeFeed) Events() <-chan Event {
	return f.ch
}

// Run tails both change streams until ctx is cancelled
func (f *MongoChangeFeed) Run(ctx context.Context) error {
	var wg sync.WaitGroup
	for _, name := range []Collection{CollectionUsers, CollectionCourses} {
		wg.Add(1)
		go func(name Collection) {
			defer wg.Done()
			f.tail(ctx, name)
		}(name)
	}
	wg.Wait()
	close(f.ch)
	return ctx.Err()
}

func (f *MongoChangeFeed) tail(ctx context.Context, name Collection) {
	stream, err := f.db.Collection(string(name)).Watch(ctx, mongo.Pipeline{})
	if err != nil {
		f.log.Error(fmt.Sprintf("Failed to open change stream for %s: %v", name, err))
		return
	}
	defer stream.Close(context.Background())

	for stream.Next(ctx) {
		var change struct {
			OperationType string `bson:"operationType"`
		}
		if err := stream.Decode(&change); err != nil {
			f.log.Error(fmt.Sprintf("Failed to decode change event for %s: %v", name, err))
			continue
		}

		ev := Event{Collection: name, Operation: Operation(change.OperationType)}
		select {
		case f.ch <- ev:
		case <-ctx.Done():
			return
		}
	}
}

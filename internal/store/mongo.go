package store

import (
	"context"
	"errors"
	"strings"
	"sync"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Mongo server error codes that mean "this query needs an index the
// collection does not have".
const (
	codeNoQueryExecutionPlans = 291
	codeSortExceededMemory    = 292
)

type mongoDatabase struct {
	db *mongo.Database
}

// NewMongoDatabase wraps a connected mongo.Database in the store interface.
func NewMongoDatabase(db *mongo.Database) Database {
	return &mongoDatabase{db: db}
}

func (d *mongoDatabase) Collection(name string) Collection {
	return &mongoCollection{name: name, c: d.db.Collection(name)}
}

type mongoCollection struct {
	name string
	c    *mongo.Collection
}

func (m *mongoCollection) InsertOne(ctx context.Context, doc interface{}) error {
	_, err := m.c.InsertOne(ctx, doc)
	return err
}

func (m *mongoCollection) FindByID(ctx context.Context, id string, out interface{}) error {
	err := m.c.FindOne(ctx, bson.M{"_id": id}).Decode(out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	return err
}

func (m *mongoCollection) Find(ctx context.Context, filter Filter, opts FindOptions, out interface{}) error {
	query := bson.M{}
	for k, v := range filter {
		query[k] = v
	}

	findOpts := options.Find()
	if opts.Sort != nil {
		dir := 1
		if opts.Sort.Desc {
			dir = -1
		}
		findOpts.SetSort(bson.D{{Key: opts.Sort.Field, Value: dir}})
		// Fail fast instead of collscan-and-sort when the index is missing;
		// the repository layer owns the degraded tier.
		findOpts.SetAllowDiskUse(false)
	}
	if opts.Limit > 0 {
		findOpts.SetLimit(opts.Limit)
	}

	cur, err := m.c.Find(ctx, query, findOpts)
	if err != nil {
		return wrapIndexError(err)
	}
	defer cur.Close(ctx)
	if err := cur.All(ctx, out); err != nil {
		return wrapIndexError(err)
	}
	return nil
}

func (m *mongoCollection) UpdateByID(ctx context.Context, id string, set map[string]interface{}) error {
	res, err := m.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (m *mongoCollection) DeleteByID(ctx context.Context, id string) error {
	res, err := m.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (m *mongoCollection) Watch(ctx context.Context) (Subscription, error) {
	stream, err := m.c.Watch(ctx, mongo.Pipeline{})
	if err != nil {
		return nil, err
	}

	streamCtx, cancel := context.WithCancel(ctx)
	sub := &mongoSubscription{
		events: make(chan Event, 64),
		cancel: cancel,
	}

	go func() {
		defer close(sub.events)
		defer stream.Close(context.Background())
		for stream.Next(streamCtx) {
			var change struct {
				OperationType string `bson:"operationType"`
				DocumentKey   struct {
					ID string `bson:"_id"`
				} `bson:"documentKey"`
			}
			if err := stream.Decode(&change); err != nil {
				continue
			}
			op := normalizeOp(change.OperationType)
			if op == "" {
				continue
			}
			select {
			case sub.events <- Event{Collection: m.name, Op: op, DocumentID: change.DocumentKey.ID}:
			case <-streamCtx.Done():
				return
			}
		}
	}()

	return sub, nil
}

type mongoSubscription struct {
	events chan Event
	cancel context.CancelFunc
	once   sync.Once
}

func (s *mongoSubscription) Events() <-chan Event { return s.events }

func (s *mongoSubscription) Cancel() {
	s.once.Do(s.cancel)
}

func normalizeOp(op string) string {
	switch op {
	case "insert":
		return "insert"
	case "update", "replace":
		return "update"
	case "delete":
		return "delete"
	default:
		return ""
	}
}

func wrapIndexError(err error) error {
	if err == nil {
		return nil
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) {
		if ce.Code == codeNoQueryExecutionPlans || ce.Code == codeSortExceededMemory {
			return &IndexUnavailableError{Reason: ce.Message}
		}
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "no query execution plans") || strings.Contains(msg, "add an index") {
		return &IndexUnavailableError{Reason: err.Error()}
	}
	return err
}

// IsIndexUnavailable reports whether err means the backing store lacks the
// index a filtered + sorted query needs.
func IsIndexUnavailable(err error) bool {
	if err == nil {
		return false
	}
	var iue *IndexUnavailableError
	return errors.As(err, &iue)
}

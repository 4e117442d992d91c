// Package mongotest provides an in-memory mongodb.Collection for repository tests.
// It understands equality filters, $set and $setOnInsert updates, sort, upsert
// and unique keys; nothing else.
package mongotest

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"sync"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const duplicateKeyCode = 11000

type Collection struct {
	mu     sync.Mutex
	unique []string
	docs   []bson.M
}

// NewCollection returns an empty collection. _id is always unique; uniqueKeys adds more.
func NewCollection(uniqueKeys ...string) *Collection {
	return &Collection{unique: append([]string{"_id"}, uniqueKeys...)}
}

// Len reports how many documents are stored.
func (c *Collection) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.docs)
}

func (c *Collection) InsertOne(ctx context.Context, document any, _ ...options.Lister[options.InsertOneOptions]) (*mongo.InsertOneResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	doc, err := toM(document)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.checkUnique(doc, -1); err != nil {
		return nil, err
	}
	c.docs = append(c.docs, doc)
	return &mongo.InsertOneResult{InsertedID: doc["_id"], Acknowledged: true}, nil
}

func (c *Collection) FindOne(ctx context.Context, filter any, _ ...options.Lister[options.FindOneOptions]) *mongo.SingleResult {
	if err := ctx.Err(); err != nil {
		return mongo.NewSingleResultFromDocument(bson.M{}, err, nil)
	}
	f, err := toM(filter)
	if err != nil {
		return mongo.NewSingleResultFromDocument(bson.M{}, err, nil)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if i := c.indexOf(f); i >= 0 {
		return mongo.NewSingleResultFromDocument(copyM(c.docs[i]), nil, nil)
	}
	return mongo.NewSingleResultFromDocument(bson.M{}, mongo.ErrNoDocuments, nil)
}

func (c *Collection) FindOneAndUpdate(ctx context.Context, filter, update any, opts ...options.Lister[options.FindOneAndUpdateOptions]) *mongo.SingleResult {
	result, err := c.findOneAndUpdate(ctx, filter, update, opts...)
	if err != nil {
		return mongo.NewSingleResultFromDocument(bson.M{}, err, nil)
	}
	return mongo.NewSingleResultFromDocument(result, nil, nil)
}

func (c *Collection) findOneAndUpdate(ctx context.Context, filter, update any, opts ...options.Lister[options.FindOneAndUpdateOptions]) (bson.M, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var args options.FindOneAndUpdateOptions
	for _, o := range opts {
		for _, set := range o.List() {
			if err := set(&args); err != nil {
				return nil, err
			}
		}
	}
	f, err := toM(filter)
	if err != nil {
		return nil, err
	}
	ops, ok := update.(bson.M)
	if !ok {
		return nil, fmt.Errorf("mongotest: update must be bson.M, got %T", update)
	}
	setFields, err := operator(ops, "$set")
	if err != nil {
		return nil, err
	}
	insertFields, err := operator(ops, "$setOnInsert")
	if err != nil {
		return nil, err
	}
	after := args.ReturnDocument != nil && *args.ReturnDocument == options.After

	c.mu.Lock()
	defer c.mu.Unlock()

	if i := c.indexOf(f); i >= 0 {
		before := copyM(c.docs[i])
		next := copyM(c.docs[i])
		for k, v := range setFields {
			next[k] = v
		}
		if err := c.checkUnique(next, i); err != nil {
			return nil, err
		}
		c.docs[i] = next
		if after {
			return copyM(next), nil
		}
		return before, nil
	}

	if args.Upsert == nil || !*args.Upsert {
		return nil, mongo.ErrNoDocuments
	}
	doc := copyM(f)
	for k, v := range insertFields {
		doc[k] = v
	}
	for k, v := range setFields {
		doc[k] = v
	}
	if err := c.checkUnique(doc, -1); err != nil {
		return nil, err
	}
	c.docs = append(c.docs, doc)
	if after {
		return copyM(doc), nil
	}
	return nil, mongo.ErrNoDocuments
}

func (c *Collection) Find(ctx context.Context, filter any, opts ...options.Lister[options.FindOptions]) (*mongo.Cursor, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var args options.FindOptions
	for _, o := range opts {
		for _, set := range o.List() {
			if err := set(&args); err != nil {
				return nil, err
			}
		}
	}
	f, err := toM(filter)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	matched := make([]bson.M, 0)
	for _, doc := range c.docs {
		if matches(doc, f) {
			matched = append(matched, copyM(doc))
		}
	}
	c.mu.Unlock()

	if args.Sort != nil {
		keys, ok := args.Sort.(bson.D)
		if !ok {
			return nil, fmt.Errorf("mongotest: sort must be bson.D, got %T", args.Sort)
		}
		sort.SliceStable(matched, func(i, j int) bool {
			for _, key := range keys {
				cmp := compare(matched[i][key.Key], matched[j][key.Key])
				if cmp == 0 {
					continue
				}
				if dir, _ := key.Value.(int); dir < 0 {
					return cmp > 0
				}
				return cmp < 0
			}
			return false
		})
	}

	docs := make([]any, 0, len(matched))
	for _, doc := range matched {
		docs = append(docs, doc)
	}
	return mongo.NewCursorFromDocuments(docs, nil, nil)
}

func (c *Collection) DeleteOne(ctx context.Context, filter any, _ ...options.Lister[options.DeleteOneOptions]) (*mongo.DeleteResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := toM(filter)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.indexOf(f)
	if i < 0 {
		return &mongo.DeleteResult{Acknowledged: true}, nil
	}
	c.docs = append(c.docs[:i], c.docs[i+1:]...)
	return &mongo.DeleteResult{DeletedCount: 1, Acknowledged: true}, nil
}

// Indexes returns a zero IndexView; index management needs a real server.
func (c *Collection) Indexes() mongo.IndexView {
	return mongo.IndexView{}
}

func (c *Collection) indexOf(filter bson.M) int {
	for i, doc := range c.docs {
		if matches(doc, filter) {
			return i
		}
	}
	return -1
}

func (c *Collection) checkUnique(doc bson.M, skip int) error {
	for i, existing := range c.docs {
		if i == skip {
			continue
		}
		for _, key := range c.unique {
			v, ok := doc[key]
			if ok && reflect.DeepEqual(existing[key], v) {
				return mongo.WriteException{WriteErrors: []mongo.WriteError{{
					Index:   0,
					Code:    duplicateKeyCode,
					Message: fmt.Sprintf("E11000 duplicate key error dup key: { %s: %v }", key, v),
				}}}
			}
		}
	}
	return nil
}

func operator(ops bson.M, name string) (bson.M, error) {
	raw, ok := ops[name]
	if !ok {
		return bson.M{}, nil
	}
	return toM(raw)
}

func matches(doc, filter bson.M) bool {
	for k, v := range filter {
		if !reflect.DeepEqual(doc[k], v) {
			return false
		}
	}
	return true
}

func compare(a, b any) int {
	switch x := a.(type) {
	case bson.DateTime:
		if y, ok := b.(bson.DateTime); ok {
			return cmpOrdered(int64(x), int64(y))
		}
	case string:
		if y, ok := b.(string); ok {
			return cmpOrdered(x, y)
		}
	case int32:
		if y, ok := b.(int32); ok {
			return cmpOrdered(x, y)
		}
	case int64:
		if y, ok := b.(int64); ok {
			return cmpOrdered(x, y)
		}
	}
	return 0
}

func cmpOrdered[T int64 | int32 | string](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// toM round-trips v through BSON so stored values carry wire types (time.Time becomes bson.DateTime).
func toM(v any) (bson.M, error) {
	if v == nil {
		return nil, errors.New("mongotest: nil document")
	}
	raw, err := bson.Marshal(v)
	if err != nil {
		return nil, err
	}
	var m bson.M
	if err := bson.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	return m, nil
}

func copyM(m bson.M) bson.M {
	out := make(bson.M, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
)

type ToFirestoreFunc[T any] func(*T) map[string]interface{}
type FromFirestoreFunc[T any] func(map[string]interface{}) *T

type Collection[T any] struct {
	Ref           *firestore.CollectionRef
	ToFirestore   ToFirestoreFunc[T]
	FromFirestore FromFirestoreFunc[T]
}

func (c *Collection[T]) Doc(id string) *DocumentRef[T] {
	return &DocumentRef[T]{
		Ref:           c.Ref.Doc(id),
		ToFirestore:   c.ToFirestore,
		FromFirestore: c.FromFirestore,
	}
}

func (c *Collection[T]) NewDoc() *DocumentRef[T] {
	return &DocumentRef[T]{
		Ref:           c.Ref.NewDoc(),
		ToFirestore:   c.ToFirestore,
		FromFirestore: c.FromFirestore,
	}
}

// Where starts a filtered query over the collection.
func (c *Collection[T]) Where(path, op string, value interface{}) *Query[T] {
	return &Query[T]{
		q:             c.Ref.Where(path, op, value),
		FromFirestore: c.FromFirestore,
	}
}

type DocumentRef[T any] struct {
	Ref           *firestore.DocumentRef
	ToFirestore   ToFirestoreFunc[T]
	FromFirestore FromFirestoreFunc[T]
}

func (d *DocumentRef[T]) ID() string {
	return d.Ref.ID
}

func (d *DocumentRef[T]) Get(ctx context.Context) (*T, error) {
	snap, err := d.Ref.Get(ctx)
	if err != nil {
		return nil, err
	}
	return d.FromFirestore(snap.Data()), nil
}

func (d *DocumentRef[T]) Set(ctx context.Context, data *T) error {
	m := d.ToFirestore(data)
	_, err := d.Ref.Set(ctx, m, firestore.MergeAll)
	return err
}

func (d *DocumentRef[T]) Update(ctx context.Context, updates map[string]interface{}) error {
	// Simple map update - keys must match Firestore snake_case fields.
	// No converter here because updates are often partials.
	_, err := d.Ref.Set(ctx, updates, firestore.MergeAll)
	return err
}

// Query wraps a Firestore query with the collection's converter.
type Query[T any] struct {
	q             firestore.Query
	FromFirestore FromFirestoreFunc[T]
}

func (q *Query[T]) Where(path, op string, value interface{}) *Query[T] {
	return &Query[T]{
		q:             q.q.Where(path, op, value),
		FromFirestore: q.FromFirestore,
	}
}

func (q *Query[T]) Limit(n int) *Query[T] {
	return &Query[T]{
		q:             q.q.Limit(n),
		FromFirestore: q.FromFirestore,
	}
}

// GetAll runs the query and converts every document.
func (q *Query[T]) GetAll(ctx context.Context) ([]*T, error) {
	iter := q.q.Documents(ctx)
	defer iter.Stop()

	var results []*T
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		results = append(results, q.FromFirestore(snap.Data()))
	}
	return results, nil
}

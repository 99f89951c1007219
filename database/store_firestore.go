package database

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const firestoreMaxAttempts = 10

type firestoreTxKey struct{}

// FirestoreStore implements Store on Cloud Firestore. Document ids double as
// Firestore document names.
type FirestoreStore struct {
	client *firestore.Client
}

// NewFirestoreStore wraps a Firestore client.
func NewFirestoreStore(client *firestore.Client) *FirestoreStore {
	return &FirestoreStore{client: client}
}

func firestoreTx(ctx context.Context) *firestore.Transaction {
	tx, _ := ctx.Value(firestoreTxKey{}).(*firestore.Transaction)
	return tx
}

func (s *FirestoreStore) ref(collection, id string) *firestore.DocumentRef {
	return s.client.Collection(collection).Doc(id)
}

func (s *FirestoreStore) Get(ctx context.Context, collection, id string, dst any) error {
	var (
		snap *firestore.DocumentSnapshot
		err  error
	)
	if tx := firestoreTx(ctx); tx != nil {
		snap, err = tx.Get(s.ref(collection, id))
	} else {
		snap, err = s.ref(collection, id).Get(ctx)
	}
	if status.Code(err) == codes.NotFound {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to fetch %s/%s: %w", collection, id, err)
	}
	return snap.DataTo(dst)
}

func (s *FirestoreStore) Create(ctx context.Context, collection, id string, doc any) error {
	var err error
	if tx := firestoreTx(ctx); tx != nil {
		err = tx.Create(s.ref(collection, id), doc)
	} else {
		_, err = s.ref(collection, id).Create(ctx, doc)
	}
	if status.Code(err) == codes.AlreadyExists {
		return ErrAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("failed to create %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *FirestoreStore) Set(ctx context.Context, collection, id string, doc any) error {
	var err error
	if tx := firestoreTx(ctx); tx != nil {
		err = tx.Set(s.ref(collection, id), doc)
	} else {
		_, err = s.ref(collection, id).Set(ctx, doc)
	}
	if err != nil {
		return fmt.Errorf("failed to set %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *FirestoreStore) Update(ctx context.Context, collection, id string, fields map[string]any) error {
	paths := make([]string, 0, len(fields))
	for path := range fields {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	updates := make([]firestore.Update, 0, len(paths))
	for _, path := range paths {
		updates = append(updates, firestore.Update{Path: path, Value: fields[path]})
	}

	var err error
	if tx := firestoreTx(ctx); tx != nil {
		err = tx.Update(s.ref(collection, id), updates)
	} else {
		_, err = s.ref(collection, id).Update(ctx, updates)
	}
	if status.Code(err) == codes.NotFound {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to update %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *FirestoreStore) Find(ctx context.Context, collection string, q Query) ([]Document, error) {
	query := s.client.Collection(collection).Query
	for _, f := range q.Filters {
		query = query.Where(f.Field, string(f.Op), f.Value)
	}
	if q.OrderBy != "" {
		field, dir := q.OrderBy, firestore.Asc
		if strings.HasPrefix(field, "-") {
			field, dir = field[1:], firestore.Desc
		}
		query = query.OrderBy(field, dir)
	}
	if q.Limit > 0 {
		query = query.Limit(q.Limit)
	}

	var (
		snaps []*firestore.DocumentSnapshot
		err   error
	)
	if tx := firestoreTx(ctx); tx != nil {
		snaps, err = tx.Documents(query).GetAll()
	} else {
		snaps, err = query.Documents(ctx).GetAll()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", collection, err)
	}

	docs := make([]Document, 0, len(snaps))
	for _, snap := range snaps {
		docs = append(docs, snap)
	}
	return docs, nil
}

// RunTransaction runs fn in a Firestore transaction. Firestore may call fn
// more than once on contention.
func (s *FirestoreStore) RunTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if firestoreTx(ctx) != nil {
		return fn(ctx)
	}
	return s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		return fn(context.WithValue(ctx, firestoreTxKey{}, tx))
	}, firestore.MaxAttempts(firestoreMaxAttempts))
}

func (s *FirestoreStore) Ping(ctx context.Context) error {
	_, err := s.client.Collection(CollectionQuotes).Limit(1).Documents(ctx).GetAll()
	return err
}

func (s *FirestoreStore) Close(context.Context) error {
	return s.client.Close()
}

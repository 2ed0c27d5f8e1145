package directory

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/raizapp/fleetops-backend/internal/pkg/ctxutil"
	"github.com/raizapp/fleetops-backend/internal/pkg/logger"
)

const readTimeout = 5 * time.Second

type firestoreStore struct {
	log *logger.Logger
	fs  *firestore.Client
}

// NewFirestoreStore wraps a Firestore client as a Store. Documents live under
// bases/{scope}/{collection}/{id}.
func NewFirestoreStore(log *logger.Logger, fs *firestore.Client) (Store, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if fs == nil {
		return nil, fmt.Errorf("firestore client required")
	}
	return &firestoreStore{log: log.With("service", "DirectoryStore"), fs: fs}, nil
}

func (s *firestoreStore) col(scope, collection string) *firestore.CollectionRef {
	return s.fs.Collection("bases").Doc(scope).Collection(collection)
}

func (s *firestoreStore) List(ctx context.Context, scope, collection string) ([]Document, error) {
	ctx, cancel := context.WithTimeout(ctxutil.Default(ctx), readTimeout)
	defer cancel()
	return drainDocs(s.col(scope, collection).Documents(ctx))
}

func (s *firestoreStore) Get(ctx context.Context, scope, collection, id string) (Document, bool, error) {
	ctx, cancel := context.WithTimeout(ctxutil.Default(ctx), readTimeout)
	defer cancel()
	snap, err := s.col(scope, collection).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return Document{}, false, nil
		}
		return Document{}, false, err
	}
	return Document{ID: snap.Ref.ID, Data: snap.Data()}, true, nil
}

func (s *firestoreStore) Query(ctx context.Context, scope, collection string, filters ...Filter) ([]Document, error) {
	if len(filters) > 2 {
		return nil, fmt.Errorf("directory query supports at most two predicates, got %d", len(filters))
	}
	ctx, cancel := context.WithTimeout(ctxutil.Default(ctx), readTimeout)
	defer cancel()
	q := s.col(scope, collection).Query
	for _, f := range filters {
		q = q.Where(f.Field, "==", f.Value)
	}
	return drainDocs(q.Documents(ctx))
}

func (s *firestoreStore) Set(ctx context.Context, scope, collection, id string, data map[string]any, merge bool) error {
	ctx, cancel := context.WithTimeout(ctxutil.Default(ctx), readTimeout)
	defer cancel()
	ref := s.col(scope, collection).Doc(id)
	var err error
	if merge {
		_, err = ref.Set(ctx, data, firestore.MergeAll)
	} else {
		_, err = ref.Set(ctx, data)
	}
	return err
}

func (s *firestoreStore) Scopes(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctxutil.Default(ctx), readTimeout)
	defer cancel()
	it := s.fs.Collection("bases").DocumentRefs(ctx)
	var out []string
	for {
		ref, err := it.Next()
		if err == iterator.Done {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		out = append(out, ref.ID)
	}
}

func (s *firestoreStore) GetGlobal(ctx context.Context, collection, id string) (Document, bool, error) {
	ctx, cancel := context.WithTimeout(ctxutil.Default(ctx), readTimeout)
	defer cancel()
	snap, err := s.fs.Collection(collection).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return Document{}, false, nil
		}
		return Document{}, false, err
	}
	return Document{ID: snap.Ref.ID, Data: snap.Data()}, true, nil
}

func drainDocs(it *firestore.DocumentIterator) ([]Document, error) {
	defer it.Stop()
	var out []Document
	for {
		snap, err := it.Next()
		if err == iterator.Done {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		out = append(out, Document{ID: snap.Ref.ID, Data: snap.Data()})
	}
}

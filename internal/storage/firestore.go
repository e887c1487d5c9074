package storage

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/tatianab/llmserver/internal/models"
)

const defaultCollection = "contexts"

// FirestoreStore keeps one document per context in a collection.
type FirestoreStore struct {
	client     *firestore.Client
	collection string
}

// NewFirestoreStore connects to projectID. An empty collection uses "contexts".
func NewFirestoreStore(ctx context.Context, projectID, collection string) (*FirestoreStore, error) {
	if projectID == "" {
		return nil, fmt.Errorf("projectID is required for Firestore store")
	}
	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("creating firestore client: %w", err)
	}
	if collection == "" {
		collection = defaultCollection
	}
	return &FirestoreStore{client: client, collection: collection}, nil
}

func (s *FirestoreStore) Close() error {
	return s.client.Close()
}

func (s *FirestoreStore) doc(name string) *firestore.DocumentRef {
	return s.client.Collection(s.collection).Doc(recordKey(name))
}

func (s *FirestoreStore) Save(ctx context.Context, c *models.Context) error {
	if _, err := s.doc(c.Name).Set(ctx, c); err != nil {
		return fmt.Errorf("firestore Save: %w", err)
	}
	return nil
}

func (s *FirestoreStore) Load(ctx context.Context, name string) (*models.Context, error) {
	snap, err := s.doc(name).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("firestore Load: %w", err)
	}
	var c models.Context
	if err := snap.DataTo(&c); err != nil {
		return nil, fmt.Errorf("firestore Load decode: %w", err)
	}
	return &c, nil
}

func (s *FirestoreStore) Delete(ctx context.Context, name string) error {
	if _, err := s.doc(name).Delete(ctx); err != nil {
		return fmt.Errorf("firestore Delete: %w", err)
	}
	return nil
}

func (s *FirestoreStore) LoadAll(ctx context.Context) ([]*models.Context, error) {
	iter := s.client.Collection(s.collection).OrderBy("name", firestore.Asc).Documents(ctx)
	defer iter.Stop()

	var out []*models.Context
	for {
		snap, err := iter.Next()
		if err != nil {
			if err == iterator.Done {
				break
			}
			return nil, fmt.Errorf("firestore LoadAll: %w", err)
		}
		var c models.Context
		if err := snap.DataTo(&c); err != nil {
			return nil, fmt.Errorf("decode context %s: %w", snap.Ref.ID, err)
		}
		out = append(out, &c)
	}
	return out, nil
}

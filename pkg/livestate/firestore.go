package livestate

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/pipetrace/pkg/model"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Firestore reads live suggestions from a Firestore collection, one document per suggestion. The
// document ID is used when the document carries no id field.
type Firestore struct {
	client     *firestore.Client
	collection string
}

// NewFirestore connects to databaseID of projectID
func NewFirestore(ctx context.Context, projectID, databaseID, collection string) (*Firestore, error) {
	client, err := firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client",
			goerr.V("project", projectID), goerr.V("database", databaseID))
	}

	return &Firestore{
		client:     client,
		collection: collection,
	}, nil
}

// Close releases the underlying client
func (f *Firestore) Close() error {
	return f.client.Close()
}

func (f *Firestore) ListSuggestions(ctx context.Context) ([]*model.LiveSuggestion, error) {
	iter := f.client.Collection(f.collection).Documents(ctx)
	defer iter.Stop()

	var suggestions []*model.LiveSuggestion
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return nil, nil
			}
			return nil, goerr.Wrap(err, "failed to iterate live suggestions", goerr.V("collection", f.collection))
		}

		var s model.LiveSuggestion
		if err := doc.DataTo(&s); err != nil {
			return nil, goerr.Wrap(err, "failed to decode live suggestion", goerr.V("doc", doc.Ref.ID))
		}
		if s.ID == "" {
			s.ID = model.SuggestionID(doc.Ref.ID)
		}
		suggestions = append(suggestions, &s)
	}

	return suggestions, nil
}

package livestate_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/pipetrace/pkg/livestate"
	"github.com/m-mizutani/pipetrace/pkg/model"
)

func TestFile(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	t.Run("state document", func(t *testing.T) {
		path := filepath.Join(dir, "state.json")
		gt.NoError(t, os.WriteFile(path, []byte(`{"suggestions":[
			{"id":"s1","title":"Edited","status":"accepted","support":0.9},
			{"id":"s2","title":"Untouched","status":"active"}
		]}`), 0644))

		list, err := livestate.NewFile(path).ListSuggestions(ctx)
		gt.NoError(t, err)
		gt.A(t, list).Length(2)
		gt.Equal(t, list[0].ID, model.SuggestionID("s1"))
		gt.NotNil(t, list[0].Support)
		gt.Equal(t, *list[0].Support, 0.9)
		gt.True(t, list[1].Support == nil)
	})

	t.Run("bare array", func(t *testing.T) {
		path := filepath.Join(dir, "array.json")
		gt.NoError(t, os.WriteFile(path, []byte(`[{"id":"s3","status":"dismissed"}]`), 0644))

		list, err := livestate.NewFile(path).ListSuggestions(ctx)
		gt.NoError(t, err)
		gt.A(t, list).Length(1)
		gt.Equal(t, list[0].Status, "dismissed")
	})

	t.Run("missing file", func(t *testing.T) {
		list, err := livestate.NewFile(filepath.Join(dir, "none.json")).ListSuggestions(ctx)
		gt.NoError(t, err)
		gt.A(t, list).Length(0)
	})

	t.Run("corrupt file", func(t *testing.T) {
		path := filepath.Join(dir, "corrupt.json")
		gt.NoError(t, os.WriteFile(path, []byte(`{"suggestions":`), 0644))

		_, err := livestate.NewFile(path).ListSuggestions(ctx)
		gt.Error(t, err)
	})
}

func TestStatic(t *testing.T) {
	var nilProvider *livestate.Static
	list, err := nilProvider.ListSuggestions(context.Background())
	gt.NoError(t, err)
	gt.A(t, list).Length(0)

	list, err = livestate.NewStatic(&model.LiveSuggestion{ID: "s1"}).ListSuggestions(context.Background())
	gt.NoError(t, err)
	gt.A(t, list).Length(1)
}

func TestFirestore(t *testing.T) {
	projectID := os.Getenv("TEST_FIRESTORE_PROJECT_ID")
	databaseID := os.Getenv("TEST_FIRESTORE_DATABASE_ID")
	if projectID == "" || databaseID == "" {
		t.Skip("TEST_FIRESTORE_PROJECT_ID and TEST_FIRESTORE_DATABASE_ID must be set to run Firestore tests")
	}

	ctx := context.Background()
	provider, err := livestate.NewFirestore(ctx, projectID, databaseID, "suggestions")
	gt.NoError(t, err)
	defer provider.Close()

	_, err = provider.ListSuggestions(ctx)
	gt.NoError(t, err)
}

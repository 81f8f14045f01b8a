package mongo

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/wadjakorntonsri/go-diecast-catalog/pkg/core/domain"
)

// newTestRepo connects to TEST_MONGO_URI and uses a throwaway database.
func newTestRepo(t *testing.T) *CollectionRepository {
	t.Helper()
	uri := os.Getenv("TEST_MONGO_URI")
	if uri == "" {
		t.Skip("TEST_MONGO_URI not set")
	}

	ctx := context.Background()
	client, err := Connect(ctx, uri)
	require.NoError(t, err)

	db := client.Database(fmt.Sprintf("diecast_test_%d", time.Now().UnixNano()))
	t.Cleanup(func() {
		_ = db.Drop(context.Background())
		_ = client.Disconnect(context.Background())
	})

	repo := NewCollectionRepository(db)
	require.NoError(t, repo.EnsureIndexes(ctx))
	return repo
}

func TestCollectionRepository_AddRemove(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	ids, err := repo.List(ctx, "user1")
	require.NoError(t, err)
	assert.Equal(t, []string{}, ids)

	ids, err = repo.Remove(ctx, "user1", "V1")
	require.NoError(t, err)
	assert.Equal(t, []string{}, ids)

	ids, err = repo.Add(ctx, "user1", "V123")
	require.NoError(t, err)
	assert.Equal(t, []string{"V123"}, ids)

	ids, err = repo.Add(ctx, "user1", "V123")
	require.NoError(t, err)
	assert.Equal(t, []string{"V123"}, ids)

	ids, err = repo.Remove(ctx, "user1", "V123")
	require.NoError(t, err)
	assert.Equal(t, []string{}, ids)
}

func TestCollectionRepository_ConcurrentToggles(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := repo.Add(ctx, "user1", fmt.Sprintf("V%d", i))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	ids, err := repo.List(ctx, "user1")
	require.NoError(t, err)
	assert.Len(t, ids, 20)
}

func TestCollectionRepository_UnreachableServerIsUnavailable(t *testing.T) {
	ctx := context.Background()
	// Connect does not dial; operations fail at server selection.
	client, err := mongo.Connect(ctx, options.Client().
		ApplyURI("mongodb://127.0.0.1:1").
		SetServerSelectionTimeout(100*time.Millisecond))
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Disconnect(context.Background()) })

	repo := NewCollectionRepository(client.Database("diecast_unreachable"))

	_, err = repo.List(ctx, "user1")
	assert.ErrorIs(t, err, domain.ErrDataUnavailable)

	_, err = repo.Add(ctx, "user1", "V1")
	assert.ErrorIs(t, err, domain.ErrDataUnavailable)

	_, err = repo.Remove(ctx, "user1", "V1")
	assert.ErrorIs(t, err, domain.ErrDataUnavailable)
}

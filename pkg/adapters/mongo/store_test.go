package mongo_test

import (
	"context"
	"os"
	"testing"

	"github.com/aretw0/pagecraft/pkg/adapters/mongo"
	"github.com/aretw0/pagecraft/pkg/ports"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

var (
	_ ports.ProjectStore = (*mongo.Store)(nil)
	_ ports.VersionStore = (*mongo.Store)(nil)
)

func TestMongoStore_Contract(t *testing.T) {
	uri := os.Getenv("PAGECRAFT_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("PAGECRAFT_TEST_MONGO_URI not set")
	}

	ctx := context.Background()
	store, err := mongo.Connect(ctx, uri, "pagecraft_test_"+uuid.NewString()[:8])
	require.NoError(t, err)
	defer store.Close(ctx)

	ports.RunProjectStoreContract(t, store)
	ports.RunVersionStoreContract(t, store)
}

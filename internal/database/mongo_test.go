package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestEnsureIndexes(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("creates every collection's indexes", func(mt *mtest.T) {
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(),
			mtest.CreateSuccessResponse(),
			mtest.CreateSuccessResponse(),
		)
		require.NoError(mt, EnsureIndexes(context.Background(), mt.DB))

		seen := map[string]int{}
		for evt := mt.GetStartedEvent(); evt != nil; evt = mt.GetStartedEvent() {
			require.Equal(mt, "createIndexes", evt.CommandName)
			coll := evt.Command.Lookup("createIndexes").StringValue()
			vals, err := evt.Command.Lookup("indexes").Array().Values()
			require.NoError(mt, err)
			seen[coll] = len(vals)
		}
		assert.Equal(mt, map[string]int{"users": 1, "places": 1, "bookings": 2}, seen)
	})

	mt.Run("reports server errors", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code: 85, Name: "IndexOptionsConflict", Message: "index exists with different options",
		}))
		err := EnsureIndexes(context.Background(), mt.DB)
		require.Error(mt, err)
		assert.Contains(mt, err.Error(), "indexes")
	})
}

package repositories_test

import (
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/duka/app/repositories"
)

// Runs against a real server only when MONGO_TEST_URI is set.
func TestMongoOrderLog(t *testing.T) {
	uri := os.Getenv("MONGO_TEST_URI")
	if uri == "" {
		t.Skip("MONGO_TEST_URI not set")
	}

	dbName := fmt.Sprintf("duka_test_%d", time.Now().UnixNano())
	log, err := repositories.NewMongoOrderLog(bg, uri, dbName)
	require.NoError(t, err)
	t.Cleanup(func() { _ = log.Close(bg) })

	require.NoError(t, log.Append(bg, sampleOrder(2)))
	require.NoError(t, log.Append(bg, sampleOrder(1)))

	orders, err := log.All(bg)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, sampleOrder(1).ID, orders[0].ID)
	assert.True(t, orders[1].Total.Equal(sampleOrder(2).Total))
	assert.Equal(t, "Bag", orders[1].Items[1].Name)
}

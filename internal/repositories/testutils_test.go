package repositories_test

import (
	"context"
	"io"
	"testing"

	"github.com/myrjola/coldcase/internal/sqlite"
	"github.com/myrjola/coldcase/internal/testhelpers"
	"github.com/stretchr/testify/require"
)

// newTestDB creates a new private in-memory database for testing purposes.
func newTestDB(t *testing.T) *sqlite.Database {
	t.Helper()
	dbs, err := sqlite.NewDatabase(t.Context(), ":memory:", testhelpers.NewLogger(io.Discard))
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, dbs.Close(context.Background()))
	})
	return dbs
}

package migrate_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumicrm/portalgate/internal/migrate"
	"github.com/lumicrm/portalgate/internal/testutil"
)

func TestRun_IdempotentAndStatus(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()

	// SetupTestDB already migrated; a second run must be a no-op.
	require.NoError(t, migrate.Run(ctx, db))

	status, err := migrate.Status(ctx, db)
	require.NoError(t, err)
	require.NotEmpty(t, status)
	assert.Equal(t, "0001_users", status[0].Version)
	for _, m := range status {
		assert.NotNil(t, m.AppliedAt, m.Version)
	}
}

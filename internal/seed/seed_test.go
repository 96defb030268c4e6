package seed

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	directorydomain "github.com/smallbiznis/rentora/internal/directory/domain"
	"github.com/smallbiznis/rentora/internal/migration"
	"github.com/smallbiznis/rentora/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureDemoDirectoryIsIdempotent(t *testing.T) {
	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, migration.Migrate(conn))

	node, err := snowflake.NewNode(9)
	require.NoError(t, err)

	first, err := EnsureDemoDirectory(context.Background(), conn, node)
	require.NoError(t, err)
	assert.NotZero(t, first.OwnerID)
	assert.NotZero(t, first.TenantID)
	assert.NotEqual(t, first.OwnerID, first.TenantID)

	second, err := EnsureDemoDirectory(context.Background(), conn, node)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	var property directorydomain.Property
	require.NoError(t, conn.First(&property, "id = ?", first.PropertyID).Error)
	assert.Equal(t, first.OwnerID, property.OwnerID)

	var users int64
	require.NoError(t, conn.Model(&directorydomain.UserProfile{}).Count(&users).Error)
	assert.Equal(t, int64(2), users)
}

func TestEnsureDemoDirectoryRequiresHandles(t *testing.T) {
	_, err := EnsureDemoDirectory(context.Background(), nil, nil)
	assert.Error(t, err)
}

package companies

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/odyssey-admin/internal/catalog/catalogtest"
	"github.com/odyssey-erp/odyssey-admin/internal/listview/filters"
)

func TestOptionsRespectSessionCompany(t *testing.T) {
	db := &catalogtest.DB{Rows: [][]any{{int64(4), "Odyssey Norte"}}}
	repo := NewRepository(db)

	opts, err := repo.Options(context.Background(), filters.Session{CompanyID: 4}, filters.Value{})
	require.NoError(t, err)
	assert.Equal(t, []filters.Option{{Value: "4", Label: "Odyssey Norte"}}, opts)
	assert.Equal(t, "SELECT c.id, c.name FROM companies c WHERE 1=1 AND c.id = $1 ORDER BY c.name", db.Last().SQL)

	_, err = repo.Options(context.Background(), filters.Session{}, filters.Value{})
	require.NoError(t, err)
	assert.Empty(t, db.Last().Args)
}

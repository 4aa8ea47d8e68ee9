package postgres_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lorencia/mmoserver/internal/storage/postgres"
	"github.com/lorencia/mmoserver/internal/testutil"
)

func TestTemplateRepository_All(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	repo := postgres.NewTemplateRepository(testutil.NewPool(t))

	templates, err := repo.All(context.Background())
	require.NoError(t, err)
	require.Len(t, templates, 3)

	slime, ok := templates["slime"]
	require.True(t, ok)
	assert.Equal(t, "Slime", slime.Name)
	assert.Equal(t, 1, slime.Level)
	assert.Equal(t, 50, slime.HP)
	assert.Equal(t, 5, slime.Attack)
	assert.Equal(t, 2, slime.Defense)
	assert.Equal(t, 10, slime.XPReward)
	assert.InDelta(t, 0.8, slime.MoveSpeed, 1e-9)
	assert.InDelta(t, 1.5, slime.AttackSpeed, 1e-9)

	wolf := templates["wolf"]
	require.NotNil(t, wolf)
	assert.Equal(t, 120, wolf.HP)

	orc := templates["orc"]
	require.NotNil(t, orc)
	assert.Equal(t, 250, orc.HP)
}

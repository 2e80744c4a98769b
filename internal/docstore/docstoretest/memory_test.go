package docstoretest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Shazidulislam/final-project-plant-server/internal/docstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ docstore.Collection = (*Collection)(nil)

func TestFindMatchesNestedFields(t *testing.T) {
	c := New()
	ctx := context.Background()
	c.InsertAt(docstore.Document{"customer": map[string]any{"email": "ann@x.io", "name": "Ann"}}, time.Now())
	c.InsertAt(docstore.Document{"customer": map[string]any{"email": "bob@x.io"}}, time.Now())

	got, err := c.Find(ctx, docstore.Document{"customer": map[string]any{"email": "ann@x.io"}})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Ann", got[0].String("customer.name"))

	all, err := c.Find(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestUniqueFieldRejectsDuplicate(t *testing.T) {
	c := New("email")
	ctx := context.Background()
	_, err := c.InsertOne(ctx, docstore.Document{"email": "ann@x.io"})
	require.NoError(t, err)
	_, err = c.InsertOne(ctx, docstore.Document{"email": "ann@x.io"})
	assert.ErrorIs(t, err, docstore.ErrDuplicate)
	assert.Equal(t, 1, c.Len())
}

func TestUpdateResults(t *testing.T) {
	c := New()
	ctx := context.Background()
	id := c.InsertAt(docstore.Document{"status": "pending", "quantity": 1}, time.Now())

	res, err := c.UpdateByID(ctx, id, docstore.Update{Set: docstore.Document{"status": "pending"}}, false)
	require.NoError(t, err)
	assert.EqualValues(t, 1, res.MatchedCount)
	assert.Zero(t, res.ModifiedCount)

	res, err = c.UpdateByID(ctx, id, docstore.Update{Inc: map[string]float64{"quantity": 2}}, false)
	require.NoError(t, err)
	assert.EqualValues(t, 1, res.ModifiedCount)
	d, err := c.FindByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 3.0, d["quantity"])

	res, err = c.UpdateOne(ctx, docstore.Document{"email": "new@x.io"}, docstore.Update{Set: docstore.Document{"role": "admin"}}, true)
	require.NoError(t, err)
	assert.EqualValues(t, 1, res.UpsertedCount)
	u, err := c.FindOne(ctx, docstore.Document{"email": "new@x.io"})
	require.NoError(t, err)
	assert.Equal(t, "admin", u["role"])
}

func TestErrInjection(t *testing.T) {
	c := New()
	c.Err = errors.New("boom")
	_, err := c.Find(context.Background(), nil)
	assert.ErrorIs(t, err, docstore.ErrUnavailable)
}

func TestIncTreatsNonNumberAsZero(t *testing.T) {
	c := New()
	ctx := context.Background()
	id := c.InsertAt(docstore.Document{"quantity": "ten"}, time.Now())

	_, err := c.UpdateByID(ctx, id, docstore.Update{Inc: map[string]float64{"quantity": 3}}, false)
	require.NoError(t, err)
	d, err := c.FindByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 3.0, d["quantity"])
}

func TestUpsertRespectsUniqueFields(t *testing.T) {
	c := New("email")
	ctx := context.Background()
	c.InsertAt(docstore.Document{"email": "ann@x.io", "name": "Ann"}, time.Now())

	res, err := c.UpdateOne(ctx, docstore.Document{"name": "Nobody"},
		docstore.Update{Set: docstore.Document{"email": "ann@x.io"}}, true)
	require.NoError(t, err)
	assert.Zero(t, res.UpsertedCount)
	assert.Equal(t, 1, c.Len())
}

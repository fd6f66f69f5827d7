package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/internal/transport"
)

func TestCart_GetCreatesLazily(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	ctx := context.Background()
	user := uuid.New()

	v, err := e.carts.GetCart(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, user, v.UserID)
	assert.Empty(t, v.Items)
	assert.Equal(t, "5.00", v.Total.StringFixed(2))

	again, err := e.carts.GetCart(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, v.ID, again.ID)
}

func TestCart_AddItem(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	ctx := context.Background()
	user := uuid.New()
	cake := e.seedProduct(t, "cake", "20", 10)

	v, err := e.carts.AddItem(ctx, user, cake.ID, 2)
	require.NoError(t, err)
	require.Len(t, v.Items, 1)
	assert.Equal(t, "cake", v.Items[0].Name)
	assert.Equal(t, 2, v.Items[0].Quantity)
	assert.Equal(t, 2, v.ItemCount)
	assert.Equal(t, "40.00", v.Subtotal.StringFixed(2))
	assert.Equal(t, "4.00", v.Tax.StringFixed(2))
	assert.Equal(t, "49.00", v.Total.StringFixed(2))
}

func TestCart_AddItemMergesAndRefreshesPrice(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	ctx := context.Background()
	user := uuid.New()
	cake := e.seedProduct(t, "cake", "20", 10)

	_, err := e.carts.AddItem(ctx, user, cake.ID, 1)
	require.NoError(t, err)

	newPrice := dec("22.50")
	_, err = e.catalog.PatchProduct(ctx, transport.PatchProductRequest{Price: &newPrice}, cake.ID)
	require.NoError(t, err)

	v, err := e.carts.AddItem(ctx, user, cake.ID, 2)
	require.NoError(t, err)
	require.Len(t, v.Items, 1)
	assert.Equal(t, 3, v.Items[0].Quantity)
	assert.Equal(t, "22.50", v.Items[0].UnitPrice.StringFixed(2))
	assert.Equal(t, "67.50", v.Subtotal.StringFixed(2))
}

func TestCart_AddItemErrors(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	ctx := context.Background()
	user := uuid.New()
	cake := e.seedProduct(t, "cake", "20", 3)
	hidden := e.seedProduct(t, "hidden", "5", 3)
	off := false
	_, err := e.catalog.PatchProduct(ctx, transport.PatchProductRequest{IsAvailable: &off}, hidden.ID)
	require.NoError(t, err)

	_, err = e.carts.AddItem(ctx, user, uuid.New(), 1)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, err, ErrProductNotFound)

	_, err = e.carts.AddItem(ctx, user, hidden.ID, 1)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = e.carts.AddItem(ctx, user, cake.ID, 4)
	require.ErrorIs(t, err, ErrInsufficientStock)
	var se *StockError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "cake", se.Name)
	assert.Equal(t, 3, se.Available)
	assert.Equal(t, 4, se.Requested)

	_, err = e.carts.AddItem(ctx, user, cake.ID, 0)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, []string{"quantity"}, ve.Fields)

	assert.Empty(t, e.cartItems(t, user))
}

func TestCart_ItemsKeepInsertionOrder(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	ctx := context.Background()
	user := uuid.New()
	a := e.seedProduct(t, "a", "1", 10)
	b := e.seedProduct(t, "b", "2", 10)
	c := e.seedProduct(t, "c", "3", 10)

	for _, p := range []uuid.UUID{b.ID, c.ID, a.ID, b.ID} {
		_, err := e.carts.AddItem(ctx, user, p, 1)
		require.NoError(t, err)
	}

	v, err := e.carts.GetCart(ctx, user)
	require.NoError(t, err)
	require.Len(t, v.Items, 3)
	assert.Equal(t, []string{"b", "c", "a"}, []string{v.Items[0].Name, v.Items[1].Name, v.Items[2].Name})
	assert.Equal(t, 2, v.Items[0].Quantity)
}

func TestCart_UpdateItemQuantity(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	ctx := context.Background()
	user := uuid.New()
	cake := e.seedProduct(t, "cake", "20", 5)

	_, err := e.carts.UpdateItemQuantity(ctx, user, uuid.New(), 1)
	require.ErrorIs(t, err, ErrNotFound, "no cart yet")

	v, err := e.carts.AddItem(ctx, user, cake.ID, 1)
	require.NoError(t, err)
	itemID := v.Items[0].ItemID

	v, err = e.carts.UpdateItemQuantity(ctx, user, itemID, 5)
	require.NoError(t, err)
	assert.Equal(t, 5, v.Items[0].Quantity)

	_, err = e.carts.UpdateItemQuantity(ctx, user, itemID, 6)
	require.ErrorIs(t, err, ErrInsufficientStock)

	_, err = e.carts.UpdateItemQuantity(ctx, user, itemID, 0)
	require.ErrorIs(t, err, ErrValidation)

	_, err = e.carts.UpdateItemQuantity(ctx, user, uuid.New(), 1)
	require.ErrorIs(t, err, ErrNotFound)

	items := e.cartItems(t, user)
	require.Len(t, items, 1)
	assert.Equal(t, 5, items[0].Quantity)
}

func TestCart_UpdateItemQuantity_OtherUsersItem(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	ctx := context.Background()
	owner, other := uuid.New(), uuid.New()
	cake := e.seedProduct(t, "cake", "20", 5)

	v, err := e.carts.AddItem(ctx, owner, cake.ID, 1)
	require.NoError(t, err)
	_, err = e.carts.GetCart(ctx, other)
	require.NoError(t, err)

	_, err = e.carts.UpdateItemQuantity(ctx, other, v.Items[0].ItemID, 2)
	require.ErrorIs(t, err, ErrNotFound)
	_, err = e.carts.RemoveItem(ctx, other, v.Items[0].ItemID)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestCart_RemoveAndClear(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	ctx := context.Background()
	user := uuid.New()
	a := e.seedProduct(t, "a", "1.50", 10)
	b := e.seedProduct(t, "b", "2.50", 10)

	_, err := e.carts.AddItem(ctx, user, a.ID, 1)
	require.NoError(t, err)
	v, err := e.carts.AddItem(ctx, user, b.ID, 1)
	require.NoError(t, err)

	v, err = e.carts.RemoveItem(ctx, user, v.Items[0].ItemID)
	require.NoError(t, err)
	require.Len(t, v.Items, 1)
	assert.Equal(t, b.ID, v.Items[0].ProductID)

	_, err = e.carts.RemoveItem(ctx, user, uuid.New())
	require.ErrorIs(t, err, ErrNotFound)

	_, err = e.carts.RemoveProduct(ctx, user, a.ID)
	require.True(t, errors.Is(err, ErrProductNotFound))

	v, err = e.carts.RemoveProduct(ctx, user, b.ID)
	require.NoError(t, err)
	assert.Empty(t, v.Items)

	_, err = e.carts.AddItem(ctx, user, a.ID, 3)
	require.NoError(t, err)
	v, err = e.carts.Clear(ctx, user)
	require.NoError(t, err)
	assert.Empty(t, v.Items)

	v, err = e.carts.Clear(ctx, user)
	require.NoError(t, err)
	assert.Empty(t, v.Items)
}

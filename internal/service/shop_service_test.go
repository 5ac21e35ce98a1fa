package service

import (
	"context"
	"testing"

	"github.com/canchapp/canchapp/internal/commerce"
	users "github.com/canchapp/canchapp/internal/user"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShopService_ProductsAndSales(t *testing.T) {
	app := newTestApp(t)
	_, ownerCtx := app.user(t, "owner", users.RoleOwner)
	_, otherCtx := app.user(t, "other", users.RoleOwner)
	_, playerCtx := app.user(t, "player", users.RoleUser)

	_, err := app.shop.CreateProduct(playerCtx, ProductInput{Name: "Agua", Price: 1500, Stock: 10})
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = app.shop.CreateProduct(ownerCtx, ProductInput{Name: "Agua", Price: -1})
	assert.ErrorIs(t, err, ErrInvalid)

	water, err := app.shop.CreateProduct(ownerCtx, ProductInput{Name: "Agua", Price: 1500, Stock: 10})
	require.NoError(t, err)
	assert.True(t, water.Active)
	balls, err := app.shop.CreateProduct(ownerCtx, ProductInput{Name: "Pelotas", Price: 9000, Stock: 2})
	require.NoError(t, err)

	sale, err := app.shop.RecordSale(ownerCtx, water.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(4500), sale.Total)

	_, err = app.shop.RecordSale(ownerCtx, balls.ID, 3)
	assert.ErrorIs(t, err, ErrConflict, "insufficient stock")
	_, err = app.shop.RecordSale(ownerCtx, balls.ID, 0)
	assert.ErrorIs(t, err, ErrInvalid)
	_, err = app.shop.RecordSale(otherCtx, balls.ID, 1)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = app.shop.RecordSale(ownerCtx, uuid.New(), 1)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = app.shop.RecordSale(ownerCtx, balls.ID, 2)
	require.NoError(t, err)

	products, err := app.shop.ListProducts(ownerCtx)
	require.NoError(t, err)
	stock := lo.SliceToMap(products, func(p commerce.Product) (string, int) { return p.Name, p.Stock })
	assert.Equal(t, map[string]int{"Agua": 7, "Pelotas": 0}, stock)

	summary, err := app.shop.Summary(ownerCtx)
	require.NoError(t, err)
	require.Len(t, summary, 2)
	assert.Equal(t, "Pelotas", summary[0].ProductName)
	assert.Equal(t, int64(18000), summary[0].Total)

	sales, err := app.shop.ListSales(ownerCtx)
	require.NoError(t, err)
	assert.Len(t, sales, 2)

	// inactive products cannot be sold
	_, err = app.shop.UpdateProduct(ownerCtx, water.ID, ProductInput{Name: "Agua", Price: 1500, Stock: 7, Active: lo.ToPtr(false)})
	require.NoError(t, err)
	_, err = app.shop.RecordSale(ownerCtx, water.ID, 1)
	assert.ErrorIs(t, err, ErrConflict)

	assert.ErrorIs(t, app.shop.DeleteProduct(otherCtx, water.ID), ErrNotFound)
	require.NoError(t, app.shop.DeleteProduct(ownerCtx, water.ID))
}

func TestAdService(t *testing.T) {
	app := newTestApp(t)
	adminCtx := app.admin(t)
	_, ownerCtx := app.user(t, "owner", users.RoleOwner)

	in := AdInput{Title: "Paletas 2x1", Placement: commerce.PlacementHome, StartsOn: "2030-05-01", EndsOn: "2030-05-31"}
	_, err := app.ads.Create(ownerCtx, in)
	assert.ErrorIs(t, err, ErrForbidden)

	bad := in
	bad.Placement = "sidebar"
	_, err = app.ads.Create(adminCtx, bad)
	assert.ErrorIs(t, err, ErrInvalid)
	bad = in
	bad.EndsOn = "2030-04-01"
	_, err = app.ads.Create(adminCtx, bad)
	assert.ErrorIs(t, err, ErrInvalid)

	running, err := app.ads.Create(adminCtx, in)
	require.NoError(t, err)
	future := in
	future.Title = "Torneo de invierno"
	future.StartsOn, future.EndsOn = "2030-06-01", "2030-06-30"
	_, err = app.ads.Create(adminCtx, future)
	require.NoError(t, err)

	list, err := app.ads.Running(context.Background(), commerce.PlacementHome)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, running.ID, list[0].ID)

	in.Active = lo.ToPtr(false)
	_, err = app.ads.Update(adminCtx, running.ID, in)
	require.NoError(t, err)
	list, err = app.ads.Running(context.Background(), commerce.PlacementHome)
	require.NoError(t, err)
	assert.Empty(t, list)

	all, err := app.ads.List(adminCtx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	require.NoError(t, app.ads.Delete(adminCtx, running.ID))
	assert.ErrorIs(t, app.ads.Delete(adminCtx, running.ID), ErrNotFound)
}

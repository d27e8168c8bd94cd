package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nafioutino/xamxam.io-sub000/internal/model"
	"github.com/nafioutino/xamxam.io-sub000/internal/store/storetest"
	"github.com/nafioutino/xamxam.io-sub000/pkg/logger"
)

const categoryID = "4d5e6f7a-8b9c-4d0e-8f1a-2b3c4d5e6f7a"

func newProductService(st *storetest.Store) *ProductService {
	return NewProductService(st, logger.NewNop())
}

func TestCreateProduct_ShopMissing(t *testing.T) {
	svc := newProductService(storetest.New())

	_, err := svc.Create(context.Background(), &model.CreateProductRequest{
		ShopID: shopID,
		Name:   "wax print fabric",
		Price:  150000,
	})

	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "shop", notFound.Resource)
}

func TestCreateProduct_SKUConflict(t *testing.T) {
	st := seededStore()
	svc := newProductService(st)

	_, err := svc.Create(context.Background(), &model.CreateProductRequest{
		ShopID: shopID,
		Name:   "wax print fabric",
		SKU:    ptr("WAX-001"),
		Price:  150000,
	})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), &model.CreateProductRequest{
		ShopID: shopID,
		Name:   "wax print fabric v2",
		SKU:    ptr("WAX-001"),
		Price:  180000,
	})
	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)

	// The same SKU in another shop is fine.
	_, err = svc.Create(context.Background(), &model.CreateProductRequest{
		ShopID: otherShopID,
		Name:   "wax print fabric",
		SKU:    ptr("WAX-001"),
		Price:  150000,
	})
	assert.NoError(t, err)
}

func TestCreateProduct_CategoryFromOtherShop(t *testing.T) {
	st := seededStore()
	st.Categories[categoryID] = &model.Category{ID: categoryID, ShopID: otherShopID, Name: "fabrics"}
	svc := newProductService(st)

	_, err := svc.Create(context.Background(), &model.CreateProductRequest{
		ShopID:     shopID,
		CategoryID: ptr(categoryID),
		Name:       "wax print fabric",
		Price:      150000,
	})

	var validation *ValidationError
	require.ErrorAs(t, err, &validation)
}

func TestUpdateProduct_EmptyData(t *testing.T) {
	svc := newProductService(seededStore())

	_, err := svc.Update(context.Background(), categoryID, &model.ProductUpdate{})

	var validation *ValidationError
	require.ErrorAs(t, err, &validation)
}

func TestUpdateProduct_SKUConflictExcludesSelf(t *testing.T) {
	st := seededStore()
	svc := newProductService(st)

	p, err := svc.Create(context.Background(), &model.CreateProductRequest{
		ShopID: shopID,
		Name:   "wax print fabric",
		SKU:    ptr("WAX-001"),
		Price:  150000,
	})
	require.NoError(t, err)

	// Re-asserting its own SKU is not a conflict.
	updated, err := svc.Update(context.Background(), p.ID, &model.ProductUpdate{
		SKU:   ptr("WAX-001"),
		Price: ptr(int64(175000)),
	})
	require.NoError(t, err)
	assert.EqualValues(t, 175000, updated.Price)
}

func TestDeleteProduct_BlockedByOrderItems(t *testing.T) {
	st := seededStore()
	svc := newProductService(st)

	p, err := svc.Create(context.Background(), &model.CreateProductRequest{
		ShopID: shopID,
		Name:   "wax print fabric",
		Price:  150000,
	})
	require.NoError(t, err)

	st.OrderItems = append(st.OrderItems, model.OrderItem{
		ID:        "5e6f7a8b-9c0d-4e1f-8a2b-3c4d5e6f7a8b",
		OrderID:   orderID,
		ProductID: p.ID,
		Quantity:  2,
		UnitPrice: 150000,
	})

	err = svc.Delete(context.Background(), p.ID)
	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	details, ok := conflict.Details.(map[string]any)
	require.True(t, ok)
	assert.EqualValues(t, 1, details["orderItemCount"])

	_, err = svc.Get(context.Background(), p.ID)
	assert.NoError(t, err)
}

func TestDeleteProduct_Succeeds(t *testing.T) {
	svc := newProductService(seededStore())

	p, err := svc.Create(context.Background(), &model.CreateProductRequest{
		ShopID: shopID,
		Name:   "wax print fabric",
		Price:  150000,
	})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), p.ID))

	_, err = svc.Get(context.Background(), p.ID)
	var notFound *NotFoundError
	assert.ErrorAs(t, err, &notFound)
}

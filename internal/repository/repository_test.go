package repository

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Lixing-Zhang/kart-challenge/order-configurator/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalog(t *testing.T) {
	repo, err := NewInMemoryProductRepository()
	require.NoError(t, err)

	products, err := repo.GetAll(context.Background())
	require.NoError(t, err)

	ids := make([]string, len(products))
	for i, p := range products {
		ids[i] = p.ID
	}
	assert.Equal(t, []string{"cake", "breakfast", "pizza", "salad"}, ids)

	pizza, err := repo.GetByID(context.Background(), "pizza")
	require.NoError(t, err)
	assert.True(t, pizza.Price.Equal(decimal.NewFromInt(20)))
	assert.Equal(t, []string{"sauce", "toppings", "crust"}, pizza.Params.Keys())

	toppings, _ := pizza.Params.Get("toppings")
	olives, ok := toppings.Options.Get("olives")
	require.True(t, ok)
	assert.True(t, olives.Default)
}

func TestGetByID_NotFound(t *testing.T) {
	repo, err := NewInMemoryProductRepository()
	require.NoError(t, err)

	_, err = repo.GetByID(context.Background(), "burger")
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestParseCatalog(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantErr bool
	}{
		{
			name: "id taken from key",
			doc:  `{"products":{"soup":{"name":"Soup","price":5,"params":{}}}}`,
		},
		{
			name:    "not json",
			doc:     `products`,
			wantErr: true,
		},
		{
			name:    "empty",
			doc:     `{"products":{}}`,
			wantErr: true,
		},
		{
			name:    "id disagrees with key",
			doc:     `{"products":{"soup":{"id":"stew","name":"Soup","price":5}}}`,
			wantErr: true,
		},
		{
			name:    "missing name",
			doc:     `{"products":{"soup":{"price":5}}}`,
			wantErr: true,
		},
		{
			name:    "negative base price",
			doc:     `{"products":{"soup":{"name":"Soup","price":-1}}}`,
			wantErr: true,
		},
		{
			name:    "option without label",
			doc:     `{"products":{"soup":{"name":"Soup","price":5,"params":{"size":{"label":"Size","options":{"big":{"price":1}}}}}}}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, err := ParseCatalog([]byte(tt.doc))
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidCatalog)
				return
			}
			require.NoError(t, err)
			p, err := repo.GetByID(context.Background(), "soup")
			require.NoError(t, err)
			assert.Equal(t, "soup", p.ID)
		})
	}
}

func TestLoadCatalogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "menu.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"products":{"tea":{"name":"Tea","price":3}}}`), 0o644))

	repo, err := LoadCatalogFile(path)
	require.NoError(t, err)
	products, _ := repo.GetAll(context.Background())
	require.Len(t, products, 1)
	assert.Equal(t, "Tea", products[0].Name)

	_, err = LoadCatalogFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestOrderRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryOrderRepository()

	first := models.Order{ID: "a", Phone: "123456", CreatedAt: time.Now()}
	second := models.Order{ID: "b", Phone: "654321", CreatedAt: time.Now()}
	require.NoError(t, repo.Save(ctx, first))
	require.NoError(t, repo.Save(ctx, second))
	assert.ErrorIs(t, repo.Save(ctx, first), ErrDuplicateID)

	got, err := repo.GetByID(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, "654321", got.Phone)

	_, err = repo.GetByID(ctx, "c")
	assert.ErrorIs(t, err, ErrOrderNotFound)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "a", all[0].ID)
}

package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"itstore-assistant/internal/model"
	"itstore-assistant/internal/taxonomy"
)

type mockCatalog struct {
	filters []bson.M
	queue   [][]model.Product
	findErr error

	product    *model.Product
	getErr     error
	aggResults []bson.M
	aggErr     error
}

func (m *mockCatalog) Find(_ context.Context, filter bson.M, _ bson.D, _ int64) ([]model.Product, error) {
	m.filters = append(m.filters, filter)
	if m.findErr != nil {
		return nil, m.findErr
	}
	if len(m.queue) == 0 {
		return nil, nil
	}
	next := m.queue[0]
	m.queue = m.queue[1:]
	return next, nil
}

func (m *mockCatalog) Aggregate(_ context.Context, _ []bson.M) ([]bson.M, error) {
	return m.aggResults, m.aggErr
}

func (m *mockCatalog) GetProduct(_ context.Context, _ string) (*model.Product, error) {
	return m.product, m.getErr
}

func sampleProduct() model.Product {
	return model.Product{
		ID:            primitive.NewObjectID(),
		Title:         "ASUS TUF Gaming F15",
		Description:   "Gaming notebook",
		Price:         25000,
		SalePrice:     19990,
		StockQuantity: 12,
		ProductActive: true,
		Rating:        4.5,
		TotalReviews:  120,
		ProductView:   5400,
		Navigation: model.Navigation{
			CategoryID:       "cat-nb-001",
			CategoryMessage1: "NOTEBOOKS",
			CategoryMessage2: "Gaming Notebooks",
			CategoryMessage3: "ASUS",
		},
	}
}

func newChatService(catalog *mockCatalog) *ChatService {
	completer := &mockCompleter{enabled: false}
	tax := taxonomy.New()
	return NewChatService(
		catalog,
		NewEntityExtractor(completer, tax),
		NewResponseComposer(completer),
		tax,
		nil,
	)
}

func TestChatStopsAtFirstNonEmptyTier(t *testing.T) {
	catalog := &mockCatalog{queue: [][]model.Product{{sampleProduct()}}}
	svc := newChatService(catalog)

	resp := svc.Chat(context.Background(), "โน้ตบุ๊กงบ 20000")

	require.Len(t, catalog.filters, 1, "first tier matched, no further queries allowed")
	assert.Len(t, resp.Products, 1)
	assert.NotEmpty(t, resp.Message)
	assert.NotEmpty(t, resp.Reasoning)
	assert.Equal(t, "โน้ตบุ๊กงบ 20000", resp.NormalizedInput)
}

func TestChatRelaxesBudgetOnEmptyTier(t *testing.T) {
	catalog := &mockCatalog{queue: [][]model.Product{nil, {sampleProduct()}}}
	svc := newChatService(catalog)

	resp := svc.Chat(context.Background(), "โน้ตบุ๊กงบ 20000")

	require.Len(t, catalog.filters, 2)
	assert.Contains(t, catalog.filters[0], "salePrice")
	assert.NotContains(t, catalog.filters[1], "salePrice",
		"budget-relaxed tier must drop only the price clause")
	assert.Contains(t, catalog.filters[1], "navigation.categoryMessage1")
	assert.Len(t, resp.Products, 1)
}

func TestChatCategoryKeywordTier(t *testing.T) {
	catalog := &mockCatalog{queue: [][]model.Product{nil, nil, {sampleProduct()}}}
	svc := newChatService(catalog)

	resp := svc.Chat(context.Background(), "โน้ตบุ๊กงบ 20000")

	require.Len(t, catalog.filters, 3)
	tier2 := catalog.filters[2]
	assert.NotContains(t, tier2, "navigation.categoryMessage1",
		"category tier discards the structural query")
	assert.NotContains(t, tier2, "salePrice")
	or, ok := tier2["$or"].([]bson.M)
	require.True(t, ok)
	assert.Len(t, or, 6, "keyword tier spans title, description, keywords and all category levels")
	assert.Len(t, resp.Products, 1)
}

func TestChatExhaustionIsNotAnError(t *testing.T) {
	catalog := &mockCatalog{}
	svc := newChatService(catalog)

	resp := svc.Chat(context.Background(), "โน้ตบุ๊กงบ 20000")

	require.Len(t, catalog.filters, 4, "all four tiers run exactly once")
	assert.Empty(t, resp.Products)
	assert.Contains(t, resp.Message, "ขออภัย ไม่พบสินค้า")
	assert.Empty(t, resp.Reasoning)
}

func TestChatEveryTierKeepsBaseline(t *testing.T) {
	catalog := &mockCatalog{}
	svc := newChatService(catalog)

	svc.Chat(context.Background(), "โน้ตบุ๊กงบ 20000")

	for i, filter := range catalog.filters {
		assert.Equal(t, true, filter["productActive"], "tier %d dropped the active flag", i)
		assert.Equal(t, bson.M{"$gt": 0}, filter["stockQuantity"], "tier %d dropped the stock filter", i)
	}
}

func TestChatSkipsTiersWithoutTriggers(t *testing.T) {
	// No category and no budget: only the strict and bare-text tiers run.
	catalog := &mockCatalog{}
	svc := newChatService(catalog)

	svc.Chat(context.Background(), "ของขวัญวันเกิด")

	require.Len(t, catalog.filters, 2)
	or, ok := catalog.filters[1]["$or"].([]bson.M)
	require.True(t, ok)
	assert.Len(t, or, 2, "bare text tier matches title and description only")
}

func TestChatCatalogErrorBecomesEmptyResult(t *testing.T) {
	catalog := &mockCatalog{findErr: errors.New("connection reset")}
	svc := newChatService(catalog)

	resp := svc.Chat(context.Background(), "โน้ตบุ๊กงบ 20000")

	assert.Empty(t, resp.Products)
	assert.Contains(t, resp.Message, "ขออภัย ไม่พบสินค้า",
		"store failures read as empty results, not user-facing errors")
}

func TestTrendingFilter(t *testing.T) {
	catalog := &mockCatalog{queue: [][]model.Product{{sampleProduct()}}}
	svc := newChatService(catalog)

	products, err := svc.Trending(context.Background(), 10)

	require.NoError(t, err)
	assert.Len(t, products, 1)
	require.Len(t, catalog.filters, 1)
	filter := catalog.filters[0]
	assert.Equal(t, bson.M{"$gte": 4}, filter["rating"])
	assert.Equal(t, bson.M{"$gte": 10}, filter["totalReviews"])
	assert.Equal(t, true, filter["productActive"])
}

func TestRecommendationsExcludeSelf(t *testing.T) {
	current := sampleProduct()
	catalog := &mockCatalog{
		product: &current,
		queue:   [][]model.Product{{sampleProduct()}},
	}
	svc := newChatService(catalog)

	_, err := svc.Recommendations(context.Background(), current.ID.Hex(), 5)

	require.NoError(t, err)
	require.Len(t, catalog.filters, 1)
	filter := catalog.filters[0]
	assert.Equal(t, bson.M{"$ne": current.ID}, filter["_id"])

	or := filter["$or"].([]bson.M)
	require.Len(t, or, 2)
	assert.Equal(t, current.Navigation.CategoryID, or[0]["navigation.categoryId"])
	price := or[1]["salePrice"].(bson.M)
	assert.InDelta(t, current.SalePrice*0.8, price["$gte"], 0.01)
	assert.InDelta(t, current.SalePrice*1.2, price["$lte"], 0.01)
}

func TestRecommendationsUnknownProduct(t *testing.T) {
	catalog := &mockCatalog{getErr: errors.New("not found")}
	svc := newChatService(catalog)

	_, err := svc.Recommendations(context.Background(), "deadbeef", 5)
	assert.Error(t, err)
}

func TestInsights(t *testing.T) {
	catalog := &mockCatalog{
		aggResults: []bson.M{{
			"totalResults": int32(42),
			"averagePrice": 15990.5,
			"minPrice":     7990.0,
			"maxPrice":     49990.0,
			"brands":       primitive.A{primitive.A{"ASUS", "GAMING"}, primitive.A{"MSI", "ASUS"}},
			"categories":   primitive.A{"NOTEBOOKS", "NOTEBOOKS", "COMPUTER HARDWARE (DIY)"},
		}},
	}
	svc := newChatService(catalog)

	insights, err := svc.Insights(context.Background(), "โน้ตบุ๊ก")

	require.NoError(t, err)
	assert.Equal(t, 42, insights.TotalResults)
	assert.Equal(t, 15990.5, insights.AveragePrice)
	assert.Equal(t, 7990.0, insights.PriceRange.Min)
	assert.Equal(t, 49990.0, insights.PriceRange.Max)
	assert.Equal(t, []string{"ASUS", "GAMING", "MSI"}, insights.TopBrands)
	assert.Equal(t, []string{"NOTEBOOKS", "COMPUTER HARDWARE (DIY)"}, insights.Categories)
}

func TestInsightsEmptyMatch(t *testing.T) {
	catalog := &mockCatalog{}
	svc := newChatService(catalog)

	insights, err := svc.Insights(context.Background(), "โน้ตบุ๊ก")

	require.NoError(t, err)
	assert.Equal(t, 0, insights.TotalResults)
	assert.Empty(t, insights.TopBrands)
	assert.Empty(t, insights.Categories)
}

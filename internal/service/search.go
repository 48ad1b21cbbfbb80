package service

import (
	"context"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"itstore-assistant/internal/model"
	"itstore-assistant/internal/query"
	"itstore-assistant/internal/taxonomy"
	"itstore-assistant/internal/utils"
	"itstore-assistant/pkg/logger"
)

// Catalog is the product-store surface the chat pipeline reads from.
type Catalog interface {
	Find(ctx context.Context, filter bson.M, sort bson.D, limit int64) ([]model.Product, error)
	Aggregate(ctx context.Context, pipeline []bson.M) ([]bson.M, error)
	GetProduct(ctx context.Context, id string) (*model.Product, error)
}

// SearchLogger records completed searches for analytics. Implementations
// must be safe for concurrent use.
type SearchLogger interface {
	LogSearch(ctx context.Context, input string, entities *model.ExtractedEntities, resultCount int, tookMs int64) error
}

// ChatService runs the full conversational search pipeline: normalize,
// extract, query, progressively relax, compose.
type ChatService struct {
	catalog   Catalog
	extractor *EntityExtractor
	composer  *ResponseComposer
	tax       *taxonomy.Mapper
	searchLog SearchLogger // optional
}

// NewChatService wires the pipeline together. searchLog may be nil.
func NewChatService(
	catalog Catalog,
	extractor *EntityExtractor,
	composer *ResponseComposer,
	tax *taxonomy.Mapper,
	searchLog SearchLogger,
) *ChatService {
	return &ChatService{
		catalog:   catalog,
		extractor: extractor,
		composer:  composer,
		tax:       tax,
		searchLog: searchLog,
	}
}

// apologyMessage is the terminal answer when the pipeline itself fails.
const apologyMessage = "ขออภัย เกิดข้อผิดพลาดในการค้นหาสินค้า กรุณาลองใหม่อีกครั้ง 🔧"

// Chat answers a single user message. It never returns an error: any
// panic in the pipeline degrades to a generic apology so the chat UI
// always has something to show.
func (s *ChatService) Chat(ctx context.Context, input string) (resp *model.ChatResponse) {
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			logger.Error("chat pipeline panic",
				zap.String("input", input),
				zap.Any("panic", r))
			resp = &model.ChatResponse{
				Message:  apologyMessage,
				Products: []model.Product{},
				Took:     time.Since(start).Milliseconds(),
			}
		}
	}()

	normalized := utils.Normalize(input)
	entities := s.extractor.Extract(ctx, normalized)
	q := query.Build(entities)

	products := s.searchWithFallback(ctx, entities, q)
	message := s.composer.Compose(ctx, input, entities, products, q.Reason)
	reasoning := s.composer.ExplainSelection(entities, products)

	took := time.Since(start).Milliseconds()
	s.logSearch(input, entities, len(products), took)

	return &model.ChatResponse{
		Message:         message,
		Products:        products,
		Entities:        entities,
		Reasoning:       reasoning,
		NormalizedInput: normalized,
		Took:            took,
	}
}

// searchWithFallback walks the query tiers in order, stopping at the
// first non-empty result set. Each tier runs at most once.
func (s *ChatService) searchWithFallback(ctx context.Context, entities *model.ExtractedEntities, q query.Query) []model.Product {
	// Tier 0: full structural query
	products := s.find(ctx, q.Filter, q.Sort, q.Limit)

	// Tier 1: drop the price ceiling, keep everything else
	if len(products) == 0 && entities.HasBudget() {
		logger.Debug("no results within budget, relaxing price filter")
		relaxed := query.WithoutBudget(q)
		products = s.find(ctx, relaxed.Filter, relaxed.Sort, relaxed.Limit)
	}

	// Tier 2: discard the structural query, search by the category's
	// known synonym set across all text fields
	if len(products) == 0 && entities.Category != "" {
		logger.Debug("no results for structural query, trying category keywords",
			zap.String("category", entities.Category))
		terms := s.tax.SynonymsFor(entities.Category)
		if len(terms) == 0 {
			terms = []string{entities.Category}
		}
		filter := query.CategoryFallback(query.ExpandTerms(terms))
		products = s.find(ctx, filter, query.DefaultSort(), query.PageSize)
	}

	// Tier 3: bare text match on whatever single term is left
	if len(products) == 0 {
		term := entities.Category
		if term == "" && len(entities.Keywords) > 0 {
			term = entities.Keywords[0]
		}
		logger.Debug("falling back to bare text search", zap.String("term", term))
		products = s.find(ctx, query.BareText(term), query.DefaultSort(), query.PageSize)
	}

	return products
}

// find queries the catalog, treating store errors as empty results. The
// error is logged for operators but never shown to the user.
func (s *ChatService) find(ctx context.Context, filter bson.M, sort bson.D, limit int64) []model.Product {
	products, err := s.catalog.Find(ctx, filter, sort, limit)
	if err != nil {
		logger.Error("catalog search failed", zap.Error(err), zap.Any("filter", filter))
		return nil
	}
	return products
}

func (s *ChatService) logSearch(input string, entities *model.ExtractedEntities, count int, tookMs int64) {
	if s.searchLog == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.searchLog.LogSearch(ctx, input, entities, count, tookMs); err != nil {
			logger.Warn("failed to record search log", zap.Error(err))
		}
	}()
}

// Trending returns well-reviewed in-stock products ordered by popularity.
func (s *ChatService) Trending(ctx context.Context, limit int64) ([]model.Product, error) {
	filter := bson.M{
		"productActive": true,
		"stockQuantity": bson.M{"$gt": 0},
		"rating":        bson.M{"$gte": 4},
		"totalReviews":  bson.M{"$gte": 10},
	}
	sort := bson.D{
		{Key: "productView", Value: -1},
		{Key: "totalReviews", Value: -1},
	}
	return s.catalog.Find(ctx, filter, sort, limit)
}

// Recommendations returns products related to the given one: same
// category branch, or priced within 20% either way. The product itself
// is excluded.
func (s *ChatService) Recommendations(ctx context.Context, productID string, limit int64) ([]model.Product, error) {
	product, err := s.catalog.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	filter := bson.M{
		"productActive": true,
		"stockQuantity": bson.M{"$gt": 0},
		"_id":           bson.M{"$ne": product.ID},
		"$or": []bson.M{
			{"navigation.categoryId": product.Navigation.CategoryID},
			{"salePrice": bson.M{
				"$gte": product.SalePrice * 0.8,
				"$lte": product.SalePrice * 1.2,
			}},
		},
	}
	return s.catalog.Find(ctx, filter, query.DefaultSort(), limit)
}

// Insights aggregates result statistics for the query a message would
// produce: result count, price spread, top brands and categories.
func (s *ChatService) Insights(ctx context.Context, input string) (*model.SearchInsights, error) {
	normalized := utils.Normalize(input)
	entities := s.extractor.Extract(ctx, normalized)
	q := query.Build(entities)

	pipeline := []bson.M{
		{"$match": q.Filter},
		{"$group": bson.M{
			"_id":          nil,
			"totalResults": bson.M{"$sum": 1},
			"averagePrice": bson.M{"$avg": "$salePrice"},
			"minPrice":     bson.M{"$min": "$salePrice"},
			"maxPrice":     bson.M{"$max": "$salePrice"},
			"brands":       bson.M{"$push": "$keyword"},
			"categories":   bson.M{"$push": "$navigation.categoryMessage1"},
		}},
	}

	results, err := s.catalog.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return &model.SearchInsights{
			TopBrands:  []string{},
			Categories: []string{},
		}, nil
	}

	doc := results[0]
	return &model.SearchInsights{
		TotalResults: asInt(doc["totalResults"]),
		AveragePrice: asFloat(doc["averagePrice"]),
		PriceRange: model.PriceSpan{
			Min: asFloat(doc["minPrice"]),
			Max: asFloat(doc["maxPrice"]),
		},
		TopBrands:  topStrings(doc["brands"], 5),
		Categories: topStrings(doc["categories"], 5),
	}, nil
}

func asInt(v interface{}) int {
	switch n := v.(type) {
	case int:
		return n
	case int32:
		return int(n)
	case int64:
		return int(n)
	case float64:
		return int(n)
	}
	return 0
}

func asFloat(v interface{}) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	case int:
		return float64(n)
	}
	return 0
}

// topStrings flattens nested string arrays from an aggregation push,
// deduplicates in order, and keeps the first n.
func topStrings(v interface{}, n int) []string {
	seen := make(map[string]bool)
	out := []string{}
	var walk func(interface{})
	walk = func(v interface{}) {
		switch val := v.(type) {
		case string:
			trimmed := strings.TrimSpace(val)
			if trimmed != "" && !seen[trimmed] {
				seen[trimmed] = true
				out = append(out, trimmed)
			}
		case primitive.A:
			for _, item := range val {
				walk(item)
			}
		case []interface{}:
			for _, item := range val {
				walk(item)
			}
		case []string:
			for _, item := range val {
				walk(item)
			}
		}
	}
	walk(v)
	if len(out) > n {
		out = out[:n]
	}
	return out
}

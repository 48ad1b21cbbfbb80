package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"itstore-assistant/internal/model"
)

func floatPtr(v float64) *float64 { return &v }

func TestBuildBaseline(t *testing.T) {
	q := Build(&model.ExtractedEntities{})

	assert.Equal(t, true, q.Filter["productActive"])
	assert.Equal(t, bson.M{"$gt": 0}, q.Filter["stockQuantity"])
	assert.Equal(t, int64(PageSize), q.Limit)
	assert.Equal(t, DefaultSort(), q.Sort)
	assert.NotContains(t, q.Filter, "salePrice")
	assert.NotContains(t, q.Filter, "$or")
	assert.NotContains(t, q.Filter, "$and")
}

func TestBuildBudget(t *testing.T) {
	t.Run("max only", func(t *testing.T) {
		q := Build(&model.ExtractedEntities{
			Budget: &model.Budget{Max: floatPtr(20000)},
		})
		assert.Equal(t, bson.M{"$lte": float64(20000)}, q.Filter["salePrice"])
	})

	t.Run("min and max", func(t *testing.T) {
		q := Build(&model.ExtractedEntities{
			Budget: &model.Budget{Min: floatPtr(10000), Max: floatPtr(20000)},
		})
		assert.Equal(t, bson.M{"$gte": float64(10000), "$lte": float64(20000)}, q.Filter["salePrice"])
	})

	t.Run("min only contributes nothing", func(t *testing.T) {
		q := Build(&model.ExtractedEntities{
			Budget: &model.Budget{Min: floatPtr(10000)},
		})
		assert.NotContains(t, q.Filter, "salePrice")
	})
}

func TestBuildCategoryClauses(t *testing.T) {
	q := Build(&model.ExtractedEntities{
		Category:    "NOTEBOOKS",
		SubCategory: "Gaming Notebooks",
	})

	assert.Equal(t, bson.M{"$regex": "NOTEBOOKS", "$options": "i"},
		q.Filter["navigation.categoryMessage1"])
	assert.Equal(t, bson.M{"$regex": "Gaming Notebooks", "$options": "i"},
		q.Filter["navigation.categoryMessage2"])
}

func TestBuildFreeTextGroup(t *testing.T) {
	q := Build(&model.ExtractedEntities{
		Keywords: []string{"โน้ตบุ๊ก"},
		Specs:    []string{"16GB"},
		Usage:    "Gaming",
	})

	or, ok := q.Filter["$or"].([]bson.M)
	require.True(t, ok, "single group attaches as top-level $or")
	require.Len(t, or, 4)

	title := or[0]["title"].(bson.M)
	pattern := title["$regex"].(string)
	assert.Contains(t, pattern, "laptop")
	assert.Contains(t, pattern, "notebook")
	assert.Contains(t, pattern, "Gaming")

	in := or[2]["keyword"].(bson.M)["$in"].([]string)
	assert.Contains(t, in, "16GB")
	assert.Contains(t, in, "LAPTOP")
}

func TestBuildBrandGroupStaysSeparate(t *testing.T) {
	q := Build(&model.ExtractedEntities{
		Keywords: []string{"โน้ตบุ๊ก"},
		Brand:    "ASUS",
	})

	and, ok := q.Filter["$and"].([]bson.M)
	require.True(t, ok, "text and brand groups must be AND-ed, never merged")
	require.Len(t, and, 2)

	brandOr := and[1]["$or"].([]bson.M)
	assert.Equal(t, bson.M{"$in": []string{"ASUS"}}, brandOr[0]["keyword"])
	assert.Equal(t, bson.M{"$regex": "ASUS", "$options": "i"}, brandOr[1]["title"])
}

func TestBuildBrandOnly(t *testing.T) {
	q := Build(&model.ExtractedEntities{Brand: "MSI"})

	or, ok := q.Filter["$or"].([]bson.M)
	require.True(t, ok)
	assert.Equal(t, bson.M{"$in": []string{"MSI"}}, or[0]["keyword"])
	assert.NotContains(t, q.Filter, "$and")
}

func TestWithoutBudget(t *testing.T) {
	q := Build(&model.ExtractedEntities{
		Category: "NOTEBOOKS",
		Budget:   &model.Budget{Max: floatPtr(15000)},
	})
	relaxed := WithoutBudget(q)

	assert.NotContains(t, relaxed.Filter, "salePrice")
	assert.Contains(t, relaxed.Filter, "navigation.categoryMessage1")
	assert.Equal(t, true, relaxed.Filter["productActive"])
	assert.Contains(t, q.Filter, "salePrice", "original query must be untouched")
}

func TestExpandTerms(t *testing.T) {
	got := ExpandTerms([]string{"โน้ตบุ๊กบางเบา", "การ์ดจอ", "16gb"})

	assert.Contains(t, got, "โน้ตบุ๊กบางเบา")
	assert.Contains(t, got, "laptop")
	assert.Contains(t, got, "notebook")
	assert.Contains(t, got, "vga")
	assert.Contains(t, got, "graphics")
	assert.Contains(t, got, "16GB")
	assert.Contains(t, got, "16 GB")
	assert.Contains(t, got, "16gb")

	// No duplicates
	seen := map[string]int{}
	for _, term := range got {
		seen[term]++
	}
	for term, n := range seen {
		assert.Equal(t, 1, n, "duplicate term %q", term)
	}
}

func TestCategoryFallback(t *testing.T) {
	filter := CategoryFallback([]string{"notebook", "laptop"})

	assert.Equal(t, true, filter["productActive"])
	assert.Equal(t, bson.M{"$gt": 0}, filter["stockQuantity"])

	or := filter["$or"].([]bson.M)
	require.Len(t, or, 6)
	assert.Equal(t, bson.M{"$in": []string{"NOTEBOOK", "LAPTOP"}}, or[2]["keyword"])
	assert.Contains(t, or[5], "navigation.categoryMessage3")
}

func TestCategoryFallbackEmptyTerms(t *testing.T) {
	filter := CategoryFallback(nil)
	assert.NotContains(t, filter, "$or")
	assert.Equal(t, true, filter["productActive"])
}

func TestBareText(t *testing.T) {
	filter := BareText("การ์ดจอ")
	or := filter["$or"].([]bson.M)
	require.Len(t, or, 2)
	assert.Equal(t, bson.M{"$regex": "การ์ดจอ", "$options": "i"}, or[0]["title"])

	empty := BareText("")
	assert.NotContains(t, empty, "$or")
	assert.Equal(t, bson.M{"$gt": 0}, empty["stockQuantity"])
}

func TestReason(t *testing.T) {
	q := Build(&model.ExtractedEntities{
		Category: "NOTEBOOKS",
		Usage:    "Gaming",
		Budget:   &model.Budget{Max: floatPtr(15000)},
		Brand:    "ASUS",
	})

	assert.Contains(t, q.Reason, "หมวดหมู่ NOTEBOOKS")
	assert.Contains(t, q.Reason, "การใช้งาน Gaming")
	assert.Contains(t, q.Reason, "งบประมาณไม่เกิน 15,000 บาท")
	assert.Contains(t, q.Reason, "แบรนด์ ASUS")

	empty := Build(&model.ExtractedEntities{})
	assert.Equal(t, "ค้นหาตามคำค้นหาที่ระบุ", empty.Reason)
}

func TestFormatBaht(t *testing.T) {
	assert.Equal(t, "999", FormatBaht(999))
	assert.Equal(t, "1,000", FormatBaht(1000))
	assert.Equal(t, "15,000", FormatBaht(15000))
	assert.Equal(t, "1,234,567", FormatBaht(1234567))
}

// Package query translates extracted intent entities into MongoDB filters
// for the product catalog.
package query

import (
	"fmt"
	"regexp"
	"strings"

	"go.mongodb.org/mongo-driver/bson"

	"itstore-assistant/internal/model"
)

// PageSize is the fixed number of products returned per search.
const PageSize = 10

// Query bundles a catalog filter with its sort order, limit and the
// human-readable reason shown to the user.
type Query struct {
	Filter bson.M
	Sort   bson.D
	Limit  int64
	Reason string
}

// DefaultSort ranks by popularity first, then rating, then social proof.
func DefaultSort() bson.D {
	return bson.D{
		{Key: "productView", Value: -1},
		{Key: "rating", Value: -1},
		{Key: "totalReviews", Value: -1},
	}
}

// baseline returns the constraints present in every catalog query:
// only active products with stock on hand.
func baseline() bson.M {
	return bson.M{
		"productActive": true,
		"stockQuantity": bson.M{"$gt": 0},
	}
}

// Build constructs the strict (tier-0) query for an entities record.
// Structural entities (category, sub-category, budget) become required
// AND filters; free-text signals and brand each become an OR-group of
// alternatives. Construction only ever adds constraints.
func Build(e *model.ExtractedEntities) Query {
	filter := baseline()

	if e.Budget != nil && e.Budget.Max != nil {
		price := bson.M{"$lte": *e.Budget.Max}
		if e.Budget.Min != nil {
			price["$gte"] = *e.Budget.Min
		}
		filter["salePrice"] = price
	}

	if e.Category != "" {
		filter["navigation.categoryMessage1"] = regexI(regexp.QuoteMeta(e.Category))
	}
	if e.SubCategory != "" {
		filter["navigation.categoryMessage2"] = regexI(regexp.QuoteMeta(e.SubCategory))
	}

	var groups []bson.M

	terms := freeTextTerms(e)
	if len(terms) > 0 {
		expanded := ExpandTerms(terms)
		pattern := alternation(expanded)
		groups = append(groups, bson.M{"$or": []bson.M{
			{"title": regexI(pattern)},
			{"description": regexI(pattern)},
			{"keyword": bson.M{"$in": upperAll(expanded)}},
			{"navigation.categoryMessage3": regexI(pattern)},
		}})
	}

	if e.Brand != "" {
		brand := regexp.QuoteMeta(e.Brand)
		groups = append(groups, bson.M{"$or": []bson.M{
			{"keyword": bson.M{"$in": []string{strings.ToUpper(e.Brand)}}},
			{"title": regexI(brand)},
			{"navigation.categoryMessage3": regexI(brand)},
		}})
	}

	switch len(groups) {
	case 1:
		filter["$or"] = groups[0]["$or"]
	case 2:
		filter["$and"] = groups
	}

	return Query{
		Filter: filter,
		Sort:   DefaultSort(),
		Limit:  PageSize,
		Reason: reasonFor(e),
	}
}

// WithoutBudget returns a copy of the query with the sale-price clause
// removed, all other constraints intact.
func WithoutBudget(q Query) Query {
	filter := make(bson.M, len(q.Filter))
	for k, v := range q.Filter {
		if k == "salePrice" {
			continue
		}
		filter[k] = v
	}
	q.Filter = filter
	return q
}

// CategoryFallback builds a fresh keyword-only query across titles,
// descriptions, the keyword list and all three category levels.
func CategoryFallback(terms []string) bson.M {
	filter := baseline()
	if len(terms) == 0 {
		return filter
	}
	pattern := alternation(terms)
	filter["$or"] = []bson.M{
		{"title": regexI(pattern)},
		{"description": regexI(pattern)},
		{"keyword": bson.M{"$in": upperAll(terms)}},
		{"navigation.categoryMessage1": regexI(pattern)},
		{"navigation.categoryMessage2": regexI(pattern)},
		{"navigation.categoryMessage3": regexI(pattern)},
	}
	return filter
}

// BareText matches a single term against title or description. An empty
// term degenerates to the baseline-only filter.
func BareText(term string) bson.M {
	filter := baseline()
	if term == "" {
		return filter
	}
	pattern := regexp.QuoteMeta(term)
	filter["$or"] = []bson.M{
		{"title": regexI(pattern)},
		{"description": regexI(pattern)},
	}
	return filter
}

// freeTextTerms gathers keywords, specs, features and the usage term,
// deduplicated in order of appearance.
func freeTextTerms(e *model.ExtractedEntities) []string {
	seen := make(map[string]bool)
	var out []string
	add := func(s string) {
		if s != "" && !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	for _, k := range e.Keywords {
		add(k)
	}
	for _, s := range e.Specs {
		add(s)
	}
	for _, f := range e.Features {
		add(f)
	}
	add(e.Usage)
	return out
}

var sizeSpecRe = regexp.MustCompile(`(?i)(\d+)\s*(gb|tb)`)

// ExpandTerms augments search terms with hand-coded alternates so Thai
// category words also hit English product titles, and capacity specs
// match regardless of spacing and case.
func ExpandTerms(terms []string) []string {
	seen := make(map[string]bool)
	var out []string
	add := func(s string) {
		if s != "" && !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}

	for _, term := range terms {
		add(term)
		if strings.Contains(term, "โน้ต") {
			add("laptop")
			add("notebook")
		}
		if strings.Contains(term, "การ์ด") {
			add("card")
			add("vga")
			add("graphics")
		}
		if strings.Contains(term, "คีย์") {
			add("keyboard")
			add("key")
		}
		if strings.Contains(term, "เมาส์") {
			add("mouse")
		}
		for _, m := range sizeSpecRe.FindAllStringSubmatch(term, -1) {
			num, unit := m[1], strings.ToUpper(m[2])
			add(num + unit)
			add(num + " " + unit)
			add(num + strings.ToLower(unit))
		}
	}
	return out
}

// reasonFor renders the Thai search-criteria summary shown alongside
// results.
func reasonFor(e *model.ExtractedEntities) string {
	var reasons []string
	if e.Category != "" {
		reasons = append(reasons, fmt.Sprintf("หมวดหมู่ %s", e.Category))
	}
	if e.Usage != "" {
		reasons = append(reasons, fmt.Sprintf("การใช้งาน %s", e.Usage))
	}
	if e.Budget != nil && e.Budget.Max != nil {
		reasons = append(reasons, fmt.Sprintf("งบประมาณไม่เกิน %s บาท", FormatBaht(*e.Budget.Max)))
	}
	if e.Brand != "" {
		reasons = append(reasons, fmt.Sprintf("แบรนด์ %s", e.Brand))
	}
	if len(e.Specs) > 0 {
		reasons = append(reasons, fmt.Sprintf("สเปค %s", strings.Join(e.Specs, ", ")))
	}
	if len(e.Features) > 0 {
		reasons = append(reasons, fmt.Sprintf("คุณสมบัติ %s", strings.Join(e.Features, ", ")))
	}
	if len(reasons) == 0 {
		return "ค้นหาตามคำค้นหาที่ระบุ"
	}
	return "ค้นหาตาม" + strings.Join(reasons, ", ")
}

// FormatBaht renders an amount with thousands separators, e.g. 15,000.
func FormatBaht(v float64) string {
	s := fmt.Sprintf("%.0f", v)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	for i := len(s) - 3; i > 0; i -= 3 {
		s = s[:i] + "," + s[i:]
	}
	if neg {
		s = "-" + s
	}
	return s
}

func regexI(pattern string) bson.M {
	return bson.M{"$regex": pattern, "$options": "i"}
}

func upperAll(terms []string) []string {
	out := make([]string, len(terms))
	for i, t := range terms {
		out[i] = strings.ToUpper(t)
	}
	return out
}

func alternation(terms []string) string {
	quoted := make([]string, len(terms))
	for i, t := range terms {
		quoted[i] = regexp.QuoteMeta(t)
	}
	return strings.Join(quoted, "|")
}

package service

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"itstore-assistant/internal/model"
	"itstore-assistant/internal/taxonomy"
	"itstore-assistant/internal/utils"
	"itstore-assistant/pkg/logger"
)

// EntityExtractor turns a normalized user message into a structured intent
// record. The primary path asks the completion model for JSON; any failure
// there (service down, unparseable output, invalid values) falls through to
// a deterministic keyword extractor so the caller never sees an error.
type EntityExtractor struct {
	completer Completer
	tax       *taxonomy.Mapper
}

// NewEntityExtractor creates an extractor backed by the given model client.
func NewEntityExtractor(completer Completer, tax *taxonomy.Mapper) *EntityExtractor {
	return &EntityExtractor{completer: completer, tax: tax}
}

// extractionTemperature keeps the model output near-deterministic.
const extractionTemperature = 0.1

// Extract returns the intent entities for a normalized input string.
// The raw input is always present in the returned keywords.
func (e *EntityExtractor) Extract(ctx context.Context, input string) *model.ExtractedEntities {
	if e.completer != nil && e.completer.Enabled() {
		entities, err := e.extractWithModel(ctx, input)
		if err == nil {
			return entities
		}
		logger.Warn("model extraction failed, using fallback",
			zap.String("input", input),
			zap.Error(err))
	}
	return e.extractFallback(input)
}

// extractionResult is the wire shape the model is asked to produce.
type extractionResult struct {
	Category    string        `json:"category"`
	SubCategory string        `json:"subCategory"`
	Usage       string        `json:"usage"`
	Budget      *model.Budget `json:"budget"`
	Brand       string        `json:"brand"`
	Specs       []string      `json:"specs"`
	Features    []string      `json:"features"`
	Keywords    []string      `json:"keywords"`
	Suggestions []string      `json:"suggestions"`
}

func (e *EntityExtractor) extractWithModel(ctx context.Context, input string) (*model.ExtractedEntities, error) {
	raw, err := e.completer.Complete(ctx, e.buildPrompt(input), extractionTemperature)
	if err != nil {
		return nil, fmt.Errorf("completion call failed: %w", err)
	}

	var result extractionResult
	if err := utils.ParseModelJSON(raw, &result); err != nil {
		return nil, fmt.Errorf("unparseable extraction output: %w", err)
	}

	entities := &model.ExtractedEntities{
		Category:    result.Category,
		SubCategory: result.SubCategory,
		Usage:       result.Usage,
		Budget:      result.Budget,
		Brand:       result.Brand,
		Specs:       result.Specs,
		Features:    result.Features,
		Keywords:    result.Keywords,
		Suggestions: result.Suggestions,
	}
	if err := e.validate(entities); err != nil {
		return nil, fmt.Errorf("invalid extraction result: %w", err)
	}

	entities.Keywords = appendUnique(entities.Keywords, input)
	return entities, nil
}

func (e *EntityExtractor) buildPrompt(input string) string {
	cats := e.tax.AllCategories()

	var b strings.Builder
	b.WriteString("คุณคือผู้ช่วยวิเคราะห์ความต้องการสินค้าไอทีของลูกค้า\n\n")
	b.WriteString(fmt.Sprintf("INPUT: %q\n\n", input))
	b.WriteString("หมวดหมู่หลักในระบบ: ")
	b.WriteString(strings.Join(cats.Level1, ", "))
	b.WriteString("\nหมวดหมู่ย่อยในระบบ: ")
	b.WriteString(strings.Join(cats.Level2, ", "))
	b.WriteString("\n\n")
	b.WriteString(`แยกความต้องการของลูกค้าออกมาเป็น JSON ตามโครงสร้างนี้:
{
  "category": "หมวดหมู่หลัก",
  "subCategory": "หมวดหมู่ย่อย",
  "usage": "Gaming|Office|Student|Creative|Programming|Video",
  "budget": {"min": number, "max": number},
  "brand": "แบรนด์",
  "specs": ["รายการสเปค"],
  "features": ["คุณสมบัติ"],
  "keywords": ["คำสำคัญ"],
  "suggestions": ["คำถามเพิ่มเติมหากความต้องการกำกวม"]
}

กติกา:
- "งบ 15000" หรือ "ไม่เกิน 15000" หมายถึง budget.max = 15000
- "เกิน 10000 แต่ไม่ถึง 20000" หมายถึง budget.min = 10000, budget.max = 20000
- ถ้าไม่พบข้อมูลในช่องใด ให้เว้นช่องนั้น
- ใช้ชื่อหมวดหมู่จากรายการด้านบนเท่านั้น

ตัวอย่าง:
INPUT: "โน้ตบุ๊กเล่นเกมงบ 30000"
{"category": "NOTEBOOKS", "subCategory": "Gaming Notebooks", "usage": "Gaming", "budget": {"max": 30000}, "keywords": ["โน้ตบุ๊ก", "เล่นเกม"]}

INPUT: "การ์ดจอ asus ไม่เกิน 15000"
{"category": "COMPUTER HARDWARE (DIY)", "subCategory": "Graphics Cards", "usage": "Gaming", "budget": {"max": 15000}, "brand": "ASUS", "keywords": ["การ์ดจอ"]}

ตอบเฉพาะ JSON เท่านั้น
`)
	return b.String()
}

var validUsages = map[string]bool{
	"Gaming":      true,
	"Office":      true,
	"Student":     true,
	"Creative":    true,
	"Programming": true,
	"Video":       true,
	"":            true,
}

func (e *EntityExtractor) validate(entities *model.ExtractedEntities) error {
	if b := entities.Budget; b != nil {
		if b.Min != nil && *b.Min < 0 {
			return fmt.Errorf("negative budget min")
		}
		if b.Max != nil && *b.Max < 0 {
			return fmt.Errorf("negative budget max")
		}
		if b.Min != nil && b.Max != nil && *b.Min > *b.Max {
			return fmt.Errorf("budget min %.0f above max %.0f", *b.Min, *b.Max)
		}
		if b.Min == nil && b.Max == nil {
			entities.Budget = nil
		}
	}

	if !validUsages[entities.Usage] {
		// Unknown usage values are dropped rather than rejected
		entities.Usage = ""
	}

	// Canonicalize brand spelling through the taxonomy tables
	if entities.Brand != "" {
		if brands := e.tax.BrandTermsFor(entities.Brand); len(brands) > 0 {
			entities.Brand = brands[0]
		}
	}

	return nil
}

// fallbackEntry maps a Thai category keyword to a full default intent.
// Keys are prefixes so both "โน้ตบุ๊ค" and "โน้ตบุ๊ก" spellings match.
type fallbackEntry struct {
	keyword     string
	category    string
	subCategory string
	usage       string
	budget      *model.Budget
	suggestions []string
}

func fallbackTable() []fallbackEntry {
	return []fallbackEntry{
		{
			keyword:     "โน้ตบุ๊",
			category:    "NOTEBOOKS",
			subCategory: "Notebooks",
			usage:       "Student",
			budget:      &model.Budget{Min: floatPtr(10000), Max: floatPtr(30000)},
			suggestions: []string{
				"ใช้งานหลักคือทำงาน เรียน หรือเล่นเกมครับ?",
				"มีงบประมาณที่ตั้งไว้เท่าไหร่ครับ?",
			},
		},
		{
			keyword:     "การ์ดจอ",
			category:    "COMPUTER HARDWARE (DIY)",
			subCategory: "Graphics Cards",
			usage:       "Gaming",
			budget:      &model.Budget{Min: floatPtr(5000), Max: floatPtr(25000)},
			suggestions: []string{
				"เล่นเกมแนวไหนหรือใช้ทำงานกราฟิกครับ?",
				"ความละเอียดจอที่ใช้อยู่เท่าไหร่ครับ?",
			},
		},
		{
			keyword:     "คีย์บอร์ด",
			category:    "KEYBOARD / MOUSE / PEN TABLET",
			subCategory: "Keyboard",
			usage:       "Office",
		},
		{
			keyword:     "เมาส์",
			category:    "KEYBOARD / MOUSE / PEN TABLET",
			subCategory: "Mouse",
			usage:       "Office",
		},
		{
			keyword:     "ซีพียู",
			category:    "COMPUTER HARDWARE (DIY)",
			subCategory: "CPU",
			usage:       "Office",
		},
		{
			keyword:     "หูฟัง",
			category:    "SPEAKER / HEADSET",
			subCategory: "Headphone",
			usage:       "Gaming",
		},
		{
			keyword:     "แรม",
			category:    "COMPUTER HARDWARE (DIY)",
			subCategory: "RAM",
			usage:       "Office",
			budget:      &model.Budget{Min: floatPtr(1000), Max: floatPtr(5000)},
			suggestions: []string{
				"ใช้กับโน้ตบุ๊กหรือคอมประกอบครับ?",
				"ต้องการความจุกี่ GB ครับ?",
			},
		},
	}
}

var numberRe = regexp.MustCompile(`\d+(?:,\d+)*`)

// budgetThreshold separates prices from spec numbers like "16GB".
const budgetThreshold = 1000

// extractFallback is the deterministic path: first matching keyword wins.
func (e *EntityExtractor) extractFallback(input string) *model.ExtractedEntities {
	entities := &model.ExtractedEntities{}

	for _, entry := range fallbackTable() {
		if !strings.Contains(input, entry.keyword) {
			continue
		}
		entities.Category = entry.category
		entities.SubCategory = entry.subCategory
		entities.Usage = entry.usage
		entities.Suggestions = entry.suggestions
		if entry.budget != nil {
			b := *entry.budget
			entities.Budget = &b
		}
		entities.Keywords = append(entities.Keywords, entry.keyword)
		break
	}

	// A standalone number above the threshold reads as a price ceiling
	// and overrides any default budget range.
	if match := numberRe.FindString(input); match != "" {
		if n, err := strconv.Atoi(strings.ReplaceAll(match, ",", "")); err == nil && n > budgetThreshold {
			entities.Budget = &model.Budget{Max: floatPtr(float64(n))}
		}
	}

	// Brand and usage mentions still resolve without the model.
	if brands := e.tax.BrandTermsFor(input); len(brands) > 0 {
		entities.Brand = brands[0]
	}
	if entities.Usage == "" {
		if usages := e.tax.UsageTermsFor(input); len(usages) > 0 {
			entities.Usage = usages[0]
		}
	}

	entities.Keywords = appendUnique(entities.Keywords, input)
	return entities
}

func appendUnique(list []string, s string) []string {
	for _, v := range list {
		if v == s {
			return list
		}
	}
	return append(list, s)
}

func floatPtr(v float64) *float64 { return &v }

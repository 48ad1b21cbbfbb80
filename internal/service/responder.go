package service

import (
	"context"
	"fmt"
	"math"
	"strings"

	"go.uber.org/zap"

	"itstore-assistant/internal/model"
	"itstore-assistant/internal/query"
	"itstore-assistant/pkg/logger"
)

// ResponseComposer turns search results into the chat message shown to
// the user. When the completion model is available it writes the answer;
// otherwise a deterministic Thai template takes over. Either way the
// composer never fails.
type ResponseComposer struct {
	completer Completer
}

// NewResponseComposer creates a composer backed by the given model client.
func NewResponseComposer(completer Completer) *ResponseComposer {
	return &ResponseComposer{completer: completer}
}

const responseTemperature = 0.7

// Compose renders the answer for a result set. An empty set produces an
// apology with actionable suggestions.
func (c *ResponseComposer) Compose(ctx context.Context, userInput string, entities *model.ExtractedEntities, products []model.Product, reason string) string {
	if len(products) == 0 {
		return c.noResultsMessage(entities)
	}

	if c.completer != nil && c.completer.Enabled() {
		text, err := c.completer.Complete(ctx, c.buildPrompt(userInput, entities, products, reason), responseTemperature)
		if err == nil && strings.TrimSpace(text) != "" {
			return strings.TrimSpace(text)
		}
		if err != nil {
			logger.Warn("response composition failed, using template", zap.Error(err))
		}
	}

	return c.templatedMessage(products)
}

func (c *ResponseComposer) buildPrompt(userInput string, entities *model.ExtractedEntities, products []model.Product, reason string) string {
	top := products
	if len(top) > 3 {
		top = top[:3]
	}

	var info strings.Builder
	for i, p := range top {
		info.WriteString(fmt.Sprintf("\n%d. %s\n", i+1, p.Title))
		info.WriteString(fmt.Sprintf("   - ราคา: ฿%s (ราคาเต็ม: ฿%s)\n", query.FormatBaht(p.SalePrice), query.FormatBaht(p.Price)))
		info.WriteString(fmt.Sprintf("   - คะแนน: %.1f/5 (%d รีวิว)\n", p.Rating, p.TotalReviews))
		info.WriteString(fmt.Sprintf("   - ยอดนิยม: %d ครั้งเข้าชม\n", p.ProductView))
		info.WriteString(fmt.Sprintf("   - สต็อก: %d ชิ้น\n", p.StockQuantity))
	}

	return fmt.Sprintf(`คุณคือ AI Sales Assistant ที่เชี่ยวชาญในการแนะนำสินค้าไอทีให้ลูกค้า

User Input: %q
Search Reasoning: %s
Total Results: %d

Top Products Found:%s
User Entities:
- หมวดหมู่: %s
- การใช้งาน: %s
- แบรนด์: %s

Instructions:
1. สร้างการแนะนำที่เป็นธรรมชาติ เหมือนพนักงานขายมืออาชีพ
2. อธิบายว่าทำไมแนะนำสินค้านี้
3. เปรียบเทียบตัวเลือกหากมีหลายตัว
4. ระบุข้อดี: ราคา, คะแนน, ความนิยม, ส่วนลด, สต็อก
5. ใช้ emoji เพื่อให้น่าสนใจ

สร้างการแนะนำที่เป็นธรรมชาติ เป็นกันเอง และมีประโยชน์
`, userInput, reason, len(products), info.String(),
		orUnspecified(entities.Category),
		orUnspecified(entities.Usage),
		orUnspecified(entities.Brand))
}

// templatedMessage highlights the top result without the model.
func (c *ResponseComposer) templatedMessage(products []model.Product) string {
	top := products[0]

	var b strings.Builder
	b.WriteString(fmt.Sprintf("พบสินค้าที่ตรงกับความต้องการ %d รายการ 🛍️\n\n", len(products)))
	b.WriteString(fmt.Sprintf("⭐ แนะนำ: %s\n", top.Title))
	b.WriteString(fmt.Sprintf("💰 ราคา: ฿%s", query.FormatBaht(top.SalePrice)))

	if discount := top.Price - top.SalePrice; discount > 0 {
		percent := int(math.Round(discount / top.Price * 100))
		b.WriteString(fmt.Sprintf(" (ลด %d%% จาก ฿%s)", percent, query.FormatBaht(top.Price)))
	}

	b.WriteString(fmt.Sprintf("\n📦 คงเหลือ: %d ชิ้น", top.StockQuantity))
	b.WriteString(fmt.Sprintf("\n⭐ คะแนน: %.1f/5 (%d รีวิว)", top.Rating, top.TotalReviews))

	if len(products) > 1 {
		b.WriteString(fmt.Sprintf("\n\n📋 ดูสินค้าทั้งหมด %d รายการเพื่อเลือกที่ใช่สำหรับคุณ!", len(products)))
	}
	return b.String()
}

func (c *ResponseComposer) noResultsMessage(entities *model.ExtractedEntities) string {
	var b strings.Builder
	b.WriteString("ขออภัย ไม่พบสินค้าที่ตรงกับความต้องการของคุณ")

	if entities.Category != "" {
		b.WriteString(fmt.Sprintf(" ในหมวด%s", entities.Category))
	}
	if entities.Budget != nil && entities.Budget.Max != nil {
		b.WriteString(fmt.Sprintf(" ในงบ %s บาท", query.FormatBaht(*entities.Budget.Max)))
	}
	if entities.Usage != "" {
		b.WriteString(fmt.Sprintf(" สำหรับ%s", entities.Usage))
	}

	b.WriteString(" 🔍\n\n💡 **ข้อเสนอแนะ:**\n")
	b.WriteString("• ลองค้นหาด้วยคำอื่น หรือขยายงบประมาณ\n")
	b.WriteString("• ลองใช้คำค้นหาที่เฉพาะเจาะจงมากขึ้น\n")
	b.WriteString("• หรือบอกความต้องการใช้งานให้ชัดเจนมากขึ้น")

	for _, s := range entities.Suggestions {
		b.WriteString("\n• " + s)
	}
	return b.String()
}

// ExplainSelection builds the reasoning block for why the top product
// was picked. Returns empty when there is nothing to explain.
func (c *ResponseComposer) ExplainSelection(entities *model.ExtractedEntities, products []model.Product) string {
	if len(products) == 0 {
		return ""
	}

	top := products[0]
	var reasons []string

	if entities.Budget != nil && entities.Budget.Max != nil && top.SalePrice <= *entities.Budget.Max {
		reasons = append(reasons, fmt.Sprintf("✅ ราคาอยู่ในงบ (฿%s)", query.FormatBaht(top.SalePrice)))
	}
	if top.Rating > 4 {
		reasons = append(reasons, fmt.Sprintf("⭐ ได้รีวิวดี (%.1f/5 จาก %d รีวิว)", top.Rating, top.TotalReviews))
	}
	if top.ProductView > 1000 {
		reasons = append(reasons, fmt.Sprintf("🔥 เป็นที่นิยม (%d ครั้งเข้าชม)", top.ProductView))
	}
	if discount := top.Price - top.SalePrice; discount > 0 {
		percent := int(math.Round(discount / top.Price * 100))
		reasons = append(reasons, fmt.Sprintf("💰 มีส่วนลด %d%% (ประหยัด ฿%s)", percent, query.FormatBaht(discount)))
	}
	if top.StockQuantity > 10 {
		reasons = append(reasons, fmt.Sprintf("📦 มีสต็อกเพียงพอ (%d ชิ้น)", top.StockQuantity))
	} else if top.StockQuantity > 0 {
		reasons = append(reasons, fmt.Sprintf("⚠️ สต็อกเหลือน้อย (%d ชิ้น)", top.StockQuantity))
	}
	if entities.Category != "" && categoryMatches(top, entities.Category) {
		reasons = append(reasons, "🎯 ตรงตามหมวดหมู่ที่ต้องการ")
	}
	if len(reasons) == 0 {
		reasons = append(reasons, "📊 อันดับต้นๆ จากการค้นหา")
	}

	return fmt.Sprintf("💭 **ทำไมแนะนำ %q:**\n%s", top.Title, strings.Join(reasons, "\n"))
}

func categoryMatches(p model.Product, category string) bool {
	c := strings.ToLower(category)
	return strings.Contains(strings.ToLower(p.Navigation.CategoryMessage1), c) ||
		strings.Contains(strings.ToLower(p.Navigation.CategoryMessage2), c) ||
		strings.Contains(strings.ToLower(p.Navigation.CategoryMessage3), c)
}

func orUnspecified(s string) string {
	if s == "" {
		return "ไม่ระบุ"
	}
	return s
}

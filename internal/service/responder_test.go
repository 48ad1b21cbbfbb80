package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"itstore-assistant/internal/model"
)

func TestComposeNoResults(t *testing.T) {
	composer := NewResponseComposer(&mockCompleter{enabled: false})

	entities := &model.ExtractedEntities{
		Category:    "NOTEBOOKS",
		Usage:       "Gaming",
		Budget:      &model.Budget{Max: floatPtr(15000)},
		Suggestions: []string{"ลองดูหมวดโน้ตบุ๊กมือสองไหมครับ?"},
	}

	msg := composer.Compose(context.Background(), "โน้ตบุ๊ก", entities, nil, "")

	assert.Contains(t, msg, "ขออภัย ไม่พบสินค้า")
	assert.Contains(t, msg, "ในหมวดNOTEBOOKS")
	assert.Contains(t, msg, "ในงบ 15,000 บาท")
	assert.Contains(t, msg, "ข้อเสนอแนะ")
	assert.Contains(t, msg, "ลองดูหมวดโน้ตบุ๊กมือสองไหมครับ?")
}

func TestComposeTemplatedHighlight(t *testing.T) {
	composer := NewResponseComposer(&mockCompleter{enabled: false})

	products := []model.Product{sampleProduct(), sampleProduct()}
	msg := composer.Compose(context.Background(), "โน้ตบุ๊ก", &model.ExtractedEntities{}, products, "")

	assert.Contains(t, msg, "พบสินค้าที่ตรงกับความต้องการ 2 รายการ")
	assert.Contains(t, msg, "ASUS TUF Gaming F15")
	assert.Contains(t, msg, "฿19,990")
	assert.Contains(t, msg, "ลด 20%")
	assert.Contains(t, msg, "คงเหลือ: 12 ชิ้น")
	assert.Contains(t, msg, "ดูสินค้าทั้งหมด 2 รายการ")
}

func TestComposeUsesModelWhenAvailable(t *testing.T) {
	completer := &mockCompleter{enabled: true, reply: "แนะนำ ASUS TUF ครับ คุ้มมาก 🎮"}
	composer := NewResponseComposer(completer)

	msg := composer.Compose(context.Background(), "โน้ตบุ๊ก", &model.ExtractedEntities{},
		[]model.Product{sampleProduct()}, "ค้นหาตามหมวดหมู่ NOTEBOOKS")

	assert.Equal(t, "แนะนำ ASUS TUF ครับ คุ้มมาก 🎮", msg)
	assert.Equal(t, 1, completer.calls)
}

func TestComposeModelFailureFallsBackToTemplate(t *testing.T) {
	completer := &mockCompleter{enabled: true, err: errors.New("timeout")}
	composer := NewResponseComposer(completer)

	msg := composer.Compose(context.Background(), "โน้ตบุ๊ก", &model.ExtractedEntities{},
		[]model.Product{sampleProduct()}, "")

	assert.Contains(t, msg, "พบสินค้าที่ตรงกับความต้องการ 1 รายการ")
	assert.Contains(t, msg, "ASUS TUF Gaming F15")
}

func TestExplainSelection(t *testing.T) {
	composer := NewResponseComposer(&mockCompleter{})

	entities := &model.ExtractedEntities{
		Category: "NOTEBOOKS",
		Budget:   &model.Budget{Max: floatPtr(20000)},
	}
	reasoning := composer.ExplainSelection(entities, []model.Product{sampleProduct()})

	assert.Contains(t, reasoning, "ทำไมแนะนำ")
	assert.Contains(t, reasoning, "ราคาอยู่ในงบ")
	assert.Contains(t, reasoning, "ได้รีวิวดี")
	assert.Contains(t, reasoning, "เป็นที่นิยม")
	assert.Contains(t, reasoning, "มีส่วนลด 20%")
	assert.Contains(t, reasoning, "มีสต็อกเพียงพอ")
	assert.Contains(t, reasoning, "ตรงตามหมวดหมู่ที่ต้องการ")
}

func TestExplainSelectionEmptyResults(t *testing.T) {
	composer := NewResponseComposer(&mockCompleter{})
	assert.Empty(t, composer.ExplainSelection(&model.ExtractedEntities{}, nil))
}

func TestExplainSelectionLowStock(t *testing.T) {
	composer := NewResponseComposer(&mockCompleter{})

	p := sampleProduct()
	p.StockQuantity = 3
	reasoning := composer.ExplainSelection(&model.ExtractedEntities{}, []model.Product{p})

	assert.Contains(t, reasoning, "สต็อกเหลือน้อย (3 ชิ้น)")
}

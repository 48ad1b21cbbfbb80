// Package taxonomy maps free-form Thai/English shopping terms onto the
// store's three-level navigation taxonomy and canonical brand names.
package taxonomy

import (
	_ "embed"
	"encoding/json"
	"strings"
	"sync"
)

//go:embed navigation_attributes.json
var navigationAttributes []byte

// Categories is a snapshot of the store navigation tree, one slice per level.
type Categories struct {
	Level1 []string `json:"categoryMessage1"`
	Level2 []string `json:"categoryMessage2"`
	Level3 []string `json:"categoryMessage3"`
}

type entry struct {
	term   string
	values []string
}

// Mapper resolves user vocabulary to database category, brand and usage
// terms. Matching is case-insensitive substring containment, deliberately
// without tokenization: Thai text has no word boundaries to split on.
type Mapper struct {
	categories []entry
	brands     []entry
	usages     []entry
	synonyms   [][]string
	snapshot   Categories
}

var (
	defaultMapper *Mapper
	once          sync.Once
)

// Default returns the shared Mapper instance.
func Default() *Mapper {
	once.Do(func() {
		defaultMapper = New()
	})
	return defaultMapper
}

// New builds a Mapper from the built-in term tables and the embedded
// navigation snapshot. A missing or invalid snapshot degrades to empty
// category lists rather than an error.
func New() *Mapper {
	m := &Mapper{
		categories: categoryEntries(),
		brands:     brandEntries(),
		usages:     usageEntries(),
		synonyms:   synonymGroups(),
	}
	_ = json.Unmarshal(navigationAttributes, &m.snapshot)
	return m
}

// CategoryTermsFor returns every database category term whose trigger word
// appears in the input, deduplicated in table order.
func (m *Mapper) CategoryTermsFor(input string) []string {
	return collect(m.categories, input)
}

// BrandTermsFor returns canonical brand names mentioned in the input.
func (m *Mapper) BrandTermsFor(input string) []string {
	return collect(m.brands, input)
}

// UsageTermsFor returns usage/purpose terms mentioned in the input.
func (m *Mapper) UsageTermsFor(input string) []string {
	return collect(m.usages, input)
}

// SynonymsFor returns the spelling-variant group for a category word, used
// to widen a search when exact filters come back empty. Returns nil when
// the word belongs to no known group.
func (m *Mapper) SynonymsFor(word string) []string {
	lower := strings.ToLower(word)
	for _, group := range m.synonyms {
		for _, kw := range group {
			if strings.Contains(lower, strings.ToLower(kw)) {
				return group
			}
		}
	}
	return nil
}

// AllCategories returns the navigation snapshot with empty levels filtered
// out, suitable for prompt context.
func (m *Mapper) AllCategories() Categories {
	return Categories{
		Level1: filterEmpty(m.snapshot.Level1),
		Level2: filterEmpty(m.snapshot.Level2),
		Level3: filterEmpty(m.snapshot.Level3),
	}
}

func collect(entries []entry, input string) []string {
	lower := strings.ToLower(input)
	seen := make(map[string]bool)
	var out []string
	for _, e := range entries {
		if !strings.Contains(lower, e.term) {
			continue
		}
		for _, v := range e.values {
			if !seen[v] {
				seen[v] = true
				out = append(out, v)
			}
		}
	}
	return out
}

func filterEmpty(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Term tables mirror the store's live navigation data. Trigger terms are
// stored lowercase because collect lowercases the input, not the table.

func categoryEntries() []entry {
	notebooks := []string{"NOTEBOOKS", "Notebooks", "Gaming Notebooks", "Ultrathin Notebooks", "2 in 1 Notebooks"}
	keyboards := []string{"KEYBOARD / MOUSE / PEN TABLET", "Keyboard", "Mechanical & Gaming Keyboard", "Wireless Keyboard", "Keyboard & Mouse Combo"}
	mice := []string{"KEYBOARD / MOUSE / PEN TABLET", "Mouse", "Gaming Mouse", "Wireless Mouse"}
	monitors := []string{"MONITOR ", "Monitor"}
	graphics := []string{"COMPUTER HARDWARE (DIY)", "Graphics Cards"}
	cpus := []string{"COMPUTER HARDWARE (DIY)", "CPU"}
	headphones := []string{"SPEAKER / HEADSET", "Headphone", "Headset", "In Ear Headphone", "True Wireless Headphone"}
	mainboards := []string{"COMPUTER HARDWARE (DIY)", "Mainboards"}
	ram := []string{"COMPUTER HARDWARE (DIY)", "RAM", "Notebook RAM (SO-DIMM)"}
	cases := []string{"COMPUTER HARDWARE (DIY)", "Case & Power Supply", "Computer Case"}
	power := []string{"COMPUTER HARDWARE (DIY)", "Case & Power Supply", "Power Supply"}
	hdd := []string{"MEMORY CARD / HARD DRIVE", "Hard Drive & Solid State Drive", "Notebook HDD"}
	ssd := []string{"MEMORY CARD / HARD DRIVE", "Hard Drive & Solid State Drive", "M.2 SSD"}
	speakers := []string{"SPEAKER / HEADSET", "Speaker", "Bluetooth Speaker"}
	webcams := []string{"WEBCAM / CONFERENCE", "Webcam"}
	printers := []string{"PRINTER / INK / TONER / DRUM / SCANNER", "Printer"}
	gamingGear := []string{"GAMING GEAR ", "Gaming Accessories", "Gaming Chair", "Gaming Desk"}

	return []entry{
		{"โน้ตบุ๊ก", notebooks},
		{"laptop", notebooks},
		{"notebook", notebooks},
		{"คีย์บอร์ด", keyboards},
		{"keyboard", keyboards},
		{"เมาส์", mice},
		{"mouse", mice},
		{"จอมอนิเตอร์", monitors},
		{"จอ", monitors},
		{"monitor", monitors},
		{"การ์ดจอ", graphics},
		{"vga", graphics},
		{"graphics", graphics},
		{"ซีพียู", cpus},
		{"cpu", cpus},
		{"processor", cpus},
		{"หูฟัง", headphones},
		{"headphone", headphones},
		{"headset", headphones},
		{"เมนบอร์ด", mainboards},
		{"mainboard", mainboards},
		{"motherboard", mainboards},
		{"แรม", ram},
		{"ram", ram},
		{"memory", ram},
		{"เคส", cases},
		{"case", cases},
		{"พาวเวอร์", power},
		{"power", power},
		{"psu", power},
		{"ฮาร์ดดิสก์", hdd},
		{"hdd", hdd},
		{"harddisk", hdd},
		{"เอสเอสดี", ssd},
		{"ssd", ssd},
		{"สปีกเกอร์", speakers},
		{"speaker", speakers},
		{"เว็บแคม", webcams},
		{"webcam", webcams},
		{"เครื่องพิมพ์", printers},
		{"printer", printers},
		{"เกมมิ่งเกียร์", gamingGear},
		{"gaming", gamingGear},
	}
}

func brandEntries() []entry {
	brands := []string{
		"ASUS", "MSI", "Gigabyte", "Asrock", "Intel", "AMD",
		"Kingston", "Corsair", "Logitech", "Razer", "SteelSeries",
		"HyperX", "Cooler Master", "NZXT", "Thermaltake", "Acer",
		"HP", "Dell", "Lenovo", "Apple", "Samsung", "LG", "AOC",
		"BenQ", "Creative", "JBL", "Sony", "Philips",
		"Keychron", "Ducky", "Glorious", "Fantech", "Redragon",
		"Anker", "Belkin", "TP-Link", "D-Link",
	}

	out := make([]entry, 0, len(brands)+3)
	for _, b := range brands {
		out = append(out, entry{strings.ToLower(b), []string{b}})
	}
	// Thai transliterations of the common brands
	out = append(out,
		entry{"เอซุส", []string{"ASUS"}},
		entry{"เอเอ็มดี", []string{"AMD"}},
		entry{"อินเทล", []string{"Intel"}},
	)
	return out
}

func usageEntries() []entry {
	gaming := []string{"Gaming", "เกมมิ่ง"}
	office := []string{"Office", "Business", "Work"}
	student := []string{"Student", "Education"}
	creative := []string{"Graphics", "Design", "Creative"}
	programming := []string{"Programming", "Developer"}
	video := []string{"Video", "Streaming", "Content Creator"}

	return []entry{
		{"เล่นเกม", gaming},
		{"gaming", gaming},
		{"เกมมิ่ง", gaming},
		{"ทำงาน", office},
		{"work", office},
		{"office", office},
		{"เรียน", student},
		{"student", student},
		{"education", student},
		{"กราฟิก", creative},
		{"design", creative},
		{"creative", creative},
		{"โปรแกรม", programming},
		{"programming", programming},
		{"coding", programming},
		{"วิดีโอ", video},
		{"video", video},
		{"streaming", video},
	}
}

func synonymGroups() [][]string {
	return [][]string{
		{"notebook", "laptop", "โน้ตบุ๊ก", "โน้ตบุ้ค", "โน๊ตบุ๊ค", "โน้ดบุ๊ค", "โนตบุ๊ก", "โน้ต"},
		{"keyboard", "คีย์บอร์ด", "คีบอร์ด", "คีบอด", "คีย์"},
		{"mouse", "เมาส์", "เม้าส์", "เมาท์", "เมาส"},
		// graphics before monitor: "จอ" is a substring of "การ์ดจอ"
		{"vga", "graphics", "การ์ดจอ", "การ์จอ", "กราฟฟิค", "การ์ดกราฟิก", "วีจีเอ", "การ์ด"},
		{"monitor", "display", "จอมอนิเตอร์", "มอนิเตอร์", "จอคอม", "หน้าจอ", "จอ"},
		{"cpu", "processor", "ซีพียู", "โปรเซสเซอร์", "ตัวประมวลผล", "โปรเซส"},
		{"headphone", "headset", "หูฟัง", "เฮดโฟน", "เฮดเซต"},
		{"mainboard", "motherboard", "เมนบอร์ด", "แม่บอร์ด"},
		{"ram", "memory", "แรม", "หน่วยความจำ", "ความจำ"},
		{"case", "casing", "เคส", "เคสคอม"},
		{"power", "psu", "พาวเวอร์", "แหล่งจ่ายไฟ", "จ่ายไฟ"},
		{"hdd", "harddisk", "storage", "ฮาร์ดดิสก์", "ฮาร์ด", "ดิสก์"},
		{"ssd", "solid state", "เอสเอสดี"},
	}
}

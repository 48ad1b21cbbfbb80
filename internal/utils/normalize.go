package utils

import (
	"regexp"
	"strconv"
)

// normalizeRules collapse common Thai misspellings and transliteration
// variants of technical terms into one canonical spelling. Order matters:
// the more specific patterns run before general ones that could otherwise
// re-match already-normalized text.
var normalizeRules = []struct {
	re   *regexp.Regexp
	repl string
}{
	// Notebook variants
	{regexp.MustCompile(`โน้?[ดต๊]บุ๊?[คก]`), "โน้ตบุ๊ก"},
	{regexp.MustCompile(`โนต?บุ[๊ค]+`), "โน้ตบุ๊ก"},
	{regexp.MustCompile(`โน๊ตบุ[๊ค]+`), "โน้ตบุ๊ก"},

	// Graphics card variants
	{regexp.MustCompile(`การ์[จด]อ`), "การ์ดจอ"},
	{regexp.MustCompile(`[วฟ]ีจีเอ`), "การ์ดจอ"},
	{regexp.MustCompile(`กราฟิ?[คกข]`), "การ์ดจอ"},

	// RAM variants
	{regexp.MustCompile(`(?i)\bram\b`), "แรม"},
	{regexp.MustCompile(`(?i)\bmemory\b`), "แรม"},
	{regexp.MustCompile(`หน่วยความจำ`), "แรม"},

	// Peripherals
	{regexp.MustCompile(`เม้าส์`), "เมาส์"},
	{regexp.MustCompile(`คีบอร์ด`), "คีย์บอร์ด"},
	{regexp.MustCompile(`คีบอด`), "คีย์บอร์ด"},

	// CPU variants
	{regexp.MustCompile(`(?i)\bcpu\b`), "ซีพียู"},
	{regexp.MustCompile(`โปรเซสเซอร์`), "ซีพียู"},
	{regexp.MustCompile(`คอมพิ?วเ?ตอร์`), "คอมพิวเตอร์"},
}

// thousandsRe catches shorthand like "15k" meaning 15000.
var thousandsRe = regexp.MustCompile(`(?i)(\d+)k\b`)

// Normalize canonicalizes noisy Thai/English spelling variants of technical
// terms and expands numeric thousand-shorthand. Pure and idempotent:
// Normalize(Normalize(s)) == Normalize(s) for all s.
func Normalize(text string) string {
	out := text
	for _, r := range normalizeRules {
		out = r.re.ReplaceAllString(out, r.repl)
	}
	out = thousandsRe.ReplaceAllStringFunc(out, func(m string) string {
		n, err := strconv.Atoi(m[:len(m)-1])
		if err != nil {
			return m
		}
		return strconv.Itoa(n * 1000)
	})
	return out
}

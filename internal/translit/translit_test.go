package translit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToCyrillic(t *testing.T) {
	tests := []struct {
		latin    string
		cyrillic string
	}{
		{"Toshkent", "Тошкент"},
		{"O'zbekiston", "Ўзбекистон"},
		{"Oʻzbekiston", "Ўзбекистон"},
		{"g'alaba", "ғалаба"},
		{"gʻalaba", "ғалаба"},
		{"Yoshlar", "Ёшлар"},
		{"yo'l", "йўл"},
		{"Yevropa", "Европа"},
		{"ekran", "экран"},
		{"poeziya", "поэзия"},
		{"ma'lumot", "маълумот"},
		{"choy", "чой"},
		{"SHAHAR", "ШАҲАР"},
		{"Qashqadaryo", "Қашқадарё"},
		{"Xorazm viloyati", "Хоразм вилояти"},
		{"Kadrlar bo'limi", "Кадрлар бўлими"},
		{"Hokimlik 2024", "Ҳокимлик 2024"},
		{"Ташкент", "Ташкент"},
		{"'iqtibos'", "'иқтибос'"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.latin, func(t *testing.T) {
			assert.Equal(t, tt.cyrillic, ToCyrillic(tt.latin))
		})
	}
}

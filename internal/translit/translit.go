// Package translit converts Uzbek text from the Latin to the Cyrillic script.
// The dashboard uses it to pre-fill Cyrillic form fields from their Latin
// counterparts.
package translit

import (
	"strings"
	"unicode"
)

var letters = map[rune]string{
	'a': "а", 'b': "б", 'c': "ц", 'd': "д", 'e': "е", 'f': "ф", 'g': "г",
	'h': "ҳ", 'i': "и", 'j': "ж", 'k': "к", 'l': "л", 'm': "м", 'n': "н",
	'o': "о", 'p': "п", 'q': "қ", 'r': "р", 's': "с", 't': "т", 'u': "у",
	'v': "в", 'x': "х", 'y': "й", 'z': "з",
}

func isApostrophe(r rune) bool {
	switch r {
	case '\'', '`', '‘', '’', 'ʻ', 'ʼ':
		return true
	}
	return false
}

func isVowel(r rune) bool {
	return strings.ContainsRune("aeiou", unicode.ToLower(r))
}

// ToCyrillic transliterates s. Characters that are not Uzbek Latin letters
// pass through unchanged.
func ToCyrillic(s string) string {
	runes := []rune(s)
	var b strings.Builder
	b.Grow(len(s))

	for i := 0; i < len(runes); {
		out, n := convertAt(runes, i)
		b.WriteString(out)
		i += n
	}
	return b.String()
}

func convertAt(runes []rune, i int) (string, int) {
	at := func(j int) rune {
		if j < 0 || j >= len(runes) {
			return 0
		}
		return runes[j]
	}

	r := runes[i]
	lower := unicode.ToLower(r)
	next := unicode.ToLower(at(i + 1))
	wordStart := i == 0 || !unicode.IsLetter(at(i-1))

	out, n := "", 1
	switch {
	case lower == 's' && next == 'h':
		out, n = "ш", 2
	case lower == 'c' && next == 'h':
		out, n = "ч", 2
	case lower == 'o' && isApostrophe(next):
		out, n = "ў", 2
	case lower == 'g' && isApostrophe(next):
		out, n = "ғ", 2
	case lower == 'y' && next == 'o' && !isApostrophe(at(i+2)):
		out, n = "ё", 2
	case lower == 'y' && next == 'u':
		out, n = "ю", 2
	case lower == 'y' && next == 'a':
		out, n = "я", 2
	case lower == 'y' && next == 'e' && wordStart:
		out, n = "е", 2
	case lower == 'e' && (wordStart || isVowel(at(i-1))):
		out = "э"
	case isApostrophe(r):
		if unicode.IsLetter(at(i-1)) && unicode.IsLetter(at(i+1)) {
			return "ъ", 1
		}
		return string(r), 1
	default:
		mapped, ok := letters[lower]
		if !ok {
			return string(r), 1
		}
		out = mapped
	}

	if unicode.IsUpper(r) {
		out = strings.ToUpper(out)
	}
	return out, n
}

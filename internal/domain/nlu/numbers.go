package nlu

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Word-numeral tables. Units accumulate, "hundred" scales the accumulator
// in place, major magnitudes flush it into the running total.
var unitWords = map[Language]map[string]int64{
	LangRussian: {
		"один": 1, "одна": 1, "два": 2, "две": 2, "три": 3, "четыре": 4, "пять": 5,
		"шесть": 6, "семь": 7, "восемь": 8, "девять": 9, "десять": 10,
	},
	LangUzbek: {
		"bir": 1, "ikki": 2, "uch": 3, "toʻrt": 4, "tort": 4, "besh": 5,
		"olti": 6, "yetti": 7, "sakkiz": 8, "toʻqqiz": 9, "toqqiz": 9, "oʻn": 10, "on": 10,
	},
	LangEnglish: {
		"one": 1, "two": 2, "three": 3, "four": 4, "five": 5,
		"six": 6, "seven": 7, "eight": 8, "nine": 9, "ten": 10,
	},
}

var hundredWords = map[Language]map[string]bool{
	LangRussian: {"сто": true},
	LangUzbek:   {"yuz": true},
	LangEnglish: {"hundred": true},
}

var magnitudeWords = map[Language]map[string]int64{
	LangRussian: {
		"тысяча": 1_000, "тысячи": 1_000, "тысяч": 1_000,
		"миллион": 1_000_000, "миллиона": 1_000_000, "миллионов": 1_000_000,
		"миллиард": 1_000_000_000, "миллиарда": 1_000_000_000, "миллиардов": 1_000_000_000,
	},
	LangUzbek: {
		"ming": 1_000, "million": 1_000_000, "milliard": 1_000_000_000,
	},
	LangEnglish: {
		"thousand": 1_000, "million": 1_000_000, "billion": 1_000_000_000,
	},
}

// WordsToNumber converts spelled-out numerals in normalized text to a
// value: "two thousand five hundred" -> 2500, "пять тысяч" -> 5000. A lone
// magnitude word counts as one of that magnitude, and a bare integer token
// feeds the accumulator, so "5 тысяч" is 5000. Returns false when the text
// contains no number words of the given language; digits alone never count
// as words.
func WordsToNumber(text string, lang Language) (decimal.Decimal, bool) {
	units, ok := unitWords[lang]
	if !ok {
		return decimal.Zero, false
	}
	hundreds := hundredWords[lang]
	magnitudes := magnitudeWords[lang]

	var total, acc int64
	found := false

	for _, tok := range strings.Fields(text) {
		if v, err := strconv.ParseInt(tok, 10, 64); err == nil {
			acc += v
			continue
		}
		if v, ok := units[tok]; ok {
			acc += v
			found = true
			continue
		}
		if hundreds[tok] {
			if acc == 0 {
				acc = 1
			}
			acc *= 100
			found = true
			continue
		}
		if mag, ok := magnitudes[tok]; ok {
			if acc == 0 {
				acc = 1
			}
			total += acc * mag
			acc = 0
			found = true
		}
	}

	if !found {
		return decimal.Zero, false
	}
	return decimal.NewFromInt(total + acc), true
}

// ContainsNumberWords reports whether any word-numeral of the language
// occurs in the text.
func ContainsNumberWords(text string, lang Language) bool {
	_, ok := WordsToNumber(text, lang)
	return ok
}

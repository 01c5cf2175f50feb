package nlu

import "regexp"

// pattern pairs a compiled regex with its source so callers can report
// which template fired.
type pattern struct {
	src string
	re  *regexp.Regexp
}

func p(src string) pattern {
	return pattern{src: src, re: regexp.MustCompile(`(?i)` + src)}
}

// patternGroup binds one intent to its per-language pattern lists.
// Groups are matched in declaration order, patterns in list order; the
// first hit wins.
type patternGroup struct {
	intent   Intent
	patterns map[Language][]pattern
}

// Shared fragments for the base command templates. The amount group
// tolerates digit grouping and a two-digit decimal part; the money
// suffixes are optional so "потратил 5000" still parses.
const (
	numGroup = `(\d+(?:[\s,]\d{3})*(?:[.,]\d{2})?)`
	ruMoney  = `\s*(?:сум|руб|₽|тысяч?|рублей?)?`
	uzMoney  = `\s*(?:som|ming)?`
	enMoney  = `\s*(?:sum|dollars?|usd)?`
)

// basePatterns are the always-on command templates. Declaration order is
// the resolution priority: category creation outranks expense capture so
// "добавь категорию продукты" never parses as an expense.
var basePatterns = []patternGroup{
	{
		intent: IntentCreateCategory,
		patterns: map[Language][]pattern{
			LangRussian: {
				p(`создай(?:\s+новую)?\s+категорию\s+(.+)`),
				p(`добавь\s+категорию\s+(.+)`),
				p(`новая\s+категория\s+(.+)`),
				p(`создать\s+категорию\s+(.+)`),
			},
			LangUzbek: {
				p(`yangi\s+kategoriya\s+(.+)\s+yarat`),
				p(`(.+)\s+kategoriyasini\s+yarat`),
				p(`kategoriya\s+(.+)\s+qoʻsh`),
				p(`(.+)\s+kategoriya\s+qoʻsh`),
			},
			LangEnglish: {
				p(`create\s+(?:new\s+)?category\s+(.+)`),
				p(`add\s+category\s+(.+)`),
				p(`new\s+category\s+(.+)`),
				p(`make\s+category\s+(.+)`),
			},
		},
	},
	{
		intent: IntentAddExpense,
		patterns: map[Language][]pattern{
			LangRussian: {
				p(`добавь(?:\s+в)?\s+расходы?\s+(.+?)\s+` + numGroup + ruMoney),
				p(`потратил(?:\s+на)?\s+(.+?)\s+` + numGroup + ruMoney),
				p(`купил\s+(.+?)\s+(?:за\s+)?` + numGroup + ruMoney),
				p(`заплатил\s+(?:за\s+)?(.+?)\s+` + numGroup + ruMoney),
				p(`(.+?)\s+(?:стоил[оа]?|обошел[лс]ся|стоит)\s+` + numGroup + ruMoney),
			},
			LangUzbek: {
				p(`(.+?)\s+uchun\s+` + numGroup + uzMoney + `\s+sarfladim`),
				p(`(.+?)ga\s+` + numGroup + uzMoney + `\s+toʻladim`),
				p(`(.+?)\s+sotib\s+oldim\s+` + numGroup + uzMoney),
				p(`xarajat\s+(.+?)\s+` + numGroup + uzMoney),
			},
			LangEnglish: {
				p(`(?:add\s+expense|spent)\s+(.+?)\s+` + numGroup + enMoney),
				p(`bought\s+(.+?)\s+(?:for\s+)?` + numGroup + enMoney),
				p(`paid\s+(.+?)\s+` + numGroup + enMoney),
				p(`(.+?)\s+cost\s+` + numGroup + enMoney),
			},
		},
	},
	{
		intent: IntentShowBalance,
		patterns: map[Language][]pattern{
			LangRussian: {
				p(`покажи\s+(?:мой\s+)?баланс`),
				p(`сколько\s+(?:у\s+меня\s+)?денег`),
				p(`мой\s+баланс`),
				p(`показать\s+баланс`),
				p(`какой\s+(?:у\s+меня\s+)?баланс`),
			},
			LangUzbek: {
				p(`balansimni\s+koʻrsat`),
				p(`mening\s+balansim`),
				p(`qancha\s+pulim\s+bor`),
				p(`balans\s+koʻrsat`),
			},
			LangEnglish: {
				p(`show\s+(?:my\s+)?balance`),
				p(`what(?:'s|s)\s+my\s+balance`),
				p(`how\s+much\s+money`),
				p(`my\s+balance`),
				p(`check\s+balance`),
			},
		},
	},
	{
		intent: IntentDeleteCategory,
		patterns: map[Language][]pattern{
			LangRussian: {
				p(`удали\s+категорию\s+(.+)`),
				p(`убери\s+категорию\s+(.+)`),
				p(`удалить\s+категорию\s+(.+)`),
				p(`категорию\s+(.+)\s+удали`),
			},
			LangUzbek: {
				p(`(.+)\s+kategoriyasini\s+oʻchir`),
				p(`kategoriya\s+(.+)\s+oʻchir`),
				p(`(.+)\s+kategoriya\s+oʻchir`),
			},
			LangEnglish: {
				p(`delete\s+category\s+(.+)`),
				p(`remove\s+category\s+(.+)`),
				p(`category\s+(.+)\s+delete`),
			},
		},
	},
	{
		intent: IntentManageDebt,
		patterns: map[Language][]pattern{
			LangRussian: {
				p(`кто\s+(?:мне\s+)?должен`),
				p(`мои\s+долги`),
				p(`покажи\s+долги`),
				p(`кому\s+(?:я\s+)?должен`),
				p(`(?:долг|долги)\s+(.+?)\s+` + numGroup + ruMoney),
			},
			LangUzbek: {
				p(`kim\s+menga\s+qarzdor`),
				p(`mening\s+qarzlarim`),
				p(`qarzlarni\s+koʻrsat`),
				p(`kimga\s+qarzman`),
			},
			LangEnglish: {
				p(`who\s+owes\s+me`),
				p(`my\s+debts`),
				p(`show\s+debts`),
				p(`who\s+(?:do\s+)?i\s+owe`),
			},
		},
	},
	{
		intent: IntentShowStats,
		patterns: map[Language][]pattern{
			LangRussian: {
				p(`покажи\s+статистику`),
				p(`мои\s+расходы`),
				p(`статистика\s+(?:по\s+)?расходам`),
				p(`отчет\s+(?:по\s+)?тратам`),
				p(`анализ\s+расходов`),
			},
			LangUzbek: {
				p(`statistikani\s+koʻrsat`),
				p(`mening\s+xarajatlarim`),
				p(`xarajatlar\s+statistikasi`),
				p(`hisobot`),
			},
			LangEnglish: {
				p(`show\s+(?:me\s+)?stats`),
				p(`my\s+expenses`),
				p(`expense\s+statistics`),
				p(`spending\s+report`),
				p(`analysis`),
			},
		},
	},
}

package nlu

import "regexp"

// px compiles an extended template without the case-insensitive flag:
// extended matching runs on normalized (already lowercased) text.
func px(src string) pattern {
	return pattern{src: src, re: regexp.MustCompile(src)}
}

// Money suffixes for the extended templates. Unlike the base set these
// admit dollar words, since goals and debts are often quoted in USD.
const (
	ruMoneyX = `\s*(?:сум|руб|₽|долларов?)?`
	uzMoneyX = `\s*(?:som|dollar)?`
	enMoneyX = `\s*(?:sum|dollars?)?`
)

// extendedPatterns cover the long tail of commands: goals, income
// sources, settings, reminders, analytics and debts. They are consulted
// before the base set and only for the user's declared language, so a
// specific phrasing always beats a generic one.
var extendedPatterns = []patternGroup{
	{
		intent: IntentCreateGoal,
		patterns: map[Language][]pattern{
			LangRussian: {
				px(`создай цель (?:накопить|собрать)\s+` + numGroup + ruMoneyX + `\s+на\s+(.+?)(?:\s+до\s+(.+))?`),
				px(`новая цель\s+(.+?)\s+` + numGroup + ruMoneyX + `(?:\s+до\s+(.+))?`),
				px(`хочу накопить\s+` + numGroup + ruMoneyX + `\s+на\s+(.+?)(?:\s+к\s+(.+))?`),
				px(`поставь цель\s+(.+?)\s+` + numGroup + ruMoneyX),
			},
			LangUzbek: {
				px(`(.+?)\s+uchun\s+` + numGroup + uzMoneyX + `\s+maqsad\s+qoʻy`),
				px(`maqsad\s+yarat\s+(.+?)\s+` + numGroup + uzMoneyX),
				px(numGroup + uzMoneyX + `\s+(.+?)\s+uchun\s+jamʻlash`),
			},
			LangEnglish: {
				px(`create goal (?:to save|for)\s+` + numGroup + enMoneyX + `\s+(?:for|to)\s+(.+?)(?:\s+by\s+(.+))?`),
				px(`set goal\s+(.+?)\s+` + numGroup + enMoneyX),
				px(`save\s+` + numGroup + enMoneyX + `\s+for\s+(.+)`),
			},
		},
	},
	{
		intent: IntentManageGoals,
		patterns: map[Language][]pattern{
			LangRussian: {
				px(`покажи (?:мои\s+)?цели`),
				px(`добавь\s+` + numGroup + ruMoneyX + `\s+к цели\s+(.+)`),
				px(`пополни цель\s+(.+?)\s+на\s+` + numGroup + ruMoneyX),
				px(`удали цель\s+(.+)`),
				px(`закрой цель\s+(.+)`),
				px(`приостанови цель\s+(.+)`),
				px(`возобнови цель\s+(.+)`),
				px(`сколько осталось (?:до цели\s+)?(.+)`),
				px(`прогресс цели\s+(.+)`),
			},
			LangUzbek: {
				px(`maqsadlarimni\s+koʻrsat`),
				px(`(.+?)\s+maqsadiga\s+` + numGroup + uzMoneyX + `\s+qoʻsh`),
				px(`(.+?)\s+maqsadni\s+oʻchir`),
				px(`(.+?)\s+maqsad\s+jarayoni`),
			},
			LangEnglish: {
				px(`show (?:my\s+)?goals`),
				px(`add\s+` + numGroup + enMoneyX + `\s+to goal\s+(.+)`),
				px(`delete goal\s+(.+)`),
				px(`goal progress\s+(.+)`),
			},
		},
	},
	{
		intent: IntentCreateSource,
		patterns: map[Language][]pattern{
			LangRussian: {
				px(`создай источник (?:дохода\s+)?(.+)`),
				px(`новый источник\s+(.+)`),
				px(`добавь источник\s+(.+)`),
				px(`источник\s+(.+)\s+создай`),
			},
			LangUzbek: {
				px(`(.+?)\s+manba\s+yarat`),
				px(`yangi manba\s+(.+)`),
				px(`daromad manbasi\s+(.+)`),
			},
			LangEnglish: {
				px(`create (?:income\s+)?source\s+(.+)`),
				px(`new source\s+(.+)`),
				px(`add source\s+(.+)`),
			},
		},
	},
	{
		intent: IntentManageSources,
		patterns: map[Language][]pattern{
			LangRussian: {
				px(`покажи (?:мои\s+)?источники (?:доходов?)?`),
				px(`удали источник\s+(.+)`),
				px(`переименуй источник\s+(.+?)\s+в\s+(.+)`),
				px(`источники доходов`),
			},
			LangUzbek: {
				px(`manbalarni\s+koʻrsat`),
				px(`(.+?)\s+manbani\s+oʻchir`),
				px(`daromad manbalari`),
			},
			LangEnglish: {
				px(`show (?:my\s+)?(?:income\s+)?sources`),
				px(`delete source\s+(.+)`),
				px(`income sources`),
			},
		},
	},
	{
		intent: IntentAddIncome,
		patterns: map[Language][]pattern{
			LangRussian: {
				px(`добавь доход\s+` + numGroup + ruMoneyX + `\s+(?:с|от|из)\s+(.+)`),
				px(`получил\s+` + numGroup + ruMoneyX + `\s+(?:с|от|из)\s+(.+)`),
				px(`доход\s+` + numGroup + ruMoneyX + `\s+(.+)`),
				px(`пришло\s+` + numGroup + ruMoneyX + `\s+(?:с|от)\s+(.+)`),
			},
			LangUzbek: {
				px(`(.+?)\s+dan\s+` + numGroup + uzMoneyX + `\s+daromad\s+qoʻsh`),
				px(numGroup + uzMoneyX + `\s+(.+?)\s+dan\s+oldim`),
				px(`daromad\s+` + numGroup + uzMoneyX + `\s+(.+)`),
			},
			LangEnglish: {
				px(`add income\s+` + numGroup + enMoneyX + `\s+from\s+(.+)`),
				px(`received\s+` + numGroup + enMoneyX + `\s+from\s+(.+)`),
				px(`income\s+` + numGroup + enMoneyX + `\s+(.+)`),
			},
		},
	},
	{
		intent: IntentChangeCurrency,
		patterns: map[Language][]pattern{
			LangRussian: {
				px(`смени валюту на\s+(.+)`),
				px(`поменяй валюту на\s+(.+)`),
				px(`валюта\s+(.+)`),
				px(`установи валюту\s+(.+)`),
				px(`поставь валюту\s+(.+)`),
			},
			LangUzbek: {
				px(`valyutani\s+(.+?)ga\s+oʻzgartir`),
				px(`(.+?)\s+valyuta\s+qoʻy`),
				px(`valyuta\s+(.+)`),
			},
			LangEnglish: {
				px(`change currency to\s+(.+)`),
				px(`set currency\s+(.+)`),
				px(`currency\s+(.+)`),
			},
		},
	},
	{
		intent: IntentChangeLanguage,
		patterns: map[Language][]pattern{
			LangRussian: {
				px(`поменяй язык на\s+(.+)`),
				px(`смени язык на\s+(.+)`),
				px(`язык\s+(.+)`),
				px(`переключи на\s+(.+?)\s+язык`),
			},
			LangUzbek: {
				px(`tilni\s+(.+?)ga\s+oʻzgartir`),
				px(`(.+?)\s+tilga\s+oʻt`),
				px(`til\s+(.+)`),
			},
			LangEnglish: {
				px(`change language to\s+(.+)`),
				px(`switch to\s+(.+)`),
				px(`language\s+(.+)`),
			},
		},
	},
	{
		intent: IntentManageNotifications,
		patterns: map[Language][]pattern{
			LangRussian: {
				px(`(?:включи|отключи)\s+уведомления\s+(?:о|про)\s+(.+)`),
				px(`(?:включить|отключить)\s+напоминания\s+(?:о|про)\s+(.+)`),
				px(`уведомления\s+(.+?)\s+(включи|отключи)`),
				px(`настрой уведомления`),
				px(`покажи настройки уведомлений`),
			},
			LangUzbek: {
				px(`(.+?)\s+haqida\s+bildirishnomalarni\s+(yoq|yoqish)`),
				px(`bildirishnomalar\s+sozlamalari`),
			},
			LangEnglish: {
				px(`(?:enable|disable)\s+notifications?\s+(?:for|about)\s+(.+)`),
				px(`notification settings`),
				px(`turn\s+(on|off)\s+(.+?)\s+notifications?`),
			},
		},
	},
	{
		intent: IntentCreateReminder,
		patterns: map[Language][]pattern{
			LangRussian: {
				px(`создай напоминание\s+(.+?)\s+на\s+(.+)`),
				px(`напомни\s+(.+?)\s+(?:через|в|на)\s+(.+)`),
				px(`поставь напоминание\s+(.+?)\s+(?:на|в)\s+(.+)`),
				px(`добавь напоминание\s+(.+)`),
				px(`не забыть\s+(.+?)\s+(?:на|в)\s+(.+)`),
			},
			LangUzbek: {
				px(`(.+?)\s+haqida\s+(.+?)da\s+eslatma\s+qoʻy`),
				px(`(.+?)\s+ni\s+(.+?)\s+eslatib\s+tur`),
				px(`eslatma\s+yarat\s+(.+)`),
			},
			LangEnglish: {
				px(`create reminder\s+(.+?)\s+(?:for|on)\s+(.+)`),
				px(`remind me\s+(.+?)\s+(?:in|on|at)\s+(.+)`),
				px(`set reminder\s+(.+)`),
			},
		},
	},
	{
		intent: IntentManageReminders,
		patterns: map[Language][]pattern{
			LangRussian: {
				px(`покажи (?:мои\s+)?напоминания`),
				px(`удали напоминание\s+(.+)`),
				px(`отложи напоминание\s+(.+?)\s+на\s+(.+)`),
				px(`выполнено напоминание\s+(.+)`),
				px(`активные напоминания`),
			},
			LangUzbek: {
				px(`eslatmalarimni\s+koʻrsat`),
				px(`(.+?)\s+eslatmani\s+oʻchir`),
				px(`faol eslatmalar`),
			},
			LangEnglish: {
				px(`show (?:my\s+)?reminders`),
				px(`delete reminder\s+(.+)`),
				px(`active reminders`),
			},
		},
	},
	{
		intent: IntentTimeAnalytics,
		patterns: map[Language][]pattern{
			LangRussian: {
				px(`покажи расходы за\s+(.+)`),
				px(`сколько потратил (?:на\s+(.+?)\s+)?за\s+(.+)`),
				px(`расходы (?:по\s+(.+?)\s+)?за\s+(.+)`),
				px(`доходы за\s+(.+)`),
				px(`статистика за\s+(.+)`),
				px(`отчет за\s+(.+)`),
				px(`траты (?:на\s+(.+?)\s+)?в\s+(.+)`),
				px(`анализ расходов за\s+(.+)`),
			},
			LangUzbek: {
				px(`(.+?)\s+davridagi\s+xarajatlarni\s+koʻrsat`),
				px(`(.+?)\s+uchun\s+qancha\s+sarfladim`),
				px(`(.+?)\s+statistikasi`),
				px(`(.+?)\s+hisoboti`),
			},
			LangEnglish: {
				px(`show expenses for\s+(.+)`),
				px(`how much (?:did i spend|spent)\s+(?:on\s+(.+?)\s+)?(?:in|for|during)\s+(.+)`),
				px(`expenses for\s+(.+)`),
				px(`report for\s+(.+)`),
				px(`analytics for\s+(.+)`),
			},
		},
	},
	{
		intent: IntentCategoryAnalytics,
		patterns: map[Language][]pattern{
			LangRussian: {
				px(`статистика по категории\s+(.+)`),
				px(`расходы по\s+(.+)`),
				px(`сколько трачу на\s+(.+)`),
				px(`анализ категории\s+(.+)`),
				px(`топ категорий (?:по\s+(.+))?`),
				px(`самые затратные категории`),
			},
			LangUzbek: {
				px(`(.+?)\s+kategoriya\s+statistikasi`),
				px(`(.+?)ga\s+qancha\s+sarflayapman`),
				px(`eng\s+koʻp\s+sarflanadigan\s+kategoriyalar`),
			},
			LangEnglish: {
				px(`category statistics\s+(.+)`),
				px(`expenses (?:for|on)\s+(.+)`),
				px(`how much (?:do i spend|am i spending)\s+on\s+(.+)`),
				px(`top categories`),
				px(`most expensive categories`),
			},
		},
	},
	{
		intent: IntentComparisonAnalytics,
		patterns: map[Language][]pattern{
			LangRussian: {
				px(`сравни расходы\s+(.+?)\s+и\s+(.+)`),
				px(`что дороже\s+(.+?)\s+или\s+(.+)`),
				px(`сравнение (?:за\s+)?(.+?)\s+(?:и|с)\s+(.+)`),
				px(`динамика расходов`),
				px(`тренд (?:по\s+)?(.+)`),
			},
			LangUzbek: {
				px(`(.+?)\s+va\s+(.+?)\s+xarajatlarni\s+solishtir`),
				px(`xarajatlar\s+dinamikasi`),
			},
			LangEnglish: {
				px(`compare expenses\s+(.+?)\s+(?:and|with)\s+(.+)`),
				px(`what(?:'s| is)\s+more expensive\s+(.+?)\s+or\s+(.+)`),
				px(`expense trend`),
			},
		},
	},
	{
		intent: IntentCreateDebt,
		patterns: map[Language][]pattern{
			LangRussian: {
				px(`добавь долг\s+(.+?)\s+` + numGroup + ruMoneyX + `\s+до\s+(.+)`),
				px(`дал в долг\s+(.+?)\s+` + numGroup + ruMoneyX + `(?:\s+до\s+(.+))?`),
				px(`взял в долг\s+у\s+(.+?)\s+` + numGroup + ruMoneyX + `(?:\s+до\s+(.+))?`),
				px(`одолжил\s+(.+?)\s+` + numGroup + ruMoneyX),
				px(`занял у\s+(.+?)\s+` + numGroup + ruMoneyX),
			},
			LangUzbek: {
				px(`(.+?)ga\s+` + numGroup + uzMoneyX + `\s+qarz\s+berdim`),
				px(`(.+?)dan\s+` + numGroup + uzMoneyX + `\s+qarz\s+oldim`),
				px(`qarz\s+(.+?)\s+` + numGroup + uzMoneyX),
			},
			LangEnglish: {
				px(`lent\s+(.+?)\s+` + numGroup + enMoneyX + `(?:\s+until\s+(.+))?`),
				px(`borrowed\s+` + numGroup + enMoneyX + `\s+from\s+(.+?)(?:\s+until\s+(.+))?`),
				px(`add debt\s+(.+?)\s+` + numGroup + enMoneyX),
			},
		},
	},
	{
		intent: IntentManageDebts,
		patterns: map[Language][]pattern{
			LangRussian: {
				px(`покажи (?:кто|что)\s+(?:мне\s+)?должен`),
				px(`кому (?:я\s+)?должен`),
				px(`мои долги`),
				px(`верни долг\s+(.+?)\s+(?:частично\s+)?` + numGroup + ruMoneyX),
				px(`вернул долг\s+(.+)`),
				px(`закрой долг (?:с|у)\s+(.+)`),
				px(`просроченные долги`),
				px(`долг\s+(.+?)\s+погашен`),
			},
			LangUzbek: {
				px(`kim\s+menga\s+qarzdor`),
				px(`kimga\s+qarzman`),
				px(`mening\s+qarzlarim`),
				px(`(.+?)ga\s+qarzni\s+(?:qisman\s+)?` + numGroup + uzMoneyX + `\s+qaytardim`),
				px(`(.+?)\s+bilan\s+qarzni\s+yop`),
				px(`muddati\s+oʻtgan\s+qarzlar`),
			},
			LangEnglish: {
				px(`who owes me`),
				px(`who (?:do\s+)?i owe`),
				px(`my debts`),
				px(`(?:partially\s+)?(?:paid back|returned)\s+(.+?)\s+` + numGroup + enMoneyX),
				px(`close debt (?:with|to)\s+(.+)`),
				px(`overdue debts`),
			},
		},
	},
}

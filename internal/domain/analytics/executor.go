// Package analytics executes the reporting commands: period summaries,
// category rankings and details, comparisons and spending trends. The
// same store also feeds the CSV and Excel exports.
package analytics

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ovozpay/nlu-engine/internal/domain/command"
	"github.com/ovozpay/nlu-engine/internal/domain/nlu"
)

const dateLayout = "02.01.2006"

var messages = command.Messages{
	nlu.LangRussian: {
		"period_report":                 "Аналитика за период {period}:\n💸 Расходы: {expenses}\n💰 Доходы: {incomes}\n📊 Баланс: {balance}",
		"period_report_category":        "Аналитика за период {period} по категории '{category}':\n💸 Расходы: {expenses}\n💰 Доходы: {incomes}\n📊 Баланс: {balance}",
		"top_header":                    "🏆 Топ категорий за период {period}:",
		"category_details":              "📊 Детальная аналитика по категории '{name}':\n• Текущий месяц: {month_total} ({month_count} транзакций)\n• Прошлый месяц: {last_total} ({last_count} транзакций)\n• За год: {year_total}",
		"uncategorized":                 "без категории",
		"category_not_found":            `Категория "{name}" не найдена`,
		"no_expenses_in_period":         "Нет расходов за указанный период",
		"compare_categories":            "⚖️ Сравнение категорий за текущий месяц:\n'{name1}': {total1}\n'{name2}': {total2}\nРазница: {diff}",
		"compare_periods":               "⚖️ Сравнение периодов:\n{period1}: {total1}\n{period2}: {total2}\nРазница: {diff}",
		"trend_report":                  "📈 Анализ трендов:\nТренд: {trend}",
		"trend_report_percent":          "📈 Анализ трендов:\nТренд: {trend} ({percent}%)",
		"trend_report_category":         "📈 Анализ трендов по категории '{category}':\nТренд: {trend}",
		"trend_report_category_percent": "📈 Анализ трендов по категории '{category}':\nТренд: {trend} ({percent}%)",
		"trend_rising":                  "растет",
		"trend_falling":                 "снижается",
		"trend_insufficient":            "недостаточно данных",
		"time_not_understood":           "Не удалось распознать команду временной аналитики",
		"category_not_understood":       "Не удалось распознать команду аналитики категорий",
		"compare_items_not_recognized":  "Не удалось распознать элементы для сравнения",
	},
	nlu.LangUzbek: {
		"period_report":                 "{period} davr uchun analitika:\n💸 Xarajatlar: {expenses}\n💰 Daromadlar: {incomes}",
		"period_report_category":        "{period} davr uchun analitika '{category}' kategoriyasi boʻyicha:\n💸 Xarajatlar: {expenses}\n💰 Daromadlar: {incomes}",
		"top_header":                    "🏆 {period} davr uchun top kategoriyalar:",
		"category_details":              "📊 '{name}' kategoriyasi boʻyicha batafsil analitika:\n• Joriy oy: {month_total} ({month_count} ta tranzaksiya)\n• Oʻtgan oy: {last_total} ({last_count} ta tranzaksiya)",
		"uncategorized":                 "kategoriyasiz",
		"category_not_found":            `"{name}" kategoriyasi topilmadi`,
		"no_expenses_in_period":         "Belgilangan davr uchun xarajatlar yoʻq",
		"compare_categories":            "⚖️ Joriy oy uchun kategoriyalar taqqoslashi:\n'{name1}': {total1}\n'{name2}': {total2}\nFarq: {diff}",
		"compare_periods":               "⚖️ Davrlar taqqoslashi:\n{period1}: {total1}\n{period2}: {total2}\nFarq: {diff}",
		"trend_report":                  "📈 Trend tahlili:\nTrend: {trend}",
		"trend_report_percent":          "📈 Trend tahlili:\nTrend: {trend}",
		"trend_report_category":         "📈 Trend tahlili '{category}' kategoriyasi uchun:\nTrend: {trend}",
		"trend_report_category_percent": "📈 Trend tahlili '{category}' kategoriyasi uchun:\nTrend: {trend}",
		"trend_rising":                  "oʻsmoqda",
		"trend_falling":                 "kamaymoqda",
		"trend_insufficient":            "maʼlumot yetarli emas",
		"time_not_understood":           "Vaqt analitikasi buyrugʻini aniqlab boʻlmadi",
		"category_not_understood":       "Kategoriya analitikasi buyrugʻini aniqlab boʻlmadi",
		"compare_items_not_recognized":  "Taqqoslash elementlarini aniqlab boʻlmadi",
	},
	nlu.LangEnglish: {
		"period_report":                 "Analytics for period {period}:\n💸 Expenses: {expenses}\n💰 Income: {incomes}",
		"period_report_category":        "Analytics for period {period} for category '{category}':\n💸 Expenses: {expenses}\n💰 Income: {incomes}",
		"top_header":                    "🏆 Top categories for {period}:",
		"category_details":              "📊 Detailed analytics for category '{name}':\n• Current month: {month_total} ({month_count} transactions)\n• Last month: {last_total} ({last_count} transactions)",
		"uncategorized":                 "uncategorized",
		"category_not_found":            `Category "{name}" not found`,
		"no_expenses_in_period":         "No expenses for the specified period",
		"compare_categories":            "⚖️ Category comparison for the current month:\n'{name1}': {total1}\n'{name2}': {total2}\nDifference: {diff}",
		"compare_periods":               "⚖️ Period comparison:\n{period1}: {total1}\n{period2}: {total2}\nDifference: {diff}",
		"trend_report":                  "📈 Trend analysis:\nTrend: {trend}",
		"trend_report_percent":          "📈 Trend analysis:\nTrend: {trend}",
		"trend_report_category":         "📈 Trend analysis for category '{category}':\nTrend: {trend}",
		"trend_report_category_percent": "📈 Trend analysis for category '{category}':\nTrend: {trend}",
		"trend_rising":                  "rising",
		"trend_falling":                 "falling",
		"trend_insufficient":            "not enough data",
		"time_not_understood":           "Could not understand the time analytics command",
		"category_not_understood":       "Could not understand the category analytics command",
		"compare_items_not_recognized":  "Could not recognize the items to compare",
	},
}

// topPhrases marks a category_analytics command as a ranking request
// rather than a single-category report.
var topPhrases = []string{
	"топ категорий", "самые затратные",
	"eng koʻp sarflanadigan",
	"top categories", "most expensive",
}

// Executor handles the analytics intents.
type Executor struct {
	store  Store
	logger *slog.Logger
	now    func() time.Time
}

func NewExecutor(store Store, logger *slog.Logger) *Executor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Executor{store: store, logger: logger, now: time.Now}
}

func (e *Executor) Intents() []nlu.Intent {
	return []nlu.Intent{nlu.IntentTimeAnalytics, nlu.IntentCategoryAnalytics, nlu.IntentComparisonAnalytics}
}

// Execute routes one parsed command to its report.
func (e *Executor) Execute(ctx context.Context, userID uuid.UUID, cmd *nlu.ParsedCommand) command.Result {
	switch cmd.Intent {
	case nlu.IntentTimeAnalytics:
		return e.periodReport(ctx, userID, cmd)
	case nlu.IntentCategoryAnalytics:
		return e.categoryAnalytics(ctx, userID, cmd)
	case nlu.IntentComparisonAnalytics:
		return e.comparisonAnalytics(ctx, userID, cmd)
	default:
		return command.Fail("unknown command type")
	}
}

// periodReport summarizes one spoken window: totals, balance, the five
// largest expense categories and the busiest day. Two-group patterns
// carry an optional category before the period.
func (e *Executor) periodReport(ctx context.Context, userID uuid.UUID, cmd *nlu.ParsedCommand) command.Result {
	slots, _ := cmd.Slots.(nlu.RawSlots)
	groups := slots.Groups
	if len(groups) == 0 {
		return command.Fail(messages.Format(cmd.Language, "time_not_understood", nil))
	}

	var categoryName, periodStr string
	if len(groups) >= 2 {
		categoryName = strings.TrimSpace(groups[0])
		periodStr = strings.TrimSpace(groups[1])
		if periodStr == "" {
			periodStr = categoryName
		}
	} else {
		periodStr = strings.TrimSpace(groups[0])
	}

	p, _ := parsePeriod(periodStr, e.now())
	from, to := p.bounds()

	var categoryID *uuid.UUID
	var categoryLabel string
	if categoryName != "" {
		found, err := e.store.FindCategory(ctx, userID, categoryName)
		if err != nil {
			return command.Fail(fmt.Sprintf("find category: %v", err))
		}
		if found == nil {
			return command.Fail(messages.Format(cmd.Language, "category_not_found", map[string]string{"name": categoryName}))
		}
		categoryID = &found.ID
		categoryLabel = found.Name
	}

	sum, err := e.store.Summary(ctx, userID, from, to, categoryID)
	if err != nil {
		return command.Fail(fmt.Sprintf("period summary: %v", err))
	}
	top, err := e.store.TopCategories(ctx, userID, from, to, 5)
	if err != nil {
		return command.Fail(fmt.Sprintf("top categories: %v", err))
	}
	days, err := e.store.DailyTotals(ctx, userID, from, to)
	if err != nil {
		return command.Fail(fmt.Sprintf("daily totals: %v", err))
	}

	balance := sum.IncomeTotal.Sub(sum.ExpenseTotal)

	topRows := make([]map[string]any, 0, len(top))
	for _, ct := range top {
		topRows = append(topRows, map[string]any{
			"name":  ct.Name,
			"total": ct.Total.String(),
			"count": ct.Count,
		})
	}

	dayRows := make([]map[string]any, 0, len(days))
	var busiest map[string]any
	busiestTotal := decimal.Zero
	for _, day := range days {
		dayRows = append(dayRows, map[string]any{
			"date":     day.Day.Format("2006-01-02"),
			"expenses": day.Expenses.String(),
			"incomes":  day.Incomes.String(),
		})
		if day.Expenses.GreaterThan(busiestTotal) {
			busiestTotal = day.Expenses
			busiest = map[string]any{
				"date":     day.Day.Format("2006-01-02"),
				"expenses": day.Expenses.String(),
			}
		}
	}

	key := "period_report"
	params := map[string]string{
		"period":   p.String(),
		"expenses": sum.ExpenseTotal.String(),
		"incomes":  sum.IncomeTotal.String(),
		"balance":  balance.String(),
	}
	if categoryLabel != "" {
		key = "period_report_category"
		params["category"] = categoryLabel
	}

	e.logger.Info("period analytics",
		"user_id", userID, "from", p.start, "to", p.end, "category", categoryLabel)

	return command.OKData(messages.Format(cmd.Language, key, params), map[string]any{
		"period": map[string]any{
			"start_date": p.start.Format("2006-01-02"),
			"end_date":   p.end.Format("2006-01-02"),
		},
		"expenses":       map[string]any{"total": sum.ExpenseTotal.String(), "count": sum.ExpenseCount},
		"incomes":        map[string]any{"total": sum.IncomeTotal.String(), "count": sum.IncomeCount},
		"balance":        balance.String(),
		"top_categories": topRows,
		"daily_stats":    dayRows,
		"busiest_day":    busiest,
	})
}

// categoryAnalytics serves either the expense ranking or a single
// category's report, depending on the spoken phrase.
func (e *Executor) categoryAnalytics(ctx context.Context, userID uuid.UUID, cmd *nlu.ParsedCommand) command.Result {
	slots, _ := cmd.Slots.(nlu.RawSlots)
	groups := slots.Groups

	if containsAny(cmd.Normalized, topPhrases...) {
		periodStr := ""
		if len(groups) > 0 {
			periodStr = strings.TrimSpace(groups[0])
		}
		return e.topCategories(ctx, userID, periodStr, cmd.Language)
	}

	if len(groups) > 0 && strings.TrimSpace(groups[0]) != "" {
		return e.categoryDetails(ctx, userID, strings.TrimSpace(groups[0]), cmd.Language)
	}
	return command.Fail(messages.Format(cmd.Language, "category_not_understood", nil))
}

// topCategories ranks expense categories over a window, ten rows of
// data, five lines of message, shares computed over the ranked rows.
func (e *Executor) topCategories(ctx context.Context, userID uuid.UUID, periodStr string, lang nlu.Language) command.Result {
	p, _ := parsePeriod(periodStr, e.now())
	from, to := p.bounds()

	ranked, err := e.store.TopCategories(ctx, userID, from, to, 10)
	if err != nil {
		return command.Fail(fmt.Sprintf("top categories: %v", err))
	}

	periodData := map[string]any{
		"start_date": p.start.Format("2006-01-02"),
		"end_date":   p.end.Format("2006-01-02"),
	}

	if len(ranked) == 0 {
		return command.OKData(messages.Format(lang, "no_expenses_in_period", nil), map[string]any{
			"period":         periodData,
			"categories":     []map[string]any{},
			"total_expenses": "0",
		})
	}

	total := decimal.Zero
	for _, ct := range ranked {
		total = total.Add(ct.Total)
	}

	rows := make([]map[string]any, 0, len(ranked))
	var lines []string
	for i, ct := range ranked {
		share := 0.0
		if total.IsPositive() {
			share = roundTenth(ct.Total.Div(total).InexactFloat64() * 100)
		}
		avg := decimal.Zero
		if ct.Count > 0 {
			avg = ct.Total.DivRound(decimal.NewFromInt(int64(ct.Count)), 2)
		}
		rows = append(rows, map[string]any{
			"name":       ct.Name,
			"total":      ct.Total.String(),
			"count":      ct.Count,
			"avg_amount": avg.String(),
			"percentage": share,
		})
		if i < 5 {
			name := ct.Name
			if name == "" {
				name = messages.Format(lang, "uncategorized", nil)
			}
			lines = append(lines, fmt.Sprintf("%d. %s: %s (%s%%)",
				i+1, name, ct.Total.String(), strconv.FormatFloat(share, 'f', -1, 64)))
		}
	}

	header := messages.Format(lang, "top_header", map[string]string{"period": p.short()})
	return command.OKData(header+"\n"+strings.Join(lines, "\n"), map[string]any{
		"period":         periodData,
		"categories":     rows,
		"total_expenses": total.String(),
	})
}

// categoryDetails reports one category over four standing windows plus
// its five most recent expenses.
func (e *Executor) categoryDetails(ctx context.Context, userID uuid.UUID, name string, lang nlu.Language) command.Result {
	found, err := e.store.FindCategory(ctx, userID, name)
	if err != nil {
		return command.Fail(fmt.Sprintf("find category: %v", err))
	}
	if found == nil {
		return command.Fail(messages.Format(lang, "category_not_found", map[string]string{"name": name}))
	}

	today := dateOf(e.now())
	windows := []struct {
		key string
		p   period
	}{
		{"current_month", period{monthStart(today), today}},
		{"last_month", lastMonth(today)},
		{"current_year", period{time.Date(today.Year(), 1, 1, 0, 0, 0, 0, today.Location()), today}},
		{"last_30_days", period{today.AddDate(0, 0, -30), today}},
	}

	periods := make(map[string]any, len(windows))
	byKey := make(map[string]WindowStats, len(windows))
	for _, w := range windows {
		from, to := w.p.bounds()
		stats, err := e.store.CategoryWindow(ctx, userID, found.ID, from, to)
		if err != nil {
			return command.Fail(fmt.Sprintf("category window: %v", err))
		}
		avg := decimal.Zero
		if stats.Count > 0 {
			avg = stats.Total.DivRound(decimal.NewFromInt(int64(stats.Count)), 2)
		}
		periods[w.key] = map[string]any{
			"total":      stats.Total.String(),
			"count":      stats.Count,
			"avg_amount": avg.String(),
			"start_date": w.p.start.Format("2006-01-02"),
			"end_date":   w.p.end.Format("2006-01-02"),
		}
		byKey[w.key] = stats
	}

	recent, err := e.store.RecentExpenses(ctx, userID, found.ID, 5)
	if err != nil {
		return command.Fail(fmt.Sprintf("recent expenses: %v", err))
	}
	recentRows := make([]map[string]any, 0, len(recent))
	for _, d := range recent {
		recentRows = append(recentRows, map[string]any{
			"amount":      d.Amount.String(),
			"description": d.Description,
			"date":        d.OccurredAt.Format("2006-01-02"),
		})
	}

	month := byKey["current_month"]
	last := byKey["last_month"]
	year := byKey["current_year"]

	return command.OKData(
		messages.Format(lang, "category_details", map[string]string{
			"name":        found.Name,
			"month_total": month.Total.String(),
			"month_count": strconv.Itoa(month.Count),
			"last_total":  last.Total.String(),
			"last_count":  strconv.Itoa(last.Count),
			"year_total":  year.Total.String(),
		}),
		map[string]any{
			"category":            map[string]any{"id": found.ID.String(), "name": found.Name},
			"periods":             periods,
			"recent_transactions": recentRows,
		},
	)
}

// comparisonAnalytics compares two spoken items when the pattern
// captured a pair, otherwise reports the spending trend.
func (e *Executor) comparisonAnalytics(ctx context.Context, userID uuid.UUID, cmd *nlu.ParsedCommand) command.Result {
	slots, _ := cmd.Slots.(nlu.RawSlots)
	groups := slots.Groups

	if len(groups) >= 2 && strings.TrimSpace(groups[0]) != "" && strings.TrimSpace(groups[1]) != "" {
		return e.compareItems(ctx, userID, strings.TrimSpace(groups[0]), strings.TrimSpace(groups[1]), cmd.Language)
	}

	category := ""
	if len(groups) > 0 {
		category = strings.TrimSpace(groups[0])
	}
	return e.trendReport(ctx, userID, category, cmd.Language)
}

// compareItems resolves the pair as two categories first, then as two
// periods. A pair that is neither is rejected.
func (e *Executor) compareItems(ctx context.Context, userID uuid.UUID, item1, item2 string, lang nlu.Language) command.Result {
	cat1, err := e.store.FindCategory(ctx, userID, item1)
	if err != nil {
		return command.Fail(fmt.Sprintf("find category: %v", err))
	}
	cat2, err := e.store.FindCategory(ctx, userID, item2)
	if err != nil {
		return command.Fail(fmt.Sprintf("find category: %v", err))
	}
	if cat1 != nil && cat2 != nil {
		return e.compareCategories(ctx, userID, cat1, cat2, lang)
	}

	p1, ok1 := parsePeriod(item1, e.now())
	p2, ok2 := parsePeriod(item2, e.now())
	if ok1 && ok2 {
		return e.comparePeriods(ctx, userID, p1, p2, lang)
	}
	return command.Fail(messages.Format(lang, "compare_items_not_recognized", nil))
}

func (e *Executor) compareCategories(ctx context.Context, userID uuid.UUID, cat1, cat2 *CategoryRef, lang nlu.Language) command.Result {
	today := dateOf(e.now())
	p := period{monthStart(today), today}
	from, to := p.bounds()

	stats1, err := e.store.CategoryWindow(ctx, userID, cat1.ID, from, to)
	if err != nil {
		return command.Fail(fmt.Sprintf("category window: %v", err))
	}
	stats2, err := e.store.CategoryWindow(ctx, userID, cat2.ID, from, to)
	if err != nil {
		return command.Fail(fmt.Sprintf("category window: %v", err))
	}

	diff := stats1.Total.Sub(stats2.Total).Abs()

	return command.OKData(
		messages.Format(lang, "compare_categories", map[string]string{
			"name1":  cat1.Name,
			"total1": stats1.Total.String(),
			"name2":  cat2.Name,
			"total2": stats2.Total.String(),
			"diff":   diff.String(),
		}),
		map[string]any{
			"type": "categories",
			"period": map[string]any{
				"start_date": p.start.Format("2006-01-02"),
				"end_date":   p.end.Format("2006-01-02"),
			},
			"items": []map[string]any{
				{"name": cat1.Name, "total": stats1.Total.String()},
				{"name": cat2.Name, "total": stats2.Total.String()},
			},
			"difference": diff.String(),
		},
	)
}

func (e *Executor) comparePeriods(ctx context.Context, userID uuid.UUID, p1, p2 period, lang nlu.Language) command.Result {
	from1, to1 := p1.bounds()
	sum1, err := e.store.Summary(ctx, userID, from1, to1, nil)
	if err != nil {
		return command.Fail(fmt.Sprintf("period summary: %v", err))
	}
	from2, to2 := p2.bounds()
	sum2, err := e.store.Summary(ctx, userID, from2, to2, nil)
	if err != nil {
		return command.Fail(fmt.Sprintf("period summary: %v", err))
	}

	diff := sum1.ExpenseTotal.Sub(sum2.ExpenseTotal).Abs()

	return command.OKData(
		messages.Format(lang, "compare_periods", map[string]string{
			"period1": p1.String(),
			"total1":  sum1.ExpenseTotal.String(),
			"period2": p2.String(),
			"total2":  sum2.ExpenseTotal.String(),
			"diff":    diff.String(),
		}),
		map[string]any{
			"type": "periods",
			"items": []map[string]any{
				{
					"start_date": p1.start.Format("2006-01-02"),
					"end_date":   p1.end.Format("2006-01-02"),
					"total":      sum1.ExpenseTotal.String(),
				},
				{
					"start_date": p2.start.Format("2006-01-02"),
					"end_date":   p2.end.Format("2006-01-02"),
					"total":      sum2.ExpenseTotal.String(),
				},
			},
			"difference": diff.String(),
		},
	)
}

// trendReport compares the last two months of spending against the
// oldest two inside a six month window.
func (e *Executor) trendReport(ctx context.Context, userID uuid.UUID, category string, lang nlu.Language) command.Result {
	var categoryID *uuid.UUID
	var categoryLabel string
	if category != "" {
		found, err := e.store.FindCategory(ctx, userID, category)
		if err != nil {
			return command.Fail(fmt.Sprintf("find category: %v", err))
		}
		if found == nil {
			return command.Fail(messages.Format(lang, "category_not_found", map[string]string{"name": category}))
		}
		categoryID = &found.ID
		categoryLabel = found.Name
	}

	from := dateOf(e.now()).AddDate(0, 0, -180)
	months, err := e.store.MonthlyTotals(ctx, userID, categoryID, from)
	if err != nil {
		return command.Fail(fmt.Sprintf("monthly totals: %v", err))
	}

	trendKey, trendToken := "trend_insufficient", "insufficient_data"
	change := 0.0
	if len(months) >= 2 {
		recent := months[len(months)-1].Total.Add(months[len(months)-2].Total).InexactFloat64() / 2
		older := months[0].Total.Add(months[1].Total).InexactFloat64() / 2
		if recent > older {
			trendKey, trendToken = "trend_rising", "rising"
		} else {
			trendKey, trendToken = "trend_falling", "falling"
		}
		if older > 0 {
			change = roundTenth((recent - older) / older * 100)
		}
	}

	monthRows := make([]map[string]any, 0, len(months))
	for _, mt := range months {
		monthRows = append(monthRows, map[string]any{
			"month": mt.Month.Format("2006-01"),
			"total": mt.Total.String(),
			"count": mt.Count,
		})
	}

	key := "trend_report"
	params := map[string]string{"trend": messages.Format(lang, trendKey, nil)}
	if categoryLabel != "" {
		key = "trend_report_category"
		params["category"] = categoryLabel
	}
	if change != 0 {
		key += "_percent"
		params["percent"] = strconv.FormatFloat(math.Abs(change), 'f', 1, 64)
	}

	return command.OKData(messages.Format(lang, key, params), map[string]any{
		"category":        categoryLabel,
		"trend":           trendToken,
		"change_percent":  change,
		"monthly_stats":   monthRows,
		"analysis_period": "6 months",
	})
}

// period is a day-granular window, end day inclusive.
type period struct {
	start time.Time
	end   time.Time
}

// bounds converts the window to the half-open form the store expects.
func (p period) bounds() (time.Time, time.Time) {
	return p.start, p.end.AddDate(0, 0, 1)
}

func (p period) String() string {
	return p.start.Format(dateLayout) + " - " + p.end.Format(dateLayout)
}

func (p period) short() string {
	return p.start.Format("02.01") + " - " + p.end.Format("02.01")
}

// parsePeriod resolves spoken period words to a day window. The second
// return reports whether the words actually named a period; anything
// unrecognized falls back to the current month.
func parsePeriod(s string, now time.Time) (period, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	today := dateOf(now)

	switch {
	case containsAny(s, "этот месяц", "текущий месяц", "bu oy", "this month"):
		return period{monthStart(today), today}, true
	case containsAny(s, "прошлый месяц", "oʻtgan oy", "last month"):
		return lastMonth(today), true
	case containsAny(s, "этот год", "текущий год", "bu yil", "this year"):
		return period{time.Date(today.Year(), 1, 1, 0, 0, 0, 0, today.Location()), today}, true
	case containsAny(s, "прошлый год", "oʻtgan yil", "last year"):
		year := today.Year() - 1
		return period{
			time.Date(year, 1, 1, 0, 0, 0, 0, today.Location()),
			time.Date(year, 12, 31, 0, 0, 0, 0, today.Location()),
		}, true
	case containsAny(s, "неделю", "hafta", "week"):
		return period{today.AddDate(0, 0, -7), today}, true
	case containsAny(s, "30 дней", "30 kun", "30 days"):
		return period{today.AddDate(0, 0, -30), today}, true
	}
	return period{monthStart(today), today}, false
}

func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func monthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

func lastMonth(today time.Time) period {
	end := monthStart(today).AddDate(0, 0, -1)
	return period{monthStart(end), end}
}

func roundTenth(x float64) float64 {
	return math.Round(x*10) / 10
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// Package debts executes the debt ledger commands: directional debt
// creation with spoken due dates, outstanding and overdue listings,
// partial repayments and full closure.
package debts

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
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
		"debt_created":          "Долг добавлен: {person} {amount}",
		"debt_created_due":      "Долг добавлен: {person} {amount} до {due_date}",
		"no_debts_to_me":        "Никто вам не должен",
		"no_my_debts":           "У вас нет долгов",
		"no_overdue_debts":      "Нет просроченных долгов",
		"debts_to_me_list":      "Вам должны {count} человек на общую сумму {total}",
		"my_debts_list":         "Вы должны {count} человекам на общую сумму {total}",
		"overdue_debts_list":    "У вас {count} просроченных долгов",
		"debt_not_found":        `Долг с "{person}" не найден`,
		"debt_partially_paid":   "Частичный возврат: {person} вернул {amount}. Осталось: {remaining}",
		"debt_fully_paid":       "✅ Долг полностью погашен: {person} вернул {amount}",
		"debt_closed":           "✅ Долг с {person} закрыт на сумму {amount}",
		"payment_exceeds_debt":  "Сумма {amount} превышает остаток долга {remaining}",
		"amount_not_recognized": "Не удалось распознать сумму",
		"create_not_understood": "Не удалось распознать команду создания долга",
		"manage_not_understood": "Не удалось распознать команду управления долгами",
	},
	nlu.LangUzbek: {
		"debt_created":          "Qarz qoʻshildi: {person} {amount}",
		"debt_created_due":      "Qarz qoʻshildi: {person} {amount}",
		"no_debts_to_me":        "Hech kim sizga qarz emas",
		"no_my_debts":           "Sizda qarzlar yoʻq",
		"no_overdue_debts":      "Muddati oʻtgan qarzlar yoʻq",
		"debts_to_me_list":      "Sizga {count} kishi {total} summaga qarz",
		"my_debts_list":         "Siz {count} kishiga {total} summaga qarz",
		"overdue_debts_list":    "Sizda {count} ta muddati oʻtgan qarz bor",
		"debt_not_found":        `"{person}" bilan qarz topilmadi`,
		"debt_partially_paid":   "Qisman qaytarish: {person} {amount} qaytardi. Qoldi: {remaining}",
		"debt_fully_paid":       "✅ Qarz toʻliq toʻlandi: {person} {amount} qaytardi",
		"debt_closed":           "✅ {person} bilan qarz {amount} summaga yopildi",
		"payment_exceeds_debt":  "{amount} summa qarz qoldigʻi {remaining} dan oshib ketadi",
		"amount_not_recognized": "Summani aniqlab boʻlmadi",
		"create_not_understood": "Qarz yaratish buyrugʻini aniqlab boʻlmadi",
		"manage_not_understood": "Qarzlarni boshqarish buyrugʻini aniqlab boʻlmadi",
	},
	nlu.LangEnglish: {
		"debt_created":          "Debt added: {person} {amount}",
		"debt_created_due":      "Debt added: {person} {amount}",
		"no_debts_to_me":        "Nobody owes you money",
		"no_my_debts":           "You have no debts",
		"no_overdue_debts":      "No overdue debts",
		"debts_to_me_list":      "{count} people owe you {total} in total",
		"my_debts_list":         "You owe {count} people {total} in total",
		"overdue_debts_list":    "You have {count} overdue debts",
		"debt_not_found":        `Debt with "{person}" not found`,
		"debt_partially_paid":   "Partial payment: {person} returned {amount}. Remaining: {remaining}",
		"debt_fully_paid":       "✅ Debt fully paid: {person} returned {amount}",
		"debt_closed":           "✅ Debt with {person} closed for {amount}",
		"payment_exceeds_debt":  "Payment of {amount} exceeds the remaining debt of {remaining}",
		"amount_not_recognized": "Could not recognize the amount",
		"create_not_understood": "Could not understand the debt creation command",
		"manage_not_understood": "Could not understand the debt management command",
	},
}

type debtOp int

const (
	debtToMe debtOp = iota
	debtMy
	debtOverdue
	debtPartial
	debtClose
)

type debtRoute struct {
	re *regexp.Regexp
	op debtOp
}

const amountGroup = `(\d+(?:[\s,]\d{3})*(?:[.,]\d{2})?)`

var (
	debtsToMeRe = regexp.MustCompile(`кто.*должен|мне.*должен|kim.*qarzdor|who owes me`)
	myDebtsRe   = regexp.MustCompile(`кому.*должен|я.*должен|мои долги|mening qarzlarim|kimga.*qarzman|who.*i owe|my debts`)
)

// debtRoutes resolves a manage_debts command to one of its operations.
// The listing phrases go first, and the repayment patterns before the
// closing ones so a spoken amount is never swallowed as a person name.
var debtRoutes = []debtRoute{
	{debtsToMeRe, debtToMe},
	{myDebtsRe, debtMy},
	{regexp.MustCompile(`просроченные долги|muddati.*oʻtgan|overdue debts`), debtOverdue},
	{regexp.MustCompile(`верни долг\s+(.+?)\s+(?:частично\s+)?` + amountGroup), debtPartial},
	{regexp.MustCompile(`(.+?)ga\s+qarzni\s+(?:qisman\s+)?` + amountGroup + `\s*(?:som|dollar)?\s+qaytardim`), debtPartial},
	{regexp.MustCompile(`(?:partially\s+)?(?:paid back|returned)\s+(.+?)\s+` + amountGroup), debtPartial},
	{regexp.MustCompile(`вернул долг\s+(.+)`), debtClose},
	{regexp.MustCompile(`долг\s+(.+?)\s+погашен`), debtClose},
	{regexp.MustCompile(`закрой долг (?:с|у)\s+(.+)`), debtClose},
	{regexp.MustCompile(`(.+?)\s+bilan\s+qarzni\s+yop`), debtClose},
	{regexp.MustCompile(`close debt (?:with|to)\s+(.+)`), debtClose},
}

var dueDateRe = regexp.MustCompile(`(\d{1,2})\.(\d{1,2})(?:\.(\d{2,4}))?`)

// Executor handles the debt intents.
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
	return []nlu.Intent{nlu.IntentManageDebt, nlu.IntentCreateDebt, nlu.IntentManageDebts}
}

// Execute routes one parsed command to its operation.
func (e *Executor) Execute(ctx context.Context, userID uuid.UUID, cmd *nlu.ParsedCommand) command.Result {
	switch cmd.Intent {
	case nlu.IntentCreateDebt:
		return e.createDebt(ctx, userID, cmd)
	case nlu.IntentManageDebts:
		return e.manageDebts(ctx, userID, cmd)
	case nlu.IntentManageDebt:
		return e.manageDebt(ctx, userID, cmd)
	default:
		return command.Fail("unknown command type")
	}
}

// createDebt records a new debt. The direction comes from the spoken
// verb; the borrowed templates of some languages capture the amount
// before the person, so the numeric group decides the order.
func (e *Executor) createDebt(ctx context.Context, userID uuid.UUID, cmd *nlu.ParsedCommand) command.Result {
	slots, _ := cmd.Slots.(nlu.RawSlots)
	groups := slots.Groups
	if len(groups) < 2 {
		return command.Fail(messages.Format(cmd.Language, "create_not_understood", nil))
	}

	person := strings.TrimSpace(groups[0])
	amountStr := strings.TrimSpace(groups[1])
	if command.Numeric(person) {
		person, amountStr = amountStr, person
	}

	amount, ok := command.ParseAmount(amountStr)
	if !ok || !amount.IsPositive() {
		return command.Fail(messages.Format(cmd.Language, "amount_not_recognized", nil))
	}

	direction := DirectionLent
	if containsAny(cmd.Normalized, "взял в долг", "занял у", "qarz oldim", "borrowed") {
		direction = DirectionBorrowed
	}

	var dueDate *time.Time
	if len(groups) > 2 && strings.TrimSpace(groups[2]) != "" {
		dueDate = parseDueDate(groups[2], e.now())
	}

	debt := &Debt{
		ID:         uuid.New(),
		UserID:     userID,
		PersonName: person,
		Amount:     amount,
		PaidAmount: decimal.Zero,
		Direction:  direction,
		Status:     StatusOpen,
		DueDate:    dueDate,
	}
	if err := e.store.Create(ctx, debt); err != nil {
		return command.Fail(fmt.Sprintf("create debt: %v", err))
	}

	e.logger.Info("debt created",
		"user_id", userID, "person", person, "direction", direction, "amount", amount)

	key := "debt_created"
	params := map[string]string{"person": person, "amount": amount.String()}
	if dueDate != nil {
		key = "debt_created_due"
		params["due_date"] = dueDate.Format(dateLayout)
	}

	return command.OKData(messages.Format(cmd.Language, key, params), map[string]any{
		"debt_id":     debt.ID.String(),
		"person_name": person,
		"amount":      amount.String(),
		"debt_type":   direction,
		"due_date":    isoDate(dueDate),
	})
}

// manageDebts routes the extended management command by re-matching the
// normalized text, taking the person and amount from the route's own
// capture groups.
func (e *Executor) manageDebts(ctx context.Context, userID uuid.UUID, cmd *nlu.ParsedCommand) command.Result {
	for _, route := range debtRoutes {
		m := route.re.FindStringSubmatch(cmd.Normalized)
		if m == nil {
			continue
		}
		switch route.op {
		case debtToMe:
			return e.debtsToMe(ctx, userID, cmd.Language)
		case debtMy:
			return e.myDebts(ctx, userID, cmd.Language)
		case debtOverdue:
			return e.overdueDebts(ctx, userID, cmd.Language)
		case debtPartial:
			return e.partialPayment(ctx, userID, strings.TrimSpace(m[1]), m[2], cmd.Language)
		case debtClose:
			return e.closeDebt(ctx, userID, strings.TrimSpace(m[1]), cmd.Language)
		}
	}
	return command.Fail(messages.Format(cmd.Language, "manage_not_understood", nil))
}

// manageDebt serves the base debt command: a quick lent entry when the
// pattern captured a person and amount, otherwise one of the listings.
// The generic "show debts" phrasings get both directions at once.
func (e *Executor) manageDebt(ctx context.Context, userID uuid.UUID, cmd *nlu.ParsedCommand) command.Result {
	slots, _ := cmd.Slots.(nlu.DebtSlots)
	if slots.Person != "" {
		if !slots.Amount.IsPositive() {
			return command.Fail(messages.Format(cmd.Language, "amount_not_recognized", nil))
		}
		debt := &Debt{
			ID:         uuid.New(),
			UserID:     userID,
			PersonName: slots.Person,
			Amount:     slots.Amount,
			PaidAmount: decimal.Zero,
			Direction:  DirectionLent,
			Status:     StatusOpen,
		}
		if err := e.store.Create(ctx, debt); err != nil {
			return command.Fail(fmt.Sprintf("create debt: %v", err))
		}
		e.logger.Info("debt created",
			"user_id", userID, "person", slots.Person, "direction", DirectionLent, "amount", slots.Amount)
		return command.OKData(
			messages.Format(cmd.Language, "debt_created", map[string]string{
				"person": slots.Person,
				"amount": slots.Amount.String(),
			}),
			map[string]any{
				"debt_id":     debt.ID.String(),
				"person_name": slots.Person,
				"amount":      slots.Amount.String(),
				"debt_type":   DirectionLent,
				"due_date":    nil,
			},
		)
	}

	switch {
	case debtsToMeRe.MatchString(cmd.Normalized):
		return e.debtsToMe(ctx, userID, cmd.Language)
	case myDebtsRe.MatchString(cmd.Normalized):
		return e.myDebts(ctx, userID, cmd.Language)
	}
	return e.debtOverview(ctx, userID, cmd.Language)
}

func (e *Executor) debtsToMe(ctx context.Context, userID uuid.UUID, lang nlu.Language) command.Result {
	debts, err := e.store.ListOutstanding(ctx, userID, DirectionLent)
	if err != nil {
		return command.Fail(fmt.Sprintf("list debts: %v", err))
	}
	if len(debts) == 0 {
		return command.OKData(messages.Format(lang, "no_debts_to_me", nil),
			map[string]any{"debts": []map[string]any{}})
	}

	rows, total := debtRows(debts)
	return command.OKData(
		messages.Format(lang, "debts_to_me_list", map[string]string{
			"count": strconv.Itoa(len(rows)),
			"total": total.String(),
		}),
		map[string]any{"debts": rows, "total_amount": total.String()},
	)
}

func (e *Executor) myDebts(ctx context.Context, userID uuid.UUID, lang nlu.Language) command.Result {
	debts, err := e.store.ListOutstanding(ctx, userID, DirectionBorrowed)
	if err != nil {
		return command.Fail(fmt.Sprintf("list debts: %v", err))
	}
	if len(debts) == 0 {
		return command.OKData(messages.Format(lang, "no_my_debts", nil),
			map[string]any{"debts": []map[string]any{}})
	}

	rows, total := debtRows(debts)
	return command.OKData(
		messages.Format(lang, "my_debts_list", map[string]string{
			"count": strconv.Itoa(len(rows)),
			"total": total.String(),
		}),
		map[string]any{"debts": rows, "total_amount": total.String()},
	)
}

// overdueDebts lists outstanding debts of both directions whose due
// date already passed, with the days elapsed per row.
func (e *Executor) overdueDebts(ctx context.Context, userID uuid.UUID, lang nlu.Language) command.Result {
	today := dateOnly(e.now())
	debts, err := e.store.ListOverdue(ctx, userID, today)
	if err != nil {
		return command.Fail(fmt.Sprintf("list overdue debts: %v", err))
	}
	if len(debts) == 0 {
		return command.OKData(messages.Format(lang, "no_overdue_debts", nil),
			map[string]any{"debts": []map[string]any{}})
	}

	rows := make([]map[string]any, 0, len(debts))
	for i := range debts {
		d := &debts[i]
		daysOverdue := 0
		if d.DueDate != nil {
			daysOverdue = int(today.Sub(dateOnly(*d.DueDate)).Hours() / 24)
		}
		rows = append(rows, map[string]any{
			"id":               d.ID.String(),
			"person_name":      d.PersonName,
			"amount":           d.Amount.String(),
			"remaining_amount": d.Remaining().String(),
			"debt_type":        d.Direction,
			"due_date":         isoDate(d.DueDate),
			"days_overdue":     daysOverdue,
			"paid_amount":      d.PaidAmount.String(),
		})
	}

	return command.OKData(
		messages.Format(lang, "overdue_debts_list", map[string]string{
			"count": strconv.Itoa(len(rows)),
		}),
		map[string]any{"debts": rows},
	)
}

// debtOverview answers the generic listing with both sides of the
// ledger, one count line per direction.
func (e *Executor) debtOverview(ctx context.Context, userID uuid.UUID, lang nlu.Language) command.Result {
	lent, err := e.store.ListOutstanding(ctx, userID, DirectionLent)
	if err != nil {
		return command.Fail(fmt.Sprintf("list debts: %v", err))
	}
	borrowed, err := e.store.ListOutstanding(ctx, userID, DirectionBorrowed)
	if err != nil {
		return command.Fail(fmt.Sprintf("list debts: %v", err))
	}

	lentRows, lentTotal := debtRows(lent)
	borrowedRows, borrowedTotal := debtRows(borrowed)

	toMeLine := messages.Format(lang, "no_debts_to_me", nil)
	if len(lentRows) > 0 {
		toMeLine = messages.Format(lang, "debts_to_me_list", map[string]string{
			"count": strconv.Itoa(len(lentRows)),
			"total": lentTotal.String(),
		})
	}
	myLine := messages.Format(lang, "no_my_debts", nil)
	if len(borrowedRows) > 0 {
		myLine = messages.Format(lang, "my_debts_list", map[string]string{
			"count": strconv.Itoa(len(borrowedRows)),
			"total": borrowedTotal.String(),
		})
	}

	return command.OKData(toMeLine+"\n"+myLine, map[string]any{
		"debts_to_me":      lentRows,
		"my_debts":         borrowedRows,
		"total_owed_to_me": lentTotal.String(),
		"total_i_owe":      borrowedTotal.String(),
	})
}

// partialPayment records a repayment against the oldest outstanding
// debt with the spoken person. A payment over the remainder is
// rejected; one that covers it exactly closes the debt.
func (e *Executor) partialPayment(ctx context.Context, userID uuid.UUID, person, amountStr string, lang nlu.Language) command.Result {
	debt, err := e.store.FindOutstanding(ctx, userID, person)
	if err != nil {
		return command.Fail(fmt.Sprintf("find debt: %v", err))
	}
	if debt == nil {
		return command.Fail(messages.Format(lang, "debt_not_found", map[string]string{"person": person}))
	}

	amount, ok := command.ParseAmount(amountStr)
	if !ok || !amount.IsPositive() {
		return command.Fail(messages.Format(lang, "amount_not_recognized", nil))
	}

	remaining := debt.Remaining()
	if amount.GreaterThan(remaining) {
		return command.Fail(messages.Format(lang, "payment_exceeds_debt", map[string]string{
			"amount":    amount.String(),
			"remaining": remaining.String(),
		}))
	}

	updated, err := e.store.AddPayment(ctx, debt.ID, amount)
	if err != nil {
		return command.Fail(fmt.Sprintf("add debt payment: %v", err))
	}

	e.logger.Info("debt payment",
		"user_id", userID, "person", updated.PersonName, "amount", amount, "status", updated.Status)

	key := "debt_partially_paid"
	if updated.Status == StatusClosed {
		key = "debt_fully_paid"
	}

	return command.OKData(
		messages.Format(lang, key, map[string]string{
			"person":    updated.PersonName,
			"amount":    amount.String(),
			"remaining": updated.Remaining().String(),
		}),
		map[string]any{
			"debt_id":          updated.ID.String(),
			"payment_amount":   amount.String(),
			"remaining_amount": updated.Remaining().String(),
			"status":           updated.Status,
		},
	)
}

// closeDebt settles the debt in full, reporting the amount that was
// still outstanding.
func (e *Executor) closeDebt(ctx context.Context, userID uuid.UUID, person string, lang nlu.Language) command.Result {
	debt, err := e.store.FindOutstanding(ctx, userID, person)
	if err != nil {
		return command.Fail(fmt.Sprintf("find debt: %v", err))
	}
	if debt == nil {
		return command.Fail(messages.Format(lang, "debt_not_found", map[string]string{"person": person}))
	}

	remaining := debt.Remaining()
	updated, err := e.store.Close(ctx, debt.ID)
	if err != nil {
		return command.Fail(fmt.Sprintf("close debt: %v", err))
	}

	e.logger.Info("debt closed",
		"user_id", userID, "person", updated.PersonName, "closed_amount", remaining)

	return command.OKData(
		messages.Format(lang, "debt_closed", map[string]string{
			"person": updated.PersonName,
			"amount": remaining.String(),
		}),
		map[string]any{
			"debt_id":       updated.ID.String(),
			"closed_amount": remaining.String(),
		},
	)
}

func debtRows(debts []Debt) ([]map[string]any, decimal.Decimal) {
	rows := make([]map[string]any, 0, len(debts))
	total := decimal.Zero
	for i := range debts {
		d := &debts[i]
		remaining := d.Remaining()
		total = total.Add(remaining)
		rows = append(rows, map[string]any{
			"id":               d.ID.String(),
			"person_name":      d.PersonName,
			"amount":           d.Amount.String(),
			"remaining_amount": remaining.String(),
			"due_date":         isoDate(d.DueDate),
			"status":           d.Status,
			"paid_amount":      d.PaidAmount.String(),
		})
	}
	return rows, total
}

// parseDueDate resolves a spoken return date: the relative words of all
// three languages or an explicit day.month date. Anything else means no
// due date.
func parseDueDate(s string, now time.Time) *time.Time {
	s = strings.ToLower(strings.TrimSpace(s))
	today := dateOnly(now)

	var d time.Time
	switch {
	case containsAny(s, "завтра", "ertaga", "tomorrow"):
		d = today.AddDate(0, 0, 1)
	case containsAny(s, "неделю", "hafta", "week"):
		d = today.AddDate(0, 0, 7)
	case containsAny(s, "месяц", "oy", "month"):
		d = today.AddDate(0, 0, 30)
	default:
		m := dueDateRe.FindStringSubmatch(s)
		if m == nil {
			return nil
		}
		day, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		year := today.Year()
		if m[3] != "" {
			year, _ = strconv.Atoi(m[3])
			if year < 100 {
				year += 2000
			}
		}
		d = time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
		if d.Day() != day || int(d.Month()) != month || d.Year() != year {
			return nil
		}
	}
	return &d
}

func isoDate(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Format("2006-01-02")
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func containsAny(s string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

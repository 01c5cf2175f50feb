// Package goals executes the savings goal commands: creation with an
// optional spoken deadline, listing, topping up, pausing, resuming,
// deletion and progress reports.
package goals

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

var messages = command.Messages{
	nlu.LangRussian: {
		"no_goals":               "У вас пока нет активных целей",
		"goals_list":             "У вас {count} активных целей",
		"goal_not_found":         `Цель "{name}" не найдена`,
		"goal_progress":          `Цель "{name}": {current} из {target} ({percent}%). Осталось: {remaining}`,
		"goal_progress_deadline": `Цель "{name}": {current} из {target} ({percent}%). Осталось: {remaining}. Дней до дедлайна: {days_left}`,
		"goal_created":           `Цель "{name}" создана на сумму {amount}`,
		"goal_created_deadline":  `Цель "{name}" создана на сумму {amount} до {deadline}`,
		"amount_added_to_goal":   `Добавлено {amount} к цели "{name}". Текущий прогресс: {current} из {target}`,
		"goal_achieved":          `🎉 Поздравляем! Цель "{name}" достигнута!`,
		"goal_deleted":           `Цель "{name}" удалена`,
		"goal_paused":            `Цель "{name}" приостановлена`,
		"goal_resumed":           `Цель "{name}" возобновлена`,
		"amount_not_recognized":  "Не удалось распознать сумму",
		"create_not_understood":  "Не удалось распознать команду создания цели",
		"manage_not_understood":  "Не удалось распознать команду управления целями",
	},
	nlu.LangUzbek: {
		"no_goals":               "Sizda hali faol maqsadlar yoq",
		"goals_list":             "Sizda {count} ta faol maqsad bor",
		"goal_not_found":         `"{name}" maqsadi topilmadi`,
		"goal_progress":          `"{name}" maqsadi: {current} / {target} ({percent}%). Qoldi: {remaining}`,
		"goal_progress_deadline": `"{name}" maqsadi: {current} / {target} ({percent}%). Qoldi: {remaining}`,
		"goal_created":           `"{name}" maqsadi {amount} summaga yaratildi`,
		"goal_created_deadline":  `"{name}" maqsadi {amount} summaga yaratildi`,
		"amount_added_to_goal":   `"{name}" maqsadiga {amount} qoʻshildi. Hozirgi holat: {current} / {target}`,
		"goal_achieved":          `🎉 Tabriklaymiz! "{name}" maqsadi bajarildi!`,
		"goal_deleted":           `"{name}" maqsadi oʻchirildi`,
		"goal_paused":            `"{name}" maqsadi toʻxtatildi`,
		"goal_resumed":           `"{name}" maqsadi davom ettirildi`,
		"amount_not_recognized":  "Summani aniqlab boʻlmadi",
		"create_not_understood":  "Maqsad yaratish buyrugʻini aniqlab boʻlmadi",
		"manage_not_understood":  "Maqsadlarni boshqarish buyrugʻini aniqlab boʻlmadi",
	},
	nlu.LangEnglish: {
		"no_goals":               "You have no active goals yet",
		"goals_list":             "You have {count} active goals",
		"goal_not_found":         `Goal "{name}" not found`,
		"goal_progress":          `Goal "{name}": {current} of {target} ({percent}%). Remaining: {remaining}`,
		"goal_progress_deadline": `Goal "{name}": {current} of {target} ({percent}%). Remaining: {remaining}`,
		"goal_created":           `Goal "{name}" created for {amount}`,
		"goal_created_deadline":  `Goal "{name}" created for {amount}`,
		"amount_added_to_goal":   `Added {amount} to goal "{name}". Current progress: {current} of {target}`,
		"goal_achieved":          `🎉 Congratulations! Goal "{name}" achieved!`,
		"goal_deleted":           `Goal "{name}" deleted`,
		"goal_paused":            `Goal "{name}" paused`,
		"goal_resumed":           `Goal "{name}" resumed`,
		"amount_not_recognized":  "Could not recognize the amount",
		"create_not_understood":  "Could not understand the goal creation command",
		"manage_not_understood":  "Could not understand the goal management command",
	},
}

type goalAction int

const (
	goalShow goalAction = iota
	goalAdd
	goalRemove
	goalPause
	goalResume
	goalProgress
)

// goalRoute maps one management phrasing to its action. Group indexes
// are 1-based into the match; zero means the group does not exist.
type goalRoute struct {
	re        *regexp.Regexp
	action    goalAction
	nameIdx   int
	amountIdx int
}

const amountGroup = `(\d+(?:[\s,]\d{3})*(?:[.,]\d{2})?)`

// goalRoutes mirror the classifier's manage-goal patterns so that a
// classified command always lands in a handler. Order decides on
// overlap: listing first, then mutations, progress last.
var goalRoutes = []goalRoute{
	{re: regexp.MustCompile(`покажи.*цели|мои цели|список целей|maqsadlarimni.*koʻrsat|show.*goals`), action: goalShow},
	{re: regexp.MustCompile(`добавь\s+` + amountGroup + `\s*(?:сум|руб|₽|долларов?)?\s+к цели\s+(.+)`), action: goalAdd, amountIdx: 1, nameIdx: 2},
	{re: regexp.MustCompile(`пополни цель\s+(.+?)\s+на\s+` + amountGroup + `\s*(?:сум|руб|₽|долларов?)?`), action: goalAdd, nameIdx: 1, amountIdx: 2},
	{re: regexp.MustCompile(`(.+?)\s+maqsadiga\s+` + amountGroup + `\s*(?:som|dollar)?\s+qoʻsh`), action: goalAdd, nameIdx: 1, amountIdx: 2},
	{re: regexp.MustCompile(`add\s+` + amountGroup + `\s*(?:sum|dollars?)?\s+to goal\s+(.+)`), action: goalAdd, amountIdx: 1, nameIdx: 2},
	{re: regexp.MustCompile(`удали цель\s+(.+)`), action: goalRemove, nameIdx: 1},
	{re: regexp.MustCompile(`закрой цель\s+(.+)`), action: goalRemove, nameIdx: 1},
	{re: regexp.MustCompile(`(.+?)\s+maqsadni\s+oʻchir`), action: goalRemove, nameIdx: 1},
	{re: regexp.MustCompile(`delete goal\s+(.+)`), action: goalRemove, nameIdx: 1},
	{re: regexp.MustCompile(`приостанови цель\s+(.+)`), action: goalPause, nameIdx: 1},
	{re: regexp.MustCompile(`возобнови цель\s+(.+)`), action: goalResume, nameIdx: 1},
	{re: regexp.MustCompile(`сколько осталось (?:до цели\s+)?(.+)`), action: goalProgress, nameIdx: 1},
	{re: regexp.MustCompile(`прогресс цели\s+(.+)`), action: goalProgress, nameIdx: 1},
	{re: regexp.MustCompile(`(.+?)\s+maqsad\s+jarayoni`), action: goalProgress, nameIdx: 1},
	{re: regexp.MustCompile(`goal progress\s+(.+)`), action: goalProgress, nameIdx: 1},
}

var hundred = decimal.NewFromInt(100)

// Executor runs the goal commands against the store.
type Executor struct {
	store  Store
	logger *slog.Logger
	now    func() time.Time
}

// NewExecutor creates the goal command executor.
func NewExecutor(store Store, logger *slog.Logger) *Executor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Executor{store: store, logger: logger, now: time.Now}
}

// Intents lists the commands this executor handles.
func (e *Executor) Intents() []nlu.Intent {
	return []nlu.Intent{nlu.IntentCreateGoal, nlu.IntentManageGoals}
}

// Execute routes one parsed command to its operation.
func (e *Executor) Execute(ctx context.Context, userID uuid.UUID, cmd *nlu.ParsedCommand) command.Result {
	switch cmd.Intent {
	case nlu.IntentCreateGoal:
		return e.createGoal(ctx, userID, cmd)
	case nlu.IntentManageGoals:
		return e.manageGoals(ctx, userID, cmd)
	default:
		return command.Fail("unknown command type")
	}
}

// createGoal builds a goal from the pattern captures. Group order
// varies by phrasing, so the digit-looking group is the amount and the
// other one the name; a third group, when present, is the deadline.
func (e *Executor) createGoal(ctx context.Context, userID uuid.UUID, cmd *nlu.ParsedCommand) command.Result {
	slots, _ := cmd.Slots.(nlu.RawSlots)
	groups := slots.Groups
	if len(groups) < 2 {
		return command.Fail(messages.Format(cmd.Language, "create_not_understood", nil))
	}

	amountStr, name := groups[0], groups[1]
	if !command.Numeric(amountStr) {
		amountStr, name = groups[1], groups[0]
	}
	name = strings.TrimSpace(name)

	amount, ok := command.ParseAmount(amountStr)
	if !ok || amount.IsZero() {
		return command.Fail(messages.Format(cmd.Language, "amount_not_recognized", nil))
	}

	var deadline *time.Time
	if len(groups) > 2 && groups[2] != "" {
		deadline = parseDeadline(groups[2], e.now())
	}

	goal := &Goal{
		ID:            uuid.New(),
		UserID:        userID,
		Name:          name,
		TargetAmount:  amount,
		CurrentAmount: decimal.Zero,
		Deadline:      deadline,
		IsActive:      true,
	}
	if err := e.store.Create(ctx, goal); err != nil {
		return command.Fail(fmt.Sprintf("create goal: %v", err))
	}

	params := map[string]string{"name": name, "amount": amount.String()}
	key := "goal_created"
	data := map[string]any{
		"goal_id":       goal.ID.String(),
		"name":          goal.Name,
		"target_amount": goal.TargetAmount.String(),
		"deadline":      nil,
	}
	if deadline != nil {
		key = "goal_created_deadline"
		iso := deadline.Format("2006-01-02")
		params["deadline"] = iso
		data["deadline"] = iso
	}

	e.logger.Info("goal created",
		slog.String("user_id", userID.String()),
		slog.String("name", goal.Name),
		slog.String("target", amount.String()))

	return command.OKData(messages.Format(cmd.Language, key, params), data)
}

// manageGoals re-parses the normalized text to pick the management
// action, the same text the classifier matched.
func (e *Executor) manageGoals(ctx context.Context, userID uuid.UUID, cmd *nlu.ParsedCommand) command.Result {
	text := cmd.Normalized
	lang := cmd.Language

	for _, route := range goalRoutes {
		m := route.re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		switch route.action {
		case goalShow:
			return e.showGoals(ctx, userID, lang)
		case goalAdd:
			return e.addToGoal(ctx, userID, m[route.nameIdx], m[route.amountIdx], lang)
		case goalRemove:
			return e.removeGoal(ctx, userID, m[route.nameIdx], lang)
		case goalPause:
			return e.pauseGoal(ctx, userID, m[route.nameIdx], lang)
		case goalResume:
			return e.resumeGoal(ctx, userID, m[route.nameIdx], lang)
		case goalProgress:
			return e.goalProgress(ctx, userID, m[route.nameIdx], lang)
		}
	}

	return command.Fail(messages.Format(lang, "manage_not_understood", nil))
}

func (e *Executor) showGoals(ctx context.Context, userID uuid.UUID, lang nlu.Language) command.Result {
	goals, err := e.store.ListActive(ctx, userID)
	if err != nil {
		return command.Fail(fmt.Sprintf("list goals: %v", err))
	}

	if len(goals) == 0 {
		return command.OKData(
			messages.Format(lang, "no_goals", nil),
			map[string]any{"goals": []map[string]any{}},
		)
	}

	rows := make([]map[string]any, 0, len(goals))
	for i := range goals {
		rows = append(rows, e.goalRow(&goals[i]))
	}

	return command.OKData(
		messages.Format(lang, "goals_list", map[string]string{"count": strconv.Itoa(len(rows))}),
		map[string]any{"goals": rows},
	)
}

func (e *Executor) goalRow(g *Goal) map[string]any {
	percent, _ := progressPercent(g).Round(2).Float64()

	row := map[string]any{
		"id":               g.ID.String(),
		"name":             g.Name,
		"target_amount":    g.TargetAmount.String(),
		"current_amount":   g.CurrentAmount.String(),
		"remaining":        g.TargetAmount.Sub(g.CurrentAmount).String(),
		"progress_percent": percent,
		"deadline":         nil,
		"days_left":        nil,
	}
	if g.Deadline != nil {
		row["deadline"] = g.Deadline.Format("2006-01-02")
		row["days_left"] = daysUntil(*g.Deadline, e.now())
	}
	return row
}

func (e *Executor) addToGoal(ctx context.Context, userID uuid.UUID, rawName, amountStr string, lang nlu.Language) command.Result {
	name := strings.TrimSpace(rawName)
	goal, err := e.store.FindActive(ctx, userID, name)
	if err != nil {
		return command.Fail(fmt.Sprintf("find goal: %v", err))
	}
	if goal == nil {
		return command.Fail(messages.Format(lang, "goal_not_found", map[string]string{"name": name}))
	}

	amount, ok := command.ParseAmount(amountStr)
	if !ok || amount.IsZero() {
		return command.Fail(messages.Format(lang, "amount_not_recognized", nil))
	}

	updated, err := e.store.AddAmount(ctx, goal.ID, amount)
	if err != nil {
		return command.Fail(fmt.Sprintf("update goal: %v", err))
	}

	achieved := updated.CurrentAmount.GreaterThanOrEqual(updated.TargetAmount)
	key := "amount_added_to_goal"
	if achieved {
		key = "goal_achieved"
	}

	e.logger.Info("goal topped up",
		slog.String("user_id", userID.String()),
		slog.String("name", updated.Name),
		slog.String("amount", amount.String()),
		slog.Bool("achieved", achieved))

	return command.OKData(
		messages.Format(lang, key, map[string]string{
			"name":    updated.Name,
			"amount":  amount.String(),
			"current": updated.CurrentAmount.String(),
			"target":  updated.TargetAmount.String(),
		}),
		map[string]any{
			"goal_id":        updated.ID.String(),
			"current_amount": updated.CurrentAmount.String(),
			"target_amount":  updated.TargetAmount.String(),
			"is_achieved":    achieved,
		},
	)
}

func (e *Executor) removeGoal(ctx context.Context, userID uuid.UUID, rawName string, lang nlu.Language) command.Result {
	return e.deactivate(ctx, userID, rawName, lang, "goal_deleted", "goal deleted")
}

func (e *Executor) pauseGoal(ctx context.Context, userID uuid.UUID, rawName string, lang nlu.Language) command.Result {
	return e.deactivate(ctx, userID, rawName, lang, "goal_paused", "goal paused")
}

func (e *Executor) deactivate(ctx context.Context, userID uuid.UUID, rawName string, lang nlu.Language, key, event string) command.Result {
	name := strings.TrimSpace(rawName)
	goal, err := e.store.FindActive(ctx, userID, name)
	if err != nil {
		return command.Fail(fmt.Sprintf("find goal: %v", err))
	}
	if goal == nil {
		return command.Fail(messages.Format(lang, "goal_not_found", map[string]string{"name": name}))
	}

	if err := e.store.SetActive(ctx, goal.ID, false); err != nil {
		return command.Fail(fmt.Sprintf("deactivate goal: %v", err))
	}

	e.logger.Info(event,
		slog.String("user_id", userID.String()),
		slog.String("name", goal.Name))

	return command.OKData(
		messages.Format(lang, key, map[string]string{"name": goal.Name}),
		map[string]any{"goal_id": goal.ID.String()},
	)
}

func (e *Executor) resumeGoal(ctx context.Context, userID uuid.UUID, rawName string, lang nlu.Language) command.Result {
	name := strings.TrimSpace(rawName)
	goal, err := e.store.FindPaused(ctx, userID, name)
	if err != nil {
		return command.Fail(fmt.Sprintf("find goal: %v", err))
	}
	if goal == nil {
		return command.Fail(messages.Format(lang, "goal_not_found", map[string]string{"name": name}))
	}

	if err := e.store.SetActive(ctx, goal.ID, true); err != nil {
		return command.Fail(fmt.Sprintf("resume goal: %v", err))
	}

	e.logger.Info("goal resumed",
		slog.String("user_id", userID.String()),
		slog.String("name", goal.Name))

	return command.OKData(
		messages.Format(lang, "goal_resumed", map[string]string{"name": goal.Name}),
		map[string]any{"goal_id": goal.ID.String()},
	)
}

func (e *Executor) goalProgress(ctx context.Context, userID uuid.UUID, rawName string, lang nlu.Language) command.Result {
	name := strings.TrimSpace(rawName)
	goal, err := e.store.FindActive(ctx, userID, name)
	if err != nil {
		return command.Fail(fmt.Sprintf("find goal: %v", err))
	}
	if goal == nil {
		return command.Fail(messages.Format(lang, "goal_not_found", map[string]string{"name": name}))
	}

	percent := progressPercent(goal)
	remaining := goal.TargetAmount.Sub(goal.CurrentAmount)
	percent2, _ := percent.Round(2).Float64()

	params := map[string]string{
		"name":      goal.Name,
		"current":   goal.CurrentAmount.String(),
		"target":    goal.TargetAmount.String(),
		"percent":   percent.Round(1).String(),
		"remaining": remaining.String(),
	}
	data := map[string]any{
		"goal_id":          goal.ID.String(),
		"name":             goal.Name,
		"current_amount":   goal.CurrentAmount.String(),
		"target_amount":    goal.TargetAmount.String(),
		"remaining":        remaining.String(),
		"progress_percent": percent2,
		"days_left":        nil,
		"is_achieved":      goal.CurrentAmount.GreaterThanOrEqual(goal.TargetAmount),
	}

	key := "goal_progress"
	if goal.Deadline != nil {
		days := daysUntil(*goal.Deadline, e.now())
		data["days_left"] = days
		if days != 0 {
			key = "goal_progress_deadline"
			params["days_left"] = strconv.Itoa(days)
		}
	}

	return command.OKData(messages.Format(lang, key, params), data)
}

func progressPercent(g *Goal) decimal.Decimal {
	if !g.TargetAmount.IsPositive() {
		return decimal.Zero
	}
	return g.CurrentAmount.Div(g.TargetAmount).Mul(hundred)
}

// parseDeadline understands the relative deadline words of all three
// languages; anything else means no deadline.
func parseDeadline(s string, now time.Time) *time.Time {
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
	case containsAny(s, "год", "yil", "year"):
		d = today.AddDate(0, 0, 365)
	default:
		return nil
	}
	return &d
}

func containsAny(s string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func daysUntil(deadline, now time.Time) int {
	return int(dateOnly(deadline).Sub(dateOnly(now)).Hours() / 24)
}

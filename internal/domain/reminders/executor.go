// Package reminders executes the reminder commands: creation with a
// spoken due time, listing with overdue markers, postponing, completing
// and deletion.
package reminders

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ovozpay/nlu-engine/internal/domain/command"
	"github.com/ovozpay/nlu-engine/internal/domain/nlu"
)

// timeLayout renders due times the way the assistant speaks them.
const timeLayout = "02.01.2006 15:04"

var messages = command.Messages{
	nlu.LangRussian: {
		"no_reminders":             "У вас нет активных напоминаний",
		"reminders_list":           "У вас {count} активных напоминаний",
		"reminders_list_overdue":   "У вас {count} активных напоминаний ({overdue} просроченных)",
		"reminder_not_found":       `Напоминание "{title}" не найдено`,
		"reminder_created":         `Напоминание "{title}" создано на {time}`,
		"reminder_created_default": `Напоминание "{title}" создано на {time} (по умолчанию)`,
		"reminder_deleted":         `Напоминание "{title}" удалено`,
		"reminder_postponed":       `Напоминание "{title}" перенесено на {new_time}`,
		"reminder_completed":       `✅ Напоминание "{title}" выполнено`,
		"time_not_recognized":      "Не удалось распознать время напоминания",
		"new_time_not_recognized":  "Не удалось распознать новое время",
		"create_not_understood":    "Не удалось распознать команду создания напоминания",
		"manage_not_understood":    "Не удалось распознать команду управления напоминаниями",
	},
	nlu.LangUzbek: {
		"no_reminders":             "Sizda faol eslatmalar yoq",
		"reminders_list":           "Sizda {count} ta faol eslatma bor",
		"reminders_list_overdue":   "Sizda {count} ta faol eslatma bor",
		"reminder_not_found":       `"{title}" eslatmasi topilmadi`,
		"reminder_created":         `"{title}" eslatmasi {time} ga yaratildi`,
		"reminder_created_default": `"{title}" eslatmasi {time} ga yaratildi (standart)`,
		"reminder_deleted":         `"{title}" eslatmasi oʻchirildi`,
		"reminder_postponed":       `"{title}" eslatmasi {new_time} ga koʻchirildi`,
		"reminder_completed":       `✅ "{title}" eslatmasi bajarildi`,
		"time_not_recognized":      "Eslatma vaqtini aniqlab boʻlmadi",
		"new_time_not_recognized":  "Yangi vaqtni aniqlab boʻlmadi",
		"create_not_understood":    "Eslatma yaratish buyrugʻini aniqlab boʻlmadi",
		"manage_not_understood":    "Eslatmalarni boshqarish buyrugʻini aniqlab boʻlmadi",
	},
	nlu.LangEnglish: {
		"no_reminders":             "You have no active reminders",
		"reminders_list":           "You have {count} active reminders",
		"reminders_list_overdue":   "You have {count} active reminders",
		"reminder_not_found":       `Reminder "{title}" not found`,
		"reminder_created":         `Reminder "{title}" created for {time}`,
		"reminder_created_default": `Reminder "{title}" created for {time} (default)`,
		"reminder_deleted":         `Reminder "{title}" deleted`,
		"reminder_postponed":       `Reminder "{title}" postponed to {new_time}`,
		"reminder_completed":       `✅ Reminder "{title}" completed`,
		"time_not_recognized":      "Could not recognize the reminder time",
		"new_time_not_recognized":  "Could not recognize the new time",
		"create_not_understood":    "Could not understand the reminder creation command",
		"manage_not_understood":    "Could not understand the reminder management command",
	},
}

type reminderAction int

const (
	reminderShow reminderAction = iota
	reminderDelete
	reminderPostpone
	reminderComplete
)

type reminderRoute struct {
	re     *regexp.Regexp
	action reminderAction
}

// reminderRoutes resolves a manage_reminders command to one of its
// operations. The listing phrases go first so the delete patterns
// cannot swallow them.
var reminderRoutes = []reminderRoute{
	{regexp.MustCompile(`покажи.*напоминания|мои напоминания|активные напоминания|eslatmalarimni.*koʻrsat|faol eslatmalar|show.*reminders|active reminders`), reminderShow},
	{regexp.MustCompile(`удали напоминание\s+(.+)`), reminderDelete},
	{regexp.MustCompile(`(.+?)\s+eslatmani\s+oʻchir`), reminderDelete},
	{regexp.MustCompile(`delete reminder\s+(.+)`), reminderDelete},
	{regexp.MustCompile(`отложи напоминание\s+(.+?)\s+на\s+(.+)`), reminderPostpone},
	{regexp.MustCompile(`выполнено напоминание\s+(.+)`), reminderComplete},
	{regexp.MustCompile(`готово напоминание\s+(.+)`), reminderComplete},
	{regexp.MustCompile(`сделано\s+(.+)`), reminderComplete},
}

var (
	clockRe   = regexp.MustCompile(`(\d{1,2}):(\d{2})`)
	hoursRe   = regexp.MustCompile(`(\d+)\s*(?:час|soat|hour)`)
	minutesRe = regexp.MustCompile(`(\d+)\s*(?:минут|daqiqa|minute)`)
	dateRe    = regexp.MustCompile(`(\d{1,2})\.(\d{1,2})(?:\.(\d{2,4}))?`)
)

// Executor handles the reminder intents.
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
	return []nlu.Intent{nlu.IntentCreateReminder, nlu.IntentManageReminders}
}

// Execute routes one parsed command to its operation.
func (e *Executor) Execute(ctx context.Context, userID uuid.UUID, cmd *nlu.ParsedCommand) command.Result {
	switch cmd.Intent {
	case nlu.IntentCreateReminder:
		return e.createReminder(ctx, userID, cmd)
	case nlu.IntentManageReminders:
		return e.manageReminders(ctx, userID, cmd)
	default:
		return command.Fail("unknown command type")
	}
}

// createReminder schedules a reminder from the captures: title first,
// then an optional spoken time. Without a time the reminder lands on
// tomorrow morning.
func (e *Executor) createReminder(ctx context.Context, userID uuid.UUID, cmd *nlu.ParsedCommand) command.Result {
	slots, _ := cmd.Slots.(nlu.RawSlots)
	groups := slots.Groups
	if len(groups) == 0 || strings.TrimSpace(groups[0]) == "" {
		return command.Fail(messages.Format(cmd.Language, "create_not_understood", nil))
	}
	title := strings.TrimSpace(groups[0])

	var remindAt time.Time
	key := "reminder_created"
	if len(groups) >= 2 && strings.TrimSpace(groups[1]) != "" {
		parsed := parseReminderTime(groups[1], e.now())
		if parsed == nil {
			return command.Fail(messages.Format(cmd.Language, "time_not_recognized", nil))
		}
		remindAt = *parsed
	} else {
		key = "reminder_created_default"
		remindAt = defaultRemindAt(e.now())
	}

	reminder := &Reminder{
		ID:          uuid.New(),
		UserID:      userID,
		Title:       title,
		Description: "Голосовое напоминание: " + title,
		RemindAt:    remindAt,
		IsActive:    true,
	}
	if err := e.store.Create(ctx, reminder); err != nil {
		return command.Fail(fmt.Sprintf("create reminder: %v", err))
	}

	e.logger.Info("reminder created",
		"user_id", userID, "reminder_id", reminder.ID, "remind_at", remindAt)

	return command.OKData(
		messages.Format(cmd.Language, key, map[string]string{
			"title": title,
			"time":  remindAt.Format(timeLayout),
		}),
		map[string]any{
			"reminder_id":   reminder.ID.String(),
			"title":         title,
			"reminder_time": remindAt.Format(time.RFC3339),
		},
	)
}

// manageReminders re-parses the normalized text against the operation
// routes because a single intent covers listing, deletion, postponing
// and completion.
func (e *Executor) manageReminders(ctx context.Context, userID uuid.UUID, cmd *nlu.ParsedCommand) command.Result {
	for _, route := range reminderRoutes {
		m := route.re.FindStringSubmatch(cmd.Normalized)
		if m == nil {
			continue
		}
		switch route.action {
		case reminderShow:
			return e.showReminders(ctx, userID, cmd.Language)
		case reminderDelete:
			return e.deleteReminder(ctx, userID, strings.TrimSpace(m[1]), cmd.Language)
		case reminderPostpone:
			return e.postponeReminder(ctx, userID, strings.TrimSpace(m[1]), m[2], cmd.Language)
		case reminderComplete:
			return e.completeReminder(ctx, userID, strings.TrimSpace(m[1]), cmd.Language)
		}
	}
	return command.Fail(messages.Format(cmd.Language, "manage_not_understood", nil))
}

func (e *Executor) showReminders(ctx context.Context, userID uuid.UUID, lang nlu.Language) command.Result {
	pending, err := e.store.ListPending(ctx, userID)
	if err != nil {
		return command.Fail(fmt.Sprintf("list reminders: %v", err))
	}
	if len(pending) == 0 {
		return command.OKData(
			messages.Format(lang, "no_reminders", nil),
			map[string]any{"reminders": []map[string]any{}},
		)
	}

	now := e.now()
	overdue := 0
	rows := make([]map[string]any, 0, len(pending))
	for _, rem := range pending {
		status := "upcoming"
		diff := rem.RemindAt.Sub(now)
		isOverdue := rem.RemindAt.Before(now)
		if isOverdue {
			status = "overdue"
			diff = now.Sub(rem.RemindAt)
			overdue++
		}
		rows = append(rows, map[string]any{
			"id":              rem.ID.String(),
			"title":           rem.Title,
			"description":     rem.Description,
			"reminder_time":   rem.RemindAt.Format(time.RFC3339),
			"status":          status,
			"is_overdue":      isOverdue,
			"time_diff_hours": int(diff.Hours()),
			"formatted_time":  rem.RemindAt.Format(timeLayout),
		})
	}

	key := "reminders_list"
	if overdue > 0 {
		key = "reminders_list_overdue"
	}
	return command.OKData(
		messages.Format(lang, key, map[string]string{
			"count":   strconv.Itoa(len(rows)),
			"overdue": strconv.Itoa(overdue),
		}),
		map[string]any{"reminders": rows},
	)
}

func (e *Executor) deleteReminder(ctx context.Context, userID uuid.UUID, title string, lang nlu.Language) command.Result {
	reminder, err := e.store.FindPending(ctx, userID, title)
	if err != nil {
		return command.Fail(fmt.Sprintf("find reminder: %v", err))
	}
	if reminder == nil {
		return command.Fail(messages.Format(lang, "reminder_not_found", map[string]string{"title": title}))
	}

	if err := e.store.Deactivate(ctx, reminder.ID); err != nil {
		return command.Fail(fmt.Sprintf("delete reminder: %v", err))
	}

	e.logger.Info("reminder deleted", "user_id", userID, "reminder_id", reminder.ID)

	return command.OKData(
		messages.Format(lang, "reminder_deleted", map[string]string{"title": reminder.Title}),
		map[string]any{"reminder_id": reminder.ID.String()},
	)
}

func (e *Executor) postponeReminder(ctx context.Context, userID uuid.UUID, title, timeStr string, lang nlu.Language) command.Result {
	reminder, err := e.store.FindPending(ctx, userID, title)
	if err != nil {
		return command.Fail(fmt.Sprintf("find reminder: %v", err))
	}
	if reminder == nil {
		return command.Fail(messages.Format(lang, "reminder_not_found", map[string]string{"title": title}))
	}

	parsed := parseReminderTime(timeStr, e.now())
	if parsed == nil {
		return command.Fail(messages.Format(lang, "new_time_not_recognized", nil))
	}

	if err := e.store.Reschedule(ctx, reminder.ID, *parsed); err != nil {
		return command.Fail(fmt.Sprintf("postpone reminder: %v", err))
	}

	e.logger.Info("reminder postponed",
		"user_id", userID, "reminder_id", reminder.ID,
		"old_time", reminder.RemindAt, "new_time", *parsed)

	return command.OKData(
		messages.Format(lang, "reminder_postponed", map[string]string{
			"title":    reminder.Title,
			"new_time": parsed.Format(timeLayout),
		}),
		map[string]any{
			"reminder_id": reminder.ID.String(),
			"new_time":    parsed.Format(time.RFC3339),
		},
	)
}

func (e *Executor) completeReminder(ctx context.Context, userID uuid.UUID, title string, lang nlu.Language) command.Result {
	reminder, err := e.store.FindPending(ctx, userID, title)
	if err != nil {
		return command.Fail(fmt.Sprintf("find reminder: %v", err))
	}
	if reminder == nil {
		return command.Fail(messages.Format(lang, "reminder_not_found", map[string]string{"title": title}))
	}

	if err := e.store.Complete(ctx, reminder.ID); err != nil {
		return command.Fail(fmt.Sprintf("complete reminder: %v", err))
	}

	e.logger.Info("reminder completed", "user_id", userID, "reminder_id", reminder.ID)

	return command.OKData(
		messages.Format(lang, "reminder_completed", map[string]string{"title": reminder.Title}),
		map[string]any{"reminder_id": reminder.ID.String()},
	)
}

// parseReminderTime understands the spoken due times of all three
// languages: "завтра" with an optional clock time, bare and prefixed
// durations, a clock time that rolls to tomorrow once passed, and a
// numeric date at ten in the morning. Returns nil when nothing matches.
func parseReminderTime(s string, now time.Time) *time.Time {
	s = strings.ToLower(strings.TrimSpace(s))

	if containsAny(s, "завтра", "ertaga", "tomorrow") {
		base := now.AddDate(0, 0, 1)
		hour, minute := 10, 0
		if h, m, ok := clockIn(s); ok {
			hour, minute = h, m
		}
		t := time.Date(base.Year(), base.Month(), base.Day(), hour, minute, 0, 0, base.Location())
		return &t
	}

	if containsAny(s, "через час", "bir soatdan keyin", "in an hour") || s == "час" || s == "an hour" || s == "hour" || s == "bir soat" {
		t := now.Add(time.Hour)
		return &t
	}

	if m := hoursRe.FindStringSubmatch(s); m != nil {
		n, _ := strconv.Atoi(m[1])
		t := now.Add(time.Duration(n) * time.Hour)
		return &t
	}
	if m := minutesRe.FindStringSubmatch(s); m != nil {
		n, _ := strconv.Atoi(m[1])
		t := now.Add(time.Duration(n) * time.Minute)
		return &t
	}

	if h, m, ok := clockIn(s); ok {
		t := time.Date(now.Year(), now.Month(), now.Day(), h, m, 0, 0, now.Location())
		if !t.After(now) {
			t = t.AddDate(0, 0, 1)
		}
		return &t
	}

	if m := dateRe.FindStringSubmatch(s); m != nil {
		day, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		year := now.Year()
		if m[3] != "" {
			year, _ = strconv.Atoi(m[3])
			if year < 100 {
				year += 2000
			}
		}
		t := time.Date(year, time.Month(month), day, 10, 0, 0, 0, now.Location())
		// time.Date normalizes out-of-range dates; reject them instead.
		if t.Day() != day || int(t.Month()) != month {
			return nil
		}
		return &t
	}

	return nil
}

func defaultRemindAt(now time.Time) time.Time {
	base := now.AddDate(0, 0, 1)
	return time.Date(base.Year(), base.Month(), base.Day(), 10, 0, 0, 0, base.Location())
}

func clockIn(s string) (hour, minute int, ok bool) {
	m := clockRe.FindStringSubmatch(s)
	if m == nil {
		return 0, 0, false
	}
	hour, _ = strconv.Atoi(m[1])
	minute, _ = strconv.Atoi(m[2])
	if hour > 23 || minute > 59 {
		return 0, 0, false
	}
	return hour, minute, true
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

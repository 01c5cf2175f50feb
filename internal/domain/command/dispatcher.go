// Package command routes parsed voice commands to their domain
// executors and shapes the localized results the assistant replies
// with.
package command

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/ovozpay/nlu-engine/internal/domain/nlu"
	"github.com/ovozpay/nlu-engine/pkg/metrics"
)

// Executor handles one family of intents. Executors re-parse domain
// slots from the raw text, run one atomic mutation or read, and answer
// in the language of the command.
type Executor interface {
	Intents() []nlu.Intent
	Execute(ctx context.Context, userID uuid.UUID, cmd *nlu.ParsedCommand) Result
}

var dispatcherMessages = Messages{
	nlu.LangRussian: {
		"unrecognized":    "Не удалось распознать команду. Попробуйте сказать иначе",
		"unknown_command": "Эта команда пока не поддерживается",
	},
	nlu.LangUzbek: {
		"unrecognized":    "Buyruqni aniqlab boʻlmadi. Boshqacha aytib koʻring",
		"unknown_command": "Bu buyruq hali qoʻllab-quvvatlanmaydi",
	},
	nlu.LangEnglish: {
		"unrecognized":    "Could not understand the command. Try saying it differently",
		"unknown_command": "This command is not supported yet",
	},
}

// Unrecognized is the reply for text the classifier produced no intent
// for.
func Unrecognized(lang nlu.Language) Result {
	return Fail(dispatcherMessages.Format(lang, "unrecognized", nil))
}

// Dispatcher routes parsed commands to registered executors.
type Dispatcher struct {
	executors map[nlu.Intent]Executor
	logger    *slog.Logger
	tracer    trace.Tracer
}

// NewDispatcher builds a dispatcher over the given executors. A later
// executor claiming an already registered intent replaces the earlier
// one.
func NewDispatcher(logger *slog.Logger, executors ...Executor) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}

	d := &Dispatcher{
		executors: make(map[nlu.Intent]Executor),
		logger:    logger,
		tracer:    otel.Tracer("command"),
	}
	for _, exec := range executors {
		for _, intent := range exec.Intents() {
			if _, taken := d.executors[intent]; taken {
				logger.Warn("intent registered twice, keeping the last executor",
					slog.String("intent", string(intent)))
			}
			d.executors[intent] = exec
		}
	}
	return d
}

// Dispatch executes one parsed command for a user. A nil command means
// the classifier matched nothing and yields the unrecognized reply.
func (d *Dispatcher) Dispatch(ctx context.Context, userID uuid.UUID, cmd *nlu.ParsedCommand) Result {
	if cmd == nil || cmd.Intent == nlu.IntentNone {
		metrics.RecordUnrecognized()
		lang := nlu.LangRussian
		if cmd != nil {
			lang = cmd.Language
		}
		return Unrecognized(lang)
	}

	start := time.Now()
	ctx, span := d.tracer.Start(ctx, "command.dispatch", trace.WithAttributes(
		attribute.String("command.intent", string(cmd.Intent)),
		attribute.String("command.language", string(cmd.Language)),
	))
	defer span.End()

	metrics.RecordConfidence(string(cmd.Intent), cmd.Confidence)

	exec, ok := d.executors[cmd.Intent]
	if !ok {
		metrics.RecordCommand(string(cmd.Intent), "unknown", time.Since(start).Seconds())
		d.logger.Warn("no executor for intent", slog.String("intent", string(cmd.Intent)))
		return Fail(dispatcherMessages.Format(cmd.Language, "unknown_command", nil))
	}

	result := exec.Execute(ctx, userID, cmd)

	status := "ok"
	if !result.Success {
		status = "error"
	}
	metrics.RecordCommand(string(cmd.Intent), status, time.Since(start).Seconds())
	span.SetAttributes(attribute.Bool("command.success", result.Success))

	d.logger.Info("command dispatched",
		slog.String("intent", string(cmd.Intent)),
		slog.String("user_id", userID.String()),
		slog.String("status", status),
		slog.Float64("confidence", cmd.Confidence))

	return result
}

// Supports reports whether an executor is registered for the intent.
func (d *Dispatcher) Supports(intent nlu.Intent) bool {
	_, ok := d.executors[intent]
	return ok
}

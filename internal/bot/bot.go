package bot

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strconv"
	"strings"
	"time"
	"unicode"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"household-planner/internal/calendar"
	"household-planner/internal/model"
	"household-planner/internal/repository"
	"household-planner/internal/service"
)

const (
	cbDonePrefix = "done:"
	cbPlanPrefix = "plan:"
)

const (
	menuLabelToday    = "📋 Сегодня"
	menuLabelSuggest  = "💡 Предложить"
	menuLabelPace     = "📈 Темп"
	menuLabelHelp     = "ℹ️ Помощь"
	defaultSuggestFor = model.CadenceDaily
)

// Services bundles what the bot needs from the planning layer.
type Services struct {
	Users     *repository.UserRepository
	Planner   *service.PlannerService
	Cascade   *service.CascadeService
	Absence   *service.AbsenceService
	Summary   *service.SummaryService
	Threshold float64
}

// Bot aggregates Telegram API with services.
type Bot struct {
	api    *tgbotapi.BotAPI
	svc    Services
	logger *zap.Logger
	now    func() time.Time
}

func New(token string, svc Services, logger *zap.Logger) (*Bot, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}

	logger.Info("Bot authorized", zap.String("account", api.Self.UserName))

	return &Bot{
		api:    api,
		svc:    svc,
		logger: logger,
		now:    time.Now,
	}, nil
}

// Start begins polling updates until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) error {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := b.api.GetUpdatesChan(updateConfig)

	b.logger.Info("Start polling updates")

	go func() {
		<-ctx.Done()
		b.api.StopReceivingUpdates()
	}()

	for update := range updates {
		switch {
		case update.CallbackQuery != nil:
			if err := b.handleCallback(ctx, update.CallbackQuery); err != nil {
				b.logger.Error("Handle callback failed", zap.Error(err))
			}
		case update.Message != nil:
			if update.Message.Chat == nil || !update.Message.Chat.IsPrivate() {
				continue
			}
			if err := b.handleMessage(ctx, update.Message); err != nil {
				b.logger.Error("Handle message failed", zap.Error(err))
			}
		}
	}

	return nil
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) error {
	if msg.From == nil {
		return nil
	}

	if msg.IsCommand() {
		b.logger.Info("Command received",
			zap.Int64("telegram_id", msg.From.ID),
			zap.String("command", msg.Command()),
			zap.String("args", msg.CommandArguments()),
		)
		return b.handleCommand(ctx, msg)
	}

	if handled, err := b.handleMenuAlias(ctx, msg); handled {
		return err
	}

	return b.sendText(msg.Chat.ID, "Я пока не понял сообщение. Набери /today, чтобы увидеть план на день, или /help для списка команд.")
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) error {
	switch msg.Command() {
	case "start":
		return b.handleStart(ctx, msg)
	case "help":
		return b.handleHelp(msg)
	case "today":
		return b.handleToday(ctx, msg.Chat.ID)
	case "done":
		return b.handleDone(ctx, msg)
	case "delete":
		return b.handleDelete(ctx, msg)
	case "suggest":
		return b.handleSuggest(ctx, msg.Chat.ID, msg.From, msg.CommandArguments())
	case "pace":
		return b.handlePace(ctx, msg.Chat.ID)
	case "warnings":
		return b.handleWarnings(ctx, msg.Chat.ID)
	case "streak":
		return b.handleStreak(ctx, msg)
	case "away":
		return b.handleAway(ctx, msg)
	default:
		return b.sendText(msg.Chat.ID, "Команда не поддерживается. Загляни в /help.")
	}
}

func (b *Bot) handleStart(ctx context.Context, msg *tgbotapi.Message) error {
	if _, err := b.ensureUser(ctx, msg.From); err != nil {
		return err
	}

	name := strings.TrimSpace(msg.From.FirstName)
	if name == "" {
		name = "друг"
	}

	text := fmt.Sprintf("👋 Привет, %s!\n<b>Я помогаю вести домашние дела по расписанию.</b>\n\n%s", escape(name), helpText)
	return b.sendText(msg.Chat.ID, text)
}

const helpText = "Команды:\n" +
	"• /today — план на сегодня\n" +
	"• /done &lt;id&gt; — отметить выполненным (например, /done 12)\n" +
	"• /delete &lt;id&gt; — убрать запись из плана\n" +
	"• /suggest [daily|weekly|…] — что сделать в свободный слот\n" +
	"• /pace — успеваем ли закрыть циклы\n" +
	"• /warnings — циклы, которые скоро закончатся\n" +
	"• /streak — текущая серия дней\n" +
	"• /away &lt;с&gt; &lt;по&gt; — отпуск, даты ГГГГ-ММ-ДД"

func (b *Bot) handleHelp(msg *tgbotapi.Message) error {
	return b.sendText(msg.Chat.ID, "ℹ️ <b>Подсказки</b>\n"+helpText)
}

func (b *Bot) handleToday(ctx context.Context, chatID int64) error {
	now := b.now()
	text, err := b.svc.Summary.DailySummary(ctx, now)
	if err != nil {
		return b.sendText(chatID, fmt.Sprintf("Не удалось сформировать план: %s", escape(err.Error())))
	}
	agenda, err := b.svc.Planner.Agenda(ctx, now)
	if err != nil {
		return err
	}

	var buttons [][]tgbotapi.InlineKeyboardButton
	for _, item := range agenda {
		if item.Completed {
			continue
		}
		label := fmt.Sprintf("✅ #%d · %s", item.Occurrence.ID, shortTitle(item.Occurrence.Task.Title, 24))
		buttons = append(buttons, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, fmt.Sprintf("%s%d", cbDonePrefix, item.Occurrence.ID)),
		))
	}
	if len(buttons) == 0 {
		return b.sendText(chatID, text)
	}
	return b.sendWithReplyMarkup(chatID, text, tgbotapi.NewInlineKeyboardMarkup(buttons...))
}

func (b *Bot) handleDone(ctx context.Context, msg *tgbotapi.Message) error {
	id, err := parseID(msg.CommandArguments())
	if err != nil {
		return b.sendText(msg.Chat.ID, "Укажи номер записи из плана: /done 12")
	}
	return b.completeAndRefresh(ctx, msg.Chat.ID, msg.From, id)
}

func (b *Bot) completeAndRefresh(ctx context.Context, chatID int64, from *tgbotapi.User, occurrenceID uint) error {
	user, err := b.ensureUser(ctx, from)
	if err != nil {
		return err
	}

	_, err = b.svc.Planner.CompleteOccurrence(ctx, user.ID, occurrenceID, b.now(), "")
	switch {
	case errors.Is(err, service.ErrOccurrenceNotFound):
		return b.sendText(chatID, "Запись не найдена или уже убрана из плана.")
	case errors.Is(err, service.ErrAlreadyCompleted):
		return b.sendText(chatID, "Эта запись уже отмечена выполненной.")
	case err != nil:
		return b.sendText(chatID, fmt.Sprintf("Ошибка: %s", escape(err.Error())))
	}

	b.logger.Info("Occurrence completed", zap.Uint("occurrence_id", occurrenceID), zap.Uint("user_id", user.ID))
	if err := b.sendText(chatID, fmt.Sprintf("✅ Запись #%d выполнена.", occurrenceID)); err != nil {
		return err
	}
	return b.handleToday(ctx, chatID)
}

func (b *Bot) handleDelete(ctx context.Context, msg *tgbotapi.Message) error {
	id, err := parseID(msg.CommandArguments())
	if err != nil {
		return b.sendText(msg.Chat.ID, "Укажи номер записи из плана: /delete 12")
	}

	hidden, err := b.svc.Planner.DeleteOccurrence(ctx, id)
	switch {
	case errors.Is(err, service.ErrOccurrenceNotFound):
		return b.sendText(msg.Chat.ID, "Запись не найдена.")
	case err != nil:
		return b.sendText(msg.Chat.ID, fmt.Sprintf("Ошибка: %s", escape(err.Error())))
	}

	if hidden {
		return b.sendText(msg.Chat.ID, fmt.Sprintf("🙈 Запись #%d скрыта на этот день.", id))
	}
	return b.sendText(msg.Chat.ID, fmt.Sprintf("\U0001F5D1 Запись #%d удалена.", id))
}

func (b *Bot) handleSuggest(ctx context.Context, chatID int64, from *tgbotapi.User, args string) error {
	cadence := defaultSuggestFor
	if raw := strings.TrimSpace(args); raw != "" {
		parsed, err := model.ParseCadence(raw)
		if err != nil {
			return b.sendText(chatID, "Не знаю такой периодичности. Варианты: daily, weekly, biweekly, monthly, bimonthly, semiannual.")
		}
		cadence = parsed
	}

	user, err := b.ensureUser(ctx, from)
	if err != nil {
		return err
	}

	suggestion, err := b.svc.Cascade.SuggestCascadedTask(ctx, service.SuggestionRequest{
		CurrentCadence: cadence,
		UserID:         &user.ID,
		Now:            b.now(),
	})
	if err != nil {
		return b.sendText(chatID, fmt.Sprintf("Ошибка: %s", escape(err.Error())))
	}
	if suggestion == nil {
		return b.sendText(chatID, fmt.Sprintf("Для слота «%s» предложить нечего: всё уже запланировано.", service.CadenceTitle(cadence)))
	}

	markup := tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("📌 Запланировать на сегодня", planCallback(suggestion.Task.ID, cadence)),
	))
	return b.sendWithReplyMarkup(chatID, formatSuggestion(cadence, suggestion), markup)
}

func (b *Bot) schedulePlan(ctx context.Context, chatID int64, taskID uint, slot model.Cadence) error {
	occ, err := b.svc.Planner.ScheduleTask(ctx, service.ScheduleInput{
		TaskID:    taskID,
		Date:      b.now(),
		Slot:      slot,
		Suggested: true,
	})
	switch {
	case errors.Is(err, service.ErrTaskNotFound):
		return b.sendText(chatID, "Задача не найдена или уже удалена.")
	case err != nil:
		return b.sendText(chatID, fmt.Sprintf("Ошибка: %s", escape(err.Error())))
	}
	b.logger.Info("Suggestion scheduled", zap.Uint("task_id", taskID), zap.Uint("occurrence_id", occ.ID))
	return b.sendText(chatID, fmt.Sprintf("📌 Добавлено в план на сегодня: запись #%d.", occ.ID))
}

func (b *Bot) handlePace(ctx context.Context, chatID int64) error {
	warnings, err := b.svc.Cascade.CheckCascadePace(ctx, b.now())
	if err != nil {
		return b.sendText(chatID, fmt.Sprintf("Ошибка: %s", escape(err.Error())))
	}
	return b.sendText(chatID, formatPace(warnings))
}

func (b *Bot) handleWarnings(ctx context.Context, chatID int64) error {
	warnings, err := b.svc.Cascade.GetDashboardPlanningWarnings(ctx, b.now(), b.svc.Threshold)
	if err != nil {
		return b.sendText(chatID, fmt.Sprintf("Ошибка: %s", escape(err.Error())))
	}
	if len(warnings) == 0 {
		return b.sendText(chatID, "👌 Все циклы под контролем.")
	}

	var builder strings.Builder
	builder.WriteString("⏳ <b>Цикл заканчивается</b>\n")
	for _, w := range warnings {
		titles := make([]string, 0, len(w.UnscheduledTasks))
		for _, t := range w.UnscheduledTasks {
			titles = append(titles, escape(t))
		}
		builder.WriteString(fmt.Sprintf("• %s: осталось %.0f%%, не запланировано: %s\n",
			service.CadenceTitle(w.Cadence), w.RemainingFraction*100, strings.Join(titles, ", ")))
	}
	return b.sendText(chatID, strings.TrimSpace(builder.String()))
}

func (b *Bot) handleStreak(ctx context.Context, msg *tgbotapi.Message) error {
	user, err := b.ensureUser(ctx, msg.From)
	if err != nil {
		return err
	}
	summary, err := b.svc.Absence.UserStreak(ctx, user.ID, b.now())
	if err != nil {
		return b.sendText(msg.Chat.ID, fmt.Sprintf("Ошибка: %s", escape(err.Error())))
	}

	text := fmt.Sprintf("🔥 Серия: <b>%d</b> %s подряд.", summary.Days, pluralDays(summary.Days))
	if summary.OnAbsence {
		text += "\n🏖 Сегодня ты в отпуске, серия не прервётся."
	}
	return b.sendText(msg.Chat.ID, text)
}

func (b *Bot) handleAway(ctx context.Context, msg *tgbotapi.Message) error {
	from, to, err := parseAwayArgs(msg.CommandArguments())
	if err != nil {
		return b.sendText(msg.Chat.ID, "Формат: /away 2026-07-01 2026-07-14")
	}
	user, err := b.ensureUser(ctx, msg.From)
	if err != nil {
		return err
	}

	period, err := b.svc.Absence.CreateAbsence(ctx, service.AbsenceInput{UserID: user.ID, Start: from, End: to})
	switch {
	case errors.Is(err, service.ErrAbsenceOverlap):
		return b.sendText(msg.Chat.ID, "Этот период пересекается с уже заявленным отпуском.")
	case errors.Is(err, service.ErrInvalidAbsenceRange):
		return b.sendText(msg.Chat.ID, "Дата окончания раньше даты начала.")
	case err != nil:
		return b.sendText(msg.Chat.ID, fmt.Sprintf("Ошибка: %s", escape(err.Error())))
	}

	return b.sendText(msg.Chat.ID, fmt.Sprintf("🏖 Отпуск с %s по %s записан.",
		period.StartDate.UTC().Format("02.01.2006"), period.EndDate.UTC().Format("02.01.2006")))
}

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) error {
	if cb == nil || cb.From == nil || cb.Message == nil {
		return nil
	}
	if _, err := b.api.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil {
		b.logger.Warn("Callback ack failed", zap.Error(err))
	}

	data := cb.Data
	switch {
	case strings.HasPrefix(data, cbDonePrefix):
		id, err := parseID(strings.TrimPrefix(data, cbDonePrefix))
		if err != nil {
			return nil
		}
		return b.completeAndRefresh(ctx, cb.Message.Chat.ID, cb.From, id)
	case strings.HasPrefix(data, cbPlanPrefix):
		taskID, slot, err := parsePlanCallback(data)
		if err != nil {
			return nil
		}
		return b.schedulePlan(ctx, cb.Message.Chat.ID, taskID, slot)
	default:
		return nil
	}
}

func (b *Bot) handleMenuAlias(ctx context.Context, msg *tgbotapi.Message) (bool, error) {
	text := strings.TrimSpace(strings.ToLower(msg.Text))
	switch text {
	case strings.ToLower(menuLabelToday):
		return true, b.handleToday(ctx, msg.Chat.ID)
	case strings.ToLower(menuLabelSuggest):
		return true, b.handleSuggest(ctx, msg.Chat.ID, msg.From, "")
	case strings.ToLower(menuLabelPace):
		return true, b.handlePace(ctx, msg.Chat.ID)
	case strings.ToLower(menuLabelHelp):
		return true, b.handleHelp(msg)
	default:
		return false, nil
	}
}

func (b *Bot) ensureUser(ctx context.Context, from *tgbotapi.User) (*model.User, error) {
	name := strings.TrimSpace(strings.TrimSpace(from.FirstName) + " " + strings.TrimSpace(from.LastName))
	return b.svc.Users.UpsertFromTelegram(ctx, from.ID, name, from.UserName)
}

func (b *Bot) sendText(chatID int64, text string) error {
	return b.sendWithReplyMarkup(chatID, text, mainMenuKeyboard())
}

func (b *Bot) sendWithReplyMarkup(chatID int64, text string, markup interface{}) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = markup
	_, err := b.api.Send(msg)
	return err
}

func mainMenuKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(menuLabelToday),
			tgbotapi.NewKeyboardButton(menuLabelSuggest),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(menuLabelPace),
			tgbotapi.NewKeyboardButton(menuLabelHelp),
		),
	)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = false
	return kb
}

func parseID(raw string) (uint, error) {
	value, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, err
	}
	if value == 0 {
		return 0, fmt.Errorf("id must be positive")
	}
	return uint(value), nil
}

func planCallback(taskID uint, slot model.Cadence) string {
	return fmt.Sprintf("%s%d:%s", cbPlanPrefix, taskID, slot)
}

func parsePlanCallback(data string) (uint, model.Cadence, error) {
	rawID, rawSlot, ok := strings.Cut(strings.TrimPrefix(data, cbPlanPrefix), ":")
	if !ok {
		return 0, "", fmt.Errorf("malformed plan callback %q", data)
	}
	id, err := parseID(rawID)
	if err != nil {
		return 0, "", err
	}
	slot, err := model.ParseCadence(rawSlot)
	if err != nil {
		return 0, "", err
	}
	return id, slot, nil
}

// parseAwayArgs reads "<from> [to]"; a single date means a one-day absence.
func parseAwayArgs(args string) (time.Time, time.Time, error) {
	fields := strings.Fields(args)
	if len(fields) == 0 || len(fields) > 2 {
		return time.Time{}, time.Time{}, fmt.Errorf("expected one or two dates")
	}
	from, err := calendar.ParseCivilDate(fields[0])
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	to := from
	if len(fields) == 2 {
		if to, err = calendar.ParseCivilDate(fields[1]); err != nil {
			return time.Time{}, time.Time{}, err
		}
	}
	return from, to, nil
}

func formatSuggestion(slot model.Cadence, s *service.Suggestion) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("💡 В слот «%s» можно взять задачу «%s» <i>(%s)</i>.\n",
		service.CadenceTitle(slot), escape(normalizeTitle(s.Task.Title)), service.CadenceTitle(s.SourceCadence)))
	if s.LastCompletedAt != nil {
		sb.WriteString(fmt.Sprintf("Последний раз: %s.", s.LastCompletedAt.UTC().Format("02.01.2006")))
	} else {
		sb.WriteString("Ещё ни разу не выполнялась.")
	}
	return sb.String()
}

func formatPace(warnings []service.PaceWarning) string {
	if len(warnings) == 0 {
		return "👌 Темп нормальный: все циклы успеваем закрыть."
	}
	var sb strings.Builder
	sb.WriteString("⚠️ <b>Не успеваем</b>\n")
	for _, w := range warnings {
		sb.WriteString(fmt.Sprintf("• %s: задач %d из %d, возможностей %d\n",
			service.CadenceTitle(w.Cadence), w.RemainingTasks, w.TotalTasks, w.RemainingSlots))
	}
	return strings.TrimSpace(sb.String())
}

func pluralDays(n int) string {
	switch {
	case n%10 == 1 && n%100 != 11:
		return "день"
	case n%10 >= 2 && n%10 <= 4 && (n%100 < 12 || n%100 > 14):
		return "дня"
	default:
		return "дней"
	}
}

func shortTitle(title string, maxLen int) string {
	clean := normalizeTitle(strings.ReplaceAll(title, "\n", " "))
	runes := []rune(clean)
	if len(runes) <= maxLen {
		return clean
	}
	if maxLen <= 1 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-1]) + "…"
}

func normalizeTitle(value string) string {
	value = strings.Join(strings.Fields(value), " ")
	if value == "" {
		return value
	}
	runes := []rune(value)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

func escape(s string) string {
	return html.EscapeString(s)
}

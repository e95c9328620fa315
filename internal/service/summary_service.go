package service

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"household-planner/internal/calendar"
	"household-planner/internal/model"
)

// SummaryService builds the human-readable planning digest shown by the bot.
type SummaryService struct {
	planner   *PlannerService
	cascade   *CascadeService
	threshold float64
}

func NewSummaryService(planner *PlannerService, cascade *CascadeService, threshold float64) *SummaryService {
	return &SummaryService{planner: planner, cascade: cascade, threshold: threshold}
}

// DailySummary renders today's agenda, planning warnings and pace warnings as HTML.
// It runs the planning pass first so the grid is populated.
func (s *SummaryService) DailySummary(ctx context.Context, now time.Time) (string, error) {
	if _, err := s.planner.PreparePlanningDay(ctx, now); err != nil {
		return "", err
	}
	agenda, err := s.planner.Agenda(ctx, now)
	if err != nil {
		return "", err
	}
	warnings, err := s.cascade.GetDashboardPlanningWarnings(ctx, now, s.threshold)
	if err != nil {
		return "", err
	}
	pace, err := s.cascade.CheckCascadePace(ctx, now)
	if err != nil {
		return "", err
	}

	var builder strings.Builder
	builder.WriteString("📋 <b>План на день</b>\n")
	builder.WriteString(fmt.Sprintf("🗓 %s\n\n", now.UTC().Format("02.01.2006")))

	if len(agenda) == 0 {
		builder.WriteString("— на сегодня ничего не запланировано\n")
	}
	for _, item := range agenda {
		builder.WriteString(formatAgendaItem(item))
	}

	if len(warnings) > 0 {
		builder.WriteString("\n⏳ <b>Цикл заканчивается</b>\n")
		for _, w := range warnings {
			builder.WriteString(formatPlanningWarning(w))
		}
	}

	if len(pace) > 0 {
		builder.WriteString("\n⚠️ <b>Не успеваем</b>\n")
		for _, w := range pace {
			builder.WriteString(fmt.Sprintf("• %s: осталось задач %d, возможностей %d (до %s)\n",
				CadenceTitle(w.Cadence), w.RemainingTasks, w.RemainingSlots,
				calendar.DayKey(calendar.AddDays(w.CycleEnd, -1))))
		}
	}

	return strings.TrimSpace(builder.String()), nil
}

func formatAgendaItem(item AgendaItem) string {
	var sb strings.Builder

	icon := "⬜️"
	if item.Completed {
		icon = "✅"
	}
	title := html.EscapeString(strings.TrimSpace(item.Occurrence.Task.Title))
	sb.WriteString(fmt.Sprintf("%s <code>#%d</code> %s <i>(%s)</i>", icon, item.Occurrence.ID, title, CadenceTitle(item.Occurrence.Slot)))
	if item.Occurrence.Suggested {
		sb.WriteString(" 💡")
	}
	sb.WriteByte('\n')
	return sb.String()
}

func formatPlanningWarning(w PlanningWarning) string {
	titles := make([]string, 0, len(w.UnscheduledTasks))
	for _, t := range w.UnscheduledTasks {
		titles = append(titles, html.EscapeString(t))
	}
	return fmt.Sprintf("• %s: осталось %.0f%% цикла, не запланировано: %s\n",
		CadenceTitle(w.Cadence), w.RemainingFraction*100, strings.Join(titles, ", "))
}

// CadenceTitle is the Russian label used in bot messages.
func CadenceTitle(c model.Cadence) string {
	switch c {
	case model.CadenceDaily:
		return "ежедневно"
	case model.CadenceWeekly:
		return "еженедельно"
	case model.CadenceBiweekly:
		return "раз в две недели"
	case model.CadenceMonthly:
		return "ежемесячно"
	case model.CadenceBimonthly:
		return "раз в два месяца"
	case model.CadenceSemiannual:
		return "раз в полгода"
	case model.CadenceYearly:
		return "ежегодно"
	default:
		return c.Label()
	}
}

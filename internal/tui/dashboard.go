package tui

import (
	"fmt"
	"strings"

	"github.com/NimbleMarkets/ntcharts/barchart"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Lillogorillo/Beam-App/internal/store"
)

const chartDays = 7

type dashboardModel struct {
	store  *store.Store
	width  int
	height int

	stats  store.DashboardStats
	today  []store.Task
	days   []store.DayTotal
	chart  barchart.Model
	loaded bool
}

func newDashboardModel(s *store.Store) dashboardModel {
	return dashboardModel{
		store: s,
		chart: barchart.New(60, 10),
	}
}

func (d *dashboardModel) setSize(w, h int) {
	d.width = w
	d.height = h
	d.buildChart()
}

type dashboardDataMsg struct {
	stats store.DashboardStats
	today []store.Task
	days  []store.DayTotal
}

func (d dashboardModel) refresh() tea.Cmd {
	return func() tea.Msg {
		return dashboardDataMsg{
			stats: d.store.DashboardStats(),
			today: d.store.TodayTasks(),
			days:  d.store.MinutesByDay(chartDays),
		}
	}
}

func (d dashboardModel) update(msg tea.Msg) (dashboardModel, tea.Cmd) {
	if msg, ok := msg.(dashboardDataMsg); ok {
		d.stats = msg.stats
		d.today = msg.today
		d.days = msg.days
		d.loaded = true
		d.buildChart()
	}
	return d, nil
}

func (d *dashboardModel) buildChart() {
	chartWidth := max(d.width-8, 20)
	chartHeight := 10
	if d.height > 30 {
		chartHeight = 14
	}

	d.chart = barchart.New(chartWidth, chartHeight)

	bars := make([]barchart.BarData, 0, len(d.days))
	for _, day := range d.days {
		style := lipgloss.NewStyle().Foreground(colorPrimary)
		if day.Minutes == 0 {
			style = lipgloss.NewStyle().Foreground(colorSubtle)
		}
		bars = append(bars, barchart.BarData{
			Label: day.Day.Format("Mon"),
			Values: []barchart.BarValue{{
				Name:  "minutes",
				Value: day.Minutes,
				Style: style,
			}},
		})
	}

	d.chart.PushAll(bars)
	d.chart.Draw()
}

func (d dashboardModel) view() string {
	if d.width < 20 {
		return "Terminal too small"
	}
	w := d.width - 4

	return lipgloss.JoinVertical(lipgloss.Left,
		d.renderStats(w),
		d.renderToday(w),
		d.renderChart(w),
	)
}

func (d dashboardModel) renderStats(w int) string {
	s := d.stats
	rate := successStyle.Render(fmt.Sprintf("%.0f%%", s.CompletionRate))
	lines := []string{
		titleStyle.Render("Overview"),
		fmt.Sprintf("  Tasks       %d  (%d done)", s.TotalTasks, s.CompletedTasks),
		fmt.Sprintf("  Completion  %s", rate),
		fmt.Sprintf("  Focus time  %s", highlightStyle.Render(formatMinutes(s.TotalTimeSpent))),
		fmt.Sprintf("  Today       %d/%d tasks done", s.TodayCompletedTasks, s.TodayTasks),
	}
	return panelStyle.Width(w).Render(strings.Join(lines, "\n"))
}

func (d dashboardModel) renderToday(w int) string {
	title := titleStyle.Render("Today")
	if len(d.today) == 0 {
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
			title,
			mutedStyle.Render("Nothing planned for today"),
		))
	}

	rows := []string{title}
	for _, t := range d.today {
		mark := "○"
		name := t.Title
		if t.Completed {
			mark = successStyle.Render("✓")
			name = doneStyle.Render(t.Title)
		}
		rows = append(rows, fmt.Sprintf("  %s %s  %s", mark, name, priorityBadge(string(t.Priority))))
	}
	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func (d dashboardModel) renderChart(w int) string {
	var total float64
	for _, day := range d.days {
		total += day.Minutes
	}
	header := fmt.Sprintf("%s  %s",
		titleStyle.Render(fmt.Sprintf("Last %d days", chartDays)),
		mutedStyle.Render(formatMinutes(total)+" focused"),
	)
	if total == 0 {
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
			header,
			mutedStyle.Render("  No focus sessions recorded yet"),
		))
	}
	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, header, "", d.chart.View()))
}

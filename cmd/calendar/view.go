package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/example/calendar-events/internal/application"
	"github.com/example/calendar-events/internal/calendar"
	"github.com/example/calendar-events/internal/config"
)

const dateLayout = "2006-01-02"

func newViewCommand(c *cli) *cobra.Command {
	var (
		mode string
		date string
	)

	cmd := &cobra.Command{
		Use:   "view",
		Short: "Print the agenda for a month, week or day",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := c.logger()
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			viewMode, err := calendar.ParseMode(mode)
			if err != nil {
				return err
			}
			selected := time.Now().In(cfg.Location)
			if date != "" {
				selected, err = time.ParseInLocation(dateLayout, date, cfg.Location)
				if err != nil {
					return fmt.Errorf("invalid --date %q: %w", date, err)
				}
			}

			storage, err := openStorage(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer closeStorage(storage, logger)

			events := application.NewEventServiceWithLogger(newEventRepositoryAdapter(storage), application.EventServiceDeps{}, nil, time.Now, logger)
			engine := calendar.NewEngine(cfg.WeekStart, calendar.LabelsFor(cfg.Locale), nil)
			view, err := application.NewViewServiceWithLogger(events, engine, cfg.Location, logger).Calendar(cmd.Context(), viewMode, selected)
			if err != nil {
				return err
			}
			return writeAgenda(cmd.OutOrStdout(), view, cfg.Location)
		},
	}
	cmd.Flags().StringVar(&mode, "mode", string(calendar.ModeMonth), "month, week or day")
	cmd.Flags().StringVar(&date, "date", "", "reference date (YYYY-MM-DD), defaults to today")
	return cmd
}

// writeAgenda lists the cells of view that hold events, one row per cell,
// with the cell labels in an aligned column.
func writeAgenda(w io.Writer, view application.CalendarView, loc *time.Location) error {
	renderer := lipgloss.NewRenderer(w)
	header := renderer.NewStyle().Bold(true).Render(fmt.Sprintf("%s %s", view.Mode, view.Date.In(loc).Format(dateLayout)))

	var labels, entries []string
	for _, cell := range view.Cells {
		if len(cell.Placements) == 0 && cell.Hidden == 0 {
			continue
		}

		label := cell.Cell.Weekday + " " + cell.Cell.Start.In(loc).Format(dateLayout)
		if cell.Cell.Granularity != calendar.GranularityDay {
			label += " " + cell.Cell.Start.In(loc).Format("15:04")
		}

		titles := make([]string, 0, len(cell.Placements)+1)
		for _, placement := range cell.Placements {
			titles = append(titles, describeEvent(placement.Event, loc))
		}
		if cell.More != "" {
			titles = append(titles, cell.More)
		}
		labels = append(labels, label)
		entries = append(entries, strings.Join(titles, "; "))
	}
	if len(labels) == 0 {
		labels, entries = []string{"-"}, []string{""}
	}

	width := 0
	for _, label := range labels {
		width = max(width, lipgloss.Width(label))
	}
	labelStyle := renderer.NewStyle().Width(width + 2)

	lines := make([]string, 0, len(labels)+1)
	lines = append(lines, header)
	for i, label := range labels {
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, labelStyle.Render(label), entries[i]))
	}
	_, err := fmt.Fprintln(w, lipgloss.JoinVertical(lipgloss.Left, lines...))
	return err
}

func describeEvent(event calendar.Event, loc *time.Location) string {
	if event.AllDay {
		return event.Title
	}
	return fmt.Sprintf("%s-%s %s", event.Start.In(loc).Format("15:04"), event.End.In(loc).Format("15:04"), event.Title)
}

package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/calendar-events/internal/application"
	"github.com/example/calendar-events/internal/config"
	"github.com/example/calendar-events/internal/ics"
)

func newExportCommand(c *cli) *cobra.Command {
	var (
		output string
		name   string
		from   string
		to     string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write stored events as an iCalendar document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := c.logger()
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			params, err := rangeParams(from, to, cfg.Location)
			if err != nil {
				return err
			}

			storage, err := openStorage(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer closeStorage(storage, logger)

			service := application.NewEventServiceWithLogger(newEventRepositoryAdapter(storage), application.EventServiceDeps{}, nil, time.Now, logger)
			events, err := service.ListEvents(cmd.Context(), params)
			if err != nil {
				return err
			}

			var w io.Writer = cmd.OutOrStdout()
			if output != "" && output != "-" {
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("create %s: %w", output, err)
				}
				defer f.Close()
				w = f
			}

			if err := ics.Write(w, events, name, ics.LatestUpdate(events)); err != nil {
				return fmt.Errorf("write calendar: %w", err)
			}
			logger.Debug("events exported", "count", len(events), "output", output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "-", "destination file, - for stdout")
	cmd.Flags().StringVar(&name, "name", "Calendario", "calendar name")
	cmd.Flags().StringVar(&from, "from", "", "only events starting on or after this date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "only events starting before this date (YYYY-MM-DD)")
	return cmd
}

func rangeParams(from, to string, loc *time.Location) (application.ListEventsParams, error) {
	var params application.ListEventsParams
	if from != "" {
		start, err := time.ParseInLocation(dateLayout, from, loc)
		if err != nil {
			return params, fmt.Errorf("invalid --from %q: %w", from, err)
		}
		params.From = &start
	}
	if to != "" {
		end, err := time.ParseInLocation(dateLayout, to, loc)
		if err != nil {
			return params, fmt.Errorf("invalid --to %q: %w", to, err)
		}
		params.To = &end
	}
	return params, nil
}

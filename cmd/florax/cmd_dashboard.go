package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/florax/florax-dashboard/internal/pkg/application/irrigation"
	"github.com/florax/florax-dashboard/internal/pkg/application/session"
	render "github.com/florax/florax-dashboard/internal/pkg/presentation/cli"
	"github.com/spf13/cobra"
)

// errLoadFailed makes the process exit non-zero after the section, including
// its error line, has been printed.
var errLoadFailed = errors.New("some data could not be loaded")

func (c *cli) requireSession(ctx context.Context) error {
	if c.app.Session.Authenticated() {
		return nil
	}
	c.unauthorized(ctx)
	return session.ErrNoToken
}

func (c *cli) overviewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "overview",
		Short: "Show the headline figures of your gardens",
		RunE: func(cmd *cobra.Command, args []string) error {
			o := c.app.Dashboard.Overview

			err := o.Mount(cmd.Context())
			if errors.Is(err, session.ErrNoToken) {
				return err
			}

			render.RenderOverview(c.out, o)
			if err != nil {
				return errLoadFailed
			}
			return nil
		},
	}
}

func (c *cli) zonesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "zones",
		Short: "List irrigation zones",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.requireSession(cmd.Context()); err != nil {
				return err
			}

			err := c.app.Dashboard.Zones.Mount(cmd.Context())
			render.RenderZones(c.out, c.app.Dashboard.Zones)
			return loadResult(err)
		},
	}
}

func (c *cli) sensorsCmd() *cobra.Command {
	var faulty bool

	cmd := &cobra.Command{
		Use:   "sensors",
		Short: "List sensors",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.requireSession(cmd.Context()); err != nil {
				return err
			}

			v := c.app.Dashboard.Sensors
			v.ShowFaulty(faulty)

			err := v.Mount(cmd.Context())
			render.RenderSensors(c.out, v)
			return loadResult(err)
		},
	}

	cmd.Flags().BoolVar(&faulty, "faulty", false, "only show faulty sensors")
	return cmd
}

func (c *cli) irrigationCmd() *cobra.Command {
	var period, zone, trigger string

	cmd := &cobra.Command{
		Use:   "irrigation",
		Short: "Show irrigation logs with monthly averages",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.requireSession(cmd.Context()); err != nil {
				return err
			}

			p, err := irrigation.ParsePeriod(period)
			if err != nil {
				return err
			}

			v := c.app.Dashboard.Irrigation
			v.SetPeriod(p)

			if strings.EqualFold(trigger, irrigation.AllTriggers) {
				trigger = irrigation.AllTriggers
			}
			v.SetFilter(irrigation.Criteria{Zone: zone, Trigger: trigger})

			err = v.Mount(cmd.Context())
			render.RenderIrrigation(c.out, v)

			if err == nil && trigger != irrigation.AllTriggers && len(v.TriggerTypes()) > 1 {
				fmt.Fprintf(c.out, "\nTrigger types this month: %s\n", strings.Join(v.TriggerTypes(), ", "))
			}

			return loadResult(err)
		},
	}

	cmd.Flags().StringVar(&period, "period", string(irrigation.Today), "today, week or month")
	cmd.Flags().StringVar(&zone, "zone", "", "only show zones whose name contains this text")
	cmd.Flags().StringVar(&trigger, "trigger", irrigation.AllTriggers, "only show this trigger type")

	cmd.AddCommand(c.recentIrrigationCmd())

	return cmd
}

func (c *cli) recentIrrigationCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "recent",
		Short: "Show the most recent irrigation sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.requireSession(cmd.Context()); err != nil {
				return err
			}

			if limit <= 0 {
				limit = c.app.Config.Dashboard.RecentIrrigationLimit
			}

			logs, err := c.app.Service.RecentIrrigation(cmd.Context(), limit)
			if err != nil {
				return err
			}

			render.RenderRecentIrrigation(c.out, logs)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "number of sessions, defaults to dashboard.recentIrrigationLimit")
	return cmd
}

func (c *cli) alertsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "alerts",
		Short: "List recent alerts",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.requireSession(cmd.Context()); err != nil {
				return err
			}

			err := c.app.Dashboard.Alerts.Mount(cmd.Context())
			render.RenderAlerts(c.out, c.app.Dashboard.Alerts)
			return loadResult(err)
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "resolve <alert id>",
		Short: "Mark an alert as resolved",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.requireSession(cmd.Context()); err != nil {
				return err
			}

			alertID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("alert id must be a number: %q", args[0])
			}

			alerts := c.app.Dashboard.Alerts
			err = alerts.Resolve(cmd.Context(), alertID)
			render.RenderAlerts(c.out, alerts)

			if err != nil {
				return fmt.Errorf("could not resolve alert %d: %w", alertID, err)
			}

			fmt.Fprintf(c.out, "\nAlert %d resolved\n", alertID)
			return nil
		},
	})

	return cmd
}

func (c *cli) tanksCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tanks",
		Short: "Show water tank levels",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.requireSession(cmd.Context()); err != nil {
				return err
			}

			err := c.app.Dashboard.Tanks.Mount(cmd.Context())
			render.RenderTanks(c.out, c.app.Dashboard.Tanks)
			return loadResult(err)
		},
	}
}

func (c *cli) valvesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "valves",
		Short: "Show valve states",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.requireSession(cmd.Context()); err != nil {
				return err
			}

			err := c.app.Dashboard.Valves.Mount(cmd.Context())
			render.RenderValves(c.out, c.app.Dashboard.Valves)
			return loadResult(err)
		},
	}
}

func loadResult(err error) error {
	if err != nil {
		return errLoadFailed
	}
	return nil
}

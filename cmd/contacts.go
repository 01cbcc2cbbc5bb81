package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/groundsched/app"
	"github.com/kilianp07/groundsched/core/model"
)

type contactsOptions struct {
	station  string
	from     string
	to       string
	statuses []string
	output   string
}

var contactsOpts contactsOptions

var contactsCmd = &cobra.Command{
	Use:   "contacts",
	Short: "List contacts booked on the ground stations",
	RunE:  runContacts,
}

func init() {
	f := contactsCmd.Flags()
	f.StringVar(&contactsOpts.station, "station", "", "ground station id (default every station)")
	f.StringVar(&contactsOpts.from, "from", "", "range start (ISO-8601, default now)")
	f.StringVar(&contactsOpts.to, "to", "", "range end (ISO-8601, default from + search.horizon)")
	f.StringSliceVar(&contactsOpts.statuses, "status", nil, "only these statuses (default all)")
	f.StringVarP(&contactsOpts.output, "output", "o", outputText, "output format: text, json or yaml")
	rootCmd.AddCommand(contactsCmd)
}

func (o contactsOptions) query(now time.Time, horizon time.Duration) (model.TimeWindow, []model.BookingStatus, error) {
	rng := model.TimeWindow{Start: now.UTC()}
	if o.from != "" {
		t, err := model.ParseTime(o.from)
		if err != nil {
			return rng, nil, fmt.Errorf("--from: %w", err)
		}
		rng.Start = t
	}
	rng.End = rng.Start.Add(horizon)
	if o.to != "" {
		t, err := model.ParseTime(o.to)
		if err != nil {
			return rng, nil, fmt.Errorf("--to: %w", err)
		}
		rng.End = t
	}
	if !rng.End.After(rng.Start) {
		return rng, nil, fmt.Errorf("--to must be after --from")
	}
	var statuses []model.BookingStatus
	for _, name := range o.statuses {
		st := model.ParseBookingStatus(name)
		if st == model.StatusUnknown {
			return rng, nil, fmt.Errorf("--status: unknown status %q", name)
		}
		statuses = append(statuses, st)
	}
	return rng, statuses, nil
}

func runContacts(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	rng, statuses, err := contactsOpts.query(time.Now(), cfg.Search.Horizon)
	if err != nil {
		return err
	}
	return withService(cfg, func(ctx context.Context, svc *app.Service) error {
		bookings, err := svc.Contacts(ctx, contactsOpts.station, rng, statuses)
		if err != nil {
			return err
		}
		return render(cmd.OutOrStdout(), contactsOpts.output, bookings, func(w io.Writer) error {
			if len(bookings) == 0 {
				_, err := fmt.Fprintf(w, "no contacts in %s (%s)\n", rng, strings.Join(contactsOpts.statuses, ","))
				return err
			}
			for _, b := range bookings {
				if err := printBooking(w, b); err != nil {
					return err
				}
			}
			return nil
		})
	})
}

package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/kilianp07/groundsched/app"
	"github.com/kilianp07/groundsched/core/model"
)

var statusOutput string

var statusCmd = &cobra.Command{
	Use:   "status CONTACT_ID",
	Short: "Show the status of a reserved contact",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		return withService(cfg, func(ctx context.Context, svc *app.Service) error {
			info, ok := svc.Status.GetStatus(ctx, args[0])
			if !ok {
				return fmt.Errorf("contact %s not found", args[0])
			}
			return render(cmd.OutOrStdout(), statusOutput, info, func(w io.Writer) error {
				return printBooking(w, model.Booking{ID: info.ID, Window: info.Window, ResourceID: info.ResourceID, Status: info.Status})
			})
		})
	},
}

func init() {
	statusCmd.Flags().StringVarP(&statusOutput, "output", "o", outputText, "output format: text, json or yaml")
	rootCmd.AddCommand(statusCmd)
}

func printBooking(w io.Writer, b model.Booking) error {
	_, err := fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", b.ID, b.Status, b.ResourceID, b.Window)
	return err
}

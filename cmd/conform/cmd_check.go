package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/chazu/conformal/pkg/engine"
	"github.com/chazu/conformal/pkg/room"
)

// checkIssue is one problem found by `conform check`.
type checkIssue struct {
	Room    int    `json:"room"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type checkReport struct {
	Rooms  int          `json:"rooms"`
	Issues []checkIssue `json:"issues"`
}

func newCheckCmd(c *cli) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "check <rooms.yaml|program.lisp>",
		Short: "Validate rooms without conforming them",
		Long: `check validates every room record and then adds each one to an empty
model, reporting rooms the engine rejects (for example faces that are not
axis aligned). Nothing is split. The command fails when any issue is found.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := c.check(args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				if err := outputJSON(out, report); err != nil {
					return err
				}
			} else {
				for _, is := range report.Issues {
					fmt.Fprintf(out, "room %d: %s: %s\n", is.Room, is.Code, is.Message)
				}
				if len(report.Issues) == 0 {
					fmt.Fprintf(out, "ok: %d rooms\n", report.Rooms)
				}
			}
			if n := len(report.Issues); n > 0 {
				return fmt.Errorf("%d issue(s) in %d rooms", n, report.Rooms)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output the report as JSON")
	return cmd
}

func (c *cli) check(path string) (checkReport, error) {
	var report checkReport

	var rooms []room.Room
	if isProgram(path) {
		src, err := os.ReadFile(path)
		if err != nil {
			return report, fmt.Errorf("read program: %w", err)
		}
		res, err := engine.NewEngine().Check(string(src))
		if err != nil {
			return report, fmt.Errorf("%s: %w", path, err)
		}
		for _, e := range res.Errors {
			report.Issues = append(report.Issues, checkIssue{Code: "eval_error", Message: e.Error()})
		}
		for _, w := range res.Warnings {
			report.Issues = append(report.Issues, checkIssue{Room: w.RoomID, Code: w.Code, Message: w.Message})
		}
		rooms = res.Rooms
	} else {
		var err error
		if rooms, err = room.Load(path); err != nil {
			return report, err
		}
	}
	report.Rooms = len(rooms)
	if len(report.Issues) > 0 {
		return report, nil
	}

	// A rejected room leaves the model untouched, so the rest can still
	// be checked.
	m := c.newModel()
	for _, r := range rooms {
		if _, err := m.AddSpace(r); err != nil {
			report.Issues = append(report.Issues, checkIssue{Room: r.ID, Code: "rejected", Message: err.Error()})
		}
	}
	c.log.Info("rooms checked", "rooms", report.Rooms, "issues", len(report.Issues))
	return report, nil
}

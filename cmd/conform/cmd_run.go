package main

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/chazu/conformal/pkg/conform"
	"github.com/chazu/conformal/pkg/metrics"
)

type runOptions struct {
	json    bool
	metrics bool
}

func newRunCmd(c *cli) *cobra.Command {
	opts := &runOptions{}
	cmd := &cobra.Command{
		Use:   "run <rooms.yaml|program.lisp>",
		Short: "Conform the rooms and print a summary of both graphs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rooms, err := c.loadRooms(args[0])
			if err != nil {
				return err
			}
			m, err := c.build(rooms)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if opts.json {
				return outputJSON(out, runReport{
					RunID:  m.RunID().String(),
					Stats:  m.Stats(),
					Spaces: spaceReports(m),
				})
			}
			printStats(out, m.Stats())
			if opts.metrics {
				return printMetrics(out, c.metrics)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&opts.json, "json", false, "Output the summary as JSON")
	cmd.Flags().BoolVar(&opts.metrics, "metrics", false, "Also print the conformation metrics")
	return cmd
}

// runReport is the JSON form of `conform run`.
type runReport struct {
	RunID  string        `json:"run_id"`
	Stats  conform.Stats `json:"stats"`
	Spaces []spaceReport `json:"spaces"`
}

type spaceReport struct {
	Room       int     `json:"room"`
	Type       string  `json:"type,omitempty"`
	Volume     float64 `json:"volume"`
	Cuboids    int     `json:"cuboids"`
	Rectangles int     `json:"rectangles"`
	Vertices   int     `json:"vertices"`
}

func spaceReports(m *conform.Model) []spaceReport {
	out := make([]spaceReport, 0, m.NumSpaces())
	for i := 0; i < m.NumSpaces(); i++ {
		sp := m.MustSpace(i)
		r := spaceReport{
			Room:     sp.RoomID,
			Type:     sp.Type,
			Volume:   sp.Volume(),
			Cuboids:  len(sp.Cuboids()),
			Vertices: len(sp.Vertices()),
		}
		for _, sid := range sp.Surfaces {
			r.Rectangles += len(m.MustSurface(int(sid)).Rectangles())
		}
		out = append(out, r)
	}
	return out
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#20B9B4"))
	boxStyle   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#16858E")).
			Padding(0, 1)
)

// printStats writes the model summary as an aligned table in a box.
func printStats(w io.Writer, s conform.Stats) {
	var b strings.Builder
	tw := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SHARED\tCOUNT\tSHADOW\tCOUNT")
	fmt.Fprintf(tw, "vertices\t%d\tpoints\t%d\n", s.Vertices, s.Points)
	fmt.Fprintf(tw, "lines\t%d\tedges\t%d\n", s.Lines, s.Edges)
	fmt.Fprintf(tw, "rectangles\t%d\tsurfaces\t%d\n", s.Rectangles, s.Surfaces)
	fmt.Fprintf(tw, "cuboids\t%d\tspaces\t%d", s.Cuboids, s.Spaces)
	tw.Flush()

	fmt.Fprintln(w, titleStyle.Render("Conformal model"))
	fmt.Fprintln(w, boxStyle.Render(b.String()))
	fmt.Fprintf(w, "rectangles: %d internal, %d external; %d primitives retired\n",
		s.Internal, s.External, s.Retired)
}

// printMetrics writes every gathered sample as name{labels} value.
func printMetrics(w io.Writer, r *metrics.Registry) error {
	samples, err := r.Snapshot()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	fmt.Fprintln(w)
	for _, s := range samples {
		fmt.Fprintf(w, "%s%s %g\n", s.Name, formatLabels(s.Labels), s.Value)
	}
	return nil
}

func formatLabels(l map[string]string) string {
	if len(l) == 0 {
		return ""
	}
	keys := make([]string, 0, len(l))
	for k := range l {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%q", k, l[k])
	}
	return "{" + strings.Join(parts, ",") + "}"
}

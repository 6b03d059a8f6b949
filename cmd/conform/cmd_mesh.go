package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/chazu/conformal/pkg/kernel/sdfx"
	"github.com/chazu/conformal/pkg/tessellate"
)

type meshOptions struct {
	perRoom bool
	cells   int
	output  string
}

// meshReport is the JSON document written by `conform mesh`.
type meshReport struct {
	RunID string            `json:"run_id"`
	Parts []tessellate.Part `json:"parts"`
}

func newMeshCmd(c *cli) *cobra.Command {
	opts := &meshOptions{}
	cmd := &cobra.Command{
		Use:   "mesh <rooms.yaml|program.lisp>",
		Short: "Conform the rooms and write triangle meshes as JSON",
		Long: `mesh conforms the rooms and writes one mesh per conformed cuboid, or one
per room with --per-room, as JSON with vertex, normal and index arrays.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("cells") {
				c.cfg.Mesh.Cells = opts.cells
				if err := c.cfg.Validate(); err != nil {
					return fmt.Errorf("--cells: %w", err)
				}
			}
			rooms, err := c.loadRooms(args[0])
			if err != nil {
				return err
			}
			m, err := c.build(rooms)
			if err != nil {
				return err
			}

			cells := c.cfg.Mesh.Cells
			k := sdfx.New(cells)

			var parts []tessellate.Part
			if opts.perRoom {
				parts, err = tessellate.Spaces(m, k)
			} else {
				parts, err = tessellate.Cuboids(m, k)
			}
			if err != nil {
				return err
			}
			c.log.Info("meshes generated", "parts", len(parts), "cells", cells, "per_room", opts.perRoom)

			return writeReport(cmd.OutOrStdout(), opts.output, meshReport{RunID: m.RunID().String(), Parts: parts})
		},
	}
	cmd.Flags().BoolVar(&opts.perRoom, "per-room", false, "Emit one mesh per room instead of per cuboid")
	cmd.Flags().IntVar(&opts.cells, "cells", 0, "Marching cubes resolution, 8 to 1024 (overrides config mesh.cells)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Write JSON to this file instead of stdout")
	return cmd
}

// writeReport writes data as JSON to path, or to out when path is empty.
func writeReport(out io.Writer, path string, data any) (err error) {
	if path == "" {
		return outputJSON(out, data)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("close output: %w", cerr)
		}
	}()
	return outputJSON(f, data)
}

package cli

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	errs "github.com/matzehuels/kintree/pkg/errors"
	"github.com/matzehuels/kintree/pkg/family"
	"github.com/matzehuels/kintree/pkg/layout"
)

// layoutCommand creates the layout command.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		save           bool
		asJSON         bool
		placeUnreached bool
		xGap, yGap     float64
	)

	cmd := &cobra.Command{
		Use:   "layout",
		Short: "Compute generational positions",
		Long: `Compute a position for everyone reachable from the tree's roots.

Roots are people without parents. Each generation is a row; row n sits at
y = n * y-gap and its members are spread x-gap apart, centered on x = 0.
People no root reaches (only possible through cyclic links) are left out
unless --place-unreached puts them on an extra row at the bottom.

With --save the positions are written to the store in a single save.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			for name, gap := range map[string]float64{"x-gap": xGap, "y-gap": yGap} {
				if cmd.Flags().Changed(name) && gap <= 0 {
					return errs.New(errs.ErrCodeInvalidInput, "--%s must be positive, got %g", name, gap)
				}
			}

			store, cfg, err := c.openStore(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			opts := layoutOptions(cfg)
			if cmd.Flags().Changed("place-unreached") {
				opts.PlaceUnreached = placeUnreached
			}
			if cmd.Flags().Changed("x-gap") {
				opts.XGap = xGap
			}
			if cmd.Flags().Changed("y-gap") {
				opts.YGap = yGap
			}

			prog := newProgress(logger)
			people := store.People()
			gens := layout.Generations(people)
			positions := layout.Compute(people, opts)
			prog.done(fmt.Sprintf("Computed layout for %d people", len(positions)))

			if asJSON {
				if err := writeLayoutJSON(gens, positions); err != nil {
					return err
				}
			} else {
				printLayout(people, gens, positions)
			}

			if rest := layout.Unreached(people, gens); len(rest) > 0 && !opts.PlaceUnreached {
				printWarning("%d people not reachable from any root: %s", len(rest), joinIDs(rest))
			}

			if save {
				if err := store.SetPositions(ctx, positions); err != nil {
					return err
				}
				printSuccess("Saved %d positions", len(positions))
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.BoolVar(&save, "save", false, "store the computed positions")
	flags.BoolVar(&asJSON, "json", false, "print generations and positions as JSON")
	flags.BoolVar(&placeUnreached, "place-unreached", false, "put unreached people on an extra bottom row")
	flags.Float64Var(&xGap, "x-gap", layout.DefaultGap, "horizontal spacing")
	flags.Float64Var(&yGap, "y-gap", layout.DefaultGap, "vertical spacing")

	return cmd
}

func printLayout(people []family.Person, gens [][]int, positions map[int]family.Position) {
	if len(people) == 0 {
		printInfo("No people yet")
		return
	}
	names := make(map[int]string, len(people))
	for _, p := range people {
		names[p.ID] = p.Name
	}

	for lvl, ids := range gens {
		fmt.Fprintln(out, StyleTitle.Render("Generation "+strconv.Itoa(lvl)))
		for _, id := range ids {
			pos := positions[id]
			fmt.Fprintf(out, "  %-28s %s\n", personRef(names[id], id),
				StyleNumber.Render(fmt.Sprintf("(%g, %g)", pos.X, pos.Y)))
		}
	}
	b := layout.Bounds(positions)
	printDetail("%d generations, extent %g × %g", len(gens), b.Width(), b.Height())
}

// layoutJSON is the --json output of the layout command.
type layoutJSON struct {
	Generations [][]int                 `json:"generations"`
	Positions   map[int]family.Position `json:"positions"`
}

func writeLayoutJSON(gens [][]int, positions map[int]family.Position) error {
	if gens == nil {
		gens = [][]int{}
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(layoutJSON{Generations: gens, Positions: positions})
}

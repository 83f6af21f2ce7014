package cli

import (
	"context"

	"github.com/spf13/cobra"

	errs "github.com/matzehuels/kintree/pkg/errors"
	"github.com/matzehuels/kintree/pkg/family"
)

// checkCommand creates the check command.
func (c *CLI) checkCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Audit parent/child link consistency",
		Long: `Audit the tree: every parent link must be mirrored by a child link and vice
versa, no link may point at a missing person, and no set may repeat an id.

Inconsistent data files are repaired when they are loaded (see the warnings
logged by any command), so check normally reports a healthy tree.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, _, err := c.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()

			violations := store.Check()
			if len(violations) == 0 {
				printSuccess("%d people, %d links, all consistent", store.Len(), countLinks(store.People()))
				return nil
			}
			for _, v := range violations {
				printError("%s", v)
			}
			return errs.New(errs.ErrCodeInternal, "%d consistency violations", len(violations))
		},
	}
}

// sampleFamily is the three-generation family written by seed.
var sampleFamily = []struct {
	name, birth, desc string
	parent            int // index into sampleFamily, or -1
}{
	{"Juan Pérez", "1950-05-10", "Loved fishing.", -1},
	{"María Pérez", "1980-02-15", "Keen painter.", 0},
	{"Pedro Pérez", "2010-08-12", "Loves to draw.", 1},
}

// seedCommand creates the seed command.
func (c *CLI) seedCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Fill an empty store with a sample family",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, _, err := c.openStore(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			if store.Len() > 0 {
				return errs.New(errs.ErrCodeInvalidInput, "store already holds %d people; seed only fills an empty store", store.Len())
			}
			ids, err := seedFamily(ctx, store)
			if err != nil {
				return err
			}
			printSuccess("Seeded %d people", len(ids))
			printNextStep("Render it", "kintree render")
			return nil
		},
	}
}

func seedFamily(ctx context.Context, store *family.Store) ([]int, error) {
	ids := make([]int, 0, len(sampleFamily))
	for _, s := range sampleFamily {
		var parents []int
		if s.parent >= 0 {
			parents = []int{ids[s.parent]}
		}
		id, err := store.Add(ctx, family.NewPerson{
			Name:        s.name,
			BirthDate:   family.Opt(s.birth),
			Description: family.Opt(s.desc),
			Parents:     parents,
		})
		if err != nil {
			return ids, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

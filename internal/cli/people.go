package cli

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	errs "github.com/matzehuels/kintree/pkg/errors"
	"github.com/matzehuels/kintree/pkg/family"
)

// addCommand creates the add command.
func (c *CLI) addCommand() *cobra.Command {
	var (
		birth, desc       string
		parents, children []int
	)

	cmd := &cobra.Command{
		Use:   "add NAME",
		Short: "Add a person",
		Long: `Add a person to the tree.

Parent and child links are mirrored automatically: adding Bea with --parent 1
also lists Bea among person 1's children. Unknown ids are skipped with a
warning.`,
		Example: `  kintree add "Ana Pérez" --birth 1950-05-10
  kintree add "Bea Pérez" --parent 1 --desc "Loves painting"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, _, err := c.openStore(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			id, err := store.Add(ctx, family.NewPerson{
				Name:        args[0],
				BirthDate:   family.Opt(birth),
				Description: family.Opt(desc),
				Parents:     parents,
				Children:    children,
			})
			if err != nil {
				return err
			}

			p, _ := store.Get(id)
			printSuccess("Added %s", personRef(p.Name, id))
			warnSkipped("parent", parents, p.Parents, id)
			warnSkipped("child", children, p.Children, id)
			return nil
		},
	}

	cmd.Flags().StringVar(&birth, "birth", "", "birth date (free text, e.g. 1950-05-10)")
	cmd.Flags().StringVar(&desc, "desc", "", "short description")
	cmd.Flags().IntSliceVar(&parents, "parent", nil, "parent id (repeatable or comma-separated)")
	cmd.Flags().IntSliceVar(&children, "child", nil, "child id (repeatable or comma-separated)")

	return cmd
}

// updateCommand creates the update command.
func (c *CLI) updateCommand() *cobra.Command {
	var (
		name, birth, desc string
		parents, children string
		x, y              float64
		clearPosition     bool
	)

	cmd := &cobra.Command{
		Use:   "update ID",
		Short: "Change a person's fields or links",
		Long: `Change a person. Only the flags you pass are applied.

--parents and --children replace the whole set; pass an empty string to
clear it. An empty --birth or --desc unsets that field.`,
		Example: `  kintree update 2 --desc "Painter"
  kintree update 3 --parents 1,2
  kintree update 3 --children ""`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			var u family.Update
			if flags.Changed("name") {
				u.Name = &name
			}
			if flags.Changed("birth") {
				u.BirthDate = &birth
			}
			if flags.Changed("desc") {
				u.Description = &desc
			}
			if flags.Changed("parents") {
				if u.Parents, err = parseIDList(parents); err != nil {
					return err
				}
			}
			if flags.Changed("children") {
				if u.Children, err = parseIDList(children); err != nil {
					return err
				}
			}
			if flags.Changed("x") != flags.Changed("y") {
				return errs.New(errs.ErrCodeInvalidInput, "--x and --y must be given together")
			}
			if flags.Changed("x") {
				u.Position = &family.Position{X: x, Y: y}
			}
			u.ClearPosition = clearPosition

			ctx := cmd.Context()
			store, _, err := c.openStore(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			ok, err := store.Update(ctx, id, u)
			if err != nil {
				return err
			}
			if !ok {
				return notFound(id)
			}
			p, _ := store.Get(id)
			printSuccess("Updated %s", personRef(p.Name, id))
			warnSkipped("parent", u.Parents, p.Parents, id)
			warnSkipped("child", u.Children, p.Children, id)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&name, "name", "", "new name")
	flags.StringVar(&birth, "birth", "", "birth date (empty to unset)")
	flags.StringVar(&desc, "desc", "", "description (empty to unset)")
	flags.StringVar(&parents, "parents", "", "comma-separated parent ids (replaces the set)")
	flags.StringVar(&children, "children", "", "comma-separated child ids (replaces the set)")
	flags.Float64Var(&x, "x", 0, "x position")
	flags.Float64Var(&y, "y", 0, "y position")
	flags.BoolVar(&clearPosition, "clear-position", false, "remove the stored position")

	return cmd
}

// deleteCommand creates the delete command.
func (c *CLI) deleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "delete ID",
		Aliases: []string{"rm"},
		Short:   "Delete a person and every link to them",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			store, _, err := c.openStore(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			p, _ := store.Get(id)
			ok, err := store.Delete(ctx, id)
			if err != nil {
				return err
			}
			if !ok {
				return notFound(id)
			}
			printSuccess("Deleted %s", personRef(p.Name, id))
			if n := len(p.Parents) + len(p.Children); n > 0 {
				printDetail("removed %d links", n)
			}
			return nil
		},
	}
}

// showCommand creates the show command.
func (c *CLI) showCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show one person",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			store, _, err := c.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()

			p, ok := store.Get(id)
			if !ok {
				return notFound(id)
			}
			printPerson(store, p)
			return nil
		},
	}
}

func printPerson(store *family.Store, p family.Person) {
	fmt.Fprintln(out, StyleTitle.Render(p.Name)+" "+StyleDim.Render(fmt.Sprintf("#%d", p.ID)))
	printKeyValue("born", orDash(family.Deref(p.BirthDate)))
	printKeyValue("description", orDash(family.Deref(p.Description)))
	printKeyValue("parents", orDash(refs(store, p.Parents)))
	printKeyValue("children", orDash(refs(store, p.Children)))
	if p.Position != nil {
		printKeyValue("position", fmt.Sprintf("%g, %g", p.Position.X, p.Position.Y))
	}
}

// listCommand creates the list command.
func (c *CLI) listCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List everyone in insertion order",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, _, err := c.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()

			people := store.People()
			if asJSON {
				return family.WritePeople(people, out)
			}
			if len(people) == 0 {
				printInfo("No people yet")
				printNextStep("Add someone", `kintree add "Name"`)
				return nil
			}
			fmt.Fprintln(out, peopleTable(people).Render())
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print records as JSON")
	return cmd
}

func peopleTable(people []family.Person) *table.Table {
	rows := make([][]string, len(people))
	for i, p := range people {
		rows[i] = []string{
			strconv.Itoa(p.ID),
			p.Name,
			orDash(family.Deref(p.BirthDate)),
			orDash(joinIDs(p.Parents)),
			orDash(joinIDs(p.Children)),
		}
	}
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("ID", "Name", "Born", "Parents", "Children").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return styleHeader
			}
			if col == 0 {
				return lipgloss.NewStyle().Foreground(colorCyan)
			}
			return lipgloss.NewStyle()
		})
}

// =============================================================================
// Helpers
// =============================================================================

func parseID(s string) (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || id <= 0 {
		return 0, errs.New(errs.ErrCodeInvalidInput, "invalid person id %q", s)
	}
	return id, nil
}

// parseIDList parses "1,2,3". An empty string yields an empty, non-nil slice.
func parseIDList(s string) ([]int, error) {
	ids := []int{}
	for _, part := range strings.Split(s, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		id, err := parseID(part)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func joinIDs(ids []int) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, ", ")
}

func refs(store *family.Store, ids []int) string {
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		if p, ok := store.Get(id); ok {
			parts = append(parts, fmt.Sprintf("%s #%d", p.Name, id))
		}
	}
	return strings.Join(parts, ", ")
}

func orDash(s string) string {
	if s == "" {
		return "—"
	}
	return s
}

func notFound(id int) error {
	return errs.New(errs.ErrCodeNotFound, "person %d not found", id)
}

// warnSkipped reports requested link ids the store dropped as unknown,
// repeated or self-referencing.
func warnSkipped(kind string, requested, kept []int, self int) {
	for _, id := range requested {
		if !slices.Contains(kept, id) {
			if id == self {
				printWarning("skipped %s %d: a person cannot be their own %s", kind, id, kind)
				continue
			}
			printWarning("skipped unknown %s %d", kind, id)
		}
	}
}

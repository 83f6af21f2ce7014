package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	errs "github.com/matzehuels/kintree/pkg/errors"
	"github.com/matzehuels/kintree/pkg/family"
	"github.com/matzehuels/kintree/pkg/layout"
)

// harness runs commands against a private data file with output captured.
type harness struct {
	t    *testing.T
	dir  string
	data string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_CACHE_HOME", filepath.Join(dir, "cache"))
	t.Setenv("KINTREE_BACKEND", "")
	t.Setenv("KINTREE_DATA", "")
	captureSpinner(t)
	return &harness{t: t, dir: dir, data: filepath.Join(dir, "family.json")}
}

func (h *harness) run(args ...string) (string, error) {
	h.t.Helper()
	var buf bytes.Buffer
	prev := out
	out = &buf
	defer func() { out = prev }()

	root := New(io.Discard, LogInfo).RootCommand()
	root.SetArgs(append([]string{"--data", h.data}, args...))
	root.SetOut(&buf)
	root.SetErr(io.Discard)
	err := root.ExecuteContext(context.Background())
	return buf.String(), err
}

func (h *harness) mustRun(args ...string) string {
	h.t.Helper()
	got, err := h.run(args...)
	if err != nil {
		h.t.Fatalf("kintree %s: %v", strings.Join(args, " "), err)
	}
	return got
}

func (h *harness) people() []family.Person {
	h.t.Helper()
	people, err := family.ReadPeople(strings.NewReader(h.mustRun("list", "--json")))
	if err != nil {
		h.t.Fatalf("decode list --json: %v", err)
	}
	return people
}

func TestAddMirrorsLinks(t *testing.T) {
	h := newHarness(t)
	h.mustRun("add", "Ana", "--birth", "1950")
	got := h.mustRun("add", "Bea", "--parent", "1", "--desc", "Painter")
	if !strings.Contains(got, "Added Bea") {
		t.Errorf("add output = %q", got)
	}

	people := h.people()
	if len(people) != 2 {
		t.Fatalf("len(people) = %d, want 2", len(people))
	}
	if !slices.Equal(people[0].Children, []int{2}) {
		t.Errorf("Ana.Children = %v, want [2]", people[0].Children)
	}
	if !slices.Equal(people[1].Parents, []int{1}) {
		t.Errorf("Bea.Parents = %v, want [1]", people[1].Parents)
	}
	if family.Deref(people[1].Description) != "Painter" {
		t.Errorf("Bea.Description = %v, want Painter", people[1].Description)
	}
}

func TestAddWarnsAboutUnknownLinks(t *testing.T) {
	h := newHarness(t)
	got := h.mustRun("add", "Ana", "--parent", "9")
	if !strings.Contains(got, "skipped unknown parent 9") {
		t.Errorf("add output = %q, want skipped warning", got)
	}
	if p := h.people()[0]; len(p.Parents) != 0 {
		t.Errorf("Parents = %v, want none", p.Parents)
	}
}

func TestUpdate(t *testing.T) {
	h := newHarness(t)
	h.mustRun("add", "Ana")
	h.mustRun("add", "Bea")
	h.mustRun("add", "Cy", "--parent", "1")

	h.mustRun("update", "3", "--parents", "2", "--desc", "Drummer")
	people := h.people()
	if !slices.Equal(people[2].Parents, []int{2}) {
		t.Errorf("Cy.Parents = %v, want [2]", people[2].Parents)
	}
	if len(people[0].Children) != 0 {
		t.Errorf("Ana.Children = %v, want none after replace", people[0].Children)
	}
	if !slices.Equal(people[1].Children, []int{3}) {
		t.Errorf("Bea.Children = %v, want [3]", people[1].Children)
	}

	h.mustRun("update", "3", "--desc", "", "--parents", "")
	people = h.people()
	if people[2].Description != nil || len(people[2].Parents) != 0 {
		t.Errorf("Cy = %+v, want description and parents cleared", people[2])
	}

	show := h.mustRun("update", "2", "--x", "10", "--y", "20")
	if !strings.Contains(show, "Updated Bea") {
		t.Errorf("update output = %q", show)
	}
	if got := h.mustRun("show", "2"); !strings.Contains(got, "10, 20") {
		t.Errorf("show output = %q, want position", got)
	}
}

func TestCommandErrors(t *testing.T) {
	h := newHarness(t)
	h.mustRun("add", "Ana")

	tests := []struct {
		name string
		args []string
		code errs.Code
	}{
		{"update missing person", []string{"update", "7", "--name", "X"}, errs.ErrCodeNotFound},
		{"delete missing person", []string{"delete", "7"}, errs.ErrCodeNotFound},
		{"show missing person", []string{"show", "7"}, errs.ErrCodeNotFound},
		{"invalid id", []string{"show", "abc"}, errs.ErrCodeInvalidInput},
		{"x without y", []string{"update", "1", "--x", "3"}, errs.ErrCodeInvalidInput},
		{"bad id list", []string{"update", "1", "--parents", "1,x"}, errs.ErrCodeInvalidInput},
		{"empty name", []string{"update", "1", "--name", "  "}, errs.ErrCodeInvalidInput},
		{"seed non-empty store", []string{"seed"}, errs.ErrCodeInvalidInput},
		{"bad render format", []string{"render", "-o", filepath.Join(h.dir, "x.gif")}, errs.ErrCodeInvalidInput},
		{"zero x gap", []string{"layout", "--x-gap", "0"}, errs.ErrCodeInvalidInput},
		{"negative y gap", []string{"layout", "--y-gap=-50"}, errs.ErrCodeInvalidInput},
		{"negative gap with save", []string{"layout", "--save", "--x-gap=-1"}, errs.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.run(tt.args...)
			if !errs.Is(err, tt.code) {
				t.Errorf("err = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestDeleteRemovesLinks(t *testing.T) {
	h := newHarness(t)
	h.mustRun("seed")

	got := h.mustRun("rm", "2")
	if !strings.Contains(got, "Deleted María Pérez") || !strings.Contains(got, "removed 2 links") {
		t.Errorf("delete output = %q", got)
	}
	people := h.people()
	if len(people) != 2 {
		t.Fatalf("len(people) = %d, want 2", len(people))
	}
	if len(people[0].Children) != 0 || len(people[1].Parents) != 0 {
		t.Errorf("dangling links remain: %+v", people)
	}
}

func TestSeedAndCheck(t *testing.T) {
	h := newHarness(t)
	if got := h.mustRun("seed"); !strings.Contains(got, "Seeded 3 people") {
		t.Errorf("seed output = %q", got)
	}
	if got := h.mustRun("check"); !strings.Contains(got, "3 people, 2 links, all consistent") {
		t.Errorf("check output = %q", got)
	}
	got := h.mustRun("list")
	for _, name := range []string{"Juan Pérez", "María Pérez", "Pedro Pérez"} {
		if !strings.Contains(got, name) {
			t.Errorf("list output missing %q", name)
		}
	}
}

func TestLayoutJSONAndSave(t *testing.T) {
	h := newHarness(t)
	h.mustRun("seed")

	var got layoutJSON
	if err := json.Unmarshal([]byte(h.mustRun("layout", "--json", "--y-gap", "100")), &got); err != nil {
		t.Fatalf("decode layout --json: %v", err)
	}
	if len(got.Generations) != 3 {
		t.Fatalf("Generations = %v, want 3 rows", got.Generations)
	}
	if want := (family.Position{X: 0, Y: 200}); got.Positions[3] != want {
		t.Errorf("Positions[3] = %v, want %v", got.Positions[3], want)
	}

	h.mustRun("layout", "--save")
	for _, p := range h.people() {
		if p.Position == nil {
			t.Errorf("%s has no stored position after --save", p.Name)
		}
	}
	if p := h.people()[2]; p.Position.Y != 2*layout.DefaultGap {
		t.Errorf("Pedro.Y = %g, want %g", p.Position.Y, 2*layout.DefaultGap)
	}
}

func TestLayoutEmptyStore(t *testing.T) {
	h := newHarness(t)
	if got := h.mustRun("layout"); !strings.Contains(got, "No people yet") {
		t.Errorf("layout output = %q", got)
	}
}

func TestRender(t *testing.T) {
	h := newHarness(t)
	h.mustRun("seed")

	dotPath := filepath.Join(h.dir, "family.dot")
	h.mustRun("render", "-o", dotPath)
	data, err := os.ReadFile(dotPath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "digraph") || !strings.Contains(string(data), "María Pérez") {
		t.Errorf("dot output = %q", data)
	}

	svgPath := filepath.Join(h.dir, "family.svg")
	first := h.mustRun("render", "-o", svgPath)
	if !strings.Contains(first, "fresh") {
		t.Errorf("first render output = %q, want fresh", first)
	}
	data, err = os.ReadFile(svgPath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "<svg") {
		t.Errorf("svg output does not look like SVG: %.80q", data)
	}

	if second := h.mustRun("render", "-o", svgPath); !strings.Contains(second, "cached") {
		t.Errorf("second render output = %q, want cached", second)
	}
	if third := h.mustRun("render", "-o", svgPath, "--no-cache"); !strings.Contains(third, "fresh") {
		t.Errorf("--no-cache render output = %q, want fresh", third)
	}
}

func TestRenderToStdout(t *testing.T) {
	h := newHarness(t)
	h.mustRun("seed")
	got := h.mustRun("render", "-o", "-", "--format", "dot")
	if !strings.HasPrefix(got, "digraph") {
		t.Errorf("stdout = %q, want bare DOT", got)
	}
}

func TestParseIDList(t *testing.T) {
	tests := []struct {
		in      string
		want    []int
		wantErr bool
	}{
		{"", []int{}, false},
		{"3", []int{3}, false},
		{"1, 2,3", []int{1, 2, 3}, false},
		{"1,,2", []int{1, 2}, false},
		{"1,x", nil, true},
		{"0", nil, true},
		{"-4", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseIDList(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseIDList(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if !tt.wantErr && !slices.Equal(got, tt.want) {
				t.Errorf("parseIDList(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestOutputFormat(t *testing.T) {
	tests := []struct {
		output, format string
		want           string
		wantErr        bool
	}{
		{"family.svg", "", formatSVG, false},
		{"tree.PNG", "", formatPNG, false},
		{"tree.pdf", "", formatPDF, false},
		{"-", "", formatSVG, false},
		{"-", "dot", formatDOT, false},
		{"tree.svg", "png", formatPNG, false},
		{"tree.gif", "", "", true},
		{"tree.svg", "jpeg", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.output+"/"+tt.format, func(t *testing.T) {
			got, err := outputFormat(tt.output, tt.format)
			if (err != nil) != tt.wantErr {
				t.Fatalf("outputFormat() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("outputFormat() = %q, want %q", got, tt.want)
			}
		})
	}
}

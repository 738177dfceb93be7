package cli

import (
	"bytes"
	"context"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/spf13/cobra"

	"github.com/matzehuels/collagefm/pkg/collage"
	"github.com/matzehuels/collagefm/pkg/config"
	errs "github.com/matzehuels/collagefm/pkg/errors"
	"github.com/matzehuels/collagefm/pkg/pipeline"
)

var cmpOptionsIgnoreUnexported = cmpopts.IgnoreUnexported(pipeline.Options{})

// runCLI executes the root command with a config file that does not exist
// and returns what the command printed.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	t.Setenv("LASTFM_API_KEY", "")

	var buf bytes.Buffer
	old := stdout
	stdout = &buf
	t.Cleanup(func() { stdout = old })

	c := New(io.Discard, LogInfo)
	root := c.RootCommand()
	root.SetArgs(append([]string{"--config", filepath.Join(t.TempDir(), "config.toml")}, args...))
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	err := root.ExecuteContext(context.Background())
	return buf.String(), err
}

func TestPreviewGrid(t *testing.T) {
	l, err := collage.Lookup(4)
	if err != nil {
		t.Fatal(err)
	}
	plan := collage.PlanVariant(l, "1", standInItems(10))

	want := strings.Join([]string{
		"A A C D",
		"A A E F",
		"G H B B",
		"I J B B",
	}, "\n")
	if got := previewGrid(plan, 4, 4); got != want {
		t.Errorf("previewGrid() =\n%s\nwant\n%s", got, want)
	}
}

func TestPreviewGridEmptyCells(t *testing.T) {
	l, _ := collage.FixedLayout(2, 3)
	plan := collage.PlanVariant(l, "", standInItems(4))

	want := "A B C\nD . ."
	if got := previewGrid(plan, 2, 3); got != want {
		t.Errorf("previewGrid() = %q, want %q", got, want)
	}
}

func TestCollageFlagsOptions(t *testing.T) {
	defaults := config.Defaults{
		Username: "cfg-user",
		Period:   "1month",
		ItemType: "albums",
		GridSize: 6,
		Arrange:  "hue",
		CellSize: 200,
		Format:   "png",
	}

	tests := []struct {
		name     string
		args     []string
		username string
		want     pipeline.Options
	}{
		{
			name: "config defaults",
			want: pipeline.Options{Username: "cfg-user", Period: "1month", ItemType: "albums", GridSize: 6, Arrange: "hue", CellSize: 200, Format: "png"},
		},
		{
			name:     "flags win",
			args:     []string{"--period", "overall", "-t", "tracks", "--grid", "4", "--variant", "2", "--labels", "--format", "jpeg"},
			username: "rj",
			want:     pipeline.Options{Username: "rj", Period: "overall", ItemType: "tracks", GridSize: 4, Variant: "2", Arrange: "hue", Labels: true, CellSize: 200, Format: "jpeg"},
		},
		{
			name: "fixed grid drops the template size",
			args: []string{"--rows", "3", "--cols", "4", "--refresh"},
			want: pipeline.Options{Username: "cfg-user", Period: "1month", ItemType: "albums", Layout: pipeline.LayoutFixed, Rows: 3, Cols: 4, Arrange: "hue", CellSize: 200, Format: "png", Refresh: true},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var f collageFlags
			cmd := &cobra.Command{Use: "test"}
			f.register(cmd)
			if err := cmd.ParseFlags(tt.args); err != nil {
				t.Fatal(err)
			}
			got := f.options(cmd, defaults, tt.username)
			if diff := cmp.Diff(tt.want, got, cmpOptionsIgnoreUnexported); diff != "" {
				t.Errorf("options mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestPlanCommand(t *testing.T) {
	out, err := runCLI(t, "plan", "--grid", "4", "--variant", "1")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"4×4 grid · variant 1", "#1", "2×2", "A A C D"} {
		if !strings.Contains(out, want) {
			t.Errorf("plan output missing %q:\n%s", want, out)
		}
	}
}

func TestPlanCommandShortfall(t *testing.T) {
	out, err := runCLI(t, "plan", "--rows", "2", "--cols", "2", "--count", "6")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "2 items did not fit") {
		t.Errorf("plan output should warn about dropped items:\n%s", out)
	}
}

func TestPlanCommandInvalidGrid(t *testing.T) {
	_, err := runCLI(t, "plan", "--grid", "7")
	if !errs.Is(err, errs.ErrCodeUnsupportedGrid) {
		t.Errorf("err = %v, want UNSUPPORTED_GRID_SIZE", err)
	}
}

func TestPlanThenRender(t *testing.T) {
	dir := t.TempDir()
	planPath := filepath.Join(dir, "plan.json")
	imgPath := filepath.Join(dir, "collage.png")

	if _, err := runCLI(t, "plan", "--grid", "5", "--variant", "2", "-o", planPath); err != nil {
		t.Fatal(err)
	}
	out, err := runCLI(t, "render", planPath, "--placeholder", "--cell-size", "16", "--no-cache", "-o", imgPath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "11 tiles") {
		t.Errorf("render output should count 11 tiles:\n%s", out)
	}

	f, err := os.Open(imgPath)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("output is not a PNG: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 80 || b.Dy() != 80 {
		t.Errorf("image is %dx%d, want 80x80", b.Dx(), b.Dy())
	}
}

func TestGenerateRequiresAPIKey(t *testing.T) {
	_, err := runCLI(t, "generate", "rj")
	if !errs.Is(err, errs.ErrCodeUnauthorized) {
		t.Errorf("err = %v, want UNAUTHORIZED", err)
	}
}

func TestGenerateValidatesBeforeNetwork(t *testing.T) {
	_, err := runCLI(t, "generate", "rj", "--format", "gif")
	if !errs.Is(err, errs.ErrCodeInvalidFormat) {
		t.Errorf("err = %v, want INVALID_FORMAT", err)
	}
}

func TestLayoutsCommand(t *testing.T) {
	out, err := runCLI(t, "layouts")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"4×4", "5×5", "6×6", "1 large, 2 medium, 8 small"} {
		if !strings.Contains(out, want) {
			t.Errorf("layouts output missing %q:\n%s", want, out)
		}
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := runCLI(t, "version", "--json")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, `"version"`) {
		t.Errorf("version --json = %s", out)
	}
}

func TestJobRows(t *testing.T) {
	cfg := config.Default()
	cfg.Defaults.Username = "rj"
	cfg.Schedule.Jobs = []config.Job{
		{Name: "weekly", Cron: "0 9 * * MON", ChatID: 42, OutputDir: "/srv/collages"},
		{Cron: "@daily", Username: "other"},
	}
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.Local) // a Wednesday

	rows, err := jobRows(cfg, now)
	if err != nil {
		t.Fatal(err)
	}
	want := [][]string{
		{"weekly", "0 9 * * MON", "rj", "telegram:42, dir:/srv/collages", "Mon May 6 09:00"},
		{"job-2", "@daily", "other", "none", "Thu May 2 00:00"},
	}
	if diff := cmp.Diff(want, rows); diff != "" {
		t.Errorf("jobRows mismatch (-want +got):\n%s", diff)
	}

	cfg.Schedule.Jobs = []config.Job{{Cron: "not a spec"}}
	if _, err := jobRows(cfg, now); !errs.Is(err, errs.ErrCodeInvalidInput) {
		t.Errorf("invalid spec err = %v, want INVALID_INPUT", err)
	}
}

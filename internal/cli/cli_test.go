package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/samirrijal/vertexgen/internal/adapters/projection"
	"github.com/samirrijal/vertexgen/internal/core/domain"
	"github.com/samirrijal/vertexgen/internal/core/usecases"
)

// diamond is a square around Recife given out of order: south, north, west, east.
const diamond = `{"type":"FeatureCollection","features":[
	{"type":"Feature","geometry":{"type":"Point","coordinates":[-34.90,-8.10]},"properties":{"id":"S"}},
	{"type":"Feature","geometry":{"type":"Point","coordinates":[-34.90,-8.00]},"properties":{"id":"N"}},
	{"type":"Feature","geometry":{"type":"Point","coordinates":[-34.95,-8.05]},"properties":{"id":"W"}},
	{"type":"Feature","geometry":{"type":"Point","coordinates":[-34.85,-8.05]},"properties":{"id":"E"}}
]}`

// clockwise from the northern anchor: N, E, S, W as [lon, lat].
var clockwise = [][2]float64{{-34.90, -8.00}, {-34.85, -8.05}, {-34.90, -8.10}, {-34.95, -8.05}}

func writeInput(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func newService(t *testing.T) *usecases.VertexService {
	t.Helper()
	tr, err := projection.New("pure")
	if err != nil {
		t.Fatalf("transformer: %v", err)
	}
	return usecases.NewVertexService(tr, nil, nil, nil)
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

// --- ResolveOptions ---

func TestResolveOptions(t *testing.T) {
	cases := []struct {
		policy, algorithm string
		width             int
		want              domain.Options
		wantErr           bool
	}{
		{"", "", 0, domain.DefaultOptions(), false},
		{"centroid", "greedy", 0, domain.Options{ReferencePolicy: domain.PolicyCentroid, Algorithm: domain.AlgorithmGreedyWalk, LabelWidth: 2}, false},
		{"north", "sort", 4, domain.Options{ReferencePolicy: domain.PolicyNorthernmost, Algorithm: domain.AlgorithmSortByAzimuth, LabelWidth: 4}, false},
		{"southmost", "", 0, domain.Options{}, true},
		{"", "random", 0, domain.Options{}, true},
		{"", "", 1, domain.Options{}, true},
	}
	for _, c := range cases {
		got, err := ResolveOptions(domain.DefaultOptions(), c.policy, c.algorithm, c.width)
		if (err != nil) != c.wantErr {
			t.Errorf("ResolveOptions(%q, %q, %d) error = %v, wantErr %v", c.policy, c.algorithm, c.width, err, c.wantErr)
			continue
		}
		if !c.wantErr && got != c.want {
			t.Errorf("ResolveOptions(%q, %q, %d) = %+v, want %+v", c.policy, c.algorithm, c.width, got, c.want)
		}
	}
}

// --- ProcessFile ---

func TestProcessFile_WritesBothOutputs(t *testing.T) {
	in := writeInput(t, "pontos.geojson", diamond)
	dir := t.TempDir()

	out, err := ProcessFile(context.Background(), newService(t), FileJob{
		Input:      in,
		TablePath:  filepath.Join(dir, "tabela"),
		PointsPath: filepath.Join(dir, "ordenados.geojson"),
		Options:    domain.DefaultOptions(),
	}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if out.TablePath != filepath.Join(dir, "tabela.xlsx") {
		t.Errorf("expected extension appended, got %s", out.TablePath)
	}
	if info, err := os.Stat(out.TablePath); err != nil || info.Size() == 0 {
		t.Errorf("table not written: %v", err)
	}

	wantIndex := []int{1, 3, 0, 2}
	for i, p := range out.Result.Points {
		if p.Index != wantIndex[i] {
			t.Errorf("position %d: expected input %d, got %d", i, wantIndex[i], p.Index)
		}
	}

	set, err := ReadPointSet(context.Background(), out.PointsPath, "")
	if err != nil {
		t.Fatalf("read back points: %v", err)
	}
	if len(set.Points) != 4 {
		t.Fatalf("expected 4 points, got %d", len(set.Points))
	}
	for i, p := range set.Points {
		if p.X != clockwise[i][0] || p.Y != clockwise[i][1] {
			t.Errorf("point %d: got (%v, %v), want %v", i, p.X, p.Y, clockwise[i])
		}
		if want := out.Result.Table[i].Label; p.Properties[domain.ColumnLabel] != want {
			t.Errorf("point %d: label %v, want %s", i, p.Properties[domain.ColumnLabel], want)
		}
	}
}

func TestProcessFile_FailureWritesNothing(t *testing.T) {
	in := writeInput(t, "vazio.geojson", `{"type":"FeatureCollection","features":[]}`)
	dir := t.TempDir()
	table := filepath.Join(dir, "t.xlsx")

	_, err := ProcessFile(context.Background(), newService(t), FileJob{
		Input:      in,
		TablePath:  table,
		PointsPath: filepath.Join(dir, "p.geojson"),
		Options:    domain.DefaultOptions(),
	}, nil)
	if !errors.Is(err, domain.ErrEmptyPointSet) {
		t.Fatalf("expected empty point set error, got %v", err)
	}
	if _, err := os.Stat(table); !os.IsNotExist(err) {
		t.Error("no table should be written for a failed run")
	}
}

func TestReadPointSet_UnsupportedExtension(t *testing.T) {
	in := writeInput(t, "pontos.shp", "")
	if _, err := ReadPointSet(context.Background(), in, ""); err == nil {
		t.Error("expected error for .shp input")
	}
}

// projected is a square near Recife in SIRGAS 2000 / UTM 25S metres with no
// crs member.
const projected = `{"type":"FeatureCollection","features":[
	{"type":"Feature","geometry":{"type":"Point","coordinates":[290000,9105000]},"properties":{}},
	{"type":"Feature","geometry":{"type":"Point","coordinates":[290000,9115000]},"properties":{}},
	{"type":"Feature","geometry":{"type":"Point","coordinates":[285000,9110000]},"properties":{}},
	{"type":"Feature","geometry":{"type":"Point","coordinates":[295000,9110000]},"properties":{}}
]}`

func TestReadPointSet_FallbackCRS(t *testing.T) {
	in := writeInput(t, "pontos.geojson", projected)

	set, err := ReadPointSet(context.Background(), in, "EPSG:31985")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if set.SourceCRS != "EPSG:31985" {
		t.Errorf("expected EPSG:31985, got %q", set.SourceCRS)
	}
	for _, p := range set.Points {
		if p.SourceCRS != "EPSG:31985" {
			t.Errorf("point %d: expected EPSG:31985, got %q", p.Index, p.SourceCRS)
		}
	}
}

// --- commands ---

func TestRunCmd_JSON(t *testing.T) {
	in := writeInput(t, "pontos.geojson", diamond)
	dir := t.TempDir()

	stdout, err := execute(t, "run",
		"--input", in,
		"--xlsx", filepath.Join(dir, "tabela.csv"),
		"--output", filepath.Join(dir, "pontos.csv"),
		"--label-width", "3",
		"--format", "json",
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var payload struct {
		Result     domain.Result `json:"result"`
		TablePath  string        `json:"table_path"`
		PointsPath string        `json:"points_path"`
	}
	if err := json.Unmarshal([]byte(stdout), &payload); err != nil {
		t.Fatalf("decode output: %v\n%s", err, stdout)
	}
	if payload.Result.Table[0].Label != "P-001" {
		t.Errorf("expected P-001, got %s", payload.Result.Table[0].Label)
	}

	csv, err := os.ReadFile(payload.TablePath)
	if err != nil {
		t.Fatalf("read table: %v", err)
	}
	if !strings.HasPrefix(string(csv), strings.Join(domain.TableColumns, ",")) {
		t.Errorf("unexpected table header: %q", strings.SplitN(string(csv), "\n", 2)[0])
	}
	points, err := os.ReadFile(payload.PointsPath)
	if err != nil {
		t.Fatalf("read points: %v", err)
	}
	if !strings.HasPrefix(string(points), "WKT,") {
		t.Errorf("expected WKT csv, got %q", strings.SplitN(string(points), "\n", 2)[0])
	}
}

func TestRunCmd_CRSFlag(t *testing.T) {
	in := writeInput(t, "pontos.geojson", projected)
	dir := t.TempDir()

	stdout, err := execute(t, "run",
		"-i", in,
		"--crs", "EPSG:31985",
		"--xlsx", filepath.Join(dir, "t.csv"),
		"-o", filepath.Join(dir, "p.geojson"),
		"--format", "json",
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var payload struct {
		Result domain.Result `json:"result"`
	}
	if err := json.Unmarshal([]byte(stdout), &payload); err != nil {
		t.Fatalf("decode output: %v\n%s", err, stdout)
	}
	if payload.Result.Collection.SourceCRS != "EPSG:31985" {
		t.Errorf("expected output in EPSG:31985, got %q", payload.Result.Collection.SourceCRS)
	}
	for _, p := range payload.Result.Points {
		if p.Latitude < -8.2 || p.Latitude > -7.9 || p.Longitude < -35.1 || p.Longitude > -34.7 {
			t.Errorf("point %d: expected a position near Recife, got %v, %v", p.Index, p.Latitude, p.Longitude)
		}
	}
}

func TestRunCmd_Pretty(t *testing.T) {
	in := writeInput(t, "pontos.geojson", diamond)
	dir := t.TempDir()

	stdout, err := execute(t, "run",
		"-i", in,
		"--xlsx", filepath.Join(dir, "t.xlsx"),
		"-o", filepath.Join(dir, "p.geojson"),
		"--policy", "centroid",
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{"Anchor:     centroid", domain.ColumnLabel, domain.ColumnNorthing, "P-01", "P-04", "t.xlsx"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("expected %q in output:\n%s", want, stdout)
		}
	}
}

func TestRunCmd_Errors(t *testing.T) {
	in := writeInput(t, "pontos.geojson", diamond)

	if _, err := execute(t, "run"); err == nil {
		t.Error("expected error without --input")
	}
	if _, err := execute(t, "run", "-i", in, "--format", "yaml"); err == nil {
		t.Error("expected error for unsupported format")
	}
	if _, err := execute(t, "run", "-i", in, "--algorithm", "zigzag"); err == nil {
		t.Error("expected error for unknown algorithm")
	}
}

func TestSampleCmd(t *testing.T) {
	out := filepath.Join(t.TempDir(), "amostra.geojson")

	stdout, err := execute(t, "sample", "-r", "brasilia", "-n", "5", "-o", out)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(stdout, "5 points in brasilia") {
		t.Errorf("unexpected output %q", stdout)
	}

	set, err := ReadPointSet(context.Background(), out, "")
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if len(set.Points) != 5 {
		t.Errorf("expected 5 points, got %d", len(set.Points))
	}
	bounds := usecases.SampleRegions["brasilia"]
	for _, p := range set.Points {
		if p.Y < bounds.MinLat || p.Y > bounds.MaxLat || p.X < bounds.MinLon || p.X > bounds.MaxLon {
			t.Errorf("point (%v, %v) outside brasilia", p.X, p.Y)
		}
	}
}

package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/samirrijal/vertexgen/internal/adapters/geofile"
	natsadapter "github.com/samirrijal/vertexgen/internal/adapters/nats"
	"github.com/samirrijal/vertexgen/internal/adapters/spreadsheet"
	"github.com/samirrijal/vertexgen/internal/core/domain"
	"github.com/samirrijal/vertexgen/internal/core/usecases"
)

const (
	mimeGeoJSON = "application/geo+json"
	mimeXLSX    = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// pointInput is one point of a JSON sequencing request.
type pointInput struct {
	X            float64        `json:"x"`
	Y            float64        `json:"y"`
	GeometryType string         `json:"geometry_type"`
	Properties   map[string]any `json:"properties"`
}

// optionsInput carries run options by name. Empty fields take the server
// defaults.
type optionsInput struct {
	ReferencePolicy string `json:"reference_policy"`
	Algorithm       string `json:"algorithm"`
	LabelWidth      int    `json:"label_width"`
}

// sequenceRequest is the JSON body of POST /v1/sequence and POST /v1/runs.
// Points may be given inline or as an embedded GeoJSON FeatureCollection.
type sequenceRequest struct {
	Name      string          `json:"name"`
	SourceCRS string          `json:"source_crs"`
	Points    []pointInput    `json:"points"`
	GeoJSON   json.RawMessage `json:"geojson"`
	Options   optionsInput    `json:"options"`
}

// resolve parses option names and fills the gaps from def. Query parameters
// override the body.
func (o optionsInput) resolve(c *fiber.Ctx, def domain.Options) (domain.Options, error) {
	if v := c.Query("policy"); v != "" {
		o.ReferencePolicy = v
	}
	if v := c.Query("algorithm"); v != "" {
		o.Algorithm = v
	}
	if v := c.QueryInt("label_width", 0); v != 0 {
		o.LabelWidth = v
	}

	var (
		opts     domain.Options
		problems []string
	)
	if o.ReferencePolicy != "" {
		p, err := domain.ParseReferencePolicy(o.ReferencePolicy)
		if err != nil {
			problems = append(problems, err.Error())
		}
		opts.ReferencePolicy = p
	}
	if o.Algorithm != "" {
		a, err := domain.ParseSequencingAlgorithm(o.Algorithm)
		if err != nil {
			problems = append(problems, err.Error())
		}
		opts.Algorithm = a
	}
	opts.LabelWidth = o.LabelWidth
	if len(problems) > 0 {
		return domain.Options{}, &domain.OptionsError{Problems: problems}
	}
	opts = opts.WithDefaults(def)
	return opts, opts.Validate()
}

// parseSequenceInput reads a point set and options from the request. JSON
// bodies use sequenceRequest; GeoJSON and CSV bodies carry only points and
// take their options from the query string.
func parseSequenceInput(c *fiber.Ctx, def domain.Options) (domain.PointSet, domain.Options, error) {
	var (
		set  *domain.PointSet
		in   optionsInput
		err  error
		body = bytes.NewReader(c.Body())
		ctx  = c.UserContext()
	)

	ct := strings.ToLower(c.Get(fiber.HeaderContentType))
	switch {
	case strings.HasPrefix(ct, mimeGeoJSON):
		set, err = geofile.NewGeoJSON(c.Query("crs")).Read(ctx, body)
	case strings.HasPrefix(ct, "text/csv"):
		set, err = geofile.NewWKTCSV(c.Query("crs", geofile.DefaultCRS)).Read(ctx, body)
	default:
		var req sequenceRequest
		if err := c.BodyParser(&req); err != nil {
			return domain.PointSet{}, domain.Options{}, errors.New("invalid request body")
		}
		in = req.Options
		set, err = req.pointSet(c)
	}
	if err != nil {
		return domain.PointSet{}, domain.Options{}, err
	}
	opts, err := in.resolve(c, def)
	if err != nil {
		return domain.PointSet{}, domain.Options{}, err
	}
	return *set, opts, nil
}

func (r sequenceRequest) pointSet(c *fiber.Ctx) (*domain.PointSet, error) {
	if len(r.GeoJSON) > 0 {
		set, err := geofile.NewGeoJSON(r.SourceCRS).Read(c.UserContext(), bytes.NewReader(r.GeoJSON))
		if err != nil {
			return nil, err
		}
		if r.Name != "" {
			set.Name = r.Name
		}
		return set, nil
	}

	crs := r.SourceCRS
	if crs == "" {
		crs = geofile.DefaultCRS
	}
	set := &domain.PointSet{Name: r.Name, SourceCRS: crs, Points: make([]domain.Point, 0, len(r.Points))}
	for i, p := range r.Points {
		gt := p.GeometryType
		if gt == "" {
			gt = "Point"
		}
		set.Points = append(set.Points, domain.Point{
			Index:        i,
			X:            p.X,
			Y:            p.Y,
			SourceCRS:    crs,
			GeometryType: gt,
			Properties:   p.Properties,
		})
	}
	return set, nil
}

// SequenceHandler runs the pipeline synchronously and returns the result in
// the format named by ?format= (json, xlsx, csv, geojson or wkt).
func SequenceHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		format := strings.ToLower(c.Query("format", "json"))
		if !validFormat(format) {
			return errBadRequest(c, "format must be one of json, xlsx, csv, geojson, wkt")
		}

		set, opts, err := parseSequenceInput(c, deps.Defaults)
		if err != nil {
			if domain.IsKind(err, domain.KindInvalidOptions) {
				return errPipeline(c, err)
			}
			return errBadRequest(c, err.Error())
		}

		ctx := c.UserContext()
		res, err := deps.Vertices.Run(ctx, set, opts, nil)
		if err != nil {
			return errPipeline(c, err)
		}
		LoggerFromCtx(ctx).Info("sequence served", "run_id", res.RunID, "points", len(res.Points), "format", format)

		c.Set("X-Run-ID", res.RunID)
		c.Set("Cache-Control", "no-store")
		return writeResult(c, res, format)
	}
}

func validFormat(f string) bool {
	switch f {
	case "json", "xlsx", "csv", "geojson", "wkt":
		return true
	}
	return false
}

// writeResult renders res in one of the supported download formats.
func writeResult(c *fiber.Ctx, res *domain.Result, format string) error {
	ctx := c.UserContext()
	var (
		buf  bytes.Buffer
		err  error
		mime = "text/csv"
		ext  = ".csv"
	)
	switch format {
	case "xlsx":
		mime, ext = mimeXLSX, ".xlsx"
		err = spreadsheet.NewXLSX().WriteTable(ctx, &buf, res.Table)
	case "csv":
		err = spreadsheet.NewCSV().WriteTable(ctx, &buf, res.Table)
	case "geojson":
		mime, ext = mimeGeoJSON, ".geojson"
		err = geofile.NewGeoJSON("").WriteCollection(ctx, &buf, res.Collection)
	case "wkt":
		err = geofile.NewWKTCSV(res.Collection.SourceCRS).WriteCollection(ctx, &buf, res.Collection)
	default:
		return c.JSON(res)
	}
	if err != nil {
		return errInternal(c, err.Error())
	}
	c.Attachment(geofile.NormalizeOutputPath("", ext))
	c.Set(fiber.HeaderContentType, mime)
	return c.Send(buf.Bytes())
}

// SubmitRunHandler queues a run for the background worker and answers with
// the id to follow on the progress feed.
func SubmitRunHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if deps.Submitter == nil {
			return errUnavailable(c, "run queue is not configured")
		}

		set, opts, err := parseSequenceInput(c, deps.Defaults)
		if err != nil {
			if domain.IsKind(err, domain.KindInvalidOptions) {
				return errPipeline(c, err)
			}
			return errBadRequest(c, err.Error())
		}
		if err := usecases.ValidatePointSet(set); err != nil {
			return errPipeline(c, err)
		}

		req := &domain.RunRequest{
			RunID:       uuid.NewString(),
			Set:         set,
			Options:     opts,
			SubmittedAt: time.Now().UTC(),
		}
		if err := deps.Submitter.PublishRunRequest(c.UserContext(), req); err != nil {
			LoggerFromCtx(c.UserContext()).Error("queue run failed", "error", err)
			return errUnavailable(c, "could not queue run")
		}

		c.Location("/v1/runs/" + req.RunID)
		return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
			"run_id":           req.RunID,
			"status":           "queued",
			"progress_subject": natsadapter.ProgressSubject(req.RunID),
		})
	}
}

// ListRunsHandler returns stored runs, newest first.
func ListRunsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		offset := c.QueryInt("offset", 0)
		limit := c.QueryInt("limit", 20)
		if offset < 0 {
			offset = 0
		}
		if limit <= 0 || limit > 100 {
			limit = 20
		}

		runs, total, err := deps.Vertices.ListRuns(c.UserContext(), limit, offset)
		if err != nil {
			return errPipeline(c, err)
		}
		if runs == nil {
			runs = []domain.RunRecord{}
		}

		pg := Pagination{Offset: offset, Limit: limit, Total: total}
		SetLinkHeaders(c, pg)
		return c.JSON(PaginatedResponse{Data: runs, Pagination: pg})
	}
}

// runResponse is a stored run with its sequenced points.
type runResponse struct {
	Run    *domain.RunRecord       `json:"run"`
	Points []domain.SequencedPoint `json:"points"`
	Table  []domain.TableRow       `json:"table"`
}

// GetRunHandler returns one stored run.
func GetRunHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if id == "" {
			return errBadRequest(c, "run id is required")
		}
		rec, points, err := deps.Vertices.GetRun(c.UserContext(), id)
		if err != nil {
			return errPipeline(c, err)
		}
		c.Set("Cache-Control", "public, max-age=3600")
		return c.JSON(runResponse{Run: rec, Points: points, Table: usecases.BuildTable(points)})
	}
}

// SampleHandler generates a random point set inside a named region. Unknown
// regions fall back to the default one, reported in X-Sample-Region.
func SampleHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		n := c.QueryInt("n", usecases.DefaultSamplePoints)
		if n <= 0 || n > 1000 {
			return errBadRequest(c, "n must be between 1 and 1000")
		}
		seed := uint64(c.QueryInt("seed", usecases.DefaultSampleSeed))

		set, region, err := usecases.GenerateSample(c.Query("region", usecases.DefaultSampleRegion), n, seed)
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		c.Set("X-Sample-Region", region)

		if strings.EqualFold(c.Query("format"), "geojson") {
			var buf bytes.Buffer
			if err := geofile.NewGeoJSON("").WriteCollection(c.UserContext(), &buf, usecases.AsCollection(set)); err != nil {
				return errInternal(c, err.Error())
			}
			c.Set(fiber.HeaderContentType, mimeGeoJSON)
			return c.Send(buf.Bytes())
		}
		return c.JSON(set)
	}
}

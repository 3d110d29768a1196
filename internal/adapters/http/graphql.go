package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/samirrijal/vertexgen/internal/core/domain"
	"github.com/samirrijal/vertexgen/internal/core/usecases"
)

// buildSchema creates the GraphQL schema wired to our services.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	anchorType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Anchor",
		Fields: graphql.Fields{
			"latitude":     &graphql.Field{Type: graphql.Float},
			"longitude":    &graphql.Field{Type: graphql.Float},
			"utm_northing": &graphql.Field{Type: graphql.Float},
			"member_index": &graphql.Field{Type: graphql.Int},
			"policy":       &graphql.Field{Type: graphql.String},
		},
	})

	runType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Run",
		Fields: graphql.Fields{
			"id":               &graphql.Field{Type: graphql.String},
			"name":             &graphql.Field{Type: graphql.String},
			"source_crs":       &graphql.Field{Type: graphql.String},
			"reference_policy": &graphql.Field{Type: graphql.String},
			"algorithm":        &graphql.Field{Type: graphql.String},
			"label_width":      &graphql.Field{Type: graphql.Int},
			"point_count":      &graphql.Field{Type: graphql.Int},
			"perimeter_meters": &graphql.Field{Type: graphql.Float},
			"anchor":           &graphql.Field{Type: anchorType},
			"created_at":       &graphql.Field{Type: graphql.String},
		},
	})

	pointType := graphql.NewObject(graphql.ObjectConfig{
		Name: "SequencedPoint",
		Fields: graphql.Fields{
			"label":          &graphql.Field{Type: graphql.String},
			"sequence_index": &graphql.Field{Type: graphql.Int},
			"input_index":    &graphql.Field{Type: graphql.Int},
			"x":              &graphql.Field{Type: graphql.Float},
			"y":              &graphql.Field{Type: graphql.Float},
			"latitude":       &graphql.Field{Type: graphql.Float},
			"longitude":      &graphql.Field{Type: graphql.Float},
			"latitude_gms":   &graphql.Field{Type: graphql.String},
			"longitude_gms":  &graphql.Field{Type: graphql.String},
			"utm_zone":       &graphql.Field{Type: graphql.Int},
			"utm_easting":    &graphql.Field{Type: graphql.Float},
			"utm_northing":   &graphql.Field{Type: graphql.Float},
			"azimuth":        &graphql.Field{Type: graphql.Float},
		},
	})

	runDetailType := graphql.NewObject(graphql.ObjectConfig{
		Name: "RunDetail",
		Fields: graphql.Fields{
			"run":    &graphql.Field{Type: runType},
			"points": &graphql.Field{Type: graphql.NewList(pointType)},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"run": &graphql.Field{
				Type:        runDetailType,
				Description: "Get a stored run with its sequenced points",
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					id := p.Args["id"].(string)
					rec, points, err := deps.Vertices.GetRun(p.Context, id)
					if err != nil {
						return nil, err
					}
					return map[string]any{"run": runToMap(rec), "points": pointsToMaps(points)}, nil
				},
			},
			"runs": &graphql.Field{
				Type:        graphql.NewList(runType),
				Description: "List stored runs, newest first",
				Args: graphql.FieldConfigArgument{
					"limit":  &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 20},
					"offset": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 0},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					limit := p.Args["limit"].(int)
					offset := p.Args["offset"].(int)
					runs, _, err := deps.Vertices.ListRuns(p.Context, limit, offset)
					if err != nil {
						return nil, err
					}
					out := make([]map[string]any, 0, len(runs))
					for i := range runs {
						out = append(out, runToMap(&runs[i]))
					}
					return out, nil
				},
			},
			"sampleRegions": &graphql.Field{
				Type:        graphql.NewList(graphql.String),
				Description: "Regions the sample generator can draw from",
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return usecases.SampleRegionNames(), nil
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query: queryType,
	})
}

func runToMap(rec *domain.RunRecord) map[string]any {
	return map[string]any{
		"id":               rec.ID,
		"name":             rec.Name,
		"source_crs":       rec.SourceCRS,
		"reference_policy": string(rec.Options.ReferencePolicy),
		"algorithm":        string(rec.Options.Algorithm),
		"label_width":      rec.Options.LabelWidth,
		"point_count":      rec.PointCount,
		"perimeter_meters": rec.Perimeter,
		"anchor": map[string]any{
			"latitude":     rec.Anchor.Latitude,
			"longitude":    rec.Anchor.Longitude,
			"utm_northing": rec.Anchor.UTMNorthing,
			"member_index": rec.Anchor.MemberIndex,
			"policy":       string(rec.Anchor.Policy),
		},
		"created_at": rec.CreatedAt.Format(time.RFC3339),
	}
}

func pointsToMaps(points []domain.SequencedPoint) []map[string]any {
	rows := usecases.BuildTable(points)
	out := make([]map[string]any, len(points))
	for i, p := range points {
		out[i] = map[string]any{
			"label":          p.Label,
			"sequence_index": p.SequenceIndex,
			"input_index":    p.Index,
			"x":              p.X,
			"y":              p.Y,
			"latitude":       p.Latitude,
			"longitude":      p.Longitude,
			"latitude_gms":   rows[i].Latitude,
			"longitude_gms":  rows[i].Longitude,
			"utm_zone":       p.UTMZone,
			"utm_easting":    rows[i].Easting,
			"utm_northing":   rows[i].Northing,
			"azimuth":        p.Azimuth,
		}
	}
	return out
}

// GraphQLHandler serves the GraphQL endpoint.
func GraphQLHandler(deps *Dependencies) fiber.Handler {
	schema, err := buildSchema(deps)
	if err != nil {
		// This would be a programming error in the schema definition
		panic("graphql schema build: " + err.Error())
	}

	type gqlRequest struct {
		Query         string         `json:"query"`
		OperationName string         `json:"operationName"`
		Variables     map[string]any `json:"variables"`
	}

	return func(c *fiber.Ctx) error {
		var req gqlRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        c.UserContext(),
		})

		return c.JSON(result)
	}
}

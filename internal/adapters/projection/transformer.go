package projection

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/ctessum/geom/proj"

	"github.com/samirrijal/vertexgen/internal/core/domain"
	"github.com/samirrijal/vertexgen/internal/pkg/geospatial"
)

// Transformer converts coordinates with the pure Go PROJ port. Parsed
// reference systems and transforms are memoised per definition.
type Transformer struct {
	mu         sync.Mutex
	wgs84      *proj.SR
	geographic map[string]proj.Transformer
	utm        map[utmKey]proj.Transformer
}

type utmKey struct {
	zone  int
	south bool
}

// NewTransformer creates a new Transformer.
func NewTransformer() (*Transformer, error) {
	wgs84, err := proj.Parse(wgs84Proj4)
	if err != nil {
		return nil, fmt.Errorf("parse WGS 84: %w", err)
	}
	return &Transformer{
		wgs84:      wgs84,
		geographic: make(map[string]proj.Transformer),
		utm:        make(map[utmKey]proj.Transformer),
	}, nil
}

// ToGeographic converts (x, y) in sourceCRS to WGS 84 latitude/longitude.
func (t *Transformer) ToGeographic(x, y float64, sourceCRS string) (lat, lon float64, err error) {
	fail := func(err error) (float64, float64, error) {
		return 0, 0, &domain.TransformError{Stage: "geographic", Index: -1, X: x, Y: y, CRS: sourceCRS, Err: err}
	}

	def, err := Resolve(sourceCRS)
	if err != nil {
		return fail(err)
	}
	if def.Code == 4326 {
		if err := checkGeographic(y, x); err != nil {
			return fail(err)
		}
		return y, x, nil
	}

	tr, err := t.toWGS84(def.Proj4)
	if err != nil {
		return fail(err)
	}
	lon, lat, err = tr(x, y)
	if err != nil {
		return fail(err)
	}
	if err := checkGeographic(lat, lon); err != nil {
		return fail(err)
	}
	return lat, lon, nil
}

// ToUTM projects a WGS 84 coordinate into the given zone. The southern
// variant is used when lat < 0.
func (t *Transformer) ToUTM(lat, lon float64, zone int) (northing, easting float64, err error) {
	key := utmKey{zone: zone, south: geospatial.IsSouthern(lat)}
	fail := func(err error) (float64, float64, error) {
		return 0, 0, &domain.TransformError{Stage: "utm", Index: -1, X: lon, Y: lat, CRS: UTMProj4(key.zone, key.south), Err: err}
	}
	if zone < 1 || zone > 60 {
		return fail(fmt.Errorf("zone %d out of range", zone))
	}

	tr, err := t.toUTM(key)
	if err != nil {
		return fail(err)
	}
	easting, northing, err = tr(lon, lat)
	if err != nil {
		return fail(err)
	}
	if isBad(easting) || isBad(northing) {
		return fail(errors.New("projection produced a non-finite coordinate"))
	}
	return northing, easting, nil
}

func (t *Transformer) toWGS84(def string) (proj.Transformer, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if tr, ok := t.geographic[def]; ok {
		return tr, nil
	}
	src, err := proj.Parse(def)
	if err != nil {
		return nil, fmt.Errorf("parse %q: %w", def, err)
	}
	tr, err := src.NewTransform(t.wgs84)
	if err != nil {
		return nil, err
	}
	t.geographic[def] = tr
	return tr, nil
}

func (t *Transformer) toUTM(key utmKey) (proj.Transformer, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if tr, ok := t.utm[key]; ok {
		return tr, nil
	}
	dst, err := proj.Parse(UTMProj4(key.zone, key.south))
	if err != nil {
		return nil, err
	}
	tr, err := t.wgs84.NewTransform(dst)
	if err != nil {
		return nil, err
	}
	t.utm[key] = tr
	return tr, nil
}

func checkGeographic(lat, lon float64) error {
	if isBad(lat) || isBad(lon) {
		return errors.New("non-finite coordinate")
	}
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return fmt.Errorf("latitude %g / longitude %g out of range", lat, lon)
	}
	return nil
}

func isBad(v float64) bool {
	return math.IsNaN(v) || math.IsInf(v, 0)
}

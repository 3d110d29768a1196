//go:build proj

package projection

import (
	"fmt"
	"sync"

	"github.com/pebbe/proj/v5"

	"github.com/samirrijal/vertexgen/internal/core/domain"
	"github.com/samirrijal/vertexgen/internal/pkg/geospatial"
)

// PJTransformer converts coordinates through the system libproj. A PROJ
// context is not safe for concurrent use, so every call holds the mutex.
type PJTransformer struct {
	mu    sync.Mutex
	ctx   *proj.Context
	defs  map[string]*proj.PJ
	zones map[utmKey]*proj.PJ
}

// NewPJTransformer creates a transformer backed by libproj.
func NewPJTransformer() (*PJTransformer, error) {
	return &PJTransformer{
		ctx:   proj.NewContext(),
		defs:  make(map[string]*proj.PJ),
		zones: make(map[utmKey]*proj.PJ),
	}, nil
}

// Close releases the PROJ context and every cached projection.
func (t *PJTransformer) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.ctx.Close()
}

// ToGeographic converts (x, y) in sourceCRS to WGS 84 latitude/longitude.
// Datum shifts are not applied by this backend.
func (t *PJTransformer) ToGeographic(x, y float64, sourceCRS string) (lat, lon float64, err error) {
	fail := func(err error) (float64, float64, error) {
		return 0, 0, &domain.TransformError{Stage: "geographic", Index: -1, X: x, Y: y, CRS: sourceCRS, Err: err}
	}

	def, err := Resolve(sourceCRS)
	if err != nil {
		return fail(err)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	pj, err := create(t.ctx, t.defs, def.Proj4, def.Proj4)
	if err != nil {
		return fail(err)
	}

	u, v := x, y
	if def.Geographic {
		u, v = proj.DegToRad(x), proj.DegToRad(y)
	}
	u, v, _, _, err = pj.Trans(proj.Inv, u, v, 0, 0)
	if err != nil {
		return fail(err)
	}
	lat, lon = proj.RadToDeg(v), proj.RadToDeg(u)
	if err := checkGeographic(lat, lon); err != nil {
		return fail(err)
	}
	return lat, lon, nil
}

// ToUTM projects a WGS 84 coordinate into the given zone.
func (t *PJTransformer) ToUTM(lat, lon float64, zone int) (northing, easting float64, err error) {
	key := utmKey{zone: zone, south: geospatial.IsSouthern(lat)}
	def := UTMProj4(key.zone, key.south)
	fail := func(err error) (float64, float64, error) {
		return 0, 0, &domain.TransformError{Stage: "utm", Index: -1, X: lon, Y: lat, CRS: def, Err: err}
	}
	if zone < 1 || zone > 60 {
		return fail(fmt.Errorf("zone %d out of range", zone))
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	pj, err := create(t.ctx, t.zones, key, def)
	if err != nil {
		return fail(err)
	}
	easting, northing, _, _, err = pj.Trans(proj.Fwd, proj.DegToRad(lon), proj.DegToRad(lat), 0, 0)
	if err != nil {
		return fail(err)
	}
	return northing, easting, nil
}

// create returns the cached projection for key, building it from def on
// first use. Callers hold t.mu.
func create[K comparable](ctx *proj.Context, cache map[K]*proj.PJ, key K, def string) (*proj.PJ, error) {
	if pj, ok := cache[key]; ok {
		return pj, nil
	}
	pj, err := ctx.Create(def)
	if err != nil {
		return nil, fmt.Errorf("create %q: %w", def, err)
	}
	cache[key] = pj
	return pj, nil
}

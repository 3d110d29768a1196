package projection

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrUnknownCRS is returned for identifiers the registry cannot resolve.
var ErrUnknownCRS = errors.New("unknown coordinate reference system")

// WGS84 is the geographic system every point is converted to.
const WGS84 = "EPSG:4326"

const wgs84Proj4 = "+proj=longlat +datum=WGS84 +no_defs"

// Definition is a resolved coordinate reference system.
type Definition struct {
	Code       int    // EPSG code, 0 for raw definitions
	Proj4      string // PROJ string or WKT text
	Geographic bool   // coordinates are longitude/latitude in degrees
}

// builtin holds the EPSG codes known without a PROJ database. UTM codes
// (326zz, 327zz, SIRGAS 2000 zones) are generated in lookup.
var builtin = map[int]Definition{
	4326: {Code: 4326, Proj4: wgs84Proj4, Geographic: true},
	4674: {Code: 4674, Proj4: "+proj=longlat +ellps=GRS80 +towgs84=0,0,0,0,0,0,0 +no_defs", Geographic: true},
	4618: {Code: 4618, Proj4: "+proj=longlat +ellps=aust_SA +towgs84=-66.87,4.37,-38.52,0,0,0,0 +no_defs", Geographic: true},
	4269: {Code: 4269, Proj4: "+proj=longlat +datum=NAD83 +no_defs", Geographic: true},
	4258: {Code: 4258, Proj4: "+proj=longlat +ellps=GRS80 +towgs84=0,0,0,0,0,0,0 +no_defs", Geographic: true},
	3857: {Code: 3857, Proj4: "+proj=merc +a=6378137 +b=6378137 +lat_ts=0 +lon_0=0 +x_0=0 +y_0=0 +k=1 +units=m +no_defs"},
}

// Resolve turns a CRS identifier into a definition. Accepted forms are
// "EPSG:<code>", a bare code, OGC URNs, PROJ strings starting with "+" and
// WKT text.
func Resolve(crs string) (Definition, error) {
	s := strings.TrimSpace(crs)
	switch {
	case s == "":
		return Definition{}, fmt.Errorf("%w: empty identifier", ErrUnknownCRS)
	case strings.HasPrefix(s, "+"):
		return Definition{Proj4: s, Geographic: isLongLat(s)}, nil
	case isWKT(s):
		return Definition{Proj4: s, Geographic: strings.HasPrefix(strings.ToUpper(s), "GEOGCS")}, nil
	}

	code, ok := parseCode(s)
	if !ok {
		return Definition{}, fmt.Errorf("%w: %q", ErrUnknownCRS, crs)
	}
	def, ok := lookup(code)
	if !ok {
		return Definition{}, fmt.Errorf("%w: EPSG:%d is not in the built-in registry", ErrUnknownCRS, code)
	}
	return def, nil
}

// UTMProj4 returns the WGS 84 UTM definition for a zone.
func UTMProj4(zone int, south bool) string {
	def := fmt.Sprintf("+proj=utm +zone=%d +datum=WGS84 +units=m +no_defs", zone)
	if south {
		def += " +south"
	}
	return def
}

func lookup(code int) (Definition, bool) {
	if def, ok := builtin[code]; ok {
		return def, true
	}
	switch {
	case code >= 32601 && code <= 32660:
		return Definition{Code: code, Proj4: UTMProj4(code-32600, false)}, true
	case code >= 32701 && code <= 32760:
		return Definition{Code: code, Proj4: UTMProj4(code-32700, true)}, true
	case code >= 31972 && code <= 31976:
		// SIRGAS 2000 / UTM zones 17N to 21N
		return Definition{Code: code, Proj4: sirgasUTM(code-31972+17, false)}, true
	case code >= 31977 && code <= 31985:
		// SIRGAS 2000 / UTM zones 17S to 25S
		return Definition{Code: code, Proj4: sirgasUTM(code-31977+17, true)}, true
	}
	return Definition{}, false
}

func sirgasUTM(zone int, south bool) string {
	def := fmt.Sprintf("+proj=utm +zone=%d +ellps=GRS80 +towgs84=0,0,0,0,0,0,0 +units=m +no_defs", zone)
	if south {
		def += " +south"
	}
	return def
}

// parseCode extracts an EPSG code from "EPSG:4326", "epsg:4326", "4326",
// "urn:ogc:def:crs:EPSG::4326" or the CRS84 URN.
func parseCode(s string) (int, bool) {
	upper := strings.ToUpper(s)
	if strings.HasSuffix(upper, "CRS84") {
		return 4326, true
	}
	if i := strings.LastIndex(upper, ":"); i >= 0 {
		if !strings.Contains(upper, "EPSG") {
			return 0, false
		}
		upper = upper[i+1:]
	}
	code, err := strconv.Atoi(upper)
	if err != nil || code <= 0 {
		return 0, false
	}
	return code, true
}

func isLongLat(def string) bool {
	return strings.Contains(def, "+proj=longlat") || strings.Contains(def, "+proj=latlong") || strings.Contains(def, "+proj=lonlat")
}

func isWKT(s string) bool {
	upper := strings.ToUpper(s)
	for _, p := range []string{"PROJCS[", "GEOGCS[", "PROJCRS[", "GEOGCRS["} {
		if strings.HasPrefix(upper, p) {
			return true
		}
	}
	return false
}

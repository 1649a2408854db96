package catalogue

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/MrEthical07/campusride/locale"
)

// Origin is the fixed starting point shared by every route.
var Origin = Point{Name: "Richfield Campus", Lat: -26.2041, Lng: 28.0473}

// walkMinutes is added to every route's ride time for the walk to the pick-up point.
const walkMinutes = 5

//go:embed routes.json
var defaultRoutes []byte

// ErrRouteNotFound is returned for ids outside the catalogue.
var ErrRouteNotFound = errors.New("catalogue: route not found")

// Type is the transport mode of a route.
type Type string

const (
	Taxi  Type = "taxi"
	Bus   Type = "bus"
	Train Type = "train"
)

func (t Type) valid() bool {
	return t == Taxi || t == Bus || t == Train
}

type Point struct {
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lng  float64 `json:"lng"`
}

// Route is one catalogue entry. Fee is in whole rand; Time in minutes.
type Route struct {
	ID          int     `json:"id"`
	Type        Type    `json:"type"`
	Name        string  `json:"name"`
	From        string  `json:"from"`
	To          string  `json:"to"`
	Fee         int     `json:"fee"`
	Time        int     `json:"time"`
	Schedule    string  `json:"schedule"`
	Lat         float64 `json:"lat"`
	Lng         float64 `json:"lng"`
	Popular     bool    `json:"popular"`
	Description string  `json:"description"`
	SafetyNote  string  `json:"safetyNote,omitempty"`
	Distance    string  `json:"distance,omitempty"`
}

// Directions is the generated step list for one route.
type Directions struct {
	Route         Route    `json:"route"`
	Steps         []string `json:"steps"`
	TotalTime     int      `json:"totalTime"`
	TotalDistance string   `json:"totalDistance"`
}

// Catalogue is a read-only set of routes. It is never mutated after
// construction and is safe for concurrent use.
type Catalogue struct {
	routes []Route
	byID   map[int]int
}

// Default returns the catalogue built from the embedded fixture.
func Default() (*Catalogue, error) {
	return Parse(defaultRoutes)
}

// Load reads a JSON array of routes from path. An empty path yields [Default].
func Load(path string) (*Catalogue, error) {
	if path == "" {
		return Default()
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalogue: read %s: %w", path, err)
	}
	return Parse(raw)
}

// Parse decodes and validates a JSON array of routes.
func Parse(raw []byte) (*Catalogue, error) {
	var routes []Route
	if err := json.Unmarshal(raw, &routes); err != nil {
		return nil, fmt.Errorf("catalogue: decode: %w", err)
	}

	c := &Catalogue{routes: routes, byID: make(map[int]int, len(routes))}
	for i, r := range routes {
		if r.ID <= 0 {
			return nil, fmt.Errorf("catalogue: route %q has invalid id %d", r.Name, r.ID)
		}
		if !r.Type.valid() {
			return nil, fmt.Errorf("catalogue: route %d has unknown type %q", r.ID, r.Type)
		}
		if _, dup := c.byID[r.ID]; dup {
			return nil, fmt.Errorf("catalogue: duplicate route id %d", r.ID)
		}
		c.byID[r.ID] = i
	}
	sort.SliceStable(c.routes, func(i, j int) bool { return c.routes[i].ID < c.routes[j].ID })
	for i, r := range c.routes {
		c.byID[r.ID] = i
	}
	return c, nil
}

// List returns a copy of every route ordered by id.
func (c *Catalogue) List() []Route {
	out := make([]Route, len(c.routes))
	copy(out, c.routes)
	return out
}

// Get returns the route with id.
func (c *Catalogue) Get(id int) (Route, error) {
	i, ok := c.byID[id]
	if !ok {
		return Route{}, ErrRouteNotFound
	}
	return c.routes[i], nil
}

// Directions builds localized step-by-step directions for route id.
func (c *Catalogue) Directions(id int, lang locale.Language) (Directions, error) {
	r, err := c.Get(id)
	if err != nil {
		return Directions{}, err
	}
	if !lang.Valid() {
		lang = locale.Default
	}
	p := locale.Printer(lang)

	from := r.From
	if from == "" {
		from = Origin.Name
	}
	steps := []string{
		p.Sprintf(locale.KeyDirectionsWalk, from, r.Name),
		p.Sprintf(locale.KeyDirectionsBoard, r.Name, string(r.Type)),
		p.Sprintf(locale.KeyDirectionsFare, r.Fee),
		p.Sprintf(locale.KeyDirectionsRide, r.To, r.Time),
		p.Sprintf(locale.KeyDirectionsArrive, r.To),
	}
	if r.SafetyNote != "" {
		steps = append(steps, p.Sprintf(locale.KeyDirectionsSafety, r.SafetyNote))
	}

	return Directions{
		Route:         r,
		Steps:         steps,
		TotalTime:     r.Time + walkMinutes,
		TotalDistance: r.Distance,
	}, nil
}

package httpapi

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/transitwise/itinerary/internal/departures"
	"github.com/transitwise/itinerary/internal/models"
	"github.com/transitwise/itinerary/internal/routecache"
	"github.com/transitwise/itinerary/internal/search"
	"github.com/transitwise/itinerary/internal/solver"
	"github.com/transitwise/itinerary/internal/variator"
)

// Register installs the itinerary routes on app under the /v2 prefix.
func (d *Deps) Register(app *fiber.App) {
	app.Get("/v2/itinerary", d.Itinerary)
	app.Get("/v2/itineraries", d.Itineraries)
	app.Get("/v2/stops/:id/next-departures", d.Departures)
}

// directionJSON is the wire shape of a single leg: models.Direction's
// fields, snake-cased for JSON.
type directionJSON struct {
	FromNode       string             `json:"from_node"`
	ToNode         string             `json:"to_node"`
	DatetimeDepart time.Time          `json:"datetime_depart"`
	DatetimeArrive time.Time          `json:"datetime_arrive"`
	Instruction    string             `json:"instruction"`
	Intermediate   []intermediateJSON `json:"intermediate_stops"`
	Agency         string             `json:"agency"`
}

type intermediateJSON struct {
	Node string    `json:"node"`
	Time time.Time `json:"time"`
}

func renderLegs(legs []models.Direction) []directionJSON {
	out := make([]directionJSON, len(legs))
	for i, leg := range legs {
		intermediate := make([]intermediateJSON, len(leg.IntermediateNodes))
		for j, n := range leg.IntermediateNodes {
			intermediate[j] = intermediateJSON{Node: n.Node, Time: n.Time}
		}
		out[i] = directionJSON{
			FromNode:       leg.FromNode,
			ToNode:         leg.ToNode,
			DatetimeDepart: leg.DatetimeDepart,
			DatetimeArrive: leg.DatetimeArrive,
			Instruction:    leg.HumanReadableInstruction,
			Intermediate:   intermediate,
			Agency:         string(leg.Agency),
		}
	}
	return out
}

// Itinerary handles GET /v2/itinerary: the single best route.
func (d *Deps) Itinerary(c *fiber.Ctx) error {
	origin, destination, anchor, depart, sc, err := parseSearchParams(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	release, ctx, cancel, err := d.acquire(c)
	if err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": err.Error()})
	}
	defer release()
	defer cancel()

	var cacheKey string
	if d.Cache != nil {
		cacheKey = routecache.ItineraryKey(string(origin), string(destination), anchor, depart, walkingVariant(sc))
		var legs []models.Direction
		if d.Cache.GetItinerary(ctx, cacheKey, &legs) {
			return c.JSON(fiber.Map{"legs": renderLegs(legs)})
		}
	}

	legs, err := solver.Find(ctx, sc, d.Catalog, d.Agencies, origin, destination, anchor, depart)
	if err != nil {
		return solveError(c, err)
	}

	if d.Cache != nil {
		d.Cache.SetItinerary(ctx, cacheKey, legs)
	}

	return c.JSON(fiber.Map{"legs": renderLegs(legs)})
}

// walkingVariant distinguishes cache entries for requests that share an
// origin, destination, anchor, and polarity but differ in walking cap.
func walkingVariant(sc search.Context) string {
	return fmt.Sprintf("%d:%.0f", sc.WalkingMax.Kind, sc.WalkingMax.Seconds)
}

// Itineraries handles GET /v2/itineraries: up to several alternatives.
func (d *Deps) Itineraries(c *fiber.Ctx) error {
	origin, destination, anchor, depart, sc, err := parseSearchParams(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	maxCount := d.MaxVariatorCount
	if raw := c.Query("max_count"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			maxCount = n
		}
	}

	release, ctx, cancel, err := d.acquire(c)
	if err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": err.Error()})
	}
	defer release()
	defer cancel()

	itineraries, err := variator.Find(ctx, sc, d.Catalog, d.Agencies, d.Vary, origin, destination, anchor, depart, maxCount)
	if err != nil {
		return solveError(c, err)
	}

	rendered := make([][]directionJSON, len(itineraries))
	for i, legs := range itineraries {
		rendered[i] = renderLegs(legs)
	}
	return c.JSON(fiber.Map{"itineraries": rendered})
}

// Departures handles GET /v2/stops/:id/next-departures.
func (d *Deps) Departures(c *fiber.Ctx) error {
	origin := c.Params("id")
	if origin == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "missing stop id"})
	}

	anchor, err := parseDatetime(c.Query("datetime"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	count := 5
	if raw := c.Query("count"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid count"})
		}
		count = n
	}

	sc := search.New(search.FromMode(c.Query("walking_mode"), walkingMinutes(c)))

	release, ctx, cancel, err := d.acquire(c)
	if err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": err.Error()})
	}
	defer release()
	defer cancel()

	legs, err := departures.List(ctx, sc, d.Catalog, d.Agencies, origin, anchor, count)
	if err != nil {
		return solveError(c, err)
	}

	return c.JSON(fiber.Map{"departures": renderLegs(legs)})
}

// acquire takes a concurrency slot and derives a deadline-bound context
// from the request.
func (d *Deps) acquire(c *fiber.Ctx) (release func(), ctx context.Context, cancel func(), err error) {
	deadlineCtx, cancelFn := context.WithTimeout(c.Context(), d.DefaultTimeout)
	release, err = d.Limiter.Acquire(deadlineCtx)
	if err != nil {
		cancelFn()
		return nil, nil, func() {}, fmt.Errorf("server busy: %w", err)
	}
	return release, deadlineCtx, cancelFn, nil
}

// parseSearchParams reads the parameters common to both itinerary
// endpoints: from, to, datetime, polarity (depart/arrive), walking_mode
// and walking_minutes.
func parseSearchParams(c *fiber.Ctx) (origin, destination models.NodeID, anchor time.Time, depart bool, sc search.Context, err error) {
	origin = c.Query("from")
	destination = c.Query("to")
	if origin == "" || destination == "" {
		err = errors.New("missing required parameters: from and to")
		return
	}

	anchor, err = parseDatetime(c.Query("datetime"))
	if err != nil {
		return
	}

	switch c.Query("polarity", "depart") {
	case "depart":
		depart = true
	case "arrive":
		depart = false
	default:
		err = errors.New("polarity must be 'depart' or 'arrive'")
		return
	}

	sc = search.New(search.FromMode(c.Query("walking_mode"), walkingMinutes(c)))
	return
}

func walkingMinutes(c *fiber.Ctx) float64 {
	raw := c.Query("walking_minutes")
	if raw == "" {
		return 0
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0
	}
	return v
}

func parseDatetime(raw string) (time.Time, error) {
	if raw == "" {
		return time.Now(), nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid datetime %q: expected RFC3339", raw)
	}
	return t, nil
}

// solveError maps a solver/variator/departures error to an HTTP status.
func solveError(c *fiber.Ctx, err error) error {
	var npe *solver.NotPossibleError
	if errors.As(err, &npe) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	}
	var ce *solver.CancelledError
	if errors.As(err, &ce) {
		return c.Status(fiber.StatusGatewayTimeout).JSON(fiber.Map{"error": err.Error()})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
}

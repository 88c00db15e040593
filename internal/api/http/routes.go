package httpapi

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/weather-dashboard/internal/observability"
	"github.com/i474232898/weather-dashboard/internal/pins"
	"github.com/i474232898/weather-dashboard/internal/weather"
)

var validate = validator.New()

// Panel endpoints answer 200 even when the fetch failed: the body carries
// mode "failed", the user-facing message and the previously displayed data.
// Only malformed requests get 4xx.

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, service *weather.Service, pinStore *pins.Store, metrics *observability.Metrics) {
	v1 := app.Group("/api/v1")

	metrics.PinnedLocations.Set(float64(pinStore.Len()))

	v1.Get("/datasets", func(c *fiber.Ctx) error {
		limit := c.QueryInt("limit", 20)
		if err := validate.Var(limit, "gte=1,lte=1000"); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "limit must be between 1 and 1000")
		}
		return c.JSON(service.Datasets(c.UserContext(), limit))
	})

	v1.Get("/locations/search", func(c *fiber.Ctx) error {
		res, snap := service.SearchLocations(c.UserContext(), c.Query("q"))
		return c.JSON(fiber.Map{
			"validation": res,
			"results":    snap,
		})
	})

	v1.Get("/locations/reverse", func(c *fiber.Ctx) error {
		var q coordQuery
		if err := q.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		loc := service.ReverseLookup(c.UserContext(), *q.Lat, *q.Lon)
		return c.JSON(fiber.Map{
			"location": loc,
			"pinned":   pinStore.IsPinned(loc.ID),
		})
	})

	v1.Get("/pins", func(c *fiber.Ctx) error {
		return c.JSON(pinsBody(pinStore, false))
	})

	v1.Post("/pins", func(c *fiber.Ctx) error {
		loc, err := bindLocation(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		changed := pinStore.Pin(loc)
		metrics.PinnedLocations.Set(float64(pinStore.Len()))
		return c.JSON(pinsBody(pinStore, changed))
	})

	v1.Delete("/pins/:id", func(c *fiber.Ctx) error {
		id := c.Params("id")
		changed := pinStore.Unpin(id)
		metrics.PinnedLocations.Set(float64(pinStore.Len()))
		return c.JSON(pinsBody(pinStore, changed))
	})

	v1.Get("/active", func(c *fiber.Ctx) error {
		return c.JSON(activeBody(pinStore))
	})

	v1.Put("/active", func(c *fiber.Ctx) error {
		loc, err := bindLocation(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		pinStore.SetActive(loc)
		return c.JSON(activeBody(pinStore))
	})

	v1.Get("/history", func(c *fiber.Ctx) error {
		var q historyQuery
		if err := q.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		return c.JSON(service.History(c.UserContext(), weather.HistoryRequest{
			StationID:  q.StationID,
			LocationID: q.LocationID,
			Start:      q.Start,
			End:        q.End,
		}))
	})

	v1.Get("/history/day", func(c *fiber.Ctx) error {
		var q dayQuery
		if err := c.QueryParser(&q); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid query parameters")
		}
		if err := validate.Struct(q); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		return c.JSON(service.DaySample(c.UserContext(), q.StationID, q.Date))
	})

	v1.Get("/forecast", func(c *fiber.Ctx) error {
		var q unitsQuery
		if err := q.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		return c.JSON(service.Forecast(c.UserContext(), q.Days, q.unit))
	})

	v1.Get("/trends", func(c *fiber.Ctx) error {
		var q unitsQuery
		if err := q.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		return c.JSON(service.Trends(c.UserContext(), weather.TrendRequest{
			Days:         q.Days,
			Units:        q.unit,
			OfficialUnit: q.officialUnit,
		}))
	})

	v1.Get("/alerts", func(c *fiber.Ctx) error {
		// Errors are already recorded on the panel.
		_ = service.RefreshAlerts(c.UserContext())
		return c.JSON(service.Alerts())
	})
}

func pinsBody(s *pins.Store, changed bool) fiber.Map {
	return fiber.Map{
		"changed": changed,
		"pins":    s.Pinned(),
		"active":  s.Active(),
	}
}

func activeBody(s *pins.Store) fiber.Map {
	active := s.Active()
	return fiber.Map{
		"active":   active,
		"pinned":   s.IsPinned(active.ID),
		"fallback": active.ID == s.Fallback().ID,
	}
}

// locationBody is the JSON body for pin and set-active requests.
type locationBody struct {
	ID      string   `json:"id" validate:"required"`
	Name    string   `json:"name" validate:"required"`
	State   string   `json:"state"`
	Country string   `json:"country"`
	Lat     *float64 `json:"lat" validate:"omitempty,gte=-90,lte=90"`
	Lon     *float64 `json:"lon" validate:"omitempty,gte=-180,lte=180"`
}

func bindLocation(c *fiber.Ctx) (weather.Location, error) {
	var b locationBody
	if err := c.BodyParser(&b); err != nil {
		return weather.Location{}, errors.New("body must be a JSON location")
	}
	b.ID = strings.TrimSpace(b.ID)
	b.Name = strings.TrimSpace(b.Name)
	if err := validate.Struct(b); err != nil {
		return weather.Location{}, err
	}
	return weather.Location{
		ID:      b.ID,
		Name:    b.Name,
		State:   b.State,
		Country: b.Country,
		Lat:     b.Lat,
		Lon:     b.Lon,
	}, nil
}

// coordQuery holds a required coordinate pair.
type coordQuery struct {
	Lat *float64 `query:"lat" validate:"required,gte=-90,lte=90"`
	Lon *float64 `query:"lon" validate:"required,gte=-180,lte=180"`
}

func (q *coordQuery) bind(c *fiber.Ctx) error {
	if err := c.QueryParser(q); err != nil {
		return errors.New("lat and lon must be numbers")
	}
	return validate.Struct(q)
}

// historyQuery holds query parameters for the history endpoint.
type historyQuery struct {
	StationID  string `query:"stationid"`
	LocationID string `query:"locationid"`
	Start      string `query:"start" validate:"required,datetime=2006-01-02"`
	End        string `query:"end" validate:"required,datetime=2006-01-02"`
}

func (h *historyQuery) bind(c *fiber.Ctx) error {
	if err := c.QueryParser(h); err != nil {
		return errors.New("invalid query parameters")
	}
	if err := validate.Struct(h); err != nil {
		return err
	}
	// Both dates are valid ISO dates here, so string order is date order.
	if h.End < h.Start {
		return errors.New("end must not be before start")
	}
	return nil
}

// dayQuery holds query parameters for the single-day sample.
type dayQuery struct {
	StationID string `query:"stationid"`
	Date      string `query:"date" validate:"required,datetime=2006-01-02"`
}

// unitsQuery holds query parameters shared by the forecast and trend endpoints.
type unitsQuery struct {
	Days          int    `query:"days" validate:"omitempty,gte=1,lte=16"`
	Units         string `query:"units" validate:"omitempty,oneof=metric imperial C F c f"`
	OfficialUnits string `query:"official_units" validate:"omitempty,oneof=metric imperial C F c f"`

	unit         weather.Unit `query:"-"`
	officialUnit weather.Unit `query:"-"`
}

func (q *unitsQuery) bind(c *fiber.Ctx) error {
	if err := c.QueryParser(q); err != nil {
		return errors.New("days must be a number")
	}
	if c.Query("days") != "" && q.Days == 0 {
		return errors.New("days must be between 1 and 16")
	}
	if err := validate.Struct(q); err != nil {
		return err
	}
	if q.Units != "" {
		q.unit, _ = weather.ParseUnit(q.Units)
	}
	if q.OfficialUnits != "" {
		q.officialUnit, _ = weather.ParseUnit(q.OfficialUnits)
	}
	return nil
}

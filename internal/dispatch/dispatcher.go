package dispatch

import (
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// timestampLayout matches the ISO-8601 form browsers produce.
const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

const msgInvalidTemperature = "Invalid temperature parameter"

// Dispatch routes req through the declared server configuration against db.
// It is DispatchAt with the current time.
func Dispatch(req Request, cfg ServerConfig, db Database) Result {
	return DispatchAt(req, cfg, db, time.Now())
}

// DispatchAt routes req through cfg against db, stamping any new rows with now.
//
// db is never modified; writes return a fresh snapshot in
// Result.UpdatedDatabase.
func DispatchAt(req Request, cfg ServerConfig, db Database, now time.Time) Result {
	path, rawQuery, _ := strings.Cut(req.Path, "?")

	route, ok := match(cfg.Routes, req.Method, path)
	if !ok {
		return Result{Response: Response{
			Status: http.StatusNotFound,
			Body:   map[string]any{"error": "Not Found"},
		}}
	}

	switch route.Handler {
	case HandlerUpload:
		return upload(req, rawQuery, db, now)
	case HandlerQuery:
		return query(db)
	default:
		return Result{Response: Response{
			Status: http.StatusOK,
			Body:   map[string]any{"message": "OK"},
		}}
	}
}

// match finds the route for method and path. Declared paths may themselves
// carry a query string, which is ignored.
func match(routes []Route, method, path string) (Route, bool) {
	for _, r := range routes {
		declared, _, _ := strings.Cut(r.Path, "?")
		if declared == path && strings.EqualFold(r.Method, method) {
			return r, true
		}
	}
	return Route{}, false
}

func upload(req Request, rawQuery string, db Database, now time.Time) Result {
	params, err := url.ParseQuery(rawQuery)
	if err != nil {
		return badTemperature()
	}

	raw := params.Get("temperature")
	if raw == "" {
		raw = bodyString(req.Body, "temperature")
	}
	temp, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(temp) || math.IsInf(temp, 0) {
		return badTemperature()
	}

	sensorID := 1
	if s := params.Get("sensorId"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			sensorID = n
		}
	}

	next := db.Clone()
	if next.Records == nil {
		next.Records = make(map[string][]Row)
	}
	rows := next.Records[TableSensorLog]
	id := nextID(rows)
	rows = append(rows, Row{
		"id":        id,
		"sensorId":  sensorID,
		"value":     temp,
		"timestamp": now.UTC().Format(timestampLayout),
	})
	if len(rows) > MaxLogRows {
		rows = append([]Row(nil), rows[len(rows)-MaxLogRows:]...)
	}
	next.Records[TableSensorLog] = rows

	return Result{
		Response: Response{
			Status: http.StatusOK,
			Body: map[string]any{
				"status":  "success",
				"id":      id,
				"message": "temperature " + strconv.FormatFloat(temp, 'f', -1, 64) + "°C recorded",
			},
		},
		UpdatedDatabase: &next,
	}
}

func query(db Database) Result {
	rows := db.Records[TableSensorLog]
	start := max(len(rows)-QueryLimit, 0)

	out := make([]Row, 0, len(rows)-start)
	for i := len(rows) - 1; i >= start; i-- {
		out = append(out, rows[i].clone())
	}
	return Result{Response: Response{Status: http.StatusOK, Body: out}}
}

func badTemperature() Result {
	return Result{Response: Response{
		Status: http.StatusBadRequest,
		Body:   map[string]any{"error": msgInvalidTemperature},
	}}
}

// nextID returns one past the largest id in rows, so ids stay unique after
// eviction.
func nextID(rows []Row) int {
	highest := 0
	for _, r := range rows {
		if id, ok := r.ID(); ok && id > highest {
			highest = id
		}
	}
	return highest + 1
}

func bodyString(body map[string]any, key string) string {
	switch v := body[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	default:
		return ""
	}
}

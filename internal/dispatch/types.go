package dispatch

import (
	"fmt"
	"net/http"
	"strconv"
)

// Handler names understood by the dispatcher.
const (
	HandlerUpload = "upload_data"
	HandlerQuery  = "query_data"
)

// Table names in the default database.
const (
	TableSensorList = "sensorlist"
	TableSensorLog  = "sensorlog"
)

const (
	// MaxLogRows bounds the sensorlog table; older rows are evicted first.
	MaxLogRows = 100

	// QueryLimit is the number of rows returned by query_data.
	QueryLimit = 10
)

// Request is a simulated HTTP request.
type Request struct {
	Method string         `json:"method"`
	Path   string         `json:"path"`
	Body   map[string]any `json:"body,omitempty"`
}

// Response is a simulated HTTP response.
type Response struct {
	Status int `json:"status"`
	Body   any `json:"body"`
}

// Result is the outcome of a dispatch.
type Result struct {
	Response Response `json:"response"`

	// UpdatedDatabase is nil unless the handler wrote to the database.
	UpdatedDatabase *Database `json:"updatedDatabase,omitempty"`
}

// OK reports whether the response status is 2xx.
func (r Result) OK() bool {
	return r.Response.Status >= 200 && r.Response.Status < 300
}

// Err maps a non-2xx response to ErrRouteNotFound, ErrBadRequest or
// ErrServerError. It returns nil for 2xx.
func (r Result) Err() error {
	switch s := r.Response.Status; {
	case r.OK():
		return nil
	case s == http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrRouteNotFound, errorMessage(r.Response.Body))
	case s >= 400 && s < 500:
		return fmt.Errorf("%w: %s", ErrBadRequest, errorMessage(r.Response.Body))
	default:
		return fmt.Errorf("%w: status %d", ErrServerError, s)
	}
}

func errorMessage(body any) string {
	if m, ok := body.(map[string]any); ok {
		if s, ok := m["error"].(string); ok {
			return s
		}
	}
	return "unknown error"
}

// Route maps a path and method to a handler name.
type Route struct {
	Path    string `json:"path" yaml:"path"`
	Method  string `json:"method" yaml:"method"`
	Handler string `json:"handler" yaml:"handler"`
}

// ServerConfig is the declared configuration of the mock server.
type ServerConfig struct {
	Host    string  `json:"host" yaml:"host"`
	Port    int     `json:"port" yaml:"port"`
	Running bool    `json:"running" yaml:"running"`
	Routes  []Route `json:"routes" yaml:"routes"`
}

// DefaultServerConfig returns the stock Flask-style server with the upload
// and query routes declared.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Host: "192.168.1.100",
		Port: 5000,
		Routes: []Route{
			{Path: "/upload", Method: http.MethodGet, Handler: HandlerUpload},
			{Path: "/query", Method: http.MethodGet, Handler: HandlerQuery},
		},
	}
}

// URL returns the absolute URL of path on this server.
func (c ServerConfig) URL(path string) string {
	return "http://" + c.Host + ":" + strconv.Itoa(c.Port) + path
}

// Clone returns a copy that shares no slices with c.
func (c ServerConfig) Clone() ServerConfig {
	cpy := c
	cpy.Routes = append([]Route(nil), c.Routes...)
	return cpy
}

// Column is one column of a table schema.
type Column struct {
	Name string `json:"name" yaml:"name"`
	Type string `json:"type" yaml:"type"`
}

// TableSchema describes a table.
type TableSchema struct {
	Name    string   `json:"name" yaml:"name"`
	Columns []Column `json:"columns" yaml:"columns"`
}

// Row is one record, keyed by column name.
type Row map[string]any

// Database is an in-memory snapshot. It is a value: every write produces a
// new snapshot via Clone.
type Database struct {
	Tables  []TableSchema    `json:"tables" yaml:"tables"`
	Records map[string][]Row `json:"records" yaml:"records"`
}

// DefaultDatabase returns the classroom database: a sensorlist table with one
// sensor and an empty sensorlog table.
func DefaultDatabase() Database {
	return Database{
		Tables: []TableSchema{
			{Name: TableSensorList, Columns: []Column{
				{Name: "id", Type: "INTEGER PRIMARY KEY"},
				{Name: "name", Type: "TEXT"},
				{Name: "type", Type: "TEXT"},
				{Name: "location", Type: "TEXT"},
			}},
			{Name: TableSensorLog, Columns: []Column{
				{Name: "id", Type: "INTEGER PRIMARY KEY"},
				{Name: "sensorId", Type: "INTEGER"},
				{Name: "value", Type: "REAL"},
				{Name: "timestamp", Type: "TEXT"},
			}},
		},
		Records: map[string][]Row{
			TableSensorList: {
				{"id": 1, "name": "Temperature Sensor", "type": "temperature", "location": "Classroom"},
			},
			TableSensorLog: {},
		},
	}
}

// Clone returns a deep copy of the snapshot.
func (d Database) Clone() Database {
	out := Database{
		Tables:  make([]TableSchema, len(d.Tables)),
		Records: make(map[string][]Row, len(d.Records)),
	}
	for i, t := range d.Tables {
		out.Tables[i] = TableSchema{Name: t.Name, Columns: append([]Column(nil), t.Columns...)}
	}
	for name, rows := range d.Records {
		cp := make([]Row, len(rows))
		for i, r := range rows {
			cp[i] = r.clone()
		}
		out.Records[name] = cp
	}
	return out
}

// Rows returns the records of a table.
func (d Database) Rows(table string) []Row {
	return d.Records[table]
}

func (r Row) clone() Row {
	cp := make(Row, len(r))
	for k, v := range r {
		cp[k] = v
	}
	return cp
}

// ID returns the row's integer id, accepting the numeric types produced by
// both Go code and JSON decoding.
func (r Row) ID() (int, bool) {
	switch v := r["id"].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

// Package dispatch is the mock HTTP server behind the simulated topology.
//
// Dispatch takes a request, the declared server routes and a database
// snapshot, and returns a response plus, for writes, a new snapshot. It never
// mutates its inputs and never touches a real socket; the caller decides
// whether to commit the returned snapshot.
//
// Two handlers are understood:
//
//   - upload_data: GET /upload?temperature=<float> appends a sensorlog row,
//     keeping only the newest MaxLogRows rows.
//   - query_data: GET /query returns the newest QueryLimit rows, newest first.
//
// A matched route naming any other handler answers 200 {"message":"OK"}.
package dispatch

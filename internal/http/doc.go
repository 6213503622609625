// Package http provides HTTP handlers and middleware for the recurring
// booking API.
//
// The router exposes the following endpoints:
//   - POST /api/schedules/{id}/generate: runs booking generation for one
//     schedule. Body: {"year","month"}. Response: a generation report with
//     the created bookings, conflicting dates, per-date errors and, for
//     skipped runs, the skip reason and validation violations.
//   - POST /api/schedules/generate-all: runs generation for every active
//     schedule at the given month. Body: {"year","month"}. Response:
//     {"reports":[...]} in schedule listing order.
//   - POST /api/generation/due: runs generation for every active schedule
//     at its own due month, derived from the schedule's watermark.
//   - GET /api/schedules, GET /api/schedules/{id}: read-only schedule
//     listings annotated with the month a due run would target next.
//   - GET /healthz: storage liveness.
//
// Validation violations found during a generation run are reported inside
// the report body with a 200 status; only malformed input and unknown
// schedules map to 4xx responses.
package http

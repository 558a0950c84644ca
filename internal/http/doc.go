// Package http provides HTTP handlers and middleware for the meetsync API.
//
// The router exposes the following endpoints, all JSON unless noted:
//   - POST /users: provisions an account. Body: {"email","firstName","lastName"}.
//   - POST /tokens: issues a bearer token for an email. Body: {"email"}.
//     Response: {"token"} where token is the opaque "id.secret" value expected
//     in the Authorization header of every other endpoint.
//   - GET /profile, PUT /profile: the caller's name and weekly availability
//     grid, exchanged as the `profileDTO` payload defined in profile_handler.go.
//   - POST /meetings, GET /meetings/{id}, PUT /meetings/{id},
//     DELETE /meetings/{id}: meeting management exchanging the `meetingDTO`
//     payload defined in meeting_handler.go. Mutations are owner-only.
//   - POST /meetings/join: enrolls the caller by join code. Body: {"code"}.
//   - POST /meetings/{id}/guests: records a guest participant with a captured
//     availability grid. Owner only.
//   - GET /meetings/{id}/recommendations: feasible start windows for the
//     meeting computed from current participant availability.
//   - POST /meetings/{id}/slot: confirms a recommended window and subtracts
//     the occupied hours from registered participant grids.
//   - GET /meetings/{id}/calendar.ics: the confirmed slot as an iCalendar
//     document (text/calendar).
//   - GET /feed: a Server-Sent Events stream of the caller's merged meeting
//     feed (owned and participating), re-sent in full after every relevant
//     change.
//
// Request/response DTOs live alongside their respective handlers so tests and
// documentation share the same ground truth.
package http

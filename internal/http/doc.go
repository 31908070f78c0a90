// Package http provides the JSON gateway for the newsroom workflow.
//
// Routes mount under /admin/api by default:
//   - Articles: POST /articles, GET /articles, GET /articles/{id}, DELETE /articles/{id}
//   - Workflow: GET /articles/{id}/workflow, PATCH /articles/{id}/workflow/stage,
//     POST /articles/{id}/workflow/lock
//   - History: GET /articles/{id}/workflow/events?limit=
//   - Discovery: GET /articles/{id}/workflow/actions?view=full|simple
//   - Comments: GET and POST /articles/{id}/workflow/comments (POST honours Idempotency-Key)
//
// The caller is read from the request context (see internal/actors). Requests
// without an actor reach the engine anyway so that the rejection is audited.
package http

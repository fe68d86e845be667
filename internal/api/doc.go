// Package api provides the HTTP REST API for jobtrack.
//
// Every request passes through the authentication gate, which attaches a
// SecurityContext when a valid bearer token is presented and otherwise lets
// the request continue anonymously. Protected routes then require a context
// (401 otherwise) and the admin routes require the admin role (403). Record
// ownership is enforced below this layer by the jobs service.
//
// Routes (all under /api/v1):
//
//	GET    /health                 public
//	POST   /auth/register          public
//	POST   /auth/login             public
//	GET    /auth/me                authenticated
//	GET    /jobs                   authenticated, owner-scoped
//	POST   /jobs                   authenticated
//	GET    /jobs/stats             authenticated, owner-scoped
//	GET    /jobs/{id}              owner or admin
//	PUT    /jobs/{id}              owner or admin
//	PATCH  /jobs/{id}/status       owner or admin
//	DELETE /jobs/{id}              owner or admin
//	GET    /audit                  admin
//	GET    /metrics                admin
//	GET    /users                  admin
//	GET    /users/{id}             admin
//
// Errors use a single envelope: {"status": 404, "code": "not_found", "message": "..."}.
//
// The server follows the same lifecycle pattern as other infrastructure components:
//
//	server, err := api.New(deps)
//	server.Start(ctx)
//	defer server.Close()
package api

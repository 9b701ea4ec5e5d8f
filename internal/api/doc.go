// Package api provides the HTTP REST API for wxbridge.
//
// It exposes the stored sensor readings, system events, and statistics
// snapshots for dashboards and scripts, plus insert endpoints used for
// backfill and manual testing.
//
// The server follows the same lifecycle pattern as the other
// infrastructure components:
//
//	server, err := api.New(deps)
//	server.Start(ctx)
//	defer server.Close()
package api

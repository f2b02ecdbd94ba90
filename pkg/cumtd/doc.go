// Package cumtd is a client for the Champaign-Urbana Mass Transit District
// developer API (v2.2, JSON).
//
// Each resource has a closed set of query variants. A query is turned into
// one HTTP GET against https://developer.cumtd.com/api/v2.2/json/<method>,
// and the response is normalized into flat, typed results:
//
//	stops, err := cumtd.QueryStops(ctx, key, cumtd.StopsByID{IDs: []string{"IT", "PLAZA"}})
//
// A Client can be reused across goroutines:
//
//	c, err := cumtd.NewClient(cumtd.ClientConfig{APIKey: key})
//	routes, err := c.QueryRoutes(ctx, cumtd.RoutesByStop{StopID: "IU"})
//
// Every failure is an *Error; use errors.Is with ErrClient, ErrRequest,
// ErrDecode or ErrFormat to branch on its Kind.
package cumtd

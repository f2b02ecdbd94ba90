package cumtd

// RoutesQuery selects how routes are requested.
// It is implemented only by RoutesByID, AllRoutes and RoutesByStop.
type RoutesQuery interface {
	routesRequest(key string) Request
}

// RoutesByID requests the routes with the given identifiers.
type RoutesByID struct {
	IDs []string
}

// AllRoutes requests every route.
type AllRoutes struct{}

// RoutesByStop requests the routes serving a stop.
type RoutesByStop struct {
	StopID string
}

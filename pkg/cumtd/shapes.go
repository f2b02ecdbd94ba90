package cumtd

// ShapesQuery selects how a shape is requested.
// It is implemented only by FullShape and ShapeBetweenStops.
type ShapesQuery interface {
	shapesRequest(key string) Request
}

// FullShape requests every point of a shape.
type FullShape struct {
	ShapeID string
}

// ShapeBetweenStops requests the part of a shape between two stops.
type ShapeBetweenStops struct {
	Spec ShapeSpecifier
}

// ShapeSpecifier names a sub-shape: the points of ShapeID from
// BeginStopID to EndStopID.
type ShapeSpecifier struct {
	BeginStopID string
	EndStopID   string
	ShapeID     string
}

// NewShapeSpecifier creates a ShapeSpecifier.
func NewShapeSpecifier(beginStopID, endStopID, shapeID string) ShapeSpecifier {
	return ShapeSpecifier{
		BeginStopID: beginStopID,
		EndStopID:   endStopID,
		ShapeID:     shapeID,
	}
}

package ports

import (
	"context"

	"github.com/Kkzzkk0611/WSsupportApp-202601/internal/core/domain"
)

// CameraHost is the scene view that owns camera state.
//
// AnimateTo blocks until the transition settles. A transition superseded by a
// newer AnimateTo call returns an error wrapping domain.ErrTransitionAborted.
// Change notifications are delivered by the host to the controller directly
// (Controller.CameraChanged / CenterChanged), not through this interface.
type CameraHost interface {
	Camera() domain.Camera
	Center() domain.MapPoint
	SpatialReference() domain.SpatialReference
	AnimateTo(ctx context.Context, target domain.CameraTarget, opts domain.AnimateOptions) error
}

// GeometryEngine performs spatial predicates. Both arguments of Contains must
// share a spatial reference.
type GeometryEngine interface {
	Contains(area *domain.AllowedArea, p domain.MapPoint) (bool, error)
	Project(p domain.GeoPoint, sr domain.SpatialReference) (domain.MapPoint, error)
	Unproject(p domain.MapPoint) (domain.GeoPoint, error)
}

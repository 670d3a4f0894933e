package camera

import (
	"log/slog"

	"github.com/Kkzzkk0611/WSsupportApp-202601/internal/core/domain"
	"github.com/Kkzzkk0611/WSsupportApp-202601/internal/core/ports"
)

// AreaBoundsGuard returns the camera to the home view when its center leaves
// the allowed area.
type AreaBoundsGuard struct {
	cfg   Config
	area  *domain.AllowedArea
	geo   ports.GeometryEngine
	guard *ReentrancyGuard
	coord *AnimationCoordinator
	obs   Observer
	log   *slog.Logger

	lastValid *domain.Camera
}

func newBoundsGuard(cfg Config, area *domain.AllowedArea, geo ports.GeometryEngine, guard *ReentrancyGuard, coord *AnimationCoordinator, obs Observer, log *slog.Logger) *AreaBoundsGuard {
	return &AreaBoundsGuard{
		cfg:   cfg,
		area:  area,
		geo:   geo,
		guard: guard,
		coord: coord,
		obs:   obs,
		log:   log,
	}
}

// LastValid is the most recent camera whose center was inside the area.
func (b *AreaBoundsGuard) LastValid() *domain.Camera {
	if b.lastValid == nil {
		return nil
	}
	c := *b.lastValid
	return &c
}

// OnCenterChange handles one center notification. cam is the camera at the
// time of the notification. It reports whether a return was issued.
func (b *AreaBoundsGuard) OnCenterChange(center domain.MapPoint, cam domain.Camera) bool {
	if b.guard.Locked() {
		b.obs.NotificationDropped(WatcherCenter)
		return false
	}

	inside, err := b.geo.Contains(b.area, center)
	if err != nil {
		b.log.Error("bounds check failed", "error", err,
			"point_wkid", center.SpatialReference.WKID, "area_wkid", b.area.SpatialReference.WKID)
		return false
	}
	if inside {
		b.lastValid = &cam
		return false
	}

	b.log.Info("center left allowed area, returning home", "x", center.X, "y", center.Y)
	b.coord.Run(domain.TargetFromCamera(b.cfg.InitialCamera),
		domain.Animated(b.cfg.ReturnTransition, domain.EaseOutExpo), b.cfg.ReturnGrace, CorrectionBounds)
	return true
}

// Package velocity derives instantaneous speed from consecutive trajectory
// points of the same marker.
package velocity

import (
	"math"

	"github.com/robotat/mocapd/internal/domain/model"
)

const msPerSecond = 1000.0

// Estimate computes the speed in m/s for a new sample given the marker's
// current trajectory, before the new point is appended.
//
// The time base is the local receive timestamp, not the emitter's reported
// time: receive time is the only locally consistent monotonic clock. An empty
// trajectory and a zero elapsed time both yield 0.
func Estimate(trajectory []model.TrajectoryPoint, s model.Sample) float64 {
	if len(trajectory) == 0 {
		return 0
	}
	prev := trajectory[len(trajectory)-1]

	elapsed := float64(s.ReceivedAt-prev.Timestamp) / msPerSecond
	if elapsed <= 0 {
		return 0
	}

	dx := s.Position.X - prev.X
	dy := s.Position.Y - prev.Y
	dz := s.Position.Z - prev.Z
	return math.Sqrt(dx*dx+dy*dy+dz*dz) / elapsed
}

// Point projects a sample into its trajectory point, computing the velocity
// against the trajectory as it stands.
func Point(trajectory []model.TrajectoryPoint, s model.Sample) model.TrajectoryPoint {
	return model.TrajectoryPoint{
		X:         s.Position.X,
		Y:         s.Position.Y,
		Z:         s.Position.Z,
		Timestamp: s.ReceivedAt,
		Velocity:  Estimate(trajectory, s),
	}
}

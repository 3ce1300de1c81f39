package particle

// StopCode is the integer termination-reason taxonomy of §7, attached to
// every terminated particle. Negative codes are error-like terminations,
// non-negative codes are physical terminations.
type StopCode int

const (
	StopUncategorized       StopCode = 0
	StopAbsorbedBulk        StopCode = 1
	StopAbsorbedSurface     StopCode = 2
	StopOutOfTime           StopCode = -1
	StopLeftBoundingBox     StopCode = -2
	StopStepsizeFloor       StopCode = -3
	StopDecayed             StopCode = -4
	StopSourceFailure       StopCode = -5
	StopPredicateFailure    StopCode = -6
	StopOtherGeometryError  StopCode = -7
)

func (c StopCode) String() string {
	switch c {
	case StopUncategorized:
		return "uncategorized"
	case StopAbsorbedBulk:
		return "absorbed_bulk"
	case StopAbsorbedSurface:
		return "absorbed_surface"
	case StopOutOfTime:
		return "out_of_time"
	case StopLeftBoundingBox:
		return "left_bounding_box"
	case StopStepsizeFloor:
		return "stepsize_floor"
	case StopDecayed:
		return "decayed"
	case StopSourceFailure:
		return "source_failure"
	case StopPredicateFailure:
		return "predicate_failure"
	case StopOtherGeometryError:
		return "other_geometry_error"
	default:
		return "unknown"
	}
}

package domain

import "time"

// Rating bounds for a single review.
const (
	MinRating = 0.0
	MaxRating = 5.0
)

// Review is an immutable rating of either a pickup point or a worker.
// Exactly one of PointID and WorkerID is set.
type Review struct {
	ID        int64
	AuthorID  int64
	PointID   *int64
	WorkerID  *int64
	Rating    float64
	Comment   string
	CreatedAt time.Time
}

// ValidRating reports whether r lies within the declared bounds.
func ValidRating(r float64) bool {
	return r >= MinRating && r <= MaxRating
}

// MeanRating is the aggregate written back to a review target: the
// arithmetic mean of all its reviews, 0.0 when there are none.
func MeanRating(ratings []float64) float64 {
	if len(ratings) == 0 {
		return 0.0
	}
	var sum float64
	for _, r := range ratings {
		sum += r
	}
	return sum / float64(len(ratings))
}

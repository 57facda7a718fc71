package domain

// Point is a pickup point owned by exactly one user with the owner role.
// Rating is derived from reviews and never written directly.
type Point struct {
	ID      int64
	Name    string
	Address string
	OwnerID int64
	Rating  float64
}

// Package score tracks elapsed survival time and the running score. The
// director reads both; it never computes them.
package score

// Tracker accumulates survival time and kill points for one run.
type Tracker struct {
	elapsed float64
	score   int
	kills   int
}

// NewTracker returns a zeroed tracker.
func NewTracker() *Tracker {
	return &Tracker{}
}

// Advance adds one tick's duration to the survival clock.
func (t *Tracker) Advance(dt float64) {
	t.elapsed += dt
}

// AddKill credits the points for one defeated zombie.
func (t *Tracker) AddKill(points int) {
	t.score += points
	t.kills++
}

// Elapsed returns survival time in seconds.
func (t *Tracker) Elapsed() float64 { return t.elapsed }

// Score returns the running score.
func (t *Tracker) Score() int { return t.score }

// Kills returns how many zombies have been defeated.
func (t *Tracker) Kills() int { return t.kills }

// Reset clears the run back to zero.
func (t *Tracker) Reset() {
	t.elapsed = 0
	t.score = 0
	t.kills = 0
}

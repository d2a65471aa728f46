package project

// Requirement is an unlock condition evaluated against the player's levels.
type Requirement struct {
	Facility  string `json:"facility"`
	Level     int    `json:"level"`
	Fulfilled bool   `json:"fulfilled"`
}

// Quote is the priced, timed offer for starting a project. Its values are
// snapshotted into the record at enqueue.
type Quote struct {
	Facility      string        `json:"facility"`
	Family        Family        `json:"family"`
	Track         Track         `json:"track"`
	Price         float64       `json:"price"`
	DurationTicks int64         `json:"duration_ticks"`
	Power         float64       `json:"power"`
	Pollution     float64       `json:"pollution"`
	Multipliers   Multipliers   `json:"multipliers"`
	Requirements  []Requirement `json:"requirements,omitempty"`
	Locked        bool          `json:"locked"`
}

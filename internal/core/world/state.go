package world

// RangeState is the last reading of one range sensor.
type RangeState struct {
	Reading  float64 `json:"reading"`
	Distance float64 `json:"distance"`
	Max      float64 `json:"max"`
}

// CameraState describes one mounted camera.
type CameraState struct {
	Type   string `json:"type"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// RobotState is a serializable snapshot of a robot.
type RobotState struct {
	Index        int           `json:"index"`
	Name         string        `json:"name"`
	X            float64       `json:"x"`
	Y            float64       `json:"y"`
	Direction    float64       `json:"direction"`
	Stalled      bool          `json:"stalled"`
	RangeSensors []RangeState  `json:"rangeSensors"`
	Cameras      []CameraState `json:"cameras"`
}

// State is a serializable snapshot of the world.
type State struct {
	Time   float64      `json:"time"`
	Ticks  uint64       `json:"ticks"`
	Width  float64      `json:"width"`
	Height float64      `json:"height"`
	Robots []RobotState `json:"robots"`
}

func (r *Robot) State() RobotState {
	st := RobotState{
		Index:        r.index,
		Name:         r.name,
		X:            r.x,
		Y:            r.y,
		Direction:    r.direction,
		Stalled:      r.stalled,
		RangeSensors: make([]RangeState, 0, len(r.rangeSensors)),
		Cameras:      make([]CameraState, 0, len(r.cameras)),
	}
	for _, s := range r.rangeSensors {
		st.RangeSensors = append(st.RangeSensors, RangeState{Reading: s.Reading(), Distance: s.Distance(), Max: s.Max()})
	}
	for _, c := range r.cameras {
		w, h := c.Shape()
		st.Cameras = append(st.Cameras, CameraState{Type: c.Type(), Width: w, Height: h})
	}
	return st
}

func (w *World) State() State {
	st := State{
		Time:   w.time,
		Ticks:  w.ticks,
		Width:  w.width,
		Height: w.height,
		Robots: make([]RobotState, 0, len(w.robots)),
	}
	for _, r := range w.robots {
		st.Robots = append(st.Robots, r.State())
	}
	return st
}

package core

// WheelNotch is the wheel delta reported for one scroll step.
const WheelNotch = 120

// InputSource is what InputState polls; *Window implements it.
type InputSource interface {
	GetCursorPos() (float64, float64)
	IsKeyPressed(key int) bool
	SetScrollCallback(cb ScrollCallback)
}

// InputState snapshots mouse and keyboard state once per frame.
type InputState struct {
	source InputSource

	mouseDX, mouseDY       float32
	lastMouseX, lastMouseY float64
	wheel                  float32
	scrollAccum            float64

	watched  []int
	keys     [keyLimit]bool
	keysPrev [keyLimit]bool

	firstFrame bool
}

// NewInputState polls the given keys every Update. Keys outside the
// watched set always read as up.
func NewInputState(src InputSource, keys ...int) *InputState {
	in := &InputState{
		source:     src,
		firstFrame: true,
	}
	for _, k := range keys {
		if k >= 0 && k < keyLimit {
			in.watched = append(in.watched, k)
		}
	}
	src.SetScrollCallback(func(xoff, yoff float64) {
		in.scrollAccum += yoff
	})
	return in
}

// Update computes deltas since the previous call. Call once per frame
// after polling events.
func (in *InputState) Update() {
	x, y := in.source.GetCursorPos()
	if in.firstFrame {
		in.lastMouseX = x
		in.lastMouseY = y
		in.firstFrame = false
	}
	in.mouseDX = float32(x - in.lastMouseX)
	// Window Y grows downward.
	in.mouseDY = float32(in.lastMouseY - y)
	in.lastMouseX = x
	in.lastMouseY = y

	in.wheel = float32(in.scrollAccum * WheelNotch)
	in.scrollAccum = 0

	in.keysPrev = in.keys
	for _, k := range in.watched {
		in.keys[k] = in.source.IsKeyPressed(k)
	}
}

func (in *InputState) WheelDelta() float32 { return in.wheel }
func (in *InputState) MouseDX() float32    { return in.mouseDX }
func (in *InputState) MouseDY() float32    { return in.mouseDY }

func (in *InputState) IsKeyDown(key int) bool {
	if key < 0 || key >= keyLimit {
		return false
	}
	return in.keys[key]
}

// IsKeyPressed reports a key that went down this frame.
func (in *InputState) IsKeyPressed(key int) bool {
	if key < 0 || key >= keyLimit {
		return false
	}
	return in.keys[key] && !in.keysPrev[key]
}

package device

// TunerType identifies the tuner chip behind the RTL2832U.
type TunerType uint32

// Known tuner types.
const (
	TunerUnknown TunerType = iota
	TunerE4000
	TunerFC0012
	TunerFC0013
	TunerFC2580
	TunerR820T
	TunerR828D
)

var tunerNames = map[TunerType]string{
	TunerUnknown: "Unknown",
	TunerE4000:   "E4000",
	TunerFC0012:  "FC0012",
	TunerFC0013:  "FC0013",
	TunerFC2580:  "FC2580",
	TunerR820T:   "R820T",
	TunerR828D:   "R828D",
}

// String returns tuner chip name.
func (t TunerType) String() string {
	if name, ok := tunerNames[t]; ok {
		return name
	}
	return "Other"
}

// NearestGain returns the supported gain closest to the requested value.
// Both values are in tenths of dB. Returns 0 if no gains are provided.
func NearestGain(gains []int, want int) int {
	if len(gains) == 0 {
		return 0
	}
	nearest := gains[0]
	for _, g := range gains[1:] {
		if abs(g-want) < abs(nearest-want) {
			nearest = g
		}
	}
	return nearest
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

package studio

import (
	"fmt"
	"math"
)

type spurGearArgs struct {
	Teeth            int     `json:"teeth,omitempty"`
	ModuleMM         float64 `json:"module_mm,omitempty"`
	PressureAngleDeg float64 `json:"pressure_angle_deg,omitempty"`
	ThicknessMM      float64 `json:"thickness_mm,omitempty"`
	BoreMM           float64 `json:"bore_mm,omitempty"`
	BacklashMM       float64 `json:"backlash_mm,omitempty"`
}

type gearResult struct {
	Gear        string  `json:"gear"`
	Teeth       int     `json:"teeth"`
	ModuleMM    float64 `json:"module_mm"`
	BodiesCount int     `json:"bodiesCount"`
}

// involutePoints samples the involute of a base circle from baseR out to
// rEnd, rotated by rotation radians. Returns nil when rEnd is inside the
// base circle.
func involutePoints(baseR, rEnd, rotation float64, n int) [][2]float64 {
	if rEnd <= baseR {
		return nil
	}
	tEnd := math.Sqrt((rEnd/baseR)*(rEnd/baseR) - 1)
	pts := make([][2]float64, 0, n+1)
	for i := 0; i <= n; i++ {
		t := tEnd * float64(i) / float64(n)
		r := baseR * math.Sqrt(1+t*t)
		theta := (t - math.Atan(t)) + rotation
		pts = append(pts, [2]float64{r * math.Cos(theta), r * math.Sin(theta)})
	}
	return pts
}

// CreateSpurGearInvolute builds an approximate involute spur gear: one tooth
// profile from two involute flanks and tip/root arcs, extruded, patterned
// around Z, combined, then bored.
func (h *Host) CreateSpurGearInvolute(args spurGearArgs) (gearResult, error) {
	doc, err := h.ActiveDocument()
	if err != nil {
		return gearResult{}, err
	}

	z := args.Teeth
	if z == 0 {
		z = 24
	}
	m := args.ModuleMM
	if m == 0 {
		m = 2
	}
	paDeg := args.PressureAngleDeg
	if paDeg == 0 {
		paDeg = 20
	}
	thickness := args.ThicknessMM
	if thickness == 0 {
		thickness = 10
	}

	if z < 6 {
		return gearResult{}, fmt.Errorf("teeth must be >= 6")
	}
	if m <= 0 {
		return gearResult{}, fmt.Errorf("module_mm must be > 0")
	}

	pa := paDeg * math.Pi / 180
	pitchR := m * float64(z) / 2
	baseR := pitchR * math.Cos(pa)
	outerR := pitchR + m
	rootR := math.Max(0.1, pitchR-1.25*m)

	circularPitch := math.Pi * m
	toothThick := circularPitch/2 - args.BacklashMM/2
	halfThickAngle := (toothThick / 2) / pitchR

	tp := math.Sqrt((pitchR/baseR)*(pitchR/baseR) - 1)
	thetaP := tp - math.Atan(tp)
	rot := halfThickAngle - thetaP

	// One tooth: two mirrored involute splines closed by tip and root arcs.
	sk := doc.addSketch("XY", 0)
	flank := involutePoints(mmToInternal(baseR), mmToInternal(outerR), rot, 20)
	if len(flank) < 2 {
		return gearResult{}, fmt.Errorf("Failed involute build.")
	}
	sk.Splines += 2
	sk.Arcs += 2
	sk.Profiles++
	for _, p := range flank {
		sk.growExtents(p[0], -math.Abs(p[1]), p[0], math.Abs(p[1]))
	}
	sk.growExtents(mmToInternal(rootR), 0, mmToInternal(outerR), 0)

	tooth := doc.extrudeSketch(sk, mmToInternal(thickness), "newBody")

	doc.patternBody(tooth, z, 360)
	featName := doc.nextName("CircularPattern")
	doc.recordStep(featName, "CircularPatternFeature")

	if _, err := h.CombineAllBodies(combineArgs{Operation: "join"}); err != nil {
		return gearResult{}, err
	}

	// The pattern of rotated teeth spans the full outer circle.
	gear := doc.Bodies[0]
	r := mmToInternal(outerR)
	gear.BBox = bboxOf(-r, -r, 0, r, r, mmToInternal(thickness))

	if args.BoreMM > 0 {
		boreSk := doc.addSketch("XY", 0)
		boreSk.addCircle(0, 0, mmToInternal(args.BoreMM/2))
		doc.extrudeSketch(boreSk, mmToInternal(1000), "cut")
		gear.Holes = append(gear.Holes, Hole{
			Diameter: mmToInternal(args.BoreMM),
			Depth:    mmToInternal(thickness),
		})
	}

	return gearResult{
		Gear:        "spur_involute_approx",
		Teeth:       z,
		ModuleMM:    m,
		BodiesCount: len(doc.Bodies),
	}, nil
}

type rackGearArgs struct {
	ModuleMM         float64 `json:"module_mm,omitempty"`
	Teeth            int     `json:"teeth,omitempty"`
	ThicknessMM      float64 `json:"thickness_mm,omitempty"`
	PressureAngleDeg float64 `json:"pressure_angle_deg,omitempty"`
}

// CreateRackGear builds a basic rack: a closed sawtooth polyline extruded to
// thickness.
func (h *Host) CreateRackGear(args rackGearArgs) (gearResult, error) {
	doc, err := h.ActiveDocument()
	if err != nil {
		return gearResult{}, err
	}

	m := args.ModuleMM
	if m == 0 {
		m = 2
	}
	teeth := args.Teeth
	if teeth == 0 {
		teeth = 12
	}
	thickness := args.ThicknessMM
	if thickness == 0 {
		thickness = 10
	}
	if teeth < 2 {
		return gearResult{}, fmt.Errorf("rack teeth must be >= 2")
	}

	circularPitch := math.Pi * m
	toothHeight := 2.25 * m
	length := float64(teeth) * circularPitch

	sk := doc.addSketch("XY", 0)
	// Base rectangle edges plus two flanks per tooth.
	sk.Lines += 4 + 2*teeth
	sk.Profiles++
	sk.growExtents(0, 0, mmToInternal(length), mmToInternal(toothHeight))

	doc.extrudeSketch(sk, mmToInternal(thickness), "newBody")

	return gearResult{
		Gear:        "rack_basic",
		Teeth:       teeth,
		ModuleMM:    m,
		BodiesCount: len(doc.Bodies),
	}, nil
}

// CreateHelicalGear is a placeholder for helical gears.
func (h *Host) CreateHelicalGear(struct{}) (gearResult, error) {
	return gearResult{}, fmt.Errorf("Helical gear not implemented yet (needs helix+sweep per tooth).")
}

// CreateInternalGear is a placeholder for internal ring gears.
func (h *Host) CreateInternalGear(struct{}) (gearResult, error) {
	return gearResult{}, fmt.Errorf("Internal gear not implemented yet (needs ring blank + internal tooth cuts).")
}

// CreateBevelGear is a placeholder for bevel gears.
func (h *Host) CreateBevelGear(struct{}) (gearResult, error) {
	return gearResult{}, fmt.Errorf("Bevel gear not implemented yet (needs conical geometry + lofted tooth).")
}

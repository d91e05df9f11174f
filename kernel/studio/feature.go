package studio

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

type extrudeResult struct {
	ExtrudeFeatureName string `json:"extrudeFeatureName"`
	BodiesCount        int    `json:"bodiesCount"`
}

type extrudeLastArgs struct {
	DistanceMM float64 `json:"distance_mm,omitempty"`
	Operation  string  `json:"operation,omitempty"`
}

// extrudeSketch turns a sketch's planar extents into a solid of the given
// height and applies the boolean operation against the existing bodies.
func (d *Document) extrudeSketch(sk *Sketch, dist float64, operation string) *Body {
	box := bboxOf(sk.minX, sk.minY, sk.PlaneZ, sk.maxX, sk.maxY, sk.PlaneZ+dist)
	featName := d.nextName("Extrude")
	d.recordStep(featName, "ExtrudeFeature")

	switch operation {
	case "join":
		if len(d.Bodies) > 0 {
			target := d.Bodies[len(d.Bodies)-1]
			target.BBox = target.BBox.union(box)
			return target
		}
	case "cut":
		if len(d.Bodies) > 0 {
			// Material removal keeps the target's extents.
			return d.Bodies[len(d.Bodies)-1]
		}
	case "intersect":
		if len(d.Bodies) > 0 {
			target := d.Bodies[len(d.Bodies)-1]
			target.BBox = target.BBox.intersect(box)
			return target
		}
	}
	body := &Body{
		Name:    d.nextName("Body"),
		Solid:   true,
		Visible: true,
		BBox:    box,
	}
	d.Bodies = append(d.Bodies, body)
	return body
}

// ExtrudeLastProfile extrudes the first profile of the most recent sketch.
func (h *Host) ExtrudeLastProfile(args extrudeLastArgs) (extrudeResult, error) {
	doc, err := h.ActiveDocument()
	if err != nil {
		return extrudeResult{}, err
	}
	if len(doc.Sketches) < 1 {
		return extrudeResult{}, fmt.Errorf("No sketches found to extrude.")
	}
	sk := doc.Sketches[len(doc.Sketches)-1]
	if sk.Profiles < 1 {
		return extrudeResult{}, fmt.Errorf("Sketch has no profiles to extrude.")
	}
	dist := args.DistanceMM
	if dist == 0 {
		dist = 5
	}
	doc.extrudeSketch(sk, mmToInternal(dist), args.Operation)
	return extrudeResult{
		ExtrudeFeatureName: doc.Timeline[len(doc.Timeline)-1].Name,
		BodiesCount:        len(doc.Bodies),
	}, nil
}

type extrudeProfileArgs struct {
	SketchIndexFromEnd int     `json:"sketch_index_from_end,omitempty"`
	ProfileIndex       int     `json:"profile_index,omitempty"`
	DistanceMM         float64 `json:"distance_mm,omitempty"`
	Operation          string  `json:"operation,omitempty"`
}

// ExtrudeProfile extrudes an addressed profile of an addressed sketch,
// counting sketches from the most recent one.
func (h *Host) ExtrudeProfile(args extrudeProfileArgs) (extrudeResult, error) {
	doc, err := h.ActiveDocument()
	if err != nil {
		return extrudeResult{}, err
	}
	fromEnd := args.SketchIndexFromEnd
	if fromEnd == 0 {
		fromEnd = 1
	}
	idx := len(doc.Sketches) - fromEnd
	if idx < 0 || idx >= len(doc.Sketches) {
		return extrudeResult{}, fmt.Errorf("Invalid sketch_index_from_end.")
	}
	sk := doc.Sketches[idx]
	if args.ProfileIndex < 0 || args.ProfileIndex >= sk.Profiles {
		return extrudeResult{}, fmt.Errorf("Invalid profile_index.")
	}
	dist := args.DistanceMM
	if dist == 0 {
		dist = 5
	}
	doc.extrudeSketch(sk, mmToInternal(dist), args.Operation)
	return extrudeResult{
		ExtrudeFeatureName: doc.Timeline[len(doc.Timeline)-1].Name,
		BodiesCount:        len(doc.Bodies),
	}, nil
}

type revolveArgs struct {
	SketchIndexFromEnd int     `json:"sketch_index_from_end,omitempty"`
	ProfileIndex       int     `json:"profile_index,omitempty"`
	AxisLineIndex      int     `json:"axis_line_index,omitempty"`
	AngleDeg           float64 `json:"angle_deg,omitempty"`
}

type revolveResult struct {
	RevolveFeatureName string `json:"revolveFeatureName"`
	BodiesCount        int    `json:"bodiesCount"`
}

// RevolveProfile revolves an addressed profile around one of its sketch
// lines.
func (h *Host) RevolveProfile(args revolveArgs) (revolveResult, error) {
	doc, err := h.ActiveDocument()
	if err != nil {
		return revolveResult{}, err
	}
	fromEnd := args.SketchIndexFromEnd
	if fromEnd == 0 {
		fromEnd = 1
	}
	idx := len(doc.Sketches) - fromEnd
	if idx < 0 {
		return revolveResult{}, fmt.Errorf("Invalid sketch_index_from_end.")
	}
	sk := doc.Sketches[idx]
	if sk.Profiles <= args.ProfileIndex {
		return revolveResult{}, fmt.Errorf("Invalid profile_index.")
	}
	if sk.Lines <= args.AxisLineIndex {
		return revolveResult{}, fmt.Errorf("Invalid axis_line_index.")
	}

	// The swept solid is bounded by the profile's largest radius from the
	// axis and its extent along it.
	radius := math.Max(
		math.Max(math.Abs(sk.minX), math.Abs(sk.maxX)),
		math.Max(math.Abs(sk.minY), math.Abs(sk.maxY)),
	)
	height := sk.maxY - sk.minY
	body := &Body{
		Name:    doc.nextName("Body"),
		Solid:   true,
		Visible: true,
		BBox:    bboxOf(-radius, -radius, sk.PlaneZ, radius, radius, sk.PlaneZ+height),
	}
	doc.Bodies = append(doc.Bodies, body)
	featName := doc.nextName("Revolve")
	doc.recordStep(featName, "RevolveFeature")
	return revolveResult{RevolveFeatureName: featName, BodiesCount: len(doc.Bodies)}, nil
}

type holeArgs struct {
	DiaMM   float64 `json:"dia_mm,omitempty"`
	DepthMM float64 `json:"depth_mm,omitempty"`
	XMM     float64 `json:"x_mm,omitempty"`
	YMM     float64 `json:"y_mm,omitempty"`
}

type holeResult struct {
	HoleFeatureName string `json:"holeFeatureName"`
}

func (d *Document) drillHole(body *Body, hole Hole) string {
	// The host sketches on the top face before placing the hole point.
	d.addSketch("top:"+body.Name, body.topZ())
	body.Holes = append(body.Holes, hole)
	featName := d.nextName("Hole")
	d.recordStep(featName, "HoleFeature")
	return featName
}

// HoleOnLastBodyTopFace drills a simple hole into the top face of the most
// recent body.
func (h *Host) HoleOnLastBodyTopFace(args holeArgs) (holeResult, error) {
	doc, err := h.ActiveDocument()
	if err != nil {
		return holeResult{}, err
	}
	body, err := doc.lastBody()
	if err != nil {
		return holeResult{}, err
	}
	dia := args.DiaMM
	if dia == 0 {
		dia = 5
	}
	depth := args.DepthMM
	if depth == 0 {
		depth = 10
	}
	name := doc.drillHole(body, Hole{
		X:        mmToInternal(args.XMM),
		Y:        mmToInternal(args.YMM),
		Diameter: mmToInternal(dia),
		Depth:    mmToInternal(depth),
	})
	return holeResult{HoleFeatureName: name}, nil
}

type boltCircleArgs struct {
	BCDMM     float64 `json:"bcd_mm"`
	HoleDiaMM float64 `json:"hole_dia_mm"`
	DepthMM   float64 `json:"depth_mm,omitempty"`
	AngleDeg  float64 `json:"angle_deg,omitempty"`
}

// HoleBoltCircleOne places one hole on a bolt circle at the given angle.
func (h *Host) HoleBoltCircleOne(args boltCircleArgs) (holeResult, error) {
	if args.BCDMM <= 0 {
		return holeResult{}, fmt.Errorf("bcd_mm must be > 0")
	}
	if args.HoleDiaMM <= 0 {
		return holeResult{}, fmt.Errorf("hole_dia_mm must be > 0")
	}
	depth := args.DepthMM
	if depth == 0 {
		depth = 9999
	}
	r := args.BCDMM / 2
	rad := args.AngleDeg * math.Pi / 180
	return h.HoleOnLastBodyTopFace(holeArgs{
		DiaMM:   args.HoleDiaMM,
		DepthMM: depth,
		XMM:     r * math.Cos(rad),
		YMM:     r * math.Sin(rad),
	})
}

type countersinkArgs struct {
	HoleDiaMM  float64 `json:"hole_dia_mm,omitempty"`
	CSDiaMM    float64 `json:"cs_dia_mm,omitempty"`
	CSAngleDeg float64 `json:"cs_angle_deg,omitempty"`
	DepthMM    float64 `json:"depth_mm,omitempty"`
	XMM        float64 `json:"x_mm,omitempty"`
	YMM        float64 `json:"y_mm,omitempty"`
}

// CountersinkHoleOnLastBodyTopFace drills a countersunk hole into the top
// face of the most recent body.
func (h *Host) CountersinkHoleOnLastBodyTopFace(args countersinkArgs) (holeResult, error) {
	doc, err := h.ActiveDocument()
	if err != nil {
		return holeResult{}, err
	}
	body, err := doc.lastBody()
	if err != nil {
		return holeResult{}, err
	}
	dia := args.HoleDiaMM
	if dia == 0 {
		dia = 6
	}
	depth := args.DepthMM
	if depth == 0 {
		depth = 9999
	}
	name := doc.drillHole(body, Hole{
		X:           mmToInternal(args.XMM),
		Y:           mmToInternal(args.YMM),
		Diameter:    mmToInternal(dia),
		Depth:       mmToInternal(depth),
		Countersink: true,
	})
	return holeResult{HoleFeatureName: name}, nil
}

type patternArgs struct {
	Qty   int    `json:"qty,omitempty"`
	Angle string `json:"angle,omitempty"`
}

type patternResult struct {
	PatternFeatureName string `json:"patternFeatureName"`
	BodiesCount        int    `json:"bodiesCount,omitempty"`
}

// parseAngle reads expressions like "360 deg" into degrees.
func parseAngle(expr string) (float64, error) {
	s := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(expr), "deg"))
	deg, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid angle %q", expr)
	}
	return deg, nil
}

// patternBody copies a body around the Z axis, spacing qty instances across
// totalDeg degrees. A full circle spaces instances by total/qty, anything
// less by total/(qty-1).
func (d *Document) patternBody(base *Body, qty int, totalDeg float64) {
	if qty < 2 {
		return
	}
	step := totalDeg / float64(qty)
	if math.Mod(totalDeg, 360) != 0 {
		step = totalDeg / float64(qty-1)
	}
	for i := 1; i < qty; i++ {
		angle := float64(i) * step * math.Pi / 180
		d.Bodies = append(d.Bodies, &Body{
			Name:    d.nextName("Body"),
			Solid:   base.Solid,
			Visible: base.Visible,
			BBox:    base.BBox.rotatedAboutZ(angle),
		})
	}
}

// CircularPatternLastFeature patterns the most recent timeline entry around
// the Z axis.
func (h *Host) CircularPatternLastFeature(args patternArgs) (patternResult, error) {
	doc, err := h.ActiveDocument()
	if err != nil {
		return patternResult{}, err
	}
	if len(doc.Timeline) < 1 {
		return patternResult{}, fmt.Errorf("No timeline features to pattern.")
	}
	qty := args.Qty
	if qty == 0 {
		qty = 6
	}
	angle := args.Angle
	if angle == "" {
		angle = "360 deg"
	}
	totalDeg, err := parseAngle(angle)
	if err != nil {
		return patternResult{}, err
	}
	if len(doc.Bodies) > 0 {
		doc.patternBody(doc.Bodies[len(doc.Bodies)-1], qty, totalDeg)
	}
	featName := doc.nextName("CircularPattern")
	doc.recordStep(featName, "CircularPatternFeature")
	return patternResult{PatternFeatureName: featName}, nil
}

// CircularPatternLastBody patterns the most recent body around the Z axis.
func (h *Host) CircularPatternLastBody(args patternArgs) (patternResult, error) {
	doc, err := h.ActiveDocument()
	if err != nil {
		return patternResult{}, err
	}
	if len(doc.Bodies) < 1 {
		return patternResult{}, fmt.Errorf("No bodies found to pattern.")
	}
	qty := args.Qty
	if qty == 0 {
		qty = 6
	}
	angle := args.Angle
	if angle == "" {
		angle = "360 deg"
	}
	totalDeg, err := parseAngle(angle)
	if err != nil {
		return patternResult{}, err
	}
	doc.patternBody(doc.Bodies[len(doc.Bodies)-1], qty, totalDeg)
	featName := doc.nextName("CircularPattern")
	doc.recordStep(featName, "CircularPatternFeature")
	return patternResult{PatternFeatureName: featName, BodiesCount: len(doc.Bodies)}, nil
}

type deleteBodiesResult struct {
	DeletedBodies   int `json:"deletedBodies"`
	RemainingBodies int `json:"remainingBodies"`
}

// DeleteAllBodies removes every body from the root component. Bodies already
// moved into components are untouched.
func (h *Host) DeleteAllBodies(struct{}) (deleteBodiesResult, error) {
	doc, err := h.ActiveDocument()
	if err != nil {
		return deleteBodiesResult{}, err
	}
	deleted := len(doc.Bodies)
	doc.Bodies = nil
	return deleteBodiesResult{DeletedBodies: deleted, RemainingBodies: 0}, nil
}

type combineArgs struct {
	Operation string `json:"operation,omitempty"`
}

type combineResult struct {
	Note               string `json:"note,omitempty"`
	CombineFeatureName string `json:"combineFeatureName,omitempty"`
	BodiesCount        int    `json:"bodiesCount"`
}

// CombineAllBodies folds every body into the first one. Fewer than two
// bodies is reported as a note, not an error.
func (h *Host) CombineAllBodies(args combineArgs) (combineResult, error) {
	doc, err := h.ActiveDocument()
	if err != nil {
		return combineResult{}, err
	}
	if len(doc.Bodies) < 2 {
		return combineResult{Note: "Need >=2 bodies to combine.", BodiesCount: len(doc.Bodies)}, nil
	}
	target := doc.Bodies[0]
	op := strings.ToLower(args.Operation)
	for _, tool := range doc.Bodies[1:] {
		switch op {
		case "cut":
			// Removal never grows the target.
		case "intersect":
			target.BBox = target.BBox.intersect(tool.BBox)
		default:
			target.BBox = target.BBox.union(tool.BBox)
		}
	}
	doc.Bodies = doc.Bodies[:1]
	featName := doc.nextName("Combine")
	doc.recordStep(featName, "CombineFeature")
	return combineResult{CombineFeatureName: featName, BodiesCount: len(doc.Bodies)}, nil
}

type componentArgs struct {
	Name string `json:"name,omitempty"`
}

type componentResult struct {
	ComponentName  string `json:"componentName"`
	OccurrenceName string `json:"occurrenceName"`
}

// ComponentFromLastBody creates a component and moves the most recent body
// into it.
func (h *Host) ComponentFromLastBody(args componentArgs) (componentResult, error) {
	doc, err := h.ActiveDocument()
	if err != nil {
		return componentResult{}, err
	}
	if len(doc.Bodies) < 1 {
		return componentResult{}, fmt.Errorf("No bodies to move into component.")
	}
	name := args.Name
	if name == "" {
		name = "Comp"
	}
	body := doc.Bodies[len(doc.Bodies)-1]
	doc.Bodies = doc.Bodies[:len(doc.Bodies)-1]
	comp := &Component{Name: name, Bodies: []*Body{body}}
	doc.Components = append(doc.Components, comp)
	doc.recordStep(name, "Occurrence")
	return componentResult{ComponentName: name, OccurrenceName: name + ":1"}, nil
}

type jointResult struct {
	AsBuiltJointName string `json:"asBuiltJointName"`
	Type             string `json:"type"`
	A                string `json:"A"`
	B                string `json:"B"`
}

// RigidJointLastTwoComponents joins the last two component occurrences with
// an as-built rigid joint.
func (h *Host) RigidJointLastTwoComponents(struct{}) (jointResult, error) {
	doc, err := h.ActiveDocument()
	if err != nil {
		return jointResult{}, err
	}
	if len(doc.Components) < 2 {
		return jointResult{}, fmt.Errorf("Need at least 2 occurrences/components.")
	}
	a := doc.Components[len(doc.Components)-2]
	b := doc.Components[len(doc.Components)-1]
	joint := Joint{
		Name: doc.nextName("AsBuiltJoint"),
		Type: "rigid",
		A:    a.Name + ":1",
		B:    b.Name + ":1",
	}
	doc.Joints = append(doc.Joints, joint)
	doc.recordStep(joint.Name, "AsBuiltJoint")
	return jointResult{
		AsBuiltJointName: joint.Name,
		Type:             joint.Type,
		A:                joint.A,
		B:                joint.B,
	}, nil
}

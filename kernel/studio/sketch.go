package studio

import (
	"fmt"
	"strings"
)

// Sketch is one sketch with its curves and closed profiles. Geometry is
// tracked as counts plus planar extents, which is all downstream features
// need from it.
type Sketch struct {
	Name     string
	Plane    string
	PlaneZ   float64
	Lines    int
	Circles  int
	Arcs     int
	Splines  int
	Points   int
	Profiles int

	hasExtents             bool
	minX, minY, maxX, maxY float64
}

func (s *Sketch) growExtents(x1, y1, x2, y2 float64) {
	if !s.hasExtents {
		s.minX, s.minY, s.maxX, s.maxY = x1, y1, x2, y2
		s.hasExtents = true
		return
	}
	if x1 < s.minX {
		s.minX = x1
	}
	if y1 < s.minY {
		s.minY = y1
	}
	if x2 > s.maxX {
		s.maxX = x2
	}
	if y2 > s.maxY {
		s.maxY = y2
	}
}

func (s *Sketch) addRect(minX, minY, maxX, maxY float64) {
	s.Lines += 4
	s.Profiles++
	s.growExtents(minX, minY, maxX, maxY)
}

func (s *Sketch) addCircle(cx, cy, r float64) {
	s.Circles++
	s.Profiles++
	s.growExtents(cx-r, cy-r, cx+r, cy+r)
}

func (s *Sketch) addLine(x1, y1, x2, y2 float64) {
	s.Lines++
	s.growExtents(min(x1, x2), min(y1, y2), max(x1, x2), max(y1, y2))
}

func (d *Document) addSketch(plane string, planeZ float64) *Sketch {
	sk := &Sketch{
		Name:   d.nextName("Sketch"),
		Plane:  plane,
		PlaneZ: planeZ,
	}
	d.Sketches = append(d.Sketches, sk)
	d.recordStep(sk.Name, "Sketch")
	return sk
}

type sketchNameResult struct {
	SketchName string `json:"sketchName"`
}

type sketchProfilesResult struct {
	SketchName    string `json:"sketchName"`
	ProfilesCount int    `json:"profilesCount"`
}

type profilesResult struct {
	ProfilesCount int `json:"profilesCount"`
}

type sketchPlaneArgs struct {
	Plane string `json:"plane,omitempty"`
}

// CreateSketchOnPlane starts an empty sketch on one of the three
// construction planes.
func (h *Host) CreateSketchOnPlane(args sketchPlaneArgs) (sketchNameResult, error) {
	doc, err := h.ActiveDocument()
	if err != nil {
		return sketchNameResult{}, err
	}
	plane := strings.ToUpper(args.Plane)
	if plane == "" {
		plane = "XY"
	}
	switch plane {
	case "XY", "XZ", "YZ":
	default:
		return sketchNameResult{}, fmt.Errorf("plane must be XY, XZ, or YZ")
	}
	sk := doc.addSketch(plane, 0)
	return sketchNameResult{SketchName: sk.Name}, nil
}

type sketchRectXYArgs struct {
	XMM float64 `json:"x_mm,omitempty"`
	YMM float64 `json:"y_mm,omitempty"`
}

// CreateSketchRectXY sketches an origin-cornered rectangle on the XY plane.
func (h *Host) CreateSketchRectXY(args sketchRectXYArgs) (sketchProfilesResult, error) {
	doc, err := h.ActiveDocument()
	if err != nil {
		return sketchProfilesResult{}, err
	}
	x := args.XMM
	if x == 0 {
		x = 40
	}
	y := args.YMM
	if y == 0 {
		y = 30
	}
	sk := doc.addSketch("XY", 0)
	sk.addRect(0, 0, mmToInternal(x), mmToInternal(y))
	return sketchProfilesResult{SketchName: sk.Name, ProfilesCount: sk.Profiles}, nil
}

type sketchCircleXYArgs struct {
	RMM  float64 `json:"r_mm,omitempty"`
	CXMM float64 `json:"cx_mm,omitempty"`
	CYMM float64 `json:"cy_mm,omitempty"`
}

// CreateSketchCircleXY sketches one circle on the XY plane.
func (h *Host) CreateSketchCircleXY(args sketchCircleXYArgs) (sketchProfilesResult, error) {
	doc, err := h.ActiveDocument()
	if err != nil {
		return sketchProfilesResult{}, err
	}
	r := args.RMM
	if r == 0 {
		r = 10
	}
	sk := doc.addSketch("XY", 0)
	sk.addCircle(mmToInternal(args.CXMM), mmToInternal(args.CYMM), mmToInternal(r))
	return sketchProfilesResult{SketchName: sk.Name, ProfilesCount: sk.Profiles}, nil
}

type twoCirclesArgs struct {
	ODMM float64 `json:"od_mm"`
	IDMM float64 `json:"id_mm,omitempty"`
}

// CreateSketchTwoCirclesXY sketches concentric outer and optional inner
// circles on a fresh XY sketch, for rings and flanges.
func (h *Host) CreateSketchTwoCirclesXY(args twoCirclesArgs) (sketchProfilesResult, error) {
	doc, err := h.ActiveDocument()
	if err != nil {
		return sketchProfilesResult{}, err
	}
	if args.ODMM <= 0 {
		return sketchProfilesResult{}, fmt.Errorf("od_mm must be > 0")
	}
	sk := doc.addSketch("XY", 0)
	sk.addCircle(0, 0, mmToInternal(args.ODMM/2))
	if args.IDMM > 0 {
		sk.addCircle(0, 0, mmToInternal(args.IDMM/2))
	}
	return sketchProfilesResult{SketchName: sk.Name, ProfilesCount: sk.Profiles}, nil
}

// CreateSketchOnLastBodyTop starts a sketch on the top planar face of the
// most recent body.
func (h *Host) CreateSketchOnLastBodyTop(struct{}) (sketchNameResult, error) {
	doc, err := h.ActiveDocument()
	if err != nil {
		return sketchNameResult{}, err
	}
	body, err := doc.lastBody()
	if err != nil {
		return sketchNameResult{}, err
	}
	sk := doc.addSketch("top:"+body.Name, body.topZ())
	return sketchNameResult{SketchName: sk.Name}, nil
}

type centerRectArgs struct {
	WMM  float64 `json:"w_mm,omitempty"`
	HMM  float64 `json:"h_mm,omitempty"`
	CXMM float64 `json:"cx_mm,omitempty"`
	CYMM float64 `json:"cy_mm,omitempty"`
}

// SketchCenterRectangle adds a center-anchored rectangle to the current
// (most recent) sketch.
func (h *Host) SketchCenterRectangle(args centerRectArgs) (profilesResult, error) {
	doc, err := h.ActiveDocument()
	if err != nil {
		return profilesResult{}, err
	}
	sk, err := doc.lastSketch()
	if err != nil {
		return profilesResult{}, err
	}
	w := args.WMM
	if w == 0 {
		w = 40
	}
	hgt := args.HMM
	if hgt == 0 {
		hgt = 30
	}
	cx := mmToInternal(args.CXMM)
	cy := mmToInternal(args.CYMM)
	halfW := mmToInternal(w) / 2
	halfH := mmToInternal(hgt) / 2
	sk.addRect(cx-halfW, cy-halfH, cx+halfW, cy+halfH)
	return profilesResult{ProfilesCount: sk.Profiles}, nil
}

// SketchTwoCirclesCurrent adds concentric circles to the current sketch.
func (h *Host) SketchTwoCirclesCurrent(args twoCirclesArgs) (profilesResult, error) {
	doc, err := h.ActiveDocument()
	if err != nil {
		return profilesResult{}, err
	}
	sk, err := doc.lastSketch()
	if err != nil {
		return profilesResult{}, err
	}
	if args.ODMM <= 0 {
		return profilesResult{}, fmt.Errorf("od_mm must be > 0")
	}
	sk.addCircle(0, 0, mmToInternal(args.ODMM/2))
	if args.IDMM > 0 {
		sk.addCircle(0, 0, mmToInternal(args.IDMM/2))
	}
	return profilesResult{ProfilesCount: sk.Profiles}, nil
}

type sketchLineArgs struct {
	X1MM float64 `json:"x1_mm,omitempty"`
	Y1MM float64 `json:"y1_mm,omitempty"`
	X2MM float64 `json:"x2_mm,omitempty"`
	Y2MM float64 `json:"y2_mm,omitempty"`
}

// SketchLine adds one line segment to the current sketch.
func (h *Host) SketchLine(args sketchLineArgs) (profilesResult, error) {
	doc, err := h.ActiveDocument()
	if err != nil {
		return profilesResult{}, err
	}
	sk, err := doc.lastSketch()
	if err != nil {
		return profilesResult{}, err
	}
	x2 := args.X2MM
	if x2 == 0 && args.X1MM == 0 && args.Y1MM == 0 && args.Y2MM == 0 {
		x2 = 10
	}
	sk.addLine(mmToInternal(args.X1MM), mmToInternal(args.Y1MM), mmToInternal(x2), mmToInternal(args.Y2MM))
	return profilesResult{ProfilesCount: sk.Profiles}, nil
}

// Package studio is an in-memory parametric design host. It stands in for
// the real single-threaded modeling application behind the bridge: every
// method must only be called from the bridge executor goroutine, which is the
// sole reason the package carries no locking.
package studio

import (
	"fmt"
)

// Internal lengths are stored in centimeters; tool arguments are millimeters.
const mmPerInternalUnit = 10.0

func mmToInternal(mm float64) float64 {
	return mm / mmPerInternalUnit
}

// Parameter is one user parameter of the active document.
type Parameter struct {
	Name       string  `json:"name"`
	Expression string  `json:"expression"`
	Value      float64 `json:"value"`
	Unit       string  `json:"unit"`
}

// TimelineItem is one recorded modeling step.
type TimelineItem struct {
	Index      int    `json:"index"`
	Name       string `json:"name"`
	EntityType string `json:"entityType"`
}

// Component is a named sub-assembly occurrence holding bodies moved out of
// the root component.
type Component struct {
	Name   string
	Bodies []*Body
}

// Joint is an as-built joint between two occurrences.
type Joint struct {
	Name string
	Type string
	A    string
	B    string
}

// Document is the mutable state of one open design.
type Document struct {
	Name               string
	DefaultLengthUnits string
	Parameters         []Parameter
	Sketches           []*Sketch
	Bodies             []*Body
	Timeline           []TimelineItem
	Components         []*Component
	Joints             []Joint

	counters map[string]int
}

// NewDocument opens an empty design document.
func NewDocument(name string) *Document {
	return &Document{
		Name:               name,
		DefaultLengthUnits: "mm",
		counters:           map[string]int{},
	}
}

func (d *Document) nextName(prefix string) string {
	d.counters[prefix]++
	return fmt.Sprintf("%s%d", prefix, d.counters[prefix])
}

func (d *Document) recordStep(name, entityType string) {
	d.Timeline = append(d.Timeline, TimelineItem{
		Index:      len(d.Timeline),
		Name:       name,
		EntityType: entityType,
	})
}

func (d *Document) lastSketch() (*Sketch, error) {
	if len(d.Sketches) == 0 {
		return nil, fmt.Errorf("No sketch available. Create a sketch first.")
	}
	return d.Sketches[len(d.Sketches)-1], nil
}

func (d *Document) lastBody() (*Body, error) {
	if len(d.Bodies) == 0 {
		return nil, fmt.Errorf("No bodies found.")
	}
	return d.Bodies[len(d.Bodies)-1], nil
}

// Host owns at most one active document, mirroring the host application's
// active-product handle. A nil document makes every modeling operation fail
// the way the real host does without an open design.
type Host struct {
	doc *Document
}

// NewHost returns a host with no active document.
func NewHost() *Host {
	return &Host{}
}

// Open makes doc the active document.
func (h *Host) Open(doc *Document) {
	h.doc = doc
}

// ActiveDocument returns the active document. The error text is part of
// the tool wire contract, hence the capitalized message.
func (h *Host) ActiveDocument() (*Document, error) {
	if h.doc == nil {
		return nil, fmt.Errorf("No active design.")
	}
	return h.doc, nil
}

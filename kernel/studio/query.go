package studio

type pingResult struct {
	Message string `json:"message"`
}

// Ping answers without touching the document.
func (h *Host) Ping(struct{}) (pingResult, error) {
	return pingResult{Message: "pong"}, nil
}

type stateBody struct {
	Name    string `json:"name"`
	Solid   bool   `json:"isSolid"`
	Visible bool   `json:"isVisible"`
}

type stateResult struct {
	DesignName         string         `json:"designName,omitempty"`
	DefaultLengthUnits string         `json:"defaultLengthUnits,omitempty"`
	Parameters         []Parameter    `json:"parameters"`
	Bodies             []stateBody    `json:"bodies"`
	Timeline           []TimelineItem `json:"timeline"`
	Note               string         `json:"note,omitempty"`
}

// GetState snapshots the active document. With no document open it reports a
// note instead of failing, so state stays pollable.
func (h *Host) GetState(struct{}) (stateResult, error) {
	doc, err := h.ActiveDocument()
	if err != nil {
		return stateResult{Note: err.Error()}, nil
	}
	out := stateResult{
		DesignName:         doc.Name,
		DefaultLengthUnits: doc.DefaultLengthUnits,
		Parameters:         append([]Parameter(nil), doc.Parameters...),
		Bodies:             make([]stateBody, 0, len(doc.Bodies)),
		Timeline:           append([]TimelineItem(nil), doc.Timeline...),
	}
	for _, b := range doc.Bodies {
		out.Bodies = append(out.Bodies, stateBody{Name: b.Name, Solid: b.Solid, Visible: b.Visible})
	}
	return out, nil
}

type listedBody struct {
	Index   int    `json:"index"`
	Name    string `json:"name"`
	Solid   bool   `json:"isSolid"`
	Visible bool   `json:"isVisible"`
	BBox    BBox   `json:"bbox"`
}

type listBodiesResult struct {
	Bodies []listedBody `json:"bodies"`
}

// ListBodies lists every root body with its bounding box.
func (h *Host) ListBodies(struct{}) (listBodiesResult, error) {
	doc, err := h.ActiveDocument()
	if err != nil {
		return listBodiesResult{}, err
	}
	out := listBodiesResult{Bodies: make([]listedBody, 0, len(doc.Bodies))}
	for i, b := range doc.Bodies {
		out.Bodies = append(out.Bodies, listedBody{
			Index:   i,
			Name:    b.Name,
			Solid:   b.Solid,
			Visible: b.Visible,
			BBox:    b.BBox,
		})
	}
	return out, nil
}

type lastBodyResult struct {
	BodyIndex int    `json:"bodyIndex"`
	BodyName  string `json:"bodyName"`
}

// GetLastBody identifies the most recent root body.
func (h *Host) GetLastBody(struct{}) (lastBodyResult, error) {
	doc, err := h.ActiveDocument()
	if err != nil {
		return lastBodyResult{}, err
	}
	b, err := doc.lastBody()
	if err != nil {
		return lastBodyResult{}, err
	}
	return lastBodyResult{BodyIndex: len(doc.Bodies) - 1, BodyName: b.Name}, nil
}

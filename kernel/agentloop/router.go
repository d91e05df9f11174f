package agentloop

import "sort"

// Verb is the transport verb a route uses against the listener.
type Verb string

const (
	VerbGet  Verb = "GET"
	VerbPost Verb = "POST"
)

// Route maps a public tool name onto the listener surface: either a GET
// path or a POST /tool remote name.
type Route struct {
	Verb   Verb
	Remote string
}

// Router is the fixed public tool vocabulary for one process lifetime.
type Router map[string]Route

// DefaultRouter returns the full public vocabulary. Public names must match
// the listener's registry names one-to-one (plus the two GET routes), so the
// remote strings here are load-bearing.
func DefaultRouter() Router {
	return Router{
		// Basics
		"studio_ping":      {Verb: VerbGet, Remote: "/ping"},
		"studio_get_state": {Verb: VerbGet, Remote: "/state"},

		// Sketch helpers
		"studio_create_sketch_on_plane":         {Verb: VerbPost, Remote: "create_sketch_on_plane"},
		"studio_create_sketch_rect_xy":          {Verb: VerbPost, Remote: "create_sketch_rect_xy"},
		"studio_create_sketch_circle_xy":        {Verb: VerbPost, Remote: "create_sketch_circle_xy"},
		"studio_create_sketch_two_circles_xy":   {Verb: VerbPost, Remote: "create_sketch_two_circles_xy"},
		"studio_create_sketch_on_last_body_top": {Verb: VerbPost, Remote: "create_sketch_on_last_body_top"},
		"studio_sketch_center_rectangle":        {Verb: VerbPost, Remote: "sketch_center_rectangle"},
		"studio_sketch_two_circles_current":     {Verb: VerbPost, Remote: "sketch_two_circles_current"},
		"studio_sketch_line":                    {Verb: VerbPost, Remote: "sketch_line"},

		// Solid features
		"studio_extrude_last_profile": {Verb: VerbPost, Remote: "extrude_last_profile"},
		"studio_extrude_profile":      {Verb: VerbPost, Remote: "extrude_profile"},
		"studio_revolve_profile":      {Verb: VerbPost, Remote: "revolve_profile"},

		// Holes + patterns
		"studio_hole_on_last_body_top_face":             {Verb: VerbPost, Remote: "hole_on_last_body_top_face"},
		"studio_hole_bolt_circle_one":                   {Verb: VerbPost, Remote: "hole_bolt_circle_one"},
		"studio_circular_pattern_last_feature":          {Verb: VerbPost, Remote: "circular_pattern_last_feature"},
		"studio_countersink_hole_on_last_body_top_face": {Verb: VerbPost, Remote: "countersink_hole_on_last_body_top_face"},

		// Query helpers
		"studio_list_bodies":   {Verb: VerbPost, Remote: "list_bodies"},
		"studio_get_last_body": {Verb: VerbPost, Remote: "get_last_body"},

		// Cleanup / utility
		"studio_delete_all_bodies":          {Verb: VerbPost, Remote: "delete_all_bodies"},
		"studio_combine_all_bodies":         {Verb: VerbPost, Remote: "combine_all_bodies"},
		"studio_circular_pattern_last_body": {Verb: VerbPost, Remote: "circular_pattern_last_body"},

		// Assembly
		"studio_component_from_last_body":        {Verb: VerbPost, Remote: "component_from_last_body"},
		"studio_rigid_joint_last_two_components": {Verb: VerbPost, Remote: "rigid_joint_last_two_components"},

		// Gears
		"studio_create_spur_gear":     {Verb: VerbPost, Remote: "create_spur_gear_involute"},
		"studio_create_rack_gear":     {Verb: VerbPost, Remote: "create_rack_gear"},
		"studio_create_helical_gear":  {Verb: VerbPost, Remote: "create_helical_gear"},
		"studio_create_internal_gear": {Verb: VerbPost, Remote: "create_internal_gear"},
		"studio_create_bevel_gear":    {Verb: VerbPost, Remote: "create_bevel_gear"},
	}
}

// Names returns the sorted public tool names.
func (r Router) Names() []string {
	out := make([]string, 0, len(r))
	for name := range r {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

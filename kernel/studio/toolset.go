package studio

import (
	"context"

	"github.com/draftsmith/forgebridge/kernel/tool"
)

// Tools exposes every host operation as a registry tool. The returned tools
// close over the host, so Run must stay on the executor goroutine.
func Tools(h *Host) ([]tool.Tool, error) {
	builders := []func() (tool.Tool, error){
		hostTool("ping", "Liveness check against the design host.", h.Ping),
		hostTool("get_state", "Snapshot the active design: parameters, bodies, timeline.", h.GetState),
		hostTool("list_bodies", "List all bodies with bounding boxes.", h.ListBodies),
		hostTool("get_last_body", "Name and index of the most recently created body.", h.GetLastBody),

		hostTool("create_sketch_on_plane", "Create an empty sketch on the XY, XZ, or YZ plane.", h.CreateSketchOnPlane),
		hostTool("create_sketch_rect_xy", "New XY sketch with an origin-cornered rectangle (x_mm by y_mm).", h.CreateSketchRectXY),
		hostTool("create_sketch_circle_xy", "New XY sketch with one circle of radius r_mm at (cx_mm, cy_mm).", h.CreateSketchCircleXY),
		hostTool("create_sketch_two_circles_xy", "New XY sketch with concentric circles: od_mm outer, optional id_mm inner.", h.CreateSketchTwoCirclesXY),
		hostTool("create_sketch_on_last_body_top", "New sketch on the top planar face of the last body.", h.CreateSketchOnLastBodyTop),
		hostTool("sketch_center_rectangle", "Add a center-anchored rectangle to the current sketch.", h.SketchCenterRectangle),
		hostTool("sketch_two_circles_current", "Add concentric circles to the current sketch.", h.SketchTwoCirclesCurrent),
		hostTool("sketch_line", "Add a line segment to the current sketch.", h.SketchLine),

		hostTool("extrude_last_profile", "Extrude the first profile of the last sketch by distance_mm.", h.ExtrudeLastProfile),
		hostTool("extrude_profile", "Extrude an addressed profile of an addressed sketch.", h.ExtrudeProfile),
		hostTool("revolve_profile", "Revolve an addressed profile around one of its sketch lines.", h.RevolveProfile),

		hostTool("hole_on_last_body_top_face", "Drill a simple hole into the top face of the last body.", h.HoleOnLastBodyTopFace),
		hostTool("hole_bolt_circle_one", "Drill one hole on a bolt circle of diameter bcd_mm at angle_deg.", h.HoleBoltCircleOne),
		hostTool("countersink_hole_on_last_body_top_face", "Drill a countersunk hole into the top face of the last body.", h.CountersinkHoleOnLastBodyTopFace),
		hostTool("circular_pattern_last_feature", "Pattern the last timeline feature around the Z axis.", h.CircularPatternLastFeature),
		hostTool("circular_pattern_last_body", "Pattern the last body around the Z axis.", h.CircularPatternLastBody),

		hostTool("delete_all_bodies", "Delete every body in the root component.", h.DeleteAllBodies),
		hostTool("combine_all_bodies", "Combine all bodies into one (join, cut, or intersect).", h.CombineAllBodies),

		hostTool("component_from_last_body", "Create a component and move the last body into it.", h.ComponentFromLastBody),
		hostTool("rigid_joint_last_two_components", "Rigid as-built joint between the last two components.", h.RigidJointLastTwoComponents),

		hostTool("create_spur_gear_involute", "Approximate involute spur gear from teeth, module_mm, and thickness_mm.", h.CreateSpurGearInvolute),
		hostTool("create_rack_gear", "Basic rack gear from module_mm and teeth.", h.CreateRackGear),
		hostTool("create_helical_gear", "Helical gear (not implemented).", h.CreateHelicalGear),
		hostTool("create_internal_gear", "Internal ring gear (not implemented).", h.CreateInternalGear),
		hostTool("create_bevel_gear", "Bevel gear (not implemented).", h.CreateBevelGear),
	}

	tools := make([]tool.Tool, 0, len(builders))
	for _, build := range builders {
		t, err := build()
		if err != nil {
			return nil, err
		}
		tools = append(tools, t)
	}
	return tools, nil
}

func hostTool[TArgs, TResult any](name, description string, method func(TArgs) (TResult, error)) func() (tool.Tool, error) {
	return func() (tool.Tool, error) {
		return tool.NewFunction(name, description, func(_ context.Context, args TArgs) (TResult, error) {
			return method(args)
		})
	}
}

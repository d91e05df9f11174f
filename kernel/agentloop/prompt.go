package agentloop

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/draftsmith/forgebridge/kernel/tool"
)

// SystemPrompt builds the protocol instruction for one run. decls may carry
// the registry's argument schemas; routes without a matching declaration are
// listed by name only.
func SystemPrompt(router Router, decls []tool.Declaration) string {
	byRemote := make(map[string]tool.Declaration, len(decls))
	for _, d := range decls {
		byRemote[d.Name] = d
	}

	var b strings.Builder
	b.WriteString(`You are a CAD agent controlling a parametric design host through tools.

You MUST respond with ONLY valid JSON (no extra text, no markdown) with this schema:
{
  "action": "tool" | "final",
  "tool_name": string | null,
  "args": object | null,
  "message": string
}

You may ONLY request ONE of these tool_name values (exact spelling):
`)
	names, _ := json.MarshalIndent(router.Names(), "", "  ")
	b.Write(names)
	b.WriteString("\n\nUnits:\n- All dimensions are in millimeters unless explicitly stated.\n")

	b.WriteString("\nTool argument schemas:\n")
	for _, name := range router.Names() {
		route := router[name]
		if route.Verb == VerbGet {
			fmt.Fprintf(&b, "- %s: {}\n", name)
			continue
		}
		decl, ok := byRemote[route.Remote]
		if !ok || decl.Parameters == nil {
			fmt.Fprintf(&b, "- %s\n", name)
			continue
		}
		schema, err := json.Marshal(decl.Parameters)
		if err != nil {
			fmt.Fprintf(&b, "- %s\n", name)
			continue
		}
		fmt.Fprintf(&b, "- %s: %s\n", name, schema)
	}

	b.WriteString(`
Rules:
- Before creating geometry, call studio_get_state to ensure an active design exists.
- After each major feature, call studio_get_state to verify (timeline/bodies).
- If a tool fails, do one recovery step (usually studio_get_state), then end with action:"final" describing what failed.
- Do NOT fabricate "unsupported environment" messages if a matching tool exists; call the tool instead.
`)
	return b.String()
}

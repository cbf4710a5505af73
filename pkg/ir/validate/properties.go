package validate

import "github.com/ternarybob/accord/pkg/ir"

const passProperties = "properties"

// Properties checks that every check's references resolve against the
// declared tracks, states, and message tags.
func Properties(i *ir.IR) (*ir.IR, []Diagnostic) {
	var diags []Diagnostic

	tracks := map[string]bool{}
	for _, tr := range i.Tracks {
		tracks[tr.Name] = true
	}
	states := map[string]bool{}
	for name := range i.States {
		states[name] = true
	}
	tags := map[string]bool{}
	argNamesByTag := map[string][]string{}
	for _, st := range i.States {
		for _, tr := range st.Transitions {
			tags[tr.MessageTag] = true
			argNamesByTag[tr.MessageTag] = tr.ArgNames
		}
	}
	for _, tr := range i.Anystate {
		tags[tr.MessageTag] = true
		argNamesByTag[tr.MessageTag] = tr.ArgNames
	}

	for _, prop := range i.Properties {
		for _, c := range prop.Checks {
			switch c.Kind {
			case ir.CheckBounded:
				if !tracks[c.Track] {
					diags = append(diags, errf(passProperties, "property %q: bounded check references unknown track %q", prop.Name, c.Track))
				}
			case ir.CheckLocalInvariant:
				if !states[c.State] {
					diags = append(diags, errf(passProperties, "property %q: local_invariant references unknown state %q", prop.Name, c.State))
				}
			case ir.CheckReachable:
				if !states[c.ReachTarget] {
					diags = append(diags, errf(passProperties, "property %q: reachable check references unknown state %q", prop.Name, c.ReachTarget))
				}
			case ir.CheckPrecedence:
				if !states[c.Target] {
					diags = append(diags, errf(passProperties, "property %q: precedence check references unknown target state %q", prop.Name, c.Target))
				}
				if !states[c.Required] {
					diags = append(diags, errf(passProperties, "property %q: precedence check references unknown required state %q", prop.Name, c.Required))
				}
			case ir.CheckCorrespondence:
				if !tags[c.Open] {
					diags = append(diags, errf(passProperties, "property %q: correspondence check references unknown open message %q", prop.Name, c.Open))
				}
				for _, close := range c.Close {
					if !tags[close] {
						diags = append(diags, errf(passProperties, "property %q: correspondence check references unknown close message %q", prop.Name, close))
					}
				}
			case ir.CheckOrdered:
				if !tags[c.Event] {
					diags = append(diags, errf(passProperties, "property %q: ordered check references unknown message %q", prop.Name, c.Event))
				} else if c.By == "" {
					diags = append(diags, errf(passProperties, "property %q: ordered check does not name a positional field (\"by\")", prop.Name))
				} else if !containsStr(argNamesByTag[c.Event], c.By) {
					diags = append(diags, errf(passProperties, "property %q: ordered check's field %q is not defined by message %q", prop.Name, c.By, c.Event))
				}
			}
		}
	}

	return i, diags
}

func containsStr(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}

package exercise

import (
	"github.com/ternarybob/accord/pkg/dispatch"
	"github.com/ternarybob/accord/pkg/ir"
	"github.com/ternarybob/accord/pkg/monitor"
)

// expect computes a step's predicted outcome straight from the IR, per
// spec.md's per-command classification table. It never runs the monitor;
// run.go compares this against the monitor's actual response.
func expect(table *dispatch.Table, state, tag string, msg *ir.Tag, kind CommandKind, transitions map[string]ir.Transition) Outcome {
	validTags := table.ValidTags(state)
	tagValidHere := contains(validTags, tag)

	switch kind {
	case CmdValid:
		return okOutcome()

	case CmdBadType:
		tr := transitions[tag]
		badIdx := -1
		for i, t := range tr.MessageTypes {
			if i >= len(msg.Args) {
				break
			}
			if !ir.Conforms(msg.Args[i], t) {
				badIdx = i
				break
			}
		}
		if badIdx == -1 {
			return okOutcome()
		}
		if !tagValidHere {
			return violationOutcome(monitor.BlameClient, monitor.KindInvalidMessage)
		}
		return violationOutcome(monitor.BlameClient, monitor.KindArgumentType)

	case CmdWrongState:
		if tagValidHere {
			return eitherOutcome()
		}
		return violationOutcome(monitor.BlameClient, monitor.KindInvalidMessage)

	case CmdGuardFail:
		return violationOutcome(monitor.BlameClient, monitor.KindGuardFailed)

	case CmdUnknown:
		if table.IsTerminal(state) {
			return violationOutcome(monitor.BlameClient, monitor.KindSessionEnded)
		}
		return violationOutcome(monitor.BlameClient, monitor.KindInvalidMessage)

	default:
		return violationOutcome(monitor.BlameClient, monitor.KindInvalidMessage)
	}
}

func contains(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}

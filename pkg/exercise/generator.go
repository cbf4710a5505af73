package exercise

import (
	"math/rand"

	"github.com/ternarybob/accord/pkg/dispatch"
	"github.com/ternarybob/accord/pkg/ir"
)

// maxRejectSamples bounds the reject-sampling loops for guard_fail and
// wrong_state: both want a message/tag with a specific property and give up
// rather than spin forever on a degenerate contract (e.g. a guard that is
// always true, or a single-tag protocol where every tag is always valid).
const maxRejectSamples = 50

// Generator is a seeded, replayable command-sequence producer. Grounded on
// the pack's chaos-fault sampler: a struct wrapping a single seeded *rand.Rand
// so an entire run is reproducible from one seed.
type Generator struct {
	rng *rand.Rand

	transitions map[string]ir.Transition
	tags        []string
}

// NewGenerator seeds a Generator for the given contract.
func NewGenerator(seed int64, i *ir.IR) *Generator {
	transitions := globalTransitions(i)
	return &Generator{
		rng:         rand.New(rand.NewSource(seed)), //nolint:gosec
		transitions: transitions,
		tags:        globalTags(transitions),
	}
}

// eligibleKinds returns the command kinds that can produce a meaningful
// step given the live dispatch table and current state.
func (g *Generator) eligibleKinds(table *dispatch.Table, state string) []CommandKind {
	var kinds []CommandKind
	validTags := table.ValidTags(state)
	if len(validTags) > 0 {
		kinds = append(kinds, CmdValid)
	}
	if len(g.tags) > 0 && hasArgBearingTag(g.transitions) {
		kinds = append(kinds, CmdBadType)
	}
	if len(g.tags) > 0 {
		kinds = append(kinds, CmdWrongState)
	}
	if hasGuardedValidTag(table, state, validTags) {
		kinds = append(kinds, CmdGuardFail)
	}
	kinds = append(kinds, CmdUnknown)
	return kinds
}

func hasArgBearingTag(transitions map[string]ir.Transition) bool {
	for _, tr := range transitions {
		if len(tr.MessageTypes) > 0 {
			return true
		}
	}
	return false
}

func hasGuardedValidTag(table *dispatch.Table, state string, validTags []string) bool {
	for _, tag := range validTags {
		if tr, ok := table.Lookup(state, tag); ok && tr.Guard != nil && tr.Guard.Fn != nil {
			return true
		}
	}
	return false
}

// next picks the next command kind uniformly among eligible kinds.
func (g *Generator) next(table *dispatch.Table, state string) CommandKind {
	eligible := g.eligibleKinds(table, state)
	return eligible[g.rng.Intn(len(eligible))]
}

// build constructs the concrete (tag, message) pair for kind, given the
// live table, current state and tracks. ok is false only when kind turns
// out to have no viable tag (the caller should treat the step as a no-op
// retry).
func (g *Generator) build(table *dispatch.Table, state string, tracks map[string]any, kind CommandKind) (tag string, message *ir.Tag, ok bool) {
	switch kind {
	case CmdValid:
		validTags := table.ValidTags(state)
		tag = validTags[g.rng.Intn(len(validTags))]
		tr, _ := table.Lookup(state, tag)
		msg := buildMessage(g.rng, tag, tr.MessageTypes, -1)
		if tr.Guard != nil && tr.Guard.Fn != nil {
			for attempt := 0; attempt < maxRejectSamples && !tr.Guard.Fn(msg, tracks); attempt++ {
				msg = buildMessage(g.rng, tag, tr.MessageTypes, -1)
			}
		}
		return tag, msg, true

	case CmdBadType:
		argTags := argBearingTags(g.transitions)
		tag = argTags[g.rng.Intn(len(argTags))]
		tr := g.transitions[tag]
		pos := g.rng.Intn(len(tr.MessageTypes))
		return tag, buildMessage(g.rng, tag, tr.MessageTypes, pos), true

	case CmdWrongState:
		validTags := table.ValidTags(state)
		tag = g.rejectSampleTag(validTags)
		tr := g.transitions[tag]
		return tag, buildMessage(g.rng, tag, tr.MessageTypes, -1), true

	case CmdGuardFail:
		return g.buildGuardFail(table, state, tracks)

	case CmdUnknown:
		tag = unknownTag(g.rng, g.transitions)
		return tag, &ir.Tag{Name: tag}, true

	default:
		return "", nil, false
	}
}

func argBearingTags(transitions map[string]ir.Transition) []string {
	tags := make([]string, 0, len(transitions))
	for tag, tr := range transitions {
		if len(tr.MessageTypes) > 0 {
			tags = append(tags, tag)
		}
	}
	return tags
}

// rejectSampleTag favors a tag not present in validTags, falling back to
// whichever candidate it last drew once the sample budget is exhausted.
func (g *Generator) rejectSampleTag(validTags []string) string {
	valid := make(map[string]bool, len(validTags))
	for _, t := range validTags {
		valid[t] = true
	}
	candidate := g.tags[g.rng.Intn(len(g.tags))]
	for attempt := 0; attempt < maxRejectSamples && valid[candidate]; attempt++ {
		candidate = g.tags[g.rng.Intn(len(g.tags))]
	}
	return candidate
}

// buildGuardFail reject-samples a message for a guarded, currently-valid
// transition until the guard rejects it (or the sample budget runs out, in
// which case the last-sampled message is used anyway; the step is still
// expected to fail its guard, so a guard that accepted every sample makes
// that step fail).
func (g *Generator) buildGuardFail(table *dispatch.Table, state string, tracks map[string]any) (string, *ir.Tag, bool) {
	var guarded []string
	for _, tag := range table.ValidTags(state) {
		if tr, ok := table.Lookup(state, tag); ok && tr.Guard != nil && tr.Guard.Fn != nil {
			guarded = append(guarded, tag)
		}
	}
	if len(guarded) == 0 {
		return "", nil, false
	}
	tag := guarded[g.rng.Intn(len(guarded))]
	tr, _ := table.Lookup(state, tag)

	msg := buildMessage(g.rng, tag, tr.MessageTypes, -1)
	for attempt := 0; attempt < maxRejectSamples; attempt++ {
		if !tr.Guard.Fn(msg, tracks) {
			return tag, msg, true
		}
		msg = buildMessage(g.rng, tag, tr.MessageTypes, -1)
	}
	return tag, msg, true
}

package exercise

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/ternarybob/accord/pkg/ir"
)

// sampleValue produces a value conforming to t, recursing through t's
// structure the same way ir.Conforms walks it.
func sampleValue(rng *rand.Rand, t ir.T) any {
	switch t.Kind {
	case ir.KindInteger:
		return int64(rng.Intn(2001) - 1000)
	case ir.KindPosInteger:
		return int64(rng.Intn(1000) + 1)
	case ir.KindNonNegInteger:
		return int64(rng.Intn(1000))
	case ir.KindAtom:
		return fmt.Sprintf("atom_%d", rng.Intn(8))
	case ir.KindBoolean:
		return rng.Intn(2) == 0
	case ir.KindBinary:
		return []byte(fmt.Sprintf("bin_%d", rng.Intn(1000)))
	case ir.KindString:
		return fmt.Sprintf("str_%d", rng.Intn(1000))
	case ir.KindMap:
		return map[string]any{"k": rng.Intn(10)}
	case ir.KindTerm:
		return sampleValue(rng, termAlternatives[rng.Intn(len(termAlternatives))])
	case ir.KindList:
		n := rng.Intn(3)
		out := make([]any, n)
		for i := range out {
			out[i] = sampleValue(rng, *t.Elem)
		}
		return out
	case ir.KindTuple:
		out := make([]any, len(t.Elems))
		for i, e := range t.Elems {
			out[i] = sampleValue(rng, e)
		}
		return out
	case ir.KindStruct:
		return &ir.StructValue{Name: t.StructName, Fields: map[string]any{}}
	case ir.KindLiteral:
		return t.Literal
	case ir.KindUnion:
		return sampleValue(rng, t.Elems[rng.Intn(len(t.Elems))])
	case ir.KindTagged:
		return sampleTagged(rng, t)
	default:
		return nil
	}
}

var termAlternatives = []ir.T{ir.Integer(), ir.Boolean(), ir.StringT(), ir.Atom()}

func sampleTagged(rng *rand.Rand, t ir.T) any {
	if t.TaggedElem == nil {
		return &ir.Tag{Name: t.Tag}
	}
	if t.TaggedElem.Kind == ir.KindTuple {
		args := make([]any, len(t.TaggedElem.Elems))
		for i, e := range t.TaggedElem.Elems {
			args[i] = sampleValue(rng, e)
		}
		return &ir.Tag{Name: t.Tag, Args: args}
	}
	return &ir.Tag{Name: t.Tag, Args: []any{sampleValue(rng, *t.TaggedElem)}}
}

// mismatchValue produces a value of a *different* shape than t, biased to
// violate ir.Conforms(v, t). It is not guaranteed to: a Term position or a
// Union that happens to include the substituted kind will still conform,
// which the caller resolves by re-checking ir.Conforms on the result (the
// same "replay the type check" step spec.md describes for bad_type).
func mismatchValue(rng *rand.Rand, t ir.T) any {
	switch t.Kind {
	case ir.KindInteger, ir.KindPosInteger, ir.KindNonNegInteger:
		return rng.Intn(2) == 0
	case ir.KindBoolean:
		return int64(rng.Intn(100))
	case ir.KindAtom, ir.KindString:
		return int64(rng.Intn(100))
	case ir.KindBinary:
		return rng.Intn(2) == 0
	case ir.KindMap:
		return int64(rng.Intn(100))
	case ir.KindList, ir.KindTuple:
		return int64(rng.Intn(100))
	case ir.KindStruct:
		return &ir.StructValue{Name: t.StructName + "_wrong"}
	case ir.KindLiteral:
		return fmt.Sprintf("not_%v", t.Literal)
	case ir.KindTagged:
		return &ir.Tag{Name: t.Tag + "_wrong"}
	default:
		return int64(rng.Intn(100))
	}
}

// buildMessage samples a fully conforming message for tag, or one with a
// single mismatched position if badPos >= 0.
func buildMessage(rng *rand.Rand, tag string, types []ir.T, badPos int) *ir.Tag {
	args := make([]any, len(types))
	for i, t := range types {
		if i == badPos {
			args[i] = mismatchValue(rng, t)
			continue
		}
		args[i] = sampleValue(rng, t)
	}
	return &ir.Tag{Name: tag, Args: args}
}

// globalTransitions collects every declared (tag -> transition) pairing
// across all states and anystate, state-local entries winning ties, for
// commands (bad_type, wrong_state) that pick a transition independent of
// the monitor's current live state.
func globalTransitions(i *ir.IR) map[string]ir.Transition {
	out := map[string]ir.Transition{}
	for _, name := range i.StateNames() {
		for _, tr := range i.States[name].Transitions {
			if _, exists := out[tr.MessageTag]; !exists {
				out[tr.MessageTag] = tr
			}
		}
	}
	for _, tr := range i.Anystate {
		if _, exists := out[tr.MessageTag]; !exists {
			out[tr.MessageTag] = tr
		}
	}
	return out
}

// globalTags returns every known message tag, sorted for deterministic
// iteration order given a fixed seed.
func globalTags(transitions map[string]ir.Transition) []string {
	tags := make([]string, 0, len(transitions))
	for tag := range transitions {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// unknownTag synthesizes a tag that cannot collide with any declared tag.
func unknownTag(rng *rand.Rand, known map[string]ir.Transition) string {
	for {
		candidate := fmt.Sprintf("unknown_cmd_%d", rng.Intn(1_000_000))
		if _, exists := known[candidate]; !exists {
			return candidate
		}
	}
}

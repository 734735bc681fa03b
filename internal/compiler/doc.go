// Package compiler turns CUE vocabulary files into ir.Vocabulary values.
//
// A vocabulary declares relation types and the rules that hold between
// them, plus optional seed facts:
//
//	vocabulary: tableware: {
//		pairs: [["left of", "right of"]]
//		mirrors: [{source: "holds", target: "held by"}]
//		symmetric: ["next to"]
//		transitive: ["inside"]
//		facts: [{type: "left of", subject: "fork", object: "plate"}]
//	}
//
// Every name is validated and normalized the same way ir.NewFact does it,
// so a compiled vocabulary can be handed to the engine without further
// checks. Errors carry CUE source positions.
package compiler

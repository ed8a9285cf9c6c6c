// Package querylanguage defines the JSON-shaped query descriptor
// language and its condition evaluator.
//
// A descriptor selects entities of one type, filtered by a flat list of
// field conditions and constrained by conjunctive joins that may nest to
// arbitrary depth:
//
//	{
//	  "type": "function",
//	  "conditions": [{"field": "name", "operator": "like", "value": "parse%"}],
//	  "joins": [
//	    {"type": "called_function",
//	     "conditions": [{"field": "function_name", "operator": "eq", "value": "unwrap"}]}
//	  ]
//	}
//
// The type of a join entry is the relation role it plays under its
// parent, resolved against the static relation table in package schema.
// [Descriptor.Validate] checks field names, operator names, and relation
// roles up front so malformed descriptors fail before evaluation.
//
// The evaluator ([Match], [MatchAll]) applies one condition to one
// entity record; it is pure and performs no I/O. Client-side filtering
// and store push-down share these operator semantics.
package querylanguage

// Package engine applies flattened pipelines to file names.
//
// A pipeline is compiled once into a Program with a Backend. Strict uses
// RE2 and is what LocalExecutor renames with. Preview falls back to an
// ECMAScript engine for patterns RE2 rejects, so look-around rules can be
// previewed even though rename refuses them.
//
// Only the stem is transformed: SplitName separates the final extension
// and it is appended unchanged after the last op.
//
// Replacement strings use $n, ${n}, ${name}, and $$; see Template.
package engine

// Package compiler resolves configured steps into flat pipelines and checks
// rule libraries before they reach an executor.
//
// Resolution is total: dangling references, disabled steps, malformed steps,
// and cyclic group re-entry are skipped, never reported as errors. Reporting
// those configurations is the job of Lint and AnalyzeCycles.
package compiler

// Package harness provides scenario-based conformance testing for the
// scheduler.
//
// Scenarios are YAML files that drive a deterministic engine — frozen
// clock, sequential ids — through creations, emissions, clock advances,
// and ticks, then assert on final entry statuses and bus traffic. Because
// every id and timestamp is deterministic, the resulting log file can be
// compared byte-for-byte against a golden snapshot.
//
// # Scenario format
//
//	name: merge_flow
//	description: "ALL convergence gates the merge event"
//	fail_targets: [flaky]       # command targets whose delivery fails
//	steps:
//	  - create:
//	      trigger: {type: event, kinds: [tests_passed, review_done], match: all}
//	      action:  {type: emit, kind: merge_ready}
//	      reason:  "gate merge"
//	  - emit: {kind: tests_passed, origin: ci}
//	  - advance: 1m
//	  - emit: {kind: review_done, origin: reviewer}
//	  - tick: true
//	expect:
//	  entries:
//	    - {id: entry-01, status: executed}
//	  events: [tests_passed, review_done, merge_ready]
//
// Relative times in triggers ("+5m") are resolved against the scenario
// epoch, so scenarios stay readable and runs stay reproducible.
package harness

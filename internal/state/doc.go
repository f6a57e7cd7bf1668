// Package state provides the keyed storage the engines own.
//
// Map, DoubleMap and Value are get/insert/remove/mutate containers with
// deterministic iteration: keys are always visited in ascending order, so
// two nodes executing the same calls walk storage identically. They are not
// safe for concurrent use; the runtime is the single writer.
package state

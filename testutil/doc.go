// Package testutil adds test lifecycle helpers on top of component.Component.
//
// A TestComponent can be reset, snapshotted and restored between test cases.
// T(t).Setup starts one and stops it when the test ends; Manager drives a
// group of them.
package testutil

// Package config centralizes the configuration of the graph container.
//
// The two rewrite-surface flags, OptimizerVerbose and ComputeTestValue,
// are deliberately not process globals: a Config is injected into each
// container at construction, so two graphs in one process can run with
// different settings. Resource limits bound graph growth at import time.
//
// Use Default for production values, Development for verbose rewrite
// logging, and Testing to switch on every consistency facility.
package config

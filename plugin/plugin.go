// Package plugin defines the contract third-party plugins implement to
// extend the toolkit with new compression algorithms, plus the validator
// that gates whether a plugin may be loaded.
package plugin

import (
	"github.com/bytepress/bytepress/registry"
)

// Metadata describes a plugin's identity, compatibility range, and declared
// capabilities. It is a value type and must not change once returned.
type Metadata struct {
	// Name uniquely identifies the plugin. Required.
	Name string
	// Version is the plugin's own semantic version. Required.
	Version string
	// Author names the plugin developer or maintainer. Required.
	Author string
	// Description summarizes what the plugin provides. Required.
	Description string
	// HostConstraint declares the compatible host version range, in the
	// pessimistic "~> MAJOR.MINOR" form. Required.
	HostConstraint string

	// Homepage is the plugin's project URL.
	Homepage string
	// License is an SPDX-style license identifier.
	License string
	// Dependencies lists names of other plugins this one requires.
	Dependencies []string
	// Tags are free-form labels for discovery.
	Tags []string
	// Algorithms lists the algorithm names the plugin registers during
	// setup.
	Algorithms []string
}

// Plugin is the capability set every plugin must expose. The lifecycle
// manager drives these hooks in order: Setup after registration, Activate to
// start offering the capability, Deactivate to stop, Cleanup to release
// everything Setup and Activate created.
type Plugin interface {
	// Metadata returns the plugin's descriptor. It is pure and
	// side-effect-free.
	Metadata() Metadata

	// Setup registers the plugin's algorithm factories into the shared
	// registry.
	Setup(reg *registry.Registry) error

	// Activate signals the plugin to start offering its capability, for
	// example by acquiring an external resource. It must be safe to call
	// even when there is nothing to acquire.
	Activate() error

	// Deactivate signals the plugin to stop offering its capability. It
	// must be safe to call even if no resource was ever acquired.
	Deactivate() error

	// Cleanup unregisters and releases everything Setup and Activate
	// created. It must be idempotent.
	Cleanup() error
}

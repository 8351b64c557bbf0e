// Package provider defines the capability interface every calendar back-end
// adapter implements, and the registry the server wires them into.
//
// The scheduling engines depend only on the Provider interface, never on
// concrete adapters. The registry is passed explicitly at construction; no
// package-level state exists, so tests can run parallel instances.
package provider

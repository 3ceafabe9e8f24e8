// Package agent holds the static registry of supported AI coding agents and
// helper-script variants, and the selector that turns user input into one
// (Profile, ScriptVariant) pair.
//
// The registry is embedded YAML validated against a JSON schema when it is
// loaded. A *Registry is immutable after Load and is passed explicitly to
// every component that needs it.
package agent

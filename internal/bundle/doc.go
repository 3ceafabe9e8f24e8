// Package bundle turns a source template bundle into the per-agent tree
// that gets materialized into a project.
//
// A bundle is the unbuilt layout kept in the template repository:
//
//	templates/            document templates, plus commands/*.md
//	scripts/bash/         POSIX helper scripts
//	scripts/powershell/   PowerShell helper scripts
//	memory/               constitution and other shared memory files
//	agent_templates/<a>/  files copied to the project root for agent <a>
//
// Build renders one agent/script combination of that layout into a
// destination directory, the same shape a release asset has once unpacked.
package bundle

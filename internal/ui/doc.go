// Package ui renders terminal output for the CLI: the step tracker shown
// during init, the tool table printed by check, the interactive picker,
// yes/no confirmation, and Markdown panels. Everything writes to injected
// writers so commands stay testable.
package ui

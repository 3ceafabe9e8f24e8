// Package resolver obtains a template package for one agent and script
// variant and stages it in a temporary directory.
//
// A source is either a GitHub repository publishing template releases
// (owner/repo, optionally pinned with @tag) or a local directory holding a
// prebuilt tree or an unbuilt bundle. Whatever the source, the result is a
// *Package whose Close removes the staging directory.
package resolver

// Package file provides file-backed configuration adapters.
//
// Adapters:
//   - ConfigStore: TOML settings at ~/.ragent/config.toml
//   - PromptStore: user-editable prompt templates under ~/.ragent/prompts,
//     reloaded when the directory changes
package file

// Package ui implements the interactive pieces of the terminal interface with bubbletea's Elm architecture.
//
// [CredentialsModel] is a two-field form (username, hidden password) used by `scx auth login` when the
// credentials are not passed as flags. [PromptCredentials] runs it as a bubbletea program and returns the
// submitted values, or [ErrPromptCancelled] when the user leaves with esc/ctrl+c.
//
// [Palette] holds the lipgloss styles used to paint status lines in command output.
package ui

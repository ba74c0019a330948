// Package ui provides the terminal viewer for SDL core trace logs.
//
// The interface is built on Bubble Tea. Model keeps a stack of documents:
// the followed log at the bottom and, above it, any filtered views or call
// trees opened from it. Each document owns its text, fold state, unpaired
// call report, search state and cursor, so closing a view with esc returns
// to the previous one exactly as it was left.
//
// # Event Flow
//
//  1. Run() creates the Model and starts the program
//  2. A tick fetches the latest state.Snapshot; a new Version replaces the
//     text of the bottom document
//  3. Keys act on the top document (see keyMap)
//  4. Only the visible window of a document is styled on each render
//
// # Key Bindings
//
//   - j/k, g/G, ctrl+d/u, pgup/pgdown: Move the cursor
//   - /, n/N: Search with a case-insensitive regular expression
//   - D/A/C/X: Fold timestamps, thread addresses, components, path prefixes
//   - u, ]/[: Find unpaired Enter traces and step through them
//   - F: Open a view with the lines matching a pattern
//   - t: Open the call tree of the cursor line's thread
//   - o: Open the cursor line's source reference in $EDITOR
//   - Space: Toggle follow mode
//   - T: Cycle theme (saved to preferences)
//   - esc: Clear search, then close the view
//   - e or Ctrl+C: Exit
package ui

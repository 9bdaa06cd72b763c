// Package viz holds the lipgloss styling used by the terminal views.
//
//   - [Theme] and [Styles]: the color schemes cycled with the t key
//   - [ProgressBar], [Sparkline], [Spinner]: small inline widgets
//   - [Canvas]: braille plot used for the completion curves
package viz

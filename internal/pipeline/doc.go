// Package pipeline holds the HTML and Markdown transformations applied to a
// source document before it reaches the renderer:
//   - <style> and <script> tag construction and insertion before </head>
//   - discovery of rendering options embedded as <meta> tags
//   - Markdown to HTML conversion via Goldmark
//   - rewriting of relative asset paths to file:// URLs
//
// Rendering itself is handled by the root imgkit package, which drives the
// external renderer process. Functions here are pure string-to-string
// transformations and never touch the process layer.
package pipeline

package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: html2img [render] <input>... [flags]")
	fmt.Fprintln(w, "       html2img <command> [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  render     Render HTML, Markdown or a URL to an image (default)")
	fmt.Fprintln(w, "  doctor     Check renderers and environment")
	fmt.Fprintln(w, "  completion Generate shell completion script")
	fmt.Fprintln(w, "  version    Show version information")
	fmt.Fprintln(w, "  help       Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'html2img help <command>' for details on a specific command.")
}

// printRenderUsage prints usage for the render command.
func printRenderUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: html2img render <input>... [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Render pages to jpg, png or tiff images.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Arguments:")
	fmt.Fprintln(w, "  input    HTML or Markdown file, directory, http(s) URL, or - for stdin")
	fmt.Fprintln(w, "           (default: stdin)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Input/Output:")
	fmt.Fprintln(w, "  -o, --output <path>       Output file, - for stdout, or directory in batch mode")
	fmt.Fprintln(w, "  -f, --format <s>          Image format: jpg, jpeg, png, tiff, tif")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w, "  -w, --workers <n>         Parallel renders in batch mode (0 = auto)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Renderer:")
	fmt.Fprintln(w, "  -b, --backend <s>         wkhtmltoimage (default) or chrome")
	fmt.Fprintln(w, "      --executable <path>   wkhtmltoimage location ($IMGKIT_WKHTMLTOIMAGE)")
	fmt.Fprintln(w, "  -t, --timeout <d>         Per-page timeout, e.g. 45s (default 30s)")
	fmt.Fprintln(w, "  -O, --option <k[=v]>      wkhtmltoimage option, repeatable:")
	fmt.Fprintln(w, "                            -O width=1280 -O quality=90 -O disable-javascript")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Attachments (HTML and Markdown inputs only):")
	fmt.Fprintln(w, "      --css <path>          Stylesheet to inline, repeatable")
	fmt.Fprintln(w, "      --js <path>           Script to reference, repeatable")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Markdown:")
	fmt.Fprintln(w, "  -m, --markdown            Treat input as Markdown (auto for .md, .markdown)")
	fmt.Fprintln(w, "      --title <s>           Document title (default: file name)")
	fmt.Fprintln(w, "      --highlight-style <s> Chroma style for code blocks (default: github)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Embedded options:")
	fmt.Fprintln(w, "      --meta-prefix <s>     Meta tag prefix (default: imgkit-)")
	fmt.Fprintln(w, "      --no-meta             Ignore <meta name=\"imgkit-...\"> options")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output Control:")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w, "  -v, --verbose             Show renderer commands and timing")
}

// runHelp prints help for a specific command.
func runHelp(args []string, env *Environment) {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return
	}

	switch args[0] {
	case "render":
		printRenderUsage(env.Stdout)
	case "doctor":
		fmt.Fprintln(env.Stdout, "Usage: html2img doctor [--json]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Check that wkhtmltoimage or Chrome is available and the environment can render.")
	case "completion":
		printCompletionUsage(env.Stdout)
	case "version":
		fmt.Fprintln(env.Stdout, "Usage: html2img version")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show version information.")
	case "help":
		fmt.Fprintln(env.Stdout, "Usage: html2img help [command]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show help for a command.")
	default:
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n", args[0])
		printUsage(env.Stderr)
	}
}

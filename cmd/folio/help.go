package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: folio <command> [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  fetch      Load a project fragment and print its content")
	fmt.Fprintln(w, "  open       Open a project modal in a host page")
	fmt.Fprintln(w, "  build      Compile Markdown sources into project fragments")
	fmt.Fprintln(w, "  preview    Screenshot a host page with a modal open")
	fmt.Fprintln(w, "  config     Print the effective configuration")
	fmt.Fprintln(w, "  doctor     Check the environment")
	fmt.Fprintln(w, "  version    Show version information")
	fmt.Fprintln(w, "  help       Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'folio help <command>' for details on a specific command.")
}

func printCommonUsage(w io.Writer) {
	fmt.Fprintln(w, "Output Control:")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w, "  -v, --verbose             Debug logging")
	fmt.Fprintln(w, "      --log-format <s>      Log format: text, json")
}

func printSiteUsage(w io.Writer) {
	fmt.Fprintln(w, "Site:")
	fmt.Fprintln(w, "      --base-url <url>      Site URL to fetch fragments from")
	fmt.Fprintln(w, "  -r, --root <dir>          Local site directory (used without a base URL)")
	fmt.Fprintln(w, "  -l, --location <path>     Path or URL of the including page")
	fmt.Fprintln(w, "  -p, --prefix <s>          Prefix for rewritten img/a paths")
	fmt.Fprintln(w, "      --collection-dir <s>  Directory holding proj-<id>.html")
	fmt.Fprintln(w, "  -t, --timeout <d>         Fetch timeout (e.g. 5s)")
	fmt.Fprintln(w)
}

// printFetchUsage prints usage for the fetch command.
func printFetchUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: folio fetch <id> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Load proj-<id>.html for a location and print its modal content.")
	fmt.Fprintln(w, "The first <nav> is removed and img/a paths are rewritten with --prefix.")
	fmt.Fprintln(w)
	printSiteUsage(w)
	fmt.Fprintln(w, "Output:")
	fmt.Fprintln(w, "  -f, --format <s>          Output format: html, markdown")
	fmt.Fprintln(w, "  -o, --output <path>       Write to file instead of stdout")
	fmt.Fprintln(w)
	printCommonUsage(w)
}

// printOpenUsage prints usage for the open command.
func printOpenUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: folio open <page.html> <id> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Open the modal of a project in a host page and print the page.")
	fmt.Fprintln(w, "The location defaults to the page's path under --root.")
	fmt.Fprintln(w)
	printSiteUsage(w)
	fmt.Fprintln(w, "Output:")
	fmt.Fprintln(w, "  -o, --output <path>       Write to file instead of stdout")
	fmt.Fprintln(w)
	printCommonUsage(w)
}

// printBuildUsage prints usage for the build command.
func printBuildUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: folio build [dir] [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Compile Markdown project sources into fragment documents.")
	fmt.Fprintln(w, "Each proj-<id>.md is written next to itself as proj-<id>.html.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Sources:")
	fmt.Fprintln(w, "  -g, --glob <pattern>      Source pattern (default **/proj-*.md)")
	fmt.Fprintln(w, "  -w, --watch               Rebuild on change")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Styling:")
	fmt.Fprintln(w, "      --style <name>        Stylesheet name")
	fmt.Fprintln(w, "      --template <name>     Page template name")
	fmt.Fprintln(w, "      --asset-path <dir>    Directory overriding embedded assets")
	fmt.Fprintln(w, "      --back-href <url>     Target of the fragment back-link")
	fmt.Fprintln(w, "      --no-style            Do not inject a stylesheet")
	fmt.Fprintln(w)
	printCommonUsage(w)
}

// printPreviewUsage prints usage for the preview command.
func printPreviewUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: folio preview <page.html> <id> -o <out.png> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Open a project modal and screenshot the page in headless Chrome.")
	fmt.Fprintln(w)
	printSiteUsage(w)
	fmt.Fprintln(w, "Capture:")
	fmt.Fprintln(w, "  -o, --output <path>       PNG output path (required)")
	fmt.Fprintln(w, "      --width <px>          Viewport width")
	fmt.Fprintln(w, "      --height <px>         Viewport height")
	fmt.Fprintln(w, "      --full-page           Capture the whole page")
	fmt.Fprintln(w, "      --modal-only          Capture only the opened modal")
	fmt.Fprintln(w, "      --render-timeout <d>  Browser timeout (default: 30s)")
	fmt.Fprintln(w)
	printCommonUsage(w)
}

// printConfigUsage prints usage for the config command.
func printConfigUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: folio config [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Print the effective configuration as YAML.")
	fmt.Fprintln(w, "Precedence: flags > FOLIO_* environment > config file > defaults.")
	fmt.Fprintln(w)
	printCommonUsage(w)
}

// runHelp prints help for a specific command.
func runHelp(args []string, env *Environment) {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return
	}

	switch args[0] {
	case "fetch":
		printFetchUsage(env.Stdout)
	case "open":
		printOpenUsage(env.Stdout)
	case "build":
		printBuildUsage(env.Stdout)
	case "preview":
		printPreviewUsage(env.Stdout)
	case "config":
		printConfigUsage(env.Stdout)
	case "doctor":
		fmt.Fprintln(env.Stdout, "Usage: folio doctor [--json]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Check the browser used by preview and the local environment.")
	case "version":
		fmt.Fprintln(env.Stdout, "Usage: folio version")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show version information.")
	case "help":
		fmt.Fprintln(env.Stdout, "Usage: folio help [command]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show help for a command.")
	default:
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n", args[0])
		printUsage(env.Stderr)
	}
}

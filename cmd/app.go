// Package cmd implements the deskreplay CLI application.
package cmd

import (
	"flag"
	"fmt"
	"log"

	"github.com/charmbracelet/glamour"
	"github.com/google/subcommands"
)

// Register registers all the application's subcommands with the provided
// Commander. A main package calls Register() to set up the CLI.
func Register(c *subcommands.Commander) {
	c.Register(&runCmd{}, "")
	c.Register(&generateSampleDataCmd{}, "")
}

// As a CLI application, it has a very short-lived lifecycle, so it is ok to
// use global variables for flags.
var noRender = flag.Bool("no-render", false, "disable markdown rendering in terminal output")

// printMarkdown renders a markdown string to stdout with appropriate
// styling. If styling fails for any reason (e.g. a glamour error), it logs
// the error and falls back to printing the raw, unstyled markdown string.
func printMarkdown(md string) {
	if *noRender {
		fmt.Print(md)
		return
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(0),
	)
	if err != nil {
		log.Printf("error creating markdown renderer: %v. falling back to raw output.", err)
		fmt.Print(md)
		return
	}

	out, err := renderer.Render(md)
	if err != nil {
		log.Printf("error rendering markdown: %v. falling back to raw output.", err)
		fmt.Print(md)
		return
	}

	fmt.Print(out)
}

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:   "handoff",
		Short: "Live-agent handoff bridge between an AI session and a contact-center platform",
	}
	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run the bridge HTTP server",
		Run: func(cmd *cobra.Command, args []string) {
			runServe()
		},
	})
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

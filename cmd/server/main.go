// Package main is the entry point for the dust API server
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/frnsys/dust/pkg/api"
	"github.com/frnsys/dust/pkg/progression"
)

func main() {
	port := flag.Int("port", 8080, "Server port")
	patterns := flag.String("patterns", "", "Pattern template YAML (default: built-in patterns)")
	flag.Parse()

	template := progression.DefaultTemplate()
	if *patterns != "" {
		var err error
		template, err = progression.LoadTemplate(*patterns)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	fmt.Printf("Starting dust API server on port %d...\n", *port)
	fmt.Printf("Swagger docs available at http://localhost:%d/swagger/index.html\n", *port)

	if err := api.StartServer(*port, template); err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		os.Exit(1)
	}
}

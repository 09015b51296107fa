// Package main provides the entry point for the book fairy CLI and server.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "book_fairy",
	Short: "Library book recommendation assistant",
	Long:  "Book fairy recommends books to students by planning search queries with an LLM, aggregating book-search results, checking them against the school library's holdings and writing a short narrative around the final picks.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

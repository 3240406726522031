package main

import (
	"fmt"
	"os"

	"github.com/roblucci9302/Lucide-3/internal/cli/admin"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "lucided",
		Short: "Lucide daemon",
		Long:  "Lucide daemon for running the document ingestion and retrieval API server",
	}

	rootCmd.AddCommand(admin.ServeCmd())

	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// Command demoserver starts the Kumo demo server with fixture pages for the
// browser pipeline.
// Usage: go run ./cmd/demoserver [port]
// Default port: 9999
package main

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/raysh454/kumo/internal/demoserver"
)

func main() {
	cfg := demoserver.DefaultConfig()

	// Optional: custom port from command line
	if len(os.Args) > 1 {
		port, err := strconv.Atoi(os.Args[1])
		if err != nil || port < 1 || port > 65535 {
			log.Fatalf("Invalid port: %s", os.Args[1])
		}
		cfg.Port = port
	}

	fmt.Println("===========================================")
	fmt.Println("   Kumo Demo Server - Browser Fixtures")
	fmt.Println("===========================================")
	fmt.Println()
	fmt.Println("This server provides pages for exercising the")
	fmt.Println("browser bridge:")
	fmt.Println()
	fmt.Println("  /scroll - quotes that only load under JavaScript")
	fmt.Println("  /link   - click-through navigation to /target")
	fmt.Println()

	server := demoserver.NewDemoServer(cfg)
	if err := server.Start(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

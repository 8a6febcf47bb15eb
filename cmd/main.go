package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/forgelabs/forge-tui/internal/configuration"
	"github.com/forgelabs/forge-tui/internal/logging"
	"github.com/forgelabs/forge-tui/internal/tui/core"
	"github.com/forgelabs/forge-tui/internal/webserver"
)

var (
	webPort = flag.Int("webport", 0, "Run in web mode on specified port (e.g., -webport 8080)")
	isChild = flag.Bool("child", false, "Internal flag - indicates running as child process")
)

func main() {
	flag.Parse()

	config, err := configuration.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logConfig := logging.DefaultConfig()
	logConfig.Level = logging.ParseLevel(config.LogLevel)
	logConfig.EnableFile = config.EnableFileLogging
	// Stderr logging would corrupt the alternate screen in TUI mode
	logConfig.EnableStderr = *webPort > 0
	if err := logging.Initialize(logConfig); err != nil {
		log.Fatalf("Failed to initialize logging: %v", err)
	}
	defer logging.Close()

	ctx := context.Background()

	if *webPort > 0 && !*isChild {
		runWebMode(ctx, config, *webPort)
		return
	}

	runTUIMode(ctx, config)
}

func runTUIMode(ctx context.Context, config *configuration.Config) {
	model := core.NewModel(ctx, config)
	defer model.Close()

	// Child mode runs inside the webserver's PTY, which handles input
	// itself; the extra TTY options only apply when run directly.
	var program *tea.Program
	if *isChild {
		program = tea.NewProgram(
			model,
			tea.WithAltScreen(),
			tea.WithMouseCellMotion(),
		)
	} else {
		program = tea.NewProgram(
			model,
			tea.WithAltScreen(),
			tea.WithMouseCellMotion(),
			tea.WithFPS(60),
			tea.WithInputTTY(),
		)
	}

	if _, err := program.Run(); err != nil {
		fmt.Printf("Error running program: %v\n", err)
		os.Exit(1)
	}
}

func runWebMode(ctx context.Context, config *configuration.Config, port int) {
	server := webserver.New(port, config)
	if err := server.Start(ctx); err != nil {
		log.Fatalf("Failed to start web server: %v", err)
	}
}

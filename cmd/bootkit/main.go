// bootkit — bootstrap-утилита для контейнеров.
//
// При старте:
//   - заполняет пустые тома содержимым по умолчанию (POPULATE_CONTAINER_DIRS)
//   - выполняет jobs однократно или регистрирует их по cron-расписанию
//
// Использование:
//
//	bootkit [--run-once] [--jobs FILE] [--populate-container-dirs] [flags]
//	bootkit validate [--json]
//	bootkit version
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/shaiso/bootkit/internal/cli"
)

// version задаётся через ldflags при сборке.
var version = "dev"

func main() {
	// graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	code := run(ctx)
	cancel()
	os.Exit(code)
}

func run(ctx context.Context) int {
	rootCmd, err := cli.NewRootCmd(version)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)

		var exitErr *cli.ExitError
		if errors.As(err, &exitErr) {
			return exitErr.Code
		}
		return 1
	}

	return 0
}

package jobs

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"sort"
	"time"

	"github.com/shaiso/bootkit/internal/telemetry"
)

const (
	defaultCommandTimeout = time.Hour
	maxOutputLen          = 4000

	// waitDelay — сколько ждать закрытия stdout/stderr после kill
	// (дочерние процессы shell могут держать pipe).
	waitDelay = time.Second
)

// CommandJob — job типа "command".
//
// Config:
//   - command (string): команда для "sh -c"
//   - args ([]string): argv без shell (альтернатива command)
//   - dir (string): рабочий каталог
//   - env (map[string]string): дополнительные переменные окружения
//   - timeout_sec (number): таймаут. Default: 3600
//
// Ненулевой код возврата считается ошибкой.
type CommandJob struct {
	args    []string
	dir     string
	env     []string
	timeout time.Duration
}

// NewCommandJob создаёт CommandJob из конфигурации.
func NewCommandJob(config map[string]any) (*CommandJob, error) {
	command := getString(config, "command", "")
	args, ok := getStringSlice(config, "args")
	if !ok {
		return nil, fmt.Errorf("%w: %s: args must be a list of strings", ErrInvalidJob, TypeCommand)
	}

	switch {
	case command != "" && len(args) > 0:
		return nil, fmt.Errorf("%w: %s: command and args are mutually exclusive", ErrInvalidJob, TypeCommand)
	case command != "":
		args = []string{"sh", "-c", command}
	case len(args) == 0:
		return nil, fmt.Errorf("%w: %s: command or args is required", ErrInvalidJob, TypeCommand)
	}

	env := getStringMap(config, "env")
	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	extra := make([]string, 0, len(keys))
	for _, k := range keys {
		extra = append(extra, k+"="+env[k])
	}

	return &CommandJob{
		args:    args,
		dir:     getString(config, "dir", ""),
		env:     extra,
		timeout: getTimeout(config, defaultCommandTimeout),
	}, nil
}

// Run выполняет команду.
func (j *CommandJob) Run(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, j.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, j.args[0], j.args[1:]...)
	cmd.Dir = j.dir
	cmd.Env = append(os.Environ(), j.env...)
	cmd.WaitDelay = waitDelay

	var buf bytes.Buffer
	cmd.Stdout = &buf
	cmd.Stderr = &buf

	err := cmd.Run()
	output := truncate(buf.String(), maxOutputLen)

	telemetry.FromContext(ctx).Debug("command job finished",
		"args", j.args,
		"output", output,
	)

	if err != nil {
		return fmt.Errorf("%w: %v: %s", ErrCommandFailed, err, output)
	}
	return nil
}

package listener

import (
	"bufio"
	"context"
	"errors"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/fiffu/guardwatch/config"
	"go.uber.org/zap"
)

// hotwordDetector wraps the external hotword engine as a child process and
// translates its stdout into detection events. The engine is expected to
// print one "detected <keyword-index>" line per wake word.
type hotwordDetector struct {
	log     *zap.Logger
	command string
	cmd     *exec.Cmd
}

func NewHotwordDetector(log *zap.Logger, cfg *config.Config) Detector {
	return &hotwordDetector{log: log, command: cfg.Hotword.Command}
}

func (d *hotwordDetector) Start(ctx context.Context) (<-chan DetectionEvent, error) {
	parts := strings.Fields(d.command)
	if len(parts) == 0 {
		return nil, errors.New("HOTWORD_COMMAND envvar must be populated")
	}

	cmd := exec.CommandContext(ctx, parts[0], parts[1:]...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	if err := cmd.Start(); err != nil {
		return nil, err
	}
	d.cmd = cmd
	d.log.Sugar().Infow("Hotword engine started", "command", parts[0], "pid", cmd.Process.Pid)

	events := make(chan DetectionEvent)
	go func() {
		defer close(events)

		scanner := bufio.NewScanner(stdout)
		for scanner.Scan() {
			index, ok := parseDetection(scanner.Text())
			if !ok {
				continue
			}
			select {
			case events <- DetectionEvent{KeywordIndex: index, At: time.Now().UTC()}:
			case <-ctx.Done():
				return
			}
		}
	}()
	return events, nil
}

func (d *hotwordDetector) Stop() {
	if d.cmd != nil && d.cmd.Process != nil {
		_ = d.cmd.Process.Kill()
	}
}

func parseDetection(line string) (int, bool) {
	fields := strings.Fields(strings.TrimSpace(line))
	if len(fields) != 2 || !strings.EqualFold(fields[0], "detected") {
		return 0, false
	}
	index, err := strconv.Atoi(fields[1])
	if err != nil {
		return 0, false
	}
	return index, true
}

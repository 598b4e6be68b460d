package hostenv

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// ProcessEnumerator lists the pids of processes on this host that look like
// workers of this system. It is best-effort and host-local: it cannot see
// processes on other hosts or in other containers.
type ProcessEnumerator interface {
	Pids(ctx context.Context) ([]int, error)
}

// PS enumerates processes by shelling out to ps and filtering command lines.
// Match selects worker processes by substring; Exclude drops administrative
// tools sharing that substring (resque-web, for example).
type PS struct {
	Match   string
	Exclude string
}

// NewPS returns a PS enumerator with the resque naming convention.
func NewPS() *PS {
	return &PS{
		Match:   "resque",
		Exclude: "resque-web",
	}
}

// Pids returns the pids of matching processes.
func (p *PS) Pids(ctx context.Context) ([]int, error) {
	out, err := exec.CommandContext(ctx, "ps", "-eo", "pid,command").Output()
	if err != nil {
		return nil, fmt.Errorf("ps failed: %w", err)
	}

	return p.parse(out)
}

func (p *PS) parse(out []byte) ([]int, error) {
	var pids []int
	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		fields := strings.SplitN(line, " ", 2)
		if len(fields) != 2 {
			continue
		}

		command := fields[1]
		if !strings.Contains(command, p.Match) {
			continue
		}
		if p.Exclude != "" && strings.Contains(command, p.Exclude) {
			continue
		}

		pid, err := strconv.Atoi(fields[0])
		if err != nil {
			continue
		}
		pids = append(pids, pid)
	}

	return pids, scanner.Err()
}

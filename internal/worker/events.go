package worker

import (
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Player event types
const (
	// EventJoin records a player entering a world
	EventJoin = "join"
	// EventLeave records a player disconnecting
	EventLeave = "leave"
)

// PlayerEvent is one join or leave parsed from the server log.
type PlayerEvent struct {
	// Timestamp is the journal timestamp of the log line
	Timestamp string
	// UUID is the player's stable identifier
	UUID string
	// Name is the player's display name at event time
	Name string
	// Type is EventJoin or EventLeave
	Type string
	// World is the world joined; nil for leave events
	World *string
}

// Log line patterns emitted by the server. Joins carry the world and the
// player UUID in parentheses; leaves may repeat the name with a
// parenthesized suffix that must not be captured.
var (
	joinRe = regexp.MustCompile(
		`(\d{4}-\d{2}-\d{2}T\S+).*Adding player '([^']+)' to world '([^']+)' at location .+\(([a-f0-9-]+)\)`)
	leaveRe = regexp.MustCompile(
		`(\d{4}-\d{2}-\d{2}T\S+).*Removing player '([^']+?)(?:\s*\([^)]+\))?'.*\(([a-f0-9-]+)\)\s*$`)
	tpsRe        = regexp.MustCompile(`Setting TPS of world \w+ to (\d+)`)
	viewRadiusRe = regexp.MustCompile(`(?:Initial view radius is|View radius.*?to) (\d+)`)
)

// ParseEvents extracts player join/leave events from journal output, in
// log order.
func ParseEvents(output string) []PlayerEvent {
	var events []PlayerEvent

	for _, line := range strings.Split(output, "\n") {
		if m := joinRe.FindStringSubmatch(line); m != nil {
			world := m[3]
			events = append(events, PlayerEvent{
				Timestamp: m[1],
				Name:      m[2],
				World:     &world,
				UUID:      m[4],
				Type:      EventJoin,
			})
			continue
		}

		if m := leaveRe.FindStringSubmatch(line); m != nil {
			events = append(events, PlayerEvent{
				Timestamp: m[1],
				Name:      m[2],
				UUID:      m[3],
				Type:      EventLeave,
			})
		}
	}

	return events
}

// ParsePerfHints scans journal output newest-first for the most recent
// TPS and view radius announcements. Either may be nil when the server
// hasn't logged one recently.
func ParsePerfHints(output string) (tps, viewRadius *int) {
	lines := strings.Split(output, "\n")

	for i := len(lines) - 1; i >= 0; i-- {
		if tps == nil {
			if m := tpsRe.FindStringSubmatch(lines[i]); m != nil {
				if v, err := strconv.Atoi(m[1]); err == nil {
					tps = &v
				}
			}
		}
		if viewRadius == nil {
			if m := viewRadiusRe.FindStringSubmatch(lines[i]); m != nil {
				if v, err := strconv.Atoi(m[1]); err == nil {
					viewRadius = &v
				}
			}
		}
		if tps != nil && viewRadius != nil {
			break
		}
	}

	return tps, viewRadius
}

// Journal reads the server's systemd journal. The worker shells out to
// journalctl the same way the dashboard's original collector did; there
// is no direct journal API worth the dependency for two query shapes.
type Journal struct {
	// Unit is the systemd unit name
	Unit string

	// Timeout bounds each journalctl invocation
	Timeout time.Duration
}

// NewJournal creates a Journal for the given unit.
func NewJournal(unit string) *Journal {
	return &Journal{Unit: unit, Timeout: 30 * time.Second}
}

// Since returns journal output for the unit since the given time spec
// (an ISO timestamp or a journalctl phrase like "7 days ago").
func (j *Journal) Since(ctx context.Context, since string) (string, error) {
	return j.run(ctx, "-u", j.Unit, "--no-pager", "-o", "short-iso", "--since", since)
}

// Tail returns the last n journal lines for the unit.
func (j *Journal) Tail(ctx context.Context, n int) (string, error) {
	return j.run(ctx, "-u", j.Unit, "--no-pager", "-q", "-n", strconv.Itoa(n))
}

func (j *Journal) run(ctx context.Context, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, j.Timeout)
	defer cancel()

	out, err := exec.CommandContext(ctx, "journalctl", args...).Output()
	if err != nil {
		return "", fmt.Errorf("journalctl %s: %w", strings.Join(args, " "), err)
	}
	return string(out), nil
}

package harness

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"

	"dastgah/pkg/color"
	"dastgah/pkg/frame"
	"dastgah/pkg/machine"
)

// A trace is a line-based script of site declarations and events:
//
//	site 0x1000 3 5    declare an allocation site combining 3- and 5-word blocks
//	site 0x2000        declare a poll site
//	exec 0x1000        run the allocation site
//	poll 0x2000        run the poll site
//	signal 2           deliver a signal
//
// '#' starts a comment; blank lines are skipped.

// Trace is the parsed form: the descriptors to insert and the events to run.
type Trace struct {
	Sites  []*frame.Descriptor
	Events []machine.Event
}

// siteFrameSize is the size/flags word given to trace-declared sites. The
// frame layout itself is irrelevant to the replay; only the allocation bit
// matters.
const siteFrameSize = 0x10 | frame.AllocFlag

// ParseTrace scans a trace script. Errors carry the offending line number.
func ParseTrace(input string) (*Trace, error) {
	tr := &Trace{}
	seen := make(map[frame.Addr]bool)

	scanner := bufio.NewScanner(strings.NewReader(input))
	line := 0
	for scanner.Scan() {
		line++
		text := scanner.Text()
		if i := strings.IndexByte(text, '#'); i >= 0 {
			text = text[:i]
		}

		fields := strings.Fields(text)
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "site":
			d, err := parseSite(fields[1:])
			if err != nil {
				return nil, traceError(line, err)
			}
			if seen[d.Addr] {
				return nil, traceError(line, fmt.Errorf("duplicate site %#x", uintptr(d.Addr)))
			}
			seen[d.Addr] = true
			tr.Sites = append(tr.Sites, d)

		case "exec", "poll":
			if len(fields) != 2 {
				return nil, traceError(line, fmt.Errorf("%s takes one address", fields[0]))
			}
			addr, err := parseAddr(fields[1])
			if err != nil {
				return nil, traceError(line, err)
			}
			op := machine.OpExec
			if fields[0] == "poll" {
				op = machine.OpPoll
			}
			tr.Events = append(tr.Events, machine.Event{Op: op, Addr: addr})

		case "signal":
			if len(fields) != 2 {
				return nil, traceError(line, fmt.Errorf("signal takes one number"))
			}
			num, err := strconv.Atoi(fields[1])
			if err != nil {
				return nil, traceError(line, fmt.Errorf("bad signal number %q", fields[1]))
			}
			tr.Events = append(tr.Events, machine.Event{Op: machine.OpSignal, Num: num})

		default:
			return nil, traceError(line, fmt.Errorf("unknown directive %q", fields[0]))
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return tr, nil
}

// parseSite builds a descriptor from "site <addr> [words...]". No word
// sizes means a poll site.
func parseSite(fields []string) (*frame.Descriptor, error) {
	if len(fields) < 1 {
		return nil, fmt.Errorf("site takes an address")
	}
	addr, err := parseAddr(fields[0])
	if err != nil {
		return nil, err
	}

	d := &frame.Descriptor{Addr: addr, FrameSize: siteFrameSize}
	for _, f := range fields[1:] {
		words, err := strconv.Atoi(f)
		if err != nil {
			return nil, fmt.Errorf("bad word count %q", f)
		}
		b, ok := frame.EncodeAllocLen(words)
		if !ok {
			return nil, fmt.Errorf("word count %d not encodable", words)
		}
		d.AllocLens = append(d.AllocLens, b)
	}
	return d, nil
}

func parseAddr(s string) (frame.Addr, error) {
	v, err := strconv.ParseUint(s, 0, 64)
	if err != nil {
		return 0, fmt.Errorf("bad address %q", s)
	}
	return frame.Addr(v), nil
}

func traceError(line int, err error) error {
	return fmt.Errorf("%s at %s: %w", color.RedText("Trace error"), color.YellowText(fmt.Sprintf("Line: %d", line)), err)
}

package speech

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
	"strings"

	"github.com/mansoorceksport/fitcoach/internal/domain"
)

// defaultWPM is the speaking rate of both say and espeak at rate 1
const defaultWPM = 175

// CommandEngine speaks through a local synthesis command: say on macOS,
// espeak-ng or espeak elsewhere
type CommandEngine struct {
	binary string
}

// NewCommandEngine finds a synthesis command on PATH
func NewCommandEngine() (*CommandEngine, error) {
	for _, name := range []string{"say", "espeak-ng", "espeak"} {
		if path, err := exec.LookPath(name); err == nil {
			return &CommandEngine{binary: path}, nil
		}
	}
	return nil, fmt.Errorf("%w: no speech synthesis command found (say, espeak-ng, espeak)", domain.ErrUnsupportedCapability)
}

func (e *CommandEngine) isSay() bool {
	return strings.HasSuffix(e.binary, "say")
}

// Voices lists the voices the command offers
func (e *CommandEngine) Voices(ctx context.Context) ([]Voice, error) {
	var args []string
	if e.isSay() {
		args = []string{"-v", "?"}
	} else {
		args = []string{"--voices"}
	}

	out, err := exec.CommandContext(ctx, e.binary, args...).Output()
	if err != nil {
		return nil, fmt.Errorf("failed to list voices: %w", err)
	}
	if e.isSay() {
		return parseSayVoices(out), nil
	}
	return parseEspeakVoices(out), nil
}

// Speak runs the command and waits for it. Cancelling ctx kills the process.
func (e *CommandEngine) Speak(ctx context.Context, text string, voice *Voice, opts Options) error {
	rate := opts.Rate
	if rate <= 0 {
		rate = 1
	}
	wpm := strconv.Itoa(int(defaultWPM * rate))

	var args []string
	if e.isSay() {
		args = []string{"-r", wpm}
		if voice != nil {
			args = append(args, "-v", voice.Name)
		}
	} else {
		args = []string{"-s", wpm}
		if voice != nil {
			args = append(args, "-v", voice.Lang)
		}
		if opts.Volume > 0 {
			args = append(args, "-a", strconv.Itoa(int(100*opts.Volume)))
		}
		if opts.Pitch > 0 {
			args = append(args, "-p", strconv.Itoa(int(50*opts.Pitch)))
		}
	}
	args = append(args, "--", text)

	cmd := exec.CommandContext(ctx, e.binary, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("speech command failed: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return nil
}

// "Samantha (Enhanced)  en_US    # Hello! My name is Samantha."
var sayVoiceLine = regexp.MustCompile(`^(.+?)\s+([a-z]{2}[_-][A-Za-z0-9]+)\s+#`)

func parseSayVoices(out []byte) []Voice {
	var voices []Voice
	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		m := sayVoiceLine.FindStringSubmatch(sc.Text())
		if m == nil {
			continue
		}
		voices = append(voices, Voice{Name: strings.TrimSpace(m[1]), Lang: m[2]})
	}
	return voices
}

// " 5  en-gb          --/M      English_(Great_Britain) gmw/en"
func parseEspeakVoices(out []byte) []Voice {
	var voices []Voice
	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) < 4 || fields[0] == "Pty" {
			continue
		}
		voices = append(voices, Voice{Name: fields[3], Lang: fields[1]})
	}
	return voices
}

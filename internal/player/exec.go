package player

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"path/filepath"
	"strconv"
)

// CommandChime plays a sound file through an external player such as
// paplay, ffplay or afplay.
type CommandChime struct {
	Command string
	File    string
}

// Play runs the chime command at volume, a value in [0,1].
func (c *CommandChime) Play(ctx context.Context, volume float64) error {
	if _, err := exec.LookPath(c.Command); err != nil {
		return fmt.Errorf("%s not available: %w", c.Command, err)
	}
	cmd := exec.CommandContext(ctx, c.Command, chimeArgs(c.Command, c.File, volume)...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s failed: %w (output: %s)", c.Command, err, string(out))
	}
	return nil
}

func chimeArgs(command, file string, volume float64) []string {
	switch filepath.Base(command) {
	case "paplay":
		// paplay volume is linear, 65536 = 100%
		return []string{"--volume=" + strconv.Itoa(int(volume*65536)), file}
	case "ffplay":
		return []string{"-nodisp", "-autoexit", "-loglevel", "quiet", "-volume", strconv.Itoa(int(volume * 100)), file}
	case "afplay":
		return []string{"-v", strconv.FormatFloat(volume, 'f', 2, 64), file}
	default:
		return []string{file}
	}
}

// CommandSpeaker speaks text through an external synthesizer such as
// espeak-ng or say.
type CommandSpeaker struct {
	Command string
	Voice   string
}

// Speak runs the synthesizer on text at volume, a value in [0,1].
func (s *CommandSpeaker) Speak(ctx context.Context, text string, volume float64) error {
	if _, err := exec.LookPath(s.Command); err != nil {
		return fmt.Errorf("%s not available: %w", s.Command, err)
	}
	cmd := exec.CommandContext(ctx, s.Command, speechArgs(s.Command, s.Voice, text, volume)...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s failed: %w (output: %s)", s.Command, err, string(out))
	}
	return nil
}

func speechArgs(command, voice, text string, volume float64) []string {
	var args []string
	switch filepath.Base(command) {
	case "espeak-ng", "espeak":
		if voice != "" {
			args = append(args, "-v", voice)
		}
		// amplitude 0-200, 100 is the engine default
		args = append(args, "-a", strconv.Itoa(int(volume*200)))
	case "say":
		if voice != "" {
			args = append(args, "-v", voice)
		}
	}
	return append(args, text)
}

// NopChime skips the chime.
type NopChime struct{}

func (NopChime) Play(context.Context, float64) error { return nil }

// WriterSpeaker prints announcements instead of speaking them.
type WriterSpeaker struct {
	W io.Writer
}

func (s *WriterSpeaker) Speak(_ context.Context, text string, volume float64) error {
	_, err := fmt.Fprintf(s.W, "[%.2f] %s\n", volume, text)
	return err
}

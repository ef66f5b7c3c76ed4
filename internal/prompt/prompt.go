// Package prompt implements the interactive dialog surface using the zenity
// command line tool, plus the end-of-pause chime.
package prompt

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

const dialogTitle = "break reminder"

// Zenity shows break dialogs by shelling out to zenity. All methods block
// until the dialog is dismissed.
type Zenity struct {
	chimeSound string
}

// New returns a Zenity prompter that plays chimeSound when the pause ends.
func New(chimeSound string) *Zenity {
	return &Zenity{chimeSound: chimeSound}
}

// run executes a zenity invocation and returns its stdout. A non-zero exit
// (the user pressed Cancel or closed the dialog) is not an error; the
// captured output is used as-is.
func run(args ...string) (string, error) {
	out, err := exec.Command("zenity", args...).Output()
	var exitErr *exec.ExitError
	if err != nil && !errors.As(err, &exitErr) {
		return "", fmt.Errorf("running zenity: %w", err)
	}
	return strings.TrimSpace(string(out)), nil
}

// AskText shows a free-form entry dialog and returns the user's answer.
func (z *Zenity) AskText(promptText string) (string, error) {
	return run("--entry", "--text="+promptText, "--title="+dialogTitle)
}

// AskCompletions shows one entry field per raised reminder; typing "done"
// into a field confirms that reminder as completed.
func (z *Zenity) AskCompletions(labels []string) ([]string, error) {
	args := []string{
		"--forms",
		"--text=Which tasks have been completed? Type 'done' to indicate completion.",
		"--title=" + dialogTitle,
	}
	for _, label := range labels {
		args = append(args, "--add-entry="+label)
	}

	out, err := run(args...)
	if err != nil {
		return nil, err
	}

	fields := strings.Split(out, "|")
	confirmed := []string{}
	for i, label := range labels {
		if i >= len(fields) {
			break
		}
		if strings.EqualFold(strings.TrimSpace(fields[i]), "done") {
			confirmed = append(confirmed, label)
		}
	}
	return confirmed, nil
}

// Notify shows an informational dialog and waits for it to be dismissed.
func (z *Zenity) Notify(message string) error {
	_, err := run("--info", "--text="+message, "--title="+dialogTitle)
	return err
}

// SignalPauseEnd plays the chime marking the end of the look-away pause.
func (z *Zenity) SignalPauseEnd() error {
	if err := exec.Command("ogg123", z.chimeSound).Run(); err != nil {
		return fmt.Errorf("playing chime %s: %w", z.chimeSound, err)
	}
	return nil
}

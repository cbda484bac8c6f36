package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dmitrijs2005/secretkey/internal/client/models"
	"github.com/dmitrijs2005/secretkey/internal/common"
	"golang.org/x/term"
)

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

// GetSimpleText prints a prompt to w and reads a single line of input from
// reader. The line is trimmed. If EOF occurs after some input was read, the
// partial line is returned.
//
// Example prompt format:
//
//	Prompt text
//	> _
func GetSimpleText(reader *bufio.Reader, prompt string, w io.Writer) (string, error) {
	if _, err := fmt.Fprint(w, prompt+"\n> "); err != nil {
		return "", err
	}
	line, err := reader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && len(line) > 0 {
			return strings.TrimSpace(line), nil
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// GetPassword prints a prompt to w and reads a password from the terminal
// without echo. The caller should wipe the returned slice.
func GetPassword(prompt string, w io.Writer) ([]byte, error) {
	if _, err := fmt.Fprint(w, prompt+": "); err != nil {
		return nil, err
	}
	pw, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(w)
	if err != nil {
		return nil, err
	}
	return pw, nil
}

// Confirm asks a yes/no question. Anything but y or yes is a no.
func Confirm(reader *bufio.Reader, prompt string, w io.Writer) (bool, error) {
	answer, err := GetSimpleText(reader, prompt+" [y/N]", w)
	if err != nil {
		return false, err
	}
	switch strings.ToLower(answer) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

// getFields prompts for the four record fields. When current is non-nil an
// empty answer keeps its value, which is shown in brackets.
func (a *App) getFields(current *models.Fields) (models.Fields, error) {
	var f models.Fields
	if current != nil {
		f = *current
	}

	ask := func(label string, dst *string) error {
		prompt := label
		if current != nil {
			prompt = fmt.Sprintf("%s [%s]", label, *dst)
		}
		v, err := getSimpleText(a.reader, prompt, a.out)
		if err != nil {
			return err
		}
		if v != "" || current == nil {
			*dst = v
		}
		return nil
	}

	if err := ask("Name", &f.Name); err != nil {
		return f, err
	}
	if err := ask("URL", &f.URL); err != nil {
		return f, err
	}
	if err := ask("Username", &f.Username); err != nil {
		return f, err
	}

	prompt := "Password"
	if current != nil {
		prompt = "Password (empty keeps the current one)"
	}
	pw, err := getPassword(prompt, a.out)
	if err != nil {
		return f, err
	}
	if len(pw) > 0 || current == nil {
		f.Password = string(pw)
	}
	common.WipeByteArray(pw)
	return f, nil
}

package cmd

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pshebel/lazer/internal/draft"
	"github.com/pshebel/lazer/internal/wizard"
)

// terminalPrompter walks the selection steps on a plain text terminal.
// Each step prints its numbered candidates and reads one line: a number
// picks, "b" steps back, "c" cancels the review.
type terminalPrompter struct {
	in  *bufio.Reader
	out io.Writer
}

func newTerminalPrompter(in io.Reader, out io.Writer) *terminalPrompter {
	return &terminalPrompter{in: bufio.NewReader(in), out: out}
}

func (p *terminalPrompter) SelectVehicle(candidates []draft.Vehicle) (wizard.Selection, error) {
	labels := make([]string, len(candidates))
	for i, v := range candidates {
		labels[i] = vehicleLabel(v)
	}
	return p.choose("Which vehicle is the violator?", labels)
}

func (p *terminalPrompter) SelectAddress(candidates []string) (wizard.Selection, error) {
	return p.choose("Where did the violation occur?", candidates)
}

func (p *terminalPrompter) SelectViolationType(options []string) (wizard.Selection, error) {
	return p.choose("What violation did you observe?", options)
}

func (p *terminalPrompter) choose(question string, options []string) (wizard.Selection, error) {
	fmt.Fprintln(p.out)
	fmt.Fprintln(p.out, question)
	for i, opt := range options {
		fmt.Fprintf(p.out, "  %d) %s\n", i+1, opt)
	}

	for {
		fmt.Fprint(p.out, "Choice [number, b=back, c=cancel]: ")
		line, err := p.in.ReadString('\n')
		if err != nil {
			return wizard.Selection{}, fmt.Errorf("failed to read selection: %w", err)
		}

		switch answer := strings.ToLower(strings.TrimSpace(line)); answer {
		case "b":
			return wizard.Selection{Role: wizard.RoleBack}, nil
		case "c", "q":
			return wizard.Selection{Role: wizard.RoleCancel}, nil
		default:
			n, err := strconv.Atoi(answer)
			if err != nil || n < 1 || n > len(options) {
				fmt.Fprintf(p.out, "Enter a number between 1 and %d.\n", len(options))
				continue
			}
			return wizard.Selection{Choice: n - 1, Role: wizard.RoleSave}, nil
		}
	}
}

func vehicleLabel(v draft.Vehicle) string {
	parts := []string{}
	if len(v.Vehicle.Props.MakeModel) > 0 {
		mm := v.Vehicle.Props.MakeModel[0]
		parts = append(parts, fmt.Sprintf("%s %s", mm.Make, mm.Model))
	}
	if len(v.Vehicle.Props.Color) > 0 {
		parts = append(parts, v.Vehicle.Props.Color[0].Value)
	}
	if v.Vehicle.Type != "" {
		parts = append(parts, v.Vehicle.Type)
	}
	if v.Plate != nil && len(v.Plate.Props.Plate) > 0 {
		parts = append(parts, "plate "+strings.ToUpper(v.Plate.Props.Plate[0].Value))
	}
	if len(parts) == 0 {
		return "unidentified vehicle"
	}
	return strings.Join(parts, ", ")
}

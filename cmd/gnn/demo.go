package main

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	lgtable "github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
	"github.com/gomlx/exceptions"
)

var (
	titleStyle        = lipgloss.NewStyle().Bold(true).MarginBottom(1)
	normalStyle       = lipgloss.NewStyle().Padding(0, 1)
	rightAlignedStyle = lipgloss.NewStyle().Align(lipgloss.Right).Padding(0, 1)
	headerStyle       = lipgloss.NewStyle().Padding(0, 1).Bold(true).Reverse(true)
	tableBorderColor  = "#705090"
)

func runDemo(opts options) error {
	p, err := newPipeline(opts)
	if err != nil {
		return err
	}

	var stages []stage
	err = exceptions.TryCatch[error](func() { stages = p.forward() })
	if err != nil {
		return err
	}

	table := lgtable.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color(tableBorderColor))).
		Headers("stage", "shape", "memory").
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == lgtable.HeaderRow:
				return headerStyle
			case col == 0:
				return rightAlignedStyle
			default:
				return normalStyle
			}
		})
	for _, s := range stages {
		table.Row(s.name, s.out.Shape().String(), humanize.Bytes(uint64(s.out.Raw().ByteSize())))
	}

	title := fmt.Sprintf("%d graphs × %d nodes, %s GCN, %d weights",
		opts.batch, opts.nodes, gcnKind(opts.cheb), p.parameterCount())
	fmt.Println(titleStyle.Render(title))
	fmt.Println(table.Render())

	readout := stages[len(stages)-1].out
	for b := 0; b < opts.batch; b++ {
		fmt.Printf("graph %d: %v\n", b, readout.Data()[b*readout.Shape()[1]:(b+1)*readout.Shape()[1]])
	}
	return nil
}

func gcnKind(cheb bool) string {
	if cheb {
		return "Chebyshev"
	}
	return "single-hop"
}

// parameterCount returns the number of trainable scalars in the pipeline.
func (p *pipeline) parameterCount() int {
	var n int
	for _, w := range append(p.gcn.Parameters(), p.diff.Parameters()...) {
		n += w.Shape().NumElements()
	}
	return n
}

package executor

import (
	"bytes"
	"fmt"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// FormatStatus renders a StatusSnapshot as a pretty table for CLI/log
// consumption.
func FormatStatus(snapshot StatusSnapshot) string {
	buf := &bytes.Buffer{}

	phaseColor := color.New(color.FgGreen, color.Bold)
	if snapshot.StopSignal != StopNone {
		phaseColor = color.New(color.FgRed, color.Bold)
	}

	fmt.Fprintf(buf, "Phase: %s\n", phaseColor.Sprint(snapshot.Phase))
	if snapshot.UUID != "" {
		fmt.Fprintf(buf, "UUID: %s\n", snapshot.UUID)
	}
	if snapshot.StopSignal != StopNone {
		fmt.Fprintf(buf, "Stop signal: %s (by user: %v)\n", snapshot.StopSignal, snapshot.StoppedByUser)
	}
	if snapshot.Reason != "" {
		fmt.Fprintf(buf, "Reason: %s\n", snapshot.Reason)
	}

	configBuilder := tablewriter.NewConfigBuilder().WithRowAutoWrap(tw.WrapNone)
	for i := 0; i < 7; i++ {
		configBuilder = configBuilder.ForColumn(i).WithAlignment(tw.AlignLeft).Build()
	}

	table := tablewriter.NewTable(buf,
		tablewriter.WithConfig(configBuilder.Build()),
		tablewriter.WithRendition(tw.Rendition{
			Borders: tw.Border{
				Left:   tw.Off,
				Top:    tw.On,
				Right:  tw.Off,
				Bottom: tw.On,
			},
		}),
	)

	table.Header(
		"Task Type", "Cap", "Pending", "In Progress", "Completed", "Aborted", "Dead",
	)

	rows := []struct {
		name string
		cap  int32
		c    TaskCounts
	}{
		{"inter-broker", snapshot.InterBrokerCap, snapshot.InterBroker},
		{"intra-broker", snapshot.IntraBrokerCap, snapshot.IntraBroker},
		{"leader", snapshot.LeaderCap, snapshot.Leader},
	}

	for _, r := range rows {
		table.Append([]string{
			r.name,
			fmt.Sprintf("%d", r.cap),
			fmt.Sprintf("%d", r.c.Pending),
			fmt.Sprintf("%d", r.c.InProgress+r.c.Aborting),
			fmt.Sprintf("%d", r.c.Completed),
			fmt.Sprintf("%d", r.c.Aborted),
			fmt.Sprintf("%d", r.c.Dead),
		})
	}

	table.Render()

	if snapshot.AdjusterEnabled {
		fmt.Fprintf(buf, "Concurrency adjuster: enabled\n")
	}

	return buf.String()
}

package cli

import (
	"context"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/segmentio/topicctl/pkg/admin"
	"github.com/segmentio/topicctl/pkg/apply"
)

const (
	spinnerCharSet  = 36
	spinnerDuration = 200 * time.Millisecond
)

// CLIRunner wraps an admin client with some conveniences (spinner, consistent
// printing) used by the apply and rebalance subcommands.
type CLIRunner struct {
	adminClient admin.Client
	printer     func(f string, a ...interface{})
	spinnerObj  *spinner.Spinner
}

// NewCLIRunner creates and returns a new CLIRunner instance.
func NewCLIRunner(
	adminClient admin.Client,
	printer func(f string, a ...interface{}),
	showSpinner bool,
) *CLIRunner {
	var spinnerObj *spinner.Spinner

	if showSpinner {
		spinnerObj = spinner.New(
			spinner.CharSets[spinnerCharSet],
			spinnerDuration,
			spinner.WithWriter(os.Stderr),
			spinner.WithHiddenCursor(true),
		)
		spinnerObj.Prefix = "Loading: "
	}

	return &CLIRunner{
		adminClient: adminClient,
		printer:     printer,
		spinnerObj:  spinnerObj,
	}
}

// ApplyTopic runs an apply on a single topic, which includes config, partition
// count, placement, leadership, and (optionally) rebalance updates.
func (c *CLIRunner) ApplyTopic(
	ctx context.Context,
	applierConfig apply.TopicApplierConfig,
) error {
	applier, err := apply.NewTopicApplier(
		ctx,
		c.adminClient,
		applierConfig,
	)
	if err != nil {
		return err
	}

	c.printer(
		"Starting apply for topic %s in environment %s, cluster %s",
		applierConfig.TopicConfig.Meta.Name,
		applierConfig.TopicConfig.Meta.Environment,
		applierConfig.TopicConfig.Meta.Cluster,
	)

	c.startSpinner()
	err = applier.Apply(ctx)
	c.stopSpinner()
	if err != nil {
		return err
	}

	c.printer("Apply completed successfully!")
	return nil
}

func (c *CLIRunner) startSpinner() {
	if c.spinnerObj != nil {
		c.spinnerObj.Start()
	}
}

func (c *CLIRunner) stopSpinner() {
	if c.spinnerObj != nil && c.spinnerObj.Active() {
		c.spinnerObj.Stop()
	}
}

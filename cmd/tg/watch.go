package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/spf13/cobra"

	"github.com/meulenbelt/tendergraph/internal/events"
	"github.com/meulenbelt/tendergraph/internal/model"
)

var watchCmd = &cobra.Command{
	Use:     "watch <project>",
	Short:   "Watch a project's graph and print nodes as they change",
	GroupID: "graph",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		project := args[0]
		interval, _ := cmd.Flags().GetDuration("interval")
		once, _ := cmd.Flags().GetBool("once")

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		seen := make(map[string]time.Time)

		// Initial query establishes the baseline and prints everything once.
		if err := queryAndPrint(ctx, project, seen); err != nil {
			return err
		}
		if once {
			return nil
		}

		// Event-driven when a NATS URL is configured, polling otherwise.
		natsURL := os.Getenv("TENDERGRAPH_NATS_URL")
		if natsURL != "" {
			return watchNATS(ctx, natsURL, project, seen)
		}
		return watchPoll(ctx, interval, project, seen)
	},
}

// watchNATS re-queries on published graph events, debounced so an import
// burst produces one refresh.
func watchNATS(ctx context.Context, natsURL, project string, seen map[string]time.Time) error {
	// reconnectCh receives a signal when the NATS client reconnects after
	// a disconnect, so we can immediately re-query for missed events.
	reconnectCh := make(chan struct{}, 1)

	sub, err := events.NewNATSSubscriber(natsURL,
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			log.Printf("nats: disconnected: %v", err)
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			log.Printf("nats: reconnected")
			select {
			case reconnectCh <- struct{}{}:
			default:
			}
		}),
	)
	if err != nil {
		return fmt.Errorf("connecting to NATS: %w", err)
	}
	defer sub.Close()

	ch, cancel, err := sub.Subscribe("tendergraph.>")
	if err != nil {
		return fmt.Errorf("subscribing to events: %w", err)
	}
	defer cancel()

	debounce := time.NewTimer(0)
	debounce.Stop()
	// Drain the timer channel in case it fired between NewTimer and Stop.
	select {
	case <-debounce.C:
	default:
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case _, ok := <-ch:
			if !ok {
				return nil
			}
			debounce.Reset(200 * time.Millisecond)
		case <-reconnectCh:
			debounce.Reset(0) // immediate re-query
		case <-debounce.C:
			if err := queryAndPrint(ctx, project, seen); err != nil {
				return err
			}
		}
	}
}

// watchPoll re-queries at the given interval.
func watchPoll(ctx context.Context, interval time.Duration, project string, seen map[string]time.Time) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(interval):
		}
		if err := queryAndPrint(ctx, project, seen); err != nil {
			return err
		}
	}
}

// queryAndPrint fetches the graph, diffs against the seen map, and prints
// any changed nodes.
func queryAndPrint(ctx context.Context, project string, seen map[string]time.Time) error {
	resp, err := graphClient.FetchGraph(ctx, project)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	changed := diffNodes(resp.Nodes, seen)
	if len(changed) > 0 {
		if jsonOutput {
			printJSON(changed)
		} else {
			printNodeListTable(changed)
		}
	}
	return nil
}

// diffNodes compares nodes against the seen map and returns those that are
// new or have a different updated_at timestamp. It updates seen in place.
func diffNodes(nodes []*model.Node, seen map[string]time.Time) []*model.Node {
	var changed []*model.Node
	for _, n := range nodes {
		prev, ok := seen[n.ID]
		if !ok || !n.UpdatedAt.Equal(prev) {
			changed = append(changed, n)
		}
		seen[n.ID] = n.UpdatedAt
	}
	return changed
}

func init() {
	watchCmd.Flags().Duration("interval", 5*time.Second, "polling interval")
	watchCmd.Flags().Bool("once", false, "exit after the first query")
}

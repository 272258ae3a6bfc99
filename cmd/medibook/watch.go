package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/garrettladley/medibook/internal/notification"
	"github.com/garrettladley/medibook/internal/xsync"
)

func watchCmd() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Print notifications as they arrive",
		Long:  "Runs the synchronizer without the TUI and prints each new notification on its own line.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			var logOut io.Writer = io.Discard
			if verbose {
				logOut = os.Stderr
			}

			a, err := newApp(ctx, logOut)
			if err != nil {
				return err
			}
			defer a.close()

			states, stopStates := a.sync.Subscribe()
			defer stopStates()
			errs, stopErrs := a.sync.Errors()
			defer stopErrs()

			stop := a.sync.Start(ctx)
			defer stop()

			out := cmd.OutOrStdout()
			g, gctx := errgroup.WithContext(ctx)

			g.Go(func() error {
				seen := make(map[string]struct{})
				for {
					select {
					case <-gctx.Done():
						return nil
					case st, ok := <-states:
						if !ok {
							return nil
						}
						printNew(out, st, seen)
					}
				}
			})

			g.Go(func() error {
				for {
					select {
					case <-gctx.Done():
						return nil
					case err, ok := <-errs:
						if !ok {
							return nil
						}
						if errors.Is(err, xsync.ErrCacheUnavailable) || verbose {
							_, _ = fmt.Fprintln(cmd.ErrOrStderr(), "warning:", err)
						}
					}
				}
			})

			return g.Wait()
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "log sync activity to stderr")
	return cmd
}

// printNew writes notifications not printed before, oldest first.
func printNew(w io.Writer, st xsync.State, seen map[string]struct{}) {
	var fresh []notification.Notification
	for _, n := range st.Notifications {
		if _, ok := seen[n.ID]; ok {
			continue
		}
		seen[n.ID] = struct{}{}
		fresh = append(fresh, n)
	}

	for i := len(fresh) - 1; i >= 0; i-- {
		n := fresh[i]
		marker := "*"
		if n.Read {
			marker = " "
		}
		_, _ = fmt.Fprintf(w, "%s %s [%s] %s", marker, n.CreatedAt.Local().Format(time.DateTime), n.Kind, n.Title)
		if n.Body != "" {
			_, _ = fmt.Fprintf(w, ": %s", n.Body)
		}
		_, _ = fmt.Fprintln(w)
	}
}

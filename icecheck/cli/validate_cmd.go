package cli

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	ierrors "github.com/twitter/ice/common/errors"
)

type validateCmd struct {
	keepGoing bool
}

func (c *validateCmd) registerFlags() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Installs --config and resolves every binding in it",
		Args:  cobra.NoArgs,
	}
	cmd.Flags().BoolVar(&c.keepGoing, "keep-going", false, "report every failing binding, not just the first")
	return cmd
}

func (c *validateCmd) run(cl *simpleCLIClient, cmd *cobra.Command, args []string) error {
	d, err := cl.directives()
	if err != nil {
		return err
	}
	ctr, err := cl.container(d)
	if err != nil {
		return err
	}

	var first error
	failed := 0
	for _, key := range d.Keys() {
		if _, err := ctr.Resolve(key.Type, key.Name); err != nil {
			failed++
			fmt.Fprintf(cl.out, "FAIL %v: %v\n", key, err)
			if first == nil {
				first = ierrors.NewError(errors.Wrapf(err, "resolving %v", key), exitCodeFor(err))
			}
			if !c.keepGoing {
				break
			}
			continue
		}
		fmt.Fprintf(cl.out, "ok   %v\n", key)
	}
	if first == nil {
		fmt.Fprintf(cl.out, "%d bindings resolved\n", d.Len())
	} else {
		fmt.Fprintf(cl.out, "%d of %d bindings failed\n", failed, d.Len())
	}
	return cl.done(ctr, first)
}

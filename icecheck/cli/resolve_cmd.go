package cli

import (
	"fmt"

	"github.com/davecgh/go-spew/spew"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	ierrors "github.com/twitter/ice/common/errors"
)

type resolveCmd struct {
	dump bool
}

func (c *resolveCmd) registerFlags() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve <type> [name]",
		Short: "Resolves one type from the container built from --config",
		Args:  cobra.RangeArgs(1, 2),
	}
	cmd.Flags().BoolVar(&c.dump, "dump", false, "dump the resolved object graph")
	return cmd
}

func (c *resolveCmd) run(cl *simpleCLIClient, cmd *cobra.Command, args []string) error {
	t, err := cl.env.Catalog.Lookup(args[0])
	if err != nil {
		return ierrors.NewError(err, ierrors.UsageExitCode)
	}
	name := ""
	if len(args) > 1 {
		name = args[1]
	}

	d, err := cl.directives()
	if err != nil {
		return err
	}
	ctr, err := cl.container(d)
	if err != nil {
		return err
	}
	v, err := ctr.Resolve(t, name)
	if err != nil {
		return cl.done(ctr, ierrors.NewError(errors.Wrapf(err, "resolving %v", args[0]), exitCodeFor(err)))
	}
	if c.dump {
		cfg := spew.ConfigState{Indent: "  ", DisablePointerAddresses: true, DisableCapacities: true, SortKeys: true}
		cfg.Fdump(cl.out, v)
	} else {
		fmt.Fprintf(cl.out, "%T\n", v)
	}
	return cl.done(ctr, nil)
}

package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

type typesCmd struct{}

func (c *typesCmd) registerFlags() *cobra.Command {
	return &cobra.Command{
		Use:   "types",
		Short: "Lists the type names a config may use",
		Args:  cobra.NoArgs,
	}
}

func (c *typesCmd) run(cl *simpleCLIClient, cmd *cobra.Command, args []string) error {
	names := cl.env.Catalog.Names()
	switch cl.format {
	case "json":
		b, err := json.MarshalIndent(names, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cl.out, string(b))
	case "yaml":
		b, err := yaml.Marshal(names)
		if err != nil {
			return err
		}
		fmt.Fprint(cl.out, string(b))
	default:
		for _, n := range names {
			fmt.Fprintln(cl.out, n)
		}
	}
	return nil
}

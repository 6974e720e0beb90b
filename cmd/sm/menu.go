package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/zulandar/stationmaster/internal/menu"
)

func newMenuCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "menu",
		Short: "Print the topic catalog",
		Long:  "Prints the menu tree the bot presents to clients, with the response-time target for each topic.",
		Run: func(cmd *cobra.Command, args []string) {
			printMenu(cmd.OutOrStdout(), menu.New().Root(), 0)
		},
	}
}

func printMenu(out io.Writer, n *menu.Node, depth int) {
	for _, child := range n.Children {
		for i := 0; i < depth; i++ {
			fmt.Fprint(out, "  ")
		}
		if child.IsLeaf() {
			fmt.Fprintf(out, "%s (%d год)\n", child.Key, child.SLAHours)
			continue
		}
		fmt.Fprintf(out, "%s\n", child.Key)
		printMenu(out, child, depth+1)
	}
}

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kbukum/dagkit/graph"
	"github.com/kbukum/dagkit/op"
	"github.com/kbukum/dagkit/persist"
	"github.com/kbukum/dagkit/plan"
)

var checkCmd = &cobra.Command{
	Use:   "check <document>",
	Short: "Validate a graph document and print its execution plan",
	Long: `Reads a JSON graph document, replays it with full validation
(unknown kinds, missing parameters, dangling edges, cycles), and prints
the stages a run would execute. Nothing is executed.`,
	Args: cobra.ExactArgs(1),
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	raw, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	doc, err := persist.Unmarshal(raw)
	if err != nil {
		return err
	}

	store := graph.NewStore(op.DefaultRegistry())
	for _, n := range doc.Nodes {
		if err := store.AddNode(n.ID, op.Kind(n.Type), n.Parameters); err != nil {
			return err
		}
	}
	for _, e := range doc.Edges {
		if err := store.AddEdge(e.Source, e.Target); err != nil {
			return err
		}
	}

	pl, err := plan.Resolve(store.Snapshot())
	if err != nil {
		return err
	}

	fmt.Printf("%s: %d nodes, %d edges, %d stages\n",
		args[0], store.NodeCount(), store.EdgeCount(), pl.NumStages())
	for i, stage := range pl.Stages() {
		fmt.Printf("  stage %d: %s\n", i+1, strings.Join(stage, ", "))
	}
	return nil
}

package main

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/decisionlab/dagraph/internal/adapter"
	"github.com/decisionlab/dagraph/internal/graph"
	"github.com/decisionlab/dagraph/internal/repository"
)

var (
	timeout     time.Duration
	filterArgs  []string
	propArgs    []string
	itemUUID    string
	vertexLabel string
)

// withRepository builds the adapter for the loaded configuration and hands
// a repository to fn.
func withRepository(cmd *cobra.Command, fn func(ctx context.Context, repo *repository.GraphRepository) error) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	factory, err := adapter.FromConfig(ctx, cfg, logger.Logger)
	if err != nil {
		return err
	}
	defer factory.Close()

	return fn(ctx, repository.NewGraphRepository(factory.Client, logger.Logger))
}

func printResult(cmd *cobra.Command, v any) error {
	return render(cmd.OutOrStdout(), outputFormat, v)
}

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Check connectivity to the configured graph backend",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		factory, err := adapter.FromConfig(ctx, cfg, logger.Logger)
		if err != nil {
			return err
		}
		defer factory.Close()

		client, err := factory.Client()
		if err != nil {
			return err
		}

		start := time.Now()
		err = graph.WithClient(ctx, client, func(c graph.DatabaseClient) error {
			_, err := c.ExecuteQuery(ctx, "g.V().limit(1).count()", nil)
			return err
		})
		if err != nil {
			return err
		}

		logger.WithFields(logrus.Fields{
			"environment": factory.Environment(),
			"latency":     time.Since(start),
		}).Info("graph backend reachable")
		fmt.Fprintf(cmd.OutOrStdout(), "✓ %s backend reachable (%s)\n", factory.Environment(), time.Since(start).Round(time.Millisecond))
		return nil
	},
}

var queryCmd = &cobra.Command{
	Use:   "query [traversal]",
	Short: "Submit a raw traversal and print the result rows",
	Example: `  dagraph query "g.V().hasLabel('project').valueMap(true)"
  dagraph query "g.V(vid).valueMap(true)" --bind vid=3f1c...`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		bindings, err := parseProperties(propArgs)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		factory, err := adapter.FromConfig(ctx, cfg, logger.Logger)
		if err != nil {
			return err
		}
		defer factory.Close()

		client, err := factory.Client()
		if err != nil {
			return err
		}

		var params map[string]any
		if len(bindings) > 0 {
			params = bindings.Map()
		}
		rows, err := graph.WithClientResult(ctx, client, func(c graph.DatabaseClient) ([]any, error) {
			return c.ExecuteQuery(ctx, args[0], params)
		})
		if err != nil {
			return err
		}
		return printResult(cmd, rows)
	},
}

var vertexCmd = &cobra.Command{
	Use:   "vertex",
	Short: "Read and modify vertices",
}

var vertexGetCmd = &cobra.Command{
	Use:   "get [uuid]",
	Short: "Show one vertex",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRepository(cmd, func(ctx context.Context, repo *repository.GraphRepository) error {
			v, err := repo.GetVertex(ctx, args[0])
			if err != nil {
				return err
			}
			return printResult(cmd, v)
		})
	},
}

var vertexListCmd = &cobra.Command{
	Use:   "list [label]",
	Short: "List vertices with a label",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		filter, err := parseProperties(filterArgs)
		if err != nil {
			return err
		}
		return withRepository(cmd, func(ctx context.Context, repo *repository.GraphRepository) error {
			vertices, err := repo.ListVertices(ctx, args[0], filter)
			if err != nil {
				return err
			}
			return printResult(cmd, vertices)
		})
	},
}

var vertexOutCmd = &cobra.Command{
	Use:   "out [uuid] [edge-label]",
	Short: "List neighbours over outgoing edges",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return listNeighbours(cmd, args, true)
	},
}

var vertexInCmd = &cobra.Command{
	Use:   "in [uuid] [edge-label]",
	Short: "List neighbours over incoming edges",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return listNeighbours(cmd, args, false)
	},
}

func listNeighbours(cmd *cobra.Command, args []string, out bool) error {
	filter, err := parseProperties(filterArgs)
	if err != nil {
		return err
	}
	return withRepository(cmd, func(ctx context.Context, repo *repository.GraphRepository) error {
		var vertices []graph.Vertex
		if out {
			vertices, err = repo.ListOut(ctx, args[0], args[1], vertexLabel, filter)
		} else {
			vertices, err = repo.ListIn(ctx, args[0], args[1], vertexLabel, filter)
		}
		if err != nil {
			return err
		}
		return printResult(cmd, vertices)
	})
}

var vertexCreateCmd = &cobra.Command{
	Use:   "create [label]",
	Short: "Create a vertex",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		props, err := parseProperties(propArgs)
		if err != nil {
			return err
		}
		return withRepository(cmd, func(ctx context.Context, repo *repository.GraphRepository) error {
			v, err := repo.CreateVertex(ctx, args[0], itemUUID, props)
			if err != nil {
				return err
			}
			return printResult(cmd, v)
		})
	},
}

var vertexUpdateCmd = &cobra.Command{
	Use:   "update [uuid]",
	Short: "Set properties on a vertex",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		props, err := parseProperties(propArgs)
		if err != nil {
			return err
		}
		return withRepository(cmd, func(ctx context.Context, repo *repository.GraphRepository) error {
			v, err := repo.UpdateVertex(ctx, args[0], props)
			if err != nil {
				return err
			}
			return printResult(cmd, v)
		})
	},
}

var vertexDeleteCmd = &cobra.Command{
	Use:   "delete [uuid]",
	Short: "Delete a vertex and its edges",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRepository(cmd, func(ctx context.Context, repo *repository.GraphRepository) error {
			return repo.DeleteVertex(ctx, args[0])
		})
	},
}

var edgeCmd = &cobra.Command{
	Use:   "edge",
	Short: "Read and modify edges",
}

var edgeGetCmd = &cobra.Command{
	Use:   "get [uuid]",
	Short: "Show one edge",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRepository(cmd, func(ctx context.Context, repo *repository.GraphRepository) error {
			e, err := repo.GetEdge(ctx, args[0])
			if err != nil {
				return err
			}
			return printResult(cmd, e)
		})
	},
}

var edgeListCmd = &cobra.Command{
	Use:   "list [label]",
	Short: "List edges with a label",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		filter, err := parseProperties(filterArgs)
		if err != nil {
			return err
		}
		return withRepository(cmd, func(ctx context.Context, repo *repository.GraphRepository) error {
			edges, err := repo.ListEdges(ctx, args[0], filter)
			if err != nil {
				return err
			}
			return printResult(cmd, edges)
		})
	},
}

var edgeProjectCmd = &cobra.Command{
	Use:   "project [project-uuid] [relation]",
	Short: "List relation edges among the items of a project",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRepository(cmd, func(ctx context.Context, repo *repository.GraphRepository) error {
			edges, err := repo.ListProjectEdges(ctx, args[0], args[1])
			if err != nil {
				return err
			}
			return printResult(cmd, edges)
		})
	},
}

var edgeOfCmd = &cobra.Command{
	Use:   "of [vertex-uuid] [label]",
	Short: "List the outgoing and incoming label edges of a vertex",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRepository(cmd, func(ctx context.Context, repo *repository.GraphRepository) error {
			out, err := repo.ListOutEdges(ctx, args[0], args[1])
			if err != nil {
				return err
			}
			in, err := repo.ListInEdges(ctx, args[0], args[1])
			if err != nil {
				return err
			}
			return printResult(cmd, map[string][]graph.Edge{"out": out, "in": in})
		})
	},
}

var edgeCreateCmd = &cobra.Command{
	Use:   "create [label] [out-uuid] [in-uuid]",
	Short: "Create an edge",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		props, err := parseProperties(propArgs)
		if err != nil {
			return err
		}
		return withRepository(cmd, func(ctx context.Context, repo *repository.GraphRepository) error {
			e, err := repo.CreateEdge(ctx, args[0], args[1], args[2], itemUUID, props)
			if err != nil {
				return err
			}
			return printResult(cmd, e)
		})
	},
}

var edgeUpdateCmd = &cobra.Command{
	Use:   "update [uuid]",
	Short: "Set properties on an edge",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		props, err := parseProperties(propArgs)
		if err != nil {
			return err
		}
		return withRepository(cmd, func(ctx context.Context, repo *repository.GraphRepository) error {
			e, err := repo.UpdateEdge(ctx, args[0], props)
			if err != nil {
				return err
			}
			return printResult(cmd, e)
		})
	},
}

var edgeDeleteCmd = &cobra.Command{
	Use:   "delete [uuid]",
	Short: "Delete an edge",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRepository(cmd, func(ctx context.Context, repo *repository.GraphRepository) error {
			return repo.DeleteEdge(ctx, args[0])
		})
	},
}

var edgeDropAllCmd = &cobra.Command{
	Use:   "drop-all [vertex-uuid]",
	Short: "Delete every edge touching a vertex",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRepository(cmd, func(ctx context.Context, repo *repository.GraphRepository) error {
			return repo.DeleteVertexEdges(ctx, args[0])
		})
	},
}

func init() {
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "overall time limit for one command")

	queryCmd.Flags().StringArrayVar(&propArgs, "bind", nil, "parameter binding key=value (repeatable)")

	for _, c := range []*cobra.Command{vertexListCmd, vertexOutCmd, vertexInCmd, edgeListCmd} {
		c.Flags().StringArrayVar(&filterArgs, "filter", nil, "property filter key=value (repeatable)")
	}
	for _, c := range []*cobra.Command{vertexOutCmd, vertexInCmd} {
		c.Flags().StringVar(&vertexLabel, "label", "", "only neighbours with this label")
	}
	for _, c := range []*cobra.Command{vertexCreateCmd, vertexUpdateCmd, edgeCreateCmd, edgeUpdateCmd} {
		c.Flags().StringArrayVar(&propArgs, "prop", nil, "property key=value (repeatable)")
	}
	for _, c := range []*cobra.Command{vertexCreateCmd, edgeCreateCmd} {
		c.Flags().StringVar(&itemUUID, "uuid", "", "uuid of the new item (default: generated)")
	}

	vertexCmd.AddCommand(vertexGetCmd, vertexListCmd, vertexOutCmd, vertexInCmd,
		vertexCreateCmd, vertexUpdateCmd, vertexDeleteCmd)
	edgeCmd.AddCommand(edgeGetCmd, edgeListCmd, edgeProjectCmd, edgeOfCmd,
		edgeCreateCmd, edgeUpdateCmd, edgeDeleteCmd, edgeDropAllCmd)
}

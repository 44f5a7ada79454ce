// Package dag orders the nodes of a dependency graph by level with Kahn's
// algorithm and reports cycles with a concrete path.
//
//	g := dag.New()
//	g.AddEdge("Config", "Service") // Service depends on Config
//	levels, err := dag.BuildLevels(g)
package dag

// Command dagkit runs the DAG execution engine.
//
// The engine holds a directed acyclic graph of typed operations over named
// float64 series and executes it in dependency order with bounded retry.
//
// Usage:
//
//	dagkit serve                 # start the HTTP API
//	dagkit check graph.json      # validate a document, print the plan
//	dagkit version               # print build information
//
// Configuration is resolved from config.yml, an optional .env file, and
// environment variables; see the config package for the search order.
package main

func main() {
	Execute()
}

// The travelagent command serves the travel planning agent, either over
// HTTP (POST /query plus a web form) or as an MCP server on stdio.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/effective-security/xlog"
	mcpserver "github.com/metoro-io/mcp-golang"
	"github.com/metoro-io/mcp-golang/transport/stdio"
	"github.com/tmc/langchaingo/llms"

	"github.com/globalguide/travelagent/httpserver"
	"github.com/globalguide/travelagent/llmfactory"
	"github.com/globalguide/travelagent/planner"
	"github.com/globalguide/travelagent/tools"
)

func main() {
	var (
		cfgPath  = flag.String("cfg", "llm.yaml", "path to the LLM providers config")
		provider = flag.String("provider", "", "LLM provider name from the config, defaults to the first provider")
		addr     = flag.String("addr", ":8080", "HTTP listen address")
		mcpMode  = flag.Bool("mcp", false, "serve over MCP on stdio instead of HTTP")
		debug    = flag.Bool("debug", false, "enable debug logging")
	)
	flag.Parse()

	// in MCP mode stdout carries the protocol, keep logs on stderr
	xlog.SetFormatter(xlog.NewStringFormatter(os.Stderr))
	if *debug {
		xlog.SetGlobalLogLevel(xlog.DEBUG)
	} else {
		xlog.SetGlobalLogLevel(xlog.INFO)
	}

	if err := run(*cfgPath, *provider, *addr, *mcpMode); err != nil {
		fmt.Fprintf(os.Stderr, "travelagent: %s\n", err.Error())
		os.Exit(1)
	}
}

func run(cfgPath, provider, addr string, mcpMode bool) error {
	f, err := llmfactory.Load(cfgPath)
	if err != nil {
		return err
	}

	var model llms.Model
	if provider != "" {
		model, err = f.ModelByName(provider)
	} else {
		model, err = f.DefaultModel()
	}
	if err != nil {
		return err
	}

	pl, err := planner.New(model)
	if err != nil {
		return err
	}

	if mcpMode {
		return serveMCP(pl)
	}

	return httpserver.New(pl).WithAddr(addr).Start()
}

// serveMCP registers every tool and the planner prompt on an MCP server
// bound to stdio, then blocks until the process is terminated.
func serveMCP(pl *planner.Planner) error {
	server := mcpserver.NewServer(stdio.NewStdioServerTransport())

	for _, tool := range pl.Tools() {
		mcpTool, ok := tool.(tools.IMCPTool)
		if !ok {
			continue
		}
		if err := mcpTool.RegisterMCP(server); err != nil {
			return err
		}
	}
	if err := pl.Assistant().RegisterMCP(server); err != nil {
		return err
	}

	if err := server.Serve(); err != nil {
		return err
	}
	select {}
}

// Command dagflow-demo wires a small tool-calling DAG — dispatch to the
// model, run whichever tool it picks, join the result back through the
// model — against the mock chat model, and prints the execution trace.
// It reproduces the original's openai_func_call.py walkthrough without
// requiring API keys or network access.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/dagflowio/dagflow/dagflow"
	"github.com/dagflowio/dagflow/dagflow/emit"
	"github.com/dagflowio/dagflow/llm"
	"github.com/dagflowio/dagflow/tools"
)

func main() {
	var (
		verbose    bool
		metricsURL string
		query      string
		trace      bool
	)

	root := &cobra.Command{
		Use:   "dagflow-demo",
		Short: "Run a tool-calling dagflow graph against a mock chat model",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), query, verbose, metricsURL, trace)
		},
	}
	root.Flags().BoolVarP(&verbose, "verbose", "v", false, "log batch_start/batch_finish events")
	root.Flags().StringVar(&metricsURL, "metrics-addr", "", "address to serve Prometheus /metrics on, e.g. :9090")
	root.Flags().StringVarP(&query, "query", "q", "What's the weather in Tokyo?", "user query to send to the model")
	root.Flags().BoolVar(&trace, "trace", false, "emit node events as OpenTelemetry spans instead of log lines")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, query string, verbose bool, metricsAddr string, trace bool) error {
	registry := prometheus.NewRegistry()
	metrics := dagflow.NewPrometheusMetrics(registry)
	if metricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
		go func() {
			_ = http.ListenAndServe(metricsAddr, mux) //nolint:gosec // demo CLI, not production-hardened
		}()
		fmt.Printf("serving metrics on %s/metrics\n", metricsAddr)
	}

	registryTools := tools.NewRegistry()
	registryTools.Register(tools.WeatherSpec, tools.NewWeatherTool())
	registryTools.Register(tools.EvaluateSpec, tools.EvaluateTool{})

	model := &llm.MockChatModel{
		Responses: []llm.ChatOut{
			{ToolCalls: []llm.ToolCall{{Name: "get_current_weather", Input: map[string]any{"location": "Tokyo"}}}},
			{Text: "It's 79F and humid in Tokyo right now."},
		},
	}

	b := dagflow.NewBuilder()

	b.MakeNode("dispatch", llm.NewChatTransform(model, "You may call get_current_weather or evaluate_expression."),
		dagflow.WithDesc("ask the model what to do"),
		dagflow.WithPrompt(query),
		dagflow.WithSpec(tools.WeatherSpec),
	)

	b.MakeNode("run_tool", func(prompt any, upstream map[string]any, state *dagflow.RunState) (any, error) {
		out, err := dagflow.Default(upstream)
		if err != nil {
			return nil, err
		}
		reply, ok := out.(llm.ChatOut)
		if !ok || len(reply.ToolCalls) == 0 {
			return reply, nil
		}
		return registryTools.Call(ctx, reply.ToolCalls[0])
	}, dagflow.WithDesc("dispatch the model's requested tool call"))

	b.MakeNode("join", llm.NewToolResultTransform(model, "Summarize the tool result for the user."),
		dagflow.WithDesc("send the tool result back to the model"),
		dagflow.WithOutputWhen(func(_ any, _ map[string]any, _ any, state dagflow.ExecState) bool {
			return state == dagflow.StateFinished
		}),
	)

	b.Connect("dispatch", "run_tool")
	b.Connect("run_tool", "join")

	emitter := emit.Emitter(emit.NewLogEmitter(os.Stdout, false))
	if trace {
		tp := sdktrace.NewTracerProvider()
		defer func() { _ = tp.Shutdown(ctx) }()
		otel.SetTracerProvider(tp)
		emitter = emit.NewOTelEmitter(otel.Tracer("dagflow-demo"))
	}

	result, err := b.Run(ctx, "demo-run", query,
		dagflow.WithEmitter(emitter),
		dagflow.WithVerbose(verbose),
		dagflow.WithMetrics(metrics),
	)
	if err != nil {
		return fmt.Errorf("dagflow-demo: %w", err)
	}

	fmt.Println()
	fmt.Println(b.Inspect())
	fmt.Printf("final output (from %s): %v\n", result.State.OutputByNodeID, result.State.Output)
	return nil
}

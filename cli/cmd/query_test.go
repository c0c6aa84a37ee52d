package cmd

import (
	"errors"
	"testing"
)

// TestQuery tests expressions over the resolved document.
func TestQuery(t *testing.T) {
	doc := `
		server { port = 8080, hosts = [a, b, c] }
		limits { body = 2MiB, timeout = 30s }
	`

	tests := []struct {
		name string
		expr string
		want string
	}{
		{name: "arith", expr: "server.port + 1", want: "8081"},
		{name: "len", expr: "len(server.hosts)", want: "3"},
		{name: "filter", expr: `filter(server.hosts, # != "b")`, want: `["a","c"]`},
		{name: "bytes", expr: "bytes(limits.body)", want: "2097152"},
		{name: "duration", expr: "duration(limits.timeout).Seconds()", want: "30"},
		{name: "at", expr: `at("server.hosts.2")`, want: `"c"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := capture(t, doc)

			q := &Query{Expr: tt.expr}
			if err := q.Run(t.Context(), testEngine()); err != nil {
				t.Fatalf("Query.Run() error = %v", err)
			}

			if got := out.String(); got != tt.want+"\n" {
				t.Errorf("got %q, want %q", got, tt.want+"\n")
			}
		})
	}
}

// TestQueryRootArray tests that a root array is bound to root.
func TestQueryRootArray(t *testing.T) {
	out := capture(t, `[1, 2, 3]`)

	q := &Query{Expr: "sum(root)"}
	if err := q.Run(t.Context(), testEngine()); err != nil {
		t.Fatalf("Query.Run() error = %v", err)
	}

	if got := out.String(); got != "6\n" {
		t.Errorf("got %q, want %q", got, "6\n")
	}
}

// TestQueryErrors tests compile and runtime failures.
func TestQueryErrors(t *testing.T) {
	for _, expr := range []string{"server.", `bytes("lots")`, `at("nope")`} {
		t.Run(expr, func(t *testing.T) {
			capture(t, `server.port = 1`)

			q := &Query{Expr: expr}

			err := q.Run(t.Context(), testEngine())
			if !errors.Is(err, ErrQuery) {
				t.Errorf("Query.Run() error = %v, want %v", err, ErrQuery)
			}
		})
	}
}
